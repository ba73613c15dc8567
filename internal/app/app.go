package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/truerooha/zakazapp-back/internal/api"
	"github.com/truerooha/zakazapp-back/internal/config"
	"github.com/truerooha/zakazapp-back/internal/scheduler"
	"github.com/truerooha/zakazapp-back/internal/store"
	"github.com/truerooha/zakazapp-back/internal/telegram"
)

type App struct {
	cfg config.Config
	log *zap.Logger
	bot *tgbotapi.BotAPI
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	return &App{cfg: cfg, log: log, bot: bot}, nil
}

// Run wires the store, scheduler, bot and HTTP API together and drives
// them until a shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	defer func() { _ = st.Close() }()
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	registry := telegram.NewRegistry()
	sched := scheduler.New(st, registry, nil, a.log, a.cfg.TickInterval)
	bot := telegram.NewBot(a.bot, a.log, registry, sched)
	sched.SetDeliverer(bot)

	handler := api.NewHandler(st, a.log)
	httpSrv := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      handler.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	a.log.Info("starting zakazapp backend",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Duration("tickInterval", a.cfg.TickInterval),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sched.Run(ctx)
		return nil
	})

	g.Go(func() error {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		updCh := a.bot.GetUpdatesChan(u)

		for {
			select {
			case <-ctx.Done():
				a.bot.StopReceivingUpdates()
				return nil
			case upd := <-updCh:
				bot.HandleUpdate(ctx, upd)
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutdown signal received")

		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shCtx)
	})

	return g.Wait()
}
