package scheduler

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/truerooha/zakazapp-back/internal/domain"
)

// Deliverer is the minimal interface the scheduler needs to send a text
// message. telegram.Bot implements it.
type Deliverer interface {
	SendMessage(chatID int64, text string) error
}

// Resolver maps an application user identifier to a chat id. Purely
// numeric identifiers short-circuit it; telegram.Registry implements it
// for "@username" identifiers registered via /start.
type Resolver interface {
	Resolve(userID string) (int64, bool)
}

// Store is the read-only slice of storage the scheduler depends on.
type Store interface {
	Settings(ctx context.Context) (domain.Settings, error)
	UserTotals(ctx context.Context, day string) ([]domain.UserTotal, error)
}

// Scheduler periodically checks whether the shared order has closed and,
// once per day, settles it and messages every participant their total.
type Scheduler struct {
	store    Store
	resolver Resolver
	sender   Deliverer
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex // serializes ticks; a pass completes before the next starts
	lastRun string     // ISO date of the last completed settlement pass
}

// New creates a Scheduler. The tick interval only affects latency, not
// correctness: every tick re-reads settings and re-evaluates the cutoff.
func New(store Store, resolver Resolver, sender Deliverer, log *zap.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:    store,
		resolver: resolver,
		sender:   sender,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// SetDeliverer installs the delivery channel. The bot and the scheduler
// reference each other (the bot triggers passes, the scheduler delivers
// through the bot), so one side is wired after construction.
func (s *Scheduler) SetDeliverer(d Deliverer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = d
}

// Run starts the tick loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one scheduling cycle. It is safe to call concurrently
// with Run (the /close_order command does): ticks are serialized, and a
// day already marked settled is a no-op.
//
// The last-run marker moves only after a pass over a non-empty day has
// attempted delivery to every resolvable participant. A store failure or
// an empty day leaves it unset, so a later tick within the same day
// retries; individual delivery failures do not.
func (s *Scheduler) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	settings, err := s.store.Settings(ctx)
	if err != nil {
		s.log.Error("read settings failed", zap.Error(err))
		return
	}
	if !domain.CloseDue(now, settings.CloseAt, s.lastRun) {
		return
	}

	today := domain.Day(now)
	totals, err := s.store.UserTotals(ctx, today)
	if err != nil {
		s.log.Error("load user totals failed", zap.Error(err), zap.String("day", today))
		return
	}
	if len(totals) == 0 {
		// Nobody ordered yet. Deliberately not marked settled: a late
		// order placed before midnight still gets a settlement pass.
		s.log.Debug("order closed on an empty day, will re-check", zap.String("day", today))
		return
	}

	res := domain.Settle(totals, settings)
	for _, line := range res.Lines {
		chatID, ok := s.resolve(line.UserID)
		if !ok {
			s.log.Info("no chat known for user, skipping",
				zap.String("userID", line.UserID))
			continue
		}
		if err := s.sender.SendMessage(chatID, settleText(line)); err != nil {
			s.log.Error("send failed", zap.Error(err),
				zap.String("userID", line.UserID), zap.Int64("chatID", chatID))
			continue
		}
	}

	s.lastRun = today
	s.log.Info("settlement delivered",
		zap.String("day", today),
		zap.Int("participants", len(res.Lines)),
		zap.Float64("total", res.Summary.FinalTotal))
}

// LastRun returns the date of the last completed settlement pass, empty
// if none completed yet.
func (s *Scheduler) LastRun() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *Scheduler) resolve(userID string) (int64, bool) {
	if domain.NumericID(userID) {
		if chatID, err := strconv.ParseInt(userID, 10, 64); err == nil {
			return chatID, true
		}
	}
	return s.resolver.Resolve(userID)
}

func settleText(line domain.SettlementLine) string {
	return fmt.Sprintf("Твоя сумма за сегодняшний обед: %d ₽", int64(math.Round(line.FinalTotal)))
}
