package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Trigger forces a settlement pass; scheduler.Scheduler's Tick satisfies
// it. The pass still honors the cutoff and the once-per-day guard.
type Trigger interface {
	Tick(ctx context.Context)
}

// Bot wires Telegram updates to the recipient registry and the
// settlement trigger, and delivers settlement messages.
type Bot struct {
	api     *tgbotapi.BotAPI
	log     *zap.Logger
	reg     *Registry
	trigger Trigger
}

func NewBot(api *tgbotapi.BotAPI, log *zap.Logger, reg *Registry, trigger Trigger) *Bot {
	return &Bot{api: api, log: log, reg: reg, trigger: trigger}
}

// HandleUpdate routes a single update.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		b.handleStart(msg)
	case strings.HasPrefix(text, "/close_order"):
		b.handleCloseOrder(ctx, msg.Chat.ID)
	default:
		// Nothing conversational here; orders happen in the app.
	}
}

// handleStart records the sender in the registry under the same key the
// app uses: "@username" when the account has one, the numeric id as text
// otherwise.
func (b *Bot) handleStart(msg *tgbotapi.Message) {
	from := msg.From
	if from == nil {
		return
	}
	key := strconv.FormatInt(from.ID, 10)
	if from.UserName != "" {
		key = "@" + from.UserName
	}
	b.reg.Register(key, msg.Chat.ID)
	b.log.Info("user registered", zap.String("userID", key), zap.Int64("chatID", msg.Chat.ID))

	b.sendText(msg.Chat.ID, startText)
}

// handleCloseOrder lets an admin force a settlement pass without waiting
// for the next tick.
func (b *Bot) handleCloseOrder(ctx context.Context, chatID int64) {
	b.trigger.Tick(ctx)
	b.sendText(chatID, closeOrderText)
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// SendMessage sends a plain text message to the given chat. This makes
// Bot satisfy scheduler.Deliverer.
func (b *Bot) SendMessage(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
