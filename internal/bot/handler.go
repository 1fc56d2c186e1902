// Package bot wires Telegram updates to the wallet check, session and partner components.
package bot

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"rent-reclaim-bot/internal/observability"
	"rent-reclaim-bot/internal/partner"
	"rent-reclaim-bot/internal/reclaim"
	"rent-reclaim-bot/internal/session"
	"rent-reclaim-bot/internal/wallet"
)

// Sender sends messages to Telegram. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Checker runs a wallet check.
type Checker interface {
	Check(ctx context.Context, raw string) (*reclaim.Result, error)
}

// PriceWarmer is called on /start to prime the price cache.
type PriceWarmer interface {
	Price(ctx context.Context) float64
}

// StatsFetcher fetches partner statistics.
type StatsFetcher interface {
	Stats(ctx context.Context, code string) (*partner.Stats, error)
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	ReferralLink string
	AdminID      int64
	ChannelName  string
	Logger       logrus.FieldLogger
}

// Handler handles a single Telegram update.
type Handler struct {
	sender   Sender
	checker  Checker
	prices   PriceWarmer
	stats    StatsFetcher
	sessions *session.Store
	opts     HandlerOptions
	logger   logrus.FieldLogger
}

// NewHandler creates a Handler.
func NewHandler(sender Sender, checker Checker, prices PriceWarmer, stats StatsFetcher, sessions *session.Store, opts HandlerOptions) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		sender:   sender,
		checker:  checker,
		prices:   prices,
		stats:    stats,
		sessions: sessions,
		opts:     opts,
		logger:   logger.WithField("component", "bot"),
	}
}

// Handle routes one update. Only text messages are handled.
func (h *Handler) Handle(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		observability.RecordUpdate("ignored")
		return
	}

	switch {
	case msg.IsCommand():
		h.handleCommand(ctx, msg)
	case msg.Text == ButtonCheckWallet:
		observability.RecordUpdate("check_wallet")
		h.sessions.Begin(msg.From.ID)
		h.send(tgbotapi.NewMessage(msg.Chat.ID, textAskAddress))
	case msg.Text == ButtonClaimSOL:
		observability.RecordUpdate("claim")
		reply := tgbotapi.NewMessage(msg.Chat.ID, textClaimIntro)
		reply.ReplyMarkup = linkKeyboard(textClaimButton, h.opts.ReferralLink)
		h.send(reply)
	case msg.Text != "":
		h.handleText(ctx, msg)
	default:
		observability.RecordUpdate("ignored")
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case CommandStart:
		observability.RecordUpdate("start")
		h.prices.Price(ctx)
		reply := tgbotapi.NewMessage(msg.Chat.ID, welcomeText(h.opts.ChannelName))
		reply.ReplyMarkup = mainKeyboard()
		h.send(reply)
	case CommandPartnerStats:
		observability.RecordUpdate("partner_stats")
		h.handlePartnerStats(ctx, msg)
	default:
		h.handleText(ctx, msg)
	}
}

func (h *Handler) handlePartnerStats(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != h.opts.AdminID {
		h.logger.WithField("user_id", msg.From.ID).Warn("partner stats requested by non-admin")
		h.send(tgbotapi.NewMessage(msg.Chat.ID, textAdminOnly))
		return
	}

	code, err := partner.ReferralCode(h.opts.ReferralLink)
	if err != nil {
		h.logger.WithError(err).Error("referral link has no code")
		h.send(tgbotapi.NewMessage(msg.Chat.ID, textNoReferralCode))
		return
	}

	stats, err := h.stats.Stats(ctx, code)
	switch {
	case errors.Is(err, partner.ErrReferralNotFound):
		h.send(tgbotapi.NewMessage(msg.Chat.ID, textInvalidCode))
	case err != nil:
		h.logger.WithError(err).Error("partner stats failed")
		h.send(tgbotapi.NewMessage(msg.Chat.ID, textStatsError))
	default:
		h.send(tgbotapi.NewMessage(msg.Chat.ID, statsText(stats)))
	}
}

// handleText treats the message as a wallet address only if one was requested.
// The pending state is cleared before validation.
func (h *Handler) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if h.sessions.Consume(msg.From.ID) != session.AwaitingAddress {
		observability.RecordUpdate("fallback")
		reply := tgbotapi.NewMessage(msg.Chat.ID, textFallback)
		reply.ReplyMarkup = mainKeyboard()
		h.send(reply)
		return
	}

	observability.RecordUpdate("address")
	if _, err := wallet.ParseAddress(msg.Text); err != nil {
		h.send(tgbotapi.NewMessage(msg.Chat.ID, textInvalidAddress))
		return
	}

	h.send(tgbotapi.NewMessage(msg.Chat.ID, textChecking))

	result, err := h.checker.Check(ctx, msg.Text)
	switch {
	case errors.Is(err, wallet.ErrInvalidAddress):
		h.send(tgbotapi.NewMessage(msg.Chat.ID, textInvalidAddress))
	case err != nil:
		h.send(tgbotapi.NewMessage(msg.Chat.ID, textNetworkError))
	case !result.Reclaimable():
		h.send(tgbotapi.NewMessage(msg.Chat.ID, textClean))
	default:
		reply := tgbotapi.NewMessage(msg.Chat.ID, resultText(result.Scan.EmptyAccounts, *result.Estimate))
		reply.ParseMode = tgbotapi.ModeMarkdown
		reply.ReplyMarkup = linkKeyboard(textClaimNow, h.opts.ReferralLink)
		h.send(reply)
	}
}

func (h *Handler) send(c tgbotapi.MessageConfig) {
	if _, err := h.sender.Send(c); err != nil {
		h.logger.WithError(err).WithField("chat_id", strconv.FormatInt(c.ChatID, 10)).Warn("send failed")
	}
}
