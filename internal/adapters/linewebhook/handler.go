// Package linewebhook exposes the inbound LINE webhook over echo.
// Signature verification and event parsing are delegated to the LINE
// SDK; each text-message event is dispatched on its own goroutine so a
// slow oracle call never delays the webhook acknowledgment.
package linewebhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/app"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/ports"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/render"
)

const banner = "🔮 AI 命理大師運行中..."

type Handler struct {
	channelSecret string
	dialogue      *app.Controller
	replier       ports.Replier
	logger        *slog.Logger
}

func NewHandler(channelSecret string, dialogue *app.Controller, replier ports.Replier, logger *slog.Logger) *Handler {
	return &Handler{
		channelSecret: channelSecret,
		dialogue:      dialogue,
		replier:       replier,
		logger:        logger,
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.POST("/callback", h.Callback)
	e.GET("/healthz", h.Healthz)
	e.GET("/", h.Root)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Root(c echo.Context) error {
	return c.String(http.StatusOK, banner)
}

// Callback verifies and parses a webhook batch, then acknowledges it
// immediately; events are handled asynchronously.
func (h *Handler) Callback(c echo.Context) error {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request())
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("invalid webhook signature", "request_id", c.Get("request_id"))
			return c.NoContent(http.StatusBadRequest)
		}
		h.logger.Error("parse webhook", "request_id", c.Get("request_id"), "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	for _, event := range cb.Events {
		msgEvent, ok := event.(webhook.MessageEvent)
		if !ok {
			continue
		}
		text, ok := msgEvent.Message.(webhook.TextMessageContent)
		if !ok {
			continue
		}
		userID := sourceUserID(msgEvent.Source)
		if userID == "" || msgEvent.ReplyToken == "" {
			continue
		}

		go h.handleEvent(userID, msgEvent.ReplyToken, text.Text)
	}

	return c.String(http.StatusOK, "OK")
}

// handleEvent runs one conversation turn. The context is detached from
// the webhook request, which is long gone by the time a 10-20s image
// generation finishes. A panic or error in one event must not affect
// other users.
func (h *Handler) handleEvent(userID, replyToken, text string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic handling event", "user_id", userID, "panic", r)
		}
	}()

	ctx := context.Background()

	reply, err := h.dialogue.HandleMessage(ctx, userID, text)
	if err != nil {
		h.logger.Error("handle message", "user_id", userID, "error", err)
		reply = ports.Reply{Text: render.Apology}
	}

	if err := h.replier.Reply(ctx, replyToken, reply); err != nil {
		// The token is single-use; never retry a send.
		h.logger.Error("send reply", "user_id", userID, "error", err)
	}
}

func sourceUserID(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	default:
		return ""
	}
}
