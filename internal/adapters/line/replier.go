// Package line delivers outbound replies through the LINE Messaging
// API. Reply tokens are single-use: exactly one send per token.
package line

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/ports"
)

type Replier struct {
	bot    *messaging_api.MessagingApiAPI
	logger *slog.Logger
}

func NewReplier(channelToken string, logger *slog.Logger) (*Replier, error) {
	bot, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("init messaging api: %w", err)
	}
	return &Replier{bot: bot, logger: logger}, nil
}

func (r *Replier) Reply(ctx context.Context, replyToken string, reply ports.Reply) error {
	text := messaging_api.TextMessage{Text: reply.Text}
	if len(reply.QuickActions) > 0 {
		items := make([]messaging_api.QuickReplyItem, 0, len(reply.QuickActions))
		for _, qa := range reply.QuickActions {
			items = append(items, messaging_api.QuickReplyItem{
				Action: &messaging_api.MessageAction{Label: qa.Label, Text: qa.Text},
			})
		}
		text.QuickReply = &messaging_api.QuickReply{Items: items}
	}

	messages := []messaging_api.MessageInterface{text}
	if reply.ImageURL != "" {
		messages = append(messages, messaging_api.ImageMessage{
			OriginalContentUrl: reply.ImageURL,
			PreviewImageUrl:    reply.ImageURL,
		})
	}

	if _, err := r.bot.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		return fmt.Errorf("reply message: %w", err)
	}

	r.logger.DebugContext(ctx, "reply sent", "has_image", reply.ImageURL != "")
	return nil
}
