package ports

import "context"

// QuickAction is a tappable shortcut attached to a reply; tapping sends
// its Text back as the user's next message.
type QuickAction struct {
	Label string
	Text  string
}

// Reply is the outbound message for one inbound event: one text
// segment, at most one image, optional quick actions.
type Reply struct {
	Text         string
	ImageURL     string
	QuickActions []QuickAction
}

// Replier delivers a reply addressed by its reply token. Tokens are
// single-use; implementations must send exactly once per token.
type Replier interface {
	Reply(ctx context.Context, replyToken string, reply Reply) error
}
