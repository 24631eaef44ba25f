package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/domain"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/ports"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/render"
)

// Controller orchestrates one inbound message: session check first,
// then intent classification, quota gate, and dispatch to the matching
// handler. Quota and session mutation happen strictly before or after
// oracle calls, never across them.
type Controller struct {
	sessions ports.SessionStore
	ledger   *Ledger
	decks    ports.DeckStore
	deckID   string
	rng      domain.RNG
	oracle   ports.TextOracle
	imager   ports.ImageOracle // nil disables image generation
	asm      *render.Assembler
	logger   *slog.Logger
}

func NewController(
	sessions ports.SessionStore,
	ledger *Ledger,
	decks ports.DeckStore,
	deckID string,
	rng domain.RNG,
	oracle ports.TextOracle,
	imager ports.ImageOracle,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		sessions: sessions,
		ledger:   ledger,
		decks:    decks,
		deckID:   deckID,
		rng:      rng,
		oracle:   oracle,
		imager:   imager,
		asm:      render.NewAssembler(),
		logger:   logger,
	}
}

// HandleMessage produces the reply for one inbound text message. A
// failing oracle yields the fixed apology; only store or deck failures
// surface as errors.
func (c *Controller) HandleMessage(ctx context.Context, userID, text string) (ports.Reply, error) {
	// A pending selection intercepts everything before classification.
	sel, pending, err := c.sessions.Get(ctx, userID)
	if err != nil {
		return ports.Reply{}, fmt.Errorf("read session: %w", err)
	}
	if pending {
		return c.handleSelection(ctx, userID, sel, text)
	}

	res := domain.Classify(text)

	if res.Intent == domain.IntentHelp {
		// Help is free: no quota check, no commit.
		return c.finish(ctx, c.asm.Help()), nil
	}

	allowance, err := c.ledger.Reserve(ctx, userID)
	if err != nil {
		return ports.Reply{}, fmt.Errorf("reserve quota: %w", err)
	}
	if !allowance.Allowed {
		return c.finish(ctx, c.asm.LimitReached(c.ledger.Limit())), nil
	}
	quota := &render.QuotaInfo{
		VIP:       allowance.VIP,
		Remaining: allowance.Remaining,
		Limit:     c.ledger.Limit(),
	}

	if res.Intent == domain.IntentTarotDraw {
		return c.handleDraw(ctx, userID, res.Argument, quota)
	}

	return c.dispatch(ctx, res, quota)
}

// handleDraw starts the two-step tarot flow: draw three distinct cards,
// store them as the pending selection (overwriting any prior one), and
// prompt for a 1-3 pick.
func (c *Controller) handleDraw(ctx context.Context, userID, question string, quota *render.QuotaInfo) (ports.Reply, error) {
	deck, err := c.decks.GetDeck(ctx, c.deckID)
	if err != nil {
		return ports.Reply{}, fmt.Errorf("get deck: %w", err)
	}

	cards, err := domain.DrawCards(deck, domain.SelectionCount, c.rng)
	if err != nil {
		return ports.Reply{}, fmt.Errorf("draw cards: %w", err)
	}

	if question == "" {
		question = DefaultQuestion
	}
	sel := domain.PendingSelection{UserID: userID, Question: question, Cards: cards}
	if err := c.sessions.Put(ctx, sel); err != nil {
		return ports.Reply{}, fmt.Errorf("store session: %w", err)
	}

	return c.finish(ctx, c.asm.SelectionPrompt(sel, quota)), nil
}

// handleSelection interprets any message from a user with a pending
// selection as a pick attempt. Invalid input re-prompts and preserves
// the pending state; a valid pick consumes it exactly once. The reading
// is not re-charged: the draw already paid.
func (c *Controller) handleSelection(ctx context.Context, userID string, sel domain.PendingSelection, text string) (ports.Reply, error) {
	idx, ok := parseSelection(text)
	if !ok {
		return c.finish(ctx, c.asm.Reprompt()), nil
	}

	taken, found, err := c.sessions.Take(ctx, userID)
	if err != nil {
		return ports.Reply{}, fmt.Errorf("take session: %w", err)
	}
	if !found {
		// Consumed by a concurrent request between Get and Take; the
		// message re-enters normal classification.
		return c.HandleMessage(ctx, userID, text)
	}
	sel = taken

	card := sel.Cards[idx-1]
	system, user := readingPrompt(sel, card)
	fields := c.generate(ctx, domain.IntentTarotDraw, system, user)

	return c.finish(ctx, c.asm.RenderReading(card, sel.Question, fields)), nil
}

// dispatch runs a single-shot paid intent: validate the argument,
// consult the Text Oracle, assemble the reply.
func (c *Controller) dispatch(ctx context.Context, res domain.IntentResult, quota *render.QuotaInfo) (ports.Reply, error) {
	switch res.Intent {
	case domain.IntentMatch:
		// The whole message is re-scanned for two sign names.
		signs := domain.FindSigns(res.Argument)
		if len(signs) < 2 {
			return c.finish(ctx, c.asm.MatchUsage(quota)), nil
		}
		res.Argument = signs[0] + " × " + signs[1]
	case domain.IntentNumber:
		if res.Argument == "" {
			return c.finish(ctx, c.asm.NumberUsage(quota)), nil
		}
	}

	system, user, ok := promptFor(res)
	if !ok {
		return c.finish(ctx, c.asm.Render(res, nil, quota)), nil
	}

	fields := c.generate(ctx, res.Intent, system, user)
	return c.finish(ctx, c.asm.Render(res, fields, quota)), nil
}

// generate calls the Text Oracle, folding every failure into a nil
// fields map so rendering falls back to the apology text.
func (c *Controller) generate(ctx context.Context, intent domain.Intent, system, user string) ports.Fields {
	fields, err := c.oracle.Generate(ctx, system, user)
	if err != nil {
		c.logger.WarnContext(ctx, "text oracle failed", "intent", string(intent), "error", err)
		return nil
	}
	return fields
}

// finish resolves the optional image prompt. Image failure degrades to
// a text-only reply and never blocks it.
func (c *Controller) finish(ctx context.Context, msg render.Message) ports.Reply {
	reply := ports.Reply{Text: msg.Text, QuickActions: msg.QuickActions}
	if msg.ImagePrompt == "" || c.imager == nil {
		return reply
	}

	url, err := c.imager.Generate(ctx, msg.ImagePrompt)
	if err != nil {
		c.logger.WarnContext(ctx, "image oracle failed", "error", err)
		return reply
	}
	reply.ImageURL = url
	return reply
}

// parseSelection accepts exactly the integers 1-3.
func parseSelection(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > domain.SelectionCount {
		return 0, false
	}
	return n, true
}
