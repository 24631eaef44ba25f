package render_test

import (
	"strings"
	"testing"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/domain"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/ports"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/render"
)

func TestStarBar(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{0, "☆☆☆☆☆"},
		{3, "★★★☆☆"},
		{5, "★★★★★"},
		{7, "★★★★★"},  // clamps high
		{-2, "☆☆☆☆☆"}, // clamps low
	}
	for _, tt := range tests {
		if got := render.StarBar(tt.rating); got != tt.want {
			t.Errorf("StarBar(%d) = %s, want %s", tt.rating, got, tt.want)
		}
	}
}

func TestRender_NilFieldsYieldsApology(t *testing.T) {
	a := render.NewAssembler()
	msg := a.Render(domain.IntentResult{Intent: domain.IntentDailyFortune}, nil, nil)
	if !strings.Contains(msg.Text, render.Apology) {
		t.Errorf("expected apology, got %q", msg.Text)
	}
	if msg.ImagePrompt != "" {
		t.Errorf("apology must not request an image, got %q", msg.ImagePrompt)
	}
}

func TestRender_PartialFieldsUseDefaults(t *testing.T) {
	a := render.NewAssembler()
	fields := ports.Fields{"overall": "紫氣東來"}
	msg := a.Render(domain.IntentResult{Intent: domain.IntentDailyFortune}, fields, nil)

	if !strings.Contains(msg.Text, "紫氣東來") {
		t.Errorf("expected oracle field in output, got %q", msg.Text)
	}
	// Missing fields fall back to hardcoded defaults, never blanks.
	for _, label := range []string{"感情", "事業", "財運", "幸運色"} {
		if !strings.Contains(msg.Text, label) {
			t.Errorf("expected %s section in output, got %q", label, msg.Text)
		}
	}
	if strings.Contains(msg.Text, "：\n") {
		t.Errorf("found empty placeholder in output: %q", msg.Text)
	}
}

func TestRender_QuotaFooter(t *testing.T) {
	a := render.NewAssembler()
	fields := ports.Fields{"reply": "心誠則靈"}

	vip := a.Render(domain.IntentResult{Intent: domain.IntentTextOnly}, fields, &render.QuotaInfo{VIP: true})
	if !strings.Contains(vip.Text, "無上限") {
		t.Errorf("expected VIP footer, got %q", vip.Text)
	}

	normal := a.Render(domain.IntentResult{Intent: domain.IntentTextOnly}, fields, &render.QuotaInfo{Remaining: 2, Limit: 3})
	if !strings.Contains(normal.Text, "2 / 3") {
		t.Errorf("expected remaining footer, got %q", normal.Text)
	}

	free := a.Render(domain.IntentResult{Intent: domain.IntentTextOnly}, fields, nil)
	if strings.Contains(free.Text, "剩餘") || strings.Contains(free.Text, "無上限") {
		t.Errorf("expected no footer, got %q", free.Text)
	}
}

func TestUsagePromptsCarryQuotaFooter(t *testing.T) {
	a := render.NewAssembler()
	quota := &render.QuotaInfo{Remaining: 2, Limit: 3}

	match := a.MatchUsage(quota)
	if !strings.Contains(match.Text, "兩個星座") || !strings.Contains(match.Text, "2 / 3") {
		t.Errorf("expected match usage prompt with footer, got %q", match.Text)
	}

	number := a.NumberUsage(quota)
	if !strings.Contains(number.Text, "數字") || !strings.Contains(number.Text, "2 / 3") {
		t.Errorf("expected number usage prompt with footer, got %q", number.Text)
	}
}

func TestRender_FullReplyCarriesImagePrompt(t *testing.T) {
	a := render.NewAssembler()
	fields := ports.Fields{"reply": "天機已現", "image_prompt": "a mystical scene"}
	msg := a.Render(domain.IntentResult{Intent: domain.IntentFullReply}, fields, nil)

	if msg.Text != "天機已現" {
		t.Errorf("unexpected text: %q", msg.Text)
	}
	if msg.ImagePrompt != "a mystical scene" {
		t.Errorf("unexpected image prompt: %q", msg.ImagePrompt)
	}
}

func TestRender_RatingClampedInTemplate(t *testing.T) {
	a := render.NewAssembler()
	fields := ports.Fields{"rating": float64(9)}
	msg := a.Render(domain.IntentResult{Intent: domain.IntentDailyFortune}, fields, nil)
	if !strings.Contains(msg.Text, "★★★★★") {
		t.Errorf("expected clamped full bar, got %q", msg.Text)
	}
}

func TestSelectionPrompt(t *testing.T) {
	a := render.NewAssembler()
	sel := domain.PendingSelection{
		UserID:   "U1",
		Question: "我的感情運",
		Cards: []domain.DrawnCard{
			{Card: domain.Card{ID: "a", Name: "愚者"}, Position: 1},
			{Card: domain.Card{ID: "b", Name: "星星"}, Position: 2},
			{Card: domain.Card{ID: "c", Name: "太陽"}, Position: 3},
		},
	}
	msg := a.SelectionPrompt(sel, &render.QuotaInfo{Remaining: 2, Limit: 3})

	if !strings.Contains(msg.Text, "我的感情運") {
		t.Errorf("expected question in prompt, got %q", msg.Text)
	}
	if len(msg.QuickActions) != 3 {
		t.Fatalf("expected 3 quick actions, got %d", len(msg.QuickActions))
	}
	for i, qa := range msg.QuickActions {
		want := string(rune('1' + i))
		if qa.Text != want {
			t.Errorf("quick action %d text = %q, want %q", i, qa.Text, want)
		}
	}
	// Card names are face-down at this stage.
	if strings.Contains(msg.Text, "愚者") {
		t.Errorf("selection prompt must not reveal card names: %q", msg.Text)
	}
}

func TestRenderReading(t *testing.T) {
	a := render.NewAssembler()
	card := domain.DrawnCard{Card: domain.Card{ID: "star", Name: "星星", Keywords: []string{"希望"}}, Position: 2}
	fields := ports.Fields{"interpretation": "星光指路", "rating": float64(4)}

	msg := a.RenderReading(card, "我的感情運", fields)
	if !strings.Contains(msg.Text, "星星") {
		t.Errorf("expected card name, got %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "星光指路") {
		t.Errorf("expected interpretation, got %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "★★★★☆") {
		t.Errorf("expected 4-star bar, got %q", msg.Text)
	}
}
