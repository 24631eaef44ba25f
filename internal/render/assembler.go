package render

import (
	"fmt"
	"strings"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/domain"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/ports"
)

// Apology is sent whenever the Text Oracle fails; never expose a raw
// error to the user.
const Apology = "🔮 天機訊號干擾中，請稍後再試。"

const (
	filledStar   = "★"
	unfilledStar = "☆"
	barWidth     = 5
)

// QuotaInfo carries what the footer needs. A nil *QuotaInfo means no
// footer (free intents, and the selection step of a draw already paid
// for).
type QuotaInfo struct {
	VIP       bool
	Remaining int
	Limit     int
}

// Message is the assembled outbound content before image generation:
// the rendered text, an optional prompt for the Image Oracle, and
// optional quick actions.
type Message struct {
	Text         string
	ImagePrompt  string
	QuickActions []ports.QuickAction
}

// Assembler renders decorated replies from untrusted oracle fields.
// Every placeholder has a hardcoded default so a partial or failed
// oracle result never yields an incomplete message.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// StarBar maps a 1-5 rating to a fixed-width five-glyph bar. Out of
// range ratings clamp to [0, 5].
func StarBar(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > barWidth {
		rating = barWidth
	}
	return strings.Repeat(filledStar, rating) + strings.Repeat(unfilledStar, barWidth-rating)
}

// Render assembles the reply for a classified intent. A nil fields map
// means the oracle failed; the fixed apology is used instead of any
// placeholder substitution.
func (a *Assembler) Render(res domain.IntentResult, fields ports.Fields, quota *QuotaInfo) Message {
	if fields == nil {
		return Message{Text: withFooter(Apology, quota)}
	}

	var text string
	var imagePrompt string

	switch res.Intent {
	case domain.IntentDailyFortune:
		text = renderDaily(fields)
	case domain.IntentFortuneStick:
		text = renderStick(fields)
	case domain.IntentAlmanac:
		text = renderAlmanac(fields)
	case domain.IntentDream:
		text = renderDream(fields)
	case domain.IntentMatch:
		text = renderMatch(res.Argument, fields)
	case domain.IntentNumber:
		text = renderNumber(res.Argument, fields)
	case domain.IntentZodiac:
		text = renderZodiac(res.Argument, fields)
	case domain.IntentChineseZodiac:
		text = renderChineseZodiac(res.Argument, fields)
	case domain.IntentFullReply:
		text = fields.Str("reply", Apology)
		imagePrompt = fields.Str("image_prompt", "")
	default:
		text = fields.Str("reply", Apology)
	}

	return Message{
		Text:        withFooter(text, quota),
		ImagePrompt: imagePrompt,
	}
}

// RenderReading assembles the reply for a completed tarot selection.
func (a *Assembler) RenderReading(card domain.DrawnCard, question string, fields ports.Fields) Message {
	if fields == nil {
		return Message{Text: Apology}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🃏 你選中的是「%s」\n", card.Name)
	fmt.Fprintf(&b, "❓ 所問：%s\n\n", question)
	fmt.Fprintf(&b, "🔮 牌意：%s\n", fields.Str("interpretation", "此牌玄機深藏，靜待時機自明。"))
	fmt.Fprintf(&b, "🙏 指引：%s\n", fields.Str("advice", "順其自然，心誠則靈。"))
	fmt.Fprintf(&b, "運勢評分：%s", StarBar(fields.Int("rating", 3)))
	return Message{
		Text:        b.String(),
		ImagePrompt: fields.Str("image_prompt", ""),
	}
}

// SelectionPrompt lists the drawn cards face-down and asks the user to
// pick 1, 2 or 3.
func (a *Assembler) SelectionPrompt(sel domain.PendingSelection, quota *QuotaInfo) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "🔮 為你所問「%s」抽出三張牌：\n\n", sel.Question)
	for _, c := range sel.Cards {
		fmt.Fprintf(&b, "　🎴 第 %d 張\n", c.Position)
	}
	b.WriteString("\n請回覆 1、2 或 3 選一張牌。")

	actions := make([]ports.QuickAction, 0, len(sel.Cards))
	for _, c := range sel.Cards {
		n := fmt.Sprintf("%d", c.Position)
		actions = append(actions, ports.QuickAction{Label: "選第 " + n + " 張", Text: n})
	}

	return Message{
		Text:         withFooter(b.String(), quota),
		QuickActions: actions,
	}
}

// Reprompt nudges the user back to a valid selection without touching
// the pending state.
func (a *Assembler) Reprompt() Message {
	return Message{
		Text: "🎴 請回覆 1、2 或 3 來選牌喔。",
		QuickActions: []ports.QuickAction{
			{Label: "選第 1 張", Text: "1"},
			{Label: "選第 2 張", Text: "2"},
			{Label: "選第 3 張", Text: "3"},
		},
	}
}

// Help is the free instruction text.
func (a *Assembler) Help() Message {
	return Message{Text: strings.Join([]string{
		"🔮 玄天上師為你指點迷津",
		"",
		"・今日運勢 — 每日綜合運勢",
		"・求籤 — 抽一支靈籤",
		"・黃曆 — 今日宜忌",
		"・解夢 + 夢境描述 — 周公解夢",
		"・配對 + 兩個星座 — 星座合盤",
		"・數字 + 任一數字 — 數字占卜",
		"・星座名（如雙魚座） — 星座運勢",
		"・屬相（如屬龍） — 生肖運勢",
		"・占卜 + 問題 — 塔羅三選一",
		"・大師 + 問題 — 上師親算（附天機圖）",
		"",
		"直接輸入想問的事也可以喔。",
	}, "\n")}
}

// LimitReached is the quota-exceeded message.
func (a *Assembler) LimitReached(limit int) Message {
	return Message{Text: fmt.Sprintf("🌙 今日緣分已盡（每日 %d 次），明日再來問吧。", limit)}
}

// MatchUsage prompts for two sign names when the re-scan found fewer.
// The charge was already committed, so the footer still applies.
func (a *Assembler) MatchUsage(quota *QuotaInfo) Message {
	return Message{Text: withFooter("💞 請一次告訴我兩個星座名，例如「配對 雙魚座 獅子座」。", quota)}
}

// NumberUsage prompts for a number when the digit scan found none.
func (a *Assembler) NumberUsage(quota *QuotaInfo) Message {
	return Message{Text: withFooter("🔢 請附上想占卜的數字，例如「數字 168」。", quota)}
}

func withFooter(text string, quota *QuotaInfo) string {
	if quota == nil {
		return text
	}
	if quota.VIP {
		return text + "\n\n✨ VIP 尊榮，次數無上限"
	}
	return text + fmt.Sprintf("\n\n🔮 今日剩餘次數：%d / %d", quota.Remaining, quota.Limit)
}

func renderDaily(f ports.Fields) string {
	var b strings.Builder
	b.WriteString("🌅 今日運勢\n")
	fmt.Fprintf(&b, "整體評分：%s\n\n", StarBar(f.Int("rating", 3)))
	fmt.Fprintf(&b, "📜 總論：%s\n", f.Str("overall", "平穩之日，宜靜心行事。"))
	fmt.Fprintf(&b, "💗 感情：%s\n", f.Str("love", "以誠相待，緣分自來。"))
	fmt.Fprintf(&b, "💼 事業：%s\n", f.Str("career", "按部就班，水到渠成。"))
	fmt.Fprintf(&b, "💰 財運：%s\n", f.Str("wealth", "守成為上，不宜冒進。"))
	fmt.Fprintf(&b, "🎨 幸運色：%s　🔢 幸運數字：%s", f.Str("lucky_color", "白色"), f.Str("lucky_number", "8"))
	return b.String()
}

func renderStick(f ports.Fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎋 靈籤一支・%s\n\n", f.Str("level", "中籤"))
	fmt.Fprintf(&b, "「%s」\n\n", f.Str("poem", "雲開月出正分明，不須進退問前程。"))
	fmt.Fprintf(&b, "📖 解曰：%s\n", f.Str("meaning", "時機未至，靜候佳音。"))
	fmt.Fprintf(&b, "🙏 指點：%s", f.Str("advice", "心平氣和，自有轉機。"))
	return b.String()
}

func renderAlmanac(f ports.Fields) string {
	var b strings.Builder
	b.WriteString("📅 今日黃曆\n\n")
	fmt.Fprintf(&b, "✅ 宜：%s\n", f.Str("good_for", "祭祀、納財"))
	fmt.Fprintf(&b, "❌ 忌：%s\n", f.Str("bad_for", "動土、遠行"))
	fmt.Fprintf(&b, "🧭 吉方：%s\n", f.Str("lucky_direction", "正東"))
	fmt.Fprintf(&b, "📝 %s", f.Str("note", "諸事以和為貴。"))
	return b.String()
}

func renderDream(f ports.Fields) string {
	var b strings.Builder
	b.WriteString("🌙 周公解夢\n\n")
	fmt.Fprintf(&b, "🔍 夢象：%s\n", f.Str("symbol", "夢境朦朧，意象未明"))
	fmt.Fprintf(&b, "📖 寓意：%s\n", f.Str("meaning", "日有所思，夜有所夢。"))
	fmt.Fprintf(&b, "🙏 建議：%s\n", f.Str("advice", "放寬心，夢境自有其時。"))
	fmt.Fprintf(&b, "🔢 幸運數字：%s", f.Str("lucky_number", "6"))
	return b.String()
}

func renderMatch(pair string, f ports.Fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💞 %s 緣分合盤\n", f.Str("pair", pair))
	fmt.Fprintf(&b, "緣分指數：%s\n\n", StarBar(f.Int("rating", 3)))
	fmt.Fprintf(&b, "📖 解析：%s\n", f.Str("analysis", "兩心相映，貴在經營。"))
	fmt.Fprintf(&b, "🙏 建議：%s", f.Str("advice", "多些包容，情誼更深。"))
	return b.String()
}

func renderNumber(num string, f ports.Fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔢 數字「%s」玄機\n\n", num)
	fmt.Fprintf(&b, "📖 數理：%s\n", f.Str("meaning", "此數平和，不偏不倚。"))
	fmt.Fprintf(&b, "🔮 運勢：%s\n", f.Str("fortune", "平穩向前，徐徐圖之。"))
	fmt.Fprintf(&b, "🙏 建議：%s", f.Str("advice", "數由心生，善念為先。"))
	return b.String()
}

func renderZodiac(sign string, f ports.Fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⭐ %s 今日運勢\n", sign)
	fmt.Fprintf(&b, "整體評分：%s\n\n", StarBar(f.Int("rating", 3)))
	fmt.Fprintf(&b, "📜 總論：%s\n", f.Str("today", "星象平順，宜循常軌。"))
	fmt.Fprintf(&b, "💗 感情：%s\n", f.Str("love", "以誠相待，緣分自來。"))
	fmt.Fprintf(&b, "💼 事業：%s\n", f.Str("career", "穩中求進，忌躁忌急。"))
	fmt.Fprintf(&b, "💰 財運：%s", f.Str("wealth", "量入為出，自然有餘。"))
	return b.String()
}

func renderChineseZodiac(animal string, f ports.Fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🐲 生肖屬%s 今日運程\n", animal)
	fmt.Fprintf(&b, "整體評分：%s\n\n", StarBar(f.Int("rating", 3)))
	fmt.Fprintf(&b, "📜 運程：%s\n", f.Str("today", "運勢平穩，凡事從容。"))
	fmt.Fprintf(&b, "🙏 提點：%s", f.Str("advice", "守本心，行正道。"))
	return b.String()
}
