package app

import (
	"fmt"
	"strings"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/domain"
)

// The persona and JSON-only rules every oracle call shares. The schema
// block names the fields the Response Assembler will read; the oracle
// is still treated as untrusted and every field is defaulted on read.
const personaPreamble = `你是一位神祕且充滿智慧的命理大師，名為「玄天上師」。
你擅長用譬喻和溫暖的口吻為人解惑，語氣帶有古典韻味但不失親切。
所有文字內容使用繁體中文，每個欄位約 30-60 字。`

const jsonOnlyRule = `請務必只回傳一個 JSON 物件，不要有其他文字，不要使用 markdown 代碼框。`

// DefaultQuestion stands in when a draw request carries no question.
const DefaultQuestion = "整體運勢"

func schemaPrompt(task, schema string) string {
	return personaPreamble + "\n\n" + task + "\n\n回傳 JSON 格式：\n" + schema + "\n\n" + jsonOnlyRule
}

// promptFor builds the system instruction and user prompt for a
// classified intent. The second return is false for intents that never
// reach the Text Oracle.
func promptFor(res domain.IntentResult) (system string, user string, ok bool) {
	switch res.Intent {
	case domain.IntentDailyFortune:
		system = schemaPrompt(
			"為今日生成一則綜合運勢。rating 為 1-5 的整數。",
			`{"overall": "...", "love": "...", "career": "...", "wealth": "...", "rating": 3, "lucky_color": "...", "lucky_number": "..."}`,
		)
		user = "請告訴我今天的整體運勢。"
	case domain.IntentFortuneStick:
		system = schemaPrompt(
			"生成一支靈籤。poem 為一句七言籤詩，level 為 上籤/中籤/下籤 之一。",
			`{"poem": "...", "meaning": "...", "advice": "...", "level": "中籤"}`,
		)
		user = "信士求籤，請賜一支籤。"
	case domain.IntentAlmanac:
		system = schemaPrompt(
			"以傳統黃曆口吻生成今日宜忌。",
			`{"good_for": "...", "bad_for": "...", "lucky_direction": "...", "note": "..."}`,
		)
		user = "請告訴我今日黃曆宜忌。"
	case domain.IntentDream:
		system = schemaPrompt(
			"以周公解夢的方式解析夢境。lucky_number 為一至兩位數字的字串。",
			`{"symbol": "...", "meaning": "...", "advice": "...", "lucky_number": "..."}`,
		)
		if res.Argument == "" {
			user = "信士做了一個夢但記不清內容，請泛泛而論。"
		} else {
			user = "請為我解這個夢：" + res.Argument
		}
	case domain.IntentMatch:
		system = schemaPrompt(
			"為兩個星座做緣分合盤。rating 為 1-5 的整數，pair 原樣回填兩個星座名。",
			`{"pair": "...", "rating": 3, "analysis": "...", "advice": "..."}`,
		)
		user = "請為這對星座合盤：" + res.Argument
	case domain.IntentNumber:
		system = schemaPrompt(
			"以數字命理解析這個數字的吉凶。",
			`{"meaning": "...", "fortune": "...", "advice": "..."}`,
		)
		user = "請解析數字 " + res.Argument + " 的玄機。"
	case domain.IntentZodiac:
		system = schemaPrompt(
			"為指定星座生成今日運勢。rating 為 1-5 的整數。",
			`{"today": "...", "love": "...", "career": "...", "wealth": "...", "rating": 3}`,
		)
		user = "請告訴我" + res.Argument + "今天的運勢。"
	case domain.IntentChineseZodiac:
		system = schemaPrompt(
			"為指定生肖生成今日運程。rating 為 1-5 的整數。",
			`{"today": "...", "advice": "...", "rating": 3}`,
		)
		user = "請告訴我屬" + res.Argument + "的人今天的運程。"
	case domain.IntentFullReply:
		system = schemaPrompt(
			"為信士的問題給出完整指點，並附上一段給 AI 繪圖用的英文提示詞。\n"+
				"image_prompt 約 30-50 字英文，畫面風格傾向神祕、東方玄學、賽博龐克的混合。",
			`{"reply": "...", "image_prompt": "A mystical fortune teller..., cyberpunk oriental style"}`,
		)
		user = res.Argument
	case domain.IntentTextOnly:
		system = schemaPrompt(
			"回應信士的提問，給出一段有神祕感和智慧感的指點。",
			`{"reply": "..."}`,
		)
		if res.Argument == "" {
			user = "信士心中有事但未言明，請給一段泛泛的指點。"
		} else {
			user = res.Argument
		}
	default:
		return "", "", false
	}
	return system, user, true
}

// readingPrompt builds the oracle call for a completed tarot selection:
// the stored question plus the chosen card.
func readingPrompt(sel domain.PendingSelection, card domain.DrawnCard) (system, user string) {
	system = schemaPrompt(
		"信士抽牌問事，請依所選塔羅牌解讀。rating 為 1-5 的整數；\n"+
			"image_prompt 約 30-50 字英文，描述這張牌的意境，神祕東方玄學風格。",
		`{"interpretation": "...", "advice": "...", "rating": 3, "image_prompt": "..."}`,
	)

	var b strings.Builder
	fmt.Fprintf(&b, "所問之事：%s\n", sel.Question)
	fmt.Fprintf(&b, "所選之牌：%s（%s）\n", card.Name, strings.Join(card.Keywords, "、"))
	fmt.Fprintf(&b, "牌面含義：%s\n", card.Short)
	b.WriteString("請為信士解牌。")
	return system, b.String()
}
