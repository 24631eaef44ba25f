package domain

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	IntentHelp          Intent = "help"
	IntentDailyFortune  Intent = "daily_fortune"
	IntentFortuneStick  Intent = "fortune_stick"
	IntentAlmanac       Intent = "almanac"
	IntentDream         Intent = "dream"
	IntentMatch         Intent = "match"
	IntentNumber        Intent = "number"
	IntentZodiac        Intent = "zodiac"
	IntentChineseZodiac Intent = "chinese_zodiac"
	IntentTarotDraw     Intent = "tarot_draw"
	IntentFullReply     Intent = "full_reply"
	IntentTextOnly      Intent = "text_only"
)

// IntentResult is the outcome of classification: the matched intent and
// its extracted argument (may be empty).
type IntentResult struct {
	Intent   Intent
	Argument string
}

var (
	helpKeywords    = []string{"說明", "幫助", "指令", "功能", "help"}
	dailyKeywords   = []string{"今日運勢", "每日運勢", "今天運勢", "運勢"}
	stickKeywords   = []string{"求籤", "抽籤", "籤詩"}
	almanacKeywords = []string{"黃曆", "農民曆", "宜忌"}
	matchKeywords   = []string{"配對", "合盤", "速配"}
	tarotKeywords   = []string{"占卜", "塔羅", "抽牌"}
	fullKeywords    = []string{"大師", "請示"}

	dreamPrefix   = "解夢"
	numberKeyword = "數字"
	firstDigitsRE = regexp.MustCompile(`[0-9]+`)
)

// rule pairs a matcher with the IntentResult it produces. The matcher
// returns the extracted argument and whether the rule fired.
type rule struct {
	intent Intent
	match  func(text string) (string, bool)
}

// rules is evaluated top to bottom; the first match wins. Order is the
// behavioral contract: a message hitting several keyword sets resolves
// to the earliest rule.
var rules = []rule{
	{IntentHelp, matchAny(helpKeywords)},
	{IntentDailyFortune, matchAny(dailyKeywords)},
	{IntentFortuneStick, matchAny(stickKeywords)},
	{IntentAlmanac, matchAny(almanacKeywords)},
	{IntentDream, matchDream},
	{IntentMatch, matchWhole(matchKeywords)},
	{IntentNumber, matchNumber},
	{IntentZodiac, matchZodiacSign},
	{IntentChineseZodiac, matchChineseAnimal},
	{IntentTarotDraw, matchTarot},
	{IntentFullReply, matchWhole(fullKeywords)},
}

// Classify maps raw message text to an intent. Pure function; unmatched
// text falls through to a text-only reply carrying the whole message.
func Classify(text string) IntentResult {
	trimmed := strings.TrimSpace(text)
	for _, r := range rules {
		if arg, ok := r.match(trimmed); ok {
			return IntentResult{Intent: r.intent, Argument: arg}
		}
	}
	return IntentResult{Intent: IntentTextOnly, Argument: trimmed}
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func matchAny(keywords []string) func(string) (string, bool) {
	return func(text string) (string, bool) {
		return "", containsAny(text, keywords)
	}
}

// matchWhole fires on any keyword and carries the whole message as the
// argument, for handlers that re-scan it themselves.
func matchWhole(keywords []string) func(string) (string, bool) {
	return func(text string) (string, bool) {
		if containsAny(text, keywords) {
			return text, true
		}
		return "", false
	}
}

func matchDream(text string) (string, bool) {
	if !strings.Contains(text, dreamPrefix) {
		return "", false
	}
	arg := strings.TrimSpace(strings.Replace(text, dreamPrefix, "", 1))
	return arg, true
}

func matchNumber(text string) (string, bool) {
	if !strings.Contains(text, numberKeyword) {
		return "", false
	}
	return firstDigitsRE.FindString(text), true
}

func matchZodiacSign(text string) (string, bool) {
	return MatchWesternSign(text)
}

func matchChineseAnimal(text string) (string, bool) {
	return MatchChineseZodiac(text)
}

// matchTarot strips the trigger keywords out of the message so the rest
// becomes the querent's question.
func matchTarot(text string) (string, bool) {
	if !containsAny(text, tarotKeywords) {
		return "", false
	}
	question := text
	for _, kw := range tarotKeywords {
		question = strings.ReplaceAll(question, kw, "")
	}
	return strings.TrimSpace(question), true
}
