package domain

import "strings"

// WesternSigns are the twelve zodiac sign names in common Taiwanese usage.
var WesternSigns = []string{
	"牡羊座", "金牛座", "雙子座", "巨蟹座", "獅子座", "處女座",
	"天秤座", "天蠍座", "射手座", "摩羯座", "水瓶座", "雙魚座",
}

// signAliases maps alternate spellings to the canonical sign name.
var signAliases = map[string]string{
	"白羊座": "牡羊座",
	"天平座": "天秤座",
	"山羊座": "摩羯座",
}

// ChineseZodiacAnimals are the twelve animals of the Chinese zodiac cycle.
var ChineseZodiacAnimals = []string{
	"鼠", "牛", "虎", "兔", "龍", "蛇", "馬", "羊", "猴", "雞", "狗", "豬",
}

// FindSigns scans text for western zodiac sign names and returns the
// distinct canonical names in order of first appearance.
func FindSigns(text string) []string {
	type hit struct {
		index int
		sign  string
	}
	var hits []hit

	seen := make(map[string]bool)
	lookup := func(name, canonical string) {
		idx := strings.Index(text, name)
		if idx < 0 || seen[canonical] {
			return
		}
		seen[canonical] = true
		hits = append(hits, hit{index: idx, sign: canonical})
	}

	for _, sign := range WesternSigns {
		lookup(sign, sign)
	}
	for alias, canonical := range signAliases {
		lookup(alias, canonical)
	}

	// Order by position in the message, not table order.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].index < hits[j-1].index; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	signs := make([]string, len(hits))
	for i, h := range hits {
		signs[i] = h.sign
	}
	return signs
}

// MatchWesternSign returns the canonical sign name contained in text,
// if any.
func MatchWesternSign(text string) (string, bool) {
	for _, sign := range WesternSigns {
		if strings.Contains(text, sign) {
			return sign, true
		}
	}
	for alias, canonical := range signAliases {
		if strings.Contains(text, alias) {
			return canonical, true
		}
	}
	return "", false
}

// MatchChineseZodiac recognizes "屬<animal>" anywhere in text, or a
// message that is exactly an animal name.
func MatchChineseZodiac(text string) (string, bool) {
	for _, animal := range ChineseZodiacAnimals {
		if strings.Contains(text, "屬"+animal) {
			return animal, true
		}
	}
	trimmed := strings.TrimSpace(text)
	for _, animal := range ChineseZodiacAnimals {
		if trimmed == animal {
			return animal, true
		}
	}
	return "", false
}
