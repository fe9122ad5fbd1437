package language

import (
	"strings"
	"unicode"
)

// Language is the script mixture of a single line of text.
type Language string

const (
	Hebrew  Language = "HEBREW"
	English Language = "ENGLISH"
	Mixed   Language = "MIXED"
	Unknown Language = "UNKNOWN"
)

const (
	hebrewStart = 0x0590
	hebrewEnd   = 0x05FF

	// Latin letters are counted only inside ASCII 'A'..'z'.
	latinStart = 65
	latinEnd   = 122

	// threshold is the minimum share of counted letters a script needs.
	threshold = 0.15
)

// Detect classifies text by counting Hebrew-block runes against ASCII Latin
// letters. Runes outside both sets (digits, punctuation, accented letters,
// emoji) are ignored.
func Detect(text string) Language {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}

	hebrew, latin := countScripts(text)
	total := hebrew + latin
	if total == 0 {
		return Unknown
	}

	hebrewRatio := float64(hebrew) / float64(total)
	latinRatio := float64(latin) / float64(total)

	switch {
	case hebrewRatio >= threshold && latinRatio >= threshold:
		return Mixed
	case hebrewRatio >= threshold:
		return Hebrew
	case latinRatio >= threshold:
		return English
	default:
		return Unknown
	}
}

// ContainsHebrew reports whether text has any rune in the Hebrew block.
func ContainsHebrew(text string) bool {
	for _, r := range text {
		if isHebrew(r) {
			return true
		}
	}
	return false
}

// ContainsEnglish reports whether text has any ASCII Latin letter.
func ContainsEnglish(text string) bool {
	for _, r := range text {
		if isLatin(r) {
			return true
		}
	}
	return false
}

func countScripts(text string) (hebrew, latin int) {
	for _, r := range text {
		switch {
		case isHebrew(r):
			hebrew++
		case isLatin(r):
			latin++
		}
	}
	return hebrew, latin
}

func isHebrew(r rune) bool {
	return r >= hebrewStart && r <= hebrewEnd
}

func isLatin(r rune) bool {
	return r >= latinStart && r <= latinEnd && unicode.IsLetter(r)
}
