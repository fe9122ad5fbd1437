package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{name: "empty", text: "", want: Unknown},
		{name: "whitespace", text: "   \t ", want: Unknown},
		{name: "punctuation and digits", text: "12:30 !!! ?", want: Unknown},
		{name: "emoji only", text: "📅😊", want: Unknown},
		{name: "english", text: "meeting at 3pm tomorrow", want: English},
		{name: "hebrew", text: "ניפגש מחר בשעה חמש", want: Hebrew},
		{name: "mixed", text: "פגישה zoom מחר", want: Mixed},
		{name: "accents and emoji stay english", text: "café meeting at 2pm with André & José 📅", want: English},
		{name: "small latin share stays hebrew", text: "ניפגש מחר בשעה חמש בערב בבית a", want: Hebrew},
		{name: "brackets are not letters", text: "[]^_`", want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestContainsScripts(t *testing.T) {
	assert.True(t, ContainsHebrew("see you מחר"))
	assert.False(t, ContainsHebrew("see you tomorrow"))
	assert.True(t, ContainsEnglish("see you מחר"))
	assert.False(t, ContainsEnglish("ניפגש מחר 12:00"))
}
