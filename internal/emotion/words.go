package emotion

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// EmotionalWord is one keyword occurrence with its owning label.
type EmotionalWord struct {
	Word  string `json:"word"`
	Label Label  `json:"emotion"`
}

// EmotionalWords enumerates every keyword occurrence in the text, one
// entry per occurrence, without deduplication.
func EmotionalWords(text string) []EmotionalWord {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), "")
	words := strings.Fields(cleaned)

	var found []EmotionalWord
	for _, label := range Labels {
		for _, kw := range keywords[label] {
			for _, w := range words {
				if w == kw {
					found = append(found, EmotionalWord{Word: kw, Label: label})
				}
			}
		}
	}
	return found
}
