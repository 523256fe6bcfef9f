package emotion

import (
	"context"
	"fmt"
	"math"
)

// Label identifies one of the fixed emotion categories.
type Label string

const (
	Joy      Label = "joy"
	Sadness  Label = "sadness"
	Anger    Label = "anger"
	Fear     Label = "fear"
	Anxiety  Label = "anxiety"
	Surprise Label = "surprise"
	Neutral  Label = "neutral"
)

// Labels lists all categories in canonical order. Iteration over keyword
// sets follows this order so classification output is deterministic.
var Labels = []Label{Joy, Sadness, Anger, Fear, Anxiety, Surprise, Neutral}

// Positive reports whether the label belongs to the positive category.
func (l Label) Positive() bool {
	return l == Joy || l == Surprise
}

// Negative reports whether the label belongs to the negative category.
func (l Label) Negative() bool {
	return l == Sadness || l == Anger || l == Fear || l == Anxiety
}

// Emotion is one ranked entry of an emotion signature.
type Emotion struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// Verdict is a coarse positive/negative sentiment estimate for a text chunk.
type Verdict struct {
	Label string  // "positive" or "negative"
	Score float64 // confidence in (0,1]
}

// Estimator produces sentiment verdicts. Implementations live in
// internal/sentiment; the classifier treats them as best-effort.
type Estimator interface {
	Estimate(ctx context.Context, text string) (Verdict, error)
	Name() string
}

// Dominant returns the highest-scored entry, or a zero-score neutral
// entry when the signature is empty.
func Dominant(emotions []Emotion) Emotion {
	if len(emotions) == 0 {
		return Emotion{Label: Neutral, Score: 0}
	}
	return emotions[0]
}

var summaryMoods = map[Label]string{
	Joy:      "joyful",
	Sadness:  "sad",
	Anger:    "angry",
	Fear:     "fearful",
	Anxiety:  "anxious",
	Surprise: "surprised",
	Neutral:  "neutral",
}

// Summary formats a one-line description of the dominant emotion,
// e.g. "Feeling joyful (62%)".
func Summary(emotions []Emotion) string {
	if len(emotions) == 0 {
		return "Neutral"
	}

	dominant := emotions[0]
	percentage := int(math.Round(dominant.Score * 100))

	mood, ok := summaryMoods[dominant.Label]
	if !ok {
		return fmt.Sprintf("Feeling %s", dominant.Label)
	}
	return fmt.Sprintf("Feeling %s (%d%%)", mood, percentage)
}
