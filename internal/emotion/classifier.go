package emotion

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/zenith/internal/observe"
)

const (
	// maxChunkWords bounds the text passed to the estimator per call.
	maxChunkWords = 400

	// scoreFloor drops trace entries after normalization.
	scoreFloor = 0.05

	// keywordTopN caps the keyword-only result.
	keywordTopN = 3
)

// EstimatorFactory constructs the secondary sentiment estimator. It is
// invoked at most once, on first use or Preload.
type EstimatorFactory func(ctx context.Context) (Estimator, error)

// Classifier maps raw text to a ranked emotion signature. The keyword
// pass is authoritative; the estimator signal is advisory and
// best-effort. Classify never fails.
type Classifier struct {
	obs     *observe.Observer
	factory EstimatorFactory

	once    sync.Once
	est     Estimator
	initErr error
}

func NewClassifier(obs *observe.Observer, factory EstimatorFactory) *Classifier {
	return &Classifier{obs: obs, factory: factory}
}

// Preload initializes the estimator ahead of the first classification.
// Initialization happens once regardless of how many callers race here.
func (c *Classifier) Preload(ctx context.Context) error {
	c.init(ctx)
	return c.initErr
}

func (c *Classifier) init(ctx context.Context) {
	c.once.Do(func() {
		if c.factory == nil {
			return
		}
		c.est, c.initErr = c.factory(ctx)
		if c.initErr != nil {
			c.obs.Log().Warn().Err(c.initErr).Msg("sentiment estimator unavailable, keyword pass only")
		}
	})
}

// Classify analyzes a text and returns a non-empty ranked signature.
// Scores sum to 1.0 before the floor filter is applied.
func (c *Classifier) Classify(ctx context.Context, text string) (result []Emotion) {
	ctx, span := c.obs.StartSpan(ctx, "classify")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			c.obs.Log().Error().Str("panic", fmt.Sprint(r)).Msg("classification failed, returning neutral")
			result = []Emotion{{Label: Neutral, Score: 0.5}}
		}
	}()

	if strings.TrimSpace(text) == "" {
		return []Emotion{{Label: Neutral, Score: 1.0}}
	}

	base := keywordScores(text)
	if len(base) == 0 {
		return []Emotion{{Label: Neutral, Score: 1.0}}
	}

	// The estimator signal is computed for observability but not merged
	// into the returned scores; the keyword pass stays authoritative.
	if advisory := c.estimatorSignal(ctx, text); len(advisory) > 0 {
		c.obs.Log().Debug().Int("entries", len(advisory)).Msg("secondary signal computed and discarded")
	}

	normalized := normalize(base)
	if len(normalized) == 0 {
		return []Emotion{{Label: Neutral, Score: 1.0}}
	}
	return normalized
}

// ClassifyBatch runs Classify over each text in order.
func (c *Classifier) ClassifyBatch(ctx context.Context, texts []string) [][]Emotion {
	results := make([][]Emotion, 0, len(texts))
	for _, text := range texts {
		results = append(results, c.Classify(ctx, text))
	}
	return results
}

// KeywordEmotions runs only the deterministic keyword pass, keeping the
// top entries.
func (c *Classifier) KeywordEmotions(text string) []Emotion {
	scored := normalize(keywordScores(text))
	if len(scored) == 0 {
		return []Emotion{{Label: Neutral, Score: 1.0}}
	}
	if len(scored) > keywordTopN {
		scored = scored[:keywordTopN]
	}
	return scored
}

func (c *Classifier) estimatorSignal(ctx context.Context, text string) []Emotion {
	c.init(ctx)
	if c.est == nil {
		return nil
	}

	var signal []Emotion
	for _, chunk := range splitChunks(text, maxChunkWords) {
		verdict, err := c.est.Estimate(ctx, chunk)
		if err != nil {
			c.obs.Log().Warn().Err(err).Str("estimator", c.est.Name()).Msg("estimator call failed, using keywords only")
			return nil
		}
		signal = append(signal, mapVerdict(verdict)...)
	}
	return signal
}

// keywordScores counts keyword hits per label. Labels without hits are
// excluded.
func keywordScores(text string) []Emotion {
	lower := strings.ToLower(text)

	var scored []Emotion
	for _, label := range Labels {
		matches := 0
		for _, kw := range keywords[label] {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		if matches > 0 {
			scored = append(scored, Emotion{Label: label, Score: float64(matches)})
		}
	}
	return scored
}

// normalize scales scores to sum to 1.0, applies the floor filter and
// sorts descending. Ties keep canonical label order.
func normalize(emotions []Emotion) []Emotion {
	var total float64
	for _, e := range emotions {
		total += e.Score
	}
	if total == 0 {
		return nil
	}

	var out []Emotion
	for _, e := range emotions {
		score := e.Score / total
		if score > scoreFloor {
			out = append(out, Emotion{Label: e.Label, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// mapVerdict spreads a binary sentiment verdict over emotion labels.
func mapVerdict(v Verdict) []Emotion {
	if strings.Contains(strings.ToLower(v.Label), "positive") {
		return []Emotion{
			{Label: Joy, Score: v.Score * 0.7},
			{Label: Surprise, Score: v.Score * 0.3},
		}
	}
	return []Emotion{
		{Label: Sadness, Score: v.Score * 0.4},
		{Label: Anxiety, Score: v.Score * 0.3},
		{Label: Anger, Score: v.Score * 0.2},
		{Label: Fear, Score: v.Score * 0.1},
	}
}

func splitChunks(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var chunks []string
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
