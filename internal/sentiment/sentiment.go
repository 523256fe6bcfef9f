// Package sentiment provides model-backed sentiment estimators. Each
// estimator asks its model for a single coarse verdict over a text
// chunk; the emotion classifier treats the result as a best-effort
// secondary signal.
package sentiment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/zenith/internal/emotion"
)

const verdictPrompt = `Classify the overall sentiment of the following text.
Reply with exactly one line in the form "POSITIVE <confidence>" or
"NEGATIVE <confidence>" where <confidence> is a number between 0 and 1.
Do not add any other text.

Text:
%s`

// Config selects and parameterizes an estimator backend.
type Config struct {
	Provider string // ollama, openai, gemini, stub
	Model    string
	APIKey   string
	BaseURL  string
}

// New constructs the estimator named by cfg.Provider.
func New(cfg Config) (emotion.Estimator, error) {
	switch cfg.Provider {
	case "ollama", "":
		return NewOllama(cfg.Model)
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "gemini":
		return NewGemini(cfg.APIKey, cfg.Model)
	case "stub":
		return NewStub(), nil
	default:
		return nil, fmt.Errorf("unknown sentiment provider: %s", cfg.Provider)
	}
}

// parseVerdict extracts a verdict from a model reply. Models do not
// always follow the format exactly, so it scans for the first line
// containing a recognized label.
func parseVerdict(raw string) (emotion.Verdict, error) {
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}

		label := strings.ToLower(strings.Trim(fields[0], ".,:"))
		if label != "positive" && label != "negative" {
			continue
		}

		score := 0.5
		if len(fields) > 1 {
			if parsed, err := strconv.ParseFloat(strings.Trim(fields[1], ".,"), 64); err == nil && parsed > 0 && parsed <= 1 {
				score = parsed
			}
		}
		return emotion.Verdict{Label: label, Score: score}, nil
	}
	return emotion.Verdict{}, errors.New("no verdict in model reply")
}
