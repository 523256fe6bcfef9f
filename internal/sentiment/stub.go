package sentiment

import (
	"context"

	"github.com/felixgeelhaar/zenith/internal/emotion"
)

// Stub is a fixed-verdict estimator for offline use and testing.
type Stub struct {
	Verdict emotion.Verdict
	Err     error
}

func NewStub() *Stub {
	return &Stub{Verdict: emotion.Verdict{Label: "positive", Score: 0.5}}
}

func (s *Stub) Name() string {
	return "stub"
}

func (s *Stub) Estimate(ctx context.Context, text string) (emotion.Verdict, error) {
	if s.Err != nil {
		return emotion.Verdict{}, s.Err
	}
	return s.Verdict, nil
}
