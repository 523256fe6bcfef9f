package insights

import (
	"github.com/felixgeelhaar/zenith/internal/emotion"
	"github.com/felixgeelhaar/zenith/internal/session"
)

const (
	// DefaultRecommendationLimit caps the extended guidance list; the
	// compact path uses SimpleRecommendationLimit.
	DefaultRecommendationLimit = 5
	SimpleRecommendationLimit  = 4

	// dominantCountThreshold: label-specific suggestions fire only when
	// the dominant emotion occurred more often than this.
	dominantCountThreshold = 5

	// trendWindow: number of points compared at each end of the trend.
	trendWindow = 3

	// minSessionsPerWeek below which the frequency rule fires.
	minSessionsPerWeek = 2

	// positiveShareFloor below which the balance rule fires.
	positiveShareFloor = 0.3
)

var onboarding = []string{
	"Start your journey by having your first session",
	"Regular sessions help build positive habits and emotional awareness",
	"Be patient with yourself, healing takes time",
}

var dominantSuggestions = map[emotion.Label][]string{
	emotion.Sadness: {
		"Consider practicing gratitude journaling to shift focus toward positive experiences",
		"Explore grounding techniques like the 5-4-3-2-1 sensory method when feeling down",
		"Reach out to trusted friends or family for support",
	},
	emotion.Anxiety: {
		"Focus on mindfulness exercises and deep breathing techniques like 4-7-8 breathing",
		"Try progressive muscle relaxation before stressful situations",
		"Limit caffeine intake and maintain consistent sleep schedules",
	},
	emotion.Anger: {
		"Practice the STOP technique when anger arises: Stop, Take a breath, Observe, Proceed",
		"Channel emotions into physical exercise or creative outlets",
		"Consider journaling to express and process angry feelings",
	},
	emotion.Joy: {
		"Celebrate small victories and acknowledge your progress daily",
		"Share your positive experiences with supportive friends or family",
		"Keep a joy journal to capture moments of happiness",
	},
}

const (
	improvingNote = "Your mood has been improving recently, keep up the great work!"
	decliningNote = "You might benefit from additional coping strategies, consider exploring new techniques"
	frequencyNote = "Try to schedule sessions at least 2-3 times per week for better continuity"
)

var balanceSuggestions = []string{
	"Focus on activities that bring you joy and peace",
	"Practice self-compassion and remember that healing is not linear",
}

var maintenance = []string{
	"Continue your regular sessions",
	"Practice self-compassion and patience with your journey",
	"Maintain healthy sleep and exercise routines",
	"Stay connected with your support network",
}

// Recommend synthesizes guidance from the distribution and trend of a
// session history. Rules run independently; the collected output is
// truncated to limit entries.
func Recommend(sessions []session.Session, distribution []DistributionEntry, limit int) []string {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	if len(sessions) == 0 {
		return truncate(onboarding, limit)
	}

	var recs []string

	if len(distribution) > 0 {
		dominant := distribution[0]
		if dominant.Count > dominantCountThreshold {
			recs = append(recs, dominantSuggestions[dominant.Label]...)
		}
	}

	trends := Trends(sessions)
	if len(trends) >= trendWindow {
		recent := meanSentiment(trends[len(trends)-trendWindow:])
		older := meanSentiment(trends[:trendWindow])
		if recent > older {
			recs = append(recs, improvingNote)
		} else if recent < older {
			recs = append(recs, decliningNote)
		}
	}

	if perWeek, ok := sessionsPerWeek(sessions); ok && perWeek < minSessionsPerWeek {
		recs = append(recs, frequencyNote)
	}

	if share, ok := positiveShare(distribution); ok && share < positiveShareFloor {
		recs = append(recs, balanceSuggestions...)
	}

	if len(recs) == 0 {
		recs = append(recs, maintenance...)
	}

	return truncate(recs, limit)
}

// sessionsPerWeek reports the average weekly session rate. It is
// undefined when the history spans less than a day.
func sessionsPerWeek(sessions []session.Session) (float64, bool) {
	if len(sessions) < 2 {
		return 0, false
	}

	first, last := sessions[0].Date, sessions[0].Date
	for _, sess := range sessions {
		if sess.Date.Before(first) {
			first = sess.Date
		}
		if sess.Date.After(last) {
			last = sess.Date
		}
	}

	days := last.Sub(first).Hours() / 24
	if days <= 0 {
		return 0, false
	}
	return float64(len(sessions)) / days * 7, true
}

// positiveShare reports the positive fraction of all recorded emotion
// occurrences. It is undefined when nothing was recorded, in which case
// the balance rule does not apply.
func positiveShare(distribution []DistributionEntry) (float64, bool) {
	total, positive := 0, 0
	for _, entry := range distribution {
		total += entry.Count
		if entry.Label.Positive() {
			positive += entry.Count
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(positive) / float64(total), true
}

func truncate(recs []string, limit int) []string {
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// WeeklyRate is exported for the insights report view.
func WeeklyRate(sessions []session.Session) float64 {
	rate, ok := sessionsPerWeek(sessions)
	if !ok {
		return 0
	}
	return rate
}
