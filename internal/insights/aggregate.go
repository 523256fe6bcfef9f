// Package insights computes longitudinal wellness reports over a
// session collection. Everything here is a pure function of its input;
// nothing reads or writes storage.
package insights

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/zenith/internal/emotion"
	"github.com/felixgeelhaar/zenith/internal/session"
)

const (
	// cloudMinWordLen: word-cloud tokens must be longer than this.
	// Deliberately stricter than the store-level frequency threshold.
	cloudMinWordLen = 4

	// improvementMinSessions gates the joy-improvement milestone.
	improvementMinSessions = 7

	// trendDeadband is the sentiment delta below which the progress
	// summary stays neutral.
	trendDeadband = 0.5

	// gapPenaltyDays and gapPenalty drive the consistency score.
	gapPenaltyDays = 7
	gapPenalty     = 5
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "i": true, "me": true,
	"my": true, "you": true, "your": true, "it": true, "this": true, "that": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "as": true,
	"be": true, "have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "of": true, "at": true, "by": true, "from": true, "about": true,
	"can": true, "could": true, "would": true, "should": true, "been": true,
	"being": true, "will": true, "shall": true, "may": true, "might": true,
	"must": true, "very": true, "just": true, "only": true, "also": true,
	"not": true, "no": true, "yes": true, "what": true, "which": true,
	"who": true, "when": true, "where": true, "why": true, "how": true,
	"all": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"than": true, "too": true, "up": true, "out": true, "if": true,
	"into": true, "through": true, "during": true, "before": true,
}

var emotionColors = map[emotion.Label]string{
	emotion.Joy:      "#4CAF50",
	emotion.Sadness:  "#2196F3",
	emotion.Anger:    "#F44336",
	emotion.Fear:     "#9C27B0",
	emotion.Surprise: "#FF9800",
	emotion.Neutral:  "#607D8B",
	emotion.Anxiety:  "#E91E63",
}

// DistributionEntry is one label's share of all emotion occurrences.
type DistributionEntry struct {
	Label      emotion.Label `json:"label"`
	Name       string        `json:"name"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"` // one decimal
	Color      string        `json:"color"`
}

// Distribution counts emotion occurrences per label across all
// sessions, most frequent first.
func Distribution(sessions []session.Session) []DistributionEntry {
	counts := make(map[emotion.Label]int)
	total := 0
	for _, sess := range sessions {
		for _, e := range sess.Emotions {
			counts[e.Label]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	out := make([]DistributionEntry, 0, len(counts))
	for label, count := range counts {
		color, ok := emotionColors[label]
		if !ok {
			color = "#999"
		}
		out = append(out, DistributionEntry{
			Label:      label,
			Name:       titleCase(string(label)),
			Count:      count,
			Percentage: math.Round(float64(count)/float64(total)*1000) / 10,
			Color:      color,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// TopEmotions returns the first limit distribution entries.
func TopEmotions(sessions []session.Session, limit int) []DistributionEntry {
	dist := Distribution(sessions)
	if len(dist) > limit {
		dist = dist[:limit]
	}
	return dist
}

// TrendPoint is one session's sentiment summary, used in date order.
type TrendPoint struct {
	Date      time.Time `json:"date"`
	Sentiment int       `json:"sentiment"` // positive minus negative
	Positive  int       `json:"positive"`
	Negative  int       `json:"negative"`
	Neutral   int       `json:"neutral"`
	Total     int       `json:"total"`
}

// Trends maps each session to a sentiment point, sorted ascending by
// date.
func Trends(sessions []session.Session) []TrendPoint {
	sorted := sortByDate(sessions)

	points := make([]TrendPoint, 0, len(sorted))
	for _, sess := range sorted {
		var pos, neg, neut int
		for _, e := range sess.Emotions {
			switch {
			case e.Label.Positive():
				pos++
			case e.Label.Negative():
				neg++
			case e.Label == emotion.Neutral:
				neut++
			}
		}
		points = append(points, TrendPoint{
			Date:      sess.Date,
			Sentiment: pos - neg,
			Positive:  pos,
			Negative:  neg,
			Neutral:   neut,
			Total:     pos + neg + neut,
		})
	}
	return points
}

// Milestone is a derived highlight statistic for display.
type Milestone struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Value       string `json:"value"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// Milestones derives highlight statistics over the full history.
func Milestones(sessions []session.Session) []Milestone {
	sorted := sortByDate(sessions)
	if len(sorted) == 0 {
		return nil
	}

	var milestones []Milestone

	// longest run of consecutive sessions with a positive emotion
	streak, maxStreak := 0, 0
	for _, sess := range sorted {
		hasPositive := false
		for _, e := range sess.Emotions {
			if e.Label.Positive() {
				hasPositive = true
				break
			}
		}
		if hasPositive {
			streak++
			if streak > maxStreak {
				maxStreak = streak
			}
		} else {
			streak = 0
		}
	}
	milestones = append(milestones, Milestone{
		Icon:        "⭐",
		Title:       "Positive Streak",
		Value:       fmt.Sprintf("%d sessions", maxStreak),
		Color:       "#FFD700",
		Description: "Longest consecutive sessions with positive emotions",
	})

	// change in joy frequency between the first and second half
	if len(sorted) >= improvementMinSessions {
		half := (len(sorted) + 1) / 2
		firstHalf, secondHalf := sorted[:half], sorted[half:]

		improvement := int(math.Round(float64(countWithLabel(secondHalf, emotion.Joy)-countWithLabel(firstHalf, emotion.Joy)) / float64(len(firstHalf)) * 100))

		sign := ""
		if improvement > 0 {
			sign = "+"
		}
		milestones = append(milestones, Milestone{
			Icon:        "📈",
			Title:       "Joy Improvement",
			Value:       fmt.Sprintf("%s%d%%", sign, improvement),
			Color:       "#4CAF50",
			Description: "Change in joy frequency from early to recent sessions",
		})
	}

	if dist := Distribution(sorted); len(dist) > 0 {
		milestones = append(milestones, Milestone{
			Icon:        "💙",
			Title:       "Dominant Emotion",
			Value:       dist[0].Name,
			Color:       "#2196F3",
			Description: "Most frequently experienced emotion",
		})
	}

	milestones = append(milestones, Milestone{
		Icon:        "💬",
		Title:       "Total Sessions",
		Value:       fmt.Sprintf("%d sessions", len(sorted)),
		Color:       "#2196F3",
		Description: "Number of sessions completed",
	})

	return milestones
}

// WordCloud counts stop-word-filtered tokens from user messages and
// returns the limit most frequent.
func WordCloud(sessions []session.Session, limit int) []session.WordCount {
	counts := make(map[string]int)
	for _, sess := range sessions {
		for _, msg := range sess.Messages {
			if msg.Role != session.RoleUser || msg.Content == "" {
				continue
			}
			cleaned := nonWord.ReplaceAllString(strings.ToLower(msg.Content), "")
			for _, word := range strings.Fields(cleaned) {
				if len(word) > cloudMinWordLen && !stopWords[word] {
					counts[word]++
				}
			}
		}
	}

	out := make([]session.WordCount, 0, len(counts))
	for word, freq := range counts {
		out = append(out, session.WordCount{Word: word, Frequency: freq})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// AverageMetrics summarizes the typical session.
type AverageMetrics struct {
	AvgEmotions int `json:"avgEmotions"`
	AvgDuration int `json:"avgDuration"`
	AvgMessages int `json:"avgMessages"`
}

func Averages(sessions []session.Session) AverageMetrics {
	if len(sessions) == 0 {
		return AverageMetrics{}
	}

	var emotions, duration, messages int
	for _, sess := range sessions {
		emotions += len(sess.Emotions)
		duration += sess.Duration
		messages += len(sess.Messages)
	}

	n := float64(len(sessions))
	return AverageMetrics{
		AvgEmotions: int(math.Round(float64(emotions) / n)),
		AvgDuration: int(math.Round(float64(duration) / n)),
		AvgMessages: int(math.Round(float64(messages) / n)),
	}
}

// IntensityPoint is one session's summed score per label.
type IntensityPoint struct {
	Date   time.Time                 `json:"date"`
	Scores map[emotion.Label]float64 `json:"scores"`
}

// Intensity returns per-session summed emotion scores in date order.
func Intensity(sessions []session.Session) []IntensityPoint {
	sorted := sortByDate(sessions)

	points := make([]IntensityPoint, 0, len(sorted))
	for _, sess := range sorted {
		scores := make(map[emotion.Label]float64, len(emotion.Labels))
		for _, label := range emotion.Labels {
			scores[label] = 0
		}
		for _, e := range sess.Emotions {
			scores[e.Label] += e.Score
		}
		points = append(points, IntensityPoint{Date: sess.Date, Scores: scores})
	}
	return points
}

// Criteria filters a session collection; zero values are ignored.
type Criteria struct {
	From        *time.Time
	To          *time.Time
	Emotion     emotion.Label
	MinDuration int
	Search      string
}

// Filter applies every non-zero criterion.
func Filter(sessions []session.Session, c Criteria) []session.Session {
	var out []session.Session
	search := strings.ToLower(c.Search)

	for _, sess := range sessions {
		if c.From != nil && c.To != nil && (sess.Date.Before(*c.From) || sess.Date.After(*c.To)) {
			continue
		}
		if c.Emotion != "" && !hasLabel(sess, c.Emotion) {
			continue
		}
		if c.MinDuration > 0 && sess.Duration < c.MinDuration {
			continue
		}
		if search != "" && !matchesContent(sess, search) {
			continue
		}
		out = append(out, sess)
	}
	return out
}

// Trend classifies the overall sentiment direction.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendNeutral   Trend = "neutral"
)

// Progress is the consistency/progress summary.
type Progress struct {
	TotalSessions    int   `json:"totalSessions"`
	EmotionalRange   int   `json:"emotionalRange"`
	ImprovementTrend Trend `json:"improvementTrend"`
	ConsistencyScore int   `json:"consistencyScore"`
}

// Summary compares the first and second half of the sentiment trend and
// scores scheduling consistency.
func Summary(sessions []session.Session) Progress {
	if len(sessions) == 0 {
		return Progress{ImprovementTrend: TrendNeutral}
	}

	trends := Trends(sessions)

	improvement := TrendNeutral
	if len(trends) >= 2 {
		half := len(trends) / 2
		firstAvg := meanSentiment(trends[:half])
		secondAvg := meanSentiment(trends[half:])

		if secondAvg > firstAvg+trendDeadband {
			improvement = TrendImproving
		} else if secondAvg < firstAvg-trendDeadband {
			improvement = TrendDeclining
		}
	}

	sorted := sortByDate(sessions)
	consistency := 100
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Date.Sub(sorted[i-1].Date).Hours() / 24
		if gap > gapPenaltyDays {
			consistency -= gapPenalty
		}
	}
	if consistency < 0 {
		consistency = 0
	}

	return Progress{
		TotalSessions:    len(sessions),
		EmotionalRange:   len(Distribution(sessions)),
		ImprovementTrend: improvement,
		ConsistencyScore: consistency,
	}
}

func meanSentiment(points []TrendPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0
	for _, p := range points {
		sum += p.Sentiment
	}
	return float64(sum) / float64(len(points))
}

func sortByDate(sessions []session.Session) []session.Session {
	sorted := make([]session.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

func countWithLabel(sessions []session.Session, label emotion.Label) int {
	count := 0
	for _, sess := range sessions {
		if hasLabel(sess, label) {
			count++
		}
	}
	return count
}

func hasLabel(sess session.Session, label emotion.Label) bool {
	for _, e := range sess.Emotions {
		if e.Label == label {
			return true
		}
	}
	return false
}

func matchesContent(sess session.Session, lowerSearch string) bool {
	for _, msg := range sess.Messages {
		if strings.Contains(strings.ToLower(msg.Content), lowerSearch) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
