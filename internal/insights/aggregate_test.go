package insights

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/zenith/internal/emotion"
	"github.com/felixgeelhaar/zenith/internal/session"
)

var day = 24 * time.Hour

func sessAt(date time.Time, labels ...emotion.Label) session.Session {
	emotions := make([]emotion.Emotion, 0, len(labels))
	for _, l := range labels {
		emotions = append(emotions, emotion.Emotion{Label: l, Score: 1.0})
	}
	return session.Session{
		ID:       "s_" + date.Format("20060102"),
		Date:     date,
		Emotions: emotions,
	}
}

func baseDate() time.Time {
	return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
}

func TestDistribution(t *testing.T) {
	base := baseDate()
	sessions := []session.Session{
		sessAt(base, emotion.Joy),
		sessAt(base.Add(day), emotion.Joy),
		sessAt(base.Add(2*day), emotion.Joy),
		sessAt(base.Add(3*day), emotion.Sadness),
	}

	dist := Distribution(sessions)
	if len(dist) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(dist))
	}
	if dist[0].Label != emotion.Joy || dist[0].Percentage != 75.0 {
		t.Errorf("Expected joy 75.0%%, got %s %.1f%%", dist[0].Label, dist[0].Percentage)
	}
	if dist[1].Label != emotion.Sadness || dist[1].Percentage != 25.0 {
		t.Errorf("Expected sadness 25.0%%, got %s %.1f%%", dist[1].Label, dist[1].Percentage)
	}
	if dist[0].Name != "Joy" {
		t.Errorf("Expected display name 'Joy', got %q", dist[0].Name)
	}

	if Distribution(nil) != nil {
		t.Error("Expected nil distribution for empty history")
	}
}

func TestTrends(t *testing.T) {
	base := baseDate()
	// deliberately out of order
	sessions := []session.Session{
		sessAt(base.Add(day), emotion.Sadness, emotion.Anger),
		sessAt(base, emotion.Joy, emotion.Surprise, emotion.Neutral),
	}

	points := Trends(sessions)
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if !points[0].Date.Equal(base) {
		t.Error("Points not sorted ascending by date")
	}
	if points[0].Sentiment != 2 || points[0].Positive != 2 || points[0].Neutral != 1 {
		t.Errorf("First point wrong: %+v", points[0])
	}
	if points[1].Sentiment != -2 || points[1].Negative != 2 {
		t.Errorf("Second point wrong: %+v", points[1])
	}
}

func TestMilestones_PositiveStreak(t *testing.T) {
	base := baseDate()
	sessions := []session.Session{
		sessAt(base, emotion.Joy),
		sessAt(base.Add(day), emotion.Joy),
		sessAt(base.Add(2*day), emotion.Joy),
		sessAt(base.Add(3*day), emotion.Sadness),
	}

	milestones := Milestones(sessions)
	if len(milestones) == 0 {
		t.Fatal("Expected milestones")
	}
	if milestones[0].Title != "Positive Streak" || milestones[0].Value != "3 sessions" {
		t.Errorf("Expected streak of 3, got %+v", milestones[0])
	}

	var dominant, total *Milestone
	for i := range milestones {
		switch milestones[i].Title {
		case "Dominant Emotion":
			dominant = &milestones[i]
		case "Total Sessions":
			total = &milestones[i]
		}
	}
	if dominant == nil || dominant.Value != "Joy" {
		t.Errorf("Expected dominant emotion Joy, got %+v", dominant)
	}
	if total == nil || total.Value != "4 sessions" {
		t.Errorf("Expected 4 total sessions, got %+v", total)
	}
}

func TestMilestones_JoyImprovementGate(t *testing.T) {
	base := baseDate()

	var six []session.Session
	for i := 0; i < 6; i++ {
		six = append(six, sessAt(base.Add(time.Duration(i)*day), emotion.Joy))
	}
	for _, m := range Milestones(six) {
		if m.Title == "Joy Improvement" {
			t.Error("Improvement milestone should need at least 7 sessions")
		}
	}

	var eight []session.Session
	for i := 0; i < 4; i++ {
		eight = append(eight, sessAt(base.Add(time.Duration(i)*day), emotion.Sadness))
	}
	for i := 4; i < 8; i++ {
		eight = append(eight, sessAt(base.Add(time.Duration(i)*day), emotion.Joy))
	}

	found := false
	for _, m := range Milestones(eight) {
		if m.Title == "Joy Improvement" {
			found = true
			if m.Value != "+100%" {
				t.Errorf("Expected +100%% improvement, got %q", m.Value)
			}
		}
	}
	if !found {
		t.Error("Expected improvement milestone with 8 sessions")
	}
}

func TestMilestones_Empty(t *testing.T) {
	if got := Milestones(nil); got != nil {
		t.Errorf("Expected nil for empty history, got %v", got)
	}
}

func TestWordCloud(t *testing.T) {
	base := baseDate()
	sess := session.Session{
		Date: base,
		Messages: []session.Message{
			{Role: session.RoleUser, Content: "Mornings before every deadline feel stressful, stressful mornings"},
			{Role: session.RoleAssistant, Content: "assistant words never counted counted counted"},
		},
	}

	cloud := WordCloud([]session.Session{sess}, 10)

	byWord := make(map[string]int)
	for _, wc := range cloud {
		byWord[wc.Word] = wc.Frequency
		if len(wc.Word) <= cloudMinWordLen {
			t.Errorf("Token %q at or under length threshold survived", wc.Word)
		}
		if stopWords[wc.Word] {
			t.Errorf("Stop word %q survived", wc.Word)
		}
	}
	if byWord["stressful"] != 2 || byWord["mornings"] != 2 {
		t.Errorf("Unexpected counts: %v", byWord)
	}
	if byWord["counted"] != 0 {
		t.Error("Assistant content leaked into the cloud")
	}
	if byWord["every"] != 0 {
		t.Error("Stop word 'every' survived")
	}

	if got := WordCloud([]session.Session{sess}, 1); len(got) != 1 {
		t.Errorf("Limit not applied: %v", got)
	}
}

func TestAverages(t *testing.T) {
	base := baseDate()
	sessions := []session.Session{
		{Date: base, Duration: 100, Messages: []session.Message{{Role: session.RoleUser}}, Emotions: []emotion.Emotion{{Label: emotion.Joy, Score: 1}}},
		{Date: base.Add(day), Duration: 300, Messages: []session.Message{{Role: session.RoleUser}, {Role: session.RoleAssistant}, {Role: session.RoleUser}}},
	}

	got := Averages(sessions)
	if got.AvgDuration != 200 || got.AvgMessages != 2 || got.AvgEmotions != 1 {
		t.Errorf("Unexpected averages: %+v", got)
	}

	if zero := Averages(nil); zero != (AverageMetrics{}) {
		t.Errorf("Expected zero metrics, got %+v", zero)
	}
}

func TestIntensity(t *testing.T) {
	base := baseDate()
	sess := session.Session{
		Date: base,
		Emotions: []emotion.Emotion{
			{Label: emotion.Joy, Score: 0.4},
			{Label: emotion.Joy, Score: 0.2},
			{Label: emotion.Fear, Score: 0.4},
		},
	}

	points := Intensity([]session.Session{sess})
	if len(points) != 1 {
		t.Fatalf("Expected 1 point, got %d", len(points))
	}
	if got := points[0].Scores[emotion.Joy]; got < 0.59 || got > 0.61 {
		t.Errorf("Expected joy intensity ~0.6, got %f", got)
	}
	if points[0].Scores[emotion.Sadness] != 0 {
		t.Error("Expected zero entry for unseen label")
	}
}

func TestFilter(t *testing.T) {
	base := baseDate()
	sessions := []session.Session{
		{Date: base, Duration: 50, Emotions: []emotion.Emotion{{Label: emotion.Joy, Score: 1}}, Messages: []session.Message{{Role: session.RoleUser, Content: "a walk in the park"}}},
		{Date: base.Add(10 * day), Duration: 500, Emotions: []emotion.Emotion{{Label: emotion.Anxiety, Score: 1}}, Messages: []session.Message{{Role: session.RoleUser, Content: "deadline pressure"}}},
	}

	from, to := base.Add(-day), base.Add(day)
	if got := Filter(sessions, Criteria{From: &from, To: &to}); len(got) != 1 || got[0].Duration != 50 {
		t.Errorf("Date filter failed: %v", got)
	}
	if got := Filter(sessions, Criteria{Emotion: emotion.Anxiety}); len(got) != 1 {
		t.Errorf("Emotion filter failed: %v", got)
	}
	if got := Filter(sessions, Criteria{MinDuration: 100}); len(got) != 1 || got[0].Duration != 500 {
		t.Errorf("Duration filter failed: %v", got)
	}
	if got := Filter(sessions, Criteria{Search: "DEADLINE"}); len(got) != 1 {
		t.Errorf("Search filter failed: %v", got)
	}
	if got := Filter(sessions, Criteria{}); len(got) != 2 {
		t.Errorf("Empty criteria should pass everything: %v", got)
	}
}

func TestSummary(t *testing.T) {
	base := baseDate()

	t.Run("Empty", func(t *testing.T) {
		got := Summary(nil)
		if got.ImprovementTrend != TrendNeutral || got.TotalSessions != 0 {
			t.Errorf("Unexpected empty summary: %+v", got)
		}
	})

	t.Run("Improving", func(t *testing.T) {
		sessions := []session.Session{
			sessAt(base, emotion.Sadness),
			sessAt(base.Add(day), emotion.Sadness),
			sessAt(base.Add(2*day), emotion.Joy),
			sessAt(base.Add(3*day), emotion.Joy),
		}
		if got := Summary(sessions); got.ImprovementTrend != TrendImproving {
			t.Errorf("Expected improving, got %s", got.ImprovementTrend)
		}
	})

	t.Run("Declining", func(t *testing.T) {
		sessions := []session.Session{
			sessAt(base, emotion.Joy),
			sessAt(base.Add(day), emotion.Joy),
			sessAt(base.Add(2*day), emotion.Sadness),
			sessAt(base.Add(3*day), emotion.Anger),
		}
		if got := Summary(sessions); got.ImprovementTrend != TrendDeclining {
			t.Errorf("Expected declining, got %s", got.ImprovementTrend)
		}
	})

	t.Run("DeadbandStaysNeutral", func(t *testing.T) {
		sessions := []session.Session{
			sessAt(base, emotion.Joy),
			sessAt(base.Add(day), emotion.Joy),
		}
		if got := Summary(sessions); got.ImprovementTrend != TrendNeutral {
			t.Errorf("Expected neutral inside deadband, got %s", got.ImprovementTrend)
		}
	})

	t.Run("ConsistencyPenalty", func(t *testing.T) {
		sessions := []session.Session{
			sessAt(base, emotion.Joy),
			sessAt(base.Add(10*day), emotion.Joy), // one gap > 7 days
			sessAt(base.Add(11*day), emotion.Joy),
		}
		if got := Summary(sessions); got.ConsistencyScore != 95 {
			t.Errorf("Expected consistency 95, got %d", got.ConsistencyScore)
		}
	})

	t.Run("ConsistencyClamped", func(t *testing.T) {
		var sessions []session.Session
		for i := 0; i < 25; i++ {
			sessions = append(sessions, sessAt(base.Add(time.Duration(i*10)*day), emotion.Joy))
		}
		if got := Summary(sessions); got.ConsistencyScore != 0 {
			t.Errorf("Expected consistency clamped to 0, got %d", got.ConsistencyScore)
		}
	})
}

func TestTopEmotions(t *testing.T) {
	base := baseDate()
	sessions := []session.Session{
		sessAt(base, emotion.Joy, emotion.Sadness, emotion.Fear),
		sessAt(base.Add(day), emotion.Joy),
	}

	top := TopEmotions(sessions, 2)
	if len(top) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(top))
	}
	if top[0].Label != emotion.Joy || top[0].Count != 2 {
		t.Errorf("Expected joy x2 first, got %+v", top[0])
	}
	if top[0].Color == "" {
		t.Error("Expected a display color")
	}
}
