package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/zenith/internal/emotion"
	"github.com/felixgeelhaar/zenith/internal/observe"
	"github.com/felixgeelhaar/zenith/internal/repo"
)

func newTestStore() (*Store, *repo.Memory) {
	mem := repo.NewMemory()
	return NewStore(mem, observe.New(io.Discard, false)), mem
}

func userMsg(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

func assistantMsg(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}

func TestSaveAndGetAll(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	messages := []Message{userMsg("hello"), assistantMsg("hi there"), userMsg("bye")}
	saved, err := s.Save(ctx, messages, Metadata{})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !strings.HasPrefix(saved.ID, "session_") {
		t.Errorf("Unexpected id format: %s", saved.ID)
	}
	if saved.Duration != 3*secondsPerMessage {
		t.Errorf("Expected derived duration %d, got %d", 3*secondsPerMessage, saved.Duration)
	}

	all := s.GetAll(ctx)
	if len(all) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(all))
	}
	got := all[0]
	if got.ID != saved.ID {
		t.Errorf("Expected id %s, got %s", saved.ID, got.ID)
	}
	if len(got.Messages) != 3 || got.Messages[0].Content != "hello" || got.Messages[2].Content != "bye" {
		t.Errorf("Message order not preserved: %v", got.Messages)
	}

	// ids stay unique across saves
	second, _ := s.Save(ctx, messages, Metadata{})
	if second.ID == saved.ID {
		t.Error("Expected unique ids for separate saves")
	}
}

func TestSave_MetadataOverrides(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	saved, err := s.Save(ctx, []Message{userMsg("x")}, Metadata{
		Duration: 600,
		Emotions: []emotion.Emotion{{Label: emotion.Joy, Score: 1.0}},
		Tags:     []string{"morning"},
		Notes:    "felt good",
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if saved.Duration != 600 || saved.Notes != "felt good" {
		t.Errorf("Metadata not applied: %+v", saved)
	}
	if len(saved.Emotions) != 1 || saved.Emotions[0].Label != emotion.Joy {
		t.Errorf("Emotions not applied: %v", saved.Emotions)
	}
}

func TestSave_PersistenceFailure(t *testing.T) {
	s, mem := newTestStore()
	mem.SetErr = errors.New("disk full")

	if _, err := s.Save(context.Background(), []Message{userMsg("x")}, Metadata{}); err == nil {
		t.Fatal("Expected Save to propagate persistence failure")
	}
}

func TestUpdate(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	saved, _ := s.Save(ctx, []Message{userMsg("hello")}, Metadata{
		Emotions: []emotion.Emotion{{Label: emotion.Sadness, Score: 1.0}},
	})

	notes := "follow up next week"
	updated, err := s.Update(ctx, saved.ID, Update{Notes: &notes})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Notes != notes {
		t.Errorf("Expected notes %q, got %q", notes, updated.Notes)
	}
	if updated.UpdatedAt == nil {
		t.Error("Expected UpdatedAt to be stamped")
	}
	if len(updated.Messages) != 1 || updated.Messages[0].Content != "hello" {
		t.Errorf("Messages changed by notes-only update: %v", updated.Messages)
	}
	if len(updated.Emotions) != 1 || updated.Emotions[0].Label != emotion.Sadness {
		t.Errorf("Emotions changed by notes-only update: %v", updated.Emotions)
	}

	if _, err := s.Update(ctx, "session_missing", Update{Notes: &notes}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s, mem := newTestStore()
	ctx := context.Background()

	saved, _ := s.Save(ctx, []Message{userMsg("x")}, Metadata{})

	if !s.Delete(ctx, "session_unknown") {
		t.Error("Deleting an unknown id should report true")
	}
	if !s.Delete(ctx, saved.ID) {
		t.Error("Delete failed")
	}
	if len(s.GetAll(ctx)) != 0 {
		t.Error("Session still present after delete")
	}

	mem.SetErr = errors.New("disk full")
	if s.Delete(ctx, "anything") {
		t.Error("Delete should report false on persistence failure")
	}
}

func TestGetByID(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	saved, _ := s.Save(ctx, []Message{userMsg("x")}, Metadata{})

	if got := s.GetByID(ctx, saved.ID); got == nil || got.ID != saved.ID {
		t.Errorf("GetByID = %v, want %s", got, saved.ID)
	}
	if got := s.GetByID(ctx, "nope"); got != nil {
		t.Errorf("Expected nil for unknown id, got %v", got)
	}
}

func TestQueries(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	dates := []time.Time{base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 10)}
	for i, d := range dates {
		s.now = func() time.Time { return d }
		meta := Metadata{Duration: (i + 1) * 100}
		if i == 0 {
			meta.Emotions = []emotion.Emotion{{Label: emotion.Anxiety, Score: 1.0}}
		}
		if _, err := s.Save(ctx, []Message{userMsg("entry number " + string(rune('a'+i)))}, meta); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	t.Run("DateRange", func(t *testing.T) {
		got := s.ByDateRange(ctx, base, base.AddDate(0, 0, 1))
		if len(got) != 2 {
			t.Errorf("Expected 2 sessions in range (inclusive), got %d", len(got))
		}
	})

	t.Run("ByEmotion", func(t *testing.T) {
		if got := s.ByEmotion(ctx, emotion.Anxiety); len(got) != 1 {
			t.Errorf("Expected 1 anxiety session, got %d", len(got))
		}
		if got := s.ByEmotion(ctx, emotion.Joy); len(got) != 0 {
			t.Errorf("Expected no joy sessions, got %d", len(got))
		}
	})

	t.Run("ByMinDuration", func(t *testing.T) {
		if got := s.ByMinDuration(ctx, 200); len(got) != 2 {
			t.Errorf("Expected 2 sessions >= 200s, got %d", len(got))
		}
	})

	t.Run("Search", func(t *testing.T) {
		if got := s.Search(ctx, "ENTRY NUMBER A"); len(got) != 1 {
			t.Errorf("Expected case-insensitive match, got %d", len(got))
		}
		if got := s.Search(ctx, ""); len(got) != 3 {
			t.Errorf("Empty keyword should match all, got %d", len(got))
		}
	})

	t.Run("Recent", func(t *testing.T) {
		got := s.Recent(ctx, 2)
		if len(got) != 2 {
			t.Fatalf("Expected 2 recent sessions, got %d", len(got))
		}
		if !got[0].Date.After(got[1].Date) {
			t.Error("Recent sessions not in descending date order")
		}
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Save(ctx, []Message{userMsg("first")}, Metadata{Notes: "a"})
	s.Save(ctx, []Message{userMsg("second")}, Metadata{Notes: "b"})

	exported := s.ExportText(ctx)
	before := s.GetAll(ctx)

	if !s.Import(ctx, exported, false) {
		t.Fatal("Import of exported payload failed")
	}

	after := s.GetAll(ctx)
	if len(after) != len(before) {
		t.Fatalf("Round trip changed count: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID || after[i].Notes != before[i].Notes {
			t.Errorf("Round trip changed record %d: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestImport_MergeLastOccurrenceWins(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	saved, _ := s.Save(ctx, []Message{userMsg("original")}, Metadata{Notes: "old"})
	other, _ := s.Save(ctx, []Message{userMsg("keep me")}, Metadata{})

	replacement := *saved
	replacement.Notes = "imported"
	payload := `[{"id":"` + replacement.ID + `","date":"` + replacement.Date.Format(time.RFC3339Nano) + `","messages":[],"duration":0,"emotions":[],"tags":[],"notes":"imported"}]`

	if !s.Import(ctx, payload, true) {
		t.Fatal("Merge import failed")
	}

	all := s.GetAll(ctx)
	if len(all) != 2 {
		t.Fatalf("Expected 2 sessions after merge, got %d", len(all))
	}
	// the replaced record keeps its original position
	if all[0].ID != saved.ID || all[0].Notes != "imported" {
		t.Errorf("Imported record did not replace existing one: %+v", all[0])
	}
	if all[1].ID != other.ID {
		t.Errorf("Unrelated session disturbed: %+v", all[1])
	}
}

func TestImport_RejectsNonArray(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Save(ctx, []Message{userMsg("x")}, Metadata{})

	if s.Import(ctx, `{"not":"an array"}`, false) {
		t.Error("Expected non-array payload to be rejected")
	}
	if s.Import(ctx, `garbage`, true) {
		t.Error("Expected unparseable payload to be rejected")
	}
	if len(s.GetAll(ctx)) != 1 {
		t.Error("Rejected import mutated existing state")
	}
}

func TestImport_RejectsNull(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Save(ctx, []Message{userMsg("keep me")}, Metadata{})

	if s.Import(ctx, `null`, false) {
		t.Error("Expected null payload to be rejected")
	}
	if s.Import(ctx, `null`, true) {
		t.Error("Expected null payload to be rejected in merge mode")
	}
	if got := len(s.GetAll(ctx)); got != 1 {
		t.Errorf("Null import mutated state: %d sessions remain", got)
	}
}

func TestArchiveOlderThan(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	ages := []int{200, 100, 10, 0} // days ago
	for _, age := range ages {
		d := now.AddDate(0, 0, -age)
		s.now = func() time.Time { return d }
		s.Save(ctx, []Message{userMsg("x")}, Metadata{})
	}
	s.now = func() time.Time { return now }

	res, err := s.ArchiveOlderThan(ctx, 90)
	if err != nil {
		t.Fatalf("ArchiveOlderThan failed: %v", err)
	}
	if res.ArchivedCount != 2 || res.RemainingCount != 2 {
		t.Errorf("Expected 2 archived / 2 remaining, got %+v", res)
	}

	active := s.GetAll(ctx)
	archived := s.Archived(ctx)
	if len(active) != 2 || len(archived) != 2 {
		t.Fatalf("Post-archive collections wrong: %d active, %d archived", len(active), len(archived))
	}

	// the two collections partition the original set
	seen := make(map[string]bool)
	for _, sess := range append(active, archived...) {
		if seen[sess.ID] {
			t.Errorf("Session %s present in both collections", sess.ID)
		}
		seen[sess.ID] = true
	}
	if len(seen) != 4 {
		t.Errorf("Expected 4 distinct sessions, got %d", len(seen))
	}
	for _, sess := range archived {
		if !sess.Date.Before(now.AddDate(0, 0, -90)) {
			t.Errorf("Session %s archived too eagerly (date %s)", sess.ID, sess.Date)
		}
	}
}

func TestClearAll(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Save(ctx, []Message{userMsg("x")}, Metadata{})
	if !s.ClearAll(ctx) {
		t.Fatal("ClearAll failed")
	}
	if len(s.GetAll(ctx)) != 0 {
		t.Error("Sessions remain after ClearAll")
	}
}

func TestUsage(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	empty := s.Usage(ctx)
	if empty.TotalKB != 0 {
		t.Errorf("Expected zero usage on empty store, got %+v", empty)
	}

	s.Save(ctx, []Message{userMsg(strings.Repeat("w ", 600))}, Metadata{})
	usage := s.Usage(ctx)
	if usage.ActiveKB <= 0 {
		t.Errorf("Expected positive active size, got %+v", usage)
	}
	if usage.TotalKB != roundKB(usage.ActiveKB+usage.ArchiveKB) {
		t.Errorf("Total does not match parts: %+v", usage)
	}
}

func TestStats(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if got := s.Stats(ctx); got.Total != 0 || got.FirstSession != nil {
		t.Errorf("Expected zero stats, got %+v", got)
	}

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		d := base.AddDate(0, 0, i)
		s.now = func() time.Time { return d }
		s.Save(ctx, []Message{userMsg("a"), assistantMsg("b")}, Metadata{Duration: 100})
	}

	got := s.Stats(ctx)
	if got.Total != 2 || got.TotalDuration != 200 || got.AvgDuration != 100 {
		t.Errorf("Duration stats wrong: %+v", got)
	}
	if got.TotalMessages != 4 || got.AvgMessages != 2 {
		t.Errorf("Message stats wrong: %+v", got)
	}
	if !got.FirstSession.Equal(base) || !got.LastSession.Equal(base.AddDate(0, 0, 1)) {
		t.Errorf("Date bounds wrong: %+v", got)
	}
}

func TestEmotionFrequency(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Save(ctx, []Message{userMsg("x")}, Metadata{Emotions: []emotion.Emotion{
		{Label: emotion.Joy, Score: 0.7},
		{Label: emotion.Fear, Score: 0.3},
	}})
	s.Save(ctx, []Message{userMsg("y")}, Metadata{Emotions: []emotion.Emotion{
		{Label: emotion.Joy, Score: 1.0},
	}})

	freq := s.EmotionFrequency(ctx)
	if freq[emotion.Joy] != 2 || freq[emotion.Fear] != 1 {
		t.Errorf("Unexpected frequency map: %v", freq)
	}
}

func TestWordFrequency(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Save(ctx, []Message{
		userMsg("Working, working and working on the job!"),
		assistantMsg("working working working working"), // assistant text is ignored
	}, Metadata{})

	freq := s.WordFrequency(ctx)
	if len(freq) == 0 {
		t.Fatal("Expected word frequencies")
	}
	if freq[0].Word != "working" || freq[0].Frequency != 3 {
		t.Errorf("Expected 'working' x3 first, got %+v", freq[0])
	}
	for _, wc := range freq {
		if len(wc.Word) <= minWordLen {
			t.Errorf("Short token %q should have been dropped", wc.Word)
		}
	}
}

func TestGetAll_CorruptedCollection(t *testing.T) {
	s, mem := newTestStore()
	ctx := context.Background()

	mem.Set(ctx, ActiveCollection, []byte(`{"oops": not json`))
	if got := s.GetAll(ctx); len(got) != 0 {
		t.Errorf("Expected empty result for corrupted collection, got %v", got)
	}

	// the store stays usable afterwards
	if _, err := s.Save(ctx, []Message{userMsg("x")}, Metadata{}); err != nil {
		t.Fatalf("Save after corruption failed: %v", err)
	}
}
