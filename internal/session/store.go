package session

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/zenith/internal/emotion"
	"github.com/felixgeelhaar/zenith/internal/observe"
	"github.com/felixgeelhaar/zenith/internal/repo"
)

const (
	// ActiveCollection and ArchiveCollection are the only two
	// collections this engine persists. A session belongs to exactly
	// one of them at any time.
	ActiveCollection  = "sessions"
	ArchiveCollection = "sessions_archive"

	// secondsPerMessage derives a duration when none was recorded.
	secondsPerMessage = 30

	// minWordLen: tokens must be longer than this to count toward the
	// word-frequency report. The word cloud in internal/insights uses
	// its own, stricter threshold.
	minWordLen = 3

	idSuffixLen      = 9
	idSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Store owns the canonical session collections. Every mutating call
// reads, modifies and rewrites a whole collection; callers always
// receive independent copies.
type Store struct {
	repo repo.Repository
	obs  *observe.Observer
	now  func() time.Time
}

func NewStore(r repo.Repository, obs *observe.Observer) *Store {
	return &Store{repo: r, obs: obs, now: time.Now}
}

// GetAll returns the active collection. A corrupted or unreadable
// collection is logged and treated as empty; this never fails.
func (s *Store) GetAll(ctx context.Context) []Session {
	return s.load(ctx, ActiveCollection)
}

// Archived returns the archive collection.
func (s *Store) Archived(ctx context.Context) []Session {
	return s.load(ctx, ArchiveCollection)
}

// Save creates a new session from a finished message list and appends
// it to the active collection.
func (s *Store) Save(ctx context.Context, messages []Message, meta Metadata) (*Session, error) {
	ctx, span := s.obs.StartSpan(ctx, "session.save")
	defer span.End()

	duration := meta.Duration
	if duration == 0 {
		duration = len(messages) * secondsPerMessage
	}

	emotions := meta.Emotions
	if emotions == nil {
		emotions = []emotion.Emotion{}
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}

	now := s.now()
	sess := Session{
		ID:       fmt.Sprintf("session_%d_%s", now.UnixMilli(), randSuffix(idSuffixLen)),
		Date:     now,
		Messages: messages,
		Duration: duration,
		Emotions: emotions,
		Tags:     tags,
		Notes:    meta.Notes,
	}

	sessions := append(s.load(ctx, ActiveCollection), sess)
	if err := s.persist(ctx, ActiveCollection, sessions); err != nil {
		return nil, err
	}

	s.obs.Log().Info().Str("id", sess.ID).Int("messages", len(messages)).Msg("session saved")
	return &sess, nil
}

// Update shallow-merges the given fields into an existing session and
// stamps UpdatedAt. Returns ErrNotFound when the id is unknown.
func (s *Store) Update(ctx context.Context, id string, u Update) (*Session, error) {
	sessions := s.load(ctx, ActiveCollection)

	idx := -1
	for i := range sessions {
		if sessions[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	sess := &sessions[idx]
	if u.Date != nil {
		sess.Date = *u.Date
	}
	if u.Messages != nil {
		sess.Messages = u.Messages
	}
	if u.Duration != nil {
		sess.Duration = *u.Duration
	}
	if u.Emotions != nil {
		sess.Emotions = u.Emotions
	}
	if u.Tags != nil {
		sess.Tags = u.Tags
	}
	if u.Notes != nil {
		sess.Notes = *u.Notes
	}
	updatedAt := s.now()
	sess.UpdatedAt = &updatedAt

	if err := s.persist(ctx, ActiveCollection, sessions); err != nil {
		return nil, err
	}

	updated := *sess
	return &updated, nil
}

// Delete removes a session. Deleting an unknown id is a no-op that
// still reports true; only a persistence failure reports false.
func (s *Store) Delete(ctx context.Context, id string) bool {
	sessions := s.load(ctx, ActiveCollection)

	filtered := sessions[:0:0]
	for _, sess := range sessions {
		if sess.ID != id {
			filtered = append(filtered, sess)
		}
	}

	if err := s.persist(ctx, ActiveCollection, filtered); err != nil {
		s.obs.Log().Error().Err(err).Str("id", id).Msg("failed to delete session")
		return false
	}
	return true
}

// GetByID returns the matching session or nil.
func (s *Store) GetByID(ctx context.Context, id string) *Session {
	for _, sess := range s.load(ctx, ActiveCollection) {
		if sess.ID == id {
			return &sess
		}
	}
	return nil
}

// ByDateRange returns sessions with date inside [start, end].
func (s *Store) ByDateRange(ctx context.Context, start, end time.Time) []Session {
	var out []Session
	for _, sess := range s.load(ctx, ActiveCollection) {
		if !sess.Date.Before(start) && !sess.Date.After(end) {
			out = append(out, sess)
		}
	}
	return out
}

// ByEmotion returns sessions whose signature contains the label.
func (s *Store) ByEmotion(ctx context.Context, label emotion.Label) []Session {
	var out []Session
	for _, sess := range s.load(ctx, ActiveCollection) {
		for _, e := range sess.Emotions {
			if e.Label == label {
				out = append(out, sess)
				break
			}
		}
	}
	return out
}

// ByMinDuration returns sessions at least minSeconds long.
func (s *Store) ByMinDuration(ctx context.Context, minSeconds int) []Session {
	var out []Session
	for _, sess := range s.load(ctx, ActiveCollection) {
		if sess.Duration >= minSeconds {
			out = append(out, sess)
		}
	}
	return out
}

// Search returns sessions whose message content contains the keyword,
// case-insensitively. An empty keyword matches everything.
func (s *Store) Search(ctx context.Context, keyword string) []Session {
	sessions := s.load(ctx, ActiveCollection)
	if strings.TrimSpace(keyword) == "" {
		return sessions
	}

	lower := strings.ToLower(keyword)
	var out []Session
	for _, sess := range sessions {
		for _, msg := range sess.Messages {
			if strings.Contains(strings.ToLower(msg.Content), lower) {
				out = append(out, sess)
				break
			}
		}
	}
	return out
}

// Recent returns up to limit sessions, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) []Session {
	sessions := s.load(ctx, ActiveCollection)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.After(sessions[j].Date)
	})
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions
}

// ExportText serializes the active collection as an indented JSON
// array, structurally identical to the persisted form.
func (s *Store) ExportText(ctx context.Context) string {
	sessions := s.load(ctx, ActiveCollection)
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		s.obs.Log().Error().Err(err).Msg("failed to serialize sessions for export")
		return "[]"
	}
	return string(data)
}

// Import parses a JSON array of sessions. With merge, imported records
// are appended after the existing collection and deduplicated by id,
// last occurrence wins; without, they replace the collection. A payload
// that is not an array is rejected without touching existing state.
func (s *Store) Import(ctx context.Context, text string, merge bool) bool {
	var imported []Session
	if err := json.Unmarshal([]byte(text), &imported); err != nil {
		s.obs.Log().Warn().Err(err).Msg("import rejected: expected array of sessions")
		return false
	}
	// JSON null unmarshals into a nil slice without error; treating it
	// as an empty array would wipe the collection on replace.
	if imported == nil {
		s.obs.Log().Warn().Msg("import rejected: payload is not an array")
		return false
	}

	next := imported
	if merge {
		next = dedupeByID(append(s.load(ctx, ActiveCollection), imported...))
	}

	if err := s.persist(ctx, ActiveCollection, next); err != nil {
		s.obs.Log().Error().Err(err).Msg("failed to persist imported sessions")
		return false
	}
	return true
}

// dedupeByID upserts sessions into id order of first occurrence; a
// later duplicate replaces the earlier record in place.
func dedupeByID(sessions []Session) []Session {
	index := make(map[string]int, len(sessions))
	out := make([]Session, 0, len(sessions))
	for _, sess := range sessions {
		if i, seen := index[sess.ID]; seen {
			out[i] = sess
			continue
		}
		index[sess.ID] = len(out)
		out = append(out, sess)
	}
	return out
}

// ArchiveOlderThan moves sessions dated before now minus days into the
// archive collection. The two resulting collections partition the
// original active collection exactly.
func (s *Store) ArchiveOlderThan(ctx context.Context, days int) (ArchiveResult, error) {
	threshold := s.now().AddDate(0, 0, -days)
	sessions := s.load(ctx, ActiveCollection)

	active := make([]Session, 0, len(sessions))
	var aged []Session
	for _, sess := range sessions {
		if sess.Date.Before(threshold) {
			aged = append(aged, sess)
		} else {
			active = append(active, sess)
		}
	}

	if len(aged) > 0 {
		archive := append(s.load(ctx, ArchiveCollection), aged...)
		if err := s.persist(ctx, ArchiveCollection, archive); err != nil {
			return ArchiveResult{}, err
		}
	}

	if err := s.persist(ctx, ActiveCollection, active); err != nil {
		return ArchiveResult{}, err
	}

	s.obs.Log().Info().Int("archived", len(aged)).Int("remaining", len(active)).Msg("sessions archived")
	return ArchiveResult{ArchivedCount: len(aged), RemainingCount: len(active)}, nil
}

// ClearAll drops the active collection.
func (s *Store) ClearAll(ctx context.Context) bool {
	if err := s.repo.Delete(ctx, ActiveCollection); err != nil {
		s.obs.Log().Error().Err(err).Msg("failed to clear sessions")
		return false
	}
	return true
}

// Usage reports the serialized byte size of each collection in
// kilobytes, rounded to two decimals.
func (s *Store) Usage(ctx context.Context) StorageUsage {
	activeKB := s.collectionKB(ctx, ActiveCollection)
	archiveKB := s.collectionKB(ctx, ArchiveCollection)
	return StorageUsage{
		ActiveKB:  activeKB,
		ArchiveKB: archiveKB,
		TotalKB:   roundKB(activeKB + archiveKB),
	}
}

func (s *Store) collectionKB(ctx context.Context, collection string) float64 {
	data, err := s.repo.Get(ctx, collection)
	if err != nil {
		s.obs.Log().Warn().Err(err).Str("collection", collection).Msg("failed to read collection size")
		return 0
	}
	return roundKB(float64(len(data)) / 1024)
}

func roundKB(kb float64) float64 {
	return math.Round(kb*100) / 100
}

// Stats aggregates count, durations and message counts over the active
// collection.
func (s *Store) Stats(ctx context.Context) Stats {
	sessions := s.load(ctx, ActiveCollection)
	if len(sessions) == 0 {
		return Stats{}
	}

	var totalDuration, totalMessages int
	first, last := sessions[0].Date, sessions[0].Date
	for _, sess := range sessions {
		totalDuration += sess.Duration
		totalMessages += len(sess.Messages)
		if sess.Date.Before(first) {
			first = sess.Date
		}
		if sess.Date.After(last) {
			last = sess.Date
		}
	}

	n := len(sessions)
	return Stats{
		Total:         n,
		TotalDuration: totalDuration,
		AvgDuration:   int(math.Round(float64(totalDuration) / float64(n))),
		TotalMessages: totalMessages,
		AvgMessages:   int(math.Round(float64(totalMessages) / float64(n))),
		FirstSession:  &first,
		LastSession:   &last,
	}
}

// EmotionFrequency counts emotion occurrences per label across the
// active collection.
func (s *Store) EmotionFrequency(ctx context.Context) map[emotion.Label]int {
	counts := make(map[emotion.Label]int)
	for _, sess := range s.load(ctx, ActiveCollection) {
		for _, e := range sess.Emotions {
			counts[e.Label]++
		}
	}
	return counts
}

// WordFrequency counts tokens longer than minWordLen across
// user-authored message content, most frequent first.
func (s *Store) WordFrequency(ctx context.Context) []WordCount {
	counts := make(map[string]int)
	for _, sess := range s.load(ctx, ActiveCollection) {
		for _, msg := range sess.Messages {
			if msg.Role != RoleUser || msg.Content == "" {
				continue
			}
			cleaned := nonWord.ReplaceAllString(strings.ToLower(msg.Content), "")
			for _, word := range strings.Fields(cleaned) {
				if len(word) > minWordLen {
					counts[word]++
				}
			}
		}
	}

	out := make([]WordCount, 0, len(counts))
	for word, freq := range counts {
		out = append(out, WordCount{Word: word, Frequency: freq})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Word < out[j].Word
	})
	return out
}

func (s *Store) load(ctx context.Context, collection string) []Session {
	data, err := s.repo.Get(ctx, collection)
	if err != nil {
		s.obs.Log().Error().Err(err).Str("collection", collection).Msg("failed to read collection")
		return []Session{}
	}
	if len(data) == 0 {
		return []Session{}
	}

	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		perr := &ParseError{Collection: collection, Err: err}
		s.obs.Log().Error().Err(perr).Msg("corrupted collection, treating as empty")
		return []Session{}
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions
}

func (s *Store) persist(ctx context.Context, collection string, sessions []Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return &PersistError{Collection: collection, Err: err}
	}
	if err := s.repo.Set(ctx, collection, data); err != nil {
		return &PersistError{Collection: collection, Err: err}
	}
	return nil
}

func randSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = idSuffixAlphabet[rand.IntN(len(idSuffixAlphabet))]
	}
	return string(b)
}
