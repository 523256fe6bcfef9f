package session

import (
	"time"

	"github.com/felixgeelhaar/zenith/internal/emotion"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn. Slice order is conversation order
// and is preserved on persistence.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	AudioRef  string    `json:"audioRef,omitempty"`
}

// Session is one completed conversation with its derived emotion
// signature. ID is assigned at creation and never reassigned.
type Session struct {
	ID        string            `json:"id"`
	Date      time.Time         `json:"date"`
	Messages  []Message         `json:"messages"`
	Duration  int               `json:"duration"` // seconds
	Emotions  []emotion.Emotion `json:"emotions"`
	Tags      []string          `json:"tags"`
	Notes     string            `json:"notes"`
	UpdatedAt *time.Time        `json:"updatedAt,omitempty"`
}

// Metadata carries optional fields for Save. Zero values fall back to
// defaults (duration is derived from the message count).
type Metadata struct {
	Duration int
	Emotions []emotion.Emotion
	Tags     []string
	Notes    string
}

// Update lists the fields an Update call may change. Nil pointers and
// nil slices leave the existing value untouched.
type Update struct {
	Date     *time.Time
	Messages []Message
	Duration *int
	Emotions []emotion.Emotion
	Tags     []string
	Notes    *string
}

// Stats summarizes the active collection.
type Stats struct {
	Total         int        `json:"total"`
	TotalDuration int        `json:"totalDuration"`
	AvgDuration   int        `json:"avgDuration"`
	TotalMessages int        `json:"totalMessages"`
	AvgMessages   int        `json:"avgMessagesPerSession"`
	FirstSession  *time.Time `json:"firstSession,omitempty"`
	LastSession   *time.Time `json:"lastSession,omitempty"`
}

// StorageUsage reports serialized collection sizes in kilobytes,
// rounded to two decimals.
type StorageUsage struct {
	ActiveKB  float64 `json:"activeSizeKB"`
	ArchiveKB float64 `json:"archiveSizeKB"`
	TotalKB   float64 `json:"totalSizeKB"`
}

// ArchiveResult reports an archival partition.
type ArchiveResult struct {
	ArchivedCount  int `json:"archivedCount"`
	RemainingCount int `json:"remainingCount"`
}

// WordCount is one entry of a word-frequency report.
type WordCount struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}
