package model

import (
	"encoding/json"
	"time"
)

// Message is one chat exchange side, kept in the Redis history log and
// archived to MySQL by the persist worker. Sources is the citation list as a
// JSON array, empty for user messages.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	MessageID string    `gorm:"size:36;not null;uniqueIndex" json:"id"`
	SessionID string    `gorm:"size:64;not null;index" json:"session_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Sources   string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceCitations returns the parsed citation list; empty on parse error.
func (m *Message) SourceCitations() []SourceCitation {
	if m.Sources == "" {
		return nil
	}
	var v []SourceCitation
	_ = json.Unmarshal([]byte(m.Sources), &v)
	return v
}

// SetSources stores the citation list as JSON.
func (m *Message) SetSources(sources []SourceCitation) {
	if len(sources) == 0 {
		m.Sources = "[]"
		return
	}
	b, _ := json.Marshal(sources)
	m.Sources = string(b)
}
