// Package domain holds the session-facing types of the insights surface.
package domain

import (
	"time"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
)

// Filters is the active filter state for a session. Empty fields mean "all".
type Filters struct {
	Province string `json:"province,omitempty" firestore:"province"`
	Segment  string `json:"segment,omitempty" firestore:"segment"`
}

// Apply returns the slice of rows matching the filters. The input is never
// mutated; callers keep the baseline intact.
func (f Filters) Apply(rows []etldomain.ScoredCustomerRow) []etldomain.ScoredCustomerRow {
	if f.Province == "" && f.Segment == "" {
		return rows
	}

	filtered := make([]etldomain.ScoredCustomerRow, 0, len(rows))

	for _, r := range rows {
		if f.Province != "" && r.Province != f.Province {
			continue
		}

		if f.Segment != "" && r.RFMSegment != f.Segment {
			continue
		}

		filtered = append(filtered, r)
	}

	return filtered
}

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a session's conversation.
type ChatMessage struct {
	Role      string    `json:"role" firestore:"role"`
	Content   string    `json:"content" firestore:"content"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

// Session is the explicit per-user context threaded through each request:
// active filters plus accumulated chat history. No ambient global state.
type Session struct {
	ID        string        `json:"id" firestore:"id"`
	Filters   Filters       `json:"filters" firestore:"filters"`
	History   []ChatMessage `json:"history" firestore:"history"`
	CreatedAt time.Time     `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" firestore:"updatedAt"`
}
