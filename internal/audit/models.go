// Package audit appends tamper-evident records of privileged actions.
// Records are append-only and ordered; nothing in this system edits or
// deletes an entry once written.
package audit

import (
	"encoding/json"
	"time"
)

// Record is one audit trail entry. Field names match the long-standing
// contractor-actions log format so existing log tooling keeps working.
type Record struct {
	Timestamp     time.Time       `json:"timestamp"`
	ActorUsername string          `json:"user"`
	ActorEmail    string          `json:"email"`
	Action        string          `json:"action"`
	TenantID      string          `json:"site_id,omitempty"`
	Details       json.RawMessage `json:"details,omitempty"`
	SourceIP      string          `json:"ip"`
	UserAgent     string          `json:"user_agent,omitempty"`
	RequestID     string          `json:"request_id,omitempty"`
}
