package domain

import (
	"time"
)

// Call is the authoritative record for one phone call. Exactly one row
// exists per provider call_control_id; rows are created on call.initiated
// and mutated by later lifecycle events, never deleted.
type Call struct {
	ID            string     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CallControlID string     `json:"call_control_id" gorm:"type:varchar(255);uniqueIndex:uni_calls_call_control_id;not null"`
	BusinessID    string     `json:"business_id" gorm:"type:uuid;index"`
	AgentID       string     `json:"agent_id" gorm:"type:uuid"`
	FromNumber    string     `json:"from_number" gorm:"type:varchar(32)"`
	ToNumber      string     `json:"to_number" gorm:"type:varchar(32);index"`
	Direction     string     `json:"direction" gorm:"type:varchar(16)"`
	Status        string     `json:"status" gorm:"type:varchar(32);default:'initiated';index"`
	DurationSecs  int        `json:"duration_secs"`
	HangupCause   string     `json:"hangup_cause" gorm:"type:varchar(64)"`
	RecordingURL  string     `json:"recording_url" gorm:"type:text"`
	AnsweredAt    *time.Time `json:"answered_at"`
	EndedAt       *time.Time `json:"ended_at"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Call
func (Call) TableName() string {
	return "calls"
}

// CallWithTurns represents a call along with its conversation history
type CallWithTurns struct {
	Call
	Turns []*ConversationTurn `json:"turns"`
}
