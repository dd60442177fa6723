package domain

import (
	"time"
)

// ConversationTurn is one (caller utterance, agent reply) pair for a call.
// The table is append-only; rows are read back in created_at order to
// rebuild context for the next turn.
type ConversationTurn struct {
	ID            string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CallControlID string    `json:"call_control_id" gorm:"type:varchar(255);not null;index"`
	BusinessID    string    `json:"business_id" gorm:"type:uuid;index"`
	UserMessage   string    `json:"user_message" gorm:"type:text"`
	AIResponse    string    `json:"ai_response" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for ConversationTurn
func (ConversationTurn) TableName() string {
	return "conversation_turns"
}
