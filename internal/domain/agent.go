package domain

import (
	"time"
)

// AIAgent represents the receptionist configuration for a business.
// A business has at most one active agent at any time; the call path only
// ever reads agents, the admin API writes them.
type AIAgent struct {
	ID                 string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BusinessID         string    `json:"business_id" gorm:"type:uuid;not null;index"`
	Business           Business  `json:"-" gorm:"foreignKey:BusinessID"`
	AgentName          string    `json:"agent_name" gorm:"type:varchar(255);not null"`
	GreetingMessage    string    `json:"greeting_message" gorm:"type:text"`
	Voice              string    `json:"voice" gorm:"type:varchar(64);default:'alloy'"`
	CustomInstructions string    `json:"custom_instructions" gorm:"type:text"`
	IsActive           bool      `json:"is_active" gorm:"default:false;index"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for AIAgent
func (AIAgent) TableName() string {
	return "ai_agents"
}

// CreateAgentRequest represents the request to create a new agent
type CreateAgentRequest struct {
	BusinessID         string `json:"business_id" validate:"required"`
	AgentName          string `json:"agent_name" validate:"required"`
	GreetingMessage    string `json:"greeting_message,omitempty"`
	Voice              string `json:"voice,omitempty"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

// UpdateAgentRequest represents the request to update an agent
type UpdateAgentRequest struct {
	AgentName          *string `json:"agent_name,omitempty"`
	GreetingMessage    *string `json:"greeting_message,omitempty"`
	Voice              *string `json:"voice,omitempty"`
	CustomInstructions *string `json:"custom_instructions,omitempty"`
	IsActive           *bool   `json:"is_active,omitempty"`
}
