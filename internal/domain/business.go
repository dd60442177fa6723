package domain

import (
	"time"
)

// Business represents a tenant in the receptionist system
type Business struct {
	ID                string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BusinessName      string    `json:"business_name" gorm:"type:varchar(255);not null"`
	BusinessType      string    `json:"business_type" gorm:"type:varchar(100)"`
	OwnerName         string    `json:"owner_name" gorm:"type:varchar(255)"`
	OwnerEmail        string    `json:"owner_email" gorm:"type:varchar(255)"`
	NotificationPhone string    `json:"notification_phone" gorm:"type:varchar(32)"`
	Status            string    `json:"status" gorm:"type:varchar(32);default:'active';index"`
	CustomConfig      JSONB     `json:"custom_config" gorm:"type:jsonb"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Business
func (Business) TableName() string {
	return "businesses"
}

// CreateBusinessRequest represents the request to create a new business
type CreateBusinessRequest struct {
	BusinessName      string `json:"business_name" validate:"required"`
	BusinessType      string `json:"business_type,omitempty"`
	OwnerName         string `json:"owner_name,omitempty"`
	OwnerEmail        string `json:"owner_email,omitempty"`
	NotificationPhone string `json:"notification_phone,omitempty"`
	CustomConfig      JSONB  `json:"custom_config,omitempty"`
}

// UpdateBusinessRequest represents the request to update a business.
// Businesses are never hard-deleted; Status flips to "disabled" instead.
type UpdateBusinessRequest struct {
	BusinessName      *string `json:"business_name,omitempty"`
	BusinessType      *string `json:"business_type,omitempty"`
	OwnerName         *string `json:"owner_name,omitempty"`
	OwnerEmail        *string `json:"owner_email,omitempty"`
	NotificationPhone *string `json:"notification_phone,omitempty"`
	Status            *string `json:"status,omitempty"`
	CustomConfig      *JSONB  `json:"custom_config,omitempty"`
}

// BusinessWithAgents represents a business with its agent configurations
type BusinessWithAgents struct {
	Business
	Agents []AIAgent `json:"agents"`
}
