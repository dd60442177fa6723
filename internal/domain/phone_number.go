package domain

import (
	"time"
)

// PhoneNumberAssignment maps a telephony-provider phone number to a business.
// The inbound call path looks this up by the "to" number on every call.
type PhoneNumberAssignment struct {
	ID          string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PhoneNumber string    `json:"phone_number" gorm:"type:varchar(32);uniqueIndex:uni_phone_numbers_number;not null"`
	BusinessID  string    `json:"business_id" gorm:"type:uuid;index"`
	Status      string    `json:"status" gorm:"type:varchar(32);default:'available';index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for PhoneNumberAssignment
func (PhoneNumberAssignment) TableName() string {
	return "phone_numbers"
}

// AssignPhoneNumberRequest represents the request to assign a number to a business
type AssignPhoneNumberRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	BusinessID  string `json:"business_id" validate:"required"`
	Status      string `json:"status,omitempty"`
}

// UpdatePhoneNumberRequest represents the request to update an assignment
type UpdatePhoneNumberRequest struct {
	BusinessID *string `json:"business_id,omitempty"`
	Status     *string `json:"status,omitempty"`
}
