package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("record not found")

// JSONB represents a PostgreSQL JSONB field
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONB", value)
	}

	return json.Unmarshal(bytes, j)
}

// Business status values
const (
	BusinessStatusActive   = "active"
	BusinessStatusDisabled = "disabled"
)

// Call status values. A call only ever moves forward:
// initiated -> answered -> completed.
const (
	CallStatusInitiated = "initiated"
	CallStatusAnswered  = "answered"
	CallStatusCompleted = "completed"
)

// Phone number assignment status values
const (
	PhoneStatusAvailable           = "available"
	PhoneStatusAssigned            = "assigned"
	PhoneStatusPendingVerification = "pending_verification"
	PhoneStatusVerified            = "verified"
	PhoneStatusRejected            = "rejected"
)

// CallDirection values as delivered by the telephony provider
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)
