package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/CloudGreet/voice-service/internal/domain"
	"gorm.io/gorm"
)

// GormPhoneNumberRepository implements PhoneNumberRepository using GORM
type GormPhoneNumberRepository struct {
	db *gorm.DB
}

// NewGormPhoneNumberRepository creates a new GORM phone number repository
func NewGormPhoneNumberRepository(db *gorm.DB) *GormPhoneNumberRepository {
	return &GormPhoneNumberRepository{db: db}
}

// Assign creates a phone number assignment for a business
func (r *GormPhoneNumberRepository) Assign(ctx context.Context, req *domain.AssignPhoneNumberRequest) (*domain.PhoneNumberAssignment, error) {
	status := req.Status
	if status == "" {
		status = domain.PhoneStatusAssigned
	}

	assignment := &domain.PhoneNumberAssignment{
		PhoneNumber: req.PhoneNumber,
		BusinessID:  req.BusinessID,
		Status:      status,
	}

	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, fmt.Errorf("failed to assign phone number: %w", err)
	}

	return assignment, nil
}

// GetByNumber retrieves an assignment by E.164 phone number regardless of status
func (r *GormPhoneNumberRepository) GetByNumber(ctx context.Context, phoneNumber string) (*domain.PhoneNumberAssignment, error) {
	var assignment domain.PhoneNumberAssignment
	if err := r.db.WithContext(ctx).Where("phone_number = ?", phoneNumber).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("phone number %s: %w", phoneNumber, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get phone number: %w", err)
	}

	return &assignment, nil
}

// GetAssignedByNumber retrieves an assignment by number, restricted to
// numbers routable for a tenant: status assigned or verified with a business
// bound. Anything else reports ErrNotFound so inbound calls to the number
// are treated as out of service.
func (r *GormPhoneNumberRepository) GetAssignedByNumber(ctx context.Context, phoneNumber string) (*domain.PhoneNumberAssignment, error) {
	var assignment domain.PhoneNumberAssignment
	err := r.db.WithContext(ctx).
		Where("phone_number = ? AND status IN ? AND business_id IS NOT NULL AND business_id <> ''",
			phoneNumber, []string{domain.PhoneStatusAssigned, domain.PhoneStatusVerified}).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("assigned phone number %s: %w", phoneNumber, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get assigned phone number: %w", err)
	}

	return &assignment, nil
}

// GetByBusinessID retrieves all numbers assigned to a business
func (r *GormPhoneNumberRepository) GetByBusinessID(ctx context.Context, businessID string) ([]*domain.PhoneNumberAssignment, error) {
	var assignments []*domain.PhoneNumberAssignment
	if err := r.db.WithContext(ctx).Where("business_id = ?", businessID).Order("created_at ASC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to get phone numbers for business: %w", err)
	}

	return assignments, nil
}

// Update updates a phone number assignment
func (r *GormPhoneNumberRepository) Update(ctx context.Context, id string, req *domain.UpdatePhoneNumberRequest) (*domain.PhoneNumberAssignment, error) {
	var assignment domain.PhoneNumberAssignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("phone number assignment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find phone number assignment: %w", err)
	}

	updates := make(map[string]interface{})

	if req.BusinessID != nil {
		updates["business_id"] = *req.BusinessID
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		return &assignment, nil // No changes
	}

	if err := r.db.WithContext(ctx).Model(&assignment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update phone number assignment: %w", err)
	}

	return &assignment, nil
}
