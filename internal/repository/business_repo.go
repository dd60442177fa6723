package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/CloudGreet/voice-service/internal/domain"
	"gorm.io/gorm"
)

// GormBusinessRepository implements BusinessRepository using GORM
type GormBusinessRepository struct {
	db *gorm.DB
}

// NewGormBusinessRepository creates a new GORM business repository
func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

// Create creates a new business
func (r *GormBusinessRepository) Create(ctx context.Context, req *domain.CreateBusinessRequest) (*domain.Business, error) {
	business := &domain.Business{
		BusinessName:      req.BusinessName,
		BusinessType:      req.BusinessType,
		OwnerName:         req.OwnerName,
		OwnerEmail:        req.OwnerEmail,
		NotificationPhone: req.NotificationPhone,
		Status:            domain.BusinessStatusActive,
		CustomConfig:      req.CustomConfig,
	}

	if err := r.db.WithContext(ctx).Create(business).Error; err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}

	return business, nil
}

// GetByID retrieves a business by ID
func (r *GormBusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	var business domain.Business
	if err := r.db.WithContext(ctx).First(&business, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("business %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	return &business, nil
}

// GetAll retrieves all businesses
func (r *GormBusinessRepository) GetAll(ctx context.Context, includeDisabled bool) ([]*domain.Business, error) {
	var businesses []*domain.Business
	query := r.db.WithContext(ctx)

	if !includeDisabled {
		query = query.Where("status = ?", domain.BusinessStatusActive)
	}

	if err := query.Order("created_at DESC").Find(&businesses).Error; err != nil {
		return nil, fmt.Errorf("failed to get businesses: %w", err)
	}

	return businesses, nil
}

// GetWithAgents retrieves a business with its agent configurations
func (r *GormBusinessRepository) GetWithAgents(ctx context.Context, id string) (*domain.BusinessWithAgents, error) {
	business, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var agents []domain.AIAgent
	if err := r.db.WithContext(ctx).Where("business_id = ?", id).Order("created_at ASC").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to get agents for business: %w", err)
	}

	return &domain.BusinessWithAgents{
		Business: *business,
		Agents:   agents,
	}, nil
}

// Update updates a business
func (r *GormBusinessRepository) Update(ctx context.Context, id string, req *domain.UpdateBusinessRequest) (*domain.Business, error) {
	var business domain.Business
	if err := r.db.WithContext(ctx).First(&business, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("business %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find business: %w", err)
	}

	updates := make(map[string]interface{})

	if req.BusinessName != nil {
		updates["business_name"] = *req.BusinessName
	}
	if req.BusinessType != nil {
		updates["business_type"] = *req.BusinessType
	}
	if req.OwnerName != nil {
		updates["owner_name"] = *req.OwnerName
	}
	if req.OwnerEmail != nil {
		updates["owner_email"] = *req.OwnerEmail
	}
	if req.NotificationPhone != nil {
		updates["notification_phone"] = *req.NotificationPhone
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.CustomConfig != nil {
		updates["custom_config"] = *req.CustomConfig
	}

	if len(updates) == 0 {
		return &business, nil // No changes
	}

	if err := r.db.WithContext(ctx).Model(&business).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update business: %w", err)
	}

	return &business, nil
}

// Disable soft-disables a business. Rows are never hard-deleted.
func (r *GormBusinessRepository) Disable(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&domain.Business{}).Where("id = ?", id).Update("status", domain.BusinessStatusDisabled)
	if result.Error != nil {
		return fmt.Errorf("failed to disable business: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("business %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Exists checks if a business exists
func (r *GormBusinessRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Business{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check if business exists: %w", err)
	}

	return count > 0, nil
}
