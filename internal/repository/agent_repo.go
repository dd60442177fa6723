package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/CloudGreet/voice-service/internal/domain"
	"gorm.io/gorm"
)

// GormAgentRepository implements AgentRepository using GORM
type GormAgentRepository struct {
	db *gorm.DB
}

// NewGormAgentRepository creates a new GORM agent repository
func NewGormAgentRepository(db *gorm.DB) *GormAgentRepository {
	return &GormAgentRepository{db: db}
}

// Create creates a new agent configuration
func (r *GormAgentRepository) Create(ctx context.Context, req *domain.CreateAgentRequest) (*domain.AIAgent, error) {
	voice := req.Voice
	if voice == "" {
		voice = "alloy"
	}

	agent := &domain.AIAgent{
		BusinessID:         req.BusinessID,
		AgentName:          req.AgentName,
		GreetingMessage:    req.GreetingMessage,
		Voice:              voice,
		CustomInstructions: req.CustomInstructions,
	}

	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return agent, nil
}

// GetByID retrieves an agent by ID
func (r *GormAgentRepository) GetByID(ctx context.Context, id string) (*domain.AIAgent, error) {
	var agent domain.AIAgent
	if err := r.db.WithContext(ctx).First(&agent, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return &agent, nil
}

// GetByBusinessID retrieves all agents for a business
func (r *GormAgentRepository) GetByBusinessID(ctx context.Context, businessID string) ([]*domain.AIAgent, error) {
	var agents []*domain.AIAgent
	if err := r.db.WithContext(ctx).Where("business_id = ?", businessID).Order("created_at ASC").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to get agents for business: %w", err)
	}

	return agents, nil
}

// GetActiveByBusinessID retrieves the currently active agent for a business.
// Returns ErrNotFound when the business has no active agent.
func (r *GormAgentRepository) GetActiveByBusinessID(ctx context.Context, businessID string) (*domain.AIAgent, error) {
	var agent domain.AIAgent
	if err := r.db.WithContext(ctx).Where("business_id = ? AND is_active = ?", businessID, true).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("active agent for business %s: %w", businessID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active agent: %w", err)
	}

	return &agent, nil
}

// Update updates an agent configuration
func (r *GormAgentRepository) Update(ctx context.Context, id string, req *domain.UpdateAgentRequest) (*domain.AIAgent, error) {
	var agent domain.AIAgent
	if err := r.db.WithContext(ctx).First(&agent, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find agent: %w", err)
	}

	updates := make(map[string]interface{})

	if req.AgentName != nil {
		updates["agent_name"] = *req.AgentName
	}
	if req.GreetingMessage != nil {
		updates["greeting_message"] = *req.GreetingMessage
	}
	if req.Voice != nil {
		updates["voice"] = *req.Voice
	}
	if req.CustomInstructions != nil {
		updates["custom_instructions"] = *req.CustomInstructions
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return &agent, nil // No changes
	}

	if err := r.db.WithContext(ctx).Model(&agent).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	return &agent, nil
}

// Activate marks an agent active and deactivates every other agent of the
// same business, keeping the one-active-agent invariant inside a transaction.
func (r *GormAgentRepository) Activate(ctx context.Context, id string) (*domain.AIAgent, error) {
	var agent domain.AIAgent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&agent, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
			}
			return fmt.Errorf("failed to find agent: %w", err)
		}

		if err := tx.Model(&domain.AIAgent{}).
			Where("business_id = ? AND id <> ?", agent.BusinessID, id).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate sibling agents: %w", err)
		}

		if err := tx.Model(&agent).Update("is_active", true).Error; err != nil {
			return fmt.Errorf("failed to activate agent: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	agent.IsActive = true
	return &agent, nil
}

// Delete removes an agent configuration
func (r *GormAgentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.AIAgent{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete agent: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
