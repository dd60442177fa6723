package repository

import (
	"context"
	"fmt"

	"github.com/CloudGreet/voice-service/internal/domain"
	"gorm.io/gorm"
)

// GormConversationRepository implements ConversationRepository using GORM
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GORM conversation repository
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

// Append stores one user/assistant turn pair for a call. Turns are
// append-only; there is no update or delete path.
func (r *GormConversationRepository) Append(ctx context.Context, turn *domain.ConversationTurn) (*domain.ConversationTurn, error) {
	if err := r.db.WithContext(ctx).Create(turn).Error; err != nil {
		return nil, fmt.Errorf("failed to append conversation turn: %w", err)
	}

	return turn, nil
}

// GetByCallControlID retrieves all turns for a call in chronological order
func (r *GormConversationRepository) GetByCallControlID(ctx context.Context, callControlID string) ([]*domain.ConversationTurn, error) {
	var turns []*domain.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("call_control_id = ?", callControlID).
		Order("created_at ASC").
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation turns: %w", err)
	}

	return turns, nil
}
