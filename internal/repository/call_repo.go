package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CloudGreet/voice-service/internal/domain"
	"gorm.io/gorm"
)

// GormCallRepository implements CallRepository using GORM
type GormCallRepository struct {
	db *gorm.DB
}

// NewGormCallRepository creates a new GORM call repository
func NewGormCallRepository(db *gorm.DB) *GormCallRepository {
	return &GormCallRepository{db: db}
}

// Create records a new call in the initiated state. A replayed initiation
// event for an already-recorded call_control_id returns the existing row
// instead of failing on the unique index.
func (r *GormCallRepository) Create(ctx context.Context, call *domain.Call) (*domain.Call, error) {
	if call.Status == "" {
		call.Status = domain.CallStatusInitiated
	}

	if err := r.db.WithContext(ctx).Create(call).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetByCallControlID(ctx, call.CallControlID)
		}
		return nil, fmt.Errorf("failed to create call: %w", err)
	}

	return call, nil
}

// GetByCallControlID retrieves a call by its provider call control id
func (r *GormCallRepository) GetByCallControlID(ctx context.Context, callControlID string) (*domain.Call, error) {
	var call domain.Call
	if err := r.db.WithContext(ctx).Where("call_control_id = ?", callControlID).First(&call).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("call %s: %w", callControlID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}

	return &call, nil
}

// MarkAnswered transitions a call from initiated to answered and binds the
// business and agent that took it. The status guard makes a late or replayed
// answer event a no-op: a call already answered or completed keeps its stored
// state and no error is raised.
func (r *GormCallRepository) MarkAnswered(ctx context.Context, callControlID, businessID, agentID string) (*domain.Call, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&domain.Call{}).
		Where("call_control_id = ? AND status = ?", callControlID, domain.CallStatusInitiated).
		Updates(map[string]interface{}{
			"status":      domain.CallStatusAnswered,
			"business_id": businessID,
			"agent_id":    agentID,
			"answered_at": now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark call answered: %w", result.Error)
	}

	return r.GetByCallControlID(ctx, callControlID)
}

// MarkCompleted finalizes a call with its hangup cause and duration. Only
// calls not already completed are transitioned; a duplicate hangup event
// leaves the stored outcome untouched.
func (r *GormCallRepository) MarkCompleted(ctx context.Context, callControlID, hangupCause string, durationSecs int) (*domain.Call, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&domain.Call{}).
		Where("call_control_id = ? AND status <> ?", callControlID, domain.CallStatusCompleted).
		Updates(map[string]interface{}{
			"status":        domain.CallStatusCompleted,
			"hangup_cause":  hangupCause,
			"duration_secs": durationSecs,
			"ended_at":      now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark call completed: %w", result.Error)
	}

	return r.GetByCallControlID(ctx, callControlID)
}

// AttachRecording stores the recording URL on a call. Recording events can
// land before or after the hangup event, so no status guard applies here.
func (r *GormCallRepository) AttachRecording(ctx context.Context, callControlID, recordingURL string) error {
	result := r.db.WithContext(ctx).Model(&domain.Call{}).
		Where("call_control_id = ?", callControlID).
		Update("recording_url", recordingURL)
	if result.Error != nil {
		return fmt.Errorf("failed to attach recording: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("call %s: %w", callControlID, domain.ErrNotFound)
	}

	return nil
}

// ListByBusinessID retrieves calls for a business, newest first
func (r *GormCallRepository) ListByBusinessID(ctx context.Context, businessID string, limit, offset int) ([]*domain.Call, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var calls []*domain.Call
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&calls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list calls for business: %w", err)
	}

	return calls, nil
}
