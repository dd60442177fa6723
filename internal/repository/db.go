package repository

import (
	"context"

	"github.com/CloudGreet/voice-service/internal/domain"
	"gorm.io/gorm"
)

// BusinessRepository defines the interface for business (tenant) operations
type BusinessRepository interface {
	Create(ctx context.Context, req *domain.CreateBusinessRequest) (*domain.Business, error)
	GetByID(ctx context.Context, id string) (*domain.Business, error)
	GetAll(ctx context.Context, includeDisabled bool) ([]*domain.Business, error)
	GetWithAgents(ctx context.Context, id string) (*domain.BusinessWithAgents, error)
	Update(ctx context.Context, id string, req *domain.UpdateBusinessRequest) (*domain.Business, error)
	Disable(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// AgentRepository defines the interface for AI agent operations
type AgentRepository interface {
	Create(ctx context.Context, req *domain.CreateAgentRequest) (*domain.AIAgent, error)
	GetByID(ctx context.Context, id string) (*domain.AIAgent, error)
	GetByBusinessID(ctx context.Context, businessID string) ([]*domain.AIAgent, error)
	GetActiveByBusinessID(ctx context.Context, businessID string) (*domain.AIAgent, error)
	Update(ctx context.Context, id string, req *domain.UpdateAgentRequest) (*domain.AIAgent, error)
	Activate(ctx context.Context, id string) (*domain.AIAgent, error)
	Delete(ctx context.Context, id string) error
}

// PhoneNumberRepository defines the interface for phone number assignments
type PhoneNumberRepository interface {
	Assign(ctx context.Context, req *domain.AssignPhoneNumberRequest) (*domain.PhoneNumberAssignment, error)
	GetByNumber(ctx context.Context, number string) (*domain.PhoneNumberAssignment, error)
	GetAssignedByNumber(ctx context.Context, number string) (*domain.PhoneNumberAssignment, error)
	GetByBusinessID(ctx context.Context, businessID string) ([]*domain.PhoneNumberAssignment, error)
	Update(ctx context.Context, id string, req *domain.UpdatePhoneNumberRequest) (*domain.PhoneNumberAssignment, error)
}

// CallRepository defines the interface for call record operations
type CallRepository interface {
	Create(ctx context.Context, call *domain.Call) (*domain.Call, error)
	GetByCallControlID(ctx context.Context, callControlID string) (*domain.Call, error)
	MarkAnswered(ctx context.Context, callControlID, businessID, agentID string) (*domain.Call, error)
	MarkCompleted(ctx context.Context, callControlID, hangupCause string, durationSecs int) (*domain.Call, error)
	AttachRecording(ctx context.Context, callControlID, recordingURL string) error
	ListByBusinessID(ctx context.Context, businessID string, limit, offset int) ([]*domain.Call, error)
}

// ConversationRepository defines the interface for conversation turn history
type ConversationRepository interface {
	Append(ctx context.Context, turn *domain.ConversationTurn) (*domain.ConversationTurn, error)
	GetByCallControlID(ctx context.Context, callControlID string) ([]*domain.ConversationTurn, error)
}

// RepositoryManager combines all repositories
type RepositoryManager interface {
	Business() BusinessRepository
	Agent() AgentRepository
	PhoneNumber() PhoneNumberRepository
	Call() CallRepository
	Conversation() ConversationRepository

	// Transaction support
	WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connection
	Close() error
}

// GormRepositoryManager implements RepositoryManager using GORM
type GormRepositoryManager struct {
	db               *gorm.DB
	businessRepo     *GormBusinessRepository
	agentRepo        *GormAgentRepository
	phoneNumberRepo  *GormPhoneNumberRepository
	callRepo         *GormCallRepository
	conversationRepo *GormConversationRepository
}

// NewGormRepositoryManager creates a new GORM repository manager
func NewGormRepositoryManager(db *gorm.DB) *GormRepositoryManager {
	return &GormRepositoryManager{
		db:               db,
		businessRepo:     NewGormBusinessRepository(db),
		agentRepo:        NewGormAgentRepository(db),
		phoneNumberRepo:  NewGormPhoneNumberRepository(db),
		callRepo:         NewGormCallRepository(db),
		conversationRepo: NewGormConversationRepository(db),
	}
}

// Business returns the business repository
func (m *GormRepositoryManager) Business() BusinessRepository {
	return m.businessRepo
}

// Agent returns the agent repository
func (m *GormRepositoryManager) Agent() AgentRepository {
	return m.agentRepo
}

// PhoneNumber returns the phone number repository
func (m *GormRepositoryManager) PhoneNumber() PhoneNumberRepository {
	return m.phoneNumberRepo
}

// Call returns the call repository
func (m *GormRepositoryManager) Call() CallRepository {
	return m.callRepo
}

// Conversation returns the conversation turn repository
func (m *GormRepositoryManager) Conversation() ConversationRepository {
	return m.conversationRepo
}

// WithTx executes a function within a database transaction
func (m *GormRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormRepositoryManager(tx))
	})
}

// Ping checks the database connection
func (m *GormRepositoryManager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (m *GormRepositoryManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
