package call

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CloudGreet/voice-service/internal/domain"
	"github.com/CloudGreet/voice-service/internal/repository"
	"github.com/CloudGreet/voice-service/internal/services/conversation"
	"github.com/CloudGreet/voice-service/pkg/notify"
)

// memoryRepos is an in-memory RepositoryManager for service tests
type memoryRepos struct {
	mu          sync.Mutex
	businesses  map[string]*domain.Business
	agents      map[string]*domain.AIAgent
	assignments map[string]*domain.PhoneNumberAssignment // keyed by phone number
	calls       map[string]*domain.Call                  // keyed by call control id
	turns       []*domain.ConversationTurn

	failCalls bool // force call repo errors
}

func newMemoryRepos() *memoryRepos {
	return &memoryRepos{
		businesses:  make(map[string]*domain.Business),
		agents:      make(map[string]*domain.AIAgent),
		assignments: make(map[string]*domain.PhoneNumberAssignment),
		calls:       make(map[string]*domain.Call),
	}
}

func (m *memoryRepos) addReceptionist(number, businessID string, agent *domain.AIAgent) *domain.Business {
	business := &domain.Business{
		ID:           businessID,
		BusinessName: "Apex HVAC",
		BusinessType: "HVAC",
		Status:       domain.BusinessStatusActive,
	}
	m.businesses[businessID] = business
	agent.BusinessID = businessID
	agent.IsActive = true
	m.agents[agent.ID] = agent
	m.assignments[number] = &domain.PhoneNumberAssignment{
		ID:          "pn-" + number,
		PhoneNumber: number,
		BusinessID:  businessID,
		Status:      domain.PhoneStatusAssigned,
	}
	return business
}

func (m *memoryRepos) Business() repository.BusinessRepository         { return (*memoryBusinessRepo)(m) }
func (m *memoryRepos) Agent() repository.AgentRepository               { return (*memoryAgentRepo)(m) }
func (m *memoryRepos) PhoneNumber() repository.PhoneNumberRepository   { return (*memoryPhoneRepo)(m) }
func (m *memoryRepos) Call() repository.CallRepository                 { return (*memoryCallRepo)(m) }
func (m *memoryRepos) Conversation() repository.ConversationRepository { return (*memoryTurnRepo)(m) }

func (m *memoryRepos) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.RepositoryManager) error) error {
	return fn(ctx, m)
}
func (m *memoryRepos) Ping(ctx context.Context) error { return nil }
func (m *memoryRepos) Close() error                   { return nil }

type memoryBusinessRepo memoryRepos

func (r *memoryBusinessRepo) Create(ctx context.Context, req *domain.CreateBusinessRequest) (*domain.Business, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

func (r *memoryBusinessRepo) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.businesses[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("business %s: %w", id, domain.ErrNotFound)
}

func (r *memoryBusinessRepo) GetAll(ctx context.Context, includeDisabled bool) ([]*domain.Business, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

func (r *memoryBusinessRepo) GetWithAgents(ctx context.Context, id string) (*domain.BusinessWithAgents, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

func (r *memoryBusinessRepo) Update(ctx context.Context, id string, req *domain.UpdateBusinessRequest) (*domain.Business, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

func (r *memoryBusinessRepo) Disable(ctx context.Context, id string) error {
	return fmt.Errorf("not supported in test repo")
}

func (r *memoryBusinessRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.businesses[id]
	return ok, nil
}

type memoryAgentRepo memoryRepos

func (r *memoryAgentRepo) Create(ctx context.Context, req *domain.CreateAgentRequest) (*domain.AIAgent, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

func (r *memoryAgentRepo) GetByID(ctx context.Context, id string) (*domain.AIAgent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
}

func (r *memoryAgentRepo) GetByBusinessID(ctx context.Context, businessID string) ([]*domain.AIAgent, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

func (r *memoryAgentRepo) GetActiveByBusinessID(ctx context.Context, businessID string) (*domain.AIAgent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.BusinessID == businessID && a.IsActive {
			return a, nil
		}
	}
	return nil, fmt.Errorf("active agent for business %s: %w", businessID, domain.ErrNotFound)
}

func (r *memoryAgentRepo) Update(ctx context.Context, id string, req *domain.UpdateAgentRequest) (*domain.AIAgent, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

func (r *memoryAgentRepo) Activate(ctx context.Context, id string) (*domain.AIAgent, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

func (r *memoryAgentRepo) Delete(ctx context.Context, id string) error {
	return fmt.Errorf("not supported in test repo")
}

type memoryPhoneRepo memoryRepos

func (r *memoryPhoneRepo) Assign(ctx context.Context, req *domain.AssignPhoneNumberRequest) (*domain.PhoneNumberAssignment, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

func (r *memoryPhoneRepo) GetByNumber(ctx context.Context, number string) (*domain.PhoneNumberAssignment, error) {
	return r.GetAssignedByNumber(ctx, number)
}

func (r *memoryPhoneRepo) GetAssignedByNumber(ctx context.Context, number string) (*domain.PhoneNumberAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assignments[number]; ok && a.BusinessID != "" {
		return a, nil
	}
	return nil, fmt.Errorf("assigned phone number %s: %w", number, domain.ErrNotFound)
}

func (r *memoryPhoneRepo) GetByBusinessID(ctx context.Context, businessID string) ([]*domain.PhoneNumberAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PhoneNumberAssignment
	for _, a := range r.assignments {
		if a.BusinessID == businessID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryPhoneRepo) Update(ctx context.Context, id string, req *domain.UpdatePhoneNumberRequest) (*domain.PhoneNumberAssignment, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

type memoryCallRepo memoryRepos

func (r *memoryCallRepo) Create(ctx context.Context, call *domain.Call) (*domain.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCalls {
		return nil, fmt.Errorf("simulated database failure")
	}
	if existing, ok := r.calls[call.CallControlID]; ok {
		return existing, nil
	}
	call.ID = "call-" + call.CallControlID
	call.CreatedAt = time.Now()
	r.calls[call.CallControlID] = call
	return call, nil
}

func (r *memoryCallRepo) GetByCallControlID(ctx context.Context, callControlID string) (*domain.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.calls[callControlID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("call %s: %w", callControlID, domain.ErrNotFound)
}

func (r *memoryCallRepo) MarkAnswered(ctx context.Context, callControlID, businessID, agentID string) (*domain.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCalls {
		return nil, fmt.Errorf("simulated database failure")
	}
	c, ok := r.calls[callControlID]
	if !ok {
		return nil, fmt.Errorf("call %s: %w", callControlID, domain.ErrNotFound)
	}
	if c.Status == domain.CallStatusInitiated {
		now := time.Now()
		c.Status = domain.CallStatusAnswered
		c.BusinessID = businessID
		c.AgentID = agentID
		c.AnsweredAt = &now
	}
	return c, nil
}

func (r *memoryCallRepo) MarkCompleted(ctx context.Context, callControlID, hangupCause string, durationSecs int) (*domain.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCalls {
		return nil, fmt.Errorf("simulated database failure")
	}
	c, ok := r.calls[callControlID]
	if !ok {
		return nil, fmt.Errorf("call %s: %w", callControlID, domain.ErrNotFound)
	}
	if c.Status != domain.CallStatusCompleted {
		now := time.Now()
		c.Status = domain.CallStatusCompleted
		c.HangupCause = hangupCause
		c.DurationSecs = durationSecs
		c.EndedAt = &now
	}
	return c, nil
}

func (r *memoryCallRepo) AttachRecording(ctx context.Context, callControlID, recordingURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[callControlID]
	if !ok {
		return fmt.Errorf("call %s: %w", callControlID, domain.ErrNotFound)
	}
	c.RecordingURL = recordingURL
	return nil
}

func (r *memoryCallRepo) ListByBusinessID(ctx context.Context, businessID string, limit, offset int) ([]*domain.Call, error) {
	return nil, fmt.Errorf("not supported in test repo")
}

type memoryTurnRepo memoryRepos

func (r *memoryTurnRepo) Append(ctx context.Context, turn *domain.ConversationTurn) (*domain.ConversationTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	turn.CreatedAt = time.Now()
	r.turns = append(r.turns, turn)
	return turn, nil
}

func (r *memoryTurnRepo) GetByCallControlID(ctx context.Context, callControlID string) ([]*domain.ConversationTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ConversationTurn
	for _, t := range r.turns {
		if t.CallControlID == callControlID {
			out = append(out, t)
		}
	}
	return out, nil
}

// fakeGenerator scripts the conversation generator
type fakeGenerator struct {
	reply *conversation.Reply
	err   error
	calls int
}

func (g *fakeGenerator) Generate(ctx context.Context, business *domain.Business, agent *domain.AIAgent, callControlID, utterance string) (*conversation.Reply, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.reply, nil
}

// fakeStopper records stop-recording calls and optionally fails them
type fakeStopper struct {
	stopped []string
	err     error
}

func (s *fakeStopper) StopRecording(ctx context.Context, callControlID string) error {
	s.stopped = append(s.stopped, callControlID)
	return s.err
}

// fakeNotifier records owner notifications and optionally fails them
type fakeNotifier struct {
	sent []*notify.CallSummary
	err  error
}

func (n *fakeNotifier) SendCallSummary(ctx context.Context, summary *notify.CallSummary) notify.Result {
	n.sent = append(n.sent, summary)
	if n.err != nil {
		return notify.Result{Err: n.err}
	}
	return notify.Result{OK: true}
}
