package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/CloudGreet/voice-service/internal/cache"
	"github.com/CloudGreet/voice-service/internal/domain"
	"github.com/CloudGreet/voice-service/internal/repository"
	callsvc "github.com/CloudGreet/voice-service/internal/services/call"
	"github.com/CloudGreet/voice-service/internal/telephony"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestVoiceHandler builds a handler whose service is never reached by
// the envelope validation, signature, dedup, and unknown-event paths under
// test here; the event routing itself is covered by the call service tests.
func newTestVoiceHandler(secret string) *VoiceWebhookHandler {
	service := callsvc.NewService(nil, cache.NewReceptionistCache(), nil, nil, nil)
	return NewVoiceWebhookHandler(service, cache.NewEventDeduper(nil), cache.NewCallLocker(), secret)
}

func postWebhook(t *testing.T, h *VoiceWebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhooks/voice", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

func eventBody(t *testing.T, eventID, eventType, callControlID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"id":         eventID,
			"event_type": eventType,
			"payload": map[string]interface{}{
				"call_control_id": callControlID,
				"from":            "+15550001111",
				"to":              "+15551230000",
				"direction":       "incoming",
			},
		},
	})
	require.NoError(t, err)
	return body
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var ack telephony.AckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	return ack.Status
}

func TestHandleWebhookMalformedBody(t *testing.T) {
	h := newTestVoiceHandler("")

	rec := postWebhook(t, h, []byte("{not json"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, telephony.StatusError, decodeStatus(t, rec))
}

func TestHandleWebhookMissingEventMetadata(t *testing.T) {
	h := newTestVoiceHandler("")

	// Valid JSON but no event_type or call_control_id
	rec := postWebhook(t, h, []byte(`{"data":{"payload":{}}}`), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, telephony.StatusError, decodeStatus(t, rec))
}

func TestHandleWebhookUnknownEventTypeAcked(t *testing.T) {
	h := newTestVoiceHandler("")

	rec := postWebhook(t, h, eventBody(t, "evt-1", "call.fork.started", "cc-1"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, telephony.StatusReceived, decodeStatus(t, rec))
}

func TestHandleWebhookDuplicateDeliveryAcked(t *testing.T) {
	h := newTestVoiceHandler("")
	body := eventBody(t, "evt-dup", "call.fork.started", "cc-2")

	first := postWebhook(t, h, body, "")
	assert.Equal(t, http.StatusOK, first.Code)

	second := postWebhook(t, h, body, "")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, telephony.StatusReceived, decodeStatus(t, second))
}

func TestHandleWebhookSignatureRejected(t *testing.T) {
	h := newTestVoiceHandler("topsecret")
	body := eventBody(t, "evt-2", "call.fork.started", "cc-3")

	rec := postWebhook(t, h, body, "sha256=deadbeef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleWebhookSignatureAccepted(t *testing.T) {
	secret := "topsecret"
	h := newTestVoiceHandler(secret)
	body := eventBody(t, "evt-3", "call.fork.started", "cc-4")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	rec := postWebhook(t, h, body, sig)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleWebhookNoSecretSkipsVerification(t *testing.T) {
	h := newTestVoiceHandler("")
	body := eventBody(t, "evt-4", "call.fork.started", "cc-5")

	rec := postWebhook(t, h, body, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleWebhookFailedEventRetryIsReprocessed(t *testing.T) {
	calls := &stubCallRepo{failFirstCreate: true, calls: map[string]*domain.Call{}}
	service := callsvc.NewService(&stubRepos{calls: calls}, cache.NewReceptionistCache(), nil, nil, nil)
	h := NewVoiceWebhookHandler(service, cache.NewEventDeduper(nil), cache.NewCallLocker(), "")

	body := eventBody(t, "evt-retry", "call.initiated", "cc-retry")

	first := postWebhook(t, h, body, "")
	assert.Equal(t, http.StatusInternalServerError, first.Code)
	assert.Equal(t, telephony.StatusError, decodeStatus(t, first))

	// The provider retries the same event id; the failed attempt must not
	// have consumed it as a duplicate
	second := postWebhook(t, h, body, "")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 2, calls.createCalls, "the retry must reach the repository again")

	// Once an attempt succeeds, further deliveries are duplicates
	third := postWebhook(t, h, body, "")
	assert.Equal(t, http.StatusOK, third.Code)
	assert.Equal(t, telephony.StatusReceived, decodeStatus(t, third))
	assert.Equal(t, 2, calls.createCalls)
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "s3cr3t"
	payload := []byte(`{"data":{}}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, verifyWebhookSignature(secret, payload, valid))
	assert.True(t, verifyWebhookSignature(secret, payload, "sha256="+valid))
	assert.False(t, verifyWebhookSignature(secret, payload, "sha256=0000"))
	assert.True(t, verifyWebhookSignature("", payload, ""), "no configured secret skips verification")
}

// stubRepos backs the handler tests whose events must reach the database
// layer. Only the call repository is scripted; numbers resolve as unassigned
// and every other repository reports an unsupported operation.
type stubRepos struct {
	calls *stubCallRepo
}

func (s *stubRepos) Business() repository.BusinessRepository { return stubBusinessRepo{} }
func (s *stubRepos) Agent() repository.AgentRepository       { return stubAgentRepo{} }
func (s *stubRepos) PhoneNumber() repository.PhoneNumberRepository {
	return stubPhoneNumberRepo{}
}
func (s *stubRepos) Call() repository.CallRepository { return s.calls }
func (s *stubRepos) Conversation() repository.ConversationRepository {
	return stubConversationRepo{}
}

func (s *stubRepos) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.RepositoryManager) error) error {
	return fn(ctx, s)
}

func (s *stubRepos) Ping(ctx context.Context) error { return nil }
func (s *stubRepos) Close() error                   { return nil }

var errStubRepo = fmt.Errorf("not supported in this test")

type stubCallRepo struct {
	mu              sync.Mutex
	failFirstCreate bool
	createCalls     int
	calls           map[string]*domain.Call
}

func (r *stubCallRepo) Create(ctx context.Context, call *domain.Call) (*domain.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.failFirstCreate && r.createCalls == 1 {
		return nil, fmt.Errorf("simulated database failure")
	}
	r.calls[call.CallControlID] = call
	return call, nil
}

func (r *stubCallRepo) GetByCallControlID(ctx context.Context, callControlID string) (*domain.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[callControlID]
	if !ok {
		return nil, fmt.Errorf("call %s: %w", callControlID, domain.ErrNotFound)
	}
	return c, nil
}

func (r *stubCallRepo) MarkAnswered(ctx context.Context, callControlID, businessID, agentID string) (*domain.Call, error) {
	return nil, errStubRepo
}

func (r *stubCallRepo) MarkCompleted(ctx context.Context, callControlID, hangupCause string, durationSecs int) (*domain.Call, error) {
	return nil, errStubRepo
}

func (r *stubCallRepo) AttachRecording(ctx context.Context, callControlID, recordingURL string) error {
	return errStubRepo
}

func (r *stubCallRepo) ListByBusinessID(ctx context.Context, businessID string, limit, offset int) ([]*domain.Call, error) {
	return nil, errStubRepo
}

type stubBusinessRepo struct{}

func (stubBusinessRepo) Create(ctx context.Context, req *domain.CreateBusinessRequest) (*domain.Business, error) {
	return nil, errStubRepo
}

func (stubBusinessRepo) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	return nil, errStubRepo
}

func (stubBusinessRepo) GetAll(ctx context.Context, includeDisabled bool) ([]*domain.Business, error) {
	return nil, errStubRepo
}

func (stubBusinessRepo) GetWithAgents(ctx context.Context, id string) (*domain.BusinessWithAgents, error) {
	return nil, errStubRepo
}

func (stubBusinessRepo) Update(ctx context.Context, id string, req *domain.UpdateBusinessRequest) (*domain.Business, error) {
	return nil, errStubRepo
}

func (stubBusinessRepo) Disable(ctx context.Context, id string) error { return errStubRepo }

func (stubBusinessRepo) Exists(ctx context.Context, id string) (bool, error) {
	return false, errStubRepo
}

type stubAgentRepo struct{}

func (stubAgentRepo) Create(ctx context.Context, req *domain.CreateAgentRequest) (*domain.AIAgent, error) {
	return nil, errStubRepo
}

func (stubAgentRepo) GetByID(ctx context.Context, id string) (*domain.AIAgent, error) {
	return nil, errStubRepo
}

func (stubAgentRepo) GetByBusinessID(ctx context.Context, businessID string) ([]*domain.AIAgent, error) {
	return nil, errStubRepo
}

func (stubAgentRepo) GetActiveByBusinessID(ctx context.Context, businessID string) (*domain.AIAgent, error) {
	return nil, errStubRepo
}

func (stubAgentRepo) Update(ctx context.Context, id string, req *domain.UpdateAgentRequest) (*domain.AIAgent, error) {
	return nil, errStubRepo
}

func (stubAgentRepo) Activate(ctx context.Context, id string) (*domain.AIAgent, error) {
	return nil, errStubRepo
}

func (stubAgentRepo) Delete(ctx context.Context, id string) error { return errStubRepo }

type stubPhoneNumberRepo struct{}

func (stubPhoneNumberRepo) Assign(ctx context.Context, req *domain.AssignPhoneNumberRequest) (*domain.PhoneNumberAssignment, error) {
	return nil, errStubRepo
}

func (stubPhoneNumberRepo) GetByNumber(ctx context.Context, number string) (*domain.PhoneNumberAssignment, error) {
	return nil, fmt.Errorf("number %s: %w", number, domain.ErrNotFound)
}

func (stubPhoneNumberRepo) GetAssignedByNumber(ctx context.Context, number string) (*domain.PhoneNumberAssignment, error) {
	return nil, fmt.Errorf("number %s: %w", number, domain.ErrNotFound)
}

func (stubPhoneNumberRepo) GetByBusinessID(ctx context.Context, businessID string) ([]*domain.PhoneNumberAssignment, error) {
	return nil, errStubRepo
}

func (stubPhoneNumberRepo) Update(ctx context.Context, id string, req *domain.UpdatePhoneNumberRequest) (*domain.PhoneNumberAssignment, error) {
	return nil, errStubRepo
}

type stubConversationRepo struct{}

func (stubConversationRepo) Append(ctx context.Context, turn *domain.ConversationTurn) (*domain.ConversationTurn, error) {
	return nil, errStubRepo
}

func (stubConversationRepo) GetByCallControlID(ctx context.Context, callControlID string) ([]*domain.ConversationTurn, error) {
	return nil, errStubRepo
}
