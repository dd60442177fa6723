package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/CloudGreet/voice-service/internal/cache"
	"github.com/CloudGreet/voice-service/internal/services/call"
	"github.com/CloudGreet/voice-service/internal/telephony"
	"github.com/CloudGreet/voice-service/pkg/logger"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = 1 << 20 // 1MB

// VoiceWebhookHandler receives Telnyx Call Control webhooks and dispatches
// them by event type
type VoiceWebhookHandler struct {
	service       *call.Service
	deduper       *cache.EventDeduper
	locker        *cache.CallLocker
	webhookSecret string
}

// NewVoiceWebhookHandler creates the voice webhook handler
func NewVoiceWebhookHandler(service *call.Service, deduper *cache.EventDeduper, locker *cache.CallLocker, webhookSecret string) *VoiceWebhookHandler {
	return &VoiceWebhookHandler{
		service:       service,
		deduper:       deduper,
		locker:        locker,
		webhookSecret: webhookSecret,
	}
}

// HandleWebhook is the single entry point for all call events. It verifies
// the request, drops redelivered events, serializes processing per call,
// and routes by event type.
func (h *VoiceWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		logger.Base().Warn("failed to read webhook body", zap.Error(err))
		writeStatus(w, http.StatusBadRequest, telephony.StatusError)
		return
	}

	if !verifyWebhookSignature(h.webhookSecret, body, r.Header.Get("X-Webhook-Signature")) {
		logger.Base().Warn("webhook signature verification failed",
			zap.String("remote_addr", r.RemoteAddr))
		writeStatus(w, http.StatusUnauthorized, telephony.StatusError)
		return
	}

	var event telephony.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Base().Warn("malformed webhook payload", zap.Error(err))
		writeStatus(w, http.StatusBadRequest, telephony.StatusError)
		return
	}

	if !event.Valid() {
		logger.Base().Warn("webhook payload missing event metadata",
			zap.String("event_type", string(event.Data.EventType)))
		writeStatus(w, http.StatusBadRequest, telephony.StatusError)
		return
	}

	if h.deduper.Seen(r.Context(), event.Data.ID) {
		logger.Base().Info("duplicate webhook delivery acknowledged",
			zap.String("event_id", event.Data.ID),
			zap.String("event_type", string(event.Data.EventType)))
		writeStatus(w, http.StatusOK, telephony.StatusReceived)
		return
	}

	// Overlapping deliveries for the same call are processed one at a time
	unlock := h.locker.Lock(event.Data.Payload.CallControlID)
	defer unlock()

	h.dispatch(w, r, &event)
}

// dispatch routes one verified event to its handler. Every declared event
// type has an explicit branch; anything else is acknowledged untouched.
func (h *VoiceWebhookHandler) dispatch(w http.ResponseWriter, r *http.Request, event *telephony.WebhookEvent) {
	ctx := r.Context()
	payload := &event.Data.Payload

	logger.Base().Info("voice webhook event",
		zap.String("event_type", string(event.Data.EventType)),
		zap.String("call_control_id", payload.CallControlID),
		zap.String("from", payload.From),
		zap.String("to", payload.To))

	switch event.Data.EventType {
	case telephony.EventCallInitiated:
		actions, err := h.service.OnInitiated(ctx, payload)
		h.writeActionsOrError(w, r, event, actions, err)

	case telephony.EventCallAnswered:
		actions, err := h.service.OnAnswered(ctx, payload)
		h.writeActionsOrError(w, r, event, actions, err)

	case telephony.EventCallSpeakEnded:
		// Speech playback finished; the pending gather keeps the call going
		writeStatus(w, http.StatusOK, telephony.StatusReceived)

	case telephony.EventCallGatherEnded:
		actions, err := h.service.OnGatherEnded(ctx, payload)
		h.writeActionsOrError(w, r, event, actions, err)

	case telephony.EventCallHangup:
		if err := h.service.OnHangup(ctx, payload); err != nil {
			logger.Base().Error("hangup handling failed",
				zap.String("call_control_id", payload.CallControlID),
				zap.Error(err))
			h.deduper.Forget(ctx, event.Data.ID)
			writeStatus(w, http.StatusInternalServerError, telephony.StatusError)
			return
		}
		writeStatus(w, http.StatusOK, telephony.StatusReceived)

	case telephony.EventCallRecordingSaved:
		if err := h.service.OnRecordingSaved(ctx, payload); err != nil {
			logger.Base().Error("recording attach failed",
				zap.String("call_control_id", payload.CallControlID),
				zap.Error(err))
			h.deduper.Forget(ctx, event.Data.ID)
			writeStatus(w, http.StatusInternalServerError, telephony.StatusError)
			return
		}
		writeStatus(w, http.StatusOK, telephony.StatusReceived)

	default:
		logger.Base().Info("unhandled webhook event type",
			zap.String("event_type", string(event.Data.EventType)))
		writeStatus(w, http.StatusOK, telephony.StatusReceived)
	}
}

// writeActionsOrError answers an action-producing event. On failure the
// dedup entry is dropped so the provider's retry is processed instead of
// being acknowledged as a duplicate.
func (h *VoiceWebhookHandler) writeActionsOrError(w http.ResponseWriter, r *http.Request, event *telephony.WebhookEvent, actions []telephony.Action, err error) {
	if err != nil {
		logger.Base().Error("webhook event handling failed",
			zap.String("call_control_id", event.Data.Payload.CallControlID),
			zap.Error(err))
		h.deduper.Forget(r.Context(), event.Data.ID)
		writeStatus(w, http.StatusInternalServerError, telephony.StatusError)
		return
	}

	writeJSON(w, http.StatusOK, telephony.ActionResponse{Actions: actions})
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	writeJSON(w, code, telephony.AckResponse{Status: status})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Base().Error("failed to encode response", zap.Error(err))
	}
}
