package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/CloudGreet/voice-service/internal/cache"
	"github.com/CloudGreet/voice-service/internal/domain"
	"github.com/CloudGreet/voice-service/internal/repository"
	"github.com/CloudGreet/voice-service/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AdminHandler exposes the back-office CRUD API: businesses, agents, phone
// number assignments, and call history. Writes that affect call routing
// invalidate the receptionist lookup cache.
type AdminHandler struct {
	repos  repository.RepositoryManager
	lookup *cache.ReceptionistCache
}

// NewAdminHandler creates the admin handler
func NewAdminHandler(repos repository.RepositoryManager, lookup *cache.ReceptionistCache) *AdminHandler {
	return &AdminHandler{repos: repos, lookup: lookup}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func (h *AdminHandler) writeRepoError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}
	logger.Base().Error("admin api error", zap.String("resource", what), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// CreateBusiness handles POST /api/admin/businesses
func (h *AdminHandler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.BusinessName == "" || req.OwnerEmail == "" {
		writeError(w, http.StatusBadRequest, "business_name and owner_email are required")
		return
	}

	business, err := h.repos.Business().Create(r.Context(), &req)
	if err != nil {
		h.writeRepoError(w, err, "business")
		return
	}

	writeJSON(w, http.StatusCreated, business)
}

// ListBusinesses handles GET /api/admin/businesses
func (h *AdminHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	includeDisabled := r.URL.Query().Get("include_disabled") == "true"

	businesses, err := h.repos.Business().GetAll(r.Context(), includeDisabled)
	if err != nil {
		h.writeRepoError(w, err, "businesses")
		return
	}

	writeJSON(w, http.StatusOK, businesses)
}

// GetBusiness handles GET /api/admin/businesses/{id}
func (h *AdminHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	business, err := h.repos.Business().GetWithAgents(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err, "business")
		return
	}

	writeJSON(w, http.StatusOK, business)
}

// UpdateBusiness handles PUT /api/admin/businesses/{id}
func (h *AdminHandler) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req domain.UpdateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	business, err := h.repos.Business().Update(r.Context(), id, &req)
	if err != nil {
		h.writeRepoError(w, err, "business")
		return
	}

	h.invalidateBusinessNumbers(r, id)
	writeJSON(w, http.StatusOK, business)
}

// DisableBusiness handles DELETE /api/admin/businesses/{id}. Businesses
// are never hard-deleted; this flips the soft status.
func (h *AdminHandler) DisableBusiness(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.repos.Business().Disable(r.Context(), id); err != nil {
		h.writeRepoError(w, err, "business")
		return
	}

	h.invalidateBusinessNumbers(r, id)
	w.WriteHeader(http.StatusNoContent)
}

// CreateAgent handles POST /api/admin/businesses/{id}/agents
func (h *AdminHandler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["id"]

	exists, err := h.repos.Business().Exists(r.Context(), businessID)
	if err != nil {
		h.writeRepoError(w, err, "business")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "business not found")
		return
	}

	var req domain.CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.BusinessID = businessID

	if req.AgentName == "" {
		writeError(w, http.StatusBadRequest, "agent_name is required")
		return
	}

	agent, err := h.repos.Agent().Create(r.Context(), &req)
	if err != nil {
		h.writeRepoError(w, err, "agent")
		return
	}

	writeJSON(w, http.StatusCreated, agent)
}

// ListAgents handles GET /api/admin/businesses/{id}/agents
func (h *AdminHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["id"]

	agents, err := h.repos.Agent().GetByBusinessID(r.Context(), businessID)
	if err != nil {
		h.writeRepoError(w, err, "agents")
		return
	}

	writeJSON(w, http.StatusOK, agents)
}

// UpdateAgent handles PUT /api/admin/agents/{id}
func (h *AdminHandler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req domain.UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	agent, err := h.repos.Agent().Update(r.Context(), id, &req)
	if err != nil {
		h.writeRepoError(w, err, "agent")
		return
	}

	h.invalidateBusinessNumbers(r, agent.BusinessID)
	writeJSON(w, http.StatusOK, agent)
}

// ActivateAgent handles POST /api/admin/agents/{id}/activate, making this
// the business's single active agent
func (h *AdminHandler) ActivateAgent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	agent, err := h.repos.Agent().Activate(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err, "agent")
		return
	}

	h.invalidateBusinessNumbers(r, agent.BusinessID)
	writeJSON(w, http.StatusOK, agent)
}

// DeleteAgent handles DELETE /api/admin/agents/{id}
func (h *AdminHandler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	agent, err := h.repos.Agent().GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err, "agent")
		return
	}

	if err := h.repos.Agent().Delete(r.Context(), id); err != nil {
		h.writeRepoError(w, err, "agent")
		return
	}

	h.invalidateBusinessNumbers(r, agent.BusinessID)
	w.WriteHeader(http.StatusNoContent)
}

// AssignPhoneNumber handles POST /api/admin/phone-numbers
func (h *AdminHandler) AssignPhoneNumber(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignPhoneNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PhoneNumber == "" || req.BusinessID == "" {
		writeError(w, http.StatusBadRequest, "phone_number and business_id are required")
		return
	}

	assignment, err := h.repos.PhoneNumber().Assign(r.Context(), &req)
	if err != nil {
		h.writeRepoError(w, err, "phone number")
		return
	}

	h.lookup.Invalidate(assignment.PhoneNumber)
	writeJSON(w, http.StatusCreated, assignment)
}

// ListPhoneNumbers handles GET /api/admin/businesses/{id}/phone-numbers
func (h *AdminHandler) ListPhoneNumbers(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["id"]

	assignments, err := h.repos.PhoneNumber().GetByBusinessID(r.Context(), businessID)
	if err != nil {
		h.writeRepoError(w, err, "phone numbers")
		return
	}

	writeJSON(w, http.StatusOK, assignments)
}

// UpdatePhoneNumber handles PUT /api/admin/phone-numbers/{id}
func (h *AdminHandler) UpdatePhoneNumber(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req domain.UpdatePhoneNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assignment, err := h.repos.PhoneNumber().Update(r.Context(), id, &req)
	if err != nil {
		h.writeRepoError(w, err, "phone number")
		return
	}

	h.lookup.Invalidate(assignment.PhoneNumber)
	writeJSON(w, http.StatusOK, assignment)
}

// ListCalls handles GET /api/admin/businesses/{id}/calls
func (h *AdminHandler) ListCalls(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["id"]

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	calls, err := h.repos.Call().ListByBusinessID(r.Context(), businessID, limit, offset)
	if err != nil {
		h.writeRepoError(w, err, "calls")
		return
	}

	writeJSON(w, http.StatusOK, calls)
}

// GetCall handles GET /api/admin/calls/{callControlId}, returning the call
// record with its conversation transcript
func (h *AdminHandler) GetCall(w http.ResponseWriter, r *http.Request) {
	callControlID := mux.Vars(r)["callControlId"]

	call, err := h.repos.Call().GetByCallControlID(r.Context(), callControlID)
	if err != nil {
		h.writeRepoError(w, err, "call")
		return
	}

	turns, err := h.repos.Conversation().GetByCallControlID(r.Context(), callControlID)
	if err != nil {
		h.writeRepoError(w, err, "conversation")
		return
	}

	writeJSON(w, http.StatusOK, domain.CallWithTurns{Call: *call, Turns: turns})
}

// invalidateBusinessNumbers drops cached receptionist resolutions for all
// numbers owned by a business after a routing-relevant write
func (h *AdminHandler) invalidateBusinessNumbers(r *http.Request, businessID string) {
	assignments, err := h.repos.PhoneNumber().GetByBusinessID(r.Context(), businessID)
	if err != nil {
		logger.Base().Warn("cache invalidation lookup failed, flushing lookup cache",
			zap.String("business_id", businessID), zap.Error(err))
		h.lookup.Flush()
		return
	}

	for _, a := range assignments {
		h.lookup.Invalidate(a.PhoneNumber)
	}
}
