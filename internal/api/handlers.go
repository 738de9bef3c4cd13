package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/soyeahso/crustspace/internal/domain"
	"github.com/soyeahso/crustspace/internal/store"
)

// agentHandler is an HTTP handler that runs after authentication.
type agentHandler func(w http.ResponseWriter, r *http.Request, agent *domain.Agent)

// withAgent authenticates the request and hands the resolved agent to h.
// Absent/malformed and unknown credentials both produce a 401; only the
// message differs.
func (s *Server) withAgent(h agentHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := ExtractBearer(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized,
				"Unauthorized. Provide valid API key in Authorization header.")
			return
		}

		agent, err := s.verifier.Verify(token)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				s.log.Error().Err(err).Msg("key verification failed")
			}
			writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}

		h(w, r, agent)
	}
}

// agentProfile is the authenticated self-view of an agent.
type agentProfile struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Handle        string             `json:"handle"`
	Tagline       string             `json:"tagline"`
	Bio           string             `json:"bio"`
	Status        domain.Status      `json:"status"`
	StatusMessage *string            `json:"status_message"`
	AvatarURL     string             `json:"avatar_url"`
	BaseModel     string             `json:"base_model"`
	Tier          domain.Tier        `json:"tier"`
	Verified      bool               `json:"verified"`
	Theme         string             `json:"theme"`
	CanEdit       domain.Permissions `json:"can_edit"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func profileOf(a *domain.Agent) agentProfile {
	return agentProfile{
		ID:            a.ID,
		Name:          a.Name,
		Handle:        a.Handle,
		Tagline:       a.Tagline,
		Bio:           a.Bio,
		Status:        a.Status,
		StatusMessage: optString(a.StatusMessage),
		AvatarURL:     a.AvatarURL,
		BaseModel:     a.BaseModel,
		Tier:          a.Tier,
		Verified:      a.Verified,
		Theme:         a.Theme,
		CanEdit:       a.CanEdit,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// publicProfile is the unauthenticated directory view: no permission
// flags, no secret material.
type publicProfile struct {
	Handle        string                 `json:"handle"`
	Name          string                 `json:"name"`
	Tagline       string                 `json:"tagline"`
	Bio           string                 `json:"bio"`
	Status        domain.Status          `json:"status"`
	StatusMessage *string                `json:"status_message"`
	AvatarURL     string                 `json:"avatar_url"`
	BaseModel     string                 `json:"base_model"`
	Tier          domain.Tier            `json:"tier"`
	Verified      bool                   `json:"verified"`
	Theme         string                 `json:"theme"`
	LastActiveAt  time.Time              `json:"last_active_at"`
	CreatedAt     time.Time              `json:"created_at"`
	Capabilities  []domain.Capability    `json:"capabilities"`
	Portfolio     []domain.PortfolioItem `json:"portfolio"`
}

// GET /api/agents/me
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request, agent *domain.Agent) {
	s.recorder.Record(agent.ID, domain.ActionProfileView, nil)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"agent":   profileOf(agent),
	})
}

// PATCH /api/agents/me
func (s *Server) handlePatchMe(w http.ResponseWriter, r *http.Request, agent *domain.Agent) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	updates, fieldErrs := ValidateProfileUpdate(agent, body)
	if len(fieldErrs) > 0 {
		status := http.StatusBadRequest
		msg := "Invalid request"
		if HasPermissionError(fieldErrs) {
			status = http.StatusForbidden
			msg = "Permission denied"
		}
		writeJSON(w, status, map[string]any{
			"error":   msg,
			"details": ErrorMessages(fieldErrs),
		})
		return
	}
	if len(updates) == 0 {
		writeError(w, http.StatusBadRequest, "No valid updates provided")
		return
	}

	updated, err := s.agents.UpdateFields(agent.ID, updates)
	if err != nil {
		s.log.Error().Err(err).Str("agentId", agent.ID).Msg("profile update failed")
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	fields := make([]string, 0, len(updates))
	for f := range updates {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	s.recorder.Record(agent.ID, domain.ActionProfileUpdate, map[string]any{"fields": fields})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "Profile updated",
		"updated_fields": fields,
		"agent":          profileOf(updated),
	})
}

// GET /api/agents/me/status
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request, agent *domain.Agent) {
	// High-frequency polling surface: bump last_active_at but skip the
	// activity row.
	s.recorder.Touch(agent.ID)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      agent.Status,
		"message":     optString(agent.StatusMessage),
		"last_active": agent.LastActiveAt,
	})
}

type statusUpdateRequest struct {
	Status  string  `json:"status"`
	Message *string `json:"message"`
}

// PUT /api/agents/me/status
func (s *Server) handlePutStatus(w http.ResponseWriter, r *http.Request, agent *domain.Agent) {
	var body statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	updates, fieldErr := ValidateStatusUpdate(agent, body.Status, body.Message)
	if fieldErr != nil {
		status := http.StatusBadRequest
		if fieldErr.Permission {
			status = http.StatusForbidden
		}
		writeError(w, status, fieldErr.Message)
		return
	}

	if _, err := s.agents.UpdateFields(agent.ID, updates); err != nil {
		s.log.Error().Err(err).Str("agentId", agent.ID).Msg("status update failed")
		writeError(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	meta := map[string]any{"status": body.Status}
	if body.Message != nil {
		meta["message"] = *body.Message
	}
	s.recorder.Record(agent.ID, domain.ActionStatusUpdate, meta)

	var message *string
	if body.Message != nil && *body.Message != "" {
		message = body.Message
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  body.Status,
		"message": message,
	})
}

// GET /api/agents/me/capabilities
func (s *Server) handleListCapabilities(w http.ResponseWriter, r *http.Request, agent *domain.Agent) {
	s.recorder.Touch(agent.ID)

	caps, err := s.capabilities.ListCapabilities(agent.ID)
	if err != nil {
		s.log.Error().Err(err).Str("agentId", agent.ID).Msg("listing capabilities failed")
		writeError(w, http.StatusInternalServerError, "Failed to list capabilities")
		return
	}
	if caps == nil {
		caps = []domain.Capability{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"capabilities": caps,
	})
}

type capabilityRequest struct {
	Category       string `json:"category"`
	Specialization string `json:"specialization"`
	Depth          string `json:"depth"`
}

// POST /api/agents/me/capabilities
func (s *Server) handleAddCapability(w http.ResponseWriter, r *http.Request, agent *domain.Agent) {
	if !agent.CanEdit.Capabilities {
		writeError(w, http.StatusForbidden, "You do not have permission to edit capabilities")
		return
	}

	var body capabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if body.Category == "" {
		writeError(w, http.StatusBadRequest, "Category is required")
		return
	}
	if body.Depth != "" && !domain.ValidDepth(body.Depth) {
		writeError(w, http.StatusBadRequest, "Invalid depth. Must be: familiar, proficient, expert")
		return
	}

	c := &domain.Capability{
		AgentID:        agent.ID,
		Category:       body.Category,
		Specialization: body.Specialization,
		Depth:          domain.Depth(body.Depth),
	}
	if err := s.capabilities.AddCapability(c); err != nil {
		s.log.Error().Err(err).Str("agentId", agent.ID).Msg("adding capability failed")
		writeError(w, http.StatusInternalServerError, "Failed to add capability")
		return
	}

	s.recorder.Record(agent.ID, domain.ActionCapabilityAdded, map[string]any{"category": c.Category})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"capability": c,
	})
}

// DELETE /api/agents/me/capabilities/{id}
func (s *Server) handleRemoveCapability(w http.ResponseWriter, r *http.Request, agent *domain.Agent) {
	if !agent.CanEdit.Capabilities {
		writeError(w, http.StatusForbidden, "You do not have permission to edit capabilities")
		return
	}

	id := r.PathValue("id")
	if err := s.capabilities.RemoveCapability(id, agent.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Capability not found")
			return
		}
		s.log.Error().Err(err).Str("agentId", agent.ID).Msg("removing capability failed")
		writeError(w, http.StatusInternalServerError, "Failed to remove capability")
		return
	}

	s.recorder.Record(agent.ID, domain.ActionCapabilityRemoved, map[string]any{"id": id})

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /api/agents/me/portfolio
func (s *Server) handleListPortfolio(w http.ResponseWriter, r *http.Request, agent *domain.Agent) {
	s.recorder.Touch(agent.ID)

	items, err := s.capabilities.ListPortfolio(agent.ID)
	if err != nil {
		s.log.Error().Err(err).Str("agentId", agent.ID).Msg("listing portfolio failed")
		writeError(w, http.StatusInternalServerError, "Failed to list portfolio")
		return
	}
	if items == nil {
		items = []domain.PortfolioItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"portfolio": items,
	})
}

type portfolioRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
}

// POST /api/agents/me/portfolio
func (s *Server) handleAddPortfolio(w http.ResponseWriter, r *http.Request, agent *domain.Agent) {
	if !agent.CanEdit.Portfolio {
		writeError(w, http.StatusForbidden, "You do not have permission to edit portfolio")
		return
	}

	var body portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if body.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	item := &domain.PortfolioItem{
		AgentID:     agent.ID,
		Title:       body.Title,
		Description: body.Description,
		URL:         body.URL,
		ImageURL:    body.ImageURL,
	}
	if err := s.capabilities.AddPortfolioItem(item); err != nil {
		s.log.Error().Err(err).Str("agentId", agent.ID).Msg("adding portfolio item failed")
		writeError(w, http.StatusInternalServerError, "Failed to add portfolio item")
		return
	}

	s.recorder.Record(agent.ID, domain.ActionPortfolioAdded, map[string]any{"title": item.Title})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"item":    item,
	})
}

// GET /api/agents/{handle} — public directory read, no authentication.
func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")

	agent, err := s.agents.GetByHandle(handle)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Agent not found")
			return
		}
		s.log.Error().Err(err).Str("handle", handle).Msg("agent lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load agent")
		return
	}

	caps, _ := s.capabilities.ListCapabilities(agent.ID)
	if caps == nil {
		caps = []domain.Capability{}
	}
	items, _ := s.capabilities.ListPortfolio(agent.ID)
	if items == nil {
		items = []domain.PortfolioItem{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"agent": publicProfile{
			Handle:        agent.Handle,
			Name:          agent.Name,
			Tagline:       agent.Tagline,
			Bio:           agent.Bio,
			Status:        agent.Status,
			StatusMessage: optString(agent.StatusMessage),
			AvatarURL:     agent.AvatarURL,
			BaseModel:     agent.BaseModel,
			Tier:          agent.Tier,
			Verified:      agent.Verified,
			Theme:         agent.Theme,
			LastActiveAt:  agent.LastActiveAt,
			CreatedAt:     agent.CreatedAt,
			Capabilities:  caps,
			Portfolio:     items,
		},
	})
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// optString maps empty strings to JSON null.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
