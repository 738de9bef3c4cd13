package api

import "net/http"

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/agents/me", s.withAgent(s.handleGetMe))
	mux.HandleFunc("PATCH /api/agents/me", s.withAgent(s.handlePatchMe))
	mux.HandleFunc("GET /api/agents/me/status", s.withAgent(s.handleGetStatus))
	mux.HandleFunc("PUT /api/agents/me/status", s.withAgent(s.handlePutStatus))

	mux.HandleFunc("GET /api/agents/me/capabilities", s.withAgent(s.handleListCapabilities))
	mux.HandleFunc("POST /api/agents/me/capabilities", s.withAgent(s.handleAddCapability))
	mux.HandleFunc("DELETE /api/agents/me/capabilities/{id}", s.withAgent(s.handleRemoveCapability))
	mux.HandleFunc("GET /api/agents/me/portfolio", s.withAgent(s.handleListPortfolio))
	mux.HandleFunc("POST /api/agents/me/portfolio", s.withAgent(s.handleAddPortfolio))

	mux.HandleFunc("GET /api/agents/{handle}", s.handleGetAgent)

	mux.HandleFunc("/", handleNotFound)
}
