// Package api provides HTTP handlers for the manager links REST API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"manager-links/internal/domain"
	"manager-links/internal/service"
)

// Handler serves the manager links endpoints.
type Handler struct {
	users  *service.UserService
	links  *service.LinkService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required service dependencies.
func NewHandler(users *service.UserService, links *service.LinkService, logger *slog.Logger) *Handler {
	return &Handler{users: users, links: links, logger: logger}
}

// Routes registers all API routes on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/managers", h.listAllManagers)
	r.Route("/managers/{managerID}/reports", func(r chi.Router) {
		r.Get("/", h.listReports)
		r.Post("/", h.createReports)
		r.Delete("/", h.deleteReports)
	})
	r.Post("/users", h.registerUser)
	r.Route("/users/{userID}/managers", func(r chi.Router) {
		r.Get("/", h.listManagers)
		r.Post("/", h.addManager)
		r.Delete("/", h.deleteManagers)
	})
}

// errorResponse is the body returned for all top-level request failures.
type errorResponse struct {
	Detail string `json:"detail"`
}

// listResponse wraps list results with the total count and pagination token.
type listResponse struct {
	Count         int    `json:"count"`
	NextPageToken string `json:"next_page_token,omitempty"`
	Results       any    `json:"results"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, errorResponse{Detail: detail})
}

// handleError maps a domain error to its HTTP status and writes the error body.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.writeError(w, status, "internal server error")
		return
	}
	h.writeError(w, status, err.Error())
}

// pageFromQuery extracts a PageRequest from optional max_results/page_token params.
func pageFromQuery(q url.Values) (domain.PageRequest, error) {
	p := domain.PageRequest{PageToken: q.Get("page_token")}
	if raw := q.Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, domain.ErrValidation("invalid max_results: %s", raw)
		}
		p.MaxResults = n
	}
	return p, nil
}

// pathIdentifier returns the decoded identifier from the named URL parameter.
// chi leaves percent-encoding in place for wildcard segments, so emails such
// as user%40example.com arrive encoded.
func pathIdentifier(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", domain.ErrValidation("invalid identifier: %s", raw)
	}
	if id == "" {
		return "", domain.ErrValidation("an identifier must be specified")
	}
	return id, nil
}
