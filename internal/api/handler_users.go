package api

import (
	"encoding/json"
	"net/http"
	"time"

	"manager-links/internal/domain"
)

// userResponse is the body returned for a registered account.
type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// registerUser handles POST /v1/users: sync a newly registered account and
// upgrade any links that referenced its email.
func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, r, domain.ErrValidation("malformed request body: %v", err))
		return
	}

	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
}

// listManagers handles GET /v1/users/{userID}/managers.
func (h *Handler) listManagers(w http.ResponseWriter, r *http.Request) {
	userID, err := pathIdentifier(r, "userID")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	page, err := pageFromQuery(r.URL.Query())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	managers, total, err := h.links.ListManagers(r.Context(), userID, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, listResponse{
		Count:         int(total),
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
		Results:       managers,
	})
}

// addManager handles POST /v1/users/{userID}/managers, linking a manager
// email to the user.
func (h *Handler) addManager(w http.ResponseWriter, r *http.Request) {
	userID, err := pathIdentifier(r, "userID")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req domain.AddManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, r, domain.ErrValidation("malformed request body: %v", err))
		return
	}

	identity, err := h.links.AddManager(r.Context(), userID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, identity)
}

// deleteManagers handles DELETE /v1/users/{userID}/managers, removing all
// of the user's links or, with ?manager=, just one.
func (h *Handler) deleteManagers(w http.ResponseWriter, r *http.Request) {
	userID, err := pathIdentifier(r, "userID")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if _, err := h.links.DeleteManagers(r.Context(), userID, r.URL.Query().Get("manager")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
