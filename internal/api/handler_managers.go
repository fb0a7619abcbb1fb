package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"manager-links/internal/domain"
)

// listAllManagers handles GET /v1/managers: the distinct managers across
// all links, registered or not.
func (h *Handler) listAllManagers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r.URL.Query())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	managers, total, err := h.links.ListAllManagers(r.Context(), page)
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

// listReports handles GET /v1/managers/{managerID}/reports.
func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	managerID, err := pathIdentifier(r, "managerID")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	page, err := pageFromQuery(r.URL.Query())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	reports, total, err := h.links.ListReports(r.Context(), managerID, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, listResponse{
		Count:         int(total),
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
		Results:       reports,
	})
}

// bulkReportsResponse is the body of a bulk create-reports response. Errors
// is present only when at least one item failed.
type bulkReportsResponse struct {
	Results []domain.ReportIdentity `json:"results"`
	Errors  []domain.ItemError      `json:"errors,omitempty"`
}

// decodeReportsBody reads a create-reports body, which is either a single
// report object or a JSON array of them. The first non-space byte decides.
func decodeReportsBody(body io.Reader) (domain.CreateReportsRequest, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return domain.CreateReportsRequest{}, domain.ErrValidation("read request body: %v", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return domain.CreateReportsRequest{}, domain.ErrValidation("a request body is required")
	}

	if raw[0] == '[' {
		var items []domain.ReportItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return domain.CreateReportsRequest{}, domain.ErrValidation("malformed request body: %v", err)
		}
		return domain.BulkReports(items), nil
	}

	var item domain.ReportItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.CreateReportsRequest{}, domain.ErrValidation("malformed request body: %v", err)
	}
	return domain.SingleReport(item), nil
}

// createReports handles POST /v1/managers/{managerID}/reports. A single
// report responds 201 with the report identity; a bulk request responds
// with the created list, 202 when any item was rejected.
func (h *Handler) createReports(w http.ResponseWriter, r *http.Request) {
	managerID, err := pathIdentifier(r, "managerID")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	req, err := decodeReportsBody(r.Body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	result, err := h.links.CreateReports(r.Context(), managerID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if !result.Bulk {
		h.writeJSON(w, http.StatusCreated, result.Created[0])
		return
	}

	status := http.StatusCreated
	if len(result.Errors) > 0 {
		status = http.StatusAccepted
	}
	if result.Created == nil {
		result.Created = []domain.ReportIdentity{}
	}
	h.writeJSON(w, status, bulkReportsResponse{Results: result.Created, Errors: result.Errors})
}

// deleteReports handles DELETE /v1/managers/{managerID}/reports, removing
// all of the manager's links or, with ?user=, just one. Responds 204
// whether or not any link existed.
func (h *Handler) deleteReports(w http.ResponseWriter, r *http.Request) {
	managerID, err := pathIdentifier(r, "managerID")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if _, err := h.links.DeleteReports(r.Context(), managerID, r.URL.Query().Get("user")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
