package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

// ListIssues handles GET /api/v1/issues.
func (h *Handler) ListIssues(w http.ResponseWriter, r *http.Request) {
	doc, err := h.issues.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	issues := doc.Issues
	if issues == nil {
		issues = []*domain.Issue{}
	}
	h.writeData(w, r, &IssueList{
		NextID: doc.NextID,
		Count:  len(issues),
		Issues: issues,
	})
}

// GetIssue handles GET /api/v1/issues/{id}.
func (h *Handler) GetIssue(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.fail(w, r, domain.ErrBadRequest.Detailf("invalid issue id %q", raw))
		return
	}

	doc, err := h.issues.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	for _, issue := range doc.Issues {
		if issue.ID == id {
			h.writeData(w, r, issue)
			return
		}
	}
	h.fail(w, r, domain.ErrIssueNotFound.Detailf("id %d", id))
}
