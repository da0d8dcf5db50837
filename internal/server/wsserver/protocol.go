// Package wsserver provides the websocket transport for issuemesh.
package wsserver

import (
	"bytes"
	"encoding/json"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
	"github.com/yndnr/issuemesh-go/internal/core/service"
)

// RequestType discriminates client-to-server messages.
type RequestType string

// Client-to-server request types.
const (
	RequestCreateIssue RequestType = "create_issue"
	RequestUpdateIssue RequestType = "update_issue"
	RequestAddComment  RequestType = "add_comment"
)

// Request is the envelope of every client message.
type Request struct {
	Type    RequestType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateIssuePayload is the payload of create_issue.
type CreateIssuePayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
}

// UpdateIssuePayload is the payload of update_issue.
// Attributes in fields other than title, description and status are ignored.
type UpdateIssuePayload struct {
	ID        int64              `json:"id"`
	Fields    domain.IssueFields `json:"fields"`
	UpdatedBy string             `json:"updatedBy,omitempty"`
}

// CommentInput is the comment inside an add_comment payload.
type CommentInput struct {
	Author string `json:"author,omitempty"`
	Text   string `json:"text"`
}

// AddCommentPayload is the payload of add_comment.
type AddCommentPayload struct {
	ID      int64        `json:"id"`
	Comment CommentInput `json:"comment"`
}

// decodedRequest holds exactly one service request matching Type.
type decodedRequest struct {
	Type    RequestType
	Create  *service.CreateIssueRequest
	Update  *service.UpdateIssueRequest
	Comment *service.AddCommentRequest
}

// decodeRequest parses one client frame. All errors are
// domain.ErrBadRequest with details meant for the client.
func decodeRequest(data []byte) (*decodedRequest, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, domain.ErrBadRequest.WithDetails("malformed message").WithCause(err)
	}

	switch req.Type {
	case RequestCreateIssue, RequestUpdateIssue, RequestAddComment:
	case "":
		return nil, domain.ErrBadRequest.WithDetails("missing message type")
	default:
		return nil, domain.ErrBadRequest.Detailf("unknown message type %q", req.Type)
	}

	if !hasPayload(req.Payload) {
		return nil, domain.ErrBadRequest.Detailf("%s: missing payload", req.Type)
	}

	d := &decodedRequest{Type: req.Type}
	switch req.Type {
	case RequestCreateIssue:
		var p CreateIssuePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return nil, invalidPayload(req.Type, err)
		}
		d.Create = &service.CreateIssueRequest{
			Title:       p.Title,
			Description: p.Description,
			CreatedBy:   p.CreatedBy,
		}

	case RequestUpdateIssue:
		var p UpdateIssuePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return nil, invalidPayload(req.Type, err)
		}
		d.Update = &service.UpdateIssueRequest{
			ID:        p.ID,
			Fields:    p.Fields,
			UpdatedBy: p.UpdatedBy,
		}

	case RequestAddComment:
		var p AddCommentPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return nil, invalidPayload(req.Type, err)
		}
		d.Comment = &service.AddCommentRequest{
			ID:     p.ID,
			Author: p.Comment.Author,
			Text:   p.Comment.Text,
		}
	}

	return d, nil
}

func hasPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func invalidPayload(t RequestType, err error) error {
	return domain.ErrBadRequest.Detailf("%s: invalid payload", t).WithCause(err)
}
