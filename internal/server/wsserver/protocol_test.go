package wsserver

import (
	"errors"
	"strings"
	"testing"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RequestType
		wantErr string
	}{
		{
			name:  "create",
			input: `{"type":"create_issue","payload":{"title":"Bug A","createdBy":"alice"}}`,
			want:  RequestCreateIssue,
		},
		{
			name:  "update",
			input: `{"type":"update_issue","payload":{"id":1,"fields":{"status":"Closed"},"updatedBy":"bob"}}`,
			want:  RequestUpdateIssue,
		},
		{
			name:  "comment",
			input: `{"type":"add_comment","payload":{"id":1,"comment":{"author":"carol","text":"ok"}}}`,
			want:  RequestAddComment,
		},
		{name: "malformed", input: `{"type":`, wantErr: "malformed message"},
		{name: "not an object", input: `[1,2]`, wantErr: "malformed message"},
		{name: "missing type", input: `{"payload":{}}`, wantErr: "missing message type"},
		{name: "unknown type", input: `{"type":"delete_issue","payload":{"id":1}}`, wantErr: `unknown message type "delete_issue"`},
		{name: "missing payload", input: `{"type":"create_issue"}`, wantErr: "create_issue: missing payload"},
		{name: "null payload", input: `{"type":"add_comment","payload":null}`, wantErr: "add_comment: missing payload"},
		{name: "wrong id type", input: `{"type":"update_issue","payload":{"id":"1","fields":{}}}`, wantErr: "update_issue: invalid payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRequest([]byte(tt.input))
			if tt.wantErr != "" {
				if !errors.Is(err, domain.ErrBadRequest) {
					t.Fatalf("err = %v, want ErrBadRequest", err)
				}
				if msg := domain.ClientMessage(err); !strings.Contains(msg, tt.wantErr) {
					t.Errorf("client message = %q, want it to contain %q", msg, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeRequest: %v", err)
			}
			if got.Type != tt.want {
				t.Errorf("Type = %q, want %q", got.Type, tt.want)
			}
		})
	}
}

func TestDecodeRequest_Fields(t *testing.T) {
	d, err := decodeRequest([]byte(`{"type":"update_issue","payload":{"id":7,"fields":{"title":"New","comments":[],"id":99},"updatedBy":"bob"}}`))
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	if d.Update == nil || d.Update.ID != 7 || d.Update.UpdatedBy != "bob" {
		t.Fatalf("Update = %+v", d.Update)
	}
	if d.Update.Fields.Title == nil || *d.Update.Fields.Title != "New" {
		t.Errorf("Fields.Title = %v, want New", d.Update.Fields.Title)
	}
	if d.Update.Fields.Status != nil || d.Update.Fields.Description != nil {
		t.Errorf("absent fields must stay nil: %+v", d.Update.Fields)
	}

	d, err = decodeRequest([]byte(`{"type":"add_comment","payload":{"id":3,"comment":{"text":"hi"}}}`))
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	if d.Comment == nil || d.Comment.ID != 3 || d.Comment.Text != "hi" || d.Comment.Author != "" {
		t.Errorf("Comment = %+v", d.Comment)
	}
}
