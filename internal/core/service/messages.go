package service

import (
	"encoding/json"
	"fmt"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

// unknownUpdater names the actor of an update that did not say who made it.
const unknownUpdater = "Unknown"

func updaterName(updatedBy string) string {
	if updatedBy == "" {
		return unknownUpdater
	}
	return updatedBy
}

// createdMessage: Issue #1 created by alice: Bug A
func createdMessage(issue *domain.Issue) string {
	return fmt.Sprintf("Issue #%d created by %s: %s", issue.ID, issue.CreatedBy, issue.Title)
}

// updatedMessage: Issue #1 updated by bob: {"status":"Closed"}
func updatedMessage(id int64, updatedBy string, fields domain.IssueFields) string {
	data, err := json.Marshal(fields)
	if err != nil {
		data = []byte("{}")
	}
	return fmt.Sprintf("Issue #%d updated by %s: %s", id, updaterName(updatedBy), data)
}

// commentedMessage: Issue #1 commented by carol: "looks fixed"
func commentedMessage(id int64, c *domain.Comment) string {
	return fmt.Sprintf("Issue #%d commented by %s: %q", id, c.Author, c.Text)
}

func resyncMessage(issues int) string {
	return fmt.Sprintf("Snapshot reloaded after external edit (%d issues)", issues)
}
