// Package domain defines the core domain models for issuemesh.
package domain

// Document is the full state of the record store: the identifier counter
// and every issue in creation order. It is both the durable snapshot format
// and the payload of the init event.
type Document struct {
	NextID int64    `json:"nextId"`
	Issues []*Issue `json:"issues"`
}

// NewDocument returns the initial empty document.
func NewDocument() *Document {
	return &Document{
		NextID: 1,
		Issues: []*Issue{},
	}
}

// Validate checks the basic shape of a loaded document.
func (d *Document) Validate() error {
	if d.NextID < 0 {
		return ErrValidation.Detailf("nextId must not be negative, got %d", d.NextID)
	}

	seen := make(map[int64]struct{}, len(d.Issues))
	for idx, issue := range d.Issues {
		if issue == nil {
			return ErrValidation.Detailf("issues[%d] is null", idx)
		}
		if err := issue.Validate(); err != nil {
			return err
		}
		if _, dup := seen[issue.ID]; dup {
			return ErrValidation.Detailf("duplicate issue id %d", issue.ID)
		}
		seen[issue.ID] = struct{}{}
	}
	return nil
}

// MaxID returns the largest issue id, or 0 for an empty document.
func (d *Document) MaxID() int64 {
	var max int64
	for _, issue := range d.Issues {
		if issue != nil && issue.ID > max {
			max = issue.ID
		}
	}
	return max
}
