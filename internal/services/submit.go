package services

import (
	"errors"
	"fmt"

	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/previews"
	"github.com/localnerve/wpq-drafts/internal/validation"
	"gorm.io/gorm"
)

// ErrInvalidDraft is returned by SubmitDraft when validation fails.
var ErrInvalidDraft = errors.New("draft is not valid")

// SubmitDraft validates the owner's draft, moves its pending uploads into
// attachments, stores the record, resets the draft and releases every
// upload the owner still holds. The reset happens only after the record is
// committed.
func SubmitDraft(db *gorm.DB, uploads *previews.Registry, c *draft.Controller, owner string) (*Record, validation.Result, error) {
	result := validation.ValidateAll(c.Draft())
	if !result.Success {
		return nil, result, ErrInvalidDraft
	}

	var record *Record
	err := db.Transaction(func(tx *gorm.DB) error {
		resolved, err := c.ResolveFiles(func(h draft.FileHandle) (string, error) {
			u, err := uploads.Open(owner, h.ID)
			if err != nil {
				return "", err
			}
			return SaveAttachment(tx, u)
		})
		if err != nil {
			return err
		}

		record, err = CreateRecord(tx, owner, resolved)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateCertificate) || errors.Is(err, previews.ErrNotFound) {
			return nil, result, err
		}
		return nil, result, fmt.Errorf("failed to submit draft: %w", err)
	}

	c.Reset()
	// Uploads the draft stopped referencing are released with it.
	uploads.RevokeOwner(owner)
	return record, result, nil
}
