package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/models"
	"github.com/localnerve/wpq-drafts/internal/previews"
	"gorm.io/gorm"
)

// AttachmentURLPrefix is the path stored attachments are served under.
const AttachmentURLPrefix = "/api/attachments/"

// SaveAttachment copies an upload into the attachments table and returns
// its permanent URL.
func SaveAttachment(db *gorm.DB, u *previews.Upload) (string, error) {
	row := models.Attachment{
		AttachmentID: uuid.NewString(),
		OwnerID:      u.OwnerID,
		FileName:     u.Name,
		ContentType:  u.ContentType,
		Size:         int64(len(u.Data)),
		Content:      u.Data,
	}
	if err := db.Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}
	return AttachmentURLPrefix + row.AttachmentID, nil
}

// GetAttachment returns a stored attachment.
func GetAttachment(db *gorm.DB, id string) (*models.Attachment, error) {
	var row models.Attachment
	err := db.Where("attachment_id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("attachment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return &row, nil
}

// AttachmentIDs lists the attachments a submitted form references.
func AttachmentIDs(d draft.FormDraft) []string {
	urls := []string{
		d.BasicInfo.PhotoPreview,
		d.BasicInfo.SignaturePreview,
		d.Continuity.CertifiedSignatureURL,
		d.Continuity.ReviewedBySignatureURL,
		d.Continuity.ApprovedBySignatureURL,
	}
	for _, e := range d.Continuity.ContinuityRecords {
		urls = append(urls, e.VerifierSignatureURL, e.QCSignatureURL)
	}

	var ids []string
	for _, u := range urls {
		if id, ok := strings.CutPrefix(u, AttachmentURLPrefix); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
