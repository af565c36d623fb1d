// records.go
//
// Draft and record service for welder performance qualification (WPQ) certificates
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of wpq-drafts.
// wpq-drafts is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// wpq-drafts is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with wpq-drafts.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/metrics"
	"github.com/localnerve/wpq-drafts/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/hints"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateCertificate = errors.New("certificate number already exists")
)

// Record is the API view of a stored WPQ record.
type Record struct {
	ID               string          `json:"id"`
	CertificateNo    string          `json:"certificateNo"`
	WelderName       string          `json:"welderName"`
	IqamaPassport    string          `json:"iqamaPassport"`
	ClientContractor string          `json:"clientContractor"`
	FormNo           string          `json:"formNo"`
	DateWelded       string          `json:"dateWelded,omitempty"`
	CreatedBy        string          `json:"createdBy"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Form             draft.FormDraft `json:"form"`
}

// SearchQuery selects a page of records. Text matches certificate number,
// welder name or iqama/passport number.
type SearchQuery struct {
	Text     string
	Page     int
	PageSize int
}

// SearchResult is one page of records, without form payloads.
type SearchResult struct {
	Records  []Record `json:"records"`
	Total    int64    `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}

// CreateRecord stores a submitted draft for owner. The draft must have its
// files resolved already.
func CreateRecord(db *gorm.DB, owner string, d draft.FormDraft) (*Record, error) {
	payload, err := json.Marshal(draft.Filter(d))
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	row := models.WPQRecord{
		RecordID:         uuid.NewString(),
		CertificateNo:    strings.TrimSpace(d.BasicInfo.CertificateNo),
		WelderName:       strings.TrimSpace(d.BasicInfo.WelderName),
		IqamaPassport:    strings.TrimSpace(d.BasicInfo.IqamaPassport),
		ClientContractor: d.BasicInfo.ClientContractor,
		FormNo:           d.Continuity.FormNo,
		CreatedBy:        owner,
		Payload:          models.NewJSON(payload),
	}
	if t, err := time.Parse("2006-01-02", d.BasicInfo.DateWelded); err == nil {
		row.DateWelded = datatypes.Date(t)
	}

	// The unique index decides; the dialect's error is translated to
	// gorm.ErrDuplicatedKey so concurrent submits conflict the same way.
	if err := db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCertificate, row.CertificateNo)
		}
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	metrics.RecordsCreated.Inc()
	return toRecord(row, true)
}

// GetRecord returns the record with its form.
func GetRecord(db *gorm.DB, id string) (*Record, error) {
	var row models.WPQRecord
	err := db.Where("record_id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return toRecord(row, true)
}

// SearchRecords returns one page of records, newest first.
func SearchRecords(db *gorm.DB, q SearchQuery) (*SearchResult, error) {
	page := max(q.Page, 1)
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	text := strings.ToLower(strings.TrimSpace(q.Text))
	scoped := func() *gorm.DB {
		query := db.Model(&models.WPQRecord{})
		if text == "" {
			return query
		}
		if db.Dialector.Name() == "mysql" {
			query = query.Clauses(hints.UseIndex("idx_wpq_records_welder_name"))
		}
		like := "%" + text + "%"
		return query.Where(
			"LOWER(certificate_no) LIKE ? OR LOWER(welder_name) LIKE ? OR LOWER(iqama_passport) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	var rows []models.WPQRecord
	err := scoped().
		Omit("payload").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}

	result := &SearchResult{
		Records:  make([]Record, 0, len(rows)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, row := range rows {
		r, err := toRecord(row, false)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, *r)
	}
	return result, nil
}

// DeleteRecord removes a record and the attachments its form references.
func DeleteRecord(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var row models.WPQRecord
		err := tx.Where("record_id = ?", id).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get record: %w", err)
		}

		var form draft.FormDraft
		if err := json.Unmarshal(row.Payload.Bytes(), &form); err != nil {
			return fmt.Errorf("failed to decode record %s: %w", id, err)
		}
		if ids := AttachmentIDs(form); len(ids) > 0 {
			if err := tx.Where("attachment_id IN ?", ids).Delete(&models.Attachment{}).Error; err != nil {
				return fmt.Errorf("failed to delete attachments: %w", err)
			}
		}

		if err := tx.Delete(&row).Error; err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		return nil
	})
}

func toRecord(row models.WPQRecord, withForm bool) (*Record, error) {
	r := &Record{
		ID:               row.RecordID,
		CertificateNo:    row.CertificateNo,
		WelderName:       row.WelderName,
		IqamaPassport:    row.IqamaPassport,
		ClientContractor: row.ClientContractor,
		FormNo:           row.FormNo,
		CreatedBy:        row.CreatedBy,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if t := time.Time(row.DateWelded); !t.IsZero() {
		r.DateWelded = t.Format("2006-01-02")
	}
	if withForm && len(row.Payload.Bytes()) > 0 {
		if err := json.Unmarshal(row.Payload.Bytes(), &r.Form); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", row.RecordID, err)
		}
	}
	return r, nil
}
