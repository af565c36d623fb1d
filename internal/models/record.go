package models

import (
	"time"

	"gorm.io/datatypes"
)

// WPQRecord is a submitted welder performance qualification record. The
// searchable header fields are copied out of the payload.
type WPQRecord struct {
	RecordID         string         `gorm:"type:char(36);primaryKey"`
	CertificateNo    string         `gorm:"size:100;not null;uniqueIndex"`
	WelderName       string         `gorm:"size:255;not null;index:idx_wpq_records_welder_name"`
	IqamaPassport    string         `gorm:"size:64;index"`
	ClientContractor string         `gorm:"size:255"`
	FormNo           string         `gorm:"size:100"`
	DateWelded       datatypes.Date `gorm:"index"`
	CreatedBy        string         `gorm:"size:64;not null;index"`
	Payload          JSON
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Attachment is an uploaded photo or signature that belongs to a record.
type Attachment struct {
	AttachmentID string `gorm:"type:char(36);primaryKey"`
	OwnerID      string `gorm:"size:64;not null;index"`
	FileName     string `gorm:"size:255"`
	ContentType  string `gorm:"size:100;not null"`
	Size         int64
	Content      []byte `gorm:"not null"`
	CreatedAt    time.Time
}

// TableName overrides the table name for WPQRecord
func (WPQRecord) TableName() string {
	return "wpq_records"
}

// TableName overrides the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
