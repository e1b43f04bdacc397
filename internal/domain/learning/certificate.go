package learning

import (
	"time"

	"github.com/google/uuid"
)

// Certificate rows are written once by the issuer and never updated.
type Certificate struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificate_user_course,priority:1" json:"user_id"`
	CourseID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificate_user_course,priority:2" json:"course_id"`
	CertificateCode string    `gorm:"column:certificate_code;not null;uniqueIndex" json:"certificate_code"`
	VerificationURL string    `gorm:"column:verification_url;not null" json:"verification_url"`
	IssuedAt        time.Time `gorm:"column:issued_at;not null" json:"issued_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Certificate) TableName() string { return "certificate" }
