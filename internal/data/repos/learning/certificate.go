package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

// CertificateRepo is insert-only. Uniqueness on (user_id, course_id) and on
// certificate_code is enforced by the schema; Create surfaces violations as errors.
type CertificateRepo interface {
	Create(dbc dbctx.Context, row *types.Certificate) error
	GetByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.Certificate, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Certificate, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Certificate, error)
}

type certificateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	return &certificateRepo{db: db, log: baseLog.With("repo", "CertificateRepo")}
}

func (r *certificateRepo) Create(dbc dbctx.Context, row *types.Certificate) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *certificateRepo) GetByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.Certificate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}
	var row types.Certificate
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *certificateRepo) GetByCode(dbc dbctx.Context, code string) (*types.Certificate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if code == "" {
		return nil, nil
	}
	var row types.Certificate
	if err := t.WithContext(dbc.Ctx).
		Where("certificate_code = ?", code).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *certificateRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Certificate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Certificate
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
