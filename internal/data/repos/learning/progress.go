package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

// ProgressRepo persists user_progress rows. Rows are addressed by
// (user_id, scope, scope_id) and are never deleted.
type ProgressRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID, scope types.ProgressScope, scopeID uuid.UUID) (*types.UserProgress, error)
	ListByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) ([]*types.UserProgress, error)
	ListCourseRecordsByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserProgress, error)

	// CreateIfMissing inserts row unless a row with the same key exists. It reports whether it inserted.
	CreateIfMissing(dbc dbctx.Context, row *types.UserProgress) (bool, error)
	// Upsert writes status/completed_at unconditionally for the row's key.
	Upsert(dbc dbctx.Context, row *types.UserProgress) error
	// Promote moves a row from one status to another, returning how many rows changed.
	Promote(dbc dbctx.Context, userID uuid.UUID, scope types.ProgressScope, scopeID uuid.UUID, from, to types.ProgressStatus) (int64, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

var progressKey = []clause.Column{{Name: "user_id"}, {Name: "scope"}, {Name: "scope_id"}}

func (r *progressRepo) Get(dbc dbctx.Context, userID uuid.UUID, scope types.ProgressScope, scopeID uuid.UUID) (*types.UserProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || scopeID == uuid.Nil {
		return nil, nil
	}
	var row types.UserProgress
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND scope = ? AND scope_id = ?", userID, scope, scopeID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *progressRepo) ListByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) ([]*types.UserProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.UserProgress
	if userID == uuid.Nil || courseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) ListCourseRecordsByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.UserProgress
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND scope = ?", userID, types.ScopeCourse).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) CreateIfMissing(dbc dbctx.Context, row *types.UserProgress) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil || row.ScopeID == uuid.Nil {
		return false, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: progressKey, DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *progressRepo) Upsert(dbc dbctx.Context, row *types.UserProgress) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil || row.ScopeID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   progressKey,
			DoUpdates: clause.AssignmentColumns([]string{"status", "completed_at", "updated_at"}),
		}).
		Create(row).Error
}

func (r *progressRepo) Promote(dbc dbctx.Context, userID uuid.UUID, scope types.ProgressScope, scopeID uuid.UUID, from, to types.ProgressStatus) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.UserProgress{}).
		Where("user_id = ? AND scope = ? AND scope_id = ? AND status = ?", userID, scope, scopeID, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
