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

type UserAnswerRepo interface {
	// Upsert keeps one answer per (attempt_id, question_id); later writes overwrite earlier ones.
	Upsert(dbc dbctx.Context, row *types.UserAnswer) error
	ListByAttemptID(dbc dbctx.Context, attemptID uuid.UUID) ([]*types.UserAnswer, error)
}

type userAnswerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAnswerRepo(db *gorm.DB, baseLog *logger.Logger) UserAnswerRepo {
	return &userAnswerRepo{db: db, log: baseLog.With("repo", "UserAnswerRepo")}
}

func (r *userAnswerRepo) Upsert(dbc dbctx.Context, row *types.UserAnswer) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.AttemptID == uuid.Nil || row.QuestionID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"selected_option_id",
				"answer_text",
				"is_correct",
				"points_earned",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *userAnswerRepo) ListByAttemptID(dbc dbctx.Context, attemptID uuid.UUID) ([]*types.UserAnswer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.UserAnswer
	if attemptID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
