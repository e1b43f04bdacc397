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

type QuizAttemptRepo interface {
	Create(dbc dbctx.Context, row *types.QuizAttempt) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizAttempt, error)
	// LockByID reads the attempt with a row lock (no-op on sqlite).
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizAttempt, error)
	ListOpenForUpdate(dbc dbctx.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error)
	ListByUserQuiz(dbc dbctx.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error)
	MaxAttemptNumber(dbc dbctx.Context, userID, quizID uuid.UUID) (int, error)
	// PassedQuizIDs returns the subset of quizIDs whose latest completed attempt
	// by userID passed. Open attempts are ignored.
	PassedQuizIDs(dbc dbctx.Context, userID uuid.UUID, quizIDs []uuid.UUID) ([]uuid.UUID, error)

	// Abandon force-closes open attempts with a zero score.
	Abandon(dbc dbctx.Context, ids []uuid.UUID, at time.Time) (int64, error)
	// Complete writes the final result only if the attempt is still open. It
	// returns false when the attempt had already been completed.
	Complete(dbc dbctx.Context, row *types.QuizAttempt) (bool, error)
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return &quizAttemptRepo{db: db, log: baseLog.With("repo", "QuizAttemptRepo")}
}

func (r *quizAttemptRepo) Create(dbc dbctx.Context, row *types.QuizAttempt) error {
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

func (r *quizAttemptRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizAttempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return r.getByID(dbc, t, id)
}

func (r *quizAttemptRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizAttempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return r.getByID(dbc, t.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *quizAttemptRepo) getByID(dbc dbctx.Context, t *gorm.DB, id uuid.UUID) (*types.QuizAttempt, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.QuizAttempt
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *quizAttemptRepo) ListOpenForUpdate(dbc dbctx.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuizAttempt
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND quiz_id = ? AND completed_at IS NULL", userID, quizID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizAttemptRepo) ListByUserQuiz(dbc dbctx.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuizAttempt
	if userID == uuid.Nil || quizID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempt_number DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizAttemptRepo) MaxAttemptNumber(dbc dbctx.Context, userID, quizID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var max int
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QuizAttempt{}).
		Select("COALESCE(MAX(attempt_number), 0)").
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *quizAttemptRepo) PassedQuizIDs(dbc dbctx.Context, userID uuid.UUID, quizIDs []uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if userID == uuid.Nil || len(quizIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		QuizID uuid.UUID
		Passed bool
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QuizAttempt{}).
		Select("quiz_id, passed").
		Where("user_id = ? AND quiz_id IN ? AND completed_at IS NOT NULL", userID, quizIDs).
		Order("quiz_id ASC, attempt_number DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		if seen[row.QuizID] {
			continue
		}
		seen[row.QuizID] = true
		if row.Passed {
			out = append(out, row.QuizID)
		}
	}
	return out, nil
}

func (r *quizAttemptRepo) Abandon(dbc dbctx.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.QuizAttempt{}).
		Where("id IN ? AND completed_at IS NULL", ids).
		Updates(map[string]interface{}{
			"score":           0,
			"correct_answers": 0,
			"passed":          false,
			"completed_at":    at,
			"updated_at":      at,
		})
	return res.RowsAffected, res.Error
}

func (r *quizAttemptRepo) Complete(dbc dbctx.Context, row *types.QuizAttempt) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == uuid.Nil || row.CompletedAt == nil {
		return false, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.QuizAttempt{}).
		Where("id = ? AND completed_at IS NULL", row.ID).
		Updates(map[string]interface{}{
			"score":           row.Score,
			"correct_answers": row.CorrectAnswers,
			"passed":          row.Passed,
			"completed_at":    *row.CompletedAt,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
