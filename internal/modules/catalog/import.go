package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	dataagg "github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

// ErrDuplicateSlug is the cause carried by the validation error for an already imported course.
var ErrDuplicateSlug = errors.New("duplicate course slug")

func IsDuplicateSlug(err error) bool { return errors.Is(err, ErrDuplicateSlug) }

type ImporterDeps struct {
	Log       *logger.Logger
	Write     dataagg.BaseDeps
	Courses   repos.CourseRepo
	Modules   repos.ModuleRepo
	Lessons   repos.LessonRepo
	Quizzes   repos.QuizRepo
	Questions repos.QuestionRepo
}

type Importer struct {
	deps ImporterDeps
}

func NewImporter(deps ImporterDeps) *Importer {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("service", "CatalogImporter")
	return &Importer{deps: deps}
}

type ImportResult struct {
	CourseID  uuid.UUID
	Slug      string
	Modules   int
	Lessons   int
	Quizzes   int
	Questions int
}

// Import writes one validated course tree. A slug that already exists is
// rejected; nothing is written unless the whole tree is.
func (im *Importer) Import(ctx context.Context, def CourseDef) (ImportResult, error) {
	const op = "catalog.import"
	def.Slug = strings.ToLower(strings.TrimSpace(def.Slug))
	if err := Validate(def); err != nil {
		return ImportResult{}, err
	}
	courseMeta, err := toJSON(def.Metadata)
	if err != nil {
		return ImportResult{}, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}

	res := ImportResult{Slug: def.Slug}
	err = dataagg.ExecuteWrite(ctx, im.deps.Write, op, func(dbc dbctx.Context) error {
		existing, err := im.deps.Courses.GetBySlug(dbc, def.Slug)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("course %q already exists", def.Slug), ErrDuplicateSlug)
		}

		course := &types.Course{
			ID:          uuid.New(),
			Slug:        def.Slug,
			Title:       strings.TrimSpace(def.Title),
			Description: def.Description,
			Active:      boolOr(def.Active, true),
			Metadata:    courseMeta,
		}
		if _, err := im.deps.Courses.Create(dbc, []*types.Course{course}); err != nil {
			return err
		}
		res.CourseID = course.ID

		for _, md := range def.Modules {
			m := &types.Module{
				ID:            uuid.New(),
				CourseID:      course.ID,
				Title:         strings.TrimSpace(md.Title),
				Description:   md.Description,
				OrderSequence: md.Order,
				PassThreshold: md.PassThreshold,
				Active:        boolOr(md.Active, true),
			}
			if _, err := im.deps.Modules.Create(dbc, []*types.Module{m}); err != nil {
				return err
			}
			res.Modules++

			lessons := make([]*types.Lesson, 0, len(md.Lessons))
			for _, ld := range md.Lessons {
				meta, err := toJSON(ld.Metadata)
				if err != nil {
					return domainagg.Wrap(domainagg.CodeValidation, op, err)
				}
				lessons = append(lessons, &types.Lesson{
					ID:                uuid.New(),
					ModuleID:          m.ID,
					Title:             strings.TrimSpace(ld.Title),
					Content:           ld.Content,
					OrderSequence:     ld.Order,
					EstimatedDuration: ld.EstimatedDuration,
					Metadata:          meta,
				})
			}
			if len(lessons) > 0 {
				if _, err := im.deps.Lessons.Create(dbc, lessons); err != nil {
					return err
				}
			}
			res.Lessons += len(lessons)

			for _, qd := range md.Quizzes {
				quiz := &types.Quiz{
					ID:            uuid.New(),
					ModuleID:      m.ID,
					Title:         strings.TrimSpace(qd.Title),
					QuizType:      types.QuizType(qd.Type),
					PassThreshold: qd.PassThreshold,
					Active:        boolOr(qd.Active, true),
				}
				if _, err := im.deps.Quizzes.Create(dbc, []*types.Quiz{quiz}); err != nil {
					return err
				}
				res.Quizzes++

				questions := make([]*types.Question, 0, len(qd.Questions))
				for _, qq := range qd.Questions {
					questions = append(questions, buildQuestion(quiz.ID, qq))
				}
				if _, err := im.deps.Questions.Create(dbc, questions); err != nil {
					return err
				}
				res.Questions += len(questions)
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	im.deps.Log.Info("course imported",
		"slug", res.Slug,
		"course_id", res.CourseID,
		"modules", res.Modules,
		"lessons", res.Lessons,
		"quizzes", res.Quizzes,
		"questions", res.Questions,
	)
	return res, nil
}

func buildQuestion(quizID uuid.UUID, qd QuestionDef) *types.Question {
	q := &types.Question{
		ID:            uuid.New(),
		QuizID:        quizID,
		QuestionText:  strings.TrimSpace(qd.Text),
		QuestionType:  types.QuestionType(qd.Type),
		Points:        qd.Points,
		OrderSequence: qd.Order,
	}
	for i, od := range qd.Options {
		q.Options = append(q.Options, &types.QuestionOption{
			ID:            uuid.New(),
			QuestionID:    q.ID,
			OptionText:    strings.TrimSpace(od.Text),
			IsCorrect:     od.Correct,
			OrderSequence: i + 1,
		})
	}
	return q
}

func toJSON(m map[string]interface{}) (datatypes.JSON, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return datatypes.JSON(raw), nil
}
