package db

import (
	"fmt"

	types "github.com/yungbote/lms-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureLearningIndexes(db)
}

// EnsureLearningIndexes creates the indexes gorm tags cannot express. The
// statements are valid on both postgres and sqlite.
func EnsureLearningIndexes(db *gorm.DB) error {
	// at most one open attempt per (user, quiz)
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_quiz_attempt_open
		ON quiz_attempt(user_id, quiz_id)
		WHERE completed_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_quiz_attempt_open: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_question_quiz_order ON question(quiz_id, order_sequence);`).Error; err != nil {
		return fmt.Errorf("create idx_question_quiz_order: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_question_option_order ON question_option(question_id, order_sequence);`).Error; err != nil {
		return fmt.Errorf("create idx_question_option_order: %w", err)
	}
	return nil
}
