package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db        *gorm.DB
	exam      repositories.ExamRepository
	question  repositories.QuestionRepository
	attempt   repositories.AttemptRepository
	blueprint repositories.BlueprintRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:        db,
		exam:      NewExamPostgreSQL(db),
		question:  NewQuestionPostgreSQL(db),
		attempt:   NewAttemptPostgreSQL(db),
		blueprint: NewBlueprintPostgreSQL(db),
	}
}

func (r *Repository) Exam() repositories.ExamRepository           { return r.exam }
func (r *Repository) Question() repositories.QuestionRepository   { return r.question }
func (r *Repository) Attempt() repositories.AttemptRepository     { return r.attempt }
func (r *Repository) Blueprint() repositories.BlueprintRepository { return r.blueprint }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
