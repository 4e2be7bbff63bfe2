package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"github.com/SAP-F-2025/examprep-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Results"

var resultsHeader = []interface{}{
	"Attempt ID", "User ID", "Score", "Total Marks", "Percentage",
	"Correct", "Incorrect", "Unattempted", "Time Taken (s)", "Submitted At",
}

type exportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ExportService {
	return &exportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *exportService) ExportAttempts(ctx context.Context, ref models.ExamRef, window models.DateRange, w io.Writer) error {
	if !ref.Kind.Valid() {
		return ErrInvalidExamKind
	}
	if errs := s.validator.Rules(&window); len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errs)
	}

	exam, err := s.repo.Exam().GetByRef(ctx, nil, ref)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to get exam: %w", err)
	}

	kind := ref.Kind
	attempts, _, err := s.repo.Attempt().List(ctx, nil, repositories.AttemptFilters{
		ExamKind:  &kind,
		ExamID:    &ref.ID,
		DateFrom:  window.From,
		DateTo:    window.To,
		SortBy:    "created_at",
		SortOrder: "asc",
	})
	if err != nil {
		return fmt.Errorf("failed to get exam attempts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return err
	}

	for i, a := range attempts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			a.ID, a.UserID, a.Score, a.TotalMarks, a.Percentage,
			a.Correct, a.Incorrect, a.Unattempted, a.TimeTakenSeconds, a.CreatedAt,
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported exam attempts",
		"exam", ref.String(),
		"title", exam.Title,
		"rows", len(attempts))
	return nil
}
