package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/export"
)

type waitlistReader interface {
	WaitlistPosition(ctx context.Context, key models.SectionKey, studentID int64) (int, error)
	ListWaitlist(ctx context.Context, key models.SectionKey) ([]models.WaitlistEntry, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// WaitlistExport is a rendered waitlist roster.
type WaitlistExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// WaitlistService answers where students stand on a section's waitlist.
type WaitlistService struct {
	repo   waitlistReader
	csv    datasetRenderer
	pdf    datasetRenderer
	logger *zap.Logger
}

// NewWaitlistService constructs WaitlistService.
func NewWaitlistService(repo waitlistReader, csv, pdf datasetRenderer, logger *zap.Logger) *WaitlistService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitlistService{repo: repo, csv: csv, pdf: pdf, logger: logger}
}

// Position returns the student's 1-based rank, earliest enrollment date first.
func (s *WaitlistService) Position(ctx context.Context, key models.SectionKey, studentID int64) (int, error) {
	if err := validateSectionKey(key); err != nil {
		return 0, err
	}
	if studentID <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "student id must be positive")
	}
	position, err := s.repo.WaitlistPosition(ctx, key, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %d is not waitlisted for %s", studentID, key))
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve waitlist position")
	}
	return position, nil
}

// List returns the section's waitlist in position order.
func (s *WaitlistService) List(ctx context.Context, key models.SectionKey) ([]models.WaitlistEntry, error) {
	if err := validateSectionKey(key); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListWaitlist(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list waitlist")
	}
	if entries == nil {
		entries = []models.WaitlistEntry{}
	}
	return entries, nil
}

// Export renders the section waitlist in the requested format.
func (s *WaitlistService) Export(ctx context.Context, key models.SectionKey, format export.Format) (*WaitlistExport, error) {
	entries, err := s.List(ctx, key)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Waitlist %s", key),
		Headers: []string{"position", "student_id", "student_name", "enrollment_date"},
		Rows:    make([][]string, 0, len(entries)),
	}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, []string{
			strconv.Itoa(entry.Position),
			strconv.FormatInt(entry.StudentID, 10),
			entry.StudentName,
			entry.EnrollmentDate.UTC().Format(time.RFC3339),
		})
	}

	var body []byte
	switch format {
	case export.FormatPDF:
		body, err = s.pdf.Render(dataset)
	case export.FormatCSV:
		body, err = s.csv.Render(dataset)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("waitlist export failed", zap.Stringer("section", key), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render waitlist")
	}
	return &WaitlistExport{
		Filename:    fmt.Sprintf("waitlist-%s.%s", key, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}
