package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gigworks/billing-service/internal/config"
	"github.com/gigworks/billing-service/internal/model"
)

type ReportStore interface {
	BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionEarnings, error)
	TopClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientSpending, error)
}

type ExcelGenerator interface {
	Generate(report model.EarningsReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report model.EarningsReport) ([]byte, error)
}

type ReportService struct {
	store        ReportStore
	excel        ExcelGenerator
	pdf          PDFGenerator
	defaultLimit int
}

type ReportPeriod struct {
	Start time.Time
	End   time.Time
}

type ReportFile struct {
	FileName string
	Content  []byte
}

func NewReportService(store ReportStore, excel ExcelGenerator, pdf PDFGenerator, cfg *config.Config) *ReportService {
	return &ReportService{
		store:        store,
		excel:        excel,
		pdf:          pdf,
		defaultLimit: cfg.Report.DefaultClientLimit,
	}
}

// BestProfession returns the profession that earned the most over the
// period, summed over paid jobs.
func (s *ReportService) BestProfession(ctx context.Context, period ReportPeriod) (*model.ProfessionEarnings, error) {
	start, end, err := normalizePeriod(period)
	if err != nil {
		return nil, err
	}

	best, err := s.store.BestProfession(ctx, start, end)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: no paid jobs in period", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return best, nil
}

// BestClients returns the clients that paid the most over the period,
// highest spender first.
func (s *ReportService) BestClients(ctx context.Context, period ReportPeriod, limit int) ([]model.ClientSpending, error) {
	start, end, err := normalizePeriod(period)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	return s.store.TopClients(ctx, start, end, limit)
}

// ExportExcel renders the combined earnings report as a workbook.
func (s *ReportService) ExportExcel(ctx context.Context, period ReportPeriod, limit int) (*ReportFile, error) {
	report, err := s.buildReport(ctx, period, limit)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*report)
	if err != nil {
		return nil, err
	}
	return &ReportFile{FileName: buildFileName(*report, "xlsx"), Content: content}, nil
}

// ExportPDF renders the combined earnings report as a PDF document.
func (s *ReportService) ExportPDF(ctx context.Context, period ReportPeriod, limit int) (*ReportFile, error) {
	report, err := s.buildReport(ctx, period, limit)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*report)
	if err != nil {
		return nil, err
	}
	return &ReportFile{FileName: buildFileName(*report, "pdf"), Content: content}, nil
}

func (s *ReportService) buildReport(ctx context.Context, period ReportPeriod, limit int) (*model.EarningsReport, error) {
	start, end, err := normalizePeriod(period)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	best, err := s.store.BestProfession(ctx, start, end)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	clients, err := s.store.TopClients(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}

	return &model.EarningsReport{
		PeriodStart:    period.Start,
		PeriodEnd:      period.End,
		BestProfession: best,
		Clients:        clients,
	}, nil
}

// normalizePeriod widens the period to whole days and returns the
// half-open range [start, end+1d) used by the aggregate queries.
func normalizePeriod(period ReportPeriod) (time.Time, time.Time, error) {
	if period.Start.IsZero() || period.End.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: period dates are required", ErrInvalidPeriod)
	}
	start := dateOnly(period.Start)
	end := dateOnly(period.End)
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start must not be after end", ErrInvalidPeriod)
	}
	return start, end.Add(24 * time.Hour), nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buildFileName(report model.EarningsReport, ext string) string {
	return fmt.Sprintf("earnings-%s-%s.%s",
		dateOnly(report.PeriodStart).Format("20060102"),
		dateOnly(report.PeriodEnd).Format("20060102"),
		ext)
}
