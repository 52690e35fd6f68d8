package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/projection"
	"github.com/thilinahansana/university-scheduler-console/pkg/export"
	"github.com/thilinahansana/university-scheduler-console/pkg/storage"
)

type gridProjector interface {
	AdminGrids(ctx context.Context, scope string) (*dto.AdminGridsResponse, bool, error)
	PersonalView(ctx context.Context, scope string, viewer models.Viewer) (projection.PersonalView, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type calendarRenderer interface {
	Render(data export.Calendar) ([]byte, error)
}

// Export column headers.
var exportHeaders = []string{"Semester", "Day", "Period", "Time", "Subject", "Subject Name", "Room", "Teacher", "Type", "Subgroups"}

const defaultCalendarWeeks = 12

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Location  *time.Location
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       export.Format
	ExpiresAt    time.Time
}

// ExportService projects grids into tabular or calendar files and stores them behind a
// signed download token.
type ExportService struct {
	grids   gridProjector
	storage fileStorage
	csv     tableRenderer
	pdf     tableRenderer
	xlsx    tableRenderer
	ics     calendarRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// ExportRenderers overrides the default renderers, mostly for tests.
type ExportRenderers struct {
	CSV  tableRenderer
	PDF  tableRenderer
	XLSX tableRenderer
	ICS  calendarRenderer
}

// NewExportService constructs an ExportService.
func NewExportService(grids gridProjector, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, renderers ExportRenderers) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if renderers.CSV == nil {
		renderers.CSV = export.NewCSVExporter()
	}
	if renderers.PDF == nil {
		renderers.PDF = export.NewPDFExporter()
	}
	if renderers.XLSX == nil {
		renderers.XLSX = export.NewXLSXExporter()
	}
	if renderers.ICS == nil {
		renderers.ICS = export.NewICSExporter()
	}
	return &ExportService{
		grids:   grids,
		storage: files,
		csv:     renderers.CSV,
		pdf:     renderers.PDF,
		xlsx:    renderers.XLSX,
		ics:     renderers.ICS,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Generate renders the job's grids and stores the export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	format := export.Format(job.Format)
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported format %s", job.Format)
	}
	rows, periods, title, err := s.collect(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch format {
	case export.FormatICS:
		payload, err = s.ics.Render(s.buildCalendar(job, rows, periods, title))
	default:
		dataset := buildDataset(rows, periods, title)
		switch format {
		case export.FormatCSV:
			payload, err = s.csv.Render(dataset)
		case export.FormatPDF:
			payload, err = s.pdf.Render(dataset)
		case export.FormatXLSX:
			payload, err = s.xlsx.Render(dataset)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.Grant, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl, falling back to the configured ResultTTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

type exportRow struct {
	semester string
	day      models.Day
	entry    models.CellEntry
}

// collect flattens the projected grids into one row per session and day. Multi-period
// activities occupy several cells but export once.
func (s *ExportService) collect(ctx context.Context, job *models.ExportJob) ([]exportRow, map[string]models.Period, string, error) {
	periods := make(map[string]models.Period)
	var rows []exportRow
	seen := make(map[string]struct{})
	add := func(semester string, grid models.Grid) {
		for _, p := range grid.Periods {
			periods[p.Name] = p
		}
		for dayIdx, day := range grid.Days {
			for _, row := range grid.Rows {
				if dayIdx >= len(row.Cells) {
					continue
				}
				for _, entry := range row.Cells[dayIdx].Entries {
					key := entry.SessionID + "|" + day.Name
					if _, ok := seen[key]; ok {
						continue
					}
					seen[key] = struct{}{}
					rows = append(rows, exportRow{semester: firstNonEmpty(entry.Assignment.Semester, semester), day: day, entry: entry})
				}
			}
		}
	}

	switch job.Mode {
	case models.ExportModePersonal:
		viewer := job.Viewer()
		if viewer == nil {
			return nil, nil, "", fmt.Errorf("personal export %s has no viewer", job.ID)
		}
		view, err := s.grids.PersonalView(ctx, job.Scope, viewer)
		if err != nil {
			return nil, nil, "", err
		}
		add("", view.Grid)
		return rows, periods, personalTitle(viewer), nil
	default:
		resp, _, err := s.grids.AdminGrids(ctx, job.Scope)
		if err != nil {
			return nil, nil, "", err
		}
		title := fmt.Sprintf("Timetable %s", firstNonEmpty(resp.Algorithm, resp.Scope))
		for _, view := range resp.Grids {
			if job.TimetableID != "" && view.TimetableID != job.TimetableID {
				continue
			}
			if job.TimetableID != "" {
				title = fmt.Sprintf("Timetable %s %s", view.Semester, view.Algorithm)
			}
			add(view.Semester, view.Grid)
		}
		return rows, periods, title, nil
	}
}

func personalTitle(viewer models.Viewer) string {
	switch v := viewer.(type) {
	case models.StudentViewer:
		return fmt.Sprintf("Timetable %s", v.YearGroup)
	case models.FacultyViewer:
		return fmt.Sprintf("Teaching timetable %s", v.ID)
	default:
		return "Timetable"
	}
}

func buildDataset(rows []exportRow, periods map[string]models.Period, title string) export.Dataset {
	data := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		e := r.entry
		data = append(data, map[string]string{
			"Semester":     r.semester,
			"Day":          r.day.Label(),
			"Period":       strings.Join(e.PeriodNames, ", "),
			"Time":         timeLabel(e.PeriodNames, periods),
			"Subject":      e.SubjectCode,
			"Subject Name": e.SubjectName,
			"Room":         e.RoomName,
			"Teacher":      e.TeacherName,
			"Type":         e.ActivityType,
			"Subgroups":    e.Assignment.Subgroups.String(),
		})
	}
	return export.Dataset{Title: title, Headers: exportHeaders, Rows: data}
}

// entrySpan returns the wall-clock span covered by the named periods.
func entrySpan(names []string, periods map[string]models.Period) (start, end time.Duration, ok bool) {
	for i, name := range names {
		s, e, parsed := projection.PeriodTimeRange(periods[name])
		if !parsed {
			return 0, 0, false
		}
		if i == 0 || s < start {
			start = s
		}
		if e > end {
			end = e
		}
	}
	return start, end, len(names) > 0
}

func timeLabel(names []string, periods map[string]models.Period) string {
	start, end, ok := entrySpan(names, periods)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s - %s", clockLabel(start), clockLabel(end))
}

func clockLabel(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func (s *ExportService) buildCalendar(job *models.ExportJob, rows []exportRow, periods map[string]models.Period, title string) export.Calendar {
	anchor := s.weekAnchor(job.StartsOn)
	weeks := job.Weeks
	if weeks <= 0 {
		weeks = defaultCalendarWeeks
	}
	cal := export.Calendar{Name: title}
	for _, r := range rows {
		rank := projection.DayRank(r.day)
		if rank > 7 {
			s.logger.Debug("calendar export skips unranked day", zap.String("day", r.day.Name))
			continue
		}
		start, end, ok := entrySpan(r.entry.PeriodNames, periods)
		if !ok {
			continue
		}
		date := anchor.AddDate(0, 0, rank-1)
		e := r.entry
		cal.Events = append(cal.Events, export.CalendarEvent{
			UID:         fmt.Sprintf("%s-%s@%s", e.SessionID, r.day.Name, job.ID),
			Summary:     strings.TrimSpace(fmt.Sprintf("%s %s", e.SubjectCode, e.ActivityType)),
			Location:    e.RoomName,
			Description: strings.TrimSpace(fmt.Sprintf("%s\n%s", e.SubjectName, e.TeacherName)),
			Start:       date.Add(start),
			End:         date.Add(end),
			Weeks:       weeks,
		})
	}
	return cal
}

// weekAnchor returns midnight of the Monday starting the calendar: the week of startsOn, or
// the next Monday from now.
func (s *ExportService) weekAnchor(startsOn *time.Time) time.Time {
	loc := s.cfg.Location
	var base time.Time
	if startsOn != nil {
		base = startsOn.In(loc)
	} else {
		base = s.now().In(loc)
	}
	day := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, loc)
	offset := (int(day.Weekday()) + 6) % 7
	if startsOn != nil {
		return day.AddDate(0, 0, -offset)
	}
	if offset == 0 {
		return day
	}
	return day.AddDate(0, 0, 7-offset)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	subject := string(job.Mode)
	if job.TimetableID != "" {
		subject = job.TimetableID
	}
	return fmt.Sprintf("timetable_%s_%s_%s.%s", sanitizeFilename(job.Scope), sanitizeFilename(subject), timestamp, job.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
