package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

type timetablesResponse struct {
	Timetables []models.SemesterTimetable `json:"timetables"`
	Eval       json.RawMessage            `json:"eval,omitempty"`
}

// Timetables returns every generated semester timetable across algorithms.
func (c *Client) Timetables(ctx context.Context) ([]models.SemesterTimetable, json.RawMessage, error) {
	var resp timetablesResponse
	if err := c.get(ctx, "/timetable/timetables", nil, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Timetables, resp.Eval, nil
}

// AlgorithmTimetables returns the semester timetables generated by one algorithm.
func (c *Client) AlgorithmTimetables(ctx context.Context, algorithm string) ([]models.SemesterTimetable, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/timetable/algorithm-timetables/"+url.PathEscape(algorithm), nil, &raw); err != nil {
		return nil, err
	}
	return decodeTimetableList(raw)
}

// Published reports which algorithm is published.
func (c *Client) Published(ctx context.Context) (models.PublishedInfo, error) {
	var info models.PublishedInfo
	err := c.get(ctx, "/timetable/published", nil, &info)
	return info, err
}

// decodeTimetableList accepts a bare list or an object wrapping it under "timetables".
func decodeTimetableList(raw json.RawMessage) ([]models.SemesterTimetable, error) {
	var list []models.SemesterTimetable
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped timetablesResponse
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode timetables: %w", err)
	}
	return wrapped.Timetables, nil
}

// Days returns the day taxonomy.
func (c *Client) Days(ctx context.Context) ([]models.Day, error) {
	var days []models.Day
	err := c.get(ctx, "/info/days", nil, &days)
	return days, err
}

// Periods returns the period taxonomy.
func (c *Client) Periods(ctx context.Context) ([]models.Period, error) {
	var periods []models.Period
	err := c.get(ctx, "/info/periods", nil, &periods)
	return periods, err
}

// Subjects returns the subject reference table.
func (c *Client) Subjects(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	err := c.get(ctx, "/module/modules", nil, &subjects)
	return subjects, err
}

// Teachers returns the faculty reference table.
func (c *Client) Teachers(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := c.get(ctx, "/users/faculty", nil, &teachers)
	return teachers, err
}

// Spaces returns the room reference table.
func (c *Client) Spaces(ctx context.Context) ([]models.Space, error) {
	var spaces []models.Space
	err := c.get(ctx, "/space/spaces", nil, &spaces)
	return spaces, err
}

// Snapshot fetches timetables, taxonomies and reference tables for a scope concurrently.
// The published scope resolves the published algorithm first.
func (c *Client) Snapshot(ctx context.Context, scope string) (*models.TimetableSnapshot, error) {
	algorithm, err := models.ParseScope(scope)
	if err != nil {
		return nil, err
	}
	snapshot := &models.TimetableSnapshot{Scope: models.AlgorithmScope(algorithm)}
	if algorithm == "" {
		snapshot.Scope = models.ScopePublished
		info, err := c.Published(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve published timetable: %w", err)
		}
		if !info.Published || info.Algorithm == "" {
			return nil, models.ErrNothingPublished
		}
		algorithm = strings.ToUpper(info.Algorithm)
	}
	snapshot.Algorithm = algorithm

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		tts, err := c.AlgorithmTimetables(ctx, algorithm)
		if err != nil {
			return fmt.Errorf("fetch timetables: %w", err)
		}
		snapshot.Timetables = tts
		return nil
	})
	p.Go(func(ctx context.Context) error {
		days, err := c.Days(ctx)
		if err != nil {
			return fmt.Errorf("fetch days: %w", err)
		}
		snapshot.Days = days
		return nil
	})
	p.Go(func(ctx context.Context) error {
		periods, err := c.Periods(ctx)
		if err != nil {
			return fmt.Errorf("fetch periods: %w", err)
		}
		snapshot.Periods = periods
		return nil
	})
	p.Go(func(ctx context.Context) error {
		subjects, err := c.Subjects(ctx)
		if err != nil {
			return fmt.Errorf("fetch subjects: %w", err)
		}
		snapshot.References.Subjects = subjects
		return nil
	})
	p.Go(func(ctx context.Context) error {
		teachers, err := c.Teachers(ctx)
		if err != nil {
			return fmt.Errorf("fetch teachers: %w", err)
		}
		snapshot.References.Teachers = teachers
		return nil
	})
	p.Go(func(ctx context.Context) error {
		spaces, err := c.Spaces(ctx)
		if err != nil {
			return fmt.Errorf("fetch spaces: %w", err)
		}
		snapshot.References.Spaces = spaces
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ValidateStudent resolves the caller's student identity.
func (c *Client) ValidateStudent(ctx context.Context) (models.StudentValidation, error) {
	var out models.StudentValidation
	err := c.get(ctx, "/timetable/student-info-validate", nil, &out)
	return out, err
}

// ValidateFaculty resolves the caller's faculty identity.
func (c *Client) ValidateFaculty(ctx context.Context) (models.FacultyValidation, error) {
	var out models.FacultyValidation
	err := c.get(ctx, "/timetable/faculty-info-validate", nil, &out)
	return out, err
}

// EditActivity forwards an activity edit. Conflicts come back as *models.ConflictError.
func (c *Client) EditActivity(ctx context.Context, timetableID, sessionID string, update models.ActivityUpdate) (models.EditResult, error) {
	var out models.EditResult
	path := fmt.Sprintf("/timetable/timetable/%s/activity/%s", url.PathEscape(timetableID), url.PathEscape(sessionID))
	err := c.do(ctx, http.MethodPatch, path, nil, update, &out)
	return out, err
}

// AvailableSpaces lists rooms free at the given day and periods.
func (c *Client) AvailableSpaces(ctx context.Context, algorithm, day string, periods []string, excludeSessionID string) ([]models.Space, error) {
	query := url.Values{}
	query.Set("algorithm", algorithm)
	query.Set("day", day)
	query.Set("periods", strings.Join(periods, ","))
	if excludeSessionID != "" {
		query.Set("exclude_session_id", excludeSessionID)
	}
	var raw json.RawMessage
	if err := c.get(ctx, "/timetable/available-spaces", query, &raw); err != nil {
		return nil, err
	}
	var spaces []models.Space
	if err := json.Unmarshal(raw, &spaces); err == nil {
		return spaces, nil
	}
	var wrapped struct {
		Spaces []models.Space `json:"available_spaces"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode available spaces: %w", err)
	}
	return wrapped.Spaces, nil
}
