package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
	"github.com/thilinahansana/university-scheduler-console/pkg/jobs"
)

type stubCacheRepo struct {
	mu          sync.Mutex
	store       map[string][]byte
	gets        int
	sets        int
	invalidated []string
}

func newStubCacheRepo() *stubCacheRepo {
	return &stubCacheRepo{store: make(map[string][]byte)}
}

func (s *stubCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.store[key] = raw
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.store {
		if strings.HasPrefix(key, prefix) {
			delete(s.store, key)
		}
	}
	return nil
}

type stubSource struct {
	mu       sync.Mutex
	snapshot *models.TimetableSnapshot
	err      error
	calls    int
	scopes   []string
}

func (s *stubSource) Snapshot(ctx context.Context, scope string) (*models.TimetableSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.scopes = append(s.scopes, scope)
	if s.err != nil {
		return nil, s.err
	}
	snap := *s.snapshot
	snap.Scope = scope
	return &snap, nil
}

type stubQueue struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *stubQueue) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func fixtureSnapshot() *models.TimetableSnapshot {
	return &models.TimetableSnapshot{
		Scope:     models.ScopePublished,
		Algorithm: "GA",
		Days: []models.Day{
			{Name: "TUE", LongName: "Tuesday"},
			{Name: "MON", LongName: "Monday"},
		},
		Periods: []models.Period{
			{Name: "P2", LongName: "09:30 - 10:30"},
			{Name: "P1", LongName: "08:30 - 09:30"},
		},
		References: models.ReferenceTables{
			Subjects: []models.Subject{{Code: "IT1010", Name: "Intro", LongName: "Introduction to Programming"}, {Code: "IT1020", Name: "Maths"}},
			Teachers: []models.Teacher{{ID: "FA0001", FirstName: "Ada", LastName: "Perera"}, {ID: "FA0002", FirstName: "Nimal", LastName: "Silva"}},
			Spaces:   []models.Space{{Name: "A401", LongName: "Lab A401", Capacity: 60}, {Name: "B201", LongName: "Hall B201", Capacity: 120}},
		},
		Timetables: []models.SemesterTimetable{
			{
				ID:        "tt-1",
				Semester:  "Y1S1",
				Algorithm: "GA",
				Assignments: []models.Assignment{
					{
						SessionID: "s-1", ActivityID: "AC-1", Subject: "IT1010",
						Teacher: models.TeacherRef{ID: "FA0001"}, Room: models.Room{Name: "A401", Bare: true},
						Day: models.Day{Name: "MON"}, Periods: []models.Period{{Name: "P1"}}, Duration: 1,
						Subgroups: models.Subgroups{"Y1S1.SE.1"}, ActivityType: "Lab",
					},
					{
						SessionID: "s-2", ActivityID: "AC-2", Subject: "IT1020",
						Teacher: models.TeacherRef{ID: "FA0002"}, Room: models.Room{Name: "B201", Bare: true},
						Day: models.Day{Name: "TUE"}, Periods: []models.Period{{Name: "P2"}}, Duration: 1,
						Subgroups: models.Subgroups{"Y1S1"}, ActivityType: "Lecture",
					},
					{
						SessionID: "s-3", ActivityID: "AC-3", Subject: "IT1010",
						Teacher: models.TeacherRef{ID: "FA0001"}, Room: models.Room{Name: "A401", Bare: true},
						Day: models.Day{Name: "TUE"}, Periods: []models.Period{{Name: "P1"}}, Duration: 1,
						Subgroups: models.Subgroups{"Y1S1.SE.2"}, ActivityType: "Lab",
					},
				},
			},
		},
	}
}
