package timetracker

import (
	"context"
	"math"
	"sort"
	"time"

	"timetracker/internal/storage/models"
)

// ReferenceDay is the working day progress is measured against
const ReferenceDay = 8 * time.Hour

// recentEntries is how many closed entries the summary shows
const recentEntries = 5

// ProjectTotal aggregates closed entries of one project. A nil ProjectID
// is the bucket of entries without a project.
type ProjectTotal struct {
	ProjectID   *string `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Minutes     int     `json:"minutes"`
	Hours       float64 `json:"hours"`
	Entries     int     `json:"entries"`
}

// Summary is the dashboard view of the workspace
type Summary struct {
	HoursToday      float64            `json:"hours_today"`
	HoursThisWeek   float64            `json:"hours_this_week"`
	Running         *models.TimeEntry  `json:"running"`
	ElapsedMinutes  int                `json:"elapsed_minutes"`
	ProgressPercent int                `json:"progress_percent"`
	Recent          []models.TimeEntry `json:"recent"`
	Projects        []ProjectTotal     `json:"projects"`
}

// Tracker is everything the tracker screen needs in one read
type Tracker struct {
	Running         *models.TimeEntry  `json:"running"`
	ElapsedMinutes  int                `json:"elapsed_minutes"`
	ProgressPercent int                `json:"progress_percent"`
	Past            []models.TimeEntry `json:"past"`
	Projects        []models.Project   `json:"projects"`
	Tasks           []models.Task      `json:"tasks"`
	Clients         []models.Client    `json:"clients"`
}

// ProgressPercent returns elapsed time as a whole percentage of the
// reference day, capped at 100.
func ProgressPercent(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	hours := elapsed.Hours()
	return min(100, int(hours/ReferenceDay.Hours()*100))
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

// dayStart returns local midnight of the day containing t
func (s *Service) dayStart(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

// Today returns local midnight of the current day in the workspace zone
func (s *Service) Today() time.Time {
	return s.dayStart(s.now())
}

// weekStart returns local midnight of the first day of t's week
func (s *Service) weekStart(t time.Time) time.Time {
	day := s.dayStart(t)
	offset := int(day.Weekday())
	if s.ws.WeekStart != "sunday" {
		offset = (offset + 6) % 7
	}
	return day.AddDate(0, 0, -offset)
}

func (s *Service) closedBetween(ctx context.Context, from, to time.Time) ([]models.TimeEntry, error) {
	from, to = from.UTC(), to.UTC()
	return s.list(ctx, models.EntryFilter{State: models.StateClosed, From: &from, To: &to})
}

// HoursBetween sums closed entries that start within [from, to)
func (s *Service) HoursBetween(ctx context.Context, from, to time.Time) (float64, error) {
	entries, err := s.closedBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	var total time.Duration
	for i := range entries {
		total += entries[i].Duration()
	}
	return roundHours(total), nil
}

// HoursToday sums closed entries started today in the workspace zone
func (s *Service) HoursToday(ctx context.Context) (float64, error) {
	from := s.dayStart(s.now())
	return s.HoursBetween(ctx, from, from.AddDate(0, 0, 1))
}

// HoursThisWeek sums closed entries started this week in the workspace zone
func (s *Service) HoursThisWeek(ctx context.Context) (float64, error) {
	from := s.weekStart(s.now())
	return s.HoursBetween(ctx, from, from.AddDate(0, 0, 7))
}

// ProjectTotals groups closed entries started within [from, to) by
// project, largest first.
func (s *Service) ProjectTotals(ctx context.Context, from, to time.Time) ([]ProjectTotal, error) {
	if to.Before(from) {
		return nil, validationf("date range end is before its start")
	}
	entries, err := s.closedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	durations := map[string]time.Duration{}
	totals := map[string]*ProjectTotal{}
	for i := range entries {
		e := &entries[i]
		key := ""
		if e.ProjectID != nil {
			key = *e.ProjectID
		}
		t, ok := totals[key]
		if !ok {
			t = &ProjectTotal{ProjectID: e.ProjectID, ProjectName: e.ProjectName}
			if e.ProjectID == nil {
				t.ProjectName = "No project"
			}
			totals[key] = t
		}
		t.Entries++
		durations[key] += e.Duration()
	}

	out := make([]ProjectTotal, 0, len(totals))
	for key, t := range totals {
		t.Minutes = int(durations[key] / time.Minute)
		t.Hours = roundHours(durations[key])
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].ProjectName < out[j].ProjectName
	})
	return out, nil
}

// runningProgress returns the running entry with its elapsed minutes and
// progress percent
func (s *Service) runningProgress(ctx context.Context) (*models.TimeEntry, int, int, error) {
	running, err := s.Running(ctx)
	if err != nil || running == nil {
		return nil, 0, 0, err
	}
	elapsed := s.now().Sub(running.StartTime)
	if elapsed < 0 {
		elapsed = 0
	}
	return running, int(elapsed / time.Minute), ProgressPercent(elapsed), nil
}

// Summary builds the dashboard figures for the current day and week
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var (
		sum Summary
		err error
	)
	if sum.HoursToday, err = s.HoursToday(ctx); err != nil {
		return nil, err
	}
	if sum.HoursThisWeek, err = s.HoursThisWeek(ctx); err != nil {
		return nil, err
	}
	if sum.Running, sum.ElapsedMinutes, sum.ProgressPercent, err = s.runningProgress(ctx); err != nil {
		return nil, err
	}
	if sum.Recent, err = s.list(ctx, models.EntryFilter{State: models.StateClosed, Limit: recentEntries}); err != nil {
		return nil, err
	}
	from := s.weekStart(s.now())
	if sum.Projects, err = s.ProjectTotals(ctx, from, from.AddDate(0, 0, 7)); err != nil {
		return nil, err
	}
	return &sum, nil
}

// Tracker returns the running timer, past entries and the selectable
// directory records
func (s *Service) Tracker(ctx context.Context) (*Tracker, error) {
	var (
		tr  Tracker
		err error
	)
	if tr.Running, tr.ElapsedMinutes, tr.ProgressPercent, err = s.runningProgress(ctx); err != nil {
		return nil, err
	}
	if tr.Past, err = s.ListPast(ctx); err != nil {
		return nil, err
	}
	if tr.Projects, err = s.ListActiveProjects(ctx); err != nil {
		return nil, err
	}
	if tr.Tasks, err = s.ListActiveTasks(ctx, ""); err != nil {
		return nil, err
	}
	if tr.Clients, err = s.ListClients(ctx); err != nil {
		return nil, err
	}
	return &tr, nil
}
