package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"playlistwatch/lib/blobstore"
)

// Schedule is a user's daily run configuration, stored at
// schedule/{userId}.json.
type Schedule struct {
	// "HH:MM", 24h
	Time    string `json:"time"`
	Enabled bool   `json:"enabled"`
}

var scheduleTimeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

const defaultScheduleTime = "09:00"

// ValidScheduleTime reports whether text is a well-formed HH:MM.
func ValidScheduleTime(text string) bool {
	return scheduleTimeRegex.MatchString(text)
}

func (s *Service) GetSchedule(ctx context.Context, userId string) (Schedule, error) {
	obj, err := s.store.Get(ctx, scheduleKey(userId))
	if err == blobstore.ErrNotFound {
		return Schedule{Time: defaultScheduleTime}, nil
	}
	if err != nil {
		return Schedule{}, err
	}

	schedule := Schedule{Time: defaultScheduleTime}
	err = json.Unmarshal(obj.Data, &schedule)
	if err != nil {
		return Schedule{}, fmt.Errorf("schedule for %q is corrupt: %w", userId, err)
	}
	return schedule, nil
}

// SetSchedule enables a daily run at the given HH:MM.
func (s *Service) SetSchedule(ctx context.Context, userId, timeStr string) (string, error) {
	if !ValidScheduleTime(timeStr) {
		return "Uso: /set_schedule HH:MM (ej. 09:30)", nil
	}

	err := s.putSchedule(ctx, userId, Schedule{Time: timeStr, Enabled: true})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Scraping diario programado a las %s.", timeStr), nil
}

// DisableSchedule turns the daily run off, keeping the configured time.
func (s *Service) DisableSchedule(ctx context.Context, userId string) (string, error) {
	schedule, err := s.GetSchedule(ctx, userId)
	if err != nil {
		return "", err
	}
	schedule.Enabled = false

	err = s.putSchedule(ctx, userId, schedule)
	if err != nil {
		return "", err
	}
	return "Scraping diario desactivado.", nil
}

func (s *Service) putSchedule(ctx context.Context, userId string, schedule Schedule) error {
	data, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return err
	}
	return s.store.Put(ctx, scheduleKey(userId), data, "")
}

// scheduledUsers lists every user with a stored schedule.
func (s *Service) scheduledUsers(ctx context.Context) ([]string, error) {
	names, err := s.store.List(ctx, "schedule")
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(names))
	for _, name := range names {
		if len(name) > len(".json") && name[len(name)-len(".json"):] == ".json" {
			users = append(users, name[:len(name)-len(".json")])
		}
	}
	return users, nil
}

// RunScheduler ticks once a minute and triggers a run for every user whose
// enabled schedule matches the current minute. Runs stay sequential: one
// user at a time, same as everything else touching the scraped site.
func (s *Service) RunScheduler(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runDueSchedules(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) runDueSchedules(ctx context.Context) {
	now := s.opts.Now().Format("15:04")

	users, err := s.scheduledUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list schedules", "err", err)
		return
	}

	for _, userId := range users {
		schedule, err := s.GetSchedule(ctx, userId)
		if err != nil {
			slog.ErrorContext(ctx, "failed to read schedule", "user", userId, "err", err)
			continue
		}
		if !schedule.Enabled || schedule.Time != now {
			continue
		}

		slog.InfoContext(ctx, "scheduled run due", "user", userId, "time", schedule.Time)
		err = s.Run(ctx, userId)
		if err != nil {
			slog.ErrorContext(ctx, "scheduled run failed", "user", userId, "err", err)
		}
	}
}
