package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"shiftdesk/internal/repository"
)

// CalendarService serves a member's posted shifts as an iCalendar feed so
// they can overlay the marketplace state on their own calendar.
type CalendarService interface {
	// MyShifts serializes every shift posted by userID as VEVENTs.
	MyShifts(ctx context.Context, userID string) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService creates a CalendarService.
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger}
}

func (s *calendarService) MyShifts(ctx context.Context, userID string) (string, error) {
	shifts, err := s.repo.Shift.ListByPoster(ctx, userID)
	if err != nil {
		s.logger.Error("list shifts for calendar failed", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	for i := range shifts {
		shift := &shifts[i]

		start, err := shift.StartsAt(time.Local)
		if err != nil {
			// Unparseable wall-clock fields; skip the row rather than
			// break the whole feed.
			s.logger.Warn("skipping shift with bad date fields in calendar",
				zap.String("shift_id", shift.ShiftID),
				zap.Error(err),
			)
			continue
		}
		end, err := time.ParseInLocation("2006-01-02 15:04", shift.Date+" "+shift.EndTime, time.Local)
		if err != nil {
			end = start.Add(time.Hour)
		}
		if !end.After(start) {
			// Overnight shift: end time is on the next day.
			end = end.Add(24 * time.Hour)
		}

		event := cal.AddEvent("shift-" + shift.ShiftID + "@shiftdesk")
		event.SetCreatedTime(shift.CreatedAt)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("%s shift (%s) - %s", shift.Type, shift.Area, shift.Status))
		event.SetLocation(string(shift.Area))
	}

	return cal.Serialize(), nil
}
