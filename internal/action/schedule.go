package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/nyx/internal/calendar"
)

const scheduleLayout = "2006-01-02 15:04"

type ScheduleResponse struct {
	Event calendar.Event
}

func (r *ScheduleResponse) Summary() string {
	return fmt.Sprintf("Scheduled event: %s at %s", r.Event.Title, r.Event.When.Local().Format(scheduleLayout))
}

// ScheduleTool adds events to the calendar store.
type ScheduleTool struct {
	calendar eventAdder
}

func NewScheduleTool(cal eventAdder) *ScheduleTool {
	if cal == nil {
		panic("calendar is required")
	}
	return &ScheduleTool{calendar: cal}
}

// Authorize has no policy to apply; events live in the assistant's own
// state directory.
func (t *ScheduleTool) Authorize(req ScheduleRequest) (*Schedule, error) {
	return &Schedule{title: strings.TrimSpace(req.Title), when: req.When}, nil
}

func (t *ScheduleTool) Run(ctx context.Context, op *Schedule) (*ScheduleResponse, error) {
	ev, err := t.calendar.Add(ctx, calendar.Event{Title: op.title, When: op.when})
	if err != nil {
		return nil, err
	}
	return &ScheduleResponse{Event: ev}, nil
}
