package mocks

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Cyclone1070/nyx/internal/calendar"
)

// MockCalendar keeps events in memory and assigns sequential ids.
type MockCalendar struct {
	mu     sync.Mutex
	events []calendar.Event
	Err    error
}

func (m *MockCalendar) Add(ctx context.Context, ev calendar.Event) (calendar.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return calendar.Event{}, m.Err
	}
	ev.ID = fmt.Sprintf("evt-%d", len(m.events)+1)
	m.events = append(m.events, ev)
	return ev, nil
}

func (m *MockCalendar) Events() []calendar.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}
