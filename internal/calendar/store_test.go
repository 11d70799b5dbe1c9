package calendar

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DefaultPath(t.TempDir()))
	require.NoError(t, err)
	s.now = func() time.Time { return base }
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/ws", ".nyx", "calendar.db"), DefaultPath("/ws"))
}

func TestAdd(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ev, err := s.Add(ctx, Event{Title: "  dentist ", When: base.Add(26 * time.Hour)})

	require.NoError(t, err)
	_, err = uuid.Parse(ev.ID)
	assert.NoError(t, err)
	assert.Equal(t, "dentist", ev.Title)
	assert.True(t, ev.When.Equal(base.Add(26*time.Hour)))
	assert.True(t, ev.Created.Equal(base))
}

func TestAdd_Invalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, Event{Title: " ", When: base})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = s.Add(ctx, Event{Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestUpcoming(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	later, err := s.Add(ctx, Event{Title: "later", When: base.Add(48 * time.Hour)})
	require.NoError(t, err)
	sooner, err := s.Add(ctx, Event{Title: "sooner", When: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = s.Add(ctx, Event{Title: "past", When: base.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = s.Add(ctx, Event{Title: "far", When: base.AddDate(0, 0, 30)})
	require.NoError(t, err)

	got, err := s.Upcoming(ctx, base, 7)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sooner.ID, got[0].ID)
	assert.Equal(t, later.ID, got[1].ID)
	assert.Equal(t, "later", got[1].Title)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ev, err := s.Add(ctx, Event{Title: "x", When: base.Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, ev.ID))
	assert.ErrorIs(t, s.Delete(ctx, ev.ID), ErrEventNotFound)

	got, err := s.Upcoming(ctx, base, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_Reopen(t *testing.T) {
	path := DefaultPath(t.TempDir())
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Add(ctx, Event{Title: "kept", When: base})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Upcoming(ctx, base, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].Title)
}
