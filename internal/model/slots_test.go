package model

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSlots_QueueBeyondLimitIsRejected(t *testing.T) {
	slots := NewSlots(1, 1)

	release, err := slots.Acquire(context.Background())
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		r, err := slots.Acquire(context.Background())
		if err == nil {
			acquired <- r
		}
	}()
	require.Eventually(t, func() bool { return slots.Waiting() == 1 }, time.Second, time.Millisecond)

	_, err = slots.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrQueueFull)

	release()
	release() // idempotent

	select {
	case r := <-acquired:
		r()
	case <-time.After(time.Second):
		t.Fatal("queued caller never acquired a slot")
	}
	assert.Equal(t, 0, slots.Waiting())
}

func TestSlots_WaitHonoursContext(t *testing.T) {
	slots := NewSlots(1, 4)
	release, err := slots.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = slots.Acquire(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, slots.Waiting())
}

func TestSlots_ReplicasRunConcurrently(t *testing.T) {
	slots := NewSlots(2, 0)

	r1, err := slots.Acquire(context.Background())
	require.NoError(t, err)
	r2, err := slots.Acquire(context.Background())
	require.NoError(t, err)

	_, err = slots.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrQueueFull)

	r1()
	r2()
}

func TestNewSlots_PanicsWithoutReplicas(t *testing.T) {
	assert.Panics(t, func() { NewSlots(0, 1) })
}

func TestCheckDistribution(t *testing.T) {
	tests := []struct {
		name    string
		dist    []float64
		vocab   int
		wantErr bool
	}{
		{"valid", []float64{0.25, 0.75}, 2, false},
		{"wrong length", []float64{1}, 2, true},
		{"nan", []float64{math.NaN(), 1}, 2, true},
		{"negative", []float64{-0.5, 1.5}, 2, true},
		{"zero mass", []float64{0, 0}, 2, true},
		{"unnormalised", []float64{0.5, 0.2}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDistribution(tt.dist, tt.vocab)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrMalformedDistribution)
			var ierr *InferenceError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, ErrorCodeMalformed, ierr.Code)
		})
	}
}

func TestUnavailable_WrapsSentinel(t *testing.T) {
	cause := assert.AnError
	err := Unavailable("artifact missing", cause)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, err, cause)

	assert.ErrorIs(t, Unavailable("no model", nil), ErrModelUnavailable)
}
