package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var errRemote = errors.New("remote down")

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New(2, 1, 10*time.Second, WithClock(clock.now))

	assert.ErrorIs(t, b.Do(func() error { return errRemote }), errRemote)
	assert.Equal(t, Closed, b.State())
	assert.ErrorIs(t, b.Do(func() error { return errRemote }), errRemote)
	assert.Equal(t, Open, b.State())

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b := New(2, 1, time.Second)
	_ = b.Do(func() error { return errRemote })
	require.NoError(t, b.Do(func() error { return nil }))
	_ = b.Do(func() error { return errRemote })
	assert.Equal(t, Closed, b.State())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []string
	b := New(1, 2, 10*time.Second, WithClock(clock.now), WithStateChange(func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}))

	_ = b.Do(func() error { return errRemote })
	require.Equal(t, Open, b.State())

	clock.advance(11 * time.Second)
	assert.Equal(t, HalfOpen, b.State())

	require.NoError(t, b.Do(func() error { return nil }))
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, []string{"Closed->Open", "Open->Half-Open", "Half-Open->Closed"}, transitions)
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New(1, 1, time.Second, WithClock(clock.now))
	_ = b.Do(func() error { return errRemote })
	clock.advance(2 * time.Second)

	assert.ErrorIs(t, b.Do(func() error { return errRemote }), errRemote)
	assert.Equal(t, Open, b.State())
}
