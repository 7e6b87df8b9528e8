package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_TimestampOrdering(t *testing.T) {
	q := NewEventQueue()
	q.Push(NewShiftPlanEvent(t0.Add(100 * time.Second)))
	q.Push(NewShiftPlanEvent(t0.Add(50 * time.Second)))
	q.Push(NewShiftPlanEvent(t0.Add(150 * time.Second)))

	var got []time.Duration
	for !q.IsEmpty() {
		ev, _ := q.Pop()
		got = append(got, ev.Timestamp().Sub(t0))
	}
	assert.Equal(t, []time.Duration{50 * time.Second, 100 * time.Second, 150 * time.Second}, got)
}

func TestEventQueue_EqualTimestamps_PopInPushOrder(t *testing.T) {
	q := NewEventQueue()
	var pushed []Event
	for i := 0; i < 50; i++ {
		ev := NewShiftPlanEvent(t0)
		pushed = append(pushed, ev)
		q.Push(ev)
	}
	for i := 0; i < 50; i++ {
		ev, seq := q.Pop()
		require.Same(t, pushed[i], ev, "pop %d out of push order", i)
		assert.Equal(t, int64(i), seq)
	}
}

func TestEventQueue_RandomTimestamps_NonDecreasingWithFIFOTies(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := NewEventQueue()
	for i := 0; i < 500; i++ {
		q.Push(NewShiftPlanEvent(t0.Add(time.Duration(rng.Intn(20)) * time.Minute)))
	}
	require.Equal(t, 500, q.Len())

	prev, prevSeq := q.Pop()
	for !q.IsEmpty() {
		ev, seq := q.Pop()
		if ev.Timestamp().Equal(prev.Timestamp()) {
			assert.Greater(t, seq, prevSeq, "equal timestamps must pop in push order")
		} else {
			assert.True(t, ev.Timestamp().After(prev.Timestamp()), "timestamps must not decrease")
		}
		prev, prevSeq = ev, seq
	}
}

func TestEventQueue_SequenceKeepsGrowingAcrossPops(t *testing.T) {
	q := NewEventQueue()
	assert.Equal(t, int64(0), q.Push(NewShiftPlanEvent(t0)))
	q.Pop()
	assert.Equal(t, int64(1), q.Push(NewShiftPlanEvent(t0)))
}

func TestEventQueue_PopEmpty(t *testing.T) {
	q := NewEventQueue()
	ev, seq := q.Pop()
	assert.Nil(t, ev)
	assert.Equal(t, int64(-1), seq)
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())
}
