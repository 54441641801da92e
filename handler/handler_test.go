package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type msgEvent struct {
	Channel int64
	Content string
}

type otherEvent struct{}

func TestCountBound(t *testing.T) {
	r := New()
	w := Add(r, Options{Count: 3, Within: time.Minute, Collect: true}, func(e msgEvent) bool {
		return e.Channel == 1
	})

	go func() {
		for i := 0; i < 5; i++ {
			r.Call(msgEvent{Channel: 1, Content: "match"})
			r.Call(msgEvent{Channel: 2, Content: "filtered out"})
			r.Call(otherEvent{})
		}
	}()

	start := time.Now()
	res := w.Wait(context.Background())

	// returns as soon as the third match arrives, not at the deadline
	require.Len(t, res, 3)
	assert.Less(t, time.Since(start), 10*time.Second)
	for _, e := range res {
		assert.Equal(t, int64(1), e.Channel)
	}
}

func TestDeadlineBound(t *testing.T) {
	r := New()
	w := Add[msgEvent](r, Options{Within: 100 * time.Millisecond, Collect: true}, nil)

	r.Call(msgEvent{Content: "one"})
	r.Call(msgEvent{Content: "two"})

	start := time.Now()
	res := w.Wait(context.Background())

	// partial results, returned once the deadline passes
	assert.Len(t, res, 2)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDeadlineNoResults(t *testing.T) {
	r := New()
	w := Add[msgEvent](r, Options{Within: 50 * time.Millisecond, Collect: true}, nil)

	res := w.Wait(context.Background())
	assert.Empty(t, res)
}

func TestNonCollecting(t *testing.T) {
	r := New()
	w := Add[msgEvent](r, Options{Count: 1}, nil)

	start := time.Now()
	res := w.Wait(context.Background())

	assert.Nil(t, res)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitFor(t *testing.T) {
	r := New()

	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Call(msgEvent{Channel: 5, Content: "hi"})
	}()

	ev, ok := WaitFor(context.Background(), r, func(e msgEvent) bool {
		return e.Channel == 5
	})
	require.True(t, ok)
	assert.Equal(t, "hi", ev.Content)
}

func TestWaitForCancelled(t *testing.T) {
	r := New()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, ok := WaitFor(ctx, r, func(msgEvent) bool { return false })
	assert.False(t, ok)
	assert.Equal(t, 0, r.Length())
}

func TestCollect(t *testing.T) {
	r := New()

	go func() {
		for i := 0; i < 2; i++ {
			r.Call(msgEvent{Channel: 1})
		}
	}()

	res := Collect(context.Background(), r, 5, 100*time.Millisecond, func(e msgEvent) bool {
		return e.Channel == 1
	})
	assert.Len(t, res, 2)
}

func TestRetiredWaiterDropped(t *testing.T) {
	r := New()
	w := Add[msgEvent](r, Options{Count: 1, Collect: true}, nil)

	r.Call(msgEvent{})
	assert.True(t, w.Expired())
	assert.Equal(t, 0, r.Length())

	// already delivered; further offers change nothing
	r.Call(msgEvent{})
	res := w.Wait(context.Background())
	assert.Len(t, res, 1)
}

func TestPrune(t *testing.T) {
	r := New()
	Add[msgEvent](r, Options{Count: 1, Within: 10 * time.Millisecond, Collect: true}, nil)
	Add[msgEvent](r, Options{Count: 1, Collect: true}, nil)

	time.Sleep(20 * time.Millisecond)
	r.Prune()

	assert.Equal(t, 1, r.Length())
}

func TestIndependentWaiters(t *testing.T) {
	r := New()
	w1 := Add[msgEvent](r, Options{Count: 1, Collect: true}, nil)
	w2 := Add[msgEvent](r, Options{Count: 2, Within: 100 * time.Millisecond, Collect: true}, nil)

	r.Call(msgEvent{Content: "shared"})

	res1 := w1.Wait(context.Background())
	require.Len(t, res1, 1)

	// w2 saw the same event but isn't done yet
	res2 := w2.Wait(context.Background())
	assert.Len(t, res2, 1)
}
