package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalEmitOrder(t *testing.T) {
	var sig Signal[int]
	var got []int

	sig.Subscribe(func(v int) { got = append(got, v*10) })
	sig.Subscribe(func(v int) { got = append(got, v*100) })

	sig.Emit(3)
	assert.Equal(t, []int{30, 300}, got)
}

func TestSubscriptionCancel(t *testing.T) {
	var sig Signal[string]
	calls := 0

	sub := sig.Subscribe(func(string) { calls++ })
	sig.Emit("a")
	sub.Cancel()
	sig.Emit("b")

	assert.Equal(t, 1, calls)

	// Cancel is idempotent and nil-safe
	sub.Cancel()
	var nilSub *Subscription
	nilSub.Cancel()
}

func TestSubscriptionsReleaseDetachesAll(t *testing.T) {
	var a, b Signal[int]
	var bundle Subscriptions
	calls := 0

	On(&a, &bundle, func(int) { calls++ })
	On(&b, &bundle, func(int) { calls++ })

	a.Emit(1)
	b.Emit(1)
	assert.Equal(t, 2, calls)

	bundle.Release()
	a.Emit(2)
	b.Emit(2)
	assert.Equal(t, 2, calls, "no listener may fire after Release")
}

func TestReentrantCancelDuringEmit(t *testing.T) {
	var sig Signal[int]
	calls := 0

	var sub *Subscription
	sub = sig.Subscribe(func(int) {
		calls++
		sub.Cancel()
	})

	sig.Emit(1)
	sig.Emit(2)
	assert.Equal(t, 1, calls)
}
