/* SPDX-License-Identifier: GPL-3.0-or-later
 *
 * caspar-core
 * Copyright (C) 2026 caspar-core contributors
 *
 * This file is part of caspar-core.
 *
 * caspar-core is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * caspar-core is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with caspar-core.  If not, see <https://www.gnu.org/licenses/>.
 */
package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetPlainValue(t *testing.T) {
	b := NewValue(3)
	assert.Equal(t, 3, b.Get())

	require.NoError(t, b.Set(4))
	assert.Equal(t, 4, b.Get())
}

func TestSetOnBoundBindingFails(t *testing.T) {
	a := NewValue(1)
	b := New[int]()
	require.NoError(t, b.Bind(a))

	err := b.Set(5)
	assert.Error(t, err)
	assert.Equal(t, 1, b.Get())
}

func TestTransformedTracksSource(t *testing.T) {
	a := NewValue(2)
	doubled := Transformed(a, func(v int) int { return v * 2 })
	assert.Equal(t, 4, doubled.Get())

	require.NoError(t, a.Set(5))
	assert.Equal(t, 10, doubled.Get())
}

func TestComposedTracksBothSources(t *testing.T) {
	a := NewValue(2)
	b := NewValue(3)
	sum := Composed(a, b, func(x, y int) int { return x + y })
	assert.Equal(t, 5, sum.Get())

	require.NoError(t, b.Set(10))
	assert.Equal(t, 12, sum.Get())
}

// TestBindingCycleRejectedLeavesFirstBindingIntact is the §8 universal
// invariant: a.bind(b); b.bind(a) rejects at the second bind and the first
// binding remains intact.
func TestBindingCycleRejectedLeavesFirstBindingIntact(t *testing.T) {
	a := New[int]()
	b := New[int]()

	require.NoError(t, a.Set(1))
	require.NoError(t, b.Set(2))

	require.NoError(t, a.Bind(b))
	assert.Equal(t, 2, a.Get())

	err := b.Bind(a)
	assert.Error(t, err, "binding b to a would create a cycle")

	assert.True(t, a.Bound())
	assert.Equal(t, 2, a.Get(), "a's original binding to b must remain intact")
}

func TestUnbindRevertsToPlainSettableValue(t *testing.T) {
	a := NewValue(7)
	b := New[int]()
	require.NoError(t, b.Bind(a))
	assert.Equal(t, 7, b.Get())

	b.Unbind()
	assert.False(t, b.Bound())

	require.NoError(t, b.Set(99))
	assert.Equal(t, 99, b.Get())

	require.NoError(t, a.Set(1000))
	assert.Equal(t, 99, b.Get(), "unbound binding must no longer track its former source")
}

func TestOnChangeFiresOnValueChangeOnly(t *testing.T) {
	a := NewValue(1)
	calls := 0
	sub := a.OnChange(func() { calls++ })

	require.NoError(t, a.Set(1)) // no-op, same value
	assert.Equal(t, 0, calls)

	require.NoError(t, a.Set(2))
	assert.Equal(t, 1, calls)

	sub.Unsubscribe()
	require.NoError(t, a.Set(3))
	assert.Equal(t, 1, calls, "unsubscribed listener must not fire again")
}

func TestWhenThenOtherwise(t *testing.T) {
	cond := NewValue(true)
	yes := NewValue("yes")
	no := NewValue("no")

	result := Then(When(cond), yes).Otherwise(no)
	assert.Equal(t, "yes", result.Get())

	require.NoError(t, cond.Set(false))
	assert.Equal(t, "no", result.Get())
}

func TestDelaySwitchesAtCounterBoundary(t *testing.T) {
	counter := NewValue(0)
	toDelay := NewValue("early")
	afterDelay := NewValue("late")

	d := Delay(toDelay, afterDelay, counter, 3)
	assert.Equal(t, "early", d.Get())

	require.NoError(t, counter.Set(3))
	assert.Equal(t, "late", d.Get())
}

func TestAnimatedTweensTowardsNewTarget(t *testing.T) {
	target := NewValue(0.0)
	frameCounter := NewValue(0.0)
	duration := NewValue(10.0)

	linear := func(time, source, delta, dur float64) float64 {
		return source + delta*(time/dur)
	}

	a := Animated(target, frameCounter, duration, linear)
	require.NoError(t, target.Set(100.0))

	last := a.Get()
	reachedMidway := false
	for frameN := 1; frameN <= 20; frameN++ {
		require.NoError(t, frameCounter.Set(float64(frameN)))
		v := a.Get()
		assert.GreaterOrEqual(t, v, last, "animated value must move monotonically towards its destination")
		if v > 0 && v < 100 {
			reachedMidway = true
		}
		last = v
	}

	assert.True(t, reachedMidway, "must pass through an intermediate value on the way to the destination")
	assert.InDelta(t, 100.0, last, 1e-9, "must settle on the destination once duration has elapsed")
}
