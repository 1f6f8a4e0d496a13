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
package framerate

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e1z0/caspar-core/internal/frame"
)

// TestFramerateDownrateDropsAlternateSourceFrames is concrete scenario 4
// from SPEC_FULL.md §8: source 50fps progressive, destination 25fps
// progressive, user_speed=1, interpolation=drop_and_skip: output frame k
// equals source frame 2k (0-indexed).
func TestFramerateDownrateDropsAlternateSourceFrames(t *testing.T) {
	src := newSequenceProducer(10, 0)
	a := NewAdapter(src, big.NewRat(50, 1), big.NewRat(25, 1), frame.FieldModeProgressive, []int{1920})

	assert.Same(t, src.frames[0].Leaf(), a.ReceiveImpl().Leaf())
	assert.Same(t, src.frames[2].Leaf(), a.ReceiveImpl().Leaf())
	assert.Same(t, src.frames[4].Leaf(), a.ReceiveImpl().Leaf())
}

// TestSameFramerateIsIdentity covers the speed==1 family: no rate family
// realignment, drop_and_skip stays selected, and every source frame is
// passed through in order.
func TestSameFramerateIsIdentity(t *testing.T) {
	src := newSequenceProducer(5, 0)
	a := NewAdapter(src, big.NewRat(25, 1), big.NewRat(25, 1), frame.FieldModeProgressive, []int{1920})

	assert.Same(t, src.frames[0].Leaf(), a.ReceiveImpl().Leaf())
	assert.Same(t, src.frames[1].Leaf(), a.ReceiveImpl().Leaf())
	assert.Same(t, src.frames[2].Leaf(), a.ReceiveImpl().Leaf())
}

// TestInterlacedCoarseAlignmentDoublesDestination covers the constructor's
// interlaced rate-family branch: destination 25 interlaced against a 50fps
// source is closer to 50 than to 25, so the destination rate doubles to 50
// and the resulting speed collapses back to exactly 1 (drop_and_skip).
func TestInterlacedCoarseAlignmentDoublesDestination(t *testing.T) {
	src := newSequenceProducer(4, 0)
	a := NewAdapter(src, big.NewRat(50, 1), big.NewRat(25, 1), frame.FieldModeUpper, []int{1920})

	assert.Equal(t, big.NewRat(50, 1), a.destinationFramerate)
	assert.Equal(t, big.NewRat(1, 1), a.speed)
}

// TestProgressiveCoarseAlignmentHalvesAndRepeats covers the progressive
// rate-family branch: destination 50 against a 25fps source is closer to a
// halved 25 than to a kept 50, so the destination rate halves and
// output-repeat activates.
func TestProgressiveCoarseAlignmentHalvesAndRepeats(t *testing.T) {
	src := newSequenceProducer(4, 0)
	a := NewAdapter(src, big.NewRat(25, 1), big.NewRat(50, 1), frame.FieldModeProgressive, []int{1920})

	assert.Equal(t, big.NewRat(25, 1), a.destinationFramerate)
	assert.Equal(t, uint(2), a.outputRepeat)
}

// TestNonMultipleFramerateSelectsBlendInterpolator covers the interpolator
// selection branch: a non-exact-multiple ratio at a low framerate selects
// plain blend rather than blend_all or drop_and_skip.
func TestNonMultipleFramerateSelectsBlendInterpolator(t *testing.T) {
	src := newSequenceProducer(4, 0)
	a := NewAdapter(src, big.NewRat(25, 1), big.NewRat(30, 1), frame.FieldModeProgressive, []int{1920})

	assert.Nil(t, a.blendAll)

	out := a.ReceiveImpl()
	require.NotNil(t, out)
}

// TestHighFramerateNonMultipleSelectsBlendAll covers the blend_all branch:
// both source and destination framerates exceed 47.
func TestHighFramerateNonMultipleSelectsBlendAll(t *testing.T) {
	src := newSequenceProducer(6, 0)
	a := NewAdapter(src, big.NewRat(60, 1), big.NewRat(50, 1), frame.FieldModeProgressive, []int{1920})

	assert.NotNil(t, a.blendAll)
}

// TestCallFramerateSpeedReplacesUserSpeedTween exercises the FRAMERATE
// SPEED sub-command end to end.
func TestCallFramerateSpeedReplacesUserSpeedTween(t *testing.T) {
	src := newSequenceProducer(4, 0)
	a := NewAdapter(src, big.NewRat(25, 1), big.NewRat(25, 1), frame.FieldModeProgressive, []int{1920})

	ch, err := a.Call([]string{"FRAMERATE", "SPEED", "0.5", "0"})
	require.NoError(t, err)
	result := <-ch
	require.NoError(t, result.Err)

	assert.Equal(t, big.NewRat(1, 2), a.userSpeed.Fetch())
}

// TestCallFramerateInterpolationSwitchesMode exercises the FRAMERATE
// INTERPOLATION sub-command.
func TestCallFramerateInterpolationSwitchesMode(t *testing.T) {
	src := newSequenceProducer(4, 0)
	a := NewAdapter(src, big.NewRat(25, 1), big.NewRat(25, 1), frame.FieldModeProgressive, []int{1920})

	_, err := a.Call([]string{"FRAMERATE", "INTERPOLATION", "BLEND_ALL"})
	require.NoError(t, err)
	assert.NotNil(t, a.blendAll)
}

// TestCallUnrecognizedCommandForwardsToSource ensures non-FRAMERATE calls
// reach the wrapped producer unchanged.
func TestCallUnrecognizedCommandForwardsToSource(t *testing.T) {
	src := newSequenceProducer(4, 0)
	a := NewAdapter(src, big.NewRat(25, 1), big.NewRat(25, 1), frame.FieldModeProgressive, []int{1920})

	ch, err := a.Call([]string{"OTHER", "COMMAND"})
	require.NoError(t, err)
	<-ch
}

// TestOutputRepeatHoldsOnAlternateFrames covers the progressive
// coarse-alignment output-repeat branch: the second of every pair of
// output frames is a held still of the adapter's current previous frame
// rather than a fresh source pull.
func TestOutputRepeatHoldsOnAlternateFrames(t *testing.T) {
	src := newSequenceProducer(6, 0)
	a := NewAdapter(src, big.NewRat(25, 1), big.NewRat(50, 1), frame.FieldModeProgressive, []int{1920})
	require.Equal(t, uint(2), a.outputRepeat)

	first := a.ReceiveImpl()
	second := a.ReceiveImpl()
	third := a.ReceiveImpl()

	assert.True(t, second.Transform().Image.IsStill)
	assert.False(t, first.Transform().Image.IsStill)
	assert.False(t, third.Transform().Image.IsStill)
}

// TestAudioCadenceAttachesSamplesWhenEnough is concrete scenario 6's
// building block: once enough samples have accumulated for the front
// cadence slot, attach_sound dequeues exactly that many and the cadence
// rotates.
func TestAudioCadenceAttachesSamplesWhenEnough(t *testing.T) {
	src := newSequenceProducer(4, 1920)
	a := NewAdapter(src, big.NewRat(25, 1), big.NewRat(25, 1), frame.FieldModeProgressive, []int{1602, 1602, 1601, 1602, 1601})

	out := a.ReceiveImpl()

	var fv frame.FlattenVisitor
	frame.Accept(out, &fv)

	found := false
	for _, leaf := range fv.Leaves {
		if len(leaf.Leaf.AudioSamples) > 0 {
			found = true
		}
	}
	assert.True(t, found, "expected an audio-bearing leaf in the output frame")
}
