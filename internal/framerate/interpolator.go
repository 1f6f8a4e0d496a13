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

import "github.com/e1z0/caspar-core/internal/frame"

// Interpolator produces an output frame from a source/destination pair and
// the fractional distance between them, ground-matched on
// framerate_producer.cpp's std::function<draw_frame(...)> interpolator_
// field.
type Interpolator func(source, destination *frame.DrawFrame, distance float64) *frame.DrawFrame

// DropAndSkip returns source unchanged: the default interpolator for exact
// framerate multiples, ground-matched on drop_and_skip.
func DropAndSkip(source, destination *frame.DrawFrame, distance float64) *frame.DrawFrame {
	return source
}

// Blend composites source under destination with opacity (1-distance) /
// distance: sharp at distance 0, blurriest halfway, ground-matched on
// blend (framerate_producer.cpp:52-67).
func Blend(source, destination *frame.DrawFrame, distance float64) *frame.DrawFrame {
	if destination == frame.Empty() {
		return source
	}

	under := source.Clone()
	underTransform := under.Transform()
	underTransform.Image.IsMix = true
	underTransform.Image.Opacity = 1 - distance
	under.SetTransform(underTransform)

	over := destination.Clone()
	overTransform := over.Transform()
	overTransform.Image.IsMix = true
	overTransform.Image.Opacity = distance
	over.SetTransform(overTransform)

	return frame.Over(under, over)
}

// BlendAll blends a moving three-frame window (previous, current, next)
// rather than just two, giving even bluriness instead of sharp/blurry
// alternation. Stateful across calls, so each channel needs its own
// instance — ground-matched on struct blend_all
// (framerate_producer.cpp:74-113).
type BlendAll struct {
	previousFrame  *frame.DrawFrame
	lastSource     *frame.DrawFrame
	lastDestination *frame.DrawFrame
}

// NewBlendAll constructs a fresh blend_all interpolator with empty history.
func NewBlendAll() *BlendAll {
	return &BlendAll{
		previousFrame:  frame.Empty(),
		lastSource:     frame.Empty(),
		lastDestination: frame.Empty(),
	}
}

// Interpolate is this instance's Interpolator-shaped entry point.
func (b *BlendAll) Interpolate(source, destination *frame.DrawFrame, distance float64) *frame.DrawFrame {
	if b.lastSource != frame.Empty() && b.lastSource != source {
		if b.lastDestination == source {
			b.previousFrame = b.lastSource
		} else {
			// a two-frame jump: there is no usable single prior frame.
			b.previousFrame = b.lastDestination
		}
	}

	b.lastSource = source
	b.lastDestination = destination

	if b.previousFrame == frame.Empty() {
		return Blend(source, destination, distance)
	}

	previous := b.previousFrame.Clone()
	middle := b.lastSource.Clone()
	next := destination.Clone()

	previousTransform := previous.Transform()
	previousTransform.Image.IsMix = true
	previousTransform.Image.Opacity = max64(0.0, 0.5-distance*0.5)
	previous.SetTransform(previousTransform)

	middleTransform := middle.Transform()
	middleTransform.Image.IsMix = true
	middleTransform.Image.Opacity = 0.5
	middle.SetTransform(middleTransform)

	nextTransform := next.Transform()
	nextTransform.Image.IsMix = true
	nextTransform.Image.Opacity = 1.0 - previousTransform.Image.Opacity - middleTransform.Image.Opacity
	next.SetTransform(nextTransform)

	return frame.Composite([]*frame.DrawFrame{previous, middle, next})
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
