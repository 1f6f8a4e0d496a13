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

// Package core defines the narrow capability interfaces every producer and
// consumer in the pipeline is consumed through, echoing the role
// original_source's caspar::core namespace plays as the seam between the
// engine and its many producer/consumer implementations. Ground-matched on
// spec.md §6 and on original_source/core/frame_producer.h /
// core/consumer/frame_consumer.h's public member signatures.
package core

import (
	"github.com/e1z0/caspar-core/internal/binding"
	"github.com/e1z0/caspar-core/internal/frame"
)

// PixelConstraints is the reactive (width, height) pair every producer
// exposes, ground-matched on core::constraints (frame_producer.h). Bindings
// rather than plain ints so a scene layer can bind its own size to its
// child producer's, the same way scene_producer.cpp's layer constructor
// binds clipping.width/height to producer.pixel_constraints().
type PixelConstraints struct {
	Width  *binding.Binding[float64]
	Height *binding.Binding[float64]
}

// NewPixelConstraints builds a settable constraints pair at the given size,
// ground-matched on constraints(width, height)'s constructor.
func NewPixelConstraints(width, height float64) PixelConstraints {
	return PixelConstraints{Width: binding.NewValue(width), Height: binding.NewValue(height)}
}

// CallResult is delivered exactly once on the channel returned by
// Producer.Call/Consumer calls — the idiomatic substitute for
// std::future<std::wstring>, matching the one-shot result channel pattern
// the corpus itself uses for asynchronous operations (no call site blocks
// on a future; it ranges over or receives from a channel instead).
type CallResult struct {
	Value string
	Err   error
}

// deliver sends a single result and closes the channel, used by callers
// that synthesize a CallResult without a background goroutine.
func deliver(value string, err error) <-chan CallResult {
	ch := make(chan CallResult, 1)
	ch <- CallResult{Value: value, Err: err}
	close(ch)
	return ch
}

// Ready wraps an already-known result as a one-shot channel, the Go
// counterpart of wrap_as_future used throughout original_source for
// synchronous call() implementations.
func Ready(value string, err error) <-chan CallResult {
	return deliver(value, err)
}

// Producer is the capability interface consumed by the mixing engine,
// narrowed from frame_producer's full virtual interface into the subset
// this module exercises (spec §6). Optional behaviors (collision
// detection, interaction) are split into their own single-method
// interfaces below rather than bloating Producer with no-op defaults —
// idiomatic Go capability interfaces per the REDESIGN FLAGS in spec.md §9.
type Producer interface {
	// ReceiveImpl produces the next draw frame, advancing any internal
	// position. Ground: frame_producer_base::receive_impl.
	ReceiveImpl() *frame.DrawFrame

	// PixelConstraints reports this producer's natural (width, height).
	PixelConstraints() PixelConstraints

	// Call executes a producer-specific command, returning a one-shot
	// result channel. Ground: frame_producer::call.
	Call(params []string) (<-chan CallResult, error)

	// Print returns a short debug identifier; Name returns the producer
	// type's registered name (e.g. "scene", "const").
	Print() string
	Name() string
}

// Collider is implemented by producers that support hit-testing, ground-
// matched on frame_producer_base::collides. Producers with no natural
// notion of a clickable area simply don't implement it.
type Collider interface {
	Collides(x, y float64) bool
}

// Consumer is the capability interface a frame sink implements, narrowed
// per spec §6 to the subset this module's pipeline drives.
type Consumer interface {
	Initialize(formatDesc VideoFormatDescriptor, channelIndex int) error
	Send(f *frame.ConstFrame) (<-chan CallResult, error)
	Print() string
	Name() string
	HasSynchronizationClock() bool
	Index() int
}

// VideoFormatDescriptor is the wire-stable output format description, ground-
// matched on spec §6's field list (video_format_desc).
type VideoFormatDescriptor struct {
	Format           string
	Width            int
	Height           int
	SquareWidth      int
	SquareHeight     int
	FieldCount       int // 1 or 2
	FieldMode        int
	FPS              float64
	FramerateNum     int
	FramerateDen     int
	TimeScale        int
	Duration         int
	AudioSampleRate  int
	AudioChannels    int
	AudioCadence     []int
}
