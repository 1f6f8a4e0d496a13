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
package scene

import (
	"github.com/e1z0/caspar-core/internal/core"
	"github.com/e1z0/caspar-core/internal/frame"
)

// ConstProducer is the minimal always-present producer that serves one
// unchanging draw-frame forever, or steps through a fixed sequence of
// frames and holds on the last one — ground-matched on
// original_source/core/producer/scene/const_producer.cpp.
type ConstProducer struct {
	frames      []*frame.DrawFrame
	seekPos     int
	constraints core.PixelConstraints
}

// NewConstProducer builds a producer that always returns f.
func NewConstProducer(f *frame.DrawFrame, width, height int) *ConstProducer {
	return &ConstProducer{frames: []*frame.DrawFrame{f}, constraints: core.NewPixelConstraints(float64(width), float64(height))}
}

// NewConstSequenceProducer builds a producer that steps through frames in
// order and then holds on the last one — ground-matched on the second
// const_producer constructor overload.
func NewConstSequenceProducer(frames []*frame.DrawFrame, width, height int) *ConstProducer {
	return &ConstProducer{frames: frames, constraints: core.NewPixelConstraints(float64(width), float64(height))}
}

// ReceiveImpl returns the current frame and advances the seek position
// until the last frame is reached, where it holds — ground-matched on
// const_producer::receive_impl.
func (c *ConstProducer) ReceiveImpl() *frame.DrawFrame {
	result := c.frames[c.seekPos]
	if c.seekPos+1 < len(c.frames) {
		c.seekPos++
	}
	return result
}

func (c *ConstProducer) PixelConstraints() core.PixelConstraints { return c.constraints }

// Call is a no-op: const producers take no commands.
func (c *ConstProducer) Call(params []string) (<-chan core.CallResult, error) {
	return core.Ready("", nil), nil
}

func (c *ConstProducer) Print() string { return "const[]" }
func (c *ConstProducer) Name() string  { return "const" }

// Subscribe/Unsubscribe are documented no-ops (DESIGN.md Open Question 3),
// matching const_producer's empty subscribe/unsubscribe overrides exactly.
func (c *ConstProducer) Subscribe(observer func(...any))   {}
func (c *ConstProducer) Unsubscribe(observer func(...any)) {}

var _ core.Producer = (*ConstProducer)(nil)
