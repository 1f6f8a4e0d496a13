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
	"github.com/e1z0/caspar-core/internal/interaction"
)

// fakeProducer is a minimal core.Producer stand-in for scene tests: a fixed
// size, a fixed draw-frame, and an optional always/never collider.
type fakeProducer struct {
	constraints core.PixelConstraints
	frame       *frame.DrawFrame
	collides    bool
}

func newFakeProducer(width, height float64) *fakeProducer {
	return &fakeProducer{
		constraints: core.NewPixelConstraints(width, height),
		frame:       frame.Leaf(&frame.ConstFrame{}),
	}
}

func (f *fakeProducer) ReceiveImpl() *frame.DrawFrame              { return f.frame }
func (f *fakeProducer) PixelConstraints() core.PixelConstraints    { return f.constraints }
func (f *fakeProducer) Call(params []string) (<-chan core.CallResult, error) {
	return core.Ready("", nil), nil
}
func (f *fakeProducer) Print() string { return "fake[]" }
func (f *fakeProducer) Name() string  { return "fake" }
func (f *fakeProducer) Collides(x, y float64) bool { return f.collides }
func (f *fakeProducer) OnInteraction(event interaction.Event) {}

var (
	_ core.Producer    = (*fakeProducer)(nil)
	_ core.Collider    = (*fakeProducer)(nil)
	_ interaction.Sink = (*fakeProducer)(nil)
)
