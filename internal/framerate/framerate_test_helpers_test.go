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
	"github.com/e1z0/caspar-core/internal/core"
	"github.com/e1z0/caspar-core/internal/frame"
)

// sequenceProducer is a minimal core.Producer that hands out successive
// leaves from a fixed, pre-built slice of draw frames, tracking how many
// have been popped so tests can assert exactly which source frame an
// adapter's output corresponds to.
type sequenceProducer struct {
	frames []*frame.DrawFrame
	pos    int
}

func newSequenceProducer(n int, audioSamplesPerFrame int) *sequenceProducer {
	frames := make([]*frame.DrawFrame, n)
	for i := range frames {
		var samples []int32
		if audioSamplesPerFrame > 0 {
			samples = make([]int32, audioSamplesPerFrame*audioChannels)
			for c := range samples {
				samples[c] = int32(i + 1)
			}
		}
		frames[i] = frame.Leaf(&frame.ConstFrame{AudioSamples: samples})
	}
	return &sequenceProducer{frames: frames}
}

func (s *sequenceProducer) ReceiveImpl() *frame.DrawFrame {
	f := s.frames[s.pos]
	if s.pos+1 < len(s.frames) {
		s.pos++
	}
	return f
}

func (s *sequenceProducer) PixelConstraints() core.PixelConstraints {
	return core.NewPixelConstraints(1280, 720)
}
func (s *sequenceProducer) Call(params []string) (<-chan core.CallResult, error) {
	return core.Ready("", nil), nil
}
func (s *sequenceProducer) Print() string { return "sequence[]" }
func (s *sequenceProducer) Name() string  { return "sequence" }

var _ core.Producer = (*sequenceProducer)(nil)
