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

// Package mixer implements the side-data mixer: a frame.Visitor that
// collects side-data records flowing past it during a single render pass
// and applies the include_on_duplicate_frames suppression rule (spec §4.2,
// testable scenario 3). Ground-matched on
// original_source/src/core/mixer/side_data/side_data_mixer.{h,cpp}.
package mixer

import (
	"github.com/e1z0/caspar-core/internal/frame"
	"github.com/e1z0/caspar-core/internal/logging"
	"github.com/e1z0/caspar-core/internal/sidedata"
)

type item struct {
	useClosedCaptions bool
	sideData          frame.SideDataRef
}

// Mixer collects side-data-bearing leaves visited during a single Accept
// pass and, on Mixed, resolves the final set of records to attach to the
// mixed output frame. Unlike the original's push/pop transform stack, Mixer
// reads the fully composed frame.Transform handed to it by frame.Accept
// directly (see frame.Visitor's doc comment) — no manual stack is needed
// here because Go's Accept already performs that composition.
type Mixer struct {
	items []item
	dedup dedup

	log func(msg string)
}

// NewMixer constructs an empty mixer.
func NewMixer() *Mixer {
	return &Mixer{log: func(msg string) { logging.For("side-data-mixer").Warn().Msg(msg) }}
}

func (m *Mixer) Begin(frame.Transform) {}
func (m *Mixer) End()                  {}

// Visit collects the leaf's side-data reference when its composed
// transform still wants closed captions and it actually carries side-data —
// ground: side_data_mixer::visit's
// "if (!top().use_closed_captions || frame.side_data().empty()) return;".
func (m *Mixer) Visit(composed frame.Transform, leaf *frame.ConstFrame, sideData frame.SideDataRef) {
	if !composed.SideData.UseClosedCaptions || !sideData.Valid {
		return
	}
	m.items = append(m.items, item{useClosedCaptions: composed.SideData.UseClosedCaptions, sideData: sideData})
}

// dedup mirrors side_data_dedup: a sliding pair of "last frame" / "current
// frame" sets used to suppress a side-datum that is merely a carry-over
// repeat from the previous output frame, when its type opts out of
// IncludeOnDuplicateFrames.
type dedup struct {
	last map[sidedata.Record]struct{}
	cur  map[sidedata.Record]struct{}
}

func (d *dedup) nextFrame() {
	d.last = d.cur
	d.cur = nil
}

func (d *dedup) isDuplicateAndAdd(r sidedata.Record) bool {
	if d.cur == nil {
		d.cur = make(map[sidedata.Record]struct{})
	}
	if _, already := d.cur[r]; already {
		return true
	}
	d.cur[r] = struct{}{}
	_, wasLast := d.last[r]
	return wasLast
}

// Mixed resolves the collected items into the final set of side-data
// records to attach to the output frame, applies the "one a53_cc source at
// a time" rule (warning, not failure, on conflict — ground:
// side_data_mixer::mixed, lines 78-109), clears the per-pass item list, and
// rotates the dedup window for the next frame.
func (m *Mixer) Mixed() []sidedata.Record {
	var mixed []sidedata.Record

	hasA53CCSource := false
	for _, it := range m.items {
		queue, _ := it.sideData.Queue.(*sidedata.Queue)
		if queue == nil {
			continue
		}
		records, ok := queue.Get(it.sideData.Position)
		if !ok {
			continue
		}

		hasA53CCSideData := false
		for _, rec := range records {
			if !sidedata.IncludeOnDuplicateFrames(rec.Type) {
				if m.dedup.isDuplicateAndAdd(rec) {
					continue
				}
			}
			switch rec.Type {
			case sidedata.TypeA53CC:
				if !it.useClosedCaptions {
					continue
				}
				hasA53CCSideData = true
				if hasA53CCSource {
					m.log("multiple-simultaneous-a53-cc-sources")
				} else {
					mixed = append(mixed, rec)
				}
			}
		}
		hasA53CCSource = hasA53CCSource || hasA53CCSideData
	}

	m.items = nil
	m.dedup.nextFrame()
	return mixed
}
