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

// Keyframe is ground-matched on scene::keyframe: three optional callbacks
// driven by the scene's frame counter, keyed by the frame at which the
// keyframe's destination value takes effect.
type Keyframe struct {
	OnStartAnimate    func()
	OnAnimateTo       func(startFrame, currentFrame int64)
	OnDestinationFrame func()
	DestinationFrame  int64
}

// timeline holds one binding's ordered keyframes, ground-matched on the
// anonymous `timeline` struct in scene_producer.cpp (a
// std::map<int64_t, keyframe> plus its on_frame dispatch method).
type timeline struct {
	keyframes    []int64            // sorted destination frames
	byFrame      map[int64]*Keyframe
}

func newTimeline() *timeline {
	return &timeline{byFrame: make(map[int64]*Keyframe)}
}

// add inserts k, keeping keyframes sorted by destination frame — ground:
// store_keyframe's timelines_[identity].keyframes.insert.
func (t *timeline) add(k *Keyframe) {
	if _, exists := t.byFrame[k.DestinationFrame]; !exists {
		t.keyframes = append(t.keyframes, k.DestinationFrame)
		sortInt64s(t.keyframes)
	}
	t.byFrame[k.DestinationFrame] = k
}

// sortInt64s is a tiny insertion sort; timelines hold at most a handful of
// keyframes so this avoids importing sort for one call site.
func sortInt64s(s []int64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// onFrame dispatches this timeline's keyframes for the current frame,
// ground-matched line for line on timeline::on_frame: find the keyframe
// strictly before frame, the one strictly after, and any exact match.
func (t *timeline) onFrame(frame int64) {
	var beforeFrame int64
	foundBefore := false
	var after *Keyframe
	foundAfter := false

	for _, f := range t.keyframes {
		if f < frame {
			beforeFrame = f
			foundBefore = true
		}
		if f > frame && !foundAfter {
			after = t.byFrame[f]
			foundAfter = true
		}
	}

	exact, foundExact := t.byFrame[frame]

	if foundExact {
		if exact.OnDestinationFrame != nil {
			exact.OnDestinationFrame()
		}

		// next_frame = ++exact_frame: the keyframe immediately following the
		// exact match in sorted order, if any.
		for i, f := range t.keyframes {
			if f == frame && i+1 < len(t.keyframes) {
				next := t.byFrame[t.keyframes[i+1]]
				if next.OnStartAnimate != nil {
					next.OnStartAnimate()
				}
				break
			}
		}
	} else if foundAfter {
		startFrame := int64(0)
		if foundBefore {
			startFrame = beforeFrame
		}

		if after.OnStartAnimate != nil && frame == 0 {
			after.OnStartAnimate()
		} else if after.OnAnimateTo != nil {
			after.OnAnimateTo(startFrame, frame)
		}
	}
}
