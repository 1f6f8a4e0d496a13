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
package interaction

import "github.com/e1z0/caspar-core/internal/frame"

// Sink receives translated interaction events, ground-matched on
// interaction_sink's on_interaction member (the header wasn't present in
// the retrieved grounding material; its shape is inferred from every call
// site in interaction_aggregator.h, which only ever calls
// target->second->on_interaction(event)).
type Sink interface {
	OnInteraction(event Event)
}

// Target pairs the transform in effect at hit-test time with the sink that
// owns it, ground-matched on interaction_target
// (std::pair<frame_transform, interaction_sink*>).
type Target struct {
	Transform frame.Transform
	Sink      Sink
}

// CollisionDetector resolves a scene-space point to a target, ground-
// matched on collission_detector (sic, original spelling kept only here
// since it names the original type this mirrors; the Go type name below
// uses the corrected spelling).
type CollisionDetector func(x, y float64) (Target, bool)

// Aggregator buffers interaction events, coalesces consecutive mouse moves,
// and routes translated events to their hit-tested target — ground-matched
// on interaction_aggregator.
type Aggregator struct {
	events   []Event
	detector CollisionDetector

	clickedAndHeld    Target
	hasClickedAndHeld bool
	numButtonsHeld    int
}

// NewAggregator constructs an aggregator backed by detector.
func NewAggregator(detector CollisionDetector) *Aggregator {
	return &Aggregator{detector: detector}
}

// Offer enqueues event, coalescing it into the previous event if both it
// and the queue's tail are MouseMoveEvents — ground: offer's
// is<mouse_move_event> check on both the new event and events_.back().
func (a *Aggregator) Offer(event Event) {
	if n := len(a.events); n > 0 {
		if _, newIsMove := event.(MouseMoveEvent); newIsMove {
			if _, lastIsMove := a.events[n-1].(MouseMoveEvent); lastIsMove {
				a.events[n-1] = event
				return
			}
		}
	}
	a.events = append(a.events, event)
}

// Drain sends every buffered event in FIFO order via TranslateAndSend and
// empties the queue — ground: interaction_aggregator::translate_and_send().
func (a *Aggregator) Drain() {
	for _, event := range a.events {
		a.TranslateAndSend(event)
	}
	a.events = nil
}

// TranslateAndSend resolves event's target, tracks button-held capture, and
// delivers the translated event to the target's sink — ground:
// interaction_aggregator::translate_and_send(event). Bypassing Offer/Drain
// and calling this directly skips mouse-move coalescing; both entry points
// are kept intentionally (see DESIGN.md Open Questions).
func (a *Aggregator) TranslateAndSend(event Event) {
	pos, ok := event.(positioned)
	if !ok {
		return
	}

	var target Target
	var hasTarget bool
	if a.hasClickedAndHeld {
		target, hasTarget = a.clickedAndHeld, true
	} else {
		x, y := pos.position()
		target, hasTarget = a.detector(x, y)
	}

	if button, isButton := event.(MouseButtonEvent); isButton {
		if button.Pressed {
			if a.numButtonsHeld == 0 {
				a.clickedAndHeld, a.hasClickedAndHeld = target, hasTarget
			}
			a.numButtonsHeld++
		} else {
			a.numButtonsHeld--
		}
		if a.numButtonsHeld == 0 {
			a.hasClickedAndHeld = false
		}
	}

	if hasTarget {
		translated, _ := pos.Translate(target.Transform)
		target.Sink.OnInteraction(translated)
	}
}
