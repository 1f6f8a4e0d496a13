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

// Package interaction implements the interaction aggregator (C7): buffering
// pointer events, coalescing consecutive mouse-move events, resolving a
// target via collision detection, and translating coordinates into a
// producer's local space before delivery. Ground-matched on
// original_source/core/interaction/interaction_event.h,
// interaction_aggregator.h and util.h.
package interaction

import (
	"github.com/google/uuid"

	"github.com/e1z0/caspar-core/internal/frame"
)

// Event is the common interface every interaction event satisfies, ground-
// matched on interaction_event's source_id field. source_id identifies the
// producer/layer the event originated from, so it carries the same
// uuid.UUID identity as scene.Layer.ID rather than a plain index.
type Event interface {
	SourceID() uuid.UUID
}

// PositionEvent is embedded by every event that carries a pointer position,
// ground-matched on position_event. Translate is implemented per concrete
// event type below rather than once here, since each needs to reconstruct
// its own concrete type (the Go counterpart of position_event::clone).
type PositionEvent struct {
	Source uuid.UUID
	X, Y   float64
}

func (p PositionEvent) SourceID() uuid.UUID { return p.Source }

// translate applies transform's inverse fill translation/scale to (x, y),
// ground-matched on util.h's free translate() function. It short-circuits
// to the identical (x, y) when the transform's fill is already identity,
// matching the original's equality check exactly (no epsilon).
func translate(x, y float64, transform frame.Transform) (float64, float64) {
	fillX := transform.Image.FillTranslation[0]
	fillY := transform.Image.FillTranslation[1]
	scaleX := transform.Image.FillScale[0]
	scaleY := transform.Image.FillScale[1]

	if fillX != 0.0 || fillY != 0.0 || scaleX != 1.0 || scaleY != 1.0 {
		return (x - fillX) / scaleX, (y - fillY) / scaleY
	}
	return x, y
}

// MouseMoveEvent is ground-matched on mouse_move_event.
type MouseMoveEvent struct {
	PositionEvent
}

// Translate returns the event translated through transform, or the event
// itself unchanged (not a copy) when the transform is identity — ground:
// position_event::translate's shared_from_this() fast path.
func (e MouseMoveEvent) Translate(transform frame.Transform) (Event, bool) {
	tx, ty := translate(e.X, e.Y, transform)
	if tx == e.X && ty == e.Y {
		return e, true
	}
	return MouseMoveEvent{PositionEvent{Source: e.Source, X: tx, Y: ty}}, false
}

// MouseWheelEvent is ground-matched on mouse_wheel_event.
type MouseWheelEvent struct {
	PositionEvent
	TicksDelta int
}

func (e MouseWheelEvent) Translate(transform frame.Transform) (Event, bool) {
	tx, ty := translate(e.X, e.Y, transform)
	if tx == e.X && ty == e.Y {
		return e, true
	}
	return MouseWheelEvent{PositionEvent{Source: e.Source, X: tx, Y: ty}, e.TicksDelta}, false
}

// MouseButtonEvent is ground-matched on mouse_button_event.
type MouseButtonEvent struct {
	PositionEvent
	Button  int
	Pressed bool
}

func (e MouseButtonEvent) Translate(transform frame.Transform) (Event, bool) {
	tx, ty := translate(e.X, e.Y, transform)
	if tx == e.X && ty == e.Y {
		return e, true
	}
	return MouseButtonEvent{PositionEvent{Source: e.Source, X: tx, Y: ty}, e.Button, e.Pressed}, false
}

// positioned is satisfied by every concrete event above; TranslateAndSend
// type-switches on it rather than adding a Translate method to the Event
// interface itself, since plain non-position events (none exist yet, but
// the original's interaction_event base supports them) would otherwise be
// forced to implement a translation they have no coordinates for.
type positioned interface {
	Event
	Translate(transform frame.Transform) (Event, bool)
	position() (x, y float64)
}

func (e MouseMoveEvent) position() (float64, float64)   { return e.X, e.Y }
func (e MouseWheelEvent) position() (float64, float64)  { return e.X, e.Y }
func (e MouseButtonEvent) position() (float64, float64) { return e.X, e.Y }
