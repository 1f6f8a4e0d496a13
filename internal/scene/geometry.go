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

// Package scene implements the scene producer (C5): a layer/timeline tree
// whose per-layer parameters are reactive bindings, composited every frame
// into a single draw frame and advanced by a fractional-accumulator frame
// counter. Ground-matched on
// original_source/core/producer/scene/scene_producer.{h,cpp} and
// const_producer.cpp.
package scene

import (
	"github.com/golang/geo/r2"

	"github.com/e1z0/caspar-core/internal/binding"
)

// Coord is a reactive 2D point, ground-matched on scene::coord. Its fields
// are bindings rather than plain floats so a layer's position/anchor can be
// bound to an expression or another layer's coord, as
// create_dummy_scene_producer does throughout (e.g.
// upper_right.position.x = upper_left.position.x + ...).
type Coord struct {
	X *binding.Binding[float64]
	Y *binding.Binding[float64]
}

// NewCoord builds a settable coord at (x, y).
func NewCoord(x, y float64) Coord {
	return Coord{X: binding.NewValue(x), Y: binding.NewValue(y)}
}

// Point materializes this coord's current value as a golang/geo point, used
// by the hit-testing rectangle math below.
func (c Coord) Point() r2.Point {
	return r2.Point{X: c.X.Get(), Y: c.Y.Get()}
}

// Rect is a reactive axis-aligned rectangle given by two corners, ground-
// matched on scene::rect (used as layer.crop in the grounding header; the
// implementation file instead names the corresponding field "clipping" —
// both names refer to the same rect in the original, the discrepancy is in
// original_source itself, not introduced here).
type Rect struct {
	UpperLeft  Coord
	LowerRight Coord
}

// NewRect builds a settable rect spanning the given corners.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{UpperLeft: NewCoord(x0, y0), LowerRight: NewCoord(x1, y1)}
}

// AsRect materializes the rect's current corners as a golang/geo r2.Rect.
func (r Rect) AsRect() r2.Rect {
	return r2.RectFromPoints(r.UpperLeft.Point(), r.LowerRight.Point())
}

// Corners is a reactive quadrilateral, ground-matched on scene::corners
// (used for perspective-warped layers).
type Corners struct {
	UpperLeft  Coord
	UpperRight Coord
	LowerRight Coord
	LowerLeft  Coord
}

// NewIdentityCorners builds the default unit-square perspective corners.
func NewIdentityCorners() Corners {
	return Corners{
		UpperLeft:  NewCoord(0, 0),
		UpperRight: NewCoord(1, 0),
		LowerRight: NewCoord(1, 1),
		LowerLeft:  NewCoord(0, 1),
	}
}

// unitSquare is the destination hit-test rectangle every translated pointer
// position is checked against ([0,1]x[0,1]), ground-matched on the
// collission_detect bounds check translated.first/second >= 0.0 && <= 1.0.
var unitSquare = r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 1})
