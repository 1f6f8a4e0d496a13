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
	"github.com/google/uuid"

	"github.com/e1z0/caspar-core/internal/binding"
	"github.com/e1z0/caspar-core/internal/core"
)

// ChromaType enumerates the chroma-key modes a layer can apply, ground-
// matched on core::chroma::type (the enum's member list wasn't present in
// the retrieved grounding material; none/green/blue is the well-known
// CasparCG chroma-key vocabulary and is noted here as a reconstruction, not
// a verbatim port).
type ChromaType int

const (
	ChromaNone ChromaType = iota
	ChromaGreen
	ChromaBlue
)

// BlendMode enumerates the layer compositing modes, ground-matched on
// core::blend_mode (member list likewise reconstructed — not present in the
// retrieved grounding material; Normal is the only mode this module's
// flattening visitor distinguishes from the rest).
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendAdd
	BlendScreen
	BlendMultiply
)

// Adjustments is ground-matched on scene::adjustments: opacity defaults to
// 1.0 (adjustments::adjustments()).
type Adjustments struct {
	Opacity *binding.Binding[float64]
}

// NewAdjustments builds the default adjustments value (opacity = 1.0).
func NewAdjustments() Adjustments {
	return Adjustments{Opacity: binding.NewValue(1.0)}
}

// ChromaKey is ground-matched on scene::chroma_key.
type ChromaKey struct {
	Key       *binding.Binding[ChromaType]
	Threshold *binding.Binding[float64]
	Softness  *binding.Binding[float64]
	Spill     *binding.Binding[float64]
}

// NewChromaKey builds a disabled (ChromaNone) chroma key.
func NewChromaKey() ChromaKey {
	return ChromaKey{
		Key:       binding.NewValue(ChromaNone),
		Threshold: binding.New[float64](),
		Softness:  binding.New[float64](),
		Spill:     binding.New[float64](),
	}
}

// Layer is ground-matched on scene::layer: every field binding-typed so a
// scene expression or keyframe can drive it reactively. ID gives each layer
// a stable identity distinct from its position in Producer.layers, so an
// interaction event's source_id can keep naming its originating layer even
// if layers are reordered or removed.
type Layer struct {
	ID          uuid.UUID
	Name        *binding.Binding[string]
	Anchor      Coord
	Position    Coord
	Crop        Rect
	Perspective Corners
	Rotation    *binding.Binding[float64]
	Adjustments Adjustments
	Producer    core.Producer
	Hidden      *binding.Binding[bool]
	IsKey       *binding.Binding[bool]
	UseMipmap   *binding.Binding[bool]
	BlendMode   *binding.Binding[BlendMode]
	ChromaKey   ChromaKey
}

// NewLayer builds a layer wrapping producer, ground-matched on
// layer::layer: binds Crop's width/height to the producer's own pixel
// constraints (the constructor's clipping.width.bind(...)/height.bind(...)
// calls), leaving position/anchor at the origin and every other field at
// its zero-equivalent default.
func NewLayer(name string, producer core.Producer) *Layer {
	constraints := producer.PixelConstraints()

	crop := Rect{UpperLeft: NewCoord(0, 0), LowerRight: Coord{X: binding.New[float64](), Y: binding.New[float64]()}}
	_ = crop.LowerRight.X.Bind(constraints.Width)
	_ = crop.LowerRight.Y.Bind(constraints.Height)

	return &Layer{
		ID:          uuid.New(),
		Name:        binding.NewValue(name),
		Anchor:      NewCoord(0, 0),
		Position:    NewCoord(0, 0),
		Crop:        crop,
		Perspective: NewIdentityCorners(),
		Rotation:    binding.NewValue(0.0),
		Adjustments: NewAdjustments(),
		Producer:    producer,
		Hidden:      binding.NewValue(false),
		IsKey:       binding.NewValue(false),
		UseMipmap:   binding.NewValue(false),
		BlendMode:   binding.NewValue(BlendNormal),
		ChromaKey:   NewChromaKey(),
	}
}
