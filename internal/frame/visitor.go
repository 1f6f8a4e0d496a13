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
package frame

// Visitor is the traversal contract for a DrawFrame tree (spec §4.3):
// Begin/End bracket a subtree and Visit delivers each leaf with its fully
// composed transform (the product of every transform from the root down to
// that leaf). Because Go has no implicit call-stack-scoped state the way the
// original's visitor.begin/end pushed/popped a transform stack, Accept
// computes the composed transform itself and passes it directly into Begin
// and Visit — visitors that need a stack (e.g. the side-data mixer) can
// still maintain one keyed off Begin/End calls, but most don't need to.
type Visitor interface {
	Begin(composed Transform)
	Visit(composed Transform, leaf *ConstFrame, sideData SideDataRef)
	End()
}

// Accept performs a pre-order traversal of d, invoking v.Begin before
// descending into a node, v.Visit for each leaf, and v.End after its
// children (or immediately for a leaf). Ground: draw_frame::accept
// (draw_frame.cpp:56-62) generalized from "visitor keeps its own stack" to
// "Accept computes and passes the composed transform".
func Accept(d *DrawFrame, v Visitor) {
	acceptRec(d, DefaultTransform(), v)
}

func acceptRec(d *DrawFrame, parent Transform, v Visitor) {
	composed := parent.Mul(d.transform)
	v.Begin(composed)
	if d.IsLeaf() {
		v.Visit(composed, d.leaf, d.leaf.SideData)
	} else {
		for _, child := range d.children {
			acceptRec(child, composed, v)
		}
	}
	v.End()
}

// LeafVisit is one observed (transform, leaf) pair, as collected by
// FlattenVisitor.
type LeafVisit struct {
	Transform Transform
	Leaf      *ConstFrame
	SideData  SideDataRef
}

// FlattenVisitor collects every leaf in traversal order with its composed
// transform — the "flattened mixer input stream" named in spec §2.
type FlattenVisitor struct {
	Leaves []LeafVisit
}

func (f *FlattenVisitor) Begin(Transform) {}
func (f *FlattenVisitor) End()            {}
func (f *FlattenVisitor) Visit(composed Transform, leaf *ConstFrame, sideData SideDataRef) {
	f.Leaves = append(f.Leaves, LeafVisit{Transform: composed, Leaf: leaf, SideData: sideData})
}

// AudioExtractor wraps a Visitor and skips leaves marked is_still, matching
// the audio_extractor frame_visitor specialization used by the framerate
// adapter (original_source framerate_producer.cpp) to avoid re-counting
// audio samples from a still/repeated frame.
type AudioExtractor struct {
	Inner Visitor
}

func (a *AudioExtractor) Begin(t Transform) { a.Inner.Begin(t) }
func (a *AudioExtractor) End()              { a.Inner.End() }
func (a *AudioExtractor) Visit(composed Transform, leaf *ConstFrame, sideData SideDataRef) {
	if composed.Audio.IsStill {
		return
	}
	a.Inner.Visit(composed, leaf, sideData)
}
