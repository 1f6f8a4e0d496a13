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

// ConstFrame is the shared, immutable leaf payload: a pixel-format
// descriptor, one byte span per plane, an interleaved audio sample buffer,
// and an optional ring of side-data. Cloning a ConstFrame is a pointer copy;
// callers never mutate the slices it holds. Ground: spec §3 "Const frame".
type ConstFrame struct {
	PixelFormat PixelFormatDescriptor
	Planes      [][]byte
	AudioSamples []int32 // interleaved, 16 channels, zero-padded
	SideData    SideDataRef
	ColorSpace  ColorSpace
}

// ColorSpace is the color space tag carried by a const frame.
type ColorSpace int

const (
	ColorSpaceBT601 ColorSpace = iota
	ColorSpaceBT709
	ColorSpaceBT2020
)

// SideDataRef is the (position, queue) pair a draw frame carries instead of
// embedding side-data payloads directly (spec §4.2 / original_source
// frame_side_data_in_queue). Queue is an opaque interface{} here, so frame
// does not import the sidedata package (which defines the concrete queue
// type). Callers type-assert to *sidedata.Queue.
type SideDataRef struct {
	Valid    bool
	Position int64
	Queue    any
}

// MutableFrame is the write-once producer-side counterpart to ConstFrame; it
// becomes a ConstFrame on Seal and must not be touched afterward.
type MutableFrame struct {
	PixelFormat  PixelFormatDescriptor
	Planes       [][]byte
	AudioSamples []int32
	SideData     SideDataRef
	ColorSpace   ColorSpace
}

// Seal freezes a mutable frame into a ConstFrame. The caller must not retain
// or mutate the MutableFrame afterward.
func (m *MutableFrame) Seal() *ConstFrame {
	return &ConstFrame{
		PixelFormat:  m.PixelFormat,
		Planes:       m.Planes,
		AudioSamples: m.AudioSamples,
		SideData:     m.SideData,
		ColorSpace:   m.ColorSpace,
	}
}

// DrawFrame is the tree node of C3: either a leaf (ConstFrame) or a
// composite of child draw frames, with an attached Transform. Ground:
// original_source/core/frame/draw_frame.{h,cpp}. Construction must go
// through the package-level constructors (Leaf, Over, Mask, Interlace,
// Silence, Still) so the short-circuit rules below are structurally
// guaranteed; DrawFrame's fields are therefore unexported.
type DrawFrame struct {
	transform Transform
	leaf      *ConstFrame
	children  []*DrawFrame
}

// Transform returns the frame's attached transform (copy).
func (d *DrawFrame) Transform() Transform { return d.transform }

// SetTransform replaces the frame's attached transform. Only used by
// constructors and by scene-layer composition (C5), which need to stamp a
// freshly computed transform onto an otherwise-unmodified child frame.
func (d *DrawFrame) SetTransform(t Transform) { d.transform = t }

// IsLeaf reports whether this node wraps a ConstFrame directly.
func (d *DrawFrame) IsLeaf() bool { return d.leaf != nil }

// Leaf returns the wrapped ConstFrame, or nil if this is a composite.
func (d *DrawFrame) Leaf() *ConstFrame { return d.leaf }

// Children returns the composite's child nodes, or nil for a leaf.
func (d *DrawFrame) Children() []*DrawFrame { return d.children }

// clone returns a shallow copy of d sharing the same leaf/children slice but
// an independently settable Transform, matching draw_frame's copy
// constructor semantics (a new impl_ wrapping the same frames_ vector).
func (d *DrawFrame) clone() *DrawFrame {
	c := *d
	return &c
}

// Clone exposes the same independently-transformable copy outside the
// package, for callers (the framerate adapter's interpolators) that need to
// stamp a new transform onto a frame without disturbing the original, the
// same way assigning a draw_frame by value does in the original.
func (d *DrawFrame) Clone() *DrawFrame { return d.clone() }

// Leaf wraps a ConstFrame as a draw-frame leaf with the identity transform.
func Leaf(f *ConstFrame) *DrawFrame {
	return &DrawFrame{transform: DefaultTransform(), leaf: f}
}

// Composite wraps a list of child draw frames with the identity transform,
// matching draw_frame(vector<shared_ptr<draw_frame>>).
func Composite(children []*DrawFrame) *DrawFrame {
	return &DrawFrame{transform: DefaultTransform(), children: children}
}

var (
	sentinelEOF   = &DrawFrame{transform: DefaultTransform()}
	sentinelEmpty = &DrawFrame{transform: DefaultTransform()}
	sentinelLate  = &DrawFrame{transform: DefaultTransform()}
)

// EOF is the singleton sentinel signalling end of stream. Compared by
// pointer identity, never by content (spec §3).
func EOF() *DrawFrame { return sentinelEOF }

// Empty is the singleton sentinel meaning "render nothing".
func Empty() *DrawFrame { return sentinelEmpty }

// Late is the singleton sentinel placeholder for an underflow.
func Late() *DrawFrame { return sentinelLate }

// Interlace ground-matches draw_frame::interlace: EOF propagates from
// either side; double-EMPTY short-circuits to EMPTY; identical frames or a
// progressive mode return frame2 unchanged; otherwise each side is cloned
// and tagged upper/lower according to mode.
func Interlace(frame1, frame2 *DrawFrame, mode FieldMode) *DrawFrame {
	if frame1 == sentinelEOF || frame2 == sentinelEOF {
		return sentinelEOF
	}
	if frame1 == sentinelEmpty && frame2 == sentinelEmpty {
		return sentinelEmpty
	}
	if frame1 == frame2 || mode == FieldModeProgressive {
		return frame2
	}

	f1 := frame1.clone()
	f2 := frame2.clone()
	if mode == FieldModeUpper {
		f1.transform.Image.FieldMode = FieldModeUpper
		f2.transform.Image.FieldMode = FieldModeLower
	} else {
		f1.transform.Image.FieldMode = FieldModeLower
		f2.transform.Image.FieldMode = FieldModeUpper
	}
	return Composite([]*DrawFrame{f1, f2})
}

// Over ground-matches draw_frame::over: EOF propagates; double-EMPTY
// short-circuits; otherwise frame2 composites over frame1 (frame1 first,
// frame2 painted on top, matching the original's {frame1, frame2} vector
// order with frame2 visited last).
func Over(frame1, frame2 *DrawFrame) *DrawFrame {
	if frame1 == sentinelEOF || frame2 == sentinelEOF {
		return sentinelEOF
	}
	if frame1 == sentinelEmpty && frame2 == sentinelEmpty {
		return sentinelEmpty
	}
	return Composite([]*DrawFrame{frame1, frame2})
}

// Mask ground-matches draw_frame::mask: any EOF propagates; any EMPTY
// short-circuits to EMPTY; otherwise key.IsKey is set and the composite
// order is {key, fill} (key pushed first), per spec §3.
func Mask(fill, key *DrawFrame) *DrawFrame {
	if fill == sentinelEOF || key == sentinelEOF {
		return sentinelEOF
	}
	if fill == sentinelEmpty || key == sentinelEmpty {
		return sentinelEmpty
	}
	keyClone := key.clone()
	keyClone.transform.Image.IsKey = true
	return Composite([]*DrawFrame{keyClone, fill})
}

// Silence clones frame and zeroes its audio transform's volume, ground-
// matched on draw_frame::silence.
func Silence(f *DrawFrame) *DrawFrame {
	c := f.clone()
	c.transform.Audio.Volume = 0.0
	return c
}

// Still clones frame and marks it is_still, used by the framerate adapter
// (C6) when re-emitting the same source frame across multiple output ticks.
func Still(f *DrawFrame) *DrawFrame {
	c := f.clone()
	c.transform.Audio.IsStill = true
	c.transform.Image.IsStill = true
	return c
}
