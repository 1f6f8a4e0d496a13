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

// Package frame implements the frame & transform model (C1) and the
// draw-frame tree & visitor (C3): immutable pixel/audio frame payloads and
// the compositional transform algebra that describes how subframes blend.
// Ground-matched line for line on
// original_source/core/frame/frame_transform.{h,cpp} and
// original_source/core/frame/draw_frame.{h,cpp}.
package frame

import "math"

// floatTolerance is the absolute tolerance used for all transform scalar
// comparisons (spec §9 "Floating-point equality").
const floatTolerance = 5e-8

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// FieldMode is a 2-bit mask over {upper, lower}; progressive has both bits
// set. Composition ANDs the masks together (spec §3).
type FieldMode uint8

const (
	FieldModeNone        FieldMode = 0
	FieldModeUpper       FieldMode = 1 << 0
	FieldModeLower       FieldMode = 1 << 1
	FieldModeBoth        FieldMode = FieldModeUpper | FieldModeLower
	FieldModeProgressive           = FieldModeBoth
)

// Tweener computes the eased value at time within [0, duration], given the
// source value and the (dest-source) delta — the same signature as the
// original's tweener functor: tween(time, source, delta, duration).
type Tweener func(time, source, delta, duration float64) float64

// Linear is the simplest Tweener: linear interpolation from source toward
// source+delta over duration.
func Linear(time, source, delta, duration float64) float64 {
	if duration <= 0 {
		return source + delta
	}
	return source + delta*(time/duration)
}

// Levels mirrors original_source's levels struct: identity values pass
// pixels through unchanged.
type Levels struct {
	MinInput  float64
	MaxInput  float64
	Gamma     float64
	MinOutput float64
	MaxOutput float64
}

// DefaultLevels is the identity levels value (min_input=0, max_input=1,
// gamma=1, min_output=0, max_output=1).
func DefaultLevels() Levels {
	return Levels{MinInput: 0.0, MaxInput: 1.0, Gamma: 1.0, MinOutput: 0.0, MaxOutput: 1.0}
}

func levelsEqual(a, b Levels) bool {
	return floatEqual(a.MinInput, b.MinInput) &&
		floatEqual(a.MaxInput, b.MaxInput) &&
		floatEqual(a.Gamma, b.Gamma) &&
		floatEqual(a.MinOutput, b.MinOutput) &&
		floatEqual(a.MaxOutput, b.MaxOutput)
}

// ImageTransform mirrors original_source's image_transform sealed struct.
type ImageTransform struct {
	Opacity    float64
	Brightness float64
	Contrast   float64
	Saturation float64

	FillTranslation [2]float64
	FillScale       [2]float64
	ClipTranslation [2]float64
	ClipScale       [2]float64

	Levels Levels

	FieldMode FieldMode
	IsKey     bool
	IsMix     bool
	IsStill   bool
}

// DefaultImageTransform is the identity image transform.
func DefaultImageTransform() ImageTransform {
	return ImageTransform{
		Opacity:    1.0,
		Brightness: 1.0,
		Contrast:   1.0,
		Saturation: 1.0,
		FillScale:  [2]float64{1.0, 1.0},
		ClipScale:  [2]float64{1.0, 1.0},
		Levels:     DefaultLevels(),
		FieldMode:  FieldModeProgressive,
	}
}

// Mul returns a*b with a's scale applied to b's translation before adding,
// ground-matched on image_transform::operator*= (frame_transform.cpp:49-73).
func (a ImageTransform) Mul(b ImageTransform) ImageTransform {
	r := a
	r.Opacity *= b.Opacity
	r.Brightness *= b.Brightness
	r.Contrast *= b.Contrast
	r.Saturation *= b.Saturation

	r.FillTranslation[0] = a.FillTranslation[0] + b.FillTranslation[0]*a.FillScale[0]
	r.FillTranslation[1] = a.FillTranslation[1] + b.FillTranslation[1]*a.FillScale[1]
	r.FillScale[0] = a.FillScale[0] * b.FillScale[0]
	r.FillScale[1] = a.FillScale[1] * b.FillScale[1]

	r.ClipTranslation[0] = a.ClipTranslation[0] + b.ClipTranslation[0]*a.ClipScale[0]
	r.ClipTranslation[1] = a.ClipTranslation[1] + b.ClipTranslation[1]*a.ClipScale[1]
	r.ClipScale[0] = a.ClipScale[0] * b.ClipScale[0]
	r.ClipScale[1] = a.ClipScale[1] * b.ClipScale[1]

	r.Levels.MinInput = math.Max(a.Levels.MinInput, b.Levels.MinInput)
	r.Levels.MaxInput = math.Min(a.Levels.MaxInput, b.Levels.MaxInput)
	r.Levels.MinOutput = math.Max(a.Levels.MinOutput, b.Levels.MinOutput)
	r.Levels.MaxOutput = math.Min(a.Levels.MaxOutput, b.Levels.MaxOutput)
	r.Levels.Gamma = a.Levels.Gamma * b.Levels.Gamma

	r.FieldMode = a.FieldMode & b.FieldMode
	r.IsKey = a.IsKey || b.IsKey
	r.IsMix = a.IsMix || b.IsMix
	r.IsStill = a.IsStill || b.IsStill
	return r
}

// TweenImageTransform ground-matches image_transform::tween.
func TweenImageTransform(time float64, source, dest ImageTransform, duration float64, tween Tweener) ImageTransform {
	dt := func(s, d float64) float64 { return tween(time, s, d-s, duration) }

	var r ImageTransform
	r.Brightness = dt(source.Brightness, dest.Brightness)
	r.Contrast = dt(source.Contrast, dest.Contrast)
	r.Saturation = dt(source.Saturation, dest.Saturation)
	r.Opacity = dt(source.Opacity, dest.Opacity)
	r.FillTranslation[0] = dt(source.FillTranslation[0], dest.FillTranslation[0])
	r.FillTranslation[1] = dt(source.FillTranslation[1], dest.FillTranslation[1])
	r.FillScale[0] = dt(source.FillScale[0], dest.FillScale[0])
	r.FillScale[1] = dt(source.FillScale[1], dest.FillScale[1])
	r.ClipTranslation[0] = dt(source.ClipTranslation[0], dest.ClipTranslation[0])
	r.ClipTranslation[1] = dt(source.ClipTranslation[1], dest.ClipTranslation[1])
	r.ClipScale[0] = dt(source.ClipScale[0], dest.ClipScale[0])
	r.ClipScale[1] = dt(source.ClipScale[1], dest.ClipScale[1])
	r.Levels.MaxInput = dt(source.Levels.MaxInput, dest.Levels.MaxInput)
	r.Levels.MinInput = dt(source.Levels.MinInput, dest.Levels.MinInput)
	r.Levels.MaxOutput = dt(source.Levels.MaxOutput, dest.Levels.MaxOutput)
	r.Levels.MinOutput = dt(source.Levels.MinOutput, dest.Levels.MinOutput)
	r.Levels.Gamma = dt(source.Levels.Gamma, dest.Levels.Gamma)
	r.FieldMode = source.FieldMode & dest.FieldMode
	r.IsKey = source.IsKey || dest.IsKey
	r.IsMix = source.IsMix || dest.IsMix
	r.IsStill = source.IsStill || dest.IsStill
	return r
}

// Equal compares two image transforms within the package float tolerance.
func (a ImageTransform) Equal(b ImageTransform) bool {
	return floatEqual(a.Opacity, b.Opacity) &&
		floatEqual(a.Contrast, b.Contrast) &&
		floatEqual(a.Brightness, b.Brightness) &&
		floatEqual(a.Saturation, b.Saturation) &&
		floatEqual(a.FillTranslation[0], b.FillTranslation[0]) &&
		floatEqual(a.FillTranslation[1], b.FillTranslation[1]) &&
		floatEqual(a.FillScale[0], b.FillScale[0]) &&
		floatEqual(a.FillScale[1], b.FillScale[1]) &&
		floatEqual(a.ClipTranslation[0], b.ClipTranslation[0]) &&
		floatEqual(a.ClipTranslation[1], b.ClipTranslation[1]) &&
		floatEqual(a.ClipScale[0], b.ClipScale[0]) &&
		floatEqual(a.ClipScale[1], b.ClipScale[1]) &&
		levelsEqual(a.Levels, b.Levels) &&
		a.FieldMode == b.FieldMode &&
		a.IsKey == b.IsKey &&
		a.IsMix == b.IsMix &&
		a.IsStill == b.IsStill
}

// AudioTransform mirrors original_source's audio_transform sealed struct.
type AudioTransform struct {
	Volume  float64
	IsStill bool
}

// DefaultAudioTransform is the identity audio transform.
func DefaultAudioTransform() AudioTransform { return AudioTransform{Volume: 1.0} }

func (a AudioTransform) Mul(b AudioTransform) AudioTransform {
	return AudioTransform{Volume: a.Volume * b.Volume, IsStill: a.IsStill || b.IsStill}
}

func TweenAudioTransform(time float64, source, dest AudioTransform, duration float64, tween Tweener) AudioTransform {
	return AudioTransform{
		IsStill: source.IsStill || dest.IsStill,
		Volume:  tween(time, source.Volume, dest.Volume-source.Volume, duration),
	}
}

func (a AudioTransform) Equal(b AudioTransform) bool {
	return floatEqual(a.Volume, b.Volume) && a.IsStill == b.IsStill
}

// SideDataTransform mirrors the side_data_transform referenced by
// original_source/src/core/mixer/side_data/side_data_mixer.cpp: a single
// boolean, AND-combined on composition.
type SideDataTransform struct {
	UseClosedCaptions bool
}

// DefaultSideDataTransform is the identity value: closed captions pass
// through by default.
func DefaultSideDataTransform() SideDataTransform {
	return SideDataTransform{UseClosedCaptions: true}
}

func (a SideDataTransform) Mul(b SideDataTransform) SideDataTransform {
	return SideDataTransform{UseClosedCaptions: a.UseClosedCaptions && b.UseClosedCaptions}
}

// Transform is the product of image, audio, and side-data transforms: the
// frame_transform sealed struct.
type Transform struct {
	Image    ImageTransform
	Audio    AudioTransform
	SideData SideDataTransform
}

// DefaultTransform is the identity frame transform.
func DefaultTransform() Transform {
	return Transform{
		Image:    DefaultImageTransform(),
		Audio:    DefaultAudioTransform(),
		SideData: DefaultSideDataTransform(),
	}
}

func (a Transform) Mul(b Transform) Transform {
	return Transform{
		Image:    a.Image.Mul(b.Image),
		Audio:    a.Audio.Mul(b.Audio),
		SideData: a.SideData.Mul(b.SideData),
	}
}

func TweenTransform(time float64, source, dest Transform, duration float64, tween Tweener) Transform {
	return Transform{
		Image: TweenImageTransform(time, source.Image, dest.Image, duration, tween),
		Audio: TweenAudioTransform(time, source.Audio, dest.Audio, duration, tween),
		// side-data transform carries no tweenable scalar fields; composed at
		// mix time via Mul only, matching the original (which has no
		// side_data_transform::tween either).
		SideData: source.SideData.Mul(dest.SideData),
	}
}

func (a Transform) Equal(b Transform) bool {
	return a.Image.Equal(b.Image) && a.Audio.Equal(b.Audio) && a.SideData == b.SideData
}

// TweenedTransform ground-matches original_source's tweened_transform: a
// stateful source→dest interpolation driven by repeated FetchAndTick calls.
type TweenedTransform struct {
	source, dest Transform
	duration     int
	time         int
	tweener      Tweener
}

// NewTweenedTransform constructs a tween from source to dest over duration
// frames using tween as the easing function.
func NewTweenedTransform(source, dest Transform, duration int, tween Tweener) TweenedTransform {
	return TweenedTransform{source: source, dest: dest, duration: duration, tweener: tween}
}

// Fetch returns dest exactly once time has reached duration (no floating
// round-off at the boundary — ground: frame_transform.h:139), otherwise the
// tweened value at the current time.
func (t TweenedTransform) Fetch() Transform {
	if t.time == t.duration {
		return t.dest
	}
	return TweenTransform(float64(t.time), t.source, t.dest, float64(t.duration), t.tweener)
}

// FetchAndTick advances time by num frames, clamped to duration, and
// returns Fetch().
func (t *TweenedTransform) FetchAndTick(num int) Transform {
	t.time += num
	if t.time > t.duration {
		t.time = t.duration
	}
	return t.Fetch()
}
