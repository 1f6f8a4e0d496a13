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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func genFloat(t *rapid.T, label string) float64 {
	return rapid.Float64Range(-10, 10).Draw(t, label)
}

func genImageTransform(t *rapid.T) ImageTransform {
	img := DefaultImageTransform()
	img.Opacity = genFloat(t, "opacity")
	img.Brightness = genFloat(t, "brightness")
	img.Contrast = genFloat(t, "contrast")
	img.Saturation = genFloat(t, "saturation")
	img.FillTranslation = [2]float64{genFloat(t, "ftx"), genFloat(t, "fty")}
	img.FillScale = [2]float64{genFloat(t, "fsx"), genFloat(t, "fsy")}
	img.IsKey = rapid.Bool().Draw(t, "isKey")
	img.IsMix = rapid.Bool().Draw(t, "isMix")
	img.IsStill = rapid.Bool().Draw(t, "isStill")
	return img
}

func genTransform(t *rapid.T) Transform {
	tr := DefaultTransform()
	tr.Image = genImageTransform(t)
	tr.Audio.Volume = genFloat(t, "volume")
	tr.Audio.IsStill = rapid.Bool().Draw(t, "audioStill")
	tr.SideData.UseClosedCaptions = rapid.Bool().Draw(t, "useCC")
	return tr
}

// TestTransformAssociative is the §8 universal invariant:
// (A*B)*C == A*(B*C) up to 5e-8 tolerance on each scalar.
func TestTransformAssociative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genTransform(t)
		b := genTransform(t)
		c := genTransform(t)

		left := a.Mul(b).Mul(c)
		right := a.Mul(b.Mul(c))

		assert.True(t, left.Equal(right), "associativity violated: %+v vs %+v", left, right)
	})
}

// TestTransformIdentity is the §8 universal invariant: T*identity == T and
// identity*T == T.
func TestTransformIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := genTransform(t)
		id := DefaultTransform()

		assert.True(t, tr.Mul(id).Equal(tr))
		assert.True(t, id.Mul(tr).Equal(tr))
	})
}

// TestTransformComposeAndTween is concrete scenario 1 from §8.
func TestTransformComposeAndTween(t *testing.T) {
	imgA := DefaultImageTransform()
	imgA.Opacity = 0.5
	imgA.FillScale = [2]float64{2, 2}
	imgA.FillTranslation = [2]float64{10, 0}

	imgB := DefaultImageTransform()
	imgB.Opacity = 0.5
	imgB.FillTranslation = [2]float64{5, 0}

	composed := imgA.Mul(imgB)
	assert.InDelta(t, 0.25, composed.Opacity, 1e-12)
	assert.InDelta(t, 20, composed.FillTranslation[0], 1e-12)
	assert.InDelta(t, 0, composed.FillTranslation[1], 1e-12)
	assert.InDelta(t, 2, composed.FillScale[0], 1e-12)
	assert.InDelta(t, 2, composed.FillScale[1], 1e-12)

	a := DefaultTransform()
	a.Image = imgA
	b := DefaultTransform()
	b.Image = imgB

	tweened := TweenTransform(5, a, b, 10, Linear)
	require.InDelta(t, 0.5, tweened.Image.Opacity, 1e-12)
	assert.InDelta(t, 7.5, tweened.Image.FillTranslation[0], 1e-12)
}

// TestLevelsComposition is the §8 boundary behavior for levels intersection.
func TestLevelsComposition(t *testing.T) {
	a := DefaultImageTransform()
	a.Levels.MinInput = 0.1
	a.Levels.MaxInput = 0.9

	b := DefaultImageTransform()
	b.Levels.MinInput = 0.2
	b.Levels.MaxInput = 0.8

	composed := a.Mul(b)
	assert.InDelta(t, 0.2, composed.Levels.MinInput, 1e-12)
	assert.InDelta(t, 0.8, composed.Levels.MaxInput, 1e-12)
}

func TestTweenedTransformFetchesDestExactlyAtBoundary(t *testing.T) {
	a := DefaultTransform()
	b := DefaultTransform()
	b.Image.Opacity = 0.3

	tw := NewTweenedTransform(a, b, 10, Linear)
	got := tw.FetchAndTick(10)
	assert.Equal(t, b, got, "at the exact boundary dest must be returned verbatim, no float round-off")
}

func TestFieldModeCompositionIsBitwiseAnd(t *testing.T) {
	a := DefaultImageTransform()
	a.FieldMode = FieldModeUpper
	b := DefaultImageTransform()
	b.FieldMode = FieldModeBoth

	assert.Equal(t, FieldModeUpper, a.Mul(b).FieldMode)
}
