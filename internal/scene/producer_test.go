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
	"testing"

	"github.com/e1z0/caspar-core/internal/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderFrameAdvancesFrameCounterBySpeedOne checks the §8 invariant
// that for any scene with speed == 1, calling render_frame N times
// increments the scene's frame counter by N.
func TestRenderFrameAdvancesFrameCounterBySpeedOne(t *testing.T) {
	p := NewProducer(1280, 720)
	p.CreateLayer(newFakeProducer(100, 100), 0, 0, "a")

	for i := int64(1); i <= 10; i++ {
		p.RenderFrame()
		assert.Equal(t, i, p.Frame().Get())
	}
}

func TestRenderFrameAccumulatesFractionalSpeed(t *testing.T) {
	p := NewProducer(1280, 720)
	require.NoError(t, p.Speed().Set(0.5))

	p.RenderFrame()
	assert.Equal(t, int64(0), p.Frame().Get())
	p.RenderFrame()
	assert.Equal(t, int64(1), p.Frame().Get())
	p.RenderFrame()
	assert.Equal(t, int64(1), p.Frame().Get())
	p.RenderFrame()
	assert.Equal(t, int64(2), p.Frame().Get())
}

func TestRenderFrameSkipsHiddenLayers(t *testing.T) {
	p := NewProducer(100, 100)
	layer := p.CreateLayer(newFakeProducer(50, 50), 0, 0, "a")
	require.NoError(t, layer.Hidden.Set(true))

	result := p.RenderFrame()
	assert.Empty(t, result.Children())
}

func TestGetTransformNormalizesPositionAndScale(t *testing.T) {
	p := NewProducer(200, 100)
	layer := p.CreateLayer(newFakeProducer(50, 25), 20, 10, "a")

	transform := p.GetTransform(layer)
	assert.InDelta(t, 0.1, transform.Image.FillTranslation[0], 1e-9)
	assert.InDelta(t, 0.1, transform.Image.FillTranslation[1], 1e-9)
	assert.InDelta(t, 0.25, transform.Image.FillScale[0], 1e-9)
	assert.InDelta(t, 0.25, transform.Image.FillScale[1], 1e-9)
}

func TestCollisionDetectFindsTopmostVisibleHit(t *testing.T) {
	p := NewProducer(100, 100)
	back := newFakeProducer(100, 100)
	back.collides = true
	front := newFakeProducer(100, 100)
	front.collides = true

	p.CreateLayer(back, 0, 0, "back")
	p.CreateLayer(front, 0, 0, "front")

	target, ok := p.collisionDetect(0.5, 0.5)
	require.True(t, ok)
	assert.Same(t, front, target.Sink)
}

func TestCollisionDetectSkipsHiddenLayer(t *testing.T) {
	p := NewProducer(100, 100)
	back := newFakeProducer(100, 100)
	back.collides = true
	front := newFakeProducer(100, 100)
	front.collides = true

	p.CreateLayer(back, 0, 0, "back")
	frontLayer := p.CreateLayer(front, 0, 0, "front")
	require.NoError(t, frontLayer.Hidden.Set(true))

	target, ok := p.collisionDetect(0.5, 0.5)
	require.True(t, ok)
	assert.Same(t, back, target.Sink)
}

func TestKeyframeSetsDestinationValueOnExactFrame(t *testing.T) {
	p := NewProducer(100, 100)
	layer := p.CreateLayer(newFakeProducer(10, 10), 0, 0, "a")
	p.SetKeyframeValue(layer.Position.X, 42.0, 5)

	for i := 0; i < 6; i++ {
		p.RenderFrame()
	}
	assert.Equal(t, 42.0, layer.Position.X.Get())
}

func TestKeyframeTweensTowardDestination(t *testing.T) {
	p := NewProducer(100, 100)
	layer := p.CreateLayer(newFakeProducer(10, 10), 0, 0, "a")
	require.NoError(t, layer.Position.X.Set(0.0))
	p.AddKeyframeValue(layer.Position.X, 100.0, 10, "linear")

	var last float64
	for i := 0; i < 11; i++ {
		p.RenderFrame()
		v := layer.Position.X.Get()
		assert.GreaterOrEqual(t, v, last)
		last = v
	}
	assert.InDelta(t, 100.0, last, 1e-6)
}

func TestCallWritesOnlyPublicVariables(t *testing.T) {
	p := NewProducer(100, 100)
	_, err := p.CreateVariable(expr.KindString, "label", true, "")
	require.NoError(t, err)

	ch, err := p.Call([]string{"label", "hello", "unknown", "ignored"})
	require.NoError(t, err)
	result := <-ch
	require.NoError(t, result.Err)

	v, err := p.GetVariable("label")
	require.NoError(t, err)
	assert.Equal(t, "hello", v.ToString())
}
