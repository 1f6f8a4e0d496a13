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
	"math"
	"strings"

	"github.com/golang/geo/r2"

	"github.com/e1z0/caspar-core/internal/binding"
	"github.com/e1z0/caspar-core/internal/core"
	"github.com/e1z0/caspar-core/internal/corerr"
	"github.com/e1z0/caspar-core/internal/expr"
	"github.com/e1z0/caspar-core/internal/frame"
	"github.com/e1z0/caspar-core/internal/interaction"
	"github.com/e1z0/caspar-core/internal/logging"
)

var log = logging.For("scene")

// Producer is the scene producer (C5): an ordered list of layers, a
// frame-counter + speed binding pair, a set of named variables, and a
// per-binding keyframe timeline, composited every RenderFrame call into one
// draw frame. Ground-matched on scene_producer::impl.
type Producer struct {
	width, height float64

	layers []*Layer

	frameNumber *binding.Binding[int64]
	speed       *binding.Binding[float64]
	frameFraction float64

	timelines map[any]*timeline

	variables     map[string]*expr.Variable
	variableNames []string

	aggregator *interaction.Aggregator
}

// NewProducer constructs an empty scene at the given pixel dimensions,
// ground-matched on scene_producer::impl's constructor: registers the
// public "scene_speed" and "frame" variables and binds frame_number_/speed_
// to them.
func NewProducer(width, height int) *Producer {
	p := &Producer{
		width:     float64(width),
		height:    float64(height),
		timelines: make(map[any]*timeline),
		variables: make(map[string]*expr.Variable),
	}

	speedVar := expr.NewFloatVariable("1.0", true, 1.0)
	p.storeVariable("scene_speed", speedVar)
	p.speed = speedVar.AsFloat()

	frameVar := expr.NewIntVariable("0", true, 0)
	p.storeVariable("frame", frameVar)
	p.frameNumber = frameVar.AsInt()

	p.aggregator = interaction.NewAggregator(func(x, y float64) (interaction.Target, bool) {
		return p.collisionDetect(x, y)
	})

	return p
}

func (p *Producer) storeVariable(name string, v *expr.Variable) {
	p.variables[name] = v
	p.variableNames = append(p.variableNames, name)
}

// CreateLayer appends a new layer wrapping producer at (x, y), ground-
// matched on scene_producer::impl::create_layer.
func (p *Producer) CreateLayer(producer core.Producer, x, y int, name string) *Layer {
	layer := NewLayer(name, producer)
	_ = layer.Position.X.Set(float64(x))
	_ = layer.Position.Y.Set(float64(y))
	p.layers = append(p.layers, layer)
	return layer
}

// CreateLayerAt0 is CreateLayer with position (0, 0), ground-matched on the
// header's two-argument create_layer overload.
func (p *Producer) CreateLayerAt0(producer core.Producer, name string) *Layer {
	return p.CreateLayer(producer, 0, 0, name)
}

// ReverseLayers reverses render (and therefore hit-test) order in place.
func (p *Producer) ReverseLayers() {
	for i, j := 0, len(p.layers)-1; i < j; i, j = i+1, j-1 {
		p.layers[i], p.layers[j] = p.layers[j], p.layers[i]
	}
}

// Frame returns the scene's frame-counter binding.
func (p *Producer) Frame() *binding.Binding[int64] { return p.frameNumber }

// Speed returns the scene's speed binding.
func (p *Producer) Speed() *binding.Binding[float64] { return p.speed }

// CreateVariable registers a new public or private named variable, parsing
// expr as the variable's initial expression when non-empty, ground-matched
// on scene_producer::create_variable<T>.
func (p *Producer) CreateVariable(kind expr.Kind, name string, isPublic bool, initialExpr string) (*expr.Variable, error) {
	var v *expr.Variable
	switch kind {
	case expr.KindFloat:
		v = expr.NewFloatVariable(initialExpr, isPublic, 0)
	case expr.KindInt:
		v = expr.NewIntVariable(initialExpr, isPublic, 0)
	case expr.KindString:
		v = expr.NewStringVariable(initialExpr, isPublic, "")
	case expr.KindBool:
		v = expr.NewBoolVariable(initialExpr, isPublic, false)
	default:
		return nil, corerr.NewProgrammingError("unknown variable kind")
	}

	if initialExpr != "" {
		parsed, err := expr.Parse(initialExpr, p.resolveVariable)
		if err != nil {
			return nil, err
		}
		if err := bindVariableToExpr(v, parsed); err != nil {
			return nil, err
		}
	}

	p.storeVariable(name, v)
	return v, nil
}

func bindVariableToExpr(v *expr.Variable, parsed any) error {
	switch v.Kind() {
	case expr.KindFloat:
		b, ok := parsed.(*binding.Binding[float64])
		if !ok {
			return corerr.NewUserError(-1, "expression does not evaluate to a number")
		}
		return v.AsFloat().Bind(b)
	case expr.KindString:
		b, ok := parsed.(*binding.Binding[string])
		if !ok {
			return corerr.NewUserError(-1, "expression does not evaluate to a string")
		}
		return v.AsString().Bind(b)
	case expr.KindBool:
		b, ok := parsed.(*binding.Binding[bool])
		if !ok {
			return corerr.NewUserError(-1, "expression does not evaluate to a bool")
		}
		return v.AsBool().Bind(b)
	default:
		return corerr.NewProgrammingError("variable kind %v cannot be expression-bound", v.Kind())
	}
}

// resolveVariable implements expr.Repository over this scene's variable map
// plus the pseudo-variable "frame", ground-matched on variable_repository
// lookups threaded through parse_expression call sites.
func (p *Producer) resolveVariable(name string) (*expr.Variable, error) {
	v, ok := p.variables[strings.ToLower(name)]
	if !ok {
		return nil, corerr.NewNotFoundError("variable " + name)
	}
	return v, nil
}

// GetVariable returns the named variable, ground-matched on
// scene_producer::get_variable.
func (p *Producer) GetVariable(name string) (*expr.Variable, error) {
	return p.resolveVariable(name)
}

// GetVariables returns every registered variable name in registration order.
func (p *Producer) GetVariables() []string { return p.variableNames }

// timelineFor returns (creating if necessary) the timeline for a given
// binding identity, ground-matched on store_keyframe's
// timelines_[timeline_identity].
func (p *Producer) timelineFor(identity any) *timeline {
	t, ok := p.timelines[identity]
	if !ok {
		t = newTimeline()
		p.timelines[identity] = t
	}
	return t
}

// AddKeyframeValue schedules toAffect to become destinationValue at
// atFrame, tweened via easing from whatever value toAffect holds when the
// keyframe preceding it last fired — ground-matched on the three-argument
// add_keyframe<T>(to_affect, destination_value, at_frame, easing) overload,
// specialized to float64 (the only concrete type the original ever
// instantiates this template with — layer positions and opacity).
func (p *Producer) AddKeyframeValue(toAffect *binding.Binding[float64], destinationValue float64, atFrame int64, easing string) {
	p.AddKeyframeBinding(toAffect, binding.NewValue(destinationValue), atFrame, easing)
}

// AddKeyframeBinding is AddKeyframeValue's binding-valued destination
// overload.
func (p *Producer) AddKeyframeBinding(toAffect *binding.Binding[float64], destinationValue *binding.Binding[float64], atFrame int64, easing string) {
	if easing == "" {
		p.SetKeyframeBinding(toAffect, destinationValue, atFrame)
		return
	}

	tween := lookupTweenerOrLinear(easing)
	startValue := new(float64)

	k := &Keyframe{DestinationFrame: atFrame}
	k.OnStartAnimate = func() {
		*startValue = toAffect.Get()
		toAffect.Unbind()
	}
	k.OnDestinationFrame = func() {
		_ = toAffect.Bind(destinationValue)
	}
	k.OnAnimateTo = func(startFrame, currentFrame int64) {
		relativeFrame := currentFrame - startFrame
		duration := atFrame - startFrame
		tweened := tween(float64(relativeFrame), *startValue, destinationValue.Get()-*startValue, float64(duration))
		_ = toAffect.Set(tweened)
	}

	p.timelineFor(toAffect.Identity()).add(k)
}

// SetKeyframeValue schedules toAffect to jump to setValue at atFrame with
// no tweening, ground-matched on the two-argument add_keyframe overload.
func (p *Producer) SetKeyframeValue(toAffect *binding.Binding[float64], setValue float64, atFrame int64) {
	p.SetKeyframeBinding(toAffect, binding.NewValue(setValue), atFrame)
}

// SetKeyframeBinding is SetKeyframeValue's binding-valued overload.
func (p *Producer) SetKeyframeBinding(toAffect *binding.Binding[float64], setValue *binding.Binding[float64], atFrame int64) {
	k := &Keyframe{DestinationFrame: atFrame}
	k.OnDestinationFrame = func() { _ = toAffect.Bind(setValue) }
	p.timelineFor(toAffect.Identity()).add(k)
}

func lookupTweenerOrLinear(name string) func(time, source, delta, duration float64) float64 {
	tw, err := expr.LookupTweener(name)
	if err != nil {
		return frame.Linear
	}
	return tw
}

// getTransform computes layer's transform for the current frame, ground-
// matched line for line on scene_producer::impl::get_transform: position
// and producer size are normalized by the scene's own pixel dimensions,
// opacity and is_key are copied straight through.
func (p *Producer) getTransform(layer *Layer) frame.Transform {
	t := frame.DefaultTransform()

	constraints := layer.Producer.PixelConstraints()

	t.Image.FillTranslation[0] = layer.Position.X.Get() / p.width
	t.Image.FillTranslation[1] = layer.Position.Y.Get() / p.height
	t.Image.FillScale[0] = constraints.Width.Get() / p.width
	t.Image.FillScale[1] = constraints.Height.Get() / p.height

	t.Image.Opacity = layer.Adjustments.Opacity.Get()
	t.Image.IsKey = layer.IsKey.Get()

	return t
}

// GetTransform is getTransform's exported form, used by the scene tests to
// read a layer's current composited transform without rendering.
func (p *Producer) GetTransform(layer *Layer) frame.Transform { return p.getTransform(layer) }

// RenderFrame dispatches every timeline for the current frame, composites
// one draw-frame per non-hidden layer with its computed transform, and
// advances the frame counter by the fractional speed accumulator — ground-
// matched on scene_producer::impl::render_frame.
func (p *Producer) RenderFrame() *frame.DrawFrame {
	current := p.frameNumber.Get()
	for _, t := range p.timelines {
		t.onFrame(current)
	}

	var frames []*frame.DrawFrame
	for _, layer := range p.layers {
		if layer.Hidden.Get() {
			continue
		}
		df := layer.Producer.ReceiveImpl()
		df.SetTransform(p.getTransform(layer))
		frames = append(frames, df)
	}

	p.frameFraction += p.speed.Get()
	if math.Abs(p.frameFraction) >= 1.0 {
		delta := int64(p.frameFraction)
		_ = p.frameNumber.Set(current + delta)
		p.frameFraction -= float64(delta)
	}

	return frame.Composite(frames)
}

// OnInteraction translates and routes event through the scene's
// interaction aggregator — ground-matched on scene_producer::on_interaction.
func (p *Producer) OnInteraction(event interaction.Event) {
	p.aggregator.TranslateAndSend(event)
}

// Collides reports whether (x, y) hits any visible layer, ground-matched on
// scene_producer::collides.
func (p *Producer) Collides(x, y float64) bool {
	_, ok := p.collisionDetect(x, y)
	return ok
}

// collisionDetect walks layers back to front (reverse render order, so the
// topmost visible layer wins), translating (x, y) into each layer's local
// [0,1]x[0,1] space and delegating to the layer's own Collider if it hit —
// ground-matched on collission_detect.
func (p *Producer) collisionDetect(x, y float64) (interaction.Target, bool) {
	for i := len(p.layers) - 1; i >= 0; i-- {
		layer := p.layers[i]
		if layer.Hidden.Get() {
			continue
		}

		transform := p.getTransform(layer)
		tx, ty := inverseTranslate(x, y, transform)

		if !unitSquare.ContainsPoint(r2.Point{X: tx, Y: ty}) {
			continue
		}

		collider, ok := layer.Producer.(core.Collider)
		if !ok || !collider.Collides(tx, ty) {
			continue
		}

		sink, _ := layer.Producer.(interaction.Sink)
		return interaction.Target{Transform: transform, Sink: sink}, true
	}
	return interaction.Target{}, false
}

// inverseTranslate applies transform's inverse fill translation/scale to
// (x, y), the scene-producer-local duplicate of util.h's translate() (the
// interaction package's unexported translate does the same math on raw
// coordinates but returns (x, y) unchanged for an identity fill; this copy
// always divides).
func inverseTranslate(x, y float64, transform frame.Transform) (float64, float64) {
	fillX := transform.Image.FillTranslation[0]
	fillY := transform.Image.FillTranslation[1]
	scaleX := transform.Image.FillScale[0]
	scaleY := transform.Image.FillScale[1]
	return (x - fillX) / scaleX, (y - fillY) / scaleY
}

// Call writes alternating (name, value) pairs into this scene's public
// variables, silently ignoring unknown or private names — ground-matched on
// scene_producer::impl::call.
func (p *Producer) Call(params []string) (<-chan core.CallResult, error) {
	for i := 0; i+1 < len(params); i += 2 {
		v, ok := p.variables[strings.ToLower(params[i])]
		if ok && v.IsPublic() {
			if err := v.FromString(params[i+1]); err != nil {
				log.Warn().Err(err).Str("variable", params[i]).Msg("scene call: could not parse value")
			}
		}
	}
	return core.Ready("", nil), nil
}

// PixelConstraints reports the scene's own fixed dimensions.
func (p *Producer) PixelConstraints() core.PixelConstraints {
	return core.NewPixelConstraints(p.width, p.height)
}

// ReceiveImpl satisfies core.Producer so a scene can itself be embedded as
// a layer's producer.
func (p *Producer) ReceiveImpl() *frame.DrawFrame { return p.RenderFrame() }

func (p *Producer) Print() string { return "scene[]" }
func (p *Producer) Name() string  { return "scene" }

var _ core.Producer = (*Producer)(nil)
var _ core.Collider = (*Producer)(nil)
var _ interaction.Sink = (*Producer)(nil)
