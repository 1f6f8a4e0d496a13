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
package expr

import (
	"math"

	"github.com/e1z0/caspar-core/internal/binding"
	"github.com/e1z0/caspar-core/internal/corerr"
)

// functionType is the signature every FUNCTIONS entry implements — ground:
// expression_parser.cpp's FUNCTIONS map value type.
type functionType func(params []any, repo Repository) (any, error)

var functionTable = map[string]functionType{
	"animate": createAnimateFunction,
	"sin":     createSinFunction,
	"cos":     createCosFunction,
}

func intToFloatBinding(b *binding.Binding[int64]) *binding.Binding[float64] {
	return binding.Transformed(b, func(v int64) float64 { return float64(v) })
}

func createAnimateFunction(params []any, repo Repository) (any, error) {
	if len(params) != 3 {
		return nil, corerr.NewUserError(0, "animate() function requires three parameters: to_animate, duration, tweener")
	}

	toAnimate, err := requireFloat(params[0])
	if err != nil {
		return nil, err
	}

	frameVar, err := repo("frame")
	if err != nil {
		return nil, err
	}
	if !frameVar.IsInt() {
		return nil, corerr.NewUserError(0, "the \"frame\" variable must be int64-typed")
	}
	frameCounter := intToFloatBinding(frameVar.AsInt())

	duration, err := requireFloat(params[1])
	if err != nil {
		return nil, err
	}

	tweenerName, err := requireString(params[2])
	if err != nil {
		return nil, err
	}
	tw, err := lookupTweener(tweenerName.Get())
	if err != nil {
		return nil, err
	}

	return binding.Animated(toAnimate, frameCounter, duration, tw), nil
}

func createSinFunction(params []any, repo Repository) (any, error) {
	if len(params) != 1 {
		return nil, corerr.NewUserError(0, "sin() function requires one parameter: angle")
	}
	angle, err := requireFloat(params[0])
	if err != nil {
		return nil, err
	}
	return binding.Transformed(angle, math.Sin), nil
}

func createCosFunction(params []any, repo Repository) (any, error) {
	if len(params) != 1 {
		return nil, corerr.NewUserError(0, "cos() function requires one parameter: angle")
	}
	angle, err := requireFloat(params[0])
	if err != nil {
		return nil, err
	}
	return binding.Transformed(angle, math.Cos), nil
}
