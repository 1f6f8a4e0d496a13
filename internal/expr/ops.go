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
	"strconv"

	"github.com/e1z0/caspar-core/internal/binding"
	"github.com/e1z0/caspar-core/internal/corerr"
)

// asBinding wraps a raw constant (float64/bool/string) as a settable
// binding of the matching type, or passes an already-wrapped binding
// through unchanged — ground: expression_parser.cpp's as_binding.
func asBinding(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return binding.NewValue(v), nil
	case bool:
		return binding.NewValue(v), nil
	case string:
		return binding.NewValue(v), nil
	case *binding.Binding[float64], *binding.Binding[bool], *binding.Binding[string]:
		return v, nil
	default:
		return nil, corerr.NewUserError(0, "couldn't detect type of %T", value)
	}
}

func requireFloat(value any) (*binding.Binding[float64], error) {
	b, err := asBinding(value)
	if err != nil {
		return nil, err
	}
	fb, ok := b.(*binding.Binding[float64])
	if !ok {
		return nil, corerr.NewUserError(0, "required a numeric binding but got %T", value)
	}
	return fb, nil
}

func requireBool(value any) (*binding.Binding[bool], error) {
	b, err := asBinding(value)
	if err != nil {
		return nil, err
	}
	bb, ok := b.(*binding.Binding[bool])
	if !ok {
		return nil, corerr.NewUserError(0, "required a boolean binding but got %T", value)
	}
	return bb, nil
}

func requireString(value any) (*binding.Binding[string], error) {
	b, err := asBinding(value)
	if err != nil {
		return nil, err
	}
	sb, ok := b.(*binding.Binding[string])
	if !ok {
		return nil, corerr.NewUserError(0, "required a string binding but got %T", value)
	}
	return sb, nil
}

// stringify renders any supported binding as a string binding — ground:
// expression_parser.cpp's stringify, used by add() to concatenate
// mixed-type operands.
func stringify(value any) (*binding.Binding[string], error) {
	b, err := asBinding(value)
	if err != nil {
		return nil, err
	}
	switch x := b.(type) {
	case *binding.Binding[string]:
		return x, nil
	case *binding.Binding[float64]:
		return binding.Transformed(x, func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }), nil
	case *binding.Binding[bool]:
		return binding.Transformed(x, func(v bool) string { return strconv.FormatBool(v) }), nil
	default:
		return nil, corerr.NewUserError(0, "couldn't stringify %T", value)
	}
}

func negative(value any) (any, error) {
	fb, err := requireFloat(value)
	if err != nil {
		return nil, err
	}
	return binding.Transformed(fb, func(v float64) float64 { return -v }), nil
}

func not_(value any) (any, error) {
	bb, err := requireBool(value)
	if err != nil {
		return nil, err
	}
	return binding.Transformed(bb, func(v bool) bool { return !v }), nil
}

func multiply(lhs, rhs any) (any, error) {
	l, err := requireFloat(lhs)
	if err != nil {
		return nil, err
	}
	r, err := requireFloat(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(l, r, func(a, b float64) float64 { return a * b }), nil
}

func divide(lhs, rhs any) (any, error) {
	l, err := requireFloat(lhs)
	if err != nil {
		return nil, err
	}
	r, err := requireFloat(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(l, r, func(a, b float64) float64 { return a / b }), nil
}

func modulus(lhs, rhs any) (any, error) {
	l, err := requireFloat(lhs)
	if err != nil {
		return nil, err
	}
	r, err := requireFloat(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(l, r, func(a, b float64) float64 { return float64(int64(a) % int64(b)) }), nil
}

func add(lhs, rhs any) (any, error) {
	l, err := asBinding(lhs)
	if err != nil {
		return nil, err
	}
	r, err := asBinding(rhs)
	if err != nil {
		return nil, err
	}

	if lf, ok := l.(*binding.Binding[float64]); ok {
		if rf, ok2 := r.(*binding.Binding[float64]); ok2 {
			return binding.Composed(lf, rf, func(a, b float64) float64 { return a + b }), nil
		}
	}
	if ls, ok := l.(*binding.Binding[string]); ok {
		if rs, ok2 := r.(*binding.Binding[string]); ok2 {
			return binding.Composed(ls, rs, func(a, b string) string { return a + b }), nil
		}
	}

	ls, err := stringify(lhs)
	if err != nil {
		return nil, err
	}
	rs, err := stringify(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(ls, rs, func(a, b string) string { return a + b }), nil
}

func subtract(lhs, rhs any) (any, error) {
	l, err := requireFloat(lhs)
	if err != nil {
		return nil, err
	}
	r, err := requireFloat(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(l, r, func(a, b float64) float64 { return a - b }), nil
}

func less(lhs, rhs any) (any, error) {
	l, err := requireFloat(lhs)
	if err != nil {
		return nil, err
	}
	r, err := requireFloat(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(l, r, func(a, b float64) bool { return a < b }), nil
}

func lessOrEqual(lhs, rhs any) (any, error) {
	l, err := requireFloat(lhs)
	if err != nil {
		return nil, err
	}
	r, err := requireFloat(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(l, r, func(a, b float64) bool { return a <= b }), nil
}

func greater(lhs, rhs any) (any, error) {
	l, err := requireFloat(lhs)
	if err != nil {
		return nil, err
	}
	r, err := requireFloat(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(l, r, func(a, b float64) bool { return a > b }), nil
}

func greaterOrEqual(lhs, rhs any) (any, error) {
	l, err := requireFloat(lhs)
	if err != nil {
		return nil, err
	}
	r, err := requireFloat(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(l, r, func(a, b float64) bool { return a >= b }), nil
}

func equal(lhs, rhs any) (any, error) {
	l, err := asBinding(lhs)
	if err != nil {
		return nil, err
	}
	r, err := asBinding(rhs)
	if err != nil {
		return nil, err
	}

	if lf, ok := l.(*binding.Binding[float64]); ok {
		if rf, ok2 := r.(*binding.Binding[float64]); ok2 {
			return binding.Composed(lf, rf, func(a, b float64) bool { return a == b }), nil
		}
	}
	if ls, ok := l.(*binding.Binding[string]); ok {
		if rs, ok2 := r.(*binding.Binding[string]); ok2 {
			return binding.Composed(ls, rs, func(a, b string) bool { return a == b }), nil
		}
	}

	lb, err := requireBool(l)
	if err != nil {
		return nil, err
	}
	rb, err := requireBool(r)
	if err != nil {
		return nil, err
	}
	return binding.Composed(lb, rb, func(a, b bool) bool { return a == b }), nil
}

func and_(lhs, rhs any) (any, error) {
	l, err := requireBool(lhs)
	if err != nil {
		return nil, err
	}
	r, err := requireBool(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(l, r, func(a, b bool) bool { return a && b }), nil
}

func or_(lhs, rhs any) (any, error) {
	l, err := requireBool(lhs)
	if err != nil {
		return nil, err
	}
	r, err := requireBool(rhs)
	if err != nil {
		return nil, err
	}
	return binding.Composed(l, r, func(a, b bool) bool { return a || b }), nil
}

// ternary dispatches to the generic binding.Then/Otherwise pair for
// whichever of the three supported result types cond/t/f actually carry.
func ternary(cond, trueValue, falseValue any) (any, error) {
	c, err := requireBool(cond)
	if err != nil {
		return nil, err
	}
	t, err := asBinding(trueValue)
	if err != nil {
		return nil, err
	}
	f, err := asBinding(falseValue)
	if err != nil {
		return nil, err
	}

	if tf, ok := t.(*binding.Binding[float64]); ok {
		if ff, ok2 := f.(*binding.Binding[float64]); ok2 {
			return binding.Then(binding.When(c), tf).Otherwise(ff), nil
		}
	}
	if ts, ok := t.(*binding.Binding[string]); ok {
		if fs, ok2 := f.(*binding.Binding[string]); ok2 {
			return binding.Then(binding.When(c), ts).Otherwise(fs), nil
		}
	}

	tb, err := requireBool(t)
	if err != nil {
		return nil, err
	}
	fb, err := requireBool(f)
	if err != nil {
		return nil, err
	}
	return binding.Then(binding.When(c), tb).Otherwise(fb), nil
}
