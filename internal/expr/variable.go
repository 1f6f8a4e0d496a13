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

// Package expr implements the scene expression language (C4): a small
// hand-rolled recursive-descent/precedence-climbing parser that compiles a
// string expression (as typed into a scene layer's adjustment field) into a
// live binding.Binding, reacting to every variable it references.
// Ground-matched on original_source/core/producer/scene/expression_parser.cpp
// and original_source/core/producer/variable.h.
package expr

import (
	"strconv"

	"github.com/e1z0/caspar-core/internal/binding"
	"github.com/e1z0/caspar-core/internal/corerr"
)

// Kind tags which concrete Binding type a Variable wraps. Go has no
// dynamic_cast, so where the original's variable::is<T>()/as<T>() pair
// relies on RTTI, Variable carries its Kind explicitly and exposes one
// typed accessor per Kind.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindString
	KindBool
)

// Variable is the named, typed, optionally-public binding cell a scene
// layer or producer exposes under a name — the Go counterpart of
// variable_impl<T>, collapsed into one type switched on Kind since Go
// generics can't give a single type an optional type parameter per
// instance.
type Variable struct {
	originalExpr string
	isPublic     bool
	kind         Kind

	floatValue  *binding.Binding[float64]
	intValue    *binding.Binding[int64]
	stringValue *binding.Binding[string]
	boolValue   *binding.Binding[bool]
}

// NewFloatVariable constructs a float64-typed variable.
func NewFloatVariable(originalExpr string, isPublic bool, initial float64) *Variable {
	return &Variable{originalExpr: originalExpr, isPublic: isPublic, kind: KindFloat, floatValue: binding.NewValue(initial)}
}

// NewIntVariable constructs an int64-typed variable.
func NewIntVariable(originalExpr string, isPublic bool, initial int64) *Variable {
	return &Variable{originalExpr: originalExpr, isPublic: isPublic, kind: KindInt, intValue: binding.NewValue(initial)}
}

// NewStringVariable constructs a string-typed variable.
func NewStringVariable(originalExpr string, isPublic bool, initial string) *Variable {
	return &Variable{originalExpr: originalExpr, isPublic: isPublic, kind: KindString, stringValue: binding.NewValue(initial)}
}

// NewBoolVariable constructs a bool-typed variable.
func NewBoolVariable(originalExpr string, isPublic bool, initial bool) *Variable {
	return &Variable{originalExpr: originalExpr, isPublic: isPublic, kind: KindBool, boolValue: binding.NewValue(initial)}
}

func (v *Variable) OriginalExpr() string { return v.originalExpr }
func (v *Variable) IsPublic() bool       { return v.isPublic }
func (v *Variable) Kind() Kind           { return v.kind }

func (v *Variable) IsFloat() bool  { return v.kind == KindFloat }
func (v *Variable) IsInt() bool    { return v.kind == KindInt }
func (v *Variable) IsString() bool { return v.kind == KindString }
func (v *Variable) IsBool() bool   { return v.kind == KindBool }

// AsFloat returns the underlying binding, or nil if this variable isn't
// float-typed — ground: variable::as<T>()'s dynamic_cast.
func (v *Variable) AsFloat() *binding.Binding[float64] { return v.floatValue }
func (v *Variable) AsInt() *binding.Binding[int64]     { return v.intValue }
func (v *Variable) AsString() *binding.Binding[string] { return v.stringValue }
func (v *Variable) AsBool() *binding.Binding[bool]     { return v.boolValue }

// FromString parses raw and assigns it, converting per Kind — ground:
// variable_impl<T>::from_string's boost::lexical_cast<T>.
func (v *Variable) FromString(raw string) error {
	switch v.kind {
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return corerr.NewUserError(0, "%q is not a valid number", raw)
		}
		return v.floatValue.Set(f)
	case KindInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return corerr.NewUserError(0, "%q is not a valid integer", raw)
		}
		return v.intValue.Set(i)
	case KindString:
		return v.stringValue.Set(raw)
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return corerr.NewUserError(0, "%q is not a valid boolean", raw)
		}
		return v.boolValue.Set(b)
	default:
		return corerr.NewProgrammingError("variable has no kind")
	}
}

// ToString renders the variable's current value — ground:
// variable_impl<T>::to_string's boost::lexical_cast<wstring>.
func (v *Variable) ToString() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.floatValue.Get(), 'g', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.intValue.Get(), 10)
	case KindString:
		return v.stringValue.Get()
	case KindBool:
		return strconv.FormatBool(v.boolValue.Get())
	default:
		return ""
	}
}

// Repository resolves a variable by name, e.g. a scene's "layer1.width" or
// the frame-counter pseudo-variable "frame" — ground: variable_repository,
// the std::function parse_expression takes for name resolution.
type Repository func(name string) (*Variable, error)
