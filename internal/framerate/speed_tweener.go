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
package framerate

import (
	"math/big"

	"github.com/e1z0/caspar-core/internal/frame"
)

// SpeedTweener is the rational analogue of frame.TweenedTransform: an
// exact-rational source→dest interpolation over a frame count, driven by
// repeated FetchAndTick calls, ground-matched on speed_tweener
// (framerate_producer.cpp:144-188).
type SpeedTweener struct {
	source, dest *big.Rat
	duration     int
	time         int
	tweener      frame.Tweener
}

// UnitSpeedTweener is the default speed_tweener(): source == dest == 1, so
// Fetch() always returns exactly 1 regardless of tick count.
func UnitSpeedTweener() SpeedTweener {
	one := big.NewRat(1, 1)
	return SpeedTweener{source: one, dest: one, tweener: frame.Linear}
}

// NewSpeedTweener constructs a tween from source to dest over duration
// frames using tween, ground-matched on speed_tweener's parameterized
// constructor.
func NewSpeedTweener(source, dest *big.Rat, duration int, tween frame.Tweener) SpeedTweener {
	if tween == nil {
		tween = frame.Linear
	}
	return SpeedTweener{source: source, dest: dest, duration: duration, tweener: tween}
}

// Dest returns the tween's destination value.
func (s SpeedTweener) Dest() *big.Rat { return s.dest }

// Fetch returns dest exactly once time has reached duration, otherwise the
// tweened value truncated to 1e-6 precision (ground: fetch's
// rational<int64_t>(result * 1000000.0, 1000000) truncation).
func (s SpeedTweener) Fetch() *big.Rat {
	if s.time == s.duration {
		return s.dest
	}

	sourceF, _ := s.source.Float64()
	destF, _ := s.dest.Float64()
	result := s.tweener(float64(s.time), sourceF, destF-sourceF, float64(s.duration))
	return new(big.Rat).SetFrac64(int64(result*1000000.0), 1000000)
}

// FetchAndTick advances time by one frame, clamped to duration, and returns
// Fetch().
func (s *SpeedTweener) FetchAndTick() *big.Rat {
	s.time++
	if s.time > s.duration {
		s.time = s.duration
	}
	return s.Fetch()
}
