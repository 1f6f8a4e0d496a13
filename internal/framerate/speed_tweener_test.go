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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/e1z0/caspar-core/internal/frame"
)

func TestUnitSpeedTweenerAlwaysFetchesOne(t *testing.T) {
	s := UnitSpeedTweener()
	for i := 0; i < 5; i++ {
		assert.Equal(t, big.NewRat(1, 1), s.FetchAndTick())
	}
}

func TestSpeedTweenerReachesDestinationExactlyAtDuration(t *testing.T) {
	s := NewSpeedTweener(big.NewRat(1, 1), big.NewRat(1, 2), 4, frame.Linear)

	for i := 0; i < 3; i++ {
		v := s.FetchAndTick()
		assert.NotEqual(t, big.NewRat(1, 2), v)
	}
	assert.Equal(t, big.NewRat(1, 2), s.FetchAndTick())
	// Further ticks clamp at duration and keep returning dest exactly.
	assert.Equal(t, big.NewRat(1, 2), s.FetchAndTick())
}

func TestZeroDurationSpeedTweenerIsImmediatelyAtDest(t *testing.T) {
	s := NewSpeedTweener(big.NewRat(1, 1), big.NewRat(1, 4), 0, frame.Linear)
	assert.Equal(t, big.NewRat(1, 4), s.Fetch())
}
