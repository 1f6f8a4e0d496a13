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
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewCadenceRotatesRightOnConstruction covers the one-step-rotated
// 1001-mode cadence named in the grounding source's comment.
func TestNewCadenceRotatesRightOnConstruction(t *testing.T) {
	c := NewCadence([]int{1602, 1602, 1601, 1602, 1601})
	assert.Equal(t, 1601, c.Front())
}

// TestRotateAdvancesToNextCadenceSlot covers the per-output-frame
// rotate-left used by attach_sound.
func TestRotateAdvancesToNextCadenceSlot(t *testing.T) {
	c := NewCadence([]int{1602, 1602, 1601, 1602, 1601})
	var seen []int
	for i := 0; i < 5; i++ {
		seen = append(seen, c.Front())
		c.Rotate()
	}
	assert.Equal(t, []int{1601, 1602, 1602, 1601, 1602}, seen)
}

func TestSafetyMarginIsMaxMinusMin(t *testing.T) {
	c := NewCadence([]int{1602, 1602, 1601, 1602, 1601})
	assert.Equal(t, 1, c.SafetyMargin())
}

func TestSingleElementCadenceNeverRotates(t *testing.T) {
	c := NewCadence([]int{1920})
	assert.Equal(t, 1920, c.Front())
	c.Rotate()
	assert.Equal(t, 1920, c.Front())
	assert.Equal(t, 0, c.SafetyMargin())
}
