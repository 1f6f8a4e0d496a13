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
package sidedata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestValidPositionRangeFormula is the §8 universal invariant: for the
// side-data queue with MAX=512, after K add_frame calls,
// valid_position_range() == [max(0, K-512), K).
func TestValidPositionRangeFormula(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := rapid.IntRange(0, 2000).Draw(t, "k")
		q := NewQueue()
		for i := 0; i < k; i++ {
			q.Add([]Record{NewRecord(TypeA53CC, []byte{byte(i)})})
		}

		start, end := q.ValidPositionRange()
		wantStart := int64(0)
		if k > MaxFrames {
			wantStart = int64(k - MaxFrames)
		}
		assert.Equal(t, wantStart, start)
		assert.Equal(t, int64(k), end)
	})
}

func TestGetOutsideRangeReturnsNotOK(t *testing.T) {
	q := NewQueue()
	_, ok := q.Get(0)
	assert.False(t, ok)

	pos := q.Add([]Record{NewRecord(TypeA53CC, []byte{0xAA})})
	got, ok := q.Get(pos)
	assert.True(t, ok)
	assert.Equal(t, []Record{NewRecord(TypeA53CC, []byte{0xAA})}, got)
}

func TestOverflowEvictsOldest(t *testing.T) {
	q := NewQueue()
	for i := 0; i < MaxFrames+10; i++ {
		q.Add([]Record{NewRecord(TypeA53CC, []byte{byte(i)})})
	}
	_, ok := q.Get(5) // well within the evicted range
	assert.False(t, ok)

	start, end := q.ValidPositionRange()
	assert.Equal(t, int64(10), start)
	assert.Equal(t, int64(MaxFrames+10), end)
}

func TestIncludeOnDuplicateFrames(t *testing.T) {
	assert.False(t, IncludeOnDuplicateFrames(TypeA53CC))
}
