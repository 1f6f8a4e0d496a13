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
package mixer

import (
	"testing"

	"github.com/e1z0/caspar-core/internal/frame"
	"github.com/e1z0/caspar-core/internal/sidedata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafWithSideData(q *sidedata.Queue, rec sidedata.Record) *frame.DrawFrame {
	pos := q.Add([]sidedata.Record{rec})
	cf := &frame.ConstFrame{
		SideData: frame.SideDataRef{Valid: true, Position: pos, Queue: q},
	}
	return frame.Leaf(cf)
}

// TestSideDataSuppressedOnStillDuplicate is concrete scenario 3 from §8: a
// draw frame with a53_cc=[0xAA] rendered twice via still: first output mix
// contains 0xAA, second contains no a53_cc.
func TestSideDataSuppressedOnStillDuplicate(t *testing.T) {
	q := sidedata.NewQueue()
	rec := sidedata.NewRecord(sidedata.TypeA53CC, []byte{0xAA})
	leaf := leafWithSideData(q, rec)

	m := NewMixer()

	frame.Accept(leaf, m)
	first := m.Mixed()
	require.Equal(t, []sidedata.Record{rec}, first)

	still := frame.Still(leaf)
	frame.Accept(still, m)
	second := m.Mixed()
	assert.Empty(t, second, "a53_cc must not repeat on the duplicate still frame")
}

func TestMultipleA53CCSourcesWarnsAndKeepsFirst(t *testing.T) {
	q := sidedata.NewQueue()
	recA := sidedata.NewRecord(sidedata.TypeA53CC, []byte{0x01})
	recB := sidedata.NewRecord(sidedata.TypeA53CC, []byte{0x02})

	leafA := leafWithSideData(q, recA)
	leafB := leafWithSideData(q, recB)
	root := frame.Over(leafA, leafB)

	m := NewMixer()
	frame.Accept(root, m)
	mixed := m.Mixed()

	require.Len(t, mixed, 1)
	assert.Equal(t, recA, mixed[0], "the first source seen wins; the second only raises a warning")
}

func TestNoSideDataWhenClosedCaptionsDisabled(t *testing.T) {
	q := sidedata.NewQueue()
	rec := sidedata.NewRecord(sidedata.TypeA53CC, []byte{0xAA})
	leaf := leafWithSideData(q, rec)
	leaf.SetTransform(func() frame.Transform {
		tr := frame.DefaultTransform()
		tr.SideData.UseClosedCaptions = false
		return tr
	}())

	m := NewMixer()
	frame.Accept(leaf, m)
	assert.Empty(t, m.Mixed())
}
