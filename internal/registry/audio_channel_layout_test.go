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
package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e1z0/caspar-core/internal/config"
)

func TestNewChannelLayoutSplitsAndUppercases(t *testing.T) {
	l, err := NewChannelLayout(2, "stereo", "FL FR")
	require.NoError(t, err)

	assert.Equal(t, 2, l.NumChannels)
	assert.Equal(t, "STEREO", l.Type)
	assert.Equal(t, []string{"FL", "FR"}, l.ChannelOrder)
}

func TestNewChannelLayoutBlankOrderIsEmpty(t *testing.T) {
	l, err := NewChannelLayout(2, "stereo", "")
	require.NoError(t, err)
	assert.Empty(t, l.ChannelOrder)
}

func TestNewChannelLayoutRejectsNonPositiveChannelCount(t *testing.T) {
	_, err := NewChannelLayout(0, "mono", "FC")
	assert.Error(t, err)
}

func TestNewChannelLayoutRejectsReservedMixSyntax(t *testing.T) {
	_, err := NewChannelLayout(2, "stereo", "FL<FR")
	assert.Error(t, err)
}

func TestNewChannelLayoutRejectsMoreNamesThanChannels(t *testing.T) {
	_, err := NewChannelLayout(1, "mono", "FL FR")
	assert.Error(t, err)
}

func TestChannelLayoutIndexesOfFindsAllMatches(t *testing.T) {
	l, err := NewChannelLayout(4, "quad", "FL FR FL FR")
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, l.IndexesOf("FL"))
	assert.Equal(t, []int{1, 3}, l.IndexesOf("FR"))
	assert.Nil(t, l.IndexesOf("LFE"))
}

func TestChannelLayoutRepositoryRegisterAndGetIsCaseInsensitive(t *testing.T) {
	repo := NewAudioChannelLayoutRepository()
	stereo, err := NewChannelLayout(2, "stereo", "FL FR")
	require.NoError(t, err)

	repo.RegisterLayout("stereo", stereo)

	got, ok := repo.GetLayout("STEREO")
	require.True(t, ok)
	assert.Equal(t, stereo, got)

	_, ok = repo.GetLayout("unknown")
	assert.False(t, ok)
}

func TestChannelLayoutRepositoryRegisterAllFromConfig(t *testing.T) {
	repo := NewAudioChannelLayoutRepository()

	err := repo.RegisterAll([]config.AudioChannelLayoutConfig{
		{Name: "stereo", NumChannels: 2, Type: "stereo", ChannelOrder: "FL FR"},
		{Name: "mono", NumChannels: 1, Type: "mono", ChannelOrder: "FC"},
	})
	require.NoError(t, err)

	stereo, ok := repo.GetLayout("stereo")
	require.True(t, ok)
	assert.Equal(t, []string{"FL", "FR"}, stereo.ChannelOrder)

	mono, ok := repo.GetLayout("mono")
	require.True(t, ok)
	assert.Equal(t, 1, mono.NumChannels)
}

func TestChannelLayoutRepositoryRegisterAllPropagatesValidationError(t *testing.T) {
	repo := NewAudioChannelLayoutRepository()

	err := repo.RegisterAll([]config.AudioChannelLayoutConfig{
		{Name: "bad", NumChannels: 1, Type: "mono", ChannelOrder: "FL FR"},
	})
	assert.Error(t, err)
}
