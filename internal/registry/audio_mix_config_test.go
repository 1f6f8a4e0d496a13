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

func TestMixConfigRepositoryRegisterAndGetIsCaseInsensitive(t *testing.T) {
	repo := NewAudioMixConfigRepository()
	repo.RegisterConfig("stereo", []string{"mono"}, "FC<0.5*FL+0.5*FR")

	mix, ok := repo.GetConfig("STEREO", "Mono")
	require.True(t, ok)
	assert.Equal(t, "FC<0.5*FL+0.5*FR", mix)

	_, ok = repo.GetConfig("stereo", "unknown")
	assert.False(t, ok)

	_, ok = repo.GetConfig("unknown", "mono")
	assert.False(t, ok)
}

func TestMixConfigRepositoryRegisterConfigCoversMultipleToTypes(t *testing.T) {
	repo := NewAudioMixConfigRepository()
	repo.RegisterConfig("5.1", []string{"stereo", "mono"}, "some-expression")

	_, ok := repo.GetConfig("5.1", "stereo")
	assert.True(t, ok)
	_, ok = repo.GetConfig("5.1", "mono")
	assert.True(t, ok)
}

func TestMixConfigRepositoryRegisterAllFromConfig(t *testing.T) {
	repo := NewAudioMixConfigRepository()

	repo.RegisterAll([]config.AudioMixConfigConfig{
		{FromType: "stereo", ToType: "mono", Mix: "FC<0.5*FL+0.5*FR"},
		{FromType: "stereo", ToType: "5.1", Mix: "FL=FL|FR=FR"},
	})

	mix, ok := repo.GetConfig("stereo", "mono")
	require.True(t, ok)
	assert.Equal(t, "FC<0.5*FL+0.5*FR", mix)

	_, ok = repo.GetConfig("stereo", "5.1")
	assert.True(t, ok)
}
