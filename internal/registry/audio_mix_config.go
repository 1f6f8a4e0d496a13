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
	"strings"
	"sync"

	"github.com/e1z0/caspar-core/internal/config"
)

// AudioMixConfigRepository maps (from-type, to-type) layout-type pairs to a
// mix expression string used by the audio channel remapper, ground-matched
// on audio_mix_config_repository.
type AudioMixConfigRepository struct {
	mu      sync.Mutex
	configs map[string]map[string]string
}

// NewAudioMixConfigRepository builds an empty repository.
func NewAudioMixConfigRepository() *AudioMixConfigRepository {
	return &AudioMixConfigRepository{configs: make(map[string]map[string]string)}
}

var defaultMixConfigs = NewAudioMixConfigRepository()

// DefaultAudioMixConfigRepository returns the process-wide singleton,
// ground-matched on audio_mix_config_repository::get_default().
func DefaultAudioMixConfigRepository() *AudioMixConfigRepository {
	return defaultMixConfigs
}

// RegisterConfig records mixConfig for every (fromType, toType) pair,
// normalized to upper case — ground-matched on
// audio_mix_config_repository::register_config.
func (r *AudioMixConfigRepository) RegisterConfig(fromType string, toTypes []string, mixConfig string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from := strings.ToUpper(fromType)
	tos, ok := r.configs[from]
	if !ok {
		tos = make(map[string]string)
		r.configs[from] = tos
	}
	for _, toType := range toTypes {
		tos[strings.ToUpper(toType)] = mixConfig
	}
}

// RegisterAll preloads the repository from configuration entries, the Go
// counterpart of register_all_configs's XML-ptree walk — here driven by
// config.AudioMixConfigConfig instead of a boost::property_tree. Unlike the
// original's comma-separated to-types attribute, each entry here names a
// single to-type; repeat the entry to register several.
func (r *AudioMixConfigRepository) RegisterAll(entries []config.AudioMixConfigConfig) {
	for _, e := range entries {
		r.RegisterConfig(e.FromType, []string{e.ToType}, e.Mix)
	}
}

// GetConfig looks up the mix expression for (fromType, toType), case-
// insensitively, ground-matched on audio_mix_config_repository::get_config.
func (r *AudioMixConfigRepository) GetConfig(fromType, toType string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tos, ok := r.configs[strings.ToUpper(fromType)]
	if !ok {
		return "", false
	}
	mix, ok := tos[strings.ToUpper(toType)]
	return mix, ok
}
