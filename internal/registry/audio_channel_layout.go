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
	"fmt"
	"strings"
	"sync"

	"github.com/e1z0/caspar-core/internal/config"
	"github.com/e1z0/caspar-core/internal/corerr"
)

// reservedMixSyntax are the characters reserved for mix-config expressions
// (e.g. "FL<0.5*FC+0.5*FL") and therefore illegal inside a channel-order
// string, ground-matched on audio_channel_layout's constructor check.
const reservedMixSyntax = "=<+*|"

// ChannelLayout describes one named audio layout: its channel count, a
// free-form type tag (e.g. "STEREO", "5.1"), and the named order of its
// channels. Ground-matched on audio_channel_layout.
type ChannelLayout struct {
	NumChannels  int
	Type         string
	ChannelOrder []string
}

// InvalidChannelLayout is the zero-value sentinel returned where the
// original returns audio_channel_layout::invalid() (a static default-
// constructed instance with num_channels==0).
var InvalidChannelLayout = ChannelLayout{}

// NewChannelLayout validates and builds a ChannelLayout, ground-matched on
// audio_channel_layout's constructor: num_channels must be positive,
// channel_order must not contain characters reserved for mix-config syntax,
// type is upper-cased, and channel_order is split on whitespace (collapsing
// runs, and treating an all-blank string as zero entries).
func NewChannelLayout(numChannels int, layoutType, channelOrder string) (ChannelLayout, error) {
	if numChannels < 1 {
		return ChannelLayout{}, corerr.NewUserError(0, "num_channels cannot be less than 1")
	}
	if strings.ContainsAny(channelOrder, reservedMixSyntax) {
		return ChannelLayout{}, corerr.NewUserError(0,
			"%s contains illegal characters %s reserved for mix config syntax", channelOrder, reservedMixSyntax)
	}

	var order []string
	if fields := strings.Fields(channelOrder); len(fields) > 0 {
		order = fields
	}

	if len(order) > numChannels {
		return ChannelLayout{}, corerr.NewUserError(0,
			"%s contains more than %d channel names", channelOrder, numChannels)
	}

	return ChannelLayout{
		NumChannels:  numChannels,
		Type:         strings.ToUpper(layoutType),
		ChannelOrder: order,
	}, nil
}

// IndexesOf returns every index in ChannelOrder named channelName, ground-
// matched on audio_channel_layout::indexes_of.
func (l ChannelLayout) IndexesOf(channelName string) []int {
	var result []int
	for i, name := range l.ChannelOrder {
		if name == channelName {
			result = append(result, i)
		}
	}
	return result
}

// Print renders a debug representation, ground-matched on
// audio_channel_layout::print.
func (l ChannelLayout) Print() string {
	return fmt.Sprintf("[audio_channel_layout] num_channels=%d type=%s channel_order=%s",
		l.NumChannels, l.Type, strings.Join(l.ChannelOrder, " "))
}

// AudioChannelLayoutRepository is the process-wide catalogue of named audio
// channel layouts, ground-matched on audio_channel_layout_repository.
// Concurrent access is mutex-guarded, matching the original's boost::mutex.
type AudioChannelLayoutRepository struct {
	mu      sync.Mutex
	layouts map[string]ChannelLayout
}

// NewAudioChannelLayoutRepository builds an empty repository.
func NewAudioChannelLayoutRepository() *AudioChannelLayoutRepository {
	return &AudioChannelLayoutRepository{layouts: make(map[string]ChannelLayout)}
}

var defaultChannelLayouts = NewAudioChannelLayoutRepository()

// DefaultAudioChannelLayoutRepository returns the process-wide singleton,
// ground-matched on audio_channel_layout_repository::get_default().
func DefaultAudioChannelLayoutRepository() *AudioChannelLayoutRepository {
	return defaultChannelLayouts
}

// RegisterLayout stores layout under name, normalized to upper case —
// ground-matched on audio_channel_layout_repository::register_layout.
func (r *AudioChannelLayoutRepository) RegisterLayout(name string, layout ChannelLayout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[strings.ToUpper(name)] = layout
}

// RegisterAll preloads the repository from configuration entries, the Go
// counterpart of register_all_layouts's XML-ptree walk — here driven by
// config.AudioChannelLayoutConfig instead of a boost::property_tree.
func (r *AudioChannelLayoutRepository) RegisterAll(entries []config.AudioChannelLayoutConfig) error {
	for _, e := range entries {
		layout, err := NewChannelLayout(e.NumChannels, e.Type, e.ChannelOrder)
		if err != nil {
			return fmt.Errorf("audio channel layout %q: %w", e.Name, err)
		}
		r.RegisterLayout(e.Name, layout)
	}
	return nil
}

// GetLayout looks up a layout by name, case-insensitively, ground-matched
// on audio_channel_layout_repository::get_layout.
func (r *AudioChannelLayoutRepository) GetLayout(name string) (ChannelLayout, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	layout, ok := r.layouts[strings.ToUpper(name)]
	return layout, ok
}
