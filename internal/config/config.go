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

// Package config loads the YAML configuration document that bootstraps a
// caspar-core process: destination video formats, the ffmpeg producer
// knobs named in spec §6, and the audio channel layouts/mix configs to
// preload into the C9 registries. Adapted from the teacher's AppConfig/
// loadConfig (src/config.go): same yaml.v2 dependency, same
// read-file-then-unmarshal shape, generalized from a list of RTSP cameras to
// a list of playback channels.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// AutoDeinterlacePolicy is configuration.ffmpeg.producer.auto-deinterlace
// from spec §6: one of "none", "interlaced", "all".
type AutoDeinterlacePolicy string

const (
	AutoDeinterlaceNone       AutoDeinterlacePolicy = "none"
	AutoDeinterlaceInterlaced AutoDeinterlacePolicy = "interlaced"
	AutoDeinterlaceAll        AutoDeinterlacePolicy = "all"
)

// FFmpegProducerConfig mirrors the environment the decode pipeline expects,
// per spec §6: "integer configuration configuration.ffmpeg.producer.threads
// (default 0 = auto), string configuration.ffmpeg.producer.auto-deinterlace".
type FFmpegProducerConfig struct {
	Threads         int                   `yaml:"threads"`
	AutoDeinterlace AutoDeinterlacePolicy `yaml:"auto-deinterlace"`
}

// ChannelConfig describes one destination playback channel: its target
// video format and audio cadence, plus an optional input URL/file for the
// decode pipeline to open. Generalizes the teacher's CameraConfig (one RTSP
// URL per window) to one input per engine channel.
type ChannelConfig struct {
	Name               string `yaml:"name"`
	Input              string `yaml:"input,omitempty"`
	DestinationFPS     string `yaml:"destination_fps"`     // e.g. "25", "30000/1001"
	DestinationFormat  string `yaml:"destination_format"`  // e.g. "1080p5000"
	AudioSampleRate    int    `yaml:"audio_sample_rate"`   // commonly 48000
	AudioChannels      int    `yaml:"audio_channels"`      // commonly 16
	AudioCadence       []int  `yaml:"audio_cadence"`       // e.g. [1602,1602,1601,1602,1601]
	Interlaced         bool   `yaml:"interlaced,omitempty"`
	Loop               bool   `yaml:"loop,omitempty"`
	FFmpegParams       string `yaml:"ffmpeg_params,omitempty"`
}

// AudioChannelLayoutConfig preloads one entry of
// audio_channel_layout_repository (spec §4.9).
type AudioChannelLayoutConfig struct {
	Name         string `yaml:"name"`
	NumChannels  int    `yaml:"num_channels"`
	Type         string `yaml:"type"`
	ChannelOrder string `yaml:"channel_order"` // whitespace separated
}

// AudioMixConfigConfig preloads one entry of audio_mix_config_repository.
type AudioMixConfigConfig struct {
	FromType string `yaml:"from_type"`
	ToType   string `yaml:"to_type"`
	Mix      string `yaml:"mix_expression"`
}

// Config is the top-level document, adapted from the teacher's AppConfig.
type Config struct {
	Channels            []ChannelConfig            `yaml:"channels"`
	FFmpegProducer       FFmpegProducerConfig        `yaml:"ffmpeg_producer"`
	AudioChannelLayouts  []AudioChannelLayoutConfig  `yaml:"audio_channel_layouts,omitempty"`
	AudioMixConfigs      []AudioMixConfigConfig      `yaml:"audio_mix_configs,omitempty"`
	LogLevel             string                      `yaml:"log_level,omitempty"`
}

// Default returns the zero-config bootstrap used by tests and by callers
// that have no settings.yml yet: ffmpeg threads auto, auto-deinterlace
// "interlaced", matching the defaults named in spec §6.
func Default() *Config {
	return &Config{
		FFmpegProducer: FFmpegProducerConfig{
			Threads:         0,
			AutoDeinterlace: AutoDeinterlaceInterlaced,
		},
	}
}

// Load reads and unmarshals the YAML document at path, applying the same
// defaults Default() returns for any field the document leaves zero.
// Mirrors the teacher's loadConfig(path) (src/config.go) shape: read file,
// unmarshal, return error untouched on I/O or decode failure.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if cfg.FFmpegProducer.AutoDeinterlace == "" {
		cfg.FFmpegProducer.AutoDeinterlace = AutoDeinterlaceInterlaced
	}
	return cfg, nil
}
