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

// Command caspar-core is the process entry point that wires the decode
// pipeline, framerate adapter, scene producer, and registries together into
// one or more running playback channels. Ground-matched on the teacher's
// main.go: same flag-then-init-then-run shape, generalized from one Qt
// event loop driving N camera windows into N goroutine-driven channels
// joined on an errgroup, with os/signal replacing Qt's window-close events
// as the shutdown trigger.
package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	astiav "github.com/asticode/go-astiav"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/e1z0/caspar-core/internal/audiosink"
	"github.com/e1z0/caspar-core/internal/config"
	"github.com/e1z0/caspar-core/internal/core"
	"github.com/e1z0/caspar-core/internal/decode"
	"github.com/e1z0/caspar-core/internal/frame"
	"github.com/e1z0/caspar-core/internal/framerate"
	"github.com/e1z0/caspar-core/internal/logging"
	"github.com/e1z0/caspar-core/internal/mixer"
	"github.com/e1z0/caspar-core/internal/registry"
	"github.com/e1z0/caspar-core/internal/scene"
)

var log = logging.For("main")

func main() {
	configPath := pflag.StringP("config", "c", "settings.yml", "Path to the YAML configuration document.")
	logLevel := pflag.StringP("log-level", "l", "info", "Log level: debug, info, warn, error.")
	debugFFmpeg := pflag.Bool("debugstreams", false, "Route ffmpeg's own logging through the process logger.")
	monitorAudio := pflag.Bool("monitor-audio", false, "Attach a local audio-monitor Consumer to every channel.")
	pflag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logging.Init(os.Stderr, level)

	if *debugFFmpeg {
		astiav.SetLogLevel(astiav.LogLevelDebug)
		astiav.SetLogCallback(func(c astiav.Classer, l astiav.LogLevel, format, msg string) {
			var class string
			if c != nil {
				if cl := c.Class(); cl != nil {
					class = cl.String()
				}
			}
			log.Debug().Str("class", class).Int("level", int(l)).Msg(strings.TrimSpace(msg))
		})
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config: failed to load, falling back to defaults")
		cfg = config.Default()
	}

	if err := registry.DefaultAudioChannelLayoutRepository().RegisterAll(cfg.AudioChannelLayouts); err != nil {
		log.Fatal().Err(err).Msg("config: invalid audio_channel_layouts entry")
	}
	registry.DefaultAudioMixConfigRepository().RegisterAll(cfg.AudioMixConfigs)

	if len(cfg.Channels) == 0 {
		log.Fatal().Msg("config: no channels defined")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)
	for i := range cfg.Channels {
		chCfg := cfg.Channels[i]
		idx := i
		group.Go(func() error {
			return runChannel(gctx, idx, chCfg, cfg.FFmpegProducer, *monitorAudio)
		})
	}

	if err := group.Wait(); err != nil && gctx.Err() == nil {
		log.Error().Err(err).Msg("channel exited with error")
		os.Exit(1)
	}
}

// runChannel builds and drives one playback channel end to end: decode
// pipeline → framerate adapter → scene producer, ticked at the
// destination frame rate until ctx is cancelled. Ground-matched on the
// teacher's newCamWindow + per-frame pull loop, generalized from "decode,
// scale to BGRA, paint a Qt widget" to "decode, adapt, composite, send".
func runChannel(ctx context.Context, index int, chCfg config.ChannelConfig, ffmpegCfg config.FFmpegProducerConfig, monitorAudio bool) error {
	clog := logging.For(fmt.Sprintf("channel[%d:%s]", index, chCfg.Name))

	pipeline, err := decode.NewPipeline(ctx, chCfg, ffmpegCfg)
	if err != nil {
		return fmt.Errorf("channel %d: open pipeline: %w", index, err)
	}
	defer pipeline.Close()
	pipeline.Start(ctx)

	destNum, destDen := decode.ParseFrameRate(chCfg.DestinationFPS)
	destRate := big.NewRat(int64(destNum), int64(destDen))

	fieldMode := frame.FieldModeProgressive
	if chCfg.Interlaced {
		fieldMode = frame.FieldModeUpper
	}

	adapter := framerate.NewAdapter(pipeline, destRate, destRate, fieldMode, chCfg.AudioCadence)

	constraints := pipeline.PixelConstraints()
	width := int(constraints.Width.Get())
	height := int(constraints.Height.Get())

	sceneProducer := scene.NewProducer(width, height)
	sceneProducer.CreateLayerAt0(adapter, chCfg.Name)

	var sink *audiosink.Sink
	if monitorAudio {
		sink = audiosink.NewSink(index)
		formatDesc := core.VideoFormatDescriptor{
			Format:          chCfg.DestinationFormat,
			Width:           width,
			Height:          height,
			FramerateNum:    destNum,
			FramerateDen:    destDen,
			AudioSampleRate: chCfg.AudioSampleRate,
			AudioChannels:   chCfg.AudioChannels,
			AudioCadence:    chCfg.AudioCadence,
		}
		if err := sink.Initialize(formatDesc, index); err != nil {
			clog.Warn().Err(err).Msg("audio monitor: disabled, failed to initialize")
			sink = nil
		} else {
			defer func() { _ = sink.Close() }()
		}
	}

	tickInterval := time.Duration(float64(time.Second) * float64(destDen) / float64(destNum))
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	sideDataMixer := mixer.NewMixer()
	var flattener frame.FlattenVisitor

	clog.Info().Str("input", chCfg.Input).Int("width", width).Int("height", height).Msg("channel started")

	for {
		select {
		case <-ctx.Done():
			clog.Info().Msg("channel stopping")
			return nil
		case <-ticker.C:
			df := sceneProducer.RenderFrame()

			flattener.Leaves = flattener.Leaves[:0]
			frame.Accept(df, &flattener)
			frame.Accept(df, sideDataMixer)
			if records := sideDataMixer.Mixed(); len(records) > 0 {
				clog.Debug().Int("count", len(records)).Msg("side-data records attached to frame")
			}

			if sink != nil && len(flattener.Leaves) > 0 {
				if samples := flattener.Leaves[0].Leaf.AudioSamples; len(samples) > 0 {
					if _, err := sink.Send(flattener.Leaves[0].Leaf); err != nil {
						clog.Warn().Err(err).Msg("audio monitor: send failed")
					}
				}
			}
		}
	}
}
