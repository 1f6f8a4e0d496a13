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

// Package audiosink implements an optional audio-monitor Consumer: decoded
// channel audio is played out through the host's default output device so a
// developer can listen to a channel without a downstream NDI/decklink
// consumer attached. Grounded on the teacher's src/audio.go
// (GlobalAudioContext) and src/video.go's per-camera oto.Player usage, both
// built on the same github.com/hajimehoshi/oto/v2 context/player pair.
package audiosink

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"github.com/e1z0/caspar-core/internal/core"
	"github.com/e1z0/caspar-core/internal/frame"
	"github.com/e1z0/caspar-core/internal/logging"
)

var log = logging.For("audiosink")

// sharedContext mirrors the teacher's GlobalAudioContext singleton: oto only
// allows one context per process, so every Sink reuses the first one opened
// at the sample rate/channel count it was asked for.
var (
	sharedMu   sync.Mutex
	sharedCtx  *oto.Context
	sharedRate int
	sharedCh   int
)

func acquireContext(sampleRate, channels int) (*oto.Context, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedCtx != nil {
		if sharedRate != sampleRate || sharedCh != channels {
			log.Warn().
				Int("existing_rate", sharedRate).Int("existing_channels", sharedCh).
				Int("requested_rate", sampleRate).Int("requested_channels", channels).
				Msg("audiosink: reusing existing oto context at a different rate/channel count")
		}
		return sharedCtx, nil
	}

	ctx, ready, err := oto.NewContext(sampleRate, channels, oto.FormatSignedInt16LE)
	if err != nil {
		return nil, fmt.Errorf("audiosink: open oto context: %w", err)
	}
	go func() {
		<-ready
		log.Debug().Msg("audiosink: oto context ready")
	}()

	sharedCtx = ctx
	sharedRate = sampleRate
	sharedCh = channels
	return ctx, nil
}

// Sink is a core.Consumer that plays decoded audio through the local sound
// card, one oto.Player backed by an io.Pipe per Sink, the same pattern the
// teacher opens lazily on the first audio frame per camera.
type Sink struct {
	index int

	mu      sync.Mutex
	player  oto.Player
	pipeW   *io.PipeWriter
	channels int
	muted   bool
}

// NewSink builds a Sink for the given channel index. index has no effect
// until Initialize is called with the channel's negotiated format.
func NewSink(index int) *Sink {
	return &Sink{index: index}
}

// Initialize implements core.Consumer: it lazily opens the shared oto
// context and this Sink's player at the channel's negotiated audio format.
func (s *Sink) Initialize(formatDesc core.VideoFormatDescriptor, channelIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rate := formatDesc.AudioSampleRate
	channels := formatDesc.AudioChannels
	if rate <= 0 {
		rate = 48000
	}
	if channels <= 0 {
		channels = 2
	}

	ctx, err := acquireContext(rate, channels)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	p := ctx.NewPlayer(pr)
	if p == nil {
		_ = pw.Close()
		return fmt.Errorf("audiosink[%d]: oto NewPlayer failed", s.index)
	}
	p.Play()

	s.player = p
	s.pipeW = pw
	s.channels = channels
	return nil
}

// Send implements core.Consumer: the frame's int32 audio samples (one slice,
// interleaved per channel per SPEC_FULL.md's audio cadence model) are
// downshifted to signed 16-bit little-endian and fed to the player's pipe.
// Fire-and-forget, matching the teacher's "if the pipe back-pressures a bit,
// it's fine" comment on the same write.
func (s *Sink) Send(f *frame.ConstFrame) (<-chan core.CallResult, error) {
	s.mu.Lock()
	pw := s.pipeW
	muted := s.muted
	s.mu.Unlock()

	if pw == nil {
		return core.Ready("", fmt.Errorf("audiosink[%d]: Send before Initialize", s.index)), nil
	}
	if muted || f == nil || len(f.AudioSamples) == 0 {
		return core.Ready("", nil), nil
	}

	buf := encodeS16LE(f.AudioSamples)
	// Fire-and-forget write in its own goroutine, so a blocked monitor
	// output never stalls the mixing pipeline. Nothing is dropped: pending
	// writes wait on the pipe, and their order is not guaranteed.
	go func() { _, _ = pw.Write(buf) }()

	return core.Ready("", nil), nil
}

// SetMuted silences the sink without tearing down the player.
func (s *Sink) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

// Close releases the player and its pipe. The shared oto context outlives
// any one Sink, matching GlobalAudioContext's process-lifetime scope.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.player != nil {
		err = s.player.Close()
		s.player = nil
	}
	if s.pipeW != nil {
		_ = s.pipeW.Close()
		s.pipeW = nil
	}
	return err
}

// encodeS16LE downshifts the 32-bit-per-sample internal mix buffer to packed
// signed 16-bit little-endian PCM, the format the teacher's camera.go audio
// path plays back unconditionally (oto.FormatSignedInt16LE).
func encodeS16LE(samples []int32) []byte {
	buf := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(sample>>16)))
	}
	return buf
}

func (s *Sink) Print() string { return fmt.Sprintf("audiosink[%d]", s.index) }
func (s *Sink) Name() string  { return "audiosink" }

// HasSynchronizationClock reports false: the monitor sink never paces the
// mixer, it only consumes whatever cadence upstream already settled on.
func (s *Sink) HasSynchronizationClock() bool { return false }

func (s *Sink) Index() int { return s.index }

var _ core.Consumer = (*Sink)(nil)
