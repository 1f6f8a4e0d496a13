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
package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	astiav "github.com/asticode/go-astiav"

	"github.com/e1z0/caspar-core/internal/logging"
)

const inputQueueCapacity = 64

var log = logging.For("decode")

// Input owns the demuxer handle and reads one packet at a time on a
// background goroutine into a bounded queue, ground-matched on the
// teacher's openAndDecode input setup (video.go: AllocFormatContext,
// Dictionary of RTSP/low-latency options, OpenInput, FindStreamInfo) and
// generalized into a re-entrant component per SPEC_FULL.md §4.8: a
// separate formatMutex guards the demuxer handle itself so Seek can run
// concurrently with the read loop the way the original's format_mutex_
// does, even though the teacher's single-reader design never needed one.
type Input struct {
	formatMutex sync.Mutex
	fc          *astiav.FormatContext

	queueMutex sync.Mutex
	queueCond  *sync.Cond
	queue      []*astiav.Packet
	eof        bool
	aborted    bool

	startTimeRat int64 // microseconds
	durationRat  int64 // microseconds
}

// OpenInput opens url with the same RTSP/low-latency Dictionary options the
// teacher's openAndDecode sets (buffer_size, low_delay, nobuffer, probesize,
// reorder_queue_size, stimeout), then reads stream info.
func OpenInput(ctx context.Context, url string, rtspTCP bool, probesize int, extraParams string) (*Input, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, errors.New("AllocFormatContext")
	}

	in := &Input{fc: fc}
	in.queueCond = sync.NewCond(&in.queueMutex)
	fc.SetInterruptCallback(in.interruptCallback(ctx))

	rd := astiav.NewDictionary()
	defer rd.Free()

	if rtspTCP {
		_ = rd.Set("rtsp_transport", "tcp", 0)
		_ = rd.Set("rtsp_flags", "prefer_tcp", 0)
	}
	_ = rd.Set("buffer_size", "1048576", 0)
	_ = rd.Set("flags", "+low_delay", 0)
	_ = rd.Set("fflags", "+nobuffer+discardcorrupt+genpts", 0)
	_ = rd.Set("max_delay", "500000", 0)
	_ = rd.Set("use_wallclock_as_timestamps", "1", 0)
	if probesize > 0 {
		_ = rd.Set("probesize", fmt.Sprintf("%d", probesize), 0)
	} else {
		_ = rd.Set("probesize", "5000000", 0)
	}
	_ = rd.Set("reorder_queue_size", "0", 0)
	_ = rd.Set("stimeout", "5000000", 0)
	applyExtraParams(extraParams, rd)

	if err := fc.OpenInput(url, nil, rd); err != nil {
		fc.Free()
		return nil, fmt.Errorf("OpenInput: %w", err)
	}
	if err := fc.FindStreamInfo(nil); err != nil {
		fc.Free()
		return nil, fmt.Errorf("FindStreamInfo: %w", err)
	}

	if d := fc.Duration(); d > 0 {
		in.durationRat = int64(d)
	}

	return in, nil
}

// interruptCallback returns 1 once ctx is done, the Go counterpart of
// FFmpeg's cooperative-cancellation interrupt callback (SPEC_FULL.md
// §4.8's "Interrupt callback returns 1 if an abort flag is set").
func (in *Input) interruptCallback(ctx context.Context) astiav.InterruptCallback {
	return func() int {
		select {
		case <-ctx.Done():
			return 1
		default:
			if in.isAborted() {
				return 1
			}
			return 0
		}
	}
}

func (in *Input) isAborted() bool {
	in.queueMutex.Lock()
	defer in.queueMutex.Unlock()
	return in.aborted
}

// FormatContext exposes the underlying demuxer for stream enumeration at
// pipeline construction time (Decoder/Filter need CodecParameters per
// stream).
func (in *Input) FormatContext() *astiav.FormatContext { return in.fc }

// StartTime always returns 0; the demuxer's start time is not read.
func (in *Input) StartTime() int64 { return 0 }

// Duration reports the demuxer's reported duration in microseconds.
func (in *Input) Duration() int64 { return in.durationRat }

// EOF reports whether the read loop has observed end of stream.
func (in *Input) EOF() bool {
	in.queueMutex.Lock()
	defer in.queueMutex.Unlock()
	return in.eof
}

// Run is the background read loop: repeatedly reads one packet, blocking
// when the queue is full (capacity inputQueueCapacity), ground-matched on
// the teacher's decodeLoop/openAndDecode read-frame-in-a-loop shape.
// Returns nil at end of stream, or ctx's error when ctx is cancelled or the
// input is aborted; other read errors are logged and the loop reads on.
func (in *Input) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		in.queueMutex.Lock()
		for len(in.queue) >= inputQueueCapacity && !in.aborted {
			in.queueCond.Wait()
		}
		if in.aborted {
			in.queueMutex.Unlock()
			return ctx.Err()
		}
		in.queueMutex.Unlock()

		pkt := astiav.AllocPacket()

		in.formatMutex.Lock()
		err := in.fc.ReadFrame(pkt)
		in.formatMutex.Unlock()

		if err != nil {
			pkt.Free()
			if errors.Is(err, io.EOF) || errors.Is(err, astiav.ErrEof) {
				in.queueMutex.Lock()
				in.eof = true
				in.queueCond.Broadcast()
				in.queueMutex.Unlock()
				return nil
			}
			log.Warn().Err(err).Msg("input read error")
			continue
		}

		in.queueMutex.Lock()
		in.queue = append(in.queue, pkt)
		in.eof = false
		in.queueCond.Broadcast()
		in.queueMutex.Unlock()
	}
}

// ForEachAvailable drains every queued packet whose stream index matches
// fn's interest, removing each packet as fn returns true — ground-matched
// on SPEC_FULL.md §4.8's "non-copying for_each_available(fn) drain that
// removes packets as fn returns true". Packets fn declines stay queued.
func (in *Input) ForEachAvailable(fn func(pkt *astiav.Packet) bool) {
	in.queueMutex.Lock()
	defer in.queueMutex.Unlock()

	remaining := in.queue[:0]
	for _, pkt := range in.queue {
		if fn(pkt) {
			continue
		}
		remaining = append(remaining, pkt)
	}
	in.queue = remaining
	in.queueCond.Broadcast()
}

// Seek issues a backward SeekFrame to ts on the default stream (index -1,
// so ts is in AV_TIME_BASE microseconds; no min/max bounds are passed)
// under the format mutex (separate from the packet queue mutex, so a reader blocked
// on network I/O elsewhere can still be aborted by Close/context
// cancellation) and optionally clears the packet queue and EOF flag,
// ground-matched on SPEC_FULL.md §4.8's seek(ts, flush?) description.
func (in *Input) Seek(ts int64, flush bool) error {
	in.formatMutex.Lock()
	err := in.fc.SeekFrame(-1, ts, astiav.NewSeekFlags(astiav.SeekFlagBackward))
	in.formatMutex.Unlock()
	if err != nil {
		return fmt.Errorf("SeekFrame: %w", err)
	}

	if flush {
		in.queueMutex.Lock()
		for _, pkt := range in.queue {
			pkt.Free()
		}
		in.queue = nil
		in.eof = false
		in.queueCond.Broadcast()
		in.queueMutex.Unlock()
	}
	return nil
}

// Abort unblocks any goroutine waiting on the queue condition (Run's
// backpressure wait, and the FFmpeg interrupt callback on the next I/O
// call), the cooperative-cancellation counterpart of closing the teacher's
// stop channel in camera.go's restartDecoder.
func (in *Input) Abort() {
	in.queueMutex.Lock()
	in.aborted = true
	in.queueCond.Broadcast()
	in.queueMutex.Unlock()
}

// Close releases the format context. Call after Run has returned.
func (in *Input) Close() {
	in.queueMutex.Lock()
	for _, pkt := range in.queue {
		pkt.Free()
	}
	in.queue = nil
	in.queueMutex.Unlock()

	if in.fc != nil {
		in.fc.Free()
		in.fc = nil
	}
}

func applyExtraParams(params string, d *astiav.Dictionary) {
	if params == "" {
		return
	}
	for _, kv := range splitParams(params) {
		if kv[0] == "" {
			continue
		}
		_ = d.Set(kv[0], kv[1], 0)
	}
}

// splitParams parses a "k=v,k2=v2" extra-parameters string, ground-matched
// on the teacher's applyFmtParams/applyDecParams (helpers.go) comma/equals
// convention.
func splitParams(params string) [][2]string {
	var out [][2]string
	start := 0
	for i := 0; i <= len(params); i++ {
		if i == len(params) || params[i] == ',' {
			piece := params[start:i]
			start = i + 1
			if piece == "" {
				continue
			}
			eq := -1
			for j, c := range piece {
				if c == '=' {
					eq = j
					break
				}
			}
			if eq < 0 {
				out = append(out, [2]string{piece, ""})
				continue
			}
			out = append(out, [2]string{piece[:eq], piece[eq+1:]})
		}
	}
	return out
}
