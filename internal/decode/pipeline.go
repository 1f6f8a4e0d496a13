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
	"fmt"
	"strconv"
	"time"

	astiav "github.com/asticode/go-astiav"
	"golang.org/x/sync/errgroup"

	"github.com/e1z0/caspar-core/internal/config"
	"github.com/e1z0/caspar-core/internal/core"
	"github.com/e1z0/caspar-core/internal/frame"
	"github.com/e1z0/caspar-core/internal/sidedata"
)

const avSyncRingSeconds = 0.25 // Df/4 seconds, per SPEC_FULL.md §4.8

// Pipeline wires one Input, its per-stream Decoders, the video/audio
// Filter graphs, and the AVSync buffer into a single core.Producer — the
// top of C8, ground-matched on the teacher's openAndDecode stream
// discovery loop (video.go) generalized into the Input → Decoder[] →
// Filter{video,audio} → AVSync pipeline SPEC_FULL.md §4.8 names, with the
// worker lifecycle (stop/done channels) generalized from camera.go's
// restartDecoder into an errgroup of cooperating goroutines.
type Pipeline struct {
	name string
	cfg  config.ChannelConfig

	input      *Input
	videoDecs  []*Decoder
	videoIdxs  []int
	audioDecs  []*Decoder
	audioIdxs  []int
	ccDec      *Decoder
	ccIdx      int
	ccQueue    *sidedata.Queue
	pendingCC  []sidedata.Record
	fakeVideo  bool
	videoFilt  *Filter
	audioFilt  *Filter
	avsync     *AVSync

	destFPSNum, destFPSDen int
	fieldCount             int
	destSampleRate         int

	constraints core.PixelConstraints

	cancel  context.CancelFunc
	group   *errgroup.Group
	fieldAB FieldSelector
}

// NewPipeline opens cfg.Input and builds the decode pipeline for one
// playback channel, implementing SPEC_FULL.md §4.8's stream-selection
// rules: up to one primary video stream (or, when exactly two
// matching-resolution video streams exist, both of them merged via
// alphamerge), one amerge-mixed audio input when multiple audio streams
// exist, and a fake 1x1 video source injected when the only stream is an
// EIA-608 closed-caption track. Ground-matched on the teacher's
// openAndDecode stream-discovery loop (video.go), generalized from "first
// video stream, first audio stream" to the full selection rule set.
func NewPipeline(ctx context.Context, cfg config.ChannelConfig, ffmpegCfg config.FFmpegProducerConfig) (*Pipeline, error) {
	in, err := OpenInput(ctx, cfg.Input, true, 0, cfg.FFmpegParams)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", cfg.Input, err)
	}

	streams := in.FormatContext().Streams()
	var videoIdxs, audioIdxs []int
	ccIdx := -1
	for i, s := range streams {
		par := s.CodecParameters()
		switch par.MediaType() {
		case astiav.MediaTypeVideo:
			videoIdxs = append(videoIdxs, i)
		case astiav.MediaTypeAudio:
			audioIdxs = append(audioIdxs, i)
		case astiav.MediaTypeData, astiav.MediaTypeSubtitle:
			if ccIdx < 0 && isClosedCaptionCodec(par.CodecID()) {
				ccIdx = i
			}
		}
	}

	// Only keep a second video stream when it matches the first's
	// resolution (the "two large video streams" alphamerge case); a
	// mismatched extra stream is ignored rather than merged incorrectly.
	if len(videoIdxs) > 2 {
		videoIdxs = videoIdxs[:1]
	} else if len(videoIdxs) == 2 {
		a := streams[videoIdxs[0]].CodecParameters()
		b := streams[videoIdxs[1]].CodecParameters()
		if a.Width() != b.Width() || a.Height() != b.Height() {
			videoIdxs = videoIdxs[:1]
		}
	}

	fakeVideo := false
	if len(videoIdxs) == 0 {
		if ccIdx < 0 {
			in.Close()
			return nil, fmt.Errorf("%s: no video stream", cfg.Name)
		}
		fakeVideo = true
	}

	p := &Pipeline{
		name:           cfg.Name,
		cfg:            cfg,
		input:          in,
		videoIdxs:      videoIdxs,
		audioIdxs:      audioIdxs,
		ccIdx:          ccIdx,
		fakeVideo:      fakeVideo,
		destSampleRate: cfg.AudioSampleRate,
		fieldCount:     1,
	}
	if cfg.Interlaced {
		p.fieldCount = 2
	}

	num, den := parseFrameRate(cfg.DestinationFPS)
	p.destFPSNum, p.destFPSDen = num, den

	for _, idx := range videoIdxs {
		vdec, err := NewDecoder(idx, streams[idx].CodecParameters(), ffmpegCfg.Threads)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("%s: video decoder (stream %d): %w", cfg.Name, idx, err)
		}
		p.videoDecs = append(p.videoDecs, vdec)
	}

	for _, idx := range audioIdxs {
		adec, err := NewDecoder(idx, streams[idx].CodecParameters(), 0)
		if err != nil {
			log.Warn().Err(err).Str("channel", cfg.Name).Int("stream", idx).Msg("audio decoder unavailable, dropping stream")
			continue
		}
		p.audioDecs = append(p.audioDecs, adec)
	}

	if ccIdx >= 0 {
		p.ccDec = NewClosedCaptionDecoder(ccIdx)
		p.ccQueue = sidedata.NewQueue()
	}

	vf, err := BuildFilter(BuildOptions{
		Kind:             MediaVideo,
		AutoDeinterlace:  ffmpegCfg.AutoDeinterlace,
		SourceInterlaced: cfg.Interlaced,
		DestFrameRateNum: num,
		DestFrameRateDen: den,
		FieldCount:       p.fieldCount,
		InputCount:       max(1, len(p.videoDecs)),
		FakeSource:       fakeVideo,
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("%s: video filter: %w", cfg.Name, err)
	}
	p.videoFilt = vf

	if len(p.audioDecs) > 0 {
		af, err := BuildFilter(BuildOptions{
			Kind:           MediaAudio,
			DestSampleRate: cfg.AudioSampleRate,
			InputCount:     len(p.audioDecs),
		})
		if err != nil {
			log.Warn().Err(err).Str("channel", cfg.Name).Msg("audio filter unavailable, continuing video-only")
		} else {
			p.audioFilt = af
		}
	}

	ringCapacity := int(float64(num) / float64(den) * avSyncRingSeconds)
	p.avsync = NewAVSync(ringCapacity)

	width, height := 1920.0, 1080.0
	if len(videoIdxs) > 0 {
		par := streams[videoIdxs[0]].CodecParameters()
		if par.Width() > 0 && par.Height() > 0 {
			width, height = float64(par.Width()), float64(par.Height())
		}
	}
	p.constraints = core.NewPixelConstraints(width, height)

	return p, nil
}

// isClosedCaptionCodec reports whether id names the EIA-608 ("eia_608")
// codec libavcodec tags closed-caption data streams with.
func isClosedCaptionCodec(id astiav.CodecID) bool {
	c := astiav.FindDecoder(id)
	return c != nil && c.Name() == "eia_608"
}

// ParseFrameRate exposes parseFrameRate for callers (cmd/caspar-core) that
// need to build a framerate.Adapter around a Pipeline at the same rate the
// pipeline itself requested from its fps filter.
func ParseFrameRate(s string) (num, den int) { return parseFrameRate(s) }

func parseFrameRate(s string) (num, den int) {
	if s == "" {
		return 25, 1
	}
	for i, c := range s {
		if c == '/' {
			n, _ := strconv.Atoi(s[:i])
			d, _ := strconv.Atoi(s[i+1:])
			if d == 0 {
				d = 1
			}
			return n, d
		}
	}
	n, _ := strconv.Atoi(s)
	if n == 0 {
		n = 25
	}
	return n, 1
}

// Start launches the pipeline's background goroutines (input read loop,
// decoder workers, packet dispatcher, filter/avsync pump), ground-matched
// on camera.go's `go w.decodeLoop()`.
func (p *Pipeline) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	g, gctx := errgroup.WithContext(ctx)
	p.group = g

	g.Go(func() error { return p.input.Run(gctx) })
	for _, d := range p.videoDecs {
		d := d
		g.Go(func() error { return d.Run(gctx) })
	}
	for _, d := range p.audioDecs {
		d := d
		g.Go(func() error { return d.Run(gctx) })
	}
	if p.ccDec != nil {
		g.Go(func() error { return p.ccDec.Run(gctx) })
	}
	g.Go(func() error { return p.dispatchLoop(gctx) })
	g.Go(func() error { return p.pumpLoop(gctx) })
}

func (p *Pipeline) decoderFor(streamIndex int) *Decoder {
	for _, d := range p.videoDecs {
		if d.StreamIndex() == streamIndex {
			return d
		}
	}
	for _, d := range p.audioDecs {
		if d.StreamIndex() == streamIndex {
			return d
		}
	}
	if p.ccDec != nil && p.ccDec.StreamIndex() == streamIndex {
		return p.ccDec
	}
	return nil
}

// dispatchLoop moves queued packets from Input to the matching per-stream
// Decoder, a cooperative polling loop (10 ms wait on no progress) per
// SPEC_FULL.md §4.8's AVSync pump description, reused here since Input's
// queue is pull-based rather than channel-based.
func (p *Pipeline) dispatchLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		progressed := false
		p.input.ForEachAvailable(func(pkt *astiav.Packet) bool {
			dec := p.decoderFor(pkt.StreamIndex())
			if dec == nil {
				pkt.Unref()
				pkt.Free()
				return true
			}
			progressed = true
			_ = dec.Feed(ctx, pkt)
			return true
		})

		if p.input.EOF() {
			for _, d := range p.videoDecs {
				_ = d.Flush(ctx)
			}
			for _, d := range p.audioDecs {
				_ = d.Flush(ctx)
			}
			if p.ccDec != nil {
				_ = p.ccDec.Flush(ctx)
			}
			return nil
		}

		if !progressed {
			select {
			case <-time.After(10 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// pumpLoop attempts to produce one filtered video frame and one filtered
// audio frame per iteration and push the video frame into the AVSync
// ring, ground-matched on SPEC_FULL.md §4.8's AVSync pump description.
func (p *Pipeline) pumpLoop(ctx context.Context) error {
	lastProgress := time.Now()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		p.drainClosedCaptions()
		progressed := p.pumpVideo(ctx)
		if p.audioFilt != nil {
			progressed = p.pumpAudio(ctx) || progressed
		}

		if !progressed {
			if time.Since(lastProgress) > 500*time.Millisecond {
				log.Warn().Str("channel", p.name).Msg("avsync pump stalled")
				lastProgress = time.Now()
			}
			select {
			case <-time.After(10 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		lastProgress = time.Now()
	}
}

func (p *Pipeline) pumpVideo(ctx context.Context) bool {
	if p.fakeVideo {
		return p.pumpFakeVideo(ctx)
	}
	if len(p.videoDecs) == 0 {
		return false
	}
	progressed := false
	for i, d := range p.videoDecs {
		select {
		case df, ok := <-d.Output():
			if !ok || df == nil {
				continue
			}
			if df.Sentinel {
				p.avsync.MarkEOF()
				progressed = true
				continue
			}
			if err := p.videoFilt.Push(i, df.Frame); err != nil {
				df.Frame.Free()
				continue
			}
			df.Frame.Free()
			progressed = true
		default:
		}
	}

	out := astiav.AllocFrame()
	if err := p.videoFilt.Pull(out); err != nil {
		out.Free()
		return progressed
	}
	p.avsync.Push(ctx, decodedToMediaFrame(out, p.pendingSideData()))
	return true
}

// pumpFakeVideo drives the injected 1x1 still source when the channel's
// only real stream is an EIA-608 closed-caption track, ground: SPEC_FULL.md
// §4.8 "a fake 1x1 video source is injected when only EIA-608 exists" —
// the filter's buffer source needs a continuous trickle of frames to keep
// the fps converter advancing even though there is no real image.
func (p *Pipeline) pumpFakeVideo(ctx context.Context) bool {
	vf := astiav.AllocFrame()
	vf.SetWidth(1)
	vf.SetHeight(1)
	vf.SetPixelFormat(astiav.PixelFormatNone)
	if err := p.videoFilt.Push(0, vf); err != nil {
		vf.Free()
		return false
	}
	vf.Free()

	out := astiav.AllocFrame()
	if err := p.videoFilt.Pull(out); err != nil {
		out.Free()
		return false
	}
	p.avsync.Push(ctx, decodedToMediaFrame(out, p.pendingSideData()))
	return true
}

// drainClosedCaptions non-blockingly collects every pending EIA-608 payload
// from the closed-caption decoder's output, ground: SPEC_FULL.md §4.8 "an
// EIA-608 closed-caption 'stream' is decoded trivially by copying packet
// payloads into frame side-data" — the copy happens here, at the point a
// video frame is about to be emitted, rather than in the decoder itself.
func (p *Pipeline) drainClosedCaptions() {
	if p.ccDec == nil {
		return
	}
	for {
		select {
		case df, ok := <-p.ccDec.Output():
			if !ok || df == nil || df.Sentinel {
				return
			}
			p.pendingCC = append(p.pendingCC, sidedata.NewRecord(sidedata.TypeA53CC, df.CCPayload))
		default:
			return
		}
	}
}

// pendingSideData records any closed-caption payloads collected since the
// previous video frame into the side-data queue and returns a reference
// to attach to the next const frame, ground: spec §4.2's
// frame_side_data_in_queue (position, queue) pair.
func (p *Pipeline) pendingSideData() frame.SideDataRef {
	if p.ccQueue == nil || len(p.pendingCC) == 0 {
		return frame.SideDataRef{}
	}
	pos := p.ccQueue.Add(p.pendingCC)
	p.pendingCC = nil
	return frame.SideDataRef{Valid: true, Position: pos, Queue: p.ccQueue}
}

func (p *Pipeline) pumpAudio(ctx context.Context) bool {
	if len(p.audioDecs) == 0 {
		return false
	}
	progressed := false
	for i, d := range p.audioDecs {
		select {
		case df, ok := <-d.Output():
			if !ok || df == nil {
				continue
			}
			if df.Sentinel {
				progressed = true
				continue
			}
			if err := p.audioFilt.Push(i, df.Frame); err != nil {
				df.Frame.Free()
				continue
			}
			df.Frame.Free()
			progressed = true
		default:
		}
	}

	out := astiav.AllocFrame()
	if err := p.audioFilt.Pull(out); err != nil {
		out.Free()
		return progressed
	}
	out.Free()
	return true
}

// decodedToMediaFrame builds a draw frame leaf from a filtered video
// frame. Pixel-data extraction mirrors the teacher's toBGRA copy-into-
// contiguous-buffer idiom (video.go's bgraScaler.toBGRA), generalized to
// whatever pixel format the filter negotiated rather than hardcoding BGRA.
func decodedToMediaFrame(vf *astiav.Frame, sideData frame.SideDataRef) *MediaFrame {
	cf := &frame.ConstFrame{
		PixelFormat: frame.PixelFormatDescriptor{
			Tag:   frame.PixelFormatYCbCr,
			Depth: 8,
			Planes: []frame.PlaneDescriptor{
				{LinesizeBytes: vf.Linesize()[0], Height: vf.Height(), Channels: 1, Depth: 8},
				{LinesizeBytes: vf.Linesize()[1], Height: vf.Height() / 2, Channels: 1, Depth: 8},
				{LinesizeBytes: vf.Linesize()[2], Height: vf.Height() / 2, Channels: 1, Depth: 8},
			},
		},
		SideData: sideData,
	}
	for i := 0; i < 3; i++ {
		if b, err := vf.Data().Bytes(i); err == nil {
			plane := make([]byte, len(b))
			copy(plane, b)
			cf.Planes = append(cf.Planes, plane)
		}
	}
	vf.Free()

	return &MediaFrame{Draw: frame.Leaf(cf)}
}

// ReceiveImpl implements core.Producer: pops the next draw frame from the
// AVSync ring, alternating fields for interlaced channels.
func (p *Pipeline) ReceiveImpl() *frame.DrawFrame {
	field := p.fieldAB
	if p.fieldCount == 2 {
		if p.fieldAB == FieldA {
			p.fieldAB = FieldB
		} else {
			p.fieldAB = FieldA
		}
	}
	return p.avsync.NextFrame(field)
}

// PixelConstraints implements core.Producer.
func (p *Pipeline) PixelConstraints() core.PixelConstraints { return p.constraints }

// Call implements core.Producer's control surface: SEEK/LOOP/START/
// DURATION, ground-matched on SPEC_FULL.md §4.8's "Control surface".
func (p *Pipeline) Call(params []string) (<-chan core.CallResult, error) {
	if len(params) == 0 {
		return core.Ready("", nil), nil
	}
	switch params[0] {
	case "SEEK":
		if len(params) < 2 {
			return nil, fmt.Errorf("SEEK requires a timestamp")
		}
		ts, err := strconv.ParseInt(params[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("SEEK: %w", err)
		}
		p.avsync.Seek(ts)
		if err := p.input.Seek(ts, true); err != nil {
			return nil, err
		}
		return core.Ready("", nil), nil
	case "LOOP":
		loop := len(params) > 1 && (params[1] == "1" || params[1] == "TRUE")
		p.avsync.SetLoop(loop)
		return core.Ready("", nil), nil
	case "START":
		if len(params) < 2 {
			return nil, fmt.Errorf("START requires a timestamp")
		}
		ts, err := strconv.ParseInt(params[1], 10, 64)
		if err != nil {
			return nil, err
		}
		p.avsync.SetStart(ts)
		return core.Ready("", nil), nil
	case "DURATION":
		if len(params) < 2 {
			return nil, fmt.Errorf("DURATION requires a timestamp")
		}
		ts, err := strconv.ParseInt(params[1], 10, 64)
		if err != nil {
			return nil, err
		}
		p.avsync.SetDuration(ts)
		return core.Ready("", nil), nil
	default:
		return core.Ready("", nil), nil
	}
}

// Print implements core.Producer.
func (p *Pipeline) Print() string { return fmt.Sprintf("decode[%s]", p.name) }

// Name implements core.Producer.
func (p *Pipeline) Name() string { return "decode" }

// Close stops every background goroutine and releases FFmpeg resources,
// ground-matched on camera.go's Close (close(stop), wait on done).
func (p *Pipeline) Close() {
	if p.cancel != nil {
		p.cancel()
	}
	p.input.Abort()
	if p.group != nil {
		_ = p.group.Wait()
	}
	p.input.Close()
	for _, d := range p.videoDecs {
		d.Close()
	}
	for _, d := range p.audioDecs {
		d.Close()
	}
	if p.ccDec != nil {
		p.ccDec.Close()
	}
	if p.videoFilt != nil {
		p.videoFilt.Close()
	}
	if p.audioFilt != nil {
		p.audioFilt.Close()
	}
	if p.avsync != nil {
		p.avsync.Close()
	}
}

var _ core.Producer = (*Pipeline)(nil)
