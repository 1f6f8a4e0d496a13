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

// Package decode implements the input/decoder/filter/AV-sync pipeline that
// turns one media URL or file into a sequence of draw frames: C8 of the
// module, ground-matched on the teacher's real go-astiav wiring in
// video.go's decodeLoop/openAndDecode and camera.go's restartDecoder
// worker-lifecycle idiom, generalized from "one RTSP camera repainting a Qt
// widget" into the general Input → Decoder[] → Filter{video,audio} →
// AVSync pipeline spec §4.8 names.
package decode

import (
	"math/big"

	"github.com/e1z0/caspar-core/internal/frame"
)

// MediaFrame is one slot of the AV-sync ring buffer: a filtered video
// and/or audio payload plus the timing fields spec §4.8 names
// (start_time, pts, duration, frame_count). Ground: the anonymous
// Frame{video, audio, draw_frame, start_time, pts, duration, frame_count}
// described in SPEC_FULL.md §4.8's AVSync section.
type MediaFrame struct {
	Draw       *frame.DrawFrame
	StartTime  *big.Rat // destination-rate time units
	PTS        *big.Rat
	Duration   *big.Rat
	FrameCount int64
}

// avTimeBase is the fixed internal microsecond time base the original
// uses (AV_TIME_BASE); every public timestamp this package accepts or
// returns is in destination frame units and is converted via rescale.
const avTimeBase = 1_000_000

// rescale converts value from the time base srcNum/srcDen (seconds per
// unit) into the time base dstNum/dstDen, truncating toward zero, after
// FFmpeg's av_rescale_q / SPEC_FULL.md §4.8's "convert via rescale(a,
// src_tb, dst_tb)" (av_rescale_q itself rounds to nearest).
func rescale(value int64, srcNum, srcDen, dstNum, dstDen int64) int64 {
	r := big.NewRat(value, 1)
	r.Mul(r, big.NewRat(srcNum*dstDen, srcDen*dstNum))
	num := new(big.Int).Set(r.Num())
	den := new(big.Int).Set(r.Denom())
	return new(big.Int).Quo(num, den).Int64()
}
