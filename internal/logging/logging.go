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

// Package logging configures the single process-wide structured logger every
// component derives its per-worker child logger from, the same role the
// teacher's initlog() plays for the bare stdlib logger it configures once at
// startup — re-grounded on zerolog's component-tagged child-logger idiom as
// used in friendsincode-grimnir_radio's playout package.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var base = zerolog.New(io.Discard)

// Init configures the process-wide base logger. w is typically an
// io.MultiWriter combining a log file and (optionally) os.Stdout, mirroring
// initlog()'s io.MultiWriter(file, os.Stdout) construction.
func Init(w io.Writer, level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	base = zerolog.New(w).With().Timestamp().Logger()
}

// InitDefault wires a reasonable default logger to stderr at info level, for
// tests and tools that never call Init explicitly.
func InitDefault() {
	Init(os.Stderr, zerolog.InfoLevel)
}

// For returns a child logger tagged with component, matching
// logger.With().Str("component", name).Logger() from the grounding source.
func For(component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}

func init() {
	InitDefault()
}
