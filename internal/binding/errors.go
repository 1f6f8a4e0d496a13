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
package binding

import "github.com/e1z0/caspar-core/internal/corerr"

var (
	errCircular = corerr.NewInvalidArgumentError("can't have circular dependencies between bindings")
	errBound    = corerr.NewProgrammingError("bound value cannot be set")
)
