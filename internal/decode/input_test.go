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

import "testing"

func TestSplitParamsParsesKeyValuePairs(t *testing.T) {
	got := splitParams("rtsp_transport=tcp,probesize=5000000")
	want := [][2]string{{"rtsp_transport", "tcp"}, {"probesize", "5000000"}}
	if len(got) != len(want) {
		t.Fatalf("splitParams returned %d pairs, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSplitParamsKeyWithoutValue(t *testing.T) {
	got := splitParams("standalone")
	if len(got) != 1 || got[0] != [2]string{"standalone", ""} {
		t.Fatalf("splitParams(%q) = %v", "standalone", got)
	}
}

func TestSplitParamsIgnoresEmptySegments(t *testing.T) {
	got := splitParams(",,a=1,,b=2,")
	want := [][2]string{{"a", "1"}, {"b", "2"}}
	if len(got) != len(want) {
		t.Fatalf("splitParams returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSplitParamsEmptyString(t *testing.T) {
	if got := splitParams(""); len(got) != 0 {
		t.Fatalf("splitParams(\"\") = %v, want empty", got)
	}
}
