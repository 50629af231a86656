// This file is part of go-mc/server project.
// Copyright (C) 2023.  Tnze
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLayout_RoundTrip(t *testing.T) {
	l := Layout{Size: [3]int{31, 31, 31}}
	if c := l.ChunkOf(BlockPos{-1, 0, 0}); c != (ChunkPos{-1, 0, 0}) {
		t.Errorf("ChunkOf(-1) = %v, want chunk -1", c)
	}
	if local := l.LocalOf(BlockPos{-1, 0, 0}); local[0] != 30 {
		t.Errorf("LocalOf(-1) = %v, want local x 30", local)
	}
	for x := int32(-100); x <= 100; x += 7 {
		for y := int32(-64); y <= 64; y += 13 {
			for z := int32(-100); z <= 100; z += 11 {
				p := BlockPos{x, y, z}
				local := l.LocalOf(p)
				for i, v := range local {
					if v < 0 || v >= l.Size[i] {
						t.Fatalf("LocalOf(%v) = %v out of range", p, local)
					}
				}
				if got := l.BlockOf(l.ChunkOf(p), local); got != p {
					t.Fatalf("round trip of %v gave %v", p, got)
				}
			}
		}
	}
}

func TestLayout_NonCubic(t *testing.T) {
	l := Layout{Size: [3]int{16, 64, 8}}
	p := BlockPos{-17, 65, -9}
	if c := l.ChunkOf(p); c != (ChunkPos{-2, 1, -2}) {
		t.Errorf("ChunkOf(%v) = %v", p, c)
	}
	if local := l.LocalOf(p); local != [3]int{15, 1, 7} {
		t.Errorf("LocalOf(%v) = %v", p, local)
	}
	if got := l.ChunkAt(Position{-0.5, 63.9, 8}); got != (ChunkPos{-1, 0, 1}) {
		t.Errorf("ChunkAt = %v", got)
	}
}

func TestLayout_Index(t *testing.T) {
	l := Layout{Size: [3]int{4, 3, 5}}
	if got := l.Index(1, 2, 3); got != 1+4*(3+5*2) {
		t.Errorf("Index = %d", got)
	}
	l.FlipY = true
	if got := l.Index(1, 2, 3); got != 1+4*(3+5*0) {
		t.Errorf("flipped Index = %d", got)
	}
	seen := make(map[int]bool)
	for y := 0; y < 3; y++ {
		for z := 0; z < 5; z++ {
			for x := 0; x < 4; x++ {
				i := l.Index(x, y, z)
				if i < 0 || i >= l.Volume() || seen[i] {
					t.Fatalf("index %d for (%d,%d,%d) is out of range or repeated", i, x, y, z)
				}
				seen[i] = true
			}
		}
	}
}

func TestLayout_Transform(t *testing.T) {
	l := Layout{Size: [3]int{31, 31, 31}}
	want := mgl32.Translate3D(31, 62, -31)
	if got := l.Transform(ChunkPos{1, 2, -1}); !got.ApproxEqual(want) {
		t.Errorf("Transform = %v, want %v", got, want)
	}
	l.FlipY = true
	if got := l.Translation(ChunkPos{1, 2, -1}); got != (mgl32.Vec3{31, -62, -31}) {
		t.Errorf("flipped Translation = %v", got)
	}
	if l.UpSign() != -1 {
		t.Error("flipped layout must report UpSign -1")
	}
}

func TestRingOffsets(t *testing.T) {
	offsets := ringOffsets([3]int32{2, 0, 1})
	if len(offsets) != 5*1*3 {
		t.Fatalf("got %d offsets, want 15", len(offsets))
	}
	if offsets[0] != (ChunkPos{}) {
		t.Errorf("first offset = %v, want the centre", offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if distance2(offsets[i]) < distance2(offsets[i-1]) {
			t.Fatalf("offsets not sorted by distance at %d", i)
		}
		if offsets[i][1] != 0 {
			t.Fatalf("zero y radius produced offset %v", offsets[i])
		}
	}
}
