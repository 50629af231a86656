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

package mesh

import (
	"bytes"
	"testing"

	"FlowyVoxel/block"
)

func testRegistry(t *testing.T) (*block.Registry, block.ID) {
	t.Helper()
	reg := block.NewRegistry()
	stone, err := reg.Add(block.Type{Name: "Stone", Visible: true, TextureTop: 1, TextureBottom: 2, TextureSide: 3})
	if err != nil {
		t.Fatal(err)
	}
	return reg, stone
}

// fill повертає буфер, де voxel(x,y,z) = f(x,y,z)
func fill(size [3]int, f func(x, y, z int) block.ID) []block.ID {
	v := make([]block.ID, size[0]*size[1]*size[2])
	for y := 0; y < size[1]; y++ {
		for z := 0; z < size[2]; z++ {
			for x := 0; x < size[0]; x++ {
				v[x+size[0]*(z+size[2]*y)] = f(x, y, z)
			}
		}
	}
	return v
}

func checkCounts(t *testing.T, m *Mesh) {
	t.Helper()
	if len(m.Vertices) != 4*m.Quads || len(m.Indices) != 6*m.Quads {
		t.Errorf("quads=%d vertices=%d indices=%d", m.Quads, len(m.Vertices), len(m.Indices))
	}
}

func TestBuild_FlatStone(t *testing.T) {
	reg, stone := testRegistry(t)
	size := [3]int{31, 31, 31}
	voxels := fill(size, func(x, y, z int) block.ID {
		if y < 16 {
			return stone
		}
		return block.Air
	})
	m := Build(Input{Voxels: voxels, Size: size, UpSign: 1}, reg)
	checkCounts(t, m)
	if m.Quads != 6 {
		t.Fatalf("quads = %d, want 6 (top, bottom, four sides)", m.Quads)
	}

	var top, bottom, side int
	for q := 0; q < m.Quads; q++ {
		switch m.Vertices[q*4].Tex {
		case 1:
			top++
			if y := m.Vertices[q*4].Pos[1]; y != PackPosition(16) {
				t.Errorf("top face at y=%d, want %d", y, PackPosition(16))
			}
		case 2:
			bottom++
		case 3:
			side++
		}
	}
	if top != 1 || bottom != 1 || side != 4 {
		t.Errorf("top=%d bottom=%d side=%d, want 1/1/4", top, bottom, side)
	}
}

func TestBuild_ThinSlab(t *testing.T) {
	reg, stone := testRegistry(t)
	size := [3]int{8, 1, 8}
	voxels := fill(size, func(int, int, int) block.ID { return stone })
	m := Build(Input{Voxels: voxels, Size: size, UpSign: 1}, reg)
	checkCounts(t, m)
	if m.Quads != 6 {
		t.Fatalf("quads = %d, want 6", m.Quads)
	}
}

func TestBuild_Empty(t *testing.T) {
	reg, _ := testRegistry(t)
	size := [3]int{16, 16, 16}
	m := Build(Input{Voxels: make([]block.ID, 16*16*16), Size: size, UpSign: 1}, reg)
	if !m.Empty() || len(m.Vertices) != 0 {
		t.Errorf("air chunk produced %d quads", m.Quads)
	}
}

func TestBuild_SeparateCubes(t *testing.T) {
	reg, stone := testRegistry(t)
	size := [3]int{5, 5, 5}
	voxels := fill(size, func(x, y, z int) block.ID {
		if (x == 1 && y == 1 && z == 1) || (x == 3 && y == 3 && z == 3) {
			return stone
		}
		return block.Air
	})
	m := Build(Input{Voxels: voxels, Size: size, UpSign: 1}, reg)
	checkCounts(t, m)
	if m.Quads != 12 {
		t.Errorf("quads = %d, want 12", m.Quads)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	reg, stone := testRegistry(t)
	size := [3]int{12, 9, 7}
	voxels := fill(size, func(x, y, z int) block.ID {
		if (x*7+y*3+z*5)%4 == 0 || y < 2 {
			return stone
		}
		return block.Air
	})
	in := Input{Voxels: voxels, Size: size, UpSign: 1}
	a, b := Build(in, reg), Build(in, reg)
	checkCounts(t, a)
	if !bytes.Equal(a.VertexBytes(), b.VertexBytes()) || !bytes.Equal(a.IndexBytes(), b.IndexBytes()) {
		t.Error("remeshing the same voxels produced different buffers")
	}
	if got := len(a.VertexBytes()); got != len(a.Vertices)*VertexSize {
		t.Errorf("vertex bytes = %d, want %d", got, len(a.Vertices)*VertexSize)
	}
}

func TestBuild_LODStride(t *testing.T) {
	reg, stone := testRegistry(t)
	size := [3]int{8, 8, 8}
	voxels := fill(size, func(int, int, int) block.ID { return stone })
	m := Build(Input{Voxels: voxels, Size: size, LOD: 1, UpSign: 1}, reg)
	if m.Quads != 6 {
		t.Fatalf("quads = %d, want 6", m.Quads)
	}
	var maxPos int16
	for _, v := range m.Vertices {
		for _, c := range v.Pos {
			maxPos = max(maxPos, c)
		}
	}
	if maxPos != PackPosition(8) {
		t.Errorf("LOD 1 mesh extends to %d, want %d", maxPos, PackPosition(8))
	}
	// Квад 4x4 клітинки вибірки, UV у клітинках
	if u, v := UnpackUV(m.Vertices[2].UV); u != 4 || v != 4 {
		t.Errorf("far corner uv = (%v, %v), want (4, 4)", u, v)
	}
}

func TestBuild_Winding(t *testing.T) {
	reg, stone := testRegistry(t)
	size := [3]int{1, 1, 1}
	m := Build(Input{Voxels: []block.ID{stone}, Size: size, UpSign: 1}, reg)
	if m.Quads != 6 {
		t.Fatalf("quads = %d, want 6", m.Quads)
	}
	// Вісь X: спершу задня грань на x=0, потім передня на x=1
	back, front := m.Indices[0:6], m.Indices[6:12]
	if back[1] != 2 || back[2] != 1 {
		t.Errorf("back face indices = %v, want 0 2 1 0 3 2", back)
	}
	if front[1] != 5 || front[2] != 6 {
		t.Errorf("front face indices = %v, want 4 5 6 6 7 4", front)
	}
	if m.Vertices[0].Pos[0] != 0 || m.Vertices[4].Pos[0] != PackPosition(1) {
		t.Error("x faces are not on planes 0 and 1")
	}
}

func TestBuild_FlippedTextures(t *testing.T) {
	reg, stone := testRegistry(t)
	size := [3]int{1, 1, 1}
	m := Build(Input{Voxels: []block.ID{stone}, Size: size, UpSign: -1}, reg)
	// Вісь Y: квади 2 (рядок 0) і 3 (рядок 1)
	if got := m.Vertices[8].Tex; got != 1 {
		t.Errorf("row 0 face texture = %d, want top (1) when Y is flipped", got)
	}
	if got := m.Vertices[12].Tex; got != 2 {
		t.Errorf("row 1 face texture = %d, want bottom (2) when Y is flipped", got)
	}
}

func TestPackUV(t *testing.T) {
	if got := PackUV(1, 1); got != 0x1010 {
		t.Errorf("PackUV(1,1) = %#x, want 0x1010", got)
	}
	if got := PackUV(31, -1); got != 0x00FF {
		t.Errorf("PackUV(31,-1) = %#x, want 0x00ff", got)
	}
	if got := PackPosition(-1.5); got != -24 {
		t.Errorf("PackPosition(-1.5) = %d, want -24", got)
	}
}
