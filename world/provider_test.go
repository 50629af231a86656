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
	"errors"
	"io/fs"
	"testing"

	"go.uber.org/zap/zaptest"

	"FlowyVoxel/block"
)

func providerRegistry(t *testing.T) (*block.Registry, block.ID, block.ID) {
	t.Helper()
	reg := block.NewRegistry()
	stone, err := reg.Add(block.Type{Name: "Stone", Visible: true})
	if err != nil {
		t.Fatal(err)
	}
	dirt, err := reg.Add(block.Type{Name: "Dirt", Visible: true})
	if err != nil {
		t.Fatal(err)
	}
	return reg, stone, dirt
}

func TestRegionProvider_RoundTrip(t *testing.T) {
	reg, stone, dirt := providerRegistry(t)
	for _, flip := range []bool{false, true} {
		layout := Layout{Size: [3]int{4, 6, 5}, FlipY: flip}
		p, err := NewRegionProvider(t.TempDir(), layout, reg)
		if err != nil {
			t.Fatal(err)
		}
		voxels := make([]block.ID, layout.Volume())
		for i := range voxels {
			switch i % 3 {
			case 1:
				voxels[i] = stone
			case 2:
				voxels[i] = dirt
			}
		}
		pos := ChunkPos{-33, -2, 40}
		if err := p.PutChunk(pos, voxels); err != nil {
			t.Fatal(err)
		}
		got := make([]block.ID, layout.Volume())
		if err := p.GetChunk(pos, got); err != nil {
			t.Fatal(err)
		}
		for i := range voxels {
			if got[i] != voxels[i] {
				t.Fatalf("flip %v: voxel %d = %d, want %d", flip, i, got[i], voxels[i])
			}
		}
	}
}

func TestRegionProvider_Missing(t *testing.T) {
	reg, stone, _ := providerRegistry(t)
	layout := Layout{Size: [3]int{4, 4, 4}}
	p, err := NewRegionProvider(t.TempDir(), layout, reg)
	if err != nil {
		t.Fatal(err)
	}
	voxels := make([]block.ID, layout.Volume())
	if err := p.GetChunk(ChunkPos{0, 0, 0}, voxels); !errors.Is(err, ErrChunkNotExist) {
		t.Fatalf("no region file: err = %v, want ErrChunkNotExist", err)
	}
	voxels[0] = stone
	if err := p.PutChunk(ChunkPos{0, 0, 0}, voxels); err != nil {
		t.Fatal(err)
	}
	// Той самий регіон, інший сектор
	if err := p.GetChunk(ChunkPos{1, 0, 0}, voxels); !errors.Is(err, ErrChunkNotExist) {
		t.Fatalf("empty sector: err = %v, want ErrChunkNotExist", err)
	}
	// Інший шар по Y - інший файл
	if err := p.GetChunk(ChunkPos{0, 1, 0}, voxels); !errors.Is(err, ErrChunkNotExist) {
		t.Fatalf("other layer: err = %v, want ErrChunkNotExist", err)
	}
}

func TestRegionProvider_SizeMismatch(t *testing.T) {
	reg, _, _ := providerRegistry(t)
	dir := t.TempDir()
	small := Layout{Size: [3]int{4, 4, 4}}
	p, err := NewRegionProvider(dir, small, reg)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.PutChunk(ChunkPos{}, make([]block.ID, small.Volume())); err != nil {
		t.Fatal(err)
	}
	big := Layout{Size: [3]int{8, 8, 8}}
	p2, err := NewRegionProvider(dir, big, reg)
	if err != nil {
		t.Fatal(err)
	}
	err = p2.GetChunk(ChunkPos{}, make([]block.ID, big.Volume()))
	if err == nil || errors.Is(err, ErrChunkNotExist) {
		t.Errorf("size mismatch err = %v", err)
	}
}

func TestWorld_RestoresEditedChunk(t *testing.T) {
	reg, stone, _ := providerRegistry(t)
	layout := Layout{Size: [3]int{4, 4, 4}}
	p, err := NewRegionProvider(t.TempDir(), layout, reg)
	if err != nil {
		t.Fatal(err)
	}
	g := &layerGen{stone: stone, height: 2}
	w, err := New(zaptest.NewLogger(t), Config{Layout: layout}, reg, g, newFakeRenderer(), p)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := w.CreateChunk(ChunkPos{}, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.SetVoxel(BlockPos{1, 3, 1}, stone); err != nil {
		t.Fatal(err)
	}
	if err := w.DestroyChunk(ChunkPos{}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.CreateChunk(ChunkPos{}, 0); err != nil {
		t.Fatal(err)
	}
	if got := w.GetVoxel(BlockPos{1, 3, 1}); got != stone {
		t.Errorf("edited voxel after reload = %d, want stone", got)
	}

	// Незмінений чанк не зберігається і генерується заново
	if _, err := w.CreateChunk(ChunkPos{5, 0, 0}, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.DestroyChunk(ChunkPos{5, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := p.GetChunk(ChunkPos{5, 0, 0}, make([]block.ID, layout.Volume())); !errors.Is(err, ErrChunkNotExist) {
		t.Errorf("untouched chunk was saved: %v", err)
	}
}

func TestLevelInfo(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLevel(dir); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing level.dat err = %v", err)
	}
	layout := Layout{Size: [3]int{32, 16, 32}, FlipY: true}
	if err := SaveLevel(dir, NewLevelInfo(-42, "noise-biome", layout)); err != nil {
		t.Fatal(err)
	}
	info, err := LoadLevel(dir)
	if err != nil {
		t.Fatal(err)
	}
	if info.Seed != -42 || info.Generator != "noise-biome" {
		t.Errorf("level info = %+v", info)
	}
	if !info.Matches(layout) {
		t.Error("level info must match the layout it was saved with")
	}
	if info.Matches(Layout{Size: [3]int{32, 16, 32}}) {
		t.Error("flip y mismatch not detected")
	}
	if info.Matches(Layout{Size: [3]int{16, 16, 16}, FlipY: true}) {
		t.Error("size mismatch not detected")
	}
}
