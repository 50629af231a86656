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

package gen

import (
	"errors"
	"math"
	"testing"

	"FlowyVoxel/block"
	"FlowyVoxel/world"
)

func TestNoise_Deterministic(t *testing.T) {
	a, b, c := NewNoise(42), NewNoise(42), NewNoise(43)
	differs := false
	for i := 0; i < 200; i++ {
		x, y := float64(i)*0.37-20, float64(i)*0.91+3
		for _, kind := range []NoiseKind{Perlin, Simplex} {
			if a.Sample(kind, x, y) != b.Sample(kind, x, y) {
				t.Fatalf("same seed gave different noise at (%v, %v)", x, y)
			}
			if a.Sample(kind, x, y) != c.Sample(kind, x, y) {
				differs = true
			}
		}
	}
	if !differs {
		t.Error("different seeds produced identical noise")
	}
}

func TestNoise_Range(t *testing.T) {
	n := NewNoise(7)
	for i := 0; i < 10000; i++ {
		x, y := float64(i%100)*0.173-8, float64(i/100)*0.291-14
		for _, kind := range []NoiseKind{Perlin, Simplex} {
			if v := n.Sample(kind, x, y); math.Abs(v) > 1.1 {
				t.Fatalf("noise kind %d out of range at (%v, %v): %v", kind, x, y, v)
			}
		}
	}
}

func TestFractal_Channels(t *testing.T) {
	// Канали з різними зсувами сіда не повинні збігатися
	a := NewFractal(1, DefaultChannels[Temperature])
	b := NewFractal(1, DefaultChannels[Humidity])
	same := true
	for i := 0; i < 50; i++ {
		x, z := float64(i*13), float64(i*7)
		if a.Sample(x, z) != b.Sample(x, z) {
			same = false
		}
	}
	if same {
		t.Error("temperature and humidity channels are identical")
	}
}

func TestBiomeTable_Nearest(t *testing.T) {
	var near, far Features
	for i := range far {
		far[i] = 1
	}
	table, err := NewBiomeTable([]Biome{
		{Name: "first", Target: near},
		{Name: "second", Target: near},
		{Name: "far", Target: far},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := table.Nearest(Features{}).Name; got != "first" {
		t.Errorf("tie broken to %q, want first registered", got)
	}
	if got := table.Nearest(far).Name; got != "far" {
		t.Errorf("nearest = %q, want far", got)
	}
}

func TestNewNoiseBiome_NoBiomes(t *testing.T) {
	_, err := NewNoiseBiome(0, Terrain{MinHeight: 32, MaxHeight: 64}, DefaultChannels, nil)
	if !errors.Is(err, ErrNoBiomes) {
		t.Fatalf("err = %v, want ErrNoBiomes", err)
	}
}

func TestBiomesFromPack(t *testing.T) {
	pack, err := block.DefaultPack()
	if err != nil {
		t.Fatal(err)
	}
	reg, err := pack.Registry()
	if err != nil {
		t.Fatal(err)
	}
	biomes, err := BiomesFromPack(pack.Biomes, reg)
	if err != nil {
		t.Fatal(err)
	}
	if len(biomes) != len(pack.Biomes) {
		t.Fatalf("got %d biomes, want %d", len(biomes), len(pack.Biomes))
	}
	grass, _ := reg.ID("Grass")
	if biomes[0].Top != grass {
		t.Errorf("plains top = %d, want grass %d", biomes[0].Top, grass)
	}

	bad := []block.BiomeDef{{Name: "lava", Blocks: block.BiomeBlocks{
		Water: "Water", Top: "Magma", Filler: "Stone", Stone: "Stone", Bottom: "Bedrock",
	}}}
	if _, err := BiomesFromPack(bad, reg); !errors.Is(err, block.ErrUnknownBlockName) {
		t.Errorf("err = %v, want ErrUnknownBlockName", err)
	}
}

func TestTerrainHeight_Clamped(t *testing.T) {
	var low, high Features
	for i := range high {
		high[i] = 1
	}
	if h := TerrainHeight(low, 32, 64); h != 32 {
		t.Errorf("height for zero features = %d, want 32", h)
	}
	if h := TerrainHeight(high, 32, 64); h != 64 {
		t.Errorf("height for max features = %d, want 64", h)
	}
}

func TestNoiseBiome_BlockAt(t *testing.T) {
	b := Biome{Air: 0, Water: 1, Top: 2, Filler: 3, Stone: 4, Bottom: 5, TopDepth: 1, FillerDepth: 3}
	g, err := NewNoiseBiome(0, Terrain{SeaLevel: 48, MinHeight: 32, MaxHeight: 64}, DefaultChannels, []Biome{b})
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range []struct {
		y    int
		want block.ID
	}{
		{50, b.Air},
		{48, b.Water},
		{45, b.Water},
		{40, b.Top},
		{39, b.Filler},
		{36, b.Filler},
		{35, b.Stone},
		{1, b.Stone},
		{0, b.Bottom},
		{-3, b.Bottom},
	} {
		if got := g.BlockAt(&b, 40, tt.y); got != tt.want {
			t.Errorf("BlockAt(height 40, y %d) = %d, want %d", tt.y, got, tt.want)
		}
	}
}

func TestNoiseBiome_ShallowTerrainKeepsTopLayers(t *testing.T) {
	b := Biome{Air: 0, Water: 1, Top: 2, Filler: 3, Stone: 4, Bottom: 5, TopDepth: 1, FillerDepth: 3}
	g, err := NewNoiseBiome(0, Terrain{SeaLevel: -10, MinHeight: 0, MaxHeight: 8}, DefaultChannels, []Biome{b})
	if err != nil {
		t.Fatal(err)
	}
	// Рельєф на висоті 2 над дном світу 0: верх і підґрунтя лягають поверх дна
	for _, tt := range []struct {
		y    int
		want block.ID
	}{
		{2, b.Top},
		{1, b.Filler},
		{0, b.Filler},
		{-1, b.Filler},
		{-2, b.Filler},
		{-3, b.Bottom},
		{-6, b.Bottom},
	} {
		if got := g.BlockAt(&b, 2, tt.y); got != tt.want {
			t.Errorf("BlockAt(height 2, y %d) = %d, want %d", tt.y, got, tt.want)
		}
	}
}

func newDefaultNoiseBiome(t *testing.T) (*NoiseBiome, *block.Registry) {
	t.Helper()
	pack, err := block.DefaultPack()
	if err != nil {
		t.Fatal(err)
	}
	reg, err := pack.Registry()
	if err != nil {
		t.Fatal(err)
	}
	biomes, err := BiomesFromPack(pack.Biomes, reg)
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewNoiseBiome(1337, Terrain{SeaLevel: 48, MinHeight: 32, MaxHeight: 64}, DefaultChannels, biomes)
	if err != nil {
		t.Fatal(err)
	}
	return g, reg
}

func TestNoiseBiome_Deterministic(t *testing.T) {
	g, _ := newDefaultNoiseBiome(t)
	l := world.Layout{Size: [3]int{16, 16, 16}}
	pos := world.ChunkPos{-3, 2, 5}

	a := make([]block.ID, l.Volume())
	b := make([]block.ID, l.Volume())
	if err := g.Generate(pos, l, a); err != nil {
		t.Fatal(err)
	}
	// Інший чанк між двома генераціями не впливає на результат
	other := make([]block.ID, l.Volume())
	if err := g.Generate(world.ChunkPos{0, 0, 0}, l, other); err != nil {
		t.Fatal(err)
	}
	if err := g.Generate(pos, l, b); err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("voxel %d differs between runs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestNoiseBiome_FlipY(t *testing.T) {
	g, _ := newDefaultNoiseBiome(t)
	plain := world.Layout{Size: [3]int{8, 31, 8}}
	flipped := world.Layout{Size: [3]int{8, 31, 8}, FlipY: true}
	pos := world.ChunkPos{1, 1, -1}

	a := make([]block.ID, plain.Volume())
	b := make([]block.ID, flipped.Volume())
	if err := g.Generate(pos, plain, a); err != nil {
		t.Fatal(err)
	}
	if err := g.Generate(pos, flipped, b); err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 8; x++ {
		for y := 0; y < 31; y++ {
			for z := 0; z < 8; z++ {
				if a[plain.Index(x, y, z)] != b[flipped.Index(x, y, z)] {
					t.Fatalf("voxel (%d,%d,%d) differs with flipped storage", x, y, z)
				}
			}
		}
	}
	// Нижній шар у перевернутому сховищі лежить в останньому рядку
	if got := flipped.Index(0, 0, 0); got != (31-1)*8*8 {
		t.Error("flipped layout does not store world bottom in the last row")
	}
}

func TestGenerate_BufferSize(t *testing.T) {
	g, _ := newDefaultNoiseBiome(t)
	l := world.Layout{Size: [3]int{4, 4, 4}}
	if err := g.Generate(world.ChunkPos{}, l, make([]block.ID, 10)); err == nil {
		t.Error("short buffer should be rejected")
	}
}

func TestFlat(t *testing.T) {
	reg := block.NewRegistry()
	stone, err := reg.Add(block.Type{Name: "Stone", Visible: true})
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewFlat(reg, 99, 10, 20)
	if err != nil {
		t.Fatal(err)
	}
	for x := int32(-50); x < 50; x++ {
		if h := g.Height(x, x*3); h < 10 || h > 20 {
			t.Fatalf("height %d out of [10, 20]", h)
		}
	}

	l := world.Layout{Size: [3]int{31, 31, 31}}
	g.Min, g.Max = 16, 16
	voxels := make([]block.ID, l.Volume())
	if err := g.Generate(world.ChunkPos{}, l, voxels); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 31; y++ {
		want := block.Air
		if y < 16 {
			want = stone
		}
		if got := voxels[l.Index(5, y, 7)]; got != want {
			t.Fatalf("voxel at y=%d is %d, want %d", y, got, want)
		}
	}
}

func TestNewFlat_NoStone(t *testing.T) {
	if _, err := NewFlat(block.NewRegistry(), 0, 0, 1); !errors.Is(err, block.ErrUnknownBlockName) {
		t.Errorf("err = %v, want ErrUnknownBlockName", err)
	}
}
