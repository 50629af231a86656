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

// Йоу, чат! Це основний генератор світу.
// Для кожної колонки XZ беремо шість фрактальних шумів - це ознаки
// колонки. За ними знаходимо найближчий біом і висоту рельєфу, а тоді
// заповнюємо колонку зверху вниз: повітря, вода, верхній шар,
// наповнювач, камінь і дно світу.

package gen

import (
	"fmt"

	"FlowyVoxel/block"
	"FlowyVoxel/world"
)

// DefaultChannels - параметри шести каналів ознак, у порядку Features
var DefaultChannels = [FeatureCount]Channel{
	Elevation:       {Kind: Perlin, Frequency: 0.004, Octaves: 4, Lacunarity: 4, Gain: 0.7, SeedOffset: 0},
	Erosion:         {Kind: Simplex, Frequency: 0.03, Octaves: 1, Lacunarity: 2, Gain: 0.5, SeedOffset: 1},
	Continentalness: {Kind: Perlin, Frequency: 0.004, Octaves: 4, Lacunarity: 1.5, Gain: 0.7, SeedOffset: 2},
	Weirdness:       {Kind: Perlin, Frequency: 0.0014, Octaves: 8, Lacunarity: 1.5, Gain: 0.9, SeedOffset: 3},
	Temperature:     {Kind: Perlin, Frequency: 0.01, Octaves: 2, Lacunarity: 2, Gain: 0.3, SeedOffset: 4},
	Humidity:        {Kind: Perlin, Frequency: 0.017, Octaves: 2, Lacunarity: 2, Gain: 0.3, SeedOffset: 5},
}

// Terrain - висотні параметри світу
type Terrain struct {
	SeaLevel   int // включно: порожні блоки з worldY <= SeaLevel заливаються водою
	MinHeight  int
	MaxHeight  int
	WorldFloor int // на цій висоті і нижче лежить блок дна біому
}

// NoiseBiome - генератор на шумах і біомах.
// Після створення тільки читається, тому його можна звати з кількох горутин.
type NoiseBiome struct {
	terrain  Terrain
	channels [FeatureCount]*Fractal
	biomes   *BiomeTable
}

// NewNoiseBiome будує генератор. Без біомів повертає ErrNoBiomes.
func NewNoiseBiome(seed int64, terrain Terrain, channels [FeatureCount]Channel, biomes []Biome) (*NoiseBiome, error) {
	if terrain.MinHeight > terrain.MaxHeight {
		return nil, fmt.Errorf("noise generator: min height %d above max %d", terrain.MinHeight, terrain.MaxHeight)
	}
	table, err := NewBiomeTable(biomes)
	if err != nil {
		return nil, fmt.Errorf("noise generator: %w", err)
	}
	g := &NoiseBiome{terrain: terrain, biomes: table}
	for i, ch := range channels {
		g.channels[i] = NewFractal(seed, ch)
	}
	return g, nil
}

// Features рахує вектор ознак колонки
func (g *NoiseBiome) Features(x, z int32) Features {
	var f Features
	for i, ch := range g.channels {
		f[i] = clamp01(0.5 + ch.Sample(float64(x), float64(z))*0.5)
	}
	return f
}

// Column повертає біом і висоту рельєфу колонки
func (g *NoiseBiome) Column(x, z int32) (*Biome, int) {
	f := g.Features(x, z)
	return g.biomes.Nearest(f), TerrainHeight(f, g.terrain.MinHeight, g.terrain.MaxHeight)
}

// BlockAt - тип блоку на висоті worldY в колонці з біомом b і висотою height
func (g *NoiseBiome) BlockAt(b *Biome, height, worldY int) block.ID {
	if worldY > height {
		if worldY <= g.terrain.SeaLevel {
			return b.Water
		}
		return b.Air
	}
	// Верхній шар і підґрунтя важливіші за дно світу
	depth := height - worldY
	switch {
	case depth < b.TopDepth:
		return b.Top
	case depth <= b.TopDepth+b.FillerDepth:
		return b.Filler
	case worldY <= g.terrain.WorldFloor:
		return b.Bottom
	default:
		return b.Stone
	}
}

// Generate заповнює чанк
func (g *NoiseBiome) Generate(pos world.ChunkPos, l world.Layout, voxels []block.ID) error {
	if err := checkBuffer(l, voxels); err != nil {
		return err
	}
	origin := l.Origin(pos)
	for x := 0; x < l.Size[0]; x++ {
		wx := origin[0] + int32(x)
		for z := 0; z < l.Size[2]; z++ {
			b, height := g.Column(wx, origin[2]+int32(z))
			for y := 0; y < l.Size[1]; y++ {
				voxels[l.Index(x, y, z)] = g.BlockAt(b, height, int(origin[1])+y)
			}
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
