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
	"fmt"
	"math"

	"FlowyVoxel/block"
)

// ErrNoBiomes - таблиця біомів порожня, генерувати нічого
var ErrNoBiomes = errors.New("no biomes registered")

// Індекси ознак у векторі Features
const (
	Elevation = iota
	Erosion
	Continentalness
	Weirdness
	Temperature
	Humidity
	FeatureCount
)

// FeatureNames - назви ознак, як вони пишуться в паку
var FeatureNames = [FeatureCount]string{
	"elevation", "erosion", "continentalness", "weirdness", "temperature", "humidity",
}

// Features - вектор ознак колонки, кожна в [0, 1]
type Features [FeatureCount]float64

// Distance2 - квадрат евклідової відстані між двома векторами ознак
func (f Features) Distance2(o Features) float64 {
	var sum float64
	for i := range f {
		d := f[i] - o[i]
		sum += d * d
	}
	return sum
}

// Biome - точка в просторі ознак і набір блоків для шарів колонки
type Biome struct {
	Name   string
	Target Features

	Air, Water, Top, Filler, Stone, Bottom block.ID

	TopDepth    int
	FillerDepth int
}

// BiomeTable - впорядкований список біомів
type BiomeTable struct {
	biomes []Biome
}

// NewBiomeTable перевіряє, що є хоч один біом
func NewBiomeTable(biomes []Biome) (*BiomeTable, error) {
	if len(biomes) == 0 {
		return nil, ErrNoBiomes
	}
	return &BiomeTable{biomes: append([]Biome(nil), biomes...)}, nil
}

// Nearest повертає найближчий біом. При рівних відстанях
// виграє той, що зареєстрований раніше.
func (t *BiomeTable) Nearest(f Features) *Biome {
	best := &t.biomes[0]
	bestDist := best.Target.Distance2(f)
	for i := 1; i < len(t.biomes); i++ {
		if d := t.biomes[i].Target.Distance2(f); d < bestDist {
			best, bestDist = &t.biomes[i], d
		}
	}
	return best
}

// Len повертає кількість біомів
func (t *BiomeTable) Len() int { return len(t.biomes) }

// BiomesFromPack перетворює описи з паку на біоми, шукаючи блоки в реєстрі.
// Ознака, якої немає в описі, дорівнює 0.5 (середина діапазону).
func BiomesFromPack(defs []block.BiomeDef, reg *block.Registry) ([]Biome, error) {
	biomes := make([]Biome, 0, len(defs))
	for _, def := range defs {
		b := Biome{
			Name:        def.Name,
			TopDepth:    def.TopDepth,
			FillerDepth: def.FillerDepth,
		}
		for i := range b.Target {
			b.Target[i] = 0.5
		}
		for name, v := range def.Features {
			i := featureIndex(name)
			if i < 0 {
				return nil, fmt.Errorf("biome %q: unknown feature %q", def.Name, name)
			}
			b.Target[i] = v
		}

		var err error
		lookup := func(dst *block.ID, name, fallback string) {
			if err != nil {
				return
			}
			if name == "" {
				name = fallback
			}
			*dst, err = reg.ID(name)
		}
		lookup(&b.Air, def.Blocks.Air, "Air")
		lookup(&b.Water, def.Blocks.Water, "")
		lookup(&b.Top, def.Blocks.Top, "")
		lookup(&b.Filler, def.Blocks.Filler, "")
		lookup(&b.Stone, def.Blocks.Stone, "")
		lookup(&b.Bottom, def.Blocks.Bottom, "")
		if err != nil {
			return nil, fmt.Errorf("biome %q: %w", def.Name, err)
		}
		biomes = append(biomes, b)
	}
	return biomes, nil
}

func featureIndex(name string) int {
	for i, n := range FeatureNames {
		if n == name {
			return i
		}
	}
	return -1
}

// TerrainHeight рахує висоту поверхні з ознак колонки.
// Висота степенево залежить від elevation, і все масштабується
// континентальністю. Результат обрізається до [minHeight, maxHeight].
func TerrainHeight(f Features, minHeight, maxHeight int) int {
	elevation := math.Pow(f[Elevation], 1.5)
	erosion := f[Erosion] * 0.5
	weirdness := f[Weirdness] * 2
	combined := f[Continentalness] * (elevation + erosion + weirdness)

	h := float64(minHeight) + combined*float64(maxHeight-minHeight)
	return clampInt(int(math.Floor(h)), minHeight, maxHeight)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
