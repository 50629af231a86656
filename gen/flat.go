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
	"fmt"

	"FlowyVoxel/block"
	"FlowyVoxel/world"
)

// Flat - найпростіший генератор: камінь до висоти колонки, вище повітря.
// Висота кожної колонки - хеш від сіда і координат у [Min, Max].
type Flat struct {
	Seed     int64
	Min, Max int
	Stone    block.ID
}

// NewFlat шукає камінь у реєстрі
func NewFlat(reg *block.Registry, seed int64, minHeight, maxHeight int) (*Flat, error) {
	if minHeight > maxHeight {
		return nil, fmt.Errorf("flat generator: min height %d above max %d", minHeight, maxHeight)
	}
	stone, err := reg.ID("Stone")
	if err != nil {
		return nil, fmt.Errorf("flat generator: %w", err)
	}
	return &Flat{Seed: seed, Min: minHeight, Max: maxHeight, Stone: stone}, nil
}

// Height повертає висоту колонки. Блоки з worldY < Height - камінь.
func (g *Flat) Height(x, z int32) int {
	span := uint32(g.Max - g.Min + 1)
	return g.Min + int(hash2(uint32(g.Seed)^uint32(g.Seed>>32), x, z)%span)
}

// Generate заповнює чанк
func (g *Flat) Generate(pos world.ChunkPos, l world.Layout, voxels []block.ID) error {
	if err := checkBuffer(l, voxels); err != nil {
		return err
	}
	origin := l.Origin(pos)
	for x := 0; x < l.Size[0]; x++ {
		for z := 0; z < l.Size[2]; z++ {
			h := g.Height(origin[0]+int32(x), origin[2]+int32(z))
			for y := 0; y < l.Size[1]; y++ {
				id := block.Air
				if int(origin[1])+y < h {
					id = g.Stone
				}
				voxels[l.Index(x, y, z)] = id
			}
		}
	}
	return nil
}

func checkBuffer(l world.Layout, voxels []block.ID) error {
	if len(voxels) != l.Volume() {
		return fmt.Errorf("voxel buffer has %d cells, chunk needs %d", len(voxels), l.Volume())
	}
	return nil
}

// hash2 - стабільний хеш цілих координат колонки
func hash2(seed uint32, x, z int32) uint32 {
	h := seed
	h ^= uint32(x) * 0x9e3779b1
	h ^= uint32(z) * 0x85ebca6b
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return h
}
