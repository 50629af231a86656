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

// Йоу, чат! Тут вся математика координат світу.
// Є три системи: світові блоки, координати чанків і локальні
// координати вокселя всередині чанка. Layout знає розмір чанка
// і те, чи перевернута вісь Y у сховищі (під Vulkan, де Y дивиться вниз).
// Усі переходи між системами робляться тільки тут.

package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkPos - координати чанка в сітці чанків
type ChunkPos [3]int32

// BlockPos - світові координати блоку
type BlockPos [3]int32

// Add зсуває позицію чанка
func (p ChunkPos) Add(o ChunkPos) ChunkPos {
	return ChunkPos{p[0] + o[0], p[1] + o[1], p[2] + o[2]}
}

// Layout - розмір чанка і домовленість про вісь Y
type Layout struct {
	Size  [3]int // ширина (X), висота (Y), глибина (Z)
	FlipY bool   // рядок 0 у сховищі - верхній шар чанка
}

// Volume повертає кількість вокселів в одному чанку
func (l Layout) Volume() int {
	return l.Size[0] * l.Size[1] * l.Size[2]
}

// Row переводить локальну висоту вокселя в номер рядка сховища
func (l Layout) Row(y int) int {
	if l.FlipY {
		return l.Size[1] - 1 - y
	}
	return y
}

// Index повертає позицію вокселя в плоскому масиві чанка.
// Порядок: x найшвидший, потім z, потім рядок y.
func (l Layout) Index(x, y, z int) int {
	return x + l.Size[0]*(z+l.Size[2]*l.Row(y))
}

// ChunkOf повертає чанк, якому належить блок
func (l Layout) ChunkOf(p BlockPos) ChunkPos {
	return ChunkPos{
		floorDiv(p[0], int32(l.Size[0])),
		floorDiv(p[1], int32(l.Size[1])),
		floorDiv(p[2], int32(l.Size[2])),
	}
}

// LocalOf повертає координати блоку всередині його чанка, завжди в [0, size)
func (l Layout) LocalOf(p BlockPos) [3]int {
	return [3]int{
		int(floorMod(p[0], int32(l.Size[0]))),
		int(floorMod(p[1], int32(l.Size[1]))),
		int(floorMod(p[2], int32(l.Size[2]))),
	}
}

// Origin - світова позиція локального (0,0,0) чанка
func (l Layout) Origin(c ChunkPos) BlockPos {
	return BlockPos{
		c[0] * int32(l.Size[0]),
		c[1] * int32(l.Size[1]),
		c[2] * int32(l.Size[2]),
	}
}

// BlockOf - обернене до ChunkOf/LocalOf
func (l Layout) BlockOf(c ChunkPos, local [3]int) BlockPos {
	o := l.Origin(c)
	return BlockPos{o[0] + int32(local[0]), o[1] + int32(local[1]), o[2] + int32(local[2])}
}

// ChunkAt повертає чанк, в якому знаходиться точка світу
func (l Layout) ChunkAt(point [3]float64) ChunkPos {
	var c ChunkPos
	for i := range c {
		c[i] = int32(math.Floor(point[i] / float64(l.Size[i])))
	}
	return c
}

// Translation - зсув мешу чанка в просторі рендеру.
// Меш будується в координатах рядків сховища, тому при FlipY
// чанки вздовж Y йдуть у від'ємний бік.
func (l Layout) Translation(c ChunkPos) mgl32.Vec3 {
	y := float32(c[1]) * float32(l.Size[1])
	if l.FlipY {
		y = -y
	}
	return mgl32.Vec3{
		float32(c[0]) * float32(l.Size[0]),
		y,
		float32(c[2]) * float32(l.Size[2]),
	}
}

// Transform - матриця моделі чанка для рендерера
func (l Layout) Transform(c ChunkPos) mgl32.Mat4 {
	t := l.Translation(c)
	return mgl32.Translate3D(t[0], t[1], t[2])
}

// UpSign повертає +1 якщо зростання рядка сховища означає "вгору" у світі,
// і -1 якщо вісь перевернута. Мешер за цим обирає верхню чи нижню текстуру.
func (l Layout) UpSign() int {
	if l.FlipY {
		return -1
	}
	return 1
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int32) int32 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
