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

// Йоу, чат! Сьогодні жадібний мешинг!
// Для кожної з трьох осей ми проходимо площинами крізь чанк.
// На кожній площині будуємо маску: де з одного боку видимий блок,
// а з іншого порожнеча - там потрібна грань. Потім маску жадібно
// різаємо на найбільші прямокутники, і кожен стає одним квадом.
// Так замість тисяч маленьких граней виходять десятки великих.

// Package mesh перетворює воксельну сітку чанка на геометрію.
package mesh

import (
	"encoding/binary"

	"FlowyVoxel/block"
)

// Input - все, що мешеру треба знати про чанк
type Input struct {
	Voxels []block.ID // в порядку сховища: x + W*(z + D*row)
	Size   [3]int     // W, H, D
	LOD    int        // крок вибірки 2^LOD
	UpSign int        // +1 якщо зростання рядка - це вгору у світі, -1 якщо навпаки
}

// Mesh - результат мешингу одного чанка
type Mesh struct {
	Quads    int
	Vertices []Vertex
	Indices  []uint32
}

// Empty - чи є що малювати
func (m *Mesh) Empty() bool { return m.Quads == 0 }

// VertexBytes повертає вершини у форматі буфера GPU
func (m *Mesh) VertexBytes() []byte {
	b := make([]byte, 0, len(m.Vertices)*VertexSize)
	for _, v := range m.Vertices {
		b = v.AppendBinary(b)
	}
	return b
}

// IndexBytes повертає 32-бітні індекси в little-endian
func (m *Mesh) IndexBytes() []byte {
	b := make([]byte, 0, len(m.Indices)*4)
	for _, i := range m.Indices {
		b = binary.LittleEndian.AppendUint32(b, i)
	}
	return b
}

// Stride повертає крок вибірки для рівня деталізації
func Stride(lod int) int {
	if lod <= 0 {
		return 1
	}
	return 1 << lod
}

// sampler читає вокселі з кроком LOD
type sampler struct {
	in     Input
	stride int
	dims   [3]int
}

func newSampler(in Input) sampler {
	s := sampler{in: in, stride: Stride(in.LOD)}
	for i := range s.dims {
		s.dims[i] = max(1, in.Size[i]/s.stride)
	}
	return s
}

// at повертає блок у клітинці сітки вибірки. За межами чанка - повітря.
func (s *sampler) at(p [3]int) block.ID {
	for i := range p {
		if p[i] < 0 || p[i] >= s.dims[i] {
			return block.Air
		}
	}
	x, y, z := p[0]*s.stride, p[1]*s.stride, p[2]*s.stride
	return s.in.Voxels[x+s.in.Size[0]*(z+s.in.Size[2]*y)]
}

// Build будує меш чанка. Однаковий вхід завжди дає однаковий результат.
func Build(in Input, reg *block.Registry) *Mesh {
	m := &Mesh{}
	if len(in.Voxels) < in.Size[0]*in.Size[1]*in.Size[2] {
		return m
	}
	s := newSampler(in)

	for axis := 0; axis < 3; axis++ {
		u := (axis + 1) % 3
		v := (axis + 2) % 3
		mask := make([]int32, s.dims[u]*s.dims[v])

		for d := -1; d < s.dims[axis]; d++ {
			// Маска: +(тип+1) для передньої грані, -(тип+1) для задньої
			n := 0
			for j := 0; j < s.dims[v]; j++ {
				for i := 0; i < s.dims[u]; i++ {
					var behind, ahead [3]int
					behind[axis], ahead[axis] = d, d+1
					behind[u], ahead[u] = i, i
					behind[v], ahead[v] = j, j

					a, b := s.at(behind), s.at(ahead)
					solidA, solidB := reg.Visible(a), reg.Visible(b)
					switch {
					case solidA == solidB:
						mask[n] = 0
					case solidA:
						mask[n] = int32(a) + 1
					default:
						mask[n] = -(int32(b) + 1)
					}
					n++
				}
			}

			n = 0
			for j := 0; j < s.dims[v]; j++ {
				for i := 0; i < s.dims[u]; {
					c := mask[n]
					if c == 0 {
						i++
						n++
						continue
					}

					w := 1
					for i+w < s.dims[u] && mask[n+w] == c {
						w++
					}
					h := 1
				grow:
					for j+h < s.dims[v] {
						for k := 0; k < w; k++ {
							if mask[n+k+h*s.dims[u]] != c {
								break grow
							}
						}
						h++
					}

					for dy := 0; dy < h; dy++ {
						for dx := 0; dx < w; dx++ {
							mask[n+dx+dy*s.dims[u]] = 0
						}
					}

					var pos, size [3]int
					pos[axis] = d + 1
					pos[u], pos[v] = i, j
					size[u], size[v] = w, h
					m.emit(s.stride, pos, size, axis, c, reg.Type(faceBlock(c)), in.UpSign)

					i += w
					n += w
				}
			}
		}
	}
	return m
}

func faceBlock(c int32) block.ID {
	if c < 0 {
		c = -c
	}
	return block.ID(c - 1)
}

// emit додає квад: 4 вершини і 6 індексів.
// Для задніх граней порядок обходу обернений.
func (m *Mesh) emit(stride int, pos, size [3]int, axis int, c int32, t block.Type, upSign int) {
	u := (axis + 1) % 3
	v := (axis + 2) % 3

	tex := t.TextureSide
	if axis == 1 {
		// Грань дивиться в бік зростання рядка, якщо c > 0
		if (c > 0) == (upSign >= 0) {
			tex = t.TextureTop
		} else {
			tex = t.TextureBottom
		}
	}

	var du, dv [3]int
	du[u] = size[u]
	dv[v] = size[v]

	corners := [4][3]int{
		pos,
		add3(pos, du),
		add3(add3(pos, du), dv),
		add3(pos, dv),
	}
	uvs := [4][2]float32{
		{0, 0},
		{float32(size[u]), 0},
		{float32(size[u]), float32(size[v])},
		{0, float32(size[v])},
	}

	start := uint32(len(m.Vertices))
	for k, p := range corners {
		m.Vertices = append(m.Vertices, Vertex{
			Pos: [3]int16{
				PackPosition(float32(p[0] * stride)),
				PackPosition(float32(p[1] * stride)),
				PackPosition(float32(p[2] * stride)),
			},
			UV:  PackUV(uvs[k][0], uvs[k][1]),
			Tex: tex,
		})
	}
	if c > 0 {
		m.Indices = append(m.Indices, start, start+1, start+2, start+2, start+3, start)
	} else {
		m.Indices = append(m.Indices, start, start+2, start+1, start, start+3, start+2)
	}
	m.Quads++
}

func add3(a, b [3]int) [3]int {
	return [3]int{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}
