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

import "encoding/binary"

// Vertex - упакована вершина вокселя, 10 байт.
// Позиція у форматі 12.4 з фіксованою комою, UV - два поля 4.4 в одному слові.
type Vertex struct {
	Pos [3]int16
	UV  uint16 // v у старшому байті, u у молодшому
	Tex uint16 // шар масиву текстур
}

// VertexSize - розмір вершини у буфері GPU
const VertexSize = 10

// maxUV - найбільше значення, яке влазить у 4.4
const maxUV = 15.9375

// MaxChunkAxis - найбільший розмір чанка по осі, позиції якого ще влазять у 12.4.
// Дальня грань чанка лежить на координаті, рівній розміру.
const MaxChunkAxis = 2047

// PackPosition переводить координату в 12.4
func PackPosition(v float32) int16 {
	return int16(v * 16)
}

// PackUV пакує пару UV. Кожна компонента обрізається до [0, 15.9375].
func PackUV(u, v float32) uint16 {
	pu := uint16(clampUV(u) * 16)
	pv := uint16(clampUV(v) * 16)
	return pv<<8 | pu
}

// UnpackUV - обернене до PackUV
func UnpackUV(uv uint16) (u, v float32) {
	return float32(uv&0xFF) / 16, float32(uv>>8) / 16
}

func clampUV(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > maxUV {
		return maxUV
	}
	return x
}

// AppendBinary дописує вершину в little-endian
func (v Vertex) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(v.Pos[0]))
	b = binary.LittleEndian.AppendUint16(b, uint16(v.Pos[1]))
	b = binary.LittleEndian.AppendUint16(b, uint16(v.Pos[2]))
	b = binary.LittleEndian.AppendUint16(b, v.UV)
	b = binary.LittleEndian.AppendUint16(b, v.Tex)
	return b
}
