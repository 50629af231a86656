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

// Йоу, чат! Точка огляду - це те, навколо чого світ тримає чанки.
// Зазвичай це камера. Позиція в світових блоках, поворот у градусах.

package world

import "math"

// Position - позиція у світових блоках
type Position [3]float64

// Rotation - yaw і pitch
type Rotation [2]float32

// IsValid перевіряє, що координати - звичайні числа, без NaN і Inf.
// Стрімінг від такої позиції порахував би сміттєві чанки.
func (p *Position) IsValid() bool {
	return !math.IsNaN((*p)[0]) && !math.IsNaN((*p)[1]) && !math.IsNaN((*p)[2]) &&
		!math.IsInf((*p)[0], 0) && !math.IsInf((*p)[1], 0) && !math.IsInf((*p)[2], 0)
}

// Viewpoint - камера, яка летить по світу
type Viewpoint struct {
	Position
	Rotation
}

// Forward - одиничний вектор напрямку погляду
func (v *Viewpoint) Forward() [3]float64 {
	yaw := float64(v.Rotation[0]) * math.Pi / 180
	pitch := float64(v.Rotation[1]) * math.Pi / 180
	return [3]float64{
		-math.Sin(yaw) * math.Cos(pitch),
		-math.Sin(pitch),
		math.Cos(yaw) * math.Cos(pitch),
	}
}

// Move зсуває камеру на distance блоків уперед
func (v *Viewpoint) Move(distance float64) {
	f := v.Forward()
	for i := range v.Position {
		v.Position[i] += f[i] * distance
	}
}

// ChunkPos - чанк, в якому зараз камера
func (v *Viewpoint) ChunkPos(l Layout) ChunkPos {
	return l.ChunkAt(v.Position)
}
