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

// Йоу, чат! Тут AABB - коробка, вирівняна по осях.
// Межі напіввідкриті: Lower входить у коробку, Upper вже ні.
// Так дві сусідні коробки чанків не перетинаються.

package bvh

// AABB - прямокутний паралелепіпед, вирівняний по осях координат
type AABB[I Number, V interface {
	comparable
	Add(V) V
	Sub(V) V
	Max(V) V
	Min(V) V
	Less(V) bool
	More(V) bool
	Sum() I
}] struct {
	Upper, Lower V
}

// WithIn перевіряє чи точка знаходиться всередині AABB
func (aabb AABB[I, V]) WithIn(point V) bool {
	return aabb.Lower.Max(point) == point && aabb.Upper.More(point)
}

// Touch перевіряє чи перетинаються два AABB
func (aabb AABB[I, V]) Touch(other AABB[I, V]) bool {
	return aabb.Lower.Less(other.Upper) && other.Lower.Less(aabb.Upper)
}

// Union повертає найменший AABB, що містить обидва вхідні AABB
func (aabb AABB[I, V]) Union(other AABB[I, V]) AABB[I, V] {
	return AABB[I, V]{
		Upper: aabb.Upper.Max(other.Upper),
		Lower: aabb.Lower.Min(other.Lower),
	}
}

// Surface - евристика вартості вузла, сума ребер коробки
func (aabb AABB[I, V]) Surface() I {
	return aabb.Upper.Sub(aabb.Lower).Sum() * 2
}
