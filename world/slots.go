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
	"fmt"
)

// ErrSlotsExhausted - всі слоти GPU зайняті, новий чанк створити не можна
var ErrSlotsExhausted = errors.New("chunk slots exhausted")

// Handle - стабільне посилання на чанк в арені.
// Після знищення чанка його слот отримує нове покоління,
// тож старий хендл більше ні на що не вказує.
type Handle struct {
	Index      uint32
	Generation uint32
}

// slotArena видає слоти GPU і тримає чанки за ними.
// Звільнені слоти перевикористовуються, тому кількість слотів обмежена capacity.
type slotArena struct {
	capacity uint32
	chunks   []*Chunk
	gens     []uint32
	free     []uint32
}

func newSlotArena(capacity uint32) *slotArena {
	return &slotArena{capacity: capacity}
}

// acquire бере вільний слот і кладе в нього чанк
func (a *slotArena) acquire(c *Chunk) (Handle, error) {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		if uint32(len(a.chunks)) >= a.capacity {
			return Handle{}, fmt.Errorf("%w: capacity %d", ErrSlotsExhausted, a.capacity)
		}
		idx = uint32(len(a.chunks))
		a.chunks = append(a.chunks, nil)
		a.gens = append(a.gens, 0)
	}
	a.chunks[idx] = c
	return Handle{Index: idx, Generation: a.gens[idx]}, nil
}

// release звільняє слот. Старі хендли на нього стають недійсними.
func (a *slotArena) release(h Handle) {
	if a.get(h) == nil {
		return
	}
	a.chunks[h.Index] = nil
	a.gens[h.Index]++
	a.free = append(a.free, h.Index)
}

// get повертає чанк за хендлом або nil, якщо хендл застарів
func (a *slotArena) get(h Handle) *Chunk {
	if h.Index >= uint32(len(a.chunks)) || a.gens[h.Index] != h.Generation {
		return nil
	}
	return a.chunks[h.Index]
}

// inUse - кількість зайнятих слотів
func (a *slotArena) inUse() int {
	return len(a.chunks) - len(a.free)
}
