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

package render

import "sort"

// Range - неперервний шматок арени: зсув і довжина в елементах
type Range struct {
	Offset uint32
	Size   uint32
}

// FreeList - аллокатор діапазонів у буфері фіксованого розміру.
// Виділення first-fit, звільнені діапазони зливаються з сусідами.
type FreeList struct {
	total uint32
	free  []Range // відсортовані за Offset, сусідні вже злиті
}

// NewFreeList створює аллокатор на total елементів
func NewFreeList(total uint32) *FreeList {
	l := &FreeList{total: total}
	if total > 0 {
		l.free = []Range{{0, total}}
	}
	return l
}

// Allocate повертає зсув першого вільного діапазону, в який влазить size
func (l *FreeList) Allocate(size uint32) (uint32, bool) {
	if size == 0 {
		return 0, false
	}
	for i := range l.free {
		r := &l.free[i]
		if r.Size < size {
			continue
		}
		offset := r.Offset
		r.Offset += size
		r.Size -= size
		if r.Size == 0 {
			l.free = append(l.free[:i], l.free[i+1:]...)
		}
		return offset, true
	}
	return 0, false
}

// Free повертає діапазон в аллокатор
func (l *FreeList) Free(offset, size uint32) {
	if size == 0 {
		return
	}
	l.free = append(l.free, Range{offset, size})
	sort.Slice(l.free, func(i, j int) bool {
		return l.free[i].Offset < l.free[j].Offset
	})
	for i := 0; i+1 < len(l.free); {
		a, b := &l.free[i], l.free[i+1]
		if a.Offset+a.Size == b.Offset {
			a.Size += b.Size
			l.free = append(l.free[:i+1], l.free[i+2:]...)
		} else {
			i++
		}
	}
}

// Available - скільки елементів вільно сумарно
func (l *FreeList) Available() (n uint32) {
	for _, r := range l.free {
		n += r.Size
	}
	return
}

// Ranges повертає копію списку вільних діапазонів
func (l *FreeList) Ranges() []Range {
	return append([]Range(nil), l.free...)
}
