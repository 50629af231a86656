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

// Йоу, чат! Тут живе реєстр блоків - таблиця всіх типів блоків світу.
// Кожен воксель зберігає лише індекс у цій таблиці, а все інше
// (назва, видимість, текстури граней) береться звідси.

// Package block описує типи блоків і їх реєстр.
package block

import (
	"errors"
	"fmt"
)

// ID - індекс типу блоку в реєстрі. Це і є весь стан одного вокселя.
type ID uint16

// Air - нульовий індекс, за домовленістю це повітря
const Air ID = 0

// ErrUnknownBlockName повертається коли шукаємо блок, якого немає в реєстрі
var ErrUnknownBlockName = errors.New("unknown block name")

// Type - опис одного типу блоку
type Type struct {
	Name    string
	Visible bool // невидимі блоки не перекривають сусідів і не мешаться

	TextureTop    uint16
	TextureBottom uint16
	TextureSide   uint16
}

// Registry - впорядкований список типів блоків + мапа назва->індекс.
// Заповнюється один раз при створенні світу, далі тільки читається.
type Registry struct {
	types  []Type
	byName map[string]ID
}

// NewRegistry створює реєстр, в якому вже є повітря під індексом 0
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]ID)}
	r.types = append(r.types, Type{Name: "Air"})
	r.byName["Air"] = Air
	return r
}

// Add реєструє новий тип блоку і повертає його індекс.
// Якщо тип "Air" передано явно - оновлюємо нульовий запис.
func (r *Registry) Add(t Type) (ID, error) {
	if t.Name == "" {
		return 0, errors.New("block name is empty")
	}
	if id, ok := r.byName[t.Name]; ok {
		if id == Air {
			t.Visible = false
			r.types[Air] = t
			return Air, nil
		}
		return 0, fmt.Errorf("block %q already registered as %d", t.Name, id)
	}
	if len(r.types) > int(^ID(0)) {
		return 0, fmt.Errorf("registry is full (%d types)", len(r.types))
	}
	id := ID(len(r.types))
	r.types = append(r.types, t)
	r.byName[t.Name] = id
	return id, nil
}

// ID шукає індекс блоку за назвою
func (r *Registry) ID(name string) (ID, error) {
	id, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBlockName, name)
	}
	return id, nil
}

// Type повертає опис блоку. Невідомі індекси вважаються повітрям.
func (r *Registry) Type(id ID) Type {
	if int(id) >= len(r.types) {
		return r.types[Air]
	}
	return r.types[id]
}

// Visible - чи потрібно малювати грані цього блоку
func (r *Registry) Visible(id ID) bool {
	return int(id) < len(r.types) && id != Air && r.types[id].Visible
}

// Len повертає кількість зареєстрованих типів
func (r *Registry) Len() int { return len(r.types) }
