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

// Йоу, чат! Тут інтерфейси співпрацівників світу.
// Світ сам нічого не малює і не вигадує рельєф: він тримає чанки,
// а генерацію, рендер і збереження віддає тим, хто ці інтерфейси реалізує.

package world

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"FlowyVoxel/block"
	"FlowyVoxel/mesh"
)

// Generator заповнює вокселі нового чанка.
// Результат має залежати тільки від позиції чанка і сіда,
// а в асинхронному режимі Generate викликається з кількох горутин одразу.
type Generator interface {
	Generate(pos ChunkPos, layout Layout, voxels []block.ID) error
}

// MeshRef - те, що рендерер повернув після завантаження мешу.
// За ним світ потім просить звільнити ресурси.
type MeshRef struct {
	ID           uuid.UUID
	Slot         uint32
	VertexOffset uint32
	VertexCount  uint32
	IndexOffset  uint32
	IndexCount   uint32
}

// Renderer - графічна частина, яка живе поза цим ядром
type Renderer interface {
	// UploadMesh завантажує вершини й індекси чанка зі слоту slot
	UploadMesh(slot uint32, m *mesh.Mesh) (MeshRef, error)
	// WriteTransform пише матрицю моделі в слот спільного буфера
	WriteTransform(slot uint32, transform mgl32.Mat4) error
	// ReleaseMesh звільняє буфери мешу
	ReleaseMesh(ref MeshRef)
}

// ChunkProvider зберігає змінені чанки між сесіями.
// GetChunk повертає ErrChunkNotExist, якщо чанк ніколи не зберігався.
type ChunkProvider interface {
	GetChunk(pos ChunkPos, voxels []block.ID) error
	PutChunk(pos ChunkPos, voxels []block.ID) error
}
