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
	"FlowyVoxel/block"
	"FlowyVoxel/world/internal/bvh"
)

// MeshState - де чанк знаходиться у конвеєрі генерація -> мешинг
type MeshState uint8

const (
	// StatePending - вокселі ще генеруються у воркері, читати їх не можна
	StatePending MeshState = iota
	// StateNeedsMeshing - вокселі змінились з останнього мешу
	StateNeedsMeshing
	// StateMeshing - меш зараз будується
	StateMeshing
	// StateClean - меш відповідає вокселям
	StateClean
)

func (s MeshState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateNeedsMeshing:
		return "needs-meshing"
	case StateMeshing:
		return "meshing"
	case StateClean:
		return "clean"
	}
	return "unknown"
}

// Chunk - завантажений чанк. Живе в арені слотів світу.
type Chunk struct {
	Pos    ChunkPos
	LOD    int
	State  MeshState
	Voxels []block.ID // nil поки StatePending
	Mesh   *MeshRef   // nil якщо меш порожній або ще не будувався

	handle   Handle
	modified bool // змінювався після генерації, треба зберегти при вивантаженні
	inflight bool // задача мешингу ще у воркері
	node     *chunkNode

	// Рендерер відмовив у завантаженні мешу. Чанк чекає, поки рендерер
	// щось звільнить (лічильник releases світу зміниться) або поки його не змінять.
	uploadFailed bool
	failedAt     uint64
}

// Slot - індекс слоту GPU, за яким лежить трансформація чанка
func (c *Chunk) Slot() uint32 { return c.handle.Index }

// Handle повертає стабільний хендл чанка
func (c *Chunk) Handle() Handle { return c.handle }

// ChunkInfo - копія стану чанка для читання ззовні
type ChunkInfo struct {
	Pos      ChunkPos
	LOD      int
	State    MeshState
	Slot     uint32
	Handle   Handle
	Mesh     *MeshRef
	Modified bool
}

func (c *Chunk) info() ChunkInfo {
	return ChunkInfo{
		Pos:      c.Pos,
		LOD:      c.LOD,
		State:    c.State,
		Slot:     c.handle.Index,
		Handle:   c.handle,
		Mesh:     c.Mesh,
		Modified: c.modified,
	}
}

// Типи для індексу завантажених чанків
type (
	vec3i     = bvh.Vec3[int32]
	aabb3i    = bvh.AABB[int32, vec3i]
	chunkNode = bvh.Node[int32, aabb3i, ChunkPos]
	chunkTree = bvh.Tree[int32, aabb3i, ChunkPos]
)

// bounds - коробка чанка у світових блоках
func (l Layout) bounds(c ChunkPos) aabb3i {
	o := l.Origin(c)
	lower := vec3i(o)
	return aabb3i{
		Lower: lower,
		Upper: lower.Add(vec3i{int32(l.Size[0]), int32(l.Size[1]), int32(l.Size[2])}),
	}
}
