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

// Йоу, чат! Це рендерер без вікна.
// Він тримає ті самі буфери, що й справжній: арену вершин, арену індексів,
// буфер матриць по слотах і список непрямих команд малювання.
// Ядру світу цього досить, щоб повністю відпрацювати контракт завантаження
// і звільнення мешів, а тести і утиліти можуть подивитись, що намальовано б було.

// Package render містить рендерер-заглушку для світу.
package render

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"FlowyVoxel/mesh"
	"FlowyVoxel/world"
)

// ErrOutOfMemory - в арені немає неперервного місця під меш
var ErrOutOfMemory = errors.New("renderer arena out of memory")

// Середній бюджет арен на один слот, з якого рахується розмір
// арен, коли його не задано явно. Індексів 6 на квад, вершин 4.
const (
	VerticesPerSlot uint32 = 128
	IndicesPerSlot  uint32 = VerticesPerSlot / 4 * 6
)

// Config - розміри буферів
type Config struct {
	VertexCapacity uint32 // вершин у арені
	IndexCapacity  uint32 // індексів у арені
	Slots          uint32 // кількість слотів матриць, як MaxChunks світу
}

// DrawCommand - одна непряма команда indexed-малювання.
// FirstInstance вказує слот матриці чанка.
type DrawCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  uint32
	FirstInstance uint32
}

type drawRecord struct {
	ref     world.MeshRef
	command uint32
}

// Headless реалізує world.Renderer у пам'яті
type Headless struct {
	log *zap.Logger

	mu         sync.Mutex
	vertexFree *FreeList
	indexFree  *FreeList
	drawFree   *FreeList

	vertices   []mesh.Vertex
	indices    []uint32
	transforms []mgl32.Mat4
	commands   []DrawCommand
	records    map[uuid.UUID]drawRecord
	drawCount  int
}

var _ world.Renderer = (*Headless)(nil)

// NewHeadless створює рендерер з арен заданого розміру
func NewHeadless(logger *zap.Logger, config Config) (*Headless, error) {
	if config.Slots == 0 {
		return nil, errors.New("renderer needs at least one slot")
	}
	if config.Slots > math.MaxUint32/IndicesPerSlot {
		return nil, fmt.Errorf("too many slots: %d", config.Slots)
	}
	if config.VertexCapacity == 0 {
		config.VertexCapacity = config.Slots * VerticesPerSlot
	}
	if config.IndexCapacity == 0 {
		config.IndexCapacity = config.Slots * IndicesPerSlot
	}
	logger.Info("Headless renderer created",
		zap.Uint32("vertex capacity", config.VertexCapacity),
		zap.Uint32("index capacity", config.IndexCapacity),
		zap.Uint32("slots", config.Slots),
	)
	return &Headless{
		log:        logger,
		vertexFree: NewFreeList(config.VertexCapacity),
		indexFree:  NewFreeList(config.IndexCapacity),
		drawFree:   NewFreeList(config.Slots),
		vertices:   make([]mesh.Vertex, config.VertexCapacity),
		indices:    make([]uint32, config.IndexCapacity),
		transforms: make([]mgl32.Mat4, config.Slots),
		commands:   make([]DrawCommand, config.Slots),
		records:    make(map[uuid.UUID]drawRecord),
	}, nil
}

// UploadMesh копіює меш в арени і реєструє команду малювання
func (h *Headless) UploadMesh(slot uint32, m *mesh.Mesh) (world.MeshRef, error) {
	if m.Empty() {
		return world.MeshRef{}, errors.New("upload of an empty mesh")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(slot) >= len(h.transforms) {
		return world.MeshRef{}, fmt.Errorf("slot %d out of range", slot)
	}

	ref := world.MeshRef{
		ID:          uuid.New(),
		Slot:        slot,
		VertexCount: uint32(len(m.Vertices)),
		IndexCount:  uint32(len(m.Indices)),
	}
	var ok bool
	if ref.VertexOffset, ok = h.vertexFree.Allocate(ref.VertexCount); !ok {
		return world.MeshRef{}, fmt.Errorf("%w: %d vertices", ErrOutOfMemory, ref.VertexCount)
	}
	if ref.IndexOffset, ok = h.indexFree.Allocate(ref.IndexCount); !ok {
		h.vertexFree.Free(ref.VertexOffset, ref.VertexCount)
		return world.MeshRef{}, fmt.Errorf("%w: %d indices", ErrOutOfMemory, ref.IndexCount)
	}
	command, ok := h.drawFree.Allocate(1)
	if !ok {
		h.vertexFree.Free(ref.VertexOffset, ref.VertexCount)
		h.indexFree.Free(ref.IndexOffset, ref.IndexCount)
		return world.MeshRef{}, fmt.Errorf("%w: draw commands", ErrOutOfMemory)
	}

	copy(h.vertices[ref.VertexOffset:], m.Vertices)
	copy(h.indices[ref.IndexOffset:], m.Indices)
	h.commands[command] = DrawCommand{
		IndexCount:    ref.IndexCount,
		InstanceCount: 1,
		FirstIndex:    ref.IndexOffset,
		VertexOffset:  ref.VertexOffset,
		FirstInstance: slot,
	}
	h.records[ref.ID] = drawRecord{ref: ref, command: command}
	h.drawCount++
	return ref, nil
}

// WriteTransform пише матрицю моделі у слот
func (h *Headless) WriteTransform(slot uint32, transform mgl32.Mat4) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(slot) >= len(h.transforms) {
		return fmt.Errorf("slot %d out of range", slot)
	}
	h.transforms[slot] = transform
	return nil
}

// ReleaseMesh обнуляє команду малювання і повертає діапазони в арени
func (h *Headless) ReleaseMesh(ref world.MeshRef) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec, ok := h.records[ref.ID]
	if !ok {
		h.log.Warn("Release of unknown mesh", zap.Stringer("id", ref.ID), zap.Uint32("slot", ref.Slot))
		return
	}
	h.commands[rec.command] = DrawCommand{}
	h.drawFree.Free(rec.command, 1)
	h.vertexFree.Free(rec.ref.VertexOffset, rec.ref.VertexCount)
	h.indexFree.Free(rec.ref.IndexOffset, rec.ref.IndexCount)
	delete(h.records, ref.ID)
	h.drawCount--
}

// DrawCount - скільки мешів зараз малюється
func (h *Headless) DrawCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.drawCount
}

// Commands повертає живі команди малювання
func (h *Headless) Commands() []DrawCommand {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := make([]DrawCommand, 0, h.drawCount)
	for _, c := range h.commands {
		if c.IndexCount != 0 {
			list = append(list, c)
		}
	}
	return list
}

// Transform повертає матрицю слоту
func (h *Headless) Transform(slot uint32) mgl32.Mat4 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(slot) >= len(h.transforms) {
		return mgl32.Ident4()
	}
	return h.transforms[slot]
}

// Vertices повертає копію вершин завантаженого мешу
func (h *Headless) Vertices(ref world.MeshRef) []mesh.Vertex {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.records[ref.ID]; !ok {
		return nil
	}
	return append([]mesh.Vertex(nil), h.vertices[ref.VertexOffset:ref.VertexOffset+ref.VertexCount]...)
}

// Usage - зайнятість арен
type Usage struct {
	Draws           int
	VerticesUsed    uint32
	VerticesFree    uint32
	IndicesUsed     uint32
	IndicesFree     uint32
	LargestFreeSpan uint32 // найбільший неперервний шматок вершинної арени
}

// Usage рахує зайнятість арен
func (h *Headless) Usage() Usage {
	h.mu.Lock()
	defer h.mu.Unlock()
	u := Usage{
		Draws:        h.drawCount,
		VerticesFree: h.vertexFree.Available(),
		IndicesFree:  h.indexFree.Available(),
	}
	u.VerticesUsed = uint32(len(h.vertices)) - u.VerticesFree
	u.IndicesUsed = uint32(len(h.indices)) - u.IndicesFree
	for _, r := range h.vertexFree.Ranges() {
		u.LargestFreeSpan = max(u.LargestFreeSpan, r.Size)
	}
	return u
}
