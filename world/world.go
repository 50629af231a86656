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

// Йоу, чат! Це центральний файл світу.
// Світ тримає всі завантажені чанки: мапу позиція -> хендл, арену слотів GPU
// і BVH-індекс коробок чанків. Тут же читання і запис вокселів,
// а разом із записом - позначка "перемешити" для сусідів на межі чанка.

package world

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"FlowyVoxel/block"
	"FlowyVoxel/mesh"
	"FlowyVoxel/world/internal/bvh"
)

// LODCount - кількість кілець деталізації
const LODCount = 5

// Значення за замовчуванням
const (
	DefaultUnloadPadding         = 1.25
	DefaultMaxChunks      uint32 = 32768
)

var (
	// ErrChunkExists - чанк з такою позицією вже є
	ErrChunkExists = errors.New("chunk already exists")
	// ErrChunkNotLoaded - чанка немає або його вокселі ще не готові
	ErrChunkNotLoaded = errors.New("chunk is not loaded")
	// ErrUnknownBlock - індекс блоку за межами реєстру
	ErrUnknownBlock = errors.New("unknown block id")
)

// Config - налаштування світу
type Config struct {
	Layout        Layout
	Radii         [LODCount][3]int32 // радіус кожного кільця в чанках, по осях
	UnloadPadding float64            // множник радіуса для вивантаження
	MaxChunks     uint32             // кількість слотів GPU
	Workers       int                // 0 - генерація і мешинг на потоці оновлення
	StreamEvery   uint               // стрімінг кожен N-й тік
	CreateLimiter *rate.Limiter      // скільки чанків можна створити, nil - без обмежень
}

// World - головна структура світу
type World struct {
	log       *zap.Logger
	config    Config
	registry  *block.Registry
	generator Generator
	renderer  Renderer
	provider  ChunkProvider // може бути nil

	chunks map[ChunkPos]Handle
	slots  *slotArena
	index  chunkTree

	releases uint64 // скільки мешів світ повернув рендереру

	rings        [LODCount][]ChunkPos // зсуви кожного кільця, ближчі першими
	unloadRadius [3]float64

	pool      pond.Pool // nil у синхронному режимі
	inflight  sync.WaitGroup
	resultsMu sync.Mutex
	results   []taskResult
}

// New створює світ. Помилки тут - це помилки конфігурації.
func New(logger *zap.Logger, config Config, reg *block.Registry, gen Generator, renderer Renderer, provider ChunkProvider) (*World, error) {
	if reg == nil || gen == nil || renderer == nil {
		return nil, errors.New("world needs a registry, a generator and a renderer")
	}
	for i, s := range config.Layout.Size {
		if s <= 0 || s > mesh.MaxChunkAxis {
			return nil, fmt.Errorf("chunk size on axis %d must be in [1, %d], got %d", i, mesh.MaxChunkAxis, s)
		}
	}
	if config.UnloadPadding == 0 {
		config.UnloadPadding = DefaultUnloadPadding
	}
	if config.UnloadPadding < 1 {
		return nil, fmt.Errorf("unload padding %v is below 1", config.UnloadPadding)
	}
	if config.MaxChunks == 0 {
		config.MaxChunks = DefaultMaxChunks
	}
	if config.StreamEvery == 0 {
		config.StreamEvery = 1
	}

	w := &World{
		log:       logger,
		config:    config,
		registry:  reg,
		generator: gen,
		renderer:  renderer,
		provider:  provider,
		chunks:    make(map[ChunkPos]Handle),
		slots:     newSlotArena(config.MaxChunks),
	}
	var maxRadius [3]int32
	for lod, r := range config.Radii {
		for axis, v := range r {
			if v < 0 {
				return nil, fmt.Errorf("lod %d radius on axis %d is negative", lod, axis)
			}
			maxRadius[axis] = max(maxRadius[axis], v)
		}
		w.rings[lod] = ringOffsets(r)
	}
	for axis, r := range maxRadius {
		w.unloadRadius[axis] = float64(r) * config.UnloadPadding
	}
	if config.Workers > 0 {
		w.pool = pond.NewPool(config.Workers)
	}
	logger.Info("World created",
		zap.Ints("chunk size", config.Layout.Size[:]),
		zap.Bool("flip y", config.Layout.FlipY),
		zap.Uint32("max chunks", config.MaxChunks),
		zap.Int("workers", config.Workers),
	)
	return w, nil
}

// Layout повертає геометрію чанків світу
func (w *World) Layout() Layout { return w.config.Layout }

// Registry повертає реєстр блоків світу
func (w *World) Registry() *block.Registry { return w.registry }

func (w *World) chunkLogger(pos ChunkPos) *zap.Logger {
	return w.log.With(zap.Int32("x", pos[0]), zap.Int32("y", pos[1]), zap.Int32("z", pos[2]))
}

// loaded повертає чанк за позицією або nil
func (w *World) loaded(pos ChunkPos) *Chunk {
	h, ok := w.chunks[pos]
	if !ok {
		return nil
	}
	return w.slots.get(h)
}

// Lookup повертає чанк за хендлом, якщо він ще живий
func (w *World) Lookup(h Handle) (ChunkInfo, bool) {
	c := w.slots.get(h)
	if c == nil {
		return ChunkInfo{}, false
	}
	return c.info(), true
}

// ChunkExists - чи завантажено чанк
func (w *World) ChunkExists(pos ChunkPos) bool {
	_, ok := w.chunks[pos]
	return ok
}

// Info повертає стан чанка
func (w *World) Info(pos ChunkPos) (ChunkInfo, bool) {
	c := w.loaded(pos)
	if c == nil {
		return ChunkInfo{}, false
	}
	return c.info(), true
}

// Len - кількість завантажених чанків
func (w *World) Len() int { return len(w.chunks) }

// CreateChunk створює чанк і заповнює його вокселі.
// Спершу шукаємо збережений чанк у провайдері, інакше генеруємо.
// У синхронному режимі генерація завершується до повернення,
// в асинхронному чанк лишається StatePending до приходу результату.
func (w *World) CreateChunk(pos ChunkPos, lod int) (Handle, error) {
	if w.ChunkExists(pos) {
		return Handle{}, fmt.Errorf("%w: %v", ErrChunkExists, pos)
	}
	c := &Chunk{Pos: pos, LOD: lod, State: StateNeedsMeshing}
	h, err := w.slots.acquire(c)
	if err != nil {
		return Handle{}, err
	}
	c.handle = h
	logger := w.chunkLogger(pos)

	if voxels, ok := w.restore(pos, logger); ok {
		c.Voxels = voxels
	} else if w.pool != nil {
		c.State = StatePending
		w.submitGenerate(c)
	} else {
		voxels := make([]block.ID, w.config.Layout.Volume())
		if err := w.generator.Generate(pos, w.config.Layout, voxels); err != nil {
			w.slots.release(h)
			return Handle{}, fmt.Errorf("generate chunk %v: %w", pos, err)
		}
		c.Voxels = voxels
	}

	w.chunks[pos] = h
	c.node = w.index.Insert(w.config.Layout.bounds(pos), pos)
	logger.Debug("Created chunk",
		zap.Int("lod", lod),
		zap.Uint32("slot", h.Index),
		zap.Stringer("state", c.State),
	)
	return h, nil
}

// restore читає чанк з провайдера
func (w *World) restore(pos ChunkPos, logger *zap.Logger) ([]block.ID, bool) {
	if w.provider == nil {
		return nil, false
	}
	voxels := make([]block.ID, w.config.Layout.Volume())
	err := w.provider.GetChunk(pos, voxels)
	if err != nil {
		if !errors.Is(err, ErrChunkNotExist) {
			logger.Warn("Restore chunk failed, generating", zap.Error(err))
		}
		return nil, false
	}
	logger.Debug("Restored chunk")
	return voxels, true
}

// DestroyChunk звільняє меш чанка, зберігає його якщо він змінювався,
// і прибирає з мапи. Слот GPU повертається в арену.
func (w *World) DestroyChunk(pos ChunkPos) error {
	c := w.loaded(pos)
	if c == nil {
		return fmt.Errorf("%w: %v", ErrChunkNotLoaded, pos)
	}
	logger := w.chunkLogger(pos)
	w.releaseMesh(c)
	if c.modified && w.provider != nil && c.Voxels != nil {
		if err := w.provider.PutChunk(pos, c.Voxels); err != nil {
			logger.Error("Save chunk failed", zap.Error(err))
		}
	}
	w.index.Delete(c.node)
	delete(w.chunks, pos)
	w.slots.release(c.handle)
	logger.Debug("Destroyed chunk", zap.Uint32("slot", c.handle.Index))
	return nil
}

// GetVoxel повертає блок у світовій позиції.
// Незавантажений простір - це повітря.
func (w *World) GetVoxel(p BlockPos) block.ID {
	l := w.config.Layout
	c := w.loaded(l.ChunkOf(p))
	if c == nil || c.Voxels == nil {
		return block.Air
	}
	local := l.LocalOf(p)
	return c.Voxels[l.Index(local[0], local[1], local[2])]
}

// SetVoxel змінює блок і позначає чанк для перемешування.
// Якщо блок лежить на грані чанка, сусід за цією гранню теж перемешується.
func (w *World) SetVoxel(p BlockPos, id block.ID) error {
	if int(id) >= w.registry.Len() {
		return fmt.Errorf("%w: %d", ErrUnknownBlock, id)
	}
	l := w.config.Layout
	pos := l.ChunkOf(p)
	c := w.loaded(pos)
	if c == nil || c.Voxels == nil {
		return fmt.Errorf("%w: %v", ErrChunkNotLoaded, pos)
	}
	w.setVoxel(c, l.LocalOf(p), id)
	return nil
}

func (w *World) setVoxel(c *Chunk, local [3]int, id block.ID) {
	l := w.config.Layout
	c.Voxels[l.Index(local[0], local[1], local[2])] = id
	c.modified = true
	markDirty(c)

	for axis := 0; axis < 3; axis++ {
		if local[axis] == 0 {
			var off ChunkPos
			off[axis] = -1
			if n := w.loaded(c.Pos.Add(off)); n != nil {
				markDirty(n)
			}
		}
		if local[axis] == l.Size[axis]-1 {
			var off ChunkPos
			off[axis] = 1
			if n := w.loaded(c.Pos.Add(off)); n != nil {
				markDirty(n)
			}
		}
	}
}

func markDirty(c *Chunk) {
	if c.State != StatePending {
		c.State = StateNeedsMeshing
	}
	c.uploadFailed = false
}

// releaseMesh повертає меш чанка рендереру
func (w *World) releaseMesh(c *Chunk) {
	if c.Mesh == nil {
		return
	}
	w.renderer.ReleaseMesh(*c.Mesh)
	c.Mesh = nil
	w.releases++
}

// ChunksTouching повертає завантажені чанки, які перетинає коробка
// блоків [min, max] включно. Порядок: y, потім z, потім x.
func (w *World) ChunksTouching(min, max BlockPos) []ChunkPos {
	min, max = sortCorners(min, max)
	box := aabb3i{Lower: vec3i(min), Upper: vec3i(max).Add(vec3i{1, 1, 1})}
	var result []ChunkPos
	w.index.Find(bvh.TouchBound[aabb3i](box), func(n *chunkNode) bool {
		result = append(result, n.Value)
		return true
	})
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		if a[2] != b[2] {
			return a[2] < b[2]
		}
		return a[0] < b[0]
	})
	return result
}

// FillBox заповнює коробку [min, max] включно блоком id.
// Змінюються лише завантажені чанки з готовими вокселями.
// Повертає кількість записаних вокселів.
func (w *World) FillBox(min, max BlockPos, id block.ID) (int, error) {
	if int(id) >= w.registry.Len() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownBlock, id)
	}
	min, max = sortCorners(min, max)
	l := w.config.Layout
	written := 0
	for _, pos := range w.ChunksTouching(min, max) {
		c := w.loaded(pos)
		if c == nil || c.Voxels == nil {
			continue
		}
		origin := l.Origin(pos)
		var lo, hi [3]int
		for a := 0; a < 3; a++ {
			lo[a] = int(maxInt32(min[a], origin[a]) - origin[a])
			hi[a] = int(minInt32(max[a], origin[a]+int32(l.Size[a])-1) - origin[a])
		}
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				for x := lo[0]; x <= hi[0]; x++ {
					w.setVoxel(c, [3]int{x, y, z}, id)
					written++
				}
			}
		}
	}
	return written, nil
}

func sortCorners(a, b BlockPos) (BlockPos, BlockPos) {
	for i := range a {
		if a[i] > b[i] {
			a[i], b[i] = b[i], a[i]
		}
	}
	return a, b
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Stats - лічильники стану світу
type Stats struct {
	Loaded       int
	Pending      int
	NeedsMeshing int
	Meshing      int
	Clean        int
	WithMesh     int
	SlotsInUse   int
}

// Stats рахує чанки за станами
func (w *World) Stats() (s Stats) {
	for _, h := range w.chunks {
		c := w.slots.get(h)
		s.Loaded++
		switch c.State {
		case StatePending:
			s.Pending++
		case StateNeedsMeshing:
			s.NeedsMeshing++
		case StateMeshing:
			s.Meshing++
		case StateClean:
			s.Clean++
		}
		if c.Mesh != nil {
			s.WithMesh++
		}
	}
	s.SlotsInUse = w.slots.inUse()
	return
}

// Close дочікується воркерів і вивантажує всі чанки,
// зберігаючи змінені через провайдера.
func (w *World) Close() {
	if w.pool != nil {
		w.pool.StopAndWait()
		w.collect()
	}
	for pos := range w.chunks {
		_ = w.DestroyChunk(pos)
	}
	w.log.Info("World closed")
}
