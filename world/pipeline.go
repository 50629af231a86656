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

// Йоу, чат! Асинхронний режим: генерація і мешинг у пулі воркерів.
// Воркери ніколи не чіпають чанки напряму. Генерація пише у свій
// буфер, мешинг читає знімок вокселів, а результат повертається
// на потік оновлення разом з хендлом. Якщо чанк за цей час вивантажили,
// хендл вже застарілий і результат просто викидається.

package world

import (
	"slices"

	"go.uber.org/zap"

	"FlowyVoxel/block"
	"FlowyVoxel/mesh"
)

type taskKind uint8

const (
	taskGenerate taskKind = iota
	taskMesh
)

type taskResult struct {
	kind   taskKind
	handle Handle
	voxels []block.ID
	mesh   *mesh.Mesh
	err    error
}

func (w *World) submit(task func() taskResult) {
	w.inflight.Add(1)
	w.pool.Submit(func() {
		defer w.inflight.Done()
		r := task()
		w.resultsMu.Lock()
		w.results = append(w.results, r)
		w.resultsMu.Unlock()
	})
}

func (w *World) submitGenerate(c *Chunk) {
	h, pos := c.handle, c.Pos
	layout, gen := w.config.Layout, w.generator
	w.submit(func() taskResult {
		voxels := make([]block.ID, layout.Volume())
		err := gen.Generate(pos, layout, voxels)
		return taskResult{kind: taskGenerate, handle: h, voxels: voxels, err: err}
	})
}

func (w *World) submitMesh(c *Chunk) {
	c.inflight = true
	h := c.handle
	in := w.meshInput(c, slices.Clone(c.Voxels))
	reg := w.registry
	w.submit(func() taskResult {
		return taskResult{kind: taskMesh, handle: h, mesh: mesh.Build(in, reg)}
	})
}

// collect забирає готові результати і застосовує їх на потоці оновлення
func (w *World) collect() {
	w.resultsMu.Lock()
	results := w.results
	w.results = nil
	w.resultsMu.Unlock()

	for _, r := range results {
		c := w.slots.get(r.handle)
		if c == nil {
			continue // чанк вже вивантажено
		}
		switch r.kind {
		case taskGenerate:
			if r.err != nil {
				// Прибираємо чанк, наступний стрімінг спробує ще раз
				w.chunkLogger(c.Pos).Error("Generate chunk failed", zap.Error(r.err))
				_ = w.DestroyChunk(c.Pos)
				continue
			}
			c.Voxels = r.voxels
			c.State = StateNeedsMeshing
		case taskMesh:
			c.inflight = false
			w.applyMesh(c, r.mesh)
		}
	}
}

// Flush чекає, поки воркери допрацюють, і застосовує всі результати.
// У синхронному режимі нічого не робить.
func (w *World) Flush() {
	if w.pool == nil {
		return
	}
	w.inflight.Wait()
	w.collect()
}
