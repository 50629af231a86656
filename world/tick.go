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

// Йоу, чат! Тут тік світу.
// Кожен тік: забираємо готові результати воркерів, раз на кілька тіків
// стрімимо чанки навколо камери, а тоді мешимо всі брудні чанки.
// Старий меш завжди звільняється до того, як у той самий слот
// завантажується новий.

package world

import (
	"go.uber.org/zap"

	"FlowyVoxel/block"
	"FlowyVoxel/mesh"
)

// UpdateStats - що зробив один тік
type UpdateStats struct {
	Streamed bool
	Stream   StreamStats
	Meshed   int // скільки мешів завантажено або відправлено у воркери
}

// Update - повний крок: стрімінг і мешинг
func (w *World) Update(viewpoint Position) UpdateStats {
	return w.Tick(0, viewpoint)
}

// Tick виконує тік номер n. Стрімінг іде лише на кожному StreamEvery-му тіку.
func (w *World) Tick(n uint, viewpoint Position) (stats UpdateStats) {
	w.collect()
	if n%w.config.StreamEvery == 0 {
		stats.Streamed = true
		stats.Stream = w.Stream(viewpoint)
	}
	stats.Meshed = w.meshDirty()
	return
}

// meshDirty обробляє кожен чанк у StateNeedsMeshing
func (w *World) meshDirty() int {
	var count int
	for _, h := range w.chunks {
		c := w.slots.get(h)
		if c.State != StateNeedsMeshing || c.inflight {
			continue
		}
		if c.uploadFailed && c.failedAt == w.releases {
			continue
		}
		c.State = StateMeshing
		if w.pool != nil {
			w.submitMesh(c)
			count++
			continue
		}
		if w.applyMesh(c, mesh.Build(w.meshInput(c, c.Voxels), w.registry)) {
			count++
		}
	}
	return count
}

func (w *World) meshInput(c *Chunk, voxels []block.ID) mesh.Input {
	return mesh.Input{
		Voxels: voxels,
		Size:   w.config.Layout.Size,
		LOD:    c.LOD,
		UpSign: w.config.Layout.UpSign(),
	}
}

// applyMesh пише трансформацію і замінює меш чанка.
// Порожній меш не тримає жодних ресурсів рендерера.
func (w *World) applyMesh(c *Chunk, m *mesh.Mesh) bool {
	logger := w.chunkLogger(c.Pos)
	if err := w.renderer.WriteTransform(c.Slot(), w.config.Layout.Transform(c.Pos)); err != nil {
		logger.Error("Write transform failed", zap.Error(err))
		w.uploadFailed(c)
		return false
	}
	w.releaseMesh(c)
	if !m.Empty() {
		ref, err := w.renderer.UploadMesh(c.Slot(), m)
		if err != nil {
			logger.Warn("Upload mesh failed, waiting for the renderer to free space", zap.Error(err))
			w.uploadFailed(c)
			return false
		}
		c.Mesh = &ref
	}
	c.uploadFailed = false
	// Якщо чанк змінили, поки меш будувався, він лишається брудним
	if c.State == StateMeshing {
		c.State = StateClean
	}
	logger.Debug("Meshed chunk", zap.Int("quads", m.Quads), zap.Int("lod", c.LOD))
	return true
}

// uploadFailed повертає чанк у чергу, але наступна спроба буде лише після
// того, як світ звільнить якийсь меш або чанк змінять.
func (w *World) uploadFailed(c *Chunk) {
	c.State = StateNeedsMeshing
	c.uploadFailed = true
	c.failedAt = w.releases
}
