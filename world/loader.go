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

// Йоу, чат! Тут стрімінг чанків навколо точки огляду.
// Є п'ять кілець деталізації, у кожного свій радіус по кожній осі.
// Зсуви кожного кільця порахані заздалегідь і відсортовані за
// відстанню, тож ближні чанки створюються першими.
// Вивантажуємо тільки те, що вийшло за найбільший радіус з запасом,
// щоб чанки на межі не блимали туди-сюди.

package world

import (
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"
)

// ringOffsets повертає всі зсуви коробки радіуса r, ближчі першими.
// Радіус 0 по осі означає, що по ній береться тільки шар 0.
func ringOffsets(r [3]int32) []ChunkPos {
	list := make([]ChunkPos, 0, (2*r[0]+1)*(2*r[1]+1)*(2*r[2]+1))
	for y := -r[1]; y <= r[1]; y++ {
		for z := -r[2]; z <= r[2]; z++ {
			for x := -r[0]; x <= r[0]; x++ {
				list = append(list, ChunkPos{x, y, z})
			}
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return distance2(list[i]) < distance2(list[j])
	})
	return list
}

func distance2(p ChunkPos) int64 {
	x, y, z := int64(p[0]), int64(p[1]), int64(p[2])
	return x*x + y*y + z*z
}

// StreamStats - що зробив один прохід стрімінгу
type StreamStats struct {
	Center    ChunkPos
	Created   int
	Destroyed int
	Failed    int
	Throttled bool // лімітер не дав створити всі потрібні чанки
}

// Stream підганяє набір завантажених чанків під точку огляду.
// Спершу вивантажуємо далекі чанки, щоб звільнити слоти,
// потім створюємо відсутні кільце за кільцем, від LOD 0 до 4.
func (w *World) Stream(viewpoint Position) (stats StreamStats) {
	if !viewpoint.IsValid() {
		w.log.Warn("Invalid viewpoint, skip streaming",
			zap.Float64("x", viewpoint[0]),
			zap.Float64("y", viewpoint[1]),
			zap.Float64("z", viewpoint[2]),
		)
		return
	}
	center := w.config.Layout.ChunkAt(viewpoint)
	stats.Center = center
	stats.Destroyed = w.unloadDistant(center)

Create:
	for lod, ring := range w.rings {
		for _, off := range ring {
			pos := center.Add(off)
			if w.ChunkExists(pos) {
				continue
			}
			if w.config.CreateLimiter != nil && !w.config.CreateLimiter.Allow() {
				stats.Throttled = true
				break Create
			}
			if _, err := w.CreateChunk(pos, lod); err != nil {
				stats.Failed++
				w.chunkLogger(pos).Error("Create chunk failed", zap.Int("lod", lod), zap.Error(err))
				if errors.Is(err, ErrSlotsExhausted) {
					break Create // до наступного проходу слоти не звільняться
				}
				continue
			}
			stats.Created++
		}
	}
	if stats.Created > 0 || stats.Destroyed > 0 {
		w.log.Debug("Streamed chunks",
			zap.Int32s("center", center[:]),
			zap.Int("created", stats.Created),
			zap.Int("destroyed", stats.Destroyed),
			zap.Int("loaded", len(w.chunks)),
		)
	}
	return
}

// unloadDistant знищує чанки, які хоч по одній осі далі за радіус вивантаження
func (w *World) unloadDistant(center ChunkPos) int {
	var unloadQueue []ChunkPos
	for pos := range w.chunks {
		if w.outside(pos, center) {
			unloadQueue = append(unloadQueue, pos)
		}
	}
	for _, pos := range unloadQueue {
		_ = w.DestroyChunk(pos)
	}
	return len(unloadQueue)
}

func (w *World) outside(pos, center ChunkPos) bool {
	for axis := 0; axis < 3; axis++ {
		d := math.Abs(float64(pos[axis] - center[axis]))
		if d > w.unloadRadius[axis] {
			return true
		}
	}
	return false
}
