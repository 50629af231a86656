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

package game

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"FlowyVoxel/block"
	"FlowyVoxel/gen"
	"FlowyVoxel/render"
	"FlowyVoxel/world"
)

// Game збирає світ з усіма його частинами і крутить тік
type Game struct {
	log *zap.Logger

	config   Config
	world    *world.World
	renderer *render.Headless

	// tickLock тримається на час тіку і команд консолі,
	// бо світ можна чіпати лише з одного потоку
	tickLock  sync.Mutex
	tick      uint
	viewpoint world.Viewpoint
	flySpeed  float64
	closed    bool
}

// ErrClosed - світ уже закрито
var ErrClosed = errors.New("game is closed")

// NewGame створює світ за конфігом
func NewGame(log *zap.Logger, config Config) (*Game, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	renderer, err := render.NewHeadless(log.Named("render"), render.Config{
		VertexCapacity: config.VertexCapacity,
		IndexCapacity:  config.IndexCapacity,
		Slots:          config.MaxChunks,
	})
	if err != nil {
		return nil, err
	}
	w, err := createWorld(log, &config, renderer)
	if err != nil {
		return nil, err
	}
	return &Game{
		log:      log.Named("game"),
		config:   config,
		world:    w,
		renderer: renderer,
		viewpoint: world.Viewpoint{
			Position: config.Viewpoint,
			Rotation: config.Rotation,
		},
		flySpeed: config.FlySpeed,
	}, nil
}

// Йоу, чат! Зараз розберемо як створюється світ!
// createWorld читає пак блоків, будує генератор, відкриває збереження
// (якщо воно є) і тільки тоді створює сам світ
func createWorld(logger *zap.Logger, config *Config, renderer world.Renderer) (*world.World, error) {
	pack, err := LoadPack(config.BlockPack)
	if err != nil {
		return nil, err
	}
	reg, err := pack.Registry()
	if err != nil {
		return nil, err
	}

	// Збереження пам'ятає сід і геометрію чанків, з якими його створили
	var provider world.ChunkProvider
	if config.SaveDir != "" {
		if err := checkLevel(logger, config); err != nil {
			return nil, err
		}
		provider, err = world.NewRegionProvider(filepath.Join(config.SaveDir, "region"), config.Layout(), reg)
		if err != nil {
			return nil, err
		}
	}

	generator, err := NewGenerator(config, pack, reg)
	if err != nil {
		return nil, err
	}
	logger.Info("Generator ready",
		zap.String("generator", config.Generator),
		zap.Int64("seed", config.Seed),
		zap.Int("blocks", reg.Len()),
	)
	return world.New(logger.Named("world"), config.WorldConfig(), reg, generator, renderer, provider)
}

// LoadPack читає пак з файлу, а без шляху бере вбудований
func LoadPack(path string) (*block.Pack, error) {
	if path == "" {
		return block.DefaultPack()
	}
	return block.LoadPackFile(path)
}

// NewGenerator будує генератор, названий у конфігу
func NewGenerator(config *Config, pack *block.Pack, reg *block.Registry) (world.Generator, error) {
	switch config.Generator {
	case GeneratorFlat:
		return gen.NewFlat(reg, config.Seed, config.MinTerrainHeight, config.MaxTerrainHeight)
	case GeneratorNoiseBiome:
		biomes, err := gen.BiomesFromPack(pack.Biomes, reg)
		if err != nil {
			return nil, err
		}
		terrain := gen.Terrain{
			SeaLevel:   config.SeaLevel,
			MinHeight:  config.MinTerrainHeight,
			MaxHeight:  config.MaxTerrainHeight,
			WorldFloor: config.WorldFloor,
		}
		return gen.NewNoiseBiome(config.Seed, terrain, gen.DefaultChannels, biomes)
	}
	return nil, fmt.Errorf("unknown generator %q", config.Generator)
}

// checkLevel читає level.dat або створює його для нового збереження.
// Сід і генератор беруться зі збереження, інакше старі чанки
// не зійдуться з новими на межах.
func checkLevel(logger *zap.Logger, config *Config) error {
	layout := config.Layout()
	info, err := world.LoadLevel(config.SaveDir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("Create new save", zap.String("dir", config.SaveDir))
		return world.SaveLevel(config.SaveDir, world.NewLevelInfo(config.Seed, config.Generator, layout))
	} else if err != nil {
		return fmt.Errorf("read level data: %w", err)
	}
	if !info.Matches(layout) {
		return fmt.Errorf("save %s was made with chunk size %v, flip-y %d", config.SaveDir, info.ChunkSize, info.FlipY)
	}
	if info.Seed != config.Seed || info.Generator != config.Generator {
		logger.Warn("Config differs from save, using the save",
			zap.Int64("seed", info.Seed),
			zap.String("generator", info.Generator),
		)
		config.Seed, config.Generator = info.Seed, info.Generator
	}
	return nil
}

// Run крутить тік, поки ctx не скасують, а потім закриває світ
func (g *Game) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.config.TickRate.Duration)
	defer ticker.Stop()
	defer g.Close()

	g.log.Info("Tick loop start", zap.Duration("tick rate", g.config.TickRate.Duration))
	for {
		select {
		case <-ctx.Done():
			g.log.Info("Tick loop stop", zap.Uint("ticks", g.tick))
			return nil
		case <-ticker.C:
			g.Tick()
		}
	}
}

// Tick - один тік: камера летить, світ стрімиться і мешиться
func (g *Game) Tick() world.UpdateStats {
	g.tickLock.Lock()
	defer g.tickLock.Unlock()
	if g.closed {
		return world.UpdateStats{}
	}

	g.viewpoint.Move(g.flySpeed * g.config.TickRate.Seconds())
	stats := g.world.Tick(g.tick, g.viewpoint.Position)
	g.tick++
	if stats.Streamed && (stats.Stream.Created > 0 || stats.Stream.Destroyed > 0) {
		g.log.Debug("Tick",
			zap.Uint("tick", g.tick),
			zap.Int32s("center", stats.Stream.Center[:]),
			zap.Int("created", stats.Stream.Created),
			zap.Int("destroyed", stats.Stream.Destroyed),
			zap.Int("meshed", stats.Meshed),
			zap.Int("draws", g.renderer.DrawCount()),
		)
	}
	return stats
}

// SetVoxel змінює блок між тіками
func (g *Game) SetVoxel(p world.BlockPos, id block.ID) error {
	g.tickLock.Lock()
	defer g.tickLock.Unlock()
	if g.closed {
		return ErrClosed
	}
	return g.world.SetVoxel(p, id)
}

// FillBox заповнює коробку блоків між тіками
func (g *Game) FillBox(min, max world.BlockPos, id block.ID) (int, error) {
	g.tickLock.Lock()
	defer g.tickLock.Unlock()
	if g.closed {
		return 0, ErrClosed
	}
	return g.world.FillBox(min, max, id)
}

// Viewpoint повертає поточну камеру
func (g *Game) Viewpoint() world.Viewpoint {
	g.tickLock.Lock()
	defer g.tickLock.Unlock()
	return g.viewpoint
}

// Close закриває світ. Повторний виклик нічого не робить.
func (g *Game) Close() {
	g.tickLock.Lock()
	defer g.tickLock.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.world.Close()
}
