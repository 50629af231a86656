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

// Йоу, чат! Ця утиліта заздалегідь генерує коробку чанків у папку збереження.
// Світ потім читає їх з регіонів замість того, щоб генерувати на льоту.
// Генерація йде в пулі воркерів, а запис у регіони - по одному,
// бо два записи в один .mca файл його зіпсують.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"FlowyVoxel/block"
	"FlowyVoxel/game"
	"FlowyVoxel/world"
)

var (
	configPath = flag.String("config", "config.toml", "Path to the config file")
	out        = flag.String("o", "", "Save directory, overrides save-dir from the config")
	radius     = flag.Int("radius", 8, "Horizontal radius in chunks around the origin")
	minY       = flag.Int("min-y", -2, "Lowest chunk layer")
	maxY       = flag.Int("max-y", 3, "Highest chunk layer")
	workers    = flag.Int("workers", runtime.NumCPU(), "Generation workers")
)

func main() {
	flag.Parse()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	err = run(logger)
	if err != nil {
		logger.Error("Pregen fail", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	config, err := game.ReadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if *out != "" {
		config.SaveDir = *out
	}
	if config.SaveDir == "" {
		return errors.New("no save directory, use -o or save-dir")
	}
	if *minY > *maxY || *radius < 0 {
		return errors.New("empty chunk box")
	}
	if err := config.Validate(); err != nil {
		return err
	}

	pack, err := game.LoadPack(config.BlockPack)
	if err != nil {
		return err
	}
	reg, err := pack.Registry()
	if err != nil {
		return err
	}
	generator, err := game.NewGenerator(&config, pack, reg)
	if err != nil {
		return err
	}
	layout := config.Layout()
	if err := world.SaveLevel(config.SaveDir, world.NewLevelInfo(config.Seed, config.Generator, layout)); err != nil {
		return fmt.Errorf("write level data: %w", err)
	}
	provider, err := world.NewRegionProvider(filepath.Join(config.SaveDir, "region"), layout, reg)
	if err != nil {
		return err
	}

	start := time.Now()
	pool := pond.NewPool(*workers)
	defer pool.StopAndWait()
	var writeLock sync.Mutex
	var tasks []pond.Task
	r := int32(*radius)
	for y := int32(*minY); y <= int32(*maxY); y++ {
		for z := -r; z <= r; z++ {
			for x := -r; x <= r; x++ {
				pos := world.ChunkPos{x, y, z}
				tasks = append(tasks, pool.SubmitErr(func() error {
					voxels := make([]block.ID, layout.Volume())
					if err := generator.Generate(pos, layout, voxels); err != nil {
						return fmt.Errorf("generate %v: %w", pos, err)
					}
					writeLock.Lock()
					defer writeLock.Unlock()
					if err := provider.PutChunk(pos, voxels); err != nil {
						return fmt.Errorf("save %v: %w", pos, err)
					}
					return nil
				}))
			}
		}
	}
	var errs []error
	for _, task := range tasks {
		if err := task.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Info("Pregenerated chunks",
		zap.Int("chunks", len(tasks)),
		zap.String("dir", config.SaveDir),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
