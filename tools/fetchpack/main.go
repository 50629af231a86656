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

// Йоу, чат! Ця утиліта качає пак блоків і біомів з будь-якого місця,
// яке розуміє go-getter: git, http, s3, локальна папка.
// Після завантаження пак одразу перевіряється, щоб світ не впав на старті.

package main

import (
	"flag"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"FlowyVoxel/block"
	"FlowyVoxel/gen"
)

func main() {
	var (
		src  = flag.String("src", "", "Pack source, e.g. git::https://example.com/packs.git//default")
		out  = flag.String("o", "./pack", "Output dir path")
		file = flag.String("file", "pack.yaml", "Pack file inside the downloaded dir")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if *src == "" {
		logger.Fatal("Pack source required")
	}
	if err := os.RemoveAll(*out); err != nil {
		logger.Fatal("Clean output dir fail", zap.Error(err))
	}

	logger.Info("Start downloading pack", zap.String("src", *src), zap.String("dst", *out))
	if err := get.Get(*out, *src); err != nil {
		logger.Fatal("Download pack fail", zap.Error(err))
	}

	path := filepath.Join(*out, *file)
	pack, err := block.LoadPackFile(path)
	if err != nil {
		logger.Fatal("Read pack fail", zap.String("path", path), zap.Error(err))
	}
	reg, err := pack.Registry()
	if err != nil {
		logger.Fatal("Bad block list", zap.Error(err))
	}
	biomes, err := gen.BiomesFromPack(pack.Biomes, reg)
	if err != nil {
		logger.Fatal("Bad biome table", zap.Error(err))
	}
	logger.Info("Done downloading pack",
		zap.String("path", path),
		zap.Int("blocks", reg.Len()),
		zap.Int("biomes", len(biomes)),
	)
}
