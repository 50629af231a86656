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

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	// zap - мегашвидкий логер, набагато швидший за fmt.Printf
	"go.uber.org/zap"

	"FlowyVoxel/game"
)

// isDebug - флаг який можна включити при запуску через -debug
// В дебаг режимі буде більше логів і інформації для розробки
var isDebug = flag.Bool("debug", false, "Enable debug log output")

// configPath - звідки читати налаштування
var configPath = flag.String("config", "config.toml", "Path to the config file")

// console - чи читати команди з stdin
var console = flag.Bool("console", true, "Read world commands from stdin")

func main() {
	flag.Parse()

	// В дебаг режимі логи детальніші, але повільніші
	var logger *zap.Logger
	if *isDebug {
		logger = unwrap(zap.NewDevelopment())
	} else {
		logger = unwrap(zap.NewProduction())
	}
	defer func(logger *zap.Logger) {
		// stderr/stdout не вміють fsync, на цьому Sync завжди падає
		if err := logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
			panic(err)
		}
	}(logger)

	logger.Info("Engine start")
	printBuildInfo(logger)
	defer logger.Info("Engine exit")

	config, err := game.ReadConfig(*configPath)
	if err != nil {
		logger.Error("Read config fail", zap.Error(err))
		return
	}

	g, err := game.NewGame(logger, config)
	if err != nil {
		logger.Error("Create world fail", zap.Error(err))
		return
	}

	// Ctrl+C зупиняє тік, світ закривається і зберігає змінені чанки
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *console {
		go func() {
			if err := g.ServeConsole(ctx, os.Stdin, os.Stdout); err != nil {
				logger.Warn("Console stopped", zap.Error(err))
			}
		}()
	}
	if err := g.Run(ctx); err != nil {
		logger.Error("Tick loop error", zap.Error(err))
	}
}

// printBuildInfo виводить інформацію про збірку
// Це допомагає знайти проблеми з версіями бібліотек
func printBuildInfo(logger *zap.Logger) {
	binaryInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	settings := make(map[string]string)
	for _, v := range binaryInfo.Settings {
		settings[v.Key] = v.Value
	}
	logger.Debug("Build info", zap.Any("settings", settings))
}

// unwrap - хелпер функція яка спрощує обробку помилок
// Якщо є помилка - відразу панікуємо
func unwrap[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
