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

// Йоу, чат! Зараз розберемо конфігурацію нашого світу!
// Тут зберігаються всі налаштування які можна змінити в config.toml

package game

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/time/rate"

	"FlowyVoxel/mesh"
	"FlowyVoxel/render"
	"FlowyVoxel/world"
)

// Назви генераторів для ключа generator
const (
	GeneratorFlat       = "flat"
	GeneratorNoiseBiome = "noise-biome"
)

// Config - головна структура з налаштуваннями світу
// Поля з тегом `toml` читаються з конфіг файлу
type Config struct {
	// Розмір чанка у блоках: ширина, висота, глибина
	ChunkSize [3]int `toml:"chunk-size"`
	// true - рядок 0 у сховищі чанка це верхній шар (як у Vulkan)
	FlipY bool `toml:"flip-y"`

	// Радіуси п'яти кілець деталізації в чанках, окремо по x, y, z.
	// Радіус 0 по y означає "2.5D" світ з одним шаром чанків.
	LODRadius0 [3]int32 `toml:"lod-radius-0"`
	LODRadius1 [3]int32 `toml:"lod-radius-1"`
	LODRadius2 [3]int32 `toml:"lod-radius-2"`
	LODRadius3 [3]int32 `toml:"lod-radius-3"`
	LODRadius4 [3]int32 `toml:"lod-radius-4"`
	// Чанк вивантажується, коли він далі за найбільший радіус, помножений на це число
	UnloadPadding float64 `toml:"unload-padding"`

	// Параметри генерації
	Seed             int64  `toml:"seed"`
	Generator        string `toml:"generator"`
	BlockPack        string `toml:"block-pack"` // порожньо - вбудований пак
	SeaLevel         int    `toml:"sea-level"`
	MinTerrainHeight int    `toml:"min-terrain-height"`
	MaxTerrainHeight int    `toml:"max-terrain-height"`
	WorldFloor       int    `toml:"world-floor"`

	// Скільки чанків можна тримати одночасно (слоти GPU)
	MaxChunks uint32 `toml:"max-chunks"`
	// Воркери для генерації і мешингу, 0 - все на потоці тіку
	Workers int `toml:"workers"`
	// Як часто тікає світ
	TickRate duration `toml:"tick-rate"`
	// Стрімінг чанків на кожному N-му тіку
	StreamEvery uint `toml:"stream-every"`
	// Скільки чанків можна створити за період
	ChunkCreateLimiter Limiter `toml:"chunk-create-limiter"`

	// Папка збереження. Порожньо - змінені чанки не зберігаються.
	SaveDir string `toml:"save-dir"`

	// Розміри арен рендерера, 0 - за кількістю слотів max-chunks
	VertexCapacity uint32 `toml:"vertex-capacity"`
	IndexCapacity  uint32 `toml:"index-capacity"`

	// Камера: звідки стартує, куди дивиться і як швидко летить (блоків за секунду)
	Viewpoint [3]float64 `toml:"viewpoint"`
	Rotation  [2]float32 `toml:"rotation"`
	FlySpeed  float64    `toml:"fly-speed"`
}

// DefaultConfig повертає налаштування за замовчуванням
func DefaultConfig() Config {
	return Config{
		ChunkSize:        [3]int{32, 32, 32},
		LODRadius0:       [3]int32{4, 2, 4},
		LODRadius1:       [3]int32{8, 3, 8},
		LODRadius2:       [3]int32{12, 3, 12},
		LODRadius3:       [3]int32{16, 4, 16},
		LODRadius4:       [3]int32{20, 4, 20},
		UnloadPadding:    world.DefaultUnloadPadding,
		Seed:             1337,
		Generator:        GeneratorNoiseBiome,
		SeaLevel:         40,
		MinTerrainHeight: 0,
		MaxTerrainHeight: 96,
		WorldFloor:       -64,
		MaxChunks:        world.DefaultMaxChunks,
		Workers:          4,
		TickRate:         duration{50 * time.Millisecond},
		StreamEvery:      8,
		ChunkCreateLimiter: Limiter{
			Every: duration{time.Second / 256},
			N:     64,
		},
		VertexCapacity: world.DefaultMaxChunks * render.VerticesPerSlot,
		IndexCapacity:  world.DefaultMaxChunks * render.IndicesPerSlot,
		Viewpoint:      [3]float64{0, 64, 0},
		FlySpeed:       8,
	}
}

// ReadConfig читає конфіг з файлу поверх значень за замовчуванням.
// Якщо файлу немає - працюємо на замовчуваннях.
// Якщо знайдемо невідомі налаштування - повернемо UnknownConfigError
func ReadConfig(path string) (Config, error) {
	c := DefaultConfig()
	meta, err := toml.DecodeFile(path, &c)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return Config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		var err UnknownConfigError
		for _, key := range undecoded {
			err = append(err, key.String())
		}
		return Config{}, err
	}

	return c, nil
}

// UnknownConfigError - це список невідомих налаштувань
// Коли знаходимо щось чого не очікували в конфігу
type UnknownConfigError []string

func (e UnknownConfigError) Error() string {
	return "unknown config keys: [" + strings.Join(e, ", ") + "]"
}

// Radii збирає радіуси кілець у масив
func (c *Config) Radii() [world.LODCount][3]int32 {
	return [world.LODCount][3]int32{c.LODRadius0, c.LODRadius1, c.LODRadius2, c.LODRadius3, c.LODRadius4}
}

// Layout - геометрія чанків
func (c *Config) Layout() world.Layout {
	return world.Layout{Size: c.ChunkSize, FlipY: c.FlipY}
}

// Validate перевіряє налаштування до створення світу
func (c *Config) Validate() error {
	for i, s := range c.ChunkSize {
		if s <= 0 || s > mesh.MaxChunkAxis {
			return fmt.Errorf("chunk-size[%d] must be in [1, %d], got %d", i, mesh.MaxChunkAxis, s)
		}
	}
	for lod, r := range c.Radii() {
		for axis, v := range r {
			if v < 0 {
				return fmt.Errorf("lod-radius-%d[%d] is negative", lod, axis)
			}
		}
	}
	if c.UnloadPadding < 1 {
		return fmt.Errorf("unload-padding %v is below 1", c.UnloadPadding)
	}
	if c.MinTerrainHeight > c.MaxTerrainHeight {
		return fmt.Errorf("min-terrain-height %d above max-terrain-height %d", c.MinTerrainHeight, c.MaxTerrainHeight)
	}
	switch c.Generator {
	case GeneratorFlat, GeneratorNoiseBiome:
	default:
		return fmt.Errorf("unknown generator %q", c.Generator)
	}
	if c.MaxChunks == 0 {
		return errors.New("max-chunks must be positive")
	}
	if c.Workers < 0 {
		return errors.New("workers is negative")
	}
	if c.TickRate.Duration <= 0 {
		return errors.New("tick-rate must be positive")
	}
	return nil
}

// WorldConfig перетворює налаштування у конфіг світу
func (c *Config) WorldConfig() world.Config {
	return world.Config{
		Layout:        c.Layout(),
		Radii:         c.Radii(),
		UnloadPadding: c.UnloadPadding,
		MaxChunks:     c.MaxChunks,
		Workers:       c.Workers,
		StreamEvery:   c.StreamEvery,
		CreateLimiter: c.ChunkCreateLimiter.Limiter(),
	}
}

// Limiter - структура для обмеження частоти дій
// Наприклад: не більше 64 чанків, поповнення раз на 4 мс
type Limiter struct {
	// Як часто поповнюється запас
	// Наприклад "5s" = кожні 5 секунд
	Every duration `toml:"every"`

	// Скільки дій можна зробити підряд. 0 - без обмежень
	N int
}

// Limiter перетворює наші налаштування в готовий rate.Limiter
// Якщо N не задано - обмеження немає і повертається nil
func (l *Limiter) Limiter() *rate.Limiter {
	if l.N <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(l.Every.Duration), l.N)
}

// duration - обгортка навколо time.Duration
// Потрібна щоб читати тривалість з конфіг файлу
type duration struct {
	time.Duration
}

// UnmarshalText перетворює текст з конфігу в time.Duration
// Наприклад "5s" -> 5 секунд
func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

// MarshalText - обернене до UnmarshalText, щоб конфіг можна було записати назад
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
