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

package block

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Pack - набір ресурсів світу: типи блоків і таблиця біомів.
// Зберігається в YAML, щоб його можна було редагувати руками.
type Pack struct {
	Blocks []BlockDef `yaml:"blocks"`
	Biomes []BiomeDef `yaml:"biomes"`
}

// BlockDef - запис про блок у паку
type BlockDef struct {
	Name     string      `yaml:"name"`
	Visible  bool        `yaml:"visible"`
	Textures TextureDefs `yaml:"textures"`
}

// TextureDefs - індекси текстур для верхньої, нижньої і бокових граней
type TextureDefs struct {
	Top    uint16 `yaml:"top"`
	Bottom uint16 `yaml:"bottom"`
	Side   uint16 `yaml:"side"`
}

// BiomeDef - біом як він записаний у паку: блоки вказані назвами,
// генератор сам перетворює їх на індекси через реєстр.
type BiomeDef struct {
	Name        string             `yaml:"name"`
	Features    map[string]float64 `yaml:"features"`
	Blocks      BiomeBlocks        `yaml:"blocks"`
	TopDepth    int                `yaml:"top-depth"`
	FillerDepth int                `yaml:"filler-depth"`
}

// BiomeBlocks - назви блоків для кожного шару колонки
type BiomeBlocks struct {
	Air    string `yaml:"air"`
	Water  string `yaml:"water"`
	Top    string `yaml:"top"`
	Filler string `yaml:"filler"`
	Stone  string `yaml:"stone"`
	Bottom string `yaml:"bottom"`
}

//go:embed default_pack.yaml
var defaultPack []byte

// DefaultPack повертає вбудований пак
func DefaultPack() (*Pack, error) {
	return LoadPack(bytes.NewReader(defaultPack))
}

// LoadPack читає пак з YAML.
// Невідомі поля - помилка, бо це майже завжди одрук у конфігу.
func LoadPack(r io.Reader) (*Pack, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p Pack
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode block pack: %w", err)
	}
	if len(p.Blocks) == 0 {
		return nil, fmt.Errorf("block pack has no blocks")
	}
	return &p, nil
}

// LoadPackFile читає пак з файлу
func LoadPackFile(path string) (pack *Pack, errRet error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func(f *os.File) {
		err2 := f.Close()
		if errRet == nil && err2 != nil {
			errRet = fmt.Errorf("close block pack fail: %w", err2)
		}
	}(f)
	return LoadPack(f)
}

// Registry будує реєстр блоків з паку
func (p *Pack) Registry() (*Registry, error) {
	r := NewRegistry()
	for _, def := range p.Blocks {
		_, err := r.Add(Type{
			Name:          def.Name,
			Visible:       def.Visible,
			TextureTop:    def.Textures.Top,
			TextureBottom: def.Textures.Bottom,
			TextureSide:   def.Textures.Side,
		})
		if err != nil {
			return nil, fmt.Errorf("register block %q: %w", def.Name, err)
		}
	}
	return r, nil
}
