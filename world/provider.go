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

// Йоу, чат! Тут збереження змінених чанків.
// Формат - файли регіонів .mca, як у Minecraft: кожен файл тримає
// 32x32 колонки чанків, а кожен шар чанків по Y має свій файл.
// Дані чанка - NBT, стиснутий gzip, з байтом типу компресії спереду.
// Вокселі пишуться через палітру назв блоків, тому збереження
// переживає зміну порядку блоків у паку.

package world

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/save/region"

	"FlowyVoxel/block"
)

// ErrChunkNotExist повертається коли чанк ніколи не зберігався
var ErrChunkNotExist = errors.New("chunk not exist")

// compressionGzip - байт типу компресії перед даними сектора
const compressionGzip = 1

// chunkDataVersion - версія формату збереженого чанка
const chunkDataVersion = 1

// savedChunk - NBT-представлення чанка
type savedChunk struct {
	DataVersion int32    `nbt:"DataVersion"`
	Pos         []int32  `nbt:"Pos"`
	Size        []int32  `nbt:"Size"`
	Palette     []string `nbt:"Palette"`
	Voxels      []int32  `nbt:"Voxels"` // індекси в Palette, x найшвидший, y знизу вгору
}

// RegionProvider зберігає чанки у файлах регіонів
type RegionProvider struct {
	dir      string
	layout   Layout
	registry *block.Registry
}

// NewRegionProvider створює провайдер у директорії dir
func NewRegionProvider(dir string, layout Layout, reg *block.Registry) (*RegionProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &RegionProvider{dir: dir, layout: layout, registry: reg}, nil
}

// GetChunk читає чанк у voxels
func (p *RegionProvider) GetChunk(pos ChunkPos, voxels []block.ID) (errRet error) {
	path := p.regionPath(pos)
	r, err := region.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrChunkNotExist
	} else if err != nil {
		return fmt.Errorf("open region fail: %w", err)
	}
	defer func(r *region.Region) {
		err2 := r.Close()
		if errRet == nil && err2 != nil {
			errRet = fmt.Errorf("close region fail: %w", err2)
		}
	}(r)

	x, z := region.In(int(pos[0]), int(pos[2]))
	if !r.ExistSector(x, z) {
		return ErrChunkNotExist
	}
	data, err := r.ReadSector(x, z)
	if err != nil {
		return fmt.Errorf("read sector fail: %w", err)
	}
	var saved savedChunk
	if err := decodeChunk(data, &saved); err != nil {
		return fmt.Errorf("parse chunk data fail: %w", err)
	}
	return p.unpack(&saved, voxels)
}

// PutChunk записує чанк у його регіон
func (p *RegionProvider) PutChunk(pos ChunkPos, voxels []block.ID) (errRet error) {
	data, err := encodeChunk(p.pack(pos, voxels))
	if err != nil {
		return fmt.Errorf("encode chunk fail: %w", err)
	}
	r, err := p.getRegion(pos)
	if err != nil {
		return fmt.Errorf("open region fail: %w", err)
	}
	defer func(r *region.Region) {
		err2 := r.Close()
		if errRet == nil && err2 != nil {
			errRet = fmt.Errorf("close region fail: %w", err2)
		}
	}(r)

	x, z := region.In(int(pos[0]), int(pos[2]))
	if err := r.WriteSector(x, z, data); err != nil {
		return fmt.Errorf("write sector fail: %w", err)
	}
	return nil
}

func (p *RegionProvider) regionPath(pos ChunkPos) string {
	rx, rz := region.At(int(pos[0]), int(pos[2]))
	return filepath.Join(p.dir, fmt.Sprintf("r.%d.%d.%d.mca", rx, pos[1], rz))
}

// getRegion відкриває регіон, створюючи файл за потреби
func (p *RegionProvider) getRegion(pos ChunkPos) (*region.Region, error) {
	path := p.regionPath(pos)
	r, err := region.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		r, err = region.Create(path)
	}
	return r, err
}

func (p *RegionProvider) pack(pos ChunkPos, voxels []block.ID) *savedChunk {
	l := p.layout
	saved := &savedChunk{
		DataVersion: chunkDataVersion,
		Pos:         []int32{pos[0], pos[1], pos[2]},
		Size:        []int32{int32(l.Size[0]), int32(l.Size[1]), int32(l.Size[2])},
		Voxels:      make([]int32, 0, l.Volume()),
	}
	palette := make(map[block.ID]int32)
	for y := 0; y < l.Size[1]; y++ {
		for z := 0; z < l.Size[2]; z++ {
			for x := 0; x < l.Size[0]; x++ {
				id := voxels[l.Index(x, y, z)]
				i, ok := palette[id]
				if !ok {
					i = int32(len(saved.Palette))
					palette[id] = i
					saved.Palette = append(saved.Palette, p.registry.Type(id).Name)
				}
				saved.Voxels = append(saved.Voxels, i)
			}
		}
	}
	return saved
}

func (p *RegionProvider) unpack(saved *savedChunk, voxels []block.ID) error {
	l := p.layout
	if len(saved.Size) != 3 || int(saved.Size[0]) != l.Size[0] || int(saved.Size[1]) != l.Size[1] || int(saved.Size[2]) != l.Size[2] {
		return fmt.Errorf("saved chunk size %v does not match %v", saved.Size, l.Size)
	}
	if len(saved.Voxels) != l.Volume() || len(voxels) != l.Volume() {
		return fmt.Errorf("saved chunk has %d voxels, want %d", len(saved.Voxels), l.Volume())
	}
	ids := make([]block.ID, len(saved.Palette))
	for i, name := range saved.Palette {
		id, err := p.registry.ID(name)
		if err != nil {
			return err
		}
		ids[i] = id
	}
	n := 0
	for y := 0; y < l.Size[1]; y++ {
		for z := 0; z < l.Size[2]; z++ {
			for x := 0; x < l.Size[0]; x++ {
				i := saved.Voxels[n]
				if i < 0 || int(i) >= len(ids) {
					return fmt.Errorf("palette index %d out of range", i)
				}
				voxels[l.Index(x, y, z)] = ids[i]
				n++
			}
		}
	}
	return nil
}

func encodeChunk(v any) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte(compressionGzip)
	gzipWriter := gzip.NewWriter(&buffer)
	if err := nbt.NewEncoder(gzipWriter).Encode(v, ""); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func decodeChunk(data []byte, v any) error {
	if len(data) == 0 {
		return errors.New("empty sector")
	}
	if data[0] != compressionGzip {
		return fmt.Errorf("unsupported compression type %d", data[0])
	}
	r, err := gzip.NewReader(bytes.NewReader(data[1:]))
	if err != nil {
		return fmt.Errorf("open gzip reader fail: %w", err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return fmt.Errorf("close gzip reader fail: %w", err)
	}
	return nbt.Unmarshal(raw, v)
}

// LevelInfo - опис збереженого світу, лежить у level.dat
type LevelInfo struct {
	Seed      int64   `nbt:"Seed"`
	Generator string  `nbt:"Generator"`
	ChunkSize []int32 `nbt:"ChunkSize"`
	FlipY     int8    `nbt:"FlipY"`
}

// NewLevelInfo описує світ з цим сідом, генератором і геометрією чанків
func NewLevelInfo(seed int64, generator string, l Layout) LevelInfo {
	info := LevelInfo{
		Seed:      seed,
		Generator: generator,
		ChunkSize: []int32{int32(l.Size[0]), int32(l.Size[1]), int32(l.Size[2])},
	}
	if l.FlipY {
		info.FlipY = 1
	}
	return info
}

// SaveLevel пише level.dat у директорію збереження
func SaveLevel(dir string, info LevelInfo) (errRet error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "level.dat"))
	if err != nil {
		return err
	}
	defer func(f *os.File) {
		err2 := f.Close()
		if errRet == nil && err2 != nil {
			errRet = fmt.Errorf("close level data fail: %w", err2)
		}
	}(f)
	gw := gzip.NewWriter(f)
	if err := nbt.NewEncoder(gw).Encode(info, ""); err != nil {
		return fmt.Errorf("encode level data fail: %w", err)
	}
	return gw.Close()
}

// LoadLevel читає level.dat. Якщо файлу немає - повертає fs.ErrNotExist.
func LoadLevel(dir string) (info LevelInfo, errRet error) {
	f, err := os.Open(filepath.Join(dir, "level.dat"))
	if err != nil {
		return info, err
	}
	defer func(f *os.File) {
		err2 := f.Close()
		if errRet == nil && err2 != nil {
			errRet = fmt.Errorf("close level data fail: %w", err2)
		}
	}(f)
	r, err := gzip.NewReader(f)
	if err != nil {
		return info, fmt.Errorf("open gzip reader fail: %w", err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return info, err
	}
	if err := nbt.Unmarshal(raw, &info); err != nil {
		return info, fmt.Errorf("read level data fail: %w", err)
	}
	return info, nil
}

// Matches перевіряє, що збереження зроблене з тією ж геометрією чанків
func (info LevelInfo) Matches(l Layout) bool {
	return len(info.ChunkSize) == 3 &&
		int(info.ChunkSize[0]) == l.Size[0] &&
		int(info.ChunkSize[1]) == l.Size[1] &&
		int(info.ChunkSize[2]) == l.Size[2] &&
		(info.FlipY != 0) == l.FlipY
}
