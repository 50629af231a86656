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
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"FlowyVoxel/world"
)

func testConfig(t *testing.T) Config {
	c := DefaultConfig()
	c.ChunkSize = [3]int{8, 8, 8}
	c.LODRadius0 = [3]int32{1, 0, 1}
	c.LODRadius1 = [3]int32{}
	c.LODRadius2 = [3]int32{}
	c.LODRadius3 = [3]int32{}
	c.LODRadius4 = [3]int32{}
	c.Generator = GeneratorFlat
	c.MinTerrainHeight, c.MaxTerrainHeight = 2, 2
	c.MaxChunks = 64
	c.Workers = 0
	c.StreamEvery = 1
	c.ChunkCreateLimiter = Limiter{}
	c.Viewpoint = [3]float64{4, 4, 4}
	c.FlySpeed = 0
	c.VertexCapacity, c.IndexCapacity = 1<<12, 1<<13
	return c
}

func TestGame_Tick(t *testing.T) {
	g, err := NewGame(zaptest.NewLogger(t), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	stats := g.Tick()
	if !stats.Streamed || stats.Stream.Created != 9 {
		t.Fatalf("first tick %+v", stats)
	}
	if g.renderer.DrawCount() != 9 {
		t.Errorf("draws = %d, want 9", g.renderer.DrawCount())
	}
}

func TestGame_NoiseBiome(t *testing.T) {
	c := testConfig(t)
	c.Generator = GeneratorNoiseBiome
	c.MinTerrainHeight, c.MaxTerrainHeight = -4, 12
	c.SeaLevel = 0
	c.Workers = 2
	c.VertexCapacity, c.IndexCapacity = 1<<18, 1<<19
	g, err := NewGame(zaptest.NewLogger(t), c)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	g.Tick()
	g.world.Flush()
	g.Tick()
	g.world.Flush()
	if s := g.world.Stats(); s.Loaded != 9 || s.Clean != 9 {
		t.Errorf("stats after two ticks = %+v", s)
	}
}

func TestGame_Exec(t *testing.T) {
	g, err := NewGame(zaptest.NewLogger(t), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	g.Tick()

	for _, tt := range []struct {
		line  string
		reply string
	}{
		{"/setblock 1 5 1 Grass", "set [1 5 1] to Grass"},
		{"getblock 1 5 1", "[1 5 1] is Grass"},
		{"getblock 1 1 1", "[1 1 1] is Stone"},
		{"fill 0 3 0 -1 3 -1 Sand", "filled 4 blocks with Sand"},
		{"tp 100 4 100", "viewpoint at 100.0 4.0 100.0"},
		{"   ", ""},
	} {
		reply, err := g.Exec(tt.line)
		if err != nil {
			t.Fatalf("%q: %v", tt.line, err)
		}
		if reply != tt.reply {
			t.Errorf("%q replied %q, want %q", tt.line, reply, tt.reply)
		}
	}
	if g.Viewpoint().Position != (world.Position{100, 4, 100}) {
		t.Errorf("viewpoint = %v", g.Viewpoint().Position)
	}

	if _, err := g.Exec("explode"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
	if _, err := g.Exec("setblock 1 2"); err == nil || !strings.HasPrefix(err.Error(), "usage") {
		t.Errorf("short command err = %v", err)
	}
	if _, err := g.Exec("setblock 1 2 3 Obsidian"); err == nil {
		t.Error("unknown block name must fail")
	}
	if _, err := g.Exec("setblock 1000 2 3 Stone"); !errors.Is(err, world.ErrChunkNotLoaded) {
		t.Errorf("edit of unloaded chunk err = %v", err)
	}

	g.Close()
	if _, err := g.Exec("stats"); !errors.Is(err, ErrClosed) {
		t.Errorf("command after close err = %v", err)
	}
}

func TestGame_ServeConsole(t *testing.T) {
	g, err := NewGame(zaptest.NewLogger(t), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	g.Tick()
	var out bytes.Buffer
	in := strings.NewReader("getblock 0 0 0\nnope\n")
	if err := g.ServeConsole(context.Background(), in, &out); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || lines[0] != "[0 0 0] is Stone" || !strings.Contains(lines[1], "unknown command") {
		t.Errorf("console output %q", out.String())
	}
}

func TestGame_SaveDir(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(t)
	c.SaveDir = dir
	g, err := NewGame(zaptest.NewLogger(t), c)
	if err != nil {
		t.Fatal(err)
	}
	g.Tick()
	if _, err := g.Exec("setblock 3 6 3 Snow"); err != nil {
		t.Fatal(err)
	}
	g.Close() // змінений чанк зберігається при вивантаженні

	c.Seed = 99
	g, err = NewGame(zaptest.NewLogger(t), c)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	if g.config.Seed != DefaultConfig().Seed {
		t.Errorf("seed %d, want the one from the save", g.config.Seed)
	}
	g.Tick()
	if reply, _ := g.Exec("getblock 3 6 3"); reply != "[3 6 3] is Snow" {
		t.Errorf("edit lost across sessions: %q", reply)
	}

	c.ChunkSize = [3]int{16, 16, 16}
	if _, err := NewGame(zaptest.NewLogger(t), c); err == nil {
		t.Error("save with another chunk size must be rejected")
	}
}

func TestGame_Run(t *testing.T) {
	c := testConfig(t)
	c.TickRate = duration{time.Millisecond}
	c.FlySpeed = 100
	g, err := NewGame(zaptest.NewLogger(t), c)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := g.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if g.Viewpoint().Position == (world.Position{4, 4, 4}) {
		t.Error("camera did not move")
	}
	if g.world.Len() != 0 {
		t.Error("world must be closed after Run")
	}
}
