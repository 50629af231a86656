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

// Йоу, чат! Тут консоль світу.
// Як повідомлення в чаті, тільки кожен рядок - це команда для світу:
// поставити блок, залити коробку, перенести камеру або подивитись статистику.

package game

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"FlowyVoxel/block"
	"FlowyVoxel/world"
)

// ErrUnknownCommand - такої команди немає
var ErrUnknownCommand = errors.New("unknown command")

type commandFunc func(g *Game, args []string) (string, error)

type commandDef struct {
	args  int // скільки аргументів очікує, -1 - будь-скільки
	usage string
	run   commandFunc
}

var commands map[string]commandDef

// help посилається на саму таблицю, тому вона заповнюється в init
func init() {
	commands = map[string]commandDef{
		"setblock": {4, "setblock <x> <y> <z> <block>", cmdSetBlock},
		"getblock": {3, "getblock <x> <y> <z>", cmdGetBlock},
		"fill":     {7, "fill <x1> <y1> <z1> <x2> <y2> <z2> <block>", cmdFill},
		"tp":       {3, "tp <x> <y> <z>", cmdTeleport},
		"look":     {2, "look <yaw> <pitch>", cmdLook},
		"speed":    {1, "speed <blocks per second>", cmdSpeed},
		"stats":    {0, "stats", cmdStats},
		"help":     {-1, "help", cmdHelp},
	}
}

// Exec виконує один рядок консолі і повертає відповідь
func (g *Game) Exec(line string) (string, error) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return "", nil
	}
	def, ok := commands[fields[0]]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	args := fields[1:]
	if def.args >= 0 && len(args) != def.args {
		return "", fmt.Errorf("usage: %s", def.usage)
	}

	g.tickLock.Lock()
	defer g.tickLock.Unlock()
	if g.closed {
		return "", ErrClosed
	}
	return def.run(g, args)
}

// ServeConsole читає команди з r, поки не скінчиться ввід або ctx
func (g *Game) ServeConsole(ctx context.Context, r io.Reader, w io.Writer) error {
	logger := g.log.Named("console")
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()
		reply, err := g.Exec(line)
		if err != nil {
			logger.Info("Command failed", zap.String("command", line), zap.Error(err))
			reply = err.Error()
		} else if reply != "" {
			logger.Info(reply, zap.String("command", line))
		}
		if reply != "" {
			if _, err := fmt.Fprintln(w, reply); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func parseBlockPos(args []string) (p world.BlockPos, err error) {
	for i := range p {
		v, err := strconv.ParseInt(args[i], 10, 32)
		if err != nil {
			return p, fmt.Errorf("bad coordinate %q: %w", args[i], err)
		}
		p[i] = int32(v)
	}
	return p, nil
}

func parseFloats(args []string, out []float64) error {
	for i := range out {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return fmt.Errorf("bad number %q: %w", args[i], err)
		}
		out[i] = v
	}
	return nil
}

func (g *Game) blockID(name string) (block.ID, error) {
	return g.world.Registry().ID(name)
}

func cmdSetBlock(g *Game, args []string) (string, error) {
	p, err := parseBlockPos(args)
	if err != nil {
		return "", err
	}
	id, err := g.blockID(args[3])
	if err != nil {
		return "", err
	}
	if err := g.world.SetVoxel(p, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("set %v to %s", p, args[3]), nil
}

func cmdGetBlock(g *Game, args []string) (string, error) {
	p, err := parseBlockPos(args)
	if err != nil {
		return "", err
	}
	t := g.world.Registry().Type(g.world.GetVoxel(p))
	return fmt.Sprintf("%v is %s", p, t.Name), nil
}

func cmdFill(g *Game, args []string) (string, error) {
	from, err := parseBlockPos(args[0:3])
	if err != nil {
		return "", err
	}
	to, err := parseBlockPos(args[3:6])
	if err != nil {
		return "", err
	}
	id, err := g.blockID(args[6])
	if err != nil {
		return "", err
	}
	n, err := g.world.FillBox(from, to, id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("filled %d blocks with %s", n, args[6]), nil
}

func cmdTeleport(g *Game, args []string) (string, error) {
	var p [3]float64
	if err := parseFloats(args, p[:]); err != nil {
		return "", err
	}
	pos := world.Position(p)
	if !pos.IsValid() {
		return "", fmt.Errorf("position %v is not finite", p)
	}
	g.viewpoint.Position = pos
	return fmt.Sprintf("viewpoint at %.1f %.1f %.1f", p[0], p[1], p[2]), nil
}

func cmdLook(g *Game, args []string) (string, error) {
	var r [2]float64
	if err := parseFloats(args, r[:]); err != nil {
		return "", err
	}
	g.viewpoint.Rotation = world.Rotation{float32(r[0]), float32(r[1])}
	return fmt.Sprintf("looking at yaw %.1f pitch %.1f", r[0], r[1]), nil
}

func cmdSpeed(g *Game, args []string) (string, error) {
	var v [1]float64
	if err := parseFloats(args, v[:]); err != nil {
		return "", err
	}
	g.flySpeed = v[0]
	return fmt.Sprintf("fly speed %.1f", v[0]), nil
}

func cmdStats(g *Game, _ []string) (string, error) {
	s := g.world.Stats()
	u := g.renderer.Usage()
	return fmt.Sprintf("chunks %d (pending %d, dirty %d, meshing %d, clean %d), draws %d, vertices %d/%d",
		s.Loaded, s.Pending, s.NeedsMeshing, s.Meshing, s.Clean,
		u.Draws, u.VerticesUsed, u.VerticesUsed+u.VerticesFree,
	), nil
}

func cmdHelp(*Game, []string) (string, error) {
	var sb strings.Builder
	for _, name := range []string{"setblock", "getblock", "fill", "tp", "look", "speed", "stats"} {
		sb.WriteString(commands[name].usage)
		sb.WriteByte('\n')
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}
