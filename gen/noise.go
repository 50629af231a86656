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

// Йоу, чат! Тут шум - основа всього рельєфу.
// Є два базові шуми: Perlin і симплекс. Обидва беруть
// таблицю перестановок, перемішану від сіда, тож однаковий сід
// завжди дає однаковий світ.

// Package gen заповнює вокселі нових чанків.
package gen

import "math"

// NoiseKind - який базовий шум використовує канал
type NoiseKind uint8

const (
	Perlin NoiseKind = iota
	Simplex
)

// Noise - детермінований 2D шум з таблицею перестановок
type Noise struct {
	perm [512]int
}

// NewNoise створює шум з перемішаною від сіда таблицею
func NewNoise(seed int64) *Noise {
	n := &Noise{}
	var base [256]int
	for i := range base {
		base[i] = i
	}
	// Фішер-Єйтс на простому LCG
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int(uint64(s>>16) % uint64(i+1))
		base[i], base[j] = base[j], base[i]
	}
	for i := 0; i < 256; i++ {
		n.perm[i] = base[i]
		n.perm[i+256] = base[i]
	}
	return n
}

// Sample повертає значення шуму заданого типу, приблизно в [-1, 1]
func (n *Noise) Sample(kind NoiseKind, x, y float64) float64 {
	if kind == Simplex {
		return n.Simplex2D(x, y)
	}
	return n.Perlin2D(x, y)
}

// Perlin2D - класичний градієнтний шум Перліна
func (n *Noise) Perlin2D(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255
	xf := x - fx
	yf := y - fy
	u := fade(xf)
	v := fade(yf)

	aa := n.perm[n.perm[xi]+yi]
	ab := n.perm[n.perm[xi]+yi+1]
	ba := n.perm[n.perm[xi+1]+yi]
	bb := n.perm[n.perm[xi+1]+yi+1]

	x1 := lerp(u, grad2(aa, xf, yf), grad2(ba, xf-1, yf))
	x2 := lerp(u, grad2(ab, xf, yf-1), grad2(bb, xf-1, yf-1))
	return lerp(v, x1, x2)
}

// grad3 - градієнти симплекс-шуму, використовуються лише x і y
var grad3 = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// Simplex2D - симплекс-шум Перліна на трикутній сітці
func (n *Noise) Simplex2D(x, y float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)
	s := (x + y) * f2
	i := int(math.Floor(x + s))
	j := int(math.Floor(y + s))

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	var i1, j1 int
	if x0 > y0 {
		i1 = 1
	} else {
		j1 = 1
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1 + 2*g2
	y2 := y0 - 1 + 2*g2

	ii := i & 255
	jj := j & 255
	corners := [3]struct {
		g    int
		x, y float64
	}{
		{n.perm[ii+n.perm[jj]] % 12, x0, y0},
		{n.perm[ii+i1+n.perm[jj+j1]] % 12, x1, y1},
		{n.perm[ii+1+n.perm[jj+1]] % 12, x2, y2},
	}
	var sum float64
	for _, c := range corners {
		t := 0.5 - c.x*c.x - c.y*c.y
		if t < 0 {
			continue
		}
		t *= t
		sum += t * t * (grad3[c.g][0]*c.x + grad3[c.g][1]*c.y)
	}
	return 70 * sum
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad2(hash int, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	default:
		return -x - y
	}
}

// Channel - параметри одного фрактального каналу ознак
type Channel struct {
	Kind       NoiseKind
	Frequency  float64
	Octaves    int
	Lacunarity float64
	Gain       float64
	SeedOffset int64 // щоб канали з одним сідом не корелювали
}

// Fractal - сума октав шуму (fBm). Кожна октава має свій сід.
type Fractal struct {
	ch     Channel
	octave []*Noise
}

// NewFractal готує таблиці перестановок для всіх октав каналу
func NewFractal(seed int64, ch Channel) *Fractal {
	if ch.Octaves < 1 {
		ch.Octaves = 1
	}
	f := &Fractal{ch: ch, octave: make([]*Noise, ch.Octaves)}
	for i := range f.octave {
		f.octave[i] = NewNoise(seed + ch.SeedOffset + int64(i))
	}
	return f
}

// Sample повертає нормалізовану суму октав, приблизно в [-1, 1]
func (f *Fractal) Sample(x, z float64) float64 {
	var total, maxAmp float64
	freq := f.ch.Frequency
	amp := 1.0
	for _, n := range f.octave {
		total += n.Sample(f.ch.Kind, x*freq, z*freq) * amp
		maxAmp += amp
		amp *= f.ch.Gain
		freq *= f.ch.Lacunarity
	}
	if maxAmp == 0 {
		return 0
	}
	return total / maxAmp
}
