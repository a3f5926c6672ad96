// internal/dino/dino.go
//
// Frame-stepped endless-runner simulation.
//   - One Step is one animation frame at 60fps.
//   - Jumps are only accepted while the dino is on the ground.
//   - Cacti spawn at a fixed cadence with a seeded width roll, so a run is
//     fully determined by its seed and the frames it jumped on.

package dino

import (
	"errors"
	"math/rand/v2"
)

const (
	BoardWidth  = 750
	BoardHeight = 250

	DinoWidth  = 88
	DinoHeight = 94
	DinoX      = 50
	GroundY    = BoardHeight - DinoHeight

	Gravity      = 0.4
	JumpVelocity = -10.0

	CactusSpeed  = -6.0
	CactusX      = 700
	CactusHeight = 70
	SpawnEvery   = 72 // 1.2s at 60fps

	DefaultMaxFrames = 60 * 60 * 30
)

var ErrInvalidJumps = errors.New("jump frames must be positive and ascending")

// Rect is an axis-aligned box in board coordinates (y grows downward).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Overlaps is a strict AABB test; touching edges do not collide.
func (a Rect) Overlaps(b Rect) bool {
	return a.X < b.X+b.W &&
		a.X+a.W > b.X &&
		a.Y < b.Y+b.H &&
		a.Y+a.H > b.Y
}

// CactusWidth maps a uniform roll in [0,1) to one of the three cactus sizes.
func CactusWidth(chance float64) float64 {
	switch {
	case chance > 0.9:
		return 102
	case chance > 0.7:
		return 69
	default:
		return 34
	}
}

// World is the state of a single run.
type World struct {
	Dino      Rect    `json:"dino"`
	VelocityY float64 `json:"velocityY"`
	Cacti     []Rect  `json:"cacti"`
	Frame     int     `json:"frame"`
	Score     int     `json:"score"`
	Over      bool    `json:"over"`

	rng        *rand.Rand
	spawnEvery int
}

// NewWorld starts a run whose cactus rolls come from seed.
func NewWorld(seed uint64) *World {
	return &World{
		Dino:       Rect{X: DinoX, Y: GroundY, W: DinoWidth, H: DinoHeight},
		Cacti:      []Rect{},
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		spawnEvery: SpawnEvery,
	}
}

// Grounded reports whether the dino is standing on the ground and not
// already pushing off.
func (w *World) Grounded() bool { return w.Dino.Y >= GroundY && w.VelocityY >= 0 }

// Jump starts a jump. Ignored mid-air or after the run ended.
func (w *World) Jump() bool {
	if w.Over || !w.Grounded() {
		return false
	}
	w.VelocityY = JumpVelocity
	return true
}

// Step advances one frame and reports whether the run is still alive.
// The frame a collision happens on does not score.
func (w *World) Step() bool {
	if w.Over {
		return false
	}
	w.Frame++

	w.VelocityY += Gravity
	w.Dino.Y = min(w.Dino.Y+w.VelocityY, GroundY)
	if w.Dino.Y >= GroundY {
		w.VelocityY = 0
	}

	if w.spawnEvery > 0 && w.Frame%w.spawnEvery == 0 {
		w.Cacti = append(w.Cacti, Rect{
			X: CactusX,
			Y: GroundY,
			W: CactusWidth(w.rng.Float64()),
			H: CactusHeight,
		})
	}

	kept := w.Cacti[:0]
	for _, c := range w.Cacti {
		c.X += CactusSpeed
		if w.Dino.Overlaps(c) {
			w.Over = true
		}
		if c.X+c.W > 0 {
			kept = append(kept, c)
		}
	}
	w.Cacti = kept

	if w.Over {
		return false
	}
	w.Score++
	return true
}

// Result of a replayed run.
type Result struct {
	Score   int  `json:"score"`
	Frames  int  `json:"frames"`
	Jumps   int  `json:"jumps"`
	Crashed bool `json:"crashed"`
}

// Simulate replays a run. jumps lists the frames (1-based) on which the
// player pressed jump; presses while airborne are ignored just like live play.
// The run stops on a crash or after maxFrames.
func Simulate(seed uint64, jumps []int, maxFrames int) (Result, error) {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	prev := 0
	for _, f := range jumps {
		if f <= 0 || f < prev {
			return Result{}, ErrInvalidJumps
		}
		prev = f
	}

	w := NewWorld(seed)
	var res Result
	next := 0
	for w.Frame < maxFrames {
		frame := w.Frame + 1
		for next < len(jumps) && jumps[next] == frame {
			if w.Jump() {
				res.Jumps++
			}
			next++
		}
		if !w.Step() {
			res.Crashed = true
			break
		}
	}
	res.Score = w.Score
	res.Frames = w.Frame
	return res, nil
}
