package physics

import "github.com/go-gl/mathgl/mgl64"

// World owns the bodies integrated each step.
type World struct {
	Gravity mgl64.Vec3
	bodies  []*RigidBody
	links   []*Articulation
	time    float64
	steps   int
}

func NewWorld(gravity mgl64.Vec3) *World {
	return &World{Gravity: gravity}
}

// DefaultGravity points down the engine's y axis.
func DefaultGravity() mgl64.Vec3 { return mgl64.Vec3{0, -Gravity, 0} }

func (w *World) AddBody(b *RigidBody) *RigidBody {
	w.bodies = append(w.bodies, b)
	return b
}

func (w *World) AddArticulation(a *Articulation) *Articulation {
	w.links = append(w.links, a)
	return a
}

func (w *World) Bodies() []*RigidBody           { return w.bodies }
func (w *World) Articulations() []*Articulation { return w.links }
func (w *World) Time() float64                  { return w.time }
func (w *World) Steps() int                     { return w.steps }

// Step integrates every joint and body by dt. All forces for the tick must
// have been added before calling Step.
func (w *World) Step(dt float64) {
	for _, a := range w.links {
		a.Integrate(dt)
	}
	for _, b := range w.bodies {
		b.Integrate(dt, w.Gravity)
	}
	if dt > 0 {
		w.time += dt
		w.steps++
	}
}
