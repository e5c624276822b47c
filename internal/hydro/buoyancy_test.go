package hydro_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/hydrosim/internal/body"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/hydro"
	"github.com/san-kum/hydrosim/internal/physics"
	"github.com/san-kum/hydrosim/internal/water"
)

type fixedSubmersion struct {
	res water.SubmersionResult
	ok  bool
}

func (f *fixedSubmersion) Submerged() (water.SubmersionResult, bool) { return f.res, f.ok }

var _ = Describe("Buoyancy", func() {
	var (
		hull *physics.RigidBody
		sub  *fixedSubmersion
		b    *hydro.Buoyancy
	)

	BeforeEach(func() {
		var err error
		hull = physics.NewRigidBody("hull", 20, mgl64.Vec3{1, 1, 1})
		sub = &fixedSubmersion{ok: true}
		b, err = hydro.NewBuoyancy("buoyancy", body.Attachment{Rigid: hull}, sub, zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("refuses to run without a body", func() {
		_, err := hydro.NewBuoyancy("buoyancy", body.Attachment{}, sub, zerolog.Nop())
		Expect(err).To(MatchError(dynamo.ErrMissingBody))
	})

	It("lifts by the weight of displaced water at the centroid", func() {
		centroid := mgl64.Vec3{0.1, -0.2, 0.3}
		sub.res = water.SubmersionResult{Volume: 0.5, Centroid: centroid}

		b.Tick(0.02)

		lift := hydro.BuoyantForce(997, 9.80665, 0.5)
		Expect(lift).To(BeNumerically("~", 4889.6, 1.5))
		Expect(b.Force()).To(Equal(mgl64.Vec3{0, lift, 0}))
		Expect(b.Point()).To(Equal(centroid))
		Expect(hull.AccumulatedForce()).To(Equal(mgl64.Vec3{0, lift, 0}))
		Expect(hull.AccumulatedTorque().ApproxEqual(centroid.Cross(mgl64.Vec3{0, lift, 0}))).To(BeTrue())
	})

	It("scales linearly with volume", func() {
		for _, v := range []float64{0.01, 0.1, 0.25, 1, 3} {
			Expect(hydro.BuoyantForce(hydro.WaterDensity, hydro.Gravity, 2*v)).
				To(BeNumerically("~", 2*hydro.BuoyantForce(hydro.WaterDensity, hydro.Gravity, v), 1e-9))
		}
	})

	It("gives nothing for an empty or negative volume", func() {
		Expect(hydro.BuoyantForce(hydro.WaterDensity, hydro.Gravity, 0)).To(BeZero())
		Expect(hydro.BuoyantForce(hydro.WaterDensity, hydro.Gravity, -1)).To(BeZero())

		b.Tick(0.02)
		Expect(hull.AccumulatedForce().Len()).To(BeZero())
	})

	It("stays vertical whatever the hull orientation", func() {
		hull.Rotation = mgl64.AnglesToQuat(0.4, -1.2, 2.0, mgl64.XYZ)
		sub.res = water.SubmersionResult{Volume: 0.2, Centroid: mgl64.Vec3{0, -0.1, 0}}

		b.Tick(0.02)

		f := hull.AccumulatedForce()
		Expect(f.X()).To(BeZero())
		Expect(f.Z()).To(BeZero())
		Expect(f.Y()).To(BeNumerically(">", 0))
	})

	It("can be switched off", func() {
		b.Enabled = false
		sub.res = water.SubmersionResult{Volume: 1}
		b.Tick(0.02)
		Expect(hull.AccumulatedForce().Len()).To(BeZero())
	})

	It("applies nothing when the submersion query failed", func() {
		sub.res = water.SubmersionResult{Volume: 1}
		sub.ok = false
		b.Tick(0.02)
		Expect(hull.AccumulatedForce().Len()).To(BeZero())
	})

	It("forgets the lift point once there is nothing to lift", func() {
		sub.res = water.SubmersionResult{Volume: 0.3, Centroid: mgl64.Vec3{0, -0.1, 0.2}}
		b.Tick(0.02)
		Expect(b.Point()).NotTo(Equal(mgl64.Vec3{}))

		sub.res = water.SubmersionResult{Centroid: mgl64.Vec3{0, -0.1, 0.2}}
		b.Tick(0.02)
		Expect(b.Force()).To(Equal(mgl64.Vec3{}))
		Expect(b.Point()).To(Equal(mgl64.Vec3{}))

		sub.res = water.SubmersionResult{Volume: 0.3, Centroid: mgl64.Vec3{0, -0.1, 0.2}}
		b.Tick(0.02)
		sub.ok = false
		b.Tick(0.02)
		Expect(b.Point()).To(Equal(mgl64.Vec3{}))
	})

	It("is idempotent for the same input", func() {
		sub.res = water.SubmersionResult{Volume: 0.3, Centroid: mgl64.Vec3{0, -0.1, 0.2}}
		b.Tick(0.02)
		first := hull.AccumulatedForce()
		hull.ClearForces()
		b.Tick(0.02)
		Expect(hull.AccumulatedForce()).To(Equal(first))
	})
})

var _ = Describe("Ballast", func() {
	It("pulls down at its offset", func() {
		hull := physics.NewRigidBody("hull", 20, mgl64.Vec3{1, 1, 1})
		ballast, err := hydro.NewBallast("ballast", 2, mgl64.Vec3{0, -0.5, 0.1}, body.Attachment{Rigid: hull})
		Expect(err).NotTo(HaveOccurred())

		ballast.Tick(0.02)

		Expect(hull.AccumulatedForce().Y()).To(BeNumerically("~", -2*hydro.Gravity, 1e-12))
		Expect(hull.AccumulatedTorque().X()).To(BeNumerically("~", 0.1*2*hydro.Gravity, 1e-12))
	})
})

var _ = Describe("PressureDrag", func() {
	var hull *physics.RigidBody

	BeforeEach(func() {
		hull = physics.NewRigidBody("hull", 20, mgl64.Vec3{1, 1, 1})
	})

	face := func(n mgl64.Vec3, area float64) *fixedSubmersion {
		return &fixedSubmersion{ok: true, res: water.SubmersionResult{
			FaceAreas:   []float64{area},
			FaceNormals: []mgl64.Vec3{n},
			FaceCenters: []mgl64.Vec3{n.Mul(0.5)},
		}}
	}

	It("pushes back on wetted faces moving into the water", func() {
		hull.LinearVelocity = mgl64.Vec3{0, 0, 2}
		sub := &fixedSubmersion{ok: true, res: water.SubmersionResult{
			FaceAreas:   []float64{0.5, 0.5},
			FaceNormals: []mgl64.Vec3{{0, 0, 1}, {0, 0, -1}},
			FaceCenters: []mgl64.Vec3{{0, 0, 0.5}, {0, 0, -0.5}},
		}}
		drag, err := hydro.NewPressureDrag("drag", hydro.QuadraticDrag(1), body.Attachment{Rigid: hull}, sub)
		Expect(err).NotTo(HaveOccurred())

		drag.Tick(0.02)

		expected := -0.5 * hydro.WaterDensity * 1 * 0.5 * 4
		Expect(drag.Force().Z()).To(BeNumerically("~", expected, 1e-9))
		Expect(math.Abs(drag.Force().X())).To(BeNumerically("<", 1e-12))
	})

	It("pulls back on faces moving away from the water", func() {
		hull.LinearVelocity = mgl64.Vec3{0, 0, 2}
		laws := hydro.DragConfig{VRef: 2, Suction: hydro.DragLaw{Linear: 10, Quadratic: 4, Falloff: 1}}
		drag, err := hydro.NewPressureDrag("drag", laws, body.Attachment{Rigid: hull}, face(mgl64.Vec3{0, 0, -1}, 0.5))
		Expect(err).NotTo(HaveOccurred())

		drag.Tick(0.02)

		// (10*1 + 4*1^2) * 0.5 * 1
		Expect(drag.Force().Z()).To(BeNumerically("~", -7, 1e-9))
		Expect(hull.AccumulatedForce().Z()).To(BeNumerically("~", -7, 1e-9))
	})

	It("leaves the trailing side alone without a suction law", func() {
		hull.LinearVelocity = mgl64.Vec3{0, 0, 2}
		drag, err := hydro.NewPressureDrag("drag", hydro.QuadraticDrag(1), body.Attachment{Rigid: hull}, face(mgl64.Vec3{0, 0, -1}, 0.5))
		Expect(err).NotTo(HaveOccurred())

		drag.Tick(0.02)
		Expect(drag.Force()).To(Equal(mgl64.Vec3{}))
	})

	It("weakens oblique faces by the falloff exponent", func() {
		// 2 m/s at 60 degrees off the normal
		hull.LinearVelocity = mgl64.Vec3{math.Sqrt(3), 0, 1}
		for _, tc := range []struct{ falloff, want float64 }{
			{0, 20},
			{1, 10},
			{2, 5},
		} {
			laws := hydro.DragConfig{VRef: 1, Pressure: hydro.DragLaw{Linear: 10, Falloff: tc.falloff}}
			drag, err := hydro.NewPressureDrag("drag", laws, body.Attachment{Rigid: hull}, face(mgl64.Vec3{0, 0, 1}, 1))
			Expect(err).NotTo(HaveOccurred())

			drag.Tick(0.02)

			Expect(drag.Force().Z()).To(BeNumerically("~", -tc.want, 1e-9), "falloff %v", tc.falloff)
			Expect(drag.Force().X()).To(BeNumerically("~", 0, 1e-12))
		}
	})

	It("adds the linear and quadratic terms against the reference speed", func() {
		hull.LinearVelocity = mgl64.Vec3{0, 0, 3}
		laws := hydro.DragConfig{VRef: 1.5, Pressure: hydro.DragLaw{Linear: 2, Quadratic: 1, Falloff: 1}}
		drag, err := hydro.NewPressureDrag("drag", laws, body.Attachment{Rigid: hull}, face(mgl64.Vec3{0, 0, 1}, 1))
		Expect(err).NotTo(HaveOccurred())

		drag.Tick(0.02)

		// s = 2: 2*2 + 1*4
		Expect(drag.Force().Z()).To(BeNumerically("~", -8, 1e-9))
	})

	It("rejects laws it cannot evaluate", func() {
		sub := face(mgl64.Vec3{0, 0, 1}, 1)
		for _, laws := range []hydro.DragConfig{
			{VRef: 0},
			{VRef: -1},
			{VRef: 1, Pressure: hydro.DragLaw{Linear: -1}},
			{VRef: 1, Suction: hydro.DragLaw{Falloff: math.NaN()}},
		} {
			_, err := hydro.NewPressureDrag("drag", laws, body.Attachment{Rigid: hull}, sub)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		}
	})
})

var _ = Describe("ViscousResistance", func() {
	var (
		hull *physics.RigidBody
		sub  *fixedSubmersion
		r    *hydro.ViscousResistance
	)

	BeforeEach(func() {
		var err error
		hull = physics.NewRigidBody("hull", 20, mgl64.Vec3{1, 1, 1})
		sub = &fixedSubmersion{ok: true, res: water.SubmersionResult{
			FaceAreas:   []float64{0.5, 0.5},
			FaceNormals: []mgl64.Vec3{{0, -1, 0}, {0, 0, 1}},
			FaceCenters: []mgl64.Vec3{{0, -0.5, 0}, {0, 0, 0.5}},
		}}
		r, err = hydro.NewViscousResistance("friction", 1, body.Attachment{Rigid: hull}, sub)
		Expect(err).NotTo(HaveOccurred())
	})

	It("follows the ITTC 1957 line", func() {
		Expect(hydro.FrictionCoefficient(1e7)).To(BeNumerically("~", 0.003, 1e-12))
		Expect(hydro.FrictionCoefficient(1e6)).To(BeNumerically(">", hydro.FrictionCoefficient(1e8)))
		Expect(hydro.FrictionCoefficient(50)).To(Equal(hydro.FrictionCoefficient(1e4)))
		Expect(hydro.FrictionCoefficient(0)).To(BeZero())
	})

	It("computes the Reynolds number from water viscosity", func() {
		re := hydro.ReynoldsNumber(hydro.WaterDensity, 2, 1, hydro.WaterViscosity*1e-3)
		Expect(re).To(BeNumerically("~", 1.9908e6, 1e2))
		Expect(hydro.ReynoldsNumber(hydro.WaterDensity, 2, 0, 1e-3)).To(BeZero())
	})

	It("drags faces against their tangential flow", func() {
		hull.LinearVelocity = mgl64.Vec3{0, 0, 2}

		r.Tick(0.02)

		cf := hydro.FrictionCoefficient(hydro.ReynoldsNumber(hydro.WaterDensity, 2, 1, hydro.WaterViscosity*1e-3))
		Expect(r.Coefficient()).To(BeNumerically("~", cf, 1e-15))
		// only the bottom face sees tangential flow
		want := -0.5 * hydro.WaterDensity * cf * 0.5 * 4
		Expect(r.Force().Z()).To(BeNumerically("~", want, 1e-9))
		Expect(math.Abs(r.Force().X())).To(BeNumerically("<", 1e-12))
		Expect(math.Abs(r.Force().Y())).To(BeNumerically("<", 1e-12))
		Expect(hull.AccumulatedForce().Z()).To(BeNumerically("~", want, 1e-9))
	})

	It("scales with the configured factor", func() {
		hull.LinearVelocity = mgl64.Vec3{0, 0, 2}
		r.Tick(0.02)
		single := r.Force()

		r.Scale = 2.5
		r.Tick(0.02)
		Expect(r.Force().Z()).To(BeNumerically("~", 2.5*single.Z(), 1e-9))
	})

	It("applies nothing at rest or without a submersion", func() {
		r.Tick(0.02)
		Expect(r.Force()).To(Equal(mgl64.Vec3{}))
		Expect(r.Coefficient()).To(BeZero())

		hull.LinearVelocity = mgl64.Vec3{0, 0, 2}
		sub.ok = false
		r.Tick(0.02)
		Expect(r.Force()).To(Equal(mgl64.Vec3{}))
		Expect(hull.AccumulatedForce().Len()).To(BeZero())
	})
})
