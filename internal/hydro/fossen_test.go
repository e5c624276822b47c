package hydro_test

import (
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

var _ = Describe("Fossen", func() {
	var (
		hull *physics.RigidBody
		f    *hydro.Fossen
	)

	build := func(features hydro.Features) {
		var err error
		hull = physics.NewRigidBody("hull", 20, mgl64.Vec3{1, 1, 1})
		f, err = hydro.NewFossen("fossen", hydro.DefaultCoefficients(), features, body.Attachment{Rigid: hull}, zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())
	}

	Describe("construction", func() {
		It("refuses to run without a body", func() {
			_, err := hydro.NewFossen("fossen", hydro.DefaultCoefficients(), hydro.AllFeatures(), body.Attachment{}, zerolog.Nop())
			Expect(err).To(MatchError(dynamo.ErrMissingBody))
		})

		It("rejects negative coefficients", func() {
			c := hydro.DefaultCoefficients()
			c.QuadraticDamping[hydro.Yaw] = -1
			_, err := hydro.NewFossen("fossen", c, hydro.AllFeatures(), body.Attachment{Rigid: physics.NewRigidBody("hull", 1, mgl64.Vec3{1, 1, 1})}, zerolog.Nop())
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})
	})

	Describe("Compute", func() {
		state := [6]float64{0.8, -0.4, 0.3, -0.2, 0.5, -1.1}
		prev := [6]float64{0.1, 0.2, -0.3, 0.4, -0.5, 0.6}

		It("is exactly zero with every feature disabled", func() {
			build(hydro.Features{})
			force, torque := f.Compute(state, prev, 0.02)
			Expect(force).To(Equal([3]float64{}))
			Expect(torque).To(Equal([3]float64{}))
		})

		It("damps against every velocity component", func() {
			build(hydro.Features{Damping: true})
			force, torque := f.Compute(state, state, 0.02)
			for i := 0; i < 3; i++ {
				Expect(force[i] * state[i]).To(BeNumerically("<", 0))
				Expect(torque[i] * state[i+3]).To(BeNumerically("<", 0))
			}
		})

		It("combines linear and quadratic damping", func() {
			build(hydro.Features{Damping: true})
			force, _ := f.Compute([6]float64{1, 0, 0, 0, 0, 0}, [6]float64{1, 0, 0, 0, 0, 0}, 0.02)
			Expect(force[0]).To(BeNumerically("~", -(30.0 + 25.0), 1e-12))
		})

		It("couples yaw rate with surge and sway", func() {
			build(hydro.Features{Coriolis: true})
			s := [6]float64{1, 2, 0, 0, 0, 0.5}
			force, torque := f.Compute(s, s, 0.02)
			Expect(force[0]).To(BeNumerically("~", 8*2*0.5, 1e-12))
			Expect(force[1]).To(BeNumerically("~", 6*1*0.5, 1e-12))
			Expect(force[2]).To(BeZero())
			Expect(torque[2]).To(BeNumerically("~", 8*2*1+8*1*2, 1e-12))
		})

		It("uses the backward difference for added mass", func() {
			build(hydro.Features{AddedMass: true})
			force, torque := f.Compute([6]float64{0, 0, 1, 0, 0, 0.2}, [6]float64{}, 0.5)
			Expect(force[2]).To(BeNumerically("~", 2*2, 1e-12))
			Expect(torque[2]).To(BeNumerically("~", 0.35*0.4, 1e-12))
		})

		It("follows feature changes made after construction", func() {
			build(hydro.AllFeatures())
			f.SetFeatures(hydro.Features{})
			Expect(f.Features()).To(Equal(hydro.Features{}))
			force, torque := f.Compute(state, prev, 0.02)
			Expect(force).To(Equal([3]float64{}))
			Expect(torque).To(Equal([3]float64{}))
		})

		It("guards a zero time step", func() {
			build(hydro.Features{AddedMass: true})
			force, torque := f.Compute([6]float64{1, 1, 1, 1, 1, 1}, [6]float64{}, 0)
			Expect(force).To(Equal([3]float64{}))
			Expect(torque).To(Equal([3]float64{}))
		})
	})

	Describe("Tick", func() {
		It("does nothing before Initialize", func() {
			build(hydro.AllFeatures())
			hull.LinearVelocity = mgl64.Vec3{0, 0, 1}
			f.Tick(0.02)
			Expect(hull.AccumulatedForce().Len()).To(BeZero())
		})

		It("resists forward motion in the engine frame", func() {
			build(hydro.AllFeatures())
			hull.LinearVelocity = mgl64.Vec3{0, 0, 1}
			Expect(f.Initialize()).To(Succeed())

			f.Tick(0.02)

			Expect(f.State()[hydro.Surge]).To(BeNumerically("~", 1, 1e-12))
			Expect(hull.AccumulatedForce().ApproxEqualThreshold(mgl64.Vec3{0, 0, -55}, 1e-9)).To(BeTrue())
		})

		It("resists forward motion along the hull heading", func() {
			build(hydro.Features{Damping: true})
			hull.Rotation = mgl64.QuatRotate(1.0, mgl64.Vec3{0, 1, 0})
			hull.LinearVelocity = hull.Rotation.Rotate(mgl64.Vec3{0, 0, 1})
			Expect(f.Initialize()).To(Succeed())

			f.Tick(0.02)

			expected := hull.Rotation.Rotate(mgl64.Vec3{0, 0, -55})
			Expect(hull.AccumulatedForce().ApproxEqualThreshold(expected, 1e-9)).To(BeTrue())
		})

		It("resists yaw", func() {
			build(hydro.Features{Damping: true})
			hull.AngularVelocity = mgl64.Vec3{0, 1, 0}
			Expect(f.Initialize()).To(Succeed())

			f.Tick(0.02)

			Expect(f.State()[hydro.Yaw]).To(BeNumerically("~", -1, 1e-12))
			Expect(hull.AccumulatedTorque().ApproxEqualThreshold(mgl64.Vec3{0, -50, 0}, 1e-9)).To(BeTrue())
		})

		It("sees velocity relative to the current", func() {
			build(hydro.AllFeatures())
			hull.LinearVelocity = mgl64.Vec3{0, 0, 0.5}
			f.SetSurface(water.Flat{Current: mgl64.Vec3{0, 0, 0.5}})
			Expect(f.Initialize()).To(Succeed())

			f.Tick(0.02)

			Expect(hull.AccumulatedForce().Len()).To(BeNumerically("<", 1e-12))
		})

		It("has no added-mass kick on the first tick", func() {
			build(hydro.Features{AddedMass: true})
			hull.LinearVelocity = mgl64.Vec3{0, 3, 0}
			Expect(f.Initialize()).To(Succeed())

			f.Tick(0.02)

			Expect(hull.AccumulatedForce().Len()).To(BeZero())
		})
	})
})
