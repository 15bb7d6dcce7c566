package models_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/popdyn/internal/dynamo"
	"github.com/san-kum/popdyn/internal/models"
)

var _ = Describe("Simulate", func() {
	DescribeTable("returns steps+1 states starting at x0",
		func(m *dynamo.Model, x0 dynamo.State) {
			for _, steps := range []int{0, 1, 25} {
				traj, err := m.Simulate(x0, steps)
				Expect(err).NotTo(HaveOccurred())
				Expect(traj).To(HaveLen(steps + 1))
				Expect(traj[0]).To(Equal(x0))
			}
		},
		Entry("exponential", models.NewExponential(dynamo.Params{"r": 1.2}), dynamo.Scalar(3)),
		Entry("logistic", models.NewLogistic(dynamo.Params{"r": 3.7}), dynamo.Scalar(0.2)),
		Entry("moran", models.NewMoran(dynamo.Params{"r": 2.8}), dynamo.Scalar(0.4)),
		Entry("host_parasite", models.NewHostParasite(dynamo.Params{"b": 2, "a": 0.1, "c": 1}), dynamo.Vec(10, 1)),
	)
})

var _ = Describe("HostParasite", func() {
	var m *dynamo.Model

	BeforeEach(func() {
		m = models.NewHostParasite(dynamo.Params{"b": 2, "a": 0.1, "c": 1})
	})

	It("keeps both populations non-negative", func() {
		for _, x0 := range []dynamo.State{{10, 1}, {0, 5}, {3, 0}, {100, 50}} {
			traj, err := m.Simulate(x0, 40)
			Expect(err).NotTo(HaveOccurred())
			for _, x := range traj {
				if x.IsValid() {
					Expect(x[0]).To(BeNumerically(">=", 0))
					Expect(x[1]).To(BeNumerically(">=", 0))
				}
			}
		}
	})

	It("has no parasitism without parasitoids", func() {
		next, err := m.Step(dynamo.Vec(10, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(next[0]).To(BeNumerically("==", 20))
		Expect(next[1]).To(BeZero())
	})

	It("matches the reference step", func() {
		next, err := m.Step(dynamo.Vec(10, 1))
		Expect(err).NotTo(HaveOccurred())
		Expect(next[0]).To(BeNumerically("~", 18.097, 1e-3))
		Expect(next[1]).To(BeNumerically("~", 0.952, 1e-3))
	})

	It("fails on a missing parameter instead of defaulting", func() {
		incomplete := models.NewHostParasite(dynamo.Params{"b": 2, "a": 0.1})
		_, err := incomplete.Simulate(dynamo.Vec(10, 1), 3)
		Expect(err).To(MatchError(dynamo.ErrMissingParameter))
		Expect(incomplete.Trajectory()).To(BeEmpty())
	})
})

var _ = Describe("Numeric degeneracy", func() {
	It("propagates overflow as Inf without failing", func() {
		m := models.NewExponential(dynamo.Params{"r": 1e200})
		traj, err := m.Simulate(dynamo.Scalar(1e200), 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsInf(traj.Last()[0], 1)).To(BeTrue())
	})

	It("propagates NaN through later steps", func() {
		m := models.NewLogistic(dynamo.Params{"r": math.NaN()})
		traj, err := m.Simulate(dynamo.Scalar(0.5), 3)
		Expect(err).NotTo(HaveOccurred())
		for _, x := range traj[1:] {
			Expect(math.IsNaN(x[0])).To(BeTrue())
		}
	})
})
