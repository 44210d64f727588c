package dynamic_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/compassim/internal/metrics"
)

var _ = Describe("trajectory metrics", func() {
	It("finds the last crossing of the settling limit", func() {
		idx, ok := metrics.SettlingIndex([]float64{10, 6, 4, -6, 3}, 5)
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(3))
	})

	It("reports no crossing as absent", func() {
		_, ok := metrics.SettlingIndex([]float64{90, 80, 70}, 5)
		Expect(ok).To(BeFalse())
	})

	It("spans the second half of the stability run", func() {
		amp, err := metrics.SecondHalfSpan([]float64{1, 2, 3, 4, 5, 6, 7, 8})
		Expect(err).NotTo(HaveOccurred())
		Expect(amp).To(Equal(3.0))
	})
})
