package filter_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidf/internal/filter"
)

var _ = Describe("Type", func() {
	It("defaults to first order", func() {
		var t filter.Type
		Expect(t).To(Equal(filter.FirstOrder))
		Expect(t.String()).To(Equal("first_order"))
	})

	DescribeTable("parses names",
		func(in string, want filter.Type) {
			got, err := filter.ParseType(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("first_order", "first_order", filter.FirstOrder),
		Entry("short", "first", filter.FirstOrder),
		Entry("digit", "2", filter.SecondOrder),
		Entry("mixed case", " Second-Order ", filter.SecondOrder),
	)

	It("rejects unknown names and values", func() {
		_, err := filter.ParseType("third")
		Expect(err).To(MatchError(filter.ErrUnsupportedFilterType))

		bad := filter.Type(7)
		Expect(bad.Valid()).To(BeFalse())
		Expect(bad.String()).To(Equal("Type(7)"))
		_, err = bad.MarshalText()
		Expect(err).To(MatchError(filter.ErrUnsupportedFilterType))
	})

	It("round-trips through YAML as text", func() {
		type doc struct {
			Filter filter.Type `yaml:"filter"`
		}
		data, err := yaml.Marshal(doc{Filter: filter.SecondOrder})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("second_order"))

		var d doc
		Expect(yaml.Unmarshal(data, &d)).To(Succeed())
		Expect(d.Filter).To(Equal(filter.SecondOrder))

		Expect(yaml.Unmarshal([]byte("filter: bogus\n"), &d)).NotTo(Succeed())
	})
})

var _ = Describe("LowPassFilter", func() {
	It("fails fast on an unsupported type instead of holding no variant", func() {
		f, err := filter.NewLowPass(10, filter.Type(42))
		Expect(err).To(MatchError(filter.ErrUnsupportedFilterType))
		Expect(f).To(BeNil())
	})

	It("rejects an invalid cutoff for either type", func() {
		for _, typ := range []filter.Type{filter.FirstOrder, filter.SecondOrder} {
			_, err := filter.NewLowPass(0, typ)
			Expect(err).To(MatchError(filter.ErrInvalidCutoffFrequency))
		}
	})

	It("forwards to the first-order variant", func() {
		lpf, err := filter.NewLowPass(2, filter.FirstOrder)
		Expect(err).NotTo(HaveOccurred())
		ref, _ := filter.NewFirstOrderLPF(2)

		in := []float64{1, 4, -2, 0.5}
		Expect(run(lpf, in, 25)).To(Equal(run(ref, in, 25)))
		Expect(lpf.Type()).To(Equal(filter.FirstOrder))
		Expect(lpf.CutoffFrequency()).To(Equal(2.0))
	})

	It("forwards to the second-order variant with its options", func() {
		opt := filter.WithAngularFrequency(filter.NormalizedAngularFrequency)
		lpf, err := filter.NewLowPass(2, filter.SecondOrder, opt)
		Expect(err).NotTo(HaveOccurred())
		ref, _ := filter.NewSecondOrderLPF(2, opt)

		in := []float64{1, 4, -2, 0.5}
		Expect(run(lpf, in, 25)).To(Equal(run(ref, in, 25)))
		Expect(lpf.Type()).To(Equal(filter.SecondOrder))
		Expect(lpf.Output()).To(Equal(ref.Output()))
	})

	It("produces different but bounded sequences for each type at one cutoff", func() {
		const fc, fs = 0.001, 100.0
		first, err := filter.NewLowPass(fc, filter.FirstOrder)
		Expect(err).NotTo(HaveOccurred())
		second, err := filter.NewLowPass(fc, filter.SecondOrder)
		Expect(err).NotTo(HaveOccurred())

		in := make([]float64, 500)
		for i := range in {
			in[i] = 1 + 0.2*math.Sin(float64(i)*0.7)
		}
		a := run(first, in, fs)
		b := run(second, in, fs)
		Expect(a).NotTo(Equal(b))
		for i := range in {
			Expect(math.Abs(a[i])).To(BeNumerically("<", 5))
			Expect(math.Abs(b[i])).To(BeNumerically("<", 5))
		}
		Expect(first.Diverged()).To(BeFalse())
		Expect(second.Diverged()).To(BeFalse())
	})

	It("repeats exactly after Reset", func() {
		lpf, _ := filter.NewLowPass(0.001, filter.SecondOrder)
		in := []float64{1, 1, 0, -1, 2}
		want := run(lpf, in, 100)
		lpf.Reset()
		Expect(run(lpf, in, 100)).To(Equal(want))
	})

	It("holds at zero when it was never constructed", func() {
		var lpf filter.LowPassFilter
		Expect(lpf.Process(3, 100)).To(Equal(0.0))
		Expect(lpf.Output()).To(Equal(0.0))
		Expect(lpf.Diverged()).To(BeFalse())
	})
})
