package filter

import (
	"math"
	"math/cmplx"
)

// Coefficients holds one biquad's transfer function with a0 normalized to 1:
//
//	H(z) = (B0 + B1·z⁻¹ + B2·z⁻²) / (1 + A1·z⁻¹ + A2·z⁻²)
type Coefficients struct {
	B0, B1, B2 float64 // feedforward
	A1, A2     float64 // feedback
}

// ButterworthCoefficients derives the second-order low-pass section for the
// angular term omega with 1/√2 damping.
func ButterworthCoefficients(omega float64) Coefficients {
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)

	alpha := sinOmega / math.Sqrt2
	scale := 1 / (1 + alpha)

	b0 := (1 - cosOmega) / (2 * scale)
	return Coefficients{
		B0: b0,
		B1: (1 - cosOmega) * scale,
		B2: b0,
		A1: -2 * cosOmega * scale,
		A2: (1 - alpha) * scale,
	}
}

// Finite reports whether every coefficient is a finite number.
func (c Coefficients) Finite() bool {
	return finite(c.B0) && finite(c.B1) && finite(c.B2) && finite(c.A1) && finite(c.A2)
}

// Stable reports whether both poles lie strictly inside the unit circle,
// using the stability triangle |A2| < 1, |A1| < 1 + A2.
func (c Coefficients) Stable() bool {
	if !c.Finite() {
		return false
	}
	return math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2
}

// Poles returns the z-plane roots of 1 + A1·z⁻¹ + A2·z⁻².
func (c Coefficients) Poles() [2]complex128 {
	disc := cmplx.Sqrt(complex(c.A1*c.A1-4*c.A2, 0))
	a1 := complex(c.A1, 0)
	return [2]complex128{(-a1 + disc) / 2, (-a1 - disc) / 2}
}

// DCGain returns H(1), the steady-state gain for a constant input.
func (c Coefficients) DCGain() float64 {
	return (c.B0 + c.B1 + c.B2) / (1 + c.A1 + c.A2)
}

// MagnitudeSquared returns |H|² at freqHz for a section running at sampleRate.
func (c Coefficients) MagnitudeSquared(freqHz, sampleRate float64) float64 {
	w := 2 * math.Pi * freqHz / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	h := cmplx.Abs(num / den)
	return h * h
}
