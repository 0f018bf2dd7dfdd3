package variable

import (
	"math"

	"github.com/notargets/IncNSKernel/config"
	log "github.com/sirupsen/logrus"
)

// IncNSVariable adds the viscous state to IncEulerVariable: laminar and eddy
// viscosity, and the vorticity and strain-rate magnitude used by turbulence
// models.
type IncNSVariable struct {
	*IncEulerVariable

	LaminarViscosity []float64
	EddyViscosity    []float64

	// Components 0 and 1 stay zero in 2D
	Vorticity [][3]float64
	StrainMag []float64

	// Allocated here, filled by the turbulence and time step code
	DESLengthScale []float64
	MaxLambdaVisc  []float64
}

func NewIncNSVariable(pressure float64, velocity []float64, nPoint, nDim int,
	cfg *config.Config) (v *IncNSVariable, err error) {
	euler, err := NewIncEulerVariable(pressure, velocity, nPoint, nDim, cfg)
	if err != nil {
		return nil, err
	}
	v = &IncNSVariable{
		IncEulerVariable: euler,
		LaminarViscosity: make([]float64, nPoint),
		EddyViscosity:    make([]float64, nPoint),
		Vorticity:        make([][3]float64, nPoint),
		StrainMag:        make([]float64, nPoint),
		DESLengthScale:   make([]float64, nPoint),
		MaxLambdaVisc:    make([]float64, nPoint),
	}
	return
}

func (v *IncNSVariable) SetEddyViscosity(iPoint int, eddyVisc float64) {
	v.EddyViscosity[iPoint] = eddyVisc
}

func (v *IncNSVariable) SetLaminarViscosity(iPoint int, viscosityInf float64) {
	v.LaminarViscosity[iPoint] = v.Fluid.LaminarViscosity(viscosityInf)
}

// SetPrimVar refreshes the primitive state at iPoint. The order matters:
// velocity needs the new density. The density check is recorded for
// DensityValid but does not change the result, which is always true.
func (v *IncNSVariable) SetPrimVar(iPoint int, densityInf, viscosityInf, eddyVisc,
	turbKE float64, cfg *config.Config) bool {
	physical := true

	v.SetEddyViscosity(iPoint, eddyVisc)

	_ = v.SetDensity(iPoint, densityInf)

	v.SetVelocity(iPoint)

	v.SetLaminarViscosity(iPoint, viscosityInf)

	return physical
}

// SetVorticityStrainMag recomputes vorticity and strain-rate magnitude at every
// point from the gradient table. It always returns false.
func (v *IncNSVariable) SetVorticityStrainMag() bool {
	v.forEachPoint(v.setVorticityStrainMag)
	log.Debugf("vorticity and strain magnitude updated for %d points", v.NPoint)
	return false
}

func (v *IncNSVariable) setVorticityStrainMag(iPoint int) {
	var (
		nDim = v.NDim
		g    = func(iVar, iDim int) float64 { return v.Gradient.At(iPoint, iVar, iDim) }
		vort = &v.Vorticity[iPoint]
	)

	vort[0], vort[1] = 0, 0
	vort[2] = g(2, 0) - g(1, 1)
	if nDim == 3 {
		vort[0] = g(3, 1) - g(2, 2)
		vort[1] = -(g(3, 0) - g(1, 2))
	}

	var div float64
	for iDim := 0; iDim < nDim; iDim++ {
		div += g(iDim+1, iDim)
	}

	// Diagonal, in 2D the third normal strain is -Div/3
	var strain float64
	for iDim := 0; iDim < nDim; iDim++ {
		strain += math.Pow(g(iDim+1, iDim)-div/3, 2)
	}
	if nDim == 2 {
		strain += math.Pow(div/3, 2)
	}

	// Off diagonals
	strain += 2 * math.Pow(0.5*(g(1, 1)+g(2, 0)), 2)
	if nDim == 3 {
		strain += 2 * math.Pow(0.5*(g(1, 2)+g(3, 0)), 2)
		strain += 2 * math.Pow(0.5*(g(2, 2)+g(3, 1)), 2)
	}

	v.StrainMag[iPoint] = math.Sqrt(2 * strain)
}

func (v *IncNSVariable) GetVorticity(iPoint int) [3]float64 { return v.Vorticity[iPoint] }

func (v *IncNSVariable) GetStrainMag(iPoint int) float64 { return v.StrainMag[iPoint] }

func (v *IncNSVariable) GetLaminarViscosity(iPoint int) float64 {
	return v.LaminarViscosity[iPoint]
}

func (v *IncNSVariable) GetEddyViscosity(iPoint int) float64 { return v.EddyViscosity[iPoint] }

func (v *IncNSVariable) SetDESLengthScale(iPoint int, val float64) {
	v.DESLengthScale[iPoint] = val
}

func (v *IncNSVariable) GetDESLengthScale(iPoint int) float64 { return v.DESLengthScale[iPoint] }

func (v *IncNSVariable) SetMaxLambdaVisc(iPoint int, val float64) {
	v.MaxLambdaVisc[iPoint] = val
}

func (v *IncNSVariable) GetMaxLambdaVisc(iPoint int) float64 { return v.MaxLambdaVisc[iPoint] }
