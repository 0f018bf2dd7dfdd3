package variable

import (
	"fmt"

	"github.com/notargets/IncNSKernel/config"
	"github.com/notargets/IncNSKernel/fluidmodel"
	"github.com/notargets/IncNSKernel/partitions"
	"gonum.org/v1/gonum/mat"
)

// IncEulerVariable is the inviscid pressure-based incompressible state. The
// solution vector at each point is the momentum ρu.
type IncEulerVariable struct {
	NPoint int
	NDim   int

	Solution *mat.Dense // Momentum [NPoint × NDim]
	Velocity *mat.Dense // [NPoint × NDim]

	Velocity2 []float64
	Pressure  []float64
	Density   []float64

	// Pressure and velocity gradients, filled externally
	Gradient *GradientTable

	Fluid *fluidmodel.FluidModel

	// Points are evaluated concurrently by partition when set
	Layout *partitions.PartitionLayout

	densityValid []bool
}

// NewIncEulerVariable allocates nPoint points initialized to a uniform
// pressure and velocity at the configured freestream density
func NewIncEulerVariable(pressure float64, velocity []float64, nPoint, nDim int,
	cfg *config.Config) (v *IncEulerVariable, err error) {
	if err = checkDims(nPoint, nDim); err != nil {
		return nil, err
	}
	if len(velocity) != nDim {
		return nil, fmt.Errorf("velocity has %d components, nDim is %d", len(velocity), nDim)
	}
	fm, err := fluidmodel.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build fluid model: %w", err)
	}

	v = &IncEulerVariable{
		NPoint:       nPoint,
		NDim:         nDim,
		Solution:     mat.NewDense(nPoint, nDim, nil),
		Velocity:     mat.NewDense(nPoint, nDim, nil),
		Velocity2:    make([]float64, nPoint),
		Pressure:     make([]float64, nPoint),
		Density:      make([]float64, nPoint),
		Gradient:     NewGradientTable(nPoint, nDim+1, nDim),
		Fluid:        fm,
		densityValid: make([]bool, nPoint),
	}

	rho := cfg.DensityInf
	for iPoint := 0; iPoint < nPoint; iPoint++ {
		v.Pressure[iPoint] = pressure
		v.Density[iPoint] = rho
		v.densityValid[iPoint] = fluidmodel.IsPhysicalDensity(rho)
		for iDim := 0; iDim < nDim; iDim++ {
			v.Solution.Set(iPoint, iDim, rho*velocity[iDim])
			v.Velocity.Set(iPoint, iDim, velocity[iDim])
			v.Velocity2[iPoint] += velocity[iDim] * velocity[iDim]
		}
	}
	return
}

func (v *IncEulerVariable) NumPoints() int { return v.NPoint }

// SetLayout assigns the partition layout used to evaluate points concurrently
func (v *IncEulerVariable) SetLayout(layout *partitions.PartitionLayout) error {
	if layout != nil && layout.TotalPoints != v.NPoint {
		return fmt.Errorf("layout covers %d points, state has %d", layout.TotalPoints, v.NPoint)
	}
	v.Layout = layout
	return nil
}

// SetDensity evaluates the equation of state at iPoint and reports whether the
// result is physical. The density is stored either way.
func (v *IncEulerVariable) SetDensity(iPoint int, densityInf float64) bool {
	rho := v.Fluid.Density(densityInf, v.Pressure[iPoint])
	v.Density[iPoint] = rho
	v.densityValid[iPoint] = fluidmodel.IsPhysicalDensity(rho)
	return v.densityValid[iPoint]
}

// SetVelocity derives velocity and its squared magnitude from the momentum
// and the current density
func (v *IncEulerVariable) SetVelocity(iPoint int) {
	rho := v.Density[iPoint]
	v.Velocity2[iPoint] = 0
	for iDim := 0; iDim < v.NDim; iDim++ {
		u := v.Solution.At(iPoint, iDim) / rho
		v.Velocity.Set(iPoint, iDim, u)
		v.Velocity2[iPoint] += u * u
	}
}

// SetMomentum overwrites the solution vector at iPoint
func (v *IncEulerVariable) SetMomentum(iPoint int, momentum []float64) {
	for iDim := 0; iDim < v.NDim; iDim++ {
		v.Solution.Set(iPoint, iDim, momentum[iDim])
	}
}

func (v *IncEulerVariable) SetPressure(iPoint int, p float64) { v.Pressure[iPoint] = p }

func (v *IncEulerVariable) GetVelocity(iPoint, iDim int) float64 {
	return v.Velocity.At(iPoint, iDim)
}

func (v *IncEulerVariable) GetVelocity2(iPoint int) float64 { return v.Velocity2[iPoint] }

func (v *IncEulerVariable) GetDensity(iPoint int) float64 { return v.Density[iPoint] }

// DensityValid is the equation of state check captured by the last SetDensity
func (v *IncEulerVariable) DensityValid(iPoint int) bool { return v.densityValid[iPoint] }

// SetPrimVar refreshes density then velocity at iPoint and returns the density
// check. The viscous arguments are ignored by the inviscid variant.
func (v *IncEulerVariable) SetPrimVar(iPoint int, densityInf, _, _, _ float64,
	_ *config.Config) bool {
	checkDens := v.SetDensity(iPoint, densityInf)
	v.SetVelocity(iPoint)
	return checkDens
}

// SetVorticityStrainMag has nothing to compute for inviscid flow
func (v *IncEulerVariable) SetVorticityStrainMag() bool { return false }

func (v *IncEulerVariable) forEachPoint(fn func(iPoint int)) {
	if v.Layout != nil {
		v.Layout.ForEach(fn)
		return
	}
	for iPoint := 0; iPoint < v.NPoint; iPoint++ {
		fn(iPoint)
	}
}
