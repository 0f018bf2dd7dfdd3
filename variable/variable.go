// Package variable holds the per-point primitive state of the pressure-based
// incompressible flow solver and the routines that refresh it each iteration.
package variable

import (
	"errors"
	"fmt"

	"github.com/notargets/IncNSKernel/config"
	"github.com/notargets/IncNSKernel/partitions"
	log "github.com/sirupsen/logrus"
)

// ErrDensityInvalid reports points whose equation of state produced a
// non-physical density
var ErrDensityInvalid = errors.New("non-physical density")

// PrimitiveUpdatable is the contract shared by every flow variant. The boolean
// results are variant specific, see the implementations.
type PrimitiveUpdatable interface {
	SetPrimVar(iPoint int, densityInf, viscosityInf, eddyVisc, turbKE float64,
		cfg *config.Config) bool
	SetVorticityStrainMag() bool
}

// PointState is a PrimitiveUpdatable that also exposes the density flag
// captured during its last update
type PointState interface {
	PrimitiveUpdatable
	NumPoints() int
	DensityValid(iPoint int) bool
}

// UpdateInputs are the per-iteration values passed to SetPrimVar
type UpdateInputs struct {
	DensityInf   float64
	ViscosityInf float64

	// Per point, nil means zero everywhere
	EddyViscosity []float64
	TurbKE        []float64
}

func (in UpdateInputs) pointValues(iPoint int) (eddy, tke float64) {
	if in.EddyViscosity != nil {
		eddy = in.EddyViscosity[iPoint]
	}
	if in.TurbKE != nil {
		tke = in.TurbKE[iPoint]
	}
	return
}

// UpdateAll runs SetPrimVar over every point, concurrently by partition when
// layout is not nil. SetPrimVar's own result is left as is; afterwards the
// captured density flags are checked and any non-physical points are returned
// as an error wrapping ErrDensityInvalid.
func UpdateAll(v PointState, layout *partitions.PartitionLayout, in UpdateInputs,
	cfg *config.Config) error {
	nPoint := v.NumPoints()
	if in.EddyViscosity != nil && len(in.EddyViscosity) != nPoint {
		return fmt.Errorf("eddy viscosity has %d values for %d points",
			len(in.EddyViscosity), nPoint)
	}
	if in.TurbKE != nil && len(in.TurbKE) != nPoint {
		return fmt.Errorf("turbulent kinetic energy has %d values for %d points",
			len(in.TurbKE), nPoint)
	}
	if layout != nil && layout.TotalPoints != nPoint {
		return fmt.Errorf("layout covers %d points, state has %d", layout.TotalPoints, nPoint)
	}

	update := func(iPoint int) {
		eddy, tke := in.pointValues(iPoint)
		v.SetPrimVar(iPoint, in.DensityInf, in.ViscosityInf, eddy, tke, cfg)
	}
	if layout != nil {
		layout.ForEach(update)
	} else {
		for iPoint := 0; iPoint < nPoint; iPoint++ {
			update(iPoint)
		}
	}

	var (
		bad   int
		first = -1
	)
	for iPoint := 0; iPoint < nPoint; iPoint++ {
		if !v.DensityValid(iPoint) {
			if first < 0 {
				first = iPoint
			}
			bad++
		}
	}
	if bad > 0 {
		log.WithFields(log.Fields{
			"points":     bad,
			"firstPoint": first,
		}).Warn("equation of state returned non-physical density")
		return fmt.Errorf("%d of %d points, first at %d: %w", bad, nPoint, first,
			ErrDensityInvalid)
	}
	return nil
}

func checkDims(nPoint, nDim int) error {
	if nDim != 2 && nDim != 3 {
		return fmt.Errorf("nDim must be 2 or 3, got %d", nDim)
	}
	if nPoint < 1 {
		return fmt.Errorf("nPoint must be positive, got %d", nPoint)
	}
	return nil
}
