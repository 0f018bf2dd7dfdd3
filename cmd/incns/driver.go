package main

import (
	"fmt"

	"github.com/notargets/IncNSKernel/config"
	"github.com/notargets/IncNSKernel/dgmesh"
	"github.com/notargets/IncNSKernel/partitions"
	"github.com/notargets/IncNSKernel/runner"
	"github.com/notargets/IncNSKernel/variable"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Driver owns the point state and runs the per-iteration refresh
type Driver struct {
	cfg    *config.Config
	state  *variable.IncNSVariable
	layout *partitions.PartitionLayout
	runner *runner.Runner // nil runs on the host
}

// IterationStats summarizes one refresh
type IterationStats struct {
	Iteration      int
	MinStrain      float64
	MaxStrain      float64
	MaxVorticity   float64
	MinDensity     float64
	MaxDensity     float64
	NonPhysicalErr error
}

func newDriver(cfg *config.Config, nPoint int) (d *Driver, err error) {
	d = &Driver{cfg: cfg}
	d.state, err = variable.NewIncNSVariable(cfg.PressureInf, cfg.VelocityInf, nPoint, cfg.NDim, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate state: %w", err)
	}

	strategy, err := partitions.ParseStrategy(cfg.PartitionStrategy)
	if err != nil {
		return nil, err
	}
	d.layout, err = partitions.NewLayout(nPoint, cfg.PartitionSize, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to partition %d points: %w", nPoint, err)
	}
	if err = d.state.SetLayout(d.layout); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"points":     nPoint,
		"partitions": d.layout.NumPartitions,
		"KpartMax":   d.layout.KpartMax,
		"strategy":   strategy,
	}).Info("partitioned points")

	if cfg.DeviceProps != "" {
		device, err := runner.CreateDevice(cfg.DeviceProps)
		if err != nil {
			return nil, err
		}
		d.runner = runner.NewRunner(device, d.layout, cfg.NDim)
	}
	return d, nil
}

// NewLatticeDriver places n points per direction on the unit square or cube
// and prescribes the linear velocity field u = ρ∞⁻¹·momentum = A·x
func NewLatticeDriver(cfg *config.Config, n int, A [][]float64) (d *Driver, err error) {
	if n < 2 {
		return nil, fmt.Errorf("lattice needs at least 2 points per side, got %d", n)
	}
	if len(A) != cfg.NDim {
		return nil, fmt.Errorf("velocity gradient is %d×?, NDim is %d", len(A), cfg.NDim)
	}
	nPoint := n * n
	if cfg.NDim == 3 {
		nPoint *= n
	}
	if d, err = newDriver(cfg, nPoint); err != nil {
		return nil, err
	}

	h := 1.0 / float64(n-1)
	x := make([]float64, cfg.NDim)
	mom := make([]float64, cfg.NDim)
	grad := make([][]float64, cfg.NDim+1)
	grad[0] = make([]float64, cfg.NDim)
	for iVar := 0; iVar < cfg.NDim; iVar++ {
		grad[iVar+1] = A[iVar]
	}
	for iPoint := 0; iPoint < nPoint; iPoint++ {
		idx := iPoint
		for iDim := 0; iDim < cfg.NDim; iDim++ {
			x[iDim] = float64(idx%n) * h
			idx /= n
		}
		for iDim := 0; iDim < cfg.NDim; iDim++ {
			mom[iDim] = cfg.DensityInf * (cfg.VelocityInf[iDim] + floats.Dot(A[iDim], x))
		}
		d.state.SetMomentum(iPoint, mom)
		d.state.Gradient.SetPoint(iPoint, grad)
	}
	return d, nil
}

// NewMeshDriver uses the DG nodes of a tetrahedral mesh as points with a
// uniform freestream velocity
func NewMeshDriver(cfg *config.Config, order int, meshfile string) (d *Driver, err error) {
	if cfg.NDim != 3 {
		return nil, fmt.Errorf("tetrahedral meshes need NDim=3, config has %d", cfg.NDim)
	}
	tm, err := dgmesh.NewTetMesh(order, meshfile)
	if err != nil {
		return nil, err
	}
	if d, err = newDriver(cfg, tm.NumPoints()); err != nil {
		return nil, err
	}

	np, k := tm.Dims()
	fields := make([]*mat.Dense, 3)
	for iDim := range fields {
		fields[iDim] = mat.NewDense(np, k, nil)
		for kk := 0; kk < k; kk++ {
			for j := 0; j < np; j++ {
				fields[iDim].Set(j, kk, cfg.VelocityInf[iDim])
			}
		}
	}
	if err = tm.FillVelocityGradient(nil, fields[0], fields[1], fields[2], d.state.Gradient); err != nil {
		return nil, err
	}
	return d, nil
}

// Step refreshes primitives at every point, then vorticity and strain
func (d *Driver) Step(iter int, eddyVisc []float64) (st IterationStats, err error) {
	in := variable.UpdateInputs{
		DensityInf:    d.cfg.DensityInf,
		ViscosityInf:  d.cfg.ViscosityInf,
		EddyViscosity: eddyVisc,
	}
	st.Iteration = iter
	st.NonPhysicalErr = variable.UpdateAll(d.state, d.layout, in, d.cfg)

	if d.runner != nil {
		if err = d.runner.RunVorticityStrain(d.state); err != nil {
			return st, fmt.Errorf("iteration %d: %w", iter, err)
		}
	} else {
		d.state.SetVorticityStrainMag()
	}

	st.MinStrain = floats.Min(d.state.StrainMag)
	st.MaxStrain = floats.Max(d.state.StrainMag)
	st.MinDensity = floats.Min(d.state.Density)
	st.MaxDensity = floats.Max(d.state.Density)
	for _, w := range d.state.Vorticity {
		if n := floats.Norm(w[:], 2); n > st.MaxVorticity {
			st.MaxVorticity = n
		}
	}
	return st, nil
}

// Free releases device resources
func (d *Driver) Free() {
	if d.runner != nil {
		d.runner.Free()
		d.runner.Device.Free()
	}
}
