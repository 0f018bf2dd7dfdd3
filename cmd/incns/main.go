package main

import (
	"errors"
	"flag"

	"github.com/notargets/IncNSKernel/config"
	"github.com/notargets/IncNSKernel/variable"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		cfgFile  = flag.String("config", "", "INI configuration file, defaults are used when empty")
		meshFile = flag.String("mesh", "", "tetrahedral mesh file, a lattice is used when empty")
		order    = flag.Int("order", 2, "DG polynomial order for -mesh")
		n        = flag.Int("n", 33, "lattice points per side")
		iters    = flag.Int("iters", 3, "iterations to run")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgFile != "" {
		var err error
		if cfg, err = config.Load(*cfgFile); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if err := cfg.SetupLogging(); err != nil {
		log.Fatalf("%v", err)
	}
	log.Infof("config: %s", cfg)

	var (
		d   *Driver
		err error
	)
	if *meshFile != "" {
		d, err = NewMeshDriver(cfg, *order, *meshFile)
	} else {
		d, err = NewLatticeDriver(cfg, *n, shearFlow(cfg.NDim))
	}
	if err != nil {
		log.Fatalf("Failed to set up: %v", err)
	}
	defer d.Free()

	for it := 0; it < *iters; it++ {
		st, err := d.Step(it, nil)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if errors.Is(st.NonPhysicalErr, variable.ErrDensityInvalid) {
			log.Warnf("iteration %d: %v", it, st.NonPhysicalErr)
		}
		log.WithFields(log.Fields{
			"strain":    []float64{st.MinStrain, st.MaxStrain},
			"vorticity": st.MaxVorticity,
			"density":   []float64{st.MinDensity, st.MaxDensity},
		}).Infof("iteration %d", it)
	}
}

// shearFlow is a plane shear plus weak strain, du/dy = 1, du/dx = -dv/dy = 0.1
func shearFlow(nDim int) [][]float64 {
	A := make([][]float64, nDim)
	for i := range A {
		A[i] = make([]float64, nDim)
	}
	A[0][1] = 1.0
	A[0][0] = 0.1
	A[1][1] = -0.1
	return A
}
