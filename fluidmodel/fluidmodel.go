// Package fluidmodel implements the equation of state and laminar viscosity laws used
// by the per-point primitive update
package fluidmodel

import (
	"fmt"
	"math"

	"github.com/notargets/IncNSKernel/config"
)

// DensityModel computes the point density from the freestream density and the
// local pressure
type DensityModel interface {
	Density(densityInf, pressure float64) float64
}

// ViscosityModel computes the laminar viscosity from the freestream viscosity
type ViscosityModel interface {
	LaminarViscosity(viscosityInf float64) float64
}

// FluidModel pairs an equation of state with a viscosity law
type FluidModel struct {
	DensityModel
	ViscosityModel
}

// ConstantDensity is the incompressible equation of state: ρ = ρ∞
type ConstantDensity struct{}

func (ConstantDensity) Density(densityInf, _ float64) float64 { return densityInf }

// LinearDensity is a weakly compressible liquid:
//
//	ρ(p) = ρ∞ + C・(p - P0)   thus   dρ/dp = C
type LinearDensity struct {
	P0 float64 // pressure at which ρ = ρ∞
	C  float64 // compressibility coefficient
}

func (m LinearDensity) Density(densityInf, pressure float64) float64 {
	return densityInf + m.C*(pressure-m.P0)
}

// ConstantViscosity returns the freestream viscosity unchanged
type ConstantViscosity struct{}

func (ConstantViscosity) LaminarViscosity(viscosityInf float64) float64 { return viscosityInf }

// Sutherland scales the freestream viscosity, taken at TRef, to the operating
// temperature T
type Sutherland struct {
	TRef float64
	S    float64
	T    float64
}

func (m Sutherland) LaminarViscosity(viscosityInf float64) float64 {
	return viscosityInf * math.Pow(m.T/m.TRef, 1.5) * (m.TRef + m.S) / (m.T + m.S)
}

// IsPhysicalDensity reports whether rho is usable as a density
func IsPhysicalDensity(rho float64) bool {
	return rho > 0 && !math.IsInf(rho, 0) && !math.IsNaN(rho)
}

// New builds the fluid model selected by cfg
func New(cfg *config.Config) (fm *FluidModel, err error) {
	fm = &FluidModel{}
	switch cfg.DensityModel {
	case config.DensityConstant, "":
		fm.DensityModel = ConstantDensity{}
	case config.DensityLinear:
		fm.DensityModel = LinearDensity{P0: cfg.PressureRef, C: cfg.Compressibility}
	default:
		return nil, fmt.Errorf("unknown density model %q", cfg.DensityModel)
	}
	switch cfg.ViscosityModel {
	case config.ViscosityConstant, "":
		fm.ViscosityModel = ConstantViscosity{}
	case config.ViscositySutherland:
		fm.ViscosityModel = Sutherland{
			TRef: cfg.TemperatureRef,
			S:    cfg.SutherlandConstant,
			T:    cfg.Temperature,
		}
	default:
		return nil, fmt.Errorf("unknown viscosity model %q", cfg.ViscosityModel)
	}
	return
}
