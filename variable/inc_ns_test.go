package variable

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/notargets/IncNSKernel/config"
	"github.com/notargets/IncNSKernel/partitions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNS(t *testing.T, nPoint, nDim int) (*IncNSVariable, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.NDim = nDim
	cfg.DensityInf = 2.0
	cfg.ViscosityInf = 1.5e-3
	vel := make([]float64, nDim)
	vel[0] = 1.0
	v, err := NewIncNSVariable(0, vel, nPoint, nDim, cfg)
	require.NoError(t, err)
	return v, cfg
}

// ============================================================================
// Section 1: Construction
// ============================================================================

func TestNewIncNSVariable(t *testing.T) {
	v, _ := newNS(t, 4, 3)

	assert.Equal(t, 4, v.NumPoints())
	assert.Equal(t, 4, v.Gradient.NPoint)
	assert.Equal(t, 4, v.Gradient.NVar)
	assert.Equal(t, 3, v.Gradient.NDim)
	for i := 0; i < 4; i++ {
		assert.Equal(t, 2.0, v.Solution.At(i, 0), "momentum is density times velocity")
		assert.Equal(t, 1.0, v.GetVelocity(i, 0))
		assert.Equal(t, 1.0, v.GetVelocity2(i))
		assert.Equal(t, [3]float64{}, v.GetVorticity(i))
		assert.Zero(t, v.GetDESLengthScale(i))
		assert.Zero(t, v.GetMaxLambdaVisc(i))
		assert.True(t, v.DensityValid(i))
	}

	t.Run("BadDimensions", func(t *testing.T) {
		cfg := config.Default()
		_, err := NewIncNSVariable(0, []float64{1}, 4, 1, cfg)
		assert.Error(t, err)
		_, err = NewIncNSVariable(0, []float64{1, 0}, 0, 2, cfg)
		assert.Error(t, err)
		_, err = NewIncNSVariable(0, []float64{1, 0, 0}, 4, 2, cfg)
		assert.Error(t, err)
	})

	t.Run("BadFluidModel", func(t *testing.T) {
		cfg := config.Default()
		cfg.ViscosityModel = "POWER_LAW"
		_, err := NewIncNSVariable(0, []float64{1, 0}, 4, 2, cfg)
		assert.Error(t, err)
	})
}

// ============================================================================
// Section 2: Primitive update
// ============================================================================

func TestSetPrimVar(t *testing.T) {
	v, cfg := newNS(t, 3, 2)

	// Known momentum and density give a known velocity
	v.SetMomentum(1, []float64{3.0, -4.0})
	ok := v.SetPrimVar(1, 0.5, 2.0e-3, 0.25, 7.0, cfg)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, v.GetDensity(1), 1e-15)
	assert.InDelta(t, 6.0, v.GetVelocity(1, 0), 1e-15)
	assert.InDelta(t, -8.0, v.GetVelocity(1, 1), 1e-15)
	assert.InDelta(t, 100.0, v.GetVelocity2(1), 1e-12)
	assert.InDelta(t, 2.0e-3, v.GetLaminarViscosity(1), 1e-18)
	assert.Equal(t, 0.25, v.GetEddyViscosity(1))

	// Other points are untouched
	assert.Equal(t, 2.0, v.GetDensity(0))
	assert.Equal(t, 1.0, v.GetVelocity(0, 0))
	assert.Zero(t, v.GetEddyViscosity(0))
	assert.Zero(t, v.GetLaminarViscosity(2))
}

func TestSetPrimVar_InvalidDensityStillReturnsTrue(t *testing.T) {
	v, cfg := newNS(t, 2, 2)

	for _, rho := range []float64{0, -1.0} {
		assert.True(t, v.SetPrimVar(0, rho, 1e-3, 0, 0, cfg))
		assert.False(t, v.DensityValid(0))
	}
	assert.True(t, v.SetPrimVar(0, 1.0, 1e-3, 0, 0, cfg))
	assert.True(t, v.DensityValid(0))
}

func TestSetPrimVar_FluidModels(t *testing.T) {
	cfg := config.Default()
	cfg.DensityModel = config.DensityLinear
	cfg.Compressibility = 1e-3
	cfg.PressureRef = 0
	cfg.ViscosityModel = config.ViscositySutherland
	cfg.TemperatureRef = 273.15
	cfg.Temperature = 373.15
	v, err := NewIncNSVariable(0, []float64{1, 0}, 1, 2, cfg)
	require.NoError(t, err)

	v.SetPressure(0, 1000)
	v.SetPrimVar(0, 1.0, 1.0, 0, 0, cfg)
	assert.InDelta(t, 2.0, v.GetDensity(0), 1e-12)
	assert.Greater(t, v.GetLaminarViscosity(0), 1.0)
}

func TestEulerVariant(t *testing.T) {
	cfg := config.Default()
	v, err := NewIncEulerVariable(0, []float64{1, 0}, 2, 2, cfg)
	require.NoError(t, err)

	var pu PrimitiveUpdatable = v
	assert.True(t, pu.SetPrimVar(0, 1.0, 0, 0, 0, cfg))
	assert.False(t, pu.SetPrimVar(1, -1.0, 0, 0, 0, cfg), "inviscid variant returns the density check")
	assert.False(t, pu.SetVorticityStrainMag())
}

func TestUpdateAll(t *testing.T) {
	v, cfg := newNS(t, 50, 3)
	layout, err := partitions.NewLayout(50, 8, partitions.RoundRobin)
	require.NoError(t, err)

	eddy := make([]float64, 50)
	for i := range eddy {
		eddy[i] = float64(i)
	}
	in := UpdateInputs{DensityInf: 4.0, ViscosityInf: 1e-3, EddyViscosity: eddy}
	require.NoError(t, UpdateAll(v, layout, in, cfg))
	for i := 0; i < 50; i++ {
		assert.Equal(t, 4.0, v.GetDensity(i))
		assert.InDelta(t, 0.5, v.GetVelocity(i, 0), 1e-15)
		assert.Equal(t, float64(i), v.GetEddyViscosity(i))
	}

	t.Run("InvalidDensity", func(t *testing.T) {
		err := UpdateAll(v, nil, UpdateInputs{DensityInf: -1}, cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDensityInvalid))
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		assert.Error(t, UpdateAll(v, nil, UpdateInputs{DensityInf: 1, TurbKE: []float64{1}}, cfg))
		assert.Error(t, UpdateAll(v, nil, UpdateInputs{DensityInf: 1, EddyViscosity: []float64{1}}, cfg))
		small, err := partitions.NewLayout(10, 8, partitions.BlockPartition)
		require.NoError(t, err)
		assert.Error(t, UpdateAll(v, small, UpdateInputs{DensityInf: 1}, cfg))
		assert.Error(t, v.SetLayout(small))
	})
}

// ============================================================================
// Section 3: Vorticity and strain magnitude
// ============================================================================

func TestSetVorticityStrainMag_2D(t *testing.T) {
	t.Run("ShearFreeDeformation", func(t *testing.T) {
		v, _ := newNS(t, 1, 2)
		v.Gradient.SetPoint(0, [][]float64{
			{0, 0},  // pressure
			{1, 0},  // du/dx, du/dy
			{0, -1}, // dv/dx, dv/dy
		})
		assert.False(t, v.SetVorticityStrainMag())
		assert.Equal(t, [3]float64{0, 0, 0}, v.GetVorticity(0))
		assert.InDelta(t, 2.0, v.GetStrainMag(0), 1e-14)
	})

	t.Run("SimpleShear", func(t *testing.T) {
		v, _ := newNS(t, 1, 2)
		v.Gradient.Set(0, 2, 0, 1) // dv/dx
		v.SetVorticityStrainMag()
		assert.Equal(t, [3]float64{0, 0, 1}, v.GetVorticity(0))
		assert.InDelta(t, 1.0, v.GetStrainMag(0), 1e-14)
	})

	t.Run("IsotropicExpansion", func(t *testing.T) {
		v, _ := newNS(t, 1, 2)
		a := 3.0
		v.Gradient.Set(0, 1, 0, a)
		v.Gradient.Set(0, 2, 1, a)
		v.SetVorticityStrainMag()
		// Out of plane diagonal -Div/3 is included
		assert.InDelta(t, 2*a/math.Sqrt(3), v.GetStrainMag(0), 1e-13)
	})

	t.Run("XYVorticityAlwaysZero", func(t *testing.T) {
		v, _ := newNS(t, 20, 2)
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 20; i++ {
			for iVar := 0; iVar < 3; iVar++ {
				for iDim := 0; iDim < 2; iDim++ {
					v.Gradient.Set(i, iVar, iDim, rng.NormFloat64()*100)
				}
			}
			v.Vorticity[i] = [3]float64{9, 9, 9}
		}
		v.SetVorticityStrainMag()
		for i := 0; i < 20; i++ {
			assert.Zero(t, v.Vorticity[i][0])
			assert.Zero(t, v.Vorticity[i][1])
		}
	})
}

func TestSetVorticityStrainMag_3D(t *testing.T) {
	omega := 0.75
	testCases := []struct {
		name      string
		grad      [][]float64
		vorticity [3]float64
		strain    float64
	}{
		{
			name:      "RotationAboutZ", // u = -ωy, v = ωx
			grad:      [][]float64{{0, 0, 0}, {0, -omega, 0}, {omega, 0, 0}, {0, 0, 0}},
			vorticity: [3]float64{0, 0, 2 * omega},
		},
		{
			name:      "RotationAboutX", // v = -ωz, w = ωy
			grad:      [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, -omega}, {0, omega, 0}},
			vorticity: [3]float64{2 * omega, 0, 0},
		},
		{
			name:      "RotationAboutY", // u = ωz, w = -ωx
			grad:      [][]float64{{0, 0, 0}, {0, 0, omega}, {0, 0, 0}, {-omega, 0, 0}},
			vorticity: [3]float64{0, 2 * omega, 0},
		},
		{
			name:   "IsotropicExpansion",
			grad:   [][]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}, {0, 0, 2}},
			strain: 0,
		},
		{
			name:      "ShearXZ", // u = γz
			grad:      [][]float64{{0, 0, 0}, {0, 0, 2}, {0, 0, 0}, {0, 0, 0}},
			vorticity: [3]float64{0, 2, 0},
			strain:    2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, _ := newNS(t, 1, 3)
			v.Gradient.SetPoint(0, tc.grad)
			v.SetVorticityStrainMag()
			vort := v.GetVorticity(0)
			for i := 0; i < 3; i++ {
				assert.InDelta(t, tc.vorticity[i], vort[i], 1e-14)
			}
			assert.InDelta(t, tc.strain, v.GetStrainMag(0), 1e-14)
		})
	}
}

func TestSetVorticityStrainMag_Properties(t *testing.T) {
	for _, nDim := range []int{2, 3} {
		v, _ := newNS(t, 500, nDim)
		rng := rand.New(rand.NewSource(int64(nDim)))
		for i := 0; i < 500; i++ {
			for iVar := 0; iVar <= nDim; iVar++ {
				for iDim := 0; iDim < nDim; iDim++ {
					v.Gradient.Set(i, iVar, iDim, rng.Float64()*20-10)
				}
			}
		}

		v.SetVorticityStrainMag()
		vort1 := append([][3]float64(nil), v.Vorticity...)
		strain1 := append([]float64(nil), v.StrainMag...)
		for i := range strain1 {
			assert.GreaterOrEqual(t, strain1[i], 0.0)
			assert.False(t, math.IsNaN(strain1[i]))
		}

		// Idempotent
		v.SetVorticityStrainMag()
		assert.Equal(t, vort1, v.Vorticity)
		assert.Equal(t, strain1, v.StrainMag)

		// Partitioned evaluation matches the serial loop exactly
		layout, err := partitions.NewLayout(500, 64, partitions.RoundRobin)
		require.NoError(t, err)
		require.NoError(t, v.SetLayout(layout))
		v.SetVorticityStrainMag()
		assert.Equal(t, vort1, v.Vorticity)
		assert.Equal(t, strain1, v.StrainMag)
	}
}

func TestGradientTable(t *testing.T) {
	g := NewGradientTable(2, 3, 2)
	g.Set(1, 2, 1, 5)
	assert.Equal(t, 5.0, g.At(1, 2, 1))
	assert.Equal(t, 6, g.PointStride())
	assert.Equal(t, 5.0, g.RawData()[11])
	g.Reset()
	assert.Zero(t, g.At(1, 2, 1))
	assert.Panics(t, func() { NewGradientTable(0, 3, 2) })
}
