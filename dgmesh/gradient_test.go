package dgmesh

import (
	"testing"

	"github.com/notargets/IncNSKernel/config"
	"github.com/notargets/IncNSKernel/variable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// twoNodeMetrics builds a 2-node, 2-element toy mesh. Dr differentiates the
// linear interpolant on r ∈ [-1, 1]; only r carries derivatives.
func twoNodeMetrics(rx, ry, rz float64) Metrics {
	zero2 := mat.NewDense(2, 2, nil)
	zeroK := mat.NewDense(1, 2, nil)
	return Metrics{
		Dr: mat.NewDense(2, 2, []float64{-0.5, 0.5, -0.5, 0.5}),
		Ds: zero2,
		Dt: zero2,
		Rx: mat.NewDense(1, 2, []float64{rx, rx}),
		Ry: mat.NewDense(1, 2, []float64{ry, ry}),
		Rz: mat.NewDense(2, 2, []float64{rz, rz, rz, rz}),
		Sx: zeroK, Sy: zeroK, Sz: zeroK,
		Tx: zeroK, Ty: zeroK, Tz: zeroK,
	}
}

func TestPhysicalGradient(t *testing.T) {
	m := twoNodeMetrics(2, -1, 0.5)
	np, k := m.Dims()
	assert.Equal(t, 2, np)
	assert.Equal(t, 2, k)

	// Element 0 goes 1 -> 3, element 1 goes 0 -> -4
	U := mat.NewDense(2, 2, []float64{
		1, 0,
		3, -4,
	})
	Ux, Uy, Uz := PhysicalGradient(m, U)
	for j := 0; j < 2; j++ {
		// ur = (end - start)/2
		assert.InDelta(t, 2*1.0, Ux.At(j, 0), 1e-15)
		assert.InDelta(t, -1*1.0, Uy.At(j, 0), 1e-15)
		assert.InDelta(t, 0.5*1.0, Uz.At(j, 0), 1e-15)
		assert.InDelta(t, 2*-2.0, Ux.At(j, 1), 1e-15)
		assert.InDelta(t, -1*-2.0, Uy.At(j, 1), 1e-15)
		assert.InDelta(t, 0.5*-2.0, Uz.At(j, 1), 1e-15)
	}
}

func TestFillVelocityGradient(t *testing.T) {
	m := twoNodeMetrics(1, 0, 0)
	U := mat.NewDense(2, 2, []float64{0, 0, 2, 2}) // du/dr = 1 everywhere
	V := mat.NewDense(2, 2, []float64{0, 1, 0, 1}) // constant per element
	W := mat.NewDense(2, 2, nil)

	g := variable.NewGradientTable(4, 4, 3)
	g.Set(0, 0, 0, 99)
	require.NoError(t, FillVelocityGradient(m, nil, U, V, W, g))

	for pt := 0; pt < 4; pt++ {
		assert.Zero(t, g.At(pt, 0, 0), "nil pressure clears variable 0")
		assert.InDelta(t, 1.0, g.At(pt, 1, 0), 1e-15)
		assert.Zero(t, g.At(pt, 1, 1))
		assert.Zero(t, g.At(pt, 2, 0))
		assert.Zero(t, g.At(pt, 3, 2))
	}

	t.Run("WrongTableShape", func(t *testing.T) {
		assert.Error(t, FillVelocityGradient(m, nil, U, V, W, variable.NewGradientTable(4, 3, 2)))
		assert.Error(t, FillVelocityGradient(m, nil, U, V, W, variable.NewGradientTable(5, 4, 3)))
	})
	t.Run("WrongFieldShape", func(t *testing.T) {
		bad := mat.NewDense(3, 2, nil)
		assert.Error(t, FillVelocityGradient(m, nil, bad, V, W, g))
	})
}

func TestFilledGradientFeedsStrain(t *testing.T) {
	// u = x on a mesh where r maps to x, so du/dx = 1 and nothing else
	m := twoNodeMetrics(1, 0, 0)
	U := mat.NewDense(2, 2, []float64{-1, -1, 1, 1})
	zero := mat.NewDense(2, 2, nil)

	v, err := variable.NewIncNSVariable(0, []float64{0, 0, 0}, 4, 3, defaultCfg3D())
	require.NoError(t, err)
	require.NoError(t, FillVelocityGradient(m, nil, U, zero, zero, v.Gradient))
	v.SetVorticityStrainMag()

	// Div = 1: diag (2/3)² + 2(1/3)² = 2/3, |S| = sqrt(4/3)
	for pt := 0; pt < 4; pt++ {
		assert.Equal(t, [3]float64{}, v.GetVorticity(pt))
		assert.InDelta(t, 1.1547005383792515, v.GetStrainMag(pt), 1e-14)
	}
}

func defaultCfg3D() *config.Config {
	cfg := config.Default()
	cfg.NDim = 3
	cfg.VelocityInf = []float64{0, 0, 0}
	return cfg
}
