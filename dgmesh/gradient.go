package dgmesh

import (
	"fmt"

	"github.com/notargets/IncNSKernel/variable"
	"gonum.org/v1/gonum/mat"
)

// Metrics holds what is needed to differentiate nodal fields in physical space
type Metrics struct {
	// Reference derivative operators [Np × Np]
	Dr, Ds, Dt mat.Matrix

	// Inverse Jacobian components ∂(r,s,t)/∂(x,y,z), [Np × K], or [1 × K] for
	// affine elements where a single value covers every node
	Rx, Ry, Rz mat.Matrix
	Sx, Sy, Sz mat.Matrix
	Tx, Ty, Tz mat.Matrix
}

// Dims returns nodes per element and number of elements
func (m Metrics) Dims() (np, k int) {
	np, _ = m.Dr.Dims()
	_, k = m.Rx.Dims()
	return
}

func metricAt(m mat.Matrix, i, k int) float64 {
	if r, _ := m.Dims(); r == 1 {
		return m.At(0, k)
	}
	return m.At(i, k)
}

// PhysicalGradient returns ∂U/∂x, ∂U/∂y, ∂U/∂z for the nodal field U [Np × K]
func PhysicalGradient(m Metrics, U mat.Matrix) (Ux, Uy, Uz *mat.Dense) {
	np, k := U.Dims()

	var ur, us, ut mat.Dense
	ur.Mul(m.Dr, U)
	us.Mul(m.Ds, U)
	ut.Mul(m.Dt, U)

	Ux = mat.NewDense(np, k, nil)
	Uy = mat.NewDense(np, k, nil)
	Uz = mat.NewDense(np, k, nil)
	for kk := 0; kk < k; kk++ {
		for i := 0; i < np; i++ {
			r, s, t := ur.At(i, kk), us.At(i, kk), ut.At(i, kk)
			Ux.Set(i, kk, metricAt(m.Rx, i, kk)*r+metricAt(m.Sx, i, kk)*s+metricAt(m.Tx, i, kk)*t)
			Uy.Set(i, kk, metricAt(m.Ry, i, kk)*r+metricAt(m.Sy, i, kk)*s+metricAt(m.Ty, i, kk)*t)
			Uz.Set(i, kk, metricAt(m.Rz, i, kk)*r+metricAt(m.Sz, i, kk)*s+metricAt(m.Tz, i, kk)*t)
		}
	}
	return
}

// FillVelocityGradient writes the gradients of P (variable 0) and U, V, W
// (variables 1..3) into the 3D table g. A nil P leaves variable 0 at zero.
func FillVelocityGradient(m Metrics, P, U, V, W mat.Matrix, g *variable.GradientTable) error {
	np, k := m.Dims()
	if g.NDim != 3 || g.NVar != 4 {
		return fmt.Errorf("tetrahedral gradients need a 4×3 table, got %d×%d", g.NVar, g.NDim)
	}
	if g.NPoint != np*k {
		return fmt.Errorf("table has %d points, mesh has %d", g.NPoint, np*k)
	}

	fields := []mat.Matrix{P, U, V, W}
	for iVar, f := range fields {
		if f == nil {
			for pt := 0; pt < g.NPoint; pt++ {
				for d := 0; d < 3; d++ {
					g.Set(pt, iVar, d, 0)
				}
			}
			continue
		}
		if r, c := f.Dims(); r != np || c != k {
			return fmt.Errorf("field %d is %d×%d, want %d×%d", iVar, r, c, np, k)
		}
		gx, gy, gz := PhysicalGradient(m, f)
		for kk := 0; kk < k; kk++ {
			for j := 0; j < np; j++ {
				pt := kk*np + j
				g.Set(pt, iVar, 0, gx.At(j, kk))
				g.Set(pt, iVar, 1, gy.At(j, kk))
				g.Set(pt, iVar, 2, gz.At(j, kk))
			}
		}
	}
	return nil
}
