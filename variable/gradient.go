package variable

import "fmt"

// GradientTable stores the spatial derivatives of the primitive variables at
// every point, G[point][variable][direction]. Variable 0 is pressure and
// variables 1..NDim are the velocity components; direction indexes x, y, z.
//
// The table is filled by an external gradient reconstruction and only read here.
type GradientTable struct {
	NPoint int
	NVar   int
	NDim   int
	data   []float64 // point-major, then variable, then direction
}

// NewGradientTable allocates a zeroed table
func NewGradientTable(nPoint, nVar, nDim int) *GradientTable {
	if nPoint < 1 || nVar < 1 || nDim < 1 {
		panic(fmt.Sprintf("invalid gradient table size %d×%d×%d", nPoint, nVar, nDim))
	}
	return &GradientTable{
		NPoint: nPoint,
		NVar:   nVar,
		NDim:   nDim,
		data:   make([]float64, nPoint*nVar*nDim),
	}
}

func (g *GradientTable) index(iPoint, iVar, iDim int) int {
	return (iPoint*g.NVar+iVar)*g.NDim + iDim
}

// At returns ∂(variable iVar)/∂x_iDim at iPoint
func (g *GradientTable) At(iPoint, iVar, iDim int) float64 {
	return g.data[g.index(iPoint, iVar, iDim)]
}

// Set stores ∂(variable iVar)/∂x_iDim at iPoint
func (g *GradientTable) Set(iPoint, iVar, iDim int, val float64) {
	g.data[g.index(iPoint, iVar, iDim)] = val
}

// SetPoint copies a full [NVar][NDim] block for one point, rows are variables
func (g *GradientTable) SetPoint(iPoint int, grad [][]float64) {
	for iVar := range grad {
		for iDim := range grad[iVar] {
			g.Set(iPoint, iVar, iDim, grad[iVar][iDim])
		}
	}
}

// Reset zeroes the table
func (g *GradientTable) Reset() {
	for i := range g.data {
		g.data[i] = 0
	}
}

// PointStride is the number of values stored per point
func (g *GradientTable) PointStride() int { return g.NVar * g.NDim }

// RawData exposes the point-major backing store for device transfer
func (g *GradientTable) RawData() []float64 { return g.data }
