// Package dgmesh fills the velocity gradient table from a nodal DG tetrahedral
// mesh. Every DG node is a point: node j of element k is point k*Np + j.
package dgmesh

import (
	"fmt"

	"github.com/notargets/IncNSKernel/variable"
	"github.com/notargets/gocfd/DG3D/mesh/readers"
	"github.com/notargets/gocfd/DG3D/tetrahedra/tetelement"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

type TetMesh struct {
	*tetelement.Element3D
}

// NewTetMesh reads meshfile and builds order-N tetrahedral DG elements on it
func NewTetMesh(order int, meshfile string) (tm *TetMesh, err error) {
	msh, err := readers.ReadMeshFile(meshfile)
	if err != nil {
		return nil, fmt.Errorf("failed to read mesh %s: %w", meshfile, err)
	}
	el3d, err := tetelement.NewElement3DFromMesh(order, msh)
	if err != nil {
		return nil, fmt.Errorf("failed to build order %d elements: %w", order, err)
	}
	tm = &TetMesh{Element3D: el3d}
	np, k := tm.Dims()
	log.Infof("mesh %s: %d elements, %d nodes per element", meshfile, k, np)
	return
}

// Metrics returns the reference derivative operators and the inverse
// Jacobian terms of the mesh
func (tm *TetMesh) Metrics() Metrics {
	dg := tm.Element3D.DG3D
	return Metrics{
		Dr: dg.Dr,
		Ds: dg.Ds,
		Dt: dg.Dt,
		Rx: dg.Rx,
		Ry: dg.Ry,
		Rz: dg.Rz,
		Sx: dg.Sx,
		Sy: dg.Sy,
		Sz: dg.Sz,
		Tx: dg.Tx,
		Ty: dg.Ty,
		Tz: dg.Tz,
	}
}

// Dims returns nodes per element and number of elements
func (tm *TetMesh) Dims() (np, k int) {
	return tm.Metrics().Dims()
}

// NumPoints is the number of DG nodes in the mesh
func (tm *TetMesh) NumPoints() int {
	np, k := tm.Dims()
	return np * k
}

// FillVelocityGradient computes the pressure and velocity gradients of the
// nodal fields P, U, V, W ([Np × K] each, P may be nil) into g
func (tm *TetMesh) FillVelocityGradient(P, U, V, W mat.Matrix, g *variable.GradientTable) error {
	return FillVelocityGradient(tm.Metrics(), P, U, V, W, g)
}
