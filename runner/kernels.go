package runner

import (
	"fmt"
	"strings"

	"github.com/notargets/IncNSKernel/partitions"
)

// VorticityStrainName is the kernel entry point in VorticityStrainKernel
const VorticityStrainName = "vorticityStrain"

// VorticityStrainKernel evaluates vorticity and strain-rate magnitude for every
// point of every partition. G holds NVARG*NDIM gradient values per point with
// variable 0 = pressure and 1..NDIM = velocity, W holds 3 vorticity components
// per point and S one strain magnitude per point.
const VorticityStrainKernel = `
@kernel void vorticityStrain(
	const int_t* K,
	const real_t* G_global,
	const int_t* G_offsets,
	real_t* W_global,
	const int_t* W_offsets,
	real_t* S_global,
	const int_t* S_offsets) {
	for (int part = 0; part < NPART; ++part; @outer) {
		const real_t* G = G_PART(part);
		real_t* W = W_PART(part);
		real_t* S = S_PART(part);
		for (int i = 0; i < KpartMax; ++i; @inner) {
			if (i < K[part]) {
				const real_t* g = G + i*NVARG*NDIM;
				real_t* w = W + i*3;

				w[0] = REAL_ZERO;
				w[1] = REAL_ZERO;
				w[2] = GRAD(g,2,0) - GRAD(g,1,1);
#if NDIM == 3
				w[0] = GRAD(g,3,1) - GRAD(g,2,2);
				w[1] = -(GRAD(g,3,0) - GRAD(g,1,2));
#endif

				real_t div = REAL_ZERO;
				for (int d = 0; d < NDIM; ++d) {
					div += GRAD(g,d+1,d);
				}

				real_t s = REAL_ZERO;
				for (int d = 0; d < NDIM; ++d) {
					const real_t e = GRAD(g,d+1,d) - div/REAL_THREE;
					s += e*e;
				}
#if NDIM == 2
				s += (div/REAL_THREE)*(div/REAL_THREE);
#endif

				real_t o = REAL_HALF*(GRAD(g,1,1) + GRAD(g,2,0));
				s += REAL_TWO*o*o;
#if NDIM == 3
				o = REAL_HALF*(GRAD(g,1,2) + GRAD(g,3,0));
				s += REAL_TWO*o*o;
				o = REAL_HALF*(GRAD(g,2,2) + GRAD(g,3,1));
				s += REAL_TWO*o*o;
#endif

				S[i] = sqrt(REAL_TWO*s);
			}
		}
	}
}
`

// GeneratePreamble produces the type definitions, sizing constants and
// partition access macros that precede every kernel source
func GeneratePreamble(layout *partitions.PartitionLayout, nDim int, arrays []string) string {
	var sb strings.Builder

	sb.WriteString("typedef double real_t;\n")
	sb.WriteString("typedef long int_t;\n")
	sb.WriteString("#define REAL_ZERO 0.0\n")
	sb.WriteString("#define REAL_HALF 0.5\n")
	sb.WriteString("#define REAL_TWO 2.0\n")
	sb.WriteString("#define REAL_THREE 3.0\n")
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("#define NPART %d\n", layout.NumPartitions))
	sb.WriteString(fmt.Sprintf("#define KpartMax %d\n", layout.KpartMax))
	sb.WriteString(fmt.Sprintf("#define NDIM %d\n", nDim))
	sb.WriteString(fmt.Sprintf("#define NVARG %d\n", nDim+1))
	sb.WriteString("#define GRAD(g, v, d) (g)[(v)*NDIM + (d)]\n")
	sb.WriteString("\n")

	sb.WriteString("// Partition access macros\n")
	for _, name := range arrays {
		sb.WriteString(fmt.Sprintf("#define %s_PART(part) (%s_global + %s_offsets[part])\n",
			name, name, name))
	}
	sb.WriteString("\n")

	return sb.String()
}
