package runner

import (
	"fmt"
	"unsafe"

	"github.com/notargets/IncNSKernel/partitions"
	"github.com/notargets/IncNSKernel/variable"
	"github.com/notargets/gocca"
	log "github.com/sirupsen/logrus"
)

// Runner evaluates point kernels on an OCCA device, one @outer iteration per
// partition of the point layout
type Runner struct {
	Device         *gocca.OCCADevice
	Layout         *partitions.PartitionLayout
	NDim           int
	Kernels        map[string]*gocca.OCCAKernel
	PooledMemory   map[string]*gocca.OCCAMemory
	KernelPreamble string

	hostArrays      map[string]*partitions.PartitionedArray
	allocatedArrays []string
}

// NewRunner allocates the partition sizes and the gradient, vorticity and
// strain arrays on device
func NewRunner(device *gocca.OCCADevice, layout *partitions.PartitionLayout, nDim int) (kr *Runner) {
	if device == nil {
		panic("runner needs a device")
	}
	if layout == nil || layout.NumPartitions == 0 {
		panic("runner needs a non-empty partition layout")
	}
	if nDim != 2 && nDim != 3 {
		panic(fmt.Sprintf("nDim must be 2 or 3, got %d", nDim))
	}
	if layout.KpartMax > 1048576 { // 2^20 points
		panic(fmt.Sprintf("KpartMax exceeds 2^20 (1048576), found KpartMax=%d. "+
			"Reduce the partition size.", layout.KpartMax))
	}

	kr = &Runner{
		Device:       device,
		Layout:       layout,
		NDim:         nDim,
		Kernels:      make(map[string]*gocca.OCCAKernel),
		PooledMemory: make(map[string]*gocca.OCCAMemory),
		hostArrays:   make(map[string]*partitions.PartitionedArray),
	}

	k := make([]int64, layout.NumPartitions)
	for i, n := range layout.K() {
		k[i] = int64(n)
	}
	kr.PooledMemory["K"] = device.Malloc(int64(len(k)*8), unsafe.Pointer(&k[0]), nil)

	kr.allocateArray("G", (nDim+1)*nDim)
	kr.allocateArray("W", 3)
	kr.allocateArray("S", 1)
	kr.KernelPreamble = GeneratePreamble(layout, nDim, kr.allocatedArrays)
	return
}

// allocateArray creates host staging and device storage for a partitioned
// array with stride values per point, plus its offsets
func (kr *Runner) allocateArray(name string, stride int) {
	pa := kr.Layout.NewPartitionedArray(stride)
	kr.hostArrays[name] = pa

	bytes := int64(len(pa.GlobalData) * 8)
	kr.PooledMemory[name+"_global"] = kr.Device.Malloc(bytes, nil, nil)
	kr.PooledMemory[name+"_offsets"] = kr.Device.Malloc(int64(len(pa.Offsets)*8),
		unsafe.Pointer(&pa.Offsets[0]), nil)
	kr.allocatedArrays = append(kr.allocatedArrays, name)
}

// BuildKernel compiles kernelSource behind the preamble and registers it
func (kr *Runner) BuildKernel(kernelSource, kernelName string) (*gocca.OCCAKernel, error) {
	fullSource := kr.KernelPreamble + "\n" + kernelSource

	var (
		kernel *gocca.OCCAKernel
		err    error
	)
	if kr.Device.Mode() == "OpenMP" {
		// OpenMP does not get -O3 by default
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = kr.Device.BuildKernelFromString(fullSource, kernelName, props)
	} else {
		kernel, err = kr.Device.BuildKernelFromString(fullSource, kernelName, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", kernelName, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", kernelName)
	}

	kr.Kernels[kernelName] = kernel
	return kernel, nil
}

func (kr *Runner) copyToDevice(name string) {
	pa := kr.hostArrays[name]
	kr.PooledMemory[name+"_global"].CopyFrom(unsafe.Pointer(&pa.GlobalData[0]),
		int64(len(pa.GlobalData)*8))
}

func (kr *Runner) copyFromDevice(name string) {
	pa := kr.hostArrays[name]
	kr.PooledMemory[name+"_global"].CopyTo(unsafe.Pointer(&pa.GlobalData[0]),
		int64(len(pa.GlobalData)*8))
}

func (kr *Runner) arrayArgs(names ...string) (args []interface{}) {
	for _, name := range names {
		args = append(args, kr.PooledMemory[name+"_global"], kr.PooledMemory[name+"_offsets"])
	}
	return
}

// RunVorticityStrain is the device counterpart of
// IncNSVariable.SetVorticityStrainMag: it ships the gradient table, runs
// VorticityStrainKernel and writes vorticity and strain magnitude back into v
func (kr *Runner) RunVorticityStrain(v *variable.IncNSVariable) error {
	if v.NDim != kr.NDim {
		return fmt.Errorf("state is %dD, runner is %dD", v.NDim, kr.NDim)
	}
	if v.NPoint != kr.Layout.TotalPoints {
		return fmt.Errorf("state has %d points, layout covers %d", v.NPoint, kr.Layout.TotalPoints)
	}

	kernel, exists := kr.Kernels[VorticityStrainName]
	if !exists {
		var err error
		if kernel, err = kr.BuildKernel(VorticityStrainKernel, VorticityStrainName); err != nil {
			return err
		}
	}

	if err := kr.hostArrays["G"].Gather(v.Gradient.RawData()); err != nil {
		return fmt.Errorf("failed to stage gradients: %w", err)
	}
	kr.copyToDevice("G")

	args := []interface{}{kr.PooledMemory["K"]}
	args = append(args, kr.arrayArgs("G", "W", "S")...)
	if err := kernel.RunWithArgs(args...); err != nil {
		return fmt.Errorf("kernel execution failed: %w", err)
	}
	kr.Device.Finish()

	kr.copyFromDevice("W")
	kr.copyFromDevice("S")

	vort := make([]float64, 3*v.NPoint)
	if err := kr.hostArrays["W"].Scatter(vort); err != nil {
		return fmt.Errorf("failed to unstage vorticity: %w", err)
	}
	for iPoint := range v.Vorticity {
		copy(v.Vorticity[iPoint][:], vort[3*iPoint:3*iPoint+3])
	}
	if err := kr.hostArrays["S"].Scatter(v.StrainMag); err != nil {
		return fmt.Errorf("failed to unstage strain magnitude: %w", err)
	}

	log.Debugf("device vorticity/strain: %d points in %d partitions",
		v.NPoint, kr.Layout.NumPartitions)
	return nil
}

// Free releases all kernels and device memory
func (kr *Runner) Free() {
	for _, kernel := range kr.Kernels {
		kernel.Free()
	}
	for _, mem := range kr.PooledMemory {
		mem.Free()
	}
}
