package partitions

import (
	"fmt"
	"sync"
)

// Partition represents a collection of mesh points that execute together
// as a computational unit, either one goroutine on the host or one @outer
// iteration on an OCCA device
type Partition struct {
	// Unique identifier for this partition
	ID int

	// Point membership
	Points    []int // Global point indices in this partition
	NumPoints int   // Actual number of active points
	MaxPoints int   // Padded size for OCCA @inner loop uniformity
}

// PartitionLayout manages the complete point decomposition
type PartitionLayout struct {
	// All partitions
	Partitions []Partition

	// Global sizing information
	KpartMax      int // max(NumPoints) across all partitions for OCCA
	TotalPoints   int // Sum of all actual points across partitions
	NumPartitions int

	// Point to partition mapping
	PToP []int // Length TotalPoints: point i belongs to partition PToP[i]
}

// PartitionedArray holds point-major data reordered so that each partition's
// points are contiguous
type PartitionedArray struct {
	// Layout: [Partition 0 Data][Partition 1 Data]...[Partition N-1 Data]
	GlobalData []float64

	// Partition p's data starts at GlobalData[Offsets[p]], length NumPartitions+1
	Offsets []int64

	// Number of values per point
	Stride int

	layout *PartitionLayout
}

// GetPartition returns the partition containing point i
func (pl *PartitionLayout) GetPartition(pointID int) int {
	if pointID < 0 || pointID >= len(pl.PToP) {
		return -1
	}
	return pl.PToP[pointID]
}

// K returns the number of active points in every partition, in partition order
func (pl *PartitionLayout) K() []int {
	k := make([]int, pl.NumPartitions)
	for i, p := range pl.Partitions {
		k[i] = p.NumPoints
	}
	return k
}

// ValidateLayout checks partition consistency
func (pl *PartitionLayout) ValidateLayout() error {
	actualMax := 0
	total := 0
	for _, p := range pl.Partitions {
		if p.NumPoints > actualMax {
			actualMax = p.NumPoints
		}
		if p.MaxPoints != pl.KpartMax {
			return fmt.Errorf("partition %d: MaxPoints %d != KpartMax %d",
				p.ID, p.MaxPoints, pl.KpartMax)
		}
		if p.NumPoints != len(p.Points) {
			return fmt.Errorf("partition %d: NumPoints %d != len(Points) %d",
				p.ID, p.NumPoints, len(p.Points))
		}
		for _, pt := range p.Points {
			if pl.GetPartition(pt) != p.ID {
				return fmt.Errorf("point %d listed in partition %d but mapped to %d",
					pt, p.ID, pl.GetPartition(pt))
			}
		}
		total += p.NumPoints
	}
	if actualMax != pl.KpartMax {
		return fmt.Errorf("computed KpartMax %d != stored KpartMax %d",
			actualMax, pl.KpartMax)
	}
	if total != pl.TotalPoints {
		return fmt.Errorf("partitions hold %d points, layout has %d", total, pl.TotalPoints)
	}
	return nil
}

// ForEach calls fn once for every point. Each partition runs in its own
// goroutine; fn must only touch data owned by the point it is given.
func (pl *PartitionLayout) ForEach(fn func(iPoint int)) {
	var wg sync.WaitGroup
	for p := range pl.Partitions {
		if pl.Partitions[p].NumPoints == 0 {
			continue
		}
		wg.Add(1)
		go func(points []int) {
			for _, i := range points {
				fn(i)
			}
			wg.Done()
		}(pl.Partitions[p].Points)
	}
	wg.Wait()
}

// NewPartitionedArray allocates partition-contiguous storage with stride values per point
func (pl *PartitionLayout) NewPartitionedArray(stride int) *PartitionedArray {
	offsets := make([]int64, pl.NumPartitions+1)
	for i, p := range pl.Partitions {
		offsets[i+1] = offsets[i] + int64(p.NumPoints*stride)
	}
	return &PartitionedArray{
		GlobalData: make([]float64, offsets[pl.NumPartitions]),
		Offsets:    offsets,
		Stride:     stride,
		layout:     pl,
	}
}

// GetPartitionData returns a slice for partition p's data
func (pa *PartitionedArray) GetPartitionData(partitionID int) []float64 {
	if partitionID < 0 || partitionID >= len(pa.Offsets)-1 {
		return nil
	}
	start := pa.Offsets[partitionID]
	end := pa.Offsets[partitionID+1]
	return pa.GlobalData[start:end]
}

// Gather copies point-major src (Stride values per point) into partition order
func (pa *PartitionedArray) Gather(src []float64) error {
	if len(src) != pa.layout.TotalPoints*pa.Stride {
		return fmt.Errorf("gather: source has %d values, want %d",
			len(src), pa.layout.TotalPoints*pa.Stride)
	}
	for p, part := range pa.layout.Partitions {
		dst := pa.GetPartitionData(p)
		for local, global := range part.Points {
			copy(dst[local*pa.Stride:(local+1)*pa.Stride],
				src[global*pa.Stride:(global+1)*pa.Stride])
		}
	}
	return nil
}

// Scatter copies partition-ordered data back into point-major dst
func (pa *PartitionedArray) Scatter(dst []float64) error {
	if len(dst) != pa.layout.TotalPoints*pa.Stride {
		return fmt.Errorf("scatter: destination has %d values, want %d",
			len(dst), pa.layout.TotalPoints*pa.Stride)
	}
	for p, part := range pa.layout.Partitions {
		src := pa.GetPartitionData(p)
		for local, global := range part.Points {
			copy(dst[global*pa.Stride:(global+1)*pa.Stride],
				src[local*pa.Stride:(local+1)*pa.Stride])
		}
	}
	return nil
}
