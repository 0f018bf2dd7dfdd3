package partitions

import (
	"fmt"
	"math"
	"strings"
)

// PartitionBuilder splits a set of mesh points into partitions
type PartitionBuilder struct {
	NumPoints int

	// Partitioning parameters
	TargetPartitionSize int // Desired points per partition
	Strategy            PartitionStrategy
}

// PartitionStrategy defines how points are grouped
type PartitionStrategy int

const (
	BlockPartition PartitionStrategy = iota // Consecutive points
	RoundRobin                              // Distribute cyclically
)

// ParseStrategy maps a configuration name onto a PartitionStrategy
func ParseStrategy(name string) (PartitionStrategy, error) {
	switch strings.ToUpper(name) {
	case "BLOCK", "":
		return BlockPartition, nil
	case "ROUNDROBIN":
		return RoundRobin, nil
	}
	return 0, fmt.Errorf("unknown partition strategy %q", name)
}

func (s PartitionStrategy) String() string {
	switch s {
	case BlockPartition:
		return "BLOCK"
	case RoundRobin:
		return "ROUNDROBIN"
	}
	return fmt.Sprintf("PartitionStrategy(%d)", int(s))
}

// BuildPartitions creates a partition layout
func (pb *PartitionBuilder) BuildPartitions() (*PartitionLayout, error) {
	if pb.NumPoints < 1 {
		return nil, fmt.Errorf("cannot partition %d points", pb.NumPoints)
	}
	if pb.TargetPartitionSize < 1 {
		return nil, fmt.Errorf("target partition size must be positive, got %d",
			pb.TargetPartitionSize)
	}

	numPartitions := pb.calculateNumPartitions()

	pToP, err := pb.partitionPoints(numPartitions)
	if err != nil {
		return nil, err
	}

	partitions := pb.createPartitions(pToP, numPartitions)

	// KpartMax sizes the OCCA @inner loop
	kpartMax := calculateKpartMax(partitions)
	for i := range partitions {
		partitions[i].MaxPoints = kpartMax
	}

	layout := &PartitionLayout{
		Partitions:    partitions,
		KpartMax:      kpartMax,
		TotalPoints:   pb.NumPoints,
		NumPartitions: numPartitions,
		PToP:          pToP,
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}

	return layout, nil
}

func (pb *PartitionBuilder) calculateNumPartitions() int {
	numPartitions := int(math.Ceil(float64(pb.NumPoints) / float64(pb.TargetPartitionSize)))
	if numPartitions < 1 {
		numPartitions = 1
	}
	return numPartitions
}

// partitionPoints assigns points to partitions
func (pb *PartitionBuilder) partitionPoints(numPartitions int) ([]int, error) {
	pToP := make([]int, pb.NumPoints)

	switch pb.Strategy {
	case BlockPartition:
		pointsPerPartition := int(math.Ceil(float64(pb.NumPoints) / float64(numPartitions)))
		for i := 0; i < pb.NumPoints; i++ {
			pToP[i] = i / pointsPerPartition
			if pToP[i] >= numPartitions {
				pToP[i] = numPartitions - 1
			}
		}

	case RoundRobin:
		for i := 0; i < pb.NumPoints; i++ {
			pToP[i] = i % numPartitions
		}

	default:
		return nil, fmt.Errorf("unsupported strategy %v", pb.Strategy)
	}

	return pToP, nil
}

func (pb *PartitionBuilder) createPartitions(pToP []int, numPartitions int) []Partition {
	partitions := make([]Partition, numPartitions)
	for i := range partitions {
		partitions[i] = Partition{
			ID:     i,
			Points: make([]int, 0, pb.TargetPartitionSize),
		}
	}

	for pt, part := range pToP {
		partitions[part].Points = append(partitions[part].Points, pt)
		partitions[part].NumPoints++
	}

	return partitions
}

func calculateKpartMax(partitions []Partition) int {
	kpartMax := 0
	for _, p := range partitions {
		if p.NumPoints > kpartMax {
			kpartMax = p.NumPoints
		}
	}
	return kpartMax
}

// NewLayout is a convenience wrapper around PartitionBuilder
func NewLayout(numPoints, targetSize int, strategy PartitionStrategy) (*PartitionLayout, error) {
	pb := &PartitionBuilder{
		NumPoints:           numPoints,
		TargetPartitionSize: targetSize,
		Strategy:            strategy,
	}
	return pb.BuildPartitions()
}
