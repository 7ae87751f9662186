package services

import (
	"context"
	"fmt"
	"math"

	"diskwatch/internal/models"

	units "github.com/docker/go-units"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/sirupsen/logrus"
)

const GB = 1024 * 1024 * 1024

var dfUnits = []string{"", "K", "M", "G", "T", "P"}

// PartitionSampler samples mounted partitions through gopsutil instead of the df binary.
// Records carry the device name and df-style sizes so both samplers match the same watch-list.
type PartitionSampler struct {
	log *logrus.Entry
}

// NewPartitionSampler returns a gopsutil-backed sampler
func NewPartitionSampler(log *logrus.Entry) *PartitionSampler {
	return &PartitionSampler{log: log}
}

// Sample returns one record per readable partition
func (s *PartitionSampler) Sample(ctx context.Context) ([]models.UsageRecord, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list partitions")
	}

	records := []models.UsageRecord{}
	for _, partition := range partitions {
		usage, err := disk.UsageWithContext(ctx, partition.Mountpoint)
		if err != nil {
			s.log.WithError(err).WithField("mountpoint", partition.Mountpoint).Warn("could not get disk usage")
			continue
		}

		records = append(records, models.UsageRecord{
			Filesystem:  partition.Device,
			Available:   DFSize(usage.Free),
			UsedPercent: DFPercent(usage.Used, usage.Free),
		})
	}

	return records, nil
}

// DFSize renders a byte count the way df -h does, with base-1024 single letter suffixes
func DFSize(bytes uint64) string {
	return units.CustomSize("%.4g%s", float64(bytes), 1024.0, dfUnits)
}

// DFPercent computes df's Use% column: used over the space visible to users, rounded up
func DFPercent(used, avail uint64) string {
	total := used + avail
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%d%%", int(math.Ceil(float64(used)*100/float64(total))))
}

// GetDiskUsage returns disk usage for a specific path
func GetDiskUsage(ctx context.Context, path string) (*models.DiskStatus, error) {
	if path == "" {
		path = "/"
	}

	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get disk usage for %s", path)
	}

	return &models.DiskStatus{
		Path:         path,
		TotalGB:      float64(usage.Total) / GB,
		UsedGB:       float64(usage.Used) / GB,
		FreeGB:       float64(usage.Free) / GB,
		UsagePercent: usage.UsedPercent,
		Filesystem:   usage.Fstype,
	}, nil
}

// GetAllDiskUsage returns disk usage for all partitions
func GetAllDiskUsage(ctx context.Context, log *logrus.Entry) ([]models.DiskStatus, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list partitions")
	}

	statuses := []models.DiskStatus{}

	for _, partition := range partitions {
		usage, err := disk.UsageWithContext(ctx, partition.Mountpoint)
		if err != nil {
			log.WithError(err).WithField("mountpoint", partition.Mountpoint).Warn("could not get disk usage")
			continue
		}

		statuses = append(statuses, models.DiskStatus{
			Device:       partition.Device,
			Path:         partition.Mountpoint,
			TotalGB:      float64(usage.Total) / GB,
			UsedGB:       float64(usage.Used) / GB,
			FreeGB:       float64(usage.Free) / GB,
			UsagePercent: usage.UsedPercent,
			Filesystem:   partition.Fstype,
		})
	}

	return statuses, nil
}
