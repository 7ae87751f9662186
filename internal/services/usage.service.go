package services

import (
	"context"
	"os/exec"
	"strings"

	"diskwatch/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	availColumn = "Avail"
	usedColumn  = "Use%"
)

// ErrHeaderNotFound is returned when the usage table lacks the Avail or Use% column
var ErrHeaderNotFound = errors.New("usage header column not found")

// Sampler produces the current usage records of the host
type Sampler interface {
	Sample(ctx context.Context) ([]models.UsageRecord, error)
}

// DFSampler samples by running `df -h` and parsing its table
type DFSampler struct {
	bin string
	log *logrus.Entry
}

// NewDFSampler returns a sampler that runs bin (usually "df") with -h
func NewDFSampler(bin string, log *logrus.Entry) *DFSampler {
	if bin == "" {
		bin = "df"
	}
	return &DFSampler{bin: bin, log: log}
}

// Sample runs the utility once and parses its output
func (s *DFSampler) Sample(ctx context.Context) ([]models.UsageRecord, error) {
	out, err := exec.CommandContext(ctx, s.bin, "-h").Output()
	if err != nil {
		var exitErr *exec.ExitError
		// df exits 1 when a single mount is unreadable but still prints the rest
		if !errors.As(err, &exitErr) || len(out) == 0 {
			return nil, errors.Wrapf(err, "failed to run %s -h", s.bin)
		}
		s.log.WithError(err).WithField("stderr", strings.TrimSpace(string(exitErr.Stderr))).
			Warn("df exited with an error, parsing partial output")
	}

	return ParseDFOutput(string(out))
}

// ParseDFOutput parses the column-aligned output of `df -h`.
// Columns are located by header name; data lines with too few fields are skipped.
func ParseDFOutput(out string) ([]models.UsageRecord, error) {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")

	header := strings.Fields(lines[0])
	availIdx := indexOf(header, availColumn)
	usedIdx := indexOf(header, usedColumn)
	if availIdx < 0 || usedIdx < 0 {
		return nil, errors.Wrapf(ErrHeaderNotFound, "header %q", strings.TrimSpace(lines[0]))
	}

	minFields := max(availIdx, usedIdx) + 1

	records := []models.UsageRecord{}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < minFields {
			continue
		}

		records = append(records, models.UsageRecord{
			Filesystem:  fields[0],
			Available:   fields[availIdx],
			UsedPercent: fields[usedIdx],
		})
	}

	return records, nil
}

func indexOf(fields []string, name string) int {
	for i, f := range fields {
		if f == name {
			return i
		}
	}
	return -1
}
