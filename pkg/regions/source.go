// Package regions reads the list of regions to process.
package regions

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/devA2C3/cloudvisor-test/pkg/etlerr"
	"github.com/devA2C3/cloudvisor-test/pkg/utils"
)

// DefaultFile is the region list read when no path is configured
const DefaultFile = "regions.txt"

// Source supplies an ordered list of region identifiers
type Source interface {
	Regions(ctx context.Context) ([]string, error)
}

// FileSource reads one region per line from a file
type FileSource struct {
	Path   string
	Logger *slog.Logger
}

// NewFileSource creates a FileSource, falling back to DefaultFile for an empty path
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if path == "" {
		path = DefaultFile
	}
	return &FileSource{Path: path, Logger: logger}
}

// Regions returns the regions listed in the file, in file order.
// A file that cannot be opened or read yields an etlerr.KindRegionList error.
func (s *FileSource) Regions(_ context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, etlerr.New(etlerr.KindRegionList, "", "open region list "+s.Path, err)
	}
	defer f.Close()

	regions, err := Parse(f, s.Logger)
	if err != nil {
		return nil, etlerr.New(etlerr.KindRegionList, "", "read region list "+s.Path, err)
	}
	return regions, nil
}

// Parse reads region identifiers from r. Surrounding whitespace is stripped,
// blank lines and lines starting with '#' are skipped. Unknown region codes are
// kept but reported as a warning.
func Parse(r io.Reader, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var regions []string
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		region := strings.TrimSpace(scanner.Text())
		if region == "" || strings.HasPrefix(region, "#") {
			continue
		}
		if !utils.IsKnownRegion(region) {
			logger.Warn("unrecognized region code, processing anyway", "region", region, "line", lineNo)
		}
		regions = append(regions, region)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning line %d: %w", lineNo+1, err)
	}

	return regions, nil
}
