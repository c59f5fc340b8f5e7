package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ankit-chaubey/exif-time-travel/core"
	"github.com/maruel/natural"
)

// Listing is the content of a source directory, split by what the batch
// does with each entry. Names are relative to the directory.
type Listing struct {
	JPEGs   []string
	Skipped []string
}

// ListJPEGs returns the regular files in dir that look like JPEG (by magic
// bytes, or by extension when the content is not recognised), sorted by
// name in natural order (img2 before img10). Leftover temporary files
// from an interrupted run are skipped.
func ListJPEGs(dir string) (*Listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	l := &Listing{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, tempSuffix) {
			l.Skipped = append(l.Skipped, name)
			continue
		}
		format, err := core.DetectFormat(filepath.Join(dir, name))
		if err != nil || format != core.FmtJPEG {
			l.Skipped = append(l.Skipped, name)
			continue
		}
		l.JPEGs = append(l.JPEGs, name)
	}
	sort.Slice(l.JPEGs, func(i, j int) bool { return natural.Less(l.JPEGs[i], l.JPEGs[j]) })
	sort.Slice(l.Skipped, func(i, j int) bool { return natural.Less(l.Skipped[i], l.Skipped[j]) })
	return l, nil
}
