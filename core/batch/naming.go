package batch

import (
	"fmt"
	"strings"
	"time"
)

// NamePolicy names a file after its capture time: Layout is a Go time
// layout, Ext is appended verbatim.
type NamePolicy struct {
	Layout string
	Ext    string
}

// Name returns the file name for t.
func (p NamePolicy) Name(t time.Time) string {
	return t.Format(p.Layout) + p.Ext
}

// Validate rejects layouts that cannot produce a plain file name.
func (p NamePolicy) Validate() error {
	if p.Layout == "" {
		return fmt.Errorf("empty name layout")
	}
	sample := p.Name(time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC))
	if strings.ContainsAny(sample, `/\`) {
		return fmt.Errorf("name layout %q produces a path (%s)", p.Layout, sample)
	}
	if strings.HasSuffix(sample, tempSuffix) {
		return fmt.Errorf("name layout %q collides with the temporary suffix %s", p.Layout+p.Ext, tempSuffix)
	}
	return nil
}
