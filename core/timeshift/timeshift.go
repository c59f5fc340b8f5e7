// Package timeshift moves the capture timestamps of a decoded EXIF graph by a
// fixed amount.
package timeshift

import (
	"fmt"
	"strings"
	"time"

	"github.com/ankit-chaubey/exif-time-travel/core"
	"github.com/ankit-chaubey/exif-time-travel/core/tiff"
)

// Layout is the fixed EXIF date-time format. Stored values carry a trailing
// NUL, making them 20 bytes long.
const Layout = "2006:01:02 15:04:05"

// Delta is a shift in whole hours and minutes. Either part may be negative.
type Delta struct {
	Hours   int
	Minutes int
}

// Duration returns d as a time.Duration.
func (d Delta) Duration() time.Duration {
	return time.Duration(d.Hours)*time.Hour + time.Duration(d.Minutes)*time.Minute
}

// Add shifts t by d.
func (d Delta) Add(t time.Time) time.Time {
	return t.Add(d.Duration())
}

func (d Delta) String() string {
	return fmt.Sprintf("%+dh%+dm", d.Hours, d.Minutes)
}

// Shift records the timestamp read from a file and the value written back.
type Shift struct {
	Original time.Time
	Shifted  time.Time
}

// Parse reads an EXIF timestamp. Surrounding NULs and spaces are ignored.
// The result carries no zone information and is returned in UTC.
func Parse(s string) (time.Time, error) {
	s = strings.Trim(s, "\x00 ")
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidTimestamp, s)
	}
	return t, nil
}

// Format renders t in the EXIF timestamp format, without the NUL terminator.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Apply returns a copy of g with every capture timestamp moved by d. The
// Exif DateTimeOriginal value is the single reference: it is read once,
// shifted, and written to Root DateTime, Exif DateTimeOriginal and
// DateTimeDigitized, and the thumbnail directory's DateTime when that field
// exists. g itself is left unchanged.
func Apply(g *tiff.Graph, d Delta) (*tiff.Graph, Shift, error) {
	exif := g.Dir(tiff.Exif)
	if exif == nil {
		return nil, Shift{}, core.ErrMissingExifIfd
	}
	original, err := readTime(exif, tiff.TagDateTimeOriginal)
	if err != nil {
		return nil, Shift{}, err
	}
	root := g.Dir(tiff.Root)
	if root == nil {
		return nil, Shift{}, fmt.Errorf("%w: Root IFD", core.ErrMissingRequiredField)
	}
	if _, ok := root.Get(tiff.TagDateTime); !ok {
		return nil, Shift{}, fmt.Errorf("%w: Root %s", core.ErrMissingRequiredField, tiff.TagDateTime)
	}

	shift := Shift{Original: original, Shifted: d.Add(original)}
	if y := shift.Shifted.Year(); y < 1 || y > 9999 {
		return nil, Shift{}, fmt.Errorf("%w: shifted year %d", core.ErrInvalidTimestamp, y)
	}
	value := Format(shift.Shifted)

	out := g.Clone()
	out.Dir(tiff.Root).Set(tiff.NewASCII(tiff.TagDateTime, value))
	out.Dir(tiff.Exif).Set(tiff.NewASCII(tiff.TagDateTimeOriginal, value))
	out.Dir(tiff.Exif).Set(tiff.NewASCII(tiff.TagDateTimeDigitized, value))
	if thumb := out.Dir(tiff.Thumbnail); thumb != nil {
		if _, ok := thumb.Get(tiff.TagDateTime); ok {
			thumb.Set(tiff.NewASCII(tiff.TagDateTime, value))
		}
	}
	return out, shift, nil
}

func readTime(dir *tiff.Directory, tag tiff.Tag) (time.Time, error) {
	f, ok := dir.Get(tag)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s %s", core.ErrMissingRequiredField, dir.ID, tag)
	}
	s, ok := f.ASCII()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s %s has type %d", core.ErrInvalidTimestamp, dir.ID, tag, f.Type)
	}
	return Parse(s)
}
