package jpg

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/ankit-chaubey/exif-time-travel/core"
	"github.com/ankit-chaubey/exif-time-travel/core/timeshift"
	"github.com/rwcarlsen/goexif/exif"
	gtiff "github.com/rwcarlsen/goexif/tiff"
)

// editedFields are the fields RewriteTimestamp writes.
var editedFields = map[exif.FieldName]bool{
	exif.DateTime:          true,
	exif.DateTimeOriginal:  true,
	exif.DateTimeDigitized: true,
}

// decodeExif hands the TIFF block of the first Exif segment to goexif.
// goexif's own JPEG scan only looks at the first APP1 segment, which misses
// Exif placed after an XMP packet.
func decodeExif(segs Segments) (*exif.Exif, error) {
	i, err := segs.ExifIndex()
	if err != nil {
		return nil, err
	}
	x, err := exif.Decode(bytes.NewReader(segs[i].Payload[exifPrefixLen:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedTiff, err)
	}
	return x, nil
}

// ReadDateTimeOriginal reads the DateTimeOriginal field of a JPEG with an
// independent TIFF reader. It is used to report the value a file carries
// before it is rewritten, and to check the result afterwards.
func ReadDateTimeOriginal(data []byte) (time.Time, error) {
	segs, err := Scan(data)
	if err != nil {
		return time.Time{}, err
	}
	x, err := decodeExif(segs)
	if err != nil {
		return time.Time{}, err
	}
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", core.ErrMissingRequiredField, exif.DateTimeOriginal, err)
	}
	s, err := tag.StringVal()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", core.ErrInvalidTimestamp, err)
	}
	return timeshift.Parse(s)
}

// View reads every EXIF field of the JPEG at path, followed by the
// properties of any XMP packet and the datasets of any IPTC record. EXIF
// fields that a timestamp rewrite changes are flagged as editable.
func View(path string) (*core.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	segs, err := Scan(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	x, err := decodeExif(segs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m := &core.Metadata{FilePath: path, Format: "JPEG"}
	if err := x.Walk(walker{m: m}); err != nil {
		return nil, err
	}
	for _, packet := range segs.xmpPackets() {
		appendXMP(packet, m)
	}
	for _, block := range segs.iptcBlocks() {
		appendIPTC(block, m)
	}
	return m, nil
}

type walker struct {
	m *core.Metadata
}

func (w walker) Walk(name exif.FieldName, tag *gtiff.Tag) error {
	val := tag.String()
	// Remove surrounding quotes from string values
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	w.m.Fields = append(w.m.Fields, core.MetaField{
		Key:      string(name),
		Value:    val,
		Category: "EXIF",
		Editable: editedFields[name],
		Raw:      fmt.Sprintf("type=%d count=%d", tag.Type, tag.Count),
	})
	return nil
}
