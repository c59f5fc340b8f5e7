// Package jpg rewrites the timestamps of a JPEG file's Exif metadata without
// touching any other byte of the file.
package jpg

import (
	"github.com/ankit-chaubey/exif-time-travel/core/tiff"
	"github.com/ankit-chaubey/exif-time-travel/core/timeshift"
)

// Result is the outcome of a successful rewrite.
type Result struct {
	// Data is the complete rewritten JPEG.
	Data []byte
	// Shift holds the DateTimeOriginal found in the source and the value
	// written to every timestamp field.
	Shift timeshift.Shift
	// Dropped lists fields of unknown type that could not be carried over.
	Dropped []tiff.Tag
}

// RewriteTimestamp shifts the capture timestamps of the JPEG in src by d.
// Only the Exif segment changes; every other segment is copied verbatim. On
// error no output is produced and src is never modified.
func RewriteTimestamp(src []byte, d timeshift.Delta) (*Result, error) {
	segs, err := Scan(src)
	if err != nil {
		return nil, err
	}
	idx, err := segs.ExifIndex()
	if err != nil {
		return nil, err
	}
	prefix := segs[idx].Payload[:exifPrefixLen]

	graph, err := tiff.Decode(segs[idx].Payload[exifPrefixLen:])
	if err != nil {
		return nil, err
	}
	edited, shift, err := timeshift.Apply(graph, d)
	if err != nil {
		return nil, err
	}
	block, err := tiff.Encode(edited)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 0, len(prefix)+len(block))
	payload = append(payload, prefix...)
	payload = append(payload, block...)
	out, err := segs.ReplacePayload(idx, payload)
	if err != nil {
		return nil, err
	}
	return &Result{Data: out.Assemble(), Shift: shift, Dropped: graph.Dropped}, nil
}
