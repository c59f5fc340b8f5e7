package jpg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ankit-chaubey/exif-time-travel/core"
)

// Marker is the second byte of a JPEG marker code (the first is always 0xFF).
type Marker byte

const (
	markerTEM   Marker = 0x01
	markerRST0  Marker = 0xD0
	markerRST7  Marker = 0xD7
	MarkerSOI   Marker = 0xD8
	MarkerEOI   Marker = 0xD9
	MarkerSOS   Marker = 0xDA
	MarkerAPP1  Marker = 0xE1
	MarkerAPP13 Marker = 0xED

	// MarkerScanData labels the opaque entropy-coded data following SOS.
	MarkerScanData Marker = 0x00
)

// exifPrefix starts the payload of an Exif APP1 segment. The sixth byte is
// conventionally 0x00 but is kept as found.
var exifPrefix = []byte("Exif\x00")

const exifPrefixLen = 6

// maxSegmentLength is the largest value of a segment's length field, which
// counts itself plus the payload.
const maxSegmentLength = 0xFFFF

// standalone reports whether m is a marker without a length field.
func (m Marker) standalone() bool {
	return m == markerTEM || m == MarkerSOI || m == MarkerEOI || (m >= markerRST0 && m <= markerRST7)
}

// Segment is one marker segment of a JPEG stream.
type Segment struct {
	Marker  Marker
	Payload []byte
	raw     []byte // source bytes, including fill bytes, marker and length
}

// Bytes returns the segment exactly as it will be written.
func (s Segment) Bytes() []byte {
	return s.raw
}

// Segments is a JPEG stream split into its segments, in file order.
type Segments []Segment

func malformed(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", core.ErrMalformedJpeg, fmt.Sprintf(format, a...))
}

// Scan splits data into segments using each segment's length field. Once the
// SOS header is read, everything left in data (entropy-coded scan data, EOI
// and any trailing bytes) becomes a single MarkerScanData segment.
func Scan(data []byte) (Segments, error) {
	if len(data) < 2 || data[0] != 0xFF || Marker(data[1]) != MarkerSOI {
		return nil, malformed("missing start-of-image marker")
	}
	segs := Segments{{Marker: MarkerSOI, raw: data[:2]}}
	i := 2
	for i < len(data) {
		start := i
		if data[i] != 0xFF {
			return nil, malformed("expected marker at offset %d, found 0x%02X", i, data[i])
		}
		for i < len(data) && data[i] == 0xFF {
			i++ // fill bytes belong to the segment that follows them
		}
		if i >= len(data) {
			return nil, malformed("truncated marker at offset %d", start)
		}
		m := Marker(data[i])
		i++
		if m == MarkerScanData {
			return nil, malformed("invalid marker 0xFF00 at offset %d", start)
		}

		if m.standalone() {
			segs = append(segs, Segment{Marker: m, raw: data[start:i]})
			if m == MarkerEOI {
				if i < len(data) {
					segs = append(segs, Segment{Marker: MarkerScanData, Payload: data[i:], raw: data[i:]})
				}
				return segs, nil
			}
			continue
		}

		if i+2 > len(data) {
			return nil, malformed("truncated length of marker 0x%02X at offset %d", byte(m), start)
		}
		n := int(binary.BigEndian.Uint16(data[i:]))
		if n < 2 || i+n > len(data) {
			return nil, malformed("segment 0x%02X at offset %d declares length %d past end of data", byte(m), start, n)
		}
		segs = append(segs, Segment{Marker: m, Payload: data[i+2 : i+n], raw: data[start : i+n]})
		i += n

		if m == MarkerSOS {
			if i < len(data) {
				segs = append(segs, Segment{Marker: MarkerScanData, Payload: data[i:], raw: data[i:]})
			}
			return segs, nil
		}
	}
	return nil, malformed("data ends before start-of-scan")
}

// ExifIndex returns the index of the first APP1 segment carrying Exif data.
func (s Segments) ExifIndex() (int, error) {
	for i, seg := range s {
		if seg.Marker == MarkerAPP1 && len(seg.Payload) >= exifPrefixLen && bytes.HasPrefix(seg.Payload, exifPrefix) {
			return i, nil
		}
	}
	return -1, core.ErrNoExifMetadata
}

// ReplacePayload returns a copy of s with the payload of segment i replaced
// and its length field recomputed. s is not modified.
func (s Segments) ReplacePayload(i int, payload []byte) (Segments, error) {
	if i < 0 || i >= len(s) || s[i].Marker.standalone() || s[i].Marker == MarkerScanData {
		return nil, fmt.Errorf("segment %d has no payload to replace", i)
	}
	n := len(payload) + 2
	if n > maxSegmentLength {
		return nil, fmt.Errorf("%w: marker 0x%02X needs %d bytes, limit is %d",
			core.ErrSegmentTooLarge, byte(s[i].Marker), n, maxSegmentLength)
	}
	raw := make([]byte, 0, n+2)
	raw = append(raw, 0xFF, byte(s[i].Marker))
	raw = binary.BigEndian.AppendUint16(raw, uint16(n))
	raw = append(raw, payload...)

	out := make(Segments, len(s))
	copy(out, s)
	out[i] = Segment{Marker: s[i].Marker, Payload: raw[4:], raw: raw}
	return out, nil
}

// Assemble concatenates the segments into a JPEG stream.
func (s Segments) Assemble() []byte {
	size := 0
	for _, seg := range s {
		size += len(seg.raw)
	}
	var buf bytes.Buffer
	buf.Grow(size)
	for _, seg := range s {
		buf.Write(seg.raw)
	}
	return buf.Bytes()
}
