// Package testjpeg builds small JPEG files with hand-laid EXIF blocks for
// tests. The TIFF layout it produces deliberately differs from the encoder's:
// value data and child directories come before the directories that point
// at them, and the Root IFD is written last.
package testjpeg

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Options selects what goes into the EXIF block. Empty timestamp strings
// leave the field out.
type Options struct {
	Order binary.ByteOrder

	DateTime          string
	DateTimeOriginal  string
	DateTimeDigitized string
	ThumbDateTime     string

	NoExif      bool
	NoGPS       bool
	NoInterop   bool
	NoThumbnail bool

	// MakerNote, when set, is stored as an UNDEFINED field in the Exif IFD.
	MakerNote []byte
}

// Default returns little-endian options with every directory present and
// all timestamps set to 2020:06:01 14:30:00.
func Default() Options {
	const ts = "2020:06:01 14:30:00"
	return Options{
		Order:             binary.LittleEndian,
		DateTime:          ts,
		DateTimeOriginal:  ts,
		DateTimeDigitized: ts,
		ThumbDateTime:     ts,
	}
}

// Thumbnail is the embedded thumbnail image. Its odd length exercises
// padding in the encoder.
var Thumbnail = []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x03, 0x01, 0x02, 0x03, 0xFF, 0xD9}

// ScanData stands in for entropy-coded data, including a stuffed 0xFF00
// and a restart marker.
var ScanData = []byte{0x12, 0x34, 0xFF, 0x00, 0x56, 0xFF, 0xD3, 0x78, 0x9A, 0xFF, 0x00}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

type builder struct {
	order binary.ByteOrder
	buf   []byte
}

// alloc reserves n bytes, rounded up to an even length, and returns their
// offset.
func (b *builder) alloc(n int) uint32 {
	off := len(b.buf)
	b.buf = append(b.buf, make([]byte, n+n&1)...)
	return uint32(off)
}

func (b *builder) ascii(tag uint16, s string) entry {
	v := append([]byte(s), 0)
	return entry{tag, 2, uint32(len(v)), v}
}

func (b *builder) bytes(tag, typ uint16, v []byte) entry {
	return entry{tag, typ, uint32(len(v)), v}
}

func (b *builder) short(tag uint16, vals ...uint16) entry {
	v := make([]byte, 2*len(vals))
	for i, x := range vals {
		b.order.PutUint16(v[2*i:], x)
	}
	return entry{tag, 3, uint32(len(vals)), v}
}

func (b *builder) long(tag uint16, vals ...uint32) entry {
	v := make([]byte, 4*len(vals))
	for i, x := range vals {
		b.order.PutUint32(v[4*i:], x)
	}
	return entry{tag, 4, uint32(len(vals)), v}
}

func (b *builder) rational(tag uint16, pairs ...uint32) entry {
	v := make([]byte, 4*len(pairs))
	for i, x := range pairs {
		b.order.PutUint32(v[4*i:], x)
	}
	return entry{tag, 5, uint32(len(pairs) / 2), v}
}

// dir writes the values of entries that do not fit the 4-byte slot, then
// the directory itself, and returns the directory offset.
func (b *builder) dir(entries []entry, next uint32) uint32 {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })
	offsets := make([]uint32, len(entries))
	for i, e := range entries {
		if len(e.value) > 4 {
			offsets[i] = b.alloc(len(e.value))
			copy(b.buf[offsets[i]:], e.value)
		}
	}
	off := b.alloc(2 + 12*len(entries) + 4)
	p := b.buf[off:]
	b.order.PutUint16(p, uint16(len(entries)))
	p = p[2:]
	for i, e := range entries {
		b.order.PutUint16(p[0:], e.tag)
		b.order.PutUint16(p[2:], e.typ)
		b.order.PutUint32(p[4:], e.count)
		if len(e.value) > 4 {
			b.order.PutUint32(p[8:], offsets[i])
		} else {
			copy(p[8:12], e.value)
		}
		p = p[12:]
	}
	b.order.PutUint32(p, next)
	return off
}

// TIFF builds a TIFF block as found in an Exif segment after its prefix.
func TIFF(o Options) []byte {
	if o.Order == nil {
		o.Order = binary.LittleEndian
	}
	b := &builder{order: o.Order, buf: make([]byte, 8)}
	if o.Order == binary.LittleEndian {
		copy(b.buf, "II")
	} else {
		copy(b.buf, "MM")
	}
	o.Order.PutUint16(b.buf[2:], 42)

	var thumbDir uint32
	if !o.NoThumbnail {
		thumb := b.alloc(len(Thumbnail))
		copy(b.buf[thumb:], Thumbnail)
		entries := []entry{
			b.short(0x0103, 6),
			b.rational(0x011A, 72, 1),
			b.short(0x0128, 2),
			b.long(0x0201, thumb),
			b.long(0x0202, uint32(len(Thumbnail))),
		}
		if o.ThumbDateTime != "" {
			entries = append(entries, b.ascii(0x0132, o.ThumbDateTime))
		}
		thumbDir = b.dir(entries, 0)
	}

	var exifDir uint32
	if !o.NoExif {
		var interopDir uint32
		if !o.NoInterop {
			interopDir = b.dir([]entry{
				b.ascii(0x0001, "R98"),
				b.bytes(0x0002, 7, []byte("0100")),
			}, 0)
		}
		entries := []entry{
			b.rational(0x829A, 1, 60),
			b.rational(0x829D, 28, 10),
			b.short(0x8827, 100),
			b.bytes(0x9000, 7, []byte("0231")),
			b.long(0xA002, 4000),
		}
		if o.DateTimeOriginal != "" {
			entries = append(entries, b.ascii(0x9003, o.DateTimeOriginal))
		}
		if o.DateTimeDigitized != "" {
			entries = append(entries, b.ascii(0x9004, o.DateTimeDigitized))
		}
		if o.MakerNote != nil {
			entries = append(entries, b.bytes(0x927C, 7, o.MakerNote))
		}
		if !o.NoInterop {
			entries = append(entries, b.long(0xA005, interopDir))
		}
		exifDir = b.dir(entries, 0)
	}

	var gpsDir uint32
	if !o.NoGPS {
		gpsDir = b.dir([]entry{
			b.bytes(0x0000, 1, []byte{2, 3, 0, 0}),
			b.ascii(0x0001, "N"),
			b.rational(0x0002, 48, 1, 51, 1, 30, 1),
		}, 0)
	}

	entries := []entry{
		b.ascii(0x010F, "TestCam"),
		b.ascii(0x0110, "T-1000"),
		b.short(0x0112, 1),
		b.rational(0x011A, 72, 1),
		b.rational(0x011B, 72, 1),
		b.short(0x0128, 2),
	}
	if o.DateTime != "" {
		entries = append(entries, b.ascii(0x0132, o.DateTime))
	}
	if !o.NoExif {
		entries = append(entries, b.long(0x8769, exifDir))
	}
	if !o.NoGPS {
		entries = append(entries, b.long(0x8825, gpsDir))
	}
	root := b.dir(entries, thumbDir)
	o.Order.PutUint32(b.buf[4:], root)
	return b.buf
}

// MaxPayload is the largest payload a length-prefixed segment can carry.
const MaxPayload = 0xFFFF - 2

// segment panics if payload does not fit the 16-bit length field.
func segment(marker byte, payload []byte) []byte {
	if len(payload) > MaxPayload {
		panic(fmt.Sprintf("testjpeg: segment 0x%02X payload of %d bytes exceeds %d", marker, len(payload), MaxPayload))
	}
	s := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(s[2:], uint16(len(payload)+2))
	return append(s, payload...)
}

// Wrap builds a JPEG stream around an Exif APP1 payload. A nil app1 gives
// a JPEG without any APP1 segment.
func Wrap(app1 []byte) []byte {
	var out []byte
	out = append(out, 0xFF, 0xD8)
	out = append(out, segment(0xE0, []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"))...)
	if app1 != nil {
		out = append(out, segment(0xE1, app1)...)
	}
	dqt := make([]byte, 65)
	for i := 1; i < len(dqt); i++ {
		dqt[i] = byte(i)
	}
	out = append(out, 0xFF) // fill byte
	out = append(out, segment(0xDB, dqt)...)
	out = append(out, segment(0xC0, []byte{8, 0, 16, 0, 16, 1, 1, 0x11, 0})...)
	out = append(out, segment(0xC4, []byte{0x00, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x05})...)
	out = append(out, segment(0xFE, []byte("test comment"))...)
	out = append(out, segment(0xDA, []byte{1, 1, 0x00, 0, 0x3F, 0})...)
	out = append(out, ScanData...)
	out = append(out, 0xFF, 0xD9)
	return out
}

// JPEG builds a complete JPEG whose Exif block is TIFF(o).
func JPEG(o Options) []byte {
	return Wrap(append([]byte("Exif\x00\x00"), TIFF(o)...))
}

// Plain builds a JPEG without Exif metadata.
func Plain() []byte {
	return Wrap(nil)
}
