// Package tiff decodes and re-encodes the TIFF structure carried in a JPEG
// Exif segment. The decoded form is a small graph of directories keyed by
// IfdID; the encoder lays the graph out again from scratch.
package tiff

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// Field is one directory entry. Value holds the value bytes exactly as
// stored, in the byte order of the owning Graph.
type Field struct {
	Tag   Tag
	Type  Type
	Count uint32
	Value []byte
}

// ASCII returns the value of an ASCII field with trailing NUL bytes removed.
func (f Field) ASCII() (string, bool) {
	if f.Type != TypeASCII {
		return "", false
	}
	return string(bytes.TrimRight(f.Value, "\x00")), true
}

// NewASCII builds an ASCII field holding s followed by a NUL terminator.
func NewASCII(tag Tag, s string) Field {
	v := make([]byte, len(s)+1)
	copy(v, s)
	return Field{Tag: tag, Type: TypeASCII, Count: uint32(len(v)), Value: v}
}

func (f Field) clone() Field {
	f.Value = append([]byte(nil), f.Value...)
	return f
}

// uints reads the value of a SHORT or LONG field as a list of integers.
func (f Field) uints(order binary.ByteOrder) ([]uint32, bool) {
	var out []uint32
	switch f.Type {
	case TypeShort:
		for i := 0; i+2 <= len(f.Value); i += 2 {
			out = append(out, uint32(order.Uint16(f.Value[i:])))
		}
	case TypeLong, TypeIFD:
		for i := 0; i+4 <= len(f.Value); i += 4 {
			out = append(out, order.Uint32(f.Value[i:]))
		}
	default:
		return nil, false
	}
	return out, true
}

// Directory is a single IFD.
type Directory struct {
	ID     IfdID
	Fields map[Tag]Field
	// Strips holds image data located by the directory's offset tags
	// (a JPEG thumbnail, or uncompressed strips), in tag order.
	Strips [][]byte
}

func newDirectory(id IfdID) *Directory {
	return &Directory{ID: id, Fields: make(map[Tag]Field)}
}

// Get returns the field stored under tag.
func (d *Directory) Get(tag Tag) (Field, bool) {
	f, ok := d.Fields[tag]
	return f, ok
}

// Set stores f, replacing any field with the same tag.
func (d *Directory) Set(f Field) {
	d.Fields[f.Tag] = f
}

// Tags returns the directory's tags in ascending order.
func (d *Directory) Tags() []Tag {
	tags := make([]Tag, 0, len(d.Fields))
	for t := range d.Fields {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

func (d *Directory) clone() *Directory {
	c := newDirectory(d.ID)
	for t, f := range d.Fields {
		c.Fields[t] = f.clone()
	}
	for _, s := range d.Strips {
		c.Strips = append(c.Strips, append([]byte(nil), s...))
	}
	return c
}

// Graph is a decoded TIFF block: its byte order and every directory that
// was present in the source.
type Graph struct {
	Order binary.ByteOrder
	Dirs  map[IfdID]*Directory
	// Dropped lists fields that were skipped while decoding because their
	// type is unknown and their size cannot be determined.
	Dropped []Tag
}

// Dir returns the directory with the given id, or nil if it is absent.
func (g *Graph) Dir(id IfdID) *Directory {
	return g.Dirs[id]
}

// Present returns the ids of the directories in the graph, in layout order.
func (g *Graph) Present() []IfdID {
	var ids []IfdID
	for _, id := range layoutOrder {
		if _, ok := g.Dirs[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Order:   g.Order,
		Dirs:    make(map[IfdID]*Directory, len(g.Dirs)),
		Dropped: append([]Tag(nil), g.Dropped...),
	}
	for id, d := range g.Dirs {
		c.Dirs[id] = d.clone()
	}
	return c
}
