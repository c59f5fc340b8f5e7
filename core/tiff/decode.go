package tiff

import (
	"encoding/binary"
	"fmt"

	"github.com/ankit-chaubey/exif-time-travel/core"
)

const (
	headerSize = 8
	entrySize  = 12
	slotSize   = 4
	magic      = 42
)

type decoder struct {
	data    []byte
	order   binary.ByteOrder
	graph   *Graph
	visited map[uint32]bool
}

func malformed(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", core.ErrMalformedTiff, fmt.Sprintf(format, a...))
}

// Decode parses a TIFF block (the Exif payload without its identifier
// prefix) into a Graph. It follows the Exif, GPS and Interoperability
// pointers and the Root directory's next-IFD link to the thumbnail directory.
func Decode(data []byte) (*Graph, error) {
	if len(data) < headerSize {
		return nil, malformed("header truncated (%d bytes)", len(data))
	}
	var order binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, malformed("invalid byte order marker %q", data[:2])
	}
	if m := order.Uint16(data[2:]); m != magic {
		return nil, malformed("invalid magic number %d", m)
	}

	d := &decoder{
		data:    data,
		order:   order,
		graph:   &Graph{Order: order, Dirs: make(map[IfdID]*Directory)},
		visited: make(map[uint32]bool),
	}

	next, err := d.readDir(Root, order.Uint32(data[4:]))
	if err != nil {
		return nil, err
	}
	for _, link := range subIFDs {
		parent := d.graph.Dirs[link.parent]
		if parent == nil {
			continue
		}
		f, ok := parent.Get(link.tag)
		if !ok {
			continue
		}
		vals, ok := f.uints(order)
		if !ok || len(vals) == 0 {
			return nil, malformed("%s pointer in %s IFD has type %d", link.tag, link.parent, f.Type)
		}
		if vals[0] == 0 {
			continue
		}
		if _, err := d.readDir(link.child, vals[0]); err != nil {
			return nil, err
		}
	}
	if next != 0 {
		// Anything chained after the thumbnail directory is not followed.
		if _, err := d.readDir(Thumbnail, next); err != nil {
			return nil, err
		}
	}
	for _, id := range layoutOrder {
		if dir := d.graph.Dirs[id]; dir != nil {
			if err := d.readImageData(dir); err != nil {
				return nil, err
			}
		}
	}
	return d.graph, nil
}

// readDir decodes the directory at off and returns its next-IFD offset.
func (d *decoder) readDir(id IfdID, off uint32) (uint32, error) {
	if d.visited[off] {
		return 0, malformed("%s IFD at %d was already decoded", id, off)
	}
	d.visited[off] = true

	size := uint64(len(d.data))
	if uint64(off)+2 > size {
		return 0, malformed("%s IFD offset %d outside buffer of %d bytes", id, off, size)
	}
	n := uint64(d.order.Uint16(d.data[off:]))
	end := uint64(off) + 2 + n*entrySize + 4
	if end > size {
		return 0, malformed("%s IFD at %d with %d entries extends past buffer end", id, off, n)
	}

	dir := newDirectory(id)
	for i := uint64(0); i < n; i++ {
		e := d.data[uint64(off)+2+i*entrySize:]
		tag := Tag(d.order.Uint16(e[0:]))
		typ := Type(d.order.Uint16(e[2:]))
		count := d.order.Uint32(e[4:])
		unit := typ.Size()
		if unit == 0 {
			d.graph.Dropped = append(d.graph.Dropped, tag)
			continue
		}
		length := uint64(unit) * uint64(count)
		var raw []byte
		if length <= slotSize {
			raw = e[8 : 8+length]
		} else {
			vo := uint64(d.order.Uint32(e[8:]))
			if vo+length > size {
				return 0, malformed("%s IFD field %s value at %d+%d outside buffer", id, tag, vo, length)
			}
			raw = d.data[vo : vo+length]
		}
		if _, dup := dir.Fields[tag]; dup {
			continue
		}
		dir.Set(Field{Tag: tag, Type: typ, Count: count, Value: append([]byte(nil), raw...)})
	}
	d.graph.Dirs[id] = dir
	return d.order.Uint32(d.data[end-4:]), nil
}

// readImageData copies the byte ranges located by offset/length tag pairs.
func (d *decoder) readImageData(dir *Directory) error {
	for _, ref := range imageRefs {
		of, ok1 := dir.Get(ref.offsets)
		lf, ok2 := dir.Get(ref.lengths)
		if !ok1 || !ok2 {
			continue
		}
		offs, ok1 := of.uints(d.order)
		lens, ok2 := lf.uints(d.order)
		if !ok1 || !ok2 || len(offs) != len(lens) {
			return malformed("%s IFD has inconsistent %s/%s", dir.ID, ref.offsets, ref.lengths)
		}
		for i := range offs {
			start, n := uint64(offs[i]), uint64(lens[i])
			if start+n > uint64(len(d.data)) {
				return malformed("%s IFD %s data at %d+%d outside buffer", dir.ID, ref.offsets, start, n)
			}
			dir.Strips = append(dir.Strips, append([]byte(nil), d.data[start:start+n]...))
		}
	}
	return nil
}
