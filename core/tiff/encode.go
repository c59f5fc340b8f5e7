package tiff

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ankit-chaubey/exif-time-travel/core"
)

// layout is the placement of one directory in the encoded buffer.
type layout struct {
	dir    *Directory
	fields []Field // ascending tag order, offset-bearing fields normalised
	offset uint64  // directory header
	data   uint64  // overflow values
	strips uint64  // image data
	end    uint64
}

func padded(n uint64) uint64 {
	return n + n&1
}

// Encode serialises g into a complete TIFF block. Directories are placed in
// the order Root, Exif, GPS, Interop, Thumbnail, each immediately followed by
// its overflow value area and then its image data. Every offset is assigned
// in a sizing pass before anything is written.
func Encode(g *Graph) ([]byte, error) {
	var layouts []*layout
	pos := make(map[IfdID]uint64)

	// Pass 1: size and place.
	cursor := uint64(headerSize)
	for _, id := range g.Present() {
		l := &layout{dir: g.Dirs[id], offset: cursor}
		l.fields = normalise(l.dir)
		l.data = cursor + 2 + uint64(len(l.fields))*entrySize + 4
		l.strips = l.data
		for _, f := range l.fields {
			if n := uint64(len(f.Value)); n > slotSize {
				l.strips += padded(n)
			}
		}
		l.end = l.strips
		for _, s := range l.dir.Strips {
			l.end += padded(uint64(len(s)))
		}
		pos[id] = l.offset
		layouts = append(layouts, l)
		cursor = l.end
	}
	if cursor > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", core.ErrEncodingOverflow, cursor)
	}

	// Pass 2: write.
	order := g.Order
	buf := make([]byte, cursor)
	if order == binary.LittleEndian {
		copy(buf, "II")
	} else {
		copy(buf, "MM")
	}
	order.PutUint16(buf[2:], magic)
	order.PutUint32(buf[4:], uint32(pos[Root]))

	for _, l := range layouts {
		stripPos := stripOffsets(l)
		at := l.offset
		order.PutUint16(buf[at:], uint16(len(l.fields)))
		at += 2
		dataAt := l.data
		for _, f := range l.fields {
			value := f.Value
			switch {
			case isPointer(l.dir.ID, f.Tag):
				value = make([]byte, 4)
				if child, ok := pos[pointerChild(l.dir.ID, f.Tag)]; ok {
					order.PutUint32(value, uint32(child))
				}
			case stripPos[f.Tag] != nil:
				value = make([]byte, 4*len(stripPos[f.Tag]))
				for i, p := range stripPos[f.Tag] {
					order.PutUint32(value[4*i:], uint32(p))
				}
			}

			order.PutUint16(buf[at:], uint16(f.Tag))
			order.PutUint16(buf[at+2:], uint16(f.Type))
			order.PutUint32(buf[at+4:], f.Count)
			if n := uint64(len(value)); n <= slotSize {
				copy(buf[at+8:at+12], value)
			} else {
				order.PutUint32(buf[at+8:], uint32(dataAt))
				copy(buf[dataAt:], value)
				dataAt += padded(n)
			}
			at += entrySize
		}
		var next uint64
		if l.dir.ID == Root {
			next = pos[Thumbnail]
		}
		order.PutUint32(buf[at:], uint32(next))

		at = l.strips
		for _, s := range l.dir.Strips {
			copy(buf[at:], s)
			at += padded(uint64(len(s)))
		}
	}
	return buf, nil
}

// normalise returns the directory's fields in tag order, with pointer and
// image offset fields rewritten as LONG so their size no longer depends on
// the values that will be patched in.
func normalise(dir *Directory) []Field {
	counts := make(map[Tag]int)
	for _, ref := range imageRefs {
		if _, ok := dir.Fields[ref.lengths]; !ok {
			continue
		}
		if f, ok := dir.Fields[ref.offsets]; ok && f.Type.Size() > 0 {
			counts[ref.offsets] = len(f.Value) / int(f.Type.Size())
		}
	}

	tags := dir.Tags()
	fields := make([]Field, 0, len(tags))
	for _, t := range tags {
		f := dir.Fields[t]
		switch {
		case isPointer(dir.ID, t):
			if f.Type != TypeIFD {
				f.Type = TypeLong
			}
			f.Count = 1
			f.Value = make([]byte, 4)
		case counts[t] > 0:
			f.Type = TypeLong
			f.Count = uint32(counts[t])
			f.Value = make([]byte, 4*counts[t])
		}
		fields = append(fields, f)
	}
	return fields
}

// stripOffsets assigns absolute positions to the directory's image data,
// keyed by the offsets tag that locates each group.
func stripOffsets(l *layout) map[Tag][]uint64 {
	out := make(map[Tag][]uint64)
	at := l.strips
	next := 0
	for _, ref := range imageRefs {
		if _, ok := l.dir.Fields[ref.lengths]; !ok {
			continue
		}
		f, ok := l.dir.Fields[ref.offsets]
		if !ok || f.Type.Size() == 0 {
			continue
		}
		n := len(f.Value) / int(f.Type.Size())
		for i := 0; i < n && next < len(l.dir.Strips); i++ {
			out[ref.offsets] = append(out[ref.offsets], at)
			at += padded(uint64(len(l.dir.Strips[next])))
			next++
		}
	}
	return out
}

func isPointer(parent IfdID, tag Tag) bool {
	for _, link := range subIFDs {
		if link.parent == parent && link.tag == tag {
			return true
		}
	}
	return false
}

func pointerChild(parent IfdID, tag Tag) IfdID {
	for _, link := range subIFDs {
		if link.parent == parent && link.tag == tag {
			return link.child
		}
	}
	return -1
}
