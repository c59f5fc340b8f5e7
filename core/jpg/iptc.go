package jpg

import (
	"bytes"
	"encoding/binary"

	"github.com/ankit-chaubey/exif-time-travel/core"
)

var photoshopPrefix = []byte("Photoshop 3.0\x00")

// iptcResource is the Photoshop image resource id of an IPTC-NAA record.
const iptcResource = 0x0404

// iptcNames names the application record (2) datasets listed by View.
var iptcNames = map[byte]string{
	0x05: "ObjectName",
	0x0F: "Category",
	0x19: "Keywords",
	0x1E: "ReleaseDate",
	0x23: "ReleaseTime",
	0x37: "DateCreated",
	0x3C: "TimeCreated",
	0x3E: "DigitalCreationDate",
	0x3F: "DigitalCreationTime",
	0x50: "Byline",
	0x5A: "City",
	0x5F: "Province",
	0x65: "Country",
	0x69: "Headline",
	0x6E: "Credit",
	0x73: "Source",
	0x74: "CopyrightNotice",
	0x78: "Caption",
}

// iptcBlocks returns the IPTC records found in Photoshop APP13 segments.
func (s Segments) iptcBlocks() [][]byte {
	var out [][]byte
	for _, seg := range s {
		if seg.Marker == MarkerAPP13 && bytes.HasPrefix(seg.Payload, photoshopPrefix) {
			out = append(out, imageResources(seg.Payload[len(photoshopPrefix):], iptcResource)...)
		}
	}
	return out
}

// imageResources walks a sequence of "8BIM" resource blocks and returns the
// data of those with the given id. Each block is the signature, a 2-byte id,
// a Pascal name padded to even length, a 4-byte size and the data, also
// padded to even length.
func imageResources(data []byte, id uint16) [][]byte {
	var out [][]byte
	for len(data) >= 12 && bytes.HasPrefix(data, []byte("8BIM")) {
		name := 1 + int(data[6])
		name += name & 1
		at := 6 + name
		if at+4 > len(data) {
			break
		}
		n := uint64(binary.BigEndian.Uint32(data[at:]))
		at += 4
		if uint64(at)+n > uint64(len(data)) {
			break
		}
		if binary.BigEndian.Uint16(data[4:]) == id {
			out = append(out, data[at:at+int(n)])
		}
		next := uint64(at) + n + n&1
		if next > uint64(len(data)) {
			break
		}
		data = data[next:]
	}
	return out
}

// appendIPTC lists the application record datasets of an IPTC block. Like
// XMP they are shown for reference only: a timestamp rewrite leaves IPTC
// dates alone.
func appendIPTC(data []byte, m *core.Metadata) {
	for len(data) >= 5 && data[0] == 0x1C {
		record, dataset := data[1], data[2]
		n := int(binary.BigEndian.Uint16(data[3:]))
		if n&0x8000 != 0 {
			return // extended-length datasets are not used by the application record
		}
		if 5+n > len(data) {
			return
		}
		if name, ok := iptcNames[dataset]; ok && record == 2 {
			m.Fields = append(m.Fields, core.MetaField{
				Key:      "iptc:" + name,
				Value:    string(data[5 : 5+n]),
				Category: "IPTC",
			})
		}
		data = data[5+n:]
	}
}
