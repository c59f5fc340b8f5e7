package jpg

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/ankit-chaubey/exif-time-travel/core"
)

var xmpPrefix = []byte("http://ns.adobe.com/xap/1.0/\x00")

// xmpPackets returns the XMP packets carried in APP1 segments, without
// their namespace prefix.
func (s Segments) xmpPackets() [][]byte {
	var out [][]byte
	for _, seg := range s {
		if seg.Marker == MarkerAPP1 && bytes.HasPrefix(seg.Payload, xmpPrefix) {
			out = append(out, seg.Payload[len(xmpPrefix):])
		}
	}
	return out
}

// appendXMP lists the properties of an XMP packet. They are shown for
// reference only: a timestamp rewrite never changes XMP.
func appendXMP(data []byte, m *core.Metadata) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var current string
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" || attr.Value == "" {
					continue
				}
				m.Fields = append(m.Fields, core.MetaField{
					Key:      "xmp:" + attr.Name.Local,
					Value:    attr.Value,
					Category: "XMP",
				})
			}
		case xml.EndElement:
			current = ""
		case xml.CharData:
			val := strings.TrimSpace(string(t))
			if val == "" || current == "" || current == "xmpmeta" || current == "RDF" {
				continue
			}
			m.Fields = append(m.Fields, core.MetaField{
				Key:      "xmp:" + current,
				Value:    val,
				Category: "XMP",
			})
		}
	}
}
