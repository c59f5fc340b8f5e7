package tiff

import "fmt"

// Tag is a TIFF field tag id.
type Tag uint16

// Tags the engine needs to know about. Everything else is carried as opaque
// typed bytes.
const (
	TagStripOffsets          Tag = 0x0111
	TagStripByteCounts       Tag = 0x0117
	TagDateTime              Tag = 0x0132
	TagJPEGInterchange       Tag = 0x0201
	TagJPEGInterchangeLength Tag = 0x0202
	TagExifIFDPointer        Tag = 0x8769
	TagGPSIFDPointer         Tag = 0x8825
	TagDateTimeOriginal      Tag = 0x9003
	TagDateTimeDigitized     Tag = 0x9004
	TagInteropIFDPointer     Tag = 0xA005
)

var tagNames = map[Tag]string{
	TagStripOffsets:          "StripOffsets",
	TagStripByteCounts:       "StripByteCounts",
	TagDateTime:              "DateTime",
	TagJPEGInterchange:       "JPEGInterchangeFormat",
	TagJPEGInterchangeLength: "JPEGInterchangeFormatLength",
	TagExifIFDPointer:        "ExifIFDPointer",
	TagGPSIFDPointer:         "GPSInfoIFDPointer",
	TagDateTimeOriginal:      "DateTimeOriginal",
	TagDateTimeDigitized:     "DateTimeDigitized",
	TagInteropIFDPointer:     "InteroperabilityIFDPointer",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint16(t))
}

// Type is a TIFF field type.
type Type uint16

const (
	TypeByte      Type = 1
	TypeASCII     Type = 2
	TypeShort     Type = 3
	TypeLong      Type = 4
	TypeRational  Type = 5
	TypeSByte     Type = 6
	TypeUndefined Type = 7
	TypeSShort    Type = 8
	TypeSLong     Type = 9
	TypeSRational Type = 10
	TypeFloat     Type = 11
	TypeDouble    Type = 12
	TypeIFD       Type = 13
)

// Size returns the byte size of a single value of type t, or 0 if the type
// is unknown.
func (t Type) Size() uint32 {
	switch t {
	case TypeByte, TypeASCII, TypeSByte, TypeUndefined:
		return 1
	case TypeShort, TypeSShort:
		return 2
	case TypeLong, TypeSLong, TypeFloat, TypeIFD:
		return 4
	case TypeRational, TypeSRational, TypeDouble:
		return 8
	}
	return 0
}

// IfdID names a directory in the graph.
type IfdID int

const (
	Root IfdID = iota
	Exif
	GPS
	Interop
	Thumbnail
)

// layoutOrder is the order directories are placed in by the encoder.
var layoutOrder = [...]IfdID{Root, Exif, GPS, Interop, Thumbnail}

var ifdNames = [...]string{"Root", "Exif", "GPS", "Interop", "Thumbnail"}

func (id IfdID) String() string {
	if id < 0 || int(id) >= len(ifdNames) {
		return fmt.Sprintf("IFD(%d)", int(id))
	}
	return ifdNames[id]
}

// subIFD links a pointer tag in a parent directory to the child it locates.
type subIFD struct {
	parent IfdID
	tag    Tag
	child  IfdID
}

var subIFDs = [...]subIFD{
	{Root, TagExifIFDPointer, Exif},
	{Root, TagGPSIFDPointer, GPS},
	{Exif, TagInteropIFDPointer, Interop},
}

// imageRef pairs an offsets tag with its byte counts tag.
type imageRef struct {
	offsets Tag
	lengths Tag
}

var imageRefs = [...]imageRef{
	{TagJPEGInterchange, TagJPEGInterchangeLength},
	{TagStripOffsets, TagStripByteCounts},
}
