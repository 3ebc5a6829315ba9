package mp4

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// ISO_IEC_14496-12_2015
/*
aligned(8) class Box (unsigned int(32) boxtype,
         optional unsigned int(8)[16] extended_type) {
   unsigned int(32) size;
   unsigned int(32) type = boxtype;
   if (size==1) {
      unsigned int(64) largesize;
   } else if (size==0) {
      // box extends to end of file
   }
}
*/

const BOX_HEADER_SIZE = 8

// Box is one node of an ISO BMFF box tree. There are exactly two
// implementations, Leaf and Container. Size must equal the number of
// bytes Encode emits for the same box.
type Box interface {
	Type() [4]byte
	Size() uint64
	Encode(w io.Writer) (int, error)
}

// A tag is four bytes of printable ASCII ('url ' keeps a trailing space).
func parseBoxTag(tag string) ([4]byte, error) {
	var typ [4]byte
	if len(tag) != 4 {
		return typ, fmt.Errorf("%w: %q must be 4 bytes", ErrInvalidBoxType, tag)
	}
	for i := 0; i < 4; i++ {
		if tag[i] < 0x20 || tag[i] > 0x7e {
			return typ, fmt.Errorf("%w: %q contains byte 0x%02x", ErrInvalidBoxType, tag, tag[i])
		}
		typ[i] = tag[i]
	}
	return typ, nil
}

func boxSize(payloadLen uint64) uint64 {
	n := BOX_HEADER_SIZE + payloadLen
	if n > 0xFFFFFFFF {
		n += 8
	}
	return n
}

func encodeBoxHeader(w io.Writer, typ [4]byte, size uint64) (int, error) {
	var hdr [16]byte
	copy(hdr[4:8], typ[:])
	if size > 0xFFFFFFFF {
		binary.BigEndian.PutUint32(hdr[0:], 1)
		binary.BigEndian.PutUint64(hdr[8:], size)
		return w.Write(hdr[:16])
	}
	binary.BigEndian.PutUint32(hdr[0:], uint32(size))
	return w.Write(hdr[:8])
}

type Leaf struct {
	typ     [4]byte
	payload []byte
}

// NewLeaf makes a leaf box from a 4-byte tag and its raw payload.
func NewLeaf(tag string, payload []byte) (*Leaf, error) {
	typ, err := parseBoxTag(tag)
	if err != nil {
		return nil, err
	}
	return &Leaf{typ: typ, payload: payload}, nil
}

// newLeaf is for builders whose tags are package constants.
func newLeaf(typ [4]byte, payload []byte) *Leaf {
	return &Leaf{typ: typ, payload: payload}
}

func (l *Leaf) Type() [4]byte {
	return l.typ
}

func (l *Leaf) Size() uint64 {
	return boxSize(uint64(len(l.payload)))
}

func (l *Leaf) Encode(w io.Writer) (int, error) {
	nn, err := encodeBoxHeader(w, l.typ, l.Size())
	if err != nil {
		return nn, err
	}
	n, err := w.Write(l.payload)
	return nn + n, err
}

type Container struct {
	typ      [4]byte
	children []Box
}

// NewContainer makes a container box holding the given children in order.
func NewContainer(tag string, children ...Box) (*Container, error) {
	typ, err := parseBoxTag(tag)
	if err != nil {
		return nil, err
	}
	return &Container{typ: typ, children: children}, nil
}

func newContainer(typ [4]byte, children ...Box) *Container {
	return &Container{typ: typ, children: children}
}

func (c *Container) Type() [4]byte {
	return c.typ
}

func (c *Container) Children() []Box {
	return c.children
}

func (c *Container) Size() uint64 {
	payload := uint64(0)
	for _, child := range c.children {
		payload += child.Size()
	}
	return boxSize(payload)
}

func (c *Container) Encode(w io.Writer) (int, error) {
	nn, err := encodeBoxHeader(w, c.typ, c.Size())
	if err != nil {
		return nn, err
	}
	for _, child := range c.children {
		n, err := child.Encode(w)
		nn += n
		if err != nil {
			return nn, err
		}
	}
	return nn, nil
}

// EncodeBox serializes a box tree into memory. Builders validate before
// constructing, so encoding to a buffer cannot fail.
func EncodeBox(b Box) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, b.Size()))
	b.Encode(buf)
	return buf.Bytes()
}

/*
aligned(8) class FullBox(unsigned int(32) boxtype, unsigned int(8) v, bit(24) f)
   extends Box(boxtype) {
   unsigned int(8)   version = v;
   bit(24)           flags = f;
}
*/

// fullBoxHeader is prepended to a leaf payload for boxes declared as FullBox.
func fullBoxHeader(version uint8, flags uint32) []byte {
	return []byte{version, uint8(flags >> 16), uint8(flags >> 8), uint8(flags)}
}
