package mp4

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

type boxRec struct {
	typ     string
	payload []byte
}

// splitBoxes reads a flat run of boxes, as found at the top level of a
// segment or inside a container payload.
func splitBoxes(t *testing.T, data []byte) []boxRec {
	t.Helper()
	var out []boxRec
	for len(data) > 0 {
		require.GreaterOrEqual(t, len(data), BOX_HEADER_SIZE)
		size := int(binary.BigEndian.Uint32(data))
		require.GreaterOrEqual(t, size, BOX_HEADER_SIZE)
		require.LessOrEqual(t, size, len(data))
		out = append(out, boxRec{typ: string(data[4:8]), payload: data[8:size]})
		data = data[size:]
	}
	return out
}

// findBox descends a path of box tags and returns the payload of the last one.
func findBox(t *testing.T, data []byte, path ...string) []byte {
	t.Helper()
	payload := data
	for _, tag := range path {
		found := false
		for _, b := range splitBoxes(t, payload) {
			if b.typ == tag {
				payload = b.payload
				found = true
				break
			}
		}
		require.Truef(t, found, "box %q not found", tag)
	}
	return payload
}

func TestLeafEncode(t *testing.T) {
	leaf, err := NewLeaf("free", []byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, uint64(11), leaf.Size())

	data := EncodeBox(leaf)
	require.Equal(t, []byte{0, 0, 0, 11, 'f', 'r', 'e', 'e', 1, 2, 3}, data)
	require.Equal(t, leaf.Size(), uint64(len(data)))
}

func TestContainerEncode(t *testing.T) {
	inner, err := NewLeaf("url ", []byte{0, 0, 0, 1})
	require.NoError(t, err)
	outer, err := NewContainer("dinf", inner)
	require.NoError(t, err)

	data := EncodeBox(outer)
	require.Equal(t, outer.Size(), uint64(len(data)))

	boxes := splitBoxes(t, data)
	require.Len(t, boxes, 1)
	require.Equal(t, "dinf", boxes[0].typ)

	children := splitBoxes(t, boxes[0].payload)
	require.Len(t, children, 1)
	require.Equal(t, "url ", children[0].typ)
	require.Equal(t, []byte{0, 0, 0, 1}, children[0].payload)
}

func TestInvalidBoxTag(t *testing.T) {
	_, err := NewLeaf("toolong", nil)
	require.ErrorIs(t, err, ErrInvalidBoxType)

	_, err = NewLeaf("ab\x00d", nil)
	require.ErrorIs(t, err, ErrInvalidBoxType)

	_, err = NewContainer("x")
	require.ErrorIs(t, err, ErrInvalidBoxType)
}

func TestLargeSizeHeader(t *testing.T) {
	var buf bytes.Buffer
	size := uint64(0x1_0000_0010)
	n, err := encodeBoxHeader(&buf, [4]byte{'m', 'd', 'a', 't'}, size)
	require.NoError(t, err)
	require.Equal(t, 16, n)

	hdr := buf.Bytes()
	require.Equal(t, uint32(1), binary.BigEndian.Uint32(hdr[0:]))
	require.Equal(t, "mdat", string(hdr[4:8]))
	require.Equal(t, size, binary.BigEndian.Uint64(hdr[8:]))
}

func TestBoxSizePromotion(t *testing.T) {
	require.Equal(t, uint64(8), boxSize(0))
	require.Equal(t, uint64(0xFFFFFFFF), boxSize(0xFFFFFFFF-8))
	// one payload byte more and the header grows by 8
	require.Equal(t, uint64(0x1_0000_0008), boxSize(0xFFFFFFFF-7))
}
