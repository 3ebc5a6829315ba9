package mp4

import "encoding/binary"

// Box Type: 'mfhd'
// Container: Movie Fragment Box ('moof')
// Mandatory: Yes
// Quantity: Exactly one
//
// aligned(8) class MovieFragmentHeaderBox extends FullBox('mfhd', 0, 0) {
//     unsigned int(32) sequence_number;
// }

func makeMfhdBox(sequenceNumber uint32) *Leaf {
	payload := make([]byte, 8)
	copy(payload, fullBoxHeader(0, 0))
	binary.BigEndian.PutUint32(payload[4:], sequenceNumber)
	return newLeaf([4]byte{'m', 'f', 'h', 'd'}, payload)
}
