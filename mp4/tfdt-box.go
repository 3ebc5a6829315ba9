package mp4

import "encoding/binary"

// Box Type: 'tfdt'
// Container: Track Fragment Box ('traf')
// Mandatory: No
// Quantity: Zero or one
//
// aligned(8) class TrackFragmentBaseMediaDecodeTimeBox extends FullBox('tfdt', version, 0) {
//     if (version == 1) {
//         unsigned int(64) baseMediaDecodeTime;
//     } else {
//         unsigned int(32) baseMediaDecodeTime;
//     }
// }

func makeTfdtBox(baseMediaDecodeTime uint64) *Leaf {
	payload := make([]byte, 12)
	copy(payload, fullBoxHeader(1, 0))
	binary.BigEndian.PutUint64(payload[4:], baseMediaDecodeTime)
	return newLeaf([4]byte{'t', 'f', 'd', 't'}, payload)
}
