package mp4

import "encoding/binary"

// Box Type: 'mdhd'
// Container: Media Box ('mdia')
// Mandatory: Yes
// Quantity: Exactly one
//
// aligned(8) class MediaHeaderBox extends FullBox('mdhd', version, 0) {
//     unsigned int(32) creation_time;
//     unsigned int(32) modification_time;
//     unsigned int(32) timescale;
//     unsigned int(32) duration;
//     bit(1) pad = 0;
//     unsigned int(5)[3] language;
//     unsigned int(16) pre_defined = 0;
// }

func makeMdhdBox(track *Track, creationTime uint32) *Leaf {
	buf := make([]byte, 20)
	binary.BigEndian.PutUint32(buf[0:], creationTime)
	binary.BigEndian.PutUint32(buf[4:], creationTime)
	binary.BigEndian.PutUint32(buf[8:], track.Timescale)
	// duration 0, fragments carry timing
	binary.BigEndian.PutUint16(buf[16:], 0x55c4) // 'und'
	return newLeaf([4]byte{'m', 'd', 'h', 'd'}, append(fullBoxHeader(0, 0), buf...))
}
