package mp4

import "encoding/binary"

// Box Type: 'mvhd'
// Container: Movie Box ('moov')
// Mandatory: Yes
// Quantity: Exactly one
//
// aligned(8) class MovieHeaderBox extends FullBox('mvhd', version, 0) {
//     unsigned int(32) creation_time;
//     unsigned int(32) modification_time;
//     unsigned int(32) timescale;
//     unsigned int(32) duration;
//     template int(32) rate = 0x00010000;
//     template int(16) volume = 0x0100;
//     ...
//     unsigned int(32) next_track_ID;
// }

var unityMatrix = [9]uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000}

func makeMvhdBox(timescale uint32, creationTime uint32, nextTrackID uint32) *Leaf {
	buf := make([]byte, 96)
	binary.BigEndian.PutUint32(buf[0:], creationTime)
	binary.BigEndian.PutUint32(buf[4:], creationTime)
	binary.BigEndian.PutUint32(buf[8:], timescale)
	// duration stays zero, the fragments carry the real timing
	binary.BigEndian.PutUint32(buf[16:], 0x00010000)
	binary.BigEndian.PutUint16(buf[20:], 0x0100)
	// 2 reserved + 2*4 reserved
	for i, v := range unityMatrix {
		binary.BigEndian.PutUint32(buf[32+4*i:], v)
	}
	// 6*4 pre_defined
	binary.BigEndian.PutUint32(buf[92:], nextTrackID)
	return newLeaf([4]byte{'m', 'v', 'h', 'd'}, append(fullBoxHeader(0, 0), buf...))
}
