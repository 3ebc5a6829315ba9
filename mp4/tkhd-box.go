package mp4

import "encoding/binary"

// Box Type: 'tkhd'
// Container: Track Box ('trak')
// Mandatory: Yes
// Quantity: Exactly one
//
// aligned(8) class TrackHeaderBox extends FullBox('tkhd', version, flags) {
//     unsigned int(32) creation_time;
//     unsigned int(32) modification_time;
//     unsigned int(32) track_ID;
//     const unsigned int(32) reserved = 0;
//     unsigned int(32) duration;
//     ...
//     unsigned int(32) width;   // fixed point 16.16
//     unsigned int(32) height;  // fixed point 16.16
// }

const tkhdTrackEnabled = 0x000001 | 0x000002 | 0x000004 // enabled | in movie | in preview

func makeTkhdBox(track *Track, creationTime uint32) *Leaf {
	buf := make([]byte, 80)
	binary.BigEndian.PutUint32(buf[0:], creationTime)
	binary.BigEndian.PutUint32(buf[4:], creationTime)
	binary.BigEndian.PutUint32(buf[8:], track.TrackID)
	// reserved, duration 0 (fragments carry the real durations), reserved
	if !track.isVideo() {
		binary.BigEndian.PutUint16(buf[32:], 0x0100) // volume
	}
	for i, v := range unityMatrix {
		binary.BigEndian.PutUint32(buf[36+4*i:], v)
	}
	if track.isVideo() {
		binary.BigEndian.PutUint32(buf[72:], track.Width<<16)
		binary.BigEndian.PutUint32(buf[76:], track.Height<<16)
	}
	return newLeaf([4]byte{'t', 'k', 'h', 'd'}, append(fullBoxHeader(0, tkhdTrackEnabled), buf...))
}
