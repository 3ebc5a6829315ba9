package mp4

import "encoding/binary"

// Box Type: 'trex'
// Container: Movie Extends Box ('mvex')
// Mandatory: Yes
// Quantity: Exactly one for each track in the Movie Box
//
// aligned(8) class TrackExtendsBox extends FullBox('trex', 0, 0) {
//     unsigned int(32) track_ID;
//     unsigned int(32) default_sample_description_index;
//     unsigned int(32) default_sample_duration;
//     unsigned int(32) default_sample_size;
//     unsigned int(32) default_sample_flags;
// }

func makeTrexBox(trackID uint32) *Leaf {
	payload := make([]byte, 24)
	copy(payload, fullBoxHeader(0, 0))
	binary.BigEndian.PutUint32(payload[4:], trackID)
	binary.BigEndian.PutUint32(payload[8:], 1) // default_sample_description_index
	return newLeaf([4]byte{'t', 'r', 'e', 'x'}, payload)
}

// Box Type: 'mvex'
// Container: Movie Box ('moov')
// Mandatory: No
// Quantity: Zero or one
func makeMvexBox(tracks []*Track) *Container {
	children := make([]Box, len(tracks))
	for i, track := range tracks {
		children[i] = makeTrexBox(track.TrackID)
	}
	return newContainer([4]byte{'m', 'v', 'e', 'x'}, children...)
}
