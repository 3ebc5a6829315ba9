package mp4

import "encoding/binary"

// Box Type: 'tfhd'
// Container: Track Fragment Box ('traf')
// Mandatory: Yes
// Quantity: Exactly one
//
// aligned(8) class TrackFragmentHeaderBox extends FullBox('tfhd', 0, tf_flags) {
//     unsigned int(32) track_ID;
//     // all the following are optional fields
//     unsigned int(64) base_data_offset;
//     unsigned int(32) sample_description_index;
//     unsigned int(32) default_sample_duration;
//     unsigned int(32) default_sample_size;
//     unsigned int(32) default_sample_flags;
// }

const (
	tfhdBaseDataOffsetPresent        = 0x000001
	tfhdSampleDescriptionIdxPresent  = 0x000002
	tfhdDefaultSampleDurationPresent = 0x000008
	tfhdDefaultSampleSizePresent     = 0x000010
	tfhdDefaultSampleFlagsPresent    = 0x000020
	tfhdDurationIsEmpty              = 0x010000
	tfhdDefaultBaseIsMoof            = 0x020000
)

func makeTfhdBox(trackID uint32) *Leaf {
	payload := make([]byte, 8)
	copy(payload, fullBoxHeader(0, tfhdDefaultBaseIsMoof))
	binary.BigEndian.PutUint32(payload[4:], trackID)
	return newLeaf([4]byte{'t', 'f', 'h', 'd'}, payload)
}
