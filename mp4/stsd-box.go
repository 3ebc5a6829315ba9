package mp4

import (
	"encoding/binary"
	"fmt"
)

// Sample entries are the codec-specific leaves under stsd. Both carry
// fixed fields followed by one nested configuration box (avcC or esds),
// which is serialized straight into the entry payload.

func makeSampleEntry(track *Track) (Box, error) {
	switch config := track.Codec.(type) {
	case *AvcConfig:
		return makeAvc1Entry(track, config)
	case *AacConfig:
		return makeMp4aEntry(config)
	default:
		return nil, fmt.Errorf("%w: unsupported codec config %T", ErrInvalidCodecConfig, track.Codec)
	}
}

// class AVCSampleEntry() extends VisualSampleEntry('avc1') {
//     AVCConfigurationBox config;
// }
func makeAvc1Entry(track *Track, config *AvcConfig) (Box, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, 78)
	binary.BigEndian.PutUint16(buf[6:], 1) // data_reference_index
	// 16 bytes pre_defined/reserved
	binary.BigEndian.PutUint16(buf[24:], uint16(track.Width))
	binary.BigEndian.PutUint16(buf[26:], uint16(track.Height))
	binary.BigEndian.PutUint32(buf[28:], 0x00480000) // horizresolution, 72 dpi
	binary.BigEndian.PutUint32(buf[32:], 0x00480000) // vertresolution
	binary.BigEndian.PutUint16(buf[40:], 1)          // frame_count
	// 32 bytes compressorname, zeroed
	binary.BigEndian.PutUint16(buf[74:], 0x0018)  // depth
	binary.BigEndian.PutUint16(buf[76:], 0xFFFF)  // pre_defined = -1
	payload := append(buf, EncodeBox(makeAvccBox(config))...)
	return newLeaf([4]byte{'a', 'v', 'c', '1'}, payload), nil
}

// class MP4AudioSampleEntry() extends AudioSampleEntry('mp4a') {
//     ESDBox ES;
// }
func makeMp4aEntry(config *AacConfig) (Box, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, 28)
	binary.BigEndian.PutUint16(buf[6:], 1) // data_reference_index
	// 8 bytes reserved
	binary.BigEndian.PutUint16(buf[16:], uint16(config.ChannelConfiguration))
	binary.BigEndian.PutUint16(buf[18:], 16) // samplesize
	// pre_defined + reserved
	binary.BigEndian.PutUint32(buf[24:], config.SampleRate()<<16)
	payload := append(buf, EncodeBox(makeEsdsBox(config))...)
	return newLeaf([4]byte{'m', 'p', '4', 'a'}, payload), nil
}
