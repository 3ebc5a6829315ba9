package mp4

import (
	"encoding/binary"
	"fmt"
)

// Box Type: 'avcC'
// Container: AVC Sample Entry ('avc1')
//
// aligned(8) class AVCDecoderConfigurationRecord {
//     unsigned int(8) configurationVersion = 1;
//     unsigned int(8) AVCProfileIndication;
//     unsigned int(8) profile_compatibility;
//     unsigned int(8) AVCLevelIndication;
//     bit(6) reserved = '111111'b;
//     unsigned int(2) lengthSizeMinusOne;
//     bit(3) reserved = '111'b;
//     unsigned int(5) numOfSequenceParameterSets;
//     for (i = 0; i < numOfSequenceParameterSets; i++) {
//         unsigned int(16) sequenceParameterSetLength;
//         bit(8*sequenceParameterSetLength) sequenceParameterSetNALUnit;
//     }
//     unsigned int(8) numOfPictureParameterSets;
//     for (i = 0; i < numOfPictureParameterSets; i++) {
//         unsigned int(16) pictureParameterSetLength;
//         bit(8*pictureParameterSetLength) pictureParameterSetNALUnit;
//     }
// }

func makeAvccBox(config *AvcConfig) *Leaf {
	payload := make([]byte, 0, 64)
	payload = append(payload,
		1, // configurationVersion
		config.Profile,
		config.ConstraintSetFlags,
		config.Level,
		0xFF, // 4-byte NALU lengths
		0xE0|uint8(len(config.SPS)),
	)
	for _, sps := range config.SPS {
		payload = binary.BigEndian.AppendUint16(payload, uint16(len(sps)))
		payload = append(payload, sps...)
	}
	payload = append(payload, uint8(len(config.PPS)))
	for _, pps := range config.PPS {
		payload = binary.BigEndian.AppendUint16(payload, uint16(len(pps)))
		payload = append(payload, pps...)
	}
	return newLeaf([4]byte{'a', 'v', 'c', 'C'}, payload)
}

// decodeAvcc reads a decoder configuration record back into an AvcConfig.
func decodeAvcc(payload []byte) (*AvcConfig, error) {
	if len(payload) < 7 {
		return nil, fmt.Errorf("%w: avcC record truncated", ErrInvalidCodecConfig)
	}
	if payload[0] != 1 {
		return nil, fmt.Errorf("%w: avcC version %d", ErrInvalidCodecConfig, payload[0])
	}
	config := &AvcConfig{
		Profile:            payload[1],
		ConstraintSetFlags: payload[2],
		Level:              payload[3],
	}
	n := 5
	spsCount := int(payload[n] & 0x1F)
	n++
	for i := 0; i < spsCount; i++ {
		if len(payload) < n+2 {
			return nil, fmt.Errorf("%w: avcC record truncated", ErrInvalidCodecConfig)
		}
		spsLen := int(binary.BigEndian.Uint16(payload[n:]))
		n += 2
		if len(payload) < n+spsLen {
			return nil, fmt.Errorf("%w: avcC record truncated", ErrInvalidCodecConfig)
		}
		config.SPS = append(config.SPS, payload[n:n+spsLen])
		n += spsLen
	}
	if len(payload) < n+1 {
		return nil, fmt.Errorf("%w: avcC record truncated", ErrInvalidCodecConfig)
	}
	ppsCount := int(payload[n])
	n++
	for i := 0; i < ppsCount; i++ {
		if len(payload) < n+2 {
			return nil, fmt.Errorf("%w: avcC record truncated", ErrInvalidCodecConfig)
		}
		ppsLen := int(binary.BigEndian.Uint16(payload[n:]))
		n += 2
		if len(payload) < n+ppsLen {
			return nil, fmt.Errorf("%w: avcC record truncated", ErrInvalidCodecConfig)
		}
		config.PPS = append(config.PPS, payload[n:n+ppsLen])
		n += ppsLen
	}
	return config, nil
}
