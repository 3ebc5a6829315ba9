package mp4

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func testAvcConfig() *AvcConfig {
	return &AvcConfig{
		Profile:            0x64, // High
		ConstraintSetFlags: 0x00,
		Level:              0x1F,
		SPS:                [][]byte{{0x67, 0x64, 0x00, 0x1F, 0xAC, 0xD9, 0x40, 0x50, 0x05, 0xBB, 0x01, 0x6C}},
		PPS:                [][]byte{{0x68, 0xEB, 0xE3, 0xCB}},
	}
}

func testAacConfig() *AacConfig {
	return &AacConfig{
		ObjectType:             2, // AAC-LC
		SamplingFrequencyIndex: 4, // 44100
		ChannelConfiguration:   2,
	}
}

func TestAvccRoundTrip(t *testing.T) {
	config := testAvcConfig()
	avcc := makeAvccBox(config)
	data := EncodeBox(avcc)

	boxes := splitBoxes(t, data)
	require.Len(t, boxes, 1)
	require.Equal(t, "avcC", boxes[0].typ)

	got, err := decodeAvcc(boxes[0].payload)
	require.NoError(t, err)
	require.Equal(t, config, got)
}

func TestAvccHeaderBytes(t *testing.T) {
	config := testAvcConfig()
	payload := makeAvccBox(config).payload

	require.Equal(t, uint8(1), payload[0])
	require.Equal(t, config.Profile, payload[1])
	require.Equal(t, config.ConstraintSetFlags, payload[2])
	require.Equal(t, config.Level, payload[3])
	require.Equal(t, uint8(0xFF), payload[4]) // lengthSizeMinusOne = 3
	require.Equal(t, uint8(0xE1), payload[5]) // reserved bits | 1 sps
	require.Equal(t, uint16(len(config.SPS[0])), binary.BigEndian.Uint16(payload[6:]))
}

func TestAudioSpecificConfig(t *testing.T) {
	asc := makeAudioSpecificConfig(testAacConfig())
	// objectType 2, frequency index 4, 2 channels: 00010 0100 0010 000
	require.Equal(t, []byte{0x12, 0x10}, asc)
}

func TestEsdsDescriptorChain(t *testing.T) {
	payload := makeEsdsBox(testAacConfig()).payload
	require.Equal(t, []byte{0, 0, 0, 0}, payload[:4]) // version and flags

	// Each descriptor is a tag plus a four byte expandable length.
	body := payload[4:]
	require.Equal(t, uint8(ES_DescrTag), body[0])
	esLen := expandableLen(t, body[1:5])

	esBody := body[5 : 5+esLen]
	require.Equal(t, []byte{0, 0, 0}, esBody[:3]) // ES_ID and flags

	decConfig := esBody[3:]
	require.Equal(t, uint8(DecoderConfigDescrTag), decConfig[0])
	require.Equal(t, uint8(0x40), decConfig[5]) // objectTypeIndication
	require.Equal(t, uint8(0x15), decConfig[6]) // AudioStream, reserved bit

	decSpecific := decConfig[5+13:]
	require.Equal(t, uint8(DecSpecificInfoTag), decSpecific[0])
	require.Equal(t, 2, expandableLen(t, decSpecific[1:5]))
	require.Equal(t, []byte{0x12, 0x10}, decSpecific[5:7])

	slConfig := decSpecific[7:]
	require.Equal(t, uint8(SLConfigDescrTag), slConfig[0])
	require.Equal(t, 1, expandableLen(t, slConfig[1:5]))
	require.Equal(t, uint8(0x02), slConfig[5])
}

func expandableLen(t *testing.T, data []byte) int {
	t.Helper()
	require.Len(t, data, 4)
	n := 0
	for i, b := range data {
		if i < 3 {
			require.Equal(t, uint8(0x80), b&0x80)
		} else {
			require.Equal(t, uint8(0), b&0x80)
		}
		n = n<<7 | int(b&0x7F)
	}
	return n
}

func TestAvc1Entry(t *testing.T) {
	track, err := NewVideoTrack(1, 90000, 1280, 720, testAvcConfig())
	require.NoError(t, err)

	entry, err := makeSampleEntry(track)
	require.NoError(t, err)
	require.Equal(t, [4]byte{'a', 'v', 'c', '1'}, entry.Type())

	payload := findBox(t, EncodeBox(entry), "avc1")
	require.Equal(t, uint16(1), binary.BigEndian.Uint16(payload[6:]))
	require.Equal(t, uint16(1280), binary.BigEndian.Uint16(payload[24:]))
	require.Equal(t, uint16(720), binary.BigEndian.Uint16(payload[26:]))
	require.Equal(t, uint16(0x0018), binary.BigEndian.Uint16(payload[74:]))

	nested := splitBoxes(t, payload[78:])
	require.Len(t, nested, 1)
	require.Equal(t, "avcC", nested[0].typ)
}

func TestMp4aEntry(t *testing.T) {
	track, err := NewAudioTrack(2, 44100, testAacConfig())
	require.NoError(t, err)

	entry, err := makeSampleEntry(track)
	require.NoError(t, err)
	require.Equal(t, [4]byte{'m', 'p', '4', 'a'}, entry.Type())

	payload := findBox(t, EncodeBox(entry), "mp4a")
	require.Equal(t, uint16(2), binary.BigEndian.Uint16(payload[16:]))
	require.Equal(t, uint16(16), binary.BigEndian.Uint16(payload[18:]))
	require.Equal(t, uint32(44100)<<16, binary.BigEndian.Uint32(payload[24:]))

	nested := splitBoxes(t, payload[28:])
	require.Len(t, nested, 1)
	require.Equal(t, "esds", nested[0].typ)
}

func TestCodecConfigValidation(t *testing.T) {
	noSps := testAvcConfig()
	noSps.SPS = nil
	_, err := NewVideoTrack(1, 90000, 1280, 720, noSps)
	require.ErrorIs(t, err, ErrInvalidCodecConfig)

	noPps := testAvcConfig()
	noPps.PPS = nil
	_, err = NewVideoTrack(1, 90000, 1280, 720, noPps)
	require.ErrorIs(t, err, ErrInvalidCodecConfig)

	badAac := testAacConfig()
	badAac.SamplingFrequencyIndex = 16
	_, err = NewAudioTrack(2, 44100, badAac)
	require.ErrorIs(t, err, ErrInvalidCodecConfig)

	_, err = NewAudioTrack(0, 44100, testAacConfig())
	require.ErrorIs(t, err, ErrStructural)

	_, err = NewAudioTrack(2, 0, testAacConfig())
	require.ErrorIs(t, err, ErrStructural)
}
