package mp4

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// trunEntry is a decoded trun sample row, used to check the emitted runs
// against the fragments that produced them.
type trunEntry struct {
	duration uint32
	size     uint32
	flags    uint32
	cts      int32
}

func parseTrun(t *testing.T, payload []byte) (dataOffset int32, entries []trunEntry) {
	t.Helper()
	require.Equal(t, uint8(1), payload[0]) // version
	flags := uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])
	require.NotZero(t, flags&trunDataOffsetPresent)

	count := binary.BigEndian.Uint32(payload[4:])
	dataOffset = int32(binary.BigEndian.Uint32(payload[8:]))
	pos := 12
	for i := uint32(0); i < count; i++ {
		var e trunEntry
		e.duration = binary.BigEndian.Uint32(payload[pos:])
		e.size = binary.BigEndian.Uint32(payload[pos+4:])
		e.flags = binary.BigEndian.Uint32(payload[pos+8:])
		pos += 12
		if flags&trunSampleCtsOffsetPresent != 0 {
			e.cts = int32(binary.BigEndian.Uint32(payload[pos:]))
			pos += 4
		}
		entries = append(entries, e)
	}
	require.Equal(t, len(payload), pos)
	return dataOffset, entries
}

func TestCreateMediaSegment(t *testing.T) {
	tracks := testTracks(t)
	frag := &TrackFragment{
		TrackID:        1,
		BaseDecodeTime: 90000,
		Samples: []Sample{
			{Duration: 3000, Data: make([]byte, 1000), IsSync: true},
			{Duration: 3000, Data: make([]byte, 2000)},
			{Duration: 3000, Data: make([]byte, 500)},
		},
	}
	seg, err := CreateMediaSegment(tracks, 1, []*TrackFragment{frag})
	require.NoError(t, err)
	data := seg.Encode()

	top := splitBoxes(t, data)
	require.Len(t, top, 2)
	require.Equal(t, "moof", top[0].typ)
	require.Equal(t, "mdat", top[1].typ)
	require.Equal(t, 3500, len(top[1].payload))

	mfhd := findBox(t, data, "moof", "mfhd")
	require.Equal(t, uint32(1), binary.BigEndian.Uint32(mfhd[4:]))

	tfhd := findBox(t, data, "moof", "traf", "tfhd")
	require.Equal(t, uint32(tfhdDefaultBaseIsMoof), uint32(tfhd[1])<<16|uint32(tfhd[2])<<8|uint32(tfhd[3]))
	require.Equal(t, uint32(1), binary.BigEndian.Uint32(tfhd[4:]))

	tfdt := findBox(t, data, "moof", "traf", "tfdt")
	require.Equal(t, uint8(1), tfdt[0])
	require.Equal(t, uint64(90000), binary.BigEndian.Uint64(tfdt[4:]))

	moofSize := uint64(len(EncodeBox(seg.Moof)))
	dataOffset, entries := parseTrun(t, findBox(t, data, "moof", "traf", "trun"))
	require.Equal(t, moofSize+BOX_HEADER_SIZE, uint64(dataOffset))
	require.Len(t, entries, 3)
	require.Equal(t, trunEntry{3000, 1000, SampleFlagsSync, 0}, entries[0])
	require.Equal(t, trunEntry{3000, 2000, SampleFlagsNonSync, 0}, entries[1])
	require.Equal(t, trunEntry{3000, 500, SampleFlagsNonSync, 0}, entries[2])

	// data_offset lands on the first sample byte
	require.Equal(t, data[dataOffset:dataOffset+3500], top[1].payload)
}

func TestMediaSegmentTwoTracks(t *testing.T) {
	tracks := testTracks(t)
	video := &TrackFragment{
		TrackID: 1,
		Samples: []Sample{
			{Duration: 3000, Data: bytes.Repeat([]byte{0xAA}, 700), IsSync: true, CompositionTimeOffset: 3000},
			{Duration: 3000, Data: bytes.Repeat([]byte{0xBB}, 300), CompositionTimeOffset: -1500},
		},
	}
	audio := &TrackFragment{
		TrackID:        2,
		BaseDecodeTime: 44100,
		Samples: []Sample{
			{Duration: 1024, Data: bytes.Repeat([]byte{0xCC}, 200), IsSync: true},
			{Duration: 1024, Data: bytes.Repeat([]byte{0xDD}, 250), IsSync: true},
		},
	}
	seg, err := CreateMediaSegment(tracks, 5, []*TrackFragment{video, audio})
	require.NoError(t, err)
	data := seg.Encode()

	moofSize := uint64(len(EncodeBox(seg.Moof)))
	moof := findBox(t, data, "moof")

	var trafs [][]byte
	for _, b := range splitBoxes(t, moof) {
		if b.typ == "traf" {
			trafs = append(trafs, b.payload)
		}
	}
	require.Len(t, trafs, 2)

	videoOffset, videoEntries := parseTrun(t, findBox(t, trafs[0], "trun"))
	require.Equal(t, moofSize+BOX_HEADER_SIZE, uint64(videoOffset))
	require.Equal(t, int32(3000), videoEntries[0].cts)
	require.Equal(t, int32(-1500), videoEntries[1].cts)

	// the audio run starts right after the 1000 video bytes
	audioOffset, audioEntries := parseTrun(t, findBox(t, trafs[1], "trun"))
	require.Equal(t, uint64(videoOffset)+1000, uint64(audioOffset))
	require.Len(t, audioEntries, 2)
	require.Equal(t, uint32(SampleFlagsSync), audioEntries[1].flags)

	mdat := findBox(t, data, "mdat")
	require.Equal(t, 1450, len(mdat))
	require.Equal(t, byte(0xAA), mdat[0])
	require.Equal(t, byte(0xCC), mdat[1000])
	require.Equal(t, byte(0xDD), mdat[1200])

	trunTotal := uint64(0)
	for _, e := range append(videoEntries, audioEntries...) {
		trunTotal += uint64(e.size)
	}
	require.Equal(t, uint64(len(mdat)), trunTotal)
}

func TestMediaSegmentSequenceNumbers(t *testing.T) {
	tracks := testTracks(t)
	for seq := uint32(1); seq <= 4; seq++ {
		frag := &TrackFragment{
			TrackID:        2,
			BaseDecodeTime: uint64(seq-1) * 1024,
			Samples:        []Sample{{Duration: 1024, Data: []byte{1, 2, 3}, IsSync: true}},
		}
		seg, err := CreateMediaSegment(tracks, seq, []*TrackFragment{frag})
		require.NoError(t, err)
		data := seg.Encode()

		mfhd := findBox(t, data, "moof", "mfhd")
		require.Equal(t, seq, binary.BigEndian.Uint32(mfhd[4:]))
		tfdt := findBox(t, data, "moof", "traf", "tfdt")
		require.Equal(t, uint64(seq-1)*1024, binary.BigEndian.Uint64(tfdt[4:]))
	}
}

func TestMediaSegmentErrors(t *testing.T) {
	tracks := testTracks(t)

	_, err := CreateMediaSegment(tracks, 1, nil)
	require.ErrorIs(t, err, ErrEmptyFragment)

	_, err = CreateMediaSegment(tracks, 1, []*TrackFragment{{TrackID: 1}})
	require.ErrorIs(t, err, ErrEmptyFragment)

	frag := &TrackFragment{
		TrackID: 9,
		Samples: []Sample{{Duration: 1024, Data: []byte{1}, IsSync: true}},
	}
	_, err = CreateMediaSegment(tracks, 1, []*TrackFragment{frag})
	require.ErrorIs(t, err, ErrUnknownTrack)
}

func TestMediaSegmentWriteTo(t *testing.T) {
	tracks := testTracks(t)
	frag := &TrackFragment{
		TrackID: 1,
		Samples: []Sample{{Duration: 3000, Data: []byte{0, 0, 0, 1, 0x65}, IsSync: true}},
	}
	seg, err := CreateMediaSegment(tracks, 1, []*TrackFragment{frag})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := seg.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	require.Equal(t, seg.Encode(), buf.Bytes())
}
