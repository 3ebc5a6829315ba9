package mp4

import (
	"fmt"
	"io"
)

// MediaSegment is one 'moof' paired with one 'mdat' holding the sample
// bytes of every track fragment, concatenated in fragment order.
type MediaSegment struct {
	Moof Box
	Mdat Box
}

// CreateMediaSegment builds a media segment carrying the given fragments.
// Each fragment must reference one of tracks and carry at least one
// sample; nothing is emitted when any fragment is rejected.
//
// The trun data_offset of each fragment is measured from the first byte
// of the 'moof' (default-base-is-moof) and points at that fragment's
// first sample byte inside the 'mdat'. Offsets depend on the size of the
// finished 'moof', so runs are built with a placeholder and patched once
// the tree is complete.
func CreateMediaSegment(tracks []*Track, sequenceNumber uint32, fragments []*TrackFragment) (*MediaSegment, error) {
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: media segment needs at least one fragment", ErrEmptyFragment)
	}
	known := make(map[uint32]bool, len(tracks))
	for _, track := range tracks {
		known[track.TrackID] = true
	}
	mdatLen := uint64(0)
	for _, frag := range fragments {
		if len(frag.Samples) == 0 {
			return nil, fmt.Errorf("%w: track %d fragment has no samples", ErrEmptyFragment, frag.TrackID)
		}
		if !known[frag.TrackID] {
			return nil, fmt.Errorf("%w: fragment references track %d", ErrUnknownTrack, frag.TrackID)
		}
		mdatLen += frag.dataLen()
	}

	children := make([]Box, 0, len(fragments)+1)
	children = append(children, makeMfhdBox(sequenceNumber))
	truns := make([]*Leaf, len(fragments))
	for i, frag := range fragments {
		truns[i] = makeTrunBox(frag)
		children = append(children, newContainer([4]byte{'t', 'r', 'a', 'f'},
			makeTfhdBox(frag.TrackID),
			makeTfdtBox(frag.BaseDecodeTime),
			truns[i],
		))
	}
	moof := newContainer([4]byte{'m', 'o', 'o', 'f'}, children...)

	// First sample byte of fragment i sits moofSize + mdat header bytes
	// past the start of the moof, plus the data of every earlier fragment.
	offset := moof.Size() + BOX_HEADER_SIZE
	for i, frag := range fragments {
		patchTrunDataOffset(truns[i], int32(offset))
		offset += frag.dataLen()
	}

	mdat := make([]byte, 0, mdatLen)
	for _, frag := range fragments {
		for i := range frag.Samples {
			mdat = append(mdat, frag.Samples[i].Data...)
		}
	}

	return &MediaSegment{
		Moof: moof,
		Mdat: newLeaf([4]byte{'m', 'd', 'a', 't'}, mdat),
	}, nil
}

// WriteTo streams the segment to w.
func (seg *MediaSegment) WriteTo(w io.Writer) (int64, error) {
	n, err := seg.Moof.Encode(w)
	if err != nil {
		return int64(n), err
	}
	m, err := seg.Mdat.Encode(w)
	return int64(n + m), err
}

// Encode returns the segment as a single byte slice.
func (seg *MediaSegment) Encode() []byte {
	buf := EncodeBox(seg.Moof)
	return append(buf, EncodeBox(seg.Mdat)...)
}
