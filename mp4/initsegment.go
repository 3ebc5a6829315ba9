package mp4

import (
	"fmt"
	"io"
)

// InitSegment is the self-initializing header a media source needs before
// any media segment: 'ftyp' followed by a 'moov' whose tracks carry no
// samples and whose 'mvex' marks the movie as fragmented.
type InitSegment struct {
	Ftyp Box
	Moov Box
}

// CreateInitSegment builds the initialization segment for the given tracks.
// movieTimescale is the presentation-wide timescale written into 'mvhd';
// creationTime is seconds since 1904-01-01 and may be zero.
func CreateInitSegment(tracks []*Track, movieTimescale uint32, creationTime uint32) (*InitSegment, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: init segment needs at least one track", ErrStructural)
	}
	seen := make(map[uint32]bool, len(tracks))
	nextTrackID := uint32(0)
	for _, track := range tracks {
		if err := track.validate(); err != nil {
			return nil, err
		}
		if seen[track.TrackID] {
			return nil, fmt.Errorf("%w: duplicate track id %d", ErrStructural, track.TrackID)
		}
		seen[track.TrackID] = true
		if track.TrackID >= nextTrackID {
			nextTrackID = track.TrackID + 1
		}
	}

	children := make([]Box, 0, len(tracks)+2)
	children = append(children, makeMvhdBox(movieTimescale, creationTime, nextTrackID))
	for _, track := range tracks {
		trak, err := makeTrakBox(track, creationTime)
		if err != nil {
			return nil, err
		}
		children = append(children, trak)
	}
	children = append(children, makeMvexBox(tracks))

	return &InitSegment{
		Ftyp: makeFtypBox(),
		Moov: newContainer([4]byte{'m', 'o', 'o', 'v'}, children...),
	}, nil
}

// Box Type: 'trak'
// Container: Movie Box ('moov')
// Mandatory: Yes
// Quantity: One or more
func makeTrakBox(track *Track, creationTime uint32) (*Container, error) {
	minf, err := makeMinfBox(track)
	if err != nil {
		return nil, err
	}
	mdia := newContainer([4]byte{'m', 'd', 'i', 'a'},
		makeMdhdBox(track, creationTime),
		makeHdlrBox(track),
		minf,
	)
	return newContainer([4]byte{'t', 'r', 'a', 'k'},
		makeTkhdBox(track, creationTime),
		mdia,
	), nil
}

// WriteTo streams the segment to w.
func (seg *InitSegment) WriteTo(w io.Writer) (int64, error) {
	n, err := seg.Ftyp.Encode(w)
	if err != nil {
		return int64(n), err
	}
	m, err := seg.Moov.Encode(w)
	return int64(n + m), err
}

// Encode returns the segment as a single byte slice.
func (seg *InitSegment) Encode() []byte {
	buf := EncodeBox(seg.Ftyp)
	return append(buf, EncodeBox(seg.Moov)...)
}
