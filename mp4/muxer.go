package mp4

import "io"

// Muxer emits a fragmented MP4 byte stream for a fixed set of tracks:
// one init segment followed by any number of media segments. It keeps no
// state beyond the track list, so callers own sequence numbers and
// decode times.
type Muxer struct {
	tracks []*Track
}

func NewMuxer(tracks ...*Track) *Muxer {
	return &Muxer{tracks: tracks}
}

func (m *Muxer) Tracks() []*Track {
	return m.tracks
}

func (m *Muxer) WriteInitSegment(w io.Writer, movieTimescale uint32, creationTime uint32) error {
	seg, err := CreateInitSegment(m.tracks, movieTimescale, creationTime)
	if err != nil {
		return err
	}
	_, err = seg.WriteTo(w)
	return err
}

func (m *Muxer) WriteSegment(w io.Writer, sequenceNumber uint32, fragments ...*TrackFragment) error {
	seg, err := CreateMediaSegment(m.tracks, sequenceNumber, fragments)
	if err != nil {
		return err
	}
	_, err = seg.WriteTo(w)
	return err
}
