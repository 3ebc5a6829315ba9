package mp4

import "errors"

// Every failure is reported before any bytes are emitted; once a builder
// returns a segment, writing it can only fail with the sink's own error.
var (
	// ErrInvalidBoxType reports a box tag that is not 4 printable ASCII bytes.
	ErrInvalidBoxType = errors.New("mp4: invalid box type")

	// ErrInvalidCodecConfig reports missing or out-of-range codec parameters.
	ErrInvalidCodecConfig = errors.New("mp4: invalid codec config")

	// ErrStructural reports an empty or duplicated track list at initialization.
	ErrStructural = errors.New("mp4: structural error")

	// ErrEmptyFragment reports a media segment with no fragments, or a
	// fragment with no samples.
	ErrEmptyFragment = errors.New("mp4: empty fragment")

	// ErrUnknownTrack reports a fragment referencing a track that was not
	// declared in the initialization segment.
	ErrUnknownTrack = errors.New("mp4: unknown track")
)
