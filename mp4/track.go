package mp4

import "fmt"

// CodecConfig is the codec-specific half of a track declaration. It is a
// closed set: AvcConfig for H.264 video, AacConfig for AAC audio.
type CodecConfig interface {
	entryName() [4]byte
	validate() error
}

// AvcConfig carries the parameter sets and profile information that end up
// in the avcC decoder configuration record.
type AvcConfig struct {
	Profile            uint8
	ConstraintSetFlags uint8
	Level              uint8
	SPS                [][]byte
	PPS                [][]byte
}

func (c *AvcConfig) entryName() [4]byte {
	return [4]byte{'a', 'v', 'c', '1'}
}

func (c *AvcConfig) validate() error {
	if len(c.SPS) == 0 {
		return fmt.Errorf("%w: no sps", ErrInvalidCodecConfig)
	}
	if len(c.PPS) == 0 {
		return fmt.Errorf("%w: no pps", ErrInvalidCodecConfig)
	}
	// avcC stores the sps count in 5 bits and each length in 16 bits
	if len(c.SPS) > 31 {
		return fmt.Errorf("%w: %d sps entries", ErrInvalidCodecConfig, len(c.SPS))
	}
	if len(c.PPS) > 255 {
		return fmt.Errorf("%w: %d pps entries", ErrInvalidCodecConfig, len(c.PPS))
	}
	for _, sps := range c.SPS {
		if len(sps) == 0 || len(sps) > 0xFFFF {
			return fmt.Errorf("%w: sps length %d", ErrInvalidCodecConfig, len(sps))
		}
	}
	for _, pps := range c.PPS {
		if len(pps) == 0 || len(pps) > 0xFFFF {
			return fmt.Errorf("%w: pps length %d", ErrInvalidCodecConfig, len(pps))
		}
	}
	return nil
}

// AacConfig carries the three AudioSpecificConfig fields. The packed form
// is objectType(5) | samplingFrequencyIndex(4) | channelConfiguration(4),
// MSB first, padded to 16 bits.
type AacConfig struct {
	ObjectType             uint8
	SamplingFrequencyIndex uint8
	ChannelConfiguration   uint8
}

func (c *AacConfig) entryName() [4]byte {
	return [4]byte{'m', 'p', '4', 'a'}
}

func (c *AacConfig) validate() error {
	if c.ObjectType >= 1<<5 {
		return fmt.Errorf("%w: object type %d exceeds 5 bits", ErrInvalidCodecConfig, c.ObjectType)
	}
	if c.SamplingFrequencyIndex >= 1<<4 {
		return fmt.Errorf("%w: sampling frequency index %d exceeds 4 bits", ErrInvalidCodecConfig, c.SamplingFrequencyIndex)
	}
	if c.ChannelConfiguration >= 1<<4 {
		return fmt.Errorf("%w: channel configuration %d exceeds 4 bits", ErrInvalidCodecConfig, c.ChannelConfiguration)
	}
	return nil
}

// ISO/IEC 14496-3, samplingFrequencyIndex table. 13..15 are reserved.
var aacSampleRates = [16]uint32{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 7350, 0, 0, 0,
}

// SampleRate returns the sampling rate in Hz, or 0 for a reserved index.
func (c *AacConfig) SampleRate() uint32 {
	return aacSampleRates[c.SamplingFrequencyIndex&0x0F]
}

// Track is the static per-stream configuration of one elementary stream.
// It is created once before the first segment and never changes; fMP4
// cannot change a codec configuration mid-stream without re-initializing.
type Track struct {
	TrackID   uint32
	Timescale uint32
	Codec     CodecConfig

	// video only, in pixels
	Width  uint32
	Height uint32
}

// NewVideoTrack validates and builds an H.264 track descriptor.
func NewVideoTrack(trackID uint32, timescale uint32, width uint32, height uint32, config *AvcConfig) (*Track, error) {
	track := &Track{
		TrackID:   trackID,
		Timescale: timescale,
		Codec:     config,
		Width:     width,
		Height:    height,
	}
	if err := track.validate(); err != nil {
		return nil, err
	}
	return track, nil
}

// NewAudioTrack validates and builds an AAC track descriptor.
func NewAudioTrack(trackID uint32, timescale uint32, config *AacConfig) (*Track, error) {
	track := &Track{
		TrackID:   trackID,
		Timescale: timescale,
		Codec:     config,
	}
	if err := track.validate(); err != nil {
		return nil, err
	}
	return track, nil
}

func (t *Track) validate() error {
	if t.TrackID == 0 {
		return fmt.Errorf("%w: track id must be nonzero", ErrStructural)
	}
	if t.Timescale == 0 {
		return fmt.Errorf("%w: track %d timescale must be nonzero", ErrStructural, t.TrackID)
	}
	if t.Codec == nil {
		return fmt.Errorf("%w: track %d has no codec config", ErrInvalidCodecConfig, t.TrackID)
	}
	return t.Codec.validate()
}

func (t *Track) isVideo() bool {
	_, ok := t.Codec.(*AvcConfig)
	return ok
}

// Sample is one timed access unit. Data is stored in its final in-file
// form (length-prefixed NALUs for AVC, raw frames for AAC); the size
// written into trun is always len(Data).
type Sample struct {
	Duration uint32
	Data     []byte

	// IsSync marks an independently decodable sample (keyframe).
	IsSync bool

	// CompositionTimeOffset is pts-dts in timescale units; nonzero only
	// for codecs with frame reordering.
	CompositionTimeOffset int32
}

// TrackFragment is one track's contribution to a media segment.
// BaseDecodeTime is the running decode timestamp at the fragment start;
// continuity across fragments is the caller's contract, the builders
// keep no state.
type TrackFragment struct {
	TrackID        uint32
	BaseDecodeTime uint64
	Samples        []Sample
}

func (f *TrackFragment) dataLen() uint64 {
	n := uint64(0)
	for i := range f.Samples {
		n += uint64(len(f.Samples[i].Data))
	}
	return n
}
