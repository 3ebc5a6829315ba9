package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/yapingcat/gomedia/go-codec"
	"github.com/yapingcat/gomedia/go-mpeg2"

	"github.com/gomse/fmp4/mp4"
)

// ts2fmp4 remuxes an MPEG-TS recording into an MSE-compatible stream:
// one init.mp4 plus numbered .m4s media segments, cut on video keyframes.

const (
	videoTrackID   = 1
	audioTrackID   = 2
	videoTimescale = 1000 // TS demuxer reports milliseconds
	aacFrameLength = 1024
)

type rawFrame struct {
	data []byte
	pts  uint64
	dts  uint64
}

type videoSample struct {
	data []byte // length-prefixed NALUs
	pts  uint64
	dts  uint64
	key  bool
}

type remuxer struct {
	log zerolog.Logger

	sps [][]byte
	pps [][]byte

	videoFrames []rawFrame
	audioConfig *mp4.AacConfig
	audioFrames [][]byte
}

func (r *remuxer) onFrame(cid mpeg2.TS_STREAM_TYPE, frame []byte, pts uint64, dts uint64) {
	switch cid {
	case mpeg2.TS_STREAM_H264:
		// the demuxer reuses its buffer between callbacks
		buf := make([]byte, len(frame))
		copy(buf, frame)
		r.videoFrames = append(r.videoFrames, rawFrame{data: buf, pts: pts, dts: dts})
	case mpeg2.TS_STREAM_AAC:
		r.onAAC(frame)
	default:
		r.log.Debug().Int("stream", int(cid)).Msg("ignoring elementary stream")
	}
}

func (r *remuxer) onAAC(frames []byte) {
	codec.SplitAACFrame(frames, func(aac []byte) {
		if len(aac) < 7 {
			return
		}
		if r.audioConfig == nil {
			// adts_fixed_header: profile is the object type minus one
			r.audioConfig = &mp4.AacConfig{
				ObjectType:             (aac[2]>>6)&0x03 + 1,
				SamplingFrequencyIndex: (aac[2] >> 2) & 0x0F,
				ChannelConfiguration:   (aac[2]&0x01)<<2 | aac[3]>>6,
			}
			r.log.Info().
				Uint8("object_type", r.audioConfig.ObjectType).
				Uint32("sample_rate", r.audioConfig.SampleRate()).
				Uint8("channels", r.audioConfig.ChannelConfiguration).
				Msg("found aac stream")
		}
		hdrLen := 7
		if aac[1]&0x01 == 0 { // protection_absent unset, crc follows
			hdrLen = 9
		}
		if len(aac) <= hdrLen {
			return
		}
		buf := make([]byte, len(aac)-hdrLen)
		copy(buf, aac[hdrLen:])
		r.audioFrames = append(r.audioFrames, buf)
	})
}

// parseVideo strips parameter sets and AUDs out of the collected access
// units and converts the rest to length-prefixed form.
func (r *remuxer) parseVideo() []videoSample {
	samples := make([]videoSample, 0, len(r.videoFrames))
	for _, frame := range r.videoFrames {
		sample := videoSample{pts: frame.pts, dts: frame.dts}
		codec.SplitFrameWithStartCode(frame.data, func(nalu []byte) bool {
			switch codec.H264NaluType(nalu) {
			case codec.H264_NAL_AUD:
			case codec.H264_NAL_SPS:
				r.addSPS(nalu)
				if len(r.sps) == 1 {
					w, h := codec.GetH264Resolution(r.sps[0])
					r.log.Info().Uint32("width", w).Uint32("height", h).Msg("found h264 stream")
				}
			case codec.H264_NAL_PPS:
				r.addPPS(nalu)
			default:
				if codec.H264NaluType(nalu) == codec.H264_NAL_I_SLICE {
					sample.key = true
				}
				sample.data = append(sample.data, codec.ConvertAnnexBToAVCC(nalu)...)
			}
			return true
		})
		if len(sample.data) > 0 {
			samples = append(samples, sample)
		}
	}
	return samples
}

func (r *remuxer) addSPS(nalu []byte) {
	buf := make([]byte, len(nalu))
	copy(buf, nalu)
	for _, sps := range r.sps {
		if string(sps) == string(buf) {
			return
		}
	}
	r.sps = append(r.sps, buf)
}

func (r *remuxer) addPPS(nalu []byte) {
	buf := make([]byte, len(nalu))
	copy(buf, nalu)
	for _, pps := range r.pps {
		if string(pps) == string(buf) {
			return
		}
	}
	r.pps = append(r.pps, buf)
}

// stripStartCode drops the leading annex-b start code; parameter sets are
// stored raw inside avcC.
func stripStartCode(nalu []byte) []byte {
	start, sc := codec.FindStartCode(nalu, 0)
	return nalu[start+int(sc):]
}

func (r *remuxer) tracks() ([]*mp4.Track, error) {
	var tracks []*mp4.Track
	if len(r.sps) > 0 {
		width, height := codec.GetH264Resolution(r.sps[0])
		config := &mp4.AvcConfig{}
		for _, sps := range r.sps {
			config.SPS = append(config.SPS, stripStartCode(sps))
		}
		for _, pps := range r.pps {
			config.PPS = append(config.PPS, stripStartCode(pps))
		}
		// profile_idc, constraint flags and level_idc follow the NALU header
		if len(config.SPS[0]) >= 4 {
			config.Profile = config.SPS[0][1]
			config.ConstraintSetFlags = config.SPS[0][2]
			config.Level = config.SPS[0][3]
		}
		track, err := mp4.NewVideoTrack(videoTrackID, videoTimescale, width, height, config)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	if r.audioConfig != nil {
		track, err := mp4.NewAudioTrack(audioTrackID, r.audioConfig.SampleRate(), r.audioConfig)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// cutSegments groups video samples into keyframe-aligned windows of at
// least segDur milliseconds.
func cutSegments(samples []videoSample, segDur uint64) [][]videoSample {
	var segments [][]videoSample
	start := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].key && samples[i].dts-samples[start].dts >= segDur {
			segments = append(segments, samples[start:i])
			start = i
		}
	}
	if start < len(samples) {
		segments = append(segments, samples[start:])
	}
	return segments
}

func videoFragment(segment []videoSample, nextDts uint64, firstDts uint64) *mp4.TrackFragment {
	frag := &mp4.TrackFragment{
		TrackID:        videoTrackID,
		BaseDecodeTime: segment[0].dts - firstDts,
	}
	for i, sample := range segment {
		end := nextDts
		if i+1 < len(segment) {
			end = segment[i+1].dts
		}
		frag.Samples = append(frag.Samples, mp4.Sample{
			Duration:              uint32(end - sample.dts),
			Data:                  sample.data,
			IsSync:                sample.key,
			CompositionTimeOffset: int32(sample.pts - sample.dts),
		})
	}
	return frag
}

func audioFragment(frames [][]byte, firstFrame int) *mp4.TrackFragment {
	frag := &mp4.TrackFragment{
		TrackID:        audioTrackID,
		BaseDecodeTime: uint64(firstFrame) * aacFrameLength,
	}
	for _, data := range frames {
		frag.Samples = append(frag.Samples, mp4.Sample{
			Duration: aacFrameLength,
			Data:     data,
			IsSync:   true,
		})
	}
	return frag
}

func writeSegmentFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func run(log zerolog.Logger, input string, outDir string, segDur uint64) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	r := &remuxer{log: log}
	demuxer := mpeg2.NewTSDemuxer()
	demuxer.OnFrame = r.onFrame
	if err := demuxer.Input(f); err != nil {
		return fmt.Errorf("demux %s: %w", input, err)
	}

	samples := r.parseVideo()
	if len(samples) == 0 && len(r.audioFrames) == 0 {
		return fmt.Errorf("%s carries no h264 or aac stream", input)
	}
	tracks, err := r.tracks()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	muxer := mp4.NewMuxer(tracks...)
	initPath := filepath.Join(outDir, "init.mp4")
	err = writeSegmentFile(initPath, func(f *os.File) error {
		return muxer.WriteInitSegment(f, videoTimescale, uint32(time.Now().Unix()+2082844800))
	})
	if err != nil {
		return err
	}
	log.Info().Str("file", initPath).Msg("wrote init segment")

	var segments [][]videoSample
	if len(samples) > 0 {
		segments = cutSegments(samples, segDur)
	} else {
		// audio only: one segment per segDur worth of frames
		perSeg := int(segDur) * int(r.audioConfig.SampleRate()) / 1000 / aacFrameLength
		if perSeg == 0 {
			perSeg = 1
		}
		segments = make([][]videoSample, (len(r.audioFrames)+perSeg-1)/perSeg)
	}

	firstDts := uint64(0)
	endDts := uint64(0)
	if len(samples) > 0 {
		firstDts = samples[0].dts
		last := samples[len(samples)-1]
		endDts = last.dts + (last.dts-firstDts)/uint64(len(samples)) // mean duration as tail estimate
	}

	audioNext := 0
	for i, segment := range segments {
		var frags []*mp4.TrackFragment
		segEnd := endDts
		if len(segment) > 0 {
			if i+1 < len(segments) {
				segEnd = segments[i+1][0].dts
			}
			frags = append(frags, videoFragment(segment, segEnd, firstDts))
		}
		if len(r.audioFrames) > 0 {
			count := r.audioShare(segments, i, len(segment) > 0, segEnd, firstDts)
			if count > audioNext {
				frags = append(frags, audioFragment(r.audioFrames[audioNext:count], audioNext))
				audioNext = count
			}
		}
		if len(frags) == 0 {
			continue
		}

		segPath := filepath.Join(outDir, fmt.Sprintf("seg-%05d.m4s", i+1))
		err = writeSegmentFile(segPath, func(f *os.File) error {
			return muxer.WriteSegment(f, uint32(i+1), frags...)
		})
		if err != nil {
			return err
		}
		log.Info().Str("file", segPath).Int("fragments", len(frags)).Msg("wrote media segment")
	}
	return nil
}

// audioShare returns how many audio frames belong to the stream up to and
// including segment i.
func (r *remuxer) audioShare(segments [][]videoSample, i int, hasVideo bool, segEnd uint64, firstDts uint64) int {
	if !hasVideo {
		perSeg := len(r.audioFrames) / len(segments)
		if perSeg == 0 {
			perSeg = 1
		}
		count := (i + 1) * perSeg
		if i == len(segments)-1 || count > len(r.audioFrames) {
			count = len(r.audioFrames)
		}
		return count
	}
	// frames whose start lies before the segment end
	rate := r.audioConfig.SampleRate()
	count := int((segEnd - firstDts) * uint64(rate) / 1000 / aacFrameLength)
	if i == len(segments)-1 || count > len(r.audioFrames) {
		count = len(r.audioFrames)
	}
	return count
}

func main() {
	input := flag.String("i", "", "input MPEG-TS file")
	outDir := flag.String("o", "out", "output directory")
	segDur := flag.Uint64("d", 4000, "target segment duration in milliseconds")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(log, *input, *outDir, *segDur); err != nil {
		log.Fatal().Err(err).Msg("remux failed")
	}
}
