package mp4

import "encoding/binary"

// Box Type: 'trun'
// Container: Track Fragment Box ('traf')
// Mandatory: No
// Quantity: Zero or more
//
// aligned(8) class TrackRunBox extends FullBox('trun', version, tr_flags) {
//     unsigned int(32) sample_count;
//     // the following are optional fields
//     signed int(32) data_offset;
//     unsigned int(32) first_sample_flags;
//     // all fields in the following array are optional
//     {
//         unsigned int(32) sample_duration;
//         unsigned int(32) sample_size;
//         unsigned int(32) sample_flags;
//         if (version == 0) {
//             unsigned int(32) sample_composition_time_offset;
//         } else {
//             signed int(32) sample_composition_time_offset;
//         }
//     }[ sample_count ]
// }

const (
	trunDataOffsetPresent       = 0x000001
	trunFirstSampleFlagsPresent = 0x000004
	trunSampleDurationPresent   = 0x000100
	trunSampleSizePresent       = 0x000200
	trunSampleFlagsPresent      = 0x000400
	trunSampleCtsOffsetPresent  = 0x000800
)

// Sample dependency flags used in 'trun' entries and 'trex' defaults.
const (
	SampleFlagsSync    = 0x02000000 // sample_depends_on = 2
	SampleFlagsNonSync = 0x01010000 // sample_depends_on = 1, non-sync bit set
)

// makeTrunBox emits a version 1 run with a zero data_offset. The final
// offset depends on the size of the finished 'moof' and is patched in by
// the segment builder.
func makeTrunBox(frag *TrackFragment) *Leaf {
	flags := uint32(trunDataOffsetPresent | trunSampleDurationPresent | trunSampleSizePresent | trunSampleFlagsPresent)
	perSample := 12
	if fragmentHasCtsOffsets(frag) {
		flags |= trunSampleCtsOffsetPresent
		perSample += 4
	}

	payload := make([]byte, 0, 12+perSample*len(frag.Samples))
	payload = append(payload, fullBoxHeader(1, flags)...)
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(frag.Samples)))
	payload = binary.BigEndian.AppendUint32(payload, 0) // data_offset, patched later
	for i := range frag.Samples {
		sample := &frag.Samples[i]
		payload = binary.BigEndian.AppendUint32(payload, sample.Duration)
		payload = binary.BigEndian.AppendUint32(payload, uint32(len(sample.Data)))
		if sample.IsSync {
			payload = binary.BigEndian.AppendUint32(payload, SampleFlagsSync)
		} else {
			payload = binary.BigEndian.AppendUint32(payload, SampleFlagsNonSync)
		}
		if flags&trunSampleCtsOffsetPresent != 0 {
			payload = binary.BigEndian.AppendUint32(payload, uint32(sample.CompositionTimeOffset))
		}
	}
	return newLeaf([4]byte{'t', 'r', 'u', 'n'}, payload)
}

func fragmentHasCtsOffsets(frag *TrackFragment) bool {
	for i := range frag.Samples {
		if frag.Samples[i].CompositionTimeOffset != 0 {
			return true
		}
	}
	return false
}

func patchTrunDataOffset(trun *Leaf, dataOffset int32) {
	binary.BigEndian.PutUint32(trun.payload[8:], uint32(dataOffset))
}
