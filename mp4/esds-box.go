package mp4

import (
	"github.com/yapingcat/gomedia/go-codec"
)

// Class tags for the descriptors carried inside 'esds'
const (
	ES_DescrTag           = 0x03
	DecoderConfigDescrTag = 0x04
	DecSpecificInfoTag    = 0x05
	SLConfigDescrTag      = 0x06
)

// abstract aligned(8) expandable(2^28-1) class BaseDescriptor : bit(8) tag=0 {
// 	// empty. To be filled by classes extending this class.
// }
//
//  int sizeOfInstance = 0;
// 	bit(1) nextByte;
// 	bit(7) sizeOfInstance;
// 	while(nextByte) {
// 		bit(1) nextByte;
// 		bit(7) sizeByte;
// 		sizeOfInstance = sizeOfInstance<<7 | sizeByte;
// }

// makeBaseDescriptor emits the tag and a fixed four byte expandable length.
func makeBaseDescriptor(tag uint8, size uint32) []byte {
	bsw := codec.NewBitStreamWriter(5)
	bsw.PutByte(tag)
	bsw.PutUint8(1, 1)
	bsw.PutUint8(uint8(size>>21), 7)
	bsw.PutUint8(1, 1)
	bsw.PutUint8(uint8(size>>14), 7)
	bsw.PutUint8(1, 1)
	bsw.PutUint8(uint8(size>>7), 7)
	bsw.PutUint8(0, 1)
	bsw.PutUint8(uint8(size), 7)
	return bsw.Bits()
}

// AudioSpecificConfig per ISO/IEC 14496-3
//
// audioObjectType           5 bits
// samplingFrequencyIndex    4 bits
// channelConfiguration      4 bits
// frameLengthFlag           1 bit
// dependsOnCoreCoder        1 bit
// extensionFlag             1 bit
func makeAudioSpecificConfig(config *AacConfig) []byte {
	bsw := codec.NewBitStreamWriter(2)
	bsw.PutUint8(config.ObjectType, 5)
	bsw.PutUint8(config.SamplingFrequencyIndex, 4)
	bsw.PutUint8(config.ChannelConfiguration, 4)
	bsw.PutUint8(0, 3)
	return bsw.Bits()
}

// Box Type: 'esds'
// Container: MP4 Audio Sample Entry ('mp4a')
//
// class ES_Descriptor extends BaseDescriptor : bit(8) tag=ES_DescrTag {
//     bit(16) ES_ID;
//     bit(1) streamDependenceFlag;
//     bit(1) URL_Flag;
//     bit(1) OCRstreamFlag;
//     bit(5) streamPriority;
//     DecoderConfigDescriptor decConfigDescr;
//     SLConfigDescriptor slConfigDescr;
// }
func makeEsdsBox(config *AacConfig) *Leaf {
	asc := makeAudioSpecificConfig(config)

	decSpecific := makeBaseDescriptor(DecSpecificInfoTag, uint32(len(asc)))
	decSpecific = append(decSpecific, asc...)

	decConfig := make([]byte, 0, 32)
	decConfig = append(decConfig, makeBaseDescriptor(DecoderConfigDescrTag, uint32(13+len(decSpecific)))...)
	bsw := codec.NewBitStreamWriter(13)
	bsw.PutByte(0x40)     // objectTypeIndication: Audio ISO/IEC 14496-3
	bsw.PutUint8(0x05, 6) // streamType: AudioStream
	bsw.PutUint8(0, 1)    // upStream
	bsw.PutUint8(1, 1)    // reserved
	bsw.PutBytes(make([]byte, 11)) // bufferSizeDB, maxBitrate, avgBitrate
	decConfig = append(decConfig, bsw.Bits()...)
	decConfig = append(decConfig, decSpecific...)

	slConfig := makeBaseDescriptor(SLConfigDescrTag, 1)
	slConfig = append(slConfig, 0x02) // predefined: MP4

	esDescr := make([]byte, 0, 48)
	esDescr = append(esDescr, makeBaseDescriptor(ES_DescrTag, uint32(3+len(decConfig)+len(slConfig)))...)
	esDescr = append(esDescr, 0x00, 0x00) // ES_ID
	esDescr = append(esDescr, 0x00)       // no stream dependence, no URL, no OCR
	esDescr = append(esDescr, decConfig...)
	esDescr = append(esDescr, slConfig...)

	payload := fullBoxHeader(0, 0)
	payload = append(payload, esDescr...)
	return newLeaf([4]byte{'e', 's', 'd', 's'}, payload)
}
