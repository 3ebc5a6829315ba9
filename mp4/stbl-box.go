package mp4

import "encoding/binary"

// The media information tree for a fragmented stream. The legacy sample
// tables (stts/stsc/stsz/stco) must all be present with zero entries; the
// real sample data lives in the moof/mdat pairs.

func makeMinfBox(track *Track) (*Container, error) {
	stsd, err := makeStsdBox(track)
	if err != nil {
		return nil, err
	}
	stbl := newContainer([4]byte{'s', 't', 'b', 'l'},
		stsd,
		makeSttsBox(),
		makeStscBox(),
		makeStszBox(),
		makeStcoBox(),
	)
	var mediaHeader *Leaf
	if track.isVideo() {
		mediaHeader = makeVmhdBox()
	} else {
		mediaHeader = makeSmhdBox()
	}
	return newContainer([4]byte{'m', 'i', 'n', 'f'}, mediaHeader, makeDinfBox(), stbl), nil
}

// aligned(8) class VideoMediaHeaderBox extends FullBox('vmhd', version = 0, 1) {
//     template unsigned int(16) graphicsmode = 0;
//     template unsigned int(16)[3] opcolor = {0, 0, 0};
// }
func makeVmhdBox() *Leaf {
	return newLeaf([4]byte{'v', 'm', 'h', 'd'}, append(fullBoxHeader(0, 1), make([]byte, 8)...))
}

// aligned(8) class SoundMediaHeaderBox extends FullBox('smhd', version = 0, 0) {
//     template int(16) balance = 0;
//     const unsigned int(16) reserved = 0;
// }
func makeSmhdBox() *Leaf {
	return newLeaf([4]byte{'s', 'm', 'h', 'd'}, append(fullBoxHeader(0, 0), make([]byte, 4)...))
}

// dinf wraps a dref with a single self-contained 'url ' entry.
func makeDinfBox() *Container {
	url := newLeaf([4]byte{'u', 'r', 'l', ' '}, fullBoxHeader(0, 0x000001))
	drefPayload := append(fullBoxHeader(0, 0), 0, 0, 0, 1) // entry_count
	drefPayload = append(drefPayload, EncodeBox(url)...)
	dref := newLeaf([4]byte{'d', 'r', 'e', 'f'}, drefPayload)
	return newContainer([4]byte{'d', 'i', 'n', 'f'}, dref)
}

func makeSttsBox() *Leaf {
	return newLeaf([4]byte{'s', 't', 't', 's'}, append(fullBoxHeader(0, 0), 0, 0, 0, 0))
}

func makeStscBox() *Leaf {
	return newLeaf([4]byte{'s', 't', 's', 'c'}, append(fullBoxHeader(0, 0), 0, 0, 0, 0))
}

// stsz carries both sample_size and sample_count.
func makeStszBox() *Leaf {
	return newLeaf([4]byte{'s', 't', 's', 'z'}, append(fullBoxHeader(0, 0), make([]byte, 8)...))
}

func makeStcoBox() *Leaf {
	return newLeaf([4]byte{'s', 't', 'c', 'o'}, append(fullBoxHeader(0, 0), 0, 0, 0, 0))
}

// aligned(8) class SampleDescriptionBox extends FullBox('stsd', 0, 0) {
//     int i;
//     unsigned int(32) entry_count;
//     for (i = 1; i <= entry_count; i++) {
//         SampleEntry();
//     }
// }
func makeStsdBox(track *Track) (*Leaf, error) {
	entry, err := makeSampleEntry(track)
	if err != nil {
		return nil, err
	}
	payload := append(fullBoxHeader(0, 0), make([]byte, 4)...)
	binary.BigEndian.PutUint32(payload[4:], 1)
	payload = append(payload, EncodeBox(entry)...)
	return newLeaf([4]byte{'s', 't', 's', 'd'}, payload), nil
}
