package mp4

import "encoding/binary"

// Box Type: 'ftyp'
// Mandatory: Yes
// Quantity: Exactly one
//
// aligned(8) class FileTypeBox extends Box('ftyp') {
//     unsigned int(32) major_brand;
//     unsigned int(32) minor_version;
//     unsigned int(32) compatible_brands[];
// }

// iso5 and iso6 cover the default-base-is-moof addressing the media
// segments rely on; avc1/mp41 keep legacy players happy.
var compatibleBrands = [][4]byte{
	{'i', 's', 'o', 'm'},
	{'i', 's', 'o', '5'},
	{'i', 's', 'o', '6'},
	{'a', 'v', 'c', '1'},
	{'m', 'p', '4', '1'},
}

func makeFtypBox() *Leaf {
	payload := make([]byte, 8+4*len(compatibleBrands))
	copy(payload[0:4], "isom")
	binary.BigEndian.PutUint32(payload[4:], 0x200)
	for i, brand := range compatibleBrands {
		copy(payload[8+4*i:], brand[:])
	}
	return newLeaf([4]byte{'f', 't', 'y', 'p'}, payload)
}
