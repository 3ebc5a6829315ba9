package mp4

// Box Type: 'hdlr'
// Container: Media Box ('mdia')
// Mandatory: Yes
// Quantity: Exactly one
//
// aligned(8) class HandlerBox extends FullBox('hdlr', version = 0, 0) {
//     unsigned int(32) pre_defined = 0;
//     unsigned int(32) handler_type;
//     const unsigned int(32)[3] reserved = 0;
//     string name;
// }
//
// handler_type is determined solely by the codec family:
// 'vide' for AVC tracks, 'soun' for AAC tracks.

func makeHdlrBox(track *Track) *Leaf {
	handler := "soun"
	name := "SoundHandler"
	if track.isVideo() {
		handler = "vide"
		name = "VideoHandler"
	}
	payload := make([]byte, 0, 25+len(name))
	payload = append(payload, fullBoxHeader(0, 0)...)
	payload = append(payload, 0, 0, 0, 0)
	payload = append(payload, handler...)
	payload = append(payload, make([]byte, 12)...)
	payload = append(payload, name...)
	payload = append(payload, 0) // null terminated
	return newLeaf([4]byte{'h', 'd', 'l', 'r'}, payload)
}
