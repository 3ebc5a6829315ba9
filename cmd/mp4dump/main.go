package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// mp4dump prints the box tree of an MP4 file, one line per box with its
// type and total size. Useful for eyeballing generated segments.

var containerTypes = map[string]bool{
	"moov": true,
	"trak": true,
	"mdia": true,
	"minf": true,
	"dinf": true,
	"stbl": true,
	"mvex": true,
	"moof": true,
	"traf": true,
	"edts": true,
	"udta": true,
	"mfra": true,
}

func dumpBoxes(data []byte, depth int) error {
	for len(data) > 0 {
		if len(data) < 8 {
			return fmt.Errorf("%d trailing bytes", len(data))
		}
		size := uint64(binary.BigEndian.Uint32(data))
		typ := string(data[4:8])
		hdr := uint64(8)
		if size == 1 {
			if len(data) < 16 {
				return fmt.Errorf("truncated largesize header in %q", typ)
			}
			size = binary.BigEndian.Uint64(data[8:])
			hdr = 16
		}
		if size < hdr || size > uint64(len(data)) {
			return fmt.Errorf("box %q has size %d with %d bytes left", typ, size, len(data))
		}
		fmt.Printf("%s[%s] size=%d\n", strings.Repeat("  ", depth), typ, size)
		if containerTypes[typ] {
			if err := dumpBoxes(data[hdr:size], depth+1); err != nil {
				return err
			}
		}
		data = data[size:]
	}
	return nil
}

func main() {
	flag.Parse()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s file.mp4 [file.m4s ...]\n", os.Args[0])
		os.Exit(2)
	}
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Msg("read failed")
		}
		fmt.Printf("%s (%d bytes)\n", path, len(data))
		if err := dumpBoxes(data, 1); err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("malformed box tree")
		}
	}
}
