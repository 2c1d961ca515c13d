package ddb

import "github.com/klauspost/compress/zstd"

const encodingZstd = "zstd"

var enc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
var dec, _ = zstd.NewReader(nil)

// compress zstd-encodes a slot value for storage as a binary attribute.
func compress(s string) []byte {
	return enc.EncodeAll([]byte(s), make([]byte, 0, len(s)))
}

func decompress(b []byte) (string, error) {
	out, err := dec.DecodeAll(b, nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
