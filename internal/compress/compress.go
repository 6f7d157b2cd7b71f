// Package compress frames cluster-state documents in a self-describing,
// checksummed envelope with optional LZ4 or ZSTD block compression.
//
// Envelope layout (little endian):
//
//	[magic "KNNS"][format u8][type u8][reserved u16]
//	[uncompressed size u32][compressed size u32, 0 = raw][crc32c u32 of uncompressed data]
//	[data...]
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/knnspace/internal/hash"
)

// Type defines the compression algorithm used.
type Type uint8

const (
	// None stores data uncompressed.
	None Type = 0
	// LZ4 is fast block compression.
	LZ4 Type = 1
	// ZSTD trades speed for a better ratio.
	ZSTD Type = 2
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseType parses a compression name. An empty name means None.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("unknown compression %q", s)
	}
}

const (
	formatVersion = 1
	headerSize    = 20
)

var magic = [4]byte{'K', 'N', 'N', 'S'}

var (
	// ErrCorrupt is returned when an envelope fails structural or checksum validation.
	ErrCorrupt = errors.New("corrupt envelope")

	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode wraps data in an envelope, compressing it with t when that saves
// more than 10%.
func Encode(data []byte, t Type) ([]byte, error) {
	var compressed []byte
	switch t {
	case None:
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		compressed = buf[:n]
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("unknown compression type %d", t)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		t = None
		compressed = nil
	}

	payload := data
	if compressed != nil {
		payload = compressed
	}

	out := make([]byte, headerSize+len(payload))
	copy(out[0:4], magic[:])
	out[4] = formatVersion
	out[5] = byte(t)
	binary.LittleEndian.PutUint32(out[8:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[12:], uint32(len(compressed)))
	binary.LittleEndian.PutUint32(out[16:], hash.CRC32C(data))
	copy(out[headerSize:], payload)
	return out, nil
}

// Decode validates an envelope and returns the original data.
func Decode(env []byte) ([]byte, error) {
	if len(env) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(env))
	}
	if [4]byte(env[0:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if env[4] != formatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, env[4])
	}

	t := Type(env[5])
	uncompressedSize := binary.LittleEndian.Uint32(env[8:])
	compressedSize := binary.LittleEndian.Uint32(env[12:])
	checksum := binary.LittleEndian.Uint32(env[16:])
	body := env[headerSize:]

	var data []byte
	if compressedSize == 0 {
		if uint32(len(body)) != uncompressedSize {
			return nil, fmt.Errorf("%w: raw size mismatch", ErrCorrupt)
		}
		data = body
	} else {
		if uint32(len(body)) != compressedSize {
			return nil, fmt.Errorf("%w: compressed size mismatch", ErrCorrupt)
		}
		out := make([]byte, uncompressedSize)
		switch t {
		case LZ4:
			n, err := lz4.UncompressBlock(body, out)
			if err != nil {
				return nil, fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
			}
			out = out[:n]
		case ZSTD:
			dec := getZstdDecoder()
			decoded, err := dec.DecodeAll(body, out[:0])
			zstdDecoderPool.Put(dec)
			if err != nil {
				return nil, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
			}
			out = decoded
		default:
			return nil, fmt.Errorf("%w: unknown compression type %d", ErrCorrupt, t)
		}
		if uint32(len(out)) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		data = out
	}

	if !hash.Verify(data, checksum) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return data, nil
}
