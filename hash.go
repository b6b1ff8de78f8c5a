package shardring

import (
	"encoding/binary"
	"hash/fnv"
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// HashFunc maps a key to a signed 32-bit ring position.
// Implementations must be deterministic across processes: the same key always
// yields the same position, for virtual node names and lookup keys alike.
type HashFunc func(key string) int32

// Murmur3 hashes the UTF-16 code units of key (little-endian) with
// MurmurHash3 x86_32, seed 0, and reinterprets the result as signed.
// Invalid UTF-8 sequences are hashed as U+FFFD.
func Murmur3(key string) int32 {
	return int32(murmur3.Sum32(utf16LE(key)))
}

// XXHash hashes the UTF-8 bytes of key with xxHash64 and keeps the low 32 bits.
func XXHash(key string) int32 {
	return int32(uint32(xxhash.Sum64String(key)))
}

// FNV32a hashes the UTF-8 bytes of key with 32-bit FNV-1a.
var FNV32a = BytesHash(func(data []byte) uint32 {
	var h = fnv.New32a()
	h.Write(data)
	return h.Sum32()
})

// BytesHash adapts a byte-oriented 32-bit hash to a HashFunc over the UTF-8 bytes of the key.
func BytesHash(fn func(data []byte) uint32) HashFunc {
	return func(key string) int32 {
		return int32(fn([]byte(key)))
	}
}

func utf16LE(s string) []byte {
	var (
		units = utf16.Encode([]rune(s))
		buf   = make([]byte, 2*len(units))
	)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	return buf
}
