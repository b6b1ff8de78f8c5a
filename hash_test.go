package shardring

import (
	"testing"

	"github.com/spaolacci/murmur3"
	"github.com/stretchr/testify/assert"
)

func TestMurmur3(t *testing.T) {
	t.Run("should produce known positions", func(t *testing.T) {
		var cases = map[string]int32{
			"":                 0,
			"a":                1867108634,
			"hello":            -675079799,
			"VIRTUAL-0-NODE-0": 874542296,
			"VIRTUAL-1-NODE-0": 659454660,
			"中文":               -819122266,
			"😀":                1443257913,
		}

		for key, want := range cases {
			assert.Equal(t, want, Murmur3(key), "key %q", key)
		}
	})

	t.Run("should hash code units rather than UTF-8 bytes", func(t *testing.T) {
		var (
			utf8Hash = int32(murmur3.Sum32([]byte("hello")))
			unitHash = int32(murmur3.Sum32([]byte{'h', 0, 'e', 0, 'l', 0, 'l', 0, 'o', 0}))
		)

		assert.NotEqual(t, utf8Hash, Murmur3("hello"))
		assert.Equal(t, unitHash, Murmur3("hello"))
	})

	t.Run("should treat invalid UTF-8 as the replacement character", func(t *testing.T) {
		assert.Equal(t, Murmur3("\uFFFD"), Murmur3("\xff"))
	})
}

func TestAlternateHashes(t *testing.T) {
	t.Run("xxhash is deterministic", func(t *testing.T) {
		assert.Equal(t, XXHash("user:42"), XXHash("user:42"))
		assert.NotEqual(t, XXHash("user:42"), XXHash("user:43"))
	})

	t.Run("fnv32a matches the offset basis for empty input", func(t *testing.T) {
		assert.Equal(t, int32(-2128831035), FNV32a(""))
	})

	t.Run("bytes hash sees the UTF-8 encoding", func(t *testing.T) {
		var sut = BytesHash(func(data []byte) uint32 {
			return uint32(len(data))
		})

		assert.Equal(t, int32(6), sut("héllo"))
	})

	t.Run("bytes hash reinterprets the high bit as sign", func(t *testing.T) {
		var sut = BytesHash(func([]byte) uint32 {
			return 0xFFFFFFFF
		})

		assert.Equal(t, int32(-1), sut("any"))
	})
}
