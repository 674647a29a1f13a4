package luck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestHash_KnownValues(t *testing.T) {
	cases := map[string]uint64{
		"":            0xa98f501bc684162a,
		"a":           0xa98f501bc686b6eb,
		"hello":       0xa98f50309a6413c8,
		"userSecretA": 0x7c74f583a02122ac,
		"é":           0xa98f501bc686b663,
		"😀":           0xa98f501bc6cb03b7,
	}
	for in, want := range cases {
		assert.Equal(t, want, Hash(in), "Hash(%q)", in)
	}
}

func TestHash_EmptyIsSeedXORFinal(t *testing.T) {
	assert.Equal(t, hashSeed^hashFinalXOR, Hash(""))
}

// Property: Hash is a pure function of its input.
func TestPropertyHash_Deterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.String().Draw(rt, "s")
		if Hash(s) != Hash(s) {
			rt.Fatalf("Hash(%q) is not deterministic", s)
		}
	})
}

func TestHash_SupplementaryCharactersFoldAsSurrogatePair(t *testing.T) {
	h := hashSeed
	for _, unit := range []uint64{0xD83D, 0xDE00} {
		h = (h << 5) ^ h ^ unit
	}
	assert.Equal(t, h^hashFinalXOR, Hash("😀"))
}

func TestHash_InvalidBytesStayDistinct(t *testing.T) {
	assert.Equal(t, uint64(0xa98f501bc6866a75), Hash("\xff"))
	assert.Equal(t, uint64(0xa98f501bc6866a74), Hash("\xfe"))
	assert.NotEqual(t, Hash("\xff"), Hash("\xfe"))
	assert.NotEqual(t, Hash("\xff"), Hash("\uFFFD"))

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 13, Score("a\xff", "", day))
	assert.Equal(t, 85, Score("a\xfe", "", day))
}
