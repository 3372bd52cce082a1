package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPieceBagIsDeterministicForSameSeed(t *testing.T) {
	a := NewPieceBag(42)
	b := NewPieceBag(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.At(i), b.At(i))
	}
}

func TestPieceBagDiffersAcrossSeeds(t *testing.T) {
	a := NewPieceBag(1)
	b := NewPieceBag(2)
	diff := false
	for i := 0; i < 14; i++ {
		if a.At(i) != b.At(i) {
			diff = true
			break
		}
	}
	assert.True(t, diff, "two different seeds should not produce identical sequences")
}

func TestPieceBagEachBagIsAPermutation(t *testing.T) {
	bag := NewPieceBag(7)
	for bagIdx := 0; bagIdx < 5; bagIdx++ {
		seen := make(map[Kind]bool)
		for offset := 0; offset < 7; offset++ {
			seen[bag.At(bagIdx*7+offset)] = true
		}
		assert.Len(t, seen, 7, "bag %d should contain every kind exactly once", bagIdx)
	}
}

func TestPieceBagAtIsStableAcrossCalls(t *testing.T) {
	bag := NewPieceBag(99)
	first := bag.At(10)
	second := bag.At(10)
	assert.Equal(t, first, second)
}
