package tetris

import "math/rand"

// PieceBag is the deterministic, shared piece stream for one room. Every
// player in a room reads from the same bag, indexed by position, so two
// players observe the same sequence of kinds regardless of how quickly
// either of them advances their own cursor (spec.md §4.3).
//
// Kinds are produced in "bags" of seven, one permutation of AllKinds per
// bag, generated with a Fisher-Yates shuffle seeded from the room seed
// combined with the bag's index. Bags are generated lazily and cached,
// so At is cheap to call repeatedly for the same index.
type PieceBag struct {
	seed int64
	bags map[int][7]Kind
}

// NewPieceBag returns a bag stream rooted at seed. The same seed always
// produces the same infinite sequence of kinds.
func NewPieceBag(seed int64) *PieceBag {
	return &PieceBag{
		seed: seed,
		bags: make(map[int][7]Kind),
	}
}

// At returns the kind at position index (0-based) in the stream.
func (pb *PieceBag) At(index int) Kind {
	bagIndex := index / 7
	offset := index % 7
	bag, ok := pb.bags[bagIndex]
	if !ok {
		bag = pb.generateBag(bagIndex)
		pb.bags[bagIndex] = bag
	}
	return bag[offset]
}

// generateBag builds the permutation for bagIndex by shuffling AllKinds
// with a generator seeded from this bag's own seed, so regenerating the
// same bagIndex (e.g. after a cache eviction) always yields the same
// permutation.
func (pb *PieceBag) generateBag(bagIndex int) [7]Kind {
	bag := AllKinds
	r := rand.New(rand.NewSource(combineSeed(pb.seed, bagIndex)))
	r.Shuffle(len(bag), func(i, j int) {
		bag[i], bag[j] = bag[j], bag[i]
	})
	return bag
}

// combineSeed folds a bag index into the room seed. This uses a simple
// splitmix-style mix so adjacent bag indices don't produce correlated
// shuffles from math/rand's linear source.
func combineSeed(seed int64, bagIndex int) int64 {
	x := uint64(seed) + uint64(bagIndex)*0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x = x ^ (x >> 31)
	return int64(x)
}
