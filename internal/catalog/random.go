package catalog

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"fishyday/internal/config"
)

// NewRand returns a deterministic PCG source for seed. A zero seed draws a
// fresh one from crypto/rand.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		var b [8]byte
		if _, err := crand.Read(b[:]); err == nil {
			seed = int64(binary.LittleEndian.Uint64(b[:]))
		}
	}
	// Non-cryptographic PRNG is intentional for reproducible draws.
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// RarityFor maps a uniform draw in [0,1) onto the cumulative rarity table.
func RarityFor(r float64, weights []config.RarityWeight) int {
	for _, w := range weights {
		if r < w.Cumulative {
			return w.Rarity
		}
	}
	return weights[len(weights)-1].Rarity
}

// RandomFish draws a rarity from config.RarityWeights and then picks a
// species uniformly within that rarity.
func RandomFish(rng *rand.Rand) Fish {
	rarity := RarityFor(rng.Float64(), config.RarityWeights)
	bucket := ByRarity(rarity)
	return bucket[rng.IntN(len(bucket))]
}
