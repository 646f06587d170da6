package utils

import "hash/fnv"

// HashStringToUint64 gives a stable 64-bit fingerprint of s, used to make
// sample and mock output deterministic per input.
func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
