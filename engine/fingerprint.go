package engine

import "fmt"

const fingerprintMix = 0x9e3779b9

// CombineHash folds value into hash.
func CombineHash(hash, value uint64) uint64 {
	hash ^= value + fingerprintMix + (hash << 6) + (hash >> 2)
	return hash
}

func fold(hash uint64, v int) uint64 {
	return CombineHash(hash, uint64(int64(v)))
}

// Fingerprint hashes the logical battle state: every active dish sorted by
// side, slot and id, followed by the outstanding trigger queue length.
func (s *Session) Fingerprint() uint64 {
	var hash uint64
	for _, d := range s.activeDishes() {
		served := 0
		if d.OnServeFired {
			served = 1
		}
		for _, v := range []int{
			d.ID,
			s.dishTypeIndex(d.Type),
			d.Level,
			int(d.Side),
			d.Slot,
			int(d.Phase),
			served,
			d.BaseZing,
			d.BaseBody,
			d.CurrentZing,
			d.CurrentBody,
			d.PairingZing,
			d.PairingBody,
			d.PersistZing,
			d.PersistBody,
		} {
			hash = fold(hash, v)
		}
	}
	return fold(hash, s.queue.Len())
}

// Checksum is the fingerprint as 16 lowercase hex digits.
func (s *Session) Checksum() string {
	return fmt.Sprintf("%016x", s.Fingerprint())
}

// dishTypeIndex maps a catalog key to its position in the sorted key list,
// which is stable for a given catalog.
func (s *Session) dishTypeIndex(key string) int {
	for i, k := range s.catalog.keys {
		if k == key {
			return i
		}
	}
	return -1
}
