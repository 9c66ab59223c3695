package sensitivity

// seededSource is a small deterministic PRNG (splitmix64) implementing
// golang.org/x/exp/rand's Source interface (Uint64/Seed), which is what
// gonum/stat/distuv's Src field expects. Monte Carlo batches stay
// reproducible across runs without sharing mutable state between
// concurrent workers.
type seededSource struct {
	state uint64
}

func newSeededSource(seed uint64) *seededSource {
	return &seededSource{state: seed + 0x9E3779B97F4A7C15}
}

func (s *seededSource) Uint64() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (s *seededSource) Seed(seed uint64) {
	s.state = seed + 0x9E3779B97F4A7C15
}
