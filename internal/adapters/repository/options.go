package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacityEnforcement rejects signups once a roster holds MaxParticipants.
// Capacity is informational when disabled.
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *MemoryStore) {
		s.enforceCapacity = enabled
	}
}
