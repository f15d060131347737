package repository

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithMetricsEnabled toggles Prometheus instrumentation on store
// operations. Disabled in benchmarks and some tests.
func WithMetricsEnabled(enabled bool) Option {
	return func(s *MemStore) {
		s.metricsEnabled = enabled
	}
}
