package testdocs

// Config controls synthetic export generation.
type Config struct {
	// NumInfluencers is how many documents to generate.
	NumInfluencers int

	// PostsPerProfile is how many recent posts each export carries.
	PostsPerProfile int

	// MalformedEvery injects one unparseable document every N documents.
	// Zero disables injection.
	MalformedEvery int

	// Seed makes generation deterministic for a given value.
	Seed int64

	// OutputDir is where WriteFiles puts the documents.
	OutputDir string
}

// DefaultConfig returns generation defaults usable in tests.
func DefaultConfig() *Config {
	return &Config{
		NumInfluencers:  10,
		PostsPerProfile: 12,
		Seed:            1,
	}
}
