// Command gen-docs writes a directory of synthetic analytics exports for
// exercising the pipeline end to end.
package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/okian/persona/internal/testdocs"
)

// Default generation constants.
const (
	defaultNumInfluencers  = 10
	defaultPostsPerProfile = 12
	defaultSeed            = 1
)

func main() {
	var (
		num       = flag.Int("n", defaultNumInfluencers, "Number of influencer documents to generate")
		posts     = flag.Int("posts", defaultPostsPerProfile, "Recent posts per profile")
		malformed = flag.Int("malformed-every", 0, "Inject one malformed document every N (0 disables)")
		seed      = flag.Int64("seed", defaultSeed, "Random seed for deterministic output")
		outDir    = flag.String("out", "testdata/exports", "Output directory")
	)
	flag.Parse()

	cfg := &testdocs.Config{
		NumInfluencers:  *num,
		PostsPerProfile: *posts,
		MalformedEvery:  *malformed,
		Seed:            *seed,
		OutputDir:       *outDir,
	}

	docs := testdocs.Generate(cfg)
	if err := testdocs.WriteFiles(cfg, docs); err != nil {
		os.Stderr.WriteString("failed to write documents: " + err.Error() + "\n")
		os.Exit(1)
	}

	os.Stdout.WriteString("wrote " + strconv.Itoa(len(docs)) + " documents to " + cfg.OutputDir + "\n")
}
