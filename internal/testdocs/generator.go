// Package testdocs generates synthetic analytics exports shaped like the
// platform's real ones, for end-to-end runs and integration tests.
package testdocs

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/okian/persona/internal/domain/model"
)

// Wire shapes mirror the export format the parser consumes.
type exportDoc struct {
	AudienceFollowers struct {
		Data struct {
			AudienceGeo struct {
				Cities []exportCity `json:"cities"`
			} `json:"audience_geo"`
			AudienceGendersPerAge []exportAgeBand  `json:"audience_genders_per_age"`
			AudienceInterests     []exportInterest `json:"audience_interests"`
		} `json:"data"`
	} `json:"audience_followers"`
	UserProfile exportProfile `json:"user_profile"`
}

type exportCity struct {
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
	Country struct {
		Code string `json:"code"`
	} `json:"country"`
}

type exportAgeBand struct {
	Code   string  `json:"code"`
	Male   float64 `json:"male"`
	Female float64 `json:"female"`
}

type exportInterest struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type exportProfile struct {
	Username       string       `json:"username"`
	Fullname       string       `json:"fullname"`
	Followers      int64        `json:"followers"`
	AvgLikes       float64      `json:"avg_likes"`
	AvgComments    float64      `json:"avg_comments"`
	AvgReelsPlays  float64      `json:"avg_reels_plays"`
	EngagementRate float64      `json:"engagement_rate"`
	RecentPosts    []exportPost `json:"recent_posts"`
}

type exportPost struct {
	Stat struct {
		Likes    int64 `json:"likes"`
		Comments int64 `json:"comments"`
		Shares   int64 `json:"shares"`
	} `json:"stat"`
	Sponsor bool   `json:"sponsor"`
	Link    string `json:"link"`
}

// Generate builds cfg.NumInfluencers synthetic documents. Generation is
// deterministic for a given seed, so repeated pipeline runs over the same
// generated batch are comparable byte for byte.
func Generate(cfg *Config) []model.Document {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic seed for reproducible documents

	docs := make([]model.Document, 0, cfg.NumInfluencers)
	for i := 0; i < cfg.NumInfluencers; i++ {
		username := fmt.Sprintf("influencer%02d", i+1)
		name := fmt.Sprintf("report_%s.json", username)

		if cfg.MalformedEvery > 0 && (i+1)%cfg.MalformedEvery == 0 {
			docs = append(docs, model.Document{
				SourceName: name,
				Raw:        []byte("{ this is not json"),
			})
			continue
		}

		raw, err := json.Marshal(buildExport(rng, username, cfg.PostsPerProfile))
		if err != nil {
			// Marshaling fixed struct shapes cannot fail at runtime.
			panic(err)
		}
		docs = append(docs, model.Document{SourceName: name, Raw: raw})
	}
	return docs
}

// WriteFiles writes the documents into cfg.OutputDir, creating it if needed.
func WriteFiles(cfg *Config, docs []model.Document) error {
	if cfg.OutputDir == "" {
		return fmt.Errorf("output dir not configured")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}
	for _, doc := range docs {
		path := filepath.Join(cfg.OutputDir, doc.SourceName)
		if err := os.WriteFile(path, doc.Raw, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func buildExport(rng *rand.Rand, username string, posts int) *exportDoc {
	doc := &exportDoc{}

	pr := &doc.UserProfile
	pr.Username = username
	pr.Fullname = "Influencer " + username
	pr.Followers = 50_000 + rng.Int63n(2_000_000)
	pr.AvgLikes = float64(1_000 + rng.Intn(100_000))
	pr.AvgComments = float64(50 + rng.Intn(5_000))
	pr.AvgReelsPlays = float64(5_000 + rng.Intn(500_000))
	pr.EngagementRate = 0.005 + rng.Float64()*0.08

	// Cities: a random subset with weights that do NOT sum to 1, matching
	// the raw export quirk the normalizer exists for.
	nCities := 4 + rng.Intn(5)
	perm := rng.Perm(len(cityPool))
	for _, idx := range perm[:nCities] {
		c := exportCity{Name: cityPool[idx].name, Weight: 0.02 + rng.Float64()*0.3}
		c.Country.Code = cityPool[idx].country
		doc.AudienceFollowers.Data.AudienceGeo.Cities = append(doc.AudienceFollowers.Data.AudienceGeo.Cities, c)
	}

	// Age/gender bands covering the full pool, shares roughly balanced.
	for _, band := range bandPool {
		male := 0.05 + rng.Float64()*0.1
		doc.AudienceFollowers.Data.AudienceGendersPerAge = append(
			doc.AudienceFollowers.Data.AudienceGendersPerAge,
			exportAgeBand{Code: band, Male: male, Female: male * (0.8 + rng.Float64()*0.4)},
		)
	}

	nInterests := 6 + rng.Intn(4)
	iperm := rng.Perm(len(interestPool))
	for _, idx := range iperm[:nInterests] {
		doc.AudienceFollowers.Data.AudienceInterests = append(
			doc.AudienceFollowers.Data.AudienceInterests,
			exportInterest{Name: interestPool[idx], Weight: 0.05 + rng.Float64()*0.5},
		)
	}

	for i := 0; i < posts; i++ {
		// Name-based UUIDs keep post links stable across runs with the
		// same seed.
		postID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s/post/%d", username, i)))
		p := exportPost{
			Sponsor: rng.Intn(5) == 0,
			Link:    "https://example.com/p/" + postID.String(),
		}
		p.Stat.Likes = int64(500 + rng.Intn(50_000))
		p.Stat.Comments = int64(10 + rng.Intn(2_000))
		p.Stat.Shares = int64(rng.Intn(500))
		pr.RecentPosts = append(pr.RecentPosts, p)
	}

	return doc
}
