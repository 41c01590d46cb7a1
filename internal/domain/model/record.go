// Package model contains domain models passed between pipeline stages.
package model

// Document is one raw uploaded export as handed to the pipeline: an opaque
// byte payload plus the name it arrived under.
type Document struct {
	SourceName string
	Raw        []byte

	// Batch is the generation the document was admitted under. Workers
	// draining leftovers of an abandoned batch carry a stale generation,
	// which keeps them out of the next session's results.
	Batch uint64
}

// CityWeight is a raw platform-reported audience share for one city.
// Weights need not sum to 1 as received; normalization happens downstream.
type CityWeight struct {
	Name        string
	Weight      float64
	CountryCode string
}

// AgeGenderShare is a raw audience split for one age band.
type AgeGenderShare struct {
	Band   string  // age-band code, e.g. "18-24"
	Male   float64 // share in [0,1]
	Female float64 // share in [0,1]
}

// Interest is a raw audience interest with its share.
type Interest struct {
	Name   string
	Weight float64
}

// Post captures the engagement counts of one published post.
type Post struct {
	Likes     int64
	Comments  int64
	Shares    int64
	Sponsored bool
	MediaURL  string
	Text      string
	Permalink string
}

// MonthlyStat is one entry of the profile's monthly history.
type MonthlyStat struct {
	Month     string // "2024-03"
	Followers int64
	AvgLikes  float64
}

// ProfileStats holds headline profile metrics from the export.
type ProfileStats struct {
	Followers      int64
	AvgLikes       float64
	AvgComments    float64
	AvgReelsPlays  float64
	EngagementRate float64
	History        []MonthlyStat
}

// InfluencerRecord is one parsed analytics export. Any of the audience
// branches may be empty when the export lacks that section.
type InfluencerRecord struct {
	ProfileID   string // unique key for the batch
	DisplayName string

	Cities          []CityWeight
	AgeGender       []AgeGenderShare
	Interests       []Interest
	Stats           ProfileStats
	RecentPosts     []Post
	CommercialPosts []Post
}
