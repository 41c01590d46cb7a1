// Package parse validates raw analytics exports and extracts one
// InfluencerRecord per document. Missing branches degrade the record to
// partially populated; only unparseable payloads fail.
package parse

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/logger"
	"github.com/okian/persona/pkg/metrics"
)

// Wire shapes of the platform export. Pointer fields distinguish a missing
// branch from a present-but-zero one; post counts coerce nil to 0.
type document struct {
	AudienceFollowers *struct {
		Data *struct {
			AudienceGeo *struct {
				Cities []wireCity `json:"cities"`
			} `json:"audience_geo"`
			AudienceGendersPerAge []wireAgeBand  `json:"audience_genders_per_age"`
			AudienceInterests     []wireInterest `json:"audience_interests"`
		} `json:"data"`
	} `json:"audience_followers"`
	UserProfile *wireProfile `json:"user_profile"`
}

type wireCity struct {
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
	Country *struct {
		Code string `json:"code"`
	} `json:"country"`
}

type wireAgeBand struct {
	Code   string  `json:"code"`
	Male   float64 `json:"male"`
	Female float64 `json:"female"`
}

type wireInterest struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type wireProfile struct {
	Username        string            `json:"username"`
	Fullname        string            `json:"fullname"`
	Followers       int64             `json:"followers"`
	AvgLikes        float64           `json:"avg_likes"`
	AvgComments     float64           `json:"avg_comments"`
	AvgReelsPlays   float64           `json:"avg_reels_plays"`
	EngagementRate  float64           `json:"engagement_rate"`
	StatHistory     []wireMonthlyStat `json:"stat_history"`
	RecentPosts     []wirePost        `json:"recent_posts"`
	CommercialPosts []wirePost        `json:"commercial_posts"`
}

type wireMonthlyStat struct {
	Month     string  `json:"month"`
	Followers int64   `json:"followers"`
	AvgLikes  float64 `json:"avg_likes"`
}

type wirePost struct {
	Stat *struct {
		Likes    *int64 `json:"likes"`
		Comments *int64 `json:"comments"`
		Shares   *int64 `json:"shares"`
	} `json:"stat"`
	Sponsor bool   `json:"sponsor"`
	Image   string `json:"image"`
	Text    string `json:"text"`
	Link    string `json:"link"`
}

// Parser extracts InfluencerRecords from raw export documents.
type Parser struct {
	log logger.Logger
}

// NewParser creates a Parser. The global logger must be initialized.
func NewParser() *Parser {
	return &Parser{log: logger.Get().Named("parse")}
}

// Parse decodes one raw export. The profile id comes from the document's own
// user_profile.username when present; otherwise from a source name following
// the <prefix>_<profile_id>.json pattern; otherwise the source name without
// extension. When filename and username disagree, the username wins and the
// inconsistency is logged at warn level, not failed.
func (p *Parser) Parse(ctx context.Context, raw []byte, sourceName string) (*model.InfluencerRecord, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		metrics.RecordDocumentMalformed()
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, sourceName, err)
	}

	fileID := SourceProfileID(sourceName)
	rec := &model.InfluencerRecord{ProfileID: fileID}

	if doc.UserProfile != nil {
		pr := doc.UserProfile
		if pr.Username != "" {
			if fileID != "" && fileID != pr.Username {
				metrics.RecordProfileIDMismatch()
				p.log.Warn(ctx, "source name disagrees with embedded username",
					logger.String("source", sourceName),
					logger.String("file_id", fileID),
					logger.String("username", pr.Username),
				)
			}
			rec.ProfileID = pr.Username
		}
		rec.DisplayName = pr.Fullname
		rec.Stats = model.ProfileStats{
			Followers:      pr.Followers,
			AvgLikes:       pr.AvgLikes,
			AvgComments:    pr.AvgComments,
			AvgReelsPlays:  pr.AvgReelsPlays,
			EngagementRate: pr.EngagementRate,
		}
		for _, h := range pr.StatHistory {
			rec.Stats.History = append(rec.Stats.History, model.MonthlyStat{
				Month:     h.Month,
				Followers: h.Followers,
				AvgLikes:  h.AvgLikes,
			})
		}
		rec.RecentPosts = convertPosts(pr.RecentPosts)
		rec.CommercialPosts = convertPosts(pr.CommercialPosts)
	}

	if doc.AudienceFollowers != nil && doc.AudienceFollowers.Data != nil {
		data := doc.AudienceFollowers.Data
		if data.AudienceGeo != nil {
			for _, c := range data.AudienceGeo.Cities {
				city := model.CityWeight{Name: c.Name, Weight: c.Weight}
				if c.Country != nil {
					city.CountryCode = c.Country.Code
				}
				rec.Cities = append(rec.Cities, city)
			}
		}
		for _, b := range data.AudienceGendersPerAge {
			rec.AgeGender = append(rec.AgeGender, model.AgeGenderShare{
				Band:   b.Code,
				Male:   b.Male,
				Female: b.Female,
			})
		}
		for _, in := range data.AudienceInterests {
			rec.Interests = append(rec.Interests, model.Interest{Name: in.Name, Weight: in.Weight})
		}
	}

	if rec.ProfileID == "" {
		rec.ProfileID = strings.TrimSuffix(path.Base(sourceName), path.Ext(sourceName))
	}

	metrics.RecordDocumentParsed()
	return rec, nil
}

// SourceProfileID extracts the id from a <prefix>_<profile_id>.json name.
// Names without an underscore yield an empty id. Exposed so callers can key
// admission checks before the document is parsed.
func SourceProfileID(sourceName string) string {
	base := path.Base(sourceName)
	idx := strings.Index(base, "_")
	if idx < 0 {
		return ""
	}
	id := base[idx+1:]
	return strings.TrimSuffix(id, ".json")
}

func convertPosts(posts []wirePost) []model.Post {
	if len(posts) == 0 {
		return nil
	}
	out := make([]model.Post, len(posts))
	for i, p := range posts {
		post := model.Post{
			Sponsored: p.Sponsor,
			MediaURL:  p.Image,
			Text:      p.Text,
			Permalink: p.Link,
		}
		if p.Stat != nil {
			if p.Stat.Likes != nil {
				post.Likes = *p.Stat.Likes
			}
			if p.Stat.Comments != nil {
				post.Comments = *p.Stat.Comments
			}
			if p.Stat.Shares != nil {
				post.Shares = *p.Stat.Shares
			}
		}
		out[i] = post
	}
	return out
}
