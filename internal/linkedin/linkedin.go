// Package linkedin validates LinkedIn profile URLs and supplies profile data
// for profile-improvement suggestions.
package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonathan/smart-resume/internal/types"
)

// SkippedMessage is reported when no usable profile URL was given.
const SkippedMessage = "Invalid LinkedIn URL or LinkedIn integration skipped."

// ProfileHost is the only host accepted for profile URLs.
const ProfileHost = "www.linkedin.com"

// IsValidProfileURL reports whether raw is an absolute URL on www.linkedin.com
// whose path starts with /in/.
func IsValidProfileURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host == ProfileHost && strings.HasPrefix(u.Path, "/in/")
}

// ProfileData is the subset of a public profile used for suggestions.
type ProfileData struct {
	Name       string                  `json:"name"`
	Skills     string                  `json:"skills"`
	Experience []types.ExperienceEntry `json:"experience"`
	Education  []types.EducationEntry  `json:"education"`
}

// String renders the profile as the text payload sent for suggestions.
func (p *ProfileData) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", p.Name)
	fmt.Fprintf(&sb, "Skills: %s\n", p.Skills)
	if len(p.Experience) > 0 {
		sb.WriteString("Experience:\n")
		for _, e := range p.Experience {
			fmt.Fprintf(&sb, "- %s at %s (%s): %s\n", e.Title, e.Company, e.Dates, e.Description)
		}
	}
	if len(p.Education) > 0 {
		sb.WriteString("Education:\n")
		for _, e := range p.Education {
			fmt.Fprintf(&sb, "- %s, %s (%s): %s\n", e.Degree, e.School, e.Dates, e.Description)
		}
	}
	return sb.String()
}

// Fetcher retrieves profile data for a validated profile URL.
type Fetcher interface {
	FetchProfile(ctx context.Context, profileURL string) (*ProfileData, error)
}

// StubFetcher returns a fixed example profile for every URL. It stands in for
// a real integration and must be injected explicitly.
type StubFetcher struct{}

// FetchProfile returns the example profile.
func (StubFetcher) FetchProfile(ctx context.Context, _ string) (*ProfileData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ProfileData{
		Name:   "John Doe (Example)",
		Skills: "Python, Data Analysis, Machine Learning",
		Experience: []types.ExperienceEntry{{
			Title:       "Data Scientist",
			Company:     "Example Corp",
			Dates:       "2020-Present",
			Description: "Built machine learning models.",
		}},
		Education: []types.EducationEntry{{
			Degree:      "Master's in CS",
			School:      "Example University",
			Dates:       "2018-2020",
			Description: "Focus on AI.",
		}},
	}, nil
}
