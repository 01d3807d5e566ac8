package adapter

import (
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/crawler"
	"github.com/amishk599/jobscout/internal/model"
)

const jumpitPostingURL = "https://jumpit.saramin.co.kr/position/"

// Jumpit converts a jumpit position, preferring a Seoul location when it has several.
func Jumpit(raw crawler.JumpitPosition, crawledAt time.Time) model.JobPosting {
	id := strconv.FormatInt(raw.ID, 10)
	return model.JobPosting{
		ID:       model.JobID(model.SourceJumpit, id),
		Source:   model.SourceJumpit,
		Title:    raw.Title,
		Company:  raw.CompanyName,
		URL:      jumpitPostingURL + id,
		ImageURL: raw.Logo,
		Location: jumpitLocation(raw.Locations),
		Requirements: &model.Requirements{
			Experience: jumpitExperience(raw.Newcomer, raw.MinCareer, raw.MaxCareer),
		},
		CrawledAt: crawledAt,
		RawData:   marshalRaw(raw),
	}
}

func jumpitLocation(locations []string) string {
	for _, loc := range locations {
		if strings.HasPrefix(loc, "서울") {
			return loc
		}
	}
	if len(locations) > 0 {
		return locations[0]
	}
	return ""
}

func jumpitExperience(newcomer bool, minCareer, maxCareer int) string {
	if newcomer && minCareer == 0 {
		return entryLevel
	}
	return experienceRange(minCareer, maxCareer)
}
