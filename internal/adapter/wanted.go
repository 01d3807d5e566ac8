package adapter

import (
	"strconv"
	"time"

	"github.com/amishk599/jobscout/internal/crawler"
	"github.com/amishk599/jobscout/internal/model"
)

const wantedPostingURL = "https://www.wanted.co.kr/wd/"

// wanted reports an open-ended upper bound as a large annual_to.
const wantedOpenEnded = 100

var wantedEmploymentTypes = map[string]string{
	"regular":  "정규직",
	"contract": "계약직",
	"intern":   "인턴",
}

// Wanted converts a wanted listing.
func Wanted(raw crawler.WantedJob, crawledAt time.Time) model.JobPosting {
	id := strconv.FormatInt(raw.ID, 10)
	return model.JobPosting{
		ID:       model.JobID(model.SourceWanted, id),
		Source:   model.SourceWanted,
		Title:    raw.Position,
		Company:  raw.Company.Name,
		URL:      wantedPostingURL + id,
		ImageURL: raw.TitleImg.Thumb,
		Location: joinNonEmpty(raw.Address.Location, raw.Address.District),
		Requirements: &model.Requirements{
			Experience:     wantedExperience(raw.AnnualFrom, raw.AnnualTo),
			EmploymentType: wantedEmploymentType(raw.EmploymentType),
		},
		CrawledAt: crawledAt,
		RawData:   marshalRaw(raw),
	}
}

func wantedExperience(from, to int) string {
	switch {
	case from == 0 && to == 0:
		return entryLevel
	case to >= wantedOpenEnded:
		return strconv.Itoa(from) + "년 이상"
	default:
		return experienceRange(from, to)
	}
}

func wantedEmploymentType(code string) string {
	if label, ok := wantedEmploymentTypes[code]; ok {
		return label
	}
	return code
}
