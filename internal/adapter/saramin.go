package adapter

import (
	"time"

	"github.com/amishk599/jobscout/internal/crawler"
	"github.com/amishk599/jobscout/internal/model"
)

// Saramin converts a scraped saramin listing. Condition texts pass through as scraped.
func Saramin(raw crawler.SaraminJob, crawledAt time.Time) model.JobPosting {
	return model.JobPosting{
		ID:       model.JobID(model.SourceSaramin, raw.ID),
		Source:   model.SourceSaramin,
		Title:    raw.Title,
		Company:  raw.Company,
		URL:      raw.URL,
		Location: raw.Location,
		Requirements: &model.Requirements{
			Experience:     raw.Experience,
			Education:      raw.Education,
			EmploymentType: raw.EmploymentType,
		},
		CrawledAt: crawledAt,
		RawData:   marshalRaw(raw),
	}
}
