package ingestion

import (
	"errors"
	"io"
	"os"

	"github.com/jonathan/skill-matcher/internal/types"
)

// Header aliases accepted for each posting column.
var (
	postingIDAliases   = []string{"posting_id", "system_job_id", "job_id", "research_id", "id"}
	titleAliases       = []string{"title", "job_title"}
	descriptionAliases = []string{"description", "job_description"}
	educationAliases   = []string{"requirements_min_education", "min_education"}
	experienceAliases  = []string{"requirements_experience", "experience"}
	onetAliases        = []string{"classifications_onet_code", "onet_code"}
	mocAliases         = []string{"moc_codes", "moc_code"}
	cityAliases        = []string{"city", "location_city"}
	companyAliases     = []string{"application_company", "company"}
	linkAliases        = []string{"link", "url", "application_url"}
	salaryMinAliases   = []string{"salary_min", "parameters_salary_min"}
	salaryMaxAliases   = []string{"salary_max", "parameters_salary_max"}
	salaryUnitAliases  = []string{"salary_unit", "parameters_salary_unit"}
	ghostAliases       = []string{"ghostjob", "ghost_job"}
)

// Header aliases accepted for each taxonomy column.
var (
	taxonomyIDAliases     = []string{"research_id", "posting_id", "system_job_id"}
	rawSkillAliases       = []string{"raw_skill"}
	taxonomySkillAliases  = []string{"taxonomy_skill", "canonical_skill"}
	taxonomySourceAliases = []string{"taxonomy_source", "source"}
	correlationAliases    = []string{"correlation_coefficient", "correlation", "confidence"}
)

// ReadPostings parses a posting table. Descriptions are flattened from HTML.
func ReadPostings(r io.Reader) ([]types.Posting, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, &LoadError{Message: "malformed posting table", Cause: err}
	}

	var (
		id     = t.column(postingIDAliases...)
		title  = t.column(titleAliases...)
		desc   = t.column(descriptionAliases...)
		edu    = t.column(educationAliases...)
		exp    = t.column(experienceAliases...)
		onet   = t.column(onetAliases...)
		moc    = t.column(mocAliases...)
		city   = t.column(cityAliases...)
		comp   = t.column(companyAliases...)
		link   = t.column(linkAliases...)
		minSal = t.column(salaryMinAliases...)
		maxSal = t.column(salaryMaxAliases...)
		unit   = t.column(salaryUnitAliases...)
		ghost  = t.column(ghostAliases...)
	)

	postings := make([]types.Posting, 0, len(t.rows))
	for _, row := range t.rows {
		postings = append(postings, types.Posting{
			ID:             cell(row, id),
			Title:          cell(row, title),
			Description:    CleanDescription(cell(row, desc)),
			MinEducation:   cell(row, edu),
			ExperienceText: cell(row, exp),
			OnetCode:       cell(row, onet),
			MOCCodes:       cell(row, moc),
			City:           cell(row, city),
			Company:        cell(row, comp),
			Link:           cell(row, link),
			SalaryMin:      ParseNumber(cell(row, minSal)),
			SalaryMax:      ParseNumber(cell(row, maxSal)),
			SalaryUnit:     cell(row, unit),
			GhostJob:       ParseBool(cell(row, ghost)),
		})
	}
	return postings, nil
}

// ReadTaxonomy parses a taxonomy feed.
func ReadTaxonomy(r io.Reader) ([]types.TaxonomyEntry, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, &LoadError{Message: "malformed taxonomy feed", Cause: err}
	}

	var (
		id     = t.column(taxonomyIDAliases...)
		raw    = t.column(rawSkillAliases...)
		skill  = t.column(taxonomySkillAliases...)
		source = t.column(taxonomySourceAliases...)
		corr   = t.column(correlationAliases...)
	)

	entries := make([]types.TaxonomyEntry, 0, len(t.rows))
	for _, row := range t.rows {
		entries = append(entries, types.TaxonomyEntry{
			PostingID:     cell(row, id),
			RawSkill:      cell(row, raw),
			TaxonomySkill: cell(row, skill),
			Source:        cell(row, source),
			Correlation:   ParseNumber(cell(row, corr)),
		})
	}
	return entries, nil
}

// LoadPostings reads the posting table at path.
func LoadPostings(path string) ([]types.Posting, error) {
	return loadFile(path, ReadPostings)
}

// LoadTaxonomy reads the taxonomy feed at path.
func LoadTaxonomy(path string) ([]types.TaxonomyEntry, error) {
	return loadFile(path, ReadTaxonomy)
}

func loadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		msg := "cannot open file"
		if os.IsNotExist(err) {
			msg = "file not found"
		}
		return nil, &LoadError{Path: path, Message: msg, Cause: err}
	}
	defer func() { _ = f.Close() }()

	out, err := read(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Message: "read failed", Cause: err}
	}
	return out, nil
}
