package insights

import (
	"fmt"
	"regexp"
	"strings"
)

// Criterion names reported by ScoreDescription, in report order.
const (
	CriterionLength      = "Description Length"
	CriterionSalary      = "Salary Transparency"
	CriterionEducation   = "Education Requirement"
	CriterionExperience  = "Experience Requirement"
	CriterionSpecificity = "Specificity"
)

var quantifiedRe = regexp.MustCompile(`\d+\s*[+\-]?\s*(?:year|month|week|yr)`)

// Criterion is one scored aspect of a posting.
type Criterion struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Note   string `json:"note"`
}

// QualityScore is a 0-100 rating of how informative a posting is to applicants.
type QualityScore struct {
	Total     int         `json:"total"`
	Breakdown []Criterion `json:"breakdown"`
}

// ScoreDescription rates a posting on length, salary transparency, stated
// requirements and the number of quantified requirements in the text.
func ScoreDescription(description string, salaryMin float64, education, experience string) QualityScore {
	var qs QualityScore
	add := func(name string, points int, note string) {
		qs.Total += points
		qs.Breakdown = append(qs.Breakdown, Criterion{Name: name, Points: points, Note: note})
	}

	words := len(strings.Fields(description))
	switch {
	case words >= 150 && words <= 600:
		add(CriterionLength, 25, fmt.Sprintf("Good (%d words). Clear and scannable.", words))
	case (words >= 75 && words < 150) || (words > 600 && words <= 900):
		add(CriterionLength, 12, fmt.Sprintf("Acceptable (%d words). Could be more informative.", words))
	default:
		add(CriterionLength, 4, fmt.Sprintf("Needs work (%d words). Too short or too long.", words))
	}

	if salaryMin > 0 {
		add(CriterionSalary, 30, "Salary listed. Improves qualified application volume.")
	} else {
		add(CriterionSalary, 0, "No salary listed. Can reduce application quality.")
	}

	if stated(education) {
		add(CriterionEducation, 15, "Clearly stated: "+education)
	} else {
		add(CriterionEducation, 0, "Not specified. Adds applicant uncertainty.")
	}

	if stated(experience) {
		add(CriterionExperience, 15, "Clearly stated: "+experience)
	} else {
		add(CriterionExperience, 0, "Not specified. Adds applicant uncertainty.")
	}

	switch n := len(quantifiedRe.FindAllString(strings.ToLower(description), -1)); {
	case n >= 2:
		add(CriterionSpecificity, 15, fmt.Sprintf("Contains %d quantified requirements.", n))
	case n == 1:
		add(CriterionSpecificity, 8, "Contains one quantified requirement.")
	default:
		add(CriterionSpecificity, 0, "No quantified requirements found.")
	}

	qs.Total = min(qs.Total, 100)
	return qs
}

func stated(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "none":
		return false
	}
	return true
}
