// Package requirements derives a posting's education and experience requirement,
// preferring the structured dataset columns and falling back to pattern matching
// over the title and description.
package requirements

import (
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skill-matcher/internal/textnorm"
	"github.com/jonathan/skill-matcher/internal/types"
)

// Education display values, highest level first.
const (
	EducationDoctorate     = "Doctoral Degree"
	EducationMaster        = "Master's Degree"
	EducationBachelor      = "Bachelor's Degree"
	EducationAssociate     = "Associate's Degree"
	EducationHighSchool    = "High School Diploma or GED"
	EducationCertification = "Certification"
)

// ExperienceEntryLevel is the display value for postings that ask for no prior
// experience.
const ExperienceEntryLevel = "Entry level"

type educationRule struct {
	display string
	pattern *regexp.Regexp
}

// educationRules are tried in order; the first match wins.
var educationRules = []educationRule{
	{EducationDoctorate, regexp.MustCompile(`\b(ph\.?\s?d\b|doctorate|doctoral)`)},
	{EducationMaster, regexp.MustCompile(`\b(master['’]?s?\s+(degree|of|in)\b|mba\b|m\.s\.\s+degree)`)},
	{EducationBachelor, regexp.MustCompile(`\b(bachelor|b\.?s\.?\s+degree|b\.?a\.?\s+degree|four[- ]year\s+degree|undergraduate\s+degree)`)},
	{EducationAssociate, regexp.MustCompile(`\b(associate['’]?s?\s+degree|two[- ]year\s+degree)`)},
	{EducationHighSchool, regexp.MustCompile(`\b(high\s+school|ged\b|secondary\s+school\s+diploma)`)},
	{EducationCertification, regexp.MustCompile(`\b(certification|certificate|certified)\b`)},
}

var (
	experienceRangeRe  = regexp.MustCompile(`\b(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\s*\+?\s*(years?|yrs?|months?|mos?)\b`)
	experienceSingleRe = regexp.MustCompile(`\b(?:(at\s+least|minimum(?:\s+of)?|min\.?)\s+)?(\d{1,2})\s*(\+)?\s*(years?|yrs?|months?|mos?)\b`)
	// A single value needs a qualifier, a "+" or one of these cues next to it;
	// "12 month contract" states a duration, not a requirement.
	experienceCueAfterRe  = regexp.MustCompile(`^(?:\s+of\s|(?:\s+[\w'/&-]+){0,3}?\s+(?:experience|exp|required|preferred|needed)\b)`)
	experienceCueBeforeRe = regexp.MustCompile(`\b(?:experience|exp)\.?(?:\s+(?:required|needed|preferred))?\s*[:\-–]?\s*$`)
	entryLevelRe          = regexp.MustCompile(`\b(entry[- ]level|no\s+(?:prior\s+|previous\s+)?experience(?:\s+(?:required|necessary|needed))?)\b`)
	whitespaceRe          = regexp.MustCompile(`\s+`)
)

// Infer builds the requirements profile of one posting. A structured column that
// holds a real value is used verbatim with source "dataset"; otherwise the value
// is inferred from title and description ("inferred"), and left empty with source
// "not_specified" when nothing matches.
func Infer(p types.Posting) types.RequirementsProfile {
	out := types.RequirementsProfile{PostingID: p.ID}
	text := searchText(p)

	switch {
	case !textnorm.IsNull(p.MinEducation):
		out.EducationDisplay = strings.TrimSpace(p.MinEducation)
		out.EducationSource = types.SourceDataset
	default:
		if edu := InferEducation(text); edu != "" {
			out.EducationDisplay = edu
			out.EducationSource = types.SourceInferred
		} else {
			out.EducationSource = types.SourceNotSpecified
		}
	}

	switch {
	case !textnorm.IsNull(p.ExperienceText):
		out.ExperienceDisplay = strings.TrimSpace(p.ExperienceText)
		out.ExperienceSource = types.SourceDataset
	default:
		if exp := InferExperience(text); exp != "" {
			out.ExperienceDisplay = exp
			out.ExperienceSource = types.SourceInferred
		} else {
			out.ExperienceSource = types.SourceNotSpecified
		}
	}
	return out
}

// InferEducation returns the display value of the first education rule matching
// text, or "".
func InferEducation(text string) string {
	text = prepare(text)
	for _, rule := range educationRules {
		if rule.pattern.MatchString(text) {
			return rule.display
		}
	}
	return ""
}

// InferExperience returns a display value such as "3-5 years", "2+ years",
// "1 year", "6 months" or "Entry level", or "" when text states no experience
// requirement. Ranges take precedence over single values, which take precedence
// over entry-level phrases.
func InferExperience(text string) string {
	text = prepare(text)

	if m := experienceRangeRe.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return m[1] + "-" + m[2] + " " + unitName(m[3], max(lo, hi))
	}
	if exp := singleExperience(text); exp != "" {
		return exp
	}
	if entryLevelRe.MatchString(text) {
		return ExperienceEntryLevel
	}
	return ""
}

func singleExperience(text string) string {
	for _, loc := range experienceSingleRe.FindAllStringSubmatchIndex(text, -1) {
		qualified := loc[2] >= 0 || loc[6] >= 0
		if !qualified &&
			!experienceCueAfterRe.MatchString(text[loc[1]:]) &&
			!experienceCueBeforeRe.MatchString(text[:loc[0]]) {
			continue
		}
		num, unit := text[loc[4]:loc[5]], text[loc[8]:loc[9]]
		if qualified {
			return num + "+ " + unitName(unit, 2)
		}
		n, _ := strconv.Atoi(num)
		return num + " " + unitName(unit, n)
	}
	return ""
}

func unitName(raw string, n int) string {
	unit := "year"
	if strings.HasPrefix(raw, "m") {
		unit = "month"
	}
	if n != 1 {
		unit += "s"
	}
	return unit
}

func searchText(p types.Posting) string {
	return p.Title + " " + p.Description
}

func prepare(text string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(text), " ")
}

const chunkSize = 512

// InferAll infers requirements for every posting. Chunks run concurrently and the
// result keeps posting order.
func InferAll(postings []types.Posting) []types.RequirementsProfile {
	out := make([]types.RequirementsProfile, len(postings))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for start := 0; start < len(postings); start += chunkSize {
		end := min(start+chunkSize, len(postings))
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = Infer(postings[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
