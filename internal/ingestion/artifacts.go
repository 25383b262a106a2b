package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jonathan/skill-matcher/internal/types"
)

// Artifact headers. These are the compatibility surface for downstream readers.
var (
	CatalogHeader      = []string{"skill", "frequency"}
	MentionsHeader     = []string{"posting_id", "canonical_skill", "confidence", "source"}
	ProfilesHeader     = []string{"posting_id", "skill_text"}
	RequirementsHeader = []string{
		"posting_id", "education_display", "education_source", "experience_display", "experience_source",
	}
)

func writeRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// WriteCatalog writes catalog entries as CSV.
func WriteCatalog(w io.Writer, entries []types.CatalogEntry) error {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Skill, strconv.Itoa(e.Frequency)}
	}
	return writeRows(w, CatalogHeader, rows)
}

// ReadCatalog reads a catalog written by WriteCatalog.
func ReadCatalog(r io.Reader) ([]types.CatalogEntry, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, &LoadError{Message: "malformed catalog", Cause: err}
	}
	skill, freq := t.column("skill"), t.column("frequency", "count")
	out := make([]types.CatalogEntry, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, types.CatalogEntry{
			Skill:     cell(row, skill),
			Frequency: int(ParseNumber(cell(row, freq))),
		})
	}
	return out, nil
}

// WriteMentions writes skill mentions as CSV. Confidences are written with full
// precision so a round trip is exact.
func WriteMentions(w io.Writer, mentions []types.SkillMention) error {
	rows := make([][]string, len(mentions))
	for i, m := range mentions {
		rows[i] = []string{m.PostingID, m.Skill, formatFloat(m.Confidence), m.Source}
	}
	return writeRows(w, MentionsHeader, rows)
}

// ReadMentions reads a mentions table. Tables using the taxonomy-feed column
// names ("Research ID", "Taxonomy Skill", "NLP Score") are accepted too.
func ReadMentions(r io.Reader) ([]types.SkillMention, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, &LoadError{Message: "malformed mentions table", Cause: err}
	}
	var (
		id     = t.column("posting_id", "research_id", "system_job_id")
		skill  = t.column("canonical_skill", "taxonomy_skill")
		conf   = t.column("confidence", "nlp_score", "correlation_coefficient")
		source = t.column("source")
	)
	out := make([]types.SkillMention, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, types.SkillMention{
			PostingID:  cell(row, id),
			Skill:      cell(row, skill),
			Confidence: ParseNumber(cell(row, conf)),
			Source:     cell(row, source),
		})
	}
	return out, nil
}

// WriteProfiles writes skill profiles as CSV.
func WriteProfiles(w io.Writer, profiles []types.SkillProfile) error {
	rows := make([][]string, len(profiles))
	for i, p := range profiles {
		rows[i] = []string{p.PostingID, p.SkillText}
	}
	return writeRows(w, ProfilesHeader, rows)
}

// ReadProfiles reads a profiles table.
func ReadProfiles(r io.Reader) ([]types.SkillProfile, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, &LoadError{Message: "malformed profiles table", Cause: err}
	}
	id, text := t.column("posting_id", "system_job_id"), t.column("skill_text")
	out := make([]types.SkillProfile, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, types.SkillProfile{PostingID: cell(row, id), SkillText: cell(row, text)})
	}
	return out, nil
}

// WriteRequirements writes requirements profiles as CSV.
func WriteRequirements(w io.Writer, reqs []types.RequirementsProfile) error {
	rows := make([][]string, len(reqs))
	for i, r := range reqs {
		rows[i] = []string{r.PostingID, r.EducationDisplay, r.EducationSource, r.ExperienceDisplay, r.ExperienceSource}
	}
	return writeRows(w, RequirementsHeader, rows)
}

// ReadRequirements reads a requirements table.
func ReadRequirements(r io.Reader) ([]types.RequirementsProfile, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, &LoadError{Message: "malformed requirements table", Cause: err}
	}
	var (
		id      = t.column("posting_id", "system_job_id")
		eduDisp = t.column("education_display")
		eduSrc  = t.column("education_source")
		expDisp = t.column("experience_display")
		expSrc  = t.column("experience_source")
	)
	out := make([]types.RequirementsProfile, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, types.RequirementsProfile{
			PostingID:         cell(row, id),
			EducationDisplay:  cell(row, eduDisp),
			EducationSource:   cell(row, eduSrc),
			ExperienceDisplay: cell(row, expDisp),
			ExperienceSource:  cell(row, expSrc),
		})
	}
	return out, nil
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) ([]types.CatalogEntry, error) { return loadFile(path, ReadCatalog) }

// LoadMentions reads a mentions file.
func LoadMentions(path string) ([]types.SkillMention, error) { return loadFile(path, ReadMentions) }

// LoadProfiles reads a profiles file.
func LoadProfiles(path string) ([]types.SkillProfile, error) { return loadFile(path, ReadProfiles) }

// LoadRequirements reads a requirements file.
func LoadRequirements(path string) ([]types.RequirementsProfile, error) {
	return loadFile(path, ReadRequirements)
}

// SaveFile creates path (and its directory) and fills it with write.
func SaveFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
