// Package audience adapts the matching index to specific job-seeker groups:
// veterans searching by military occupation code and students exploring a field.
package audience

import (
	"sort"
	"strings"

	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/types"
)

// FallbackMOCQuery is the skill query used for occupation codes not in the dictionary.
const FallbackMOCQuery = "operations leadership management"

// MOC describes a military occupation: its civilian-readable title and the skill
// text used to query the index on its behalf.
type MOC struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	SkillQuery string `json:"skill_query"`
}

var mocDictionary = map[string]MOC{
	"11B": {Title: "Infantry Soldier", SkillQuery: "leadership team management operations security patrol coordination"},
	"68W": {Title: "Combat Medic", SkillQuery: "patient care emergency medical first aid healthcare nursing triage clinical"},
	"25U": {Title: "Signal Support Specialist", SkillQuery: "communications network IT systems radio telecommunications"},
	"92A": {Title: "Logistical Specialist", SkillQuery: "inventory supply chain logistics warehouse procurement management"},
	"31B": {Title: "Military Police", SkillQuery: "law enforcement security patrol investigation compliance safety"},
	"25B": {Title: "IT Specialist", SkillQuery: "information technology network systems cybersecurity database cloud"},
	"42A": {Title: "Human Resources Specialist", SkillQuery: "HR recruiting employee relations administration benefits payroll"},
	"88M": {Title: "Motor Transport Operator", SkillQuery: "transportation driving logistics delivery fleet routing"},
	"15T": {Title: "Helicopter Repairer", SkillQuery: "aircraft maintenance mechanical aviation repair inspection"},
	"35F": {Title: "Intelligence Analyst", SkillQuery: "analysis intelligence data research reporting assessment"},
	"12B": {Title: "Combat Engineer", SkillQuery: "construction engineering project management infrastructure planning"},
	"74D": {Title: "CBRN Specialist", SkillQuery: "safety environmental hazmat compliance chemical emergency"},
	"56M": {Title: "Chaplain Assistant", SkillQuery: "counseling mental health social work community support"},
	"91B": {Title: "Vehicle Mechanic", SkillQuery: "automotive mechanical repair maintenance diagnostics fleet"},
	"68C": {Title: "Practical Nursing Specialist", SkillQuery: "nursing patient care clinical LPN healthcare treatment"},
	"35L": {Title: "Counterintelligence Agent", SkillQuery: "investigation security analysis intelligence law enforcement"},
	"25S": {Title: "Satellite Comm Operator", SkillQuery: "telecommunications satellite systems engineering IT network"},
	"13F": {Title: "Fire Support Specialist", SkillQuery: "coordination communications analysis operations planning"},
	"19D": {Title: "Cavalry Scout", SkillQuery: "reconnaissance operations security intelligence coordination surveillance"},
	"12Y": {Title: "Geospatial Engineer", SkillQuery: "GIS mapping data analysis geospatial systems spatial engineering"},
}

// normalizeCode upper-cases and trims an occupation code.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupMOC resolves an occupation code. Unknown codes resolve to a MOC whose
// title is the code itself and whose query is FallbackMOCQuery; ok reports
// whether the code was in the dictionary.
func LookupMOC(code string) (MOC, bool) {
	code = normalizeCode(code)
	if m, ok := mocDictionary[code]; ok {
		m.Code = code
		return m, true
	}
	return MOC{Code: code, Title: code, SkillQuery: FallbackMOCQuery}, false
}

// MOCs returns the dictionary sorted by code.
func MOCs() []MOC {
	out := make([]MOC, 0, len(mocDictionary))
	for code, m := range mocDictionary {
		m.Code = code
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// VeteranResult combines postings that list an occupation code explicitly with
// postings that match the occupation's skills.
type VeteranResult struct {
	MOC          MOC               `json:"moc"`
	Known        bool              `json:"known"`
	Direct       []types.Posting   `json:"direct_matches"`
	SkillMatches []matching.Result `json:"skill_matches"`
}

// DirectMatches returns postings whose MOC code column contains code,
// case-insensitively, in posting order. An empty code matches nothing.
func DirectMatches(code string, postings []types.Posting) []types.Posting {
	code = normalizeCode(code)
	out := make([]types.Posting, 0)
	if code == "" {
		return out
	}
	for _, p := range postings {
		if strings.Contains(strings.ToUpper(p.MOCCodes), code) {
			out = append(out, p)
		}
	}
	return out
}

// VeteranMatch resolves code and returns both the direct and the skill-based matches.
func VeteranMatch(code string, postings []types.Posting, idx *matching.Index, topN int) VeteranResult {
	moc, known := LookupMOC(code)
	return VeteranResult{
		MOC:          moc,
		Known:        known,
		Direct:       DirectMatches(moc.Code, postings),
		SkillMatches: matching.Join(postings, idx.Query(moc.SkillQuery, topN)),
	}
}
