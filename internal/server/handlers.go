package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/skill-matcher/internal/audience"
	"github.com/jonathan/skill-matcher/internal/insights"
	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/types"
)

// MatchResponse is the response for /v1/matches
type MatchResponse struct {
	Query   string            `json:"query"`
	Results []matching.Result `json:"results"`
}

// SkillGapResponse is the response for /v1/postings/{id}/skill-gap
type SkillGapResponse struct {
	PostingID string   `json:"posting_id"`
	Title     string   `json:"title"`
	Matched   []string `json:"matched"`
	Missing   []string `json:"missing"`
}

// QualityResponse is the response for /v1/postings/{id}/quality
type QualityResponse struct {
	PostingID string `json:"posting_id"`
	Salary    string `json:"salary"`
	insights.QualityScore
}

func (s *Server) topNOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return s.topN
}

// posting resolves the {id} path value against the loaded dataset.
func (s *Server) posting(r *http.Request) (*Dataset, types.Posting, error) {
	ds := s.data.Load()
	id := r.PathValue("id")
	p, ok := ds.Posting(id)
	if !ok {
		return ds, types.Posting{}, &ErrPostingNotFound{ID: id}
	}
	return ds, p, nil
}

// handleMatches ranks postings against the free-text query q
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseQuery(r)
	if err != nil {
		s.errResponse(w, err)
		return
	}

	ds := s.data.Load()
	matches := ds.Index().Query(params.Query, s.topNOrDefault(params.TopN))
	s.jsonResponse(w, http.StatusOK, MatchResponse{
		Query:   params.Query,
		Results: matching.Join(ds.Postings, matches),
	})
}

// handleGetPosting returns a single posting
func (s *Server) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	_, p, err := s.posting(r)
	if err != nil {
		s.errResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handleSkillGap partitions a posting's skills into those q covers and those it lacks
func (s *Server) handleSkillGap(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseQuery(r)
	if err != nil {
		s.errResponse(w, err)
		return
	}
	ds, p, err := s.posting(r)
	if err != nil {
		s.errResponse(w, err)
		return
	}

	limit := params.Limit
	if limit <= 0 {
		limit = s.gapLimit
	}
	matched, missing := matching.SkillGap(params.Query, p.ID, ds.Mentions(p.ID), limit)
	s.jsonResponse(w, http.StatusOK, SkillGapResponse{
		PostingID: p.ID,
		Title:     p.Title,
		Matched:   matched,
		Missing:   missing,
	})
}

// handleRequirements returns the education and experience requirement of a posting
func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	ds, p, err := s.posting(r)
	if err != nil {
		s.errResponse(w, err)
		return
	}
	req, ok := ds.Requirements(p.ID)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "requirements not found for posting "+p.ID)
		return
	}
	s.jsonResponse(w, http.StatusOK, req)
}

// handleQuality scores how informative a posting is
func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	ds, p, err := s.posting(r)
	if err != nil {
		s.errResponse(w, err)
		return
	}

	education, experience := p.MinEducation, p.ExperienceText
	if req, ok := ds.Requirements(p.ID); ok {
		if req.EducationSource != types.SourceNotSpecified {
			education = req.EducationDisplay
		}
		if req.ExperienceSource != types.SourceNotSpecified {
			experience = req.ExperienceDisplay
		}
	}
	s.jsonResponse(w, http.StatusOK, QualityResponse{
		PostingID:    p.ID,
		Salary:       insights.FormatSalary(p.SalaryMin, p.SalaryMax, p.SalaryUnit),
		QualityScore: insights.ScoreDescription(p.Description, p.SalaryMin, education, experience),
	})
}

// handleListMOCs lists the known military occupation codes
func (s *Server) handleListMOCs(w http.ResponseWriter, _ *http.Request) {
	mocs := audience.MOCs()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"mocs":  mocs,
		"count": len(mocs),
	})
}

// handleVeteranMatch returns direct and skill-based matches for an occupation code
func (s *Server) handleVeteranMatch(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.PathValue("moc"))
	if code == "" {
		s.errResponse(w, &ErrValidation{Field: "moc", Message: "is required"})
		return
	}
	params, err := s.parseQuery(r)
	if err != nil {
		s.errResponse(w, err)
		return
	}

	ds := s.data.Load()
	res := audience.VeteranMatch(code, ds.Postings, ds.Index(), s.topNOrDefault(params.TopN))
	s.jsonResponse(w, http.StatusOK, res)
}
