// Package matching ranks jobs against a user profile, either through the
// AI engine or a local skills-overlap fallback.
package matching

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/getori/ori/core-api/aiengine"
	"github.com/getori/ori/core-api/models"
)

type Match struct {
	Job   models.Job `json:"job"`
	Score float64    `json:"score"`
}

type Matcher struct {
	ai     *aiengine.Client
	logger *slog.Logger
}

func NewMatcher(ai *aiengine.Client, logger *slog.Logger) *Matcher {
	return &Matcher{
		ai:     ai,
		logger: logger.With("component", "matching"),
	}
}

// Rank scores jobs for a profile and returns them best-first. When the AI
// engine is unavailable or errors, the local overlap scorer takes over so
// matching never hard-fails on the external dependency.
func (m *Matcher) Rank(ctx context.Context, profile *models.UserProfile, jobs []models.Job) []Match {
	if len(jobs) == 0 {
		return []Match{}
	}

	if m.ai.Enabled() {
		matches, err := m.rankWithEngine(ctx, profile, jobs)
		if err == nil {
			return matches
		}
		m.logger.Warn("ai engine scoring failed, falling back to local scoring",
			"error", err.Error())
	}

	return m.rankLocally(profile, jobs)
}

func (m *Matcher) rankWithEngine(ctx context.Context, profile *models.UserProfile, jobs []models.Job) ([]Match, error) {
	request := aiengine.ScoreRequest{
		Skills:       profile.Skills,
		DesiredRoles: profile.DesiredRoles,
		Jobs:         make([]aiengine.JobRef, 0, len(jobs)),
	}
	if profile.Headline != nil {
		request.Headline = *profile.Headline
	}

	byID := make(map[string]models.Job, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
		ref := aiengine.JobRef{
			ID:             job.ID,
			Title:          job.Title,
			RequiredSkills: job.RequiredSkills,
		}
		if job.Description != nil {
			ref.Description = *job.Description
		}
		request.Jobs = append(request.Jobs, ref)
	}

	scores, err := m.ai.ScoreJobs(ctx, request)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(scores))
	for _, score := range scores {
		job, ok := byID[score.JobID]
		if !ok {
			continue
		}
		matches = append(matches, Match{Job: job, Score: score.Score})
	}

	sortMatches(matches)
	return matches, nil
}

func (m *Matcher) rankLocally(profile *models.UserProfile, jobs []models.Job) []Match {
	matches := make([]Match, 0, len(jobs))
	for _, job := range jobs {
		matches = append(matches, Match{
			Job:   job,
			Score: localScore(profile, job),
		})
	}

	sortMatches(matches)
	return matches
}

// localScore is the overlap fallback: the share of required skills the
// profile covers, with a flat boost when the title matches a desired role.
func localScore(profile *models.UserProfile, job models.Job) float64 {
	score := skillOverlap(profile.Skills, job.RequiredSkills)

	title := strings.ToLower(job.Title)
	for _, role := range profile.DesiredRoles {
		if role != "" && strings.Contains(title, strings.ToLower(role)) {
			score += 0.25
			break
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}

func skillOverlap(have []string, required []string) float64 {
	if len(required) == 0 {
		return 0
	}

	owned := make(map[string]struct{}, len(have))
	for _, skill := range have {
		owned[strings.ToLower(strings.TrimSpace(skill))] = struct{}{}
	}

	hits := 0
	for _, skill := range required {
		if _, ok := owned[strings.ToLower(strings.TrimSpace(skill))]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(required))
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}
