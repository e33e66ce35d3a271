package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/elaazouzifayssal/collabia-backend/internal/domain/rules"
	pgrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/postgres"
)

var ErrProfileNotFound = errors.New("viewer profile not found")

type ProfileStore interface {
	Get(ctx context.Context, userID string) (pgrepo.ProfileRecord, error)
	ListExcluding(ctx context.Context, excludeIDs []string) ([]pgrepo.ProfileRecord, error)
}

type SwipeStore interface {
	ListActiveExclusions(ctx context.Context, swiperID string, now time.Time) ([]string, error)
}

type Config struct {
	MaxCandidates int
}

type Dependencies struct {
	ProfileStore ProfileStore
	SwipeStore   SwipeStore
}

type Service struct {
	profileStore ProfileStore
	swipeStore   SwipeStore
	cfg          Config
	now          func() time.Time
}

// Candidate pairs a profile with its affinity score for one viewer.
type Candidate struct {
	Profile pgrepo.ProfileRecord
	Score   int
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 200
	}

	return &Service{
		profileStore: deps.ProfileStore,
		swipeStore:   deps.SwipeStore,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Build assembles the viewer's ranked candidate list. The viewer, anyone the
// viewer already liked, and anyone inside an unexpired pass window are
// excluded before scoring. Ordering is score descending; equal scores keep
// their retrieval order.
func (s *Service) Build(ctx context.Context, viewerID string) ([]Candidate, error) {
	if strings.TrimSpace(viewerID) == "" {
		return nil, fmt.Errorf("viewer id is required")
	}
	if s.profileStore == nil || s.swipeStore == nil {
		return nil, fmt.Errorf("feed dependencies are not configured")
	}

	viewer, err := s.profileStore.Get(ctx, viewerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get viewer profile: %w", err)
	}

	now := s.now().UTC()

	excluded, err := s.swipeStore.ListActiveExclusions(ctx, viewerID, now)
	if err != nil {
		return nil, fmt.Errorf("list swipe exclusions: %w", err)
	}
	excluded = append(excluded, viewerID)

	profiles, err := s.profileStore.ListExcluding(ctx, excluded)
	if err != nil {
		return nil, fmt.Errorf("list candidate profiles: %w", err)
	}

	candidates := make([]Candidate, 0, len(profiles))
	for _, profile := range profiles {
		candidates = append(candidates, Candidate{
			Profile: profile,
			Score:   scoreCandidate(viewer, profile, now),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > s.cfg.MaxCandidates {
		candidates = candidates[:s.cfg.MaxCandidates]
	}

	return candidates, nil
}

func scoreCandidate(viewer, candidate pgrepo.ProfileRecord, now time.Time) int {
	score := 0

	candidateInterests := termSet(candidate.Interests)
	candidateSkills := termSet(candidate.Skills)
	for term := range termSet(append(append([]string{}, viewer.Interests...), viewer.Skills...)) {
		if _, ok := candidateInterests[term]; ok {
			score += rules.ScoreSharedTerm
		}
		if _, ok := candidateSkills[term]; ok {
			score += rules.ScoreSharedTerm
		}
	}

	if viewer.Location != "" && strings.EqualFold(viewer.Location, candidate.Location) {
		score += rules.ScoreSameLocation
	}

	if viewer.OpenToCofounder && candidate.OpenToCofounder {
		score += rules.ScoreBothCofounder
	}
	if viewer.OpenToProjects && candidate.OpenToProjects {
		score += rules.ScoreBothProjects
	}
	if viewer.OpenToStudyPartner && candidate.OpenToStudyPartner {
		score += rules.ScoreBothStudyPartner
	}
	if viewer.OpenToAccountability && candidate.OpenToAccountability {
		score += rules.ScoreBothAccountability
	}
	if viewer.OpenToHelpingOthers && candidate.OpenToHelpingOthers {
		score += rules.ScoreBothHelpingOthers
	}

	score += rules.RecencyBonus(candidate.LastActiveAt, now)

	if candidate.SchoolVerified {
		score += rules.ScoreSchoolVerified
	}

	return score
}

func termSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		term := strings.ToLower(strings.TrimSpace(value))
		if term == "" {
			continue
		}
		set[term] = struct{}{}
	}
	return set
}
