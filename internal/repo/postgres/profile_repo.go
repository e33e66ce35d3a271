package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepo is the read-only view over the profile store. Profile writes
// belong to the account service; the matching engine never mutates them.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

type ProfileRecord struct {
	UserID               string
	DisplayName          string
	Interests            []string
	Skills               []string
	Location             string
	OpenToStudyPartner   bool
	OpenToProjects       bool
	OpenToAccountability bool
	OpenToCofounder      bool
	OpenToHelpingOthers  bool
	SchoolVerified       bool
	LastActiveAt         time.Time
}

const profileColumns = `
	user_id, COALESCE(display_name, ''), interests, skills, COALESCE(location, ''),
	open_to_study_partner, open_to_projects, open_to_accountability, open_to_cofounder, open_to_helping_others,
	school_verified, last_active_at`

func (r *ProfileRepo) Get(ctx context.Context, userID string) (ProfileRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return ProfileRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return ProfileRecord{}, ErrProfileNotFound
	}

	var rec ProfileRecord
	err := r.pool.QueryRow(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE user_id = $1
`, userID).Scan(
		&rec.UserID,
		&rec.DisplayName,
		&rec.Interests,
		&rec.Skills,
		&rec.Location,
		&rec.OpenToStudyPartner,
		&rec.OpenToProjects,
		&rec.OpenToAccountability,
		&rec.OpenToCofounder,
		&rec.OpenToHelpingOthers,
		&rec.SchoolVerified,
		&rec.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrProfileNotFound
		}
		return ProfileRecord{}, fmt.Errorf("get profile: %w", err)
	}

	return rec, nil
}

// ListExcluding returns every profile except the given ids. Retrieval order
// is user_id ascending so repeated calls with the same data return the same
// order; the ranker relies on that for stable tie-breaks.
func (r *ProfileRepo) ListExcluding(ctx context.Context, excludeIDs []string) ([]ProfileRecord, error) {
	if r.pool == nil {
		return []ProfileRecord{}, nil
	}
	if excludeIDs == nil {
		excludeIDs = []string{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE user_id != ALL($1)
ORDER BY user_id
`, excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	items := make([]ProfileRecord, 0, 64)
	for rows.Next() {
		var rec ProfileRecord
		if err := rows.Scan(
			&rec.UserID,
			&rec.DisplayName,
			&rec.Interests,
			&rec.Skills,
			&rec.Location,
			&rec.OpenToStudyPartner,
			&rec.OpenToProjects,
			&rec.OpenToAccountability,
			&rec.OpenToCofounder,
			&rec.OpenToHelpingOthers,
			&rec.SchoolVerified,
			&rec.LastActiveAt,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}

	return items, nil
}
