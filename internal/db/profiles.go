package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/latentspace/match-engine/internal/types"
	"github.com/pgvector/pgvector-go"
)

// embeddingParam converts an embedding slice to a query parameter, mapping
// an absent vector to NULL.
func embeddingParam(embedding []float32) any {
	if len(embedding) == 0 {
		return nil
	}
	v := pgvector.NewVector(embedding)
	return v
}

// UpsertProfile creates or replaces a user's profile. One profile exists per
// user; ownership is enforced by the calling layer.
func (db *DB) UpsertProfile(ctx context.Context, p *types.UserProfile) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_profiles
		   (user_id, role_intent, seniority, timezone, weekly_hours, location_city,
		    remote_preference, equity_expectation, salary_expectation, visa_constraint,
		    skills, industries, tech_stack, risk_tolerance, bio, embedding, last_active_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		   role_intent = $2, seniority = $3, timezone = $4, weekly_hours = $5,
		   location_city = $6, remote_preference = $7, equity_expectation = $8,
		   salary_expectation = $9, visa_constraint = $10, skills = $11,
		   industries = $12, tech_stack = $13, risk_tolerance = $14, bio = $15,
		   embedding = $16, last_active_at = NOW(), updated_at = NOW()`,
		p.UserID, p.RoleIntent, p.Seniority, p.Timezone, p.WeeklyHours, p.LocationCity,
		p.RemotePreference, p.EquityExpectation, p.SalaryExpectation, p.VisaConstraint,
		p.Skills, p.Industries, p.TechStack, p.RiskTolerance, p.Bio, embeddingParam(p.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// UpdateProfileEmbedding stores a newly computed embedding vector without
// touching the rest of the profile.
func (db *DB) UpdateProfileEmbedding(ctx context.Context, userID uuid.UUID, embedding []float32) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE user_profiles SET embedding = $1, updated_at = NOW() WHERE user_id = $2`,
		embeddingParam(embedding), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile embedding: %w", err)
	}
	return nil
}

// TouchLastActive records profile activity, which feeds ranking tie-breaks.
func (db *DB) TouchLastActive(ctx context.Context, userID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE user_profiles SET last_active_at = NOW() WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch profile activity: %w", err)
	}
	return nil
}

const profileColumns = `user_id, role_intent, seniority, timezone, weekly_hours, location_city,
	remote_preference, equity_expectation, salary_expectation, visa_constraint,
	skills, industries, tech_stack, risk_tolerance, bio, embedding,
	last_active_at, created_at, updated_at`

// GetProfile retrieves a profile by user id, nil when none exists.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID)

	profile, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// ListCandidateProfiles retrieves up to limit profiles excluding the given
// user, most recently active first.
func (db *DB) ListCandidateProfiles(ctx context.Context, excludeUserID uuid.UUID, limit int) ([]types.UserProfile, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM user_profiles
		 WHERE user_id <> $1
		 ORDER BY last_active_at DESC
		 LIMIT $2`,
		excludeUserID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// GetProfiles retrieves the profiles for the given user ids. Missing ids are
// simply absent from the result.
func (db *DB) GetProfiles(ctx context.Context, userIDs []uuid.UUID) ([]types.UserProfile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = ANY($1)`,
		userIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func collectProfiles(rows pgx.Rows) ([]types.UserProfile, error) {
	var profiles []types.UserProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (*types.UserProfile, error) {
	var p types.UserProfile
	var embedding *pgvector.Vector

	err := row.Scan(
		&p.UserID, &p.RoleIntent, &p.Seniority, &p.Timezone, &p.WeeklyHours, &p.LocationCity,
		&p.RemotePreference, &p.EquityExpectation, &p.SalaryExpectation, &p.VisaConstraint,
		&p.Skills, &p.Industries, &p.TechStack, &p.RiskTolerance, &p.Bio, &embedding,
		&p.LastActiveAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if embedding != nil {
		p.Embedding = embedding.Slice()
	}
	return &p, nil
}
