// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/langeng/internal/models"
)

// GetProfile retrieves the profile of an account.
func (r *Repository) GetProfile(ctx context.Context, accountID int64) (*models.Profile, error) {
	var profile models.Profile
	err := r.q.GetContext(ctx, &profile,
		`SELECT id, account_id, bio, phone_number, city_born, city_home, birth_date, created_at, updated_at
		 FROM account_profiles WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &profile, nil
}

// UpsertProfile creates or replaces the profile of an account.
func (r *Repository) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	var birthDate *time.Time
	if profile.BirthDate != nil {
		bd := profile.BirthDate.UTC()
		birthDate = &bd
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO account_profiles (account_id, bio, phone_number, city_born, city_home, birth_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(account_id) DO UPDATE SET
		   bio = excluded.bio,
		   phone_number = excluded.phone_number,
		   city_born = excluded.city_born,
		   city_home = excluded.city_home,
		   birth_date = excluded.birth_date,
		   updated_at = excluded.updated_at`,
		profile.AccountID, profile.Bio, profile.PhoneNumber, profile.CityBorn, profile.CityHome,
		birthDate, now, now)
	return wrapError(err)
}

// DeleteProfile removes the profile of an account.
func (r *Repository) DeleteProfile(ctx context.Context, accountID int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM account_profiles WHERE account_id = ?`, accountID)
	return err
}
