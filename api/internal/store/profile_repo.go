package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"medassist/api/internal/assist"
)

type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// Find returns the personalization fields for userID, or ErrNotFound.
func (r *ProfileRepo) Find(ctx context.Context, userID string) (*assist.Profile, error) {
	const q = `select age, weight, conditions, symptoms from profiles where user_id = $1`
	var (
		p     assist.Profile
		conds []byte
	)
	if err := r.DB.QueryRowContext(ctx, q, userID).Scan(&p.Age, &p.Weight, &conds, &p.Symptoms); err != nil {
		return nil, err
	}
	if len(conds) > 0 {
		if err := json.Unmarshal(conds, &p.Conditions); err != nil {
			// a broken list still leaves the other fields usable
			p.Conditions = nil
		}
	}
	return &p, nil
}

// Upsert saves the profile; an existing row for userID is overwritten.
func (r *ProfileRepo) Upsert(ctx context.Context, userID string, p assist.Profile) error {
	conds, _ := json.Marshal(nonNil(p.Conditions))
	const q = `
insert into profiles (user_id, age, weight, conditions, symptoms)
values ($1,$2,$3,$4,$5)
on conflict (user_id) do update
set age = excluded.age,
    weight = excluded.weight,
    conditions = excluded.conditions,
    symptoms = excluded.symptoms,
    updated_at = now()`
	_, err := r.DB.ExecContext(ctx, q, userID, p.Age, p.Weight, conds, p.Symptoms)
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
