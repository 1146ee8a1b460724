package store

import (
	"context"
	"database/sql"

	"github.com/samber/lo"

	"medassist/api/internal/assist"
)

type ChatRepo struct{ DB *sql.DB }

func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{DB: db} }

func (r *ChatRepo) Append(ctx context.Context, userID string, turns ...assist.Turn) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `insert into chat_turns (user_id, role, body) values ($1,$2,$3)`
	for _, t := range turns {
		if _, err := tx.ExecContext(ctx, q, userID, t.Role, t.Text); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// History returns up to limit most recent turns, oldest first.
func (r *ChatRepo) History(ctx context.Context, userID string, limit int) ([]assist.Turn, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `select role, body from chat_turns where user_id = $1 order by id desc limit $2`
	rows, err := r.DB.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []assist.Turn
	for rows.Next() {
		var t assist.Turn
		if err := rows.Scan(&t.Role, &t.Text); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// newest first from the query, oldest first for the model
	return lo.Reverse(out), nil
}
