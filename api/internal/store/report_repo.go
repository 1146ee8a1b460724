package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"medassist/api/internal/assist"
)

type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

type ReportRow struct {
	ID        int64
	UserID    string
	CreatedAt time.Time
	Analysis  assist.ReportAnalysis
}

func (r *ReportRepo) Save(ctx context.Context, userID string, a assist.ReportAnalysis) (int64, error) {
	js, err := json.Marshal(a)
	if err != nil {
		return 0, err
	}
	const q = `insert into report_analyses (user_id, health_score, result_json) values ($1,$2,$3) returning id`
	var id int64
	err = r.DB.QueryRowContext(ctx, q, userID, a.HealthScore, js).Scan(&id)
	return id, err
}

// Latest returns the most recent analysis for userID, or ErrNotFound.
func (r *ReportRepo) Latest(ctx context.Context, userID string) (*ReportRow, error) {
	const q = `
select id, user_id, created_at, result_json
from report_analyses
where user_id = $1
order by created_at desc
limit 1`
	var (
		row ReportRow
		js  []byte
	)
	if err := r.DB.QueryRowContext(ctx, q, userID).Scan(&row.ID, &row.UserID, &row.CreatedAt, &js); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(js, &row.Analysis); err != nil {
		return nil, ErrNotFound
	}
	return &row, nil
}
