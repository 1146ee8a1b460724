package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist/api/internal/assist"
)

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "host=db port=5432 db=medassist user=app",
		Summary("postgres://app:s3cret@db:5432/medassist?sslmode=disable"))
	assert.Equal(t, "host=db db=medassist user=app", Summary("postgres://app:s3cret@db/medassist"))
	assert.NotContains(t, Summary("postgres://app:s3cret@db/medassist"), "s3cret")
	assert.Equal(t, "dsn: unparsable", Summary("host=db user=app"))
}

// Runs against a real Postgres when TEST_DATABASE_URL is set.
func TestRepos_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, EnsureSchema(ctx, db))

	user := uuid.NewString()

	profiles := NewProfileRepo(db)
	_, err = profiles.Find(ctx, user)
	assert.ErrorIs(t, err, ErrNotFound)

	want := assist.Profile{Age: 34, Weight: 70.5, Conditions: []string{"asthma"}, Symptoms: "cough"}
	require.NoError(t, profiles.Upsert(ctx, user, want))
	want.Age = 35
	require.NoError(t, profiles.Upsert(ctx, user, want))
	got, err := profiles.Find(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	reports := NewRepos(db).ReportRepo
	a := assist.ReportAnalysis{Summary: "ok", HealthScore: 90, Predictions: []assist.Prediction{}, Recommendations: []string{"sleep"}}
	id, err := reports.Save(ctx, user, a)
	require.NoError(t, err)
	row, err := reports.Latest(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, id, row.ID)
	assert.Equal(t, a, row.Analysis)

	chats := NewChatRepo(db)
	require.NoError(t, chats.Append(ctx, user,
		assist.Turn{Role: assist.RoleUser, Text: "hi"},
		assist.Turn{Role: assist.RoleModel, Text: "hello"},
		assist.Turn{Role: assist.RoleUser, Text: "headache"},
	))
	hist, err := chats.History(ctx, user, 2)
	require.NoError(t, err)
	assert.Equal(t, []assist.Turn{
		{Role: assist.RoleModel, Text: "hello"},
		{Role: assist.RoleUser, Text: "headache"},
	}, hist)
}
