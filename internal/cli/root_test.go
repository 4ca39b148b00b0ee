package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmate/internal/api/apitest"
	"tripmate/internal/engagement"
	"tripmate/internal/session"
)

const cliToken = "cli-token"

func setup(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.New(cliToken)
	t.Cleanup(srv.Close)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("TRIPMATE_SERVER_BASE_URL", srv.URL())
	t.Setenv("TRIPMATE_USER_ID", "7")
	t.Setenv("TRIPMATE_USER_TOKEN", cliToken)
	t.Setenv("TRIPMATE_USER_NAME", "you")
	t.Setenv("TRIPMATE_LOGGING_OUTPUT", "discard")
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func TestRecommendationsList(t *testing.T) {
	srv := setup(t)
	srv.AddRecommendation("Hoi An", "Quang Nam")
	srv.AddRecommendation("Sapa", "Lao Cai")

	out, err := run(t, "recommendations", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Hoi An")
	assert.Contains(t, out, "Sapa")

	out, err = run(t, "recs", "list", "--filter", "sapa")
	require.NoError(t, err)
	assert.Contains(t, out, "Sapa")
	assert.NotContains(t, out, "Hoi An")

	_, err = run(t, "recs", "list", "--page", "0")
	assert.Error(t, err)
}

func TestRecommendationsLike(t *testing.T) {
	srv := setup(t)
	rec := srv.AddRecommendation("Hoi An", "Quang Nam")

	out, err := run(t, "recs", "like", id(rec))
	require.NoError(t, err)
	assert.Contains(t, out, "Like toggled")
	assert.True(t, srv.Liked(rec, 7))

	_, err = run(t, "recs", "like", "abc")
	assert.ErrorContains(t, err, "invalid id")
}

func TestReviewsAddListReply(t *testing.T) {
	srv := setup(t)
	rec := srv.AddRecommendation("Sapa", "Lao Cai")

	out, err := run(t, "reviews", "add", id(rec), "great", "hike")
	require.NoError(t, err)
	assert.Contains(t, out, "Review posted")

	out, err = run(t, "reviews", "list", id(rec))
	require.NoError(t, err)
	assert.Contains(t, out, "great hike")

	root := srv.AddReview(rec, 0, "cold at night")
	out, err = run(t, "reviews", "add", id(rec), "bring", "a", "jacket", "--parent", id(root))
	require.NoError(t, err)
	assert.Contains(t, out, "Reply posted")

	out, err = run(t, "reviews", "list", id(rec), "--parent", id(root))
	require.NoError(t, err)
	assert.Contains(t, out, "bring a jacket")
}

func TestReviewsAddEnforcesDepth(t *testing.T) {
	srv := setup(t)
	rec := srv.AddRecommendation("Sapa", "Lao Cai")
	root := srv.AddReview(rec, 0, "cold at night")
	reply := srv.AddReview(rec, root, "bring a jacket")
	nested := srv.AddReview(rec, reply, "and gloves")

	out, err := run(t, "reviews", "add", id(rec), "wool", "ones", "--parent", id(reply))
	require.NoError(t, err)
	assert.Contains(t, out, "Reply posted")

	before := len(srv.Requests())
	_, err = run(t, "reviews", "add", id(rec), "too", "deep", "--parent", id(nested))
	require.Error(t, err)
	assert.ErrorIs(t, err, engagement.ErrDepthExceeded)
	for _, r := range srv.Requests()[before:] {
		assert.NotContains(t, r, "POST", "nothing is posted under a nested reply")
	}

	_, err = run(t, "reviews", "add", id(rec), "lost", "--parent", "999")
	require.Error(t, err)
}

func TestReviewsAddRejectsBlankText(t *testing.T) {
	srv := setup(t)
	rec := srv.AddRecommendation("Sapa", "Lao Cai")
	before := len(srv.Requests())

	_, err := run(t, "reviews", "add", id(rec), "   ", " ")
	require.Error(t, err)
	assert.Len(t, srv.Requests(), before)
}

func TestReviewsEditDeleteReport(t *testing.T) {
	srv := setup(t)
	rec := srv.AddRecommendation("Sapa", "Lao Cai")
	review := srv.AddReview(rec, 0, "first")

	_, err := run(t, "reviews", "edit", id(review), "second", "thoughts")
	require.NoError(t, err)
	stored, _ := srv.Review(review)
	assert.Equal(t, "second thoughts", stored.Content)

	_, err = run(t, "reviews", "report", id(review))
	assert.ErrorContains(t, err, "--reason")

	out, err := run(t, "reviews", "report", id(review), "--reason", "spam")
	require.NoError(t, err)
	assert.Contains(t, out, "Report sent")
	require.Len(t, srv.Reports(), 1)

	out, err = run(t, "reviews", "delete", id(review), "99999")
	require.Error(t, err)
	assert.Contains(t, out, "Review "+id(review)+" deleted")
	assert.Contains(t, err.Error(), "review 99999")
	stored, _ = srv.Review(review)
	assert.Equal(t, "deleted", stored.Status)
}

func TestWrongTokenIsReported(t *testing.T) {
	srv := setup(t)
	srv.AddRecommendation("Sapa", "Lao Cai")

	_, err := run(t, "recs", "list", "--token", "wrong")
	assert.EqualError(t, err, "not signed in or token expired")
}

func TestNoUser(t *testing.T) {
	setup(t)
	t.Setenv("TRIPMATE_USER_ID", "")
	t.Setenv("TRIPMATE_USER_TOKEN", "")

	_, err := run(t, "recs", "list")
	assert.ErrorIs(t, err, session.ErrNoUser)
}

func TestTUINeedsTerminal(t *testing.T) {
	setup(t)
	_, err := run(t, "tui")
	assert.ErrorIs(t, err, ErrNoTerminal)
}

func TestConfigInitAndShow(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "tripmate.yaml")

	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = run(t, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	t.Setenv("TRIPMATE_USER_TOKEN", "abcdefghijklmnopqrstuvwxyz")
	out, err = run(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Page size: 20")
	assert.Contains(t, out, "ID: 7")
	assert.Contains(t, out, "Token: abcdefghijklmnopqrst...")
	assert.NotContains(t, out, "uvwxyz")
}
