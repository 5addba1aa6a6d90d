package github

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

func TestSplitRepo(t *testing.T) {
	owner, repo, err := splitRepo("acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widgets", repo)

	for _, bad := range []string{"", "acme", "acme/", "/widgets", "a/b/c"} {
		_, _, err := splitRepo(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func responseWith(status int, header http.Header) *gh.Response {
	if header == nil {
		header = http.Header{}
	}
	return &gh.Response{Response: &http.Response{StatusCode: status, Header: header}}
}

func TestClassify(t *testing.T) {
	t.Run("nil error passes through", func(t *testing.T) {
		assert.NoError(t, classify("get issue", responseWith(200, nil), nil))
	})

	t.Run("plain status mapping", func(t *testing.T) {
		err := classify("validate", responseWith(401, nil), errors.New("bad credentials"))

		var te *model.TrackerError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, model.TrackerErrUnauthorized, te.Kind)
		assert.False(t, te.Retryable())
	})

	t.Run("abuse rate limit carries retry-after", func(t *testing.T) {
		after := 45 * time.Second
		abuse := &gh.AbuseRateLimitError{RetryAfter: &after}
		err := classify("create issue", responseWith(403, nil), abuse)

		var te *model.TrackerError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, model.TrackerErrRateLimited, te.Kind)
		assert.Equal(t, after, te.RetryAfter)
		assert.True(t, te.Retryable())
	})

	t.Run("primary rate limit derives hint from the reset time", func(t *testing.T) {
		rateErr := &gh.RateLimitError{
			Rate: gh.Rate{Reset: gh.Timestamp{Time: time.Now().Add(time.Minute)}},
		}
		err := classify("get issue", responseWith(403, nil), rateErr)

		var te *model.TrackerError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, model.TrackerErrRateLimited, te.Kind)
		assert.Greater(t, te.RetryAfter, 50*time.Second)
	})

	t.Run("403 with retry-after header is rate limiting", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", "10")
		err := classify("search users", responseWith(403, header), errors.New("secondary limit"))

		var te *model.TrackerError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, model.TrackerErrRateLimited, te.Kind)
	})

	t.Run("missing response classifies as network", func(t *testing.T) {
		err := classify("get issue", nil, errors.New("dial tcp: i/o timeout"))

		var te *model.TrackerError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, model.TrackerErrNetwork, te.Kind)
		assert.True(t, te.Retryable())
	})
}

func TestMapIssue(t *testing.T) {
	closed := mapIssue(&gh.Issue{
		ID:      gh.Ptr(int64(900)),
		Number:  gh.Ptr(12),
		State:   gh.Ptr("closed"),
		HTMLURL: gh.Ptr("https://github.com/acme/widgets/issues/12"),
	})
	assert.Equal(t, model.Issue{
		ID:     900,
		Number: 12,
		State:  model.IssueStateClosed,
		WebURL: "https://github.com/acme/widgets/issues/12",
	}, closed)

	open := mapIssue(&gh.Issue{Number: gh.Ptr(13), State: gh.Ptr("open")})
	assert.Equal(t, model.IssueStateOpen, open.State)
}

func TestGetIssuesByNumbers_RejectsOversizedBatch(t *testing.T) {
	c := &Client{}
	over := make([]int, maxIssuesPerSync+1)
	_, err := c.GetIssuesByNumbers(context.Background(), over)
	require.Error(t, err)
}

func TestMaxBatchSize(t *testing.T) {
	assert.Equal(t, maxIssuesPerSync, (&Client{}).MaxBatchSize())
}
