package gitlab

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

func responseWith(status int, header http.Header) *gitlab.Response {
	if header == nil {
		header = http.Header{}
	}
	return &gitlab.Response{Response: &http.Response{StatusCode: status, Header: header}}
}

func TestClassify(t *testing.T) {
	t.Run("nil error passes through", func(t *testing.T) {
		assert.NoError(t, classify("list issues", responseWith(200, nil), nil))
	})

	t.Run("rate limit carries the retry-after hint", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", "30")
		err := classify("create issue", responseWith(429, header), errors.New("too many requests"))

		var te *model.TrackerError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, model.TrackerErrRateLimited, te.Kind)
		assert.Equal(t, 429, te.StatusCode)
		assert.Equal(t, 30*time.Second, te.RetryAfter)
		assert.True(t, te.Retryable())
	})

	t.Run("not found is not retryable", func(t *testing.T) {
		err := classify("validate", responseWith(404, nil), errors.New("404 not found"))

		var te *model.TrackerError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, model.TrackerErrNotFound, te.Kind)
		assert.False(t, te.Retryable())
	})

	t.Run("missing response classifies as network", func(t *testing.T) {
		err := classify("list issues", nil, errors.New("dial tcp: connection refused"))

		var te *model.TrackerError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, model.TrackerErrNetwork, te.Kind)
		assert.Equal(t, 0, te.StatusCode)
		assert.True(t, te.Retryable())
	})

	t.Run("unparseable retry-after is ignored", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", "soon")
		err := classify("create issue", responseWith(429, header), errors.New("too many requests"))

		var te *model.TrackerError
		require.ErrorAs(t, err, &te)
		assert.Zero(t, te.RetryAfter)
	})
}

func TestMapIssue(t *testing.T) {
	closed := mapIssue(&gitlab.Issue{ID: 100, IID: 7, State: "closed", WebURL: "https://gitlab.example/p/-/issues/7"})
	assert.Equal(t, model.Issue{ID: 100, Number: 7, State: model.IssueStateClosed, WebURL: "https://gitlab.example/p/-/issues/7"}, closed)

	opened := mapIssue(&gitlab.Issue{ID: 101, IID: 8, State: "opened"})
	assert.Equal(t, model.IssueStateOpen, opened.State)
}

func TestGetIssuesByNumbers_Bounds(t *testing.T) {
	c := &Client{}

	got, err := c.GetIssuesByNumbers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got, "empty input must not hit the API")

	over := make([]int, maxIIDsPerRequest+1)
	_, err = c.GetIssuesByNumbers(context.Background(), over)
	require.Error(t, err)
}

func TestMaxBatchSize(t *testing.T) {
	assert.Equal(t, maxIIDsPerRequest, (&Client{}).MaxBatchSize())
}
