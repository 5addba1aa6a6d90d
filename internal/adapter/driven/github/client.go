// Package github implements the TrackerClient port using the go-github
// library.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
	"github.com/ericfisherdev/reviewmarks/internal/retry"
)

// Compile-time interface satisfaction check.
var _ driven.TrackerClient = (*Client)(nil)

// maxIssuesPerSync bounds how many issue numbers one sync batch may
// carry. GitHub has no multi-number lookup, so a batch is a sequential
// loop of single reads; the cap just keeps one batch's request count
// reasonable.
const maxIssuesPerSync = 50

// Client implements the TrackerClient port against a GitHub repository.
type Client struct {
	gh    *gh.Client
	owner string
	repo  string
}

// NewClient creates a GitHub tracker client with the following
// transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// repoFullName is "owner/repo".
func NewClient(token, repoFullName string) (*Client, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client, owner: owner, repo: repo}, nil
}

func splitRepo(fullName string) (owner, repo string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository name %q, want owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}

// Validate confirms the repository is reachable with the configured
// token.
func (c *Client) Validate(ctx context.Context) error {
	return retry.Do(ctx, func() error {
		_, resp, err := c.gh.Repositories.Get(ctx, c.owner, c.repo)
		return classify(fmt.Sprintf("validate %s/%s", c.owner, c.repo), resp, err)
	})
}

// CreateIssue opens an issue and returns it. GitHub assigns users by
// login, so the assignee's username is used when present.
func (c *Client) CreateIssue(ctx context.Context, in model.NewIssue) (model.Issue, error) {
	req := &gh.IssueRequest{
		Title: gh.Ptr(in.Title),
		Body:  gh.Ptr(in.Body),
	}
	if len(in.Labels) > 0 {
		req.Labels = &in.Labels
	}
	if in.Assignee != nil && in.Assignee.Username != "" {
		req.Assignees = &[]string{in.Assignee.Username}
	}

	var created model.Issue
	err := retry.Do(ctx, func() error {
		issue, resp, err := c.gh.Issues.Create(ctx, c.owner, c.repo, req)
		if err != nil {
			return classify("create issue", resp, err)
		}
		created = mapIssue(issue)
		return nil
	})
	return created, err
}

// GetIssuesByNumbers reads each issue individually; the REST API has no
// batched read by number. A 404 for a number means the issue is gone
// and is simply absent from the result.
func (c *Client) GetIssuesByNumbers(ctx context.Context, numbers []int) (map[int]model.Issue, error) {
	if len(numbers) > maxIssuesPerSync {
		return nil, fmt.Errorf("github: %d issue numbers exceed the batch cap of %d", len(numbers), maxIssuesPerSync)
	}

	result := make(map[int]model.Issue, len(numbers))
	for _, number := range numbers {
		var issue *gh.Issue
		err := retry.Do(ctx, func() error {
			got, resp, err := c.gh.Issues.Get(ctx, c.owner, c.repo, number)
			if err != nil {
				return classify(fmt.Sprintf("get issue #%d", number), resp, err)
			}
			issue = got
			return nil
		})
		if err != nil {
			var te *model.TrackerError
			if errors.As(err, &te) && te.Kind == model.TrackerErrNotFound {
				continue
			}
			return nil, err
		}
		result[number] = mapIssue(issue)
	}
	return result, nil
}

// SearchUsers returns candidate users for an assignee handle.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]model.UserRef, error) {
	var found *gh.UsersSearchResult
	err := retry.Do(ctx, func() error {
		result, resp, err := c.gh.Search.Users(ctx, query, &gh.SearchOptions{})
		if err != nil {
			return classify("search users", resp, err)
		}
		found = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	refs := make([]model.UserRef, 0, len(found.Users))
	for _, u := range found.Users {
		refs = append(refs, model.UserRef{
			ID:       u.GetID(),
			Username: u.GetLogin(),
			Name:     u.GetName(),
		})
	}
	return refs, nil
}

// MaxBatchSize returns the per-batch issue number cap.
func (c *Client) MaxBatchSize() int { return maxIssuesPerSync }

// classify wraps a failed request in the tracker error taxonomy.
// go-github surfaces rate limiting as dedicated error types carrying
// the reset hint.
func classify(op string, resp *gh.Response, err error) error {
	if err == nil {
		return nil
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	var retryAfter time.Duration
	kind := model.ClassifyStatus(status)

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	switch {
	case errors.As(err, &abuseErr):
		kind = model.TrackerErrRateLimited
		if abuseErr.RetryAfter != nil {
			retryAfter = *abuseErr.RetryAfter
		}
	case errors.As(err, &rateErr):
		kind = model.TrackerErrRateLimited
		retryAfter = time.Until(rateErr.Rate.Reset.Time)
	case status == http.StatusForbidden && resp != nil && resp.Header.Get("Retry-After") != "":
		kind = model.TrackerErrRateLimited
	}

	return &model.TrackerError{
		Kind:       kind,
		StatusCode: status,
		RetryAfter: retryAfter,
		Op:         "github: " + op,
		Err:        err,
	}
}

func mapIssue(issue *gh.Issue) model.Issue {
	state := model.IssueStateOpen
	if issue.GetState() == "closed" {
		state = model.IssueStateClosed
	}
	return model.Issue{
		ID:     issue.GetID(),
		Number: issue.GetNumber(),
		State:  state,
		WebURL: issue.GetHTMLURL(),
	}
}
