// Package gitlab implements the TrackerClient port using the official
// GitLab API client.
package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
	"github.com/ericfisherdev/reviewmarks/internal/domain/port/driven"
	"github.com/ericfisherdev/reviewmarks/internal/retry"
)

// Compile-time interface satisfaction check.
var _ driven.TrackerClient = (*Client)(nil)

// maxIIDsPerRequest is the GitLab API's cap on iids[] filters per
// issues list request.
const maxIIDsPerRequest = 100

// Client implements the TrackerClient port against a GitLab project.
type Client struct {
	gl      *gitlab.Client
	project string
}

// NewClient creates a GitLab tracker client. baseURL selects a
// self-hosted instance; empty means gitlab.com. project is the full
// project path, e.g. "group/subgroup/project".
func NewClient(baseURL, token, project string, timeout time.Duration) (*Client, error) {
	if project == "" {
		return nil, fmt.Errorf("gitlab: project is required")
	}

	httpClient := &http.Client{Timeout: timeout}
	opts := []gitlab.ClientOptionFunc{gitlab.WithHTTPClient(httpClient)}
	if baseURL != "" {
		apiURL := strings.TrimSuffix(baseURL, "/") + "/api/v4"
		opts = append(opts, gitlab.WithBaseURL(apiURL))
	}

	gl, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	return &Client{gl: gl, project: project}, nil
}

// Validate confirms the configured project is reachable with the given
// credentials before any mutation happens.
func (c *Client) Validate(ctx context.Context) error {
	return retry.Do(ctx, func() error {
		_, resp, err := c.gl.Projects.GetProject(c.project, nil, gitlab.WithContext(ctx))
		return classify("validate project "+c.project, resp, err)
	})
}

// CreateIssue opens an issue in the configured project and returns it
// with the human-facing IID as Number.
func (c *Client) CreateIssue(ctx context.Context, in model.NewIssue) (model.Issue, error) {
	opts := &gitlab.CreateIssueOptions{
		Title:       gitlab.Ptr(in.Title),
		Description: gitlab.Ptr(in.Body),
	}
	if len(in.Labels) > 0 {
		labels := gitlab.LabelOptions(in.Labels)
		opts.Labels = &labels
	}
	if in.Assignee != nil && in.Assignee.ID != 0 {
		opts.AssigneeIDs = &[]int64{in.Assignee.ID}
	}

	var created model.Issue
	err := retry.Do(ctx, func() error {
		issue, resp, err := c.gl.Issues.CreateIssue(c.project, opts, gitlab.WithContext(ctx))
		if err != nil {
			return classify("create issue", resp, err)
		}
		created = mapIssue(issue)
		return nil
	})
	return created, err
}

// GetIssuesByNumbers fetches issues by IID in one list request. IIDs
// the project has no issue for are absent from the result.
func (c *Client) GetIssuesByNumbers(ctx context.Context, numbers []int) (map[int]model.Issue, error) {
	if len(numbers) == 0 {
		return map[int]model.Issue{}, nil
	}
	if len(numbers) > maxIIDsPerRequest {
		return nil, fmt.Errorf("gitlab: %d iids exceed the per-request cap of %d", len(numbers), maxIIDsPerRequest)
	}

	iids := make([]int64, len(numbers))
	for i, n := range numbers {
		iids[i] = int64(n)
	}
	opts := &gitlab.ListProjectIssuesOptions{
		IIDs:        &iids,
		ListOptions: gitlab.ListOptions{PerPage: maxIIDsPerRequest},
	}

	result := make(map[int]model.Issue, len(numbers))
	for {
		var issues []*gitlab.Issue
		var resp *gitlab.Response
		err := retry.Do(ctx, func() error {
			var reqErr error
			issues, resp, reqErr = c.gl.Issues.ListProjectIssues(c.project, opts, gitlab.WithContext(ctx))
			return classify("list issues", resp, reqErr)
		})
		if err != nil {
			return nil, err
		}

		for _, issue := range issues {
			mapped := mapIssue(issue)
			result[mapped.Number] = mapped
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

// SearchUsers returns candidate users for an assignee handle.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]model.UserRef, error) {
	opts := &gitlab.ListUsersOptions{Search: gitlab.Ptr(query)}

	var users []*gitlab.User
	err := retry.Do(ctx, func() error {
		var resp *gitlab.Response
		var reqErr error
		users, resp, reqErr = c.gl.Users.ListUsers(opts, gitlab.WithContext(ctx))
		return classify("search users", resp, reqErr)
	})
	if err != nil {
		return nil, err
	}

	refs := make([]model.UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, model.UserRef{
			ID:       int64(u.ID),
			Username: u.Username,
			Name:     u.Name,
		})
	}
	return refs, nil
}

// MaxBatchSize returns the IID cap per lookup request.
func (c *Client) MaxBatchSize() int { return maxIIDsPerRequest }

// classify wraps a failed request in the tracker error taxonomy,
// carrying the Retry-After hint when the server rate-limited us.
func classify(op string, resp *gitlab.Response, err error) error {
	if err == nil {
		return nil
	}
	status := 0
	var retryAfter time.Duration
	if resp != nil {
		status = resp.StatusCode
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, parseErr := strconv.Atoi(v); parseErr == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
	}
	return &model.TrackerError{
		Kind:       model.ClassifyStatus(status),
		StatusCode: status,
		RetryAfter: retryAfter,
		Op:         "gitlab: " + op,
		Err:        err,
	}
}

func mapIssue(issue *gitlab.Issue) model.Issue {
	state := model.IssueStateOpen
	if issue.State == "closed" {
		state = model.IssueStateClosed
	}
	return model.Issue{
		ID:     int64(issue.ID),
		Number: int(issue.IID),
		State:  state,
		WebURL: issue.WebURL,
	}
}
