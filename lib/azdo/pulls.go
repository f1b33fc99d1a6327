// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package azdo

import (
	"context"
	"fmt"
	"net/url"
)

// PullRequest is the subset of the Azure DevOps pull request resource
// stackhand uses.
type PullRequest struct {
	ID          int    `json:"pullRequestId"`
	Title       string `json:"title"`
	Status      string `json:"status"` // "active", "completed", "abandoned"
	SourceRef   string `json:"sourceRefName"`
	TargetRef   string `json:"targetRefName"`
	Description string `json:"description,omitempty"`
}

// Thread is a pull request comment thread.
type Thread struct {
	ID       int       `json:"id"`
	Status   string    `json:"status"`
	Comments []Comment `json:"comments"`
}

// Comment is one comment within a thread.
type Comment struct {
	ID              int    `json:"id"`
	ParentCommentID int    `json:"parentCommentId"`
	Content         string `json:"content"`
	CommentType     string `json:"commentType"`
}

// newThreadRequest is the body for thread creation. Status "active"
// opens the thread for discussion; commentType "text" marks a human-
// readable comment (as opposed to a code change suggestion).
type newThreadRequest struct {
	Comments []newComment `json:"comments"`
	Status   string       `json:"status"`
}

type newComment struct {
	ParentCommentID int    `json:"parentCommentId"`
	Content         string `json:"content"`
	CommentType     string `json:"commentType"`
}

// GetPullRequest retrieves a pull request by ID.
func (client *Client) GetPullRequest(ctx context.Context, project, repository string, pullRequestID int) (*PullRequest, error) {
	path := fmt.Sprintf("/%s/_apis/git/repositories/%s/pullRequests/%d",
		url.PathEscape(project), url.PathEscape(repository), pullRequestID)

	var pullRequest PullRequest
	if err := client.get(ctx, path, &pullRequest); err != nil {
		return nil, fmt.Errorf("getting PR %s/%s#%d: %w", project, repository, pullRequestID, err)
	}
	return &pullRequest, nil
}

// CreateThread opens a new comment thread on a pull request with a
// single root comment and returns the created thread.
func (client *Client) CreateThread(ctx context.Context, project, repository string, pullRequestID int, comment string) (*Thread, error) {
	if comment == "" {
		return nil, fmt.Errorf("azdo: comment content is empty")
	}

	path := fmt.Sprintf("/%s/_apis/git/repositories/%s/pullRequests/%d/threads",
		url.PathEscape(project), url.PathEscape(repository), pullRequestID)

	request := newThreadRequest{
		Comments: []newComment{
			{
				ParentCommentID: 0,
				Content:         comment,
				CommentType:     "text",
			},
		},
		Status: "active",
	}

	var thread Thread
	if err := client.post(ctx, path, request, &thread); err != nil {
		return nil, fmt.Errorf("creating thread on PR %s/%s#%d: %w", project, repository, pullRequestID, err)
	}

	client.logger.Info("created PR comment thread",
		"project", project,
		"repository", repository,
		"pr", pullRequestID,
		"thread", thread.ID,
	)
	return &thread, nil
}
