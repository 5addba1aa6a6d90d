package model

import "time"

// ReviewSession is one stored review run of the external static
// analysis tool. Comments are keyed by the file they target.
type ReviewSession struct {
	ID          string
	Status      string
	Branch      string
	StartedAt   time.Time
	CompletedAt time.Time
	Comments    map[string][]RawComment
}

// RawComment is a single unnormalized comment harvested from a review
// session. The import pipeline turns surviving raw comments into
// records.
type RawComment struct {
	ID          string
	File        string
	StartLine   int
	EndLine     int
	Body        string
	Severity    string   // critical / major / minor / trivial, may be empty
	Tags        []string // classification tags, snake_case
	Suggestions []string
	Reasoning   []string
	Resolved    bool // already handled upstream, never imported
}

// SessionFilter narrows which review sessions an import considers.
// Branch and the date bounds compose by AND; LatestOnly keeps the
// single most recently completed session of whatever survives the
// other filters.
type SessionFilter struct {
	Branch     string
	Since      *time.Time // inclusive lower bound on completion time
	Until      *time.Time // inclusive upper bound on completion time
	LatestOnly bool
}
