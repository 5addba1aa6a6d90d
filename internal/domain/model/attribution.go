package model

// Attribution is the (revision, author) pair version control associates
// with a specific file line.
type Attribution struct {
	Revision string
	Author   string
}
