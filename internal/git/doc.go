// Package git fetches git-sourced packages with go-git: a clone of the
// remote checked out at the requested tag, branch or commit. Every call
// takes a context so callers can bound slow remotes.
package git
