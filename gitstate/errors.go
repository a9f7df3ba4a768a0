package gitstate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Error taxonomy. Callers branch with errors.Is; the concrete cause stays
// wrapped underneath.
var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
	ErrCorrupt      = errors.New("corrupt repository data")
	ErrBusy         = errors.New("repository busy")
	ErrInvalid      = errors.New("invalid request")
)

// classify wraps err with the matching taxonomy sentinel. Errors that already
// carry a sentinel pass through unchanged.
func classify(err error, context string) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrNotFound, ErrAccessDenied, ErrCorrupt, ErrBusy, ErrInvalid} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	sentinel := ErrCorrupt
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists),
		errors.Is(err, plumbing.ErrReferenceNotFound),
		errors.Is(err, plumbing.ErrObjectNotFound),
		errors.Is(err, object.ErrFileNotFound),
		errors.Is(err, os.ErrNotExist):
		sentinel = ErrNotFound
	case errors.Is(err, os.ErrPermission):
		sentinel = ErrAccessDenied
	case strings.Contains(err.Error(), "lock"):
		// go-git surfaces index/ref lock contention as plain errors; treat
		// them as transient.
		sentinel = ErrBusy
	}
	return fmt.Errorf("%s: %w: %w", context, sentinel, err)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
