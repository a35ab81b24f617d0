package reconcile

import "errors"

var (
	// ErrSourceNotFound means the source path, after following any chain
	// of existing symlinks, does not lead to an existing entry.
	ErrSourceNotFound = errors.New("reconcile: source does not exist")

	// ErrCircularReference means resolving the source would revisit the
	// link path itself, either directly or through existing symlinks.
	ErrCircularReference = errors.New("reconcile: circular symlink reference")

	// ErrTooManyLevels means the symlink chain rooted at the source is
	// longer than MaxLinkDepth hops.
	ErrTooManyLevels = errors.New("reconcile: too many levels of symbolic links")

	// ErrNotASymlink means the link path is occupied by something that is
	// not a symlink. The entry is never touched.
	ErrNotASymlink = errors.New("reconcile: link path exists and is not a symlink")
)
