package reconcile

import (
	"fmt"
	"io"
	"os"

	"github.com/mylicula/relink/filesystem"
	"github.com/mylicula/relink/logging"
	"github.com/rs/zerolog"
)

// MaxLinkDepth is the longest symlink chain the reconciler will follow
// before reporting ErrTooManyLevels. 40 mirrors the kernel's ELOOP
// limit; any finite bound in the 32-64 range would satisfy callers.
const MaxLinkDepth = 40

// Outcome reports what a successful reconciliation did.
type Outcome int

const (
	// Created means the link path did not exist and the link was created,
	// along with any missing parent directories.
	Created Outcome = iota

	// Updated means an existing symlink pointed at the wrong target and
	// was replaced. This is the only outcome that removes anything.
	Updated

	// Skipped means the link already stored exactly the requested target
	// and the filesystem was left untouched.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Skipped:
		return "skipped"
	}

	return fmt.Sprintf("outcome(%d)", int(o))
}

// ExitCode maps an outcome to the process exit-code convention: 0 for a
// change, 2 for a no-op. Failures exit 1, handled by the caller.
func (o Outcome) ExitCode() int {
	if o == Skipped {
		return 2
	}

	return 0
}

// Reconciler makes link paths converge to requested symlink targets.
// Construct it with New; the zero value has no logger attached.
type Reconciler struct {
	// Verbose enables one human-readable status line per outcome,
	// prefixed with [OK], [SKIP], [UPDATE] or [ERROR].
	Verbose bool

	// Output receives status lines. Defaults to os.Stdout.
	Output io.Writer

	Logger zerolog.Logger
}

func New(verbose bool) Reconciler {
	return Reconciler{
		Verbose: verbose,
		Output:  os.Stdout,
		Logger:  logging.GetLogger("reconcile"),
	}
}

// Reconcile ensures that linkPath is a symbolic link storing source as
// its target. Source may be relative to the working directory and may
// itself be a symlink, as long as its chain terminates. It re-reads the
// filesystem on every call and is idempotent: repeating a successful
// call yields Skipped without touching anything.
//
// Nothing is created or removed unless every precondition passes, and a
// link path occupied by anything other than a symlink is never touched.
func (r Reconciler) Reconcile(source, linkPath string) (Outcome, error) {
	absSource, err := filesystem.Path(source).Abs()
	if err != nil {
		return 0, r.fail(fmt.Errorf("resolving %s: %w", source, err))
	}

	absLink, err := filesystem.Path(linkPath).Abs()
	if err != nil {
		return 0, r.fail(fmt.Errorf("resolving %s: %w", linkPath, err))
	}

	r.Logger.Debug().
		Str("source", source).
		Str("link", linkPath).
		Msg("Reconciling symlink")

	// A link that stores its own path can never resolve, whether or not
	// anything exists there yet.
	if absSource == absLink {
		return 0, r.fail(fmt.Errorf("%w: %s refers to itself", ErrCircularReference, linkPath))
	}

	if err := walkChain(absSource, absLink); err != nil {
		return 0, r.fail(err)
	}

	link := filesystem.Path(linkPath)

	state, err := link.State()
	if err != nil {
		return 0, r.fail(fmt.Errorf("inspecting %s: %w", linkPath, err))
	}

	switch state {
	case filesystem.Absent:
		if err := link.Parent().MkdirAll(0755); err != nil {
			return 0, r.fail(fmt.Errorf("creating parent directories for %s: %w", linkPath, err))
		}

		if err := link.Symlink(filesystem.Path(source)); err != nil {
			return 0, r.fail(fmt.Errorf("creating %s: %w", linkPath, err))
		}

		r.status("[OK] Link created successfully")
		return Created, nil

	case filesystem.Link:
		// The skip check deliberately compares the raw stored target, not
		// a resolved path. A link storing a relative target that happens
		// to resolve to source is still the wrong link.
		target, err := link.Readlink()
		if err != nil {
			return 0, r.fail(fmt.Errorf("reading %s: %w", linkPath, err))
		}

		if target.String() == source {
			r.status("[SKIP] Link already points to correct target")
			return Skipped, nil
		}

		r.Logger.Debug().
			Str("link", linkPath).
			Str("current", target.String()).
			Str("wanted", source).
			Msg("Replacing stale link")

		// Build the replacement beside the stale link and rename it into
		// place, so the link path is never left without a link.
		tmp := filesystem.Path(fmt.Sprintf("%s.%d.tmp", linkPath, os.Getpid()))

		if err := tmp.Symlink(filesystem.Path(source)); err != nil {
			return 0, r.fail(fmt.Errorf("creating replacement for %s: %w", linkPath, err))
		}

		if err := tmp.Rename(link); err != nil {
			tmp.Remove()
			return 0, r.fail(fmt.Errorf("replacing %s: %w", linkPath, err))
		}

		r.status("[UPDATE] Link points to wrong target, replaced")
		return Updated, nil

	default:
		return 0, r.fail(fmt.Errorf("%w: %s", ErrNotASymlink, linkPath))
	}
}

// walkChain follows the symlink chain rooted at source and verifies that
// it terminates at an existing entry, within MaxLinkDepth hops, without
// ever passing through linkPath. Both arguments must be absolute.
// Relative link targets resolve against the directory holding the link,
// matching kernel path resolution.
func walkChain(source, linkPath filesystem.Path) error {
	current := source

	for depth := 0; ; depth++ {
		if depth > MaxLinkDepth {
			return fmt.Errorf("%w: chain from %s exceeds %d hops", ErrTooManyLevels, source, MaxLinkDepth)
		}

		if current == linkPath {
			return fmt.Errorf("%w: resolving %s revisits %s", ErrCircularReference, source, linkPath)
		}

		state, err := current.State()
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", current, err)
		}

		switch state {
		case filesystem.Absent:
			return fmt.Errorf("%w: %s", ErrSourceNotFound, source)
		case filesystem.Entry:
			return nil
		}

		target, err := current.Readlink()
		if err != nil {
			return fmt.Errorf("reading %s: %w", current, err)
		}

		if target.IsAbs() {
			// Clean stored targets like /a/../b so the linkPath
			// comparison sees one spelling per path.
			current = filesystem.MakePath(target.String())
		} else {
			current = current.Parent().Join(target.String())
		}
	}
}

func (r Reconciler) fail(err error) error {
	r.status("[ERROR] " + err.Error())
	r.Logger.Debug().Err(err).Msg("Reconciliation failed")
	return err
}

func (r Reconciler) status(line string) {
	if !r.Verbose {
		return
	}

	w := r.Output
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintln(w, line)
}

// Reconcile is the single-shot form of Reconciler.Reconcile.
func Reconcile(source, linkPath string, verbose bool) (Outcome, error) {
	return New(verbose).Reconcile(source, linkPath)
}
