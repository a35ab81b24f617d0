package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mylicula/relink/filesystem"
	"github.com/pelletier/go-toml/v2"
)

// Manifest declares the links a machine should converge to.
type Manifest struct {
	Links []Entry `toml:"links"`
}

// Entry is one desired link: Link should end up as a symlink storing
// Source as its target.
type Entry struct {
	Source string `toml:"source"`
	Link   string `toml:"link"`
}

// Loader reads a links.toml manifest. Relative paths in entries resolve
// against the manifest's own directory, and a leading ~ expands to the
// user's home, so a manifest can travel with the dotfiles it describes.
type Loader struct {
	Path filesystem.Path
}

func (l Loader) Load() (*Manifest, error) {
	f, err := l.Path.Open()
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}

	defer f.Close()

	var m Manifest

	if err := toml.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", l.Path, err)
	}

	base := l.Path.Parent()

	for i := range m.Links {
		entry := &m.Links[i]

		if entry.Source == "" || entry.Link == "" {
			return nil, fmt.Errorf("manifest %s: links[%d] needs both source and link", l.Path, i)
		}

		if entry.Source, err = expandPath(entry.Source, base); err != nil {
			return nil, fmt.Errorf("manifest %s: links[%d]: %w", l.Path, i, err)
		}

		if entry.Link, err = expandPath(entry.Link, base); err != nil {
			return nil, fmt.Errorf("manifest %s: links[%d]: %w", l.Path, i, err)
		}
	}

	return &m, nil
}

// Summary aggregates what a batch of reconciliations did.
type Summary struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

func (s Summary) Changed() bool {
	return s.Created+s.Updated > 0
}

// ExitCode maps a batch to the process exit-code convention: 1 if any
// entry failed, 0 if any link changed, 2 when everything was already
// correct.
func (s Summary) ExitCode() int {
	switch {
	case s.Failed > 0:
		return 1
	case s.Changed():
		return 0
	default:
		return 2
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%d created, %d updated, %d skipped, %d failed",
		s.Created, s.Updated, s.Skipped, s.Failed)
}

// Apply reconciles every entry in order. Entries are independent: a
// failing entry is passed to report and the rest still run.
func (r Reconciler) Apply(entries []Entry, report func(Entry, error)) Summary {
	var s Summary

	for _, entry := range entries {
		outcome, err := r.Reconcile(entry.Source, entry.Link)
		if err != nil {
			s.Failed++

			if report != nil {
				report(entry, err)
			}

			continue
		}

		switch outcome {
		case Created:
			s.Created++
		case Updated:
			s.Updated++
		case Skipped:
			s.Skipped++
		}
	}

	return s
}

func expandPath(path string, base filesystem.Path) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", path, err)
		}

		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}

	if !filepath.IsAbs(path) {
		return base.Join(path).String(), nil
	}

	return path, nil
}
