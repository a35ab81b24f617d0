package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// State classifies what currently occupies a path. It is read fresh from
// the filesystem on every call; nothing is cached.
type State int

const (
	// Absent means no entry exists at the path.
	Absent State = iota

	// Entry means a non-symlink entry exists there: a regular file, a
	// directory, a device, anything lstat reports that is not a link.
	Entry

	// Link means a symbolic link exists there, whether or not its target
	// does.
	Link
)

// Path is a filesystem path. It may be absolute or relative to the
// working directory.
type Path string

func MakePath(names ...string) Path {
	return Path(filepath.Join(names...))
}

func (p Path) Join(names ...string) Path {
	args := []string{string(p)}
	args = append(args, names...)
	return MakePath(args...)
}

func (p Path) Parent() Path {
	return Path(filepath.Dir(string(p)))
}

// Abs returns the path in absolute, cleaned form, resolving relative
// paths against the working directory.
func (p Path) Abs() (Path, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return Path(""), err
	}

	return Path(abs), nil
}

func (p Path) IsAbs() bool {
	return filepath.IsAbs(string(p))
}

func (p Path) MkdirAll(perm os.FileMode) error {
	return os.MkdirAll(string(p), perm)
}

func (p Path) Remove() error {
	return os.Remove(string(p))
}

func (p Path) WriteFile(data []byte, perm os.FileMode) error {
	return os.WriteFile(string(p), data, perm)
}

func (p Path) Open() (*os.File, error) {
	return os.Open(string(p))
}

func (p Path) Lstat() (fs.FileInfo, error) {
	return os.Lstat(string(p))
}

// Readlink returns the raw, unresolved target of the link at p, exactly
// as it was stored when the link was created.
func (p Path) Readlink() (Path, error) {
	target, err := os.Readlink(string(p))
	if err != nil {
		return Path(""), err
	}

	return Path(target), nil
}

// Symlink creates a symbolic link at p whose stored target is the raw
// string form of target.
func (p Path) Symlink(target Path) error {
	return os.Symlink(string(target), string(p))
}

// Rename moves p over to, replacing any entry already there.
func (p Path) Rename(to Path) error {
	return os.Rename(string(p), string(to))
}

// State reports what occupies p right now.
func (p Path) State() (State, error) {
	info, err := p.Lstat()
	if err != nil {
		if os.IsNotExist(err) {
			return Absent, nil
		}

		return Absent, err
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		return Link, nil
	}

	return Entry, nil
}

func (p Path) Exists() (bool, error) {
	state, err := p.State()
	if err != nil {
		return false, err
	}

	return state != Absent, nil
}

func (p Path) String() string {
	return string(p)
}
