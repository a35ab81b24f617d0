package reconcile

import (
	"testing"

	"github.com/mylicula/relink/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, path filesystem.Path, contents string) {
	t.Helper()

	require.NoError(t, path.Parent().MkdirAll(0755))
	require.NoError(t, path.WriteFile([]byte(contents), 0644))
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	home := t.TempDir()
	t.Setenv("HOME", home)

	manifest := filesystem.MakePath(dir, "links.toml")
	writeManifest(t, manifest, `
[[links]]
source = "scripts/backup.sh"
link = "~/.local/bin/backup"

[[links]]
source = "/opt/tool/tool"
link = "/usr/local/bin/tool"
`)

	m, err := Loader{Path: manifest}.Load()
	require.NoError(t, err)
	require.Len(t, m.Links, 2)

	// Relative sources resolve against the manifest directory, ~ against
	// the user's home.
	assert.Equal(t, dir+"/scripts/backup.sh", m.Links[0].Source)
	assert.Equal(t, home+"/.local/bin/backup", m.Links[0].Link)

	assert.Equal(t, "/opt/tool/tool", m.Links[1].Source)
	assert.Equal(t, "/usr/local/bin/tool", m.Links[1].Link)
}

func TestLoaderMissingFields(t *testing.T) {
	dir := t.TempDir()

	manifest := filesystem.MakePath(dir, "links.toml")
	writeManifest(t, manifest, `
[[links]]
source = "scripts/backup.sh"
`)

	_, err := Loader{Path: manifest}.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "links[0]")
}

func TestLoaderBadTOML(t *testing.T) {
	dir := t.TempDir()

	manifest := filesystem.MakePath(dir, "links.toml")
	writeManifest(t, manifest, "[[links]\nnot toml")

	_, err := Loader{Path: manifest}.Load()
	require.Error(t, err)
}

func TestLoaderMissingManifest(t *testing.T) {
	_, err := Loader{Path: filesystem.MakePath(t.TempDir(), "links.toml")}.Load()
	require.Error(t, err)
}

func TestApplyContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()

	source := filesystem.MakePath(dir, "scripts", "backup.sh")
	writeFile(t, source, "#!/bin/sh\n")

	// The first entry fails: its link path is occupied by a file.
	occupied := filesystem.MakePath(dir, "occupied")
	writeFile(t, occupied, "precious")

	correct := filesystem.MakePath(dir, "correct")
	makeLink(t, correct, source.String())

	fresh := filesystem.MakePath(dir, "bin", "backup")

	entries := []Entry{
		{Source: source.String(), Link: occupied.String()},
		{Source: source.String(), Link: correct.String()},
		{Source: source.String(), Link: fresh.String()},
	}

	var reported []Entry
	summary := testReconciler().Apply(entries, func(entry Entry, err error) {
		require.ErrorIs(t, err, ErrNotASymlink)
		reported = append(reported, entry)
	})

	// The failure did not stop the entries after it.
	assert.Equal(t, Summary{Created: 1, Skipped: 1, Failed: 1}, summary)
	assert.Equal(t, 1, summary.ExitCode())

	require.Len(t, reported, 1)
	assert.Equal(t, occupied.String(), reported[0].Link)

	assertLink(t, fresh, source.String())
}

func TestApplyExitCodes(t *testing.T) {
	dir := t.TempDir()

	source := filesystem.MakePath(dir, "a.txt")
	writeFile(t, source, "payload")

	link := filesystem.MakePath(dir, "link")
	entries := []Entry{{Source: source.String(), Link: link.String()}}

	r := testReconciler()

	// First pass changes the filesystem, the second finds nothing to do.
	summary := r.Apply(entries, nil)
	assert.Equal(t, Summary{Created: 1}, summary)
	assert.Equal(t, 0, summary.ExitCode())
	assert.True(t, summary.Changed())

	summary = r.Apply(entries, nil)
	assert.Equal(t, Summary{Skipped: 1}, summary)
	assert.Equal(t, 2, summary.ExitCode())
	assert.False(t, summary.Changed())
}

func TestSummaryString(t *testing.T) {
	summary := Summary{Created: 2, Updated: 1, Skipped: 3, Failed: 1}
	assert.Equal(t, "2 created, 1 updated, 3 skipped, 1 failed", summary.String())
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filesystem.MakePath(dir, "scripts", "backup.sh"), "#!/bin/sh\n")
	writeFile(t, filesystem.MakePath(dir, "scripts", "sync.sh"), "#!/bin/sh\n")

	manifest := filesystem.MakePath(dir, "links.toml")
	writeManifest(t, manifest, `
[[links]]
source = "scripts/backup.sh"
link = "bin/backup"

[[links]]
source = "scripts/sync.sh"
link = "bin/sync"
`)

	m, err := Loader{Path: manifest}.Load()
	require.NoError(t, err)

	r := testReconciler()

	for _, entry := range m.Links {
		outcome, err := r.Reconcile(entry.Source, entry.Link)
		require.NoError(t, err)
		require.Equal(t, Created, outcome)
	}

	// A second pass is a no-op across the board.
	for _, entry := range m.Links {
		outcome, err := r.Reconcile(entry.Source, entry.Link)
		require.NoError(t, err)
		require.Equal(t, Skipped, outcome)
	}

	assertLink(t, filesystem.MakePath(dir, "bin", "backup"), dir+"/scripts/backup.sh")
}
