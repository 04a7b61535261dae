package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(p, 0755))
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://poems.example.com\n"), 0600))
}

func TestFindProjectFile_InParent(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b")
	mkdirs(t, filepath.Join(root, ".git"), deep)
	touch(t, filepath.Join(root, ProjectFile))

	path, ok := FindProjectFile(deep)

	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, ProjectFile), path)
}

func TestFindProjectFile_NearestWins(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	mkdirs(t, sub)
	touch(t, filepath.Join(root, ProjectFile))
	touch(t, filepath.Join(sub, ProjectFile))

	path, ok := FindProjectFile(sub)

	require.True(t, ok)
	assert.Equal(t, filepath.Join(sub, ProjectFile), path)
}

func TestFindProjectFile_StopsAtRepositoryRoot(t *testing.T) {
	outer := t.TempDir()
	repo := filepath.Join(outer, "repo")
	sub := filepath.Join(repo, "sub")
	mkdirs(t, filepath.Join(repo, ".git"), sub)
	touch(t, filepath.Join(outer, ProjectFile))

	_, ok := FindProjectFile(sub)

	assert.False(t, ok, "a file above the repository root must not be picked up")
}

func TestFindProjectFile_IgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, filepath.Join(root, ".git"), filepath.Join(root, ProjectFile))

	_, ok := FindProjectFile(root)

	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	root := t.TempDir()
	mkdirs(t, filepath.Join(root, ".git"))
	t.Chdir(root)

	path, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".poetryctl", "config.yaml"), path)

	touch(t, filepath.Join(root, ProjectFile))
	path, err = Resolve()
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(filepath.Join(root, ProjectFile))
	got, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, want, got)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://poems.example.com", cfg.API.BaseURL)
}
