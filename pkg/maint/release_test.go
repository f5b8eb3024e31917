package maint

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testHead  = "0123456789abcdef0123456789abcdef01234567"
	testNotes = "### Added\n\n- Colour output\n\n"
)

// releaseRunner returns a fake runner that produces the files cmake, git archive
// and gpg would create, and the output of the capture-mode tools
func releaseRunner(t *testing.T, dir string) *fakeRunner {
	r := newFakeRunner()
	r.outputs["markdown-extract"] = testNotes
	r.effects = func(c Command) error {
		line := commandLine(c)
		switch {
		case line == "cmake --build build -t docs":
			writeFile(t, filepath.Join(dir, "build", "html", "index.html"), "<html></html>")
			writeFile(t, filepath.Join(dir, "build", "html", "search", "all.js"), "var x;")
		case strings.HasPrefix(line, "git archive -o "):
			writeFile(t, filepath.Join(c.Dir, c.Args[2]), "source")
		case c.Name == "gpg":
			writeFile(t, filepath.Join(c.Dir, c.Args[len(c.Args)-1]+".asc"), "signature")
		case c.Name == "sha256sum" || c.Name == "b3sum":
			var sb strings.Builder
			for i, f := range c.Args {
				fmt.Fprintf(&sb, "%064x  %s\n", i, f)
			}
			r.outputs[c.Name] = sb.String()
		}
		return nil
	}
	return r
}

func setupReleaseTree(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "CMakeLists.txt"), testCMakeLists)
	writeFile(t, filepath.Join(dir, "build", "stale.o"), "old")
	return dir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRelease_EndToEnd(t *testing.T) {
	dir := setupReleaseTree(t)
	runner := releaseRunner(t, dir)
	env := newTestEnv(t, dir, runner, &fakeRepo{head: testHead})

	require.NoError(t, Dispatch(context.Background(), env, Release{Version: "2.0.0"}))

	releaseDir := filepath.Join(dir, "release")
	assert.Equal(t, []string{
		"B3SUMS",
		"SHA256SUMS",
		"femtolog-2.0.0.tar.gz",
		"femtolog-html-docs-2.0.0.tar.gz",
		"femtolog-release-notes-2.0.0.md",
	}, listDir(t, releaseDir))

	notes, err := os.ReadFile(filepath.Join(releaseDir, "femtolog-release-notes-2.0.0.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Release Notes: femtolog v2.0.0\n\n### Added\n\n- Colour output\n", string(notes))

	cmake, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(cmake), "project(femtolog VERSION 2.0.0)\n")
	assert.NoFileExists(t, filepath.Join(dir, "build", "stale.o"))

	assert.Equal(t, []string{
		"git commit -asm Release 2.0.0",
		"cmake -DCMAKE_EXPORT_COMPILE_COMMANDS=ON -B build .",
		"cmake --build build",
		"cmake --build build -t docs",
		"git archive -o release/femtolog-2.0.0.tar.gz --prefix=femtolog-2.0.0/ " + testHead,
		"markdown-extract -n ^2.0.0 ChangeLog.md",
		"sha256sum femtolog-release-notes-2.0.0.md femtolog-2.0.0.tar.gz femtolog-html-docs-2.0.0.tar.gz",
		"b3sum femtolog-release-notes-2.0.0.md femtolog-2.0.0.tar.gz femtolog-html-docs-2.0.0.tar.gz",
		"git tag -m femtolog v2.0.0 v2.0.0 " + testHead,
		"git push origin",
		"git push origin " + testHead + ":refs/heads/release",
		"git push origin v2.0.0",
		"glab release create v2.0.0 -n femtolog v2.0.0 -F- femtolog-release-notes-2.0.0.md femtolog-2.0.0.tar.gz femtolog-html-docs-2.0.0.tar.gz SHA256SUMS B3SUMS",
		"git push gh",
		"git push gh " + testHead + ":refs/heads/release",
		"git push gh v2.0.0",
		"gh release create v2.0.0 -t femtolog v2.0.0 -F- femtolog-release-notes-2.0.0.md femtolog-2.0.0.tar.gz femtolog-html-docs-2.0.0.tar.gz SHA256SUMS B3SUMS",
	}, runner.lines())

	for _, prefix := range []string{"glab release create", "gh release create"} {
		created := runner.find(prefix)
		require.Len(t, created, 1)
		assert.Equal(t, releaseDir, created[0].Dir)
		assert.Equal(t, "### Added\n\n- Colour output\n", created[0].Stdin)
	}
	for _, c := range runner.find("sha256sum") {
		assert.Equal(t, releaseDir, c.Dir)
		assert.True(t, c.Capture)
	}
}

func TestRelease_ChecksumFilesListEachArtifactOnce(t *testing.T) {
	dir := setupReleaseTree(t)
	runner := releaseRunner(t, dir)
	env := newTestEnv(t, dir, runner, nil)

	require.NoError(t, Release{Version: "1.2.3", NoGitLab: true, NoGitHub: true}.Run(context.Background(), env))

	want := NewArtifacts("femtolog", "1.2.3").Digested()
	for _, sums := range []string{"SHA256SUMS", "B3SUMS"} {
		data, err := os.ReadFile(filepath.Join(dir, "release", sums))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		require.Len(t, lines, len(want), sums)
		for i, line := range lines {
			assert.True(t, strings.HasSuffix(line, "  "+want[i]), line)
		}
	}
}

func TestRelease_DocsTarballPrefix(t *testing.T) {
	dir := setupReleaseTree(t)
	runner := releaseRunner(t, dir)
	env := newTestEnv(t, dir, runner, nil)

	require.NoError(t, Release{Version: "1.2.3", NoGitLab: true, NoGitHub: true}.Run(context.Background(), env))

	names := tarNames(t, filepath.Join(dir, "release", "femtolog-html-docs-1.2.3.tar.gz"))
	assert.Contains(t, names, "femtolog-html-docs-1.2.3/")
	assert.Contains(t, names, "femtolog-html-docs-1.2.3/index.html")
	assert.Contains(t, names, "femtolog-html-docs-1.2.3/search/all.js")
	for _, n := range names {
		assert.Equal(t, "femtolog-html-docs-1.2.3", strings.SplitN(n, "/", 2)[0])
	}

	archive := runner.find("git archive")
	require.Len(t, archive, 1)
	assert.Contains(t, archive[0].Args, "--prefix=femtolog-1.2.3/")
}

func TestRelease_Signed(t *testing.T) {
	dir := setupReleaseTree(t)
	runner := releaseRunner(t, dir)
	env := newTestEnv(t, dir, runner, nil)

	require.NoError(t, Release{Version: "1.0.1", Sign: true, NoGitLab: true}.Run(context.Background(), env))

	assert.Equal(t, []string{
		"B3SUMS",
		"B3SUMS.asc",
		"SHA256SUMS",
		"SHA256SUMS.asc",
		"femtolog-1.0.1.tar.gz",
		"femtolog-html-docs-1.0.1.tar.gz",
		"femtolog-release-notes-1.0.1.md",
	}, listDir(t, filepath.Join(dir, "release")))

	assert.Len(t, runner.find("gpg --detach-sign -a release/SHA256SUMS"), 1)
	assert.Len(t, runner.find("gpg --detach-sign -a release/B3SUMS"), 1)
	assert.Empty(t, runner.find("glab"))

	created := runner.find("gh release create")
	require.Len(t, created, 1)
	assert.Equal(t, []string{"SHA256SUMS", "B3SUMS", "SHA256SUMS.asc", "B3SUMS.asc"}, created[0].Args[len(created[0].Args)-4:])
}

func TestRelease_NoForgesIsLocalOnly(t *testing.T) {
	dir := setupReleaseTree(t)
	runner := releaseRunner(t, dir)
	env := newTestEnv(t, dir, runner, nil)

	require.NoError(t, Release{Version: "1.2.3", NoGitLab: true, NoGitHub: true}.Run(context.Background(), env))

	assert.Empty(t, runner.find("git push"))
	assert.Empty(t, runner.find("glab"))
	assert.Empty(t, runner.find("gh "))
	assert.Len(t, runner.find("git tag"), 1)
	assert.Len(t, runner.find("git archive"), 1)
	assert.Len(t, listDir(t, filepath.Join(dir, "release")), 5)
}

func TestRelease_ForgeDisabledInConfig(t *testing.T) {
	dir := setupReleaseTree(t)
	runner := releaseRunner(t, dir)
	env := newTestEnv(t, dir, runner, nil)
	env.Config.Forges.GitHub.Enabled = false

	require.NoError(t, Release{Version: "1.2.3"}.Run(context.Background(), env))

	assert.Len(t, runner.find("glab release create"), 1)
	assert.Empty(t, runner.find("gh release create"))
	assert.Empty(t, runner.find("git push gh"))
}

func TestRelease_ExistingTag(t *testing.T) {
	dir := setupReleaseTree(t)
	runner := releaseRunner(t, dir)
	env := newTestEnv(t, dir, runner, &fakeRepo{head: testHead, tags: map[string]bool{"v1.0.0": true}})

	err := Release{Version: "1.0.0"}.Run(context.Background(), env)
	require.Error(t, err)
	assert.True(t, IsTagExistsError(err))
	assert.Empty(t, runner.calls)
	assert.FileExists(t, filepath.Join(dir, "build", "stale.o"))
}

func TestRelease_FailureAbortsRemainingSteps(t *testing.T) {
	tests := []struct {
		name     string
		fail     string
		code     int
		notAfter []string
	}{
		{"checksum", "b3sum", 3, []string{"git tag", "git push", "glab", "gh "}},
		{"changelog section missing", "markdown-extract", 1, []string{"sha256sum", "git tag"}},
		{"gitlab push", "git push origin", 128, []string{"glab", "git push gh", "gh "}},
		{"github release", "gh release create", 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupReleaseTree(t)
			runner := releaseRunner(t, dir)
			runner.failures[tt.fail] = tt.code
			env := newTestEnv(t, dir, runner, nil)

			err := Dispatch(context.Background(), env, Release{Version: "1.2.3"})
			require.Error(t, err)
			assert.Equal(t, tt.code, ExitCode(err))
			for _, prefix := range tt.notAfter {
				assert.Empty(t, runner.find(prefix), prefix)
			}
		})
	}
}

func TestRelease_DryRunTouchesNothing(t *testing.T) {
	dir := setupReleaseTree(t)
	runner := newFakeRunner()
	env := newTestEnv(t, dir, runner, nil)
	env.Config.DryRun = true

	require.NoError(t, Release{Version: "1.2.3"}.Run(context.Background(), env))

	assert.FileExists(t, filepath.Join(dir, "build", "stale.o"))
	assert.NoDirExists(t, filepath.Join(dir, "release"))
	data, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
	require.NoError(t, err)
	assert.Equal(t, testCMakeLists, string(data))
	assert.Len(t, runner.find("gh release create"), 1)
}

func TestReleaseSignatures(t *testing.T) {
	tests := []struct {
		name     string
		noGitLab bool
		noGitHub bool
		want     []string
	}{
		{"both forges", false, false, []string{
			"glab release upload v1.2.3 SHA256SUMS.asc B3SUMS.asc",
			"gh release upload v1.2.3 SHA256SUMS.asc B3SUMS.asc",
		}},
		{"github only", true, false, []string{"gh release upload v1.2.3 SHA256SUMS.asc B3SUMS.asc"}},
		{"gitlab only", false, true, []string{"glab release upload v1.2.3 SHA256SUMS.asc B3SUMS.asc"}},
		{"neither", true, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "release", "SHA256SUMS.asc"), "sig")
			writeFile(t, filepath.Join(dir, "release", "B3SUMS.asc"), "sig")
			runner := newFakeRunner()
			env := newTestEnv(t, dir, runner, nil)

			err := ReleaseSignatures{Version: "1.2.3", NoGitLab: tt.noGitLab, NoGitHub: tt.noGitHub}.Run(context.Background(), env)
			require.NoError(t, err)

			var got []string
			for _, c := range runner.calls {
				assert.Equal(t, filepath.Join(dir, "release"), c.Dir)
				got = append(got, commandLine(c))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReleaseSignatures_MissingSignature(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "release", "SHA256SUMS.asc"), "sig")
	runner := newFakeRunner()
	env := newTestEnv(t, dir, runner, nil)

	err := ReleaseSignatures{Version: "1.2.3"}.Run(context.Background(), env)
	require.Error(t, err)
	assert.True(t, IsMissingArtifactError(err))
	assert.Contains(t, err.Error(), "B3SUMS.asc")
	assert.Empty(t, runner.calls)
}

func tarNames(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	return names
}
