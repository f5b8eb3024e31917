package maint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// checksumTools maps each digest utility to the sums file it produces
var checksumTools = []struct {
	Tool string
	File string
}{
	{"sha256sum", "SHA256SUMS"},
	{"b3sum", "B3SUMS"},
}

// Artifacts names the files of one release, relative to the release dir
type Artifacts struct {
	Notes      string
	Source     string
	Docs       string
	Sums       []string
	Signatures []string
}

// NewArtifacts returns the file names for project at version
func NewArtifacts(project, version string) Artifacts {
	a := Artifacts{
		Notes:  fmt.Sprintf("%s-release-notes-%s.md", project, version),
		Source: fmt.Sprintf("%s-%s.tar.gz", project, version),
		Docs:   fmt.Sprintf("%s-html-docs-%s.tar.gz", project, version),
	}
	for _, c := range checksumTools {
		a.Sums = append(a.Sums, c.File)
		a.Signatures = append(a.Signatures, c.File+".asc")
	}
	return a
}

// Digested returns the files covered by the checksum lists
func (a Artifacts) Digested() []string {
	return []string{a.Notes, a.Source, a.Docs}
}

// Upload returns every file attached to the forge release
func (a Artifacts) Upload(signed bool) []string {
	files := append(a.Digested(), a.Sums...)
	if signed {
		files = append(files, a.Signatures...)
	}
	return files
}

// ExtractNotes returns the changelog section for version, newline terminated
func ExtractNotes(ctx context.Context, env *Env, version string) (string, error) {
	cfg := env.Config
	c := Cmd("markdown-extract", "-n", "^"+version, cfg.ChangeLog).In(cfg.Dir).Captured()
	out, err := env.run(ctx, "extract notes", c)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out) + "\n", nil
}

// notesDocument prefixes the extracted changelog section with a release heading
func notesDocument(project, version, notes string) string {
	return fmt.Sprintf("# Release Notes: %s v%s\n\n%s", project, version, notes)
}

// writeChecksums runs each digest tool over files inside the release dir and
// stores its output in the matching sums file
func writeChecksums(ctx context.Context, env *Env, files []string) error {
	dir := env.Config.Path(env.Config.ReleaseDir)
	for _, c := range checksumTools {
		out, err := env.run(ctx, c.Tool, Cmd(c.Tool, files...).In(dir).Captured())
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, c.File)
		err = env.mutate("write "+dst, func() error {
			return os.WriteFile(dst, []byte(out), 0o644)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// requireFiles fails with *ErrMissingArtifact for the first absent file in dir
func requireFiles(dir string, files []string) error {
	for _, f := range files {
		p := filepath.Join(dir, f)
		if !fileExists(p) {
			return &ErrMissingArtifact{Path: p}
		}
	}
	return nil
}
