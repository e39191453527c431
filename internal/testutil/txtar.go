// SPDX-License-Identifier: MIT

// Package testutil provides testing utilities for mavgen.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"
)

// DefinitionsDir is the archive directory holding input definition files.
const DefinitionsDir = "definitions/"

// Case represents a parsed test case from a txtar archive.
type Case struct {
	// Name is the test case name (typically the filename without extension).
	Name string

	// Description is the first comment block before any files.
	Description string

	// Flags contains any flags parsed from "Flags: ..." line in the description.
	Flags []string

	// Definitions maps file names (e.g., "common.xml") to definition
	// documents.
	Definitions map[string][]byte

	// Want maps relative paths (e.g., "minimal/dialect.go") to expected content.
	Want map[string][]byte
}

// ParseCase parses a txtar archive into a test Case.
// The archive should contain:
//   - A description comment (text before first file)
//   - One or more "definitions/<name>.xml" files
//   - One or more "want/<filename>" files with expected output
//
// The description may contain a "Flags: flag1, flag2" line to pass flags
// to the generator.
func ParseCase(name string, ar *txtar.Archive) (*Case, error) {
	c := &Case{
		Name:        name,
		Description: string(ar.Comment),
		Definitions: make(map[string][]byte),
		Want:        make(map[string][]byte),
	}

	c.parseFlags()

	for _, f := range ar.Files {
		switch {
		case strings.HasPrefix(f.Name, DefinitionsDir):
			c.Definitions[strings.TrimPrefix(f.Name, DefinitionsDir)] = f.Data
		case strings.HasPrefix(f.Name, "want/"):
			relPath := strings.TrimPrefix(f.Name, "want/")
			c.Want[relPath] = f.Data
		default:
			return nil, fmt.Errorf("unexpected file in archive: %q (expected definitions/* or want/*)", f.Name)
		}
	}

	if len(c.Definitions) == 0 {
		return nil, fmt.Errorf("missing definitions/* files in archive")
	}

	if len(c.Want) == 0 {
		return nil, fmt.Errorf("missing want/* files in archive")
	}

	return c, nil
}

// parseFlags extracts flags from "Flags: ..." line in the description.
func (c *Case) parseFlags() {
	for line := range strings.SplitSeq(c.Description, "\n") {
		flagStr, ok := strings.CutPrefix(strings.TrimSpace(line), "Flags:")
		if !ok {
			continue
		}
		for f := range strings.SplitSeq(flagStr, ",") {
			if f = strings.TrimSpace(f); f != "" {
				c.Flags = append(c.Flags, f)
			}
		}
		break
	}
}

// WriteDefinitions writes the case's definition files to a new temporary
// directory and returns its path.
func (c *Case) WriteDefinitions(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range c.Definitions {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write definition %q: %v", name, err)
		}
	}
	return dir
}

// GenerateFunc generates output from a directory of definition files.
// It returns a map of filename to content.
type GenerateFunc func(dir string, flags []string) (map[string][]byte, error)

// Run executes the test case using the provided generate function.
// It compares generated output against expected output and reports differences.
func (c *Case) Run(t *testing.T, generate GenerateFunc) {
	t.Helper()

	got, err := generate(c.WriteDefinitions(t), c.Flags)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	for wantFile := range c.Want {
		if _, ok := got[wantFile]; !ok {
			t.Errorf("missing output file: %q", wantFile)
		}
	}

	for gotFile := range got {
		if _, ok := c.Want[gotFile]; !ok {
			t.Errorf("unexpected output file: %q", gotFile)
		}
	}

	for wantFile, wantContent := range c.Want {
		gotContent, ok := got[wantFile]
		if !ok {
			continue
		}
		if diff := cmp.Diff(normalizeContent(wantContent), normalizeContent(gotContent)); diff != "" {
			t.Errorf("file %q mismatch (-want +got):\n%s", wantFile, diff)
		}
	}
}

// normalizeContent normalizes content for comparison:
// - Trims trailing whitespace from each line
// - Ensures consistent line endings
// - Trims trailing newlines
func normalizeContent(content []byte) string {
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	result := strings.Join(lines, "\n")
	return strings.TrimRight(result, "\n")
}

// UpdateArchive updates a txtar archive with new generated content.
// Used for golden file updates with -update flag.
func UpdateArchive(ar *txtar.Archive, got map[string][]byte) *txtar.Archive {
	result := &txtar.Archive{
		Comment: ar.Comment,
	}

	for _, f := range ar.Files {
		if strings.HasPrefix(f.Name, DefinitionsDir) {
			result.Files = append(result.Files, f)
		}
	}

	var wantFiles []string
	for name := range got {
		wantFiles = append(wantFiles, name)
	}
	sort.Strings(wantFiles)

	for _, name := range wantFiles {
		content := got[name]
		if len(content) > 0 && content[len(content)-1] != '\n' {
			content = append(content, '\n')
		}
		result.Files = append(result.Files, txtar.File{
			Name: "want/" + name,
			Data: content,
		})
	}

	return result
}

// FormatArchive formats an archive to bytes.
func FormatArchive(ar *txtar.Archive) []byte {
	return txtar.Format(ar)
}

// LoadTestCases loads all txtar test cases from a directory.
func LoadTestCases(t *testing.T, dir string) []*Case {
	t.Helper()

	pattern := filepath.Join(dir, "*.txtar")
	files, err := filepath.Glob(pattern)
	if err != nil {
		t.Fatalf("glob %q: %v", pattern, err)
	}

	if len(files) == 0 {
		t.Fatalf("no txtar files found in %q", dir)
	}

	var cases []*Case
	for _, file := range files {
		ar, err := txtar.ParseFile(file)
		if err != nil {
			t.Fatalf("parse %q: %v", file, err)
		}

		name := strings.TrimSuffix(filepath.Base(file), ".txtar")
		c, err := ParseCase(name, ar)
		if err != nil {
			t.Fatalf("parse case %q: %v", name, err)
		}

		cases = append(cases, c)
	}

	sort.Slice(cases, func(i, j int) bool {
		return cases[i].Name < cases[j].Name
	})

	return cases
}
