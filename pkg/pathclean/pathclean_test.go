package pathclean

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diomeh/dsu/pkg/plog"
)

func TestMain(m *testing.M) {
	plog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestCleanName(t *testing.T) {
	testCases := []struct {
		in, want string
	}{
		{"café.txt", "cafe.txt"},
		{"Ñandú", "Nandu"},
		{"plain.txt", "plain.txt"},
		{"日本語.md", ".md"},
		{"日本語", ""},
		{"naïve résumé", "naive resume"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			if got := CleanName(tc.in); got != tc.want {
				t.Errorf("CleanName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseForce(t *testing.T) {
	testCases := map[string]Force{"y": ForceYes, "YES": ForceYes, "n": ForceNo, "no": ForceNo, "auto": ForceAuto}
	for in, want := range testCases {
		got, err := ParseForce(in)
		if err != nil || got != want {
			t.Errorf("ParseForce(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseForce("maybe"); err == nil {
		t.Error("expected error for invalid force")
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(filepath.Base(path)), 0644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestClean_RecursiveDeepestFirst(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "àdir", "éfile.txt"))

	c := NewPathCleaner(strings.NewReader(""), io.Discard, false)
	res, err := c.Clean(context.Background(), []string{root}, &Plan{Recursive: true, Depth: 0})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if !exists(filepath.Join(root, "adir", "efile.txt")) {
		t.Error("expected nested entry to be renamed")
	}
	if res.Renamed != 2 {
		t.Errorf("Renamed = %d, want 2", res.Renamed)
	}
}

func TestClean_DepthLimit(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "àdir", "éfile.txt"))

	c := NewPathCleaner(strings.NewReader(""), io.Discard, false)
	if _, err := c.Clean(context.Background(), []string{root}, &Plan{Recursive: true, Depth: 1}); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if !exists(filepath.Join(root, "adir", "éfile.txt")) {
		t.Error("only the first level should be renamed")
	}
}

func TestClean_NotRecursive(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "àdir")
	touch(t, filepath.Join(dir, "éfile.txt"))

	c := NewPathCleaner(strings.NewReader(""), io.Discard, false)
	if _, err := c.Clean(context.Background(), []string{dir}, &Plan{Recursive: false}); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if !exists(filepath.Join(root, "adir", "éfile.txt")) {
		t.Error("expected only the named path to be renamed")
	}
}

func TestClean_TrailingSeparator(t *testing.T) {
	testCases := []struct {
		name      string
		recursive bool
		wantChild string
	}{
		{"recursive", true, "file.txt"},
		{"not recursive", false, "éfile.txt"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, "Música")
			touch(t, filepath.Join(dir, "éfile.txt"))

			c := NewPathCleaner(strings.NewReader(""), io.Discard, false)
			res, err := c.Clean(context.Background(), []string{dir + string(os.PathSeparator)}, &Plan{Recursive: tc.recursive, Force: ForceNo})
			if err != nil {
				t.Fatalf("Clean failed: %v", err)
			}
			if !exists(filepath.Join(root, "Musica", tc.wantChild)) {
				t.Errorf("expected %s inside the renamed directory", tc.wantChild)
			}
			if exists(dir) {
				t.Error("expected the original directory name to be gone")
			}
			wantRenamed := 1
			if tc.recursive {
				wantRenamed = 2
			}
			if res.Renamed != wantRenamed {
				t.Errorf("expected %d renames, got %d", wantRenamed, res.Renamed)
			}
		})
	}
}

func TestClean_EmptyNameSkipped(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "日本語")
	touch(t, path)

	c := NewPathCleaner(strings.NewReader(""), io.Discard, false)
	res, err := c.Clean(context.Background(), []string{path}, &Plan{})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if !exists(path) || res.Skipped != 1 {
		t.Errorf("expected entry to be left alone, skipped=%d", res.Skipped)
	}
}

func TestClean_Collision(t *testing.T) {
	testCases := []struct {
		name        string
		force       Force
		interactive bool
		answer      string
		wantRenamed bool
	}{
		{"yes overwrites", ForceYes, false, "", true},
		{"no skips", ForceNo, true, "y\n", false},
		{"auto non-interactive skips", ForceAuto, false, "y\n", false},
		{"auto interactive accepted", ForceAuto, true, "y\n", true},
		{"auto interactive declined", ForceAuto, true, "\n", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			src := filepath.Join(root, "café")
			touch(t, src)
			touch(t, filepath.Join(root, "cafe"))

			var prompt bytes.Buffer
			c := NewPathCleaner(strings.NewReader(tc.answer), &prompt, tc.interactive)
			if _, err := c.Clean(context.Background(), []string{src}, &Plan{Force: tc.force}); err != nil {
				t.Fatalf("Clean failed: %v", err)
			}

			got, _ := os.ReadFile(filepath.Join(root, "cafe"))
			renamed := string(got) == "café"
			if renamed != tc.wantRenamed {
				t.Errorf("renamed = %v, want %v", renamed, tc.wantRenamed)
			}
			if tc.force == ForceAuto && tc.interactive && !strings.Contains(prompt.String(), "Overwrite?") {
				t.Errorf("expected a prompt, got %q", prompt.String())
			}
		})
	}
}

func TestClean_DryRun(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "café")
	touch(t, path)

	c := NewPathCleaner(strings.NewReader(""), io.Discard, false)
	res, err := c.Clean(context.Background(), []string{path}, &Plan{DryRun: true})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if !exists(path) || exists(filepath.Join(root, "cafe")) {
		t.Error("dry run must not rename")
	}
	if res.Renamed != 1 {
		t.Errorf("Renamed = %d, want 1", res.Renamed)
	}
}

func TestClean_MissingPath(t *testing.T) {
	c := NewPathCleaner(strings.NewReader(""), io.Discard, false)
	_, err := c.Clean(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, &Plan{})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}
