package pathcompression

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatFromName(t *testing.T) {
	testCases := []struct {
		name   string
		want   Format
		wantOK bool
	}{
		{"a.zip", Zip, true},
		{"a.tar", Tar, true},
		{"a.TAR.GZ", TarGz, true},
		{"a.tgz", TarGz, true},
		{"a.tar.zst", TarZst, true},
		{"a.tzst", TarZst, true},
		{"a.txt.gz", Gz, true},
		{"a.zst", Zst, true},
		{"a.txt", "", false},
		{".gz", "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FormatFromName(tc.name)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("FormatFromName(%q) = (%q, %v), want (%q, %v)", tc.name, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestTrimFormatExtension(t *testing.T) {
	if got := TrimFormatExtension("photos.tgz"); got != "photos" {
		t.Errorf("got %q", got)
	}
	if got := TrimFormatExtension("notes.txt.gz"); got != "notes.txt" {
		t.Errorf("got %q", got)
	}
	if got := TrimFormatExtension("plain"); got != "plain" {
		t.Errorf("got %q", got)
	}
}

func TestDetectFormat_ByContent(t *testing.T) {
	dir := t.TempDir()

	zipPath := filepath.Join(dir, "nozipext")
	writeZip(t, zipPath, []entry{{name: "f", content: "x"}})
	if got, err := DetectFormat(zipPath); err != nil || got != Zip {
		t.Errorf("zip: got %q, %v", got, err)
	}

	tgzPath := filepath.Join(dir, "tarball")
	writeTar(t, tgzPath, TarGz, []entry{{name: "f", content: "x"}})
	if got, err := DetectFormat(tgzPath); err != nil || got != TarGz {
		t.Errorf("tar.gz: got %q, %v", got, err)
	}

	gzPath := filepath.Join(dir, "stream")
	writeCompressed(t, gzPath, Gz, []byte("just text"))
	if got, err := DetectFormat(gzPath); err != nil || got != Gz {
		t.Errorf("gz: got %q, %v", got, err)
	}

	txtPath := filepath.Join(dir, "plain")
	os.WriteFile(txtPath, []byte("hello world"), 0644)
	if _, err := DetectFormat(txtPath); err == nil {
		t.Error("expected error for plain text")
	}
}

func TestParseOverwriteBehavior(t *testing.T) {
	for _, s := range []string{"always", "never", "if-newer", "IF-NEWER"} {
		if _, err := ParseOverwriteBehavior(s); err != nil {
			t.Errorf("ParseOverwriteBehavior(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseOverwriteBehavior("sometimes"); err == nil {
		t.Error("expected error for invalid behavior")
	}
}

func TestOverwriteBehavior_Replaces(t *testing.T) {
	disk := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	window := time.Second

	testCases := []struct {
		name     string
		behavior OverwriteBehavior
		entry    time.Time
		want     bool
	}{
		{"zero value never replaces", OverwriteBehavior(0), disk.Add(time.Hour), false},
		{"always replaces older entries", OverwriteAlways, disk.Add(-time.Hour), true},
		{"if-newer replaces newer entries", OverwriteIfNewer, disk.Add(2 * time.Second), true},
		{"if-newer ignores differences inside the window", OverwriteIfNewer, disk.Add(window), false},
		{"if-newer keeps newer files", OverwriteIfNewer, disk.Add(-time.Hour), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.behavior.replaces(tc.entry, disk, window); got != tc.want {
				t.Errorf("replaces() = %v, want %v", got, tc.want)
			}
		})
	}
}
