package engine

import (
	"io"
	"testing"

	"github.com/klauspost/pgzip"
)

func writeGzip(t *testing.T, w io.Writer, content string) {
	t.Helper()
	gw := pgzip.NewWriter(w)
	if _, err := gw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
}
