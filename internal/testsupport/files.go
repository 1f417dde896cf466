package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteScanLog writes scan-log lines to a temp file and returns its path.
func WriteScanLog(t testing.TB, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scan.log")
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scan log: %v", err)
	}
	return path
}
