package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inventorycore/internal/adapters/interchange"
	"inventorycore/internal/core"
	"inventorycore/pkg/domain"
)

func useMemoryStore(t *testing.T) {
	t.Helper()
	t.Setenv("INVENTORYCORE_STORAGE_DRIVER", "memory")
}

func sampleInterchangeCSV() []byte {
	return interchange.EncodeCSV(core.Snapshot{
		Equipment: []domain.Equipment{
			{
				RegistrationID: "#E100001",
				Type:           domain.TypeNotebook,
				SerialNumber:   "SN-CLI-1",
				Status:         domain.StatusAvailable,
			},
		},
	})
}

func writeTempFile(t *testing.T, name string, payload []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestRunUsage(t *testing.T) {
	useMemoryStore(t)
	if code := run(nil); code != 2 {
		t.Fatalf("expected exit code 2 with no arguments, got %d", code)
	}
	if code := run([]string{"frobnicate"}); code != 2 {
		t.Fatalf("expected exit code 2 for unknown command, got %d", code)
	}
}

func TestRunExportToFile(t *testing.T) {
	useMemoryStore(t)

	out := filepath.Join(t.TempDir(), "inventory.csv")
	if code := run([]string{"export", "-format", "csv", "-out", out}); code != 0 {
		t.Fatalf("export returned %d", code)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "\xef\xbb\xbf") {
		t.Fatal("exported file missing byte-order mark")
	}
	for _, marker := range []string{"###EQUIPMENT###", "###PRINTERS###", "###ACCESSORIES###", "###CARTRIDGES###"} {
		if !strings.Contains(content, marker) {
			t.Fatalf("exported file missing section %s", marker)
		}
	}

	jsonOut := filepath.Join(t.TempDir(), "inventory.json")
	if code := run([]string{"export", "-format", "json", "-out", jsonOut}); code != 0 {
		t.Fatalf("json export returned %d", code)
	}
	jsonData, err := os.ReadFile(jsonOut)
	if err != nil {
		t.Fatalf("read exported json: %v", err)
	}
	if !strings.Contains(string(jsonData), `"equipment"`) {
		t.Fatalf("exported json missing equipment key: %s", jsonData)
	}

	if code := run([]string{"export", "-format", "yaml", "-out", out}); code != 2 {
		t.Fatalf("expected exit code 2 for unknown format, got %d", code)
	}
	if code := run([]string{"export", "--bad-flag"}); code != 2 {
		t.Fatalf("expected exit code 2 for flag error, got %d", code)
	}
}

func TestRunExportToBlobStore(t *testing.T) {
	useMemoryStore(t)
	root := t.TempDir()
	t.Setenv("INVENTORYCORE_BLOB_DRIVER", "fs")
	t.Setenv("INVENTORYCORE_BLOB_FS_ROOT", root)

	if code := run([]string{"export", "-format", "csv"}); code != 0 {
		t.Fatalf("export returned %d", code)
	}
	entries, err := os.ReadDir(filepath.Join(root, "exports"))
	if err != nil {
		t.Fatalf("read exports directory: %v", err)
	}
	var found bool
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "inventory-") && strings.HasSuffix(entry.Name(), ".csv") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no exported artifact under exports/, got %v", entries)
	}
}

func TestRunImport(t *testing.T) {
	useMemoryStore(t)

	path := writeTempFile(t, "import.csv", sampleInterchangeCSV())
	if code := run([]string{"import", "-in", path}); code != 0 {
		t.Fatalf("import returned %d", code)
	}

	if code := run([]string{"import"}); code != 2 {
		t.Fatalf("expected exit code 2 when -in is missing, got %d", code)
	}
	if code := run([]string{"import", "-in", filepath.Join(t.TempDir(), "absent.csv")}); code != 1 {
		t.Fatalf("expected exit code 1 for missing file, got %d", code)
	}

	malformed := writeTempFile(t, "broken.csv", []byte("no markers here\n"))
	if code := run([]string{"import", "-in", malformed}); code != 1 {
		t.Fatalf("expected exit code 1 for malformed file, got %d", code)
	}
}

func TestRunStatus(t *testing.T) {
	useMemoryStore(t)

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	code := run([]string{"status"})
	if closeErr := w.Close(); closeErr != nil {
		os.Stdout = orig
		t.Fatalf("close pipe: %v", closeErr)
	}
	os.Stdout = orig
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read status output: %v", err)
	}
	if code != 0 {
		t.Fatalf("status returned %d", code)
	}
	for _, want := range []string{"equipment:", "accessories:", "cartridges:", "dirty:"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("status output missing %q: %s", want, out)
		}
	}
}

func TestMainFunction(t *testing.T) {
	useMemoryStore(t)

	origExit := exitFunc
	defer func() { exitFunc = origExit }()
	exitCode := -1
	exitFunc = func(code int) { exitCode = code }

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"invctl", "export", "-out", filepath.Join(t.TempDir(), "inventory.csv")}
	main()
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
}
