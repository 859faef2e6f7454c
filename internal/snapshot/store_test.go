package snapshot

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "data.json"))
	if err == nil {
		t.Fatal("Load() succeeded for missing file")
	}
	var cerr *CleanupError
	if !errors.As(err, &cerr) {
		t.Errorf("error type = %T, want *CleanupError", err)
	}
	if !strings.Contains(err.Error(), "Could not find data.json") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	writeFile(t, path, "{not json")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() succeeded for malformed file")
	}
	var cerr *CleanupError
	if !errors.As(err, &cerr) {
		t.Errorf("error type = %T, want *CleanupError", err)
	}
	if !strings.Contains(err.Error(), "Failed to parse JSON data") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestSaveFormatting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	writeFile(t, path, `{"todoistTasksData":{"tasks":[{"id":"1","content":"café <& done>"}]},"fileMetadata":{}}`)

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := Save(path, snap); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	text := string(out)

	if !strings.HasSuffix(text, "\n") {
		t.Error("output missing trailing newline")
	}
	if !strings.Contains(text, "  \"todoistTasksData\"") {
		t.Error("output not indented with 2 spaces")
	}
	// Non-ASCII stays literal, and HTML-significant characters are not escaped.
	if !strings.Contains(text, "café <& done>") {
		t.Errorf("content was escaped: %s", text)
	}

	// The temporary sibling must not survive a successful save.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestSaveKeepsHTMLCharactersInNestedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	writeFile(t, path, `{
	  "query": "status<done & priority>2",
	  "todoistTasksData": {"filter": "a & b", "tasks": [{"id": "1", "content": "x < y"}]},
	  "fileMetadata": {"a&b.md": {"todoistTasks": ["1"], "todoistCount": 1, "title": "<draft>"}}
	}`)

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	// A metadata update forces the rewrite through SetTaskIDs as well.
	snap.Metadata()["a&b.md"].SetTaskIDs([]string{"1"})
	if err := Save(path, snap); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	text := string(out)

	// HTML-significant bytes stay literal at every nesting depth.
	for _, want := range []string{
		`"status<done & priority>2"`,
		`"a & b"`,
		`"x < y"`,
		`"a&b.md"`,
		`"<draft>"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing literal %s:\n%s", want, text)
		}
	}
	if strings.Contains(text, `\u003c`) || strings.Contains(text, `\u0026`) {
		t.Errorf("output contains HTML escapes:\n%s", text)
	}
}

func TestSaveEmptyRemovalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	writeFile(t, path, `{"todoistTasksData":{"tasks":[{"id":"1","path":"a.md"}]},"fileMetadata":{"a.md":{"todoistTasks":["1"],"todoistCount":1}}}`)

	original, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := Save(path, original); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	want, _ := json.Marshal(original)
	got, _ := json.Marshal(reloaded)
	if string(want) != string(got) {
		t.Errorf("round trip changed content:\nbefore: %s\nafter:  %s", want, got)
	}
}

func TestBackupDefaultDestination(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	writeFile(t, path, `{"todoistTasksData":{"tasks":[]}}`)

	dest, err := Backup(path, "")
	if err != nil {
		t.Fatalf("Backup() failed: %v", err)
	}
	if dest != path+".bak" {
		t.Errorf("dest = %q, want %q", dest, path+".bak")
	}

	orig, _ := os.ReadFile(path)
	copied, _ := os.ReadFile(dest)
	if string(orig) != string(copied) {
		t.Error("backup is not byte-identical to source")
	}

	srcInfo, _ := os.Stat(path)
	dstInfo, _ := os.Stat(dest)
	if !srcInfo.ModTime().Equal(dstInfo.ModTime()) {
		t.Errorf("mtime not preserved: %v vs %v", srcInfo.ModTime(), dstInfo.ModTime())
	}
}

func TestBackupExplicitDestination(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	writeFile(t, path, `{}`)

	dest := filepath.Join(dir, "pre-cleanup.json")
	got, err := Backup(path, dest)
	if err != nil {
		t.Fatalf("Backup() failed: %v", err)
	}
	if got != dest {
		t.Errorf("dest = %q, want %q", got, dest)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("backup not written: %v", err)
	}
}
