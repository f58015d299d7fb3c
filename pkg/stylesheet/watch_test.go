package stylesheet

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/stylegraph/pkg/errors"
)

type watchResult struct {
	sheet *Sheet
	err   error
}

func startWatch(t *testing.T, path string) <-chan watchResult {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan watchResult, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(s *Sheet, err error) {
			results <- watchResult{s, err}
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	})
	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return results
}

func next(t *testing.T, results <-chan watchResult) watchResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("no reload within 3s")
		return watchResult{}
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.yaml")
	if err := os.WriteFile(path, []byte(yamlSheetDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	results := startWatch(t, path)

	updated := "styles:\n  - id: 4\n    name: Fresh\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	r := next(t, results)
	if r.err != nil {
		t.Fatalf("reload error = %v", r.err)
	}
	if len(r.sheet.Styles) != 1 || r.sheet.Styles[0].Name != "Fresh" {
		t.Errorf("reloaded sheet = %+v", r.sheet.Styles)
	}

	if err := os.WriteFile(path, []byte("styles: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r = next(t, results)
	if !errors.Is(r.err, errors.ErrCodeInvalidFormat) {
		t.Errorf("broken sheet error = %v, want INVALID_FORMAT", r.err)
	}
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "styles.yaml")
	if err := os.WriteFile(path, []byte(yamlSheetDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	results := startWatch(t, path)

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-results:
		t.Errorf("unexpected reload: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
}
