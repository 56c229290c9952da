package worklist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLog_AppendsOneURLPerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.txt")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}

	urls := []string{
		"https://site/review/a",
		"https://site/review/b",
		"https://site/review/a", // repeats are kept; the log is a worklist, not a set
	}
	for _, u := range urls {
		if err := log.Append(u); err != nil {
			t.Fatalf("Append(%q): %v", u, err)
		}
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(): %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	for i, u := range urls {
		if lines[i] != u {
			t.Errorf("line %d = %q, want %q", i, lines[i], u)
		}
	}
}

func TestLog_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not_done.txt")

	for run := 0; run < 2; run++ {
		log, err := Open(path)
		if err != nil {
			t.Fatalf("Open() run %d: %v", run, err)
		}
		if err := log.Append("https://site/review/a"); err != nil {
			t.Fatalf("Append() run %d: %v", run, err)
		}
		if err := log.Close(); err != nil {
			t.Fatalf("Close() run %d: %v", run, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(): %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Errorf("expected 2 entries after 2 runs, got %d", got)
	}
}

func TestLog_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.txt")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := log.Append(fmt.Sprintf("https://site/review/%d", i)); err != nil {
				t.Errorf("Append(): %v", err)
			}
		}(i)
	}
	wg.Wait()
	if err := log.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(): %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != n {
		t.Fatalf("expected %d lines, got %d", n, len(lines))
	}
	// Every line must be intact despite concurrent writers
	for _, line := range lines {
		if !strings.HasPrefix(line, "https://site/review/") {
			t.Errorf("corrupted line %q", line)
		}
	}
}
