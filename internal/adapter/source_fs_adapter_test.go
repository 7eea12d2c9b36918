package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	m "probe.dev/pkg/probe/internal/model"
)

func TestLocalSourceFSAdapter_Walk(t *testing.T) {
	t.Run("non recursive skips nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "Counter.t.sol"), "contract CounterTest {}\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		writeTestFile(t, filepath.Join(nestedDir, "Child.t.sol"), "contract ChildTest {}\n")

		visited := walkAll(t, adapter, root, false)

		for _, forbidden := range []string{nestedDir, filepath.Join(nestedDir, "Child.t.sol")} {
			if containsPath(visited, forbidden) {
				t.Fatalf("Walk() unexpectedly visited %s when recursive is false", forbidden)
			}
		}

		if !containsPath(visited, filepath.Join(root, "Counter.t.sol")) {
			t.Fatalf("Walk() did not visit top-level file")
		}
	})

	t.Run("recursive visits nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		child := filepath.Join(nestedDir, "Child.t.sol")
		writeTestFile(t, child, "contract ChildTest {}\n")

		visited := walkAll(t, adapter, root, true)

		if !containsPath(visited, child) {
			t.Fatalf("Walk() did not visit nested file when recursive")
		}
	})

	t.Run("recursive skips dependency directories", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		for _, dir := range []string{"lib", "out", "node_modules"} {
			mustMkdir(t, filepath.Join(root, dir))
			writeTestFile(t, filepath.Join(root, dir, "Dep.t.sol"), "contract DepTest {}\n")
		}

		visited := walkAll(t, adapter, root, true)

		for _, dir := range []string{"lib", "out", "node_modules"} {
			if containsPath(visited, filepath.Join(root, dir, "Dep.t.sol")) {
				t.Fatalf("Walk() descended into %s", dir)
			}
		}
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := adapter.Walk(ctx, m.Path(t.TempDir()), true, func(string, os.FileInfo, error) error {
			return nil
		})
		if err == nil {
			t.Fatalf("Walk() error = nil, want context error")
		}
	})
}

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "Counter.t.sol")
	content := "pragma solidity ^0.8.13;\n" + "contract CounterTest {}\n"
	writeTestFile(t, path, content)

	got, err := adapter.ReadFile(context.Background(), m.Path(path))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != content {
		t.Fatalf("ReadFile() = %q, want %q", string(got), content)
	}
}

func TestLocalSourceFSAdapter_HashFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "Counter.t.sol")
	content := []byte("contract CounterTest {}\n")
	writeTestBytes(t, path, content)

	expected := fmt.Sprintf("%x", sha256.Sum256(content))

	hash, err := adapter.HashFile(context.Background(), m.Path(path))
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}

	if hash != expected {
		t.Fatalf("HashFile() = %s, want %s", hash, expected)
	}
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "Counter.t.sol")
	writeTestFile(t, path, "contract CounterTest {}\n")

	info, err := adapter.FileInfo(context.Background(), m.Path(path))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if info.IsDir() {
		t.Fatalf("FileInfo() reported file as directory")
	}

	dirInfo, err := adapter.FileInfo(context.Background(), m.Path(root))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if !dirInfo.IsDir() {
		t.Fatalf("FileInfo() reported directory as file")
	}
}

func TestLocalSourceFSAdapter_RelPath(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	base := m.Path("/tmp/project")
	target := m.Path("/tmp/project/test/unit/Counter.t.sol")

	rel, err := adapter.RelPath(context.Background(), base, target)
	if err != nil {
		t.Fatalf("RelPath() error = %v", err)
	}

	want := filepath.Join("test", "unit", "Counter.t.sol")
	if string(rel) != want {
		t.Fatalf("RelPath() = %s, want %s", rel, want)
	}
}

func TestLocalSourceFSAdapter_Match(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	tests := []struct {
		name    string
		path    string
		include []string
		exclude []string
		want    bool
	}{
		{"top-level test file", "Counter.t.sol", []string{"**/*.t.sol"}, nil, true},
		{"nested test file", "test/unit/Counter.t.sol", []string{"**/*.t.sol"}, nil, true},
		{"leading dot slash", "./test/Counter.t.sol", []string{"**/*.t.sol"}, nil, true},
		{"plain source file", "src/Counter.sol", []string{"**/*.t.sol"}, nil, false},
		{"excluded directory", "test/fork/Fork.t.sol", []string{"**/*.t.sol"}, []string{"test/fork/**"}, false},
		{"no include matches everything", "src/Counter.sol", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := adapter.Match(m.Path(tt.path), tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}

			if got != tt.want {
				t.Fatalf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}

	t.Run("invalid pattern", func(t *testing.T) {
		if _, err := adapter.Match("a.t.sol", []string{"[a-"}, nil); err == nil {
			t.Fatalf("Match() error = nil, want bad pattern error")
		}
	})
}

func walkAll(t *testing.T, adapter *LocalSourceFSAdapter, root string, recursive bool) []string {
	t.Helper()

	var visited []string

	err := adapter.Walk(context.Background(), m.Path(root), recursive, func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		visited = append(visited, path)

		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	return visited
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	writeTestBytes(t, path, []byte(contents))
}

func writeTestBytes(t *testing.T, path string, contents []byte) {
	t.Helper()
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}

	return false
}
