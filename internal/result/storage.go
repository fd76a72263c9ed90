package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

func CreateRunDir(baseDir string) (string, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runDir, err := filepath.Abs(filepath.Join(runsDir, stamp))
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// TestDir is where a test's scratch files and result.json live.
func TestDir(runDir, test string) string {
	return filepath.Join(runDir, "tests", test)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

func WriteTestMeta(testDir string, meta *TestMeta) error {
	if err := os.MkdirAll(testDir, 0o755); err != nil {
		return fmt.Errorf("creating test dir: %w", err)
	}
	return writeJSON(filepath.Join(testDir, "result.json"), meta)
}

func ReadTestMeta(path string) (*TestMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result: %w", err)
	}
	var meta TestMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", path, err)
	}
	return &meta, nil
}

func WriteRunMeta(runDir string, meta *RunMeta) error {
	return writeJSON(filepath.Join(runDir, "run.json"), meta)
}

func ReadRunMeta(runDir string) (*RunMeta, error) {
	data, err := os.ReadFile(filepath.Join(runDir, "run.json"))
	if err != nil {
		return nil, fmt.Errorf("reading run meta: %w", err)
	}
	var meta RunMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing run meta: %w", err)
	}
	return &meta, nil
}

// ReadTestMetas loads every test result of a run, sorted by test name.
func ReadTestMetas(runDir string) ([]*TestMeta, error) {
	paths, err := filepath.Glob(filepath.Join(runDir, "tests", "*", "result.json"))
	if err != nil {
		return nil, err
	}
	metas := make([]*TestMeta, 0, len(paths))
	for _, path := range paths {
		meta, err := ReadTestMeta(path)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Test < metas[j].Test })
	return metas, nil
}
