/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// MaxLogLines bounds the log pane and the persisted log history.
const MaxLogLines = 200

// State is the console's client-local memory between runs.
type State struct {
	Enabled []string `json:"enabled"`
	Logs    []string `json:"logs"`
}

// DefaultStatePath returns ~/.config/rscapture/console.json.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}

	return filepath.Join(dir, "rscapture", "console.json"), nil
}

// LoadState reads the state file. A missing file yields an empty state.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &State{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read console state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse console state %s: %w", path, err)
	}

	st.Logs = tail(st.Logs, MaxLogLines)

	return &st, nil
}

// SaveState writes the state file through a temp file and rename.
func SaveState(path string, st *State) error {
	out := State{
		Enabled: append([]string(nil), st.Enabled...),
		Logs:    tail(st.Logs, MaxLogLines),
	}
	sort.Strings(out.Enabled)

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal console state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".console-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to write console state: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to close console state: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to replace console state: %w", err)
	}

	return nil
}

func tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}

	return append([]string(nil), lines[len(lines)-n:]...)
}
