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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStateMissingFile(t *testing.T) {
	st, err := LoadState(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, st.Enabled)
	assert.Empty(t, st.Logs)
}

func TestSaveStateRoundTripAndTrim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "console.json")

	logs := make([]string, 0, MaxLogLines+50)
	for i := 0; i < MaxLogLines+50; i++ {
		logs = append(logs, fmt.Sprintf("line %d", i))
	}

	require.NoError(t, SaveState(path, &State{Enabled: []string{"Cam2", "Cam1"}, Logs: logs}))

	st, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cam1", "Cam2"}, st.Enabled)
	require.Len(t, st.Logs, MaxLogLines)
	assert.Equal(t, "line 50", st.Logs[0])
	assert.Equal(t, fmt.Sprintf("line %d", MaxLogLines+49), st.Logs[MaxLogLines-1])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadStateCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadState(path)
	require.Error(t, err)
}
