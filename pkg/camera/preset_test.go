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

package camera

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePreset(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "preset.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadPreset(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Preset
		wantErr bool
	}{
		{
			name: "flat layout",
			body: `{"controls-laserstate":"off","param-depthunits":"1000"}`,
			want: Preset{"controls-laserstate": "off", "param-depthunits": "1000"},
		},
		{
			name: "parameters layout",
			body: `{"device":{"fw version":"5.13"},"parameters":{"controls-laserpower":150,"ignoreSAD":false}}`,
			want: Preset{"controls-laserpower": "150", "ignoreSAD": "false"},
		},
		{name: "not json", body: `laser=off`, wantErr: true},
		{name: "no settings", body: `{"device":{}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadPreset(writePreset(t, tt.body))
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidPreset)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadPresetMissingFile(t *testing.T) {
	_, err := LoadPreset(filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSyntheticAppliesPresetLaserState(t *testing.T) {
	cfg := smallStream
	cfg.Preset = Preset{"controls-laserstate": "off"}

	h, err := newTestSynthetic().Open(context.Background(), "111", cfg)
	require.NoError(t, err)

	defer func() { _ = h.Close() }()

	pair, err := h.ReadFrame(context.Background())
	require.NoError(t, err)

	// The preset turned the emitter off even though the stream asked for it.
	assert.Zero(t, pair.Depth.Gray16At(emitterOffHoleStride, 0).Y)
}
