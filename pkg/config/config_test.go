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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/rscapture/pkg/logger"
)

var errTooSmall = errors.New("width too small")

type testStream struct {
	Width   int             `json:"width"`
	FPS     int             `json:"fps"`
	Align   bool            `json:"align_depth"`
	Timeout logger.Duration `json:"timeout"`
}

type testConfig struct {
	ListenAddr string            `json:"listen_addr"`
	Origins    []string          `json:"origins"`
	Labels     map[string]string `json:"labels"`
	Stream     testStream        `json:"stream"`
	Nested     *testStream       `json:"nested,omitempty"`
	Raw        time.Duration     `json:"raw"`
}

func (c *testConfig) Validate() error {
	if c.Stream.Width != 0 && c.Stream.Width < 16 {
		return errTooSmall
	}

	return nil
}

type memKV struct {
	values map[string][]byte
	getErr error
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}

	v, ok := m.values[key]

	return v, ok, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	if m.values == nil {
		m.values = make(map[string][]byte)
	}

	m.values[key] = value

	return nil
}

func (m *memKV) Create(ctx context.Context, key string, value []byte) error {
	if _, ok := m.values[key]; ok {
		return ErrKeyExists
	}

	return m.Put(ctx, key, value)
}

func (*memKV) Close() error { return nil }

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rscapture.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeFile(t, `{"listen_addr":":5000","stream":{"width":640,"fps":30,"timeout":"250ms"}}`)

	var cfg testConfig
	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, 640, cfg.Stream.Width)
	assert.Equal(t, logger.Duration(250*time.Millisecond), cfg.Stream.Timeout)
}

func TestLoadAndValidateRunsValidator(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeFile(t, `{"stream":{"width":4}}`)

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.ErrorIs(t, err, errTooSmall)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), filepath.Join(t.TempDir(), "nope.json"), &cfg)
	require.ErrorIs(t, err, ErrConfigFileMissing)
	assert.Equal(t, testConfig{}, cfg)
}

func TestInvalidConfigSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "consul")

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), "x.json", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestEnvSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "")
	t.Setenv("RSCAPTURE_CONFIG_JSON", "")
	t.Setenv("RSCAPTURE_LISTEN_ADDR", ":6000")
	t.Setenv("RSCAPTURE_ORIGINS", "http://a, http://b")
	t.Setenv("RSCAPTURE_LABELS", `{"site":"lab"}`)
	t.Setenv("RSCAPTURE_STREAM_WIDTH", "848")
	t.Setenv("RSCAPTURE_STREAM_ALIGN_DEPTH", "true")
	t.Setenv("RSCAPTURE_STREAM_TIMEOUT", "2s")
	t.Setenv("RSCAPTURE_NESTED_FPS", "15")
	t.Setenv("RSCAPTURE_RAW", "3s")

	var cfg testConfig
	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, ":6000", cfg.ListenAddr)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Origins)
	assert.Equal(t, map[string]string{"site": "lab"}, cfg.Labels)
	assert.Equal(t, 848, cfg.Stream.Width)
	assert.True(t, cfg.Stream.Align)
	assert.Equal(t, logger.Duration(2*time.Second), cfg.Stream.Timeout)
	require.NotNil(t, cfg.Nested)
	assert.Equal(t, 15, cfg.Nested.FPS)
	assert.Equal(t, 3*time.Second, cfg.Raw)
}

func TestEnvSourceWholeDocument(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "CAM_")
	t.Setenv("CAM_CONFIG_JSON", `{"listen_addr":"127.0.0.1:5000"}`)

	var cfg testConfig
	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))
	assert.Equal(t, "127.0.0.1:5000", cfg.ListenAddr)
}

func TestFileSourceRejectsUnknownFields(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeFile(t, `{"listen_adr":":5000"}`)

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen_adr")
}

func TestFileSourceMissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), filepath.Join(t.TempDir(), "none.json"), &cfg)
	require.ErrorIs(t, err, ErrConfigFileMissing)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvSourceLeavesUnsetPointersNil(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "CAMX_")
	t.Setenv("CAMX_LISTEN_ADDR", ":6001")

	var cfg testConfig
	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))
	assert.Equal(t, ":6001", cfg.ListenAddr)
	assert.Nil(t, cfg.Nested)
}

func TestEnvSourceReportsBadValues(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "CAMY_")
	t.Setenv("CAMY_STREAM_WIDTH", "wide")
	t.Setenv("CAMY_STREAM_ALIGN_DEPTH", "maybe")

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg)
	require.ErrorIs(t, err, errInvalidEnvValue)
	assert.Contains(t, err.Error(), "CAMY_STREAM_WIDTH")
	assert.Contains(t, err.Error(), "CAMY_STREAM_ALIGN_DEPTH")
}

func TestEnvLoaderRejectsNonPointer(t *testing.T) {
	t.Setenv("X_CONFIG_JSON", "")

	loader := NewEnvConfigLoader(nil, "X_")

	require.ErrorIs(t, loader.Load(context.Background(), "", testConfig{}), ErrDstMustBeNonNilPointer)

	n := 3
	require.ErrorIs(t, loader.Load(context.Background(), "", &n), ErrDstMustBePointerToStruct)
}

func TestKVSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	store := &memKV{}
	_, err := Seed(context.Background(), store, "/etc/rscapture/rscapture.json", map[string]string{"listen_addr": ":7000"})
	require.NoError(t, err)

	c := NewConfig(logger.NewTestLogger())
	c.SetKVStore(store)

	var cfg testConfig
	require.NoError(t, c.LoadAndValidate(context.Background(), "/opt/other/rscapture.json", &cfg))
	assert.Equal(t, ":7000", cfg.ListenAddr)
}

func TestKVSourceFallsBackToFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	path := writeFile(t, `{"listen_addr":":5005"}`)

	c := NewConfig(logger.NewTestLogger())
	c.SetKVStore(&memKV{getErr: errors.New("nats down")})

	var cfg testConfig
	require.NoError(t, c.LoadAndValidate(context.Background(), path, &cfg))
	assert.Equal(t, ":5005", cfg.ListenAddr)
}

func TestKVSourceWithoutStore(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), "x.json", &cfg)
	require.ErrorIs(t, err, errKVStoreNotSet)
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "config/rscapture.json", KeyFor("/etc/rscapture/rscapture.json"))
	assert.Equal(t, "config/rscapture.json", KeyFor("rscapture.json"))
	assert.Equal(t, "config/a.json", KeyFor(`C:\cfg\a.json`))
}

func TestSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")
	assert.Equal(t, "file", Source())

	t.Setenv("CONFIG_SOURCE", "KV")
	assert.Equal(t, "kv", Source())
}
