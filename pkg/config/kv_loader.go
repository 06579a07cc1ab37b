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
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	errKVKeyNotFound = errors.New("key not found in KV store")
	// ErrKeyExists is returned by KVStore.Create when the key is present.
	ErrKeyExists = errors.New("key already exists")
)

// KVStore is the subset of a key-value bucket the loader needs.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Create(ctx context.Context, key string, value []byte) error
	Close() error
}

// KVConfigLoader loads configuration from a KV store.
type KVConfigLoader struct {
	store KVStore
}

func NewKVConfigLoader(store KVStore) *KVConfigLoader {
	return &KVConfigLoader{store: store}
}

// KeyFor maps a config file path to its KV key, "config/<base name>".
func KeyFor(path string) string {
	return "config/" + filepath.Base(strings.ReplaceAll(path, "\\", "/"))
}

// Load implements ConfigLoader by fetching and unmarshaling data from the KV store.
func (k *KVConfigLoader) Load(ctx context.Context, path string, dst interface{}) error {
	key := KeyFor(path)

	data, found, err := k.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get key '%s' from KV store: %w", key, err)
	}

	if !found {
		return fmt.Errorf("%w: '%s'", errKVKeyNotFound, key)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from key '%s': %w", key, err)
	}

	return nil
}

// Seed stores the document under the key for path unless one already exists.
// It reports whether a write happened.
func Seed(ctx context.Context, store KVStore, path string, doc interface{}) (bool, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("failed to marshal config: %w", err)
	}

	err = store.Create(ctx, KeyFor(path), data)
	if errors.Is(err, ErrKeyExists) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
