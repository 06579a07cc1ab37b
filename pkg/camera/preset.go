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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var errInvalidPreset = errors.New("invalid advanced-mode preset")

// presetLaserState is the RealSense advanced-mode key for the IR projector.
const presetLaserState = "controls-laserstate"

// Preset holds the key/value pairs of a RealSense advanced-mode JSON file.
// Files in the newer layout keep their pairs under "parameters"; both
// layouts load into the same flat map.
type Preset map[string]string

// LoadPreset reads an advanced-mode preset file.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset %s: %w", path, err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errInvalidPreset, path, err)
	}

	if params, ok := doc["parameters"].(map[string]interface{}); ok {
		doc = params
	}

	preset := make(Preset, len(doc))

	for key, value := range doc {
		switch v := value.(type) {
		case string:
			preset[key] = v
		case float64:
			preset[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			preset[key] = strconv.FormatBool(v)
		default:
			// nested sections such as "device" describe the file, not settings
			continue
		}
	}

	if len(preset) == 0 {
		return nil, fmt.Errorf("%w: %s: no settings", errInvalidPreset, path)
	}

	return preset, nil
}

// apply folds the preset settings the stream config models into cfg.
func (p Preset) apply(cfg StreamConfig) StreamConfig {
	if state, ok := p[presetLaserState]; ok {
		switch strings.ToLower(state) {
		case "on", "1", "true":
			cfg.EnableIREmitter = true
		case "off", "0", "false":
			cfg.EnableIREmitter = false
		}
	}

	return cfg
}
