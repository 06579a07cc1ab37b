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
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/rscapture/pkg/logger"
)

var (
	// ErrDstMustBeNonNilPointer indicates that the destination must be a non-nil pointer.
	ErrDstMustBeNonNilPointer = errors.New("dst must be a non-nil pointer")
	// ErrDstMustBePointerToStruct indicates that the destination must be a pointer to a struct.
	ErrDstMustBePointerToStruct = errors.New("dst must be a pointer to a struct")

	errInvalidEnvValue = errors.New("invalid environment value")
)

//nolint:gochecknoglobals // type handle used for reflection
var durationType = reflect.TypeOf(time.Duration(0))

// EnvConfigLoader fills a struct from environment variables named after its
// json tags: with prefix RSCAPTURE_, stream.width is RSCAPTURE_STREAM_WIDTH.
// A whole JSON document in <prefix>CONFIG_JSON takes precedence.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	return &EnvConfigLoader{logger: log, prefix: prefix}
}

// Load implements ConfigLoader. Values that fail to parse are collected and
// returned together.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	if doc := os.Getenv(e.prefix + "CONFIG_JSON"); doc != "" {
		if err := json.Unmarshal([]byte(doc), dst); err != nil {
			return fmt.Errorf("failed to unmarshal %sCONFIG_JSON: %w", e.prefix, err)
		}

		e.debug("Loaded configuration from CONFIG_JSON")

		return nil
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrDstMustBeNonNilPointer
	}

	if v.Elem().Kind() != reflect.Struct {
		return ErrDstMustBePointerToStruct
	}

	w := &envWalker{lookup: os.LookupEnv, environ: os.Environ()}
	w.walk(v.Elem(), e.prefix)

	if len(w.errs) > 0 {
		return errors.Join(w.errs...)
	}

	e.debug("Loaded configuration from environment variables")

	return nil
}

func (e *EnvConfigLoader) debug(msg string) {
	if e.logger != nil {
		e.logger.Debug().Str("prefix", e.prefix).Msg(msg)
	}
}

type envWalker struct {
	lookup  func(string) (string, bool)
	environ []string
	errs    []error
}

func (w *envWalker) walk(v reflect.Value, prefix string) {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		w.field(field, prefix+strings.ToUpper(name))
	}
}

func (w *envWalker) field(field reflect.Value, envName string) {
	switch {
	case field.Kind() == reflect.Struct && !isTextual(field):
		w.walk(field, envName+"_")

		return
	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		if !w.anyWithPrefix(envName + "_") {
			return
		}

		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}

		w.walk(field.Elem(), envName+"_")

		return
	}

	raw, ok := w.lookup(envName)
	if !ok || raw == "" {
		return
	}

	if err := setValue(field, raw); err != nil {
		w.errs = append(w.errs, fmt.Errorf("%w %s: %w", errInvalidEnvValue, envName, err))
	}
}

func (w *envWalker) anyWithPrefix(prefix string) bool {
	for _, kv := range w.environ {
		if strings.HasPrefix(kv, prefix) {
			return true
		}
	}

	return false
}

// isTextual reports struct types that decode themselves from a JSON string.
func isTextual(field reflect.Value) bool {
	_, ok := field.Addr().Interface().(json.Unmarshaler)

	return ok
}

func setValue(field reflect.Value, raw string) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(json.Unmarshaler); ok {
			quoted, _ := json.Marshal(raw)
			if err := u.UnmarshalJSON(quoted); err == nil {
				return nil
			}
		}
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}

		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return err
			}

			field.SetInt(int64(d))

			return nil
		}

		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}

		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}

		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}

		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String || strings.HasPrefix(strings.TrimSpace(raw), "[") {
			return json.Unmarshal([]byte(raw), field.Addr().Interface())
		}

		parts := strings.Split(raw, ",")
		out := reflect.MakeSlice(field.Type(), 0, len(parts))

		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = reflect.Append(out, reflect.ValueOf(p).Convert(field.Type().Elem()))
			}
		}

		field.Set(out)
	case reflect.Ptr:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}

		return setValue(field.Elem(), raw)
	default:
		return json.Unmarshal([]byte(raw), field.Addr().Interface())
	}

	return nil
}
