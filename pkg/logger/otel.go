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

package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

var (
	ErrOTelLoggingDisabled  = errors.New("OTel logging is disabled")
	ErrOTelEndpointRequired = errors.New("OTel endpoint is required when enabled")
)

const (
	maxAttributeValueLength = 4096
	defaultScope            = "rscapture"
	defaultBatchTimeout     = 5 * time.Second
)

type OTelConfig struct {
	Enabled      bool              `json:"enabled" yaml:"enabled"`
	Endpoint     string            `json:"endpoint" yaml:"endpoint"`
	Headers      map[string]string `json:"headers" yaml:"headers"`
	ServiceName  string            `json:"service_name" yaml:"service_name"`
	BatchTimeout Duration          `json:"batch_timeout" yaml:"batch_timeout"`
	Insecure     bool              `json:"insecure" yaml:"insecure"`
	TLS          *TLSConfig        `json:"tls,omitempty" yaml:"tls,omitempty"`
}

type TLSConfig struct {
	CertFile string `json:"cert_file" yaml:"cert_file"`
	KeyFile  string `json:"key_file" yaml:"key_file" sensitive:"true"`
	CAFile   string `json:"ca_file,omitempty" yaml:"ca_file,omitempty"`
}

// OTelWriter is a zerolog output that re-emits each JSON line as an OTLP
// log record, scoped by the line's "component" field.
type OTelWriter struct {
	provider *sdklog.LoggerProvider
	ctx      context.Context

	mu     sync.Mutex
	scopes map[string]log.Logger
}

//nolint:gochecknoglobals // one provider per process, flushed by ShutdownOTEL
var (
	otelMu     sync.Mutex
	otelWriter *OTelWriter
)

// NewOTELWriter starts the OTLP log pipeline on first use and returns the
// process-wide writer on later calls.
func NewOTELWriter(ctx context.Context, config OTelConfig) (*OTelWriter, error) {
	if !config.Enabled {
		return nil, ErrOTelLoggingDisabled
	}

	if config.Endpoint == "" {
		return nil, ErrOTelEndpointRequired
	}

	otelMu.Lock()
	defer otelMu.Unlock()

	if otelWriter != nil {
		return otelWriter, nil
	}

	transport, err := newExporterTransport(&config)
	if err != nil {
		return nil, err
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(transport.endpoint)}

	switch {
	case transport.insecure:
		opts = append(opts, otlploggrpc.WithInsecure())
	case transport.creds != nil:
		opts = append(opts, otlploggrpc.WithTLSCredentials(transport.creds))
	}

	if len(transport.headers) > 0 {
		opts = append(opts, otlploggrpc.WithHeaders(transport.headers))
	}

	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	res, err := newResource(ctx, config.ServiceName, "")
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(config.BatchTimeout)
	if timeout <= 0 {
		timeout = defaultBatchTimeout
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter, sdklog.WithExportTimeout(timeout))),
	)

	global.SetLoggerProvider(provider)

	otelWriter = &OTelWriter{
		provider: provider,
		ctx:      context.WithoutCancel(ctx),
		scopes:   make(map[string]log.Logger),
	}

	return otelWriter, nil
}

// Write never fails so a collector outage cannot break local logging.
func (w *OTelWriter) Write(p []byte) (int, error) {
	var entry map[string]interface{}
	if err := json.Unmarshal(p, &entry); err != nil {
		return len(p), nil
	}

	var record log.Record

	record.SetObservedTimestamp(time.Now())

	if ts, ok := entry[zerologTimeKey].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			record.SetTimestamp(parsed)
		}
	}

	if level, ok := entry[zerologLevelKey].(string); ok {
		record.SetSeverity(severityFor(level))
		record.SetSeverityText(level)
	}

	if msg, ok := entry[zerologMessageKey].(string); ok {
		record.SetBody(log.StringValue(msg))
	}

	scope := defaultScope
	if component, ok := entry["component"].(string); ok && component != "" {
		scope = component
	}

	for key, value := range entry {
		switch key {
		case zerologTimeKey, zerologLevelKey, zerologMessageKey, "component":
			continue
		}

		if value == nil {
			continue
		}

		record.AddAttributes(attributeFor(key, value))
	}

	w.scope(scope).Emit(w.ctx, record)

	return len(p), nil
}

func (w *OTelWriter) scope(name string) log.Logger {
	w.mu.Lock()
	defer w.mu.Unlock()

	l, ok := w.scopes[name]
	if !ok {
		l = w.provider.Logger(name)
		w.scopes[name] = l
	}

	return l
}

const (
	zerologTimeKey    = "time"
	zerologLevelKey   = "level"
	zerologMessageKey = "message"
)

// attributeFor keeps JSON scalars typed; objects and arrays are sent as
// their JSON text.
func attributeFor(key string, value interface{}) log.KeyValue {
	switch v := value.(type) {
	case string:
		return log.String(key, truncate(v, maxAttributeValueLength))
	case bool:
		return log.Bool(key, v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return log.Int64(key, int64(v))
		}

		return log.Float64(key, v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return log.String(key, truncate(fmt.Sprint(v), maxAttributeValueLength))
		}

		return log.String(key, truncate(string(raw), maxAttributeValueLength))
	}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}

	cut := value[:limit-3]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}

	return cut + "..."
}

func severityFor(level string) log.Severity {
	switch strings.ToLower(level) {
	case "trace":
		return log.SeverityTrace
	case "debug":
		return log.SeverityDebug
	case "warn", "warning":
		return log.SeverityWarn
	case "error":
		return log.SeverityError
	case "fatal", "panic":
		return log.SeverityFatal
	default:
		return log.SeverityInfo
	}
}

// ShutdownOTEL flushes the log and metric providers if they were started.
func ShutdownOTEL() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	otelMu.Lock()
	w := otelWriter
	otelWriter = nil
	otelMu.Unlock()

	var errs []error

	if w != nil {
		errs = append(errs, w.provider.Shutdown(ctx))
	}

	errs = append(errs, shutdownMeterProvider(ctx))

	return errors.Join(errs...)
}
