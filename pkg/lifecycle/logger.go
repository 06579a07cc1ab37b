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

// Package lifecycle wires process-level concerns: component loggers and the
// HTTP server run loop with graceful shutdown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/rs/zerolog"
)

// CreateLogger builds a JSON logger from config. When OTel export is enabled
// every line is also sent to the OTLP log pipeline.
func CreateLogger(ctx context.Context, config *logger.Config) (logger.Logger, error) {
	zl, err := newZerolog(ctx, config, nil)
	if err != nil {
		return nil, err
	}

	return logger.FromZerolog(zl), nil
}

// CreateComponentLogger is CreateLogger with a fixed component field.
func CreateComponentLogger(ctx context.Context, component string, config *logger.Config) (logger.Logger, error) {
	zl, err := newZerolog(ctx, config, nil)
	if err != nil {
		return nil, err
	}

	return logger.FromZerolog(zl.With().Str("component", component).Logger()), nil
}

func newZerolog(ctx context.Context, config *logger.Config, output io.Writer) (zerolog.Logger, error) {
	if config == nil {
		config = logger.DefaultConfig()
	}

	if output == nil {
		output = logger.OutputWriter(config)
	}

	level, err := logger.ParseLevel(config)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	if config.OTel.Enabled && config.OTel.Endpoint != "" {
		otelWriter, err := logger.NewOTELWriter(ctx, config.OTel)
		if err != nil {
			return zerolog.Nop(), err
		}

		output = zerolog.MultiLevelWriter(output, otelWriter)
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger(), nil
}

// ShutdownLogger flushes any pending OTLP logs and metrics.
func ShutdownLogger() error {
	if err := logger.ShutdownOTEL(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to shutdown OTel: %w", err)
	}

	return nil
}
