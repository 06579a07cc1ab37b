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
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.31.0"
	"google.golang.org/grpc/credentials"
)

var (
	errFailedToParseCACert = errors.New("failed to parse CA certificate")
	errHalfKeyPair         = errors.New("otel tls needs both cert_file and key_file")
)

// exporterTransport is the connection setup shared by the log, trace and
// metric OTLP exporters.
type exporterTransport struct {
	endpoint string
	insecure bool
	creds    credentials.TransportCredentials
	headers  map[string]string
}

func newExporterTransport(cfg *OTelConfig) (*exporterTransport, error) {
	t := &exporterTransport{
		endpoint: cfg.Endpoint,
		insecure: cfg.Insecure,
		headers:  cfg.Headers,
	}

	if cfg.Insecure || cfg.TLS == nil {
		return t, nil
	}

	tlsConf, err := loadTLS(cfg.TLS)
	if err != nil {
		return nil, err
	}

	t.creds = credentials.NewTLS(tlsConf)

	return t, nil
}

func loadTLS(files *TLSConfig) (*tls.Config, error) {
	conf := &tls.Config{MinVersion: tls.VersionTLS12}

	switch {
	case files.CertFile != "" && files.KeyFile != "":
		cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load OTel client certificate: %w", err)
		}

		conf.Certificates = []tls.Certificate{cert}
	case files.CertFile != "" || files.KeyFile != "":
		return nil, errHalfKeyPair
	}

	if files.CAFile == "" {
		return conf, nil
	}

	pem, err := os.ReadFile(files.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read OTel CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errFailedToParseCACert
	}

	conf.RootCAs = pool

	return conf, nil
}

func newResource(ctx context.Context, serviceName, serviceVersion string) (*resource.Resource, error) {
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	if serviceVersion == "" {
		serviceVersion = defaultServiceVersion
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenTelemetry resource: %w", err)
	}

	return res, nil
}
