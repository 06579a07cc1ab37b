package natsutil

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/carverauto/rscapture/pkg/models"
)

var (
	// ErrMTLSRequired is returned when client cert or key are missing.
	ErrMTLSRequired = errors.New("mtls cert_file and key_file required")
	// ErrCAParsingFailed is returned when CA certificate cannot be parsed
	ErrCAParsingFailed = errors.New("failed to parse CA certificate")
)

// TLSConfig builds a tls.Config for connecting to NATS using mTLS.
func TLSConfig(files *models.TLSFiles) (*tls.Config, error) {
	if files == nil || files.CertFile == "" || files.KeyFile == "" {
		return nil, ErrMTLSRequired
	}

	cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	conf := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ServerName:   files.ServerName,
		MinVersion:   tls.VersionTLS13,
	}

	if files.CAFile == "" {
		return conf, nil
	}

	caCert, err := os.ReadFile(files.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, ErrCAParsingFailed
	}

	conf.RootCAs = caPool

	return conf, nil
}
