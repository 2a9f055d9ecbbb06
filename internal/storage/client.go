// Package storage persists canonical articles in Elasticsearch.
package storage

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/newsfuse/internal/logger"
)

// DefaultIndexName is the article index used when none is configured.
const DefaultIndexName = "articles"

// DefaultOperationTimeout bounds one storage operation.
const DefaultOperationTimeout = 30 * time.Second

// TLSConfig holds transport security settings for the Elasticsearch client.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" mapstructure:"enabled"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	CertFile           string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile            string `yaml:"key_file" mapstructure:"key_file"`
}

// Config holds Elasticsearch connection settings.
type Config struct {
	Addresses []string      `yaml:"addresses" mapstructure:"addresses"`
	Username  string        `yaml:"username" mapstructure:"username"`
	Password  string        `yaml:"password" mapstructure:"password"`
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	CloudID   string        `yaml:"cloud_id" mapstructure:"cloud_id"`
	IndexName string        `yaml:"index_name" mapstructure:"index_name"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	TLS       TLSConfig     `yaml:"tls" mapstructure:"tls"`
}

// NewClient creates and pings an Elasticsearch client.
func NewClient(cfg Config, log logger.Interface) (*es.Client, error) {
	if log == nil {
		log = logger.NewNoOp()
	}
	if len(cfg.Addresses) > 0 {
		log.Debug("connecting to elasticsearch", "addresses", cfg.Addresses)
	}

	clientConfig := es.Config{
		Addresses: cfg.Addresses,
		Transport: createTransport(cfg.TLS),
	}
	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	} else if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}
	if cfg.CloudID != "" {
		clientConfig.CloudID = cfg.CloudID
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch ping returned: %s", res.String())
	}

	return client, nil
}

func createTransport(cfg TLSConfig) *http.Transport {
	transport := &http.Transport{}
	if !cfg.Enabled {
		return transport
	}

	tlsConfig := &tls.Config{
		//nolint:gosec // InsecureSkipVerify is configurable for development environments
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		if cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile); err == nil {
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
	}
	transport.TLSClientConfig = tlsConfig
	return transport
}
