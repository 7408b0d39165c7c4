// Package transport picks the HTTP client used to reach the provider.
package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/oggyb/smshub/internal/config"
	"github.com/oggyb/smshub/internal/smshub"
	"github.com/oggyb/smshub/internal/transport/fasthttpdoer"
)

// New returns a client of the given kind (config.TransportHTTP or
// config.TransportFastHTTP) bounded by timeout.
func New(kind string, timeout time.Duration) (smshub.HTTPClient, error) {
	switch kind {
	case config.TransportHTTP, "":
		return &http.Client{Timeout: timeout}, nil
	case config.TransportFastHTTP:
		return fasthttpdoer.New(nil, timeout), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}

// NewProvider builds the SMSHub client described by cfg.
func NewProvider(cfg *config.Config) (*smshub.Client, error) {
	hc, err := New(cfg.SMSHub.Transport, cfg.SMSHub.Timeout)
	if err != nil {
		return nil, err
	}
	var opts []smshub.Option
	if cfg.SMSHub.Endpoint != "" {
		opts = append(opts, smshub.WithEndpoint(cfg.SMSHub.Endpoint))
	}
	return smshub.New(cfg.SMSHub.APIKey, hc, opts...), nil
}
