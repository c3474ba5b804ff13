// Package registry builds a concrete provider from a stored credential.
package registry

import (
	"fmt"
	"time"

	"github.com/urbantwin/citytwin-backend/internal/ai"
	"github.com/urbantwin/citytwin-backend/internal/ai/catalog"
	"github.com/urbantwin/citytwin-backend/internal/ai/oaihttp"
)

var ErrUnknownProvider = fmt.Errorf("unknown provider")

// Build returns a ready provider for the given vendor code. baseURL
// overrides the catalog endpoint when non-empty, which is how
// self-hosted gateways and proxies are supported.
func Build(code, apiKey, baseURL string) (ai.Provider, error) {
	vendor, ok := catalog.Get(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, code)
	}
	if vendor.RequiresKey && apiKey == "" {
		return nil, fmt.Errorf("provider %s: api key required", code)
	}

	url := vendor.BaseURL
	if baseURL != "" {
		url = baseURL
	}

	return oaihttp.New(oaihttp.Config{
		Code:    vendor.Code,
		Name:    vendor.Name,
		BaseURL: url,
		APIKey:  apiKey,
		Timeout: 60 * time.Second,
		Models:  vendor.Models,
	})
}
