package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// Locator resolves the country of a viewer address.
type Locator interface {
	Country(ctx context.Context, ip string) (string, error)
}

// RateSource fetches the current rate table for BaseCurrency.
type RateSource interface {
	Rates(ctx context.Context) (Rates, error)
}

// IPAPILocator looks countries up on an ipapi.co compatible endpoint.
type IPAPILocator struct {
	baseURL string
	client  *http.Client
}

// NewIPAPILocator creates a locator for baseURL, e.g. https://ipapi.co.
func NewIPAPILocator(baseURL string, client *http.Client) *IPAPILocator {
	return &IPAPILocator{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type ipapiResponse struct {
	Country string `json:"country"`
	Error   bool   `json:"error"`
	Reason  string `json:"reason"`
}

// Country returns the ISO country code of ip. Addresses that are not
// public are resolved by the endpoint from the caller's own address.
func (l *IPAPILocator) Country(ctx context.Context, ip string) (string, error) {
	url := l.baseURL + "/json/"
	if isPublicIP(ip) {
		url = l.baseURL + "/" + ip + "/json/"
	}

	var body ipapiResponse
	if err := getJSON(ctx, l.client, url, &body); err != nil {
		return "", err
	}
	if body.Error {
		return "", fmt.Errorf("geolocation lookup failed: %s", body.Reason)
	}

	country := strings.ToUpper(strings.TrimSpace(body.Country))
	if !IsCountryCode(country) {
		return "", fmt.Errorf("geolocation returned invalid country %q", body.Country)
	}
	return country, nil
}

// ExchangeRateAPI reads a rate table from an exchangerate-api.com style
// endpoint whose base is BaseCurrency.
type ExchangeRateAPI struct {
	url    string
	client *http.Client
}

// NewExchangeRateAPI creates a rate source reading url.
func NewExchangeRateAPI(url string, client *http.Client) *ExchangeRateAPI {
	return &ExchangeRateAPI{url: url, client: client}
}

type ratesResponse struct {
	Base  string `json:"base"`
	Rates Rates  `json:"rates"`
}

func (a *ExchangeRateAPI) Rates(ctx context.Context) (Rates, error) {
	var body ratesResponse
	if err := getJSON(ctx, a.client, a.url, &body); err != nil {
		return nil, err
	}
	if body.Base != "" && !strings.EqualFold(body.Base, BaseCurrency) {
		return nil, fmt.Errorf("rate table base is %s, want %s", body.Base, BaseCurrency)
	}
	if len(body.Rates) == 0 {
		return nil, errors.New("rate table is empty")
	}
	return body.Rates, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s returned %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// IsCountryCode reports whether s looks like an upper-case ISO 3166
// alpha-2 code.
func IsCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isPublicIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return addr.IsGlobalUnicast() && !addr.IsPrivate()
}
