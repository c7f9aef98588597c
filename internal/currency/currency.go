// Package currency provides exchange rates from the Central Bank of Russia
// daily XML feed and conversion between the listed currencies.
package currency

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/pkazakov/assistbot/internal/config"
)

// ErrUnknownCurrency is returned when a requested currency code is not in
// the daily feed.
var ErrUnknownCurrency = errors.New("unknown currency code")

// rubCode is the feed's base currency. It never appears in the XML itself.
const rubCode = "RUB"

// Rate is the ruble price of one currency from the daily feed.
type Rate struct {
	Code    string
	Name    string
	Nominal int
	Value   float64
}

// RUBPrice returns how many rubles one unit of the currency costs.
func (r Rate) RUBPrice() float64 {
	return r.Value / float64(r.Nominal)
}

// priorityCodes orders the most-requested currencies first in listings.
var priorityCodes = []string{"USD", "EUR", "GBP", "JPY", "CHF", "CNY", "UAH"}

// Client fetches the CBR daily rates feed.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a currency client from configuration.
func NewClient(cfg config.CurrencyConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		logger:     logger.With("component", "currency"),
	}
}

type valCurs struct {
	Date    string   `xml:"Date,attr"`
	Valutes []valute `xml:"Valute"`
}

type valute struct {
	CharCode string `xml:"CharCode"`
	Nominal  int    `xml:"Nominal"`
	Name     string `xml:"Name"`
	Value    string `xml:"Value"`
}

// Rates fetches the daily feed and returns rates keyed by currency code.
// The base RUB is included with value 1 so callers can convert uniformly.
func (c *Client) Rates(ctx context.Context) (map[string]Rate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("rates provider returned error", "status", resp.StatusCode)
		return nil, fmt.Errorf("rates provider returned status %d", resp.StatusCode)
	}

	return ParseRates(resp.Body)
}

// ParseRates decodes the CBR XML feed. The feed declares windows-1251, so
// the decoder needs a charset reader.
func ParseRates(r io.Reader) (map[string]Rate, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(charset) {
		case "windows-1251":
			return charmap.Windows1251.NewDecoder().Reader(input), nil
		default:
			return nil, fmt.Errorf("unsupported charset %q", charset)
		}
	}

	var feed valCurs
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode rates feed: %w", err)
	}

	rates := make(map[string]Rate, len(feed.Valutes)+1)
	rates[rubCode] = Rate{Code: rubCode, Name: "Российский рубль", Nominal: 1, Value: 1}

	for _, v := range feed.Valutes {
		// The feed uses a comma decimal separator.
		value, err := strconv.ParseFloat(strings.ReplaceAll(v.Value, ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q for %s: %w", v.Value, v.CharCode, err)
		}
		if v.Nominal <= 0 {
			return nil, fmt.Errorf("bad nominal %d for %s", v.Nominal, v.CharCode)
		}
		code := strings.ToUpper(v.CharCode)
		rates[code] = Rate{Code: code, Name: v.Name, Nominal: v.Nominal, Value: value}
	}

	return rates, nil
}

// Convert converts amount from one currency to another, bridging through
// rubles. Codes are case-insensitive.
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	rates, err := c.Rates(ctx)
	if err != nil {
		return 0, err
	}

	return ConvertWith(rates, amount, from, to)
}

// ConvertWith converts using an already-fetched rate table.
func ConvertWith(rates map[string]Rate, amount float64, from, to string) (float64, error) {
	fromRate, ok := rates[strings.ToUpper(from)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, strings.ToUpper(from))
	}
	toRate, ok := rates[strings.ToUpper(to)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, strings.ToUpper(to))
	}

	rub := amount * fromRate.RUBPrice()
	return rub / toRate.RUBPrice(), nil
}

// PriorityRates returns the well-known currencies in a fixed order;
// currencies missing from the feed are skipped.
func PriorityRates(rates map[string]Rate) []Rate {
	out := make([]Rate, 0, len(priorityCodes))
	for _, code := range priorityCodes {
		if rate, ok := rates[code]; ok {
			out = append(out, rate)
		}
	}
	return out
}

// OtherRates returns the rest of the daily feed, excluding the priority
// currencies and the ruble itself, sorted by code.
func OtherRates(rates map[string]Rate) []Rate {
	skip := map[string]bool{rubCode: true}
	for _, code := range priorityCodes {
		skip[code] = true
	}

	out := make([]Rate, 0, len(rates))
	for code, rate := range rates {
		if !skip[code] {
			out = append(out, rate)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
