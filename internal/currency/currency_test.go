package currency_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/pkazakov/assistbot/internal/config"
	"github.com/pkazakov/assistbot/internal/currency"
)

// feedXML mirrors the provider's daily feed, declared and encoded as
// windows-1251.
const feedXML = `<?xml version="1.0" encoding="windows-1251"?>
<ValCurs Date="02.06.2025" name="Foreign Currency Market">
	<Valute ID="R01235">
		<NumCode>840</NumCode>
		<CharCode>USD</CharCode>
		<Nominal>1</Nominal>
		<Name>Доллар США</Name>
		<Value>80,0000</Value>
	</Valute>
	<Valute ID="R01239">
		<NumCode>978</NumCode>
		<CharCode>EUR</CharCode>
		<Nominal>1</Nominal>
		<Name>Евро</Name>
		<Value>90,5000</Value>
	</Valute>
	<Valute ID="R01820">
		<NumCode>392</NumCode>
		<CharCode>JPY</CharCode>
		<Nominal>100</Nominal>
		<Name>Японских иен</Name>
		<Value>55,0000</Value>
	</Valute>
	<Valute ID="R01700J">
		<NumCode>949</NumCode>
		<CharCode>TRY</CharCode>
		<Nominal>10</Nominal>
		<Name>Турецких лир</Name>
		<Value>20,4000</Value>
	</Valute>
	<Valute ID="R01060">
		<NumCode>051</NumCode>
		<CharCode>AMD</CharCode>
		<Nominal>100</Nominal>
		<Name>Армянских драмов</Name>
		<Value>20,8000</Value>
	</Valute>
</ValCurs>`

func encodedFeed(t *testing.T) []byte {
	t.Helper()

	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte(feedXML))
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return encoded
}

func parseFeed(t *testing.T) map[string]currency.Rate {
	t.Helper()

	rates, err := currency.ParseRates(bytes.NewReader(encodedFeed(t)))
	if err != nil {
		t.Fatalf("ParseRates failed: %v", err)
	}
	return rates
}

func TestParseRates(t *testing.T) {
	t.Parallel()

	rates := parseFeed(t)

	usd, ok := rates["USD"]
	if !ok {
		t.Fatal("USD missing from parsed rates")
	}
	if usd.Value != 80 || usd.Nominal != 1 {
		t.Errorf("USD = %+v, want value 80 nominal 1", usd)
	}
	if usd.Name != "Доллар США" {
		t.Errorf("USD name = %q, charset decoding broken", usd.Name)
	}

	jpy := rates["JPY"]
	if jpy.Nominal != 100 {
		t.Errorf("JPY nominal = %d, want 100", jpy.Nominal)
	}
	if got := jpy.RUBPrice(); got != 0.55 {
		t.Errorf("JPY ruble price = %v, want 0.55", got)
	}

	rub, ok := rates["RUB"]
	if !ok {
		t.Fatal("RUB missing from parsed rates")
	}
	if rub.RUBPrice() != 1 {
		t.Errorf("RUB ruble price = %v, want 1", rub.RUBPrice())
	}
}

func TestConvertWith(t *testing.T) {
	t.Parallel()

	rates := parseFeed(t)

	tests := []struct {
		name    string
		amount  float64
		from    string
		to      string
		want    float64
		wantErr error
	}{
		{name: "usd to rub", amount: 100, from: "USD", to: "RUB", want: 8000},
		{name: "rub to usd", amount: 8000, from: "RUB", to: "USD", want: 100},
		{name: "usd to eur via rub", amount: 90.5, from: "USD", to: "EUR", want: 80},
		{name: "case insensitive", amount: 1, from: "usd", to: "rub", want: 80},
		{name: "nominal applied", amount: 100, from: "JPY", to: "RUB", want: 55},
		{name: "unknown source", amount: 1, from: "XXX", to: "RUB", wantErr: currency.ErrUnknownCurrency},
		{name: "unknown target", amount: 1, from: "USD", to: "XXX", wantErr: currency.ErrUnknownCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := currency.ConvertWith(rates, tt.amount, tt.from, tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ConvertWith failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ConvertWith = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	t.Parallel()

	rates := parseFeed(t)

	rub, err := currency.ConvertWith(rates, 123.45, "EUR", "RUB")
	if err != nil {
		t.Fatalf("ConvertWith failed: %v", err)
	}
	back, err := currency.ConvertWith(rates, rub, "RUB", "EUR")
	if err != nil {
		t.Fatalf("ConvertWith failed: %v", err)
	}
	if math.Abs(back-123.45) > 1e-9 {
		t.Errorf("round trip = %v, want 123.45", back)
	}
}

func TestPriorityRates(t *testing.T) {
	t.Parallel()

	rates := parseFeed(t)
	priority := currency.PriorityRates(rates)

	wantOrder := []string{"USD", "EUR", "JPY"}
	if len(priority) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(priority), len(wantOrder))
	}
	for i, code := range wantOrder {
		if priority[i].Code != code {
			t.Errorf("priority[%d] = %s, want %s", i, priority[i].Code, code)
		}
	}
}

func TestOtherRates(t *testing.T) {
	t.Parallel()

	rates := parseFeed(t)
	others := currency.OtherRates(rates)

	// The priority currencies and the ruble stay out; the rest come back
	// sorted by code.
	wantOrder := []string{"AMD", "TRY"}
	if len(others) != len(wantOrder) {
		t.Fatalf("others = %+v, want codes %v", others, wantOrder)
	}
	for i, code := range wantOrder {
		if others[i].Code != code {
			t.Errorf("others[%d] = %s, want %s", i, others[i].Code, code)
		}
	}
	if others[1].Name != "Турецких лир" {
		t.Errorf("TRY name = %q, want feed name", others[1].Name)
	}
}

func TestClientConvert(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml; charset=windows-1251")
		_, _ = w.Write(encodedFeed(t))
	}))
	defer server.Close()

	client := currency.NewClient(
		config.CurrencyConfig{BaseURL: server.URL, Timeout: 5 * time.Second},
		slog.New(slog.DiscardHandler))

	got, err := client.Convert(context.Background(), 100, "usd", "rub")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if math.Abs(got-8000) > 1e-9 {
		t.Errorf("Convert = %v, want 8000", got)
	}

	_, err = client.Convert(context.Background(), 100, "USD", "XXX")
	if !errors.Is(err, currency.ErrUnknownCurrency) {
		t.Errorf("Convert unknown code error = %v, want ErrUnknownCurrency", err)
	}
}
