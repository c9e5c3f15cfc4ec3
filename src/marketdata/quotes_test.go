package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseStooqCSV(t *testing.T) {
	body := "Symbol,Date,Time,Open,High,Low,Close,Volume\n" +
		"AAPL.US,2025-03-07,22:00:07,172.5,175.1,171.9,174.55,51234567\n" +
		"ES.F,2025-03-07,22:15:00,4490.25,4512.00,4488.50,4505.25,1200000\n" +
		"BOGUS,N/D,N/D,N/D,N/D,N/D,N/D,N/D\n"

	prices, err := parseStooqCSV(body)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if len(prices) != 2 {
		t.Fatalf("expected 2 quoted symbols, got %d", len(prices))
	}
	if prices["AAPL.US"] != 174.55 {
		t.Fatalf("AAPL close mismatch. got=%v", prices["AAPL.US"])
	}
	if prices["ES.F"] != 4505.25 {
		t.Fatalf("ES close mismatch. got=%v", prices["ES.F"])
	}
	if _, ok := prices["BOGUS"]; ok {
		t.Fatalf("unquotable symbol must be omitted, not zeroed")
	}
}

func TestStooqClientQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/q/l/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("Symbol,Date,Time,Open,High,Low,Close,Volume\naapl.us,2025-03-07,22:00:07,172.5,175.1,171.9,174.55,51234567\n"))
	}))
	defer server.Close()

	client := NewStooqClient(&Config{StooqBaseURL: server.URL, RetryAttempts: 0})

	prices, err := client.Quotes(context.Background(), []string{"AAPL.US"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prices["AAPL.US"] != 174.55 {
		t.Fatalf("quote mismatch. got=%v", prices)
	}
}

func TestStooqClientQuotesEmptyInput(t *testing.T) {
	client := NewStooqClient(&Config{StooqBaseURL: "http://localhost:0", RetryAttempts: 0})

	prices, err := client.Quotes(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error for empty symbol list: %v", err)
	}
	if len(prices) != 0 {
		t.Fatalf("expected empty map, got %v", prices)
	}
}

func TestCurrencyPair(t *testing.T) {
	tests := []struct {
		symbol string
		wantOK bool
	}{
		{"BTCUSDT", true},
		{"ETH-USD", true},
		{"SOL/USDT", true},
		{"AAPL", false},
		{"", false},
	}

	for _, tt := range tests {
		if _, ok := currencyPair(tt.symbol); ok != tt.wantOK {
			t.Fatalf("currencyPair(%q) ok=%v want=%v", tt.symbol, ok, tt.wantOK)
		}
	}
}
