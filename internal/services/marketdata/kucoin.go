package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"SmartDCA/internal/domain/models"
	"SmartDCA/pkg/util"
)

const defaultKuCoinBaseURL = "https://api.kucoin.com"

// KuCoinProvider fetches daily candles from the public KuCoin REST API. No
// API keys are needed for market data.
type KuCoinProvider struct {
	client *resty.Client
}

func NewKuCoinProvider(baseURL string, timeout time.Duration) *KuCoinProvider {
	if baseURL == "" {
		baseURL = defaultKuCoinBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &KuCoinProvider{client: client}
}

func (p *KuCoinProvider) Name() string { return "kucoin" }

type kucoinCandles struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"` // [time, open, close, high, low, volume, turnover]
}

// Daily fetches 1-day candles for the normalized trading pair. KuCoin returns
// candles newest first; the fetcher reorders.
func (p *KuCoinProvider) Daily(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error) {
	pair := NormalizePair(symbol)

	var body kucoinCandles
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"type":    "1day",
			"symbol":  pair,
			"startAt": strconv.FormatInt(from.Unix(), 10),
			"endAt":   strconv.FormatInt(to.Unix(), 10),
		}).
		SetResult(&body).
		Get("/api/v1/market/candles")
	if err != nil {
		return nil, fmt.Errorf("kucoin candles: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("kucoin candles: status %d", resp.StatusCode())
	}
	if body.Code != "200000" {
		return nil, fmt.Errorf("kucoin candles: code %s %s", body.Code, body.Msg)
	}

	return candlePoints(body.Data), nil
}

// candlePoints converts raw candle rows to price points, dropping rows with
// unparseable timestamps or non-positive closes. KuCoin sends timestamps as
// unix-second strings.
func candlePoints(rows [][]string) []models.PricePoint {
	out := make([]models.PricePoint, 0, len(rows))
	for _, c := range rows {
		if len(c) < 3 {
			continue
		}
		ts, ok := util.ParseTime(c[0])
		if !ok {
			continue
		}
		closePrice, err := strconv.ParseFloat(c[2], 64)
		if err != nil || closePrice <= 0 {
			continue
		}
		out = append(out, models.PricePoint{
			Date:  ts.UTC(),
			Close: closePrice,
		})
	}
	return out
}

// NormalizePair maps loose crypto notations to KuCoin's BASE-QUOTE form:
// "BTC" -> "BTC-USDT", "BTC/USD" -> "BTC-USDT", "eth-usdt" -> "ETH-USDT".
func NormalizePair(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.ReplaceAll(s, "/", "-")
	parts := strings.Split(s, "-")
	base := parts[0]
	quote := "USDT"
	if len(parts) == 2 && parts[1] != "" {
		quote = parts[1]
		if quote == "USD" {
			quote = "USDT"
		}
	}
	return base + "-" + quote
}
