package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"SmartDCA/internal/domain/models"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches daily bars from the Yahoo Finance chart API; it
// covers stocks and ETFs that the crypto venue cannot resolve.
type YahooProvider struct {
	client *resty.Client
}

func NewYahooProvider(baseURL string, timeout time.Duration) *YahooProvider {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; smartdca/1.0)")
	return &YahooProvider{client: client}
}

func (p *YahooProvider) Name() string { return "yahoo" }

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Daily fetches 1d-interval chart data. Null closes (halted days) are
// skipped.
func (p *YahooProvider) Daily(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error) {
	var body yahooChart
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"period1":  strconv.FormatInt(from.Unix(), 10),
			"period2":  strconv.FormatInt(to.Unix(), 10),
		}).
		SetResult(&body).
		Get("/v8/finance/chart/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("yahoo chart: status %d", resp.StatusCode())
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart: %s (%s)", body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := body.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	out := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		out = append(out, models.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}
	return out, nil
}
