package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"candle_sync/internal/feature/candles/usecase"
	"candle_sync/internal/shared/ratelimiter"
)

// klinesPageLimit はklinesエンドポイントの1リクエストあたりの最大件数です。
const klinesPageLimit = 1000

// Client はBinance REST APIからサーバ時刻とローソク足を取得するMarketRepository実装です。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// ClientがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// GetServerTime はBinanceのサーバ時刻をエポックミリ秒で取得します。
func (c *Client) GetServerTime(ctx context.Context) (int64, error) {
	var body struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := c.getJSON(ctx, "/api/v3/time", nil, &body); err != nil {
		return 0, err
	}
	return body.ServerTime, nil
}

// GetKlines は [startMs, endMs) の範囲のローソク足を取得します。
// Binance側の1000件制限を内部でページングし、呼び出し元には
// 全期間をまとめて返します。ページ間はレートリミッタで間隔を空けます。
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]usecase.RawKline, error) {
	var out []usecase.RawKline
	cursor := startMs
	for cursor < endMs {
		page, err := c.fetchPage(ctx, symbol, interval, cursor, endMs)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		out = append(out, page...)

		last := page[len(page)-1].OpenTimeMs
		if last < cursor {
			// サーバが後退したopen timeを返した場合の無限ループ防止
			return nil, fmt.Errorf("binance returned non-monotonic open time %d (cursor %d)", last, cursor)
		}
		cursor = last + 1

		if len(page) < klinesPageLimit {
			break
		}
	}
	return out, nil
}

// fetchPage はklinesを1ページ分取得します。
// BinanceのendTimeは両端を含むため、[startMs, endMs) に合わせて endMs-1 を渡します。
func (c *Client) fetchPage(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]usecase.RawKline, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("startTime", strconv.FormatInt(startMs, 10))
	q.Set("endTime", strconv.FormatInt(endMs-1, 10))
	q.Set("limit", strconv.Itoa(klinesPageLimit))

	var rows [][]any
	if err := c.getJSON(ctx, "/api/v3/klines", q, &rows); err != nil {
		return nil, err
	}

	out := make([]usecase.RawKline, 0, len(rows))
	for _, row := range rows {
		// kline配列: [openTime, open, high, low, close, volume, closeTime, ...]
		if len(row) < 6 {
			return nil, fmt.Errorf("binance kline row has %d fields, want at least 6", len(row))
		}
		openNum, ok := row[0].(json.Number)
		if !ok {
			return nil, fmt.Errorf("binance kline open time is %T, want number", row[0])
		}
		openMs, err := openNum.Int64()
		if err != nil {
			return nil, fmt.Errorf("parse open time %q: %w", openNum.String(), err)
		}
		out = append(out, usecase.RawKline{
			OpenTimeMs: openMs,
			Open:       asString(row[1]),
			High:       asString(row[2]),
			Low:        asString(row[3]),
			Close:      asString(row[4]),
			Volume:     asString(row[5]),
		})
	}
	return out, nil
}

// getJSON はGETリクエストを実行しJSONレスポンスをデコードします。
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	if c.limiter != nil {
		c.limiter.WaitIfNeeded()
	}

	u := c.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.cfg.APIKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		// エラーレスポンスは {"code": -1121, "msg": "..."} 形式
		var apiErr struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if err := json.NewDecoder(res.Body).Decode(&apiErr); err == nil && apiErr.Msg != "" {
			return fmt.Errorf("binance http %d: %s (code %d)", res.StatusCode, apiErr.Msg, apiErr.Code)
		}
		return fmt.Errorf("binance http %d", res.StatusCode)
	}

	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

// asString はBinanceの数値テキストフィールドを文字列として取り出します。
// 想定外の型はそのまま文字列化し、数値変換の成否は正規化側に委ねます。
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}
