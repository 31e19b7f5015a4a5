package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iwtcode/robotDataAgent"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"github.com/iwtcode/robotDataAgent/internal/interfaces"
	"go.uber.org/zap"
)

const maxResponseBodySize = 10 << 20 // 10MB

var errBodyTooLarge = fmt.Errorf("response body exceeds %d bytes", maxResponseBodySize)

type apiFetcher struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAPIFetcher returns a fetcher for the configured robot data endpoint.
// The request deadline comes from the context, not from the client.
func NewAPIFetcher(cfg *robotDataAgent.Config, logger *zap.Logger) interfaces.RecordFetcher {
	return &apiFetcher{
		url:     cfg.APIURL,
		timeout: cfg.HTTPTimeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		logger: logger.Named("fetcher"),
	}
}

func (f *apiFetcher) Fetch(ctx context.Context) models.FetchResult {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	res := f.fetch(ctx)
	res.Latency = time.Since(start)

	if res.Status == models.FetchFailed {
		f.logger.Error("error fetching robot data",
			zap.String("url", f.url),
			zap.Int("status_code", res.StatusCode),
			zap.Duration("latency", res.Latency),
			zap.Error(res.Err),
		)
	} else {
		f.logger.Debug("fetched robot data",
			zap.Int("records", len(res.Records)),
			zap.Duration("latency", res.Latency),
		)
	}
	return res
}

func (f *apiFetcher) fetch(ctx context.Context) models.FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return failed(0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return failed(0, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		return failed(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}
	if len(body) > maxResponseBodySize {
		return failed(resp.StatusCode, errBodyTooLarge)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return failed(resp.StatusCode, err)
	}
	if len(records) == 0 {
		return models.FetchResult{Status: models.FetchEmpty, Records: []models.RawRecord{}, StatusCode: resp.StatusCode}
	}
	return models.FetchResult{Status: models.FetchOK, Records: records, StatusCode: resp.StatusCode}
}

// decodeRecords expects a JSON array. Elements that are not objects become
// empty records so that every element still yields one insert attempt.
func decodeRecords(body []byte) ([]models.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode response: trailing data after JSON array")
	}

	records := make([]models.RawRecord, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			obj = map[string]any{}
		}
		records = append(records, models.RawRecord(obj))
	}
	return records, nil
}

func failed(code int, err error) models.FetchResult {
	return models.FetchResult{Status: models.FetchFailed, Records: []models.RawRecord{}, StatusCode: code, Err: err}
}

// Close drops idle keep-alive connections. The fetcher stays usable.
func (f *apiFetcher) Close() {
	if f == nil || f.httpClient == nil {
		return
	}
	f.httpClient.CloseIdleConnections()
}
