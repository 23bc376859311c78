package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/internal/metrics"
	"github.com/rotmg-stash/stash-helper/internal/rate"
)

// Response is a fully read HTTP response.
type Response struct {
	Status  int
	Body    string
	Elapsed time.Duration
}

// Executor sends single-shot, paced HTTP requests and reads the body as text.
// It never retries: each call issues exactly one request.
type Executor struct {
	logger  *zap.Logger
	rateMgr *rate.Manager
	http    *http.Client
	tag     string
}

// New creates an Executor. rateMgr may be nil to disable pacing.
func New(logger *zap.Logger, rateMgr *rate.Manager, httpClient *http.Client, tag string) *Executor {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Executor{
		logger:  logger,
		rateMgr: rateMgr,
		http:    httpClient,
		tag:     tag,
	}
}

// DoText executes req and returns the full body as text, whatever the status.
// endpoint labels logs and metrics. Transport failures are returned as-is
// for the caller to classify.
func (e *Executor) DoText(ctx context.Context, req *http.Request, endpoint string) (*Response, error) {
	if e.rateMgr != nil {
		if err := e.rateMgr.Wait(ctx, req.URL.Host); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()
	resp, err := e.http.Do(req)
	if err != nil {
		metrics.IncRealmRequest(endpoint, req.Method, "error")
		e.logger.Warn(e.tag+".http_failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	metrics.IncRealmRequest(endpoint, req.Method, strconv.Itoa(resp.StatusCode))
	metrics.ObserveDuration(metrics.RealmRequestDuration, start, endpoint, req.Method)
	if err != nil {
		e.logger.Warn(e.tag+".read_failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode >= 400 {
		e.logger.Warn(e.tag+".http_status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Duration("latency", elapsed))
	} else {
		e.logger.Debug(e.tag+".http_success",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", elapsed))
	}

	return &Response{Status: resp.StatusCode, Body: string(body), Elapsed: elapsed}, nil
}
