// Package gateway delivers user actions to the game host. A failed call
// yields a nil Response; callers treat that as "no effect" and wait for the
// next push instead of updating anything optimistically.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrEmptyResponse = errors.New("empty response")

const DefaultTimeout = 5 * time.Second

type Response struct {
	Status int
	Body   json.RawMessage
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type Gateway struct {
	client  *http.Client
	urlTmpl string
	log     *zap.Logger
}

// New builds a gateway posting to urlTmpl with "{action}" substituted.
func New(client *http.Client, urlTmpl string, log *zap.Logger) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{client: client, urlTmpl: urlTmpl, log: log.Named("gateway")}
}

func (g *Gateway) URL(action string) string {
	return strings.ReplaceAll(g.urlTmpl, "{action}", action)
}

// Send posts payload as JSON. No retries.
func (g *Gateway) Send(ctx context.Context, action string, payload any) *Response {
	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		g.log.Warn("encode payload", zap.String("action", action), zap.Error(err))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL(action), bytes.NewReader(body))
	if err != nil {
		g.log.Warn("build request", zap.String("action", action), zap.Error(err))
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn("request failed", zap.String("action", action), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		g.log.Warn("read response", zap.String("action", action), zap.Error(err))
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.log.Warn("host rejected action",
			zap.String("action", action),
			zap.Int("status", resp.StatusCode))
		return nil
	}

	out := &Response{Status: resp.StatusCode}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 {
		if !json.Valid(trimmed) {
			g.log.Warn("host sent non-JSON body", zap.String("action", action))
			return out
		}
		out.Body = json.RawMessage(trimmed)
	}
	return out
}
