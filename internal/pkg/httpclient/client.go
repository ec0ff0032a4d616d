package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Resolver maps a logical service name to a base URL. The Nacos naming client
// implements it; without one, service names are used as base URLs directly.
type Resolver interface {
	Resolve(serviceName string) (string, error)
}

// Client is a traced, injectable HTTP client for calls to downstream booking
// services. It carries no Timeout of its own: every request is bounded by the
// context it is given.
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	Resolver   Resolver
}

func NewClient(tracer trace.Tracer, resolver Resolver) *Client {
	return &Client{
		Tracer: tracer,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
		Resolver: resolver,
	}
}

// PostJSON sends body as JSON to service+path and decodes a 2xx response into
// out (which may be nil).
func (c *Client) PostJSON(ctx context.Context, service, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, service, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Delete issues a DELETE to service+path; any 2xx status is a success.
func (c *Client) Delete(ctx context.Context, service, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, service, path, nil)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// Get issues a GET to service+path; any 2xx status is a success.
func (c *Client) Get(ctx context.Context, service, path string) error {
	resp, err := c.do(ctx, http.MethodGet, service, path, nil)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, service, path string, body io.Reader) (*http.Response, error) {
	base, err := c.resolveBase(service)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", service, err)
	}
	url := strings.TrimSuffix(base, "/") + path

	spanName := fmt.Sprintf("call-%s", serviceLabel(service))
	ctx, span := c.Tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	span.SetAttributes(
		attribute.String("http.url", url),
		attribute.String("http.method", method),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		err := fmt.Errorf("service %s returned status %s", service, resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return resp, nil
}

func (c *Client) resolveBase(service string) (string, error) {
	if c.Resolver == nil {
		return service, nil
	}
	return c.Resolver.Resolve(service)
}

// serviceLabel keeps span names stable when service is a raw URL.
func serviceLabel(service string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(service, "https://"), "http://")
	return strings.Split(strings.Split(s, "/")[0], ":")[0]
}
