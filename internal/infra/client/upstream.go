// Package client holds the HTTP clients for the Taskflow REST API: identity,
// record collections, the agent roster and activity mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// maxBody caps how much of an upstream response is read.
const maxBody = 32 << 20

// Upstream is the shared transport of every client: circuit breaker,
// retry with backoff, a concurrency bulkhead and optional service tokens.
type Upstream struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	tokens     *TokenSigner
}

// NewUpstream creates the shared transport. tokens may be nil.
func NewUpstream(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, tokens *TokenSigner) *Upstream {
	return &Upstream{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		tokens:     tokens,
	}
}

// IsBenign reports errors that say nothing about upstream health. The
// circuit breaker counts them as successes.
func IsBenign(err error) bool {
	if err == nil {
		return true
	}
	var nf *domain.ErrNotFound
	return errors.As(err, &nf)
}

// statusError is a non-2xx upstream response.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}

// call issues one request and returns the raw body of a 2xx response.
// service names the upstream in errors, spans and the 404 resource.
func (u *Upstream) call(ctx context.Context, service, method, path string, query url.Values, body any) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Upstream."+service)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("upstream.path", path),
	)

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode %s request: %w", service, err)
		}
	}

	target := u.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	result, err := u.cb.Execute(func() (any, error) {
		var raw []byte
		innerErr := u.bulkhead.Do(ctx, func() error {
			return resilience.RetryWithBackoff(ctx, u.cfg, func() error {
				var reader io.Reader
				if payload != nil {
					reader = bytes.NewReader(payload)
				}
				req, err := http.NewRequestWithContext(ctx, method, target, reader)
				if err != nil {
					return resilience.Permanent(err)
				}
				req.Header.Set("Accept", "application/json")
				if payload != nil {
					req.Header.Set("Content-Type", "application/json")
				}
				if u.tokens != nil {
					tok, err := u.tokens.Sign(service)
					if err != nil {
						return resilience.Permanent(err)
					}
					req.Header.Set("Authorization", "Bearer "+tok)
				}

				resp, err := u.httpClient.Do(req)
				if err != nil {
					return err
				}
				defer resp.Body.Close()

				data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
				if err != nil {
					return err
				}

				switch {
				case resp.StatusCode == http.StatusNotFound:
					return resilience.Permanent(&domain.ErrNotFound{Resource: service, ID: query.Get("id")})
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					return resilience.Permanent(&statusError{Status: resp.StatusCode, Body: snippet(data)})
				case resp.StatusCode >= 300:
					return &statusError{Status: resp.StatusCode, Body: snippet(data)}
				}
				raw = data
				return nil
			})
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return raw, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, u.classify(ctx, service, err)
	}
	return result.([]byte), nil
}

func (u *Upstream) classify(ctx context.Context, service string, err error) error {
	var nf *domain.ErrNotFound
	switch {
	case errors.As(err, &nf):
		return nf
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: service}
	case errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded:
		return &domain.ErrTimeout{Operation: service}
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// envelope is the {success, data, message} wrapper some endpoints use.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// decodeCollection accepts a bare JSON array or an envelope whose data is
// an array. A null or missing data field is an empty collection.
func decodeCollection[T any](raw []byte) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	if raw[0] != '[' {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		if env.Success != nil && !*env.Success {
			return nil, fmt.Errorf("upstream reported failure: %s", firstNonEmpty(env.Message, env.Error, "no message"))
		}
		raw = bytes.TrimSpace(env.Data)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return []T{}, nil
		}
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
