package convert

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"cvconvert-backend/internal/llm"
)

const defaultMaxAttempts = 3

// retryBaseDelay is the first backoff delay; subsequent attempts double it
// (1s, 2s, 4s). Overridden in tests.
var retryBaseDelay = time.Second

// retryingLLM wraps a client with bounded exponential-backoff retry for
// transient upstream failures. Each pipeline item gets its own instance and
// therefore an independent retry budget.
type retryingLLM struct {
	base         llm.Client
	maxAttempts  int
	conversionID string
}

func newRetryingLLM(base llm.Client, conversionID string) llm.Client {
	if base == nil {
		return nil
	}
	return retryingLLM{
		base:         base,
		maxAttempts:  defaultMaxAttempts,
		conversionID: conversionID,
	}
}

func (r retryingLLM) Generate(ctx context.Context, input llm.GenerateInput) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		resp, err := r.base.Generate(ctx, input)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isTransient(err) || attempt == r.maxAttempts-1 {
			return "", err
		}

		delay := retryBaseDelay << attempt
		log.Printf("llm retry attempt=%d conversion_id=%s delay_ms=%d error=%s",
			attempt+1, r.conversionID, delay.Milliseconds(), err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// isTransient classifies upstream failures expected to resolve on retry:
// server overload status codes and known transport failure signatures.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rpc failed") ||
		strings.Contains(msg, "xhr error") ||
		strings.Contains(msg, "error code: 6") {
		return true
	}
	if strings.Contains(msg, "http status 5") ||
		strings.Contains(msg, "status 500") ||
		strings.Contains(msg, "status 503") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "overloaded") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}

var _ llm.Client = retryingLLM{}
