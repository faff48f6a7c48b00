package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/infrastructure/resilience"
)

// HTTPStatusError is a non-2xx response from the service. Detail holds the
// service-reported failure message when the body carried one.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Detail     string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "service status error"
	}
	if strings.TrimSpace(e.Detail) == "" {
		return fmt.Sprintf("service %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("service %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Detail))
}

// UserMessage returns the service-reported detail on its own, without the
// operation and status framing, for text shown directly to the user.
func (e *HTTPStatusError) UserMessage() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Detail)
}

func classifyServiceError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{
				Retryable:     true,
				RecordFailure: true,
			}
		}
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

// classifyOneShot keeps user-initiated mutations single-shot: nothing is
// retried, but transport-level failures still count against the breaker.
func classifyOneShot(err error) resilience.ErrorClassification {
	class := classifyServiceError(err)
	class.Retryable = false
	return class
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}

	class := classifyServiceError(err)
	if class.Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
