package model

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ValidationError reports malformed input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return "invalid input: " + e.Message
}

func (e *ValidationError) Code() string    { return "validation_error" }
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// RateLimitError reports an exhausted operation budget.
type RateLimitError struct {
	Operation  string
	RetryAfter int // whole seconds, at least 1
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: try again in %d seconds", e.Operation, e.RetryAfter)
}

func (e *RateLimitError) Code() string    { return "rate_limit_exceeded" }
func (e *RateLimitError) HTTPStatus() int { return http.StatusTooManyRequests }

// ScrapingError reports a source that could not be scraped after retries.
type ScrapingError struct {
	Source string
	Err    error
}

func (e *ScrapingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scraping %s failed: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("scraping %s failed", e.Source)
}

func (e *ScrapingError) Unwrap() error   { return e.Err }
func (e *ScrapingError) Code() string    { return "scraping_error" }
func (e *ScrapingError) HTTPStatus() int { return http.StatusServiceUnavailable }

// AppError is the fallback for anything unclassified.
type AppError struct {
	ErrCode string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) Code() string {
	if e.ErrCode == "" {
		return "internal_error"
	}
	return e.ErrCode
}

func (e *AppError) HTTPStatus() int { return http.StatusInternalServerError }

// CodedError is implemented by every error in the taxonomy.
type CodedError interface {
	error
	Code() string
	HTTPStatus() int
}

// CodeOf returns the machine code and HTTP-like status for err.
// Unclassified errors map to internal_error / 500.
func CodeOf(err error) (string, int) {
	if err == nil {
		return "", 0
	}
	var coded CodedError
	if errors.As(err, &coded) {
		return coded.Code(), coded.HTTPStatus()
	}
	return "internal_error", http.StatusInternalServerError
}
