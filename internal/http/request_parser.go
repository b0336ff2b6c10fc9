// This file implements utilities for parsing and validating HTTP request
// data: capped body reads, JSON decoding, and query parameter extraction.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxBodyBytes caps every request body read by the service.
const maxBodyBytes = 1 << 20

// readBody drains the request body with the size cap applied. An oversized
// body surfaces as an error rather than a silent truncation.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return data, nil
}

// decodeJSONBody parses the request body as JSON into dst.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("request body is empty")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// Forecast horizon bounds.
const (
	defaultForecastDays = 7
	minForecastDays     = 1
	maxForecastDays     = 90
)

// parseForecastDays extracts the days query parameter, defaulting to a week
// and clamping to the supported horizon. A non-numeric value is an error.
func parseForecastDays(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("days"))
	if v == "" {
		return defaultForecastDays, nil
	}
	days, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("days must be an integer, got %q", v)
	}
	if days < minForecastDays {
		days = minForecastDays
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}
	return days, nil
}
