// Package forecast wraps the balance-forecasting model artifact behind a
// lazily-initialized, fallible handle. The transport layer owns the handle
// and consults Available before serving forecasts; the insight engine never
// depends on it.
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// ErrModelUnavailable is returned when the backing model artifact is missing
// or unreadable. It is a distinct, caller-visible failure: the service never
// silently defaults a forecast.
var ErrModelUnavailable = errors.New("forecast model artifact unavailable")

// Point is one projected balance in the forecast horizon, day 1..N.
type Point struct {
	Day     int     `json:"day"`
	Balance float64 `json:"balance"`
}

// artifact is the serialized model: a fitted starting balance plus a daily
// drift term.
type artifact struct {
	LastBalance float64 `json:"last_balance"`
	DailyDrift  float64 `json:"daily_drift"`
	TrainedAt   string  `json:"trained_at,omitempty"`
}

// Model is a lazy handle on the forecast artifact. The artifact is loaded on
// first use and kept; a missing file is reported per call instead of failing
// process startup.
type Model struct {
	path string

	mu     sync.Mutex
	loaded *artifact
}

// NewModel creates a handle for the artifact at path. No I/O happens here.
func NewModel(path string) *Model {
	return &Model{path: path}
}

// Available reports whether the model artifact can be loaded. This is the
// capability check the forecast endpoint consults.
func (m *Model) Available() bool {
	_, err := m.load()
	return err == nil
}

// Forecast projects the balance for the next days days. It returns
// ErrModelUnavailable (wrapped) when the artifact cannot be loaded.
func (m *Model) Forecast(ctx context.Context, days int) ([]Point, error) {
	if days < 1 {
		return nil, fmt.Errorf("invalid forecast horizon: %d days", days)
	}

	a, err := m.load()
	if err != nil {
		return nil, err
	}

	points := make([]Point, days)
	for i := 0; i < days; i++ {
		points[i] = Point{
			Day:     i + 1,
			Balance: a.LastBalance + a.DailyDrift*float64(i+1),
		}
	}

	slog.DebugContext(ctx, "Forecast generated", "days", days, "model_path", m.path)
	return points, nil
}

func (m *Model) load() (*artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded != nil {
		return m.loaded, nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, m.path)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrModelUnavailable, m.path, err)
	}

	m.loaded = &a
	return m.loaded, nil
}
