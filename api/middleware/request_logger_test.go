// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/swell/log"
)

// mockLogger records the context of Info and Warn records.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) New(_ ...any) log.Logger   { return m }
func (m *mockLogger) Trace(_ string, _ ...any)  {}
func (m *mockLogger) Debug(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any)  {}
func (m *mockLogger) Crit(_ string, _ ...any)   {}
func (m *mockLogger) Info(_ string, ctx ...any) { m.loggedData = append(m.loggedData, ctx...) }
func (m *mockLogger) Warn(_ string, ctx ...any) { m.loggedData = append(m.loggedData, ctx...) }

func TestRequestLoggerHandler(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		threshold time.Duration
		shouldLog bool
	}{
		{
			name:      "enabled",
			handler:   func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
			enabled:   true,
			shouldLog: true,
		},
		{
			name:      "disabled without threshold",
			handler:   func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
			shouldLog: false,
		},
		{
			name:      "disabled fast request",
			handler:   func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
			threshold: time.Hour,
			shouldLog: false,
		},
		{
			name: "disabled slow request",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(20 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			},
			threshold: time.Millisecond,
			shouldLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			var body string
			handler := RequestLoggerMiddleware(logger, &enabled, tt.threshold)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				body = string(b)
				tt.handler(w, r)
			}))

			req := httptest.NewRequest(http.MethodPost, "/calls?x=1", strings.NewReader(`{"to":"0x"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, `{"to":"0x"}`, body)
			if tt.shouldLog {
				assert.Contains(t, logger.loggedData, "URI")
				assert.Contains(t, logger.loggedData, "/calls?x=1")
				assert.Contains(t, logger.loggedData, `{"to":"0x"}`)
				assert.Contains(t, logger.loggedData, "Status")
			} else {
				assert.Empty(t, logger.loggedData)
			}
		})
	}
}
