// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/swell/api/access"
	"github.com/vechain/swell/api/accounts"
	"github.com/vechain/swell/api/calls"
	"github.com/vechain/swell/api/doc"
	"github.com/vechain/swell/api/events"
	"github.com/vechain/swell/api/ledger"
	"github.com/vechain/swell/api/middleware"
	"github.com/vechain/swell/api/subscriptions"
	"github.com/vechain/swell/api/transactions"
	"github.com/vechain/swell/log"
	"github.com/vechain/swell/logdb"
	"github.com/vechain/swell/metrics"
	"github.com/vechain/swell/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	// last byte of the genesis id, signed into every transaction
	ChainTag             byte
	AllowedOrigins       string
	LogsLimit            uint64
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
}

// New return api router. The returned closer releases the hijacked subscription connections.
// The runtime should publish receipts to the returned subscriptions.
func New(rt *runtime.Runtime, logDB *logdb.LogDB, opts Options) (http.HandlerFunc, *subscriptions.Subscriptions) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	router.Path("/doc/swell.yaml").
		Methods(http.MethodGet).
		Handler(http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS)))).
		Name("GET /doc")

	ledger.New(rt).
		Mount(router, "/ledger")
	access.New(rt).
		Mount(router, "/access")
	accounts.New(rt).
		Mount(router, "/accounts")
	calls.New(rt).
		Mount(router, "/calls")
	transactions.New(rt, opts.ChainTag).
		Mount(router, "/transactions")
	events.New(logDB, opts.LogsLimit).
		Mount(router, "/events")
	subs := subscriptions.New(logDB, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Path("/metrics").
			Methods(http.MethodGet).
			Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	if opts.EnableReqLogger != nil {
		router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold))
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{"x-swell-ver"}),
	)(handler)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-swell-ver", doc.Version())
		handler.ServeHTTP(w, r)
	}, subs
}
