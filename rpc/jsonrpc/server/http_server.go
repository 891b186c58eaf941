// Commons for HTTP handling
package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/net/netutil"

	"github.com/sophiatx/alexandria/libs/log"
	"github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

const shutdownTimeout = 5 * time.Second

// Config is a RPC server configuration.
type Config struct {
	// see netutil.LimitListener
	MaxOpenConnections int
	// mirrors http.Server#ReadTimeout
	ReadTimeout time.Duration
	// mirrors http.Server#WriteTimeout
	WriteTimeout time.Duration
	// MaxBodyBytes controls the maximum number of bytes the
	// server will read parsing the request body.
	MaxBodyBytes int64
	// mirrors http.Server#MaxHeaderBytes
	MaxHeaderBytes int
	// maximum number of requests in a batch request
	MaxRequestBatchSize int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConnections:  0, // unlimited
		ReadTimeout:         10 * time.Second,
		WriteTimeout:        10 * time.Second,
		MaxBodyBytes:        int64(1000000), // 1MB
		MaxHeaderBytes:      1 << 20,        // same as the net/http default
		MaxRequestBatchSize: 10,             // default to max 10 requests per batch
	}
}

func newHTTPServer(handler http.Handler, logger log.Logger, config *Config) *http.Server {
	return &http.Server{
		Handler:           PreChecksHandler(RecoverAndLogHandler(handler, logger), config),
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		MaxHeaderBytes:    config.MaxHeaderBytes,
	}
}

// Serve creates a http.Server and calls Serve with the given listener. It
// wraps handler with RecoverAndLogHandler and a handler, which limits the max
// body size to config.MaxBodyBytes. The server is shut down gracefully when
// ctx is done, in which case Serve returns nil.
//
// NOTE: This function blocks - you may want to call it in a go-routine.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, logger log.Logger, config *Config) error {
	logger.Info("serve", "msg", log.NewLazySprintf("Starting RPC HTTP server on %s", listener.Addr()))
	s := newHTTPServer(handler, logger, config)
	return runServer(ctx, s, func() error { return s.Serve(listener) }, logger)
}

// ServeTLS is Serve over TLS, using the given certificate and key files.
//
// NOTE: This function blocks - you may want to call it in a go-routine.
func ServeTLS(
	ctx context.Context,
	listener net.Listener,
	handler http.Handler,
	certFile, keyFile string,
	logger log.Logger,
	config *Config,
) error {
	logger.Info("serve tls", "msg", log.NewLazySprintf("Starting RPC HTTPS server on %s (cert: %q, key: %q)",
		listener.Addr(), certFile, keyFile))
	s := newHTTPServer(handler, logger, config)
	return runServer(ctx, s, func() error { return s.ServeTLS(listener, certFile, keyFile) }, logger)
}

func runServer(ctx context.Context, s *http.Server, serve func() error, logger log.Logger) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.Shutdown(sctx); err != nil {
				logger.Error("RPC HTTP server shutdown", "err", err)
			}
		case <-done:
		}
	}()

	err := serve()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	logger.Info("RPC HTTP server stopped", "err", err)
	return err
}

// WriteRPCResponseHTTPError marshals res as JSON and writes it to w.
//
// source: https://www.jsonrpc.org/historical/json-rpc-over-http.html
func WriteRPCResponseHTTPError(
	w http.ResponseWriter,
	httpCode int,
	res types.RPCResponse,
) error {
	if res.Error == nil {
		panic("tried to write http error response without RPC error")
	}

	jsonBytes, err := json.Marshal(res)
	if err != nil {
		return ErrMarshalResponse{Source: err}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	_, err = w.Write(jsonBytes)
	return err
}

// WriteRPCResponseHTTP marshals res as JSON and writes it to w. A single
// response is written as an object, several as an array.
func WriteRPCResponseHTTP(w http.ResponseWriter, res ...types.RPCResponse) error {
	var v any
	if len(res) == 1 {
		v = res[0]
	} else {
		v = res
	}
	return writeRPCResponseHTTP(w, v)
}

func writeRPCResponseHTTP(w http.ResponseWriter, v any) error {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return ErrMarshalResponse{Source: err}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(jsonBytes)
	return err
}

//-----------------------------------------------------------------------------

// RecoverAndLogHandler wraps an HTTP handler, adding error logging.
// If the inner function panics, the outer function recovers, logs, sends an
// HTTP 500 error response.
//
// Only the request path is logged. Query strings and bodies may carry
// private keys.
func RecoverAndLogHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rww := &responseWriterWrapper{Status: -1, ResponseWriter: w}
		begin := time.Now()

		defer func() {
			// a panic while recovering must not reach the logger again
			if e := recover(); e != nil {
				fmt.Fprintf(os.Stderr, "Panic during RPC panic recovery: %v\n%v\n", e, string(debug.Stack()))
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()

		defer func() {
			if e := recover(); e != nil {
				logger.Error("panic in RPC HTTP handler", "path", r.URL.Path, "err", e, "stack", string(debug.Stack()))

				res := types.RPCInternalError(types.JSONRPCIntID(-1), panicError(e))
				if wErr := WriteRPCResponseHTTPError(rww, http.StatusInternalServerError, res); wErr != nil {
					logger.Error("failed to write response", "err", wErr)
				}
			}

			if rww.Status == -1 {
				rww.Status = http.StatusOK
			}
			logger.Debug("served RPC HTTP response",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rww.Status,
				"duration", time.Since(begin),
				"remoteAddr", r.RemoteAddr,
			)
		}()

		handler.ServeHTTP(rww, r)
	})
}

// panicError turns a recovered value into an error.
func panicError(e any) error {
	switch e := e.(type) {
	case error:
		return e
	case string:
		return errors.New(e)
	case fmt.Stringer:
		return errors.New(e.String())
	default:
		return fmt.Errorf("%v", e)
	}
}

// responseWriterWrapper remembers the status for logging.
type responseWriterWrapper struct {
	Status int
	http.ResponseWriter
}

func (w *responseWriterWrapper) WriteHeader(status int) {
	w.Status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection.
func (w *responseWriterWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}

// Listen starts a new net.Listener on the given address.
// It returns an error if the address is invalid or the call to Listen() fails.
func Listen(addr string, maxOpenConnections int) (listener net.Listener, err error) {
	parts := strings.SplitN(addr, "://", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf(
			"invalid listening address %s (use fully formed addresses, including the tcp:// or unix:// prefix)",
			addr,
		)
	}
	proto, addr := parts[0], parts[1]
	listener, err = net.Listen(proto, addr)
	if err != nil {
		return nil, ErrListening{Addr: addr, Source: err}
	}
	if maxOpenConnections > 0 {
		listener = netutil.LimitListener(listener, maxOpenConnections)
	}

	return listener, nil
}

// PreChecksHandler caps the request body at config.MaxBodyBytes and rejects
// batches longer than config.MaxRequestBatchSize. A zero limit disables the
// check.
func PreChecksHandler(next http.Handler, config *Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if config.MaxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, config.MaxBodyBytes)
		}

		if config.MaxRequestBatchSize > 0 && r.Method == http.MethodPost {
			data, err := io.ReadAll(r.Body)
			if err != nil {
				res := types.RPCInvalidRequestError(nil, fmt.Errorf("error reading request body: %w", err))
				_ = WriteRPCResponseHTTPError(w, http.StatusBadRequest, res)
				return
			}

			var requests []json.RawMessage
			if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
				if err := json.Unmarshal(trimmed, &requests); err == nil && len(requests) > config.MaxRequestBatchSize {
					res := types.RPCInvalidRequestError(nil, fmt.Errorf(
						"batch request exceeds maximum (%d) allowed number of requests", config.MaxRequestBatchSize))
					_ = writeRPCResponseHTTP(w, []types.RPCResponse{res})
					return
				}
			}

			// the JSON handler reads the body again
			r.Body = io.NopCloser(bytes.NewReader(data))
		}

		next.ServeHTTP(w, r)
	})
}
