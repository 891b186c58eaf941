package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cfg "github.com/sophiatx/alexandria/config"
	"github.com/sophiatx/alexandria/engine"
	"github.com/sophiatx/alexandria/libs/log"
	alexsync "github.com/sophiatx/alexandria/libs/sync"
	rpccore "github.com/sophiatx/alexandria/rpc/core"
	rpcserver "github.com/sophiatx/alexandria/rpc/jsonrpc/server"
	"github.com/sophiatx/alexandria/types"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Node is the signing service: an initialized engine exposed over JSON-RPC,
// plus an optional Prometheus endpoint.
type Node struct {
	Logger log.Logger

	config  *cfg.Config
	chainID types.ChainID
	engine  *engine.Engine
	env     *rpccore.Environment

	mtx           alexsync.Mutex
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	rpcListeners  []net.Listener
	prometheusSrv *http.Server
}

// Option sets a parameter for the node.
type Option func(*nodeOptions)

type nodeOptions struct {
	metricsProvider MetricsProvider
}

// WithMetricsProvider overrides the metrics derived from the
// instrumentation config.
func WithMetricsProvider(p MetricsProvider) Option {
	return func(o *nodeOptions) {
		o.metricsProvider = p
	}
}

// NewNode validates config and initializes the engine. Call Start to begin
// serving.
func NewNode(config *cfg.Config, logger log.Logger, options ...Option) (*Node, error) {
	if err := config.ValidateBasic(); err != nil {
		return nil, ErrInvalidConfig{Err: err}
	}
	chainID, err := config.Chain.ParsedChainID()
	if err != nil {
		return nil, ErrInvalidConfig{Err: err}
	}

	opts := nodeOptions{metricsProvider: DefaultMetricsProvider(config.Instrumentation)}
	for _, option := range options {
		option(&opts)
	}

	e, err := createEngine(config, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing engine: %w", err)
	}
	metrics := opts.metricsProvider(chainID.String())

	n := &Node{
		Logger:  logger,
		config:  config,
		chainID: chainID,
		engine:  e,
		env: &rpccore.Environment{
			Engine:  e,
			ChainID: chainID,
			Logger:  logger.With("module", "rpc"),
			Metrics: metrics.RPC,
		},
	}
	logger.Info("Node created",
		"chain_id", chainID, "address_prefix", e.PubKeyPrefix(), "compressed_wif", config.Chain.CompressedWif)
	return n, nil
}

// Start opens the RPC listeners and, if enabled, the Prometheus server.
func (n *Node) Start() error {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if n.cancel != nil {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(context.Background())

	listeners, err := n.startRPC(ctx)
	if err != nil {
		cancel()
		n.wg.Wait()
		return err
	}

	if n.config.Instrumentation.IsPrometheusEnabled() {
		srv, err := n.startPrometheusServer()
		if err != nil {
			cancel()
			n.wg.Wait()
			return err
		}
		n.prometheusSrv = srv
	}

	n.cancel = cancel
	n.rpcListeners = listeners
	return nil
}

// Stop shuts the servers down and waits for in-flight requests.
func (n *Node) Stop() error {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if n.cancel == nil {
		return ErrNotStarted
	}
	n.cancel()
	n.wg.Wait()

	var err error
	if n.prometheusSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err = n.prometheusSrv.Shutdown(ctx); err != nil {
			n.Logger.Error("Prometheus HTTP server Shutdown", "err", err)
		}
		n.prometheusSrv = nil
	}

	n.cancel = nil
	n.rpcListeners = nil
	n.Logger.Info("Node stopped")
	return err
}

func (n *Node) startRPC(ctx context.Context) ([]net.Listener, error) {
	listenAddrs := splitAndTrimEmpty(n.config.RPC.ListenAddress, ",", " ")
	config := rpcServerConfig(n.config.RPC)
	rpcLogger := n.Logger.With("module", "rpc-server")
	handler := NewRPCHandler(n.env, n.config.RPC, rpcLogger)

	// we may expose the rpc over both a unix and tcp socket
	listeners := make([]net.Listener, 0, len(listenAddrs))
	for _, listenAddr := range listenAddrs {
		listener, err := rpcserver.Listen(listenAddr, config.MaxOpenConnections)
		if err != nil {
			return nil, err
		}

		n.wg.Add(1)
		if n.config.RPC.IsTLSEnabled() {
			go func() {
				defer n.wg.Done()
				err := rpcserver.ServeTLS(ctx, listener, handler,
					n.config.RPC.CertFile(), n.config.RPC.KeyFile(), rpcLogger, config)
				if err != nil {
					n.Logger.Error("serving server with TLS", "err", err)
				}
			}()
		} else {
			go func() {
				defer n.wg.Done()
				if err := rpcserver.Serve(ctx, listener, handler, rpcLogger, config); err != nil {
					n.Logger.Error("Error serving server", "err", err)
				}
			}()
		}

		listeners = append(listeners, listener)
	}
	return listeners, nil
}

// startPrometheusServer starts a Prometheus HTTP server, listening for metrics
// collectors on PrometheusListenAddr.
func (n *Node) startPrometheusServer() (*http.Server, error) {
	listener, err := net.Listen("tcp", n.config.Instrumentation.PrometheusListenAddr)
	if err != nil {
		return nil, rpcserver.ErrListening{Addr: n.config.Instrumentation.PrometheusListenAddr, Source: err}
	}
	srv := &http.Server{
		Handler: promhttp.InstrumentMetricHandler(
			prometheus.DefaultRegisterer, promhttp.HandlerFor(
				prometheus.DefaultGatherer,
				promhttp.HandlerOpts{MaxRequestsInFlight: n.config.Instrumentation.MaxOpenConnections},
			),
		),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			// Error starting or closing listener:
			n.Logger.Error("Prometheus HTTP server Serve", "err", err)
		}
	}()
	n.Logger.Info("Serving Prometheus metrics", "addr", listener.Addr())
	return srv, nil
}

// Config returns the node's configuration.
func (n *Node) Config() *cfg.Config {
	return n.config
}

// Engine returns the engine behind the RPC routes.
func (n *Node) Engine() *engine.Engine {
	return n.engine
}

// RPCEnvironment returns the environment behind the RPC routes.
func (n *Node) RPCEnvironment() *rpccore.Environment {
	return n.env
}

// ChainID returns the chain the node produces digests for by default.
func (n *Node) ChainID() types.ChainID {
	return n.chainID
}

// Listeners returns the addresses the RPC server accepts connections on, in
// the form accepted by the RPC clients.
func (n *Node) Listeners() []string {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	addrs := make([]string, 0, len(n.rpcListeners))
	for _, l := range n.rpcListeners {
		addrs = append(addrs, l.Addr().Network()+"://"+l.Addr().String())
	}
	return addrs
}

// IsListening reports whether the node is serving RPC.
func (n *Node) IsListening() bool {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.cancel != nil
}
