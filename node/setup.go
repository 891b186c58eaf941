package node

import (
	"net/http"
	"strings"

	"github.com/rs/cors"

	cfg "github.com/sophiatx/alexandria/config"
	"github.com/sophiatx/alexandria/engine"
	"github.com/sophiatx/alexandria/libs/log"
	rpccore "github.com/sophiatx/alexandria/rpc/core"
	rpcserver "github.com/sophiatx/alexandria/rpc/jsonrpc/server"
)

// Provider takes a config and a logger and returns a ready to go Node.
type Provider func(*cfg.Config, log.Logger) (*Node, error)

// DefaultNewNode returns an Alexandria node with default settings for the
// metrics provider. It implements Provider.
func DefaultNewNode(config *cfg.Config, logger log.Logger) (*Node, error) {
	return NewNode(config, logger)
}

func createEngine(config *cfg.Config, logger log.Logger) (*engine.Engine, error) {
	e := engine.New(
		engine.WithLogger(logger.With("module", "engine")),
		engine.WithPubKeyPrefix(config.Chain.AddressPrefix),
		engine.WithCompressedWif(config.Chain.CompressedWif),
	)
	if err := e.Init(); err != nil {
		return nil, err
	}
	return e, nil
}

func rpcServerConfig(config *cfg.RPCConfig) *rpcserver.Config {
	c := rpcserver.DefaultConfig()
	c.MaxOpenConnections = config.MaxOpenConnections
	c.MaxBodyBytes = config.MaxBodyBytes
	c.MaxHeaderBytes = config.MaxHeaderBytes
	c.MaxRequestBatchSize = config.MaxRequestBatchSize
	c.ReadTimeout = config.ReadTimeout
	c.WriteTimeout = config.WriteTimeout
	return c
}

// NewRPCHandler serves the routes of env over JSON-RPC, URI requests and
// websockets on /websocket. CORS headers are added when config allows any
// origin.
func NewRPCHandler(env *rpccore.Environment, config *cfg.RPCConfig, logger log.Logger) http.Handler {
	routes := env.GetRoutes()

	mux := http.NewServeMux()
	wm := rpcserver.NewWebsocketManager(routes, rpcserver.ReadLimit(config.MaxBodyBytes))
	wm.SetLogger(logger.With("protocol", "websocket"))
	mux.HandleFunc("/websocket", wm.WebsocketHandler)
	rpcserver.RegisterRPCFuncs(mux, routes, logger)

	if !config.IsCorsEnabled() {
		return mux
	}
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: config.CORSAllowedOrigins,
		AllowedMethods: config.CORSAllowedMethods,
		AllowedHeaders: config.CORSAllowedHeaders,
	})
	return corsMiddleware.Handler(mux)
}

// splitAndTrimEmpty slices s into all subslices separated by sep and returns
// a slice of the string s with all leading and trailing Unicode code points
// contained in cutset removed. Empty subslices are dropped.
func splitAndTrimEmpty(s, sep, cutset string) []string {
	if s == "" {
		return []string{}
	}

	spl := strings.Split(s, sep)
	nonEmptyStrings := make([]string, 0, len(spl))
	for i := 0; i < len(spl); i++ {
		element := strings.Trim(spl[i], cutset)
		if element != "" {
			nonEmptyStrings = append(nonEmptyStrings, element)
		}
	}
	return nonEmptyStrings
}
