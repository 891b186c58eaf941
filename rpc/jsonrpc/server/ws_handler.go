package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sophiatx/alexandria/libs/log"
	"github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

// WebSocket handler

const (
	defaultWSWriteWait = 10 * time.Second
	defaultWSReadLimit = 1 << 20
)

// WebsocketManager provides a WS handler for incoming connections and passes
// a map of functions along with any additional params to new connections.
// The websocket path is chosen by the caller, see node.NewRPCHandler.
type WebsocketManager struct {
	websocket.Upgrader

	funcMap   map[string]*RPCFunc
	logger    log.Logger
	writeWait time.Duration
	readLimit int64
}

// WebsocketManagerOption sets an optional parameter of a WebsocketManager.
type WebsocketManagerOption func(*WebsocketManager)

// WriteWait sets the amount of time to wait before a websocket write times
// out.
func WriteWait(writeWait time.Duration) WebsocketManagerOption {
	return func(wm *WebsocketManager) {
		wm.writeWait = writeWait
	}
}

// ReadLimit sets the maximum size for reading messages from the peer.
func ReadLimit(readLimit int64) WebsocketManagerOption {
	return func(wm *WebsocketManager) {
		wm.readLimit = readLimit
	}
}

// NewWebsocketManager returns a new WebsocketManager that passes a map of
// functions to new connections.
func NewWebsocketManager(funcMap map[string]*RPCFunc, opts ...WebsocketManagerOption) *WebsocketManager {
	wm := &WebsocketManager{
		funcMap: funcMap,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:    log.NewNopLogger(),
		writeWait: defaultWSWriteWait,
		readLimit: defaultWSReadLimit,
	}
	for _, opt := range opts {
		opt(wm)
	}
	return wm
}

// SetLogger sets the logger.
func (wm *WebsocketManager) SetLogger(l log.Logger) {
	wm.logger = l
}

// WebsocketHandler upgrades the request/response (via http.Hijack) and starts
// the wsConnection.
func (wm *WebsocketManager) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	wsConn, err := wm.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an error response.
		wm.logger.Error("Failed to upgrade connection", "err", err)
		return
	}
	defer func() {
		if err := wsConn.Close(); err != nil {
			wm.logger.Debug("Failed to close connection", "err", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	con := &wsConnection{
		remoteAddr: wsConn.RemoteAddr().String(),
		baseConn:   wsConn,
		funcMap:    wm.funcMap,
		writeWait:  wm.writeWait,
		ctx:        ctx,
		logger:     wm.logger.With("remote", wsConn.RemoteAddr()),
	}
	wsConn.SetReadLimit(wm.readLimit)

	con.logger.Info("New websocket connection")
	con.readRoutine()
	con.logger.Info("Websocket connection closed")
}

// wsConnection serves one websocket client. Requests are handled in the
// order they arrive and each gets exactly one response; only readRoutine
// writes to the connection.
type wsConnection struct {
	remoteAddr string
	baseConn   *websocket.Conn
	funcMap    map[string]*RPCFunc
	writeWait  time.Duration
	ctx        context.Context
	logger     log.Logger
}

var _ types.WSRPCConnection = (*wsConnection)(nil)

// GetRemoteAddr returns the remote address of the underlying connection.
func (wsc *wsConnection) GetRemoteAddr() string {
	return wsc.remoteAddr
}

// Context returns the connection's context, canceled when the connection
// closes.
func (wsc *wsConnection) Context() context.Context {
	return wsc.ctx
}

func (wsc *wsConnection) readRoutine() {
	for {
		_, in, err := wsc.baseConn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				wsc.logger.Debug("Client closed the connection")
			} else {
				wsc.logger.Debug("Failed to read request", "err", err)
			}
			return
		}

		var request types.RPCRequest
		if err := json.Unmarshal(in, &request); err != nil {
			if !wsc.writeRPCResponse(types.RPCParseError(fmt.Errorf("error unmarshaling request: %w", err))) {
				return
			}
			continue
		}

		// A Notification is a Request object without an "id" member.
		// The Server MUST NOT reply to a Notification.
		if request.ID == nil {
			wsc.logger.Debug("skipping notification (request without id)", "method", request.Method)
			continue
		}

		if !wsc.writeRPCResponse(wsc.handle(&request)) {
			return
		}
	}
}

// handle runs one request, turning a panic in the route into an internal
// error response.
func (wsc *wsConnection) handle(request *types.RPCRequest) (res types.RPCResponse) {
	defer func() {
		if r := recover(); r != nil {
			wsc.logger.Error("Panic in WSJSONRPC handler", "err", r, "stack", string(debug.Stack()))
			res = types.RPCInternalError(request.ID, fmt.Errorf("panic in handler: %v", r))
		}
	}()
	return handleRequest(wsc.funcMap, &types.Context{JSONReq: request, WSConn: wsc}, true, wsc.logger)
}

// writeRPCResponse reports whether the connection is still usable.
func (wsc *wsConnection) writeRPCResponse(res types.RPCResponse) bool {
	if err := wsc.baseConn.SetWriteDeadline(time.Now().Add(wsc.writeWait)); err != nil {
		wsc.logger.Error("Failed to set write deadline", "err", err)
		return false
	}
	if err := wsc.baseConn.WriteJSON(res); err != nil {
		wsc.logger.Error("Failed to write response", "err", ErrMarshalResponse{Source: err})
		return false
	}
	return true
}
