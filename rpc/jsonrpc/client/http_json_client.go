package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	alexsync "github.com/sophiatx/alexandria/libs/sync"
	"github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

const (
	protoHTTP  = "http"
	protoHTTPS = "https"
	protoTCP   = "tcp"
	protoUNIX  = "unix"
)

// Parsed URL structure.
type parsedURL struct {
	url.URL

	isUnixSocket bool
}

// Parse URL and set defaults.
func newParsedURL(remoteAddr string) (*parsedURL, error) {
	u, err := url.Parse(remoteAddr)
	if err != nil {
		return nil, ErrInvalidAddress{Addr: remoteAddr, Source: err}
	}

	// default to tcp if nothing specified
	if u.Scheme == "" {
		u.Scheme = protoTCP
	}

	pu := &parsedURL{
		URL:          *u,
		isUnixSocket: false,
	}

	if u.Scheme == protoUNIX {
		pu.isUnixSocket = true
	}

	return pu, nil
}

// Change protocol to HTTP for unknown protocols and TCP protocol - useful for RPC connections.
func (u *parsedURL) SetDefaultSchemeHTTP() {
	// protocol to use for http operations, to support both http and https
	switch u.Scheme {
	case protoHTTP, protoHTTPS:
		// known protocols not changed
	default:
		// default to http for unknown protocols (ex. tcp)
		u.Scheme = protoHTTP
	}
}

// GetTrimmedURL returns the URL to send requests to. Unix sockets get a
// placeholder host; the transport dials the socket regardless.
func (u parsedURL) GetTrimmedURL() string {
	if u.isUnixSocket {
		return protoHTTP + "://unix"
	}
	return strings.TrimSuffix(u.Scheme+"://"+u.Host+u.Path, "/")
}

// socketPath is the filesystem path of a unix:// address.
func (u parsedURL) socketPath() string {
	return u.Host + u.Path
}

//-------------------------------------------------------------

// HTTPClient is a common interface for JSON-RPC HTTP clients.
type HTTPClient interface {
	// Call calls the given method with the params and returns a result.
	Call(ctx context.Context, method string, params map[string]any, result any) (any, error)
}

// Client is a JSON-RPC client, which sends POST HTTP requests to the
// remote server.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	address string
	client  *http.Client

	mtx       alexsync.Mutex
	nextReqID int
}

var _ HTTPClient = (*Client)(nil)

// New returns a Client. remote may be tcp://, unix://, http:// or https://.
// An error is returned on invalid remote.
func New(remote string) (*Client, error) {
	httpClient, err := DefaultHTTPClient(remote)
	if err != nil {
		return nil, err
	}
	return NewWithHTTPClient(remote, httpClient)
}

// NewWithHTTPClient returns a Client using the given http.Client.
func NewWithHTTPClient(remote string, c *http.Client) (*Client, error) {
	if c == nil {
		panic("nil http.Client provided")
	}

	parsedURL, err := newParsedURL(remote)
	if err != nil {
		return nil, err
	}
	parsedURL.SetDefaultSchemeHTTP()

	return &Client{
		address: parsedURL.GetTrimmedURL(),
		client:  c,
	}, nil
}

// Call issues a POST HTTP request. Requests are JSON encoded. Responses are
// decoded into result. An error returned by the remote method is a
// *types.RPCError.
func (c *Client) Call(ctx context.Context, method string, params map[string]any, result any) (any, error) {
	id := c.nextRequestID()

	request, err := types.MapToRequest(id, method, params)
	if err != nil {
		return nil, RequestError{Method: method, Stage: StageEncodeParams, Source: err}
	}

	requestBytes, err := json.Marshal(request)
	if err != nil {
		return nil, RequestError{Method: method, Stage: StageMarshal, Source: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.address, bytes.NewReader(requestBytes))
	if err != nil {
		return nil, RequestError{Method: method, Stage: StageCreate, Source: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, RequestError{Method: method, Stage: StageSend, Source: err}
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, RequestError{Method: method, Stage: StageReadResponse, Source: err}
	}

	return unmarshalResponseBytes(responseBytes, id, result)
}

func (c *Client) nextRequestID() types.JSONRPCIntID {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.nextReqID++
	return types.JSONRPCIntID(c.nextReqID)
}

// DefaultHTTPClient is used to create an http client with some default
// parameters. We overwrite the http.Client.Dial so we can do http over tcp or
// unix. remoteAddr should be fully featured (eg. with tcp:// or unix://).
func DefaultHTTPClient(remoteAddr string) (*http.Client, error) {
	u, err := newParsedURL(remoteAddr)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		// Set to true to prevent GZIP-bomb DoS attacks
		DisableCompression: true,
	}
	if u.isUnixSocket {
		path := u.socketPath()
		transport.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, protoUNIX, path)
		}
	}

	return &http.Client{Transport: transport}, nil
}

func unmarshalResponseBytes(responseBytes []byte, expectedID types.JSONRPCIntID, result any) (any, error) {
	var response types.RPCResponse
	if err := json.Unmarshal(responseBytes, &response); err != nil {
		return nil, RequestError{Stage: StageDecodeReply, Source: err}
	}

	if response.Error != nil {
		return nil, response.Error
	}

	if err := validateResponseID(response.ID, expectedID); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(response.Result, result); err != nil {
		return nil, RequestError{Stage: StageDecodeResult, Source: err}
	}

	return result, nil
}

func validateResponseID(id any, expectedID types.JSONRPCIntID) error {
	if id == nil {
		return errors.New("missing response ID")
	}
	got, ok := id.(types.JSONRPCIntID)
	if !ok || got != expectedID {
		return ErrResponseIDMismatch{Expected: expectedID.String(), Got: fmt.Sprintf("%v", id)}
	}
	return nil
}
