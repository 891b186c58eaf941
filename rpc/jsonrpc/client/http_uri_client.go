package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

const (
	// URIClientRequestID in a request ID used by URIClient.
	URIClientRequestID = types.JSONRPCIntID(-1)
)

// URIClient is a JSON-RPC client, which sends POST form HTTP requests to the
// remote server.
//
// URIClient is safe for concurrent use by multiple goroutines.
type URIClient struct {
	address string
	client  *http.Client
}

var _ HTTPClient = (*URIClient)(nil)

// NewURI returns a new client.
// An error is returned on invalid remote.
func NewURI(remote string) (*URIClient, error) {
	parsedURL, err := newParsedURL(remote)
	if err != nil {
		return nil, err
	}

	httpClient, err := DefaultHTTPClient(remote)
	if err != nil {
		return nil, err
	}

	parsedURL.SetDefaultSchemeHTTP()

	uriClient := &URIClient{
		address: parsedURL.GetTrimmedURL(),
		client:  httpClient,
	}

	return uriClient, nil
}

// Call issues a POST form HTTP request.
func (c *URIClient) Call(ctx context.Context, method string,
	params map[string]any, result any,
) (any, error) {
	values, err := argsToURLValues(params)
	if err != nil {
		return nil, RequestError{Method: method, Stage: StageEncodeParams, Source: err}
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.address+"/"+method,
		strings.NewReader(values.Encode()),
	)
	if err != nil {
		return nil, RequestError{Method: method, Stage: StageCreate, Source: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, RequestError{Method: method, Stage: StageSend, Source: err}
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, RequestError{Method: method, Stage: StageReadResponse, Source: err}
	}

	return unmarshalResponseBytes(responseBytes, URIClientRequestID, result)
}

// argsToURLValues JSON encodes every param; the server decodes them back
// by argument type.
func argsToURLValues(args map[string]any) (url.Values, error) {
	values := make(url.Values)
	for name, arg := range args {
		bz, err := json.Marshal(arg)
		if err != nil {
			return nil, err
		}
		values.Set(name, string(bz))
	}
	return values, nil
}
