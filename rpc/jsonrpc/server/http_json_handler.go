package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"reflect"
	"sort"

	"github.com/sophiatx/alexandria/libs/log"
	"github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

// HTTP + JSON handler

// jsonrpc calls grab the given method's function info and runs reflect.Call.
func makeJSONRPCHandler(funcMap map[string]*RPCFunc, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			res := types.RPCInvalidRequestError(nil, fmt.Errorf("error reading request body: %w", err))
			if wErr := WriteRPCResponseHTTPError(w, http.StatusBadRequest, res); wErr != nil {
				logger.Error("failed to write response", "err", wErr)
			}
			return
		}

		// if its an empty request (like from a browser), just display a list of
		// functions
		if len(bytes.TrimSpace(b)) == 0 {
			writeListOfEndpoints(w, r, funcMap)
			return
		}

		// first try to unmarshal the incoming request as an array of RPC requests
		var (
			requests []types.RPCRequest
			batch    bool
		)
		if b = bytes.TrimSpace(b); b[0] == '[' {
			batch = true
			err = json.Unmarshal(b, &requests)
		} else {
			var request types.RPCRequest
			err = json.Unmarshal(b, &request)
			requests = []types.RPCRequest{request}
		}
		if err != nil {
			res := types.RPCParseError(fmt.Errorf("error unmarshaling request: %w", err))
			if wErr := WriteRPCResponseHTTPError(w, http.StatusBadRequest, res); wErr != nil {
				logger.Error("failed to write response", "err", wErr)
			}
			return
		}

		responses := make([]types.RPCResponse, 0, len(requests))
		for i := range requests {
			request := requests[i]

			// A Notification is a Request object without an "id" member.
			// The Server MUST NOT reply to a Notification, including those that are within a batch request.
			if request.ID == nil {
				logger.Debug("skipping notification (request without id)", "method", request.Method)
				continue
			}
			responses = append(responses, handleRequest(funcMap, &types.Context{JSONReq: &request, HTTPReq: r}, false, logger))
		}

		if len(responses) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		var v any = responses[0]
		if batch {
			v = responses
		}
		if wErr := writeRPCResponseHTTP(w, v); wErr != nil {
			logger.Error("failed to write responses", "err", wErr)
		}
	}
}

// handleRequest resolves and runs a single request. ws selects which routes
// are visible: websocket-only routes are hidden from HTTP callers.
func handleRequest(funcMap map[string]*RPCFunc, ctx *types.Context, ws bool, logger log.Logger) types.RPCResponse {
	request := ctx.JSONReq
	rpcFunc, ok := funcMap[request.Method]
	if !ok || (rpcFunc.ws && !ws) {
		return types.RPCMethodNotFoundError(request.ID)
	}

	args, err := jsonParamsToArgs(rpcFunc, request.Params)
	if err != nil {
		return types.RPCInvalidParamsError(request.ID, fmt.Errorf("error converting json params to arguments: %w", err))
	}

	result, err := rpcFunc.call(ctx, args)
	if err != nil {
		logger.Debug("rpc call failed", "method", request.Method, "err", err)
		return types.RPCErrorResponse(request.ID, err)
	}
	return types.NewRPCSuccessResponse(request.ID, result)
}

func handleInvalidJSONRPCPaths(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Since the pattern "/" matches all paths not matched by other registered patterns,
		// we check whether the path is indeed "/", otherwise return a 404 error
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		next(w, r)
	}
}

func mapParamsToArgs(
	rpcFunc *RPCFunc,
	params map[string]json.RawMessage,
	argsOffset int,
) ([]reflect.Value, error) {
	values := make([]reflect.Value, len(rpcFunc.argNames))
	for i, argName := range rpcFunc.argNames {
		argType := rpcFunc.args[i+argsOffset]

		if p, ok := params[argName]; ok && p != nil && len(p) > 0 {
			val := reflect.New(argType)
			err := json.Unmarshal(p, val.Interface())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", argName, err)
			}
			values[i] = val.Elem()
		} else { // use default for that type
			values[i] = reflect.Zero(argType)
		}
	}

	return values, nil
}

func arrayParamsToArgs(
	rpcFunc *RPCFunc,
	params []json.RawMessage,
	argsOffset int,
) ([]reflect.Value, error) {
	if len(rpcFunc.argNames) != len(params) {
		return nil, fmt.Errorf("expected %v parameters (%v), got %v (%v)",
			len(rpcFunc.argNames), rpcFunc.argNames, len(params), params)
	}

	values := make([]reflect.Value, len(params))
	for i, p := range params {
		argType := rpcFunc.args[i+argsOffset]
		val := reflect.New(argType)
		err := json.Unmarshal(p, val.Interface())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rpcFunc.argNames[i], err)
		}
		values[i] = val.Elem()
	}
	return values, nil
}

// raw is unparsed json (from json.RawMessage) encoding either a map or an
// array.
//
// Example:
//
//	rpcFunc.args = [rpctypes.Context string]
//	rpcFunc.argNames = ["arg"]
func jsonParamsToArgs(rpcFunc *RPCFunc, raw []byte) ([]reflect.Value, error) {
	const argsOffset = 1

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return rpcFunc.zeroArgs(), nil
	}

	switch raw[0] {
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return mapParamsToArgs(rpcFunc, m, argsOffset)
	case '[':
		var a []json.RawMessage
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		return arrayParamsToArgs(rpcFunc, a, argsOffset)
	}
	return nil, errors.New("unknown type for JSON params: must be an object or an array")
}

var endpointsTemplate = template.Must(template.New("endpoints").Parse(`<html><body>
<br>Available endpoints:<br>
{{range .}}<a href="//{{.Host}}/{{.Name}}">//{{.Host}}/{{.Name}}{{if .Args}}?{{.Args}}{{end}}</a></br>
{{end}}</body></html>`))

type endpoint struct {
	Host string
	Name string
	Args template.URL
}

// writes a list of available rpc endpoints as an html page.
func writeListOfEndpoints(w http.ResponseWriter, r *http.Request, funcMap map[string]*RPCFunc) {
	names := make([]string, 0, len(funcMap))
	for name, rf := range funcMap {
		if rf.ws {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	endpoints := make([]endpoint, 0, len(names))
	for _, name := range names {
		var args template.URL
		for i, argName := range funcMap[name].argNames {
			if i > 0 {
				args += "&"
			}
			args += template.URL(argName + "=_")
		}
		endpoints = append(endpoints, endpoint{Host: r.Host, Name: name, Args: args})
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_ = endpointsTemplate.Execute(w, endpoints)
}
