package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/sophiatx/alexandria/libs/log"
	"github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

// uriReqID is the id used in responses to URI requests, which carry none.
var uriReqID = types.JSONRPCIntID(-1)

// convert from a function name to the http handler.
func makeHTTPHandler(rpcFunc *RPCFunc, logger log.Logger) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("HTTP URI request", "path", r.URL.Path)

		ctx := &types.Context{HTTPReq: r}
		args, err := httpParamsToArgs(rpcFunc, r)
		if err != nil {
			res := types.RPCInvalidParamsError(uriReqID, fmt.Errorf("error converting http params to arguments: %w", err))
			if wErr := WriteRPCResponseHTTPError(w, http.StatusBadRequest, res); wErr != nil {
				logger.Error("failed to write response", "err", wErr)
			}
			return
		}

		result, err := rpcFunc.call(ctx, args)
		if err != nil {
			if wErr := WriteRPCResponseHTTP(w, types.RPCErrorResponse(uriReqID, err)); wErr != nil {
				logger.Error("failed to write response", "err", wErr)
			}
			return
		}

		if wErr := WriteRPCResponseHTTP(w, types.NewRPCSuccessResponse(uriReqID, result)); wErr != nil {
			logger.Error("failed to write response", "err", wErr)
		}
	}
}

// httpParamsToArgs converts query or form values to typed arguments. Missing
// values keep their zero value.
func httpParamsToArgs(rpcFunc *RPCFunc, r *http.Request) ([]reflect.Value, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	values := rpcFunc.zeroArgs()
	for i, name := range rpcFunc.argNames {
		argType := rpcFunc.args[i+1]

		arg := strings.TrimSpace(r.Form.Get(name))
		if arg == "" {
			continue
		}

		v, ok, err := nonJSONStringToArg(argType, arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if ok {
			values[i] = v
			continue
		}

		val := reflect.New(argType)
		if err := json.Unmarshal([]byte(arg), val.Interface()); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		values[i] = val.Elem()
	}

	return values, nil
}

// nonJSONStringToArg converts the bare (unquoted) forms a browser sends:
// strings, integers, booleans and 0x-prefixed hex for byte slices. ok is
// false when arg must be decoded as JSON instead.
func nonJSONStringToArg(rt reflect.Type, arg string) (reflect.Value, bool, error) {
	if rt.Kind() == reflect.Ptr {
		rv, ok, err := nonJSONStringToArg(rt.Elem(), arg)
		switch {
		case err != nil:
			return reflect.Value{}, false, err
		case ok:
			rv2 := reflect.New(rt.Elem())
			rv2.Elem().Set(rv)
			return rv2, true, nil
		default:
			return reflect.Value{}, false, nil
		}
	}

	isQuoted := len(arg) >= 2 && strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`)
	isHex := strings.HasPrefix(strings.ToLower(arg), "0x")

	switch rt.Kind() {
	case reflect.String:
		if isQuoted {
			return reflect.Value{}, false, nil
		}
		return reflect.ValueOf(arg).Convert(rt), true, nil

	case reflect.Slice:
		if rt.Elem().Kind() != reflect.Uint8 || !isHex {
			return reflect.Value{}, false, nil
		}
		b, err := hex.DecodeString(arg[2:])
		if err != nil {
			return reflect.Value{}, false, err
		}
		return reflect.ValueOf(b).Convert(rt), true, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if isQuoted {
			arg = arg[1 : len(arg)-1]
		}
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return reflect.ValueOf(n).Convert(rt), true, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if isQuoted {
			arg = arg[1 : len(arg)-1]
		}
		n, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return reflect.ValueOf(n).Convert(rt), true, nil

	case reflect.Bool:
		b, err := strconv.ParseBool(arg)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return reflect.ValueOf(b).Convert(rt), true, nil
	}

	return reflect.Value{}, false, nil
}
