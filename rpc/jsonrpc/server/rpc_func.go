package server

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/sophiatx/alexandria/libs/log"
	"github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

// RegisterRPCFuncs adds a URI route for each HTTP function in funcMap and a
// JSON-RPC handler on "/" for all of them. Websocket routes are served by a
// WebsocketManager registered separately.
func RegisterRPCFuncs(mux *http.ServeMux, funcMap map[string]*RPCFunc, logger log.Logger) {
	// HTTP endpoints
	for funcName, rpcFunc := range funcMap {
		if rpcFunc.ws {
			continue
		}
		mux.HandleFunc("/"+funcName, makeHTTPHandler(rpcFunc, logger))
	}

	// JSONRPC endpoints
	mux.HandleFunc("/", handleInvalidJSONRPCPaths(makeJSONRPCHandler(funcMap, logger)))
}

// RPCFunc contains the introspected type information for a function.
type RPCFunc struct {
	f        reflect.Value  // underlying rpc function
	args     []reflect.Type // type of each function arg
	returns  []reflect.Type // type of each return arg
	argNames []string       // name of each argument
	ws       bool           // websocket only
}

// NewRPCFunc wraps a function for introspection.
// f is the function, args are comma separated argument names.
// The first argument of f must be *types.Context and f must return
// (result, error).
func NewRPCFunc(f any, args string) *RPCFunc {
	return newRPCFunc(f, args, false)
}

// NewWSRPCFunc wraps a function for introspection and use in the websockets.
func NewWSRPCFunc(f any, args string) *RPCFunc {
	return newRPCFunc(f, args, true)
}

func newRPCFunc(f any, args string, ws bool) *RPCFunc {
	var argNames []string
	if args != "" {
		argNames = strings.Split(args, ",")
	}

	rf := &RPCFunc{
		f:        reflect.ValueOf(f),
		args:     funcArgTypes(f),
		returns:  funcReturnTypes(f),
		argNames: argNames,
		ws:       ws,
	}
	if err := rf.validate(); err != nil {
		panic(err)
	}
	return rf
}

var (
	contextType = reflect.TypeOf((*types.Context)(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

func (f *RPCFunc) validate() error {
	if f.f.Kind() != reflect.Func {
		return fmt.Errorf("rpc: %v is not a function", f.f.Type())
	}
	if len(f.args) == 0 || f.args[0] != contextType {
		return fmt.Errorf("rpc: first argument of %v must be *types.Context", f.f.Type())
	}
	if len(f.args)-1 != len(f.argNames) {
		return fmt.Errorf("rpc: %v takes %d arguments but %d names were given",
			f.f.Type(), len(f.args)-1, len(f.argNames))
	}
	if len(f.returns) != 2 || f.returns[1] != errorType {
		return fmt.Errorf("rpc: %v must return (result, error)", f.f.Type())
	}
	return nil
}

// ArgNames returns the names of the function's arguments, in order.
func (f *RPCFunc) ArgNames() []string {
	return f.argNames
}

// call invokes the function with ctx followed by args.
func (f *RPCFunc) call(ctx *types.Context, args []reflect.Value) (any, error) {
	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, reflect.ValueOf(ctx))
	in = append(in, args...)
	return unreflectResult(f.f.Call(in))
}

// zeroArgs returns the zero value of every argument after the context.
func (f *RPCFunc) zeroArgs() []reflect.Value {
	values := make([]reflect.Value, len(f.argNames))
	for i := range values {
		values[i] = reflect.Zero(f.args[i+1])
	}
	return values
}

// return a function's argument types.
func funcArgTypes(f any) []reflect.Type {
	t := reflect.TypeOf(f)
	if t == nil || t.Kind() != reflect.Func {
		return nil
	}
	n := t.NumIn()
	typez := make([]reflect.Type, n)
	for i := 0; i < n; i++ {
		typez[i] = t.In(i)
	}
	return typez
}

// return a function's return types.
func funcReturnTypes(f any) []reflect.Type {
	t := reflect.TypeOf(f)
	if t == nil || t.Kind() != reflect.Func {
		return nil
	}
	n := t.NumOut()
	typez := make([]reflect.Type, n)
	for i := 0; i < n; i++ {
		typez[i] = t.Out(i)
	}
	return typez
}

// returns is (result, error) as checked by validate.
func unreflectResult(returns []reflect.Value) (any, error) {
	if err, ok := returns[1].Interface().(error); ok && err != nil {
		return nil, err
	}
	return returns[0].Interface(), nil
}
