package sandbox

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// childState is the per-execute scratch reset before each run.
type childState struct {
	req        *execRequest
	stdout     strings.Builder
	done       bool
	doneAnswer *string
	subCalls   int
}

func (c *childState) reset(req *execRequest) {
	c.req = req
	c.stdout.Reset()
	c.done = false
	c.doneAnswer = nil
	c.subCalls = 0
}

// runChild owns the interpreter. It binds the API, signals ready, then
// serves execute messages until Terminate closes the quit channel.
func (s *Sandbox) runChild() {
	rt := goja.New()
	s.rt.Store(rt)

	state := &childState{}
	s.bindAPI(rt, state)
	close(s.ready)

	for {
		select {
		case <-s.quit:
			return
		case req := <-s.execCh:
			state.reset(req)
			rt.ClearInterrupt()
			out := s.executeCode(rt, state, req.code)
			// Buffered; a timed-out execute simply drops its late result.
			select {
			case req.result <- out:
			default:
			}
		}
	}
}

// executeCode compiles the fragment as the body of an async function and
// runs it to settlement. goja drains the microtask queue before RunString
// returns, and every await in the API resolves synchronously from the
// interpreter's point of view, so a settled promise is the normal case.
func (s *Sandbox) executeCode(rt *goja.Runtime, state *childState, code string) *Output {
	out := &Output{}

	value, err := rt.RunString("(async () => {\n" + code + "\n})()")
	switch {
	case err != nil:
		out.Error = childErrorString(err)
	default:
		if p, ok := value.Export().(*goja.Promise); ok {
			switch p.State() {
			case goja.PromiseStateFulfilled:
				out.ReturnValue = stringifyResult(p.Result())
			case goja.PromiseStateRejected:
				out.Error = valueString(p.Result())
			default:
				out.Error = "execution did not settle"
			}
		} else {
			out.ReturnValue = stringifyResult(value)
		}
	}

	out.Stdout = state.stdout.String()
	out.Done = state.done
	out.DoneAnswer = state.doneAnswer
	out.SubCalls = state.subCalls
	return out
}

// bindAPI installs the documented names on the global scope. Globals the
// fragment assigns (globalThis.x = …) persist for the sandbox's lifetime.
func (s *Sandbox) bindAPI(rt *goja.Runtime, state *childState) {
	mustSet := func(name string, v any) {
		if err := rt.Set(name, v); err != nil {
			panic(fmt.Sprintf("binding %s: %v", name, err))
		}
	}

	// Read-only environment data, passed as plain objects.
	mustSet("index", jsData(rt, s.env.Index))
	mustSet("workingMemory", jsData(rt, s.env.WorkingMemory))
	mustSet("scopeKeys", jsData(rt, s.env.ScopeKeys))

	mustSet("query", func(call goja.FunctionCall) goja.Value {
		q := exportQuery(call.Argument(0))
		if s.env.Index == nil {
			return jsData(rt, []any{})
		}
		return jsData(rt, s.env.Index.Search(q))
	})

	mustSet("callLlm", func(call goja.FunctionCall) goja.Value {
		state.subCalls++
		msgs := exportMessages(call.Argument(0))
		promise, resolve, reject := rt.NewPromise()
		value, err := s.postRequest(state.req, &hostRequest{kind: kindLLM, messages: msgs})
		if err != nil {
			reject(rt.ToValue(err.Error()))
		} else {
			resolve(rt.ToValue(value))
		}
		return rt.ToValue(promise)
	})

	mustSet("gitLog", func(call goja.FunctionCall) goja.Value {
		args := exportStrings(call.Argument(0))
		promise, resolve, reject := rt.NewPromise()
		value, err := s.postRequest(state.req, &hostRequest{kind: kindGitLog, args: args})
		if err != nil {
			reject(rt.ToValue(err.Error()))
		} else {
			resolve(rt.ToValue(value))
		}
		return rt.ToValue(promise)
	})

	mustSet("done", func(call goja.FunctionCall) goja.Value {
		state.done = true
		if arg := call.Argument(0); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
			answer := valueString(arg)
			state.doneAnswer = &answer
		}
		return goja.Undefined()
	})

	console := rt.NewObject()
	if err := console.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, stringifyResult(arg))
		}
		state.stdout.WriteString(strings.Join(parts, " ") + "\n")
		return goja.Undefined()
	}); err != nil {
		panic(fmt.Sprintf("binding console.log: %v", err))
	}
	mustSet("console", console)
}

// jsData converts a Go value into a plain JS object tree through a JSON
// round trip, so the child sees data, not wrapped host objects.
func jsData(rt *goja.Runtime, v any) goja.Value {
	if v == nil {
		return goja.Null()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return goja.Null()
	}
	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return goja.Null()
	}
	if plain == nil {
		return goja.Null()
	}
	return rt.ToValue(plain)
}

func childErrorString(err error) string {
	var ex *goja.Exception
	if ok := asException(err, &ex); ok {
		return valueString(ex.Value())
	}
	return err.Error()
}

func asException(err error, target **goja.Exception) bool {
	ex, ok := err.(*goja.Exception) //nolint:errorlint // goja exceptions are not wrapped
	if ok {
		*target = ex
	}
	return ok
}

func valueString(v goja.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// stringifyResult renders a JS value for the result message: strings pass
// through, everything else is JSON when possible.
func stringifyResult(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return ""
	}
	if goja.IsNull(v) {
		return "null"
	}
	exported := v.Export()
	switch val := exported.(type) {
	case string:
		return val
	default:
		if data, err := json.Marshal(exported); err == nil {
			return string(data)
		}
		return v.String()
	}
}
