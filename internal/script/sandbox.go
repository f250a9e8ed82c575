package script

import (
	"github.com/dop251/goja"
)

// hostGlobals are the server-side globals a page script has no business
// with.
var hostGlobals = []string{
	"require",
	"process",
	"global",
	"__dirname",
	"__filename",
	"module",
	"exports",
	"Buffer",
}

func (e *Engine) removeHostGlobals() {
	for _, name := range hostGlobals {
		e.runtime.Set(name, goja.Undefined())
	}
}

// DisableEval makes eval and the Function constructor throw, so a script
// runs only the code it was given.
func (e *Engine) DisableEval() {
	e.mu.Lock()
	defer e.mu.Unlock()

	rt := e.runtime
	disabled := func(msg string) func(goja.FunctionCall) goja.Value {
		return func(goja.FunctionCall) goja.Value {
			panic(rt.NewTypeError(msg))
		}
	}
	rt.Set("eval", disabled("eval is disabled"))
	rt.Set("Function", disabled("Function constructor is disabled"))
}
