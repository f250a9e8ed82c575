// Package script runs JavaScript against a page's cookie string, exposing
// document.cookie the way a browser does plus a cookies helper object.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/artpar/crumb/internal/cookie"
	"github.com/dop251/goja"
)

// ConsoleHandler receives console output from scripts.
type ConsoleHandler func(level, message string)

// Engine is one goja runtime bound to a Jar. It is not reentrant: Execute
// calls are serialized.
type Engine struct {
	mu             sync.Mutex
	runtime        *goja.Runtime
	jar            *cookie.Jar
	consoleHandler ConsoleHandler
}

// NewEngine creates a JavaScript engine whose document.cookie and cookies
// globals work on jar. A nil jar leaves both globals out.
func NewEngine(jar *cookie.Jar) *Engine {
	e := &Engine{
		runtime: goja.New(),
		jar:     jar,
	}
	e.runtime.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	e.removeHostGlobals()
	e.setupConsole()
	if jar != nil {
		e.setupDocument()
		e.setupCookies()
	}
	return e
}

func (e *Engine) setupConsole() {
	console := e.runtime.NewObject()

	for _, level := range []string{"log", "debug", "info", "warn", "error"} {
		level := level
		console.Set(level, func(call goja.FunctionCall) goja.Value {
			if e.consoleHandler == nil {
				return goja.Undefined()
			}
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			e.consoleHandler(level, strings.Join(parts, " "))
			return goja.Undefined()
		})
	}

	e.runtime.Set("console", console)
}

// SetConsoleHandler sets the handler for console output.
func (e *Engine) SetConsoleHandler(handler ConsoleHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.consoleHandler = handler
}

// SetGlobal exposes value to scripts under name.
func (e *Engine) SetGlobal(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runtime.Set(name, value)
}

// Execute runs script and returns its completion value exported to Go,
// nil for undefined and null. Cancelling ctx interrupts the script.
func (e *Engine) Execute(ctx context.Context, script string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	program, err := goja.Compile("script", script, true)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}

	e.runtime.ClearInterrupt()
	stop := context.AfterFunc(ctx, func() {
		e.runtime.Interrupt("context cancelled")
	})
	defer stop()

	value, err := e.runtime.RunProgram(program)
	if err != nil {
		var interrupt *goja.InterruptedError
		if errors.As(err, &interrupt) {
			return nil, fmt.Errorf("execution interrupted: %v", interrupt.Value())
		}
		return nil, fmt.Errorf("runtime error: %w", err)
	}

	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}
	return value.Export(), nil
}

// ExecuteWithTimeout is Execute with the script also interrupted after
// timeout. A timeout <= 0 means no limit.
func (e *Engine) ExecuteWithTimeout(ctx context.Context, script string, timeout time.Duration) (interface{}, error) {
	if timeout <= 0 {
		return e.Execute(ctx, script)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return e.Execute(ctx, script)
}
