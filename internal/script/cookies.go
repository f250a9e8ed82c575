package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/artpar/crumb/internal/cookie"
	"github.com/artpar/crumb/internal/duration"
	"github.com/dop251/goja"
)

// setupDocument defines document.cookie as an accessor over the jar's
// ambient string: reads return every pair, assignments write one cookie.
func (e *Engine) setupDocument() {
	rt := e.runtime
	ambient := e.jar.Ambient()

	getter := rt.ToValue(func(goja.FunctionCall) goja.Value {
		return rt.ToValue(ambient.Read())
	})
	setter := rt.ToValue(func(call goja.FunctionCall) goja.Value {
		ambient.Write(call.Argument(0).String())
		return goja.Undefined()
	})

	doc := rt.NewObject()
	if err := doc.DefineAccessorProperty("cookie", getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		panic(err)
	}
	rt.Set("document", doc)
}

// setupCookies installs the cookies object:
//
//	cookies.store({name, value, path, duration, secure, domain, sameSite})
//	cookies.load(name[, cast])
//	cookies.exists(name)
//	cookies.delete(name[, {path, domain}])
//	cookies.all()
func (e *Engine) setupCookies() {
	rt := e.runtime
	jar := e.jar
	obj := rt.NewObject()

	obj.Set("store", func(call goja.FunctionCall) goja.Value {
		opts, err := optionsFromJS(call.Argument(0))
		if err != nil {
			panic(rt.NewTypeError(err.Error()))
		}
		jar.Store(opts)
		return goja.Undefined()
	})

	obj.Set("load", func(call goja.FunctionCall) goja.Value {
		value, ok := jar.Load(call.Argument(0).String())
		if !ok {
			return goja.Undefined()
		}
		cast, isFunc := goja.AssertFunction(call.Argument(1))
		if !isFunc {
			return rt.ToValue(value)
		}
		result, err := cast(goja.Undefined(), rt.ToValue(value))
		if err != nil {
			var ex *goja.Exception
			if errors.As(err, &ex) {
				panic(ex.Value())
			}
			panic(rt.NewGoError(err))
		}
		return result
	})

	obj.Set("exists", func(call goja.FunctionCall) goja.Value {
		return rt.ToValue(jar.Exists(call.Argument(0).String()))
	})

	obj.Set("delete", func(call goja.FunctionCall) goja.Value {
		opts := cookie.Options{Name: call.Argument(0).String()}
		if scope, ok := call.Argument(1).(*goja.Object); ok {
			opts.Path = stringField(scope, "path")
			opts.Domain = stringField(scope, "domain")
		}
		jar.DeleteScoped(opts)
		return goja.Undefined()
	})

	obj.Set("all", func(goja.FunctionCall) goja.Value {
		records := jar.All()
		out := make([]interface{}, 0, len(records))
		for _, r := range records {
			out = append(out, map[string]interface{}{
				"name":  r.Name,
				"value": r.Value,
			})
		}
		return rt.ToValue(out)
	})

	rt.Set("cookies", obj)
}

// optionsFromJS converts a JS options object into cookie.Options. Fields
// convert the way JS would (String(value), Boolean(secure)). duration is
// either "session" or {milliseconds, seconds, minutes, hours, days}.
func optionsFromJS(v goja.Value) (cookie.Options, error) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return cookie.Options{}, errors.New("cookie options must be an object")
	}

	opts := cookie.Options{
		Name:   stringField(obj, "name"),
		Value:  stringField(obj, "value"),
		Path:   stringField(obj, "path"),
		Domain: stringField(obj, "domain"),
	}
	if opts.Name == "" {
		return cookie.Options{}, errors.New("cookie name is required")
	}
	if secure := obj.Get("secure"); present(secure) {
		opts.Secure = secure.ToBoolean()
	}

	sameSite, err := cookie.ParseSameSite(stringField(obj, "sameSite"))
	if err != nil {
		return cookie.Options{}, err
	}
	opts.SameSite = sameSite

	d := obj.Get("duration")
	_, isString := d.Export().(string)
	switch {
	case !present(d):
	case isString:
		if !strings.EqualFold(d.String(), "session") {
			return cookie.Options{}, fmt.Errorf("unknown duration %q", d.String())
		}
	default:
		spec, ok := d.(*goja.Object)
		if !ok {
			return cookie.Options{}, fmt.Errorf("duration must be 'session' or an object, got %s", d.String())
		}
		opts.Duration = &duration.Spec{
			Milliseconds: floatField(spec, "milliseconds"),
			Seconds:      floatField(spec, "seconds"),
			Minutes:      floatField(spec, "minutes"),
			Hours:        floatField(spec, "hours"),
			Days:         floatField(spec, "days"),
		}
	}

	return opts, nil
}

func present(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}

// stringField is String(obj[key]), or "" when the field is missing.
func stringField(obj *goja.Object, key string) string {
	if v := obj.Get(key); present(v) {
		return v.String()
	}
	return ""
}

// floatField is Number(obj[key]), or 0 when the field is missing.
func floatField(obj *goja.Object, key string) float64 {
	if v := obj.Get(key); present(v) {
		return v.ToFloat()
	}
	return 0
}
