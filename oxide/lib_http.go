package oxide

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type routeEntry struct {
	pattern   string
	segments  []string
	handler   Object
	methodMap *MapObj
	isStatic  bool
	staticDir string
}

var (
	routes   []routeEntry
	routesMu sync.RWMutex
)

func parsePattern(pattern string) []string {
	return strings.Split(strings.Trim(pattern, "/"), "/")
}

func matchRoute(path string) (*routeEntry, *MapObj) {
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	routesMu.RLock()
	defer routesMu.RUnlock()

	// Prioritize static prefix matches.
	for i := range routes {
		route := &routes[i]
		if route.isStatic && strings.HasPrefix(path, route.pattern) {
			return route, nil
		}
	}

	// Then match exact/parameterized routes.
	for i := range routes {
		route := &routes[i]
		if route.isStatic || len(pathParts) != len(route.segments) {
			continue
		}

		params := NewMap()
		matched := true
		for j, seg := range route.segments {
			if strings.HasPrefix(seg, ":") {
				_ = params.Set(StringObj{Value: seg[1:]}, StringObj{Value: pathParts[j]})
			} else if seg != pathParts[j] {
				matched = false
				break
			}
		}
		if matched {
			return route, params
		}
	}
	return nil, nil
}

// newHttpRequestObject builds the object a handler sees as its first
// argument: a plain map of request data plus a bound json() native
// function, mirroring how every other oxide module surfaces methods (see
// ModuleObj.Methods) since oxide has no generic Go-struct wrapper object.
func newHttpRequestObject(r *http.Request, params *MapObj) *MapObj {
	query := NewMap()
	for key, values := range r.URL.Query() {
		_ = query.Set(StringObj{Value: key}, stringOrArray(values))
	}

	headers := NewMap()
	for key, values := range r.Header {
		_ = headers.Set(StringObj{Value: key}, stringOrArray(values))
	}

	cookies := NewMap()
	for _, c := range r.Cookies() {
		_ = cookies.Set(StringObj{Value: c.Name}, StringObj{Value: c.Value})
	}

	var body string
	if r.Body != nil {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			body = string(bodyBytes)
		}
		r.Body.Close()
	}

	if params == nil {
		params = NewMap()
	}

	req := NewMap()
	_ = req.Set(StringObj{Value: "method"}, StringObj{Value: r.Method})
	_ = req.Set(StringObj{Value: "url"}, StringObj{Value: r.URL.Path})
	_ = req.Set(StringObj{Value: "proto"}, StringObj{Value: r.Proto})
	_ = req.Set(StringObj{Value: "host"}, StringObj{Value: r.Host})
	_ = req.Set(StringObj{Value: "query"}, query)
	_ = req.Set(StringObj{Value: "headers"}, headers)
	_ = req.Set(StringObj{Value: "cookies"}, cookies)
	_ = req.Set(StringObj{Value: "params"}, params)
	_ = req.Set(StringObj{Value: "body"}, StringObj{Value: body})

	jsonFn, _ := CreateNativeFunction("json", func() *ResultObject {
		return nativeJsonParse(body)
	}, nil)
	_ = req.Set(StringObj{Value: "json"}, jsonFn)

	return req
}

func stringOrArray(values []string) Object {
	if len(values) == 1 {
		return StringObj{Value: values[0]}
	}
	elements := make([]Object, len(values))
	for i, v := range values {
		elements[i] = StringObj{Value: v}
	}
	return &ArrayObj{Elements: elements}
}

// newHttpResponseObject builds the object a handler sees as its second
// argument: a map of bound native functions closing over w/r and the
// response's own mutable status/written state.
func newHttpResponseObject(w http.ResponseWriter, r *http.Request) *MapObj {
	res := NewMap()
	statusCode := 200
	written := false

	writeHeader := func() {
		if !written {
			w.WriteHeader(statusCode)
			written = true
		}
	}

	statusFn, _ := CreateNativeFunction("status", func(code int) *MapObj {
		statusCode = code
		return res
	}, nil)
	_ = res.Set(StringObj{Value: "status"}, statusFn)

	sendFn, _ := CreateNativeFunction("send", func(val Object) *ResultObject {
		writeHeader()
		if str, ok := val.(StringObj); ok {
			if _, err := fmt.Fprint(w, str.Value); err != nil {
				return ReturnError(err.Error())
			}
			return ReturnOkNull()
		}
		bytes, err := jsonMarshalObject(val)
		if err != nil {
			return ReturnError(err.Error())
		}
		if _, err := w.Write(bytes); err != nil {
			return ReturnError(err.Error())
		}
		return ReturnOkNull()
	}, nil)
	_ = res.Set(StringObj{Value: "send"}, sendFn)

	sendJsonFn, _ := CreateNativeFunction("sendJson", func(val *MapObj) *ResultObject {
		w.Header().Set("Content-Type", "application/json")
		writeHeader()
		bytes, err := jsonMarshalObject(val)
		if err != nil {
			return ReturnError(err.Error())
		}
		if _, err := w.Write(bytes); err != nil {
			return ReturnError(err.Error())
		}
		return ReturnOkNull()
	}, nil)
	_ = res.Set(StringObj{Value: "sendJson"}, sendJsonFn)

	sendFileFn, _ := CreateNativeFunction("sendFile", func(path string) *ResultObject {
		http.ServeFile(w, r, path)
		written = true
		return ReturnOkNull()
	}, nil)
	_ = res.Set(StringObj{Value: "sendFile"}, sendFileFn)

	setHeaderFn, _ := CreateNativeFunction("setHeader", func(key string, val string) {
		w.Header().Set(key, val)
	}, nil)
	_ = res.Set(StringObj{Value: "setHeader"}, setHeaderFn)

	redirectFn, _ := CreateNativeFunction("redirect", func(url string, code int) {
		w.Header().Set("Location", url)
		w.WriteHeader(code)
		written = true
	}, nil)
	_ = res.Set(StringObj{Value: "redirect"}, redirectFn)

	setCookieFn, _ := CreateNativeFunction("setCookie", func(name string, value string, options *MapObj) {
		setHttpCookie(w, name, value, options)
	}, nil)
	_ = res.Set(StringObj{Value: "setCookie"}, setCookieFn)

	return res
}

func jsonMarshalObject(val Object) ([]byte, error) {
	bytes, err := json.Marshal(objectToGoValue(val))
	if err != nil {
		return nil, fmt.Errorf("JSON marshal error: %v", err)
	}
	return bytes, nil
}

func setHttpCookie(w http.ResponseWriter, name, value string, options *MapObj) {
	cookie := &http.Cookie{Name: name, Value: value, Path: "/"}

	if options != nil {
		if maxAge, found, _ := options.Get(StringObj{Value: "maxAge"}); found {
			if n, ok := maxAge.(NumberObj); ok {
				cookie.MaxAge = int(n.Value)
			}
		}
		if path, found, _ := options.Get(StringObj{Value: "path"}); found {
			if s, ok := path.(StringObj); ok {
				cookie.Path = s.Value
			}
		}
		if httpOnly, found, _ := options.Get(StringObj{Value: "httpOnly"}); found {
			if b, ok := httpOnly.(BooleanObj); ok {
				cookie.HttpOnly = b.Value
			}
		}
		if secure, found, _ := options.Get(StringObj{Value: "secure"}); found {
			if b, ok := secure.(BooleanObj); ok {
				cookie.Secure = b.Value
			}
		}
		if sameSite, found, _ := options.Get(StringObj{Value: "sameSite"}); found {
			if s, ok := sameSite.(StringObj); ok {
				switch strings.ToLower(s.Value) {
				case "strict":
					cookie.SameSite = http.SameSiteStrictMode
				case "lax":
					cookie.SameSite = http.SameSiteLaxMode
				case "none":
					cookie.SameSite = http.SameSiteNoneMode
				}
			}
		}
		if expires, found, _ := options.Get(StringObj{Value: "expires"}); found {
			if n, ok := expires.(NumberObj); ok {
				cookie.Expires = time.Unix(int64(n.Value), 0)
			}
		}
	}

	http.SetCookie(w, cookie)
}

func nativeHttpHandle(path string, handlerOrMethods Object) *ResultObject {
	entry := routeEntry{
		pattern:  path,
		segments: parsePattern(path),
	}
	if methodMap, isMap := handlerOrMethods.(*MapObj); isMap {
		entry.methodMap = methodMap
	} else {
		entry.handler = handlerOrMethods
	}

	routesMu.Lock()
	routes = append(routes, entry)
	routesMu.Unlock()

	return ReturnOkNull()
}

func nativeHttpStatic(route string, dir string) *ResultObject {
	routesMu.Lock()
	routes = append(routes, routeEntry{pattern: route, isStatic: true, staticDir: dir})
	routesMu.Unlock()

	return ReturnOkNull()
}

func collectAllowedMethods(methodMap *MapObj) []string {
	var allowed []string
	for _, m := range []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"} {
		if _, found, _ := methodMap.Get(StringObj{Value: m}); found {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

// nativeHttpListen starts the HTTP server and dispatches every matched
// route's handler through vm.CallFunction. The handler stored in
// route.handler/route.methodMap was an ordinary lambda-literal value at
// registration time (http.handle(pattern, fn)), already converted by the
// lambda-lifting pass into an environment-object instance with a run()
// method — by the time httpListen fires, only the VM's generic call
// dispatch (the run()-dispatch fallback described for call sites that
// can't be statically resolved, since the handler was retrieved out of a
// route table rather than called by name) knows how to invoke it.
func nativeHttpListen(vm *VM, addr string) *ResultObject {
	fmt.Printf("Starting oxide HTTP server on %s\n", addr)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, params := matchRoute(r.URL.Path)

		if route != nil && route.isStatic {
			http.StripPrefix(route.pattern, http.FileServer(http.Dir(route.staticDir))).ServeHTTP(w, r)
			return
		}
		if route == nil {
			http.NotFound(w, r)
			return
		}

		var handler Object
		if route.methodMap != nil {
			methodKey := StringObj{Value: strings.ToUpper(r.Method)}
			if h, found, _ := route.methodMap.Get(methodKey); found {
				handler = h
			} else if fallback, found, _ := route.methodMap.Get(StringObj{Value: "_"}); found {
				handler = fallback
			} else {
				allowed := collectAllowedMethods(route.methodMap)
				w.Header().Set("Allow", strings.Join(allowed, ", "))
				http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
				return
			}
		} else {
			handler = route.handler
		}

		reqObj := newHttpRequestObject(r, params)
		resObj := newHttpResponseObject(w, r)

		res, callErr := vm.CallFunction(handler, []Object{reqObj, resObj})
		if callErr != nil {
			fmt.Printf("HTTP handler runtime error: %v\n", callErr)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if result, ok := res.(*ResultObject); ok && result.Error != nil {
			fmt.Printf("HTTP handler logic error: %v\n", result.Error.Message)
			http.Error(w, result.Error.Message, http.StatusInternalServerError)
		}
	})

	if err := http.ListenAndServe(addr, handler); err != nil {
		return ReturnError(fmt.Sprintf("server error: %s", err))
	}
	return ReturnOkNull()
}

func init() {
	BuiltinModules["http"] = map[string]any{
		"handle": nativeHttpHandle,
		"static": nativeHttpStatic,
		"listen": nativeHttpListen,
	}
}
