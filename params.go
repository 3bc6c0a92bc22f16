package live

import (
	"net/http"
	"strconv"
)

// Params event params.
type Params map[string]any

// Has reports whether the key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String helper to get a string from the params.
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	out, ok := v.(string)
	if !ok {
		return ""
	}
	return out
}

// Float64 helper to return a float64 from the params. Values that cannot be
// read as a number give 0 and false.
func (p Params) Float64(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch out := v.(type) {
	case int:
		return float64(out), true
	case float32:
		return float64(out), true
	case float64:
		return out, true
	case string:
		f, err := strconv.ParseFloat(out, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// NewParamsFromRequest helper to generate Params from an http request.
func NewParamsFromRequest(r *http.Request) Params {
	out := Params{}
	values := r.URL.Query()
	for k, v := range values {
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	return out
}
