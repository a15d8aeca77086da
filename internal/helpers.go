package internal

import (
	"strconv"

	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// Scalar lists the types parameters convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// Param returns the named page parameter converted to T, or the zero value
// when it is missing or does not parse.
func Param[T Scalar](params *urls.PageParameters, name string) T {
	v, _ := ParamOK[T](params, name)
	return v
}

// ParamOK is Param reporting whether the parameter was present and valid.
func ParamOK[T Scalar](params *urls.PageParameters, name string) (T, bool) {
	var zero T
	if params == nil {
		return zero, false
	}
	raw, ok := params.Get(name)
	if !ok {
		return zero, false
	}
	return convertParam[T](raw)
}

// ParamDefault returns the named page parameter, or defaultValue if it is
// missing or cannot be parsed.
func ParamDefault[T Scalar](params *urls.PageParameters, name string, defaultValue T) T {
	if v, ok := ParamOK[T](params, name); ok {
		return v
	}
	return defaultValue
}

// FormValue returns a submitted form or query value converted to T.
func FormValue[T Scalar](c component.Cycle, name string) T {
	v, _ := convertParam[T](c.FormValue(name))
	return v
}

// FormValueDefault retrieves a typed form value with a default value.
// Returns defaultValue if the value is empty or cannot be parsed.
func FormValueDefault[T Scalar](c component.Cycle, name string, defaultValue T) T {
	raw := c.FormValue(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// convertParam converts a raw string to the target type T.
// Returns the converted value and true on success, or the zero value and false on failure.
func convertParam[T Scalar](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	}
	return zero, false
}
