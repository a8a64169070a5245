package argparse

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the type a raw argument token is converted to.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDuration:
		return "duration"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Convert parses raw according to the kind.
func (k Kind) Convert(raw string) (any, error) {
	switch k {
	case KindString:
		return raw, nil
	case KindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid int value: %q", raw)
		}
		return v, nil
	case KindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float value: %q", raw)
		}
		return v, nil
	case KindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bool value: %q", raw)
		}
		return v, nil
	case KindDuration:
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration value: %q", raw)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", k)
	}
}

// Define registers a flag of this kind in fset under name, with def parsed as its default value.
// An empty def means the zero value. It returns the registered value so the caller can register
// aliases for it.
func (k Kind) Define(fset *flag.FlagSet, name, def, usage string) (flag.Value, error) {
	v := k.zero()
	if def != "" {
		parsed, err := k.Convert(def)
		if err != nil {
			return nil, fmt.Errorf("default for flag %q: %w", name, err)
		}
		v = parsed
	}
	switch k {
	case KindString:
		fset.String(name, v.(string), usage)
	case KindInt:
		fset.Int(name, v.(int), usage)
	case KindFloat:
		fset.Float64(name, v.(float64), usage)
	case KindBool:
		fset.Bool(name, v.(bool), usage)
	case KindDuration:
		fset.Duration(name, v.(time.Duration), usage)
	default:
		return nil, fmt.Errorf("flag %q: unsupported kind %s", name, k)
	}
	return fset.Lookup(name).Value, nil
}

func (k Kind) zero() any {
	switch k {
	case KindInt:
		return 0
	case KindFloat:
		return float64(0)
	case KindBool:
		return false
	case KindDuration:
		return time.Duration(0)
	default:
		return ""
	}
}

// StringSlice is a [flag.Value] that collects every occurrence of a repeated flag.
type StringSlice []string

func (s *StringSlice) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *StringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func (s *StringSlice) Get() any {
	return []string(*s)
}
