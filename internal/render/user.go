package render

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// User writes v as indented "key: value" lines. Keys are styled when w is a color terminal.
func User(w io.Writer, v any) error {
	r := lipgloss.NewRenderer(w)
	p := &printer{
		key:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		bullet: r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
	p.value(v, 0)
	_, err := io.WriteString(w, p.b.String())
	return err
}

type printer struct {
	b      strings.Builder
	key    lipgloss.Style
	bullet lipgloss.Style
}

func (p *printer) value(v any, depth int) {
	indent := strings.Repeat("  ", depth)
	rv := reflect.ValueOf(v)
	switch {
	case v == nil:
		return
	case rv.Kind() == reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		for _, k := range keys {
			label := p.key.Render(fmt.Sprint(k.Interface()) + ":")
			elem := rv.MapIndex(k).Interface()
			if nested(elem) {
				p.b.WriteString(indent + label + "\n")
				p.value(elem, depth+1)
				continue
			}
			p.b.WriteString(indent + label + " " + scalar(elem) + "\n")
		}
	case (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8:
		for i := range rv.Len() {
			elem := rv.Index(i).Interface()
			dash := p.bullet.Render("-")
			if nested(elem) {
				p.b.WriteString(indent + dash + "\n")
				p.value(elem, depth+1)
				continue
			}
			p.b.WriteString(indent + dash + " " + scalar(elem) + "\n")
		}
	default:
		p.b.WriteString(indent + scalar(v) + "\n")
	}
}

func nested(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map:
		return true
	case reflect.Slice, reflect.Array:
		return reflect.TypeOf(v).Elem().Kind() != reflect.Uint8
	}
	return false
}

func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
