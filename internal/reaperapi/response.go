// Package reaperapi decodes the tab-separated text replies produced by the
// REAPER web remote interface. Each reply shape is a struct whose fields are
// bound to positional columns through `field:"N"` tags, so callers address
// columns by name instead of by index.
package reaperapi

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const (
	// KindExtState is the first column of a GET/EXTSTATE reply.
	KindExtState = "EXTSTATE"
	// KindTransport is the first column of a TRANSPORT reply.
	KindTransport = "TRANSPORT"
)

// ErrUnexpectedKind is returned when a reply line has a different shape than
// the one requested.
var ErrUnexpectedKind = errors.New("reaperapi: unexpected reply kind")

// ExtState is the reply to GET/EXTSTATE/{section}/{key}.
type ExtState struct {
	Kind    string `field:"0"`
	Section string `field:"1"`
	Key     string `field:"2"`
	Value   string `field:"3,escaped"`
}

// Transport is the reply to TRANSPORT.
type Transport struct {
	Kind           string  `field:"0"`
	PlayState      int     `field:"1"`
	Position       float64 `field:"2"`
	Repeat         bool    `field:"3"`
	PositionString string  `field:"4"`
	PositionBeats  string  `field:"5"`
}

// Lines splits a reply body into its non-blank lines.
func Lines(body string) []string {
	raw := strings.Split(body, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// ParseExtState decodes the first line of a GET/EXTSTATE reply. An empty body
// yields a zero ExtState, which callers treat as an absent value.
func ParseExtState(body string) (ExtState, error) {
	var st ExtState
	lines := Lines(body)
	if len(lines) == 0 {
		return st, nil
	}
	if err := Decode(lines[0], &st); err != nil {
		return ExtState{}, err
	}
	if st.Kind != KindExtState {
		return ExtState{}, fmt.Errorf("%w: want %s, got %q", ErrUnexpectedKind, KindExtState, st.Kind)
	}
	return st, nil
}

// ParseTransport decodes the first line of a TRANSPORT reply.
func ParseTransport(body string) (Transport, error) {
	var tr Transport
	lines := Lines(body)
	if len(lines) == 0 {
		return tr, fmt.Errorf("%w: empty transport reply", ErrUnexpectedKind)
	}
	if err := Decode(lines[0], &tr); err != nil {
		return Transport{}, err
	}
	if tr.Kind != KindTransport {
		return Transport{}, fmt.Errorf("%w: want %s, got %q", ErrUnexpectedKind, KindTransport, tr.Kind)
	}
	return tr, nil
}

// Decode fills the tagged fields of out (a pointer to struct) from the
// tab-separated columns of line. Columns missing from the line leave the
// corresponding field at its zero value.
func Decode(line string, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("reaperapi: decode target must be a non-nil struct pointer, got %T", out)
	}
	cols := strings.Split(line, "\t")
	sv := rv.Elem()
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		tag, ok := sf.Tag.Lookup("field")
		if !ok {
			continue
		}
		idx, escaped, err := parseTag(tag)
		if err != nil {
			return fmt.Errorf("reaperapi: field %s: %w", sf.Name, err)
		}
		if idx >= len(cols) {
			continue
		}
		raw := cols[idx]
		if escaped {
			raw = UnescapeValue(raw)
		}
		if err := setField(sv.Field(i), raw); err != nil {
			return fmt.Errorf("reaperapi: field %s (column %d): %w", sf.Name, idx, err)
		}
	}
	return nil
}

func parseTag(tag string) (idx int, escaped bool, err error) {
	name, opt, _ := strings.Cut(tag, ",")
	idx, err = strconv.Atoi(name)
	if err != nil || idx < 0 {
		return 0, false, fmt.Errorf("invalid column %q", name)
	}
	return idx, opt == "escaped", nil
}

func setField(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Int, reflect.Int64, reflect.Int32:
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Float64, reflect.Float32:
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return err
		}
		f.SetFloat(n)
	case reflect.Bool:
		f.SetBool(strings.TrimSpace(raw) == "1")
	default:
		return fmt.Errorf("unsupported kind %s", f.Kind())
	}
	return nil
}

// EscapeValue applies the escaping REAPER uses for ExtState values in replies:
// backslash, tab and newline become two-character sequences.
func EscapeValue(v string) string {
	if !strings.ContainsAny(v, "\\\t\n") {
		return v
	}
	var b strings.Builder
	b.Grow(len(v) + 8)
	for _, r := range v {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UnescapeValue reverses EscapeValue. Unknown escape sequences are kept as is.
func UnescapeValue(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c != '\\' || i+1 >= len(v) {
			b.WriteByte(c)
			continue
		}
		switch v[i+1] {
		case '\\':
			b.WriteByte('\\')
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte(c)
			b.WriteByte(v[i+1])
		}
		i++
	}
	return b.String()
}
