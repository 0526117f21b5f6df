package lang

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// TOMLOptions controls the layout of TOML output.
type TOMLOptions struct {
	IndentTables    bool // indent the contents of sub-tables
	ArraysMultiline bool // one array element per line
	IndentSymbol    string
}

// MarshalTOML serializes env as a TOML document. Keys keep their insertion
// order; within a table, key/value pairs precede sub-tables as TOML requires.
func MarshalTOML(env *Dict) ([]byte, error) {
	var buf bytes.Buffer

	if err := EncodeTOML(&buf, env, TOMLOptions{}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// EncodeTOML writes env as a TOML document to w.
func EncodeTOML(w io.Writer, env *Dict, opts TOMLOptions) (err error) {
	// The encoder panics on shapes it cannot express.
	defer func() {
		if r := recover(); r != nil {
			err = ErrMarshal.Wrap(fmt.Errorf("%v", r))
		}
	}()

	enc := toml.NewEncoder(w).
		SetIndentTables(opts.IndentTables).
		SetArraysMultiline(opts.ArraysMultiline)

	if opts.IndentSymbol != "" {
		enc.SetIndentSymbol(opts.IndentSymbol)
	}

	if err := enc.Encode(tomlTable(env)); err != nil {
		return ErrMarshal.Wrap(err)
	}

	return nil
}

// tomlTable converts d to a value of a struct type built at runtime. Field i
// carries the i-th key as its tag, so the encoder visits keys in insertion
// order; a map would be sorted.
func tomlTable(d *Dict) any {
	fields := make([]reflect.StructField, 0, d.Len())
	values := make([]reflect.Value, 0, d.Len())

	for key, val := range d.All() {
		v := reflect.ValueOf(tomlValue(val))

		fields = append(fields, reflect.StructField{
			Name: "F" + strconv.Itoa(len(fields)),
			Type: v.Type(),
			Tag:  reflect.StructTag(`toml:` + strconv.Quote(key)),
		})
		values = append(values, v)
	}

	table := reflect.New(reflect.StructOf(fields)).Elem()
	for i, v := range values {
		table.Field(i).Set(v)
	}

	return table.Interface()
}

func tomlValue(v *Value) any {
	switch v.Type {
	case TypeInteger:
		return v.Int

	case TypeString:
		return v.Str

	case TypeList:
		elems := make([]any, len(v.List))
		for i, e := range v.List {
			elems[i] = tomlValue(e)
		}

		return elems

	case TypeDict:
		return tomlTable(v.Dict)

	default:
		return nil
	}
}

// ToNative converts a Value to its native Go type: int64, string, []any or
// map[string]any. Dictionary order is lost.
func (v *Value) ToNative() any {
	switch v.Type {
	case TypeInteger:
		return v.Int

	case TypeString:
		return v.Str

	case TypeList:
		elems := make([]any, len(v.List))
		for i, e := range v.List {
			elems[i] = e.ToNative()
		}

		return elems

	case TypeDict:
		return v.Dict.ToMap()

	default:
		return nil
	}
}

// ToMap converts the Dict to a native Go map structure.
func (d *Dict) ToMap() map[string]any {
	result := make(map[string]any, d.Len())

	for k, v := range d.All() {
		result[k] = v.ToNative()
	}

	return result
}

// MarshalJSON implements json.Marshaler, emitting keys in insertion order.
func (d *Dict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	first := true

	for k, v := range d.All() {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		val, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler.
func (v *Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case TypeList:
		return json.Marshal(v.List)

	case TypeDict:
		return v.Dict.MarshalJSON()

	default:
		return json.Marshal(v.ToNative())
	}
}

// toYAML converts v to a structure the YAML encoder renders in order.
func toYAML(v *Value) any {
	switch v.Type {
	case TypeList:
		elems := make([]any, len(v.List))
		for i, e := range v.List {
			elems[i] = toYAML(e)
		}

		return elems

	case TypeDict:
		return yamlMap(v.Dict)

	default:
		return v.ToNative()
	}
}

func yamlMap(d *Dict) yaml.MapSlice {
	m := make(yaml.MapSlice, 0, d.Len())

	for k, v := range d.All() {
		m = append(m, yaml.MapItem{Key: k, Value: toYAML(v)})
	}

	return m
}
