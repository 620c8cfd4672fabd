// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// A Codec serializes and deserializes values for one media type.
//
// Implementations of Codec must be safe for concurrent use by multiple
// goroutines.
type Codec interface {
	// ContentType returns the media type the codec produces, for
	// example "application/json".
	ContentType() string
	// Serialize converts v to bytes.
	Serialize(v interface{}) ([]byte, error)
	// Deserialize parses b into the value pointed to by v.
	Deserialize(b []byte, v interface{}) error
}

// Built-in codecs.
var (
	JSON Codec = jsonCodec{}
	XML  Codec = xmlCodec{}
	Form Codec = formCodec{}
	YAML Codec = yamlCodec{}
)

// ErrUnsupportedType is returned when a codec cannot represent a value
// of the given Go type.
var ErrUnsupportedType = errors.New("actionx/codec: unsupported type")

// Matches returns true if the media type of contentType, ignoring
// parameters such as charset, is c's content type or a structured
// syntax suffix of it (for example "application/problem+json" matches
// JSON).
func Matches(c Codec, contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	want := c.ContentType()
	if mt == want {
		return true
	}
	i := strings.LastIndexByte(want, '/')
	return i >= 0 && strings.HasSuffix(mt, "+"+want[i+1:])
}

// New allocates a pointer to a new zero value of type t, suitable as
// the v argument of Deserialize, and returns it along with a function
// returning the pointed-to value.
func New(t reflect.Type) (ptr interface{}, elem func() interface{}) {
	p := reflect.New(t)
	return p.Interface(), func() interface{} { return p.Elem().Interface() }
}

type jsonCodec struct{}

func (jsonCodec) ContentType() string {
	return "application/json"
}

func (jsonCodec) Serialize(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Deserialize(b []byte, v interface{}) error {
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	return d.Decode(v)
}

type xmlCodec struct{}

func (xmlCodec) ContentType() string {
	return "application/xml"
}

func (xmlCodec) Serialize(v interface{}) ([]byte, error) {
	return xml.Marshal(v)
}

func (xmlCodec) Deserialize(b []byte, v interface{}) error {
	return xml.Unmarshal(b, v)
}

type yamlCodec struct{}

func (yamlCodec) ContentType() string {
	return "application/yaml"
}

func (yamlCodec) Serialize(v interface{}) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Deserialize(b []byte, v interface{}) error {
	return yaml.Unmarshal(b, v)
}

// formCodec handles application/x-www-form-urlencoded bodies. It
// serializes url.Values, map[string]string, map[string][]string and
// structs (using the "form" field tag, or the field name), and
// deserializes into *url.Values or *map[string]string.
type formCodec struct{}

func (formCodec) ContentType() string {
	return "application/x-www-form-urlencoded"
}

func (formCodec) Serialize(v interface{}) ([]byte, error) {
	values, err := toValues(v)
	if err != nil {
		return nil, err
	}
	return []byte(values.Encode()), nil
}

func (formCodec) Deserialize(b []byte, v interface{}) error {
	values, err := url.ParseQuery(string(b))
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case *url.Values:
		*x = values
	case *map[string][]string:
		*x = values
	case *map[string]string:
		m := make(map[string]string, len(values))
		for k := range values {
			m[k] = values.Get(k)
		}
		*x = m
	default:
		return fmt.Errorf("%w: form cannot deserialize into %T", ErrUnsupportedType, v)
	}
	return nil
}

func toValues(v interface{}) (url.Values, error) {
	switch x := v.(type) {
	case url.Values:
		return x, nil
	case map[string][]string:
		return x, nil
	case map[string]string:
		values := make(url.Values, len(x))
		for k, s := range x {
			values.Set(k, s)
		}
		return values, nil
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: form cannot serialize %T", ErrUnsupportedType, v)
	}
	values := make(url.Values)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fv := rv.Field(i)
		if opts == "omitempty" && fv.IsZero() {
			continue
		}
		if fv.Kind() == reflect.Slice {
			for j := 0; j < fv.Len(); j++ {
				values.Add(name, fmt.Sprint(fv.Index(j).Interface()))
			}
			continue
		}
		values.Set(name, fmt.Sprint(fv.Interface()))
	}
	return values, nil
}
