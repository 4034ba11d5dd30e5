// Package codec converts Go values to bytes and back at the network
// boundary.
//
// Every codec validates UTF-8 in both directions. The standard JSON
// encoders silently replace invalid sequences with U+FFFD; here an invalid
// string is an encode error and an invalid input is a decode error, so a
// value either crosses the boundary unchanged or not at all.
//
// Two codecs are provided: JSON (encoding/json) and GoJSON
// (github.com/goccy/go-json). Both produce the same wire format.
package codec

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"unicode/utf8"
)

// Codec encodes and decodes values.
type Codec interface {
	// Name identifies the codec in configuration and logs.
	Name() string

	// Marshal encodes v. Strings anywhere in v must be valid UTF-8.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into the value pointed to by v. data must be
	// valid UTF-8.
	Unmarshal(data []byte, v any) error
}

// ErrInvalidUTF8 is wrapped by every error caused by invalid UTF-8.
var ErrInvalidUTF8 = errors.New("codec: invalid UTF-8")

// Op names the direction of a failed conversion.
type Op string

const (
	OpEncode Op = "encode"
	OpDecode Op = "decode"
)

// Error reports a failed conversion.
type Error struct {
	Codec string
	Op    Op
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("codec %s: %s: %v", e.Codec, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var (
	registryMu sync.RWMutex
	registry   = map[string]Codec{}
)

// Register makes c available through Lookup under c.Name(). It is safe to
// call concurrently with Lookup; a later codec replaces an earlier one of
// the same name.
func Register(c Codec) {
	registryMu.Lock()
	registry[c.Name()] = c
	registryMu.Unlock()
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, bool) {
	registryMu.RLock()
	c, ok := registry[name]
	registryMu.RUnlock()
	return c, ok
}

// Names returns the names of all registered codecs, sorted.
func Names() []string {
	registryMu.RLock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	registryMu.RUnlock()
	sort.Strings(names)
	return names
}

// Default is the codec used when none is configured.
var Default Codec = JSON

func init() {
	Register(JSON)
	Register(GoJSON)
}

// validateValue reports the path of the first string in v that is not
// valid UTF-8. Byte slices are opaque and not checked.
func validateValue(v reflect.Value, path string, depth int) error {
	if depth > maxValidateDepth {
		return nil
	}
	switch v.Kind() {
	case reflect.String:
		if !utf8.ValidString(v.String()) {
			return fmt.Errorf("%w at %s", ErrInvalidUTF8, path)
		}
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			return validateValue(v.Elem(), path, depth+1)
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if err := validateValue(v.Field(i), path+"."+f.Name, depth+1); err != nil {
				return err
			}
		}
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		fallthrough
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := validateValue(v.Index(i), fmt.Sprintf("%s[%d]", path, i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := validateValue(iter.Key(), path+"{key}", depth+1); err != nil {
				return err
			}
			if err := validateValue(iter.Value(), fmt.Sprintf("%s[%v]", path, iter.Key()), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// maxValidateDepth bounds recursion on cyclic values; the encoder itself
// rejects cycles.
const maxValidateDepth = 512

// Validate reports an error wrapping ErrInvalidUTF8 if any string reachable
// from v is not valid UTF-8.
func Validate(v any) error {
	if v == nil {
		return nil
	}
	return validateValue(reflect.ValueOf(v), "$", 0)
}
