package pdf

import "github.com/kivaloop/pdfcore/pkg/pdf/pdferr"

// Resolver is the subset of *Document every SchemaDict accessor needs: the
// ability to follow a Reference to the Object it names. Components outside
// this package that only need typed, reference-transparent dictionary
// access (spec §4.1) depend on this interface rather than *Document.
type Resolver interface {
	ResolveObject(Object) (Object, error)
}

// Resolve follows obj if it is a Reference, otherwise returns it unchanged.
// Every accessor below goes through this so callers never have to type-switch
// on Reference themselves (spec §4.1's "schema dict" contract).
func Resolve(r Resolver, obj Object) (Object, error) {
	if obj == nil {
		return Null{}, nil
	}
	return r.ResolveObject(obj)
}

// ResolveDict resolves obj and asserts it is a Dictionary. A Stream's Dict is
// accepted too, since PDF's grammar lets a stream appear anywhere its
// dictionary-shaped wrapper is expected (spec §4.1).
func ResolveDict(r Resolver, obj Object) (Dictionary, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case Dictionary:
		return v, nil
	case Stream:
		return v.Dict, nil
	default:
		return nil, &pdferr.UnexpectedType{Want: "Dictionary", Got: resolved.Type().String()}
	}
}

// ResolveArray resolves obj and asserts it is an Array.
func ResolveArray(r Resolver, obj Object) (Array, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	arr, ok := resolved.(Array)
	if !ok {
		return nil, &pdferr.UnexpectedType{Want: "Array", Got: resolved.Type().String()}
	}
	return arr, nil
}

// ResolveStream resolves obj and asserts it is a Stream.
func ResolveStream(r Resolver, obj Object) (Stream, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return Stream{}, err
	}
	s, ok := resolved.(Stream)
	if !ok {
		return Stream{}, &pdferr.UnexpectedType{Want: "Stream", Got: resolved.Type().String()}
	}
	return s, nil
}

// ResolveName resolves obj and asserts it is a Name.
func ResolveName(r Resolver, obj Object) (Name, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return "", err
	}
	n, ok := resolved.(Name)
	if !ok {
		return "", &pdferr.UnexpectedType{Want: "Name", Got: resolved.Type().String()}
	}
	return n, nil
}

// ResolveInt resolves obj and returns its integer value.
func ResolveInt(r Resolver, obj Object) (int64, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return 0, err
	}
	n, ok := asInt(resolved)
	if !ok {
		return 0, &pdferr.UnexpectedType{Want: "Integer", Got: resolved.Type().String()}
	}
	return n, nil
}

// ResolveFloat resolves obj and returns its numeric value.
func ResolveFloat(r Resolver, obj Object) (float32, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return 0, err
	}
	f, ok := asFloat(resolved)
	if !ok {
		return 0, &pdferr.UnexpectedType{Want: "Real", Got: resolved.Type().String()}
	}
	return f, nil
}

// RequiredDict looks up key in d, resolves it, and requires it to be a
// Dictionary, reporting schema as the caller's name for error messages
// (spec §4.1: a missing or mistyped required field is always a
// DictSchemaError, never a panic or a silently-zero value).
func RequiredDict(r Resolver, d Dictionary, schema, key string) (Dictionary, error) {
	v := d.Get(key)
	if v == nil {
		return nil, &pdferr.DictSchemaError{Schema: schema, Key: key}
	}
	dict, err := ResolveDict(r, v)
	if err != nil {
		return nil, &pdferr.DictSchemaError{Schema: schema, Key: key, Cause: err}
	}
	return dict, nil
}

// OptDict is RequiredDict without the missing-key error: absent or
// unresolvable returns (nil, false).
func OptDict(r Resolver, d Dictionary, key string) (Dictionary, bool) {
	v := d.Get(key)
	if v == nil {
		return nil, false
	}
	dict, err := ResolveDict(r, v)
	if err != nil {
		return nil, false
	}
	return dict, true
}

// RequiredArray looks up key in d, resolves it, and requires it to be an
// Array.
func RequiredArray(r Resolver, d Dictionary, schema, key string) (Array, error) {
	v := d.Get(key)
	if v == nil {
		return nil, &pdferr.DictSchemaError{Schema: schema, Key: key}
	}
	arr, err := ResolveArray(r, v)
	if err != nil {
		return nil, &pdferr.DictSchemaError{Schema: schema, Key: key, Cause: err}
	}
	return arr, nil
}

// OptArray is RequiredArray without the missing-key error.
func OptArray(r Resolver, d Dictionary, key string) (Array, bool) {
	v := d.Get(key)
	if v == nil {
		return nil, false
	}
	arr, err := ResolveArray(r, v)
	if err != nil {
		return nil, false
	}
	return arr, true
}

// RequiredName looks up key in d, resolves it, and requires it to be a Name.
func RequiredName(r Resolver, d Dictionary, schema, key string) (Name, error) {
	v := d.Get(key)
	if v == nil {
		return "", &pdferr.DictSchemaError{Schema: schema, Key: key}
	}
	n, err := ResolveName(r, v)
	if err != nil {
		return "", &pdferr.DictSchemaError{Schema: schema, Key: key, Cause: err}
	}
	return n, nil
}

// OptName is RequiredName without the missing-key error.
func OptName(r Resolver, d Dictionary, key string) (Name, bool) {
	v := d.Get(key)
	if v == nil {
		return "", false
	}
	n, err := ResolveName(r, v)
	if err != nil {
		return "", false
	}
	return n, true
}

// OptInt looks up key in d, resolves it, and returns its integer value, or
// def if absent/mistyped.
func OptInt(r Resolver, d Dictionary, key string, def int64) int64 {
	v := d.Get(key)
	if v == nil {
		return def
	}
	n, err := ResolveInt(r, v)
	if err != nil {
		return def
	}
	return n
}

// OptFloat looks up key in d, resolves it, and returns its numeric value, or
// def if absent/mistyped.
func OptFloat(r Resolver, d Dictionary, key string, def float32) float32 {
	v := d.Get(key)
	if v == nil {
		return def
	}
	f, err := ResolveFloat(r, v)
	if err != nil {
		return def
	}
	return f
}

// OptBool looks up key in d and returns its boolean value, or def if
// absent/mistyped. Booleans are never indirect in practice, so this does not
// resolve references.
func OptBool(d Dictionary, key string, def bool) bool {
	b, ok := d.GetBool(key)
	if !ok {
		return def
	}
	return b
}

// NameIsOneOf reports whether d's key resolves to one of the given names,
// the SchemaDict "enum" validator (spec §4.1) used to discriminate tagged
// unions like color spaces and functions.
func NameIsOneOf(r Resolver, d Dictionary, key string, names ...string) (string, bool) {
	n, ok := OptName(r, d, key)
	if !ok {
		return "", false
	}
	for _, want := range names {
		if string(n) == want {
			return want, true
		}
	}
	return "", false
}
