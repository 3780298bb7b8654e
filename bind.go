// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package dylib

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"github.com/DataDog/go-dylib/dlerrors"
	"github.com/DataDog/go-dylib/internal/loader"
)

// Bind fills the fields of the struct pointed to by dst that have a tag in the
// form of `dlsym:"<symbol_name>"`, resolving them from lib:
//
//   - func fields are bound to the native function, as done by [Function];
//   - uintptr fields receive the raw symbol address;
//   - pointer fields point to the native variable, as done by [Global].
//
// Appending `,optional` to the symbol name leaves the field untouched when the
// library does not export it. Bind stops at the first failure; fields bound
// before it keep their value.
//
// With [UnloadOnDestruct], func fields keep lib reachable like the result of
// [Function] does, but uintptr and pointer fields do not: lib must be kept
// alive for as long as they are used.
//
//	var api struct {
//		Print   func(string) int32 `dlsym:"DllPrint"`
//		Counter *int32             `dlsym:"counter"`
//		Debug   func()             `dlsym:"debug,optional"`
//	}
//	err := dylib.Bind(lib, &api)
func Bind(lib *Library, dst any) error {
	value := reflect.ValueOf(dst)
	if value.Kind() != reflect.Pointer || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind destination must be a non-nil pointer to a struct, got %T", dst)
	}

	structValue := value.Elem()
	structType := structValue.Type()
	for i := 0; i < structType.NumField(); i++ {
		fieldType := structType.Field(i)
		tag, ok := fieldType.Tag.Lookup("dlsym")
		if !ok {
			continue
		}

		symbolName, optional := parseTag(tag)
		if symbolName == "" {
			return fmt.Errorf("field %s.%s has an empty dlsym tag", structType.Name(), fieldType.Name)
		}
		if !fieldType.IsExported() {
			return fmt.Errorf("cannot bind symbol '%s' to unexported field %s.%s", symbolName, structType.Name(), fieldType.Name)
		}

		addr, err := lib.Symbol(symbolName)
		if optional && errors.Is(err, dlerrors.ErrUnknownSymbol) {
			continue
		}
		if err != nil {
			return err
		}

		if err := bindField(lib, structValue.Field(i), symbolName, addr); err != nil {
			return err
		}
	}

	return nil
}

func parseTag(tag string) (name string, optional bool) {
	name, opts, _ := strings.Cut(tag, ",")
	return strings.TrimSpace(name), strings.TrimSpace(opts) == "optional"
}

func bindField(lib *Library, field reflect.Value, symbolName string, addr uintptr) error {
	switch field.Kind() {
	case reflect.Func:
		if err := tryCall(func() error {
			loader.RegisterFunc(field.Addr().Interface(), addr)
			return nil
		}); err != nil {
			return err
		}
		if lib.policy == UnloadOnDestruct {
			// Copy the registered func out of the field before replacing it.
			field.Set(pinned(lib, reflect.ValueOf(field.Interface())))
		}
		return nil
	case reflect.Uintptr:
		field.SetUint(uint64(addr))
		return nil
	case reflect.Pointer:
		ptr := *(*unsafe.Pointer)(unsafe.Pointer(&addr))
		field.Set(reflect.NewAt(field.Type().Elem(), ptr))
		return nil
	default:
		return &dlerrors.InvalidTypeError{Symbol: symbolName, Type: field.Type().String()}
	}
}
