// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package schemas

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the struct tags of v. Slices and arrays are validated per
// element. Values that are not structs, pointers to structs, or slices of
// structs are accepted as is. Each field violation is appended to the
// returned error.
func Validate(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return validateStruct(rv.Interface())
	case reflect.Slice, reflect.Array:
		var merr *multierror.Error
		for i := 0; i < rv.Len(); i++ {
			if err := Validate(rv.Index(i).Interface()); err != nil {
				merr = multierror.Append(merr, fmt.Errorf("[%d]: %w", i, err))
			}
		}
		return merr.ErrorOrNil()
	default:
		return nil
	}
}

func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var merr *multierror.Error
	for _, fe := range fieldErrs {
		merr = multierror.Append(merr,
			fmt.Errorf("field %s failed on %q", fe.Namespace(), fe.Tag()))
	}
	return merr.ErrorOrNil()
}
