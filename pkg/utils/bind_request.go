// Package utils holds the request binding helper shared by the route packages.
package utils

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindRequest decodes the request body into T and checks its validate tags.
// Both failure modes come back as 400 httperrors so the error handler renders
// them in the standard envelope.
func BindRequest[T any](c echo.Context) (T, error) {
	var req T

	if err := c.Bind(&req); err != nil {
		return req, httperror.WrapError(http.StatusBadRequest, err)
	}

	if err := validate.Struct(req); err != nil {
		return req, httperror.WrapError(http.StatusBadRequest, describeValidation(err))
	}

	return req, nil
}

// describeValidation flattens validator field errors into one readable message
func describeValidation(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("field '%s' failed rule '%s'", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid request: %s", strings.Join(parts, "; "))
}
