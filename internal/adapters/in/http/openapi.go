package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// LoadOpenAPI parses and validates the embedded API document.
func LoadOpenAPI() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

// RequestValidator rejects requests whose parameters or JSON body do not
// match doc with 400 before they reach a handler. Routes missing from doc
// pass through.
func RequestValidator(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			route, pathParams, err := router.FindRoute(req)
			var routeErr *routers.RouteError
			if errors.As(err, &routeErr) {
				return next(c)
			}
			if err != nil {
				return writeError(c, http.StatusBadRequest, err.Error())
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err = openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return writeError(c, http.StatusBadRequest, validationMessage(err))
			}

			return next(c)
		}
	}, nil
}

func validationMessage(err error) string {
	var requestErr *openapi3filter.RequestError
	if !errors.As(err, &requestErr) {
		return err.Error()
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(requestErr.Err, &schemaErr) {
		field := schemaErr.JSONPointer()
		if requestErr.Parameter != nil {
			return fmt.Sprintf("parameter %q: %s", requestErr.Parameter.Name, schemaErr.Reason)
		}
		if len(field) > 0 {
			return fmt.Sprintf("body field %q: %s", strings.Join(field, "."), schemaErr.Reason)
		}
		return "body: " + schemaErr.Reason
	}
	if requestErr.Parameter != nil {
		return fmt.Sprintf("parameter %q: %s", requestErr.Parameter.Name, requestErr.Reason)
	}
	return requestErr.Error()
}
