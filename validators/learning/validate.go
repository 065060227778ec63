package learningValidator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"slm/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BodyKey is where validated request bodies are stored in c.Locals.
const BodyKey = "validatedBody"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type normalizer interface {
	normalize()
}

// Check validates req and returns the failures keyed by JSON field path.
func Check(req interface{}) map[string]string {
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		if _, seen := out[key]; !seen {
			out[key] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", name)
	case "min":
		if fe.Kind() == reflect.Int {
			return fmt.Sprintf("%s must be %s or greater!", name, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s items!", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long!", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.Int {
			return fmt.Sprintf("%s must be %s or less!", name, fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s characters!", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater!", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid!", name)
	}
}

// Body parses the JSON body into a fresh T, validates it and stores it under
// BodyKey.
func Body[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			if fields := typeErrorFields(err); fields != nil {
				return middleware.ValidationErrorResponse(c, fields)
			}
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errs := Check(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(BodyKey, reqData)
		return c.Next()
	}
}

// typeErrorFields reports a well-formed body whose field has the wrong JSON
// type as a field error. Malformed JSON yields nil.
func typeErrorFields(err error) map[string]string {
	var ute *json.UnmarshalTypeError
	if !errors.As(err, &ute) {
		return nil
	}
	if ute.Field == "" {
		return map[string]string{"body": "body must be a JSON object!"}
	}
	return map[string]string{ute.Field: fmt.Sprintf("%s must not be a JSON %s!", ute.Field, ute.Value)}
}
