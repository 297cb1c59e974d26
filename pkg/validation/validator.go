package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// structValidator validates payloads decoded outside gin binding
// (onboarding step payloads arrive as raw JSON and are validated after
// step dispatch).
var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	registerConventions(v)
	return v
}

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerConventions(v)
	}
}

func registerConventions(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=8") // password minimum length
	v.RegisterAlias("phone", "e164")
	v.RegisterAlias("year", "gte=1800,lte=2100")
}

// FieldsError carries per-field validation messages across the service
// boundary so handlers can surface them in the response body.
type FieldsError struct {
	Details map[string]string
}

func (e *FieldsError) Error() string { return "validation failed" }

// Struct validates v with the shared validator and converts failures to a
// *FieldsError.
func Struct(v any) error {
	if err := structValidator.Struct(v); err != nil {
		if details := ToDetails(err); details != nil {
			return &FieldsError{Details: details}
		}
		return err
	}
	return nil
}

// ToDetails converts validation/binding errors into a map[field]message
// suitable for the response `errors` object.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "e164":
		return "must be a valid phone number in E.164 format"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "min":
		if kind == reflect.String {
			return "must be at least " + param + " characters"
		}
		return "must be at least " + param
	case "max":
		if kind == reflect.String {
			return "must be at most " + param + " characters"
		}
		return "must be at most " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "len":
		return "must have length " + param
	case "numeric":
		return "must be numeric"
	case "dive":
		return "contains invalid elements"
	default:
		if param != "" {
			return "failed " + tag + "=" + param + " validation"
		}
		return "failed " + tag + " validation"
	}
}
