package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/birlikkoshan/todo-api/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the custom binding rules and makes validator
// report fields by their json/form names. Safe to call more than once.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return fmt.Errorf("register notblank: %w", err)
	}
	return nil
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(f.String()) != ""
}

var errMalformedJSON = errors.New("malformed JSON")

// nullFieldsError lists fields that may be omitted but were sent as null.
type nullFieldsError []string

func (e nullFieldsError) Error() string {
	return "null not allowed for " + strings.Join(e, ", ")
}

// bindJSON binds a request body that must hold exactly one JSON document.
// Fields named in nonNull may be left out but not set to null.
func bindJSON(c *gin.Context, obj any, nonNull ...string) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return io.EOF
	}
	if !json.Valid(body) {
		return errMalformedJSON
	}
	if len(nonNull) > 0 {
		var fields map[string]json.RawMessage
		if json.Unmarshal(body, &fields) == nil {
			var nulls nullFieldsError
			for _, name := range nonNull {
				if raw, ok := fields[name]; ok && string(raw) == "null" {
					nulls = append(nulls, name)
				}
			}
			if len(nulls) > 0 {
				return nulls
			}
		}
	}
	return binding.JSON.BindBody(body, obj)
}

// violations turns a bind error into per-field messages.
func violations(err error) []dto.FieldViolation {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]dto.FieldViolation, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, dto.FieldViolation{Field: fe.Field(), Message: describe(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return []dto.FieldViolation{{Field: "body", Message: "must be a JSON object"}}
		}
		return []dto.FieldViolation{{Field: typeErr.Field, Message: "must be of type " + typeErr.Type.String()}}
	}

	var nulls nullFieldsError
	if errors.As(err, &nulls) {
		out := make([]dto.FieldViolation, 0, len(nulls))
		for _, name := range nulls {
			out = append(out, dto.FieldViolation{Field: name, Message: "must not be null"})
		}
		return out
	}

	var syntaxErr *json.SyntaxError
	if errors.Is(err, errMalformedJSON) || errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []dto.FieldViolation{{Field: "body", Message: "malformed JSON"}}
	}
	if errors.Is(err, io.EOF) {
		return []dto.FieldViolation{{Field: "body", Message: "request body is required"}}
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return []dto.FieldViolation{{Field: "query", Message: fmt.Sprintf("invalid number %q", numErr.Num)}}
	}

	return []dto.FieldViolation{{Field: "body", Message: err.Error()}}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "notblank":
		return "cannot be empty or just whitespace"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be greater than or equal to " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be less than or equal to " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}
