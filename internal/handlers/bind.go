package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidation makes validator report fields by their json (or form)
// name so binding errors line up with service field errors.
func RegisterValidation() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
}

// BindingFields converts validator failures into a field → message map.
func BindingFields(err error) (map[string]string, bool) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, false
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields[fieldErr.Field()] = bindingMessage(fieldErr)
	}

	return fields, true
}

func bindingMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Ensure this field has at least " + fieldErr.Param() + " characters."
	case "max":
		return "Ensure this field has at most " + fieldErr.Param() + " characters."
	case "oneof":
		return "Select a valid choice. Must be one of: " + fieldErr.Param() + "."
	default:
		return "Invalid value."
	}
}

// bindWritable binds a JSON body after refusing any key listed in readOnly.
// Those fields are stamped by the server.
func bindWritable(ctx *gin.Context, body interface{}, readOnly ...string) bool {
	var raw map[string]json.RawMessage

	if err := ctx.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return false
	}

	fields := map[string]string{}
	for _, key := range readOnly {
		if _, present := raw[key]; present {
			fields[key] = "This field is read-only."
		}
	}

	if len(fields) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
		return false
	}

	if err := ctx.ShouldBindBodyWith(body, binding.JSON); err != nil {
		if fields, ok := BindingFields(err); ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
		} else {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		}
		return false
	}

	return true
}
