package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterTagNames makes binding errors report json field names ("due_date"),
// not Go struct field names. Called once at router setup.
func RegisterTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// BindingErrors flattens a gin binding error into the field -> message map
// used by 422 responses. Field names are the json names (the app registers a
// json TagNameFunc on the binding validator).
func BindingErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = fieldMessage(fe)
		}
		return out
	}
	if errors.Is(err, ErrBadDueDate) {
		return map[string]string{"due_date": "The due date is not a valid date."}
	}
	return map[string]string{"request": err.Error()}
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return "The " + name + " field is required."
	case "max":
		return "The " + name + " may not be greater than " + fe.Param() + " characters."
	case "min":
		return "The " + name + " must be at least " + fe.Param() + " characters."
	default:
		return "The " + name + " field is invalid."
	}
}
