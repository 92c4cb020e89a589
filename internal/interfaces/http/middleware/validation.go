package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var setupOnce sync.Once

// SetupValidator registers the crm_email rule and reports fields by their
// form name. It is safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("crm_email", func(fl validator.FieldLevel) bool {
			return shared.IsValidEmail(fl.Field().String())
		})
	})
}

// ValidationMessage turns a binding error into the notice shown on the form
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid form submission."
	}
	e := verrs[0]
	label := fieldLabel(e.Field())
	switch e.Tag() {
	case "required":
		return label + " is required."
	case "crm_email", "email":
		return "Invalid email address."
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters.", label, e.Param())
	default:
		return label + " is invalid."
	}
}

func fieldLabel(name string) string {
	if name == "" {
		return "Value"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
