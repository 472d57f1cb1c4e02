package menu

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DateRequest asks the date addressed source for one day.
type DateRequest struct {
	Year  int    `name:"y" validate:"min=2000,max=2100"`
	Month int    `name:"m" validate:"min=1,max=12"`
	Day   int    `name:"d" validate:"min=1,max=31"`
	Meal  string `name:"meal" validate:"omitempty,oneof=조식 중식 석식"`
}

// WeekdayRequest asks the weekday addressed source for one weekday block.
type WeekdayRequest struct {
	Day string `name:"day" validate:"required,oneof=mon tue wed thu fri sat sun"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("name"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// validateRequest turns validator failures into a single InvalidInput error.
func validateRequest(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return invalidInput("invalid request: %v", err)
	}

	messages := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		messages[i] = describe(fe)
	}
	return invalidInput("%s", strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s must be %s", fe.Field(), rangeOf(fe))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func rangeOf(fe validator.FieldError) string {
	if fe.Tag() == "min" {
		return "at least " + fe.Param()
	}
	return "at most " + fe.Param()
}
