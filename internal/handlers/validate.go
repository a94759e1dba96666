package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"lavanderia/internal/apperr"
)

var validate = newValidator()

// newValidator builds the request validator. Field errors are reported
// under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// optemail accepts an empty string, which clears the address.
	v.RegisterValidation("optemail", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || v.Var(s, "email") == nil
	})
	return v
}

// fieldError is one entry of a validation error's details.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validateStruct runs the struct tags on req and converts failures into a
// Validation error listing every offending field.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate request: %w", err)
	}
	details := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return apperr.Validation("Datos de entrada inválidos", details)
}

// fieldPath drops the struct name from the namespace:
// "createOrderRequest.articles[0].quantity" becomes "articles[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obligatorio"
	case "notblank":
		return "No puede estar vacío"
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("Debe tener al menos %s elementos", fe.Param())
		}
		return fmt.Sprintf("Debe ser mayor o igual que %s", fe.Param())
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("Debe tener como máximo %s caracteres", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("Debe tener como máximo %s elementos", fe.Param())
		}
		return fmt.Sprintf("Debe ser menor o igual que %s", fe.Param())
	case "uuid":
		return "Debe ser un identificador válido"
	case "email", "optemail":
		return "Debe ser un correo electrónico válido"
	case "oneof":
		return "Debe ser uno de: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "unique":
		return "No puede contener elementos repetidos"
	}
	return fmt.Sprintf("No cumple la regla %q", fe.Tag())
}

// trimPtr trims the string behind p in place.
func trimPtr(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}
