package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// Struct validates s and flattens field errors into one readable message.
func (v *Validator) Struct(s any) error {
	return humanize(v.validate.Struct(s))
}

func (v *Validator) Var(field any, tag string) error {
	return humanize(v.validate.Var(field, tag))
}

func humanize(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if name == "" {
			name = "value"
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", name))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", name))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", name, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, ", "))
}
