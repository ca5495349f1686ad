package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates request structs using `validate` tags.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	RegisterAliases(v)
	return &Validator{v: v}
}

// RegisterAliases installs the domain enumerations used across request
// payloads onto v. Call it on gin's binding validator too so `binding`
// tags can reference them.
func RegisterAliases(v *validator.Validate) {
	v.RegisterAlias("payment_type", "oneof=consultation pharmacy")
	v.RegisterAlias("delivery_status", "oneof=Pending Packed 'Out for Delivery' Delivered")
}

func (val *Validator) Validate(obj interface{}) error {
	if err := val.v.Struct(obj); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("field %s failed validation on %s", e.Field(), e.Tag())
		}
		return err
	}
	return nil
}

func (val *Validator) Var(value interface{}, rules string) error {
	return val.v.Var(value, rules)
}
