package checkout

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/example/storefront/pkg/models"
	"github.com/go-playground/validator/v10"
)

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

// OrderForm carries the contact and shipping fields of a checkout
// submission. Monetary fields are deliberately absent: totals are always
// computed server-side.
type OrderForm struct {
	FullName       string `json:"full_name" validate:"required,max=50"`
	Email          string `json:"email" validate:"required,email,max=254"`
	PhoneNumber    string `json:"phone_number" validate:"required,max=20"`
	Country        string `json:"country" validate:"required,max=40"`
	Postcode       string `json:"postcode" validate:"required,max=20"`
	TownOrCity     string `json:"town_or_city" validate:"required,max=40"`
	StreetAddress1 string `json:"street_address1" validate:"required,max=80"`
	StreetAddress2 string `json:"street_address2" validate:"max=80"`
	County         string `json:"county" validate:"max=80"`
}

// Validate returns nil for a valid form, otherwise a FormInvalidError
// listing every offending field by its wire name.
func (f *OrderForm) Validate() *FormInvalidError {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return &FormInvalidError{Fields: map[string]string{"form": err.Error()}}
	}
	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fe.Field()] = fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return &FormInvalidError{Fields: fields}
}

func (f *OrderForm) apply(o *models.Order) {
	o.FullName = f.FullName
	o.Email = f.Email
	o.PhoneNumber = f.PhoneNumber
	o.Country = f.Country
	o.Postcode = f.Postcode
	o.TownOrCity = f.TownOrCity
	o.StreetAddress1 = f.StreetAddress1
	o.StreetAddress2 = f.StreetAddress2
	o.County = f.County
}
