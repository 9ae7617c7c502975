package catalog

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/example/storefront/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Each product category owns its validation schema. Handlers pick a form
// through FormFor and never branch on category ids themselves.

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

// ProductForm validates admin input and applies it onto a Product row.
type ProductForm interface {
	Validate() map[string]string
	Apply(p *models.Product) error
}

type baseForm struct {
	SKU         string          `json:"sku" validate:"max=32"`
	Name        string          `json:"name" validate:"required,max=254"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

func (f *baseForm) apply(p *models.Product) {
	p.SKU = f.SKU
	p.Name = f.Name
	p.Description = f.Description
	p.Price = f.Price
	p.ImageURL = f.ImageURL
}

func fieldErrors(form interface{}) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"form": err.Error()}
	}
	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fe.Field()] = fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return fields
}

func applyDetails(p *models.Product, details interface{}) error {
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to serialize product details: %w", err)
	}
	p.Details = string(data)
	return nil
}

type GenericForm struct {
	baseForm
}

func (f *GenericForm) Validate() map[string]string {
	return fieldErrors(f)
}

func (f *GenericForm) Apply(p *models.Product) error {
	f.apply(p)
	return nil
}

type BookForm struct {
	baseForm
	Author    string `json:"author" validate:"required,max=100"`
	Publisher string `json:"publisher" validate:"max=100"`
	ISBN      string `json:"isbn" validate:"max=17"`
	PageCount int    `json:"page_count" validate:"omitempty,gt=0"`
}

func (f *BookForm) Validate() map[string]string {
	return fieldErrors(f)
}

func (f *BookForm) Apply(p *models.Product) error {
	f.apply(p)
	return applyDetails(p, map[string]interface{}{
		"author":     f.Author,
		"publisher":  f.Publisher,
		"isbn":       f.ISBN,
		"page_count": f.PageCount,
	})
}

type BoxedSetForm struct {
	baseForm
	VolumeCount int    `json:"volume_count" validate:"required,gt=1"`
	Edition     string `json:"edition" validate:"max=50"`
}

func (f *BoxedSetForm) Validate() map[string]string {
	return fieldErrors(f)
}

func (f *BoxedSetForm) Apply(p *models.Product) error {
	f.apply(p)
	return applyDetails(p, map[string]interface{}{
		"volume_count": f.VolumeCount,
		"edition":      f.Edition,
	})
}

type CollectibleForm struct {
	baseForm
	Manufacturer string `json:"manufacturer" validate:"max=100"`
	Material     string `json:"material" validate:"max=50"`
	LimitedRun   bool   `json:"limited_run"`
}

func (f *CollectibleForm) Validate() map[string]string {
	return fieldErrors(f)
}

func (f *CollectibleForm) Apply(p *models.Product) error {
	f.apply(p)
	return applyDetails(p, map[string]interface{}{
		"manufacturer": f.Manufacturer,
		"material":     f.Material,
		"limited_run":  f.LimitedRun,
	})
}

// formsByCategory is the dispatch table keyed by category name. Unknown
// categories fall back to the generic form.
var formsByCategory = map[string]func() ProductForm{
	"books":        func() ProductForm { return &BookForm{} },
	"boxed_sets":   func() ProductForm { return &BoxedSetForm{} },
	"collectibles": func() ProductForm { return &CollectibleForm{} },
}

func FormFor(category string) ProductForm {
	if newForm, ok := formsByCategory[category]; ok {
		return newForm()
	}
	return &GenericForm{}
}
