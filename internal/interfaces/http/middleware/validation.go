package middleware

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// voucherCodePattern bounds what a voucher code may look like before the
// domain layer normalizes it. Case is irrelevant here; codes are uppercased
// on creation and lookup.
var voucherCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

// SetupValidator configures the binding validator with JSON field names and
// custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("vouchercode", func(fl validator.FieldLevel) bool {
		return voucherCodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
}
