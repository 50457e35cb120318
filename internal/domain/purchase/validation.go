package purchase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/shared"
)

var (
	payloadValidate     *validator.Validate
	payloadValidateOnce sync.Once
)

// Validator returns the validator used for pre-submit checks. Decimals are
// validated as numbers and a nil UUID counts as missing.
func Validator() *validator.Validate {
	payloadValidateOnce.Do(func() {
		v := validator.New()
		RegisterTypes(v)
		payloadValidate = v
	})
	return payloadValidate
}

// RegisterTypes teaches v to validate decimals and UUIDs and to report
// fields by their JSON names
func RegisterTypes(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if id, ok := field.Interface().(uuid.UUID); ok && id != uuid.Nil {
			return id.String()
		}
		return ""
	}, uuid.UUID{})
}

// ValidatePayload runs the pre-submit checks over a fully computed payload.
// Only the first failing field is reported.
func ValidatePayload(p Payload) error {
	return firstFieldError(Validator().Struct(p))
}

// ValidateLine runs the per-line pre-submit checks over one line on its own,
// as saved from the stock edit modal
func ValidateLine(l LinePayload) error {
	return firstFieldError(Validator().Struct(l))
}

func firstFieldError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return shared.NewDomainError(shared.ErrValidation.Code, FieldMessage(fieldErrs[0]))
	}
	return shared.NewDomainError(shared.ErrValidation.Code, err.Error())
}

// FieldMessage renders a field error as "<path> <problem>", where path is the
// JSON path without the root struct, e.g. "medicines[0].batchNumber is required"
func FieldMessage(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", path, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", path, fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", path, fe.Param())
	case "datetime":
		return path + " must be an ISO-8601 timestamp"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", path, fe.Param())
	default:
		return path + " is invalid"
	}
}
