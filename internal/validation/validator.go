package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"sitebackend/internal/domain"
	"sitebackend/internal/utils"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New builds a validator; now is the clock used by the notpast rule.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now}

	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = val.v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = val.v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(utils.LayoutDate, fl.Field().String())
		return err == nil
	})
	_ = val.v.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
		return !utils.IsBeforeToday(fl.Field().String(), val.now())
	})
	_ = val.v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return utils.IsSlug(fl.Field().String())
	})

	return val
}

// Struct validates i and converts failures into a domain.ValidationError
// listing every offending field.
func (val *Validator) Struct(i any) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ValidationError{Msg: "invalid payload", Err: err}
	}
	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return domain.ValidationError{Fields: fields, Err: err}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nonblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "notpast":
		return "cannot be in the past"
	case "uuid":
		return "must be a valid identifier"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "slug":
		return "may only contain lowercase letters, digits and hyphens"
	default:
		return "is invalid"
	}
}
