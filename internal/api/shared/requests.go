package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds request bodies; a full summary is well below it.
const maxBodyBytes = 1 << 20

// Now is the clock used by the notfuture rule.
var Now = time.Now

// Global validator instance for reuse
var validate = newValidator()

// timestampLayouts are the ISO 8601 forms accepted for timestamps. Layouts
// without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO 8601 date or date-time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseTimestamp(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		t, err := ParseTimestamp(fl.Field().String())
		if err != nil {
			return false
		}
		return !t.After(Now())
	})

	return v
}

// Normalizer is implemented by requests that clean their fields before validation.
type Normalizer interface {
	Normalize()
}

// ValidationMessages is implemented by requests that supply client-facing
// messages keyed by "field.tag".
type ValidationMessages interface {
	ValidationMessages() map[string]string
}

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// FieldTypeError converts a JSON value of the wrong type for a field of v
// into a *domain.ValidationError on that field. It reports false for any
// other decode failure, such as malformed JSON.
func FieldTypeError(v interface{}, err error) (*domain.ValidationError, bool) {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil, false
	}
	return domain.NewValidationError(typeErr.Field, fieldMessage(v, typeErr.Field, "type")), true
}

func fieldMessage(v interface{}, field, tag string) string {
	if m, ok := v.(ValidationMessages); ok {
		if msg, ok := m.ValidationMessages()[field+"."+tag]; ok {
			return msg
		}
	}
	return field + " is invalid."
}

// ValidateRequest normalizes and validates v. Failures come back as a
// *domain.ValidationError carrying one message per invalid field.
func ValidateRequest(v interface{}) error {
	if n, ok := v.(Normalizer); ok {
		n.Normalize()
	}

	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(v, fe.Field(), fe.Tag()))
	}
	return verr
}
