package shared

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	When string `json:"when" validate:"required,isodate,notfuture"`
	Name string `json:"name" validate:"required,max=5"`
}

func (r *sampleRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *sampleRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"when.isodate":   "When is not a date.",
		"when.notfuture": "When is in the future.",
		"name.required":  "Name is required.",
	}
}

func fixClock(t *testing.T, now time.Time) {
	t.Helper()
	orig := Now
	Now = func() time.Time { return now }
	t.Cleanup(func() { Now = orig })
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-04T05:06:07Z", time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)},
		{"2024-03-04T05:06:07+02:00", time.Date(2024, 3, 4, 3, 6, 7, 0, time.UTC)},
		{"2024-03-04T05:06:07.250Z", time.Date(2024, 3, 4, 5, 6, 7, 250_000_000, time.UTC)},
		{"2024-03-04T05:06:07", time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)},
		{"2024-03-04T05:06", time.Date(2024, 3, 4, 5, 6, 0, 0, time.UTC)},
		{"2024-03-04", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	for _, bad := range []string{"", "yesterday", "2024-13-01", "04/03/2024"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateRequest(t *testing.T) {
	fixClock(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	t.Run("valid", func(t *testing.T) {
		req := &sampleRequest{When: "2024-05-01", Name: "  ab  "}
		require.NoError(t, ValidateRequest(req))
		assert.Equal(t, "ab", req.Name)
	})

	t.Run("field messages", func(t *testing.T) {
		err := ValidateRequest(&sampleRequest{When: "2025-01-01", Name: "   "})

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, []domain.FieldError{
			{Field: "when", Message: "When is in the future."},
			{Field: "name", Message: "Name is required."},
		}, verr.Fields)
	})

	t.Run("fallback message", func(t *testing.T) {
		err := ValidateRequest(&sampleRequest{When: "not a date", Name: "toolong"})

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []domain.FieldError{
			{Field: "when", Message: "When is not a date."},
			{Field: "name", Message: "name is invalid."},
		}, verr.Fields)
	})
}

func TestDecodeJSON(t *testing.T) {
	var dst sampleRequest
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"when":"2024-01-01","name":"x"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"when":`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
}

func TestFieldTypeError(t *testing.T) {
	var dst sampleRequest
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"when":42,"name":"x"}`))
	err := DecodeJSON(httptest.NewRecorder(), r, &dst)
	require.Error(t, err)

	verr, ok := FieldTypeError(&dst, err)
	require.True(t, ok)
	assert.Equal(t, []domain.FieldError{{Field: "when", Message: "when is invalid."}}, verr.Fields)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"when":`))
	err = DecodeJSON(httptest.NewRecorder(), r, &dst)
	require.Error(t, err)
	_, ok = FieldTypeError(&dst, err)
	assert.False(t, ok, "syntax errors are not field errors")

	r = httptest.NewRequest("POST", "/", strings.NewReader(`["not","an","object"]`))
	err = DecodeJSON(httptest.NewRecorder(), r, &dst)
	require.Error(t, err)
	_, ok = FieldTypeError(&dst, err)
	assert.False(t, ok, "a mistyped body has no field to blame")
}
