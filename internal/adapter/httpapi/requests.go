package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"weather-audit/internal/domain"
	"weather-audit/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// fetchWeatherRequest is the body of POST /api/v1/weather/fetch. CountryCode
// is optional: without it the geocoder takes the best worldwide match.
type fetchWeatherRequest struct {
	City        string `json:"city" validate:"required,min=2,max=70"`
	CountryCode string `json:"countryCode" validate:"omitempty,len=2,alpha,uppercase"`
	WeeksBack   int    `json:"weeksBack" validate:"required,min=1,max=520"`
}

// createAuditRequest is the body of POST /api/v1/audits. ThresholdTemp is a
// pointer so that an explicit 0°C threshold survives the required check.
type createAuditRequest struct {
	City          string   `json:"city" validate:"required,min=2,max=70"`
	CountryCode   string   `json:"countryCode" validate:"required,len=2,alpha,uppercase"`
	DateFrom      string   `json:"dateFrom" validate:"required,datetime=2006-01-02"`
	DateTo        string   `json:"dateTo" validate:"required,datetime=2006-01-02"`
	ThresholdTemp *float64 `json:"thresholdTemp" validate:"required,min=-50,max=60"`
}

// validationError carries per-field messages for a 400 response.
type validationError struct {
	Fields map[string]string
}

func (e *validationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// checkStruct runs validator tags and converts failures into a
// *validationError with one message per offending field.
func checkStruct(validate *validator.Validate, req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fieldName(fe)] = fieldMessage(fe)
	}
	return &validationError{Fields: fields}
}

func fieldName(fe validator.FieldError) string {
	// Lower-case the struct field to match its JSON name.
	name := fe.Field()
	return strings.ToLower(name[:1]) + name[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "alpha":
		return "must contain only letters"
	case "uppercase":
		return "must be uppercase"
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	default:
		return "is invalid"
	}
}

// parseListOptions reads limit, skip, sort, dateFrom, and dateTo from the
// query string: limit 1-100 defaulting to 50, skip >= 0, sort of the form
// "createdAt:asc" or "createdAt:desc" (the default).
func parseListOptions(r *http.Request) (store.ListOptions, error) {
	opts := store.ListOptions{Limit: defaultLimit}
	fields := make(map[string]string)
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			fields["limit"] = fmt.Sprintf("must be an integer between 1 and %d", maxLimit)
		} else {
			opts.Limit = limit
		}
	}

	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			fields["skip"] = "must be a non-negative integer"
		} else {
			opts.Skip = skip
		}
	}

	switch q.Get("sort") {
	case "", "createdAt:desc":
	case "createdAt:asc":
		opts.SortAsc = true
	default:
		fields["sort"] = `must be "createdAt:asc" or "createdAt:desc"`
	}

	if raw := q.Get("dateFrom"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			fields["dateFrom"] = "must be a date in YYYY-MM-DD form"
		} else {
			opts.DateFrom = d
		}
	}
	if raw := q.Get("dateTo"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			fields["dateTo"] = "must be a date in YYYY-MM-DD form"
		} else {
			opts.DateTo = d
		}
	}

	if len(fields) > 0 {
		return store.ListOptions{}, &validationError{Fields: fields}
	}
	return opts, nil
}

// parseDateRange reads an inclusive dateFrom/dateTo pair and rejects an
// inverted range.
func parseDateRange(rawFrom, rawTo string) (from, to domain.Date, err error) {
	fields := make(map[string]string)

	from, errFrom := domain.ParseDate(rawFrom)
	if errFrom != nil {
		fields["dateFrom"] = "must be a date in YYYY-MM-DD form"
	}
	to, errTo := domain.ParseDate(rawTo)
	if errTo != nil {
		fields["dateTo"] = "must be a date in YYYY-MM-DD form"
	}
	if len(fields) == 0 && to.Before(from.Time) {
		fields["dateTo"] = "must not be before dateFrom"
	}

	if len(fields) > 0 {
		return domain.Date{}, domain.Date{}, &validationError{Fields: fields}
	}
	return from, to, nil
}

// parsePathCity reads and validates the {city}/{countryCode} path pair.
func parsePathCity(city, countryCode string, validate *validator.Validate) error {
	fields := make(map[string]string)
	if err := validate.Var(city, "required,min=2,max=70"); err != nil {
		fields["city"] = "must be between 2 and 70 characters"
	}
	if err := validate.Var(countryCode, "required,len=2,alpha,uppercase"); err != nil {
		fields["countryCode"] = "must be a 2-letter uppercase country code"
	}
	if len(fields) > 0 {
		return &validationError{Fields: fields}
	}
	return nil
}
