package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/localnerve/wpq-drafts/internal/draft"
)

// validate checks the format rules carried by the draft's validate tags.
// Errors are reported under the fields' JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// messages overrides the generic message of a tag for one field.
var messages = map[string]string{
	"codeYear":          "must be 4 digits",
	"formNo":            "must be " + draft.FormNoPrefix + " followed by a number",
	"thicknessMm":       "must be a number",
	"continuityRecords": fmt.Sprintf("must have between 1 and %d entries", draft.MaxContinuityEntries),
}

// Result is the outcome of validating one section or the whole draft.
// Errors is keyed by field name; continuity entry fields are keyed
// "continuityRecords.<index>.<field>".
type Result struct {
	Success bool              `json:"success"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type collector map[string]string

func (c collector) add(field, format string, args ...any) {
	if _, ok := c[field]; !ok {
		c[field] = fmt.Sprintf(format, args...)
	}
}

func (c collector) result() Result {
	if len(c) == 0 {
		return Result{Success: true}
	}
	return Result{Success: false, Errors: map[string]string(c)}
}

// ValidateSection checks section of d against the required-field manifest
// and the section's format rules.
func ValidateSection(section draft.Section, d draft.FormDraft) Result {
	errs := collector{}
	validateSection(section, &d, errs)
	return errs.result()
}

// ValidateAll validates every section. Field names are unique across
// sections except inside testing variables, which carry no rules.
func ValidateAll(d draft.FormDraft) Result {
	errs := collector{}
	for _, s := range draft.Sections {
		validateSection(s, &d, errs)
	}
	return errs.result()
}

func validateSection(section draft.Section, d *draft.FormDraft, errs collector) {
	for _, f := range draft.RequiredFor(section) {
		if f.Complete(d) {
			continue
		}
		if f.MinLen > 0 && strings.TrimSpace(f.Value(d)) != "" {
			errs.add(f.Name, "must be at least %d characters", f.MinLen)
		} else {
			errs.add(f.Name, "is required")
		}
	}

	target := sectionRecord(section, d)
	if target == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if err := validate.Struct(target); errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			field := fieldKey(fe.Namespace())
			errs.add(field, "%s", message(field, fe))
		}
	}
}

func sectionRecord(section draft.Section, d *draft.FormDraft) any {
	switch section {
	case draft.SectionBasicInfo:
		return &d.BasicInfo
	case draft.SectionTestDescription:
		return &d.TestDescription
	case draft.SectionResults:
		return &d.Results
	case draft.SectionContinuity:
		return &d.Continuity
	}
	return nil
}

// fieldKey turns "Continuity.continuityRecords[1].date" into
// "continuityRecords.1.date".
func fieldKey(namespace string) string {
	_, key, ok := strings.Cut(namespace, ".")
	if !ok {
		key = namespace
	}
	key = strings.ReplaceAll(key, "[", ".")
	return strings.ReplaceAll(key, "]", "")
}

func message(field string, fe validator.FieldError) string {
	if msg, ok := messages[field]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "len":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have %s rows", fe.Param())
		}
		return fmt.Sprintf("must be %s characters", fe.Param())
	case "oneof":
		options := strings.Fields(fe.Param())
		for i, o := range options {
			options[i] = fmt.Sprintf("%q", o)
		}
		return "must be " + strings.Join(options, " or ")
	}
	return "is not valid"
}
