package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
)

// ValidationError describes one rejected field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator runs struct tag validation followed by question bank rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v := &Validator{validate: validate}
	v.registerRules()
	return v
}

// Validate checks struct tags. It returns nil or a ValidationErrors value.
func (v *Validator) Validate(s interface{}) error {
	if errs := v.check(s); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *Validator) check(s interface{}) ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "body", Message: err.Error(), Rule: "struct"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// ValidateQuestionCreate applies tag validation and the rules that keep a
// question gradable: option questions need distinct options and an answer key
// drawn from them, numeric questions need a parsable key.
func (v *Validator) ValidateQuestionCreate(req *models.QuestionCreateRequest) error {
	errs := v.check(req)
	errs = append(errs, questionRules(req)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *Validator) registerRules() {
	v.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

func questionRules(req *models.QuestionCreateRequest) ValidationErrors {
	var errs ValidationErrors

	switch req.Type {
	case models.Numeric:
		if len(req.Options) > 0 {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: "numeric questions cannot have options",
				Value:   len(req.Options),
				Rule:    "business_logic",
			})
		}
		if _, err := models.ParseFinite(req.CorrectAnswer); err != nil {
			errs = append(errs, ValidationError{
				Field:   "correct_answer",
				Message: "must be a finite number",
				Value:   req.CorrectAnswer,
				Rule:    "business_logic",
			})
		}
		return errs
	case models.SingleSelect, models.MultiSelect:
	default:
		// unknown types are already reported by the oneof tag
		return nil
	}

	if len(req.Options) < 2 {
		errs = append(errs, ValidationError{
			Field:   "options",
			Message: "must have at least 2 options",
			Value:   len(req.Options),
			Rule:    "business_logic",
		})
	}

	seen := make(map[string]bool, len(req.Options))
	// multi-select grading ignores case, so its options must differ by more than case
	folded := make(map[string]bool, len(req.Options))
	for i, opt := range req.Options {
		key := strings.TrimSpace(opt)
		if key == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("options[%d]", i),
				Message: "option cannot be empty",
				Value:   opt,
				Rule:    "business_logic",
			})
			continue
		}
		if req.Type == models.MultiSelect && strings.Contains(key, ",") {
			// the answer key is stored comma-joined
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("options[%d]", i),
				Message: "multi select options cannot contain commas",
				Value:   opt,
				Rule:    "business_logic",
			})
		}
		lower := strings.ToLower(key)
		if seen[key] || (req.Type == models.MultiSelect && folded[lower]) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("options[%d]", i),
				Message: "duplicate option",
				Value:   opt,
				Rule:    "business_logic",
			})
		}
		seen[key] = true
		folded[lower] = true
	}

	answers := []string{strings.TrimSpace(req.CorrectAnswer)}
	if req.Type == models.MultiSelect {
		answers = models.SplitList(req.CorrectAnswer)
		if len(answers) == 0 {
			errs = append(errs, ValidationError{
				Field:   "correct_answer",
				Message: "must name at least one option",
				Value:   req.CorrectAnswer,
				Rule:    "business_logic",
			})
		}
	}
	for _, a := range answers {
		if !seen[a] {
			errs = append(errs, ValidationError{
				Field:   "correct_answer",
				Message: fmt.Sprintf("%q is not one of the options", a),
				Value:   req.CorrectAnswer,
				Rule:    "business_logic",
			})
		}
	}

	return errs
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "not_blank":
		return "cannot be blank"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "unique":
		return "must not contain duplicates"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("validation failed for rule '%s'", fe.Tag())
	}
}
