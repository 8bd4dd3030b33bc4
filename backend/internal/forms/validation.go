package forms

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"archmap/backend/internal/constants"
	"archmap/backend/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// csvPattern accepts one or more comma-separated items, each either a
// double-quoted string without inner quotes or a run of characters that are
// neither quotes nor commas.
var csvPattern = regexp.MustCompile(`^(\s*("[^"]+"|[^",]+)\s*)(,\s*("[^"]+"|[^",]+)\s*)*$`)

// CSVFields are the application fields that take comma-separated lists
var CSVFields = []string{
	"internal_developers",
	"ams_contacts_email",
	"ams_contacts_phone",
	"internal_application_specialists",
	"business_partner_business_contacts",
	"business_contacts",
	"smes_factory",
	"ownerships",
	"links_to_sharepoint_documentation",
}

// IsValidCSV reports whether s is a well-formed comma-separated list
func IsValidCSV(s string) bool {
	return csvPattern.MatchString(s)
}

// CSVListTag is the struct tag rule backed by IsValidCSV
const CSVListTag = "csvlist"

func csvListValidator(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	value := field.String()
	return value == "" || IsValidCSV(value)
}

// RegisterValidations installs the custom rules and json field naming on v.
// The api package calls this on gin's binding engine.
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v.RegisterValidation(CSVListTag, csvListValidator)
}

// Validator validates form payloads
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator reading `binding` tags, like gin does
func NewValidator() *Validator {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidations(v); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", CSVListTag, err))
	}
	return &Validator{validate: v}
}

// Struct validates a payload struct and returns ErrValidationFailed on failure
func (v *Validator) Struct(payload any) error {
	return TranslateError(v.validate.Struct(payload))
}

// ValidateApplication validates an application payload
func (v *Validator) ValidateApplication(in ApplicationInput) error {
	return v.Struct(in)
}

// ValidateFlow validates a flow payload
func (v *Validator) ValidateFlow(in FlowInput) error {
	return v.Struct(in)
}

// TranslateError turns validator errors into ErrValidationFailed with one
// message per field. A csvlist failure anywhere sets the root message to
// constants.InvalidFormatMessage. Other errors pass through.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	root := "validation failed"
	for _, fe := range verrs {
		switch fe.Tag() {
		case CSVListTag:
			fields[fe.Field()] = "Invalid format"
			root = constants.InvalidFormatMessage
		case "required":
			fields[fe.Field()] = "Required"
		default:
			fields[fe.Field()] = fmt.Sprintf("failed %s", fe.Tag())
		}
	}
	return errors.NewValidationFailed(root, fields)
}

// ValidateValues checks a raw form payload against the descriptor, the target
// of the debounced as-you-type validation. Only string values in CSV fields
// are checked; unknown keys are ignored.
func ValidateValues(form string, values map[string]any) error {
	d, err := Load(form)
	if err != nil {
		return err
	}

	fields := make(map[string]string)
	for _, s := range d.Sections {
		for _, f := range s.Fields {
			if !f.CSV {
				continue
			}
			value, _ := values[f.Name].(string)
			if value != "" && !IsValidCSV(value) {
				fields[f.Name] = "Invalid format"
			}
		}
	}
	if len(fields) > 0 {
		return errors.NewValidationFailed(constants.InvalidFormatMessage, fields)
	}
	return nil
}
