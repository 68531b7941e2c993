package cohort

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/joyinliving/academy/core"
)

var (
	cohortCodeTag   = "cohortcode"
	cohortCodeText  = "only letters, digits, underscores and hyphens are allowed"
	cohortCodeRegex = regexp.MustCompile(`^[\w-]+$`)
)

// InitValidators registers the cohort validators; must be called at startup.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(cohortCodeTag, cohortCodeValidation)
	core.RegisterCustomTranslation(validate, translator, cohortCodeTag, cohortCodeText)
}

// cohortCodeValidation allows batch codes such as "SCTP3-046".
func cohortCodeValidation(fl validator.FieldLevel) bool {
	return cohortCodeRegex.MatchString(fl.Field().String())
}
