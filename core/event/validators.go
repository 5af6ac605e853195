package event

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/klabu/core"
)

var (
	platformTag  = "platform"
	platformText = "unknown coding platform"

	endAfterStartTag  = "end_after_start"
	endAfterStartText = "must be after start_at"
)

func init() {
	_ = core.Validate.RegisterValidation(platformTag, platformValidation)
	core.RegisterCustomTranslation(platformTag, platformText)

	core.Validate.RegisterStructValidation(contestStructValidation, NewContest{})
	core.RegisterCustomTranslation(endAfterStartTag, endAfterStartText)
}

// platformValidation checks that the field is one of the tracked platforms.
func platformValidation(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	for _, p := range AllPlatforms {
		if v == p {
			return true
		}
	}
	return false
}

// contestStructValidation checks that a contest ends after it starts.
func contestStructValidation(sl validator.StructLevel) {
	nc := sl.Current().Interface().(NewContest)
	if !nc.StartAt.IsZero() && !nc.EndAt.IsZero() && !nc.EndAt.After(nc.StartAt) {
		sl.ReportError(nc.EndAt, "end_at", "EndAt", endAfterStartTag, "")
	}
}
