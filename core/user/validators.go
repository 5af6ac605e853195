package user

import (
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/klabu/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	audienceTag  = "audience"
	audienceText = "invalid audience tier"
)

func init() {
	_ = core.Validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(allRolesTag, allRolesText)

	_ = core.Validate.RegisterValidation(audienceTag, audienceValidation)
	core.RegisterCustomTranslation(audienceTag, audienceText)
}

// allRolesValidation checks that provided user roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	all := append([]string(nil), AllRoles...)
	sort.Strings(all)
	for _, role := range roles {
		idx := sort.SearchStrings(all, role)
		if idx >= len(all) || all[idx] != role {
			return false
		}
	}
	return true
}

// audienceValidation checks that the field is a known audience tier.
func audienceValidation(fl validator.FieldLevel) bool {
	tier := fl.Field().String()
	_, ok := audienceMinPriority[tier]
	return ok
}
