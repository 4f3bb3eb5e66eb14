package customvalidator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/internal/entities"
)

// institutional email suffix accepted for registration
const dduEmailSuffix = "@ddu.edu.et"

// RegisterCustomValidations registers every custom rule on the given
// validator instance.
func RegisterCustomValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"ddu_email":       isDDUEmail,
		"department":      isDepartment,
		"role":            isRole,
		"resource_type":   isResourceType,
		"resource_status": isResourceStatus,
		"transfer_status": isTransferStatus,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func isDDUEmail(fl validator.FieldLevel) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(fl.Field().String())), dduEmailSuffix)
}

func isDepartment(fl validator.FieldLevel) bool {
	return authz.ValidDepartment(fl.Field().String())
}

func isRole(fl validator.FieldLevel) bool {
	return authz.ValidRole(fl.Field().String())
}

func isResourceType(fl validator.FieldLevel) bool {
	return entities.ValidResourceType(fl.Field().String())
}

func isResourceStatus(fl validator.FieldLevel) bool {
	return entities.ValidResourceStatus(fl.Field().String())
}

func isTransferStatus(fl validator.FieldLevel) bool {
	return entities.ValidTransferStatus(fl.Field().String())
}
