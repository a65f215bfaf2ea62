package validator

import (
	"storefront_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// Custom rules for the notification enums. Empty values pass so the
// tags compose with omitempty on filter DTOs.
func registerCustomRules(v *validator.Validate) error {
	if err := v.RegisterValidation("notifstatus", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.NotificationStatus(s).Valid()
	}); err != nil {
		return err
	}

	if err := v.RegisterValidation("notifcategory", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.NotificationCategory(s).Valid()
	}); err != nil {
		return err
	}

	if err := v.RegisterValidation("notifpriority", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.NotificationPriority(s).Valid()
	}); err != nil {
		return err
	}

	return nil
}
