package assistant

import (
	"fmt"
	"regexp"
	"time"

	"aviachat/models"

	"github.com/go-playground/validator/v10"
)

// Client-side form rules. These are advisory guards: the backend is the
// authority and its own error list is surfaced verbatim next to these.
var (
	validate   = newValidator()
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type passengerForm struct {
	FirstName      string `validate:"required,min=2"`
	LastName       string `validate:"required,min=2"`
	DateOfBirth    string `validate:"required,birthdate"`
	Gender         string `validate:"required,oneof=MALE FEMALE"`
	PassportNumber string `validate:"omitempty,min=6"`
}

type contactForm struct {
	Email string `validate:"required,chatemail"`
	Phone string `validate:"required,min=10"`
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Date of birth must parse as an ISO date and imply an age in [0,120].
	_ = v.RegisterValidation("birthdate", func(fl validator.FieldLevel) bool {
		dob, err := time.Parse("2006-01-02", fl.Field().String())
		if err != nil {
			return false
		}
		age := time.Now().Year() - dob.Year()
		if now := time.Now(); now.YearDay() < dob.YearDay() {
			age--
		}
		return age >= 0 && age <= 120
	})

	_ = v.RegisterValidation("chatemail", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})

	return v
}

var fieldMessages = map[string]string{
	"FirstName":      "First name must be at least 2 characters",
	"LastName":       "Last name must be at least 2 characters",
	"DateOfBirth":    "Date of birth must be a valid date (age 0-120)",
	"Gender":         "Gender must be MALE or FEMALE",
	"PassportNumber": "Passport number must be at least 6 characters",
	"Email":          "A valid email address is required",
	"Phone":          "Phone number must be at least 10 characters",
}

var fieldKeys = map[string]string{
	"FirstName":      "firstName",
	"LastName":       "lastName",
	"DateOfBirth":    "dateOfBirth",
	"Gender":         "gender",
	"PassportNumber": "passportNumber",
	"Email":          "email",
	"Phone":          "phone",
}

// validatePassengers runs the client-side checks and returns one message
// per offending field, keyed "passengers[i].field" / "contact.field".
// passportRequired mirrors the flow variants that insist on a passport.
func validatePassengers(passengers []models.Passenger, contact models.ContactInfo, passportRequired bool) map[string]string {
	errs := map[string]string{}

	if len(passengers) == 0 {
		errs["passengers"] = "At least one passenger is required"
	}

	for i, p := range passengers {
		form := passengerForm{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			DateOfBirth:    p.DateOfBirth,
			Gender:         p.Gender,
			PassportNumber: p.PassportNumber,
		}
		collectErrors(validate.Struct(form), fmt.Sprintf("passengers[%d].", i), errs)
		if passportRequired && p.PassportNumber == "" {
			errs[fmt.Sprintf("passengers[%d].passportNumber", i)] = fieldMessages["PassportNumber"]
		}
	}

	collectErrors(validate.Struct(contactForm{Email: contact.Email, Phone: contact.Phone}), "contact.", errs)
	return errs
}

func collectErrors(err error, prefix string, out map[string]string) {
	if err == nil {
		return
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out[prefix+"form"] = "Invalid input"
		return
	}
	for _, fe := range validationErrs {
		key, msg := fieldKeys[fe.Field()], fieldMessages[fe.Field()]
		if key == "" {
			key = fe.Field()
		}
		if msg == "" {
			msg = "Invalid value"
		}
		out[prefix+key] = msg
	}
}
