package validation

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt ignores anything longer
	MaxNameLength     = 100
	MaxAnswerLength   = 5000
	MaxSolutionLength = 20000
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRegisterRequest validates the registration form
func (v *Validator) ValidateRegisterRequest(req dto.RegisterRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	errors = append(errors, v.validateName(req.Name)...)
	errors = append(errors, v.ValidateEmail("email", req.Email)...)
	errors = append(errors, v.ValidatePassword("password", req.Password)...)
	return errors
}

// ValidateLoginRequest validates the login form. Password length is not
// checked so that the reserved account keeps working with a short password.
func (v *Validator) ValidateLoginRequest(req dto.LoginRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	errors = append(errors, v.ValidateEmail("email", req.Email)...)
	if req.Password == "" {
		errors = append(errors, domain.NewMissingFieldError("password"))
	}
	return errors
}

// ValidateUpdateProfileRequest validates a profile edit
func (v *Validator) ValidateUpdateProfileRequest(req dto.UpdateProfileRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	errors = append(errors, v.validateName(req.Name)...)
	errors = append(errors, v.ValidateEmail("email", req.Email)...)
	return errors
}

// ValidateEmail checks presence and the loose address shape
func (v *Validator) ValidateEmail(field, email string) domain.ValidationErrors {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	if !emailPattern.MatchString(email) {
		return domain.ValidationErrors{domain.NewInvalidFormatError(field, email)}
	}
	return nil
}

// ValidatePassword checks a new password
func (v *Validator) ValidatePassword(field, password string) domain.ValidationErrors {
	if password == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	if n := len(password); n < MinPasswordLength || n > MaxPasswordLength {
		return domain.ValidationErrors{domain.NewOutOfRangeError(field, n, MinPasswordLength, MaxPasswordLength)}
	}
	return nil
}

// ValidateAnswer checks a submitted answer. Blank answers are allowed: the
// question is simply left unanalysed.
func (v *Validator) ValidateAnswer(answer string) domain.ValidationErrors {
	if n := utf8.RuneCountInString(answer); n > MaxAnswerLength {
		return domain.ValidationErrors{domain.NewOutOfRangeError("answer", n, 0, MaxAnswerLength)}
	}
	return nil
}

// ValidateSolution checks a submitted coding solution
func (v *Validator) ValidateSolution(solution string) domain.ValidationErrors {
	if n := utf8.RuneCountInString(solution); n > MaxSolutionLength {
		return domain.ValidationErrors{domain.NewOutOfRangeError("solution", n, 0, MaxSolutionLength)}
	}
	return nil
}

// ValidateTopic checks that topic is one of the offered technical topics
func (v *Validator) ValidateTopic(topic string) domain.ValidationErrors {
	if strings.TrimSpace(topic) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("topic")}
	}
	if !slices.Contains(domain.TechnicalTopics, topic) {
		return domain.ValidationErrors{domain.NewUnsupportedValueError("topic", topic)}
	}
	return nil
}

func (v *Validator) validateName(name string) domain.ValidationErrors {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("name")}
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return domain.ValidationErrors{domain.NewOutOfRangeError("name", n, 1, MaxNameLength)}
	}
	return nil
}
