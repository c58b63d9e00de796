package web

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"instatistics/internal/adapters/web/views"
	"instatistics/internal/domain"

	"github.com/go-playground/validator/v10"
)

// profileURLRegex matches profile links and extracts the username.
// Accepts instagram.com with or without www, query parameters are ignored.
var profileURLRegex = regexp.MustCompile(
	`^(?:https?://)?(?:www\.)?instagram\.com/([A-Za-z0-9._]+)/?(?:\?.*)?$`,
)

// handleRegex matches a valid account handle.
var handleRegex = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)

// ProfileRequest is a validated request to analyze a profile.
type ProfileRequest struct {
	Username string `validate:"required,handle"`
	Limit    int    `validate:"min=50,max=1000,step50"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handleRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("step50", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%views.LimitStep == 0
	})
	return v
}

// ParseUsername extracts a username from a handle, @handle or profile URL.
func ParseUsername(input string) string {
	input = strings.TrimSpace(input)
	if matches := profileURLRegex.FindStringSubmatch(input); matches != nil {
		return matches[1]
	}
	return strings.TrimPrefix(input, "@")
}

// NewProfileRequest validates raw form or URL values.
// Returns an error wrapping domain.ErrInvalidProfile describing the first
// invalid field.
func NewProfileRequest(rawUsername, rawLimit string) (ProfileRequest, error) {
	req := ProfileRequest{Username: ParseUsername(rawUsername), Limit: views.MinLimit}

	if rawLimit = strings.TrimSpace(rawLimit); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil {
			return req, fmt.Errorf("%w: limit %q is not a number", domain.ErrInvalidProfile, rawLimit)
		}
		req.Limit = limit
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return req, fmt.Errorf("%w: %s", domain.ErrInvalidProfile, describe(verrs[0]))
		}
		return req, fmt.Errorf("%w: %v", domain.ErrInvalidProfile, err)
	}
	return req, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "Username":
		if fe.Tag() == "required" {
			return "username is required"
		}
		return "username may only contain letters, numbers, periods and underscores"
	case "Limit":
		return fmt.Sprintf("limit must be between %d and %d in steps of %d", views.MinLimit, views.MaxLimit, views.LimitStep)
	default:
		return fe.Error()
	}
}
