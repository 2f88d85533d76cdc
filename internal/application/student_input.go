package application

import (
	"errors"

	"github.com/languagebridge/admin-api/pkg/validation"
)

// CreateStudentInput is the full-required create payload. Every field is
// mandatory except address.neighborhood, user.phone, user.avatar_url and
// ward_id.
type CreateStudentInput struct {
	User             CreateUserInput    `json:"user"`
	Address          CreateAddressInput `json:"address"`
	WardID           string             `json:"ward_id" validate:"omitempty,uuid"`
	BirthDate        string             `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Language         string             `json:"language" validate:"required,oneof=Spanish French Portuguese Italian"`
	Level            string             `json:"level" validate:"required,oneof=EC1 EC2"`
	ChurchMembership string             `json:"church_membership" validate:"required,oneof=Member Non-member"`
}

type CreateUserInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,pwd"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

type CreateAddressInput struct {
	Street       string `json:"street" validate:"required"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	Country      string `json:"country" validate:"required"`
	PostalCode   string `json:"postal_code" validate:"required,postalcode"`
}

// UpdateStudentInput is the partial update payload: every field optional,
// at least one required, user.type immutable.
type UpdateStudentInput struct {
	User             *UpdateUserInput    `json:"user"`
	Address          *UpdateAddressInput `json:"address"`
	WardID           *string             `json:"ward_id" validate:"omitempty,uuid"`
	BirthDate        *string             `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Language         *string             `json:"language" validate:"omitempty,oneof=Spanish French Portuguese Italian"`
	Level            *string             `json:"level" validate:"omitempty,oneof=EC1 EC2"`
	ChurchMembership *string             `json:"church_membership" validate:"omitempty,oneof=Member Non-member"`
}

type UpdateUserInput struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,pwd"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	// Type is parsed so that a forbidden attempt to change the role is
	// reported explicitly instead of silently dropped.
	Type *int `json:"type" validate:"-"`
}

type UpdateAddressInput struct {
	Street       *string `json:"street" validate:"omitempty,min=1"`
	Neighborhood *string `json:"neighborhood"`
	City         *string `json:"city" validate:"omitempty,min=1"`
	State        *string `json:"state" validate:"omitempty,min=1"`
	Country      *string `json:"country" validate:"omitempty,min=1"`
	PostalCode   *string `json:"postal_code" validate:"omitempty,postalcode"`
}

// ValidateCreate checks the full-required create schema, aggregating every
// violated field into one error.
func ValidateCreate(in CreateStudentInput) error {
	return validation.Struct(in)
}

// ValidateUpdate checks the partial schema: tag rules for present fields,
// at least one field across the whole payload, and the immutable user.type.
func ValidateUpdate(in UpdateStudentInput) error {
	details := map[string]string{}

	if err := validation.Struct(in); err != nil {
		var verr *validation.Error
		if !errors.As(err, &verr) {
			return err
		}
		for k, v := range verr.Details {
			details[k] = v
		}
	}
	if in.User != nil && in.User.Type != nil {
		details["user.type"] = "cannot be changed after creation"
	}
	if in.empty() {
		details["payload"] = "at least one field is required"
	}
	if len(details) > 0 {
		return validation.NewError(details)
	}
	return nil
}

func (in UpdateStudentInput) empty() bool {
	if in.WardID != nil || in.BirthDate != nil || in.Language != nil ||
		in.Level != nil || in.ChurchMembership != nil {
		return false
	}
	if u := in.User; u != nil {
		if u.FirstName != nil || u.LastName != nil || u.Email != nil ||
			u.Password != nil || u.Phone != nil || u.AvatarURL != nil {
			return false
		}
	}
	if a := in.Address; a != nil {
		if a.Street != nil || a.Neighborhood != nil || a.City != nil ||
			a.State != nil || a.Country != nil || a.PostalCode != nil {
			return false
		}
	}
	return true
}
