package handler

import (
	"strings"
	"time"

	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/service"
	dErrors "secretsanta/pkg/domain-errors"
)

// CreateActivityRequest is the body of POST /activities.
type CreateActivityRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
}

func (r *CreateActivityRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *CreateActivityRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Deadline == nil || r.Deadline.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "deadline is required")
	}
	return nil
}

func (r *CreateActivityRequest) ToInput() service.CreateActivityInput {
	return service.CreateActivityInput{
		Name:        r.Name,
		Description: r.Description,
		Deadline:    r.Deadline.UTC(),
	}
}

// UpdateActivityRequest is the body of PATCH /activities/{activityID}.
// Omitted fields are left unchanged.
type UpdateActivityRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
}

func (r *UpdateActivityRequest) Normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	if r.Description != nil {
		desc := strings.TrimSpace(*r.Description)
		r.Description = &desc
	}
	if r.Deadline != nil {
		deadline := r.Deadline.UTC()
		r.Deadline = &deadline
	}
}

func (r *UpdateActivityRequest) Validate() error {
	if r.Name == nil && r.Description == nil && r.Deadline == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one of name, description or deadline is required")
	}
	if r.Name != nil && *r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	return nil
}

func (r *UpdateActivityRequest) ToEdit() models.Edit {
	return models.Edit{
		Name:        r.Name,
		Description: r.Description,
		Deadline:    r.Deadline,
	}
}

// SignupRequest is the body of POST /activities/{activityID}/participants.
type SignupRequest struct {
	Nickname      string          `json:"nickname"`
	SocialAccount string          `json:"social_account"`
	NoteToSanta   string          `json:"note_to_santa"`
	NoteToTarget  string          `json:"note_to_target"`
	Shipping      ShippingRequest `json:"shipping"`
}

// ShippingRequest carries the personal data that is encrypted before storage.
type ShippingRequest struct {
	RealName string `json:"real_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (r *SignupRequest) Normalize() {
	r.Nickname = strings.TrimSpace(r.Nickname)
	r.SocialAccount = strings.TrimSpace(r.SocialAccount)
	r.NoteToSanta = strings.TrimSpace(r.NoteToSanta)
	r.NoteToTarget = strings.TrimSpace(r.NoteToTarget)
	r.Shipping.RealName = strings.TrimSpace(r.Shipping.RealName)
	r.Shipping.Phone = strings.TrimSpace(r.Shipping.Phone)
	r.Shipping.Address = strings.TrimSpace(r.Shipping.Address)
}

func (r *SignupRequest) Validate() error {
	if r.Nickname == "" {
		return dErrors.New(dErrors.CodeValidation, "nickname is required")
	}
	if r.NoteToSanta == "" {
		return dErrors.New(dErrors.CodeValidation, "note_to_santa is required")
	}
	return r.shipping().Validate()
}

func (r *SignupRequest) shipping() models.Shipping {
	return models.Shipping{
		RealName: r.Shipping.RealName,
		Phone:    r.Shipping.Phone,
		Address:  r.Shipping.Address,
	}
}

func (r *SignupRequest) ToInput() service.SignupInput {
	return service.SignupInput{
		Nickname:      r.Nickname,
		SocialAccount: r.SocialAccount,
		NoteToSanta:   r.NoteToSanta,
		NoteToTarget:  r.NoteToTarget,
		Shipping:      r.shipping(),
	}
}
