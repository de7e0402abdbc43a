package handler

import (
	"time"

	"secretsanta/internal/activity/matching"
	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/service"
)

// CreateActivityResponse is returned once, on creation. The admin key cannot
// be recovered later.
type CreateActivityResponse struct {
	ActivityID string    `json:"activity_id"`
	AdminKey   string    `json:"admin_key"`
	Name       string    `json:"name"`
	Deadline   time.Time `json:"deadline"`
}

type ActivityResponse struct {
	ActivityID  string     `json:"activity_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Deadline    time.Time  `json:"deadline"`
	MatchedAt   *time.Time `json:"matched_at,omitempty"`
	RevealedAt  *time.Time `json:"revealed_at,omitempty"`
}

type ActivitySummaryResponse struct {
	ActivityResponse
	ParticipantCount int `json:"participant_count"`
}

// DashboardResponse is the host view. It says who has a target but never
// who it is.
type DashboardResponse struct {
	Activity     ActivityResponse       `json:"activity"`
	Participants []DashboardParticipant `json:"participants"`
}

type DashboardParticipant struct {
	ParticipantID string    `json:"participant_id"`
	Nickname      string    `json:"nickname"`
	SocialAccount string    `json:"social_account,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	HasTarget     bool      `json:"has_target"`
}

// SignupResponse hands the participant key back to its owner.
type SignupResponse struct {
	ParticipantKey string `json:"participant_key"`
	Nickname       string `json:"nickname"`
	ActivityName   string `json:"activity_name"`
}

type MatchResponse struct {
	ActivityID       string    `json:"activity_id"`
	Status           string    `json:"status"`
	ParticipantCount int       `json:"participant_count"`
	MatchedAt        time.Time `json:"matched_at"`
}

type RevealViewResponse struct {
	Participant RevealSelfResponse     `json:"participant"`
	Activity    RevealActivityResponse `json:"activity"`
	Target      *RevealTargetResponse  `json:"target,omitempty"`
	Sender      *RevealSenderResponse  `json:"sender,omitempty"`
}

type RevealSelfResponse struct {
	ParticipantID string `json:"participant_id"`
	Nickname      string `json:"nickname"`
	SocialAccount string `json:"social_account,omitempty"`
}

type RevealActivityResponse struct {
	ActivityID string    `json:"activity_id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Deadline   time.Time `json:"deadline"`
}

type RevealTargetResponse struct {
	Nickname      string `json:"nickname"`
	SocialAccount string `json:"social_account,omitempty"`
	NoteToSanta   string `json:"note_to_santa"`
	RealName      string `json:"real_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

type RevealSenderResponse struct {
	Nickname      string `json:"nickname"`
	SocialAccount string `json:"social_account,omitempty"`
	NoteToTarget  string `json:"note_to_target,omitempty"`
	NoteToSanta   string `json:"note_to_santa,omitempty"`
}

func toCreateActivityResponse(created *service.CreatedActivity) *CreateActivityResponse {
	return &CreateActivityResponse{
		ActivityID: created.Activity.ID.String(),
		AdminKey:   created.AdminKey,
		Name:       created.Activity.Name,
		Deadline:   created.Activity.Deadline,
	}
}

func toActivityResponse(a *models.Activity) ActivityResponse {
	return ActivityResponse{
		ActivityID:  a.ID.String(),
		Name:        a.Name,
		Description: a.Description,
		Status:      a.Status.String(),
		Deadline:    a.Deadline,
		MatchedAt:   a.MatchedAt,
		RevealedAt:  a.RevealedAt,
	}
}

func toActivitySummaryResponse(summary *service.ActivitySummary) *ActivitySummaryResponse {
	return &ActivitySummaryResponse{
		ActivityResponse: toActivityResponse(summary.Activity),
		ParticipantCount: summary.ParticipantCount,
	}
}

func toDashboardResponse(d *service.Dashboard) *DashboardResponse {
	participants := make([]DashboardParticipant, 0, len(d.Participants))
	for _, p := range d.Participants {
		participants = append(participants, DashboardParticipant{
			ParticipantID: p.ID.String(),
			Nickname:      p.Nickname,
			SocialAccount: p.SocialAccount,
			CreatedAt:     p.CreatedAt,
			HasTarget:     p.HasTarget(),
		})
	}
	return &DashboardResponse{
		Activity:     toActivityResponse(d.Activity),
		Participants: participants,
	}
}

func toSignupResponse(result *service.SignupResult) *SignupResponse {
	return &SignupResponse{
		ParticipantKey: result.Participant.ID.String(),
		Nickname:       result.Participant.Nickname,
		ActivityName:   result.ActivityName,
	}
}

func toMatchResponse(result *matching.MatchResult) *MatchResponse {
	return &MatchResponse{
		ActivityID:       result.ActivityID.String(),
		Status:           models.StatusMatched.String(),
		ParticipantCount: len(result.Assignments),
		MatchedAt:        result.MatchedAt,
	}
}

func toRevealViewResponse(view *models.RevealView) *RevealViewResponse {
	resp := &RevealViewResponse{
		Participant: RevealSelfResponse{
			ParticipantID: view.Participant.ID.String(),
			Nickname:      view.Participant.Nickname,
			SocialAccount: view.Participant.SocialAccount,
		},
		Activity: RevealActivityResponse{
			ActivityID: view.Activity.ID.String(),
			Name:       view.Activity.Name,
			Status:     view.Activity.Status.String(),
			Deadline:   view.Activity.Deadline,
		},
	}
	if t := view.Target; t != nil {
		resp.Target = &RevealTargetResponse{
			Nickname:      t.Nickname,
			SocialAccount: t.SocialAccount,
			NoteToSanta:   t.NoteToSanta,
			RealName:      t.Shipping.RealName,
			Phone:         t.Shipping.Phone,
			Address:       t.Shipping.Address,
		}
	}
	if s := view.Sender; s != nil {
		resp.Sender = &RevealSenderResponse{
			Nickname:      s.Nickname,
			SocialAccount: s.SocialAccount,
			NoteToTarget:  s.NoteToTarget,
			NoteToSanta:   s.NoteToSanta,
		}
	}
	return resp
}
