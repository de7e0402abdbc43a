package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"secretsanta/internal/activity/handler/mocks"
	"secretsanta/internal/activity/matching"
	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/service"
	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
	"secretsanta/pkg/platform/middleware/credentials"
	"secretsanta/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
	now     time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.now = time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC)

	r := chi.NewRouter()
	r.Use(credentials.Extract)
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	s.router = r
}

func (s *HandlerSuite) activity(status models.Status) *models.Activity {
	return &models.Activity{
		ID:             id.NewActivityID(),
		AdminKeyDigest: "digest",
		Name:           "Office",
		Status:         status,
		Deadline:       s.now.Add(48 * time.Hour),
		CreatedAt:      s.now,
		UpdatedAt:      s.now,
	}
}

func (s *HandlerSuite) TestCreateActivity() {
	s.Run("returns the admin key once", func() {
		activity := s.activity(models.StatusOpen)
		s.service.EXPECT().CreateActivity(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, in service.CreateActivityInput) (*service.CreatedActivity, error) {
				s.Equal("Office", in.Name)
				s.Equal("budget 20", in.Description)
				s.True(activity.Deadline.Equal(in.Deadline))
				return &service.CreatedActivity{Activity: activity, AdminKey: "admin-secret"}, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/activities", map[string]any{
			"name":        "  Office ",
			"description": "budget 20",
			"deadline":    activity.Deadline,
		}))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[CreateActivityResponse](s.T(), rr)
		s.Equal(activity.ID.String(), resp.ActivityID)
		s.Equal("admin-secret", resp.AdminKey)
	})

	s.Run("missing deadline is rejected before the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/activities", map[string]any{
			"name": "Office",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("unknown fields are rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/activities", map[string]any{
			"name":     "Office",
			"deadline": s.now,
			"budget":   20,
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}

func (s *HandlerSuite) TestGetActivity() {
	s.Run("public summary", func() {
		activity := s.activity(models.StatusOpen)
		s.service.EXPECT().GetActivity(gomock.Any(), activity.ID).
			Return(&service.ActivitySummary{Activity: activity, ParticipantCount: 3}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/activities/"+activity.ID.String()))

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.NotContains(rr.Body.String(), "digest")
		resp := testutil.UnmarshalResponse[ActivitySummaryResponse](s.T(), rr)
		s.Equal("OPEN", resp.Status)
		s.Equal(3, resp.ParticipantCount)
	})

	s.Run("malformed id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/activities/not-a-uuid"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.Run("unknown activity", func() {
		activityID := id.NewActivityID()
		s.service.EXPECT().GetActivity(gomock.Any(), activityID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "activity not found"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/activities/"+activityID.String()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *HandlerSuite) TestAdminRoutesRequireKey() {
	activityID := id.NewActivityID().String()
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/activity"},
		{http.MethodPatch, "/activities/" + activityID},
		{http.MethodDelete, "/activities/" + activityID + "/participants/" + id.NewParticipantID().String()},
		{http.MethodPost, "/activities/" + activityID + "/match"},
		{http.MethodPost, "/activities/" + activityID + "/reveal"},
	}
	for _, route := range routes {
		s.Run(route.method+" "+route.path, func() {
			rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), route.method, route.path))
			testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
		})
	}
}

func (s *HandlerSuite) TestParticipantRoutesRequireKey() {
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/reveal"},
		{http.MethodDelete, "/participants/me"},
	} {
		s.Run(route.method+" "+route.path, func() {
			rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), route.method, route.path))
			testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
		})
	}
}

func (s *HandlerSuite) TestDashboard() {
	activity := s.activity(models.StatusMatched)
	target := id.NewParticipantID()
	participants := []*models.Participant{
		{ID: id.NewParticipantID(), ActivityID: activity.ID, Nickname: "ann", TargetID: &target, CreatedAt: s.now},
		{ID: target, ActivityID: activity.ID, Nickname: "bob", CreatedAt: s.now},
	}
	s.service.EXPECT().GetDashboard(gomock.Any(), "admin-secret").
		Return(&service.Dashboard{Activity: activity, Participants: participants}, nil)

	req := testutil.WithAdminKey(testutil.NewRequest(s.T(), http.MethodGet, "/admin/activity"), "admin-secret")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[DashboardResponse](s.T(), rr)
	s.Require().Len(resp.Participants, 2)
	s.True(resp.Participants[0].HasTarget)
	s.False(resp.Participants[1].HasTarget)
	s.Equal("MATCHED", resp.Activity.Status)
}

func (s *HandlerSuite) TestUpdateActivity() {
	activity := s.activity(models.StatusOpen)

	s.Run("passes only the provided fields", func() {
		s.service.EXPECT().
			UpdateActivity(gomock.Any(), activity.ID, "admin-secret", gomock.Any()).
			DoAndReturn(func(_ any, _ id.ActivityID, _ string, edit models.Edit) (*models.Activity, error) {
				s.Require().NotNil(edit.Name)
				s.Equal("Renamed", *edit.Name)
				s.Nil(edit.Description)
				s.Nil(edit.Deadline)
				return activity, nil
			})

		req := testutil.WithAdminKey(testutil.NewJSONRequest(s.T(), http.MethodPatch, "/activities/"+activity.ID.String(),
			map[string]any{"name": " Renamed "}), "admin-secret")
		testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, req), http.StatusOK)
	})

	s.Run("empty body is a validation error", func() {
		req := testutil.WithAdminKey(testutil.NewJSONRequest(s.T(), http.MethodPatch, "/activities/"+activity.ID.String(),
			map[string]any{}), "admin-secret")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("wrong key is forbidden", func() {
		s.service.EXPECT().UpdateActivity(gomock.Any(), activity.ID, "wrong", gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "admin key does not match"))

		req := testutil.WithAdminKey(testutil.NewJSONRequest(s.T(), http.MethodPatch, "/activities/"+activity.ID.String(),
			map[string]any{"description": "x"}), "wrong")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})
}

func signupBody() map[string]any {
	return map[string]any{
		"nickname":       "rudolph",
		"social_account": "@rudolph",
		"note_to_santa":  "carrots",
		"shipping": map[string]any{
			"real_name": "Rudolph Reindeer",
			"phone":     "555-0101",
			"address":   "North Pole",
		},
	}
}

func (s *HandlerSuite) TestSignup() {
	activityID := id.NewActivityID()

	s.Run("returns the participant key", func() {
		participant := &models.Participant{ID: id.NewParticipantID(), ActivityID: activityID, Nickname: "rudolph"}
		s.service.EXPECT().Signup(gomock.Any(), activityID, gomock.Any()).
			DoAndReturn(func(_ any, _ id.ActivityID, in service.SignupInput) (*service.SignupResult, error) {
				s.Equal("Rudolph Reindeer", in.Shipping.RealName)
				s.Equal("carrots", in.NoteToSanta)
				return &service.SignupResult{Participant: participant, ActivityName: "Office"}, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/activities/"+activityID.String()+"/participants", signupBody()))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[SignupResponse](s.T(), rr)
		s.Equal(participant.ID.String(), resp.ParticipantKey)
		s.Equal("Office", resp.ActivityName)
	})

	s.Run("missing shipping field", func() {
		body := signupBody()
		body["shipping"] = map[string]any{"real_name": "R", "phone": "1"}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/activities/"+activityID.String()+"/participants", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("duplicate nickname", func() {
		s.service.EXPECT().Signup(gomock.Any(), activityID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "nickname is already taken in this activity"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/activities/"+activityID.String()+"/participants", signupBody()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeConflict))
	})
}

func (s *HandlerSuite) TestRunMatching() {
	activityID := id.NewActivityID()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dErrors.Code
	}{
		{"already matched", dErrors.New(dErrors.CodeInvalidState, "activity is not open"), http.StatusConflict, dErrors.CodeInvalidState},
		{"too few participants", dErrors.New(dErrors.CodePreconditionFailed, "at least 2 participants are required"), http.StatusUnprocessableEntity, dErrors.CodePreconditionFailed},
		{"persistence failure", dErrors.New(dErrors.CodePersistence, "disk on fire"), http.StatusInternalServerError, dErrors.CodePersistence},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.EXPECT().RunMatching(gomock.Any(), activityID, "admin-secret").Return(nil, tt.err)
			req := testutil.WithAdminKey(testutil.NewRequest(s.T(), http.MethodPost, "/activities/"+activityID.String()+"/match"), "admin-secret")
			testutil.AssertDomainError(s.T(), testutil.DoRequest(s.router, req), tt.wantStatus, string(tt.wantCode))
		})
	}

	s.Run("success does not list assignments", func() {
		a, b := id.NewParticipantID(), id.NewParticipantID()
		s.service.EXPECT().RunMatching(gomock.Any(), activityID, "admin-secret").Return(&matching.MatchResult{
			ActivityID:  activityID,
			Assignments: []models.Assignment{{Giver: a, Target: b}, {Giver: b, Target: a}},
			MatchedAt:   s.now,
		}, nil)

		req := testutil.WithAdminKey(testutil.NewRequest(s.T(), http.MethodPost, "/activities/"+activityID.String()+"/match"), "admin-secret")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		body := string(testutil.ReadBody(s.T(), rr))
		s.Contains(body, `"participant_count":2`)
		s.NotContains(body, a.String())
		s.NotContains(body, b.String())
	})
}

func (s *HandlerSuite) TestRemoveAndWithdraw() {
	activityID := id.NewActivityID()
	participantID := id.NewParticipantID()

	s.service.EXPECT().RemoveParticipant(gomock.Any(), activityID, "admin-secret", participantID).Return(nil)
	req := testutil.WithAdminKey(testutil.NewRequest(s.T(), http.MethodDelete,
		"/activities/"+activityID.String()+"/participants/"+participantID.String()), "admin-secret")
	testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, req), http.StatusNoContent)

	s.service.EXPECT().Withdraw(gomock.Any(), participantID).
		Return(dErrors.New(dErrors.CodeInvalidState, "participants cannot leave after matching"))
	req = testutil.WithParticipantKey(testutil.NewRequest(s.T(), http.MethodDelete, "/participants/me"), participantID.String())
	testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusConflict, string(dErrors.CodeInvalidState))
}

func (s *HandlerSuite) TestRevealView() {
	participantID := id.NewParticipantID()

	s.Run("matched view carries the target only", func() {
		s.service.EXPECT().GetRevealView(gomock.Any(), participantID).Return(&models.RevealView{
			Participant: models.RevealSelf{ID: participantID, Nickname: "ann"},
			Activity:    models.RevealActivity{ID: id.NewActivityID(), Name: "Office", Status: models.StatusMatched},
			Target: &models.RevealTarget{
				Nickname:    "bob",
				NoteToSanta: "books",
				Shipping:    models.Shipping{RealName: "Bob B", Phone: "1", Address: "2"},
			},
		}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/reveal?key="+participantID.String())
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.Equal("no-store", rr.Header().Get("Cache-Control"))
		resp := testutil.UnmarshalResponse[RevealViewResponse](s.T(), rr)
		s.Require().NotNil(resp.Target)
		s.Equal("Bob B", resp.Target.RealName)
		s.Nil(resp.Sender)
	})

	s.Run("malformed key is reported as not found", func() {
		req := testutil.WithParticipantKey(testutil.NewRequest(s.T(), http.MethodGet, "/reveal"), "garbage")
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}
