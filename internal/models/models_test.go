package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestChatHasParticipant(t *testing.T) {
	user := uuid.New()
	agent := uuid.New()
	chat := &Chat{UserID: user, AgentID: agent}

	if !chat.HasParticipant(user) {
		t.Error("user should be a participant")
	}
	if !chat.HasParticipant(agent) {
		t.Error("agent should be a participant")
	}
	if chat.HasParticipant(uuid.New()) {
		t.Error("stranger should not be a participant")
	}
}

func TestReviewValidation(t *testing.T) {
	valid := CarReview{
		CarID:  primitive.NewObjectID(),
		UserID: uuid.New(),
		Rating: 4,
	}
	if err := valid.ValidateReview(); err != nil {
		t.Errorf("expected valid review, got %v", err)
	}

	outOfRange := valid
	outOfRange.Rating = 6
	if err := outOfRange.ValidateReview(); err == nil {
		t.Error("rating above 5 should be rejected")
	}

	noUser := valid
	noUser.UserID = uuid.Nil
	if err := noUser.ValidateReview(); err == nil {
		t.Error("missing user should be rejected")
	}
}

func TestErrorWrappersMatchSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{NotFoundf("car %s", "abc"), ErrNotFound},
		{Validationf("bad input"), ErrValidation},
		{Forbiddenf("no access"), ErrForbidden},
		{Conflictf("already taken"), ErrConflict},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Errorf("%v should match %v", tc.err, tc.sentinel)
		}
	}
}
