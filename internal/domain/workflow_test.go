package domain

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to RequestStatus
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, true},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusPending, false},
		{StatusApproved, StatusApproved, true},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusRejected, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{RequestStatus("archived"), StatusApproved, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanCancel(t *testing.T) {
	if !CanCancel(StatusPending) || !CanCancel(StatusApproved) {
		t.Error("pending and approved requests must be cancellable")
	}
	for _, s := range []RequestStatus{StatusRejected, StatusCompleted, StatusCancelled} {
		if CanCancel(s) {
			t.Errorf("%s should not be cancellable", s)
		}
	}
}

func TestAdminSettable(t *testing.T) {
	if StatusCancelled.AdminSettable() {
		t.Error("cancelled is requester-only")
	}
	if !StatusCompleted.AdminSettable() {
		t.Error("completed should be admin-settable")
	}
}

func TestPatchApplyIsShallow(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	req := &MediaRequest{
		ID:           "r1",
		Organization: "Acme",
		Status:       StatusPending,
		MediaTypes:   []string{"photo"},
		CreatedAt:    created,
	}
	status := StatusApproved
	comments := "ok"
	now := created.Add(time.Hour)

	MediaRequestPatch{Status: &status, AdminComments: &comments}.Apply(req, now)

	if req.Status != StatusApproved {
		t.Errorf("expected approved, got %s", req.Status)
	}
	if req.AdminComments == nil || *req.AdminComments != "ok" {
		t.Errorf("expected comments ok, got %v", req.AdminComments)
	}
	if req.Organization != "Acme" || len(req.MediaTypes) != 1 {
		t.Error("untouched fields changed")
	}
	if req.CancelReason != nil || req.CancelledAt != nil {
		t.Error("nil patch fields must be left alone")
	}
	if !req.UpdatedAt.Equal(now) {
		t.Errorf("expected updatedAt %v, got %v", now, req.UpdatedAt)
	}
}

func TestCloneDoesNotShare(t *testing.T) {
	comments := "a"
	orig := &MediaRequest{MediaTypes: []string{"video"}, AdminComments: &comments}
	cp := orig.Clone()
	cp.MediaTypes[0] = "photo"
	*cp.AdminComments = "b"

	if orig.MediaTypes[0] != "video" || *orig.AdminComments != "a" {
		t.Error("clone shares memory with original")
	}
}
