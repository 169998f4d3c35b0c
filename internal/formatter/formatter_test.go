package formatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/srmq/playvault/internal/tasks"
)

func TestRenderRunReport(t *testing.T) {
	result := &tasks.RunResult{
		Date: "2026-03-14",
		Zone: "America/Recife",
		Outcomes: []tasks.UserOutcome{
			{Email: "a@example.com", FullName: "User A", Events: 12, NewUser: true},
			{Email: "b@example.com", FullName: "User B", Err: errors.New("token revoked"), ErrText: "token revoked"},
		},
		Synced: 1,
		Failed: 1,
		Events: 12,
	}

	out := RenderRunReport(result)

	for _, want := range []string{
		"2026-03-14",
		"America/Recife",
		"a@example.com",
		"12 events",
		"new user",
		"b@example.com",
		"token revoked",
		"Users synced: 1, failed: 1",
		"Events ingested: 12",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderUserList(t *testing.T) {
	out := RenderUserList(
		[]string{"a@example.com", "b@example.com"},
		[]string{"User A", "User B"},
	)

	if !strings.Contains(out, "Registered users: 2") {
		t.Errorf("expected user count header, got:\n%s", out)
	}
	if !strings.Contains(out, "1. User A <a@example.com>") {
		t.Errorf("expected numbered entry, got:\n%s", out)
	}
}
