package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRoot()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeSchedule(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hours.yaml")
	body := `
friday:
  open: "10:00 PM"
  close: "2:00 AM"
saturday:
  open: "noon"
  close: "17:00"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write schedule: %v", err)
	}
	return path
}

func TestScheduleOpenCommand(t *testing.T) {
	path := writeSchedule(t)

	out, errOut, err := run(t, "schedule", "open", "-f", path, "--at", "2026-05-01T01:00:00Z")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "open at") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(errOut, "saturday.open") {
		t.Fatalf("expected malformed-time warning, got %q", errOut)
	}

	out, _, err = run(t, "schedule", "open", "-f", path, "--at", "2026-05-01T03:00:00Z")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "closed") || !strings.Contains(out, "opens 2026-05-01T22:00:00Z") {
		t.Fatalf("output = %q", out)
	}
}

func TestScheduleICSCommand(t *testing.T) {
	out, _, err := run(t, "schedule", "ics", "-f", writeSchedule(t), "--vendor", "v1", "--at", "2026-05-01T01:00:00Z")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "BEGIN:VCALENDAR") || strings.Count(out, "BEGIN:VEVENT") != 2 {
		t.Fatalf("output = %q", out)
	}
}

func TestPresenceCommand(t *testing.T) {
	out, _, err := run(t, "presence", "--at", "2026-05-01T12:00:00Z", "--last-active", "2026-05-01T11:50:00Z")
	if err != nil || strings.TrimSpace(out) != "live" {
		t.Fatalf("out = %q err = %v", out, err)
	}

	out, errOut, err := run(t, "presence", "--at", "2026-05-01T12:00:00Z", "--last-active", "yesterday")
	if err != nil || strings.TrimSpace(out) != "offline" {
		t.Fatalf("out = %q err = %v", out, err)
	}
	if !strings.Contains(errOut, "treating as missing") {
		t.Fatalf("stderr = %q", errOut)
	}

	out, _, _ = run(t, "presence", "--visible=false", "--at", "2026-05-01T12:00:00Z", "--last-active", "2026-05-01T11:59:00Z")
	if strings.TrimSpace(out) != "offline" {
		t.Fatalf("hidden vendor out = %q", out)
	}
}

func TestEventStatusCommand(t *testing.T) {
	out, _, err := run(t, "event-status", "PUBLISHED", "live", "whatever")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "PUBLISHED\tupcoming\nlive\tactive\nwhatever\tupcoming\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestScheduleOpenRequiresFile(t *testing.T) {
	if _, _, err := run(t, "schedule", "open"); err == nil {
		t.Fatalf("expected error without --file")
	}
}
