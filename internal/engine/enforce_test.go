package engine

import (
	"errors"
	"testing"
)

func TestTracker_MaxDepth(t *testing.T) {
	tr := NewTracker(EnforceOptions{MaxDepth: 2})
	if err := tr.EnterObject(""); err != nil {
		t.Fatalf("root: %v", err)
	}
	if err := tr.EnterArray("/a"); err != nil {
		t.Fatalf("level 2: %v", err)
	}
	err := tr.EnterObject("/a/0")
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "too_deep" || ie.Path != "/a/0" {
		t.Fatalf("expected too_deep at /a/0, got %v", err)
	}
	if tr.Depth() != 2 {
		t.Fatalf("failed enter must not push, depth=%d", tr.Depth())
	}
	tr.Leave()
	tr.Leave()
	tr.Leave() // extra Leave is a no-op
	if tr.Depth() != 0 {
		t.Fatalf("expected empty stack, depth=%d", tr.Depth())
	}
}

func TestTracker_Duplicates(t *testing.T) {
	var warned []SimpleIssue
	cases := []struct {
		name    string
		policy  DuplicateStrictness
		wantErr bool
		warns   int
	}{
		{"ignore", DupIgnore, false, 0},
		{"warn", DupWarn, false, 1},
		{"error", DupError, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			warned = nil
			tr := NewTracker(EnforceOptions{OnDuplicate: tc.policy, IssueSink: func(si SimpleIssue) { warned = append(warned, si) }})
			_ = tr.EnterObject("")
			_ = tr.EnterObject("/x")
			if err := tr.Key("k"); err != nil {
				t.Fatalf("first key: %v", err)
			}
			err := tr.Key("k")
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
			if len(warned) != tc.warns {
				t.Fatalf("expected %d warnings, got %v", tc.warns, warned)
			}
			if err != nil && err.(IssueError).Path != "/x/k" {
				t.Fatalf("expected path /x/k, got %v", err)
			}
		})
	}
}

func TestTracker_KeysAreScopedPerLevel(t *testing.T) {
	tr := NewTracker(EnforceOptions{OnDuplicate: DupError})
	_ = tr.EnterObject("")
	if err := tr.Key("a"); err != nil {
		t.Fatalf("key: %v", err)
	}
	_ = tr.EnterObject("/a")
	if err := tr.Key("a"); err != nil {
		t.Fatalf("same key in child level must pass: %v", err)
	}
	tr.Leave()
	if err := tr.Key("a"); err == nil {
		t.Fatalf("duplicate in parent must fail after leaving child")
	}
}

func TestTracker_ArrayIgnoresKeys(t *testing.T) {
	tr := NewTracker(EnforceOptions{OnDuplicate: DupError})
	_ = tr.EnterArray("")
	if err := tr.Key("0"); err != nil {
		t.Fatalf("key: %v", err)
	}
	if err := tr.Key("0"); err != nil {
		t.Fatalf("array levels do not track keys: %v", err)
	}
}

func TestTracker_Paths(t *testing.T) {
	tr := NewTracker(EnforceOptions{})
	if p := tr.Path("a"); p != "/a" {
		t.Fatalf("got %s", p)
	}
	if p := tr.LevelPath(); p != "" {
		t.Fatalf("got %q", p)
	}
	_ = tr.EnterObject("")
	_ = tr.EnterObject(tr.Path("a/b"))
	if p := tr.LevelPath(); p != "/a~1b" {
		t.Fatalf("got %s", p)
	}
	if p := tr.Path("~x"); p != "/a~1b/~0x" {
		t.Fatalf("got %s", p)
	}
	if NormalizePath("") != "/" || NormalizePath("/q") != "/q" {
		t.Fatalf("NormalizePath mismatch")
	}
}
