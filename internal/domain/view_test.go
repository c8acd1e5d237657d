package domain

import "testing"

func TestIsValidSlugFormat(t *testing.T) {
	valid := []string{"a", "my-threads", "view-2", "a1-b2-c3"}
	for _, s := range valid {
		if !IsValidSlugFormat(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []string{"", "My-Threads", "-leading", "trailing-", "double--hyphen", "with space", "under_score"}
	for _, s := range invalid {
		if IsValidSlugFormat(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestIsReservedSlug(t *testing.T) {
	for _, s := range []string{"yourturn", "theirturn", "archived", "queued", "legacy", "threads"} {
		if !IsReservedSlug(s) {
			t.Errorf("expected %q to be reserved", s)
		}
	}
	if IsReservedSlug("my-threads") {
		t.Error("my-threads should not be reserved")
	}
}

func TestTurnFilter_IsValid(t *testing.T) {
	if (TurnFilter{}).IsValid() {
		t.Error("all-false filter should be invalid")
	}
	if !(TurnFilter{IncludeArchived: true}).IsValid() {
		t.Error("archived-only filter should be valid")
	}
	if !(TurnFilter{IncludeQueued: true}).IsValid() {
		t.Error("queued-only filter should be valid")
	}
}

func TestTurnFilter_IncludesActive(t *testing.T) {
	if (TurnFilter{IncludeArchived: true}).IncludesActive() {
		t.Error("archived-only filter should not include active threads")
	}
	if !(TurnFilter{IncludeMyTurn: true}).IncludesActive() {
		t.Error("my-turn filter should include active threads")
	}
}

func TestThread_HasAnyTag(t *testing.T) {
	th := &Thread{Tags: []ThreadTag{{Text: "Angst"}, {Text: "fluff"}}}

	if !th.HasAnyTag([]string{"fluff", "other"}) {
		t.Error("expected match on fluff")
	}
	// Case-sensitive by design.
	if th.HasAnyTag([]string{"angst"}) {
		t.Error("tag intersection must be case-sensitive")
	}
	if th.HasAnyTag(nil) {
		t.Error("empty want-set matches nothing at the thread level")
	}
}
