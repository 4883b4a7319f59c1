package model

import "testing"

func TestBlockListMatches(t *testing.T) {
	list := BlockList{
		ID:    "bl1",
		Name:  "Social",
		Sites: []string{"twitter.com", "reddit.com"},
		Type:  BlockListBlock,
	}

	cases := []struct {
		domain string
		want   bool
	}{
		{"twitter.com", true},
		{"mobile.twitter.com", true},
		{"REDDIT.com", true},
		{"nottwitter.com", false},
		{"twitter.com.evil.example", false},
		{"example.org", false},
	}
	for _, tc := range cases {
		if got := list.Matches(tc.domain); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.domain, got, tc.want)
		}
	}
}

func TestBlockListWildcard(t *testing.T) {
	list := BlockList{Sites: []string{SiteWildcard}, Type: BlockListBlock}

	if !list.Matches("anything.example") {
		t.Fatal("wildcard must match every domain")
	}
	if !list.Blocks("anything.example") {
		t.Fatal("wildcard block list must block every domain")
	}
}

func TestAllowListInvertsPolarity(t *testing.T) {
	list := BlockList{Sites: []string{"docs.example.com"}, Type: BlockListAllow}

	if list.Blocks("docs.example.com") {
		t.Fatal("allow list must not block a listed domain")
	}
	if !list.Blocks("reddit.com") {
		t.Fatal("allow list must block everything unlisted")
	}
}

func TestFocusListValid(t *testing.T) {
	if !(FocusList{FocusMinutes: 25, BreakMinutes: 5}).Valid() {
		t.Fatal("positive durations must be valid")
	}
	if (FocusList{FocusMinutes: 0, BreakMinutes: 5}).Valid() {
		t.Fatal("zero focus duration must be invalid")
	}
	if (FocusList{FocusMinutes: 25, BreakMinutes: -1}).Valid() {
		t.Fatal("negative break duration must be invalid")
	}
}
