package model

// Built-in lists seeded on first run, when the storage keys are absent.
// A storage read error never falls back to these.

func DefaultBlockLists() []BlockList {
	return []BlockList{
		{ID: "bl1", Name: "Social Media", Sites: []string{"twitter.com", "facebook.com", "instagram.com", "reddit.com"}, Type: BlockListBlock},
		{ID: "bl2", Name: "News & Entertainment", Sites: []string{"youtube.com", "netflix.com", "cnn.com"}, Type: BlockListBlock},
		{ID: "bl3", Name: "Block Everything", Sites: []string{SiteWildcard}, Type: BlockListBlock},
	}
}

func DefaultFocusLists() []FocusList {
	return []FocusList{
		{ID: "fl1", Name: "Study 45 min", FocusMinutes: 45, BreakMinutes: 10, BlockListID: "bl1"},
		{ID: "fl2", Name: "Deep Work 60 min", FocusMinutes: 60, BreakMinutes: 15, BlockListID: "bl2"},
		{ID: "fl3", Name: "Quick Read 25/5", FocusMinutes: 25, BreakMinutes: 5, BlockListID: "bl1"},
		{ID: "fl4", Name: "Light Work", FocusMinutes: 30, BreakMinutes: 5, BlockListID: "bl1"},
	}
}
