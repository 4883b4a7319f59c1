package model

import "strings"

const (
	BlockListBlock = "block"
	BlockListAllow = "allow"
)

// SiteWildcard in a block list's sites matches every domain.
const SiteWildcard = "*"

type BlockList struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Sites []string `json:"sites"`
	Type  string   `json:"type"`
}

// Matches reports whether domain matches one of the list's site patterns.
// A pattern matches the domain itself and any of its subdomains.
func (b BlockList) Matches(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, site := range b.Sites {
		site = strings.ToLower(strings.TrimSpace(site))
		if site == "" {
			continue
		}
		if site == SiteWildcard {
			return true
		}
		if domain == site || strings.HasSuffix(domain, "."+site) {
			return true
		}
	}
	return false
}

// Blocks applies the list's polarity: a block list blocks matching domains,
// an allow list blocks everything except matching domains.
func (b BlockList) Blocks(domain string) bool {
	if b.Type == BlockListAllow {
		return !b.Matches(domain)
	}
	return b.Matches(domain)
}
