package dto

import "strings"

// NavItem is one sidebar link.
type NavItem struct {
	Href   string
	Label  string
	Active bool
}

var navLinks = []struct {
	href    string
	labelID string
}{
	{href: "/dashboard", labelID: "nav_dashboard"},
	{href: "/tickets", labelID: "nav_tickets"},
}

// NewNav builds the sidebar for path. An item is active when path starts with
// its href, so ticket detail pages keep Tickets highlighted.
func NewNav(path string, label func(id string) string) []NavItem {
	items := make([]NavItem, 0, len(navLinks))
	for _, link := range navLinks {
		items = append(items, NavItem{
			Href:   link.href,
			Label:  label(link.labelID),
			Active: strings.HasPrefix(path, link.href),
		})
	}
	return items
}
