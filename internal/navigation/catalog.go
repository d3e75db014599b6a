// Package navigation holds the fixed catalog of portal destinations and the
// rules that map a request path onto at most one of them.
package navigation

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTitle is the header title used when no entry matches the current path.
const DefaultTitle = "Dashboard"

var (
	ErrEmptyPath     = errors.New("navigation entry path is empty")
	ErrEmptyName     = errors.New("navigation entry name is empty")
	ErrDuplicatePath = errors.New("duplicate navigation entry path")
)

// Icon is a symbolic glyph reference; the view layer decides how to draw it.
type Icon string

const (
	IconHome       Icon = "home"
	IconUser       Icon = "user"
	IconTrendingUp Icon = "trending-up"
	IconBriefcase  Icon = "briefcase"
	IconMegaphone  Icon = "megaphone"
	IconClock      Icon = "clock"
	IconBell       Icon = "bell"
	IconCalendar   Icon = "calendar"
	IconCreditCard Icon = "credit-card"
)

// Entry is one navigable destination.
type Entry struct {
	Name string
	Icon Icon
	Path string
}

// Catalog is an ordered, immutable list of entries with unique paths.
// Order is display order.
type Catalog struct {
	entries []Entry
	byPath  map[string]int
}

// NewCatalog validates entries and freezes them into a Catalog.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byPath:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if e.Path == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyPath)
		}
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.Path, ErrEmptyName)
		}
		if prev, ok := c.byPath[e.Path]; ok {
			return nil, fmt.Errorf("entry %d and %d share %q: %w", prev, i, e.Path, ErrDuplicatePath)
		}
		c.byPath[e.Path] = i
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// MustCatalog is NewCatalog for package-level catalogs known to be valid.
func MustCatalog(entries ...Entry) *Catalog {
	c, err := NewCatalog(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// Entries returns a copy of the catalog in display order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Find returns the entry whose path equals path exactly.
func (c *Catalog) Find(path string) (Entry, bool) {
	i, ok := c.byPath[path]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Active resolves currentPath to the single active entry under policy.
// The returned index is the entry's display position, or -1.
func (c *Catalog) Active(currentPath string, policy MatchPolicy) (Entry, int, bool) {
	i := policy.match(c, currentPath)
	if i < 0 {
		return Entry{}, -1, false
	}
	return c.entries[i], i, true
}

// Title returns the active entry's name, or DefaultTitle.
func (c *Catalog) Title(currentPath string, policy MatchPolicy) string {
	if e, _, ok := c.Active(currentPath, policy); ok {
		return e.Name
	}
	return DefaultTitle
}

// Default is the employee portal catalog.
var Default = MustCatalog(
	Entry{Name: "Dashboard", Icon: IconHome, Path: "/employeedashboard"},
	Entry{Name: "Profile", Icon: IconUser, Path: "/profile"},
	Entry{Name: "Performance", Icon: IconTrendingUp, Path: "/performance"},
	Entry{Name: "Project Status", Icon: IconBriefcase, Path: "/project-status"},
	Entry{Name: "Announcements", Icon: IconMegaphone, Path: "/announcements"},
	Entry{Name: "Attendances", Icon: IconClock, Path: "/attendances"},
	Entry{Name: "Notifications", Icon: IconBell, Path: "/notifications"},
	Entry{Name: "Leave Management", Icon: IconCalendar, Path: "/leave-management"},
	Entry{Name: "Payroll", Icon: IconCreditCard, Path: "/payroll"},
)
