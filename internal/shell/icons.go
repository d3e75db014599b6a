package shell

import (
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"hr_portal/internal/navigation"
)

// Glyphs used by the shell chrome itself.
const (
	iconLogOut navigation.Icon = "log-out"
	iconMenu   navigation.Icon = "menu"
	iconClose  navigation.Icon = "x"
)

// Stroke outlines on a 24x24 grid.
var glyphs = map[navigation.Icon]string{
	navigation.IconHome:       `<path d="M3 9l9-7 9 7v11a2 2 0 0 1-2 2H5a2 2 0 0 1-2-2z"/><polyline points="9 22 9 12 15 12 15 22"/>`,
	navigation.IconUser:       `<path d="M20 21v-2a4 4 0 0 0-4-4H8a4 4 0 0 0-4 4v2"/><circle cx="12" cy="7" r="4"/>`,
	navigation.IconTrendingUp: `<polyline points="23 6 13.5 15.5 8.5 10.5 1 18"/><polyline points="17 6 23 6 23 12"/>`,
	navigation.IconBriefcase:  `<rect x="2" y="7" width="20" height="14" rx="2" ry="2"/><path d="M16 21V5a2 2 0 0 0-2-2h-4a2 2 0 0 0-2 2v16"/>`,
	navigation.IconMegaphone:  `<path d="M3 11v2a1 1 0 0 0 1 1h2l7 5V5L6 10H4a1 1 0 0 0-1 1z"/><path d="M17 8a5 5 0 0 1 0 8"/>`,
	navigation.IconClock:      `<circle cx="12" cy="12" r="10"/><polyline points="12 6 12 12 16 14"/>`,
	navigation.IconBell:       `<path d="M18 8A6 6 0 0 0 6 8c0 7-3 9-3 9h18s-3-2-3-9"/><path d="M13.73 21a2 2 0 0 1-3.46 0"/>`,
	navigation.IconCalendar:   `<rect x="3" y="4" width="18" height="18" rx="2" ry="2"/><line x1="16" y1="2" x2="16" y2="6"/><line x1="8" y1="2" x2="8" y2="6"/><line x1="3" y1="10" x2="21" y2="10"/>`,
	navigation.IconCreditCard: `<rect x="1" y="4" width="22" height="16" rx="2" ry="2"/><line x1="1" y1="10" x2="23" y2="10"/>`,
	iconLogOut:                `<path d="M9 21H5a2 2 0 0 1-2-2V5a2 2 0 0 1 2-2h4"/><polyline points="16 17 21 12 16 7"/><line x1="21" y1="12" x2="9" y2="12"/>`,
	iconMenu:                  `<line x1="3" y1="12" x2="21" y2="12"/><line x1="3" y1="6" x2="21" y2="6"/><line x1="3" y1="18" x2="21" y2="18"/>`,
	iconClose:                 `<line x1="18" y1="6" x2="6" y2="18"/><line x1="6" y1="6" x2="18" y2="18"/>`,
}

// Icon renders a glyph wrapped in a span tagged with its name. Unknown
// names render the empty wrapper.
func Icon(name navigation.Icon, size int) g.Node {
	px := strconv.Itoa(size)
	return html.Span(
		html.Class("icon"),
		html.Data("icon", string(name)),
		html.Aria("hidden", "true"),
		g.If(glyphs[name] != "",
			g.El("svg",
				g.Attr("xmlns", "http://www.w3.org/2000/svg"),
				g.Attr("viewBox", "0 0 24 24"),
				g.Attr("width", px),
				g.Attr("height", px),
				g.Attr("fill", "none"),
				g.Attr("stroke", "currentColor"),
				g.Attr("stroke-width", "2"),
				g.Attr("stroke-linecap", "round"),
				g.Attr("stroke-linejoin", "round"),
				g.Raw(glyphs[name]),
			),
		),
	)
}
