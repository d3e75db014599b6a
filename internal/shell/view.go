package shell

import (
	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	"maragu.dev/gomponents/html"
)

const (
	ToggleAction = "/shell/sidebar/toggle"
	LogoutAction = "/logout"
	CSRFField    = "csrf_token"
	FromField    = "from"
)

// Controls carries per-request values the HTML needs but the views don't
// derive themselves.
type Controls struct {
	Brand      string // default "HR Portal"
	CSRFToken  string
	Stylesheet string // default "/static/css/portal.css"
}

func (ctl Controls) brand() string {
	if ctl.Brand == "" {
		return "HR Portal"
	}
	return ctl.Brand
}

func (ctl Controls) stylesheet() string {
	if ctl.Stylesheet == "" {
		return "/static/css/portal.css"
	}
	return ctl.Stylesheet
}

// Node renders the sidebar. The brand is shown only while expanded, and the
// toggle shows a close glyph when expanded and a menu glyph when collapsed.
func (v SidebarView) Node(ctl Controls) g.Node {
	toggleIcon, toggleLabel := iconClose, "Collapse sidebar"
	if v.Collapsed {
		toggleIcon, toggleLabel = iconMenu, "Expand sidebar"
	}

	return html.Aside(
		c.Classes{
			"sidebar":            true,
			string(v.Width()):    true,
			"sidebar--collapsed": v.Collapsed,
		},
		html.Div(html.Class("sidebar-top"),
			g.If(!v.Collapsed, html.Span(html.Class("brand"), g.Text(ctl.brand()))),
			html.Form(html.Method("post"), html.Action(ToggleAction), html.Class("sidebar-toggle"),
				csrfInput(ctl.CSRFToken),
				html.Input(html.Type("hidden"), html.Name(FromField), html.Value(v.CurrentPath)),
				html.Button(html.Type("submit"), html.Aria("label", toggleLabel), Icon(toggleIcon, 24)),
			),
		),
		html.Nav(html.Class("sidebar-nav"),
			g.Map(v.Rows, rowNode),
		),
		html.Form(html.Method("post"), html.Action(LogoutAction), html.Class("sidebar-logout"),
			csrfInput(ctl.CSRFToken),
			html.Button(html.Type("submit"),
				Icon(iconLogOut, 20),
				g.If(!v.Collapsed, html.Span(html.Class("nav-label"), g.Text("Logout"))),
				g.If(v.Collapsed, html.Aria("label", "Logout")),
			),
		),
	)
}

func rowNode(r SidebarRow) g.Node {
	return html.A(
		html.Href(r.Path),
		c.Classes{"nav-item": true, "active": r.Selected},
		g.If(r.Selected, html.Aria("current", "page")),
		g.If(!r.ShowLabel, html.Aria("label", string(r.Icon))),
		Icon(r.Icon, 20),
		g.If(r.ShowLabel, html.Span(html.Class("nav-label"), g.Text(r.Name))),
	)
}

func csrfInput(token string) g.Node {
	return html.Input(html.Type("hidden"), html.Name(CSRFField), html.Value(token))
}

// Node renders the full document for the frame.
func (v FrameView) Node(ctl Controls) g.Node {
	return c.HTML5(c.HTML5Props{
		Title:    v.Title + " | " + ctl.brand(),
		Language: "en",
		Head: []g.Node{
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.Link(html.Rel("stylesheet"), html.Href(ctl.stylesheet())),
		},
		Body: []g.Node{
			html.Div(html.Class("shell"),
				v.Sidebar.Node(ctl),
				html.Div(html.Class("shell-main"),
					html.Header(html.Class("shell-header"),
						html.H1(g.Text(v.Title)),
					),
					html.Main(html.Class("shell-content"), v.Content),
				),
			),
		},
	})
}
