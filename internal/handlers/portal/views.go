package portal

import (
	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	"maragu.dev/gomponents/html"

	"hr_portal/internal/shell"
)

type loginView struct {
	Brand      string
	Stylesheet string
	CSRFToken  string
	Login      string
	Error      string
}

func loginPage(v loginView) g.Node {
	return c.HTML5(c.HTML5Props{
		Title:    "Sign in | " + v.Brand,
		Language: "en",
		Head: []g.Node{
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.Link(html.Rel("stylesheet"), html.Href(v.Stylesheet)),
		},
		Body: []g.Node{
			html.Main(html.Class("login"),
				html.Form(html.Method("post"), html.Action(shell.LoginPath), html.Class("login-card"),
					html.H1(g.Text(v.Brand)),
					html.P(html.Class("login-subtitle"), g.Text("Sign in to continue")),
					g.If(v.Error != "", html.P(html.Class("login-error"), html.Role("alert"), g.Text(v.Error))),
					html.Input(html.Type("hidden"), html.Name(shell.CSRFField), html.Value(v.CSRFToken)),
					html.Label(html.For(loginField), g.Text("Username or email")),
					html.Input(html.Type("text"), html.ID(loginField), html.Name(loginField),
						html.Value(v.Login), html.AutoComplete("username"), html.Required()),
					html.Label(html.For(passwordField), g.Text("Password")),
					html.Input(html.Type("password"), html.ID(passwordField), html.Name(passwordField),
						html.AutoComplete("current-password"), html.Required()),
					html.Button(html.Type("submit"), g.Text("Sign in")),
				),
			),
		},
	})
}
