package widgets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	"maragu.dev/gomponents/html"
)

const dateLayout = "Mon, 02 Jan 2006"

func panel(title string, children ...g.Node) g.Node {
	return html.Section(html.Class("panel"),
		html.H2(html.Class("panel-title"), g.Text(title)),
		g.Group(children),
	)
}

// TimeCard shows a clock time with its action. The action is display only.
func TimeCard(label, clock, actionLabel string) g.Node {
	return html.Div(html.Class("card time-card"),
		html.P(html.Class("card-label"), g.Text(label)),
		html.P(html.Class("card-value"), g.Text(clock)),
		html.Button(html.Type("button"), html.Class("card-action"), html.Disabled(), g.Text(actionLabel)),
	)
}

func AttendanceStat(title string, value int) g.Node {
	return attendanceStat(Stat{Title: title, Value: value})
}

func attendanceStat(s Stat) g.Node {
	return html.Div(html.Class("card stat-card"),
		html.P(html.Class("card-label"), g.Text(s.Title)),
		html.P(html.Class("card-value"), g.Text(strconv.Itoa(s.Value)+s.Suffix)),
	)
}

const (
	chartWidth  = 300
	chartHeight = 120
)

// PerformanceChart draws the series as a line scaled to its own maximum.
func PerformanceChart(points []Point) g.Node {
	return panel("Performance",
		g.If(len(points) == 0, emptyNote("No performance data yet.")),
		g.If(len(points) > 0, svg("performance-chart", "Performance trend",
			g.El("polyline",
				g.Attr("fill", "none"),
				g.Attr("stroke", "currentColor"),
				g.Attr("stroke-width", "2"),
				g.Attr("points", polyline(points)),
			),
		)),
		axisLabels(points),
	)
}

// AttendanceChart draws one bar per point scaled to the series maximum.
func AttendanceChart(points []Point) g.Node {
	return panel("Attendance",
		g.If(len(points) == 0, emptyNote("No attendance recorded yet.")),
		g.If(len(points) > 0, svg("attendance-chart", "Hours worked per day", bars(points))),
		axisLabels(points),
	)
}

func svg(class, label string, children ...g.Node) g.Node {
	return g.El("svg",
		html.Class("chart "+class),
		g.Attr("viewBox", fmt.Sprintf("0 0 %d %d", chartWidth, chartHeight)),
		g.Attr("role", "img"),
		html.Aria("label", label),
		g.Group(children),
	)
}

func maxValue(points []Point) float64 {
	m := 0.0
	for _, p := range points {
		if p.Value > m {
			m = p.Value
		}
	}
	if m == 0 {
		return 1
	}
	return m
}

func polyline(points []Point) string {
	top := maxValue(points)
	step := 0.0
	if len(points) > 1 {
		step = float64(chartWidth) / float64(len(points)-1)
	}

	coords := make([]string, len(points))
	for i, p := range points {
		x := step * float64(i)
		y := chartHeight - (p.Value/top)*chartHeight
		coords[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return strings.Join(coords, " ")
}

func bars(points []Point) g.Node {
	top := maxValue(points)
	slot := float64(chartWidth) / float64(len(points))

	nodes := make([]g.Node, len(points))
	for i, p := range points {
		h := (p.Value / top) * chartHeight
		nodes[i] = g.El("rect",
			g.Attr("x", fmt.Sprintf("%.1f", slot*float64(i)+slot*0.2)),
			g.Attr("y", fmt.Sprintf("%.1f", chartHeight-h)),
			g.Attr("width", fmt.Sprintf("%.1f", slot*0.6)),
			g.Attr("height", fmt.Sprintf("%.1f", h)),
			g.Attr("fill", "currentColor"),
			g.El("title", g.Textf("%s: %g", p.Label, p.Value)),
		)
	}
	return g.Group(nodes)
}

func axisLabels(points []Point) g.Node {
	return html.Ul(html.Class("chart-axis"),
		g.Map(points, func(p Point) g.Node { return html.Li(g.Text(p.Label)) }),
	)
}

func emptyNote(text string) g.Node {
	return html.P(html.Class("empty"), g.Text(text))
}

func Announcements(items []Announcement) g.Node {
	return panel("Announcements",
		g.If(len(items) == 0, emptyNote("No announcements.")),
		html.Ul(html.Class("list"),
			g.Map(items, func(a Announcement) g.Node {
				return html.Li(
					html.Strong(g.Text(a.Title)),
					html.P(g.Text(a.Body)),
					html.Time(g.Attr("datetime", a.PostedOn.Format(time.DateOnly)), g.Text(a.PostedOn.Format(dateLayout))),
				)
			}),
		),
	)
}

func UpcomingHolidays(items []Holiday) g.Node {
	return panel("Upcoming Holidays",
		g.If(len(items) == 0, emptyNote("No upcoming holidays.")),
		html.Ul(html.Class("list"),
			g.Map(items, func(h Holiday) g.Node {
				return html.Li(
					html.Span(g.Text(h.Name)),
					html.Time(g.Attr("datetime", h.Date.Format(time.DateOnly)), g.Text(h.Date.Format(dateLayout))),
				)
			}),
		),
	)
}

func LeaveRequests(items []LeaveRequest) g.Node {
	return panel("Leave Requests",
		g.If(len(items) == 0, emptyNote("No leave requests.")),
		html.Ul(html.Class("list"),
			g.Map(items, func(l LeaveRequest) g.Node {
				return html.Li(
					html.Span(g.Text(l.Type)),
					html.Span(g.Text(l.From.Format("02 Jan")+" - "+l.To.Format("02 Jan"))),
					html.Span(c.Classes{"badge": true, "badge-" + l.Status: l.Status != ""}, g.Text(l.Status)),
				)
			}),
		),
	)
}

// Dashboard composes every panel.
func Dashboard(d DashboardData) g.Node {
	return html.Div(html.Class("dashboard"),
		html.Div(html.Class("dashboard-greeting"),
			html.H2(g.Text(d.Greeting)),
			html.P(g.Text(d.Today.Format("Monday, 02 January 2006"))),
		),
		html.Div(html.Class("grid grid-4"),
			TimeCard(d.TimeIn.Label, d.TimeIn.Time, d.TimeIn.ActionLabel),
			TimeCard(d.TimeOut.Label, d.TimeOut.Time, d.TimeOut.ActionLabel),
			g.Map(d.Stats, attendanceStat),
		),
		html.Div(html.Class("grid grid-2"),
			PerformanceChart(d.Performance),
			AttendanceChart(d.Attendance),
		),
		html.Div(html.Class("grid grid-3"),
			Announcements(d.Announcements),
			UpcomingHolidays(d.Holidays),
			LeaveRequests(d.Leaves),
		),
	)
}

// Placeholder is the content of destinations without a page of their own yet.
func Placeholder(title string) g.Node {
	return panel(title, emptyNote("This section is coming soon."))
}

// NotFound is the content for paths outside the catalog.
func NotFound(path string) g.Node {
	return panel("Page not found",
		html.P(g.Textf("Nothing lives at %s.", path)),
		html.A(html.Href("/employeedashboard"), g.Text("Back to the dashboard")),
	)
}
