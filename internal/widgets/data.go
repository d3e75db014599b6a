// Package widgets renders the dashboard panels. Every renderer is a pure
// function of the data handed to it.
package widgets

import "time"

// TimeEntry is a clock-in or clock-out card.
type TimeEntry struct {
	Label       string
	Time        string
	ActionLabel string
}

// Stat is a single attendance figure. Suffix is appended to the value ("%").
type Stat struct {
	Title  string
	Value  int
	Suffix string
}

// Point is one labelled value of a chart series.
type Point struct {
	Label string
	Value float64
}

type Announcement struct {
	Title    string
	Body     string
	PostedOn time.Time
}

type Holiday struct {
	Name string
	Date time.Time
}

type LeaveRequest struct {
	Type   string
	From   time.Time
	To     time.Time
	Status string // pending, approved, rejected
}

// DashboardData is everything the dashboard page shows.
type DashboardData struct {
	Greeting      string
	Today         time.Time
	TimeIn        TimeEntry
	TimeOut       TimeEntry
	Stats         []Stat
	Performance   []Point
	Attendance    []Point
	Announcements []Announcement
	Holidays      []Holiday
	Leaves        []LeaveRequest
}

// SampleDashboard returns built-in demo content dated relative to now.
func SampleDashboard(now time.Time) DashboardData {
	day := func(offset int) time.Time {
		y, m, d := now.Date()
		return time.Date(y, m, d+offset, 0, 0, 0, 0, now.Location())
	}

	return DashboardData{
		Greeting: "Welcome back",
		Today:    now,
		TimeIn:   TimeEntry{Label: "Time In", Time: "9:00 AM", ActionLabel: "Clock in"},
		TimeOut:  TimeEntry{Label: "Time Out", Time: "7:00 PM", ActionLabel: "Clock out"},
		Stats: []Stat{
			{Title: "Total Attendance", Value: 80},
			{Title: "On Time %", Value: 95, Suffix: "%"},
		},
		Performance: []Point{
			{"Jan", 62}, {"Feb", 70}, {"Mar", 68}, {"Apr", 75}, {"May", 81}, {"Jun", 86},
		},
		Attendance: []Point{
			{"Mon", 9}, {"Tue", 8.5}, {"Wed", 9.5}, {"Thu", 8}, {"Fri", 9},
		},
		Announcements: []Announcement{
			{Title: "Quarterly town hall", Body: "Join the all-hands in the main auditorium.", PostedOn: day(-1)},
			{Title: "New leave policy", Body: "The revised leave policy takes effect next month.", PostedOn: day(-4)},
			{Title: "Wellness week", Body: "Sign up for sessions at the front desk.", PostedOn: day(-7)},
		},
		Holidays: []Holiday{
			{Name: "Founders' Day", Date: day(12)},
			{Name: "Harvest Festival", Date: day(30)},
			{Name: "Year End", Date: day(58)},
		},
		Leaves: []LeaveRequest{
			{Type: "Casual", From: day(5), To: day(6), Status: "pending"},
			{Type: "Sick", From: day(-20), To: day(-19), Status: "approved"},
			{Type: "Earned", From: day(-45), To: day(-41), Status: "rejected"},
		},
	}
}
