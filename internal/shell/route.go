// Package shell is the navigation and session frame around every
// authenticated portal page: the collapsible sidebar, the header title and
// the logout transition.
package shell

// RouteState is the shell's view of the current location. RequestNavigate
// is fire-and-forget; the shell never waits on its outcome.
type RouteState interface {
	CurrentPath() string
	RequestNavigate(path string)
}

// Recorder receives shell events for metrics.
type Recorder interface {
	SidebarToggled(collapsed bool)
	LoggedOut(err error)
	UnmatchedRoute(path string)
}

type nopRecorder struct{}

func (nopRecorder) SidebarToggled(bool)   {}
func (nopRecorder) LoggedOut(error)       {}
func (nopRecorder) UnmatchedRoute(string) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
