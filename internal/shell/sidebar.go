package shell

import (
	"sync"

	"hr_portal/internal/navigation"
)

// SidebarController owns the collapse state of one shell instance.
type SidebarController struct {
	mu        sync.Mutex
	collapsed bool

	catalog  *navigation.Catalog
	policy   navigation.MatchPolicy
	recorder Recorder
}

// NewSidebarController returns an expanded sidebar over catalog.
func NewSidebarController(catalog *navigation.Catalog, policy navigation.MatchPolicy, recorder Recorder) *SidebarController {
	if catalog == nil {
		catalog = navigation.Default
	}
	return &SidebarController{
		catalog:  catalog,
		policy:   policy,
		recorder: recorderOrNop(recorder),
	}
}

// Toggle flips between expanded and collapsed.
func (sc *SidebarController) Toggle() {
	sc.mu.Lock()
	sc.collapsed = !sc.collapsed
	collapsed := sc.collapsed
	sc.mu.Unlock()

	sc.recorder.SidebarToggled(collapsed)
}

func (sc *SidebarController) Collapsed() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.collapsed
}

// Render derives the sidebar for currentPath from the current state.
func (sc *SidebarController) Render(currentPath string) SidebarView {
	return RenderSidebar(currentPath, sc.catalog, sc.Collapsed(), sc.policy)
}

// Select asks the router to move to entry's path and returns immediately.
func (sc *SidebarController) Select(route RouteState, entry navigation.Entry) {
	route.RequestNavigate(entry.Path)
}

// SidebarRow is one rendered navigation row.
type SidebarRow struct {
	Name      string
	Icon      navigation.Icon
	Path      string
	ShowLabel bool
	Selected  bool
}

// SidebarView is the pure rendering of the sidebar for one path.
type SidebarView struct {
	CurrentPath string
	Collapsed   bool
	Rows        []SidebarRow
}

// RenderSidebar produces one row per catalog entry in catalog order. At most
// one row is selected; an unmatched path selects none.
func RenderSidebar(currentPath string, catalog *navigation.Catalog, collapsed bool, policy navigation.MatchPolicy) SidebarView {
	_, active, _ := catalog.Active(currentPath, policy)

	entries := catalog.Entries()
	rows := make([]SidebarRow, len(entries))
	for i, e := range entries {
		rows[i] = SidebarRow{
			Name:      e.Name,
			Icon:      e.Icon,
			Path:      e.Path,
			ShowLabel: !collapsed,
			Selected:  i == active,
		}
	}

	return SidebarView{CurrentPath: currentPath, Collapsed: collapsed, Rows: rows}
}

// Selected returns the index of the selected row, or -1.
func (v SidebarView) Selected() int {
	for i, r := range v.Rows {
		if r.Selected {
			return i
		}
	}
	return -1
}

// Width is the sidebar width tier.
func (v SidebarView) Width() Width {
	return widthFor(v.Collapsed)
}
