package shell

import (
	g "maragu.dev/gomponents"

	"hr_portal/internal/navigation"
)

// Width is a sidebar width tier, expressed as the layout class.
type Width string

const (
	WidthExpanded  Width = "w-64"
	WidthCollapsed Width = "w-20"
)

func widthFor(collapsed bool) Width {
	if collapsed {
		return WidthCollapsed
	}
	return WidthExpanded
}

// Frame composes the sidebar, the header title and page content.
type Frame struct {
	catalog *navigation.Catalog
	policy  navigation.MatchPolicy
}

func NewFrame(catalog *navigation.Catalog, policy navigation.MatchPolicy) *Frame {
	if catalog == nil {
		catalog = navigation.Default
	}
	return &Frame{catalog: catalog, policy: policy}
}

// FrameView is a rendered frame. Content is carried through untouched.
type FrameView struct {
	Sidebar SidebarView
	Title   string
	Width   Width
	Content g.Node
}

func (f *Frame) Render(currentPath string, collapsed bool, content g.Node) FrameView {
	return FrameView{
		Sidebar: RenderSidebar(currentPath, f.catalog, collapsed, f.policy),
		Title:   f.catalog.Title(currentPath, f.policy),
		Width:   widthFor(collapsed),
		Content: content,
	}
}
