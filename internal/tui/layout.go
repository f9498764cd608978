// Package tui provides the terminal user interface for LexAI.
// This file contains layout-related constants and dimension calculation functions.
package tui

// Sidebar dimensions
const (
	// SidebarWidth is the default width of the open sidebar.
	SidebarWidth = 28

	// SidebarCollapsedWidth fits the menu icons only.
	SidebarCollapsedWidth = 8

	// SidebarMinWidth is the sidebar width used on narrow terminals.
	SidebarMinWidth = 20

	// NarrowTerminalThreshold is the terminal width below which the sidebar uses minimum width.
	NarrowTerminalThreshold = 80
)

// Layout offsets - these represent the space taken by fixed UI elements
const (
	// PanelGap is the gap between sidebar and content.
	PanelGap = 2

	// TopBarHeight is the title line plus its bottom border and margin.
	TopBarHeight = 3

	// HelpBarHeight is the help line plus its top margin.
	HelpBarHeight = 2
)

// sidebarWidth returns the effective sidebar width for a terminal width.
func sidebarWidth(termWidth, configured int, open bool) int {
	if !open {
		return SidebarCollapsedWidth
	}
	if configured <= 0 {
		configured = SidebarWidth
	}
	if termWidth < NarrowTerminalThreshold && configured > SidebarMinWidth {
		return SidebarMinWidth
	}
	return configured
}

// contentDimensions returns the area left for the current screen.
func contentDimensions(termWidth, termHeight, sidebar int) (width, height int) {
	width = termWidth - sidebar - PanelGap
	height = termHeight - TopBarHeight - HelpBarHeight
	if width < 10 {
		width = 10
	}
	if height < 3 {
		height = 3
	}
	return width, height
}
