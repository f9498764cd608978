package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/lexai-app/lexai/internal/router"
	"github.com/lexai-app/lexai/internal/tui/styles"
	"github.com/lexai-app/lexai/internal/util"
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.phase {
	case phaseLoading:
		return m.renderLoading()
	case phaseAuth:
		return m.auth.View(m.width, m.height)
	}

	sw := sidebarWidth(m.width, m.sidebarWidth, m.sidebarOpen)
	cw, ch := contentDimensions(m.width, m.height, sw)
	mainHeight := max(m.height, 1)

	sidebar := m.renderSidebar(sw, mainHeight)

	var main strings.Builder
	main.WriteString(m.renderTopBar(cw))
	main.WriteString("\n")
	content := ""
	if m.screen != nil {
		content = m.screen.View(cw, ch)
	}
	main.WriteString(lipgloss.NewStyle().
		Width(cw).
		Height(ch).
		MaxHeight(ch).
		Render(content))
	main.WriteString("\n")
	main.WriteString(m.renderHelp(cw))

	mainStyled := lipgloss.NewStyle().MaxHeight(mainHeight).Render(main.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, strings.Repeat(" ", PanelGap), mainStyled)
}

func (m Model) renderLoading() string {
	text := m.spinner.View() + " " + styles.Muted.Render("Cargando LexAI...")
	if m.width == 0 || m.height == 0 {
		return text
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, text)
}

// renderSidebar renders the navigation menu, the signed-in user and the
// logout entry. Collapsed, only the icons are shown.
func (m Model) renderSidebar(width, height int) string {
	style := styles.Sidebar
	if m.focusSidebar {
		style = styles.SidebarFocused
	}
	collapsed := !m.sidebarOpen
	inner := max(width-style.GetHorizontalFrameSize(), 1)

	var b strings.Builder
	if collapsed {
		b.WriteString(styles.SidebarTitle.Render("⚖"))
	} else {
		b.WriteString(styles.SidebarTitle.Render("⚖ LexAI"))
	}
	b.WriteString("\n")

	current := m.router.Current()
	for i, item := range router.MenuItems() {
		label := item.Icon
		if !collapsed {
			label = util.TruncateANSI(item.Icon+" "+item.Label, inner-2)
		}
		b.WriteString(m.sidebarRow(i, label, item.View == current))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if !collapsed {
		if s := m.shell.Current(); s != nil {
			b.WriteString(styles.SidebarUser.Render(util.TruncateANSI(s.User.Name, inner)))
			b.WriteString("\n")
			b.WriteString(styles.Muted.Render(util.TruncateANSI(s.User.Organization, inner)))
			b.WriteString("\n\n")
		}
	}

	logout := "🚪"
	if !collapsed {
		logout = "🚪 Cerrar Sesión"
	}
	b.WriteString(m.sidebarRow(logoutIndex, logout, false))

	return style.
		Width(width - style.GetHorizontalBorderSize()).
		Height(max(height-style.GetVerticalBorderSize(), 1)).
		MaxHeight(height).
		Render(b.String())
}

func (m Model) sidebarRow(i int, label string, active bool) string {
	switch {
	case active:
		return styles.SidebarItemActive.Render(label)
	case m.focusSidebar && m.menuCursor == i:
		return styles.SidebarItemCursor.Render("› " + label)
	default:
		return styles.SidebarItem.Render(label)
	}
}

// renderTopBar renders the menu toggle and the page title.
func (m Model) renderTopBar(width int) string {
	return styles.Header.Width(width).Render("☰  " + router.Title(m.router.Current()))
}

// renderHelp renders the key hints for whatever has focus.
func (m Model) renderHelp(width int) string {
	m.help.Width = width
	if m.showHelp {
		return styles.HelpBar.Render(m.help.FullHelpView(m.helpColumns()))
	}

	var bindings []key.Binding
	if m.focusSidebar {
		bindings = m.keys.Sidebar.ShortHelp()
	} else {
		bindings = m.keys.Content.ShortHelp()
	}
	bindings = append(bindings, m.keys.Global.FocusSidebar, m.keys.Global.Help)
	return styles.HelpBar.Render(m.help.ShortHelpView(bindings))
}

func (m Model) helpColumns() [][]key.Binding {
	var cols [][]key.Binding
	if m.focusSidebar {
		cols = append(cols, m.keys.Sidebar.FullHelp()...)
	} else {
		cols = append(cols, m.keys.Content.FullHelp()...)
	}
	return append(cols, m.keys.Global.FullHelp()...)
}
