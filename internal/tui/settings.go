package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkrenz/stechuhr/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	user         store.UserInfo
	defaultBreak int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	fName    *string
	fCompany *string
	fBreak   *string
}

func newSettingsModel(s *store.Store) settingsModel {
	name, company, brk := "", "", ""
	return settingsModel{
		store:    s,
		fName:    &name,
		fCompany: &company,
		fBreak:   &brk,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) inputActive() bool { return s.formActive }

type settingsDataMsg struct {
	user         store.UserInfo
	defaultBreak int
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		user, _ := s.store.GetUserInfo()
		return settingsDataMsg{user: user, defaultBreak: s.store.DefaultBreak()}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.user = msg.user
		s.defaultBreak = msg.defaultBreak
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.fName = s.user.Name
	*s.fCompany = s.user.Company
	*s.fBreak = strconv.Itoa(s.defaultBreak)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(s.fName),
			huh.NewInput().Title("Company").Value(s.fCompany),
			huh.NewInput().Title("Default break (minutes)").Validate(validateBreak).Value(s.fBreak),
		).Title("Settings"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveSettings()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() tea.Cmd {
	user := store.UserInfo{Name: *s.fName, Company: *s.fCompany}
	brk, _ := strconv.Atoi(*s.fBreak)

	return func() tea.Msg {
		if err := s.store.SetUserInfo(user); err != nil {
			return statusMsg{text: fmt.Sprintf("Settings not saved: %v", err), isError: true}
		}
		if err := s.store.SetDefaultBreak(brk); err != nil {
			return statusMsg{text: fmt.Sprintf("Settings not saved: %v", err), isError: true}
		}
		return settingsSavedMsg{}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s",
			lipgloss.NewStyle().Width(24).Render(label),
			highlightStyle.Render(value),
		)
	}

	rows := []string{
		title,
		"",
		row("Name", s.user.Name),
		row("Company", s.user.Company),
		row("Default break", fmt.Sprintf("%d min", s.defaultBreak)),
		"",
		hint,
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
