package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/desertthunder/riff/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	ConfirmView
)

// Source loads and removes a user's favorites. It is implemented by
// [services.FavoriteService].
type Source interface {
	ListForUser(ctx context.Context, email string) ([]*models.Favorite, error)
	Remove(ctx context.Context, songID uuid.UUID, email string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	source   Source
	email    string
	view     ViewState
	width    int
	height   int
	list     list.Model
	selected *models.Favorite
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a favorites browser for email.
func NewModel(ctx context.Context, source Source, email string) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("Favorites of %s", email)
	l.SetShowHelp(false)

	return &Model{
		ctx:    ctx,
		source: source,
		email:  email,
		view:   ListView,
		list:   l,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Run opens the browser in the alternate screen and blocks until the user quits.
func Run(ctx context.Context, source Source, email string) error {
	m := NewModel(ctx, source, email)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return err
	}
	return m.err
}

// Init loads the favorites.
func (m *Model) Init() tea.Cmd {
	return m.fetchFavorites()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case favoritesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.favorites))
		for i, f := range msg.favorites {
			items[i] = favoriteItem{favorite: f}
		}
		return m, m.list.SetItems(items)

	case favoriteRemovedMsg:
		m.view = ListView
		m.selected = nil
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Remove failed: %v", msg.err))
			return m, nil
		}
		m.status = styles.ok.Render(fmt.Sprintf("Removed %s", msg.songID))
		return m, m.fetchFavorites()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	default:
		return m.renderList()
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.status = ""
		return m, m.fetchFavorites()
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.list.SelectedItem().(favoriteItem); ok {
			m.selected = item.favorite
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.removeFavorite(m.selected.SongPublicID())
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = ListView
		m.selected = nil
	}
	return m, nil
}

func (m *Model) fetchFavorites() tea.Cmd {
	return func() tea.Msg {
		favorites, err := m.source.ListForUser(m.ctx, m.email)
		return favoritesFetchedMsg{favorites: favorites, err: err}
	}
}

func (m *Model) removeFavorite(songID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		err := m.source.Remove(m.ctx, songID, m.email)
		return favoriteRemovedMsg{songID: songID, err: err}
	}
}

func (m *Model) renderList() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	if len(m.list.Items()) == 0 {
		return fmt.Sprintf("%s\n\n%s\n\n%s", styles.title.Render(m.list.Title), styles.help.Render("No favorites yet."), helpView)
	}
	if m.status != "" {
		return fmt.Sprintf("%s\n%s\n\n%s", m.list.View(), m.status, helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Remove favorite?")
	info := styles.warn.Render(fmt.Sprintf("Song: %s", m.selected.SongPublicID()))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
