// Package wizard is the full-screen console for entering persons and their
// relations into a relations file.
package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/N3moAhead/pedigree/internal/db"
	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/person"
	"github.com/N3moAhead/pedigree/internal/relation"
)

const listTitle = "Family"

var (
	docStyle   = lipgloss.NewStyle().Margin(1, 2)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

type sessionState int

const (
	viewList sessionState = iota
	viewDetail
	viewCreatePerson
	viewSelectTarget
	viewConfirmDelete
	viewRemoveRelation
)

// action is the relation being added from the detail view.
type action struct {
	key   string
	label string
	apply func(f *family.Family, selected, target *person.Person) error
}

var actions = []action{
	{"f", "father", func(f *family.Family, s, t *person.Person) error { return f.AddFather(s, t) }},
	{"m", "mother", func(f *family.Family, s, t *person.Person) error { return f.AddMother(s, t) }},
	{"s", "spouse", func(f *family.Family, s, t *person.Person) error { return f.AddSpouse(s, t) }},
	{"c", "child", func(f *family.Family, s, t *person.Person) error { return f.AddChild(s, t) }},
	{"b", "full sibling", func(f *family.Family, s, t *person.Person) error { return f.AddFullSibling(s.Name, t) }},
}

func actionFor(k string) *action {
	for i := range actions {
		if actions[i].key == k {
			return &actions[i]
		}
	}
	return nil
}

type Model struct {
	state    sessionState
	store    *db.Store
	family   *family.Family
	list     list.Model
	relList  list.Model // relations of the selected person, for removal
	selected *person.Person // The currently viewed person

	inputName   textinput.Model
	inputGender textinput.Model
	inputNotes  textinput.Model

	pending *action

	err    error
	status string
}

func New(store *db.Store, fam *family.Family) Model {
	l := list.New(peopleToItems(fam.Persons()), list.NewDefaultDelegate(), 0, 0)
	l.Title = listTitle
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new person")),
		}
	}

	rl := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	rl.SetShowHelp(false)
	rl.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "Name"
	ti.Focus()

	tg := textinput.New()
	tg.Placeholder = "Gender (m / f / empty)"
	tg.CharLimit = 7

	tn := textinput.New()
	tn.Placeholder = "Notes"

	return Model{
		state:       viewList,
		store:       store,
		family:      fam,
		list:        l,
		relList:     rl,
		inputName:   ti,
		inputGender: tg,
		inputNotes:  tn,
	}
}

// Run loads the store's file and runs the console until the user quits.
func Run(store *db.Store) error {
	fam, err := store.Load()
	if err != nil {
		return err
	}
	p := tea.NewProgram(New(store, fam), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(ws.Width-h, ws.Height-v)
		m.relList.SetSize(ws.Width-h, ws.Height-v)
	}

	switch m.state {
	case viewList:
		if msg, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
			switch msg.String() {
			case "n":
				return m.startCreate(), nil
			case "enter":
				if p, ok := m.list.SelectedItem().(*person.Person); ok {
					m.selected = p
					m.state = viewDetail
					m.err, m.status = nil, ""
				}
				return m, nil
			}
		}
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case viewDetail:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch k := msg.String(); k {
			case "esc", "q":
				m.state = viewList
				m.selected = nil
				return m, nil
			case "x":
				m.state = viewConfirmDelete
				return m, nil
			case "r":
				return m.startRemoveRelation()
			default:
				if a := actionFor(k); a != nil {
					m.pending = a
					m.state = viewSelectTarget
					m.list.Title = fmt.Sprintf("Choose the %s of %s", a.label, m.selected.Name)
					m.list.ResetSelected()
					m.err, m.status = nil, ""
				}
				return m, nil
			}
		}

	case viewConfirmDelete:
		if msg, ok := msg.(tea.KeyMsg); ok {
			if msg.String() == "y" {
				name := m.selected.Name
				if err := m.family.RemovePerson(name); err != nil {
					m.err = err
					m.state = viewDetail
					return m, nil
				}
				m.selected = nil
				m.state = viewList
				return m, m.commit("removed " + name)
			}
			m.state = viewDetail
		}
		return m, nil

	case viewRemoveRelation:
		if msg, ok := msg.(tea.KeyMsg); ok && !m.relList.SettingFilter() {
			switch msg.String() {
			case "esc":
				m.state = viewDetail
				return m, nil
			case "enter":
				item, ok := m.relList.SelectedItem().(relation.Item)
				if !ok {
					return m, nil
				}
				m.state = viewDetail
				if err := m.family.RemoveRelation(item.Rel); err != nil {
					m.err = err
					return m, nil
				}
				return m, m.commit(fmt.Sprintf("removed %s as %s", item.OtherName, item.Label()))
			}
		}
		m.relList, cmd = m.relList.Update(msg)
		return m, cmd

	case viewCreatePerson:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc":
				m.state = viewList
				return m, nil
			case "tab":
				m.focusNext()
				return m, nil
			case "enter":
				if !m.inputNotes.Focused() {
					m.focusNext()
					return m, nil
				}
				return m.createPerson()
			}
		}
		var cmdName, cmdGender, cmdNotes tea.Cmd
		m.inputName, cmdName = m.inputName.Update(msg)
		m.inputGender, cmdGender = m.inputGender.Update(msg)
		m.inputNotes, cmdNotes = m.inputNotes.Update(msg)
		return m, tea.Batch(cmdName, cmdGender, cmdNotes)

	case viewSelectTarget:
		if msg, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
			switch msg.String() {
			case "esc":
				m.state = viewDetail
				m.pending = nil
				m.list.Title = listTitle
				return m, nil
			case "enter":
				target, ok := m.list.SelectedItem().(*person.Person)
				if !ok || target.Name == m.selected.Name {
					return m, nil
				}
				m.state = viewDetail
				m.list.Title = listTitle
				a := m.pending
				m.pending = nil
				if err := a.apply(m.family, m.selected, target); err != nil {
					m.err = err
					return m, nil
				}
				return m, m.commit(fmt.Sprintf("%s is now the %s of %s", target.Name, a.label, m.selected.Name))
			}
		}
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) startRemoveRelation() (tea.Model, tea.Cmd) {
	rels := m.family.RelationsOf(m.selected.Name)
	if len(rels) == 0 {
		m.err = fmt.Errorf("%s has no relations to remove", m.selected.Name)
		return m, nil
	}
	items := make([]list.Item, len(rels))
	for i, rel := range rels {
		items[i] = relation.ItemFor(rel, m.selected.Name)
	}
	m.relList.Title = "Remove a relation of " + m.selected.Name
	m.relList.ResetSelected()
	m.err, m.status = nil, ""
	m.state = viewRemoveRelation
	return m, m.relList.SetItems(items)
}

func (m Model) startCreate() Model {
	m.state = viewCreatePerson
	m.err = nil
	m.inputName.SetValue("")
	m.inputGender.SetValue("")
	m.inputNotes.SetValue("")
	m.inputName.Focus()
	m.inputGender.Blur()
	m.inputNotes.Blur()
	return m
}

func (m *Model) focusNext() {
	switch {
	case m.inputName.Focused():
		m.inputName.Blur()
		m.inputGender.Focus()
	case m.inputGender.Focused():
		m.inputGender.Blur()
		m.inputNotes.Focus()
	default:
		m.inputNotes.Blur()
		m.inputName.Focus()
	}
}

func (m Model) createPerson() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.inputName.Value())
	if name == "" {
		m.err = errors.New("a person needs a name")
		return m, nil
	}
	if m.family.Has(name) {
		m.err = fmt.Errorf("%s: %w", name, family.ErrPersonExists)
		return m, nil
	}
	gender, err := person.ParseGender(m.inputGender.Value())
	if err != nil {
		m.err = err
		return m, nil
	}
	p := person.New(name, gender)
	p.Notes = strings.TrimSpace(m.inputNotes.Value())
	m.family.AddPerson(p)
	m.state = viewList
	return m, m.commit("added " + name)
}

// commit saves the family and refreshes the list.
func (m *Model) commit(status string) tea.Cmd {
	if err := m.store.Save(m.family); err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.status = status
	return m.list.SetItems(peopleToItems(m.family.Persons()))
}

func (m Model) View() string {
	switch m.state {
	case viewList, viewSelectTarget:
		return docStyle.Render(m.list.View() + m.footer())

	case viewRemoveRelation:
		return docStyle.Render(m.relList.View() + "\n" +
			infoStyle.Render("Enter: remove | ESC: back") + m.footer())

	case viewDetail, viewConfirmDelete:
		if m.selected == nil {
			return "Error: nobody selected"
		}
		s := titleStyle.Render(m.selected.Name) + " " + infoStyle.Render("("+m.selected.Gender.String()+")") + "\n"
		if m.selected.Notes != "" {
			s += infoStyle.Render(m.selected.Notes) + "\n"
		}
		s += "\n" + lipgloss.NewStyle().Underline(true).Render("Relations:") + "\n"
		s += m.relations()
		if m.state == viewConfirmDelete {
			s += "\n" + errStyle.Render(fmt.Sprintf("Delete %s and all their relations? (y/n)", m.selected.Name))
		} else {
			s += "\n" + infoStyle.Render("ESC: back | f: father | m: mother | s: spouse | c: child | b: sibling | r: remove relation | x: delete")
		}
		return docStyle.Render(s + m.footer())

	case viewCreatePerson:
		return docStyle.Render(fmt.Sprintf(
			"New person\n\n%s\n\n%s\n\n%s\n\n%s%s",
			m.inputName.View(),
			m.inputGender.View(),
			m.inputNotes.View(),
			infoStyle.Render("Tab: next field | Enter in notes: save | ESC: cancel"),
			m.footer(),
		))
	}
	return ""
}

func (m Model) relations() string {
	rels := m.family.RelationsOf(m.selected.Name)
	if len(rels) == 0 {
		return infoStyle.Render("No relations yet.") + "\n"
	}
	lines := make([]string, len(rels))
	for i, rel := range rels {
		lines[i] = relation.ItemFor(rel, m.selected.Name).Title()
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m Model) footer() string {
	switch {
	case m.err != nil:
		return "\n" + errStyle.Render(m.err.Error())
	case m.status != "":
		return "\n" + okStyle.Render(m.status)
	}
	return ""
}

func peopleToItems(people []*person.Person) []list.Item {
	items := make([]list.Item, len(people))
	for i, p := range people {
		items[i] = p
	}
	return items
}
