package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobscout/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

// AllSources is the picker entry that selects every source.
const AllSources = "all"

type pickerModel struct {
	choices []string
	cursor  int
	chosen  int // -1 = no choice yet, -2 = quit
}

func newPickerModel(sources []model.Source) pickerModel {
	choices := make([]string, 0, len(sources)+1)
	choices = append(choices, AllSources)
	for _, s := range sources {
		choices = append(choices, string(s))
	}
	return pickerModel{choices: choices, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("크롤링할 사이트를 선택하세요")
	s += "\n"

	for i, c := range m.choices {
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+c) + "\n"
		} else {
			s += pickerItemStyle.Render(c) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

func (m pickerModel) choice() string {
	if m.chosen < 0 {
		return ""
	}
	return m.choices[m.chosen]
}

// RunSourcePicker shows an interactive source selector. It returns a source
// name, AllSources, or "" if the user quit.
func RunSourcePicker(sources []model.Source) (string, error) {
	p := tea.NewProgram(newPickerModel(sources))
	result, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("source picker: %w", err)
	}
	return result.(pickerModel).choice(), nil
}
