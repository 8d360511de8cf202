// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	redRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"}).
			Bold(true).
			PaddingLeft(1).PaddingRight(1)

	// TitleStyle is used for the titles printed above tables.
	TitleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

// styledTable is a lipgloss table with alternating row styles, where individual rows can be marked red.
type styledTable struct {
	table *lgtable.Table
	count int
	reds  map[int]bool
}

// row appends a row, optionally marked red.
func (t *styledTable) row(isRed bool, cells ...string) {
	if isRed {
		t.reds[t.count] = true
	}
	t.table.Row(cells...)
	t.count++
}

func (t *styledTable) render() string {
	return t.table.Render()
}

// newStyledTable creates a table with the given headers. The alignments are given per column, and the last
// one is used for all the remaining columns.
func newStyledTable(headers []string, alignments ...lipgloss.Position) *styledTable {
	t := &styledTable{reds: make(map[int]bool)}
	t.table = lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row < 0 {
				s = headerRowStyle
				return
			}
			switch {
			case t.reds[row]:
				s = redRowStyle
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			alignment := lipgloss.Left
			if col < len(alignments) {
				alignment = alignments[col]
			} else if len(alignments) > 0 {
				alignment = alignments[len(alignments)-1]
			}
			s = s.Align(alignment)
			return
		})
	if len(headers) > 0 {
		t.table.Headers(headers...)
	}
	return t
}
