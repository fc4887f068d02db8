// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/orchestrator"
)

var (
	customerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	agentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	systemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// chatModel drives one interactive session against an Orchestrator. Each
// submitted line becomes one TurnRequest; the whole transcript, plus the
// most recent activity trace, is rendered in a scrollback viewport.
type chatModel struct {
	orch       *orchestrator.Orchestrator
	phase      orchestrator.Phase
	customerID string
	input      textinput.Model
	viewport   viewport.Model
	transcript []string
	ready      bool
}

func newChatModel(orch *orchestrator.Orchestrator, phase orchestrator.Phase) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about a product, or say what you'd like to buy..."
	ti.Focus()
	ti.CharLimit = 500

	return chatModel{
		orch:       orch,
		phase:      phase,
		customerID: "demo-customer",
		input:      ti,
		transcript: []string{systemStyle.Render(fmt.Sprintf("phase %d — type a message, ctrl+c to quit", phase))},
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

type turnResultMsg struct {
	result orchestrator.TurnResult
	err    error
}

func (m chatModel) runTurn(message string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.orch.HandleTurn(context.Background(), orchestrator.TurnRequest{
			Phase:      m.phase,
			Message:    message,
			CustomerID: m.customerID,
			Limit:      5,
		})
		return turnResultMsg{result: result, err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.input.Width = msg.Width - 2
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			message := strings.TrimSpace(m.input.Value())
			if message == "" {
				return m, nil
			}
			m.input.Reset()
			m.transcript = append(m.transcript, customerStyle.Render("you: ")+message)
			m.syncViewport()
			return m, m.runTurn(message)
		}

	case turnResultMsg:
		if msg.err != nil {
			m.transcript = append(m.transcript, systemStyle.Render("error: "+msg.err.Error()))
		} else {
			m.transcript = append(m.transcript, agentStyle.Render("agent: ")+renderReply(msg.result))
		}
		m.syncViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

func renderReply(result orchestrator.TurnResult) string {
	var b strings.Builder
	b.WriteString(result.ReplyText)
	for _, p := range result.Products {
		fmt.Fprintf(&b, "\n  - %s (%s) $%s", p.Name, p.ProductID, p.Price.Decimal())
	}
	if result.Order != nil {
		fmt.Fprintf(&b, "\n  order %s confirmed, total $%s", result.Order.OrderID, result.Order.Total.Decimal())
	}
	if len(result.FollowUpSuggestions) > 0 {
		b.WriteString("\n  follow-ups: " + strings.Join(result.FollowUpSuggestions, " | "))
	}
	return b.String()
}

func (m chatModel) View() string {
	if !m.ready {
		return "initializing..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), m.input.View(), footerStyle.Render("enter to send, esc to quit"))
}
