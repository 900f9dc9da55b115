// Package notify announces executed matching rounds on chat platforms.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/swapyard/internal/models"
)

// Color constants for round summaries.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
)

// Summary describes one executed matching round.
type Summary struct {
	RunID        string
	Trigger      string
	DirectTrades []models.DirectTrade
	CycleTrades  []models.CycleTrade
	Cycles       int
}

// Empty reports whether the round settled nothing.
func (s Summary) Empty() bool {
	return len(s.CycleTrades) == 0 && len(s.DirectTrades) == 0
}

// Notifier delivers round summaries to one destination.
type Notifier interface {
	Notify(ctx context.Context, s Summary) error
}

// Multi fans a summary out to every notifier and joins their errors.
type Multi []Notifier

// Notify sends s to each notifier in turn.
func (m Multi) Notify(ctx context.Context, s Summary) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Field is a key-value pair shown beside a message.
type Field struct {
	Name  string
	Value string
	Short bool
}

// message is the platform-neutral rendering of a summary.
type message struct {
	Title  string
	Body   string
	Color  string
	Fields []Field
}

// render turns s into a title, a body listing each hand-over and summary
// fields.
func render(s Summary) message {
	color := ColorInfo
	if len(s.CycleTrades) > 0 {
		color = ColorSuccess
	}

	var b strings.Builder
	for _, t := range s.CycleTrades {
		fmt.Fprintf(&b, "participant %d gives item %d to participant %d\n", t.GiverID, t.ItemID, t.ReceiverID)
	}
	for _, d := range s.DirectTrades {
		fmt.Fprintf(&b, "swap available: %d (item %d) <-> %d (item %d)\n", d.UserA, d.ItemA, d.UserB, d.ItemB)
	}

	return message{
		Title: fmt.Sprintf("Matching round %s", shortID(s.RunID)),
		Body:  strings.TrimRight(b.String(), "\n"),
		Color: color,
		Fields: []Field{
			{Name: "Trigger", Value: s.Trigger, Short: true},
			{Name: "Cycles", Value: fmt.Sprintf("%d", s.Cycles), Short: true},
			{Name: "Hand-overs", Value: fmt.Sprintf("%d", len(s.CycleTrades)), Short: true},
			{Name: "Direct swaps", Value: fmt.Sprintf("%d", len(s.DirectTrades)), Short: true},
		},
	}
}

// Text renders s as plain text.
func Text(s Summary) string {
	m := render(s)
	var b strings.Builder
	b.WriteString(m.Title)
	for _, f := range m.Fields {
		fmt.Fprintf(&b, " | %s: %s", f.Name, f.Value)
	}
	if m.Body != "" {
		b.WriteString("\n")
		b.WriteString(m.Body)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
