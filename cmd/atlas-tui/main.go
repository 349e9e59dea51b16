// atlas-tui is a terminal explorer for resolved dependency graphs: load a
// structural record, then walk the flow, module, and class views with
// hover, selection, focus dimming, and pan/zoom.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/logging"
	"github.com/codeatlas/codeatlas/pkg/resolver"
	"github.com/codeatlas/codeatlas/pkg/session"
)

func main() {
	input := flag.String("input", "", "Structural record JSON file")
	seed := flag.Int64("seed", 1, "Layout random seed")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "atlas-tui: -input is required")
		os.Exit(1)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas-tui: %v\n", err)
		os.Exit(1)
	}
	structure, err := resolver.DecodeStructure(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas-tui: %v\n", err)
		os.Exit(1)
	}
	if len(structure) == 0 {
		fmt.Fprintln(os.Stderr, "atlas-tui: no visualization data available")
		os.Exit(1)
	}

	log := logging.NewNopLogger()
	graph, err := resolver.New(log).Resolve(structure)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas-tui: %v\n", err)
		os.Exit(1)
	}

	sess := session.New(graph, layout.Config{Width: 1200, Height: 800, Seed: *seed}, log)
	if err := sess.Settle(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "atlas-tui: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess.StartInteractive(ctx, session.DefaultTick)
	defer sess.Stop()

	p := tea.NewProgram(initialModel(sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "atlas-tui: %v\n", err)
		os.Exit(1)
	}
}
