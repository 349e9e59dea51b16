// atlas-export resolves a structural record from a file (or stdin) and
// writes the render payload for one view as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/codeatlas/codeatlas/pkg/export"
	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/logging"
	"github.com/codeatlas/codeatlas/pkg/resolver"
	"github.com/codeatlas/codeatlas/pkg/session"
)

func main() {
	input := flag.String("input", "-", "Structural record JSON file, or - for stdin")
	output := flag.String("output", "-", "Output file, or - for stdout")
	viewName := flag.String("view", "flow", "View to export: flow, modules, or classes")
	width := flag.Float64("width", 1200, "Canvas width")
	height := flag.Float64("height", 800, "Canvas height")
	seed := flag.Int64("seed", 1, "Layout random seed")
	pretty := flag.Bool("pretty", false, "Indent the output JSON")
	flag.Parse()

	if err := run(*input, *output, *viewName, *width, *height, *seed, *pretty); err != nil {
		fmt.Fprintf(os.Stderr, "atlas-export: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output, viewName string, width, height float64, seed int64, pretty bool) error {
	view, err := session.ParseView(viewName)
	if err != nil {
		return err
	}

	data, err := readInput(input)
	if err != nil {
		return err
	}
	structure, err := resolver.DecodeStructure(data)
	if err != nil {
		return err
	}
	if len(structure) == 0 {
		return fmt.Errorf("no visualization data available")
	}

	log := logging.NewJSONLogger(os.Stderr, logging.WarnLevel)
	graph, err := resolver.New(log).Resolve(structure)
	if err != nil {
		return err
	}

	sess := session.New(graph, layout.Config{Width: width, Height: height, Seed: seed}, log)
	if err := sess.SetView(view); err != nil {
		return err
	}
	if err := sess.Settle(context.Background()); err != nil {
		return err
	}

	state := export.Session(sess)
	var payload []byte
	if pretty {
		payload, err = json.MarshalIndent(state, "", "  ")
	} else {
		payload, err = json.Marshal(state)
	}
	if err != nil {
		return err
	}
	payload = append(payload, '\n')

	if output == "-" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	return os.WriteFile(output, payload, 0o644)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
