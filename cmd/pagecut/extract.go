package main

import (
	"fmt"

	"github.com/fwojciec/pagecut"
	"github.com/fwojciec/pagecut/fs"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	reading, err := deps.Service.Read(deps.Ctx, c.URL, func(status pagecut.Status, detail string) {
		if detail == "" {
			fmt.Fprintf(deps.Stderr, "%s\n", status)
			return
		}
		fmt.Fprintf(deps.Stderr, "%s: %s\n", status, detail)
	})
	if err != nil {
		return err
	}

	if !reading.Found {
		fmt.Fprintln(deps.Stderr, "Warning: no article content found; outputs contain only the title")
	}
	for _, d := range reading.Downloads {
		if d.Err != nil {
			fmt.Fprintf(deps.Stderr, "Warning: %s skipped: %s\n", d.Format, pagecut.ErrorMessage(d.Err))
		}
	}

	paths, err := fs.NewWriter(c.Out).WriteReading(deps.Ctx, reading)
	if err != nil {
		return fmt.Errorf("failed to write outputs: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "%s\n", reading.Title)
	for _, p := range paths {
		fmt.Fprintf(deps.Stdout, "  %s\n", p)
	}
	return nil
}
