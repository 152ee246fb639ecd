package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapselect/pkg/format"
	"github.com/spf13/cobra"
)

// RunQuery evaluates one query and renders the result. With echo enabled the
// canonical query is printed first, followed by a blank line.
func RunQuery(cmd *cobra.Command, text string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if cc.Cfg.Echo {
		canonical, err := format.Query(text)
		if err != nil {
			return err
		}
		cc.Renderer.Println(canonical)
		cc.Renderer.Println()
	}

	res, err := cc.Evaluator.Evaluate(cmd.Context(), text)
	if err != nil {
		return err
	}
	if err := cc.Renderer.Result(res); err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	return nil
}
