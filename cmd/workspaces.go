package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macmole/internal/logging"
	"github.com/lakshaymaurya-felt/macmole/internal/ui"
	"github.com/lakshaymaurya-felt/macmole/internal/workspace"
)

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "Clean project build artifacts",
	Long: `Find development projects under common workspace directories and
offer their regenerable build and cache directories (node_modules,
target, .venv, DerivedData, etc.) for deletion.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(debug)
		defer func() { _ = log.Sync() }()
		scanner := workspace.NewScanner(log)

		scan := func(ctx context.Context) ([]ui.Item, error) {
			var items []ui.Item
			for _, project := range scanner.Scan() {
				ecosystems := strings.Join(project.Ecosystems, ", ")
				for _, dir := range project.Cleanable {
					items = append(items, ui.Item{
						Title:  fmt.Sprintf("%s/%s", project.Name, dir.Name),
						Detail: fmt.Sprintf("%s • %s", ecosystems, dir.Path),
						Path:   dir.Path,
						Size:   dir.SizeBytes,
					})
				}
			}
			return items, nil
		}
		return ui.Run("Workspace Caches", scan, dryRun)
	},
}
