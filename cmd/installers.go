package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macmole/internal/installer"
	"github.com/lakshaymaurya-felt/macmole/internal/logging"
	"github.com/lakshaymaurya-felt/macmole/internal/ui"
)

var installersCmd = &cobra.Command{
	Use:   "installers",
	Short: "Find and remove leftover installer files",
	Long: `Scan Downloads, Desktop, Documents, and package manager caches for
installer files (.dmg, .pkg, .xip, .zip). Zip archives only count when
their contents look like an installer payload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(debug)
		defer func() { _ = log.Sync() }()
		scanner := installer.NewScanner(log)

		scan := func(ctx context.Context) ([]ui.Item, error) {
			var items []ui.Item
			for _, rec := range scanner.Scan() {
				items = append(items, ui.Item{
					Title:  rec.DisplayName,
					Detail: fmt.Sprintf("%s • %s", rec.Source, rec.Path),
					Path:   rec.Path,
					Size:   rec.SizeBytes,
				})
			}
			return items, nil
		}
		return ui.Run("Installer Files", scan, dryRun)
	},
}
