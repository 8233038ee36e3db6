package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macmole/internal/apps"
	"github.com/lakshaymaurya-felt/macmole/internal/logging"
	"github.com/lakshaymaurya-felt/macmole/internal/ui"
)

var appsList bool

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Remove installed applications",
	Long: `Scan /Applications, ~/Applications, input-method directories, and
mounted volumes for removable .app bundles. System-critical applications
are never offered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(debug)
		defer func() { _ = log.Sync() }()
		scanner := apps.NewScanner(log)

		if appsList {
			epoch := time.Now().Unix()
			for _, rec := range scanner.Scan(cmd.Context()) {
				fmt.Println(rec.PipeRecord(epoch))
			}
			return nil
		}

		scan := func(ctx context.Context) ([]ui.Item, error) {
			var items []ui.Item
			for _, rec := range scanner.Scan(ctx) {
				items = append(items, ui.Item{
					Title:  rec.Name,
					Detail: fmt.Sprintf("%s • %s • last used %s", rec.BundlePath, rec.BundleID, rec.LastUsed),
					Path:   rec.BundlePath,
					Size:   rec.SizeBytes,
				})
			}
			return items, nil
		}
		return ui.Run("Applications", scan, dryRun)
	},
}

func init() {
	appsCmd.Flags().BoolVar(&appsList, "list", false, "Print pipe-delimited records instead of the interactive list")
}
