// =============================================================================
// Sales ETL - Version Command
// =============================================================================
//
// 'etl version' prints the release, build metadata and the file layout a run
// uses by default, so an operator can tell which build produced a snapshot.
//
// OUTPUT:
//   Sales ETL 0.1.0 (built 2024-01-01, go1.24.11 linux/amd64)
//   Default config:  etl_config.yaml
//   Snapshot name:   ventas_limpias_DD-MM-YYYY.csv
//   Log file name:   etl_DD-MM-YYYY.log
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/ginjaninja78/sales-etl/internal/config"
	"github.com/spf13/cobra"
)

// Set at build time:
//
//	go build -ldflags "-X 'github.com/ginjaninja78/sales-etl/cmd.Version=1.0.0' -X 'github.com/ginjaninja78/sales-etl/cmd.BuildDate=2024-01-01'"
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ETL release and default file layout",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Sales ETL %s (built %s, %s %s/%s)\n",
		Version, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "Default config:  %s\n", config.DefaultPath)
	fmt.Fprintln(w, "Snapshot name:   ventas_limpias_DD-MM-YYYY.csv")
	fmt.Fprintln(w, "Log file name:   etl_DD-MM-YYYY.log")
}
