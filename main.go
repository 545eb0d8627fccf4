// =============================================================================
// Sales ETL - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Sales ETL CLI application. It hands
// control to the cmd package.
//
// USAGE:
//   etl process       - Run the pipeline once
//   etl validate      - Validate the configuration and list input extracts
//   etl version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Pipeline stages and their shared types
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-etl/cmd"
)

func main() {
	cmd.Execute()
}
