package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	herrors "github.com/vango-dev/hydrate/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hydrate",
		Short: "Serve server-rendered pages that hydrate without refetching",
		Long: `hydrate renders pages on the server, resolving every resource the
page reads before the markup is written. The results travel with the
document, so the client adopts them instead of calling the server again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		initCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		herrors.PrintError(err)
		os.Exit(1)
	}
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
