// Command bisync keeps two directory trees bidirectionally consistent by
// periodically reconciling their contents.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FilippoHoch/bisync-go/pkg/version"
)

func rootMain(command *cobra.Command, arguments []string) {
	if rootConfiguration.version {
		fmt.Println(version.String())
		return
	}
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:   "bisync",
	Short: "bisync keeps two directory trees bidirectionally consistent",
	Run:   rootMain,
}

var rootConfiguration struct {
	version bool
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")

	cobra.EnableCommandSorting = false
	cobra.MousetrapHelpText = ""

	rootCommand.AddCommand(
		runCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
