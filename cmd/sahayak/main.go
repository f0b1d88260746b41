package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zadescoxp/Sahayak/internal/markup"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "sahayak",
		Short:   "Sahayak - multi-modal conversational assistant client",
		Version: Version,
	}

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(renderCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render [file]",
		Short: "Render restricted markdown from a file (or stdin) to markup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src []byte
			var err error
			if len(args) == 1 {
				src, err = os.ReadFile(args[0])
			} else {
				src, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), markup.Render(string(src)))
			return nil
		},
	}
}
