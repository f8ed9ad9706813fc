package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/koskimas/fondant/internal/cmd"
	"github.com/spf13/cobra"
)

var (
	compileDir   string
	compileWatch bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the pipeline of a fondant.yaml file",
	Long: `Resolve the components of the pipeline in fondant.yaml and write the
resolved specs, their Kubeflow descriptors, the dataset table and the Go
bindings to the configured output paths.`,
	Args: cobra.NoArgs,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileDir, "dir", "d", "", "directory of the fondant.yaml file (default: working directory)")
	compileCmd.Flags().BoolVarP(&compileWatch, "watch", "w", false, "compile again when a source file changes")
}

func runCompile(c *cobra.Command, args []string) error {
	dir := compileDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}

		dir = wd
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	settings := cmd.Settings{
		WorkingDir: dir,
		Logger:     newLogger(),
	}

	if !compileWatch {
		return cmd.Run(settings)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.Watch(ctx, settings)
}
