package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/malmosmo/msl/pkgs/compiler"
	"github.com/spf13/cobra"
)

// Build-time variables, set via ldflags.
var (
	Version   string = "dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
)

var (
	outPath string
	noColor bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "msl",
	Short:         "Compile MSL scripts into Minecraft function files",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var compileCmd = &cobra.Command{
	Use:   "compile <source.msl>",
	Short: "Compile a source file into one or more .mcfunction files",
	Args:  cobra.ExactArgs(1),
	RunE:  compileCommand,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("msl %s\n", Version)
		fmt.Printf("Built: %s\n", BuildTime)
		fmt.Printf("Commit: %s\n", GitCommit)
	},
}

func init() {
	compileCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output directory for compiled .mcfunction files (default: alongside the source file)")
	compileCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI color in compiler diagnostics")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(versionCmd)
}

func compileCommand(cmd *cobra.Command, args []string) error {
	srcPath := args[0]

	opts := compiler.Options{NoColor: noColor}
	if outPath != "" {
		ext := filepath.Ext(srcPath)
		name := filepath.Base(srcPath)
		name = name[:len(name)-len(ext)] + ".mcfunction"
		opts.DstFile = filepath.Join(outPath, name)
	}

	files, err := compiler.Compile(srcPath, opts)
	if err != nil {
		return err
	}

	for _, f := range files {
		dir := filepath.Dir(f.Name)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating output directory %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(f.Name, []byte(f.Text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", f.Name)
	}
	return nil
}
