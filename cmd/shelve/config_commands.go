package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shelve/internal/config"
	"shelve/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit [[categories]] to change how files are sorted.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

type validateResult struct {
	ConfigPath string        `json:"config_path"`
	Exists     bool          `json:"exists"`
	Backend    string        `json:"backend"`
	LogsDir    string        `json:"logs_dir"`
	Checks     []checkResult `json:"checks"`
	Valid      bool          `json:"valid"`
}

type checkResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			results := preflight.RunAll(cfg)
			valid := true
			checks := make([]checkResult, 0, len(results))
			for _, r := range results {
				valid = valid && r.Passed
				checks = append(checks, checkResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
			}

			if ctx.JSONMode() {
				if err := writeJSON(cmd, validateResult{
					ConfigPath: ctx.configPath,
					Exists:     ctx.configSeen,
					Backend:    cfg.Store.Backend,
					LogsDir:    cfg.Paths.LogsDir,
					Checks:     checks,
					Valid:      valid,
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
				if !ctx.configSeen {
					fmt.Fprintln(out, "Config file did not exist; defaults were used")
				}
				fmt.Fprintf(out, "Record store: %s in %s\n", cfg.Store.Backend, cfg.Paths.LogsDir)
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
					}
					printStatus(out, kind, "%s: %s", r.Name, r.Detail)
				}
				if valid {
					fmt.Fprintln(out, "Configuration valid")
				}
			}
			if !valid {
				return errors.New("configuration checks failed")
			}
			return nil
		},
	}
}
