package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/seriallab/fwload/internal/app"
	"github.com/seriallab/fwload/internal/config"
	"github.com/seriallab/fwload/internal/device"
	"github.com/seriallab/fwload/internal/firmware"
	"github.com/seriallab/fwload/internal/loader"
	"github.com/seriallab/fwload/internal/pages"
	"github.com/seriallab/fwload/internal/runner"
	"github.com/seriallab/fwload/internal/store"
)

var flagFirmwareDir string

var rootCmd = &cobra.Command{
	Use:   "fwload",
	Short: "Firmware loading tool for bossac and tycmd targets",
	Long: `fwload scans a firmware directory, lists connected serial/USB devices,
and flashes a chosen firmware version onto a chosen device by driving
the bossac or tycmd loader through a short command sequence.

Run without arguments for the interactive TUI, or use the subcommands
for scripted, headless operation.`,
	Version:      app.Version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available firmware names and versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		catalog, err := firmware.Scan(env.firmwareDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		for _, name := range catalog.Names() {
			fmt.Println(name)
			for _, version := range catalog.Versions(name) {
				fmt.Printf("  %s\n", version)
			}
		}
		return nil
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List connected target devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		devices, err := env.enumerator.List()
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Fprintln(os.Stderr, "no serial devices detected")
			return nil
		}
		for _, d := range devices {
			fmt.Println(d.Label)
		}
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <name> <version> <device>",
	Short: "Print the flashing commands without running them",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		commands, err := env.plan(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		for _, c := range commands {
			fmt.Println(c)
		}
		return nil
	},
}

var flashCmd = &cobra.Command{
	Use:   "flash <name> <version> <device>",
	Short: "Flash a firmware onto a device",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		commands, err := env.plan(args[0], args[1], args[2])
		if err != nil {
			return err
		}

		run := runner.NewRun(commands)
		state := runner.Drive(runner.HostShell{}, run, env.cfg.SettleDelay(), os.Stdout)
		if state != runner.StateSucceeded {
			return fmt.Errorf("flashing failed (steps: %v)", run.Results())
		}
		fmt.Println("flashing succeeded")
		return nil
	},
}

// env carries everything the subcommands share.
type env struct {
	root        string
	firmwareDir string
	cfg         config.Config
	tools       loader.Tools
	enumerator  device.Enumerator
}

func setup() (*env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg := config.Load(cwd)

	dir := flagFirmwareDir
	if dir == "" {
		dir = cfg.FirmwareDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}

	resolver := loader.DefaultResolver(runtime.GOOS)
	resolver.BossacOverride = cfg.BossacPath
	resolver.TycmdOverride = cfg.TycmdPath
	tools := resolver.Resolve()

	return &env{
		root:        cwd,
		firmwareDir: dir,
		cfg:         cfg,
		tools:       tools,
		enumerator: device.Enumerator{
			TycmdList: device.TycmdLister(tools.TycmdPath),
		},
	}, nil
}

// plan resolves a name/version/device triple into the command sequence.
// The device argument accepts either a bare path or a full display label.
func (e *env) plan(name, version, dev string) ([]string, error) {
	catalog, err := firmware.Scan(e.firmwareDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", e.firmwareDir, err)
	}
	rec, err := catalog.Get(name, version)
	if err != nil {
		return nil, fmt.Errorf("firmware %q version %q: %w", name, version, err)
	}
	return loader.Plan(e.tools, rec, device.ResolvePath(dev), runtime.GOOS)
}

func runTUI() error {
	env, err := setup()
	if err != nil {
		return err
	}

	cfg := env.cfg
	deps := &pages.Deps{
		FirmwareDir: env.firmwareDir,
		Goos:        runtime.GOOS,
		Root:        env.root,
		Tools:       env.tools,
		Enumerator:  env.enumerator,
		Shell:       runner.HostShell{},
		Config:      &cfg,
		Store:       store.New(filepath.Join(env.root, ".fwload")),
	}

	pageMap := map[app.PageID]app.Page{
		app.LoadPage:     pages.NewLoadPage(deps),
		app.DevicesPage:  pages.NewDevicesPage(deps),
		app.HistoryPage:  pages.NewHistoryPage(deps),
		app.SettingsPage: pages.NewSettingsPage(deps.Config, env.root),
	}

	model := app.New(pageMap, app.ToolInfo{
		FirmwareDir:   env.firmwareDir,
		BossacVersion: env.tools.BossacVersion,
		TycmdVersion:  env.tools.TycmdVersion,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFirmwareDir, "dir", "d", "",
		"firmware directory (defaults to the configured firmware_dir)")
	rootCmd.AddCommand(listCmd, devicesCmd, planCmd, flashCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
