package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/oneko/internal/config"
	"github.com/1broseidon/oneko/internal/engine"
	"github.com/1broseidon/oneko/internal/ipc"
	"github.com/1broseidon/oneko/internal/sprite"
	"github.com/1broseidon/oneko/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "mode":
		os.Exit(runMode(os.Args[2:]))
	case "variant":
		os.Exit(runVariant(os.Args[2:]))
	case "invert":
		os.Exit(runInvert(os.Args[2:]))
	case "sleep":
		os.Exit(runSleep(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: oneko <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the desktop companion (foreground)")
	fmt.Fprintln(w, "  status              Show the companion's state")
	fmt.Fprintln(w, "  displays            List displays and their taskbars")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mode [MODE]         Show or set the mode (follow, sleep, taskbar)")
	fmt.Fprintln(w, "  variant [NAME]      Show or set the sprite skin")
	fmt.Fprintln(w, "  invert [on|off]     Toggle or set color inversion")
	fmt.Fprintln(w, "  sleep               Toggle sleep")
	fmt.Fprintln(w, "  reload              Re-read settings and displays")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive TUI")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'oneko <command> --help' for command-specific options.")
}

// parseFlags parses args and reports the exit code to use when parsing
// stops the command.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printStatus(status *ipc.StatusData) {
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("mode:           %s\n", status.Mode)
	fmt.Printf("last_active:    %s\n", status.LastNonSleep)
	fmt.Printf("variant:        %s\n", status.Variant)
	fmt.Printf("inverted:       %v\n", status.Inverted)
	fmt.Printf("position:       %.0f,%.0f\n", status.Position.X, status.Position.Y)
	fmt.Printf("animation:      %s (%s)\n", status.Animation, status.Sprite)
	fmt.Printf("display_id:     %d\n", status.DisplayID)
	if status.RoamEdge != "" {
		fmt.Printf("roam_edge:      %s\n", status.RoamEdge)
	}
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: oneko status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the companion's state via IPC.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}
	printStatus(status)
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print displays as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: oneko displays [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List displays, work areas, taskbar edges and sleep targets.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	data, err := ipc.NewClient().GetDisplays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(data)
	}

	// Piped output stays tab separated with no header.
	if !stdoutIsTerminal() {
		for _, d := range data.Displays {
			fmt.Printf("%d\t%s\t%v\t%dx%d+%d+%d\t%s\t%.0f,%.0f\n",
				d.ID, d.Name, d.Primary,
				d.Bounds.Width, d.Bounds.Height, d.Bounds.X, d.Bounds.Y,
				d.TaskbarEdge, d.SleepTarget.X, d.SleepTarget.Y)
		}
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRIMARY\tBOUNDS\tWORK AREA\tTASKBAR\tSLEEP TARGET")
	for _, d := range data.Displays {
		fmt.Fprintf(tw, "%d\t%s\t%v\t%dx%d+%d+%d\t%dx%d+%d+%d\t%s\t%.0f,%.0f\n",
			d.ID, d.Name, d.Primary,
			d.Bounds.Width, d.Bounds.Height, d.Bounds.X, d.Bounds.Y,
			d.WorkArea.Width, d.WorkArea.Height, d.WorkArea.X, d.WorkArea.Y,
			d.TaskbarEdge, d.SleepTarget.X, d.SleepTarget.Y)
	}
	tw.Flush()
	return 0
}

func runMode(args []string) int {
	fs := flag.NewFlagSet("mode", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		names := make([]string, 0, len(engine.Modes()))
		for _, m := range engine.Modes() {
			names = append(names, string(m))
		}
		fmt.Fprintln(os.Stderr, "Usage: oneko mode [MODE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintf(os.Stderr, "Show or set the behavior mode (%s).\n", strings.Join(names, ", "))
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if fs.NArg() == 0 {
		status, err := client.GetStatus()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(status.Mode)
		return 0
	}

	mode, err := engine.ParseMode(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	status, err := client.SetMode(string(mode))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(status.Mode)
	return 0
}

func runVariant(args []string) int {
	fs := flag.NewFlagSet("variant", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	list := fs.Bool("list", false, "List available skins")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: oneko variant [--list] [NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show or set the sprite skin.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if *list {
		for _, v := range sprite.Variants() {
			fmt.Println(v)
		}
		return 0
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if fs.NArg() == 0 {
		status, err := client.GetStatus()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(status.Variant)
		return 0
	}

	variant, err := sprite.ParseVariant(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	status, err := client.SetVariant(string(variant))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(status.Variant)
	return 0
}

func runInvert(args []string) int {
	fs := flag.NewFlagSet("invert", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: oneko invert [on|off|toggle]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Set color inversion; with no argument it toggles.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	var inverted *bool
	switch strings.ToLower(fs.Arg(0)) {
	case "", "toggle":
	case "on", "true", "yes":
		v := true
		inverted = &v
	case "off", "false", "no":
		v := false
		inverted = &v
	default:
		fmt.Fprintf(os.Stderr, "invalid value %q (want on, off or toggle)\n", fs.Arg(0))
		return 2
	}

	status, err := ipc.NewClient().SetInverted(inverted)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("inverted: %v\n", status.Inverted)
	return 0
}

func runSleep(args []string) int {
	fs := flag.NewFlagSet("sleep", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: oneko sleep")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Send the companion to sleep, or wake it into its last mode.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "sleep takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().ToggleSleep()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(status.Mode)
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: oneko reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to re-read its settings file and display layout.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  oneko config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  oneko config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  oneko config explain [--path PATH] <key>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/oneko/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/oneko/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			_ = printEffective // default
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		if dir, err := cfg.ResolveSpriteDir(); err == nil {
			fmt.Printf("# resolved_sprite_dir: %s\n", dir)
		}
		if p, err := cfg.ResolveSettingsPath(); err == nil {
			fmt.Printf("# resolved_settings_path: %s\n", p)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/oneko/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <key>")
			return 2
		}
		key := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, key)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", key)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/oneko/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: oneko tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keys:")
		fmt.Fprintln(os.Stderr, "  1/2/3     Companion, Displays, Config tabs")
		fmt.Fprintln(os.Stderr, "  enter     Apply the selected mode or skin")
		fmt.Fprintln(os.Stderr, "  i, s      Toggle inversion, toggle sleep")
		fmt.Fprintln(os.Stderr, "  e         Edit config")
		fmt.Fprintln(os.Stderr, "  ctrl+s    Save config (and reload the daemon when running)")
		fmt.Fprintln(os.Stderr, "  q         Quit")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if err := tui.New(*path).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}
