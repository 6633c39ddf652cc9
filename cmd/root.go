package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/bloom/internal/app"
	"github.com/zjrosen/bloom/internal/clock"
	"github.com/zjrosen/bloom/internal/config"
	"github.com/zjrosen/bloom/internal/flags"
	"github.com/zjrosen/bloom/internal/garden"
	"github.com/zjrosen/bloom/internal/infrastructure/sqlite"
	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/mode"
	"github.com/zjrosen/bloom/internal/pattern"
	"github.com/zjrosen/bloom/internal/session"
	"github.com/zjrosen/bloom/internal/sound"
	"github.com/zjrosen/bloom/internal/tracing"
	"github.com/zjrosen/bloom/internal/watcher"
	"github.com/zjrosen/bloom/internal/zen/client"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bloom",
	Short: "Guided breathing in your terminal",
	Long: `Bloom paces a breathing exercise for the intention you pick: hold space
while you breathe in, let go while you breathe out. Every session grows your
oasis, and with a zen server ("bloom serve") it earns zen coins too.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/bloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also BLOOM_DEBUG=1)")
	rootCmd.PersistentFlags().StringP("patterns", "p", "",
		"YAML file of intentions layered over the built-in ones")
	rootCmd.Flags().Bool("no-zen", false,
		"do not contact the zen server for this run")

	_ = viper.BindPFlag("patterns_file", rootCmd.PersistentFlags().Lookup("patterns"))
}

func initConfig() {
	setDefaults(viper.GetViper(), config.Defaults())

	viper.SetEnvPrefix("BLOOM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .bloom/config.yaml (current directory)
		// 2. ~/.config/bloom/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			viper.AddConfigPath(userConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// First run: write the commented defaults so there is something to edit.
			defaultPath := filepath.Join(userConfigDir(), "config.yaml")
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
	expandPaths(&cfg)
}

const localConfigPath = ".bloom/config.yaml"

func userConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bloom"
	}
	return filepath.Join(home, ".config", "bloom")
}

// setDefaults registers every default with v so env overrides work for keys
// missing from the file.
func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("tick_interval", d.TickInterval)
	v.SetDefault("garden.db_path", d.Garden.DBPath)
	v.SetDefault("zen.enabled", d.Zen.Enabled)
	v.SetDefault("zen.base_url", d.Zen.BaseURL)
	v.SetDefault("zen.username", d.Zen.Username)
	v.SetDefault("zen.user_id", d.Zen.UserID)
	v.SetDefault("zen.timeout", d.Zen.Timeout)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.db_path", d.Server.DBPath)
	v.SetDefault("server.leaderboard_ttl", d.Server.LeaderboardTTL)
	v.SetDefault("sound.enabled_sounds", d.Sound.EnabledSounds)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("ui.show_garden", d.UI.ShowGarden)
	v.SetDefault("flags", d.Flags)
}

func expandPaths(c *config.Config) {
	c.PatternsFile = config.ExpandHome(c.PatternsFile)
	c.Garden.DBPath = config.ExpandHome(c.Garden.DBPath)
	c.Server.DBPath = config.ExpandHome(c.Server.DBPath)
	c.Tracing.FilePath = config.ExpandHome(c.Tracing.FilePath)
}

// initLogging starts the debug log when --debug or BLOOM_DEBUG is set.
// The returned cleanup is always safe to call.
func initLogging(prefix string) (func(), error) {
	if os.Getenv("BLOOM_DEBUG") == "" && !debugFlag {
		return func() {}, nil
	}
	logPath := os.Getenv("BLOOM_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return func() {}, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "Bloom starting", "version", version, "config", viper.ConfigFileUsed())
	return cleanup, nil
}

func runApp(cmd *cobra.Command, _ []string) error {
	cleanupLog, err := initLogging("bloom")
	if err != nil {
		return err
	}
	defer cleanupLog()

	if noZen, _ := cmd.Flags().GetBool("no-zen"); noZen {
		cfg.Zen.Enabled = false
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	registry := flags.New(cfg.Flags)

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	catalog, err := pattern.LoadCatalog(cfg.PatternsFile)
	if err != nil {
		return fmt.Errorf("loading patterns: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		configPath = filepath.Join(userConfigDir(), "config.yaml")
	}
	services := mode.Services{
		Catalog:    catalog,
		Flags:      registry,
		Config:     &cfg,
		ConfigPath: configPath,
		Clock:      clock.Real{},
	}

	var observers []session.Observer

	if registry.Enabled(flags.FlagGarden) {
		gardener, closeStore := openGarden(cfg.Garden.DBPath)
		defer closeStore()
		defer gardener.Close()
		observers = append(observers, gardener)
		services.Gardener = gardener
	}

	if cfg.Zen.Enabled && registry.Enabled(flags.FlagGamification) {
		zc, err := client.New(cfg.Zen.BaseURL,
			client.WithTimeout(cfg.Zen.Timeout),
			client.WithUserID(cfg.Zen.UserID),
		)
		if err != nil {
			return fmt.Errorf("creating zen client: %w", err)
		}
		defer zc.Close()
		observers = append(observers, zc)
		services.Zen = zc
	}

	ctrl := session.New(catalog,
		session.WithInterval(cfg.TickInterval),
		session.WithObservers(observers...),
		session.WithTracer(tp.Tracer()),
	)
	defer ctrl.Close()
	services.Controller = ctrl

	if services.Gardener != nil {
		go services.Gardener.Watch(ctx, ctrl.Broker().Subscribe(ctx))
	}

	if registry.Enabled(flags.FlagSoundCues) {
		cues := sound.New(os.Stderr, cfg.Sound.EnabledSounds)
		defer cues.Stop()
		go sound.Watch(ctx, cues, ctrl.Broker().Subscribe(ctx))
	}

	if cfg.PatternsFile != "" {
		startPatternsWatcher(ctx, catalog, cfg.PatternsFile)
	}

	model := app.New(services)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	_, err = p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// openGarden opens the oasis database, falling back to an in-memory oasis
// when it cannot be opened so a broken disk never blocks a session.
func openGarden(path string) (*garden.Gardener, func()) {
	grower := garden.NewGrower(nil)
	db, err := sqlite.NewDB(path)
	if err != nil {
		log.ErrorErr(log.CatDB, "Opening garden database failed, oasis will not persist", err, "path", path)
		return garden.NewGardener(garden.NewMemoryStore(), grower, nil), func() {}
	}
	return garden.NewGardener(db.GardenStore(), grower, nil), func() { _ = db.Close() }
}

func startPatternsWatcher(ctx context.Context, catalog *pattern.Catalog, path string) {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Patterns watcher unavailable", err, "path", path)
		return
	}
	go func() {
		if err := w.Run(ctx, func() error { return catalog.Reload(path) }); err != nil {
			log.ErrorErr(log.CatWatcher, "Patterns watcher stopped", err, "path", path)
			_ = w.Stop()
		}
	}()
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
