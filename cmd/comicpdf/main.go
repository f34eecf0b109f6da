// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the comicpdf CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/comicpdf/internal/archive"
	"github.com/pdiddy/comicpdf/internal/convert"
	"github.com/pdiddy/comicpdf/internal/history"
	"github.com/pdiddy/comicpdf/internal/logging"
	"github.com/pdiddy/comicpdf/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Configuration keys. Each is settable in comicpdf.yaml, as COMICPDF_<KEY>
// in the environment, or by the flag bound to it.
const (
	keyRarTool       = "rar_tool"
	keyTempDir       = "temp_dir"
	keySkipBadImages = "skip_bad_images"
	keyHistoryDB     = "history_db"
	keyNoHistory     = "no_history"
	keyLogLevel      = "log_level"
	keyLogFormat     = "log_format"
	keyInputDir      = "input_dir"
	keyOutputDir     = "output_dir"
	keyReport        = "report"
)

// rootCmd is the base command for the comicpdf CLI.
var rootCmd = &cobra.Command{
	Use:   "comicpdf",
	Short: "Convert CBZ and CBR comic archives to PDF",
	Long: `comicpdf converts comic-book archives into PDF documents. Each image in
an archive becomes one page, sized to the image, in natural filename order
(page2 before page10).

CBZ archives are read directly. CBR archives are unpacked with unar or 7z,
whichever is found on PATH (override with --rar-tool).`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./comicpdf.yaml or ~/.config/comicpdf/comicpdf.yaml)")
	pf.String("rar-tool", "", "program used to unpack .cbr archives (default: detect unar, then 7z)")
	pf.String("temp-dir", "", "parent directory for extraction directories (default: system temp)")
	pf.Bool("skip-bad-images", false, "skip images that fail to decode instead of failing the archive")
	pf.String("history-db", history.DefaultPath, "conversion history database")
	pf.Bool("no-history", false, "do not record conversions in the history database")
	pf.String("log-level", "info", "diagnostic log level: debug, info, warn, error")
	pf.String("log-format", logging.FormatConsole, "diagnostic log format: console or json")

	bindFlags(rootCmd, map[string]string{
		keyRarTool:       "rar-tool",
		keyTempDir:       "temp-dir",
		keySkipBadImages: "skip-bad-images",
		keyHistoryDB:     "history-db",
		keyNoHistory:     "no-history",
		keyLogLevel:      "log-level",
		keyLogFormat:     "log-format",
	})
}

// bindFlags binds viper keys to the named persistent or local flags of cmd.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		flag := cmd.PersistentFlags().Lookup(name)
		if flag == nil {
			flag = cmd.Flags().Lookup(name)
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func initConfig() {
	// .env values become environment variables before viper reads them.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("comicpdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "comicpdf"))
		}
	}

	viper.SetEnvPrefix("COMICPDF")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func conversionConfig() types.ConversionConfig {
	return types.ConversionConfig{
		RarTool:       viper.GetString(keyRarTool),
		TempDir:       viper.GetString(keyTempDir),
		SkipBadImages: viper.GetBool(keySkipBadImages),
	}
}

func batchConfig(args []string) types.BatchConfig {
	cfg := types.BatchConfig{
		ConversionConfig: conversionConfig(),
		InputDir:         viper.GetString(keyInputDir),
		OutputDir:        viper.GetString(keyOutputDir),
		ReportPath:       viper.GetString(keyReport),
	}
	if len(args) > 0 {
		cfg.InputDir = args[0]
	}
	if len(args) > 1 {
		cfg.OutputDir = args[1]
	}
	return cfg
}

func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{
		Path:     viper.GetString(keyHistoryDB),
		Disabled: viper.GetBool(keyNoHistory),
	}
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	return logging.New(types.LogConfig{
		Level:  viper.GetString(keyLogLevel),
		Format: viper.GetString(keyLogFormat),
	}, cmd.ErrOrStderr())
}

// newExtractor picks the RAR tool: the configured one, else whichever of
// unar and 7z is on PATH. Without one, CBZ archives still convert and CBR
// archives fail individually.
func newExtractor(cfg types.ConversionConfig, log zerolog.Logger) *archive.Extractor {
	if cfg.RarTool != "" {
		tool := archive.NewRarTool(cfg.RarTool)
		if !tool.Available() {
			log.Warn().Str("tool", cfg.RarTool).Msg("configured RAR tool not found")
		}
		return archive.NewExtractor(tool)
	}

	tool, err := archive.DetectRarTool()
	if err != nil {
		log.Debug().Err(err).Msg("CBR archives cannot be converted")
		return archive.NewExtractor(nil)
	}
	log.Debug().Str("tool", tool.Name()).Msg("using RAR tool")
	return archive.NewExtractor(tool)
}

func newConverter(cfg types.ConversionConfig, log zerolog.Logger) *convert.Converter {
	return convert.New(newExtractor(cfg, log), cfg, log)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
