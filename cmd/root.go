package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"aisnap/pkg/combine"
	"aisnap/pkg/logging"
	"aisnap/pkg/output"
	"aisnap/pkg/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Flag names, also used as viper keys and AI_SNAP_* environment suffixes.
const (
	flagConfigFile     = "config-file"
	flagInstruct       = "instruct"
	flagInstructFooter = "instruct-footer"
	flagClipboard      = "clipboard"
	flagOutput         = "output"
	flagWatch          = "watch"
	flagDebug          = "debug"
)

// RootCmd is the base command: it snapshots a directory.
var RootCmd = &cobra.Command{
	Use:   version.AppName + " [directory]",
	Short: "Save project structure and file contents for an AI chat",
	Long: `ai-snap lists every file of a project and appends their contents as fenced
code blocks, producing one text document ready to paste into an AI chat.

Files are filtered by a gitignore-style rule file (.ai-snap by default).
Optional instruction and footer files (.ai-snap-instructions and
.ai-snap-instructions-footer by default) wrap the document.`,
	Args:              cobra.MaximumNArgs(1),
	Version:           version.Get().Version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runSnapshot,
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	flags := RootCmd.Flags()
	flags.StringP(flagConfigFile, "c", "", "Path to the config file (gitignore-like patterns)")
	flags.String(flagInstruct, "", "Path to the instruction file to include at the beginning")
	flags.String(flagInstructFooter, "", "Path to the footer instruction file that follows the file contents")
	flags.BoolP(flagClipboard, "p", false, "Copy the output to the clipboard")
	flags.StringP(flagOutput, "o", output.StdoutPath, "Output file path (default: stdout)")
	flags.BoolP(flagWatch, "w", false, "Re-create the snapshot whenever project files change")
	RootCmd.PersistentFlags().Bool(flagDebug, false, "Enable debug logging on stderr")

	viper.SetEnvPrefix("AI_SNAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindPFlags(flags))
	cobra.CheckErr(viper.BindPFlags(RootCmd.PersistentFlags()))
}

func setupLogging(cmd *cobra.Command, args []string) error {
	info := version.Get()
	if err := logging.Setup(viper.GetBool(flagDebug), version.AppName, info.Version); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	logger := logging.Logger

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	flags := combine.Flags{
		ConfigFile:     viper.GetString(flagConfigFile),
		Instruct:       viper.GetString(flagInstruct),
		InstructFooter: viper.GetString(flagInstructFooter),
		Output:         viper.GetString(flagOutput),
		Clipboard:      viper.GetBool(flagClipboard),
	}
	if len(args) > 0 {
		flags.Root = args[0]
	}

	opts, err := combine.ResolveOptions(workDir, flags)
	if err != nil {
		return err
	}
	logger.Debug("Resolved options",
		zap.String("root", opts.Root),
		zap.String("configFile", opts.ConfigFile),
		zap.String("instructFile", opts.InstructFile),
		zap.String("footerFile", opts.FooterFile),
		zap.String("output", opts.Output),
		zap.Bool("clipboard", opts.Clipboard))

	sink, err := output.New(opts.Output, opts.Clipboard, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}

	if viper.GetBool(flagWatch) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return combine.Watch(ctx, opts, sink, logger)
	}
	return combine.Execute(opts, sink, logger)
}
