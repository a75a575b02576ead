package main

import (
	"github.com/spf13/cobra"

	"chapterize/internal/config"
	"chapterize/internal/detect"
)

type rootOptions struct {
	configPath string
	logFile    string
	logLevel   string
	noColor    bool

	output          string
	method          string
	chaptersFile    string
	format          string
	bitrate         string
	mono            bool
	silenceDuration float64
	thresholdDB     float64
	minChapter      float64
	speechInterval  float64
	speechWindow    float64
	ffmpeg          string
	ffprobe         string
	transcriber     string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "chapterize [flags] <audiobook>",
		Short: "Split audiobooks into per-chapter files",
		Long: `Chapterize detects chapter boundaries in an audiobook and exports one
audio file per chapter, plus a JSON sidecar describing the result.

Detection methods:
  metadata  use chapter marks embedded in the container
  silence   cut at long silent gaps
  speech    sample audio and listen for spoken chapter announcements
  json      read boundaries from a timing file (see --json)

The metadata and speech methods fall back to silence detection when they
find nothing usable.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runSplit(cmd, opts, args[0])
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "chapters", "Directory for exported chapter files")
	flags.StringVar(&opts.method, "method", "speech", "Detection method: metadata, silence, speech, or json")
	flags.StringVar(&opts.chaptersFile, "json", "", "Chapter timing file (implies --method json)")
	flags.StringVarP(&opts.format, "format", "f", "mp3", "Output format: mp3, m4a, m4b, or any ffmpeg container")
	flags.StringVarP(&opts.bitrate, "bitrate", "b", "128k", "Audio bitrate for re-encoded chapters")
	flags.BoolVar(&opts.mono, "mono", false, "Downmix re-encoded chapters to mono")
	flags.Float64VarP(&opts.silenceDuration, "silence-duration", "s", 2.0, "Minimum silence length in seconds")
	flags.Float64VarP(&opts.thresholdDB, "threshold", "t", -40, "Silence threshold in decibels")
	flags.Float64VarP(&opts.minChapter, "min-chapter", "m", 180, "Minimum chapter length in seconds")
	flags.Float64Var(&opts.speechInterval, "speech-interval", 30, "Seconds between speech samples")
	flags.Float64Var(&opts.speechWindow, "speech-window", 10, "Length of each speech sample in seconds")

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	persistent.StringVar(&opts.ffmpeg, "ffmpeg", "", "Path to the ffmpeg binary")
	persistent.StringVar(&opts.ffprobe, "ffprobe", "", "Path to the ffprobe binary")
	persistent.StringVar(&opts.transcriber, "transcriber", "", "Path to the speech-to-text binary")
	persistent.StringVar(&opts.logFile, "log-file", "", "Mirror logs into this file")
	persistent.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, or error")
	persistent.BoolVar(&opts.noColor, "no-color", false, "Disable ANSI colors and table borders")

	rootCmd.AddCommand(newCheckCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// loadConfig resolves the configuration file and layers explicit flag values
// on top. Flags that were not set on the command line leave the configured
// values alone.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, _, _, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	o.apply(cmd, cfg)
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	set := func(name string, assign func()) {
		if flags.Changed(name) {
			assign()
		}
	}

	set("output", func() { cfg.Output.Dir = o.output })
	set("method", func() { cfg.Detection.Method = o.method })
	set("format", func() { cfg.Output.Format = o.format })
	set("bitrate", func() { cfg.Output.Bitrate = o.bitrate })
	set("mono", func() { cfg.Output.Mono = o.mono })
	set("silence-duration", func() { cfg.Detection.SilenceMinDuration = o.silenceDuration })
	set("threshold", func() { cfg.Detection.SilenceThresholdDB = o.thresholdDB })
	set("min-chapter", func() { cfg.Detection.MinChapterSeconds = o.minChapter })
	set("speech-interval", func() { cfg.Detection.SpeechInterval = o.speechInterval })
	set("speech-window", func() { cfg.Detection.SpeechWindow = o.speechWindow })
	set("ffmpeg", func() { cfg.Tools.FFmpeg = o.ffmpeg })
	set("ffprobe", func() { cfg.Tools.FFprobe = o.ffprobe })
	set("transcriber", func() { cfg.Tools.Transcriber = o.transcriber })
	set("log-file", func() { cfg.Logging.File = o.logFile })
	set("log-level", func() { cfg.Logging.Level = o.logLevel })

	// A timing file selects the json method outright.
	if o.chaptersFile != "" {
		cfg.Detection.Method = detect.MethodJSON
	}
}
