package config

const (
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultTranscriberBinary = "whisper"

	defaultMethod             = "speech"
	defaultSilenceThresholdDB = -40.0
	defaultSilenceMinDuration = 2.0
	defaultMinChapterSeconds  = 180.0
	defaultSpeechInterval     = 30.0
	defaultSpeechWindow       = 10.0

	defaultOutputDir     = "chapters"
	defaultOutputFormat  = "mp3"
	defaultOutputBitrate = "128k"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			FFmpeg:      defaultFFmpegBinary,
			FFprobe:     defaultFFprobeBinary,
			Transcriber: defaultTranscriberBinary,
		},
		Detection: Detection{
			Method:             defaultMethod,
			SilenceThresholdDB: defaultSilenceThresholdDB,
			SilenceMinDuration: defaultSilenceMinDuration,
			MinChapterSeconds:  defaultMinChapterSeconds,
			SpeechInterval:     defaultSpeechInterval,
			SpeechWindow:       defaultSpeechWindow,
		},
		Output: Output{
			Dir:     defaultOutputDir,
			Format:  defaultOutputFormat,
			Bitrate: defaultOutputBitrate,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
