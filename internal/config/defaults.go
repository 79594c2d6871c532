package config

const (
	defaultSongsDir               = "~/.local/share/cartographer/songs"
	defaultMapsDir                = "~/.local/share/cartographer/maps"
	defaultLogDir                 = "~/.local/share/cartographer/logs"
	defaultBeatSageURL            = "https://beatsage.com"
	defaultArtistName             = "Unknown Artist"
	defaultDifficultyLabel        = "Expert"
	defaultModelValue             = "v2-flow"
	defaultStepTimeoutSeconds     = 10
	defaultDownloadTimeoutMinutes = 10
	defaultAudioFormat            = "m4a"
	defaultDownloadBinary         = "yt-dlp"
	defaultFetchTimeoutSeconds    = 300
	defaultAuthorName             = "Cartographer"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"

	defaultFileInputSelector      = "input[type='file']"
	defaultArtistInputSelector    = "input[placeholder='Song Artist']"
	defaultDifficultyItemSelector = "span.control-label"
	defaultAdvancedToggleSelector = "svg:has(path[d='M3 6L9 12L15 6'])"
	defaultSliderSelector         = "div.level-right svg#red"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SongsDir: defaultSongsDir,
			MapsDir:  defaultMapsDir,
			LogDir:   defaultLogDir,
		},
		BeatSage: BeatSage{
			URL:                    defaultBeatSageURL,
			Headless:               true,
			ArtistName:             defaultArtistName,
			DifficultyLabel:        defaultDifficultyLabel,
			ModelValue:             defaultModelValue,
			StepTimeoutSeconds:     defaultStepTimeoutSeconds,
			DownloadTimeoutMinutes: defaultDownloadTimeoutMinutes,
			Selectors: Selectors{
				FileInput:      defaultFileInputSelector,
				ArtistInput:    defaultArtistInputSelector,
				DifficultyItem: defaultDifficultyItemSelector,
				AdvancedToggle: defaultAdvancedToggleSelector,
				Slider:         defaultSliderSelector,
			},
		},
		Download: Download{
			Enabled:             false,
			AudioFormat:         defaultAudioFormat,
			Binary:              defaultDownloadBinary,
			FetchTimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Postprocess: Postprocess{
			AuthorName: defaultAuthorName,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
