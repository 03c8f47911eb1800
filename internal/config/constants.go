package config

// Application constants
const (
	AppName    = "pvflash"
	AppVersion = "0.1.0"

	// EnvPrefix namespaces environment overrides, e.g. PVFLASH_BATCH_YEARS
	EnvPrefix = "PVFLASH"

	// Intensity handling
	DefaultIntensityMargin    = 0.05
	DefaultIntensityIncrement = 0.1

	// Nameplate ratings are at 1 sun; PLR is computed at this level only
	DefaultPLRReferenceSun = 1.0

	// IV analysis engine tuning
	DefaultRshVCell       = 0.45
	DefaultCorrectionStep = 1
)
