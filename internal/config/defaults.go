package config

const (
	defaultConfigPath   = "~/.config/staffline-mcp/config.toml"
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
	defaultChannel      = "luma"
	defaultScanFormat   = "table"
	defaultLineColor    = "#FF0000"
	defaultStaffColor   = "#00C000"
	defaultOpacity      = 0.6
	maxScanWorkers      = 64
	logLevelEnvVariable = "STAFFLINE_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults.
// Scan.Workers is left at zero, which means one worker per CPU.
func Default() Config {
	return Config{
		Log: Log{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Detection: Detection{
			Channel: defaultChannel,
		},
		Scan: Scan{
			Format: defaultScanFormat,
		},
		Overlay: Overlay{
			LineColor:  defaultLineColor,
			StaffColor: defaultStaffColor,
			Opacity:    defaultOpacity,
		},
	}
}
