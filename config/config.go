package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/scanforge/scanforge/effects"
	"github.com/scanforge/scanforge/pipeline"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the server settings
type ServerConfig struct {
	ListenAddrIP     string
	ListenAddrPort   string
	DatabaseType     string
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseDbname   string
	DatabaseSslmode  string

	TemplatePath string // claim form PDF
	FieldMapPath string // TOML field coordinates
	OutputPath   string // finished artifacts
	TempPath     string // working intermediates
	DebugPath    string // per-stage snapshots
	ExportPath   string // CSV exports
	FontName     string

	DocumentCount    int
	RandomSeed       int64 // 0 means derive from clock
	GenerateInterval int   // minutes between scheduled batches
	BatchMode        bool  // run one batch and exit

	DebugEnabled bool
	DebugExclude string // comma-separated stage names

	Pipeline pipeline.Config
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

// getEnvRange reads a <KEY>_MIN / <KEY>_MAX pair. A missing max collapses
// the range to the min, so a single key configures a fixed value.
func getEnvRange(key string, defMin, defMax float64) effects.Range {
	min := getEnvFloat(key+"_MIN", defMin)
	max := getEnvFloat(key+"_MAX", defMax)
	if os.Getenv(key+"_MAX") == "" && os.Getenv(key+"_MIN") != "" {
		max = min
	}
	return effects.Range{Min: min, Max: max}
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive := ServerConfig{}

	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	// Load configuration from environment variables with defaults

	// Server configuration
	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")

	// Database configuration
	serverConfigLive.DatabaseType = getEnv("DATABASE_TYPE", "sqlite")
	serverConfigLive.DatabaseHost = getEnv("DATABASE_HOST", "localhost")
	serverConfigLive.DatabasePort = getEnv("DATABASE_PORT", "5432")
	serverConfigLive.DatabaseUser = getEnv("DATABASE_USER", "scanforge")
	serverConfigLive.DatabasePassword = getEnv("DATABASE_PASSWORD", "")
	serverConfigLive.DatabaseDbname = getEnv("DATABASE_NAME", "scanforge")
	serverConfigLive.DatabaseSslmode = getEnv("DATABASE_SSLMODE", "disable")

	logger.Info("Database configuration loaded", "type", serverConfigLive.DatabaseType)

	// Path configuration
	serverConfigLive.TemplatePath = absPath(logger, getEnv("TEMPLATE_PATH", "assets/claim_form.pdf"))
	serverConfigLive.FieldMapPath = absPath(logger, getEnv("FIELD_MAP_PATH", "assets/field_map.toml"))
	serverConfigLive.OutputPath = absPath(logger, getEnv("OUTPUT_PATH", "output"))
	serverConfigLive.TempPath = absPath(logger, getEnv("TEMP_PATH", "temp"))
	serverConfigLive.DebugPath = absPath(logger, getEnv("DEBUG_PATH", "debug"))
	serverConfigLive.ExportPath = absPath(logger, getEnv("EXPORT_PATH", "exports"))
	serverConfigLive.FontName = getEnv("STAMP_FONT", "DejaVuSans.ttf")

	// Batch configuration
	serverConfigLive.DocumentCount = getEnvInt("DOCUMENT_COUNT", 10)
	serverConfigLive.RandomSeed = int64(getEnvInt("RANDOM_SEED", 0))
	serverConfigLive.GenerateInterval = getEnvInt("GENERATE_INTERVAL", 0)
	serverConfigLive.BatchMode = getEnvBool("BATCH_MODE", false)

	// Debug instrumentation
	serverConfigLive.DebugEnabled = getEnvBool("DEBUG_ENABLED", false)
	serverConfigLive.DebugExclude = getEnv("DEBUG_EXCLUDE", "")

	serverConfigLive.Pipeline = loadPipelineConfig()

	fmt.Println("\n========================================")
	fmt.Println("   scanforge - Document Degradation")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "scanforge.log"))
	fmt.Println("Initializing...")

	logger.Info("About to setup database", "type", serverConfigLive.DatabaseType)

	return serverConfigLive, logger
}

func absPath(logger *slog.Logger, path string) string {
	abs, err := filepath.Abs(filepath.ToSlash(path))
	if err != nil {
		logger.Error("Failed creating absolute path", "path", path, "error", err)
		return path
	}
	return abs
}

func toggle(key string, def bool) pipeline.Toggle {
	return pipeline.Toggle{Enabled: getEnvBool(key+"_ENABLED", def)}
}

// loadPipelineConfig reads every per-effect key into the pipeline config.
// Defaults are tuned so a bare environment still produces plausibly
// degraded pages.
func loadPipelineConfig() pipeline.Config {
	cfg := pipeline.Config{}

	cfg.Warp = toggle("WARP", true)
	cfg.WarpCfg = effects.WarpConfig{
		Probability: getEnvFloat("WARP_PROB", 0.4),
		Offset:      getEnvRange("WARP_OFFSET", 5, 30),
		FinalScale:  getEnvFloat("WARP_FINAL_SCALE", 1.0),
	}

	cfg.Rotate = toggle("ROTATE", true)
	cfg.RotateCfg = effects.RotateConfig{
		Probability: getEnvFloat("ROTATE_PROB", 0.6),
		Angle:       getEnvRange("ROTATE_ANGLE", -3, 3),
		Mirror: effects.MirrorConfig{
			Enabled:     getEnvBool("MIRROR_ENABLED", false),
			Probability: getEnvFloat("MIRROR_PROB", 0.05),
			Modes:       splitList(getEnv("MIRROR_MODES", "vertical,horizontal,both,rotate180")),
		},
	}

	cfg.StripesWhite = toggle("STRIPES_WHITE", true)
	cfg.StripesWhiteCfg = effects.StripesWhiteConfig{
		Probability: getEnvFloat("STRIPES_WHITE_PROB", 0.2),
		Axis:        getEnv("STRIPES_WHITE_AXIS", "horizontal"),
		Thickness:   getEnvRange("STRIPES_WHITE_THICKNESS", 1, 4),
		Spacing:     getEnvRange("STRIPES_WHITE_SPACING", 20, 120),
		NoiseBlur:   getEnvFloat("STRIPES_WHITE_NOISE_BLUR", 3.0),
	}

	cfg.AlphaFlatten = toggle("ALPHA_FLATTEN", true)
	cfg.Grayscale = toggle("GRAYSCALE", true)

	cfg.Brightness = toggle("BRIGHTNESS", true)
	cfg.BrightnessCfg = effects.BrightnessConfig{
		Probability: getEnvFloat("BRIGHTNESS_PROB", 0.5),
		Mode:        getEnv("BRIGHTNESS_MODE", "percent"),
		Percent:     getEnvRange("BRIGHTNESS_PERCENT", 5, 25),
		BlackPoint:  getEnvInt("BRIGHTNESS_BLACK_POINT", 0),
		WhitePoint:  getEnvInt("BRIGHTNESS_WHITE_POINT", 255),
		Opacity:     getEnvRange("BRIGHTNESS_OPACITY", 0.05, 0.25),
	}

	cfg.Blur = toggle("BLUR", true)
	cfg.BlurSigma = getEnvRange("BLUR_SIGMA", 0.4, 1.2)
	cfg.BlurProb = getEnvFloat("BLUR_PROB", 0.5)

	cfg.StripesBlack = toggle("STRIPES_BLACK", true)
	cfg.StripesBlackCfg = effects.StripesBlackConfig{
		Probability:  getEnvFloat("STRIPES_BLACK_PROB", 0.25),
		Clusters:     getEnvRange("STRIPES_BLACK_CLUSTERS", 1, 4),
		RegionSize:   getEnvRange("STRIPES_BLACK_REGION", 40, 160),
		Points:       getEnvRange("STRIPES_BLACK_POINTS", 200, 1200),
		Keep:         getEnvFloat("STRIPES_BLACK_KEEP", 0.6),
		ScanlineStep: getEnvInt("STRIPES_BLACK_SCANLINE", 0),
		Smear:        getEnvBool("STRIPES_BLACK_SMEAR", true),
		SmearLen:     getEnvRange("STRIPES_BLACK_SMEAR_LEN", 2, 12),
	}

	cfg.RasterDither = toggle("RASTER_DITHER", false)
	cfg.RasterDitherCfg = effects.DitherConfig{
		Probability: getEnvFloat("RASTER_DITHER_PROB", 0.3),
		Method:      getEnv("RASTER_DITHER_METHOD", "bayer4"),
		Levels:      getEnvInt("RASTER_DITHER_LEVELS", 0),
	}

	cfg.DiffusionDither = toggle("DIFFUSION_DITHER", true)
	cfg.DiffusionCfg = effects.DitherConfig{
		Probability: getEnvFloat("DIFFUSION_DITHER_PROB", 0.4),
		Method:      getEnv("DIFFUSION_DITHER_METHOD", "floydsteinberg"),
		Levels:      getEnvInt("DIFFUSION_DITHER_LEVELS", 0),
	}

	cfg.WhiteNoise = toggle("WHITE_NOISE", true)
	cfg.WhiteNoiseCfg = effects.NoiseConfig{
		Probability: getEnvFloat("WHITE_NOISE_PROB", 0.5),
		Density:     getEnvRange("WHITE_NOISE_DENSITY", 0.001, 0.01),
		Color:       getEnv("WHITE_NOISE_COLOR", "white"),
	}

	cfg.StandaloneRaster = toggle("STANDALONE_RASTER", false)
	cfg.StandaloneCfg = effects.DitherConfig{
		Probability: getEnvFloat("STANDALONE_RASTER_PROB", 1.0),
		Method:      getEnv("STANDALONE_RASTER_METHOD", "bayer8"),
		Levels:      getEnvInt("STANDALONE_RASTER_LEVELS", 0),
	}

	cfg.FinalThreshold = toggle("FINAL_THRESHOLD", true)
	cfg.ThresholdLevel = getEnvInt("FINAL_THRESHOLD_LEVEL", 160)

	cfg.Dropout = toggle("DROPOUT", true)
	cfg.DropoutCfg = effects.DropoutConfig{
		Probability: getEnvFloat("DROPOUT_PROB", 0.2),
		Coverage:    getEnvFloat("DROPOUT_COVERAGE", 0.01),
		BlockSize:   getEnvRange("DROPOUT_BLOCK_SIZE", 4, 16),
	}

	cfg.TileShift = toggle("TILE_SHIFT", true)
	cfg.TileShiftCfg = effects.TileShiftConfig{
		Probability:  getEnvFloat("TILE_SHIFT_PROB", 0.15),
		Count:        getEnvRange("TILE_SHIFT_COUNT", 1, 3),
		SizeBase:     getEnvInt("TILE_SHIFT_SIZE_BASE", 40),
		SizeVar:      getEnvInt("TILE_SHIFT_SIZE_VAR", 80),
		OffsetBase:   getEnvInt("TILE_SHIFT_OFFSET_BASE", 2),
		OffsetJitter: getEnvInt("TILE_SHIFT_OFFSET_JITTER", 10),
	}

	cfg.Compression = getEnv("OUTPUT_COMPRESSION", pipeline.CompressionDeflate)

	return cfg
}

func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks the loaded configuration and returns every problem found
func (c ServerConfig) Validate() []error {
	var errs []error

	if c.DocumentCount < 1 {
		errs = append(errs, fmt.Errorf("DOCUMENT_COUNT: must be at least 1, got %d", c.DocumentCount))
	}
	if c.GenerateInterval < 0 {
		errs = append(errs, fmt.Errorf("GENERATE_INTERVAL: must not be negative, got %d", c.GenerateInterval))
	}
	switch c.DatabaseType {
	case "sqlite", "postgres", "ephemeral":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_TYPE: unknown type %q", c.DatabaseType))
	}

	errs = append(errs, c.Pipeline.Validate()...)
	return errs
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "debug")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	logOutput := getEnv("LOG_OUTPUT", "file")
	var logWriter io.Writer

	if logOutput == "stdout" {
		logWriter = os.Stdout
	} else {
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "scanforge.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}
