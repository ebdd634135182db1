package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/bot"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/config"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/dispatcher"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/handlers"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/influx"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/logging"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/match"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/monitor"
	intOtel "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/otel"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/parser"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/policy"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/render"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/session"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "stereotanks"
)

var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// DBLogger is handed to the database and influx managers
	DBLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	LogFilePath string
	LogFile     *os.File

	SessionStartTime time.Time = time.Now()

	matchContext    = match.NewContext()
	handlerService  *handlers.Service
	eventDispatcher *dispatcher.Dispatcher
	influxManager   *influx.Manager
	statusMonitor   *monitor.Service

	// Storage backend (nil when recording is disabled)
	storageBackend storage.Backend
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	configDir := fs.String("config", ".", "directory containing "+config.ConfigFileName)
	if err := config.BindFlags(fs); err != nil {
		return err
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := config.Load(*configDir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := initLogging(ctx); err != nil {
		return err
	}
	defer closeLogging()
	Logger.Info("Starting up", "version", CurrentVersion, "buildDate", BuildDate)

	pc := config.GetPolicyConfig()
	decider, err := policy.New(pc.Type, pc.Seed)
	if err != nil {
		return err
	}
	var botOpts []bot.Option
	if config.GetBool("render.enabled") {
		botOpts = append(botOpts, bot.WithBoard(os.Stdout, render.New()))
	}

	if err := initStorage(); err != nil {
		return err
	}
	defer closeStorage()
	initInflux()
	defer closeInflux()

	sc := config.GetServerConfig()
	sess, err := session.Dial(ctx, session.Config{
		Host:         sc.Host,
		Port:         sc.Port,
		Nickname:     sc.Nickname,
		JoinCode:     sc.JoinCode,
		DialAttempts: sc.DialAttempts,
		DialBackoff:  sc.DialBackoff,
	}, Logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	eventDispatcher, err = dispatcher.New(logging.NewDispatcherLogger(Logger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	deps := handlers.Dependencies{
		Bot:        bot.New(decider, Logger, botOpts...),
		Parser:     parser.NewParser(Logger),
		Sender:     sess,
		LogManager: SlogManager,
	}
	if influxManager != nil {
		deps.Metrics = influxManager
	}
	handlerService = handlers.NewService(deps, matchContext)
	handlerService.SetBackend(storageBackend)
	handlerService.RegisterHandlers(eventDispatcher)

	startMonitor()
	defer stopMonitor()

	Logger.Info("Session running", "policy", pc.Type, "storage", config.GetString("storage.type"))
	err = sess.Run(ctx, eventDispatcher)
	eventDispatcher.Close()
	if err != nil {
		Logger.Error("Session ended with error", "error", err)
		return err
	}
	Logger.Info("Session closed")
	return nil
}

// initLogging opens the session log file and sets up slog with the optional
// graylog and OTel sinks. Log lines carry the current match and tick.
func initLogging(ctx context.Context) error {
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	if _, err := os.Stat(LogFilePath); err == nil {
		_ = os.Rename(LogFilePath, LogFilePath+".old")
	}
	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Logging to %s\n", LogFilePath)

	level := config.GetString("logLevel")
	SlogManager = logging.NewSlogManager()

	otelCfg := config.GetOTelConfig()
	var otelLogProvider *sdklog.LoggerProvider
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(ctx, intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    LogFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize OTel provider: %v\n", err)
		} else {
			otelLogProvider = OTelProvider.LoggerProvider()
		}
	}

	opts := []logging.SetupOption{logging.WithContext(matchContext.LogAttrs)}
	var graylog *gelf.Writer
	if config.GetBool("graylog.enabled") {
		graylog, err = logging.NewGraylogWriter(viper.GetString("graylog.address"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to graylog: %v\n", err)
		} else {
			opts = append(opts, logging.WithGraylog(graylog))
		}
	}

	SlogManager.Setup(LogFile, level, otelLogProvider, opts...)
	Logger = SlogManager.Logger()
	DBLogger = logging.NewZerolog(LogFile, level, matchContext.LogAttrs)

	if OTelProvider != nil {
		Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
	}
	if graylog != nil {
		Logger.Info("Graylog sink enabled", "address", viper.GetString("graylog.address"))
	}
	return nil
}

func closeLogging() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shut down OTel provider: %v\n", err)
		}
	}
	_ = SlogManager.Close()
	_ = LogFile.Close()
}

func initInflux() {
	if !config.GetBool("influx.enabled") {
		return
	}
	backupPath := filepath.Join(config.GetString("logsDir"),
		fmt.Sprintf("influx_backup_%s.log.gz", SessionStartTime.Format("20060102_150405")))
	m := influx.NewManager(DBLogger, backupPath)
	if err := m.Connect(); err != nil {
		Logger.Error("Failed to connect to InfluxDB, tick metrics disabled", "error", err)
		return
	}
	influxManager = m
}

func closeInflux() {
	if influxManager == nil {
		return
	}
	if err := influxManager.Close(); err != nil {
		Logger.Error("Failed to close InfluxDB manager", "error", err)
	}
}

func startMonitor() {
	if !config.GetBool("monitor.enabled") {
		return
	}
	deps := monitor.Dependencies{
		LogManager:   SlogManager,
		MatchContext: matchContext,
		Stats:        handlerService.Stats,
		StatusDir:    config.GetString("logsDir"),
		Interval:     config.GetDuration("monitor.interval"),
	}
	if q, ok := storageBackend.(monitor.QueueReporter); ok {
		deps.Queues = q
	}
	statusMonitor = monitor.NewService(deps)
	if err := statusMonitor.Start(); err != nil {
		Logger.Error("Failed to start status monitor", "error", err)
		statusMonitor = nil
		return
	}
	Logger.Debug("Status monitor started", "path", statusMonitor.StatusPath())
}

func stopMonitor() {
	if statusMonitor != nil {
		statusMonitor.Stop()
	}
}
