package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cluster-service/render"
	"cluster-service/telemetry"
)

var (
	version     = flag.Bool("version", false, "Print version info")
	help        = flag.Bool("help", false, "Print help")
	configFile  = flag.String("config", "", "Optional YAML config file; flags given explicitly win")
	logLevel    = flag.Int("log", 3, "Log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")
	logFile     = flag.String("log_file", "", "Write logs to this file with rotation instead of stderr")
	redisServer = flag.String("redis_server", "127.0.0.1", "Redis server address")
	redisPort   = flag.Int("redis_port", 6379, "Redis server port")
	canDevice   = flag.String("can_device", "", "CAN device name, empty to disable the CAN decoder")
	ecuType     = flag.String("ecu_type", "bosch", "ECU type (bosch or votol)")
	speedMode   = flag.String("speed_mode", "kmh", "Speed unit after startup (kmh, mph or knots)")
	window      = flag.Bool("window", false, "Open a window drawing the cluster")
	width       = flag.Int("width", 800, "Window width")
	height      = flag.Int("height", 480, "Window height")
	fullscreen  = flag.Bool("fullscreen", false, "Start the window in fullscreen mode")
)

const (
	ProjectName    = "cluster-service"
	ProjectVersion = "1.0.0"
)

func printVersion() {
	fmt.Printf("%s v%s\n", ProjectName, ProjectVersion)
}

func printHelp() {
	printVersion()
	flag.PrintDefaults()
}

func optionsFromFlags() (*Options, error) {
	decoder, err := telemetry.ParseDecoderType(*ecuType)
	if err != nil {
		return nil, err
	}
	mode, err := telemetry.ParseSpeedMode(*speedMode)
	if err != nil {
		return nil, err
	}
	if *redisPort < 0 || *redisPort > 65535 {
		return nil, fmt.Errorf("invalid redis port %d", *redisPort)
	}

	opts := &Options{
		LogLevel:        LogLevel(*logLevel),
		LogFile:         *logFile,
		RedisServerAddr: *redisServer,
		RedisServerPort: uint16(*redisPort),
		CANDevice:       *canDevice,
		ECUType:         decoder,
		SpeedMode:       mode,
		Window:          *window,
		WindowWidth:     *width,
		WindowHeight:    *height,
		Fullscreen:      *fullscreen,
	}

	if *configFile != "" {
		cfg, err := LoadConfigFile(*configFile)
		if err != nil {
			return nil, err
		}
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) {
			explicit[f.Name] = true
		})
		if err := cfg.Apply(opts, explicit); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", *configFile, err)
		}
	}

	return opts, opts.Validate()
}

func main() {
	flag.Parse()

	if *version {
		printVersion()
		os.Exit(0)
	}

	if *help {
		printHelp()
		os.Exit(0)
	}

	opts, err := optionsFromFlags()
	if err != nil {
		log.Fatalf("invalid options: %v", err)
	}

	if opts.LogFile != "" {
		log.SetOutput(newRotatingLog(opts.LogFile))
	}
	log.Printf("Selected ECU type: %s", opts.ECUType)

	app, err := NewClusterApp(opts)
	if err != nil {
		log.Fatalf("failed to create cluster app: %v", err)
	}
	defer app.Destroy()

	// Handle SIGINT and SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !opts.Window {
		<-ctx.Done()
		return
	}

	// ebiten owns the main goroutine until the window closes
	err = render.Run(ctx, app.Document(), render.Options{
		Width:      opts.WindowWidth,
		Height:     opts.WindowHeight,
		Fullscreen: opts.Fullscreen,
		Title:      ProjectName,
	})
	if err != nil {
		log.Printf("Window error: %v", err)
	}
}
