package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/vtpl1/ruleserver/api"
	"github.com/vtpl1/ruleserver/db"
)

func getFolder(s string) string {
	err := os.MkdirAll(s, os.ModePerm)
	if err != nil {
		fmt.Printf("Unable to create folder %s, %v", s, err)
	}
	return s
}

func getApplicationName() string {
	return "rule-server"
}

func getLogFolder() string {
	return getFolder(filepath.Join("logs", getApplicationName()))
}

var GitCommit string

func getVersion() string {
	if GitCommit != "" {
		return GitCommit
	}
	GitCommit = "unknown"
	buildDate := ""

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return GitCommit
	}
	modified := false

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			GitCommit = setting.Value
		case "vcs.time":
			buildDate = setting.Value
		case "vcs.modified":
			modified = true
		}
	}
	if modified {
		GitCommit += "+CHANGES"
	}
	if buildDate != "" {
		GitCommit += " " + buildDate
	}
	return GitCommit
}

func main() {
	cmd := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "rule-server",
		Version:               getVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Value: "127.0.0.1",
				Usage: "The host address for the server",
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "The port number for the server",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "mongo-connection-string",
				Value:   "mongodb://localhost:27017/",
				Usage:   "The connection string for the MongoDB server",
				Sources: cli.EnvVars("MONGO_CONNECTION_STRING"),
			},
			&cli.StringFlag{
				Name:  "logfile",
				Value: fmt.Sprintf("%s.log", filepath.Join(getLogFolder(), getApplicationName())),
				Usage: "The log file path for the rotating logger",
			},
			&cli.StringFlag{
				Name:  "logLevel",
				Value: "debug",
				Usage: "The log level",
			},
		},
		Action: startServer,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func startServer(ctx context.Context, cmd *cli.Command) error {
	err, bufferWriter := initLogger(cmd.String("logfile"), cmd.String("logLevel"))
	if err != nil {
		return err
	}
	defer bufferWriter.Close()
	host := cmd.String("host")
	port := cmd.Int("port")
	address := fmt.Sprintf("%s:%d", host, port)

	mongoConnectionString := cmd.String("mongo-connection-string")
	mongoClient, err := db.GetMongoClient(ctx, mongoConnectionString)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB")
		return err
	}
	defer mongoClient.Disconnect(ctx)

	server := api.NewServer(db.NewMongoConfigStore(mongoClient))

	app := fiber.New(fiber.Config{
		ServerHeader: "Videonetics",
		AppName:      fmt.Sprintf("Rule Server %v", getVersion()),
	})

	app.Use(fiberzerolog.New(fiberzerolog.Config{
		Logger: &log.Logger,
	}))

	app.Get("camera/:cameraId/rule/:ruleType/config", server.GetConfigHandler)
	app.Post("camera/:cameraId/rule/:ruleType/config", server.SaveConfigHandler)
	app.Delete("camera/:cameraId/rule/:ruleType/config", server.DeleteConfigHandler)
	app.Get("camera/:cameraId/rule/:ruleType/armed", server.ArmedHandler)
	app.Get("camera/:cameraId/snapshot", server.SnapshotHandler)

	app.Use("camera/:cameraId/rule/:ruleType/editor/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			c.Locals("ownerId", c.Get(api.OwnerHeader))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("camera/:cameraId/rule/:ruleType/editor/ws", websocket.New(func(c *websocket.Conn) {
		server.EditorWSHandler(ctx, c)
	}))

	// Start the server in a goroutine
	go func() {
		log.Info().Msgf("Starting server at %s", address)
		if err := app.Listen(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	waitForTerminationRequest()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	log.Info().Msg("Starting shutdown")
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}
	log.Info().Msg("Server shut down gracefully")
	return nil
}

// waitForTerminationRequest handles termination signals to gracefully shut down the server.
func waitForTerminationRequest() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down server...")
}

// initLogger initializes the logger with zerolog, diode, and a rotating logger.
func initLogger(logFile string, logLevel string) (error, diode.Writer) {
	// Configure Lumberjack for log rotation
	rotatingLogger := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,   // Max size in MB before rotation
		MaxBackups: 3,    // Max number of old log files to keep
		MaxAge:     28,   // Max number of days to retain old log files
		Compress:   true, // Compress rotated files
	}

	// Wrap Lumberjack with Diode for non-blocking logging
	bufferedWriter := diode.NewWriter(rotatingLogger, 1000, 0, func(missed int) {
		fmt.Printf("Dropped %d log messages due to buffer overflow\n", missed)
	})

	log.Logger = zerolog.New(bufferedWriter).With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		fmt.Printf("Invalid log level: %s\n", logLevel)
		return err, bufferedWriter
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msgf("App started %s %s", getApplicationName(), getVersion())
	return nil, bufferedWriter
}
