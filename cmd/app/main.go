package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"packing/cmd"
	httpin "packing/internal/adapters/in/http"
	"packing/internal/adapters/out/kafka"
	"packing/internal/adapters/out/postgres/orderrepo"
	"packing/internal/adapters/out/postgres/sessionrepo"
	"packing/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustOpenDatabase(configs)

	readyNotifier, err := kafka.NewReadyNotifier(
		strings.Split(configs.KafkaHost, ","), configs.KafkaOrderReadyTopic)
	if err != nil {
		log.Fatalf("Failed to create ready notifier: %v", err)
	}
	defer readyNotifier.Close()

	app := cmd.NewCompositionRoot(configs, gormDB, readyNotifier, logger)

	jobManager := jobs.NewJobManager(
		app.CreateRunTimeoutSweepCommandHandler(),
		configs.SweepCronSpec,
		configs.SessionTimeout,
		logger,
	)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:             goDotEnvVariable("HTTP_PORT"),
		DBHost:               goDotEnvVariable("DB_HOST"),
		DBPort:               goDotEnvVariable("DB_PORT"),
		DBUser:               goDotEnvVariable("DB_USER"),
		DBPassword:           goDotEnvVariable("DB_PASSWORD"),
		DBName:               goDotEnvVariable("DB_NAME"),
		DBSslMode:            goDotEnvVariable("DB_SSLMODE"),
		KafkaHost:            goDotEnvVariable("KAFKA_HOST"),
		KafkaOrderReadyTopic: goDotEnvVariable("KAFKA_ORDER_READY_TOPIC"),
		SessionTimeout:       minutesVariable("SESSION_TIMEOUT_MINUTES"),
		SweepCronSpec:        goDotEnvVariable("SWEEP_CRON_SPEC"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func minutesVariable(key string) time.Duration {
	minutes, err := strconv.Atoi(goDotEnvVariable(key))
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return time.Duration(minutes) * time.Minute
}

func mustOpenDatabase(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	// TranslateError turns the partial-unique-index violation on sessions
	// into gorm.ErrDuplicatedKey, which the session repository relies on.
	gormDB, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.PackedItemDTO{},
		&orderrepo.StatusHistoryDTO{},
		&sessionrepo.SessionDTO{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	return gormDB
}

func startWebServer(app cmd.CompositionRoot, port string) {
	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	server := httpin.NewServer(
		app.CreateStartOrResumeSessionCommandHandler(),
		app.CreateTakeoverOrdersCommandHandler(),
		app.CreateTouchActivityCommandHandler(),
		app.CreateMutatePackingRecordCommandHandler(),
		app.CreateEndSessionCommandHandler(),
		app.CreateGetActiveSessionsQueryHandler(),
		app.CreateGetPausedOrdersQueryHandler(),
	)
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
