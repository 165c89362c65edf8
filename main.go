package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis/v3"
	"github.com/khanghh/docportal/internal/audit"
	"github.com/khanghh/docportal/internal/auth"
	"github.com/khanghh/docportal/internal/common"
	"github.com/khanghh/docportal/internal/config"
	"github.com/khanghh/docportal/internal/documents"
	"github.com/khanghh/docportal/internal/handlers/web"
	"github.com/khanghh/docportal/internal/mail"
	"github.com/khanghh/docportal/internal/middlewares"
	"github.com/khanghh/docportal/internal/middlewares/sessions"
	"github.com/khanghh/docportal/internal/render"
	"github.com/khanghh/docportal/internal/store"
	"github.com/khanghh/docportal/internal/users"
	"github.com/khanghh/docportal/model"
	"github.com/khanghh/docportal/model/query"
	"github.com/khanghh/docportal/params"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "docportal - Employee document portal with activity auditing"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name:  "version",
			Usage: "Print version information",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
		{
			Name:   "migrate",
			Usage:  "Apply database migrations and exit",
			Action: migrate,
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustLoadConfig(ctx *cli.Context) *config.Config {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		os.Exit(1)
	}
	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))
	return cfg
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if len(dbConfig.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(dbConfig.Replicas))
		for _, dsn := range dbConfig.Replicas {
			replicas = append(replicas, mysql.Open(dsn))
		}
		// activity feed reads go to replicas, writes stay on the primary
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}, &model.ActivityEvent{})
		if err := db.Use(resolver); err != nil {
			slog.Error("Failed to register database replicas", "error", err)
			os.Exit(1)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to access database pool", "error", err)
		os.Exit(1)
	}
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	}
	return db
}

func mustMigrate(db *gorm.DB) {
	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}
}

func mustInitMailSender(mailCfg config.MailConfig) mail.MailSender {
	switch mailCfg.Backend {
	case "log":
		slog.Warn("Mail delivery disabled, messages are written to the log")
		return mail.NewLogMailSender()
	case "smtp":
		smtpCfg := mailCfg.SMTP
		sender, err := mail.NewSMTPMailSender(mail.SMTPConfig{
			Host:     smtpCfg.Host,
			Port:     smtpCfg.Port,
			Username: smtpCfg.Username,
			Password: smtpCfg.Password,
			TLS:      smtpCfg.TLS,
			CertFile: smtpCfg.CertFile,
			KeyFile:  smtpCfg.KeyFile,
			CAFile:   smtpCfg.CAFile,
		}, smtpCfg.From)
		if err != nil {
			slog.Error("Failed to initialize SMTP mail sender", "error", err)
			os.Exit(1)
		}
		return sender
	}
	slog.Error("Unsupported mail sender backend", "backend", mailCfg.Backend)
	os.Exit(1)
	return nil
}

func mustInitRedisStorage(redisCfg config.RedisConfig) *redis.Storage {
	return redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
}

func sessionStorage(backend string, redisStorage *redis.Storage) fiber.Storage {
	if backend == "memory" {
		slog.Warn("Sessions are kept in memory and will not survive a restart")
		return memory.New(memory.Config{GCInterval: time.Minute})
	}
	return redisStorage
}

func migrate(ctx *cli.Context) error {
	cfg := mustLoadConfig(ctx)
	db := mustInitDatabase(cfg.MySQL)
	mustMigrate(db)
	slog.Info("Database migrations applied")
	return nil
}

func run(ctx *cli.Context) error {
	config := mustLoadConfig(ctx)

	globalVars := fiber.Map{
		"siteName": config.SiteName,
		"baseURL":  config.BaseURL,
	}
	if err := render.Initialize(globalVars, config.TemplateDir); err != nil {
		slog.Error("Failed to initialize templates", "error", err)
		return err
	}

	db := mustInitDatabase(config.MySQL)
	mustMigrate(db)
	query.SetDefault(db)
	redisStorage := mustInitRedisStorage(config.Redis)
	cacheStorage := store.NewRedisStorage(redisStorage.Conn())
	mailSender := mustInitMailSender(config.Mail)

	fileStore, err := documents.NewLocalFileStore(config.Documents.Root)
	if err != nil {
		slog.Error("Failed to open document root", "root", config.Documents.Root, "error", err)
		return err
	}
	defer fileStore.Close()

	// repositories
	var (
		userRepo     = users.NewUserRepository(query.Q)
		activityRepo = audit.NewActivityRepository(query.Q)
		resendStore  = store.New[auth.ResendRecord](cacheStorage, params.ResendKeyPrefix)
	)

	// services
	var (
		recorder    = audit.NewRecorder(activityRepo)
		authService = auth.NewAuthService(
			query.Q,
			userRepo,
			recorder,
			auth.NewBcryptHasher(config.Signup.BcryptCost),
			auth.NewTokenIssuer(config.Verification.Secret, config.Verification.Expiration),
			mailSender,
			resendStore,
			auth.Options{
				BaseURL:           config.BaseURL,
				EmailDomain:       config.Signup.EmailDomain,
				AdminEmails:       config.Signup.AdminEmails,
				PasswordMinLength: config.Signup.PasswordMinLength,
				TokenExpiration:   config.Verification.Expiration,
				MailTimeout:       config.Mail.Timeout,
				ResendCooldown:    config.Verification.ResendCooldown,
			},
		)
		tracker = documents.NewTracker(fileStore, recorder)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(config.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	router.Use(middlewares.InjectGlobalVars(globalVars))
	router.Use(middlewares.ClientInfo())
	router.Use(sessions.New(sessions.Config{
		Storage:        sessionStorage(config.Session.Backend, redisStorage),
		SessionMaxAge:  config.Session.SessionMaxAge,
		CookieSecure:   config.Session.CookieSecure,
		CookieHttpOnly: config.Session.CookieHttpOnly,
		CookieName:     config.Session.CookieName,
	}))
	web.SetupRoutes(router, authService, tracker)

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	go common.StartHealthCheckServer(healthCheckCtx, done, config.HealthCheckAddr, redisStorage.Conn(), db)
	defer func() {
		term()
		<-done
	}()
	return router.Listen(config.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
