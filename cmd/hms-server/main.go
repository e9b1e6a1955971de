package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/careaxis/hms/internal/config"
	"github.com/careaxis/hms/internal/domain/account"
	"github.com/careaxis/hms/internal/domain/appointment"
	"github.com/careaxis/hms/internal/domain/billing"
	"github.com/careaxis/hms/internal/domain/document"
	"github.com/careaxis/hms/internal/domain/facility"
	"github.com/careaxis/hms/internal/domain/patient"
	"github.com/careaxis/hms/internal/domain/pharmacy"
	"github.com/careaxis/hms/internal/domain/staff"
	"github.com/careaxis/hms/internal/platform/auth"
	"github.com/careaxis/hms/internal/platform/blobstore"
	"github.com/careaxis/hms/internal/platform/crypt"
	"github.com/careaxis/hms/internal/platform/db"
	"github.com/careaxis/hms/internal/platform/middleware"
	"github.com/careaxis/hms/internal/platform/notification"
	"github.com/careaxis/hms/internal/platform/token"
	"github.com/careaxis/hms/pkg/respond"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management System API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createadmin",
		Short: "Create an administrative account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			pass, _ := cmd.Flags().GetString("password")
			first, _ := cmd.Flags().GetString("first-name")
			last, _ := cmd.Flags().GetString("last-name")
			if email == "" || pass == "" {
				return fmt.Errorf("--email and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := zerolog.Nop()
			revoked := auth.NewMemoryRevocationStore()
			defer revoked.Close()
			tokens := token.NewService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.VerifyTokenSecret)
			mailer := notification.NewService(notification.NewTemplateEngine(), logMailer{logger}, logMailer{logger}, logger)

			svc := account.NewService(account.NewUserRepoPG(pool), tokens, revoked, mailer, cfg.PublicBaseURL, logger)
			u, err := svc.CreateAdmin(ctx, email, first, last, pass)
			if err != nil {
				return err
			}
			fmt.Printf("Created administrative account %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	cmd.Flags().String("first-name", "Admin", "First name")
	cmd.Flags().String("last-name", "User", "Last name")
	return cmd
}

// logMailer satisfies the email and SMS sender interfaces by logging the
// message. It stands in when no SMTP relay is configured.
type logMailer struct {
	log zerolog.Logger
}

func (m logMailer) SendEmail(_ context.Context, to, subject, body string) error {
	m.log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("email (not delivered, SMTP unconfigured)")
	return nil
}

func (m logMailer) SendSMS(_ context.Context, to, body string) error {
	m.log.Info().Str("to", to).Str("body", body).Msg("sms (not delivered, no SMS gateway)")
	return nil
}

// devSecret fills a missing token secret in development with a random value.
// Tokens will not survive a restart, which is fine for local work.
func devSecret(name, value string, log zerolog.Logger) string {
	if value != "" {
		return value
	}
	buf := make([]byte, 32)
	if _, err := crypto_rand.Read(buf); err != nil {
		log.Fatal().Err(err).Msg("cannot generate dev secret")
	}
	log.Warn().Str("secret", name).Msg("generated ephemeral dev secret")
	return hex.EncodeToString(buf)
}

// envelopeErrorHandler renders errors in the {success, message} envelope so
// rejections from middleware (401 "not logged in", 403) match the shape of
// handler responses.
func envelopeErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if s, ok := he.Message.(string); ok {
			message = s
		} else {
			message = http.StatusText(status)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = respond.Fail(c, status, message)
}

// publicPath reports whether a request path needs no authentication.
func publicPath(path string) bool {
	switch {
	case path == "/health", path == "/health/ready":
		return true
	case strings.HasPrefix(path, "/auth/"):
		return true
	case strings.HasPrefix(path, "/files/"):
		return true
	}
	return false
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.IsDev() {
		cfg.AccessTokenSecret = devSecret("ACCESS_TOKEN_SECRET", cfg.AccessTokenSecret, logger)
		cfg.RefreshTokenSecret = devSecret("REFRESH_TOKEN_SECRET", cfg.RefreshTokenSecret, logger)
		cfg.VerifyTokenSecret = devSecret("VERIFY_TOKEN_SECRET", cfg.VerifyTokenSecret, logger)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Token revocation: Redis when available, in-process otherwise. One
	// client serves both the revocation store and the rate limiter.
	var revoked auth.RevocationStore
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		revoked = auth.NewRedisRevocationStore(redisClient)
		logger.Info().Msg("using redis for revocation and rate limiting")
	} else {
		revoked = auth.NewMemoryRevocationStore()
	}
	defer revoked.Close()

	tokens := token.NewService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.VerifyTokenSecret)

	// Field-level encryption for SSNs and policy numbers. Optional in dev.
	var cipher *crypt.FieldCipher
	if cfg.EncryptionKey != "" {
		cipher, err = crypt.NewFieldCipherHex(cfg.EncryptionKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid ENCRYPTION_KEY")
		}
	} else {
		logger.Warn().Msg("field encryption disabled, sensitive columns stored as plaintext")
	}

	// Blob storage for uploaded documents.
	var store blobstore.BlobStore
	if cfg.BlobDir != "" {
		store, err = blobstore.NewFSStore(cfg.BlobDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot open blob directory")
		}
	} else {
		logger.Warn().Msg("BLOB_DIR not set, uploads held in memory")
		store = blobstore.NewMemoryStore()
	}
	signer := blobstore.NewSigner(cfg.PresignSecret, cfg.PublicBaseURL)

	// Outbound mail.
	var emailSender notification.EmailSender = logMailer{logger}
	if cfg.SMTPHost != "" {
		emailSender = notification.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	}
	mailer := notification.NewService(notification.NewTemplateEngine(), emailSender, logMailer{logger}, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = envelopeErrorHandler

	e.Use(middleware.Recovery(logger))
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("1M", "64M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))

	if redisClient != nil {
		limiter := middleware.NewRedisLimiter(redisClient)
		e.Use(middleware.RedisRateLimit(limiter, cfg.RateLimitBurst, time.Second))
	} else {
		rateLimitCfg := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
		}
		if rateLimitCfg.RequestsPerSecond <= 0 {
			rateLimitCfg = middleware.DefaultRateLimitConfig()
		}
		e.Use(middleware.RateLimit(rateLimitCfg))
	}

	authMW := auth.NewMiddleware(tokens, revoked, func(c echo.Context) bool {
		return publicPath(c.Request().URL.Path)
	})
	e.Use(authMW.Authenticate())
	e.Use(authMW.RoleGate())

	// Role-scoped route groups. The gate above enforces the prefixes.
	publicGroup := e.Group("")
	adminGroup := e.Group("/admin")
	staffGroup := e.Group("/staff")
	patientGroup := e.Group("/patient")

	// Health probes
	e.GET("/health", db.HealthHandler())
	e.GET("/health/ready", db.ReadyHandler(pool))

	// Accounts and sessions
	accountSvc := account.NewService(account.NewUserRepoPG(pool), tokens, revoked, mailer, cfg.PublicBaseURL, logger)
	account.NewHandler(accountSvc).RegisterRoutes(publicGroup, adminGroup)

	// Patients
	patientSvc := patient.NewService(patient.NewRepoPG(pool, cipher))
	patient.NewHandler(patientSvc).RegisterRoutes(staffGroup, patientGroup)

	// Appointments and practitioner schedules
	apptSvc := appointment.NewService(appointment.NewRepoPG(pool))
	appointment.NewHandler(apptSvc).RegisterRoutes(staffGroup, patientGroup)

	// Facilities and rooms
	facilitySvc := facility.NewService(facility.NewRepoPG(pool))
	facility.NewHandler(facilitySvc).RegisterRoutes(adminGroup, staffGroup)

	// Pharmacy catalog and inventory
	pharmacySvc := pharmacy.NewService(pharmacy.NewRepoPG(pool))
	pharmacy.NewHandler(pharmacySvc).RegisterRoutes(staffGroup)

	// Billing and insurance
	billingSvc := billing.NewService(billing.NewRepoPG(pool, cipher), mailer, logger)
	billing.NewHandler(billingSvc).RegisterRoutes(staffGroup, patientGroup)

	// Staff directory and shifts
	staffSvc := staff.NewService(staff.NewRepoPG(pool))
	staff.NewHandler(staffSvc).RegisterRoutes(adminGroup, staffGroup)

	// Documents and presigned retrieval
	documentSvc := document.NewService(document.NewRepoPG(pool), store, signer)
	documentHandler := document.NewHandler(documentSvc)
	documentHandler.RegisterRoutes(staffGroup, patientGroup)
	documentHandler.RegisterPublicRoutes(publicGroup)

	// Serve with graceful shutdown.
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(timeoutCtx)
}
