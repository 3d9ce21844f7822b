package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/auth"
	"github.com/adportal/adportal/internal/core/events"
	"github.com/adportal/adportal/internal/credcache"
	"github.com/adportal/adportal/internal/department"
	departmentPostgres "github.com/adportal/adportal/internal/department/postgres"
	"github.com/adportal/adportal/internal/directory"
	"github.com/adportal/adportal/internal/employee"
	employeePostgres "github.com/adportal/adportal/internal/employee/postgres"
	"github.com/adportal/adportal/internal/sync"
	syncPostgres "github.com/adportal/adportal/internal/sync/postgres"
	"github.com/adportal/adportal/internal/transfer"
	transferPostgres "github.com/adportal/adportal/internal/transfer/postgres"
	"github.com/adportal/adportal/internal/transport"
	"github.com/adportal/adportal/internal/transport/rest"
	userPostgres "github.com/adportal/adportal/internal/user/postgres"
	"github.com/adportal/adportal/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize orm: %v\n", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	handlers := buildHandlers(config, gormDB, lg)
	rest.RegisterAllRoutes(router, db.DB, directoryPinger(config.Directory), handlers, lg)

	addr := fmt.Sprintf(":%d", config.Server.Port)
	lg.Info("starting http server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("server shutdown error", "error", err)
		}
		if err := db.Close(); err != nil {
			lg.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			lg.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	lg.Info("server stopped")
}

func buildHandlers(config *internal.Config, gormDB *gorm.DB, lg *slog.Logger) rest.Handlers {
	dirConfig := directoryConfig(config.Directory)
	cache := credcache.New(config.Security.CredentialTTL)
	connector := &directoryConnector{config: dirConfig, logger: lg}
	baseHandler := transport.NewBaseHandler(lg)

	bus := events.NewBus(lg)
	bus.Subscribe(events.EventTypeSyncCompleted, logEvent(lg))
	bus.Subscribe(events.EventTypeTransferCompleted, logEvent(lg))

	userRepo := userPostgres.NewUserRepository(gormDB)
	departmentRepo := departmentPostgres.NewDepartmentRepository(gormDB)
	employeeRepo := employeePostgres.NewEmployeeRepository(gormDB)
	transferRepo := transferPostgres.NewTransferRepository(gormDB)
	syncStore := syncPostgres.NewSyncStore(gormDB)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	verifier := auth.NewBindVerifier(dirConfig, lg)
	authService := auth.NewService(userRepo, verifier, tokenGen, cache, dirConfig.Domain, lg)

	departmentService := department.NewService(departmentRepo, lg)
	employeeService := employee.NewService(employeeRepo, cache, employeeConnector{connector}, lg)
	syncService := sync.NewService(syncStore, cache, syncConnector{connector}, dirConfig.Domain, lg)
	transferService := transfer.NewService(transferRepo, cache, transferConnector{connector},
		departmentService, employeeService, dirConfig.Domain, dirConfig.ContainerBase, lg)

	return rest.Handlers{
		Auth:       auth.NewHandler(baseHandler, authService),
		Department: department.NewHandler(baseHandler, departmentService),
		Employee:   employee.NewHandler(baseHandler, employeeService),
		Sync:       sync.NewHandler(baseHandler, syncService, bus),
		Transfer:   transfer.NewHandler(baseHandler, transferService, bus),
		Directory:  directory.NewHandler(baseHandler, cache, adminConnector{connector}),
	}
}

func logEvent(lg *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		lg.Info("directory event", "event_type", event.EventType(), "event_id", event.EventID())
		return nil
	}
}

func directoryConfig(cfg internal.DirectoryConfig) directory.Config {
	return directory.Config{
		ServerURL:          cfg.ServerURL,
		Domain:             cfg.Domain,
		BaseDN:             cfg.BaseDN,
		ContainerBase:      cfg.ContainerBase,
		StartTLS:           cfg.StartTLS,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		BindTimeout:        cfg.BindTimeout,
	}
}

// directoryConnector opens authenticated sessions; the per-domain adapter
// types below give each service the session interface it asks for.
type directoryConnector struct {
	config directory.Config
	logger *slog.Logger
}

func (c *directoryConnector) open(login, password string) (*directory.Session, error) {
	return directory.Authenticate(c.config, login, password, c.logger)
}

type employeeConnector struct{ base *directoryConnector }

func (c employeeConnector) Connect(login, password string) (employee.DirectorySession, error) {
	return c.base.open(login, password)
}

type syncConnector struct{ base *directoryConnector }

func (c syncConnector) Connect(login, password string) (sync.DirectorySession, error) {
	return c.base.open(login, password)
}

type transferConnector struct{ base *directoryConnector }

func (c transferConnector) Connect(login, password string) (transfer.DirectorySession, error) {
	return c.base.open(login, password)
}

type adminConnector struct{ base *directoryConnector }

func (c adminConnector) Connect(login, password string) (directory.AdminSession, error) {
	return c.base.open(login, password)
}

// directoryPinger only checks TCP reachability of the directory endpoint;
// binding needs credentials the health check does not have.
func directoryPinger(cfg internal.DirectoryConfig) rest.DirectoryPinger {
	return func(ctx context.Context) error {
		u, err := url.Parse(cfg.ServerURL)
		if err != nil {
			return err
		}
		host := u.Host
		if u.Port() == "" {
			port := "389"
			if u.Scheme == "ldaps" {
				port = "636"
			}
			host = net.JoinHostPort(u.Hostname(), port)
		}

		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", host)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
