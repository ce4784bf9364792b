package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"

	"github.com/adboardapp/adboard/internal/config"
	"github.com/adboardapp/adboard/internal/confirm"
	"github.com/adboardapp/adboard/internal/images"
	"github.com/adboardapp/adboard/internal/listing"
	"github.com/adboardapp/adboard/internal/localdb"
	"github.com/adboardapp/adboard/internal/logging"
	"github.com/adboardapp/adboard/internal/models"
	"github.com/adboardapp/adboard/internal/repositories/metadata"
	"github.com/adboardapp/adboard/internal/repositories/repomanager"
	"github.com/adboardapp/adboard/internal/services"
	"github.com/adboardapp/adboard/internal/session"
	"github.com/adboardapp/adboard/internal/verify"
	"github.com/adboardapp/adboard/internal/verify/sms"
)

// App wires the CLI together: the session manager, the verification flow,
// the feed engine, the ad service with its confirmation gate, and the image
// upload service.
type App struct {
	config  *config.Config
	log     logging.Logger
	repos   repomanager.RepositoryManager
	meta    metadata.Repository
	session *session.Manager
	engine  *listing.Engine
	adSvc   *services.AdService
	detail  *services.DetailService
	gate    *confirm.Gate
	images  *images.Service
	reader  *bufio.Reader
	localDB *sql.DB

	// myAds is the last loaded owner dashboard. Toggle and delete operate
	// on its indexes, so it must be refreshed by MyAds before use.
	myAds []models.Ad

	// lastList is whatever listing was printed last (search results or the
	// owner dashboard); view indexes into it.
	lastList []models.Ad
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	localDB, err := localdb.Open(ctx, c.LocalDBPath)
	if err != nil {
		log.Printf("error initializing local database: %s", err.Error())
		return nil, err
	}
	meta := metadata.NewSQLiteRepository(localDB)

	repos, err := repomanager.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		_ = localDB.Close()
		return nil, err
	}

	sess := session.NewManager(meta, []byte(c.SessionSecret), logger)

	adSvc := services.NewAdService(repos.Ads(), logger, c.QueryTimeout)
	gate := confirm.NewGate(adSvc)
	adSvc.UseGate(gate)

	return &App{
		config:  c,
		log:     logger,
		repos:   repos,
		meta:    meta,
		session: sess,
		engine:  listing.NewEngine(repos.Ads(), logger, c.QueryTimeout),
		adSvc:   adSvc,
		detail:  services.NewDetailService(repos.Conn(), logger, c.QueryTimeout),
		gate:    gate,
		images:  images.NewService(c),
		reader:  bufio.NewReader(os.Stdin),
		localDB: localDB,
	}, nil
}

// deliverer picks SMS delivery when a gateway is configured and console
// output otherwise.
func (a *App) deliverer() verify.Deliverer {
	if a.config.SMSGatewayURL != "" {
		client := sms.NewGatewayClient(a.config.SMSGatewayKey, a.config.SMSGatewayURL, a.config.SMSSender)
		return client
	}
	return &verify.ConsoleDeliverer{W: os.Stdout}
}

// newFlow starts a fresh verification flow. Each login attempt gets its own
// flow instance.
func (a *App) newFlow() *verify.Flow {
	return verify.NewFlow(a.repos.Users(), a.meta, a.session, a.deliverer(), a.log,
		a.config.CodeTTL, a.config.CodeMaxAttempts)
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.repos.Close()
		_ = a.localDB.Close()
	}()

	if _, err := a.session.Restore(ctx); err != nil {
		log.Printf("error restoring session: %v", err)
	}

	a.Root(ctx)
}
