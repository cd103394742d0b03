package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/myola/storefront/internal/auth"
	"github.com/myola/storefront/internal/config"
	"github.com/myola/storefront/internal/handlers"
	"github.com/myola/storefront/internal/repository"
	"github.com/myola/storefront/internal/services"
	"github.com/myola/storefront/internal/storage"
	xhttp "github.com/myola/storefront/pkg/http"
	"github.com/myola/storefront/pkg/logger"
	"github.com/myola/storefront/pkg/pg"
	"github.com/myola/storefront/pkg/prom"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	proofStore, err := storage.NewProofStore(context.Background(), storage.Config{
		Endpoint:  config.Get().MinioEndpoint,
		AccessKey: config.Get().MinioAccessKey,
		SecretKey: config.Get().MinioSecretKey,
		Bucket:    config.Get().MinioBucket,
		UseSSL:    config.Get().MinioUseSSL,
		PublicURL: config.Get().MinioPublicURL,
	})
	if err != nil {
		logger.Error("failed connecting to object store", "error", err)
		return
	}

	agentRepo := repository.NewSalesAgentRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	ledgerRepo := repository.NewPointTransactionRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)

	// services
	referralService := services.NewReferralService(agentRepo)
	ledgerService := services.NewLedgerService(ledgerRepo)
	commissionService := services.NewCommissionService(commissionRepo)
	membershipService := services.NewMembershipService(
		membershipRepo,
		agentRepo,
		referralService,
		ledgerService,
		commissionService,
		config.Get().MembershipFee,
		config.Get().MembershipJoinBonus,
	)
	orderService := services.NewOrderService(orderRepo, membershipRepo, agentRepo, ledgerService, commissionService, proofStore)

	identity := auth.NewStaticIdentity()
	if config.Get().AuthAdminToken != "" {
		identity.Register(config.Get().AuthAdminToken, auth.User{
			ID:   config.Get().AuthAdminUserID,
			Role: auth.RoleAdmin,
		})
	}
	gate := auth.NewGate(identity)

	// v1 handlers
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	orderHandler := handlers.NewOrderHandler(orderService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	commissionHandler := handlers.NewCommissionHandler(commissionService)
	referralHandler := handlers.NewReferralHandler(referralService)
	healthHandler := handlers.NewHealthHandler()

	g := s.Router.Group("/api/v1")
	handlers.RegisterMembershipRoutes(g, membershipHandler)
	handlers.RegisterOrderRoutes(g, orderHandler, gate)
	handlers.RegisterLedgerRoutes(g, ledgerHandler, gate)
	handlers.RegisterCommissionRoutes(g, commissionHandler, gate)
	handlers.RegisterReferralRoutes(g, referralHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	// Create new server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
