package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/app"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/config"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/constants"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/controllers"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/integrations"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/middleware"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/repositories"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/routes"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/services"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Tenant lifecycle service: eviction notices, departures, deposit dispositions and offboarding",
	}
	rootCmd.PersistentFlags().String("env-dir", ".", "directory holding an optional .env file")

	rootCmd.AddCommand(serveCmd(), expireNoticesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the notice expiry cron",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envDir, _ := cmd.Flags().GetString("env-dir")
			cfg, err := config.LoadConfig(envDir)
			if err != nil {
				return err
			}
			if cfg.RSAPublicKey == nil {
				return fmt.Errorf("RSA_PUBLIC_KEY_BASE64 is required to serve")
			}

			application, err := app.NewApp(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize %s: %w", cfg.AppName, err)
			}
			defer application.Close()

			w := wire(application)
			defer w.events.Close()

			router := mux.NewRouter()

			healthController := controllers.NewHealthController(application)
			offboardingController := controllers.NewOffboardingController(w.offboarding, w.access)
			depositController := controllers.NewDepositController(w.deposits, w.access)
			evictionController := controllers.NewEvictionController(w.evictions, w.access)
			departureController := controllers.NewDepartureController(w.departures, w.access)
			turnoverController := controllers.NewTurnoverController(w.turnover, w.access)
			leaseController := controllers.NewLeaseController(w.leases, w.access)

			router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

			secured := router.NewRoute().Subrouter()
			secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

			// Admin-only routes are registered ahead of their path-parameter siblings.
			admin := secured.NewRoute().Subrouter()
			admin.Use(middleware.AdminOnly)
			admin.HandleFunc(routes.NoticesExpire, evictionController.ExpireNoticesHandler).Methods(http.MethodPost)
			admin.HandleFunc(routes.LeaseApprove, leaseController.ApproveLeaseHandler).Methods(http.MethodPost)
			admin.HandleFunc(routes.TenantHistory, offboardingController.TenantHistoryHandler).Methods(http.MethodGet)

			secured.HandleFunc(routes.Offboarding, offboardingController.ExecuteOffboardingHandler).Methods(http.MethodPost)
			secured.HandleFunc(routes.LeaseTerminate, leaseController.TerminateLeaseHandler).Methods(http.MethodPost)

			secured.HandleFunc(routes.LeaseDispositions, depositController.CreateDispositionHandler).Methods(http.MethodPost)
			secured.HandleFunc(routes.LeaseDispositions, depositController.ListDispositionsHandler).Methods(http.MethodGet)
			secured.HandleFunc(routes.Disposition, depositController.GetDispositionHandler).Methods(http.MethodGet)
			secured.HandleFunc(routes.DispositionStatus, depositController.UpdateRefundStatusHandler).Methods(http.MethodPatch)
			secured.HandleFunc(routes.DispositionProcess, depositController.ProcessRefundHandler).Methods(http.MethodPost)
			secured.HandleFunc(routes.DepositEvidence, depositController.UploadEvidenceHandler).Methods(http.MethodPost)
			secured.HandleFunc(routes.DepositRefundPreview, depositController.RefundPreviewHandler).Methods(http.MethodPost)

			secured.HandleFunc(routes.LeaseNotices, evictionController.CreateNoticeHandler).Methods(http.MethodPost)
			secured.HandleFunc(routes.LeaseNotices, evictionController.ListNoticesHandler).Methods(http.MethodGet)
			secured.HandleFunc(routes.Notice, evictionController.GetNoticeHandler).Methods(http.MethodGet)
			secured.HandleFunc(routes.NoticeStatus, evictionController.UpdateNoticeStatusHandler).Methods(http.MethodPatch)

			secured.HandleFunc(routes.LeaseDepartures, departureController.RecordDepartureHandler).Methods(http.MethodPost)
			secured.HandleFunc(routes.LeaseDepartures, departureController.ListDeparturesHandler).Methods(http.MethodGet)

			secured.HandleFunc(routes.UnitChecklist, turnoverController.GetChecklistHandler).Methods(http.MethodGet)
			secured.HandleFunc(routes.Checklist, turnoverController.UpdateChecklistHandler).Methods(http.MethodPatch)
			secured.HandleFunc(routes.UnitAvailability, turnoverController.MarkUnitAvailableHandler).Methods(http.MethodPost)

			if cfg.LDFlag_ExpireNoticesCronEnabled {
				c := cron.New(cron.WithLocation(time.UTC))
				_, cronErr := c.AddFunc(constants.ExpireNoticesCronSpec, func() {
					n, e := w.evictions.ExpireOverdueNotices(context.Background(), time.Now())
					if e != nil {
						utils.Logger.WithError(e).Error("Scheduled notice expiry finished with errors")
					}
					utils.Logger.Infof("Scheduled notice expiry moved %d notices to expired", n)
				})
				if cronErr != nil {
					return fmt.Errorf("failed to schedule notice expiry cron: %w", cronErr)
				}
				c.Start()
				defer c.Stop()
			} else {
				utils.Logger.Info("Notice expiry cron disabled by flag")
			}

			allowedOrigins := []string{cfg.AppUrl}
			if !cfg.LDFlag_CORSHighSecurity {
				allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
			}

			co := cors.New(cors.Options{
				AllowedOrigins:   allowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Authorization", "Content-Type"},
				AllowCredentials: true,
			})

			utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
			return http.ListenAndServe(":"+cfg.AppPort, co.Handler(router))
		},
	}
}

func expireNoticesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire-notices",
		Short: "Expire every served or cure-period notice whose deadline has passed, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envDir, _ := cmd.Flags().GetString("env-dir")
			cfg, err := config.LoadConfig(envDir)
			if err != nil {
				return err
			}
			application, err := app.NewApp(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize %s: %w", cfg.AppName, err)
			}
			defer application.Close()

			w := wire(application)
			defer w.events.Close()

			n, err := w.evictions.ExpireOverdueNotices(cmd.Context(), time.Now())
			utils.Logger.Infof("Expired %d eviction notices", n)
			return err
		},
	}
}

type wiring struct {
	events      integrations.Publisher
	access      *services.AccessService
	leases      *services.LeaseService
	deposits    *services.DepositService
	evictions   *services.EvictionService
	departures  *services.DepartureService
	turnover    *services.TurnoverService
	offboarding *services.OffboardingService
}

// wire builds repositories, optional integrations and services. An
// integration without credentials falls back to its no-op implementation.
func wire(application *app.App) *wiring {
	cfg := application.Config

	leaseRepo := repositories.NewLeaseRepository(application.DB)
	unitRepo := repositories.NewUnitRepository(application.DB)
	propRepo := repositories.NewPropertyRepository(application.DB)
	tenantRepo := repositories.NewTenantRepository(application.DB)
	noticeRepo := repositories.NewEvictionNoticeRepository(application.DB)
	departureRepo := repositories.NewTenantDepartureRepository(application.DB)
	dispositionRepo := repositories.NewDepositDispositionRepository(application.DB)
	checklistRepo := repositories.NewTurnoverChecklistRepository(application.DB)
	historyRepo := repositories.NewTenantHistoryRepository(application.DB)

	var storage integrations.ObjectStorage = integrations.NoopStorage{}
	if cfg.CloudinaryURL != "" {
		cld, err := integrations.NewCloudinaryStorage(cfg.CloudinaryURL)
		if err != nil {
			utils.Logger.WithError(err).Warn("Cloudinary unavailable; evidence uploads disabled")
		} else {
			storage = cld
		}
	}

	var payments integrations.RefundTransferer = integrations.NoopTransferer{}
	if cfg.StripeSecretKey != "" {
		payments = integrations.NewStripeTransferer(cfg.StripeSecretKey)
	}

	var email integrations.EmailSender = integrations.NoopEmailSender{}
	if cfg.SendGridAPIKey != "" {
		email = integrations.NewSendGridEmailSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.LDFlag_SendgridSandboxMode)
	}

	var sms integrations.SMSSender = integrations.NoopSMSSender{}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		sms = integrations.NewTwilioSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromPhone)
	}

	var events integrations.Publisher = integrations.EventProducerFallback{}
	if cfg.RabbitMQURL != "" {
		producer, err := integrations.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			utils.Logger.WithError(err).Warn("RabbitMQ unavailable; lifecycle events will only be logged")
		} else {
			events = producer
		}
	}

	leaseService := services.NewLeaseService(leaseRepo, unitRepo)
	depositService := services.NewDepositService(dispositionRepo, leaseRepo, unitRepo, propRepo, tenantRepo, storage, payments, email, events)
	evictionService := services.NewEvictionService(noticeRepo, leaseRepo, tenantRepo, sms, events)
	departureService := services.NewDepartureService(departureRepo, leaseRepo, noticeRepo)
	turnoverService := services.NewTurnoverService(checklistRepo, unitRepo, func() bool { return cfg.LDFlag_RequireCompleteChecklist })

	offboardingService := services.NewOffboardingService(
		leaseService, departureService, depositService, turnoverService,
		historyRepo, leaseRepo, unitRepo, propRepo, events,
	)

	return &wiring{
		events:      events,
		access:      services.NewAccessService(leaseRepo, unitRepo, propRepo, noticeRepo, dispositionRepo, checklistRepo),
		leases:      leaseService,
		deposits:    depositService,
		evictions:   evictionService,
		departures:  departureService,
		turnover:    turnoverService,
		offboarding: offboardingService,
	}
}
