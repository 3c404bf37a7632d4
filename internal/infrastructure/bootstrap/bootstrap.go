package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	domainRepo "github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/repository"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/config"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/oauth"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/persistence"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/interface/gmail"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/interface/repository"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/usecase"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/metrics"
)

const (
	metricsNamespace = "ticpin_pass"
	appName          = "ticpin-pass"
)

// Container holds the wired pass service graph
type Container struct {
	PassService *usecase.PassService
	ReminderJob *usecase.ReminderJob
	Metrics     *metrics.Metrics

	mongoClient *mongo.Client
	ledgerDB    *gorm.DB
	logger      logger.Logger
}

// New connects the stores and wires services, notifiers and metrics.
// reg receives the metrics; nil uses the default registerer.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, reg prometheus.Registerer) (*Container, error) {
	log.Info("Connecting to MongoDB", "database", cfg.MongoDB, "transactions", cfg.MongoTransactions)
	mongoClient, db, err := persistence.ConnectMongo(ctx, persistence.MongoOptions{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDB,
		Username: cfg.MongoUser,
		Password: cfg.MongoPassword,
		AppName:  appName,
	})
	if err != nil {
		return nil, err
	}
	passRepo := repository.NewMongoPassRepository(db, cfg.PassCollection, cfg.MongoTransactions)

	c := &Container{
		mongoClient: mongoClient,
		logger:      log,
	}

	eventRepo := repository.NewNopPassEventRepository()
	if cfg.PostgresURI != "" {
		ledgerDB, err := persistence.NewPostgresDB(cfg.PostgresURI, &repository.PassEvents{})
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		c.ledgerDB = ledgerDB
		eventRepo = repository.NewGormPassEventRepository(ledgerDB)
		log.Info("Pass event ledger enabled")
	} else {
		log.Info("POSTGRES_DSN not set, pass event ledger disabled")
	}

	notifiers, err := buildNotifiers(ctx, cfg, log)
	if err != nil {
		c.Close(ctx)
		return nil, err
	}

	c.Metrics = metrics.NewMetrics(metricsNamespace, reg)
	c.PassService = usecase.NewPassService(passRepo, eventRepo, c.Metrics, log.With("component", "pass_service"))
	c.ReminderJob = usecase.NewReminderJob(passRepo, eventRepo, notifiers, cfg.ReminderWindowDays, c.Metrics, log.With("component", "reminder_job"))

	return c, nil
}

func buildNotifiers(ctx context.Context, cfg *config.Config, log logger.Logger) ([]domainRepo.Notifier, error) {
	var notifiers []domainRepo.Notifier

	gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, log)
	if gmailOAuth.Configured() && cfg.GmailSender != "" {
		notifier, err := gmail.NewGmailNotifier(ctx, gmailOAuth.GetTokenSource(ctx), cfg.GmailSender, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gmail notifier: %w", err)
		}
		notifiers = append(notifiers, notifier)
		log.Info("E-mail reminders enabled", "sender", cfg.GmailSender)
	}

	if cfg.WhatsAppToken != "" {
		if cfg.WhatsAppEndpoint == "" {
			return nil, fmt.Errorf("TOKEN is set but WHATSAPP_SERVICE_URL is not")
		}
		notifier, err := repository.NewWhatsappNotifier(repository.WhatsappOptions{
			Endpoint:    cfg.WhatsAppEndpoint,
			BearerToken: cfg.WhatsAppToken,
			CompanyID:   cfg.WhatsAppCompanyID,
			AgentID:     cfg.WhatsAppAgentID,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create WhatsApp notifier: %w", err)
		}
		notifiers = append(notifiers, notifier)
		log.Info("WhatsApp reminders enabled", "endpoint", cfg.WhatsAppEndpoint)
	} else if cfg.WhatsAppEndpoint != "" {
		log.Warn("WHATSAPP_SERVICE_URL set without TOKEN, WhatsApp reminders disabled")
	}

	return notifiers, nil
}

// Close disconnects the stores
func (c *Container) Close(ctx context.Context) {
	if c.ledgerDB != nil {
		if sqlDB, err := c.ledgerDB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				c.logger.Error("PostgreSQL close error", "error", err)
			}
		}
	}

	if c.mongoClient != nil {
		if err := c.mongoClient.Disconnect(ctx); err != nil {
			c.logger.Error("MongoDB disconnect error", "error", err)
		}
	}
}
