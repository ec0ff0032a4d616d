package main

import (
	"context"
	"os"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"voyage/internal/pkg/bootstrap"
	"voyage/internal/pkg/httpclient"
	"voyage/internal/pkg/mq"
	"voyage/internal/service/travel/application"
	"voyage/internal/service/travel/domain"
	"voyage/internal/service/travel/infrastructure"
	"voyage/internal/service/travel/infrastructure/adapter"
	"voyage/internal/service/travel/infrastructure/rule"
	"voyage/internal/service/travel/interfaces"
	"voyage/internal/service/travel/port"
	"voyage/internal/zookeeper"
)

const serviceName = "travel-service"

// closers collects teardown hooks in acquisition order; Cleanup runs them in
// reverse.
var closers []func()

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		Port:             8081,
		RegisterHandlers: registerHandlers,
		Cleanup: func(ctx context.Context) {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	})
}

func registerHandlers(appCtx bootstrap.AppCtx) {
	cfg := bootstrap.GetCurrentConfig()
	tracer := otel.Tracer(serviceName)

	uow := newUnitOfWork(cfg)
	locker := newLocker(cfg)

	var resolver httpclient.Resolver
	if appCtx.Nacos != nil {
		resolver = appCtx.Nacos
	}
	httpClient := httpclient.NewClient(tracer, resolver)

	hotel := adapter.NewHotelHTTPAdapter(httpClient, cfg.Services.Hotel)
	taxi := adapter.NewTaxiHTTPAdapter(httpClient, cfg.Services.Taxi)

	ledger := application.NewBookingService(uow, locker, tracer)
	customers := application.NewCustomerService(uow, tracer)
	commodities := application.NewCommodityService(uow, tracer)
	guests := application.NewGuestService(uow, tracer)

	travel := application.NewTravelService(ledger, hotel, taxi, application.TravelServiceConfig{
		Prereserve:            newPrereserve(cfg),
		Notifier:              newNotifier(cfg),
		Policy:                newPolicyEngine(cfg),
		PolicyExpr:            cfg.Travel.PolicyExpression,
		HighDemandCommodities: cfg.Travel.HighDemandCommodities,
		Timeout:               time.Duration(cfg.Travel.BookingTimeout),
	}, tracer)

	readiness := []interfaces.ReadinessCheck{
		{Name: "hotel-service", Check: func(ctx context.Context) error {
			return httpClient.Get(ctx, cfg.Services.Hotel, "/healthz")
		}},
		{Name: "taxi-service", Check: func(ctx context.Context) error {
			return httpClient.Get(ctx, cfg.Services.Taxi, "/healthz")
		}},
	}

	handler := interfaces.NewTravelHandler(travel, ledger, customers, commodities, guests, readiness)
	handler.RegisterRoutes(appCtx.Mux)
}

// newUnitOfWork picks the booking store. MySQL is the default; the in-memory
// store exists for demos and local runs without a database.
func newUnitOfWork(cfg *bootstrap.Config) domain.UnitOfWork {
	if os.Getenv("STORE_BACKEND") == "memory" {
		log.Warn().Msg("using in-memory booking store, data will not survive restarts")
		return infrastructure.NewMemoryStore()
	}

	db, err := gorm.Open(mysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := infrastructure.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate booking schema")
	}
	return infrastructure.NewGormUnitOfWork(db)
}

func newLocker(cfg *bootstrap.Config) port.CommodityLocker {
	if len(cfg.Infra.Zookeeper.Servers) == 0 {
		return nil
	}
	conn, _, err := zk.Connect(cfg.Infra.Zookeeper.Servers, 5*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to zookeeper")
	}
	closers = append(closers, conn.Close)

	locker, err := zookeeper.NewCommodityLocker(conn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize zookeeper locker")
	}
	return locker
}

// newPrereserve builds the Redis seat guard. It is only consulted for the
// configured high-demand commodities, so skip the connection entirely when
// none are set.
func newPrereserve(cfg *bootstrap.Config) port.SeatPrereserveService {
	if len(cfg.Travel.HighDemandCommodities) == 0 {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Infra.Redis.Addr})
	closers = append(closers, func() { client.Close() })
	return adapter.NewPrereserveRedisAdapter(client)
}

func newNotifier(cfg *bootstrap.Config) port.NotificationProducer {
	if len(cfg.Infra.Kafka.Brokers) == 0 {
		return nil
	}
	writer := mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.Topics.TripNotifications)
	notifier := adapter.NewNotificationKafkaAdapter(writer)
	closers = append(closers, func() { notifier.Close() })
	return notifier
}

func newPolicyEngine(cfg *bootstrap.Config) domain.PolicyEngine {
	if cfg.Travel.PolicyExpression == "" {
		return nil
	}
	engine, err := rule.NewCELPolicyEngine()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize policy engine")
	}
	return engine
}
