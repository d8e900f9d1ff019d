package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/api/handlers/notification"
	schedhandler "github.com/Madhu097/foodremainder-sub000/internal/api/handlers/scheduler"
	"github.com/Madhu097/foodremainder-sub000/internal/api/router"
	"github.com/Madhu097/foodremainder-sub000/internal/api/server"
	"github.com/Madhu097/foodremainder-sub000/internal/channel"
	"github.com/Madhu097/foodremainder-sub000/internal/channel/email"
	"github.com/Madhu097/foodremainder-sub000/internal/channel/push"
	"github.com/Madhu097/foodremainder-sub000/internal/channel/sms"
	"github.com/Madhu097/foodremainder-sub000/internal/channel/telegram"
	"github.com/Madhu097/foodremainder-sub000/internal/channel/whatsapp"
	"github.com/Madhu097/foodremainder-sub000/internal/config"
	"github.com/Madhu097/foodremainder-sub000/internal/dispatcher"
	"github.com/Madhu097/foodremainder-sub000/internal/scheduler"
	"github.com/Madhu097/foodremainder-sub000/internal/store"
	"github.com/Madhu097/foodremainder-sub000/internal/store/memory"
	"github.com/Madhu097/foodremainder-sub000/internal/store/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	st, closeStore := mustStore(cfg)
	defer closeStore()

	var lock dispatcher.Lock
	if cfg.Redis.Address != "" {
		rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.Database)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		lock = dispatcher.NewRedisLock(rdb, "", 0)
		zlog.Logger.Info().Str("address", cfg.Redis.Address).Msg("using redis sweep lock")
	}

	pushAdapter := push.New(push.Config{
		VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
		Subscriber:      cfg.Push.Subscriber,
		TTL:             cfg.Push.TTL,
	}, st)

	adapters := []channel.Adapter{
		email.New(email.Config{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		}, cfg.Retry),
		sms.New(sms.Config{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			From:       cfg.Twilio.FromNumber,
		}),
		whatsapp.Select(
			whatsapp.NewCloud(whatsapp.CloudConfig{
				AccessToken:   cfg.WhatsApp.AccessToken,
				PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
			}),
			whatsapp.NewTwilio(whatsapp.TwilioConfig{
				AccountSID: cfg.Twilio.AccountSID,
				AuthToken:  cfg.Twilio.AuthToken,
				From:       cfg.Twilio.WhatsAppFrom,
			}),
		),
		telegram.New(cfg.Telegram.Token),
		pushAdapter,
	}

	d := dispatcher.New(st, adapters, lock, cfg.SendTimeout)

	sched := scheduler.New(scheduler.Config{
		Spec:       cfg.Scheduler.Spec,
		Timezone:   cfg.Scheduler.Timezone,
		TestMode:   cfg.Scheduler.TestMode,
		RunTimeout: cfg.Scheduler.RunTimeout,
	}, scheduler.SweeperFunc(func(ctx context.Context) error {
		_, err := d.CheckAndNotifyAll(ctx)
		if errors.Is(err, dispatcher.ErrSweepRunning) {
			return nil
		}
		return err
	}))

	if cfg.Scheduler.AutoStart {
		if err := sched.Start(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to start scheduler")
		}
	}

	if cfg.Telegram.Token != "" {
		listener, err := telegram.NewLinkListener(cfg.Telegram.Token, st)
		if err != nil {
			zlog.Logger.Warn().Err(err).Msg("telegram link listener disabled")
		} else {
			go listener.Run(ctx)
		}
	}

	notifHandler := notification.NewHandler(d, st, val, cfg.Push.VAPIDPublicKey)
	schedHandler := schedhandler.NewHandler(sched)

	r := router.New(notifHandler, schedHandler, cfg.APISecret)
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.HTTPPort).Msg("http server listening")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}
}

// mustStore selects the persistence backend: Postgres when a master host
// is configured, the in-memory store otherwise.
func mustStore(cfg *config.Config) (store.Store, func()) {
	if cfg.Database.Master.Host == "" {
		zlog.Logger.Info().Msg("no database configured, using in-memory store")
		st := memory.New()
		if cfg.DevSeed {
			u := st.SeedDemo()
			zlog.Logger.Info().Str("user_id", u.ID.String()).Msg("seeded demo user")
		}
		return st, func() {}
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	closeFn := func() {
		if err := db.Master.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close master DB")
		}
		for i, s := range db.Slaves {
			if err := s.Close(); err != nil {
				zlog.Logger.Error().Err(err).Msgf("failed to close slave DB %d", i)
			}
		}
	}

	return postgres.New(db), closeFn
}
