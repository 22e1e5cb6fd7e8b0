package main

import (
	"context"
	"net/http"

	"stagebook/internal/app/artists"
	"stagebook/internal/app/notices"
	"stagebook/internal/app/performances"
	"stagebook/internal/app/settings"
	"stagebook/internal/app/users"
	"stagebook/internal/auth"
	"stagebook/internal/config"
	"stagebook/internal/http/middleware"
	"stagebook/internal/httpapi"
	"stagebook/internal/logging"
	"stagebook/internal/notify"
	"stagebook/internal/outreach"
	"stagebook/internal/sheets"
	"stagebook/internal/store"
)

type application struct {
	handler   http.Handler
	scheduler *outreach.Scheduler
}

// newApplication wires services over the store. SMS, alerts and export are optional
// and stay disabled when unconfigured or when their clients fail to start.
func newApplication(ctx context.Context, cfg *config.Config, dataStore *store.Store) (*application, error) {
	logger := logging.WithContext(ctx)
	loc := cfg.Calendar.Location

	var artistNotifier artists.Notifier
	perfOpts := []performances.Option{performances.WithLocation(loc)}
	if cfg.Telegram.Enabled() {
		alerts, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID, loc)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram alerts disabled")
		} else {
			artistNotifier = alerts
			perfOpts = append(perfOpts, performances.WithNotifier(alerts))
		}
	}

	sessions := auth.NewSessions(cfg.Security.JWTSecret, cfg.Security.AppID)
	userSvc := users.New(dataStore, sessions, users.Config{
		OwnerOpenID:   cfg.Security.OwnerOpenID,
		AdminPasscode: cfg.Security.AdminPasscode,
	})
	artistSvc := artists.New(dataStore, artistNotifier)
	performanceSvc := performances.New(dataStore, dataStore, perfOpts...)
	noticeSvc := notices.New(dataStore)
	settingsSvc := settings.New(dataStore)

	var sender outreach.Sender
	if cfg.Outreach.Enabled() {
		sender = outreach.NewTwilioSender(cfg.Outreach.TwilioAccountSID, cfg.Outreach.TwilioAuthToken, cfg.Outreach.FromNumber)
	}
	outreachSvc := outreach.New(dataStore, settingsSvc, sender, loc)

	services := httpapi.Services{
		Users:        userSvc,
		Artists:      artistSvc,
		Performances: performanceSvc,
		Notices:      noticeSvc,
		Settings:     settingsSvc,
		Broadcaster:  outreachSvc,
		Health:       dataStore,
	}
	if cfg.Sheets.Enabled() {
		exporter, err := sheets.New(ctx, cfg.Sheets.ServiceAccountJSON, cfg.Sheets.SpreadsheetID, loc)
		if err != nil {
			logger.Warn().Err(err).Msg("spreadsheet export disabled")
		} else {
			services.Exporter = exporter
		}
	}

	app := &application{
		handler: middleware.Chain(
			httpapi.New(services, loc).Routes(),
			middleware.RequestLogging(),
			middleware.Recovery(),
			middleware.CORS(cfg.CORS.AllowedOrigin),
		),
	}

	if outreachSvc.Enabled() && cfg.Outreach.Schedule != "" {
		scheduler, err := outreach.NewScheduler(outreachSvc, cfg.Outreach.Schedule, loc)
		if err != nil {
			return nil, err
		}
		app.scheduler = scheduler
	}

	return app, nil
}
