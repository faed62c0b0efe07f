package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfmarkapp/shelfmark-server/internal/config"
	"github.com/shelfmarkapp/shelfmark-server/internal/logger"
	"github.com/shelfmarkapp/shelfmark-server/internal/mail"
	"github.com/shelfmarkapp/shelfmark-server/internal/metadata/openlibrary"
)

// ProvideCatalogClient provides the rate-limited OpenLibrary client.
func ProvideCatalogClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := openlibrary.New(openlibrary.Config{
		BaseURL:       cfg.Catalog.BaseURL,
		CoversBaseURL: cfg.Catalog.CoversBaseURL,
	}, log.Logger)

	log.Info("Catalog client ready", "base_url", cfg.Catalog.BaseURL)

	return client, nil
}

// ProvideMailer provides the magic-link mailer.
func ProvideMailer(i do.Injector) (*mail.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	mailer := mail.New(cfg.Mail, log.Logger)
	if !mailer.Enabled() {
		log.Warn("SMTP not configured, login links will be logged instead of emailed")
	}

	return mailer, nil
}
