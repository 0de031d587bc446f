// Command mailcheck sends a test contact message through the configured
// e-mail transport.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/atelier-textile/storefront-api/internal/config"
	"github.com/atelier-textile/storefront-api/internal/pkg/email"
	"github.com/atelier-textile/storefront-api/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	from := flag.String("from", "test@example.com", "reply-to address of the test message")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log := logger.New(cfg.Logging)

	transport, err := email.NewTransport(cfg.Email, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure email transport")
	}
	mailer := email.NewService(cfg.Email, cfg.Shop, transport, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = mailer.SendContact(ctx, &email.ContactRequest{
		Name:    "Test de configuration",
		Email:   *from,
		Subject: "Test d'envoi",
		Message: "Si vous lisez ce message, l'envoi d'e-mails fonctionne.",
	})
	if err != nil {
		log.WithError(err).WithField("transport", cfg.Email.Transport).Fatal("Send failed")
	}

	log.WithField("transport", cfg.Email.Transport).Info("Email sent successfully")
}
