// Command sendmail pushes one test message through the configured SMTP relay
// (Mailpit in development) using the same mailer the shop uses for order mail.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"example.com/storefront/internal/config"
	"example.com/storefront/internal/infra/mail"
	"example.com/storefront/internal/usecase/notification"
)

func main() {
	to := flag.String("to", "", "recipient, defaults to ADMIN_EMAIL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Mail.SMTPAddr == "" {
		log.Fatal("SMTP_ADDR is not set")
	}
	recipient := *to
	if recipient == "" {
		recipient = cfg.Mail.AdminEmail
	}
	if recipient == "" {
		log.Fatal("no recipient: pass -to or set ADMIN_EMAIL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mailer := mail.NewSMTPMailer(cfg.Mail.SMTPAddr, cfg.Mail.From, nil)
	err = mailer.Send(ctx, notification.Message{
		To:      []string{recipient},
		Subject: "Storefront mail test",
		Body:    "This is a test email sent via the storefront SMTP mailer.\n",
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Mail sent successfully!")
}
