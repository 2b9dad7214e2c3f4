// Package email sends transactional messages.
//
// EmailSender has two implementations: the Postmark client for production and
// DevSender, which writes every message to a directory for inspection. New
// picks one based on whether Postmark tokens are configured.
//
// WelcomeNotifier renders the message sent to the owner of a newly
// provisioned store, including the address verification link:
//
//	sender, err := email.New(cfg)
//	if err != nil {
//	    return err
//	}
//	notifier := email.NewWelcomeNotifier(sender, cfg.BaseURL)
//	err = notifier.SendWelcome(ctx, email.WelcomeData{
//	    StoreName:         "Shop One",
//	    Subdomain:         "shop1",
//	    OwnerEmail:        "owner@shop.example",
//	    VerificationToken: token,
//	})
package email
