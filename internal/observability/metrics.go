package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignupsTotal counts registration requests by outcome
	// ("created", "reissued", "conflict", "invalid").
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "critica_signups_total",
		Help: "Total number of signup requests by outcome",
	}, []string{"outcome"})

	// TokenExchangesTotal counts confirmation-code exchanges by outcome
	// ("issued", "unknown_user", "bad_code").
	TokenExchangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "critica_token_exchanges_total",
		Help: "Total number of token exchange requests by outcome",
	}, []string{"outcome"})

	// ReviewsCreatedTotal counts successfully created reviews.
	ReviewsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "critica_reviews_created_total",
		Help: "Total number of reviews created",
	})

	// MailDeliveryFailures counts confirmation mails that could not be sent.
	// A failed send degrades the signup response but never rolls it back.
	MailDeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "critica_mail_delivery_failures_total",
		Help: "Total number of confirmation mails that failed to send",
	})
)
