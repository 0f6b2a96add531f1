package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for identity operations.
type Metrics struct {
	Registrations          *prometheus.CounterVec
	RegistrationDurationMs prometheus.Histogram
	Logins                 *prometheus.CounterVec
	SessionsCreated        prometheus.Counter
	SessionsDeleted        prometheus.Counter
	AccountsLinked         prometheus.Counter
	TokensIssued           prometheus.Counter
	TokensConsumed         *prometheus.CounterVec
	PasswordResets         prometheus.Counter
	MailsSent              *prometheus.CounterVec
}

// New registers the collectors on reg. Passing a fresh registry keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_registrations_total",
			Help: "Registrations by outcome (ok or the failing error code)",
		}, []string{"outcome"}),
		RegistrationDurationMs: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "warden_registration_duration_ms",
			Help:    "Duration of the registration transaction in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		SessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "warden_sessions_created_total",
			Help: "Total number of sessions created",
		}),
		SessionsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "warden_sessions_deleted_total",
			Help: "Total number of sessions deleted",
		}),
		AccountsLinked: f.NewCounter(prometheus.CounterOpts{
			Name: "warden_auth_accounts_linked_total",
			Help: "Total number of external identities linked",
		}),
		TokensIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "warden_verification_tokens_issued_total",
			Help: "Total number of verification tokens issued",
		}),
		TokensConsumed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_verification_tokens_consumed_total",
			Help: "Verification token consumption attempts by outcome",
		}, []string{"outcome"}),
		PasswordResets: f.NewCounter(prometheus.CounterOpts{
			Name: "warden_password_resets_total",
			Help: "Total number of administrative password resets",
		}),
		MailsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_mails_total",
			Help: "Mails handed to the mail backend by outcome",
		}, []string{"outcome"}),
	}
}
