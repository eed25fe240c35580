package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the intake workflow.
type Metrics struct {
	ConversationsStarted prometheus.Counter
	RegistrationsCreated prometheus.Counter
	ProvisioningOutcomes *prometheus.CounterVec
	BroadcastDeliveries  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConversationsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "intake_conversations_started_total",
			Help: "Number of intake conversations started via /start",
		}),
		RegistrationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "intake_registrations_created_total",
			Help: "Number of pending registrations written to the ledger",
		}),
		ProvisioningOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_provisioning_outcomes_total",
			Help: "Provisioning phase outcomes by phase and recorded status",
		}, []string{"phase", "status"}),
		BroadcastDeliveries: factory.NewCounter(prometheus.CounterOpts{
			Name: "intake_broadcast_deliveries_total",
			Help: "Broadcast messages successfully delivered",
		}),
	}
}
