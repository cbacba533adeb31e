package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AccountsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_created_total",
			Help: "Total number of bank accounts created",
		},
	)

	AccountsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_deleted_total",
			Help: "Total number of bank accounts deleted",
		},
	)

	OwnershipDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ownership_denials_total",
			Help: "Total number of requests denied by the ownership check",
		},
		[]string{"resource"},
	)

	UsersDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_deleted_total",
			Help: "Total number of users deleted",
		},
	)

	UserDeleteConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "user_delete_conflicts_total",
			Help: "Total number of user deletions blocked by owned accounts",
		},
	)
)
