package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkins counts check-in attempts by outcome
// (ok, unauthorized, forbidden, out_of_bounds, upload_failed, error).
var Checkins = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pediattend_checkins_total",
	Help: "Check-in attempts by outcome.",
}, []string{"outcome"})

// Logins counts login attempts by outcome (ok, rejected, error).
var Logins = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pediattend_logins_total",
	Help: "Login attempts by outcome.",
}, []string{"outcome"})
