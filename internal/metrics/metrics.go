// Package metrics exposes prometheus counters for notice assembly and
// delivery. Hosts that already serve a /metrics endpoint get visibility
// into the notifier for free; everyone else pays one registration.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noticesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hopper_notices_total",
			Help: "Notices assembled, by outcome.",
		},
		[]string{"status"},
	)
	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hopper_deliveries_total",
			Help: "Delivery attempts to the collector, by result.",
		},
		[]string{"status"},
	)
)

// NoticeAssembled counts a notice that passed the ignore rules.
func NoticeAssembled() { noticesTotal.WithLabelValues("assembled").Inc() }

// NoticeIgnored counts a notice suppressed by an ignore rule.
func NoticeIgnored() { noticesTotal.WithLabelValues("ignored").Inc() }

// DeliverySucceeded counts an accepted delivery.
func DeliverySucceeded() { deliveriesTotal.WithLabelValues("ok").Inc() }

// DeliveryFailed counts a delivery that exhausted its retries.
func DeliveryFailed() { deliveriesTotal.WithLabelValues("error").Inc() }
