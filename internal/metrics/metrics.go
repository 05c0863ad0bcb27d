// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the Prometheus counters exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// CourseMutations counts course creates and field updates handled by
	// the API, by field ("create" for creation) and outcome.
	CourseMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learnhub_course_mutations_total",
		Help: "Course mutations handled by the API.",
	}, []string{"field", "outcome"})

	// CourseCache counts read-model cache lookups by result (hit, miss).
	CourseCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learnhub_course_cache_total",
		Help: "Course read-model cache lookups.",
	}, []string{"result"})

	// Uploads counts uploads by endpoint and outcome.
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learnhub_uploads_total",
		Help: "File uploads handled by the upload endpoints.",
	}, []string{"endpoint", "outcome"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
