package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ourphotos_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ourphotos_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Domain metrics
	AlbumsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ourphotos_albums_created_total",
			Help: "Total number of albums created",
		},
	)

	AlbumsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ourphotos_albums_deleted_total",
			Help: "Total number of albums deleted with their images",
		},
	)

	ImagesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ourphotos_images_uploaded_total",
			Help: "Total number of images stored",
		},
	)

	UploadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ourphotos_upload_failures_total",
			Help: "Upload batches rolled back after a failure",
		},
	)

	BlobDeletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ourphotos_blob_deletes_total",
			Help: "Blobs removed from the blob store, by result",
		},
		[]string{"result"},
	)

	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ourphotos_logins_total",
			Help: "OAuth login attempts, by result",
		},
		[]string{"result"},
	)
)
