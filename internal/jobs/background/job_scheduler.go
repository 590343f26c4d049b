package background

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"medbill/internal/services"
)

// JobScheduler manages background jobs
type JobScheduler struct {
	scheduler    gocron.Scheduler
	metricsSvc   services.MetricsServiceInterface
	paymentSvc   services.PaymentServiceInterface
	refreshEvery time.Duration
	jobs         map[string]gocron.Job
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(metricsSvc services.MetricsServiceInterface, paymentSvc services.PaymentServiceInterface,
	refreshEvery time.Duration) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		metricsSvc:   metricsSvc,
		paymentSvc:   paymentSvc,
		refreshEvery: refreshEvery,
		jobs:         make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	metricsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.refreshEvery),
		gocron.NewTask(js.refreshDashboardMetrics, context.Background()),
		gocron.WithName("dashboard-metrics-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create metrics refresh job: %v", err)
	} else {
		js.jobs["metrics-refresh"] = metricsJob
	}

	// Payment mode catalog changes rarely; rewarm it hourly so the first
	// request after an expiry does not pay the remote round trip.
	modesJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.warmPaymentModes, context.Background()),
		gocron.WithName("payment-modes-warm"),
	)
	if err != nil {
		log.Printf("Failed to create payment modes warm job: %v", err)
	} else {
		js.jobs["payment-modes-warm"] = modesJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// refreshDashboardMetrics recomputes the rolling dashboard window
func (js *JobScheduler) refreshDashboardMetrics(ctx context.Context) error {
	if err := js.metricsSvc.RefreshDashboardMetrics(ctx); err != nil {
		log.Printf("Failed to refresh dashboard metrics: %v", err)
		return err
	}
	return nil
}

// warmPaymentModes re-fetches the payment mode catalog into the cache
func (js *JobScheduler) warmPaymentModes(ctx context.Context) error {
	modes, err := js.paymentSvc.ListPaymentModes(ctx, true)
	if err != nil {
		log.Printf("Failed to warm payment modes cache: %v", err)
		return err
	}
	log.Printf("Payment modes cache warmed with %d modes", len(modes))
	return nil
}

// GetJobStatus returns information about scheduled jobs. The jobs map is
// fixed after construction so no locking is needed.
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobs)
	jobs := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		jobs = append(jobs, name)
	}
	status["jobs"] = jobs

	return status
}
