package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueReceipt = "jobs:receipt"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes one dequeued job payload. Returning an error requeues
// the job until maxAttempts, then sends it to the DLQ.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists. The worker pool dequeues
// them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// ReceiptJob asks the pool to render and mail the receipt for one sale.
type ReceiptJob struct {
	SaleID   string `json:"sale_id"`
	Email    string `json:"email"`
	Attempts int    `json:"attempts"`
}

// EnqueueReceipt pushes a receipt delivery job to Redis.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload ReceiptJob) error {
	return d.enqueue(ctx, QueueReceipt, "receipt", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

const maxAttempts = 3

// StartWorkerPool launches numWorkers goroutines consuming the receipt
// queue. Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, receipts *ReceiptWorker) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, receipts)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, receipts *ReceiptWorker) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueReceipt).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], receipts)
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue, raw string, receipts *ReceiptWorker) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	if job.Type != "receipt" {
		log.Warn().Str("type", job.Type).Msg("unknown job type")
		return
	}

	if err := receipts.Process(ctx, job.Payload); err != nil {
		retryReceipt(ctx, rdb, queue, job, err)
	}
}

// retryReceipt requeues the job with a bumped attempt counter, moving it to
// the DLQ once maxAttempts is exhausted.
func retryReceipt(ctx context.Context, rdb *redis.Client, queue string, job Job, cause error) {
	var payload ReceiptJob
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "unreadable payload: "+err.Error(), 0)
		return
	}
	payload.Attempts++
	if payload.Attempts >= maxAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, cause.Error(), payload.Attempts)
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	encoded, err := json.Marshal(Job{Type: job.Type, Payload: data})
	if err != nil {
		return
	}
	if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		log.Error().Err(err).Msg("failed to requeue receipt job")
	}
}
