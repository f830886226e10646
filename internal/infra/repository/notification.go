package repository

import (
	"context"
	"time"

	"seatwise/internal/infra/db"
	"seatwise/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type NotificationJob struct {
	ID       int64
	Kind     string
	Topic    string
	Payload  []byte
	RunAt    time.Time
	Attempts int32
}

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(dbtx db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: dbtx}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notification_jobs (kind, topic, payload, run_at)
		VALUES ($1, $2, $3, $4)`,
		kind, topic, payload, runAt,
	)
	if err != nil {
		return classifyErr("failed to create notification job", err)
	}
	return nil
}

// ClaimPending atomically flips up to limit due jobs to dispatched and
// returns them. The claim is one statement with SKIP LOCKED inside, so
// concurrent dispatchers never take the same job. A job whose publish fails
// afterwards is put back via Requeue.
func (r *NotificationRepository) ClaimPending(ctx context.Context, now time.Time, limit int) ([]NotificationJob, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE notification_jobs
		SET status = 'dispatched', attempts = attempts + 1, updated_at = now()
		WHERE id IN (
			SELECT id FROM notification_jobs
			WHERE status = 'pending' AND run_at <= $1
			ORDER BY run_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, topic, payload, run_at, attempts`,
		now, limit,
	)
	if err != nil {
		return nil, classifyErr("failed to claim pending jobs", err)
	}
	defer rows.Close()

	var jobs []NotificationJob
	for rows.Next() {
		var (
			job   NotificationJob
			runAt pgtype.Timestamptz
		)
		if err := rows.Scan(&job.ID, &job.Kind, &job.Topic, &job.Payload, &runAt, &job.Attempts); err != nil {
			return nil, classifyErr("failed to scan notification job", err)
		}
		job.RunAt = pgconv.TimeFromPgtype(runAt)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyErr("failed to claim pending jobs", err)
	}
	return jobs, nil
}

// Requeue returns a claimed job whose publish failed. Under maxAttempts it
// goes back to pending with a delayed run_at; at or over it is parked as
// failed for operator inspection.
func (r *NotificationRepository) Requeue(ctx context.Context, jobID int64, lastError string, maxAttempts int32, retryAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notification_jobs
		SET last_error = $2,
		    status = CASE WHEN attempts >= $3 THEN 'failed' ELSE 'pending' END,
		    run_at = CASE WHEN attempts >= $3 THEN run_at ELSE $4 END,
		    updated_at = now()
		WHERE id = $1`,
		jobID, lastError, maxAttempts, retryAt,
	)
	if err != nil {
		return classifyErr("failed to requeue notification job", err)
	}
	return nil
}
