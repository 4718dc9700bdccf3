package store

import (
	"context"
	"errors"
	"sync"

	"github.com/liyue/tracemap/internal/domain"
)

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor loads large record datasets into a store using a worker pool.
// Records are split into batches so graph backends see UNWIND-sized writes
// instead of one relationship per round trip.
type BulkIngestor struct {
	store     RecordStore
	workers   int
	batchSize int
}

// NewBulkIngestor creates a BulkIngestor with the provided concurrency.
func NewBulkIngestor(store RecordStore, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		store:     store,
		workers:   workers,
		batchSize: 500,
	}
}

// IngestRecords writes the records concurrently in batches.
func (bi *BulkIngestor) IngestRecords(ctx context.Context, records []domain.ContactRecord) error {
	batches := batchRecords(records, bi.batchSize)
	return bi.run(ctx, len(batches), func(idx int) error {
		return bi.store.InsertRecords(ctx, batches[idx])
	})
}

func batchRecords(records []domain.ContactRecord, size int) [][]domain.ContactRecord {
	if size <= 0 {
		size = len(records)
	}
	var batches [][]domain.ContactRecord
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
