package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/talkport/mailfeed/internal/models"
	"github.com/talkport/mailfeed/internal/normalize"
	"github.com/talkport/mailfeed/internal/provider"
)

const (
	// DefaultWindow bounds how many most-recent messages one linking event
	// pulls from the provider.
	DefaultWindow = 100

	// DefaultWorkers bounds concurrent per-message detail fetches. A
	// resource cap only; callers never observe it.
	DefaultWorkers = 8
)

// Fetcher pulls a bounded window of messages for one set of credentials and
// normalizes them.
type Fetcher struct {
	mail    provider.Mail
	window  int64
	workers int
}

func NewFetcher(mail provider.Mail, window int64, workers int) *Fetcher {
	if window <= 0 {
		window = DefaultWindow
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Fetcher{mail: mail, window: window, workers: workers}
}

// FetchMessages lists up to the window of message ids (newest first, in the
// provider's own order) and fetches each full message concurrently. The
// returned sequence matches the id-list order regardless of completion
// order. Any listing or per-message failure fails the whole operation with
// ErrMessageFetch; there is no partial result.
func (f *Fetcher) FetchMessages(ctx context.Context, creds provider.Credentials) ([]models.NormalizedMessage, error) {
	ids, err := f.mail.ListMessageIDs(ctx, creds, f.window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrMessageFetch, err)
	}
	if len(ids) == 0 {
		return []models.NormalizedMessage{}, nil
	}

	msgs := make([]models.NormalizedMessage, len(ids))

	workers := f.workers
	if workers > len(ids) {
		workers = len(ids)
	}
	jobs := make(chan int)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				mu.Lock()
				failed := firstErr != nil
				mu.Unlock()
				if failed {
					continue // drain remaining jobs, nothing left to salvage
				}

				raw, err := f.mail.GetMessage(ctx, creds, ids[i])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				msgs[i] = normalize.Message(raw)
			}
		}()
	}

	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrMessageFetch, firstErr)
	}
	return msgs, nil
}
