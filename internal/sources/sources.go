package sources

import (
	"context"
	"fmt"
	"sync"

	"crowsnest/internal/models"
	"crowsnest/pkg/logging"
)

// Fetcher pulls posts for a keyword from one upstream platform.
//
// Implementations absorb expected failure conditions (missing credential,
// non-200 response, malformed payload) by logging a warning and returning
// an empty slice. A non-nil error is reserved for unexpected failures and
// surfaces as one accumulated error string in the fan-out.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, keyword string) ([]models.Post, error)
}

// FetchAll runs every fetcher concurrently and waits for all of them to
// settle. Results are concatenated in the fixed fetcher order regardless
// of completion order; each failed fetcher contributes one
// "<Name>: <reason>" string to the returned error list. A panicking
// fetcher is reported the same way, never crashing the run.
func FetchAll(ctx context.Context, keyword string, fetchers []Fetcher, logger logging.Logger) ([]models.Post, []string) {
	type outcome struct {
		posts []models.Post
		err   error
	}

	outcomes := make([]outcome, len(fetchers))
	var wg sync.WaitGroup
	for i, fetcher := range fetchers {
		wg.Add(1)
		go func(i int, fetcher Fetcher) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i].err = fmt.Errorf("panic: %v", r)
				}
			}()
			outcomes[i].posts, outcomes[i].err = fetcher.Fetch(ctx, keyword)
		}(i, fetcher)
	}
	wg.Wait()

	var posts []models.Post
	var errs []string
	for i, out := range outcomes {
		if out.err != nil {
			if logger != nil {
				logger.WithError(out.err).WithField("source", fetchers[i].Name()).Warn("Source fetch failed")
			}
			errs = append(errs, fmt.Sprintf("%s: %s", fetchers[i].Name(), out.err.Error()))
			continue
		}
		posts = append(posts, out.posts...)
	}
	return posts, errs
}
