package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"crowsnest/internal/evidence"
	"crowsnest/internal/models"
	"crowsnest/internal/respond"
	"crowsnest/internal/scoring"
	"crowsnest/internal/sources"
	"crowsnest/internal/store"
	"crowsnest/pkg/logging"
)

// HighRiskThreshold is the minimum score that triggers evidence
// collection and admin response drafting.
const HighRiskThreshold = 8

const evidenceSource = "serpapi_google_ai"

type Config struct {
	Fetchers []sources.Fetcher
	Scorer   *scoring.Scorer
	Evidence *evidence.Collector
	Drafter  *respond.Drafter
	Store    store.Store
	Model    string
	Logger   logging.Logger
}

// Pipeline runs the full search workflow: fetch from every source,
// score and persist each post, then enrich high-risk posts with
// evidence and a drafted admin response.
type Pipeline struct {
	fetchers []sources.Fetcher
	scorer   *scoring.Scorer
	evidence *evidence.Collector
	drafter  *respond.Drafter
	store    store.Store
	model    string
	logger   logging.Logger
}

func New(cfg Config) *Pipeline {
	return &Pipeline{
		fetchers: cfg.Fetchers,
		scorer:   cfg.Scorer,
		evidence: cfg.Evidence,
		drafter:  cfg.Drafter,
		store:    cfg.Store,
		model:    cfg.Model,
		logger:   cfg.Logger,
	}
}

// Result is the outcome of one search run. Errors are human-readable
// and non-fatal: posts are returned even when some stages failed.
type Result struct {
	Posts  []models.Post `json:"posts"`
	Errors []string      `json:"errors,omitempty"`
}

// workItem pairs a high-risk post with its enrichment as it moves
// through the evidence and drafting waves.
type workItem struct {
	post     *models.Post
	evidence []models.EvidenceResult
	response string
}

// Run executes the pipeline for one keyword. Every post is scored and
// kept in the result regardless of storage outcome; storage failures
// surface as "Post <id>: <message>" entries in Errors.
func (p *Pipeline) Run(ctx context.Context, keyword string) Result {
	start := time.Now()
	searchesTotal.Inc()
	defer func() {
		searchDuration.Observe(time.Since(start).Seconds())
	}()

	posts, errs := sources.FetchAll(ctx, keyword, p.fetchers, p.logger)
	for _, post := range posts {
		postsFetchedTotal.WithLabelValues(string(post.Platform)).Inc()
	}

	now := time.Now()
	var highRisk []*workItem

	for i := range posts {
		score := models.PlaceholderRiskScore
		if p.scorer != nil {
			score = p.scorer.Score(ctx, posts[i].Content, string(posts[i].Platform))
		}
		posts[i].RiskScore = score
		posts[i].Sentiment = scoring.ScoreToSentiment(score)

		if err := p.persistPost(ctx, posts[i], keyword, now); err != nil {
			storageErrorsTotal.Inc()
			p.logger.WithError(err).WithField("post_id", posts[i].ID).Warn("Failed to store post")
			errs = append(errs, fmt.Sprintf("Post %s: %s", posts[i].ID, err.Error()))
		}

		if score >= HighRiskThreshold {
			highRiskPostsTotal.Inc()
			highRisk = append(highRisk, &workItem{post: &posts[i]})
		}
	}

	if len(highRisk) > 0 {
		p.logger.WithField("count", len(highRisk)).Info("Enriching high-risk posts")
		p.collectEvidence(ctx, highRisk)
		p.draftResponses(ctx, highRisk)

		for _, item := range highRisk {
			if err := p.persistEnrichment(ctx, item); err != nil {
				storageErrorsTotal.Inc()
				p.logger.WithError(err).WithField("post_id", item.post.ID).Warn("Failed to store enrichment")
				errs = append(errs, fmt.Sprintf("Post %s evidence/response: %s", item.post.ID, err.Error()))
			}
		}
	}

	// Newest first. Timestamps are relative strings, so they are parsed
	// against a single reference instant to keep the order consistent.
	sort.SliceStable(posts, func(i, j int) bool {
		return models.ParseRelativeTimestamp(posts[i].Timestamp, now).
			After(models.ParseRelativeTimestamp(posts[j].Timestamp, now))
	})

	return Result{Posts: posts, Errors: errs}
}

// collectEvidence fans out one search per high-risk post and waits for
// every slot to settle.
func (p *Pipeline) collectEvidence(ctx context.Context, items []*workItem) {
	if p.evidence == nil {
		return
	}
	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(item *workItem) {
			defer wg.Done()
			item.evidence = p.evidence.Collect(ctx, item.post.Content)
		}(item)
	}
	wg.Wait()
}

// draftResponses runs after evidence collection so each draft can cite
// the evidence gathered for its post. Draft failures leave the slot
// empty rather than aborting the wave.
func (p *Pipeline) draftResponses(ctx context.Context, items []*workItem) {
	if p.drafter == nil {
		return
	}
	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(item *workItem) {
			defer wg.Done()
			draft, err := p.drafter.Draft(ctx, item.post.Content, item.evidence)
			if err != nil {
				p.logger.WithError(err).WithField("post_id", item.post.ID).Warn("Failed to draft admin response")
				return
			}
			item.response = draft
		}(item)
	}
	wg.Wait()
}

func (p *Pipeline) persistPost(ctx context.Context, post models.Post, keyword string, now time.Time) error {
	if p.store == nil {
		return nil
	}

	if err := p.store.UpsertPost(ctx, toPostRow(post, keyword, now)); err != nil {
		return err
	}
	if rows := toEntityRows(post); len(rows) > 0 {
		if err := p.store.InsertEntities(ctx, post.ID, rows); err != nil {
			return err
		}
	}
	if rows := toMediaRows(post); len(rows) > 0 {
		if err := p.store.InsertMedia(ctx, post.ID, rows); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) persistEnrichment(ctx context.Context, item *workItem) error {
	if p.store == nil {
		return nil
	}

	for _, ev := range item.evidence {
		snippet := ev.Snippet
		if snippet == "" {
			snippet = ev.TextBlock
		}
		err := p.store.InsertEvidence(ctx, store.EvidenceRow{
			PostID:  item.post.ID,
			Source:  evidenceSource,
			Title:   ev.Title,
			URL:     ev.URL,
			Snippet: snippet,
			Data:    ev,
		})
		if err != nil {
			return err
		}
	}

	if item.response != "" {
		err := p.store.InsertAdminResponse(ctx, store.AdminResponseRow{
			PostID:       item.post.ID,
			ResponseText: item.response,
			GeneratedBy:  "openai",
			ModelUsed:    p.model,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
