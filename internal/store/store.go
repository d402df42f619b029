package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"crowsnest/internal/models"
)

// Store persists scored posts and their satellite rows. All methods are
// safe on a nil receiver so callers in degraded mode (no DATABASE_URL)
// can hold a nil store and treat every write as a soft failure.
type Store interface {
	UpsertPost(ctx context.Context, row PostRow) error
	InsertEntities(ctx context.Context, postID string, rows []EntityRow) error
	InsertMedia(ctx context.Context, postID string, rows []MediaRow) error
	InsertEvidence(ctx context.Context, row EvidenceRow) error
	InsertAdminResponse(ctx context.Context, row AdminResponseRow) error
	GetAdminResponse(ctx context.Context, postID string) (string, error)
	GetEvidence(ctx context.Context, postID string) ([]models.EvidenceResult, error)
	GetPostByID(ctx context.Context, postID string) (*PostRow, error)
	Dashboard(ctx context.Context, timeRange string) (*DashboardData, error)
	ClearAll(ctx context.Context) error
}

type SQLStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

var errUnavailable = errors.New("store unavailable")

func (s *SQLStore) UpsertPost(ctx context.Context, row PostRow) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (
			id, platform, entity, author, handle, full_text, url,
			score, sentiment, reach, engagement, badges, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			score = EXCLUDED.score,
			sentiment = EXCLUDED.sentiment,
			reach = EXCLUDED.reach,
			engagement = EXCLUDED.engagement
	`,
		row.ID,
		row.Platform,
		row.Entity,
		row.Author,
		row.Handle,
		row.FullText,
		row.URL,
		row.Score,
		row.Sentiment,
		row.Reach,
		row.Engagement,
		pq.Array(row.Badges),
		row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert post: %w", err)
	}
	return nil
}

func (s *SQLStore) InsertEntities(ctx context.Context, postID string, rows []EntityRow) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}
	for _, row := range rows {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO entities (post_id, entity_type, text) VALUES ($1, $2, $3)`,
			postID, row.EntityType, row.Text,
		)
		if err != nil {
			return fmt.Errorf("insert entity: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) InsertMedia(ctx context.Context, postID string, rows []MediaRow) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}
	for _, row := range rows {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO media (post_id, media_type, url, thumbnail_url) VALUES ($1, $2, $3, $4)`,
			postID, row.MediaType, row.URL, row.ThumbnailURL,
		)
		if err != nil {
			return fmt.Errorf("insert media: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) InsertEvidence(ctx context.Context, row EvidenceRow) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}

	dataJSON, err := json.Marshal(row.Data)
	if err != nil {
		return fmt.Errorf("encode evidence data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evidence (post_id, source, title, url, snippet, evidence_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`,
		row.PostID, row.Source, row.Title, row.URL, row.Snippet, dataJSON,
	)
	if err != nil {
		return fmt.Errorf("insert evidence: %w", err)
	}
	return nil
}

func (s *SQLStore) InsertAdminResponse(ctx context.Context, row AdminResponseRow) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_responses (post_id, response_text, generated_by, model_used, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`,
		row.PostID, row.ResponseText, row.GeneratedBy, row.ModelUsed,
	)
	if err != nil {
		return fmt.Errorf("insert admin response: %w", err)
	}
	return nil
}

// GetAdminResponse returns the latest drafted reply for a post, or empty
// when none exists.
func (s *SQLStore) GetAdminResponse(ctx context.Context, postID string) (string, error) {
	if s == nil || s.db == nil {
		return "", errUnavailable
	}

	var text string
	err := s.db.QueryRowContext(ctx, `
		SELECT response_text FROM admin_responses
		WHERE post_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, postID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get admin response: %w", err)
	}
	return text, nil
}

func (s *SQLStore) GetEvidence(ctx context.Context, postID string) ([]models.EvidenceResult, error) {
	if s == nil || s.db == nil {
		return nil, errUnavailable
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT title, url, snippet, evidence_data FROM evidence
		WHERE post_id = $1
		ORDER BY created_at DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("get evidence: %w", err)
	}
	defer rows.Close()

	var results []models.EvidenceResult
	for rows.Next() {
		var title, url, snippet sql.NullString
		var dataJSON []byte
		if err := rows.Scan(&title, &url, &snippet, &dataJSON); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		result := models.EvidenceResult{
			Title:   title.String,
			URL:     url.String,
			Snippet: snippet.String,
		}
		if len(dataJSON) > 0 {
			var data struct {
				TextBlock string `json:"text_block"`
			}
			if err := json.Unmarshal(dataJSON, &data); err == nil {
				result.TextBlock = data.TextBlock
			}
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence: %w", err)
	}
	return results, nil
}

// GetPostByID returns the stored post, or nil when unknown.
func (s *SQLStore) GetPostByID(ctx context.Context, postID string) (*PostRow, error) {
	if s == nil || s.db == nil {
		return nil, errUnavailable
	}

	var row PostRow
	var badges pq.StringArray
	err := s.db.QueryRowContext(ctx, `
		SELECT id, platform, entity, author, handle, full_text, url,
			score, sentiment, reach, engagement, badges, created_at
		FROM posts
		WHERE id = $1
	`, postID).Scan(
		&row.ID,
		&row.Platform,
		&row.Entity,
		&row.Author,
		&row.Handle,
		&row.FullText,
		&row.URL,
		&row.Score,
		&row.Sentiment,
		&row.Reach,
		&row.Engagement,
		&badges,
		&row.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	row.Badges = badges
	return &row, nil
}

// Dashboard aggregates posts within the time range: 24h, 7d or 30d.
// Unknown ranges fall back to 7d.
func (s *SQLStore) Dashboard(ctx context.Context, timeRange string) (*DashboardData, error) {
	if s == nil || s.db == nil {
		return nil, errUnavailable
	}

	daysBack := 7
	switch timeRange {
	case "24h":
		daysBack = 1
	case "30d":
		daysBack = 30
	}
	start := time.Now().AddDate(0, 0, -daysBack)

	rows, err := s.db.QueryContext(ctx, `
		SELECT platform, score, sentiment, created_at FROM posts
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`, start)
	if err != nil {
		return nil, fmt.Errorf("dashboard posts: %w", err)
	}
	defer rows.Close()

	type postStat struct {
		platform  string
		score     int
		createdAt time.Time
	}
	var posts []postStat
	for rows.Next() {
		var p postStat
		var sentiment string
		if err := rows.Scan(&p.platform, &p.score, &sentiment, &p.createdAt); err != nil {
			return nil, fmt.Errorf("scan dashboard post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dashboard posts: %w", err)
	}

	data := &DashboardData{
		TotalMentions: len(posts),
		AverageScore:  float64(models.PlaceholderRiskScore),
		PlatformData:  []PlatformStat{},
		TopTopics:     []TopTopic{},
	}
	if len(posts) == 0 {
		data.MentionsOverTime = []MentionPoint{}
		return data, nil
	}

	type platformAgg struct {
		mentions   int
		totalScore int
	}
	platforms := map[string]*platformAgg{}
	var platformOrder []string
	byDay := map[string]int{}
	totalScore := 0
	for _, p := range posts {
		agg, ok := platforms[p.platform]
		if !ok {
			agg = &platformAgg{}
			platforms[p.platform] = agg
			platformOrder = append(platformOrder, p.platform)
		}
		agg.mentions++
		agg.totalScore += p.score

		switch {
		case p.score >= 8:
			data.RiskData.High++
		case p.score >= 4:
			data.RiskData.Medium++
		default:
			data.RiskData.Low++
		}

		byDay[p.createdAt.Format("2006-01-02")]++
		totalScore += p.score
	}

	for _, platform := range platformOrder {
		agg := platforms[platform]
		data.PlatformData = append(data.PlatformData, PlatformStat{
			Platform: platform,
			Mentions: agg.mentions,
			Score:    int(math.Round(float64(agg.totalScore) / float64(agg.mentions))),
		})
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		t, _ := time.Parse("2006-01-02", day)
		data.MentionsOverTime = append(data.MentionsOverTime, MentionPoint{
			Date:     t.Format("Jan 2"),
			Mentions: byDay[day],
		})
	}

	data.AverageScore = math.Round(float64(totalScore)/float64(len(posts))*10) / 10

	topics, err := s.topTopics(ctx, start)
	if err != nil {
		// Topic aggregation is decorative; the dashboard still renders
		// without it.
		topics = []TopTopic{}
	}
	data.TopTopics = topics

	return data, nil
}

func (s *SQLStore) topTopics(ctx context.Context, start time.Time) ([]TopTopic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT LOWER(e.text), p.score, p.sentiment
		FROM entities e
		JOIN posts p ON p.id = e.post_id
		WHERE e.entity_type = 'hashtag' AND p.created_at >= $1
	`, start)
	if err != nil {
		return nil, fmt.Errorf("dashboard hashtags: %w", err)
	}
	defer rows.Close()

	type topicAgg struct {
		volume     int
		totalScore int
		positive   int
		neutral    int
		negative   int
	}
	topics := map[string]*topicAgg{}
	for rows.Next() {
		var tag, sentiment string
		var score int
		if err := rows.Scan(&tag, &score, &sentiment); err != nil {
			return nil, fmt.Errorf("scan hashtag: %w", err)
		}
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		agg, ok := topics[tag]
		if !ok {
			agg = &topicAgg{}
			topics[tag] = agg
		}
		agg.volume++
		agg.totalScore += score
		switch models.Sentiment(sentiment) {
		case models.SentimentPositive:
			agg.positive++
		case models.SentimentNegative:
			agg.negative++
		default:
			agg.neutral++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hashtags: %w", err)
	}

	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if topics[names[i]].volume != topics[names[j]].volume {
			return topics[names[i]].volume > topics[names[j]].volume
		}
		return names[i] < names[j]
	})
	if len(names) > 5 {
		names = names[:5]
	}

	result := make([]TopTopic, 0, len(names))
	for _, name := range names {
		agg := topics[name]
		result = append(result, TopTopic{
			Name:      "#" + name,
			Volume:    agg.volume,
			RiskScore: math.Round(float64(agg.totalScore)/float64(agg.volume)*10) / 10,
			Sentiment: TopicSentiment{
				Positive: pct(agg.positive, agg.volume),
				Neutral:  pct(agg.neutral, agg.volume),
				Negative: pct(agg.negative, agg.volume),
			},
		})
	}
	return result, nil
}

func pct(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

// ClearAll wipes every table, children before posts.
func (s *SQLStore) ClearAll(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}

	for _, table := range []string{"admin_responses", "evidence", "media", "entities", "posts"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
