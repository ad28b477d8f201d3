package repository

import (
	"database/sql"
	"time"

	"newsbag/internal/model"

	"github.com/lib/pq"
)

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) EnsureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS raw_article (
			id BIGSERIAL PRIMARY KEY,
			dedup_id TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL,
			body TEXT,
			link TEXT,
			source TEXT,
			published_at TIMESTAMPTZ NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			status TEXT NOT NULL DEFAULT 'pending'
		)`,
		`CREATE TABLE IF NOT EXISTS article (
			id BIGSERIAL PRIMARY KEY,
			dedup_id TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL,
			body TEXT,
			link TEXT,
			source TEXT,
			published_at TIMESTAMPTZ NOT NULL,
			news_type TEXT,
			region TEXT,
			topics TEXT[],
			related_markets TEXT[],
			macro_sensitive BOOLEAN NOT NULL DEFAULT false,
			likely_to_influence BOOLEAN NOT NULL DEFAULT false,
			influence_reason TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS processing_error (
			id BIGSERIAL PRIMARY KEY,
			raw_article_id BIGINT,
			error_message TEXT,
			error_type TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_article_related_markets ON article USING GIN (related_markets)`,
		`CREATE INDEX IF NOT EXISTS idx_article_published_at ON article (published_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRaw inserts a fetched item keyed by its dedup id. Returns false when a
// row with the same dedup id already exists.
func (r *ArticleRepository) SaveRaw(article *model.RawArticle) (bool, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO raw_article(dedup_id, title, body, link, source, published_at, status)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (dedup_id) DO NOTHING
		RETURNING id
	`, article.DedupID, article.Title, article.Body, article.Link, article.Source, article.PublishedAt, model.StatusPending).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	article.ID = id
	return true, nil
}

func (r *ArticleRepository) GetRawByID(id int64) (*model.RawArticle, error) {
	var a model.RawArticle
	err := r.db.QueryRow(`
		SELECT id, dedup_id, title, COALESCE(body, ''), COALESCE(link, ''), COALESCE(source, ''), published_at, fetched_at, status
		FROM raw_article
		WHERE id = $1
	`, id).Scan(&a.ID, &a.DedupID, &a.Title, &a.Body, &a.Link, &a.Source, &a.PublishedAt, &a.FetchedAt, &a.Status)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *ArticleRepository) UpdateRawStatus(id int64, status string) error {
	_, err := r.db.Exec(`
		UPDATE raw_article SET status = $1 WHERE id = $2
	`, status, id)
	return err
}

// SaveArticle stores a tagged article. Idempotent: a second call with the
// same dedup id is a no-op and returns false.
func (r *ArticleRepository) SaveArticle(article *model.Article) (bool, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO article(
			dedup_id, title, body, link, source, published_at,
			news_type, region, topics, related_markets,
			macro_sensitive, likely_to_influence, influence_reason
		)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (dedup_id) DO NOTHING
		RETURNING id
	`, article.DedupID, article.Title, article.Body, article.Link, article.Source, article.PublishedAt,
		article.NewsType, article.Region, pq.Array(article.Topics), pq.Array(article.RelatedMarkets),
		article.MacroSensitive, article.LikelyToInfluence, article.InfluenceReason).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	article.ID = id
	return true, nil
}

const articleColumns = `
	id, dedup_id, title, COALESCE(body, ''), COALESCE(link, ''), COALESCE(source, ''), published_at,
	COALESCE(news_type, ''), COALESCE(region, ''), topics, related_markets,
	macro_sensitive, likely_to_influence, COALESCE(influence_reason, '')`

// QueryByTickers returns articles whose related markets intersect tickers
// and that were published at or after since. Most recent first, ties broken
// by insertion order.
func (r *ArticleRepository) QueryByTickers(tickers []string, since time.Time, limit int) ([]model.Article, error) {
	rows, err := r.db.Query(`
		SELECT `+articleColumns+`
		FROM article
		WHERE related_markets && $1 AND published_at >= $2
		ORDER BY published_at DESC, id ASC
		LIMIT $3
	`, pq.Array(tickers), since, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (r *ArticleRepository) ListArticles(limit, offset int) ([]model.Article, error) {
	rows, err := r.db.Query(`
		SELECT `+articleColumns+`
		FROM article
		ORDER BY published_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (r *ArticleRepository) ArticleTotal() (int, error) {
	var total int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM article
	`).Scan(&total)
	return total, err
}

func scanArticles(rows *sql.Rows) ([]model.Article, error) {
	var articles []model.Article
	for rows.Next() {
		var a model.Article
		err := rows.Scan(
			&a.ID, &a.DedupID, &a.Title, &a.Body, &a.Link, &a.Source, &a.PublishedAt,
			&a.NewsType, &a.Region, pq.Array(&a.Topics), pq.Array(&a.RelatedMarkets),
			&a.MacroSensitive, &a.LikelyToInfluence, &a.InfluenceReason,
		)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return articles, nil
}

func (r *ArticleRepository) SaveError(rawID int64, errMsg string, errType string) error {
	_, err := r.db.Exec(`
		INSERT INTO processing_error(raw_article_id, error_message, error_type)
		VALUES($1, $2, $3)
	`, rawID, errMsg, errType)

	return err
}

func (r *ArticleRepository) GetErrorCount(rawID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM processing_error
		WHERE raw_article_id = $1
	`, rawID).Scan(&count)

	return count, err
}
