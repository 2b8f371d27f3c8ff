package repository

import (
	"context"
	"strings"

	"clinic-assistant/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const scopeTable = "chatbot_scope"

var scopeColumns = []string{
	"id", "category", "topic", "keywords", "allowed_response_type", "response_template",
	"max_detail_level", "requires_login", "priority", "is_active",
}

type ScopeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewScopeRepository(db *pgxpool.Pool, logger *zap.Logger) *ScopeRepository {
	return &ScopeRepository{
		db:     db,
		logger: logger,
	}
}

// ListActive returns active scope rules, highest priority first. Equal
// priorities keep id order so the result is deterministic.
func (r *ScopeRepository) ListActive(ctx context.Context) ([]*models.ScopeRule, error) {
	return r.list(ctx, listScopesQuery(true))
}

// ListAll includes inactive rules; used by operator tooling.
func (r *ScopeRepository) ListAll(ctx context.Context) ([]*models.ScopeRule, error) {
	return r.list(ctx, listScopesQuery(false))
}

// Upsert inserts a rule keyed by topic, or updates the existing one, and
// returns the stored id.
func (r *ScopeRepository) Upsert(ctx context.Context, rule *models.ScopeRule) (int64, error) {
	sql, args, err := upsertScopeQuery(rule).ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ScopeRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.ScopeRule, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.ScopeRule
	for rows.Next() {
		rule, err := scanScopeRule(rows)
		if err != nil {
			return nil, err
		}
		if err := rule.Validate(); err != nil {
			r.logger.Warn("Skipping invalid scope rule", zap.Int64("scope_id", rule.ID), zap.Error(err))
			continue
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func listScopesQuery(activeOnly bool) squirrel.SelectBuilder {
	query := squirrel.Select(scopeColumns...).
		From(scopeTable).
		OrderBy("priority DESC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if activeOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}
	return query
}

func upsertScopeQuery(rule *models.ScopeRule) squirrel.InsertBuilder {
	return squirrel.Insert(scopeTable).
		Columns(scopeColumns[1:]...).
		Values(
			rule.Category, rule.Topic, strings.Join(rule.Keywords, ","), string(rule.AllowedResponseType),
			nullableText(rule.ResponseTemplate), rule.MaxDetailLevel, rule.RequiresLogin, rule.Priority, rule.IsActive,
		).
		Suffix(`ON CONFLICT (topic) DO UPDATE SET
			category = EXCLUDED.category,
			keywords = EXCLUDED.keywords,
			allowed_response_type = EXCLUDED.allowed_response_type,
			response_template = EXCLUDED.response_template,
			max_detail_level = EXCLUDED.max_detail_level,
			requires_login = EXCLUDED.requires_login,
			priority = EXCLUDED.priority,
			is_active = EXCLUDED.is_active
			RETURNING id`).
		PlaceholderFormat(squirrel.Dollar)
}

func scanScopeRule(row pgx.Row) (*models.ScopeRule, error) {
	var (
		rule         models.ScopeRule
		keywords     string
		responseType string
		template     *string
	)
	if err := row.Scan(
		&rule.ID, &rule.Category, &rule.Topic, &keywords, &responseType, &template,
		&rule.MaxDetailLevel, &rule.RequiresLogin, &rule.Priority, &rule.IsActive,
	); err != nil {
		return nil, err
	}

	rule.Keywords = models.ParseKeywords(keywords)
	rule.AllowedResponseType = models.ResponseType(responseType)
	if template != nil {
		rule.ResponseTemplate = *template
	}
	return &rule, nil
}

func nullableText(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
