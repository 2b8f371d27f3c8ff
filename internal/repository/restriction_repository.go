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

const restrictionTable = "chatbot_restrictions"

var restrictionColumns = []string{
	"id", "topic_name", "keywords", "restriction_reason", "redirect_message",
	"severity", "log_attempt", "is_active",
}

type RestrictionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRestrictionRepository(db *pgxpool.Pool, logger *zap.Logger) *RestrictionRepository {
	return &RestrictionRepository{
		db:     db,
		logger: logger,
	}
}

// ListActive returns active restriction rules, highest severity first, ties by id.
func (r *RestrictionRepository) ListActive(ctx context.Context) ([]*models.RestrictionRule, error) {
	return r.list(ctx, listRestrictionsQuery(true))
}

func (r *RestrictionRepository) ListAll(ctx context.Context) ([]*models.RestrictionRule, error) {
	return r.list(ctx, listRestrictionsQuery(false))
}

func (r *RestrictionRepository) Upsert(ctx context.Context, rule *models.RestrictionRule) (int64, error) {
	sql, args, err := upsertRestrictionQuery(rule).ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *RestrictionRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.RestrictionRule, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.RestrictionRule
	for rows.Next() {
		rule, err := scanRestrictionRule(rows)
		if err != nil {
			return nil, err
		}
		if err := rule.Validate(); err != nil {
			r.logger.Warn("Skipping invalid restriction rule", zap.Int64("restriction_id", rule.ID), zap.Error(err))
			continue
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func listRestrictionsQuery(activeOnly bool) squirrel.SelectBuilder {
	query := squirrel.Select(restrictionColumns...).
		From(restrictionTable).
		OrderBy("severity DESC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if activeOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}
	return query
}

func upsertRestrictionQuery(rule *models.RestrictionRule) squirrel.InsertBuilder {
	return squirrel.Insert(restrictionTable).
		Columns(restrictionColumns[1:]...).
		Values(
			rule.TopicName, strings.Join(rule.Keywords, ","), rule.RestrictionReason, rule.RedirectMessage,
			rule.Severity, rule.LogAttempt, rule.IsActive,
		).
		Suffix(`ON CONFLICT (topic_name) DO UPDATE SET
			keywords = EXCLUDED.keywords,
			restriction_reason = EXCLUDED.restriction_reason,
			redirect_message = EXCLUDED.redirect_message,
			severity = EXCLUDED.severity,
			log_attempt = EXCLUDED.log_attempt,
			is_active = EXCLUDED.is_active
			RETURNING id`).
		PlaceholderFormat(squirrel.Dollar)
}

func scanRestrictionRule(row pgx.Row) (*models.RestrictionRule, error) {
	var (
		rule     models.RestrictionRule
		keywords string
	)
	if err := row.Scan(
		&rule.ID, &rule.TopicName, &keywords, &rule.RestrictionReason, &rule.RedirectMessage,
		&rule.Severity, &rule.LogAttempt, &rule.IsActive,
	); err != nil {
		return nil, err
	}

	rule.Keywords = models.ParseKeywords(keywords)
	return &rule, nil
}
