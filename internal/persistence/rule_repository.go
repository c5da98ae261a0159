package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IliaW/robots-api/internal/model"
)

var ErrRuleNotFound = errors.New("rule not found")

//go:generate go run github.com/vektra/mockery/v2@v2.53.0 --name RuleStorage
type RuleStorage interface {
	GetByDomain(string) ([]*model.Rule, error)
	GetById(string) (*model.Rule, error)
	Save(*model.Rule) (int64, error)
	Delete(string) error
}

type RuleRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{
		db: db,
	}
}

// GetByDomain returns the rules of the domain in insertion order.
func (r *RuleRepository) GetByDomain(domain string) ([]*model.Rule, error) {
	rows, err := r.db.Query(`SELECT id, domain, robot, path, kind, created_at
									FROM web_crawler.robots_rule WHERE domain = $1 ORDER BY id`, domain)
	if err != nil {
		slog.Debug("failed to get rules from database.", slog.String("err", err.Error()))
		return nil, fmt.Errorf("failed to query rules for domain '%s': %w", domain, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows.", slog.String("err", err.Error()))
		}
	}()

	rules := make([]*model.Rule, 0)
	for rows.Next() {
		var rule model.Rule
		if err = rows.Scan(&rule.ID, &rule.Domain, &rule.Robot, &rule.Path, &rule.Kind, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, &rule)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	slog.Debug("rules fetched from db.", slog.String("domain", domain), slog.Int("count", len(rules)))

	return rules, nil
}

func (r *RuleRepository) GetById(id string) (*model.Rule, error) {
	var rule model.Rule
	row := r.db.QueryRow(`SELECT id, domain, robot, path, kind, created_at
									FROM web_crawler.robots_rule WHERE id = $1`, id)
	err := row.Scan(&rule.ID, &rule.Domain, &rule.Robot, &rule.Path, &rule.Kind, &rule.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rule with id '%s': %w", id, ErrRuleNotFound)
		}
		slog.Debug("failed to get rule from database.", slog.String("err", err.Error()))
		return nil, err
	}
	slog.Debug("rule fetched from db.")

	return &rule, nil
}

func (r *RuleRepository) Save(rule *model.Rule) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var id int64
	err := r.db.QueryRow(`INSERT INTO web_crawler.robots_rule (domain, robot, path, kind)
									VALUES ($1, $2, $3, $4) RETURNING id`,
		rule.Domain, rule.Robot, rule.Path, rule.Kind).Scan(&id)
	if err != nil {
		return 0, err
	}
	slog.Debug("rule saved to db.")

	return id, nil
}

func (r *RuleRepository) Delete(ruleId string) error {
	result, err := r.db.Exec("DELETE FROM web_crawler.robots_rule WHERE id = $1", ruleId)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("rule with id '%s': %w", ruleId, ErrRuleNotFound)
	}
	slog.Debug("rule deleted from db.")

	return nil
}
