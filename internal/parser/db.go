package parser

import (
	"database/sql"
	"fmt"

	"security-suite/internal/model"
	"security-suite/internal/utils"

	_ "github.com/go-sql-driver/mysql"
)

// MariaDBParser loads the seed rule set from the firewall_rule table. The
// table is read once at start; nothing is written back.
type MariaDBParser struct {
	db *sql.DB

	Rules []model.FirewallRule
}

func NewMariaDBParser(dsn string) (*MariaDBParser, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &MariaDBParser{db: db}, nil
}

func (p *MariaDBParser) Close() {
	p.db.Close()
}

func (p *MariaDBParser) Parse() error {
	if err := p.loadRules(); err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	return ValidateRules(p.Rules)
}

func (p *MariaDBParser) loadRules() error {
	rows, err := p.db.Query("SELECT id, name, ip, port, protocol, status, direction FROM firewall_rule ORDER BY id ASC")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rule model.FirewallRule
		var protocol, status, direction string
		if err := rows.Scan(&rule.ID, &rule.Name, &rule.IP, &rule.Port, &protocol, &status, &direction); err != nil {
			return err
		}
		if err := normalizeRow(&rule, protocol, status, direction); err != nil {
			return err
		}
		p.Rules = append(p.Rules, rule)
	}
	return rows.Err()
}

// normalizeRow fills the enum fields from their column text and stores the
// canonical IP, so a padded value still matches traffic.
func normalizeRow(rule *model.FirewallRule, protocol, status, direction string) error {
	var err error
	if rule.IP, err = utils.NormalizeIP(rule.IP); err != nil {
		return fmt.Errorf("rule %d: %w", rule.ID, err)
	}
	if rule.Protocol, err = ParseProtocol(protocol); err != nil {
		return fmt.Errorf("rule %d: %w", rule.ID, err)
	}
	if rule.Status, err = ParseStatus(status); err != nil {
		return fmt.Errorf("rule %d: %w", rule.ID, err)
	}
	if rule.Direction, err = ParseDirection(direction); err != nil {
		return fmt.Errorf("rule %d: %w", rule.ID, err)
	}
	return nil
}
