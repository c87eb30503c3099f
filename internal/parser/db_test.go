package parser

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"security-suite/internal/engine"
	"security-suite/internal/model"
)

var testDB *sql.DB
var dsn = "root:static@tcp(127.0.0.1:3306)/firewall_mgmt"

func TestMain(m *testing.M) {
	if v := os.Getenv("SUITE_TEST_DSN"); v != "" {
		dsn = v
	}
	var err error
	testDB, err = sql.Open("mysql", dsn)
	if err != nil {
		fmt.Printf("failed to connect to MariaDB: %v\n", err)
		testDB = nil
	} else if err := testDB.Ping(); err != nil {
		fmt.Printf("MariaDB not reachable: %v\n", err)
		testDB.Close()
		testDB = nil
	}

	if testDB != nil {
		setupSchema()
	}
	code := m.Run()
	if testDB != nil {
		testDB.Close()
	}
	os.Exit(code)
}

func setupSchema() {
	testDB.Exec("DROP TABLE IF EXISTS firewall_rule")
	testDB.Exec(`CREATE TABLE firewall_rule (
		id INT PRIMARY KEY,
		name VARCHAR(64) NOT NULL,
		ip VARCHAR(64) NOT NULL,
		port INT NOT NULL,
		protocol VARCHAR(8) NOT NULL,
		status VARCHAR(16) NOT NULL,
		direction VARCHAR(16) NOT NULL
	)`)
	testDB.Exec(`INSERT INTO firewall_rule (id, name, ip, port, protocol, status, direction) VALUES
		(2, 'System Update', '192.168.1.10', 80, 'tcp', 'allowed', 'outbound'),
		(1, 'Chrome Web', ' 8.8.8.8 ', 443, 'TCP', 'allow', 'outbound'),
		(5, 'Suspicious Traffic', '45.137.21.112', 4444, 'tcp', 'deny', 'inbound')`)
}

func TestMariaDBParserLoadsRulesInIDOrder(t *testing.T) {
	if testDB == nil {
		t.Skip("MariaDB not available")
	}
	p, err := NewMariaDBParser(dsn)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	defer p.Close()

	if err := p.Parse(); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(p.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(p.Rules))
	}
	if p.Rules[0].ID != 1 || p.Rules[2].ID != 5 {
		t.Errorf("rules not ordered by id: %+v", p.Rules)
	}
	if p.Rules[2].Status != model.Blocked || p.Rules[0].Protocol != model.TCP {
		t.Errorf("rule fields not normalized: %+v", p.Rules)
	}
	if p.Rules[0].IP != "8.8.8.8" {
		t.Errorf("expected trimmed ip, got %q", p.Rules[0].IP)
	}
}

func TestNormalizeRowStoresCanonicalIP(t *testing.T) {
	rule := model.FirewallRule{ID: 1, Name: "Chrome Web", IP: " 8.8.8.8\t", Port: 443}
	if err := normalizeRow(&rule, "tcp", "accept", "out"); err != nil {
		t.Fatalf("expected row to normalize, got %v", err)
	}
	want := model.FirewallRule{ID: 1, Name: "Chrome Web", IP: "8.8.8.8", Port: 443, Protocol: model.TCP, Status: model.Allowed, Direction: model.Outbound}
	if rule != want {
		t.Errorf("got %+v, want %+v", rule, want)
	}

	traffic := model.Traffic{IP: "8.8.8.8", Port: 9999}
	if m := engine.Classify([]model.FirewallRule{rule}, traffic); m.Rule == nil || m.Rule.ID != 1 {
		t.Errorf("expected normalized rule to match traffic, got %+v", m)
	}
}

func TestNormalizeRowRejectsBadValues(t *testing.T) {
	cases := []struct {
		ip, protocol, status, direction string
	}{
		{"not-an-ip", "tcp", "allow", "in"},
		{"8.8.8.8", "icmp", "allow", "in"},
		{"8.8.8.8", "tcp", "maybe", "in"},
		{"8.8.8.8", "tcp", "allow", "sideways"},
	}
	for _, c := range cases {
		rule := model.FirewallRule{ID: 4, IP: c.ip, Port: 80}
		if err := normalizeRow(&rule, c.protocol, c.status, c.direction); err == nil {
			t.Errorf("expected error for %+v", c)
		}
	}
}

func TestNewMariaDBParserUnreachable(t *testing.T) {
	if _, err := NewMariaDBParser("root:x@tcp(127.0.0.1:1)/nope?timeout=200ms"); err == nil {
		t.Fatal("expected error for unreachable database")
	}
}
