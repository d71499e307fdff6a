package database

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "bot", Password: "p@ss", Name: "advent"}
	want := "postgres://bot:p%40ss@db:5432/advent?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}

	cfg.URL = " postgres://u:p@other:6543/x?sslmode=require "
	if got := cfg.DSN(); got != "postgres://u:p@other:6543/x?sslmode=require" {
		t.Fatalf("URL should take precedence, got %q", got)
	}
	host, port, name := cfg.Target()
	if host != "other" || port != "6543" || name != "x" {
		t.Fatalf("target = %s %s %s", host, port, name)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatal("empty config should fail")
	}
	if err := (Config{URL: "postgres://localhost/advent"}).Validate(); err != nil {
		t.Fatalf("url config: %v", err)
	}
	if err := (Config{Host: "h", Port: "1", Name: "n", User: "u", MaxConnections: -1}).Validate(); err == nil {
		t.Fatal("negative pool should fail")
	}
}

func TestMigrationFileSelection(t *testing.T) {
	src := fstest.MapFS{
		"000002_answers.up.sql":        {Data: []byte("-- up")},
		"000001_participants.up.sql":   {Data: []byte("-- up")},
		"000001_participants.down.sql": {Data: []byte("-- down")},
		"000003_tickets.up.sql":        {Data: []byte("-- up")},
		"README.md":                    {Data: []byte("docs")},
	}
	files := listMigrationFiles(src)
	want := []string{"000001_participants.up.sql", "000002_answers.up.sql", "000003_tickets.up.sql"}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	if got := appliedBetween(files, 1, 3); !reflect.DeepEqual(got, want[1:]) {
		t.Fatalf("applied = %v", got)
	}
	if got := appliedBetween(files, 3, 3); len(got) != 0 {
		t.Fatalf("nothing should be applied, got %v", got)
	}
}
