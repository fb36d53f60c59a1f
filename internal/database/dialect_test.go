package database

import "testing"

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT 1",
			want:  "SELECT 1",
		},
		{
			name:  "single placeholder",
			query: "SELECT * FROM users WHERE id = ?",
			want:  "SELECT * FROM users WHERE id = $1",
		},
		{
			name:  "multiple placeholders numbered in order",
			query: "INSERT INTO users (username, email) VALUES (?, ?)",
			want:  "INSERT INTO users (username, email) VALUES ($1, $2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewritePlaceholdersToNumbered(tt.query); got != tt.want {
				t.Errorf("rewritePlaceholdersToNumbered() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialectDriverNames(t *testing.T) {
	if got := NewSQLiteDialect().DriverName(); got != "sqlite3" {
		t.Errorf("sqlite driver = %q", got)
	}
	if got := NewPostgresDialect().DriverName(); got != "postgres" {
		t.Errorf("postgres driver = %q", got)
	}
	if got := NewMySQLDialect().DriverName(); got != "mysql" {
		t.Errorf("mysql driver = %q", got)
	}
}

func TestSQLiteLeavesPlaceholdersUntouched(t *testing.T) {
	d := NewSQLiteDialect()
	query := "SELECT * FROM users WHERE id = ?"
	if got := d.RewriteQuery(query); got != query {
		t.Errorf("RewriteQuery changed query: %q", got)
	}
	if !d.SupportsLastInsertId() {
		t.Error("sqlite should support LastInsertId")
	}
}
