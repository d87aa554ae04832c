package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/recupera/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateAnalysisTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		document_kind TEXT NOT NULL,
		cnpj TEXT,
		period_start TEXT,
		period_end TEXT,
		declared_regime TEXT,
		documents_analyzed INTEGER NOT NULL DEFAULT 0,
		documents_failed INTEGER NOT NULL DEFAULT 0,
		credits_found INTEGER NOT NULL DEFAULT 0,
		total_recoverable REAL NOT NULL DEFAULT 0,
		rule_version TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS recoverable_credits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		period TEXT NOT NULL,
		rule_code TEXT NOT NULL,
		tax_type TEXT NOT NULL,
		original_value REAL NOT NULL,
		recoverable_value REAL NOT NULL,
		legal_basis TEXT,
		confidence TEXT NOT NULL,
		base_revenue REAL NOT NULL DEFAULT 0,
		effective_rate REAL NOT NULL DEFAULT 0,
		repartition_pct REAL NOT NULL DEFAULT 0,
		revenue_share REAL NOT NULL DEFAULT 0,
		estimated_basis BOOLEAN NOT NULL DEFAULT FALSE,
		FOREIGN KEY(analysis_id) REFERENCES analyses(id)
	);

	CREATE TABLE IF NOT EXISTS suppressed_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		rule_code TEXT NOT NULL,
		tax_type TEXT NOT NULL,
		regime TEXT NOT NULL,
		reason TEXT NOT NULL,
		FOREIGN KEY(analysis_id) REFERENCES analyses(id)
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_company_created
		ON analyses(company_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_credits_analysis
		ON recoverable_credits(analysis_id);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

func migrateAnalysisTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='analyses'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'analyses' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'analyses' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'analyses' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'analyses' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(analyses)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'analyses'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'analyses': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'analyses'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'analyses': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'analyses'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'analyses': %v", err)
		}
		return
	}

	if _, ok := columnExists["rule_version"]; !ok {
		_, err := DB.Exec("ALTER TABLE analyses ADD COLUMN rule_version TEXT")
		if err != nil {
			logger.L.Error("Error adding 'rule_version' column to 'analyses' table", "error", err)
		} else {
			logger.L.Info("Added 'rule_version' column to 'analyses' table")
		}
	}
	if _, ok := columnExists["declared_regime"]; !ok {
		_, err := DB.Exec("ALTER TABLE analyses ADD COLUMN declared_regime TEXT")
		if err != nil {
			logger.L.Error("Error adding 'declared_regime' column to 'analyses' table", "error", err)
		} else {
			logger.L.Info("Added 'declared_regime' column to 'analyses' table")
		}
	}
}
