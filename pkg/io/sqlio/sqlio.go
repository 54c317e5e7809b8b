// Package sqlio loads frames into SQL tables through gorm. SQLite and
// PostgreSQL are supported.
package sqlio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// BatchSize is the number of rows per INSERT statement.
const BatchSize = 500

// Open connects to dsn. postgres:// and postgresql:// URLs and key=value
// DSNs containing host= select PostgreSQL; anything else is a SQLite path,
// optionally prefixed with sqlite://.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty database dsn")
	}
	var d gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		d = postgres.Open(dsn)
	default:
		d = sqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
	}
	return gorm.Open(d, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func columnType(dialect string, k ds.Kind) string {
	switch k {
	case ds.KindInt:
		return "BIGINT"
	case ds.KindFloat:
		if dialect == "postgres" {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	case ds.KindBool:
		return "BOOLEAN"
	case ds.KindTime:
		if dialect == "postgres" {
			return "TIMESTAMPTZ"
		}
		return "TEXT"
	}
	return "TEXT"
}

// CreateTable creates table for schema unless it exists. No primary key is
// declared since corrupted data may repeat keys.
func CreateTable(ctx context.Context, db *gorm.DB, table string, s ds.Schema) error {
	if table == "" {
		return errors.New("empty table name")
	}
	dialect := db.Dialector.Name()
	defs := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		def := quoteIdent(cs.Name) + " " + columnType(dialect, cs.Type)
		if !cs.Nullable {
			def += " NOT NULL"
		}
		defs[i] = def
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	return db.WithContext(ctx).Exec(stmt).Error
}

// rows converts f into insertable maps; nulls become nil.
func rows(f *ds.Frame) []map[string]any {
	names := f.Schema().Names()
	out := make([]map[string]any, f.Rows())
	for r := range out {
		m := f.Record(r)
		for _, n := range names {
			if _, ok := m[n]; !ok {
				m[n] = nil
			}
		}
		out[r] = m
	}
	return out
}

// Insert appends the rows of f to table in batches of BatchSize.
func Insert(ctx context.Context, db *gorm.DB, table string, f *ds.Frame) error {
	if f.Rows() == 0 {
		return nil
	}
	if err := db.WithContext(ctx).Table(table).CreateInBatches(rows(f), BatchSize).Error; err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// WriteAll creates table if needed and inserts every row of f.
func WriteAll(ctx context.Context, db *gorm.DB, table string, f *ds.Frame) error {
	if err := CreateTable(ctx, db, table, f.Schema()); err != nil {
		return err
	}
	if err := Insert(ctx, db, table, f); err != nil {
		return err
	}
	log.WithFields(log.Fields{"table": table, "rows": f.Rows(), "dialect": db.Dialector.Name()}).Info("loaded rows into database")
	return nil
}

// Sink is a dataset.ChunkSink inserting each chunk into one table.
type Sink struct {
	ctx     context.Context
	db      *gorm.DB
	table   string
	created bool
	Rows    int
}

func NewSink(ctx context.Context, db *gorm.DB, table string) *Sink {
	return &Sink{ctx: ctx, db: db, table: table}
}

func (s *Sink) Write(f *ds.Frame) error {
	if !s.created {
		if err := CreateTable(s.ctx, s.db, s.table, f.Schema()); err != nil {
			return err
		}
		s.created = true
	}
	if err := Insert(s.ctx, s.db, s.table, f); err != nil {
		return err
	}
	s.Rows += f.Rows()
	return nil
}

func (s *Sink) Close() error { return nil }
