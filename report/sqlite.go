package report

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	// registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/tracking"
)

func init() {
	RegisterSink("sqlite", resource.Registration[Sink, *SQLiteConfig]{
		Constructor: func(ctx context.Context, conf resource.Config, logger logging.Logger) (Sink, error) {
			native, err := resource.NativeConfig[*SQLiteConfig](conf)
			if err != nil {
				return nil, err
			}
			return NewSQLiteSink(ctx, native, logger)
		},
	})
}

// SQLiteConfig configures the sqlite sink.
type SQLiteConfig struct {
	Path    string `json:"path"`
	Session string `json:"session"`
}

// Validate ensures all parts of the config are valid.
func (cfg *SQLiteConfig) Validate(path string) error {
	if cfg.Path == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "path")
	}
	return nil
}

const readingsSchema = `
	CREATE TABLE IF NOT EXISTS readings (
		reading_id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		frame INTEGER NOT NULL,
		captured_at INTEGER NOT NULL,
		device_index INTEGER NOT NULL,
		class TEXT NOT NULL,
		x DOUBLE, y DOUBLE, z DOUBLE,
		qx DOUBLE, qy DOUBLE, qz DOUBLE, qw DOUBLE
	);
	CREATE INDEX IF NOT EXISTS readings_session_frame ON readings (session, frame);
`

// SQLiteSink inserts readings into the readings table of a sqlite database. captured_at is
// stored as Unix nanoseconds.
type SQLiteSink struct {
	db      *sql.DB
	insert  *sql.Stmt
	session string
}

// NewSQLiteSink opens or creates the database at cfg.Path.
func NewSQLiteSink(ctx context.Context, cfg *SQLiteConfig, logger logging.Logger) (*SQLiteSink, error) {
	if err := cfg.Validate("sqlite"); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, errors.Wrapf(multiCloseErr(err, db), "failed to apply %q", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, readingsSchema); err != nil {
		return nil, errors.Wrap(multiCloseErr(err, db), "failed to create readings table")
	}
	insert, err := db.PrepareContext(ctx, `
		INSERT INTO readings (session, frame, captured_at, device_index, class, x, y, z, qx, qy, qz, qw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, multiCloseErr(err, db)
	}

	session := cfg.Session
	if session == "" {
		session = uuid.NewString()
	}
	logger.Infow("storing readings", "path", cfg.Path, "session", session)
	return &SQLiteSink{db: db, insert: insert, session: session}, nil
}

// Session returns the session readings are stored under.
func (s *SQLiteSink) Session() string {
	return s.session
}

// DB returns the underlying database.
func (s *SQLiteSink) DB() *sql.DB {
	return s.db
}

// Report inserts the reading.
func (s *SQLiteSink) Report(ctx context.Context, reading tracking.DeviceReading) error {
	p, q := reading.Position, reading.Orientation
	_, err := s.insert.ExecContext(ctx,
		s.session, int64(reading.Frame), reading.CapturedAt.UnixNano(), reading.Index, reading.Class.String(),
		p.X, p.Y, p.Z, q.Imag, q.Jmag, q.Kmag, q.Real)
	return err
}

// Close closes the database.
func (s *SQLiteSink) Close(ctx context.Context) error {
	return multiCloseErr(s.insert.Close(), s.db)
}
