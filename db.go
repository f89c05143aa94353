package kvtree

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"go.etcd.io/bbolt"
)

const DefaultBucket = "kvtree"

// DB is the store handle every container is bound to. All records live in a
// single bucket.
type DB struct {
	stor    storage
	bdb     *bbolt.DB
	bucket  string
	logger  *slog.Logger
	verbose bool

	metrics      *metrics.Set
	readCount    *metrics.Counter
	batchCount   *metrics.Counter
	putCount     *metrics.Counter
	deleteCount  *metrics.Counter
	scanCount    *metrics.Counter
	failureCount *metrics.Counter
}

type Options struct {
	Logger    *slog.Logger
	Verbose   bool
	IsTesting bool
	MmapSize  int
	Bucket    string
	Timeout   time.Duration
}

// Open opens (creating if necessary) a Bolt database file.
func Open(path string, opt Options) (*DB, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.Timeout != 0 {
		bopt.Timeout = opt.Timeout
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 64
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("kvtree: %w", err)
	}
	db, err := newDB(newBoltStorage(bdb), opt)
	if err != nil {
		bdb.Close()
		return nil, err
	}
	db.bdb = bdb
	return db, nil
}

// OpenMem returns a DB backed by transient in-memory storage.
func OpenMem(opt Options) (*DB, error) {
	return newDB(newMemStorage(), opt)
}

func newDB(stor storage, opt Options) (*DB, error) {
	db := &DB{
		stor:    stor,
		bucket:  opt.Bucket,
		logger:  opt.Logger,
		verbose: opt.Verbose,
	}
	if db.bucket == "" {
		db.bucket = DefaultBucket
	}
	if db.logger == nil {
		db.logger = slog.Default()
	}

	db.metrics = metrics.NewSet()
	db.readCount = db.metrics.NewCounter(db.metricName("kvtree_reads_total"))
	db.batchCount = db.metrics.NewCounter(db.metricName("kvtree_batches_total"))
	db.putCount = db.metrics.NewCounter(db.metricName("kvtree_puts_total"))
	db.deleteCount = db.metrics.NewCounter(db.metricName("kvtree_deletes_total"))
	db.scanCount = db.metrics.NewCounter(db.metricName("kvtree_scans_total"))
	db.failureCount = db.metrics.NewCounter(db.metricName("kvtree_failed_batches_total"))

	stx, err := stor.BeginTx(true)
	if err != nil {
		return nil, fmt.Errorf("kvtree: %w", err)
	}
	defer stx.Rollback()
	if _, err := stx.CreateBucket(db.bucket); err != nil {
		return nil, fmt.Errorf("kvtree: creating bucket %q: %w", db.bucket, err)
	}
	if err := stx.Commit(); err != nil {
		return nil, fmt.Errorf("kvtree: %w", err)
	}
	return db, nil
}

func (db *DB) metricName(name string) string {
	return fmt.Sprintf("%s{bucket=%q}", name, db.bucket)
}

// Bolt returns the underlying Bolt database, or nil for in-memory storage.
func (db *DB) Bolt() *bbolt.DB {
	return db.bdb
}

func (db *DB) Bucket() string {
	return db.bucket
}

func (db *DB) Close() error {
	err := db.stor.Close()
	if err != nil {
		return fmt.Errorf("kvtree: closing: %w", err)
	}
	return nil
}

// WriteMetrics writes the operation counters in Prometheus text format.
func (db *DB) WriteMetrics(w io.Writer) {
	db.metrics.WritePrometheus(w)
}
