// Package datarecording stores structured records of a run in a SQL database.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// Need to use MySQL connections.
	_ "github.com/go-sql-driver/mysql"
	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// mysqlPrefix selects the MySQL backend in Open.
const mysqlPrefix = "mysql://"

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the exported fields
	// of sampleEntry.
	CreateTable(tableName string, sampleEntry any) error

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any) error

	// ListTables returns a slice containing names of all tables
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush() error

	// Close flushes and closes the database.
	Close() error
}

// Open creates a DataRecorder for target. A target starting with "mysql://"
// is a MySQL DSN; anything else is the path of a SQLite file without the
// ".sqlite3" extension. An empty target gets a unique SQLite file name.
func Open(target string) (DataRecorder, error) {
	driver, dsn := splitTarget(target)
	if driver == "sqlite3" {
		return New(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}

	return NewWithDB(db), nil
}

func splitTarget(target string) (driver, dsn string) {
	if strings.HasPrefix(target, mysqlPrefix) {
		return "mysql", strings.TrimPrefix(target, mysqlPrefix)
	}

	return "sqlite3", target
}

// New creates a DataRecorder that writes into a new SQLite file.
func New(path string) (DataRecorder, error) {
	if path == "" {
		path = "vmmgr_trace_" + xid.New().String()
	}

	filename := path + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	return NewWithDB(db), nil
}

// NewWithDB creates a new DataRecorder with a given database. Buffered
// entries are flushed when the program exits through atexit.
func NewWithDB(db *sql.DB) DataRecorder {
	w := &sqlWriter{
		DB:        db,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { _ = w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqlWriter is the writer that writes data into a SQL database
type sqlWriter struct {
	*sql.DB

	tables     map[string]*table
	tableNames []string
	batchSize  int
	entryCount int
	closed     bool
}

func columnType(kind reflect.Kind) (string, bool) {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64:
		return "BIGINT", true
	case reflect.Float32, reflect.Float64:
		return "DOUBLE", true
	case reflect.String:
		return "TEXT", true
	default:
		return "", false
	}
}

func (t *sqlWriter) columns(entry any) ([]string, error) {
	types := reflect.TypeOf(entry)
	if types.Kind() != reflect.Struct {
		return nil, errors.New("entry is not a struct")
	}

	names := structs.Names(entry)
	columns := make([]string, 0, len(names))

	for i := 0; i < types.NumField(); i++ {
		field := types.Field(i)
		if !field.IsExported() {
			return nil, fmt.Errorf("field %s is not exported", field.Name)
		}

		sqlType, ok := columnType(field.Type.Kind())
		if !ok {
			return nil, fmt.Errorf("field %s of kind %s is invalid",
				field.Name, field.Type.Kind())
		}

		columns = append(columns, names[i]+" "+sqlType)
	}

	return columns, nil
}

func (t *sqlWriter) CreateTable(tableName string, sampleEntry any) error {
	if _, exists := t.tables[tableName]; exists {
		return fmt.Errorf("table %s already exists", tableName)
	}

	columns, err := t.columns(sampleEntry)
	if err != nil {
		return err
	}

	createTableSQL := `CREATE TABLE IF NOT EXISTS ` + tableName +
		` (` + "\n\t" + strings.Join(columns, ", \n\t") + "\n" + `);`

	if _, err := t.Exec(createTableSQL); err != nil {
		return fmt.Errorf("creating table %s: %w", tableName, err)
	}

	t.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
		entries:    []any{},
	}
	t.tableNames = append(t.tableNames, tableName)

	return nil
}

func (t *sqlWriter) InsertData(tableName string, entry any) error {
	table, exists := t.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != table.structType {
		panic(fmt.Sprintf("entry of type %T does not fit table %s",
			entry, tableName))
	}

	table.entries = append(table.entries, entry)

	t.entryCount++
	if t.entryCount >= t.batchSize {
		return t.Flush()
	}

	return nil
}

func (t *sqlWriter) ListTables() []string {
	tables := make([]string, len(t.tableNames))
	copy(tables, t.tableNames)

	return tables
}

func (t *sqlWriter) Flush() error {
	if t.entryCount == 0 || t.closed {
		return nil
	}

	tx, err := t.Begin()
	if err != nil {
		return err
	}

	for _, tableName := range t.tableNames {
		table := t.tables[tableName]
		if len(table.entries) == 0 {
			continue
		}

		if err := t.flushTable(tx, tableName, table); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	t.entryCount = 0

	return nil
}

func (t *sqlWriter) flushTable(tx *sql.Tx, tableName string, table *table) error {
	stmt, err := tx.Prepare(t.insertStatement(tableName, table.entries[0]))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range table.entries {
		v := []any{}

		values := reflect.ValueOf(entry)
		for i := 0; i < values.NumField(); i++ {
			v = append(v, values.Field(i).Interface())
		}

		if _, err := stmt.Exec(v...); err != nil {
			return fmt.Errorf("inserting into %s: %w", tableName, err)
		}
	}

	table.entries = nil

	return nil
}

func (t *sqlWriter) insertStatement(tableName string, entry any) string {
	n := structs.Names(entry)
	for i := 0; i < len(n); i++ {
		n[i] = "?"
	}

	return "INSERT INTO " + tableName + " VALUES (" + strings.Join(n, ", ") + ")"
}

func (t *sqlWriter) Close() error {
	if t.closed {
		return nil
	}

	err := t.Flush()
	t.closed = true

	return errors.Join(err, t.DB.Close())
}
