package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"inventorycore/pkg/domain"
)

type stubDriver struct {
	conn *stubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

type stubConn struct {
	execs      []string
	buckets    map[string][]byte
	failPing   bool
	failExec   bool
	failCommit bool
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{buckets: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) Ping(_ context.Context) error {
	if c.failPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

func (c *stubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	return &stubTx{conn: c}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, fmt.Errorf("exec fail")
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE") {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected bucket and payload, got %d args", len(args))
		}
		bucket, ok := args[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("bucket arg is %T", args[0].Value)
		}
		payload, ok := args[1].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("payload arg is %T", args[1].Value)
		}
		c.buckets[bucket] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(strings.ToUpper(query), "FROM STATE") {
		return nil, fmt.Errorf("cannot answer query: %s", query)
	}
	rows := make([][]driver.Value, 0, len(c.buckets))
	for _, bucket := range []string{"equipment", "accessories", "cartridges"} {
		if payload, ok := c.buckets[bucket]; ok {
			rows = append(rows, []driver.Value{bucket, payload})
		}
	}
	return &stubRows{cols: []string{"bucket", "payload"}, rows: rows}, nil
}

type stubTx struct {
	conn *stubConn
}

func (t *stubTx) Commit() error {
	if t.conn.failCommit {
		return fmt.Errorf("commit fail")
	}
	return nil
}
func (t *stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}

func TestNewStoreEnsuresTableAndHydrates(t *testing.T) {
	db, conn := newStubDB()
	seed, err := json.Marshal([]domain.Equipment{{
		RegistrationID: "#E100001",
		Type:           domain.TypeNotebook,
		SerialNumber:   "SN-1",
		Status:         domain.StatusActive,
	}})
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	conn.buckets["equipment"] = seed

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("state table DDL not applied, execs: %v", conn.execs)
	}
	e, ok := store.GetEquipment("#E100001")
	if !ok || e.SerialNumber != "SN-1" {
		t.Fatalf("snapshot not hydrated: %+v", e)
	}
	if store.Dirty() {
		t.Fatal("hydration must not mark the store dirty")
	}
}

func TestRunInTransactionSnapshotsState(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateEquipment(domain.Equipment{Type: domain.TypeNotebook, SerialNumber: "SN-1", Status: domain.StatusAvailable})
		return err
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	var stored []domain.Equipment
	if err := json.Unmarshal(conn.buckets["equipment"], &stored); err != nil {
		t.Fatalf("decode persisted bucket: %v", err)
	}
	if len(stored) != 1 || stored[0].SerialNumber != "SN-1" {
		t.Fatalf("snapshot not persisted: %+v", stored)
	}
	if store.Dirty() {
		t.Fatal("successful snapshot must clear the dirty flag")
	}
}

func TestRunInTransactionSurfacesPersistFailure(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failExec = true

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateEquipment(domain.Equipment{Type: domain.TypeNotebook, SerialNumber: "SN-1", Status: domain.StatusAvailable})
		return err
	})
	var perr domain.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !store.Dirty() {
		t.Fatal("failed snapshot must leave the dirty flag set")
	}
}

func TestNewStoreFailsWhenUnreachable(t *testing.T) {
	db, conn := newStubDB()
	conn.failPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	if _, err := NewStore("", nil); err == nil {
		t.Fatal("expected ping failure")
	}
}
