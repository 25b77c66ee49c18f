// Package trace records evaluated control cycles in a sqlite database so
// that a run can be inspected after the fact.
package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"example.com/fuzzy-control/core/fuzzy"
)

const schema = `CREATE TABLE IF NOT EXISTS cycles (
	vehicle_id  TEXT    NOT NULL,
	seq         INTEGER NOT NULL,
	inputs_json TEXT    NOT NULL,
	output_json TEXT    NOT NULL,
	created_at  TEXT    NOT NULL,
	PRIMARY KEY (vehicle_id, seq)
)`

type Recorder struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is one recorded cycle.
type Entry struct {
	Vehicle   uuid.UUID
	Seq       uint64
	Inputs    map[string]float64
	Outputs   []Output
	CreatedAt time.Time
}

type Output struct {
	Axis    string             `json:"axis"`
	Value   float64            `json:"value"`
	Firings []float64          `json:"firings"`
	Merged  map[string]float64 `json:"merged"`
}

// Open opens or creates the trace database at path. Use ":memory:" for a
// throwaway database.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open trace database: %w", err)
	}
	// A single connection keeps ":memory:" databases intact and serializes
	// writers from concurrent vehicles.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create trace schema: %w", err)
	}
	return &Recorder{db: db, now: time.Now}, nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

func (r *Recorder) Record(ctx context.Context, vehicle uuid.UUID, seq uint64, c *fuzzy.Cycle) error {
	inputs, err := json.Marshal(valueMap(c.Inputs))
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	outs := make([]Output, len(c.Outputs))
	for i := range c.Outputs {
		o := &c.Outputs[i]
		outs[i] = Output{
			Axis:    o.Axis,
			Value:   o.Value,
			Firings: make([]float64, len(o.Firings)),
			Merged:  valueMap(o.Merged),
		}
		for j, f := range o.Firings {
			outs[i].Firings[j] = f.Degree
		}
	}
	outputs, err := json.Marshal(outs)
	if err != nil {
		return fmt.Errorf("encode outputs: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO cycles (vehicle_id, seq, inputs_json, output_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		vehicle.String(),
		int64(seq),
		string(inputs),
		string(outputs),
		r.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	return nil
}

// Last returns up to n of the most recent cycles of vehicle, newest first.
func (r *Recorder) Last(ctx context.Context, vehicle uuid.UUID, n int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, inputs_json, output_json, created_at FROM cycles
		 WHERE vehicle_id = ? ORDER BY seq DESC LIMIT ?`,
		vehicle.String(), n)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var es []Entry
	for rows.Next() {
		var (
			seq                int64
			inputs, outputs, t string
		)
		if err := rows.Scan(&seq, &inputs, &outputs, &t); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		e := Entry{Vehicle: vehicle, Seq: uint64(seq)}
		if err := json.Unmarshal([]byte(inputs), &e.Inputs); err != nil {
			return nil, fmt.Errorf("decode inputs: %w", err)
		}
		if err := json.Unmarshal([]byte(outputs), &e.Outputs); err != nil {
			return nil, fmt.Errorf("decode outputs: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil, fmt.Errorf("decode timestamp: %w", err)
		}
		es = append(es, e)
	}
	return es, rows.Err()
}

func valueMap(vs *fuzzy.ValueSet) map[string]float64 {
	m := make(map[string]float64)
	if vs == nil {
		return m
	}
	for _, c := range vs.Categories() {
		m[c.String()] = vs.Degree(c)
	}
	return m
}
