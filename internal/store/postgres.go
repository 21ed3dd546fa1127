package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vrptw/internal/model"
)

// Postgres persists instances and solutions. Customer lists and route
// sets are stored as JSONB; queries never need to address single rows of
// either, so there is no per-customer table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// MigrateDir applies every .sql file in dir in lexical order.
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, f := range files {
		sqlText, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return fmt.Errorf("migrate %s: %w", f, err)
		}
		if _, err := p.db.Exec(string(sqlText)); err != nil {
			return fmt.Errorf("migrate %s: %w", f, err)
		}
	}
	return nil
}

func (p *Postgres) CreateInstance(ctx context.Context, inst model.Instance) (string, error) {
	if inst.ID == "" {
		inst.ID = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO instances (id, problem_id, vehicles, capacity, customers) VALUES ($1,$2,$3,$4,$5)`,
		inst.ID, inst.Problem.ID, inst.Problem.Vehicles, inst.Problem.Capacity, toJSON(inst.Customers))
	if err != nil {
		return "", err
	}
	return inst.ID, nil
}

func (p *Postgres) GetInstance(ctx context.Context, id string) (model.Instance, error) {
	var inst model.Instance
	var customers []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT id::text, problem_id, vehicles, capacity, customers, to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSZ') FROM instances WHERE id=$1`, id).
		Scan(&inst.ID, &inst.Problem.ID, &inst.Problem.Vehicles, &inst.Problem.Capacity, &customers, &inst.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Instance{}, ErrNotFound
	}
	if err != nil {
		return model.Instance{}, err
	}
	if err := json.Unmarshal(customers, &inst.Customers); err != nil {
		return model.Instance{}, fmt.Errorf("instance %s: decode customers: %w", id, err)
	}
	return inst, nil
}

func (p *Postgres) ListInstances(ctx context.Context, cursor string, limit int) ([]model.Instance, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, problem_id, vehicles, capacity, customers, to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		 FROM instances WHERE ($1 = '' OR id::text > $1) ORDER BY id LIMIT $2`, cursor, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.Instance{}
	var next string
	for rows.Next() {
		var inst model.Instance
		var customers []byte
		if err := rows.Scan(&inst.ID, &inst.Problem.ID, &inst.Problem.Vehicles, &inst.Problem.Capacity, &customers, &inst.CreatedAt); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(customers, &inst.Customers); err != nil {
			return nil, "", err
		}
		out = append(out, inst)
		next = inst.ID
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

func (p *Postgres) CreateSolution(ctx context.Context, sol model.SolutionOut) (string, error) {
	if sol.ID == "" {
		sol.ID = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO solutions (id, instance_id, algorithm, routes, unrouted, distance, duration, vehicles)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		sol.ID, sol.InstanceID, sol.Algorithm, toJSON(sol.Routes), toJSON(sol.Unrouted), sol.Distance, sol.Duration, sol.Vehicles)
	if err != nil {
		return "", err
	}
	return sol.ID, nil
}

func (p *Postgres) GetSolution(ctx context.Context, id string) (model.SolutionOut, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id::text, instance_id::text, algorithm, routes, unrouted, distance, duration, vehicles,
		        to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		 FROM solutions WHERE id=$1`, id)
	sol, err := scanSolution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolutionOut{}, ErrNotFound
	}
	return sol, err
}

func (p *Postgres) ListSolutions(ctx context.Context, instanceID, cursor string, limit int) ([]model.SolutionOut, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, instance_id::text, algorithm, routes, unrouted, distance, duration, vehicles,
		        to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		 FROM solutions
		 WHERE ($1 = '' OR instance_id::text = $1) AND ($2 = '' OR id::text > $2)
		 ORDER BY id LIMIT $3`, instanceID, cursor, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.SolutionOut{}
	var next string
	for rows.Next() {
		sol, err := scanSolution(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, sol)
		next = sol.ID
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

func (p *Postgres) BestSolution(ctx context.Context, instanceID string) (model.SolutionOut, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id::text, instance_id::text, algorithm, routes, unrouted, distance, duration, vehicles,
		        to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		 FROM solutions WHERE instance_id::text=$1 ORDER BY distance ASC LIMIT 1`, instanceID)
	sol, err := scanSolution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolutionOut{}, ErrNotFound
	}
	return sol, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSolution(r rowScanner) (model.SolutionOut, error) {
	var sol model.SolutionOut
	var routes, unrouted []byte
	err := r.Scan(&sol.ID, &sol.InstanceID, &sol.Algorithm, &routes, &unrouted,
		&sol.Distance, &sol.Duration, &sol.Vehicles, &sol.CreatedAt)
	if err != nil {
		return sol, err
	}
	if err := json.Unmarshal(routes, &sol.Routes); err != nil {
		return sol, fmt.Errorf("solution %s: decode routes: %w", sol.ID, err)
	}
	if len(unrouted) > 0 {
		if err := json.Unmarshal(unrouted, &sol.Unrouted); err != nil {
			return sol, fmt.Errorf("solution %s: decode unrouted: %w", sol.ID, err)
		}
	}
	return sol, nil
}

func toJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
