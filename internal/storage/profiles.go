package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kalambet/fincoach/internal/profile"
)

// querier is the subset of *sql.DB and *sql.Tx used by the profile queries.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// GetProfile loads the profile and its expenses. Returns profile.ErrNotFound
// for an unknown id.
func (s *SQLiteStore) GetProfile(id string) (profile.Profile, error) {
	return loadProfile(s.db, id)
}

// PutProfile inserts or replaces a profile together with its expense map.
func (s *SQLiteStore) PutProfile(p profile.Profile) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning put transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveProfile(tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateProfile applies fn to the stored profile inside one transaction.
func (s *SQLiteStore) UpdateProfile(id string, fn func(*profile.Profile) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning update transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := loadProfile(tx, id)
	if err != nil {
		return err
	}
	if err := fn(&p); err != nil {
		return err
	}
	p.ID = id
	if err := saveProfile(tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

// ListProfileIDs returns every stored profile id in ascending order.
func (s *SQLiteStore) ListProfileIDs() ([]string, error) {
	rows, err := s.db.Query("SELECT id FROM profiles ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func loadProfile(q querier, id string) (profile.Profile, error) {
	var (
		p      profile.Profile
		income sql.NullFloat64
		goals  string
	)
	err := q.QueryRow(`
		SELECT id, segment, age, annual_income, risk_tolerance, financial_goals
		FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.Segment, &p.Age, &income, &p.RiskTolerance, &goals)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.Profile{}, profile.ErrNotFound
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("selecting profile: %w", err)
	}
	if income.Valid {
		v := income.Float64
		p.AnnualIncome = &v
	}
	if err := json.Unmarshal([]byte(goals), &p.FinancialGoals); err != nil {
		return profile.Profile{}, fmt.Errorf("parsing financial_goals: %w", err)
	}

	rows, err := q.Query("SELECT category, amount FROM profile_expenses WHERE profile_id = ?", id)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("selecting expenses: %w", err)
	}
	defer rows.Close()

	p.MonthlyExpenses = make(map[string]float64)
	for rows.Next() {
		var (
			category string
			amount   float64
		)
		if err := rows.Scan(&category, &amount); err != nil {
			return profile.Profile{}, err
		}
		p.MonthlyExpenses[category] = amount
	}
	return p, rows.Err()
}

func saveProfile(q querier, p profile.Profile) error {
	goals := p.FinancialGoals
	if goals == nil {
		goals = []string{}
	}
	goalsJSON, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("marshalling financial_goals: %w", err)
	}

	var income sql.NullFloat64
	if p.AnnualIncome != nil {
		income = sql.NullFloat64{Float64: *p.AnnualIncome, Valid: true}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = q.Exec(`
		INSERT INTO profiles (id, segment, age, annual_income, risk_tolerance, financial_goals, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			segment = excluded.segment,
			age = excluded.age,
			annual_income = excluded.annual_income,
			risk_tolerance = excluded.risk_tolerance,
			financial_goals = excluded.financial_goals,
			updated_at = excluded.updated_at`,
		p.ID, string(p.Segment), p.Age, income, string(p.RiskTolerance), string(goalsJSON), now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}

	if _, err := q.Exec("DELETE FROM profile_expenses WHERE profile_id = ?", p.ID); err != nil {
		return fmt.Errorf("clearing expenses: %w", err)
	}
	for category, amount := range p.MonthlyExpenses {
		if _, err := q.Exec(
			"INSERT INTO profile_expenses (profile_id, category, amount) VALUES (?, ?, ?)",
			p.ID, category, amount,
		); err != nil {
			return fmt.Errorf("inserting expense %q: %w", category, err)
		}
	}
	return nil
}
