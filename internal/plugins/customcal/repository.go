// Package customcal — repository.go persists definitions in MariaDB. Months
// and weekdays live in child tables that are replaced on every write.
package customcal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/keyxmakerx/almanac/internal/calendar"
)

// DefinitionRepository persists definitions. Lookups return (nil, nil) when
// nothing matches.
type DefinitionRepository interface {
	Create(ctx context.Context, def *Definition) error
	GetBySlug(ctx context.Context, slug string) (*Definition, error)
	List(ctx context.Context) ([]Definition, error)
	Update(ctx context.Context, def *Definition) error
	Delete(ctx context.Context, id string) error
}

// definitionRepo is the MariaDB implementation of DefinitionRepository.
type definitionRepo struct {
	db *sql.DB
}

// NewDefinitionRepository creates a MariaDB-backed repository.
func NewDefinitionRepository(db *sql.DB) DefinitionRepository {
	return &definitionRepo{db: db}
}

const definitionCols = `id, slug, name, description, epoch_year, epoch_date, epoch_weekday,
        starting_weekday, min_year, max_year, leap_year_every, leap_year_offset,
        created_at, updated_at`

func scanDefinition(scanner interface{ Scan(...any) error }) (*Definition, error) {
	d := &Definition{}
	var epoch time.Time
	err := scanner.Scan(&d.ID, &d.Slug, &d.Name, &d.Description, &d.EpochYear, &epoch,
		&d.EpochWeekday, &d.StartingWeekday, &d.MinYear, &d.MaxYear,
		&d.LeapYearEvery, &d.LeapYearOffset, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d.EpochDate = epoch.Format(epochLayout)
	return d, nil
}

// Create inserts the definition with its months and weekdays in one
// transaction. The caller sets CreatedAt and UpdatedAt.
func (r *definitionRepo) Create(ctx context.Context, def *Definition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO calendar_definitions (id, slug, name, description, epoch_year, epoch_date,
		        epoch_weekday, starting_weekday, min_year, max_year, leap_year_every, leap_year_offset,
		        created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ID, def.Slug, def.Name, def.Description, def.EpochYear, def.EpochDate,
		def.EpochWeekday, def.StartingWeekday, def.MinYear, def.MaxYear,
		def.LeapYearEvery, def.LeapYearOffset, def.CreatedAt, def.UpdatedAt,
	); err != nil {
		return fmt.Errorf("inserting definition: %w", err)
	}
	if err := replaceChildren(ctx, tx, def); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the definition row, including UpdatedAt, and replaces all
// months and weekdays.
func (r *definitionRepo) Update(ctx context.Context, def *Definition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE calendar_definitions SET name = ?, description = ?, epoch_year = ?, epoch_date = ?,
		        epoch_weekday = ?, starting_weekday = ?, min_year = ?, max_year = ?,
		        leap_year_every = ?, leap_year_offset = ?, updated_at = ?
		 WHERE id = ?`,
		def.Name, def.Description, def.EpochYear, def.EpochDate,
		def.EpochWeekday, def.StartingWeekday, def.MinYear, def.MaxYear,
		def.LeapYearEvery, def.LeapYearOffset, def.UpdatedAt, def.ID,
	); err != nil {
		return fmt.Errorf("updating definition: %w", err)
	}
	if err := replaceChildren(ctx, tx, def); err != nil {
		return err
	}
	return tx.Commit()
}

// replaceChildren deletes and re-inserts the months and weekdays of def.
func replaceChildren(ctx context.Context, tx *sql.Tx, def *Definition) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_definition_months WHERE definition_id = ?`, def.ID); err != nil {
		return fmt.Errorf("clearing months: %w", err)
	}
	for i, m := range def.Months {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO calendar_definition_months (definition_id, name, days, leap_year_days, is_intercalary, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			def.ID, m.Name, m.Days, m.LeapYearDays, m.IsIntercalary, i,
		); err != nil {
			return fmt.Errorf("inserting month %q: %w", m.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_definition_weekdays WHERE definition_id = ?`, def.ID); err != nil {
		return fmt.Errorf("clearing weekdays: %w", err)
	}
	for i, w := range def.Weekdays {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO calendar_definition_weekdays (definition_id, short_name, full_name, sort_order)
			 VALUES (?, ?, ?, ?)`,
			def.ID, w.Short, w.Full, i,
		); err != nil {
			return fmt.Errorf("inserting weekday %q: %w", w.Full, err)
		}
	}
	return nil
}

// GetBySlug returns a definition with its months and weekdays.
func (r *definitionRepo) GetBySlug(ctx context.Context, slug string) (*Definition, error) {
	def, err := scanDefinition(r.db.QueryRowContext(ctx,
		`SELECT `+definitionCols+` FROM calendar_definitions WHERE slug = ?`, slug))
	if err != nil || def == nil {
		return nil, err
	}
	if err := r.eagerLoad(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// List returns every definition ordered by slug.
func (r *definitionRepo) List(ctx context.Context) ([]Definition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+definitionCols+` FROM calendar_definitions ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range defs {
		if err := r.eagerLoad(ctx, &defs[i]); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// Delete removes a definition. Months and weekdays cascade.
func (r *definitionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM calendar_definitions WHERE id = ?`, id)
	return err
}

func (r *definitionRepo) eagerLoad(ctx context.Context, def *Definition) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, days, leap_year_days, is_intercalary
		 FROM calendar_definition_months WHERE definition_id = ? ORDER BY sort_order`, def.ID)
	if err != nil {
		return fmt.Errorf("loading months: %w", err)
	}
	defer rows.Close()
	def.Months = nil
	for rows.Next() {
		var m calendar.CustomMonth
		if err := rows.Scan(&m.Name, &m.Days, &m.LeapYearDays, &m.IsIntercalary); err != nil {
			return err
		}
		def.Months = append(def.Months, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	wrows, err := r.db.QueryContext(ctx,
		`SELECT short_name, full_name
		 FROM calendar_definition_weekdays WHERE definition_id = ? ORDER BY sort_order`, def.ID)
	if err != nil {
		return fmt.Errorf("loading weekdays: %w", err)
	}
	defer wrows.Close()
	def.Weekdays = nil
	for wrows.Next() {
		var w calendar.WeekdayName
		if err := wrows.Scan(&w.Short, &w.Full); err != nil {
			return err
		}
		def.Weekdays = append(def.Weekdays, w)
	}
	return wrows.Err()
}
