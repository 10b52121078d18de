package casefile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arrearly/arrearly/pkg/dependent"
	"github.com/arrearly/arrearly/pkg/money"
	"github.com/arrearly/arrearly/pkg/payment"
	log "github.com/sirupsen/logrus"
)

const dbDateFormat = "2006-01-02"

// Repo persists enforcement case files. Monetary columns hold exact decimal
// strings; they are never stored or read through binary floating point.
type Repo interface {
	Store(ctx context.Context, c Case) (int, error)
	GetByUid(ctx context.Context, uid string) (Case, error)
	GetAll(ctx context.Context) ([]Case, error)
	Update(ctx context.Context, c Case) (bool, error)
	Delete(ctx context.Context, uid string) (bool, error)
	AddPayments(ctx context.Context, caseId int, payments []payment.PaymentMade) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Store(ctx context.Context, c Case) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return 0, err
	}
	defer tx.Rollback()

	// RETURNING works on both backends; LastInsertId does not exist on pgx.
	query := `INSERT INTO case_file (
                    uid,
                    obligor,
                    obligee,
                    support_amount,
                    medical_amount,
                    dental_amount,
                    start_date,
                    not_before_court
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id`
	var caseId int
	err = tx.QueryRowContext(ctx, query,
		c.Uid,
		c.Obligor,
		c.Obligee,
		c.Terms.SupportAmount.String(),
		c.Terms.MedicalAmount.String(),
		c.Terms.DentalAmount.String(),
		c.Terms.StartDate.Format(dbDateFormat),
		c.Terms.NotBeforeCourt,
	).Scan(&caseId)
	if err != nil {
		err := fmt.Errorf("could not insert case: %w", err)
		log.Error(err)
		return 0, err
	}

	if err := insertDependents(ctx, tx, caseId, c.Dependents); err != nil {
		log.Error(err)
		return 0, err
	}
	if err := insertPayments(ctx, tx, caseId, c.Payments); err != nil {
		log.Error(err)
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return 0, err
	}
	return caseId, nil
}

func (r *RepoImpl) GetByUid(ctx context.Context, uid string) (Case, error) {
	query := `SELECT id, uid, obligor, obligee, support_amount, medical_amount, dental_amount, start_date, not_before_court
				FROM case_file WHERE uid = $1`
	row := r.db.QueryRowContext(ctx, query, uid)

	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Case{}, ErrCaseNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan case: %w", err)
		log.Error(err)
		return Case{}, err
	}

	if c.Dependents, err = r.dependents(ctx, c.Id); err != nil {
		log.Error(err)
		return Case{}, err
	}
	if c.Payments, err = r.payments(ctx, c.Id); err != nil {
		log.Error(err)
		return Case{}, err
	}
	return c, nil
}

func (r *RepoImpl) GetAll(ctx context.Context) ([]Case, error) {
	query := `SELECT id, uid, obligor, obligee, support_amount, medical_amount, dental_amount, start_date, not_before_court
				FROM case_file ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query cases: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			err := fmt.Errorf("could not scan case: %w", err)
			log.Error(err)
			return nil, err
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	for i := range cases {
		if cases[i].Dependents, err = r.dependents(ctx, cases[i].Id); err != nil {
			log.Error(err)
			return nil, err
		}
		if cases[i].Payments, err = r.payments(ctx, cases[i].Id); err != nil {
			log.Error(err)
			return nil, err
		}
	}
	return cases, nil
}

func (r *RepoImpl) Update(ctx context.Context, c Case) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE case_file SET
                  obligor = $1,
                  obligee = $2,
                  support_amount = $3,
                  medical_amount = $4,
                  dental_amount = $5,
                  start_date = $6,
                  not_before_court = $7
              WHERE uid = $8`
	result, err := tx.ExecContext(ctx, query,
		c.Obligor,
		c.Obligee,
		c.Terms.SupportAmount.String(),
		c.Terms.MedicalAmount.String(),
		c.Terms.DentalAmount.String(),
		c.Terms.StartDate.Format(dbDateFormat),
		c.Terms.NotBeforeCourt,
		c.Uid,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	if rowsAffected != 1 {
		return false, nil
	}

	// Dependents are replaced wholesale; the list is short and the history
	// lives in the order, not in these rows.
	if _, err := tx.ExecContext(ctx, "DELETE FROM case_dependent WHERE case_id = $1", c.Id); err != nil {
		err := fmt.Errorf("could not delete dependents: %w", err)
		log.Error(err)
		return false, err
	}
	if err := insertDependents(ctx, tx, c.Id, c.Dependents); err != nil {
		log.Error(err)
		return false, err
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return false, err
	}
	return true, nil
}

func (r *RepoImpl) Delete(ctx context.Context, uid string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM case_file WHERE uid = $1", uid)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) AddPayments(ctx context.Context, caseId int, payments []payment.PaymentMade) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return err
	}
	defer tx.Rollback()

	if err := insertPayments(ctx, tx, caseId, payments); err != nil {
		log.Error(err)
		return err
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func insertDependents(ctx context.Context, tx *sql.Tx, caseId int, dependents []dependent.Dependent) error {
	for _, d := range dependents {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO case_dependent (case_id, name, dob) VALUES ($1, $2, $3)",
			caseId, d.Name, d.DOB.Format(dbDateFormat))
		if err != nil {
			return fmt.Errorf("could not insert dependent: %w", err)
		}
	}
	return nil
}

func insertPayments(ctx context.Context, tx *sql.Tx, caseId int, payments []payment.PaymentMade) error {
	for _, p := range payments {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO case_payment (case_id, paid_on, amount, source) VALUES ($1, $2, $3, $4)",
			caseId, p.Date.Format(dbDateFormat), p.Amount.String(), p.Source)
		if err != nil {
			return fmt.Errorf("could not insert payment: %w", err)
		}
	}
	return nil
}

func (r *RepoImpl) dependents(ctx context.Context, caseId int) ([]dependent.Dependent, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, dob FROM case_dependent WHERE case_id = $1 ORDER BY dob, id", caseId)
	if err != nil {
		return nil, fmt.Errorf("could not query dependents: %w", err)
	}
	defer rows.Close()

	var dependents []dependent.Dependent
	for rows.Next() {
		var name, dobString string
		if err := rows.Scan(&name, &dobString); err != nil {
			return nil, fmt.Errorf("could not scan dependent: %w", err)
		}
		dob, err := time.Parse(dbDateFormat, dobString)
		if err != nil {
			return nil, fmt.Errorf("could not parse dependent dob: %w", err)
		}
		d, err := dependent.New(name, dob)
		if err != nil {
			return nil, err
		}
		dependents = append(dependents, d)
	}
	return dependents, rows.Err()
}

func (r *RepoImpl) payments(ctx context.Context, caseId int) ([]payment.PaymentMade, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT paid_on, amount, source FROM case_payment WHERE case_id = $1 ORDER BY paid_on, id", caseId)
	if err != nil {
		return nil, fmt.Errorf("could not query payments: %w", err)
	}
	defer rows.Close()

	var payments []payment.PaymentMade
	for rows.Next() {
		var dateString, amountString, source string
		if err := rows.Scan(&dateString, &amountString, &source); err != nil {
			return nil, fmt.Errorf("could not scan payment: %w", err)
		}
		date, err := time.Parse(dbDateFormat, dateString)
		if err != nil {
			return nil, fmt.Errorf("could not parse payment date: %w", err)
		}
		amount, err := money.ParseAmount(amountString)
		if err != nil {
			return nil, fmt.Errorf("could not parse payment amount: %w", err)
		}
		p, err := payment.NewPaymentMade(date, amount, source)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (Case, error) {
	var c Case
	var supportString, medicalString, dentalString, startDateString string
	err := row.Scan(
		&c.Id,
		&c.Uid,
		&c.Obligor,
		&c.Obligee,
		&supportString,
		&medicalString,
		&dentalString,
		&startDateString,
		&c.Terms.NotBeforeCourt,
	)
	if err != nil {
		return Case{}, err
	}

	if c.Terms.SupportAmount, err = money.ParseAmount(supportString); err != nil {
		return Case{}, err
	}
	if c.Terms.MedicalAmount, err = money.ParseAmount(medicalString); err != nil {
		return Case{}, err
	}
	if c.Terms.DentalAmount, err = money.ParseAmount(dentalString); err != nil {
		return Case{}, err
	}
	if c.Terms.StartDate, err = time.Parse(dbDateFormat, startDateString); err != nil {
		return Case{}, err
	}
	return c, nil
}
