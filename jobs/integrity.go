package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strconv"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// drift below a paisa is float noise, not corruption
const driftTolerance = 0.005

// IntegrityChecker verifies that the cached cash and bank balances equal the
// signed sum of their live ledger rows.
type IntegrityChecker struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewIntegrityChecker constructs an IntegrityChecker.
func NewIntegrityChecker(db *pgxpool.Pool, logger *slog.Logger) *IntegrityChecker {
	return &IntegrityChecker{db: db, logger: logger}
}

// Handle processes TaskLedgerIntegrity tasks.
func (c *IntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	drifts, err := c.Run(ctx, payload.CompanyID)
	if err != nil {
		return err
	}
	if len(drifts) > 0 {
		for _, d := range drifts {
			c.logger.Warn("ledger balance drift",
				slog.Int64("company_id", d.CompanyID),
				slog.String("account", d.Account),
				slog.Float64("cached", d.Cached),
				slog.Float64("computed", d.Computed))
		}
	}
	return nil
}

// Drift is one cached balance that disagrees with its ledger.
type Drift struct {
	CompanyID int64
	Account   string
	Cached    float64
	Computed  float64
}

// Run compares cached balances against ledger sums. A zero companyID checks
// every company.
func (c *IntegrityChecker) Run(ctx context.Context, companyID int64) ([]Drift, error) {
	var drifts []Drift

	cashRows, err := c.db.Query(ctx, `
		SELECT h.company_id, h.current_balance,
			COALESCE((SELECT SUM(CASE WHEN l.type = 'Credit' THEN l.amount ELSE -l.amount END)
				FROM cash_ledger l
				WHERE l.company_id = h.company_id AND l.delete_status = 0), 0)
		FROM cash_in_hand h
		WHERE $1 = 0 OR h.company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer cashRows.Close()
	for cashRows.Next() {
		var d Drift
		d.Account = "cash_in_hand"
		if err := cashRows.Scan(&d.CompanyID, &d.Cached, &d.Computed); err != nil {
			return nil, err
		}
		if math.Abs(d.Cached-d.Computed) > driftTolerance {
			drifts = append(drifts, d)
		}
	}
	if err := cashRows.Err(); err != nil {
		return nil, err
	}

	// the opening balance lives on the account row, not in the ledger
	bankRows, err := c.db.Query(ctx, `
		SELECT b.company_id, b.id, b.account_balance,
			b.opening_balance + COALESCE((SELECT SUM(CASE WHEN l.type = 'Credit' THEN l.amount ELSE -l.amount END)
				FROM bank_ledger l
				WHERE l.company_id = b.company_id AND l.bank_id = b.id AND l.delete_status = 0), 0)
		FROM bank_accounts b
		WHERE b.delete_status = 0 AND ($1 = 0 OR b.company_id = $1)`, companyID)
	if err != nil {
		return nil, err
	}
	defer bankRows.Close()
	for bankRows.Next() {
		var d Drift
		var bankID int64
		if err := bankRows.Scan(&d.CompanyID, &bankID, &d.Cached, &d.Computed); err != nil {
			return nil, err
		}
		d.Account = "bank:" + strconv.FormatInt(bankID, 10)
		if math.Abs(d.Cached-d.Computed) > driftTolerance {
			drifts = append(drifts, d)
		}
	}
	return drifts, bankRows.Err()
}
