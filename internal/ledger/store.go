package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxStore appends ledger rows and maintains running balances inside one
// transaction. The posting engine and payment allocator embed it in their own
// transactional repositories so a document mutation and its ledger effects
// commit or roll back as a whole.
type TxStore interface {
	// AppendCash inserts a cash ledger row and moves cash_in_hand by the
	// signed amount, creating the balance row if absent.
	AppendCash(ctx context.Context, in CashAppend) (int64, error)
	// AppendBank inserts a bank ledger row and moves the account balance.
	// Fails with ErrBankNotFound when the account is missing, deleted or
	// belongs to another company.
	AppendBank(ctx context.Context, in BankAppend) (int64, error)
	// AppendCredit inserts a credit ledger row. No balance side effect.
	AppendCredit(ctx context.Context, in CreditAppend) (int64, error)
	// ReverseReference soft-deletes every cash, bank and credit ledger row
	// tied to the reference. Balance restoration is a separate concern,
	// expressed through AdjustCashBalance / AdjustBankBalance.
	ReverseReference(ctx context.Context, companyID int64, ref Reference) error
	// AdjustCashBalance applies a signed delta to the company's cash balance.
	AdjustCashBalance(ctx context.Context, companyID int64, delta float64) error
	// AdjustBankBalance applies a signed delta to a bank account balance.
	AdjustBankBalance(ctx context.Context, companyID, bankID int64, delta float64) error
}

type txStore struct {
	tx pgx.Tx
}

// NewTxStore wraps a transaction with ledger operations.
func NewTxStore(tx pgx.Tx) TxStore {
	return &txStore{tx: tx}
}

func (s *txStore) AppendCash(ctx context.Context, in CashAppend) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	var id int64
	err := s.tx.QueryRow(ctx, `INSERT INTO cash_ledger (company_id, type, amount, txn_date, reference_type, reference_id, note, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		in.CompanyID, in.Direction, money(in.Amount), in.TxnDate, in.Ref.Kind, refID(in.Ref), in.Note, in.Actor).Scan(&id)
	if err != nil {
		return 0, err
	}
	if err := s.upsertCashBalance(ctx, in.CompanyID, in.Direction.Signed(in.Amount)); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *txStore) AppendBank(ctx context.Context, in BankAppend) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	if err := s.AdjustBankBalance(ctx, in.CompanyID, in.BankID, in.Direction.Signed(in.Amount)); err != nil {
		return 0, err
	}
	var id int64
	err := s.tx.QueryRow(ctx, `INSERT INTO bank_ledger (company_id, bank_id, type, amount, txn_date, module, reference_id, description, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		in.CompanyID, in.BankID, in.Direction, money(in.Amount), in.TxnDate, in.Ref.Kind, refID(in.Ref), in.Description, in.Actor).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *txStore) AppendCredit(ctx context.Context, in CreditAppend) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	var id int64
	err := s.tx.QueryRow(ctx, `INSERT INTO credit_ledger (company_id, type, party_id, amount, txn_date, reference_type, reference_id, note, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		in.CompanyID, in.Type, in.PartyID, money(in.Amount), in.TxnDate, in.Ref.Kind, refID(in.Ref), in.Note, in.Actor).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *txStore) ReverseReference(ctx context.Context, companyID int64, ref Reference) error {
	if ref.ID == 0 {
		return fmt.Errorf("ledger: reverse requires a reference id")
	}
	if _, err := s.tx.Exec(ctx, `UPDATE cash_ledger SET delete_status=1 WHERE company_id=$1 AND reference_type=$2 AND reference_id=$3`,
		companyID, ref.Kind, ref.ID); err != nil {
		return err
	}
	if _, err := s.tx.Exec(ctx, `UPDATE bank_ledger SET delete_status=1 WHERE company_id=$1 AND module=$2 AND reference_id=$3`,
		companyID, ref.Kind, ref.ID); err != nil {
		return err
	}
	if _, err := s.tx.Exec(ctx, `UPDATE credit_ledger SET delete_status=1 WHERE company_id=$1 AND reference_type=$2 AND reference_id=$3`,
		companyID, ref.Kind, ref.ID); err != nil {
		return err
	}
	return nil
}

func (s *txStore) AdjustCashBalance(ctx context.Context, companyID int64, delta float64) error {
	cmd, err := s.tx.Exec(ctx, `UPDATE cash_in_hand SET current_balance = current_balance + $2, updated_at = NOW() WHERE company_id=$1`,
		companyID, money(delta))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCashAccountNotFound
	}
	return nil
}

func (s *txStore) AdjustBankBalance(ctx context.Context, companyID, bankID int64, delta float64) error {
	cmd, err := s.tx.Exec(ctx, `UPDATE bank_accounts SET account_balance = account_balance + $3, updated_at = NOW()
WHERE id=$2 AND company_id=$1 AND delete_status=0`,
		companyID, bankID, money(delta))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBankNotFound
	}
	return nil
}

func (s *txStore) upsertCashBalance(ctx context.Context, companyID int64, delta float64) error {
	_, err := s.tx.Exec(ctx, `INSERT INTO cash_in_hand (company_id, current_balance)
VALUES ($1,$2)
ON CONFLICT (company_id) DO UPDATE SET current_balance = cash_in_hand.current_balance + EXCLUDED.current_balance, updated_at = NOW()`,
		companyID, money(delta))
	return err
}

func refID(ref Reference) any {
	if ref.ID == 0 {
		return nil
	}
	return ref.ID
}

// money renders a float as a 2-dp numeric literal for the wire.
func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
