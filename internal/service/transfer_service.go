package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gw-payment-engine/internal/bank"
	"gw-payment-engine/internal/custom_err"
	"gw-payment-engine/internal/events"
	"gw-payment-engine/internal/models"
	"gw-payment-engine/internal/money"
	"gw-payment-engine/internal/rates"
)

type Transfer interface {
	Process(ctx context.Context, tx *models.Transaction, workerID int) (models.TransactionStatus, error)
}

// TransferService runs the transfer protocol for one transaction at a time per
// caller. It holds no state of its own; all balances live in the banks reached
// through the directory.
type TransferService struct {
	directory bank.Directory
	rates     rates.Source
	emitter   events.Emitter
	log       *slog.Logger
}

func NewTransferService(directory bank.Directory, rateSource rates.Source, emitter events.Emitter, log *slog.Logger) *TransferService {
	return &TransferService{
		directory: directory,
		rates:     rateSource,
		emitter:   emitter,
		log:       log,
	}
}

// settlement collects what a transfer did, for the published event, and
// whether its status was already committed under the account locks.
type settlement struct {
	kind      string
	from      models.Currency
	to        models.Currency
	fee       int64
	converted int64
	rate      string

	attempted bool
	committed bool
}

// commit sets the terminal status of tx. Called with the account locks held,
// so no one holding them sees moved balances on a PENDING transaction.
func (st *settlement) commit(tx *models.Transaction, status models.TransactionStatus) {
	st.attempted = true
	st.committed = tx.Commit(status)
}

// Process moves tx to a terminal status. A failed transfer is reported through
// the returned error and never leaves money created or destroyed. Transfers
// that reach the account locks commit before releasing them; validation
// failures commit without taking any lock.
func (s *TransferService) Process(ctx context.Context, tx *models.Transaction, workerID int) (status models.TransactionStatus, err error) {
	const op = "service.Process"

	if tx == nil {
		return models.StatusFailed, fmt.Errorf("%s: %w", op, custom_err.ErrInvalidTransfer)
	}
	if current := tx.Status(); current != models.StatusPending {
		s.log.Error("transaction already has a terminal status",
			slog.String("tx_id", tx.ID.String()),
			slog.String("status", current.String()))
		return current, fmt.Errorf("%s: %s: %w", op, current, custom_err.ErrInvalidTransfer)
	}

	var st settlement
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic while processing transfer",
				slog.String("tx_id", tx.ID.String()),
				slog.Any("panic", r))
			status, err = models.StatusFailed, fmt.Errorf("%s: panic: %v", op, r)
		}
		status = s.finish(tx, status, err, &st, workerID)
	}()

	originBank, origin, destBank, dest, err := s.resolve(tx)
	if err != nil {
		return models.StatusFailed, fmt.Errorf("%s: %w", op, err)
	}

	if tx.IsNational() {
		st.kind, st.from, st.to = models.TransferKindNational, originBank.Currency(), originBank.Currency()
		if err := s.national(tx, originBank, origin, dest, &st); err != nil {
			return models.StatusFailed, fmt.Errorf("%s: %w", op, err)
		}
		return models.StatusSuccessful, nil
	}

	st.kind, st.from, st.to = models.TransferKindInternational, originBank.Currency(), destBank.Currency()
	if err := s.international(tx, originBank, origin, destBank, dest, &st); err != nil {
		return models.StatusFailed, fmt.Errorf("%s: %w", op, err)
	}
	return models.StatusSuccessful, nil
}

func (s *TransferService) resolve(tx *models.Transaction) (*bank.Bank, *bank.Account, *bank.Bank, *bank.Account, error) {
	if tx.Amount <= 0 {
		return nil, nil, nil, nil, custom_err.ErrInvalidAmount
	}
	if tx.Origin == tx.Destination {
		return nil, nil, nil, nil, custom_err.ErrSelfTransfer
	}

	originBank, origin, err := bank.ResolveAccount(s.directory, tx.Origin)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("origin: %w", err)
	}
	destBank, dest, err := bank.ResolveAccount(s.directory, tx.Destination)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("destination: %w", err)
	}
	return originBank, origin, destBank, dest, nil
}

func (s *TransferService) national(tx *models.Transaction, b *bank.Bank, origin, dest *bank.Account, st *settlement) error {
	return bank.WithLocked(func() error {
		if _, ok := origin.Debit(tx.Amount); !ok {
			st.commit(tx, models.StatusFailed)
			return custom_err.ErrInsufficientFunds
		}
		dest.Deposit(tx.Amount)
		b.RecordNational()
		st.commit(tx, models.StatusSuccessful)
		return nil
	}, origin, dest)
}

// international debits amount plus the 1% fee from origin, keeps the fee in
// the origin bank's reserve and pays the converted amount out of the
// destination bank's reserve. When the destination reserve cannot pay, the
// fee and the debit are reversed under the same locks.
func (s *TransferService) international(
	tx *models.Transaction,
	originBank *bank.Bank, origin *bank.Account,
	destBank *bank.Bank, dest *bank.Account,
	st *settlement,
) error {
	// rate lookup is pure; a missing pair fails before anything is touched
	rate, err := s.rates.Rate(originBank.Currency(), destBank.Currency())
	if err != nil {
		return err
	}
	st.rate = rate.String()

	total, fee, err := money.WithFee(tx.Amount, money.InternationalFee)
	if err != nil {
		return err
	}
	converted, err := money.Convert(tx.Amount, rate)
	if err != nil {
		return err
	}

	originReserve, err := originBank.Reserves().Get(originBank.Currency())
	if err != nil {
		return err
	}
	destReserve, err := destBank.Reserves().Get(destBank.Currency())
	if err != nil {
		return err
	}

	return bank.WithLocked(func() error {
		debit, ok := origin.Debit(total)
		if !ok {
			st.commit(tx, models.StatusFailed)
			return custom_err.ErrInsufficientFunds
		}

		originBank.RecordInternational()
		destBank.RecordInternational()
		originReserve.Deposit(fee)

		if converted <= 0 || !destReserve.Withdraw(converted) {
			if fee > 0 {
				originReserve.Withdraw(fee)
			}
			origin.Reverse(debit)
			st.commit(tx, models.StatusFailed)
			return custom_err.ErrInsufficientReserve
		}

		dest.Deposit(converted)
		st.fee, st.converted = fee, converted
		st.commit(tx, models.StatusSuccessful)
		return nil
	}, origin, dest, originReserve, destReserve)
}

// finish commits tx when no locked step did, then logs and publishes the
// outcome. A transaction that was already terminal keeps its status and
// produces no event.
func (s *TransferService) finish(tx *models.Transaction, status models.TransactionStatus, err error, st *settlement, workerID int) models.TransactionStatus {
	if !st.attempted {
		st.commit(tx, status)
	}
	if !st.committed {
		s.log.Error("transaction already has a terminal status",
			slog.String("tx_id", tx.ID.String()),
			slog.String("status", tx.Status().String()),
			slog.String("attempted", status.String()))
		return tx.Status()
	}
	status = tx.Status()

	if err != nil {
		s.log.Info("transfer failed",
			slog.String("tx_id", tx.ID.String()),
			slog.Int("worker_id", workerID),
			slog.String("origin", tx.Origin.String()),
			slog.String("destination", tx.Destination.String()),
			slog.Int64("amount", tx.Amount),
			slog.String("reason", custom_err.Reason(err)),
			slog.String("error", err.Error()))
	} else {
		s.log.Debug("transfer succeeded",
			slog.String("tx_id", tx.ID.String()),
			slog.Int("worker_id", workerID),
			slog.String("kind", st.kind),
			slog.Int64("amount", tx.Amount),
			slog.Int64("converted", st.converted))
	}

	if s.emitter != nil {
		s.emitter.Emit(models.TransferEvent{
			TransactionID:   tx.ID.String(),
			Origin:          tx.Origin,
			Destination:     tx.Destination,
			Kind:            st.kind,
			Amount:          tx.Amount,
			FromCurrency:    string(st.from),
			ToCurrency:      string(st.to),
			Fee:             st.fee,
			ConvertedAmount: st.converted,
			Rate:            st.rate,
			Status:          status.String(),
			Reason:          custom_err.Reason(err),
			WorkerID:        workerID,
			Timestamp:       time.Now(),
		})
	}
	return status
}

