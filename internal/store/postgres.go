package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/orientanurag/upnext-mvp/internal/models"
)

// PostgresStore implements Store on database/sql. Compound operations run in
// a single transaction with wallet rows locked FOR UPDATE, so the balance
// floor check and the ledger append commit together.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, name, start_time, duration_hours, slots_per_hour, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.Name, event.StartTime, event.DurationHours, event.SlotsPerHour, event.Active, event.CreatedAt)
	return err
}

func (s *PostgresStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, start_time, duration_hours, slots_per_hour, active, COALESCE(current_winner_bid_id, ''), created_at
		FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (s *PostgresStore) ActiveEvent(ctx context.Context) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, start_time, duration_hours, slots_per_hour, active, COALESCE(current_winner_bid_id, ''), created_at
		FROM events WHERE active = true ORDER BY created_at DESC LIMIT 1`)
	return scanEvent(row)
}

func scanEvent(row *sql.Row) (*models.Event, error) {
	var event models.Event
	err := row.Scan(&event.ID, &event.Name, &event.StartTime, &event.DurationHours,
		&event.SlotsPerHour, &event.Active, &event.CurrentWinnerBidID, &event.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *PostgresStore) SetEventActive(ctx context.Context, id string, active bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE events SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *PostgresStore) CreateSlots(ctx context.Context, eventID string, slots []*models.Slot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots WHERE event_id = $1`, eventID).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return ErrSlotsExist
	}

	for _, slot := range slots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO slots (id, event_id, slot_number, scheduled_time, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			slot.ID, slot.EventID, slot.SlotNumber, slot.ScheduledTime, slot.Status, slot.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, event_id, slot_number, scheduled_time, status, COALESCE(current_winner_bid_id, ''), created_at
		FROM slots WHERE id = $1`, id)
	var slot models.Slot
	err := row.Scan(&slot.ID, &slot.EventID, &slot.SlotNumber, &slot.ScheduledTime,
		&slot.Status, &slot.CurrentWinnerBidID, &slot.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *PostgresStore) ListSlots(ctx context.Context, eventID string) ([]*models.Slot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, slot_number, scheduled_time, status, COALESCE(current_winner_bid_id, ''), created_at
		FROM slots WHERE event_id = $1 ORDER BY slot_number ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*models.Slot
	for rows.Next() {
		var slot models.Slot
		if err := rows.Scan(&slot.ID, &slot.EventID, &slot.SlotNumber, &slot.ScheduledTime,
			&slot.Status, &slot.CurrentWinnerBidID, &slot.CreatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, &slot)
	}
	return slots, rows.Err()
}

func (s *PostgresStore) UpdateSlotStatus(ctx context.Context, slotID, status string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE slots SET status = $1 WHERE id = $2`, status, slotID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *PostgresStore) CountUnresolvedBids(ctx context.Context, slotID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bids WHERE slot_id = $1 AND status = ANY($2)`,
		slotID, pq.Array(models.UnresolvedBidStatuses)).Scan(&count)
	return count, err
}

func (s *PostgresStore) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		wallet.ID, wallet.UserID, wallet.Balance, wallet.CreatedAt, wallet.UpdatedAt)
	if err, ok := err.(*pq.Error); ok && err.Code.Name() == "unique_violation" {
		return ErrDuplicateWallet
	}
	return err
}

func (s *PostgresStore) GetWallet(ctx context.Context, id string) (*models.Wallet, error) {
	return s.getWallet(ctx, `SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE id = $1`, id)
}

func (s *PostgresStore) GetWalletByUser(ctx context.Context, userID string) (*models.Wallet, error) {
	return s.getWallet(ctx, `SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1`, userID)
}

func (s *PostgresStore) getWallet(ctx context.Context, query, arg string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&wallet.ID, &wallet.UserID, &wallet.Balance, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *PostgresStore) CreditWallet(ctx context.Context, walletID string, amount int64, description string) (*models.Wallet, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	wallet, err := lockWallet(ctx, tx, walletID)
	if err != nil {
		return nil, err
	}

	wallet.Balance += amount
	wallet.UpdatedAt = time.Now()
	if err := updateWalletBalance(ctx, tx, wallet); err != nil {
		return nil, err
	}
	if err := appendWalletTxn(ctx, tx, walletID, amount, models.TxTypeCredit, description, ""); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *PostgresStore) ListWalletTransactions(ctx context.Context, walletID string, limit int) ([]*models.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wallet_id, amount, type, description, COALESCE(reference_bid_id, ''), created_at
		FROM wallet_transactions WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2`,
		walletID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.WalletTransaction
	for rows.Next() {
		var entry models.WalletTransaction
		if err := rows.Scan(&entry.ID, &entry.WalletID, &entry.Amount, &entry.Type,
			&entry.Description, &entry.ReferenceBidID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) PlaceBid(ctx context.Context, bid *models.Bid, maxPerSlot int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	wallet, err := lockWallet(ctx, tx, bid.WalletID)
	if err != nil {
		return err
	}
	if wallet.Balance < bid.Amount {
		return ErrInsufficientFunds
	}

	if maxPerSlot > 0 {
		// Lock the slot row so the capacity count and the insert serialize
		// against concurrent submissions for the same slot.
		var slotID string
		err := tx.QueryRowContext(ctx, `SELECT id FROM slots WHERE id = $1 FOR UPDATE`, bid.SlotID).Scan(&slotID)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var count int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bids WHERE slot_id = $1 AND status = ANY($2)`,
			bid.SlotID, pq.Array(models.UnresolvedBidStatuses)).Scan(&count)
		if err != nil {
			return err
		}
		if count >= maxPerSlot {
			return ErrSlotFull
		}
	}

	wallet.Balance -= bid.Amount
	wallet.UpdatedAt = time.Now()
	if err := updateWalletBalance(ctx, tx, wallet); err != nil {
		return err
	}
	if err := appendWalletTxn(ctx, tx, bid.WalletID, -bid.Amount, models.TxTypeDebit, "Bid: "+bid.SongTitle, bid.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bids (id, event_id, slot_id, wallet_id, song_title, song_artist, song_album,
			track_id, message, amount, user_name, status, payment_status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		bid.ID, bid.EventID, bid.SlotID, bid.WalletID, bid.SongTitle, bid.SongArtist, bid.SongAlbum,
		bid.TrackID, bid.Message, bid.Amount, bid.UserName, bid.Status, bid.PaymentStatus, bid.SubmittedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresStore) GetBid(ctx context.Context, id string) (*models.Bid, error) {
	row := s.db.QueryRowContext(ctx, bidSelect+` WHERE id = $1`, id)
	return scanBidRow(row.Scan)
}

const bidSelect = `
	SELECT id, event_id, COALESCE(slot_id, ''), wallet_id, song_title, COALESCE(song_artist, ''),
		COALESCE(song_album, ''), COALESCE(track_id, ''), COALESCE(message, ''), amount,
		user_name, status, payment_status, submitted_at, approved_at, played_at
	FROM bids`

func scanBidRow(scan func(dest ...any) error) (*models.Bid, error) {
	var bid models.Bid
	err := scan(&bid.ID, &bid.EventID, &bid.SlotID, &bid.WalletID, &bid.SongTitle, &bid.SongArtist,
		&bid.SongAlbum, &bid.TrackID, &bid.Message, &bid.Amount, &bid.UserName, &bid.Status,
		&bid.PaymentStatus, &bid.SubmittedAt, &bid.ApprovedAt, &bid.PlayedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (s *PostgresStore) ListBids(ctx context.Context, filter BidFilter) ([]*models.Bid, error) {
	query := bidSelect + ` WHERE 1=1`
	args := []any{}

	if filter.EventID != "" {
		args = append(args, filter.EventID)
		query += fmt.Sprintf(" AND event_id = $%d", len(args))
	}
	if filter.SlotID != "" {
		args = append(args, filter.SlotID)
		query += fmt.Sprintf(" AND slot_id = $%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, pq.Array(filter.Statuses))
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}

	tie := "ASC"
	if filter.TieBreakDesc {
		tie = "DESC"
	}
	query += " ORDER BY amount DESC, submitted_at " + tie
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*models.Bid
	for rows.Next() {
		bid, err := scanBidRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

func (s *PostgresStore) TransitionBid(ctx context.Context, bidID string, from []string, to string, at time.Time, refund bool, refundDescription string) (*models.Bid, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	bid, err := scanBidRow(tx.QueryRowContext(ctx, bidSelect+` WHERE id = $1 FOR UPDATE`, bidID).Scan)
	if err != nil {
		return nil, err
	}
	if !containsStatus(from, bid.Status) {
		return nil, ErrInvalidTransition
	}

	bid.Status = to
	if to == models.BidStatusApproved {
		t := at
		bid.ApprovedAt = &t
	}

	if refund && bid.PaymentStatus == models.PaymentStatusPaid {
		wallet, err := lockWallet(ctx, tx, bid.WalletID)
		if err != nil {
			return nil, err
		}
		wallet.Balance += bid.Amount
		wallet.UpdatedAt = at
		if err := updateWalletBalance(ctx, tx, wallet); err != nil {
			return nil, err
		}
		if err := appendWalletTxn(ctx, tx, bid.WalletID, bid.Amount, models.TxTypeRefund, refundDescription, bid.ID); err != nil {
			return nil, err
		}
		bid.PaymentStatus = models.PaymentStatusRefunded
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bids SET status = $1, payment_status = $2, approved_at = $3 WHERE id = $4`,
		bid.Status, bid.PaymentStatus, bid.ApprovedAt, bid.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return bid, nil
}

func (s *PostgresStore) PlayBid(ctx context.Context, bidID string, at time.Time) (*models.Bid, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	bid, err := scanBidRow(tx.QueryRowContext(ctx, bidSelect+` WHERE id = $1 FOR UPDATE`, bidID).Scan)
	if err != nil {
		return nil, err
	}
	if bid.Status != models.BidStatusApproved {
		return nil, ErrInvalidTransition
	}

	bid.Status = models.BidStatusPlayed
	t := at
	bid.PlayedAt = &t

	_, err = tx.ExecContext(ctx, `UPDATE bids SET status = $1, played_at = $2 WHERE id = $3`,
		bid.Status, bid.PlayedAt, bid.ID)
	if err != nil {
		return nil, err
	}
	if bid.SlotID != "" {
		_, err = tx.ExecContext(ctx, `UPDATE slots SET status = $1, current_winner_bid_id = $2 WHERE id = $3`,
			models.SlotStatusLocked, bid.ID, bid.SlotID)
		if err != nil {
			return nil, err
		}
	}
	_, err = tx.ExecContext(ctx, `UPDATE events SET current_winner_bid_id = $1 WHERE id = $2`,
		bid.ID, bid.EventID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return bid, nil
}

func lockWallet(ctx context.Context, tx *sql.Tx, walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.QueryRowContext(ctx, `
		SELECT id, user_id, balance, created_at, updated_at
		FROM wallets WHERE id = $1 FOR UPDATE`, walletID).
		Scan(&wallet.ID, &wallet.UserID, &wallet.Balance, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func updateWalletBalance(ctx context.Context, tx *sql.Tx, wallet *models.Wallet) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`,
		wallet.Balance, wallet.UpdatedAt, wallet.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func appendWalletTxn(ctx context.Context, tx *sql.Tx, walletID string, amount int64, txType, description, refBidID string) error {
	var ref any
	if refBidID != "" {
		ref = refBidID
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, wallet_id, amount, type, description, reference_bid_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.NewString(), walletID, amount, txType, description, ref, time.Now())
	return err
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
