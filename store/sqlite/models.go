package sqlite

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/treasury"
	"github.com/xraph/paystream/types"
	"github.com/xraph/paystream/vesting"
)

// ==================== Ledger models ====================

type ledgerModel struct {
	grove.BaseModel `grove:"table:paystream_ledgers"`

	ID          string    `grove:"id,pk"`
	Authority   string    `grove:"authority"`
	Capacity    int       `grove:"capacity"`
	StreamCount uint64    `grove:"stream_count"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toLedgerModel(l *stream.Ledger) *ledgerModel {
	return &ledgerModel{
		ID:          l.ID.String(),
		Authority:   l.Authority.String(),
		Capacity:    l.Capacity,
		StreamCount: l.StreamCount,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func fromLedgerModel(m *ledgerModel) (*stream.Ledger, error) {
	ledgerID, err := id.ParseLedgerID(m.ID)
	if err != nil {
		return nil, err
	}
	authority, err := id.ParseAccountID(m.Authority)
	if err != nil {
		return nil, err
	}

	return &stream.Ledger{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          ledgerID,
		Authority:   authority,
		Capacity:    m.Capacity,
		StreamCount: m.StreamCount,
	}, nil
}

// ==================== Stream models ====================

type streamModel struct {
	grove.BaseModel `grove:"table:paystream_streams"`

	ID          string          `grove:"id,pk"`
	LedgerID    string          `grove:"ledger_id"`
	Authority   string          `grove:"authority"`
	StreamIndex uint64          `grove:"stream_index"`
	Sender      string          `grove:"sender"`
	Receiver    string          `grove:"receiver"`
	Custody     string          `grove:"custody"`
	StartTime   int64           `grove:"start_time"`
	EndTime     int64           `grove:"end_time"`
	Amount      int64           `grove:"amount"`
	Currency    string          `grove:"currency"`
	Withdrawn   int64           `grove:"withdrawn"`
	IsActive    bool            `grove:"is_active"`
	Schedule    json.RawMessage `grove:"schedule"`
	CreatedAt   time.Time       `grove:"created_at"`
	UpdatedAt   time.Time       `grove:"updated_at"`
}

func toStreamModel(authority id.AccountID, s *stream.Stream) *streamModel {
	schedule, _ := json.Marshal(s.Schedule) //nolint:errcheck // best-effort

	return &streamModel{
		ID:          s.ID.String(),
		LedgerID:    s.Ledger.String(),
		Authority:   authority.String(),
		StreamIndex: s.Index,
		Sender:      s.Sender.String(),
		Receiver:    s.Receiver.String(),
		Custody:     s.Custody.String(),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Amount:      s.Amount.Amount,
		Currency:    s.Amount.Currency,
		Withdrawn:   s.Withdrawn.Amount,
		IsActive:    s.Active,
		Schedule:    schedule,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func fromStreamModel(m *streamModel) (*stream.Stream, error) {
	streamID, err := id.ParseStreamID(m.ID)
	if err != nil {
		return nil, err
	}
	ledgerID, err := id.ParseLedgerID(m.LedgerID)
	if err != nil {
		return nil, err
	}
	sender, err := id.ParseAccountID(m.Sender)
	if err != nil {
		return nil, err
	}
	receiver, err := id.ParseAccountID(m.Receiver)
	if err != nil {
		return nil, err
	}
	custody, err := id.ParseAccountID(m.Custody)
	if err != nil {
		return nil, err
	}

	schedule := vesting.Linear()
	if len(m.Schedule) > 0 && string(m.Schedule) != "null" {
		_ = json.Unmarshal(m.Schedule, &schedule) //nolint:errcheck // best-effort
	}

	return &stream.Stream{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        streamID,
		Ledger:    ledgerID,
		Index:     m.StreamIndex,
		Sender:    sender,
		Receiver:  receiver,
		Custody:   custody,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		Amount:    types.Money{Amount: m.Amount, Currency: m.Currency},
		Withdrawn: types.Money{Amount: m.Withdrawn, Currency: m.Currency},
		Active:    m.IsActive,
		Schedule:  schedule,
	}, nil
}

// ==================== Transfer models ====================

type transferModel struct {
	grove.BaseModel `grove:"table:paystream_transfers"`

	ID          string    `grove:"id,pk"`
	StreamID    string    `grove:"stream_id"`
	FromAccount string    `grove:"from_account"`
	ToAccount   string    `grove:"to_account"`
	Amount      int64     `grove:"amount"`
	Currency    string    `grove:"currency"`
	Kind        string    `grove:"kind"`
	ExecutedAt  time.Time `grove:"executed_at"`
}

func toTransferModel(t *treasury.Transfer) *transferModel {
	return &transferModel{
		ID:          t.ID.String(),
		StreamID:    t.Stream.String(),
		FromAccount: t.From.String(),
		ToAccount:   t.To.String(),
		Amount:      t.Amount.Amount,
		Currency:    t.Amount.Currency,
		Kind:        string(t.Kind),
		ExecutedAt:  t.Executed,
	}
}

func fromTransferModel(m *transferModel) (*treasury.Transfer, error) {
	transferID, err := id.ParseTransferID(m.ID)
	if err != nil {
		return nil, err
	}
	streamID, err := id.ParseStreamID(m.StreamID)
	if err != nil {
		return nil, err
	}
	from, err := id.ParseAccountID(m.FromAccount)
	if err != nil {
		return nil, err
	}
	to, err := id.ParseAccountID(m.ToAccount)
	if err != nil {
		return nil, err
	}

	return &treasury.Transfer{
		ID:       transferID,
		Stream:   streamID,
		From:     from,
		To:       to,
		Amount:   types.Money{Amount: m.Amount, Currency: m.Currency},
		Kind:     treasury.Kind(m.Kind),
		Executed: m.ExecutedAt,
	}, nil
}
