package client

import (
	"context"
	"sync"
	"time"

	"movie-booking/internal/dto/response"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultMaxSeats    = 10
	DefaultDebounce    = 500 * time.Millisecond
	reserveCallTimeout = 10 * time.Second
)

type SelectionOptions struct {
	MaxSeats int
	Debounce time.Duration
	Logger   *zap.Logger
	// OnReserve dipanggil setelah setiap percobaan hold, err nil kalau berhasil
	OnReserve func(seatIDs []string, err error)
}

// SeatSelection pilihan kursi user untuk satu show. Hold ke server dikirim setelah
// jeda debounce, hanya untuk kursi yang baru dipilih dan masih terpilih.
type SeatSelection struct {
	api       API
	showID    string
	basePrice decimal.Decimal
	maxSeats  int
	debounce  time.Duration
	onReserve func([]string, error)
	log       *zap.Logger

	mu        sync.Mutex
	seats     map[string]response.SeatResponse
	selected  []string
	pending   map[string]struct{}
	reserved  map[string]struct{}
	holdUntil time.Time
	timer     *time.Timer
	gen       uint64
	closed    bool
}

func NewSeatSelection(api API, seatMap *response.SeatMapResponse, opts SelectionOptions) *SeatSelection {
	if opts.MaxSeats <= 0 {
		opts.MaxSeats = DefaultMaxSeats
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &SeatSelection{
		api:       api,
		showID:    seatMap.ShowID,
		basePrice: seatMap.BasePrice,
		maxSeats:  opts.MaxSeats,
		debounce:  opts.Debounce,
		onReserve: opts.OnReserve,
		log:       opts.Logger.With(zap.String("show_id", seatMap.ShowID)),
		seats:     make(map[string]response.SeatResponse),
		pending:   make(map[string]struct{}),
		reserved:  make(map[string]struct{}),
	}
	for _, row := range seatMap.Rows {
		for _, seat := range row.Seats {
			s.seats[seat.ID] = seat
			if seat.ReservedByMe {
				s.reserved[seat.ID] = struct{}{}
			}
		}
	}
	return s
}

// Toggle pilih atau batal pilih kursi. Kursi terjual, di-hold orang lain, atau tidak
// dikenal diabaikan. Kursi ke-(max+1) ditolak dengan ErrSelectionLimitExceeded.
func (s *SeatSelection) Toggle(seatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[seatID]
	if !ok || !seat.IsAvailable || seat.IsBlocked {
		return nil
	}

	if i := s.indexOf(seatID); i >= 0 {
		s.selected = append(s.selected[:i], s.selected[i+1:]...)
		delete(s.pending, seatID)
		// hold di server dibiarkan habis lewat TTL
		delete(s.reserved, seatID)
		if len(s.selected) == 0 {
			s.stopTimer()
		}
		return nil
	}

	if len(s.selected) >= s.maxSeats {
		return ErrSelectionLimitExceeded
	}

	s.selected = append(s.selected, seatID)
	if _, mine := s.reserved[seatID]; !mine {
		s.pending[seatID] = struct{}{}
	}
	s.schedule()
	return nil
}

// schedule timer baru menggantikan yang lama, caller memegang s.mu
func (s *SeatSelection) schedule() {
	if s.closed || len(s.pending) == 0 {
		return
	}
	s.stopTimer()
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.debounce, func() { s.flush(gen) })
}

func (s *SeatSelection) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *SeatSelection) flush(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	ids := make([]string, 0, len(s.pending))
	for _, id := range s.selected {
		if _, ok := s.pending[id]; ok {
			ids = append(ids, id)
		}
	}
	s.pending = make(map[string]struct{})
	s.timer = nil
	s.mu.Unlock()

	if len(ids) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reserveCallTimeout)
	defer cancel()

	resp, err := s.api.ReserveSeats(ctx, s.showID, ids)

	s.mu.Lock()
	if err != nil {
		s.log.Warn("Seat hold failed, seats stay selected without hold", zap.Strings("seat_ids", ids), zap.Error(err))
	} else {
		for _, id := range ids {
			if s.indexOf(id) >= 0 {
				s.reserved[id] = struct{}{}
			}
		}
		s.holdUntil = resp.ExpiresAt
	}
	callback := s.onReserve
	s.mu.Unlock()

	if callback != nil {
		callback(ids, err)
	}
}

func (s *SeatSelection) indexOf(seatID string) int {
	for i, id := range s.selected {
		if id == seatID {
			return i
		}
	}
	return -1
}

// Selected kursi terpilih sesuai urutan klik
func (s *SeatSelection) Selected() []response.SeatResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]response.SeatResponse, len(s.selected))
	for i, id := range s.selected {
		out[i] = s.seats[id]
	}
	return out
}

func (s *SeatSelection) IsSelected(seatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(seatID) >= 0
}

// ReservedByMe true hanya kalau hold ke server berhasil untuk kursi ini
func (s *SeatSelection) ReservedByMe(seatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reserved[seatID]
	return ok
}

// HoldExpiresAt hanya untuk tampilan, server yang menegakkan TTL
func (s *SeatSelection) HoldExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holdUntil
}

// Total jumlah harga tier dari harga dasar show
func (s *SeatSelection) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, id := range s.selected {
		total = total.Add(s.seats[id].SeatType.PriceFrom(s.basePrice))
	}
	return total
}

// Selection hasil Confirm yang dibawa ke checkout
type Selection struct {
	ShowID string
	Seats  []response.SeatResponse
	Total  decimal.Decimal
}

func (sel *Selection) SeatIDs() []string {
	ids := make([]string, len(sel.Seats))
	for i, seat := range sel.Seats {
		ids[i] = seat.ID
	}
	return ids
}

func (s *SeatSelection) Confirm() (*Selection, error) {
	seats := s.Selected()
	if len(seats) == 0 {
		return nil, ErrNoSeatsSelected
	}
	return &Selection{ShowID: s.showID, Seats: seats, Total: s.Total()}, nil
}

// Close hentikan debounce yang masih menunggu
func (s *SeatSelection) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimer()
}
