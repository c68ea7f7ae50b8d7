package utils

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
)

// ==================== UUID & TOKEN ====================

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

func ParseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	seen := make(map[uuid.UUID]struct{}, len(values))
	for _, v := range values {
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", v, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// GenerateCorrelationID id pendek untuk metadata event
func GenerateCorrelationID() string {
	return shortuuid.New()
}

// ==================== BOOKING REFERENCE ====================

var referenceSeq atomic.Uint32

// GenerateBookingReference format: MB<unix millis><4 hex counter>, unik dalam satu proses
func GenerateBookingReference(now time.Time) string {
	seq := referenceSeq.Add(1) & 0xffff
	return fmt.Sprintf("MB%d%04X", now.UnixMilli(), seq)
}

// GenerateTransactionID format: TXN_<unix millis>_<short id>
func GenerateTransactionID(now time.Time) string {
	return "TXN_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + strings.ToUpper(shortuuid.New()[:8])
}

// ==================== QUERY PARAMS ====================

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil || result < 1 {
		return defaultValue
	}

	return result
}
