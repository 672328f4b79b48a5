package service

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	reviewIDPrefix   = "REV"
	reviewIDSequence = "reviewId" // _id документа в counters
)

// FormatReviewID форматирует номер как REV000042
func FormatReviewID(seq int64) string {
	return fmt.Sprintf("%s%06d", reviewIDPrefix, seq)
}

// ParseReviewID извлекает номер из REV000042; ok=false для чужого формата
func ParseReviewID(reviewID string) (int64, bool) {
	if !strings.HasPrefix(reviewID, reviewIDPrefix) {
		return 0, false
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(reviewID, reviewIDPrefix), 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
