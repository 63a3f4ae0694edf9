package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/achledger/internal/domain"
)

const pgErrUniqueViolation = "23505"

// mapError turns driver timeouts into ErrStorageTimeout and unique
// violations into ErrConcurrentModification.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", domain.ErrStorageTimeout, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConcurrentModification, pgErr.ConstraintName)
	}
	return err
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func dateToPg(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOf(t), Valid: !t.IsZero()}
}

func pgToDate(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return domain.DateOf(d.Time)
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// pageArgs converts a limit/offset pair where limit <= 0 means no limit.
func pageArgs(limit, offset int) (int32, int32) {
	if limit <= 0 || limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	if offset < 0 {
		offset = 0
	}
	if offset > math.MaxInt32 {
		offset = math.MaxInt32
	}
	return int32(limit), int32(offset)
}
