package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/payments-engine/ledger"
)

// FormatAmount renders an amount truncated (not rounded) to 4
// fractional digits, with trailing zeros dropped. The engine keeps
// full precision internally; this is the only place precision is cut.
func FormatAmount(d decimal.Decimal) string {
	return d.RoundDown(4).String()
}

// WriteSnapshots serializes account snapshots as CSV:
// client,available,held,total,locked.
func WriteSnapshots(w io.Writer, snaps []ledger.AccountSnapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, s := range snaps {
		row := []string{
			strconv.FormatUint(uint64(s.ClientID), 10),
			FormatAmount(s.Available),
			FormatAmount(s.Held),
			FormatAmount(s.Total),
			strconv.FormatBool(s.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
