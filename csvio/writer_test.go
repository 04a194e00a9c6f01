package csvio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payments-engine/csvio"
	"github.com/warp/payments-engine/ledger"
)

func TestFormatAmount_TruncatesNotRounds(t *testing.T) {
	cases := map[string]string{
		"10.5234":   "10.5234",
		"30.293853": "30.2938", // 30.2938|53 cut, not rounded up
		"1.99999":   "1.9999",
		"1.00005":   "1",      // trailing zeros dropped after the cut
		"2.5000":    "2.5",
		"0":         "0",
	}
	for in, want := range cases {
		assert.Equal(t, want, csvio.FormatAmount(ledger.MustParseDecimal(in)), "input %s", in)
	}
}

func TestWriteSnapshots(t *testing.T) {
	snaps := []ledger.AccountSnapshot{
		{
			ClientID:  1,
			Available: ledger.MustParseDecimal("10.5234"),
			Held:      ledger.MustParseDecimal("30.293853"),
			Total:     ledger.MustParseDecimal("40.817253"),
			Locked:    false,
		},
		{
			ClientID:  2,
			Available: ledger.MustParseDecimal("0"),
			Held:      ledger.MustParseDecimal("0"),
			Total:     ledger.MustParseDecimal("0"),
			Locked:    true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, csvio.WriteSnapshots(&buf, snaps))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "client,available,held,total,locked", lines[0])
	assert.Equal(t, "1,10.5234,30.2938,40.8172,false", lines[1])
	assert.Equal(t, "2,0,0,0,true", lines[2])
}

func TestWriteSnapshots_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, csvio.WriteSnapshots(&buf, nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

func TestRoundTrip_ReadProcessWrite(t *testing.T) {
	// End-to-end over the adapters: parse, apply, serialize.
	input := "type,client,tx,amount\n" +
		"deposit,1,1,1.05\n" +
		"deposit,2,2,2\n" +
		"dispute,2,2,\n" +
		"chargeback,2,2,\n"

	txs, _ := readAll(t, input)
	bank := ledger.NewBasic()
	for _, tx := range txs {
		_ = bank.Apply(tx)
	}

	var buf bytes.Buffer
	require.NoError(t, csvio.WriteSnapshots(&buf, bank.Drain()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1,1.05,0,1.05,false", lines[1])
	assert.Equal(t, "2,0,0,0,true", lines[2])
}
