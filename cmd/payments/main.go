/*
main.go - Payments engine entry point

PURPOSE:
  Reads a CSV of payment transactions, applies them through the
  sequential or sharded ledger, and writes the final account snapshots
  as CSV to stdout. All diagnostics go to stderr.

COMMAND-LINE:
  payments [flags] INPUT

  INPUT            input CSV file ("-" for stdin)
  -concurrent      use the sharded ledger
  -shards N        worker count for -concurrent (0 = all CPUs)
  -log-rejections  log every rejected transaction at debug level
  -export PATH     write final snapshots to a SQLite file
  -serve           after the batch, serve results over HTTP
  -port N          report server port

  Environment (PAYMENTS_*) and an optional .env provide defaults for
  shards, log level, export path and port; flags win.

EXIT CODE:
  0 on completion regardless of how many individual transactions were
  rejected. Non-zero only for startup or I/O failures.

SEE ALSO:
  - csvio: Input decoding and output formatting
  - ledger: The engine itself
  - api: The optional report server
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/payments-engine/api"
	"github.com/warp/payments-engine/config"
	"github.com/warp/payments-engine/csvio"
	"github.com/warp/payments-engine/ledger"
	"github.com/warp/payments-engine/logger"
	"github.com/warp/payments-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	concurrent := flag.Bool("concurrent", false, "use the sharded ledger")
	shards := flag.Int("shards", cfg.Shards, "worker count for -concurrent (0 = all CPUs)")
	logRejections := flag.Bool("log-rejections", false, "log every rejected transaction")
	exportPath := flag.String("export", cfg.ExportPath, "SQLite file to export final snapshots to")
	serve := flag.Bool("serve", false, "serve batch results over HTTP after processing")
	port := flag.Int("port", cfg.ReportPort, "report server port")
	logLevel := flag.String("log-level", cfg.Log.Level, "log level (debug, info, warn, error)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: payments [flags] INPUT")
		flag.PrintDefaults()
		os.Exit(2)
	}

	log := logger.New(*logLevel, cfg.Log.Pretty)

	input, err := openInput(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open input")
	}
	defer input.Close()

	// Rejections are collected for the report server and optionally
	// logged. The handler runs on worker goroutines in concurrent
	// mode; both sinks are safe for that.
	rejected := &ledger.RejectionLog{}
	onReject := func(e *ledger.TransactionError) {
		rejected.Record(e)
		if *logRejections {
			log.Debug().
				Uint16("client", uint16(e.ClientID)).
				Uint32("tx", uint32(e.TxID)).
				Err(e.Err).
				Msg("transaction rejected")
		}
	}

	var bank ledger.Ledger
	if *concurrent {
		sharded := ledger.NewSharded(*shards, onReject)
		log.Info().Int("shards", sharded.ShardCount()).Msg("processing with sharded ledger")
		bank = sharded
	} else {
		basic := ledger.NewBasic()
		basic.OnReject = onReject
		bank = basic
	}

	reader := csvio.NewReader(input)
	var applied int
	for {
		tx, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read input")
		}
		// Rejections already went through the handler.
		_ = bank.Apply(tx)
		applied++
	}

	snaps := bank.Drain()
	log.Info().
		Int("transactions", applied).
		Int("skipped_rows", reader.Skipped()).
		Int("rejected", rejected.Len()).
		Int("accounts", len(snaps)).
		Msg("batch complete")

	if err := csvio.WriteSnapshots(os.Stdout, snaps); err != nil {
		log.Fatal().Err(err).Msg("failed to write output")
	}

	if *exportPath != "" {
		if err := exportSnapshots(*exportPath, snaps); err != nil {
			log.Fatal().Err(err).Msg("failed to export snapshots")
		}
		log.Info().Str("path", *exportPath).Msg("snapshots exported")
	}

	if *serve {
		serveReport(log, *port, snaps, rejected)
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func exportSnapshots(path string, snaps []ledger.AccountSnapshot) error {
	st, err := sqlite.New(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.ExportSnapshots(context.Background(), snaps)
}

// serveReport blocks serving the finished batch until SIGINT/SIGTERM,
// then shuts down gracefully.
func serveReport(log zerolog.Logger, port int, snaps []ledger.AccountSnapshot, rejected *ledger.RejectionLog) {
	handler := api.NewHandler(snaps, rejected)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", port).Msg("report server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("report server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down report server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("report server forced to shut down")
	}
}
