package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yungbote/kgcontent-backend/internal/app"
	"github.com/yungbote/kgcontent-backend/internal/services"
)

func main() {
	var (
		op          string
		in          string
		showMetrics bool
	)
	flag.StringVar(&op, "op", "", "operation to run ("+strings.Join(services.Operations, ", ")+")")
	flag.StringVar(&in, "in", "-", "JSON command file, - for stdin")
	flag.BoolVar(&showMetrics, "metrics", false, "print the Prometheus exposition after the run")
	flag.Parse()

	if strings.TrimSpace(op) == "" {
		fmt.Fprintln(os.Stderr, "missing -op")
		flag.Usage()
		os.Exit(2)
	}

	payload, err := readInput(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read command: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close(context.Background())

	id, err := services.Dispatch(ctx, application.Services.Content, op, payload)
	if err != nil {
		application.Log.Error("operation failed", "operation", op, "error", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", op, err)
		application.Close(context.Background())
		os.Exit(1)
	}
	fmt.Println(id)

	if showMetrics {
		if application.Metrics == nil {
			fmt.Fprintln(os.Stderr, "metrics disabled; set METRICS_ENABLED=true")
			return
		}
		if err := application.Metrics.WritePrometheus(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "write metrics: %v\n", err)
		}
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
