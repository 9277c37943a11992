package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deshship/courier/internal/server"
	"github.com/deshship/courier/pkg/courier"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "courier",
	Short:   "DeshShip Courier - Multi-courier shipping service for Bangladesh",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var trackCmd = &cobra.Command{
	Use:   "track <tracking-id>",
	Short: "Track a shipment across all registered couriers",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrack,
}

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Estimate a delivery charge",
	RunE:  runRate,
}

func init() {
	rateCmd.Flags().String("courier", "pathao", "courier to quote")
	rateCmd.Flags().String("to-city", "", "destination city ID")
	rateCmd.Flags().String("to-zone", "", "destination zone ID")
	rateCmd.Flags().Float64("weight", 0.5, "parcel weight in kg")
	rateCmd.Flags().Float64("cod", 0, "COD amount to collect")

	rootCmd.AddCommand(serveCmd, trackCmd, rateCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	// Initialize courier manager with all enabled drivers
	manager, err := initManager(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting DeshShip Courier",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("couriers", manager.AvailableCouriers()),
	)

	// Start HTTP server
	srv := server.New(server.Config{Port: cfg.Port}, manager, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	trackingID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	manager, err := initManager(cfg, logger)
	if err != nil {
		return err
	}

	results, errs := manager.TrackAll(ctx, trackingID)
	for name, tracking := range results {
		fmt.Printf("%s: %s (%s)\n", name, tracking.Status, tracking.CourierStatus)
		for _, event := range tracking.History {
			ts := ""
			if event.Timestamp != nil {
				ts = event.Timestamp.Format("2006-01-02 15:04")
			}
			fmt.Printf("  %s  %-16s %s\n", ts, event.Status, event.Description)
		}
	}
	for _, trackErr := range errs {
		fmt.Fprintln(os.Stderr, trackErr)
	}
	if len(results) == 0 {
		return fmt.Errorf("no tracking results for %s", trackingID)
	}
	return nil
}

func buildRateQuery(toCity, toZone string, weight, cod float64) (*courier.Rate, error) {
	if toCity == "" || toZone == "" {
		return nil, fmt.Errorf("both --to-city and --to-zone are required")
	}
	rate := courier.NewRate()
	rate.ToCity = toCity
	rate.ToZone = toZone
	rate.Weight = weight
	rate.CodAmount = cod
	return rate, nil
}

func runRate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	manager, err := initManager(cfg, logger)
	if err != nil {
		return err
	}

	courierName, _ := cmd.Flags().GetString("courier")
	toCity, _ := cmd.Flags().GetString("to-city")
	toZone, _ := cmd.Flags().GetString("to-zone")
	weight, _ := cmd.Flags().GetFloat64("weight")
	cod, _ := cmd.Flags().GetFloat64("cod")

	rate, err := buildRateQuery(toCity, toZone, weight, cod)
	if err != nil {
		return err
	}

	result, err := manager.EstimateRate(ctx, courierName, rate)
	if err != nil {
		return err
	}

	fmt.Printf("Delivery charge: %.2f %s\n", result.DeliveryCharge, result.Currency)
	fmt.Printf("COD charge:      %.2f %s\n", result.CodCharge, result.Currency)
	fmt.Printf("Total:           %.2f %s\n", result.TotalCharge, result.Currency)
	if result.EstimatedDays > 0 {
		fmt.Printf("Estimated days:  %d\n", result.EstimatedDays)
	}
	return nil
}
