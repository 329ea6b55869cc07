package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/kardex-api/internal/app"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// cli estado compartido por los comandos de una ejecución.
type cli struct {
	verbose bool
	printer *message.Printer
}

func newRootCmd() *cobra.Command {
	c := &cli{printer: message.NewPrinter(language.Spanish)}

	root := &cobra.Command{
		Use:           "kardex",
		Short:         "Kardex de inventario con costo promedio ponderado",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "mostrar logs informativos")

	root.AddCommand(
		c.migrateCmd(),
		c.categoryCmd(),
		c.articleCmd(),
		c.movementCmd(),
		c.statementCmd(),
		c.reportCmd(),
		c.tokenCmd(),
	)
	return root
}

// load lee la configuración y arma el logger de la CLI (stderr, warn salvo --verbose).
func (c *cli) load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	level := "warn"
	if c.verbose {
		level = cfg.Log.Level
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Service: "kardex", Out: os.Stderr})
	return cfg, log, nil
}

// services construye los casos de uso. El llamador debe hacer defer svc.Close().
func (c *cli) services(cmd *cobra.Command) (*app.Services, error) {
	cfg, log, err := c.load()
	if err != nil {
		return nil, err
	}
	svc, err := app.Build(cmd.Context(), cfg, log.Zerolog())
	if err != nil {
		return nil, fmt.Errorf("inicializar: %w", err)
	}
	return svc, nil
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplicar las migraciones del almacenamiento configurado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := c.load()
			if err != nil {
				return err
			}
			if err := app.Migrate(cfg, log.Zerolog()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migraciones aplicadas (%s)\n", cfg.Store.Driver)
			return nil
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de formato
// ──────────────────────────────────────────────────────────────────────────────

func (c *cli) table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func (c *cli) qty(n int64) string {
	return c.printer.Sprintf("%d", n)
}

// money imprime con separadores locales; el valor exacto queda en el almacenamiento.
func (c *cli) money(d decimal.Decimal) string {
	return c.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func (c *cli) pct(d decimal.Decimal) string {
	return c.printer.Sprintf("%.2f%%", d.Round(2).InexactFloat64())
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id inválido %q", s)
	}
	return id, nil
}

func parseDecimal(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q no es un número", flag, s)
	}
	return d, nil
}

var whenLayouts = []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

// parseWhen interpreta --date en la zona del inventario; vacío devuelve nil (ahora).
func parseWhen(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("--date: %q no coincide con YYYY-MM-DD[ HH:MM[:SS]]", s)
}
