package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/kardex-api/internal/application/report"
	pkgjwt "github.com/jhoicas/kardex-api/pkg/jwt"
)

func (c *cli) statementCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statement ARTICULO_ID",
		Short: "Kardex del artículo con acumulados por movimiento",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			st, err := svc.Reports.Statement(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n\n", st.Article.Name, st.Article.Category)
			w := c.table(out)
			fmt.Fprintln(w, "FECHA\tDIRECCIÓN\tCANTIDAD\tCOSTO\tVALOR MOV.\tEXISTENCIA\tCOSTO PROM.\tVALOR")
			for _, l := range st.Lines {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					l.OccurredAt.In(svc.Location).Format("2006-01-02 15:04"), l.Direction,
					c.qty(l.Quantity), c.money(l.UnitCost), c.money(l.MovementValue),
					c.qty(l.RunningQuantity), c.money(l.AverageCost), c.money(l.StockValue))
			}
			return w.Flush()
		},
	}
}

func (c *cli) reportCmd() *cobra.Command {
	var start, end string
	var articleID int64
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Reporte detallado de entradas y salidas en un período",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			var filter *int64
			if cmd.Flags().Changed("article") {
				filter = &articleID
			}
			q, err := report.NewReportQuery(start, end, filter, svc.Location)
			if err != nil {
				return err
			}
			rows, err := svc.Reports.DetailedReport(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Sin artículos para el período.")
				return nil
			}
			w := c.table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNOMBRE\tCATEGORÍA\tENTRADAS\tSALIDAS\t% SALIDA\tCOSTO PROM.")
			for _, r := range rows {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ArticleID, r.Name, r.Category, c.qty(r.TotalEntries), c.qty(r.TotalExits),
					c.pct(r.ExitPercentage), c.money(r.AverageCost))
			}
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&start, "start", "", "inicio YYYY-MM-DD")
	f.StringVar(&end, "end", "", "fin YYYY-MM-DD (inclusive)")
	f.Int64Var(&articleID, "article", 0, "solo este artículo")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func (c *cli) tokenCmd() *cobra.Command {
	var operator, role string
	var minutes int
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emitir un token Bearer de operador para la API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := c.load()
			if err != nil {
				return err
			}
			signer, err := pkgjwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer)
			if err != nil {
				return err
			}
			if minutes <= 0 {
				minutes = cfg.JWT.Expiration
			}
			tok, claims, err := signer.Issue(operator, role, time.Duration(minutes)*time.Minute)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "jti: %s  vence: %s\n",
				claims.ID, claims.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&operator, "operator", "", "operador dueño del token")
	f.StringVar(&role, "role", pkgjwt.RoleConsulta, "admin|bodeguero|consulta")
	f.IntVar(&minutes, "minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}
