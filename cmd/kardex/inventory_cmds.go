package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// category
// ──────────────────────────────────────────────────────────────────────────────

func (c *cli) categoryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "category", Short: "Administrar categorías"}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NOMBRE",
		Short: "Crear categoría",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			out, err := svc.Inventory.CreateCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categoría creada: %s\n", out.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Listar categorías",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			list, err := svc.Inventory.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No hay categorías.")
				return nil
			}
			for _, cat := range list {
				fmt.Fprintln(cmd.OutOrStdout(), cat.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename ACTUAL NUEVO",
		Short: "Renombrar categoría y mover sus artículos",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			out, err := svc.Inventory.RenameCategory(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categoría renombrada: %s\n", out.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete NOMBRE",
		Short: "Eliminar categoría sin artículos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := svc.Inventory.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categoría eliminada: %s\n", args[0])
			return nil
		},
	})
	return cmd
}

// ──────────────────────────────────────────────────────────────────────────────
// article
// ──────────────────────────────────────────────────────────────────────────────

func (c *cli) articleCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "article", Short: "Administrar artículos"}
	cmd.AddCommand(c.articleAddCmd(), c.articleListCmd(), c.articleShowCmd(), c.articleUpdateCmd(), c.articleDeleteCmd())
	return cmd
}

func (c *cli) articleAddCmd() *cobra.Command {
	var name, category, cost, barcode, date string
	var quantity int64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Crear artículo con su entrada inicial",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			unitCost, err := parseDecimal("cost", cost)
			if err != nil {
				return err
			}
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			when, err := parseWhen(date, svc.Location)
			if err != nil {
				return err
			}
			out, err := svc.Inventory.CreateArticle(cmd.Context(), inventory.CreateArticleInput{
				Name:       name,
				Category:   category,
				Quantity:   quantity,
				Cost:       unitCost,
				Barcode:    barcode,
				OccurredAt: when,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Artículo %d creado: %s (%s)\n", out.ID, out.Name, out.Category)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "nombre del artículo")
	f.StringVar(&category, "category", "", "categoría (se crea si no existe)")
	f.Int64Var(&quantity, "quantity", 0, "cantidad inicial")
	f.StringVar(&cost, "cost", "0", "costo unitario inicial")
	f.StringVar(&barcode, "barcode", "", "código de barras")
	f.StringVar(&date, "date", "", "fecha de la entrada inicial (YYYY-MM-DD[ HH:MM])")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (c *cli) articleListCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Listar artículos con existencia y costo promedio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			list, err := svc.Reports.ListArticles(cmd.Context(), category)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No hay artículos.")
				return nil
			}
			w := c.table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNOMBRE\tCATEGORÍA\tEXISTENCIA\tCOSTO PROM.\tVALOR")
			for _, a := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Name, a.Category, c.qty(a.CurrentQuantity), c.money(a.AverageCost), c.money(a.StockValue))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filtrar por categoría")
	return cmd
}

func (c *cli) articleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Ver un artículo valorado",
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
			a, err := svc.Reports.ArticleSummary(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %d\n", a.ID)
			fmt.Fprintf(out, "Nombre:      %s\n", a.Name)
			fmt.Fprintf(out, "Categoría:   %s\n", a.Category)
			if a.Barcode != "" {
				fmt.Fprintf(out, "Código:      %s\n", a.Barcode)
			}
			fmt.Fprintf(out, "Existencia:  %s\n", c.qty(a.CurrentQuantity))
			fmt.Fprintf(out, "Costo prom.: %s\n", c.money(a.AverageCost))
			fmt.Fprintf(out, "Valor:       %s\n", c.money(a.StockValue))
			return nil
		},
	}
}

func (c *cli) articleUpdateCmd() *cobra.Command {
	var name, category, cost, barcode string
	var quantity int64
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Modificar datos del artículo (quantity y cost son nominales)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var in inventory.UpdateArticleInput
			f := cmd.Flags()
			if f.Changed("name") {
				in.Name = &name
			}
			if f.Changed("category") {
				in.Category = &category
			}
			if f.Changed("quantity") {
				in.Quantity = &quantity
			}
			if f.Changed("cost") {
				d, err := parseDecimal("cost", cost)
				if err != nil {
					return err
				}
				in.Cost = &d
			}
			if f.Changed("barcode") {
				in.Barcode = &barcode
			}
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			out, err := svc.Inventory.UpdateArticle(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Artículo %d actualizado: %s (%s)\n", out.ID, out.Name, out.Category)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "nuevo nombre")
	f.StringVar(&category, "category", "", "nueva categoría")
	f.Int64Var(&quantity, "quantity", 0, "cantidad nominal")
	f.StringVar(&cost, "cost", "", "costo nominal")
	f.StringVar(&barcode, "barcode", "", "código de barras")
	return cmd
}

func (c *cli) articleDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Eliminar artículo y todos sus movimientos",
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
			if err := svc.Inventory.DeleteArticle(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Artículo %d eliminado\n", id)
			return nil
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// movement
// ──────────────────────────────────────────────────────────────────────────────

func (c *cli) movementCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "movement", Short: "Registrar y consultar movimientos"}
	cmd.AddCommand(c.movementAddCmd(), c.movementListCmd(), c.movementDeleteCmd())
	return cmd
}

func (c *cli) movementAddCmd() *cobra.Command {
	var direction, cost, description, date string
	var quantity int64
	cmd := &cobra.Command{
		Use:   "add ARTICULO_ID",
		Short: "Registrar entrada o salida; una salida sin --cost usa el costo promedio vigente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			articleID, err := parseID(args[0])
			if err != nil {
				return err
			}
			dir, err := entity.ParseDirection(direction)
			if err != nil {
				return err
			}
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			in := inventory.RegisterMovementInput{
				ArticleID:   articleID,
				Description: description,
				Direction:   dir,
				Quantity:    quantity,
			}
			switch {
			case cost != "":
				if in.UnitCost, err = parseDecimal("cost", cost); err != nil {
					return err
				}
			case dir.IsEntry():
				return fmt.Errorf("--cost es requerido en entradas")
			default:
				if in.UnitCost, err = svc.Reports.CurrentAverageCost(cmd.Context(), articleID); err != nil {
					return err
				}
			}
			if in.OccurredAt, err = parseWhen(date, svc.Location); err != nil {
				return err
			}

			out, err := svc.Inventory.RegisterMovement(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Movimiento %d: %s %s x %s = %s\n",
				out.ID, out.Direction, c.qty(out.Quantity), c.money(out.UnitCost), c.money(out.TotalCost))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&direction, "direction", "d", "", "entry|exit (también entrada|salida)")
	f.Int64VarP(&quantity, "quantity", "q", 0, "cantidad")
	f.StringVar(&cost, "cost", "", "costo unitario")
	f.StringVar(&description, "description", "", "descripción")
	f.StringVar(&date, "date", "", "fecha (YYYY-MM-DD[ HH:MM]); por defecto ahora")
	_ = cmd.MarkFlagRequired("direction")
	return cmd
}

func (c *cli) movementListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list ARTICULO_ID",
		Short: "Listar el libro de movimientos del artículo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			articleID, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			list, err := svc.Inventory.ListMovements(cmd.Context(), articleID)
			if err != nil {
				return err
			}
			w := c.table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tFECHA\tDIRECCIÓN\tCANTIDAD\tCOSTO\tTOTAL\tDESCRIPCIÓN")
			for _, m := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					m.ID, m.OccurredAt.In(svc.Location).Format("2006-01-02 15:04"), m.Direction,
					c.qty(m.Quantity), c.money(m.UnitCost), c.money(m.TotalCost), m.Description)
			}
			return w.Flush()
		},
	}
}

func (c *cli) movementDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Eliminar un movimiento",
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
			if err := svc.Inventory.DeleteMovement(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Movimiento %d eliminado\n", id)
			return nil
		},
	}
}
