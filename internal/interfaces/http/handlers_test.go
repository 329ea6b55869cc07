package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/report"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/kardex-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba sobre el almacenamiento en memoria
// ──────────────────────────────────────────────────────────────────────────────

var (
	caracas  = time.FixedZone("VET", -4*60*60)
	fixedNow = time.Date(2024, 6, 10, 12, 0, 0, 0, caracas)
)

type testServer struct {
	t   *testing.T
	app *fiber.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	cache := memory.NewValuationCache(time.Minute)
	invUC := inventory.NewInventoryUseCase(memory.NewTxRunner(store),
		store.CategoryRepository(), store.ArticleRepository(), store.MovementRepository(),
		cache, caracas, zerolog.Nop())
	invUC.SetClock(func() time.Time { return fixedNow })
	reportUC := report.NewReportUseCase(store.ArticleRepository(), store.MovementRepository(), cache, zerolog.Nop())

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		InventoryUC: invUC,
		ReportUC:    reportUC,
		Tokens:      testSigner,
		Location:    caracas,
		Logger:      zerolog.Nop(),
		ServiceName: "kardex-test",
	})
	return &testServer{t: t, app: app}
}

// do envía la petición con un token del rol indicado; role vacío omite el header.
func (s *testServer) do(method, path, role string, body any) (int, []byte) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(s.t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "esperado %s, obtenido %s", want, got)
}

// seedArticle crea un artículo con su entrada inicial y devuelve el ID.
func (s *testServer) seedArticle(name, category string, qty int64, cost string) int64 {
	s.t.Helper()
	status, raw := s.do(http.MethodPost, "/api/articles", "admin", map[string]any{
		"name": name, "category": category, "quantity": qty, "cost": cost,
		"occurred_at": "2024-06-03T10:00:00-04:00",
	})
	require.Equal(s.t, http.StatusCreated, status, string(raw))
	return decode[dto.ArticleResponse](s.t, raw).ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Health y autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth_PublicoConRequestID(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))
}

func TestRequestID_RespetaElDelCliente(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(apphttp.HeaderRequestID, "abc-123")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get(apphttp.HeaderRequestID))
}

func TestAPI_SinToken_Retorna401(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(http.MethodGet, "/api/articles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_ConsultaNoPuedeEscribir(t *testing.T) {
	s := newTestServer(t)
	status, raw := s.do(http.MethodPost, "/api/articles", "consulta", map[string]any{
		"name": "Tornillo", "category": "Ferretería", "quantity": 1, "cost": "1",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(raw), "FORBIDDEN")

	status, _ = s.do(http.MethodGet, "/api/articles", "consulta", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_BodegueroNoAdministraCategorias(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(http.MethodPost, "/api/categories", "bodeguero", map[string]string{"name": "Pinturas"})
	assert.Equal(t, http.StatusForbidden, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Artículos y movimientos
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: 10 @ 10 + 10 @ 20 → promedio 15; salida de 5 sin unit_cost toma el promedio.
func TestMovimientos_SalidaSinCostoUsaPromedio(t *testing.T) {
	s := newTestServer(t)
	id := s.seedArticle("Tornillo", "Ferretería", 10, "10")

	status, raw := s.do(http.MethodPost, fmt.Sprintf("/api/articles/%d/movements", id), "bodeguero", map[string]any{
		"description": "Compra", "direction": "entry", "quantity": 10, "unit_cost": "20",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = s.do(http.MethodPost, fmt.Sprintf("/api/articles/%d/movements", id), "bodeguero", map[string]any{
		"description": "Venta", "direction": "salida", "quantity": 5,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	exit := decode[dto.MovementResponse](t, raw)
	assert.Equal(t, "exit", exit.Direction)
	assertDecimal(t, "15", exit.UnitCost)
	assertDecimal(t, "75", exit.TotalCost)

	status, raw = s.do(http.MethodGet, fmt.Sprintf("/api/articles/%d", id), "consulta", nil)
	require.Equal(t, http.StatusOK, status)
	summary := decode[dto.ArticleSummary](t, raw)
	assert.Equal(t, int64(15), summary.CurrentQuantity)
	assertDecimal(t, "15", summary.AverageCost)
	assertDecimal(t, "225", summary.StockValue)

	status, raw = s.do(http.MethodGet, fmt.Sprintf("/api/articles/%d/movements", id), "consulta", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.ListResponse[dto.MovementResponse]](t, raw)
	assert.Equal(t, 3, list.Total)
}

func TestMovimientos_EntradaSinCosto_Retorna400(t *testing.T) {
	s := newTestServer(t)
	id := s.seedArticle("Tornillo", "Ferretería", 10, "10")

	status, raw := s.do(http.MethodPost, fmt.Sprintf("/api/articles/%d/movements", id), "admin", map[string]any{
		"direction": "entry", "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), "VALIDATION")
}

func TestMovimientos_DireccionInvalida_Retorna400(t *testing.T) {
	s := newTestServer(t)
	id := s.seedArticle("Tornillo", "Ferretería", 10, "10")

	status, _ := s.do(http.MethodPost, fmt.Sprintf("/api/articles/%d/movements", id), "admin", map[string]any{
		"direction": "transfer", "quantity": 1, "unit_cost": "1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMovimientos_ArticuloInexistente_Retorna404(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(http.MethodPost, "/api/articles/99/movements", "admin", map[string]any{
		"direction": "exit", "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(http.MethodGet, "/api/articles/99", "admin", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestArticulos_IDInvalido_Retorna400(t *testing.T) {
	s := newTestServer(t)
	status, raw := s.do(http.MethodGet, "/api/articles/abc", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), "INVALID_PARAM")
}

func TestArticulos_ListarPorCategoria(t *testing.T) {
	s := newTestServer(t)
	s.seedArticle("Tornillo", "Ferretería", 10, "10")
	s.seedArticle("Café", "Víveres", 4, "3.5")

	status, raw := s.do(http.MethodGet, "/api/articles?category=V%C3%ADveres", "consulta", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.ListResponse[dto.ArticleSummary]](t, raw)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Café", list.Items[0].Name)
	assertDecimal(t, "14", list.Items[0].StockValue)
}

func TestArticulos_ActualizarCamposNominalesNoAlteraValoracion(t *testing.T) {
	s := newTestServer(t)
	id := s.seedArticle("Tornillo", "Ferretería", 10, "10")

	status, raw := s.do(http.MethodPut, fmt.Sprintf("/api/articles/%d", id), "bodeguero", map[string]any{
		"name": "Tornillo 3/8", "quantity": 500, "cost": "1",
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "Tornillo 3/8", decode[dto.ArticleResponse](t, raw).Name)

	_, raw = s.do(http.MethodGet, fmt.Sprintf("/api/articles/%d", id), "consulta", nil)
	summary := decode[dto.ArticleSummary](t, raw)
	assert.Equal(t, int64(10), summary.CurrentQuantity)
	assertDecimal(t, "10", summary.AverageCost)
}

func TestArticulos_EliminarBorraSuLibro(t *testing.T) {
	s := newTestServer(t)
	id := s.seedArticle("Tornillo", "Ferretería", 10, "10")

	status, _ := s.do(http.MethodDelete, fmt.Sprintf("/api/articles/%d", id), "bodeguero", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(http.MethodGet, fmt.Sprintf("/api/articles/%d/movements", id), "admin", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMovimientos_EliminarRecalculaValoracion(t *testing.T) {
	s := newTestServer(t)
	id := s.seedArticle("Tornillo", "Ferretería", 10, "10")
	_, raw := s.do(http.MethodPost, fmt.Sprintf("/api/articles/%d/movements", id), "admin", map[string]any{
		"direction": "entry", "quantity": 10, "unit_cost": "20",
	})
	mov := decode[dto.MovementResponse](t, raw)

	// Calienta la caché antes de borrar.
	_, raw = s.do(http.MethodGet, fmt.Sprintf("/api/articles/%d", id), "admin", nil)
	assertDecimal(t, "15", decode[dto.ArticleSummary](t, raw).AverageCost)

	status, _ := s.do(http.MethodDelete, fmt.Sprintf("/api/movements/%d", mov.ID), "bodeguero", nil)
	require.Equal(t, http.StatusNoContent, status)

	_, raw = s.do(http.MethodGet, fmt.Sprintf("/api/articles/%d", id), "admin", nil)
	summary := decode[dto.ArticleSummary](t, raw)
	assert.Equal(t, int64(10), summary.CurrentQuantity)
	assertDecimal(t, "10", summary.AverageCost)

	status, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/movements/%d", mov.ID), "bodeguero", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestCategorias_CrearDuplicada_Retorna409(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(http.MethodPost, "/api/categories", "admin", map[string]string{"name": "Pinturas"})
	require.Equal(t, http.StatusCreated, status)

	status, raw := s.do(http.MethodPost, "/api/categories", "admin", map[string]string{"name": " Pinturas "})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(raw), "DUPLICATE")
}

func TestCategorias_EliminarEnUso_Retorna409(t *testing.T) {
	s := newTestServer(t)
	s.seedArticle("Tornillo", "Ferretería", 10, "10")

	status, raw := s.do(http.MethodDelete, "/api/categories/Ferreter%C3%ADa", "admin", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(raw), "CATEGORY_IN_USE")
}

func TestCategorias_RenombrarMueveArticulos(t *testing.T) {
	s := newTestServer(t)
	id := s.seedArticle("Tornillo", "Ferretería", 10, "10")

	status, raw := s.do(http.MethodPut, "/api/categories/Ferreter%C3%ADa", "admin", map[string]string{"name": "Herrajes"})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "Herrajes", decode[dto.CategoryResponse](t, raw).Name)

	_, raw = s.do(http.MethodGet, fmt.Sprintf("/api/articles/%d", id), "consulta", nil)
	assert.Equal(t, "Herrajes", decode[dto.ArticleSummary](t, raw).Category)

	_, raw = s.do(http.MethodGet, "/api/categories", "consulta", nil)
	list := decode[dto.ListResponse[dto.CategoryResponse]](t, raw)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Herrajes", list.Items[0].Name)

	status, _ = s.do(http.MethodDelete, "/api/categories/Ferreter%C3%ADa", "admin", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestReporteDetallado_PeriodoConFechasLocales(t *testing.T) {
	s := newTestServer(t)
	id := s.seedArticle("Tornillo", "Ferretería", 10, "10")
	s.do(http.MethodPost, fmt.Sprintf("/api/articles/%d/movements", id), "admin", map[string]any{
		"direction": "exit", "quantity": 4, "unit_cost": "10",
		"occurred_at": "2024-06-30T23:30:00-04:00",
	})
	// Fuera del período: 1 de julio hora local.
	s.do(http.MethodPost, fmt.Sprintf("/api/articles/%d/movements", id), "admin", map[string]any{
		"direction": "exit", "quantity": 1, "unit_cost": "10",
		"occurred_at": "2024-07-01T00:00:00-04:00",
	})

	status, raw := s.do(http.MethodGet, "/api/reports/detailed?start=2024-06-01&end=2024-06-30", "consulta", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	out := decode[dto.DetailedReportResponse](t, raw)
	require.Len(t, out.Items, 1)
	row := out.Items[0]
	assert.Equal(t, int64(10), row.TotalEntries)
	assert.Equal(t, int64(4), row.TotalExits)
	assertDecimal(t, "40", row.ExitPercentage)
	assertDecimal(t, "10", row.AverageCost)
}

func TestReporteDetallado_FiltroPorArticuloInexistente_ListaVacia(t *testing.T) {
	s := newTestServer(t)
	s.seedArticle("Tornillo", "Ferretería", 10, "10")

	status, raw := s.do(http.MethodGet, "/api/reports/detailed?start=2024-06-01&end=2024-06-30&article_id=42", "consulta", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[dto.DetailedReportResponse](t, raw).Items)
}

func TestReporteDetallado_ErroresDeQuery(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(http.MethodGet, "/api/reports/detailed?start=2024-06-30&end=2024-06-01", "consulta", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), "INVALID_RANGE")

	status, raw = s.do(http.MethodGet, "/api/reports/detailed?start=30/06/2024&end=2024-06-01", "consulta", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), "VALIDATION")

	status, _ = s.do(http.MethodGet, "/api/reports/detailed?start=2024-06-01&end=2024-06-30&article_id=x", "consulta", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestKardex_AcumuladosPorLinea(t *testing.T) {
	s := newTestServer(t)
	id := s.seedArticle("Tornillo", "Ferretería", 10, "10")
	s.do(http.MethodPost, fmt.Sprintf("/api/articles/%d/movements", id), "admin", map[string]any{
		"direction": "entry", "quantity": 10, "unit_cost": "20",
	})

	status, raw := s.do(http.MethodGet, fmt.Sprintf("/api/articles/%d/statement", id), "consulta", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	st := decode[dto.StatementResponse](t, raw)
	require.Len(t, st.Lines, 2)
	assert.Equal(t, int64(10), st.Lines[0].RunningQuantity)
	assert.Equal(t, int64(20), st.Lines[1].RunningQuantity)
	assertDecimal(t, "15", st.Lines[1].AverageCost)
	assertDecimal(t, "300", st.Lines[1].StockValue)
	assert.Equal(t, int64(20), st.Article.CurrentQuantity)
}

