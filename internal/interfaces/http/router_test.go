package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/jhoicas/inventory-alerts/internal/application/alerting"
	"github.com/jhoicas/inventory-alerts/internal/application/auth"
	"github.com/jhoicas/inventory-alerts/internal/application/notification"
	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
	"github.com/jhoicas/inventory-alerts/internal/infrastructure/realtime"
	apphttp "github.com/jhoicas/inventory-alerts/internal/interfaces/http"
	"github.com/jhoicas/inventory-alerts/internal/testutil/memstore"
	pkgjwt "github.com/jhoicas/inventory-alerts/pkg/jwt"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de test: router completo sobre repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	otherUserID = "00000000-0000-0000-0000-000000000009"
	productID   = "p0000000-0000-0000-0000-000000000001"
	warehouseID = "w0000000-0000-0000-0000-000000000001"

	// Segunda empresa con su propio producto bajo mínimo.
	rivalCompanyID = "00000000-0000-0000-0000-0000000000c2"
	rivalAdminID   = "00000000-0000-0000-0000-0000000000a2"
	rivalProductID = "p0000000-0000-0000-0000-0000000000b2"

	notifMia   = "20000000-0000-4000-8000-000000000001"
	notifOtra  = "20000000-0000-4000-8000-000000000002"
	notifAjena = "20000000-0000-4000-8000-000000000003"
	notifNoHay = "20000000-0000-4000-8000-0000000000ff"
)

type testEnv struct {
	app      *fiber.App
	store    *memstore.Notifications
	activity *memstore.ActivityLogs
	registry *realtime.Registry
	svc      *notification.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Nop()

	hash, err := bcrypt.GenerateFromPassword([]byte("clave-segura"), bcrypt.MinCost)
	require.NoError(t, err)
	users := memstore.NewUsers(
		&entity.User{ID: testUserID, CompanyID: testCompanyID, Email: "admin@empresa.co", PasswordHash: string(hash),
			Role: entity.RoleAdmin, Status: entity.UserStatusActive},
		&entity.User{ID: otherUserID, CompanyID: testCompanyID, Email: "bodega@empresa.co", PasswordHash: string(hash),
			Role: entity.RoleBodeguero, Status: entity.UserStatusActive},
		&entity.User{ID: rivalAdminID, CompanyID: rivalCompanyID, Email: "admin@rival.co", PasswordHash: string(hash),
			Role: entity.RoleAdmin, Status: entity.UserStatusActive},
	)
	inventory := memstore.NewInventory(
		memstore.StockRow{
			CompanyID: testCompanyID, ProductID: productID, ProductName: "Tornillo",
			WarehouseID: warehouseID, WarehouseName: "Bodega Central",
			Quantity: 0, MinStockLevel: 10, IsActive: true,
		},
		memstore.StockRow{
			CompanyID: rivalCompanyID, ProductID: rivalProductID, ProductName: "Arandela",
			WarehouseID: "w0000000-0000-0000-0000-0000000000b2", WarehouseName: "Bodega Norte",
			Quantity: 2, MinStockLevel: 5, IsActive: true,
		},
	)

	env := &testEnv{
		store:    memstore.NewNotifications(),
		activity: memstore.NewActivityLogs(),
		registry: realtime.NewRegistry(nil, log),
	}
	dispatcher := notification.NewDispatcher(env.registry, 16, nil, log)
	dispatcher.Start(context.Background())
	t.Cleanup(dispatcher.Stop)

	env.svc = notification.NewService(env.store, dispatcher, 0, nil, log)
	engine := alerting.NewEngine(inventory, env.activity, nil, log)
	notifier := alerting.NewNotifier(users, env.svc, 0, nil, log)

	env.app = fiber.New()
	apphttp.Router(env.app, apphttp.RouterDeps{
		AuthUC:        auth.NewAuthUseCase(users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		LowStockUC:    alerting.NewLowStockCheckUseCase(engine, notifier, log),
		Notifications: env.svc,
		Activity:      env.activity,
		Registry:      env.registry,
		JWTSecret:     testJWTSecret,
		Log:           log,
	})
	return env
}

func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	return tokenForCompany(t, userID, testCompanyID, role)
}

func tokenForCompany(t *testing.T, userID, companyID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, companyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (e *testEnv) seed(userID, id string, read bool) {
	now := time.Now().UTC()
	e.store.Put(&entity.Notification{
		ID: id, UserID: userID, Title: "t", Message: "m", NotificationType: entity.NotificationTypeSystem,
		IsRead: read, CreatedAt: now, ExpiresAt: now.AddDate(0, 0, 7),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Alertas
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckLowStock_AdminDisparaAlertasYNotificaciones(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodPost, "/api/alerts/check-low-stock", tokenFor(t, testUserID, "admin"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var body struct {
		AlertsCreated        int `json:"alerts_created"`
		NotificationsCreated int `json:"notifications_created"`
		Details              []struct {
			ProductID string `json:"product_id"`
			Shortage  int64  `json:"shortage"`
			Severity  string `json:"severity"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, 1, body.AlertsCreated)
	assert.Equal(t, 2, body.NotificationsCreated, "admin y bodeguero de la empresa")
	require.Len(t, body.Details, 1)
	assert.Equal(t, productID, body.Details[0].ProductID)
	assert.Equal(t, int64(10), body.Details[0].Shortage)
	assert.Equal(t, "critical", body.Details[0].Severity)

	assert.Len(t, env.activity.Entries(), 2, "la revisión cubre todas las empresas")
	assert.Len(t, env.store.All(), 3, "cada empresa notifica a sus responsables")
}

func TestCheckLowStock_VendedorNoAutorizado(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/alerts/check-low-stock", tokenFor(t, testUserID, "vendedor"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, env.activity.Entries())
}

func TestLowStockItems_SoloLectura(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodGet, "/api/alerts/low-stock-items", tokenFor(t, testUserID, "vendedor"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(raw, &items), "la respuesta es un arreglo")
	require.Len(t, items, 1)
	assert.Equal(t, productID, items[0]["product_id"])
	assert.Empty(t, env.activity.Entries(), "la consulta no registra actividad")
	assert.Empty(t, env.store.All())
}

func TestAlertas_AcotadasALaEmpresaDelUsuario(t *testing.T) {
	env := newTestEnv(t)
	rival := tokenForCompany(t, rivalAdminID, rivalCompanyID, "admin")

	resp, raw := env.do(t, http.MethodGet, "/api/alerts/low-stock-items", rival, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(raw, &items))
	require.Len(t, items, 1)
	assert.Equal(t, rivalProductID, items[0]["product_id"])
	assert.NotContains(t, string(raw), "Tornillo")

	resp, raw = env.do(t, http.MethodPost, "/api/alerts/check-low-stock", rival, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var body struct {
		AlertsCreated        int `json:"alerts_created"`
		NotificationsCreated int `json:"notifications_created"`
		Details              []struct {
			ProductID string `json:"product_id"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, 1, body.AlertsCreated)
	assert.Equal(t, 1, body.NotificationsCreated, "solo el admin de su empresa")
	require.Len(t, body.Details, 1)
	assert.Equal(t, rivalProductID, body.Details[0].ProductID)

	resp, raw = env.do(t, http.MethodGet, "/api/activity", rival, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var activity []map[string]any
	require.NoError(t, json.Unmarshal(raw, &activity))
	require.Len(t, activity, 1)
	assert.Equal(t, "Arandela - Bodega Norte", activity[0]["item_name"])

	resp, raw = env.do(t, http.MethodGet, "/api/alerts/low-stock-items",
		tokenForCompany(t, "00000000-0000-0000-0000-0000000000e1", "otra-empresa", "admin"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(raw), "una empresa sin productos no ve nada")
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/alerts/low-stock-items", "/api/notifications", "/api/activity", "/api/ws/stats"} {
		resp, _ := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Notificaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestNotifications_FlujoDeLectura(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, testUserID, "admin")
	env.seed(testUserID, notifMia, false)
	env.seed(testUserID, notifOtra, false)
	env.seed(otherUserID, notifAjena, false)

	resp, raw := env.do(t, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list, 2)

	resp, raw = env.do(t, http.MethodGet, "/api/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"unread_count":2}`, string(raw))

	resp, raw = env.do(t, http.MethodPut, "/api/notifications/"+notifMia+"/read", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var read map[string]any
	require.NoError(t, json.Unmarshal(raw, &read))
	assert.Equal(t, true, read["is_read"])

	resp, raw = env.do(t, http.MethodGet, "/api/notifications?unread_only=true", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, notifOtra, list[0]["id"])

	resp, raw = env.do(t, http.MethodPut, "/api/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"count":1`)

	other, _ := env.store.GetByID(context.Background(), notifAjena)
	assert.False(t, other.IsRead)
}

func TestNotifications_MarcarAjenaEsNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.seed(otherUserID, notifAjena, false)

	resp, raw := env.do(t, http.MethodPut, "/api/notifications/"+notifAjena+"/read", tokenFor(t, testUserID, "admin"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "NOT_FOUND")

	n, _ := env.store.GetByID(context.Background(), notifAjena)
	assert.False(t, n.IsRead)
}

func TestNotifications_IdMalFormadoEsNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, testUserID, "admin")
	env.store.Err = errors.New("el repositorio no debe consultarse")

	resp, raw := env.do(t, http.MethodPut, "/api/notifications/abc/read", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "NOT_FOUND")

	resp, raw = env.do(t, http.MethodDelete, "/api/notifications/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "NOT_FOUND")
}

func TestNotifications_Eliminar(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, testUserID, "admin")
	env.seed(testUserID, notifMia, false)
	env.seed(otherUserID, notifAjena, false)

	resp, _ := env.do(t, http.MethodDelete, "/api/notifications/"+notifNoHay, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/notifications/"+notifAjena, token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/notifications/"+notifMia, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, env.store.All(), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Actividad, login y estadísticas
// ──────────────────────────────────────────────────────────────────────────────

func TestActivity_RecienteConLimite(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, testUserID, "admin")
	env.do(t, http.MethodPost, "/api/alerts/check-low-stock", token, nil)
	env.do(t, http.MethodPost, "/api/alerts/check-low-stock", token, nil)

	resp, raw := env.do(t, http.MethodGet, "/api/activity?limit=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "alert", list[0]["activity_type"])
	assert.Equal(t, "缺货警报", list[0]["action"])
	assert.Nil(t, list[0]["user_id"])
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodPost, "/api/auth/login", "",
		strings.NewReader(`{"email":"admin@empresa.co","password":"clave-segura"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	claims, err := pkgjwt.Parse(testJWTSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/login", "",
		strings.NewReader(`{"email":"admin@empresa.co","password":"otra"}`))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSStats_SoloAdmin(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/ws/stats", tokenFor(t, testUserID, "bodeguero"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := env.do(t, http.MethodGet, "/api/ws/stats", tokenFor(t, testUserID, "admin"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"connected_users":[],"total_users":0,"total_connections":0,"per_user":{}}`, string(raw))
}

func TestWS_SinUpgradeRetorna426(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/ws/notifications?token="+tokenFor(t, testUserID, "admin"), "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Websocket extremo a extremo
// ──────────────────────────────────────────────────────────────────────────────

func startServer(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return ln.Addr().String()
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

func TestWS_HandshakePingYPush(t *testing.T) {
	env := newTestEnv(t)
	addr := startServer(t, env.app)

	url := "ws://" + addr + "/api/ws/notifications?token=" + tokenFor(t, testUserID, "vendedor")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	hello := readFrame(t, conn)
	assert.Equal(t, "connection", hello["type"])
	assert.Equal(t, testUserID, hello["data"].(map[string]any)["user_id"])
	assert.Equal(t, 1, env.registry.ConnectionCount(testUserID))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	pong := readFrame(t, conn)
	assert.Equal(t, "pong", pong["type"])

	ref := productID
	refType := "product"
	_, err = env.svc.Create(context.Background(), notification.CreateInput{
		UserID: testUserID, Title: "Stock bajo", Message: "Tornillo en Bodega Central",
		NotificationType: entity.NotificationTypeAlert, ReferenceID: &ref, ReferenceType: &refType,
	})
	require.NoError(t, err)

	push := readFrame(t, conn)
	assert.Equal(t, "notification", push["type"])
	data := push["data"].(map[string]any)
	assert.Equal(t, "Stock bajo", data["title"])
	assert.Equal(t, "alert", data["notification_type"])
	assert.Equal(t, productID, data["reference_id"])

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return env.registry.ConnectionCount(testUserID) == 0 },
		3*time.Second, 20*time.Millisecond, "el canal se retira al desconectar")
}

func TestWS_TokenInvalidoRechazaHandshake(t *testing.T) {
	env := newTestEnv(t)
	addr := startServer(t, env.app)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/ws/notifications?token=basura", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
