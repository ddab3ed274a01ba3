// Package memstore implementa los puertos de repositorio en memoria para tests de aplicación y HTTP.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
	"github.com/jhoicas/inventory-alerts/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.NotificationRepository   = (*Notifications)(nil)
	_ repository.ActivityLogRepository    = (*ActivityLogs)(nil)
	_ repository.InventoryLevelRepository = (*Inventory)(nil)
	_ repository.UserRepository           = (*Users)(nil)
)

// ──────────────────────────────────────────────────────────────────────────────
// Notificaciones
// ──────────────────────────────────────────────────────────────────────────────

// Notifications buzón en memoria. Err, si no es nil, se devuelve en todas las operaciones.
type Notifications struct {
	mu    sync.Mutex
	items map[string]*entity.Notification
	Err   error
}

func NewNotifications() *Notifications {
	return &Notifications{items: make(map[string]*entity.Notification)}
}

// Put inserta una notificación tal cual (para preparar escenarios).
func (s *Notifications) Put(n *entity.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.items[n.ID] = &cp
}

// All devuelve una copia de todas las notificaciones almacenadas.
func (s *Notifications) All() []*entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Notification, 0, len(s.items))
	for _, n := range s.items {
		cp := *n
		out = append(out, &cp)
	}
	return out
}

func (s *Notifications) Create(_ context.Context, n *entity.Notification) error {
	if s.Err != nil {
		return s.Err
	}
	s.Put(n)
	return nil
}

func (s *Notifications) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (s *Notifications) ListByUser(_ context.Context, f repository.NotificationFilter) ([]*entity.Notification, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*entity.Notification
	for _, n := range s.items {
		if n.UserID != f.UserID || !n.ExpiresAt.After(f.Now) {
			continue
		}
		if f.UnreadOnly && n.IsRead {
			continue
		}
		cp := *n
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if f.Offset >= len(list) {
		return []*entity.Notification{}, nil
	}
	list = list[f.Offset:]
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}

func (s *Notifications) CountUnread(_ context.Context, userID string, now time.Time) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if n.UserID == userID && !n.IsRead && n.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (s *Notifications) MarkRead(_ context.Context, id, userID string) (*entity.Notification, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok || n.UserID != userID {
		return nil, nil
	}
	n.IsRead = true
	cp := *n
	return &cp, nil
}

func (s *Notifications) MarkAllRead(_ context.Context, userID string, now time.Time) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if n.UserID == userID && !n.IsRead && n.ExpiresAt.After(now) {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (s *Notifications) Delete(_ context.Context, id string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *Notifications) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for id, n := range s.items {
		if !n.ExpiresAt.After(now) {
			delete(s.items, id)
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de actividad
// ──────────────────────────────────────────────────────────────────────────────

// ActivityLogs registro de actividad en memoria; también implementa alerting.TxRunner.
type ActivityLogs struct {
	mu      sync.Mutex
	entries []*entity.ActivityLog
	Err     error
}

func NewActivityLogs() *ActivityLogs {
	return &ActivityLogs{}
}

func (s *ActivityLogs) Append(_ context.Context, e *entity.ActivityLog) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *ActivityLogs) ListRecent(_ context.Context, companyID string, limit int) ([]*entity.ActivityLog, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.ActivityLog, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if s.entries[i].CompanyID != companyID {
			continue
		}
		cp := *s.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Entries copia de las entradas en orden de inserción.
func (s *ActivityLogs) Entries() []*entity.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.ActivityLog, len(s.entries))
	copy(out, s.entries)
	return out
}

// RunActivity ejecuta fn contra un buffer y solo confirma si fn no falla (emula la transacción).
func (s *ActivityLogs) RunActivity(ctx context.Context, fn func(activity repository.ActivityLogRepository) error) error {
	tx := &ActivityLogs{Err: s.Err}
	if err := fn(tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, tx.entries...)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

// StockRow registro de inventario con los datos de producto y bodega ya resueltos.
type StockRow struct {
	CompanyID     string
	ProductID     string
	ProductName   string
	WarehouseID   string
	WarehouseName string
	Quantity      int64
	MinStockLevel int64
	IsActive      bool
}

// Inventory aplica el mismo filtro que la consulta SQL de productos bajo mínimo.
type Inventory struct {
	mu   sync.Mutex
	rows []StockRow
	Err  error
}

func NewInventory(rows ...StockRow) *Inventory {
	return &Inventory{rows: rows}
}

// Set reemplaza la cantidad del par (producto, bodega).
func (s *Inventory) Set(productID, warehouseID string, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ProductID == productID && s.rows[i].WarehouseID == warehouseID {
			s.rows[i].Quantity = qty
		}
	}
}

func (s *Inventory) ListBelowMinStock(_ context.Context) ([]repository.LowStockRow, error) {
	return s.below(func(StockRow) bool { return true })
}

func (s *Inventory) ListBelowMinStockByCompany(_ context.Context, companyID string) ([]repository.LowStockRow, error) {
	return s.below(func(r StockRow) bool { return r.CompanyID == companyID })
}

func (s *Inventory) below(match func(StockRow) bool) ([]repository.LowStockRow, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.LowStockRow
	for _, r := range s.rows {
		if !match(r) {
			continue
		}
		if !r.IsActive || r.Quantity < 0 || r.Quantity >= r.MinStockLevel {
			continue
		}
		out = append(out, repository.LowStockRow{
			CompanyID:     r.CompanyID,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			Quantity:      decimal.NewFromInt(r.Quantity),
			MinStockLevel: r.MinStockLevel,
		})
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

// Users usuarios en memoria.
type Users struct {
	mu    sync.Mutex
	users []*entity.User
	Err   error
}

func NewUsers(users ...*entity.User) *Users {
	return &Users{users: users}
}

func (s *Users) GetByID(_ context.Context, id string) (*entity.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Users) ListActiveByRoles(_ context.Context, companyID string, roles []string) ([]*entity.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.User
	for _, u := range s.users {
		if u.CompanyID != companyID || !u.IsActive() {
			continue
		}
		for _, r := range roles {
			if u.Role == r {
				cp := *u
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}
