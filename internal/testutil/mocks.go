// Package testutil holds hand-written repository doubles for service and handler tests.
// Every mock keeps its data in plain maps and exposes ...Fn hooks to override a method.
package testutil

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kantong/kantong-backend/internal/calc"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/websocket"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users     map[string]*domain.User // by auth subject
	ByID      map[uuid.UUID]*domain.User
	CreateFn  func(subject, email string, name, avatarURL *string) (*domain.User, error)
	GetByIDFn func(id uuid.UUID) (*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(id)
	}
	user, ok := m.ByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *MockUserRepository) GetBySubject(subject string) (*domain.User, error) {
	user, ok := m.Users[subject]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *MockUserRepository) UpdateName(subject string, name string) (*domain.User, error) {
	user, ok := m.Users[subject]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Name = &name
	return user, nil
}

func (m *MockUserRepository) CreateOrGetBySubject(subject, email string, name, avatarURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(subject, email, name, avatarURL)
	}
	if user, ok := m.Users[subject]; ok {
		user.Email = email
		if avatarURL != nil {
			user.AvatarURL = avatarURL
		}
		return user, nil
	}
	user := &domain.User{
		ID:          uuid.New(),
		AuthSubject: subject,
		Email:       email,
		Name:        name,
		AvatarURL:   avatarURL,
	}
	m.AddUser(user)
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.AuthSubject] = user
	m.ByID[user.ID] = user
}

// MockWorkspaceRepository is a mock implementation of domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	Workspaces    map[int32]*domain.Workspace
	ByUserID      map[uuid.UUID]*domain.Workspace
	BySubject     map[string]*domain.Workspace
	NextID        int32
	GetByUserIDFn func(userID uuid.UUID) (*domain.Workspace, error)
	CreateFn      func(workspace *domain.Workspace) (*domain.Workspace, error)
}

func NewMockWorkspaceRepository() *MockWorkspaceRepository {
	return &MockWorkspaceRepository{
		Workspaces: make(map[int32]*domain.Workspace),
		ByUserID:   make(map[uuid.UUID]*domain.Workspace),
		BySubject:  make(map[string]*domain.Workspace),
		NextID:     1,
	}
}

func (m *MockWorkspaceRepository) GetByID(id int32) (*domain.Workspace, error) {
	ws, ok := m.Workspaces[id]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	return ws, nil
}

func (m *MockWorkspaceRepository) GetByUserID(userID uuid.UUID) (*domain.Workspace, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(userID)
	}
	ws, ok := m.ByUserID[userID]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	return ws, nil
}

func (m *MockWorkspaceRepository) GetByUserSubject(subject string) (*domain.Workspace, error) {
	ws, ok := m.BySubject[subject]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	return ws, nil
}

func (m *MockWorkspaceRepository) Create(workspace *domain.Workspace) (*domain.Workspace, error) {
	if m.CreateFn != nil {
		return m.CreateFn(workspace)
	}
	workspace.ID = m.NextID
	m.NextID++
	m.Workspaces[workspace.ID] = workspace
	m.ByUserID[workspace.UserID] = workspace
	return workspace, nil
}

// AddWorkspace adds a workspace owned by subject (helper for tests)
func (m *MockWorkspaceRepository) AddWorkspace(workspace *domain.Workspace, subject string) {
	m.Workspaces[workspace.ID] = workspace
	m.ByUserID[workspace.UserID] = workspace
	if subject != "" {
		m.BySubject[subject] = workspace
	}
}

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts          map[int32]*domain.Account
	NextID            int32
	InUse             map[int32]bool
	CreateFn          func(account *domain.Account) (*domain.Account, error)
	GetByIDFn         func(workspaceID int32, id int32) (*domain.Account, error)
	GetAllFn          func(workspaceID int32) ([]*domain.Account, error)
	DeleteFn          func(workspaceID int32, id int32) error
	HasTransactionsFn func(workspaceID int32, id int32) (bool, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int32]*domain.Account),
		InUse:    make(map[int32]bool),
		NextID:   1,
	}
}

func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	if m.CreateFn != nil {
		return m.CreateFn(account)
	}
	account.ID = m.NextID
	m.NextID++
	m.Accounts[account.ID] = account
	return account, nil
}

func (m *MockAccountRepository) GetByID(workspaceID int32, id int32) (*domain.Account, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(workspaceID, id)
	}
	account, ok := m.Accounts[id]
	if !ok || account.WorkspaceID != workspaceID {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

func (m *MockAccountRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Account, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(workspaceID)
	}
	accounts := []*domain.Account{}
	for _, a := range m.Accounts {
		if a.WorkspaceID == workspaceID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (m *MockAccountRepository) Update(workspaceID int32, id int32, name string) (*domain.Account, error) {
	account, err := m.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	account.Name = name
	return account, nil
}

func (m *MockAccountRepository) Delete(workspaceID int32, id int32) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(workspaceID, id)
	}
	if _, err := m.GetByID(workspaceID, id); err != nil {
		return err
	}
	if m.InUse[id] {
		return domain.ErrAccountHasTransactions
	}
	delete(m.Accounts, id)
	return nil
}

func (m *MockAccountRepository) HasTransactions(workspaceID int32, id int32) (bool, error) {
	if m.HasTransactionsFn != nil {
		return m.HasTransactionsFn(workspaceID, id)
	}
	return m.InUse[id], nil
}

// AddAccount adds an account to the mock repository (helper for tests)
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	m.Accounts[account.ID] = account
	if account.ID >= m.NextID {
		m.NextID = account.ID + 1
	}
}

func (m *MockAccountRepository) apply(adjustments []domain.BalanceAdjustment) {
	for _, adj := range adjustments {
		if account, ok := m.Accounts[adj.AccountID]; ok {
			account.Balance = account.Balance.Add(adj.Amount)
		}
	}
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository.
// Balance adjustments are recorded and, when Accounts is set, applied to it.
type MockTransactionRepository struct {
	Transactions  map[int32]*domain.Transaction
	NextID        int32
	Accounts      *MockAccountRepository
	Adjustments   [][]domain.BalanceAdjustment
	CreateFn      func(transaction *domain.Transaction, adjustments []domain.BalanceAdjustment) (*domain.Transaction, error)
	ListInRangeFn func(workspaceID int32, start, end time.Time) ([]*domain.Transaction, error)
	UpdateFn      func(workspaceID int32, id int32, data *domain.UpdateTransactionData, delta domain.BalanceDeltaFunc) (*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
	}
}

func (m *MockTransactionRepository) record(adjustments []domain.BalanceAdjustment) {
	m.Adjustments = append(m.Adjustments, adjustments)
	if m.Accounts != nil {
		m.Accounts.apply(adjustments)
	}
}

func (m *MockTransactionRepository) Create(transaction *domain.Transaction, adjustments []domain.BalanceAdjustment) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction, adjustments)
	}
	transaction.ID = m.NextID
	m.NextID++
	m.Transactions[transaction.ID] = transaction
	m.record(adjustments)
	return transaction, nil
}

func (m *MockTransactionRepository) GetByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	copied := *tx
	return &copied, nil
}

func (m *MockTransactionRepository) byWorkspace(workspaceID int32) []*domain.Transaction {
	var result []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.WorkspaceID == workspaceID {
			result = append(result, tx)
		}
	}
	return result
}

func (m *MockTransactionRepository) GetByWorkspace(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	matched := calc.FilterTransactions(m.byWorkspace(workspaceID), filters)
	var page, pageSize int32
	if filters != nil {
		page, pageSize = filters.Page, filters.PageSize
	}
	return calc.Paginate(matched, page, pageSize), nil
}

func (m *MockTransactionRepository) ListInRange(workspaceID int32, start, end time.Time) ([]*domain.Transaction, error) {
	if m.ListInRangeFn != nil {
		return m.ListInRangeFn(workspaceID, start, end)
	}
	return calc.FilterTransactions(m.byWorkspace(workspaceID), &domain.TransactionFilters{StartDate: &start, EndDate: &end}), nil
}

func (m *MockTransactionRepository) Update(workspaceID int32, id int32, data *domain.UpdateTransactionData, delta domain.BalanceDeltaFunc) (*domain.Transaction, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(workspaceID, id, data, delta)
	}
	tx, ok := m.Transactions[id]
	if !ok || tx.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	before := *tx
	data.Apply(tx)
	var adjustments []domain.BalanceAdjustment
	if delta != nil {
		adjustments = delta(&before, tx)
	}
	m.record(adjustments)
	copied := *tx
	return &copied, nil
}

func (m *MockTransactionRepository) Delete(workspaceID int32, id int32, delta domain.BalanceDeltaFunc) (*domain.Transaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	var adjustments []domain.BalanceAdjustment
	if delta != nil {
		adjustments = delta(tx, nil)
	}
	m.record(adjustments)
	return tx, nil
}

func (m *MockTransactionRepository) SetReceiptURL(workspaceID int32, id int32, url *string) (*domain.Transaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	tx.ReceiptURL = url
	copied := *tx
	return &copied, nil
}

// AddTransaction adds a transaction without touching balances (helper for tests)
func (m *MockTransactionRepository) AddTransaction(tx *domain.Transaction) {
	m.Transactions[tx.ID] = tx
	if tx.ID >= m.NextID {
		m.NextID = tx.ID + 1
	}
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets  map[int32]*domain.Budget
	NextID   int32
	CreateFn func(budget *domain.Budget) (*domain.Budget, error)
	GetAllFn func(workspaceID int32) ([]*domain.Budget, error)
}

func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

func (m *MockBudgetRepository) categoryTaken(workspaceID int32, category string, exceptID int32) bool {
	for _, b := range m.Budgets {
		if b.WorkspaceID == workspaceID && b.Category == category && b.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	if m.CreateFn != nil {
		return m.CreateFn(budget)
	}
	if m.categoryTaken(budget.WorkspaceID, budget.Category, 0) {
		return nil, domain.ErrBudgetCategoryExists
	}
	budget.ID = m.NextID
	m.NextID++
	m.Budgets[budget.ID] = budget
	return budget, nil
}

func (m *MockBudgetRepository) GetByID(workspaceID int32, id int32) (*domain.Budget, error) {
	b, ok := m.Budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return nil, domain.ErrBudgetNotFound
	}
	return b, nil
}

func (m *MockBudgetRepository) GetByCategory(workspaceID int32, category string) (*domain.Budget, error) {
	for _, b := range m.Budgets {
		if b.WorkspaceID == workspaceID && b.Category == category {
			return b, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

func (m *MockBudgetRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Budget, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(workspaceID)
	}
	budgets := []*domain.Budget{}
	for _, b := range m.Budgets {
		if b.WorkspaceID == workspaceID {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Category < budgets[j].Category })
	return budgets, nil
}

func (m *MockBudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	if _, err := m.GetByID(budget.WorkspaceID, budget.ID); err != nil {
		return nil, err
	}
	if m.categoryTaken(budget.WorkspaceID, budget.Category, budget.ID) {
		return nil, domain.ErrBudgetCategoryExists
	}
	m.Budgets[budget.ID] = budget
	return budget, nil
}

func (m *MockBudgetRepository) Delete(workspaceID int32, id int32) error {
	if _, err := m.GetByID(workspaceID, id); err != nil {
		return err
	}
	delete(m.Budgets, id)
	return nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	m.Budgets[budget.ID] = budget
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
}

// MockGoalRepository is a mock implementation of domain.GoalRepository.
// Contribute reads and writes accounts through the given account mock.
type MockGoalRepository struct {
	Goals         map[int32]*domain.Goal
	Contributions []*domain.Contribution
	NextID        int32
	Accounts      *MockAccountRepository
	ContributeFn  func(workspaceID, accountID, goalID int32, note *string, apply domain.ContributionApplier) (*domain.ContributionResult, error)
}

func NewMockGoalRepository(accounts *MockAccountRepository) *MockGoalRepository {
	return &MockGoalRepository{
		Goals:    make(map[int32]*domain.Goal),
		NextID:   1,
		Accounts: accounts,
	}
}

func (m *MockGoalRepository) Create(goal *domain.Goal) (*domain.Goal, error) {
	goal.ID = m.NextID
	m.NextID++
	m.Goals[goal.ID] = goal
	return goal, nil
}

func (m *MockGoalRepository) GetByID(workspaceID int32, id int32) (*domain.Goal, error) {
	g, ok := m.Goals[id]
	if !ok || g.WorkspaceID != workspaceID {
		return nil, domain.ErrGoalNotFound
	}
	copied := *g
	return &copied, nil
}

func (m *MockGoalRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Goal, error) {
	goals := []*domain.Goal{}
	for _, g := range m.Goals {
		if g.WorkspaceID == workspaceID {
			goals = append(goals, g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

func (m *MockGoalRepository) Update(workspaceID int32, id int32, edit domain.GoalEditor) (*domain.Goal, error) {
	goal, err := m.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	if err := edit(goal); err != nil {
		return nil, err
	}
	m.Goals[id] = goal
	copied := *goal
	return &copied, nil
}

func (m *MockGoalRepository) Delete(workspaceID int32, id int32) error {
	if _, err := m.GetByID(workspaceID, id); err != nil {
		return err
	}
	delete(m.Goals, id)
	return nil
}

func (m *MockGoalRepository) Contribute(workspaceID, accountID, goalID int32, note *string, apply domain.ContributionApplier) (*domain.ContributionResult, error) {
	if m.ContributeFn != nil {
		return m.ContributeFn(workspaceID, accountID, goalID, note, apply)
	}
	account, err := m.Accounts.GetByID(workspaceID, accountID)
	if err != nil {
		return nil, err
	}
	goal, err := m.GetByID(workspaceID, goalID)
	if err != nil {
		return nil, err
	}
	accountCopy := *account
	result, err := apply(&accountCopy, goal)
	if err != nil {
		return nil, err
	}

	m.Accounts.Accounts[accountID] = result.Account
	m.Goals[goalID] = result.Goal
	contribution := &domain.Contribution{
		ID:              int32(len(m.Contributions) + 1),
		WorkspaceID:     workspaceID,
		SourceAccountID: accountID,
		GoalID:          goalID,
		Amount:          result.Goal.CurrentAmount.Sub(goal.CurrentAmount),
		Note:            note,
		CreatedAt:       result.Goal.UpdatedAt,
	}
	m.Contributions = append(m.Contributions, contribution)
	result.Contribution = contribution
	return result, nil
}

func (m *MockGoalRepository) GetContributions(workspaceID int32, goalID int32) ([]*domain.Contribution, error) {
	if _, err := m.GetByID(workspaceID, goalID); err != nil {
		return nil, err
	}
	result := []*domain.Contribution{}
	for i := len(m.Contributions) - 1; i >= 0; i-- {
		if m.Contributions[i].GoalID == goalID {
			result = append(result, m.Contributions[i])
		}
	}
	return result, nil
}

// AddGoal adds a goal to the mock repository (helper for tests)
func (m *MockGoalRepository) AddGoal(goal *domain.Goal) {
	m.Goals[goal.ID] = goal
	if goal.ID >= m.NextID {
		m.NextID = goal.ID + 1
	}
}

// MockPreferencesRepository is a mock implementation of domain.PreferencesRepository
type MockPreferencesRepository struct {
	Prefs    map[int32]*domain.Preferences
	UpsertFn func(prefs *domain.Preferences) (*domain.Preferences, error)
}

func NewMockPreferencesRepository() *MockPreferencesRepository {
	return &MockPreferencesRepository{Prefs: make(map[int32]*domain.Preferences)}
}

func (m *MockPreferencesRepository) Get(workspaceID int32) (*domain.Preferences, error) {
	p, ok := m.Prefs[workspaceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *MockPreferencesRepository) Upsert(prefs *domain.Preferences) (*domain.Preferences, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(prefs)
	}
	copied := *prefs
	m.Prefs[prefs.WorkspaceID] = &copied
	return prefs, nil
}

// MockNotificationRepository is a mock implementation of domain.NotificationRepository
type MockNotificationRepository struct {
	mu            sync.Mutex
	Notifications []*domain.Notification
	CreateFn      func(notification *domain.Notification) (*domain.Notification, error)
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(notification *domain.Notification) (*domain.Notification, error) {
	if m.CreateFn != nil {
		return m.CreateFn(notification)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	notification.ID = int32(len(m.Notifications) + 1)
	m.Notifications = append(m.Notifications, notification)
	return notification, nil
}

func (m *MockNotificationRepository) GetByWorkspace(workspaceID int32, unreadOnly bool, limit int32) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.Notification{}
	for i := len(m.Notifications) - 1; i >= 0; i-- {
		n := m.Notifications[i]
		if n.WorkspaceID != workspaceID || (unreadOnly && n.IsRead) {
			continue
		}
		result = append(result, n)
		if limit > 0 && int32(len(result)) == limit {
			break
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) CountUnread(workspaceID int32) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.Notifications {
		if n.WorkspaceID == workspaceID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) MarkRead(workspaceID int32, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.Notifications {
		if n.ID == id && n.WorkspaceID == workspaceID {
			n.IsRead = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (m *MockNotificationRepository) MarkAllRead(workspaceID int32) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.Notifications {
		if n.WorkspaceID == workspaceID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

// MockObjectStore is an in-memory storage.ObjectStore
type MockObjectStore struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	Types    map[string]string
	UploadFn func(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	DeleteFn func(ctx context.Context, objectPath string) error
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

func (m *MockObjectStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadFn != nil {
		return m.UploadFn(ctx, objectPath, data, contentType, size)
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = body
	m.Types[objectPath] = contentType
	return objectPath, nil
}

func (m *MockObjectStore) Delete(ctx context.Context, objectPath string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, objectPath)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	delete(m.Types, objectPath)
	return nil
}

func (m *MockObjectStore) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + objectPath + "?expires=" + expiry.String(), nil
}

// Has reports whether an object exists at objectPath
func (m *MockObjectStore) Has(objectPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[objectPath]
	return ok
}

// MockAlertPublisher records alerts instead of sending them
type MockAlertPublisher struct {
	mu     sync.Mutex
	Alerts []*domain.Alert
	Err    error
}

func (m *MockAlertPublisher) PublishAlert(ctx context.Context, alert *domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Alerts = append(m.Alerts, alert)
	return nil
}

// MockEventPublisher records websocket events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []websocket.Event
}

func (m *MockEventPublisher) Publish(workspaceID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Types returns the published event names in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.Type)
	}
	return types
}
