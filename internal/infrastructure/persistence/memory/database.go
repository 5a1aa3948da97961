package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/domain/user"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
)

type planRecord struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	startDate time.Time
	days      int
	createdAt time.Time
	items     []mealplan.MealPlanItem
}

// Database is the shared state behind the in-memory repositories.
// A single mutex makes every multi-row write atomic.
type Database struct {
	mu sync.RWMutex

	recipes    map[uuid.UUID]mealplan.Recipe
	users      map[uuid.UUID]*user.User
	plans      map[uuid.UUID]*planRecord
	lists      map[uuid.UUID]*shopping.List
	listByPlan map[uuid.UUID]uuid.UUID
	itemToList map[uuid.UUID]uuid.UUID
	baselines  []shopping.PriceBaseline
}

// NewDatabase creates an empty in-memory database
func NewDatabase() *Database {
	return &Database{
		recipes:    make(map[uuid.UUID]mealplan.Recipe),
		users:      make(map[uuid.UUID]*user.User),
		plans:      make(map[uuid.UUID]*planRecord),
		lists:      make(map[uuid.UUID]*shopping.List),
		listByPlan: make(map[uuid.UUID]uuid.UUID),
		itemToList: make(map[uuid.UUID]uuid.UUID),
	}
}

// AddRecipes seeds catalog recipes
func (d *Database) AddRecipes(recipes ...mealplan.Recipe) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range recipes {
		d.recipes[r.ID] = r
	}
}

// AddBaselines seeds price baselines
func (d *Database) AddBaselines(baselines ...shopping.PriceBaseline) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.baselines = append(d.baselines, baselines...)
}

// CountPlans returns the number of stored plans
func (d *Database) CountPlans() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.plans)
}

// CountLists returns the number of stored shopping lists
func (d *Database) CountLists() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lists)
}

// CatalogRepository reads recipes from the in-memory catalog
type CatalogRepository struct {
	db *Database
}

// NewCatalogRepository creates a catalog reader
func NewCatalogRepository(db *Database) outbound.CatalogReader {
	return &CatalogRepository{db: db}
}

// FindRecipes returns recipes matching the dietary flags, ordered by title
func (r *CatalogRepository) FindRecipes(ctx context.Context, filter outbound.CatalogFilter) ([]mealplan.Recipe, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []mealplan.Recipe
	for _, recipe := range r.db.recipes {
		if filter.Dietary.Vegetarian && !recipe.Vegetarian {
			continue
		}
		if filter.Dietary.DairyFree && !recipe.DairyFree {
			continue
		}
		out = append(out, recipe)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// PlanRepository stores meal plans in memory
type PlanRepository struct {
	db *Database
}

// NewPlanRepository creates a plan store
func NewPlanRepository(db *Database) outbound.PlanStore {
	return &PlanRepository{db: db}
}

// Create stores the plan and its items
func (r *PlanRepository) Create(ctx context.Context, plan *mealplan.MealPlan) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.plans[plan.ID()]; exists {
		return outbound.ErrConflict
	}

	items := make([]mealplan.MealPlanItem, len(plan.Items()))
	copy(items, plan.Items())
	for i := range items {
		items[i].Recipe = nil
	}

	r.db.plans[plan.ID()] = &planRecord{
		id:        plan.ID(),
		ownerID:   plan.OwnerID(),
		startDate: plan.StartDate(),
		days:      plan.Days(),
		createdAt: plan.CreatedAt(),
		items:     items,
	}
	return nil
}

// FindByID loads the plan with recipes attached to every item
func (r *PlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rec, ok := r.db.plans[id]
	if !ok {
		return nil, outbound.ErrNotFound
	}

	items := make([]mealplan.MealPlanItem, len(rec.items))
	copy(items, rec.items)
	for i := range items {
		if recipe, ok := r.db.recipes[items[i].RecipeID]; ok {
			recipe := recipe
			items[i].Recipe = &recipe
		}
	}

	return mealplan.Rehydrate(rec.id, rec.ownerID, rec.startDate, rec.days, items, rec.createdAt), nil
}

// Delete removes the plan and its shopping list
func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.plans[id]; !ok {
		return outbound.ErrNotFound
	}
	delete(r.db.plans, id)

	if listID, ok := r.db.listByPlan[id]; ok {
		for _, item := range r.db.lists[listID].Items {
			delete(r.db.itemToList, item.ID)
		}
		delete(r.db.lists, listID)
		delete(r.db.listByPlan, id)
	}
	return nil
}

// ShoppingListRepository stores shopping lists in memory
type ShoppingListRepository struct {
	db *Database
}

// NewShoppingListRepository creates a shopping list store
func NewShoppingListRepository(db *Database) outbound.ShoppingListStore {
	return &ShoppingListRepository{db: db}
}

// Create stores the list, enforcing one list per plan
func (r *ShoppingListRepository) Create(ctx context.Context, list *shopping.List) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.listByPlan[list.PlanID]; exists {
		return outbound.ErrConflict
	}

	stored := cloneList(list)
	r.db.lists[stored.ID] = stored
	r.db.listByPlan[stored.PlanID] = stored.ID
	for _, item := range stored.Items {
		r.db.itemToList[item.ID] = stored.ID
	}
	return nil
}

// FindByPlanID returns the plan's list
func (r *ShoppingListRepository) FindByPlanID(ctx context.Context, planID uuid.UUID) (*shopping.List, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	listID, ok := r.db.listByPlan[planID]
	if !ok {
		return nil, outbound.ErrNotFound
	}
	return cloneList(r.db.lists[listID]), nil
}

// FindByID returns a list by identity
func (r *ShoppingListRepository) FindByID(ctx context.Context, id uuid.UUID) (*shopping.List, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	list, ok := r.db.lists[id]
	if !ok {
		return nil, outbound.ErrNotFound
	}
	return cloneList(list), nil
}

// FindItem returns an item and the owner of its list
func (r *ShoppingListRepository) FindItem(ctx context.Context, itemID uuid.UUID) (*shopping.Item, uuid.UUID, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	list, idx, ok := r.locate(itemID)
	if !ok {
		return nil, uuid.Nil, outbound.ErrNotFound
	}
	item := list.Items[idx]
	return &item, list.OwnerID, nil
}

// AddItem appends an item to its list
func (r *ShoppingListRepository) AddItem(ctx context.Context, item *shopping.Item) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	list, ok := r.db.lists[item.ListID]
	if !ok {
		return outbound.ErrNotFound
	}
	list.Items = append(list.Items, *item)
	r.db.itemToList[item.ID] = list.ID
	return nil
}

// SetItemChecked updates a single item's checked flag
func (r *ShoppingListRepository) SetItemChecked(ctx context.Context, itemID uuid.UUID, checked bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	list, idx, ok := r.locate(itemID)
	if !ok {
		return outbound.ErrNotFound
	}
	list.Items[idx].Checked = checked
	return nil
}

// SetCategoryChecked updates every item in a category
func (r *ShoppingListRepository) SetCategoryChecked(ctx context.Context, listID uuid.UUID, category string, checked bool) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	list, ok := r.db.lists[listID]
	if !ok {
		return 0, outbound.ErrNotFound
	}

	affected := 0
	for i := range list.Items {
		if strings.EqualFold(list.Items[i].ResolvedCategory(), category) {
			list.Items[i].Checked = checked
			affected++
		}
	}
	return affected, nil
}

func (r *ShoppingListRepository) locate(itemID uuid.UUID) (*shopping.List, int, bool) {
	listID, ok := r.db.itemToList[itemID]
	if !ok {
		return nil, 0, false
	}
	list := r.db.lists[listID]
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			return list, i, true
		}
	}
	return nil, 0, false
}

func cloneList(list *shopping.List) *shopping.List {
	out := *list
	out.Items = make([]shopping.Item, len(list.Items))
	copy(out.Items, list.Items)
	return &out
}

// UserRepository stores users in memory
type UserRepository struct {
	db *Database
}

// NewUserRepository creates a user repository
func NewUserRepository(db *Database) outbound.UserRepository {
	return &UserRepository{db: db}
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, outbound.ErrNotFound
	}
	return u, nil
}

// Create stores a user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.users[u.ID()]; exists {
		return outbound.ErrConflict
	}
	r.db.users[u.ID()] = u
	return nil
}

// PriceBaselineRepository serves seeded baselines
type PriceBaselineRepository struct {
	db *Database
}

// NewPriceBaselineRepository creates a baseline reader
func NewPriceBaselineRepository(db *Database) outbound.PriceBaselineReader {
	return &PriceBaselineRepository{db: db}
}

// ListBaselines returns all baselines
func (r *PriceBaselineRepository) ListBaselines(ctx context.Context) ([]shopping.PriceBaseline, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]shopping.PriceBaseline, len(r.db.baselines))
	copy(out, r.db.baselines)
	return out, nil
}
