package gorm

import (
	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/domain/user"
)

// toDomainRecipe converts a recipe model with preloaded ingredients
func toDomainRecipe(m *RecipeModel) mealplan.Recipe {
	slots := make([]mealplan.MealSlot, 0, len(m.MealSlots))
	for _, s := range m.MealSlots {
		if slot, err := mealplan.ParseMealSlot(s); err == nil {
			slots = append(slots, slot)
		}
	}

	ingredients := make([]mealplan.RecipeIngredient, 0, len(m.Ingredients))
	for _, line := range m.Ingredients {
		ingredients = append(ingredients, mealplan.RecipeIngredient{
			IngredientID: line.IngredientID,
			Name:         line.Ingredient.Name,
			Category:     line.Ingredient.Category,
			Quantity:     line.Quantity,
			Unit:         line.Unit,
		})
	}

	return mealplan.Recipe{
		ID:           m.ID,
		Title:        m.Title,
		MealSlots:    slots,
		Servings:     m.Servings,
		PrepMinutes:  m.PrepTimeMinutes,
		CookMinutes:  m.CookTimeMinutes,
		TotalMinutes: m.TotalTimeMinutes,
		Vegetarian:   m.Vegetarian,
		DairyFree:    m.DairyFree,
		Ingredients:  ingredients,
	}
}

// toRecipeModel converts a domain recipe. Ingredient rows are not included;
// the dictionary entries are upserted separately.
func toRecipeModel(r mealplan.Recipe) *RecipeModel {
	slots := make(StringSlice, 0, len(r.MealSlots))
	for _, s := range r.MealSlots {
		slots = append(slots, string(s))
	}

	m := &RecipeModel{
		ID:               r.ID,
		Title:            r.Title,
		MealSlots:        slots,
		Servings:         r.Servings,
		PrepTimeMinutes:  r.PrepMinutes,
		CookTimeMinutes:  r.CookMinutes,
		TotalTimeMinutes: r.TotalMinutes,
		Vegetarian:       r.Vegetarian,
		DairyFree:        r.DairyFree,
	}
	for i, ing := range r.Ingredients {
		m.Ingredients = append(m.Ingredients, RecipeIngredientModel{
			RecipeID:     r.ID,
			IngredientID: ing.IngredientID,
			Quantity:     ing.Quantity,
			Unit:         ing.Unit,
			Position:     i,
		})
	}
	return m
}

func toMealPlanModel(p *mealplan.MealPlan) *MealPlanModel {
	m := &MealPlanModel{
		ID:        p.ID(),
		OwnerID:   p.OwnerID(),
		StartDate: p.StartDate(),
		Days:      p.Days(),
		CreatedAt: p.CreatedAt(),
	}
	for _, item := range p.Items() {
		m.Items = append(m.Items, MealPlanItemModel{
			ID:       item.ID,
			PlanID:   p.ID(),
			DayIndex: item.DayIndex,
			Slot:     string(item.Slot),
			RecipeID: item.RecipeID,
			Servings: item.Servings,
		})
	}
	return m
}

// toDomainMealPlan converts a plan with preloaded items, recipes and ingredients
func toDomainMealPlan(m *MealPlanModel) *mealplan.MealPlan {
	items := make([]mealplan.MealPlanItem, 0, len(m.Items))
	for i := range m.Items {
		row := &m.Items[i]
		recipe := toDomainRecipe(&row.Recipe)
		items = append(items, mealplan.MealPlanItem{
			ID:          row.ID,
			DayIndex:    row.DayIndex,
			Slot:        mealplan.MealSlot(row.Slot),
			RecipeID:    row.RecipeID,
			RecipeTitle: row.Recipe.Title,
			Servings:    row.Servings,
			Recipe:      &recipe,
		})
	}
	return mealplan.Rehydrate(m.ID, m.OwnerID, m.StartDate.UTC(), m.Days, items, m.CreatedAt)
}

func toShoppingListModel(l *shopping.List) *ShoppingListModel {
	m := &ShoppingListModel{
		ID:        l.ID,
		PlanID:    l.PlanID,
		OwnerID:   l.OwnerID,
		CreatedAt: l.CreatedAt,
	}
	for i, item := range l.Items {
		row := toShoppingItemModel(item)
		row.ListID = l.ID
		row.Position = i
		m.Items = append(m.Items, *row)
	}
	return m
}

func toShoppingItemModel(item shopping.Item) *ShoppingListItemModel {
	return &ShoppingListItemModel{
		ID:           item.ID,
		ListID:       item.ListID,
		IngredientID: item.IngredientID,
		Name:         item.Name,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		Category:     item.Category,
		Checked:      item.Checked,
	}
}

func toDomainShoppingItem(m *ShoppingListItemModel) shopping.Item {
	return shopping.Item{
		ID:           m.ID,
		ListID:       m.ListID,
		IngredientID: m.IngredientID,
		Name:         m.Name,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		Category:     m.Category,
		Checked:      m.Checked,
	}
}

func toDomainShoppingList(m *ShoppingListModel) *shopping.List {
	l := &shopping.List{
		ID:        m.ID,
		PlanID:    m.PlanID,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt,
		Items:     make([]shopping.Item, 0, len(m.Items)),
	}
	for i := range m.Items {
		l.Items = append(l.Items, toDomainShoppingItem(&m.Items[i]))
	}
	return l
}

func toDomainBaseline(m *PriceBaselineModel) shopping.PriceBaseline {
	return shopping.PriceBaseline{
		Category:     m.Category,
		Store:        m.Store,
		Unit:         m.Unit,
		PricePerUnit: m.PricePerUnit,
	}
}

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		ID:        u.ID(),
		Email:     u.Email(),
		Name:      u.Name(),
		Tier:      string(u.Tier()),
		CreatedAt: u.CreatedAt(),
	}
}

func toDomainUser(m *UserModel) *user.User {
	return user.Rehydrate(m.ID, m.Email, m.Name, user.ParseTier(m.Tier), m.CreatedAt)
}
