package core

// Category is one entry of the fixed budgeting enumeration.
type Category struct {
	ID   int
	Name string
	Icon string
}

const OtherCategoryID = 12

var categories = []Category{
	{ID: 1, Name: "Rent/Mortgage", Icon: "🏠"},
	{ID: 2, Name: "Food & Dining", Icon: "🍽️"},
	{ID: 3, Name: "Transportation", Icon: "🚗"},
	{ID: 4, Name: "Utilities", Icon: "⚡"},
	{ID: 5, Name: "Healthcare", Icon: "🏥"},
	{ID: 6, Name: "Entertainment", Icon: "🎬"},
	{ID: 7, Name: "Shopping", Icon: "🛍️"},
	{ID: 8, Name: "Insurance", Icon: "🛡️"},
	{ID: 9, Name: "Debt Payments", Icon: "💳"},
	{ID: 10, Name: "Savings", Icon: "💰"},
	{ID: 11, Name: "Education", Icon: "📚"},
	{ID: OtherCategoryID, Name: "Other", Icon: "📝"},
}

// Categories returns a copy of the enumeration ordered by id.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func CategoryByID(id int) (Category, bool) {
	if id < 1 || id > len(categories) {
		return Category{}, false
	}
	return categories[id-1], true
}

// CategoryByName matches a label exactly (case-sensitive).
func CategoryByName(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// IconFor returns the icon for a label, falling back to the "Other" icon
// for free-text categories.
func IconFor(label string) string {
	if c, ok := CategoryByName(label); ok {
		return c.Icon
	}
	return categories[OtherCategoryID-1].Icon
}
