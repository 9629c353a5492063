package taxonomy

import (
	"errors"
	"fmt"
	"sync"
)

type CategoryKey string

const (
	CategoryFoodDining     CategoryKey = "food_dining"
	CategoryGroceries      CategoryKey = "groceries"
	CategoryTransportation CategoryKey = "transportation"
	CategoryEntertainment  CategoryKey = "entertainment"
	CategoryShopping       CategoryKey = "shopping"
	CategoryUtilities      CategoryKey = "utilities"
	CategoryHealth         CategoryKey = "health"
	CategoryHousing        CategoryKey = "housing"
)

var AllCategories = []CategoryKey{
	CategoryFoodDining,
	CategoryGroceries,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryShopping,
	CategoryUtilities,
	CategoryHealth,
	CategoryHousing,
}

func (k CategoryKey) Valid() bool {
	switch k {
	case CategoryFoodDining, CategoryGroceries, CategoryTransportation, CategoryEntertainment,
		CategoryShopping, CategoryUtilities, CategoryHealth, CategoryHousing:
		return true
	default:
		return false
	}
}

func (k CategoryKey) String() string {
	return string(k)
}

type PaymentMethodKey string

const (
	PaymentCash          PaymentMethodKey = "cash"
	PaymentCreditCard    PaymentMethodKey = "credit_card"
	PaymentDebitCard     PaymentMethodKey = "debit_card"
	PaymentBankTransfer  PaymentMethodKey = "bank_transfer"
	PaymentDigitalWallet PaymentMethodKey = "digital_wallet"
)

var AllPaymentMethods = []PaymentMethodKey{
	PaymentCash,
	PaymentCreditCard,
	PaymentDebitCard,
	PaymentBankTransfer,
	PaymentDigitalWallet,
}

func (k PaymentMethodKey) Valid() bool {
	switch k {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentBankTransfer, PaymentDigitalWallet:
		return true
	default:
		return false
	}
}

func (k PaymentMethodKey) String() string {
	return string(k)
}

var ErrUnknownKey = errors.New("key is not part of the closed enumeration")

// Registry pairs the category and payment-method taxonomies.
type Registry struct {
	Categories     *Taxonomy
	PaymentMethods *Taxonomy
}

func NewRegistry(categories, paymentMethods []Entry) (*Registry, error) {
	for _, entry := range categories {
		if !CategoryKey(entry.Key).Valid() {
			return nil, fmt.Errorf("category %q: %w", entry.Key, ErrUnknownKey)
		}
	}
	for _, entry := range paymentMethods {
		if !PaymentMethodKey(entry.Key).Valid() {
			return nil, fmt.Errorf("payment method %q: %w", entry.Key, ErrUnknownKey)
		}
	}

	cat, err := New(KindCategory, categories)
	if err != nil {
		return nil, err
	}
	pm, err := New(KindPaymentMethod, paymentMethods)
	if err != nil {
		return nil, err
	}

	return &Registry{Categories: cat, PaymentMethods: pm}, nil
}

func (r *Registry) Taxonomy(kind Kind) *Taxonomy {
	if kind == KindPaymentMethod {
		return r.PaymentMethods
	}
	return r.Categories
}

// Resolve returns the key whose synonym equals token, or false. It never errors.
func (r *Registry) Resolve(token string, kind Kind) (string, bool) {
	return r.Taxonomy(kind).Resolve(token)
}

func (r *Registry) ResolveCategory(token string) (CategoryKey, bool) {
	key, ok := r.Categories.Resolve(token)
	return CategoryKey(key), ok
}

func (r *Registry) ResolvePaymentMethod(token string) (PaymentMethodKey, bool) {
	key, ok := r.PaymentMethods.Resolve(token)
	return PaymentMethodKey(key), ok
}

func (r *Registry) HasCategory(key CategoryKey) bool {
	return r.Categories.Has(string(key))
}

func (r *Registry) HasPaymentMethod(key PaymentMethodKey) bool {
	return r.PaymentMethods.Has(string(key))
}

func (r *Registry) CategoryName(key CategoryKey) string {
	return r.Categories.DisplayName(string(key))
}

func (r *Registry) PaymentMethodName(key PaymentMethodKey) string {
	return r.PaymentMethods.DisplayName(string(key))
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// DefaultRegistry returns the built-in English and Spanish vocabulary.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		reg, err := NewRegistry(defaultCategories, defaultPaymentMethods)
		if err != nil {
			panic(err)
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

var defaultCategories = []Entry{
	{
		Key:         string(CategoryFoodDining),
		DisplayName: "Food & Dining",
		Synonyms: []string{
			"food", "dining", "restaurant", "restaurants", "lunch", "dinner", "breakfast", "brunch",
			"coffee", "cafe", "tacos", "taco", "pizza", "burger", "burgers", "sushi", "takeout",
			"take out", "delivery", "uber eats", "rappi", "didi food", "starbucks",
			"comida", "restaurante", "almuerzo", "cena", "desayuno", "cafeteria",
		},
	},
	{
		Key:         string(CategoryGroceries),
		DisplayName: "Groceries",
		Synonyms: []string{
			"grocery", "groceries", "supermarket", "super", "market", "walmart", "costco",
			"soriana", "chedraui", "despensa", "mandado", "supermercado", "abarrotes",
		},
	},
	{
		Key:         string(CategoryTransportation),
		DisplayName: "Transportation",
		Synonyms: []string{
			"transportation", "transport", "gas", "gasoline", "fuel", "petrol", "uber", "taxi",
			"cab", "didi", "bus", "metro", "subway", "train", "parking", "toll", "tolls", "flight",
			"gasolina", "transporte", "estacionamiento", "caseta", "camion",
		},
	},
	{
		Key:         string(CategoryEntertainment),
		DisplayName: "Entertainment",
		Synonyms: []string{
			"entertainment", "movies", "movie", "cinema", "cine", "netflix", "spotify", "concert",
			"concierto", "games", "videogames", "bar", "drinks", "beer", "theater", "museum",
			"streaming", "entretenimiento", "cerveza",
		},
	},
	{
		Key:         string(CategoryShopping),
		DisplayName: "Shopping",
		Synonyms: []string{
			"shopping", "clothes", "clothing", "shoes", "amazon", "mall", "electronics", "gift",
			"gifts", "ropa", "zapatos", "compras", "regalo",
		},
	},
	{
		Key:         string(CategoryUtilities),
		DisplayName: "Utilities",
		Synonyms: []string{
			"utilities", "electricity", "electric bill", "power bill", "light bill", "gas bill",
			"water bill", "water", "internet", "phone bill", "phone", "cell phone",
			"luz", "agua", "telefono", "servicios", "recibo de luz", "cfe", "telmex",
		},
	},
	{
		Key:         string(CategoryHealth),
		DisplayName: "Health",
		Synonyms: []string{
			"health", "doctor", "pharmacy", "medicine", "medicines", "dentist", "hospital", "gym",
			"farmacia", "medicina", "medicinas", "salud", "medico", "dentista",
		},
	},
	{
		Key:         string(CategoryHousing),
		DisplayName: "Housing",
		Synonyms: []string{
			"housing", "rent", "mortgage", "maintenance", "repairs",
			"renta", "alquiler", "hipoteca", "mantenimiento",
		},
	},
}

var defaultPaymentMethods = []Entry{
	{
		Key:         string(PaymentCash),
		DisplayName: "Cash",
		Synonyms:    []string{"cash", "efectivo"},
	},
	{
		Key:         string(PaymentCreditCard),
		DisplayName: "Credit Card",
		Synonyms:    []string{"credit card", "credit", "amex", "tarjeta de credito", "credito"},
	},
	{
		Key:         string(PaymentDebitCard),
		DisplayName: "Debit Card",
		Synonyms:    []string{"debit card", "debit", "tarjeta de debito", "debito"},
	},
	{
		Key:         string(PaymentBankTransfer),
		DisplayName: "Bank Transfer",
		Synonyms:    []string{"bank transfer", "transfer", "wire", "transferencia", "spei"},
	},
	{
		Key:         string(PaymentDigitalWallet),
		DisplayName: "Digital Wallet",
		Synonyms:    []string{"digital wallet", "wallet", "paypal", "apple pay", "google pay", "mercado pago"},
	},
}
