package schema

import "strings"

// Role is the semantic meaning assigned to a grid column.
type Role string

const (
	RoleDate             Role = "date"
	RoleAmount           Role = "amount"
	RoleCurrency         Role = "currency"
	RoleCategory         Role = "category"
	RoleAccount          Role = "account"
	RoleNote             Role = "note"
	RoleTags             Role = "tags"
	RoleType             Role = "type"
	RoleOriginalAmount   Role = "originalAmount"
	RoleOriginalCurrency Role = "originalCurrency"
	RoleIgnore           Role = "ignore"
)

// flavor refines an amount keyword: debit and credit columns both carry the
// amount role but merge with opposite signs.
type flavor int

const (
	flavorNone flavor = iota
	flavorDebit
	flavorCredit
)

type headerKeyword struct {
	kw     string
	role   Role
	flavor flavor
}

// headerKeywords is the multilingual dictionary of statement header labels
// (English, Portuguese, Spanish, German, French, Russian). Matching is
// substring-based, so longer entries must win over their substrings
// ("original amount" over "amount"); resolution picks the longest hit.
var headerKeywords = []headerKeyword{
	// Dates
	{kw: "date", role: RoleDate},
	{kw: "data mov", role: RoleDate},
	{kw: "data", role: RoleDate},
	{kw: "fecha", role: RoleDate},
	{kw: "datum", role: RoleDate},
	{kw: "дата", role: RoleDate},

	// Single amount
	{kw: "amount", role: RoleAmount},
	{kw: "valor", role: RoleAmount},
	{kw: "importe", role: RoleAmount},
	{kw: "montant", role: RoleAmount},
	{kw: "betrag", role: RoleAmount},
	{kw: "сумма", role: RoleAmount},

	// Original (pre-conversion) figures
	{kw: "original amount", role: RoleOriginalAmount},
	{kw: "orig amount", role: RoleOriginalAmount},
	{kw: "original currency", role: RoleOriginalCurrency},
	{kw: "orig currency", role: RoleOriginalCurrency},

	// Debit / credit split columns
	{kw: "debit", role: RoleAmount, flavor: flavorDebit},
	{kw: "débito", role: RoleAmount, flavor: flavorDebit},
	{kw: "debito", role: RoleAmount, flavor: flavorDebit},
	{kw: "cargo", role: RoleAmount, flavor: flavorDebit},
	{kw: "расход", role: RoleAmount, flavor: flavorDebit},
	{kw: "credit", role: RoleAmount, flavor: flavorCredit},
	{kw: "crédito", role: RoleAmount, flavor: flavorCredit},
	{kw: "credito", role: RoleAmount, flavor: flavorCredit},
	{kw: "abono", role: RoleAmount, flavor: flavorCredit},
	{kw: "приход", role: RoleAmount, flavor: flavorCredit},
	{kw: "доход", role: RoleAmount, flavor: flavorCredit},

	// Currency
	{kw: "currency", role: RoleCurrency},
	{kw: "moeda", role: RoleCurrency},
	{kw: "moneda", role: RoleCurrency},
	{kw: "divisa", role: RoleCurrency},
	{kw: "devise", role: RoleCurrency},
	{kw: "валюта", role: RoleCurrency},

	// Category
	{kw: "category", role: RoleCategory},
	{kw: "categoria", role: RoleCategory},
	{kw: "categoría", role: RoleCategory},
	{kw: "catégorie", role: RoleCategory},
	{kw: "kategorie", role: RoleCategory},
	{kw: "категория", role: RoleCategory},

	// Account
	{kw: "account", role: RoleAccount},
	{kw: "conta", role: RoleAccount},
	{kw: "cuenta", role: RoleAccount},
	{kw: "compte", role: RoleAccount},
	{kw: "konto", role: RoleAccount},
	{kw: "счет", role: RoleAccount},
	{kw: "счёт", role: RoleAccount},

	// Free-text note
	{kw: "note", role: RoleNote},
	{kw: "memo", role: RoleNote},
	{kw: "description", role: RoleNote},
	{kw: "descrição", role: RoleNote},
	{kw: "descricao", role: RoleNote},
	{kw: "descripción", role: RoleNote},
	{kw: "beschreibung", role: RoleNote},
	{kw: "описание", role: RoleNote},
	{kw: "комментарий", role: RoleNote},
	{kw: "comment", role: RoleNote},
	{kw: "details", role: RoleNote},

	// Tags
	{kw: "tags", role: RoleTags},
	{kw: "etiquetas", role: RoleTags},
	{kw: "теги", role: RoleTags},
	{kw: "метки", role: RoleTags},

	// Stated transaction type
	{kw: "type", role: RoleType},
	{kw: "tipo", role: RoleType},
	{kw: "тип", role: RoleType},

	// Known columns that never feed the model
	{kw: "balance", role: RoleIgnore},
	{kw: "saldo", role: RoleIgnore},
	{kw: "остаток", role: RoleIgnore},
}

// normalizeLabel lowers and collapses a header cell for dictionary matching.
func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.Join(strings.Fields(label), " ")
}
